package objectstore

import (
	"io"

	"github.com/cloudcore/cloudcore/cmn/cmnerr"
)

// ComposeSource names one input object of a compose call, optionally
// pinned to a generation (0 means latest).
type ComposeSource struct {
	Name       string
	Generation int64
}

// ComposeObject concatenates the content of every source object (in
// order) into a new version of (bucketName, destName) — the expansion
// SPEC_FULL.md §4.1 adds alongside copy, mirroring the real provider's
// objects.compose call.
func (s *Store) ComposeObject(projectID, bucketName string, sources []ComposeSource, destName, contentType string) (Object, error) {
	if len(sources) == 0 {
		return Object{}, cmnerr.Invalidf("objectstore: compose requires at least one source object")
	}
	if len(sources) > 32 {
		return Object{}, cmnerr.Invalidf("objectstore: compose accepts at most 32 source objects")
	}

	readers := make([]io.Reader, 0, len(sources))
	closers := make([]io.Closer, 0, len(sources))
	defer func() {
		for _, c := range closers {
			c.Close()
		}
	}()
	for _, src := range sources {
		_, rc, err := s.OpenObjectContent(projectID, bucketName, src.Name, src.Generation)
		if err != nil {
			return Object{}, err
		}
		readers = append(readers, rc)
		closers = append(closers, rc)
	}

	return s.PutObject(PutInput{
		ProjectID:   projectID,
		BucketName:  bucketName,
		ObjectName:  destName,
		ContentType: contentType,
	}, io.MultiReader(readers...))
}
