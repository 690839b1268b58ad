// Package objectstore implements the versioned, generation-tracked object
// store of spec §4.1: buckets, objects, resumable/multipart/media uploads,
// signed URL verification, and the CORS/lifecycle/notification metadata
// other components (lifecycle, events) act on. Grounded on the teacher's
// ais/tgtobj.go (put/get object info structs, work-file-then-rename
// finalization) and ais/s3compat/object.go (provider-shaped object
// responses), generalized from aistore's FQN/mountpath model to a single
// storage root per spec's "Filesystem (assume path-scoped byte I/O)"
// external collaborator.
package objectstore

import (
	"path/filepath"
	"strings"

	"github.com/cloudcore/cloudcore/cmn/cmnerr"
)

// resolvePath maps a bucket's internal directory and an object name to the
// on-disk path for a given generation, enforcing spec §4.1/§9's
// path-traversal guard: the resolved path must remain contained within the
// bucket directory after symlink resolution.
//
// Object names are allowed to contain "/" (spec §8 boundary behavior); they
// are rejected if they contain "..", start with "/", or contain a
// backslash — names.ValidateObjectName already enforces this, so this
// function additionally re-validates containment against the resolved
// bucket root, per §9's "resolve symlinks before the containment check".
func resolvePath(storageRoot, bucketID, objectName string, generation int64) (string, error) {
	bucketDir := filepath.Join(storageRoot, bucketID)
	rel := filepath.Join(objectName, versionFile(generation))
	full := filepath.Join(bucketDir, rel)

	resolvedRoot, err := resolveSymlinks(bucketDir)
	if err != nil {
		return "", cmnerr.Internalf(err, "objectstore: resolving bucket root %s", bucketDir)
	}
	resolvedFull, err := resolveSymlinksBestEffort(full)
	if err != nil {
		return "", cmnerr.Internalf(err, "objectstore: resolving path %s", full)
	}
	if !within(resolvedRoot, resolvedFull) {
		return "", cmnerr.Invalidf("objectstore: object name %q escapes bucket storage root", objectName)
	}
	return full, nil
}

func versionFile(generation int64) string {
	return "v" + itoa(generation)
}

func bucketDir(storageRoot, bucketID string) string {
	return filepath.Join(storageRoot, bucketID)
}

func objectDir(storageRoot, bucketID, objectName string) string {
	return filepath.Join(storageRoot, bucketID, objectName)
}

func tempDir(storageRoot string) string {
	return filepath.Join(storageRoot, "tmp")
}

// within reports whether target is root or a descendant of root, both
// already-resolved absolute paths.
func within(root, target string) bool {
	if root == target {
		return true
	}
	return strings.HasPrefix(target, root+string(filepath.Separator))
}

func itoa(n int64) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}
