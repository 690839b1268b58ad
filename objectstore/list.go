package objectstore

import (
	"sort"
	"strings"

	"github.com/cloudcore/cloudcore/kv"
)

// ListInput mirrors the storage.objects.list query parameters of spec
// §4.1.
type ListInput struct {
	ProjectID  string
	BucketName string
	Prefix     string
	Delimiter  string
	PageToken  string
	MaxResults int
	Versions   bool
}

// ListResult carries items plus the synthesized "directory" prefixes a
// delimiter produces, and an opaque continuation token.
type ListResult struct {
	Items         []Object
	Prefixes      []string
	NextPageToken string
}

// ListObjects scans every live object (or every version, when
// Versions=true) under Prefix, folding names past the first Delimiter
// occurrence into a Prefixes entry (spec §4.1).
func (s *Store) ListObjects(in ListInput) (ListResult, error) {
	var all []Object
	err := s.kv.View(func(tx *kv.Tx) error {
		if in.Versions {
			return tx.AscendPrefix(versionPrefix+in.ProjectID+"/"+in.BucketName+"/", func(_, value string) bool {
				var o Object
				if err := unmarshalInto(value, &o); err == nil && !o.Deleted && strings.HasPrefix(o.Name, in.Prefix) {
					all = append(all, o)
				}
				return true
			})
		}
		return tx.AscendPrefix(objectBucketPrefix(in.ProjectID, in.BucketName), func(_, value string) bool {
			var o Object
			if err := unmarshalInto(value, &o); err == nil && !o.Deleted && strings.HasPrefix(o.Name, in.Prefix) {
				all = append(all, o)
			}
			return true
		})
	})
	if err != nil {
		return ListResult{}, err
	}

	sort.Slice(all, func(i, j int) bool {
		if all[i].Name != all[j].Name {
			return all[i].Name < all[j].Name
		}
		return all[i].Generation < all[j].Generation
	})

	var items []Object
	prefixSet := map[string]bool{}
	var prefixes []string
	for _, o := range all {
		rest := o.Name[len(in.Prefix):]
		if in.Delimiter != "" {
			if idx := strings.Index(rest, in.Delimiter); idx >= 0 {
				p := in.Prefix + rest[:idx+len(in.Delimiter)]
				if !prefixSet[p] {
					prefixSet[p] = true
					prefixes = append(prefixes, p)
				}
				continue
			}
		}
		items = append(items, o)
	}
	sort.Strings(prefixes)

	start := 0
	if in.PageToken != "" {
		for i, o := range items {
			if o.Name == in.PageToken {
				start = i + 1
				break
			}
		}
	}
	items = items[min(start, len(items)):]

	var nextToken string
	if in.MaxResults > 0 && len(items) > in.MaxResults {
		nextToken = items[in.MaxResults-1].Name
		items = items[:in.MaxResults]
	}

	return ListResult{Items: items, Prefixes: prefixes, NextPageToken: nextToken}, nil
}
