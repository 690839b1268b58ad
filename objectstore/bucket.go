package objectstore

import (
	"os"
	"strings"

	"github.com/cloudcore/cloudcore/cmn/cmnerr"
	"github.com/cloudcore/cloudcore/cmn/names"
	"github.com/cloudcore/cloudcore/kv"
)

// CreateBucketInput is the subset of spec §4.1 bucket-create fields this
// store accepts; callers (the HTTP layer) translate the wire JSON into it.
type CreateBucketInput struct {
	Name         string
	ProjectID    string
	Location     string
	StorageClass string
	Versioning   bool
}

// CreateBucket validates the name, defaults location/storage class, and
// fails conflict if (project, name) already exists (spec §4.1).
func (s *Store) CreateBucket(in CreateBucketInput) (Bucket, error) {
	if err := names.ValidateBucketName(in.Name); err != nil {
		return Bucket{}, err
	}
	if in.Location == "" {
		in.Location = "US"
	}
	if in.StorageClass == "" {
		in.StorageClass = "STANDARD"
	}
	now := s.nowString()
	b := Bucket{
		Name:              in.Name,
		ProjectID:         in.ProjectID,
		Location:          in.Location,
		StorageClass:      in.StorageClass,
		VersioningEnabled: in.Versioning,
		Metageneration:    1,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	key := bucketKey(in.ProjectID, in.Name)
	err := s.kv.Update(func(tx *kv.Tx) error {
		if tx.Has(key) {
			return cmnerr.Conflictf("bucket %q already exists in project %q", in.Name, in.ProjectID)
		}
		return kv.SetJSON(tx, key, &b)
	})
	if err != nil {
		return Bucket{}, err
	}
	if err := os.MkdirAll(bucketDir(s.storageRoot, in.ProjectID+"/"+in.Name), 0o755); err != nil {
		return Bucket{}, cmnerr.Internalf(err, "objectstore: creating storage directory for bucket %q", in.Name)
	}
	return b, nil
}

// GetBucket looks up (projectID, name); a zero-value projectID is only
// valid when the caller already scopes uniquely (not used by this store).
func (s *Store) GetBucket(projectID, name string) (Bucket, error) {
	var b Bucket
	err := s.kv.View(func(tx *kv.Tx) error {
		return kv.GetJSON(tx, bucketKey(projectID, name), &b)
	})
	if err != nil {
		return Bucket{}, kv.NotFoundOr(err, "bucket %q not found", name)
	}
	return b, nil
}

// ListBuckets returns every bucket owned by projectID.
func (s *Store) ListBuckets(projectID string) ([]Bucket, error) {
	var out []Bucket
	err := s.kv.View(func(tx *kv.Tx) error {
		return tx.AscendPrefix(bucketProjectPrefix(projectID), func(_, value string) bool {
			var b Bucket
			if err := unmarshalInto(value, &b); err != nil {
				return true
			}
			out = append(out, b)
			return true
		})
	})
	return out, err
}

// KnownProjectIDs returns every distinct projectID with at least one
// bucket, by scanning the bucket key prefix — used by the lifecycle
// executor, which has no separate project catalogue to walk.
func (s *Store) KnownProjectIDs() ([]string, error) {
	seen := map[string]bool{}
	var out []string
	err := s.kv.View(func(tx *kv.Tx) error {
		return tx.AscendPrefix(bucketPrefix, func(key, _ string) bool {
			rest := key[len(bucketPrefix):]
			if i := strings.IndexByte(rest, '/'); i >= 0 {
				projectID := rest[:i]
				if !seen[projectID] {
					seen[projectID] = true
					out = append(out, projectID)
				}
			}
			return true
		})
	})
	return out, err
}

// DeleteBucket fails conflict if any non-deleted object remains (spec
// §4.1), otherwise removes the KV row and the backing directory.
func (s *Store) DeleteBucket(projectID, name string) error {
	key := bucketKey(projectID, name)
	err := s.kv.Update(func(tx *kv.Tx) error {
		if !tx.Has(key) {
			return cmnerr.NotFoundf("bucket %q not found", name)
		}
		hasLive := false
		if walkErr := tx.AscendPrefix(objectBucketPrefix(projectID, name), func(_, value string) bool {
			var o Object
			if err := unmarshalInto(value, &o); err == nil && !o.Deleted {
				hasLive = true
				return false
			}
			return true
		}); walkErr != nil {
			return walkErr
		}
		if hasLive {
			return cmnerr.Conflictf("bucket %q is not empty", name)
		}
		return tx.Delete(key)
	})
	if err != nil {
		return err
	}
	_ = os.RemoveAll(bucketDir(s.storageRoot, projectID+"/"+name))
	return nil
}

// PatchBucketInput carries the mutable fields spec §4.1's Patch accepts.
type PatchBucketInput struct {
	Versioning          *bool
	CorsRules           []CorsRule
	LifecycleRules      []LifecycleRule
	NotificationConfigs []NotificationConfig
}

func (s *Store) PatchBucket(projectID, name string, in PatchBucketInput) (Bucket, error) {
	key := bucketKey(projectID, name)
	var out Bucket
	err := s.kv.Update(func(tx *kv.Tx) error {
		var b Bucket
		if err := kv.GetJSON(tx, key, &b); err != nil {
			return kv.NotFoundOr(err, "bucket %q not found", name)
		}
		if in.Versioning != nil {
			b.VersioningEnabled = *in.Versioning
		}
		if in.CorsRules != nil {
			b.CorsRules = in.CorsRules
		}
		if in.LifecycleRules != nil {
			b.LifecycleRules = in.LifecycleRules
		}
		if in.NotificationConfigs != nil {
			b.NotificationConfigs = in.NotificationConfigs
		}
		b.UpdatedAt = s.nowString()
		out = b
		return kv.SetJSON(tx, key, &b)
	})
	return out, err
}
