package objectstore

import (
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/cloudcore/cloudcore/cmn/cmnerr"
	"github.com/cloudcore/cloudcore/cmn/names"
	"github.com/cloudcore/cloudcore/kv"
)

// PutInput is the normalized request for any write path (media, multipart,
// resumable finalize, copy, compose) — spec §4.1.
type PutInput struct {
	ProjectID     string
	BucketName    string
	ObjectName    string
	ContentType   string
	Metadata      map[string]string
	Preconditions Preconditions
	// StorageClass overrides the destination bucket's default storage
	// class — used by CopyObject to carry the source object's class
	// through (spec §4.1: copy "preserves ... storage class"). Empty
	// means "use the destination bucket's default," the media/multipart/
	// resumable upload paths' existing behavior.
	StorageClass string
}

// objectLockKey scopes the per-(bucket,object) serialization spec §5
// requires: "writes serialize through the KV transaction holding a row
// lock on the Object row; generation assignment is monotonic under that
// lock."
func objectLockKey(projectID, bucketName, objectName string) string {
	return projectID + "/" + bucketName + "/" + objectName
}

// PutObject writes content read from r as a new version of (bucket, name),
// enforcing preconditions, versioning, and path-traversal safety, then
// fires an OBJECT_FINALIZE event. Returns the new object metadata.
func (s *Store) PutObject(in PutInput, r io.Reader) (Object, error) {
	if err := names.ValidateObjectName(in.ObjectName); err != nil {
		return Object{}, err
	}
	var result Object
	var bucket Bucket
	err := s.withObjectLock(in.ProjectID, in.BucketName, in.ObjectName, func() error {
		return s.kv.Update(func(tx *kv.Tx) error {
			var err error
			bucket, err = s.getBucketTx(tx, in.ProjectID, in.BucketName)
			if err != nil {
				return err
			}
			existing, err := s.getLatestTx(tx, in.ProjectID, in.BucketName, in.ObjectName)
			if err != nil {
				return err
			}
			if err := in.Preconditions.Check(existing); err != nil {
				return err
			}
			nextGen, err := s.nextGenerationTx(tx, in.ProjectID, in.BucketName, in.ObjectName)
			if err != nil {
				return err
			}

			path, err := resolvePath(s.storageRoot, in.ProjectID+"/"+in.BucketName, in.ObjectName, nextGen)
			if err != nil {
				return err
			}
			hw, err := writeContent(path, r)
			if err != nil {
				return err
			}

			storageClass := in.StorageClass
			if storageClass == "" {
				storageClass = bucket.StorageClass
			}
			now := s.nowString()
			obj := Object{
				BucketName:     in.BucketName,
				ProjectID:      in.ProjectID,
				Name:           in.ObjectName,
				Generation:     nextGen,
				Metageneration: 1,
				Size:           hw.Size(),
				ContentType:    in.ContentType,
				MD5:            hw.MD5Hex(),
				CRC32C:         hw.CRC32CBase64(),
				StorageClass:   storageClass,
				Metadata:       in.Metadata,
				IsLatest:       true,
				CreatedAt:      now,
				UpdatedAt:      now,
			}

			if existing != nil {
				// demote the prior latest version: leave its version row
				// intact (history), soft-delete it only when versioning is
				// off (spec §4.1's "old latest rows set is_latest=false").
				prevVersion := *existing
				prevVersion.IsLatest = false
				if !bucket.VersioningEnabled {
					prevVersion.Deleted = true
				}
				if err := kv.SetJSON(tx, versionKey(in.ProjectID, in.BucketName, in.ObjectName, existing.Generation), &prevVersion); err != nil {
					return err
				}
			}
			if err := kv.SetJSON(tx, versionKey(in.ProjectID, in.BucketName, in.ObjectName, nextGen), &obj); err != nil {
				return err
			}
			if err := kv.SetJSON(tx, objectKey(in.ProjectID, in.BucketName, in.ObjectName), &obj); err != nil {
				return err
			}
			result = obj
			return nil
		})
	})
	if err != nil {
		return Object{}, err
	}
	s.events.Publish(bucket, Event{ProjectID: in.ProjectID, EventType: EventFinalize, Generation: result.Generation, Object: result})
	return result, nil
}

// GetObject returns the latest (generation == 0) or a pinned version.
func (s *Store) GetObject(projectID, bucketName, objectName string, generation int64) (Object, error) {
	var obj Object
	err := s.kv.View(func(tx *kv.Tx) error {
		if generation == 0 {
			existing, err := s.getLatestTx(tx, projectID, bucketName, objectName)
			if err != nil {
				return err
			}
			if existing == nil {
				return cmnerr.NotFoundf("object %q not found in bucket %q", objectName, bucketName)
			}
			obj = *existing
			return nil
		}
		if err := kv.GetJSON(tx, versionKey(projectID, bucketName, objectName, generation), &obj); err != nil {
			return kv.NotFoundOr(err, "object %q generation %d not found", objectName, generation)
		}
		return nil
	})
	return obj, err
}

// OpenObjectContent returns a ReadCloser over the stored bytes for
// download (§4.1's GET ?alt=media).
func (s *Store) OpenObjectContent(projectID, bucketName, objectName string, generation int64) (Object, io.ReadCloser, error) {
	obj, err := s.GetObject(projectID, bucketName, objectName, generation)
	if err != nil {
		return Object{}, nil, err
	}
	path, err := resolvePath(s.storageRoot, projectID+"/"+bucketName, objectName, obj.Generation)
	if err != nil {
		return Object{}, nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return Object{}, nil, cmnerr.Internalf(err, "objectstore: opening %s", path)
	}
	return obj, f, nil
}

// PatchMetadataInput updates only custom metadata / content-type /
// storage class, bumping metageneration without a new generation (§4.1).
type PatchMetadataInput struct {
	ContentType  *string
	Metadata     map[string]string
	StorageClass *string
}

func (s *Store) PatchObjectMetadata(projectID, bucketName, objectName string, in PatchMetadataInput) (Object, error) {
	var result Object
	var bucket Bucket
	err := s.withObjectLock(projectID, bucketName, objectName, func() error {
		return s.kv.Update(func(tx *kv.Tx) error {
			var err error
			bucket, err = s.getBucketTx(tx, projectID, bucketName)
			if err != nil {
				return err
			}
			existing, err := s.getLatestTx(tx, projectID, bucketName, objectName)
			if err != nil {
				return err
			}
			if existing == nil {
				return cmnerr.NotFoundf("object %q not found in bucket %q", objectName, bucketName)
			}
			obj := *existing
			if in.ContentType != nil {
				obj.ContentType = *in.ContentType
			}
			if in.Metadata != nil {
				obj.Metadata = in.Metadata
			}
			if in.StorageClass != nil {
				obj.StorageClass = *in.StorageClass
			}
			obj.Metageneration++
			obj.UpdatedAt = s.nowString()
			if err := kv.SetJSON(tx, objectKey(projectID, bucketName, objectName), &obj); err != nil {
				return err
			}
			if err := kv.SetJSON(tx, versionKey(projectID, bucketName, objectName, obj.Generation), &obj); err != nil {
				return err
			}
			result = obj
			return nil
		})
	})
	if err != nil {
		return Object{}, err
	}
	s.events.Publish(bucket, Event{ProjectID: projectID, EventType: EventMetadataUpdate, Generation: result.Generation, Object: result})
	return result, nil
}

// DeleteObject removes one pinned generation (promoting the next-highest
// non-deleted version if it was the latest) or, with generation==0, every
// version (§4.1).
func (s *Store) DeleteObject(projectID, bucketName, objectName string, generation int64) error {
	var bucket Bucket
	var deletedObj Object
	err := s.withObjectLock(projectID, bucketName, objectName, func() error {
		return s.kv.Update(func(tx *kv.Tx) error {
			var err error
			bucket, err = s.getBucketTx(tx, projectID, bucketName)
			if err != nil {
				return err
			}
			existing, err := s.getLatestTx(tx, projectID, bucketName, objectName)
			if err != nil {
				return err
			}
			if existing == nil {
				return cmnerr.NotFoundf("object %q not found in bucket %q", objectName, bucketName)
			}
			deletedObj = *existing

			if generation == 0 {
				return s.deleteAllVersionsTx(tx, projectID, bucketName, objectName)
			}
			return s.deleteOneVersionTx(tx, projectID, bucketName, objectName, generation, existing)
		})
	})
	if err != nil {
		return err
	}
	s.events.Publish(bucket, Event{ProjectID: projectID, EventType: EventDelete, Generation: deletedObj.Generation, Object: deletedObj})
	return nil
}

func (s *Store) deleteAllVersionsTx(tx *kv.Tx, projectID, bucketName, objectName string) error {
	var toDelete []Object
	if err := tx.AscendPrefix(versionObjectPrefix(projectID, bucketName, objectName), func(key, value string) bool {
		var v Object
		if err := unmarshalInto(value, &v); err == nil {
			toDelete = append(toDelete, v)
		}
		return true
	}); err != nil {
		return err
	}
	for _, v := range toDelete {
		v.Deleted = true
		v.IsLatest = false
		if err := kv.SetJSON(tx, versionKey(projectID, bucketName, objectName, v.Generation), &v); err != nil {
			return err
		}
		path, err := resolvePath(s.storageRoot, projectID+"/"+bucketName, objectName, v.Generation)
		if err == nil {
			_ = os.Remove(path)
		}
	}
	return tx.Delete(objectKey(projectID, bucketName, objectName))
}

func (s *Store) deleteOneVersionTx(tx *kv.Tx, projectID, bucketName, objectName string, generation int64, latest *Object) error {
	var target Object
	if err := kv.GetJSON(tx, versionKey(projectID, bucketName, objectName, generation), &target); err != nil {
		return kv.NotFoundOr(err, "object %q generation %d not found", objectName, generation)
	}
	target.Deleted = true
	target.IsLatest = false
	if err := kv.SetJSON(tx, versionKey(projectID, bucketName, objectName, generation), &target); err != nil {
		return err
	}
	path, err := resolvePath(s.storageRoot, projectID+"/"+bucketName, objectName, generation)
	if err == nil {
		_ = os.Remove(path)
	}

	if generation != latest.Generation {
		// not the latest: pointer row is untouched.
		return nil
	}

	// promote the next-highest non-deleted version, if any.
	var candidate *Object
	if err := tx.AscendPrefix(versionObjectPrefix(projectID, bucketName, objectName), func(_, value string) bool {
		var v Object
		if uerr := unmarshalInto(value, &v); uerr != nil || v.Deleted || v.Generation == generation {
			return true
		}
		if candidate == nil || v.Generation > candidate.Generation {
			vv := v
			candidate = &vv
		}
		return true
	}); err != nil {
		return err
	}
	if candidate == nil {
		return tx.Delete(objectKey(projectID, bucketName, objectName))
	}
	candidate.IsLatest = true
	if err := kv.SetJSON(tx, versionKey(projectID, bucketName, objectName, candidate.Generation), candidate); err != nil {
		return err
	}
	return kv.SetJSON(tx, objectKey(projectID, bucketName, objectName), candidate)
}

// CopyObject reads the source (latest unless generation pinned) and
// writes a new object into (dstBucket, dstName) with a fresh generation,
// preserving content-type, checksums, and custom metadata (§4.1).
func (s *Store) CopyObject(projectID, srcBucket, srcName string, srcGeneration int64, dstBucket, dstName string) (Object, error) {
	src, body, err := s.OpenObjectContent(projectID, srcBucket, srcName, srcGeneration)
	if err != nil {
		return Object{}, err
	}
	defer body.Close()
	return s.PutObject(PutInput{
		ProjectID:    projectID,
		BucketName:   dstBucket,
		ObjectName:   dstName,
		ContentType:  src.ContentType,
		Metadata:     src.Metadata,
		StorageClass: src.StorageClass,
	}, body)
}

// --- helpers ---

func (s *Store) getBucketTx(tx *kv.Tx, projectID, bucketName string) (Bucket, error) {
	var b Bucket
	if err := kv.GetJSON(tx, bucketKey(projectID, bucketName), &b); err != nil {
		return Bucket{}, kv.NotFoundOr(err, "bucket %q not found", bucketName)
	}
	return b, nil
}

func (s *Store) getLatestTx(tx *kv.Tx, projectID, bucketName, objectName string) (*Object, error) {
	var o Object
	err := kv.GetJSON(tx, objectKey(projectID, bucketName, objectName), &o)
	if err != nil {
		if err == kv.ErrNotFound {
			return nil, nil
		}
		return nil, cmnerr.Internalf(err, "objectstore: reading object %q", objectName)
	}
	return &o, nil
}

func (s *Store) nextGenerationTx(tx *kv.Tx, projectID, bucketName, objectName string) (int64, error) {
	key := generationCounterKey(projectID, bucketName, objectName)
	v, err := tx.Get(key)
	var current int64
	if err == nil {
		current, _ = strconv.ParseInt(v, 10, 64)
	} else if err != kv.ErrNotFound {
		return 0, cmnerr.Internalf(err, "objectstore: reading generation counter for %q", objectName)
	}
	next := current + 1
	if err := tx.Set(key, strconv.FormatInt(next, 10)); err != nil {
		return 0, err
	}
	return next, nil
}

func (s *Store) withObjectLock(projectID, bucketName, objectName string, fn func() error) error {
	key := objectLockKey(projectID, bucketName, objectName)
	s.locks.Lock(key)
	defer s.locks.Unlock(key)
	return fn()
}

// writeContent writes to a temp file and atomically renames it into the
// final versioned path on success (spec §5: "writes go to temp then
// atomic rename"), so a crash mid-write never leaves a partially-written
// version visible at its final path.
func writeContent(finalPath string, r io.Reader) (*HashingWriter, error) {
	dir := filepath.Dir(finalPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, cmnerr.Internalf(err, "objectstore: creating %s", dir)
	}
	tmp, err := os.CreateTemp(dir, ".upload-*")
	if err != nil {
		return nil, cmnerr.Internalf(err, "objectstore: creating temp file in %s", dir)
	}
	tmpPath := tmp.Name()
	hw := NewHashingWriter(tmp)
	if _, err := io.Copy(hw, r); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return nil, cmnerr.Internalf(err, "objectstore: writing %s", tmpPath)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return nil, cmnerr.Internalf(err, "objectstore: closing %s", tmpPath)
	}
	if err := os.Rename(tmpPath, finalPath); err != nil {
		os.Remove(tmpPath)
		return nil, cmnerr.Internalf(err, "objectstore: finalizing %s", finalPath)
	}
	return hw, nil
}
