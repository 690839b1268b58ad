package objectstore

import (
	"io"
	"os"

	"github.com/cloudcore/cloudcore/cmn/cmnerr"
	"github.com/cloudcore/cloudcore/cmn/names"
	"github.com/cloudcore/cloudcore/kv"
)

// InitResumableInput is the metadata carried by the initiating POST of
// spec §4.1's resumable upload flow.
type InitResumableInput struct {
	ProjectID   string
	BucketName  string
	ObjectName  string
	ContentType string
	Metadata    map[string]string
	TotalSize   int64 // -1 when not declared
}

// InitResumableSession validates the target name, opens a fresh temp file
// under <storage_root>/tmp, and persists a ResumableSession row. Returns
// the session id the caller embeds in the Location header.
func (s *Store) InitResumableSession(in InitResumableInput) (string, error) {
	if err := names.ValidateObjectName(in.ObjectName); err != nil {
		return "", err
	}
	if err := os.MkdirAll(tempDir(s.storageRoot), 0o755); err != nil {
		return "", cmnerr.Internalf(err, "objectstore: creating tmp dir")
	}
	sessionID := newSessionID()
	tmpPath := tempDir(s.storageRoot) + "/" + sessionID
	f, err := os.Create(tmpPath)
	if err != nil {
		return "", cmnerr.Internalf(err, "objectstore: creating resumable temp file")
	}
	f.Close()

	sess := ResumableSession{
		SessionID:          sessionID,
		ProjectID:          in.ProjectID,
		BucketName:         in.BucketName,
		ObjectName:         in.ObjectName,
		DeclaredTotalSize:  in.TotalSize,
		CurrentOffset:      0,
		TempPath:           tmpPath,
		PendingContentType: in.ContentType,
		PendingMetadata:    in.Metadata,
		CreatedAt:          s.nowString(),
	}
	err = s.kv.Update(func(tx *kv.Tx) error {
		return kv.SetJSON(tx, sessionKey(sessionID), &sess)
	})
	if err != nil {
		os.Remove(tmpPath)
		return "", err
	}
	return sessionID, nil
}

// ResumableStatus reports the session's current offset, for the
// empty-body status-probe PUT (spec §4.1 step 4).
func (s *Store) ResumableStatus(sessionID string) (ResumableSession, error) {
	var sess ResumableSession
	err := s.kv.View(func(tx *kv.Tx) error {
		return kv.GetJSON(tx, sessionKey(sessionID), &sess)
	})
	if err != nil {
		return ResumableSession{}, kv.NotFoundOr(err, "resumable session %q not found", sessionID)
	}
	return sess, nil
}

// AppendResult reports the outcome of one resumable PUT chunk.
type AppendResult struct {
	Done           bool
	CommittedRange names.ContentRange
	Object         Object // populated only when Done
}

// AppendChunk appends chunk to the session's temp file at rng.Start,
// rejecting out-of-order chunks with invalid (spec §4.1 step 2). When the
// chunk completes the declared total, the temp file is finalized into a
// versioned object via the same path used by PutObject.
func (s *Store) AppendChunk(sessionID string, rng names.ContentRange, chunk io.Reader, pre Preconditions) (AppendResult, error) {
	var sess ResumableSession
	err := s.kv.Update(func(tx *kv.Tx) error {
		if err := kv.GetJSON(tx, sessionKey(sessionID), &sess); err != nil {
			return kv.NotFoundOr(err, "resumable session %q not found", sessionID)
		}
		if rng.Start != sess.CurrentOffset {
			return cmnerr.Invalidf("objectstore: resumable chunk start %d does not match current offset %d", rng.Start, sess.CurrentOffset)
		}
		return nil
	})
	if err != nil {
		return AppendResult{}, err
	}

	f, err := os.OpenFile(sess.TempPath, os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return AppendResult{}, cmnerr.Internalf(err, "objectstore: opening resumable temp file")
	}
	n, copyErr := io.Copy(f, chunk)
	f.Close()
	if copyErr != nil {
		return AppendResult{}, cmnerr.Internalf(copyErr, "objectstore: appending to resumable temp file")
	}
	newOffset := sess.CurrentOffset + n

	err = s.kv.Update(func(tx *kv.Tx) error {
		sess.CurrentOffset = newOffset
		return kv.SetJSON(tx, sessionKey(sessionID), &sess)
	})
	if err != nil {
		return AppendResult{}, err
	}

	total := rng.Total
	done := total >= 0 && newOffset == total
	if !done {
		return AppendResult{Done: false, CommittedRange: names.ContentRange{Start: 0, End: newOffset - 1, Total: total}}, nil
	}

	obj, err := s.finalizeResumable(sess, pre)
	if err != nil {
		return AppendResult{}, err
	}
	return AppendResult{Done: true, Object: obj}, nil
}

func (s *Store) finalizeResumable(sess ResumableSession, pre Preconditions) (Object, error) {
	f, err := os.Open(sess.TempPath)
	if err != nil {
		return Object{}, cmnerr.Internalf(err, "objectstore: reopening resumable temp file")
	}
	defer f.Close()

	obj, err := s.PutObject(PutInput{
		ProjectID:     sess.ProjectID,
		BucketName:    sess.BucketName,
		ObjectName:    sess.ObjectName,
		ContentType:   sess.PendingContentType,
		Metadata:      sess.PendingMetadata,
		Preconditions: pre,
	}, f)
	if err != nil {
		return Object{}, err
	}
	_ = s.kv.Update(func(tx *kv.Tx) error {
		return tx.Delete(sessionKey(sess.SessionID))
	})
	_ = os.Remove(sess.TempPath)
	return obj, nil
}

// AbortResumableSession discards an in-progress session and its temp file
// (spec §5: "explicitly terminable by an abort endpoint").
func (s *Store) AbortResumableSession(sessionID string) error {
	var sess ResumableSession
	err := s.kv.Update(func(tx *kv.Tx) error {
		if err := kv.GetJSON(tx, sessionKey(sessionID), &sess); err != nil {
			return kv.NotFoundOr(err, "resumable session %q not found", sessionID)
		}
		return tx.Delete(sessionKey(sessionID))
	})
	if err != nil {
		return err
	}
	_ = os.Remove(sess.TempPath)
	return nil
}
