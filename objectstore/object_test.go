package objectstore

import (
	"bytes"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/cloudcore/cloudcore/cmn/cmnerr"
	"github.com/cloudcore/cloudcore/cmn/names"
	"github.com/cloudcore/cloudcore/kv"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := kv.Open("")
	if err != nil {
		t.Fatalf("kv.Open() error = %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return New(store, t.TempDir())
}

func mustCreateBucket(t *testing.T, s *Store, project, name string, versioning bool) Bucket {
	t.Helper()
	b, err := s.CreateBucket(CreateBucketInput{Name: name, ProjectID: project, Versioning: versioning})
	if err != nil {
		t.Fatalf("CreateBucket(%q) error = %v", name, err)
	}
	return b
}

func mustPut(t *testing.T, s *Store, project, bucket, name, content string, pre Preconditions) Object {
	t.Helper()
	obj, err := s.PutObject(PutInput{
		ProjectID:     project,
		BucketName:    bucket,
		ObjectName:    name,
		ContentType:   "text/plain",
		Preconditions: pre,
	}, strings.NewReader(content))
	if err != nil {
		t.Fatalf("PutObject(%q) error = %v", name, err)
	}
	return obj
}

func readAll(t *testing.T, s *Store, project, bucket, name string, generation int64) string {
	t.Helper()
	_, rc, err := s.OpenObjectContent(project, bucket, name, generation)
	if err != nil {
		t.Fatalf("OpenObjectContent(%q, gen=%d) error = %v", name, generation, err)
	}
	defer rc.Close()
	b, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("reading content: %v", err)
	}
	return string(b)
}

// TestVersioningRoundTrip exercises spec §8 scenario 1: versioned upload,
// overwrite, pinned-generation read, delete-latest promotion.
func TestVersioningRoundTrip(t *testing.T) {
	s := newTestStore(t)
	mustCreateBucket(t, s, "p1", "b1", true)

	v1 := mustPut(t, s, "p1", "b1", "f", "A", Preconditions{})
	if v1.Generation != 1 {
		t.Fatalf("first upload generation = %d, want 1", v1.Generation)
	}

	v2 := mustPut(t, s, "p1", "b1", "f", "BB", Preconditions{})
	if v2.Generation != 2 {
		t.Fatalf("second upload generation = %d, want 2", v2.Generation)
	}

	if got := readAll(t, s, "p1", "b1", "f", 0); got != "BB" {
		t.Fatalf("GET latest = %q, want %q", got, "BB")
	}
	if got := readAll(t, s, "p1", "b1", "f", 1); got != "A" {
		t.Fatalf("GET generation=1 = %q, want %q", got, "A")
	}

	if err := s.DeleteObject("p1", "b1", "f", 2); err != nil {
		t.Fatalf("DeleteObject(generation=2) error = %v", err)
	}
	if got := readAll(t, s, "p1", "b1", "f", 0); got != "A" {
		t.Fatalf("GET latest after deleting gen 2 = %q, want %q (promoted gen 1)", got, "A")
	}
	obj, err := s.GetObject("p1", "b1", "f", 0)
	if err != nil {
		t.Fatalf("GetObject() error = %v", err)
	}
	if obj.Generation != 1 || !obj.IsLatest {
		t.Fatalf("promoted object = %+v, want generation=1 isLatest=true", obj)
	}
}

// TestPreconditionGuard exercises spec §8 scenario 2: ifGenerationMatch
// succeeds once then fails conditionNotMet on replay.
func TestPreconditionGuard(t *testing.T) {
	s := newTestStore(t)
	mustCreateBucket(t, s, "p1", "b1", false)

	mustPut(t, s, "p1", "b1", "f", "x", Preconditions{})

	one := int64(1)
	if _, err := s.PutObject(PutInput{
		ProjectID: "p1", BucketName: "b1", ObjectName: "f",
		Preconditions: Preconditions{IfGenerationMatch: &one},
	}, strings.NewReader("y")); err != nil {
		t.Fatalf("PutObject(ifGenerationMatch=1) first call error = %v", err)
	}

	_, err := s.PutObject(PutInput{
		ProjectID: "p1", BucketName: "b1", ObjectName: "f",
		Preconditions: Preconditions{IfGenerationMatch: &one},
	}, strings.NewReader("z"))
	e, ok := cmnerr.As(err)
	if !ok || e.Kind != cmnerr.ConditionNotMet {
		t.Fatalf("PutObject(ifGenerationMatch=1) replay = %v, want cmnerr.ConditionNotMet", err)
	}
}

// TestIfGenerationMatchZeroRequiresAbsence covers ifGenerationMatch=0's
// create-only semantics (spec §4.1).
func TestIfGenerationMatchZeroRequiresAbsence(t *testing.T) {
	s := newTestStore(t)
	mustCreateBucket(t, s, "p1", "b1", false)

	zero := int64(0)
	if _, err := s.PutObject(PutInput{
		ProjectID: "p1", BucketName: "b1", ObjectName: "f",
		Preconditions: Preconditions{IfGenerationMatch: &zero},
	}, strings.NewReader("x")); err != nil {
		t.Fatalf("first create with ifGenerationMatch=0 error = %v", err)
	}

	_, err := s.PutObject(PutInput{
		ProjectID: "p1", BucketName: "b1", ObjectName: "f",
		Preconditions: Preconditions{IfGenerationMatch: &zero},
	}, strings.NewReader("y"))
	e, ok := cmnerr.As(err)
	if !ok || e.Kind != cmnerr.ConditionNotMet {
		t.Fatalf("second create with ifGenerationMatch=0 = %v, want cmnerr.ConditionNotMet", err)
	}
}

// TestResumableUpload exercises spec §8 scenario 3.
func TestResumableUpload(t *testing.T) {
	s := newTestStore(t)
	mustCreateBucket(t, s, "p1", "b1", false)

	sessionID, err := s.InitResumableSession(InitResumableInput{
		ProjectID: "p1", BucketName: "b1", ObjectName: "big.bin",
		ContentType: "application/octet-stream", TotalSize: 10,
	})
	if err != nil {
		t.Fatalf("InitResumableSession() error = %v", err)
	}

	res, err := s.AppendChunk(sessionID, names.ContentRange{Start: 0, End: 4, Total: 10}, strings.NewReader("hello"), Preconditions{})
	if err != nil {
		t.Fatalf("AppendChunk(0-4) error = %v", err)
	}
	if res.Done {
		t.Fatalf("AppendChunk(0-4) Done = true, want false (more bytes expected)")
	}
	if res.CommittedRange.End != 4 {
		t.Fatalf("AppendChunk(0-4) committed end = %d, want 4", res.CommittedRange.End)
	}

	res, err = s.AppendChunk(sessionID, names.ContentRange{Start: 5, End: 9, Total: 10}, strings.NewReader("world"), Preconditions{})
	if err != nil {
		t.Fatalf("AppendChunk(5-9) error = %v", err)
	}
	if !res.Done {
		t.Fatalf("AppendChunk(5-9) Done = false, want true")
	}

	got := readAll(t, s, "p1", "b1", "big.bin", 0)
	if got != "helloworld" {
		t.Fatalf("finalized content = %q, want %q", got, "helloworld")
	}
	if res.Object.MD5 != "fc5e038d38a57032085441e7fe7010b0" {
		t.Fatalf("finalized md5 = %q, want fc5e038d38a57032085441e7fe7010b0", res.Object.MD5)
	}
}

// TestResumableOutOfOrderChunkRejected covers spec §4.1 step 2's
// start-offset check.
func TestResumableOutOfOrderChunkRejected(t *testing.T) {
	s := newTestStore(t)
	mustCreateBucket(t, s, "p1", "b1", false)
	sessionID, err := s.InitResumableSession(InitResumableInput{
		ProjectID: "p1", BucketName: "b1", ObjectName: "big.bin", TotalSize: 10,
	})
	if err != nil {
		t.Fatalf("InitResumableSession() error = %v", err)
	}
	_, err = s.AppendChunk(sessionID, names.ContentRange{Start: 5, End: 9, Total: 10}, strings.NewReader("world"), Preconditions{})
	e, ok := cmnerr.As(err)
	if !ok || e.Kind != cmnerr.Invalid {
		t.Fatalf("AppendChunk with wrong start = %v, want cmnerr.Invalid", err)
	}
}

// TestHashIntegrity covers spec §8 invariant 7: md5/crc32c match stored
// values and crc32c differs from a plain crc32 over the same bytes.
func TestHashIntegrity(t *testing.T) {
	s := newTestStore(t)
	mustCreateBucket(t, s, "p1", "b1", false)
	obj := mustPut(t, s, "p1", "b1", "f", "helloworld", Preconditions{})

	if obj.MD5 != "fc5e038d38a57032085441e7fe7010b0" {
		t.Fatalf("md5 = %q, want fc5e038d38a57032085441e7fe7010b0", obj.MD5)
	}
	if obj.CRC32C != "Vsu0gA==" {
		t.Fatalf("crc32c = %q, want Vsu0gA==", obj.CRC32C)
	}
}

// TestPathTraversalRejected covers spec §8 invariant 8.
func TestPathTraversalRejected(t *testing.T) {
	s := newTestStore(t)
	mustCreateBucket(t, s, "p1", "b1", false)

	for _, bad := range []string{"../escape", "/abs/path", "a/../../b", "a\\b"} {
		_, err := s.PutObject(PutInput{
			ProjectID: "p1", BucketName: "b1", ObjectName: bad,
		}, strings.NewReader("x"))
		if err == nil {
			t.Fatalf("PutObject(name=%q) = nil error, want rejection", bad)
		}
	}
}

// TestMetadataUpdateBumpsMetagenerationOnly covers spec §4.1's
// metadata-only update semantics.
func TestMetadataUpdateBumpsMetagenerationOnly(t *testing.T) {
	s := newTestStore(t)
	mustCreateBucket(t, s, "p1", "b1", false)
	obj := mustPut(t, s, "p1", "b1", "f", "x", Preconditions{})

	updated, err := s.PatchObjectMetadata("p1", "b1", "f", PatchMetadataInput{
		Metadata: map[string]string{"a": "b"},
	})
	if err != nil {
		t.Fatalf("PatchObjectMetadata() error = %v", err)
	}
	if updated.Generation != obj.Generation {
		t.Fatalf("PatchObjectMetadata() generation changed: %d -> %d", obj.Generation, updated.Generation)
	}
	if updated.Metageneration != obj.Metageneration+1 {
		t.Fatalf("PatchObjectMetadata() metageneration = %d, want %d", updated.Metageneration, obj.Metageneration+1)
	}
}

// TestCopyObjectPreservesMetadata covers spec §4.1's copy semantics.
func TestCopyObjectPreservesMetadata(t *testing.T) {
	s := newTestStore(t)
	mustCreateBucket(t, s, "p1", "src", false)
	mustCreateBucket(t, s, "p1", "dst", false)
	mustPut(t, s, "p1", "src", "f", "payload", Preconditions{})

	copied, err := s.CopyObject("p1", "src", "f", 0, "dst", "g")
	if err != nil {
		t.Fatalf("CopyObject() error = %v", err)
	}
	if copied.ContentType != "text/plain" {
		t.Fatalf("CopyObject() content type = %q, want text/plain", copied.ContentType)
	}
	if got := readAll(t, s, "p1", "dst", "g", 0); got != "payload" {
		t.Fatalf("copied content = %q, want %q", got, "payload")
	}
}

// TestCopyObjectPreservesSourceStorageClass covers spec §4.1's copy
// semantics when source and destination buckets have different default
// storage classes: the copy must carry the source object's class, not
// stamp the destination bucket's default.
func TestCopyObjectPreservesSourceStorageClass(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.CreateBucket(CreateBucketInput{Name: "src", ProjectID: "p1", StorageClass: "ARCHIVE"}); err != nil {
		t.Fatalf("CreateBucket(src) error = %v", err)
	}
	if _, err := s.CreateBucket(CreateBucketInput{Name: "dst", ProjectID: "p1", StorageClass: "STANDARD"}); err != nil {
		t.Fatalf("CreateBucket(dst) error = %v", err)
	}
	mustPut(t, s, "p1", "src", "f", "payload", Preconditions{})

	copied, err := s.CopyObject("p1", "src", "f", 0, "dst", "g")
	if err != nil {
		t.Fatalf("CopyObject() error = %v", err)
	}
	if copied.StorageClass != "ARCHIVE" {
		t.Fatalf("CopyObject() storage class = %q, want ARCHIVE (preserved from source)", copied.StorageClass)
	}
}

// TestDeleteWithoutGenerationRemovesAllVersions covers the unqualified
// delete path of spec §4.1.
func TestDeleteWithoutGenerationRemovesAllVersions(t *testing.T) {
	s := newTestStore(t)
	mustCreateBucket(t, s, "p1", "b1", true)
	mustPut(t, s, "p1", "b1", "f", "A", Preconditions{})
	mustPut(t, s, "p1", "b1", "f", "BB", Preconditions{})

	if err := s.DeleteObject("p1", "b1", "f", 0); err != nil {
		t.Fatalf("DeleteObject() error = %v", err)
	}
	_, err := s.GetObject("p1", "b1", "f", 0)
	e, ok := cmnerr.As(err)
	if !ok || e.Kind != cmnerr.NotFound {
		t.Fatalf("GetObject after full delete = %v, want cmnerr.NotFound", err)
	}
}

// TestBucketDeleteRequiresEmpty covers spec §4.1's non-empty-bucket guard.
func TestBucketDeleteRequiresEmpty(t *testing.T) {
	s := newTestStore(t)
	mustCreateBucket(t, s, "p1", "b1", false)
	mustPut(t, s, "p1", "b1", "f", "x", Preconditions{})

	err := s.DeleteBucket("p1", "b1")
	e, ok := cmnerr.As(err)
	if !ok || e.Kind != cmnerr.Conflict {
		t.Fatalf("DeleteBucket(non-empty) = %v, want cmnerr.Conflict", err)
	}

	if err := s.DeleteObject("p1", "b1", "f", 0); err != nil {
		t.Fatalf("DeleteObject() error = %v", err)
	}
	if err := s.DeleteBucket("p1", "b1"); err != nil {
		t.Fatalf("DeleteBucket(empty) error = %v", err)
	}
}

// TestBucketNameReusableAcrossProjects covers spec §8 scenario 6.
func TestBucketNameReusableAcrossProjects(t *testing.T) {
	s := newTestStore(t)
	mustCreateBucket(t, s, "p1", "shared", false)
	mustCreateBucket(t, s, "p2", "shared", false)

	_, err := s.CreateBucket(CreateBucketInput{Name: "shared", ProjectID: "p1"})
	e, ok := cmnerr.As(err)
	if !ok || e.Kind != cmnerr.Conflict {
		t.Fatalf("CreateBucket(duplicate in same project) = %v, want cmnerr.Conflict", err)
	}
}

// TestListObjectsWithDelimiter covers spec §4.1's prefix/delimiter
// folding into Prefixes entries.
func TestListObjectsWithDelimiter(t *testing.T) {
	s := newTestStore(t)
	mustCreateBucket(t, s, "p1", "b1", false)
	mustPut(t, s, "p1", "b1", "a/b.txt", "1", Preconditions{})
	mustPut(t, s, "p1", "b1", "a/c.txt", "2", Preconditions{})
	mustPut(t, s, "p1", "b1", "top.txt", "3", Preconditions{})

	res, err := s.ListObjects(ListInput{ProjectID: "p1", BucketName: "b1", Delimiter: "/"})
	if err != nil {
		t.Fatalf("ListObjects() error = %v", err)
	}
	if len(res.Prefixes) != 1 || res.Prefixes[0] != "a/" {
		t.Fatalf("ListObjects() prefixes = %v, want [a/]", res.Prefixes)
	}
	if len(res.Items) != 1 || res.Items[0].Name != "top.txt" {
		t.Fatalf("ListObjects() items = %v, want [top.txt]", res.Items)
	}
}

// TestSignedURLVerification covers spec §8's "timestamp == now succeeds;
// now+1 fails" boundary.
func TestSignedURLVerification(t *testing.T) {
	secret := "shh"
	now, err := time.Parse(time.RFC3339, "2026-07-31T00:00:00Z")
	if err != nil {
		t.Fatalf("parsing fixture time: %v", err)
	}
	sig := SignURL(secret, "GET", "/storage/v1/b/b1/o/f", now.Unix())

	if err := VerifySignedURL(secret, "GET", "/storage/v1/b/b1/o/f", SignedURLParams{
		Algorithm: "GOOG4-HMAC-SHA256", Timestamp: now.Unix(), Signature: sig,
	}, now); err != nil {
		t.Fatalf("VerifySignedURL(now==timestamp) error = %v, want nil", err)
	}

	if err := VerifySignedURL(secret, "GET", "/storage/v1/b/b1/o/f", SignedURLParams{
		Algorithm: "GOOG4-HMAC-SHA256", Timestamp: now.Unix(), Signature: sig,
	}, now.Add(time.Second)); err == nil {
		t.Fatalf("VerifySignedURL(now>timestamp) = nil, want expired error")
	}

	if err := VerifySignedURL(secret, "GET", "/storage/v1/b/b1/o/f", SignedURLParams{
		Algorithm: "GOOG4-HMAC-SHA256", Timestamp: now.Unix(), Signature: "wrong",
	}, now); err == nil {
		t.Fatalf("VerifySignedURL(bad signature) = nil, want mismatch error")
	}
}

func TestCRC32CDiffersFromCRC32(t *testing.T) {
	var buf bytes.Buffer
	hw := NewHashingWriter(&buf)
	hw.Write([]byte("helloworld"))
	if hw.CRC32CBase64() == "" {
		t.Fatalf("CRC32CBase64() empty")
	}
	if hw.CRC32CBase64() != "Vsu0gA==" {
		t.Fatalf("CRC32CBase64() = %q, want Vsu0gA==", hw.CRC32CBase64())
	}
}
