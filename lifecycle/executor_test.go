package lifecycle

import (
	"strings"
	"testing"
	"time"

	"github.com/cloudcore/cloudcore/kv"
	"github.com/cloudcore/cloudcore/objectstore"
)

func newTestStore(t *testing.T) *objectstore.Store {
	t.Helper()
	store, err := kv.Open("")
	if err != nil {
		t.Fatalf("kv.Open() error = %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return objectstore.New(store, t.TempDir())
}

// TestTickDeletesAgedObjects covers spec §4.6's Delete action and its
// idempotence ("re-running with the same cutoff does nothing").
func TestTickDeletesAgedObjects(t *testing.T) {
	store := newTestStore(t)
	if _, err := store.CreateBucket(objectstore.CreateBucketInput{Name: "b1", ProjectID: "p1"}); err != nil {
		t.Fatalf("CreateBucket() error = %v", err)
	}
	if _, err := store.PutObject(objectstore.PutInput{ProjectID: "p1", BucketName: "b1", ObjectName: "old"}, strings.NewReader("x")); err != nil {
		t.Fatalf("PutObject() error = %v", err)
	}
	fixedNow := time.Now().UTC()

	if _, err := store.PatchBucket("p1", "b1", objectstore.PatchBucketInput{
		LifecycleRules: []objectstore.LifecycleRule{{Action: objectstore.LifecycleDelete, AgeDays: 30}},
	}); err != nil {
		t.Fatalf("PatchBucket() error = %v", err)
	}

	exec := New(store, time.Minute, WithClock(func() time.Time { return fixedNow.Add(31 * 24 * time.Hour) }))
	exec.tick()

	_, err := store.GetObject("p1", "b1", "old", 0)
	if err == nil {
		t.Fatalf("GetObject() after lifecycle tick = nil error, want notFound (object should be deleted)")
	}

	// Re-running with the same cutoff is a no-op: nothing left to delete,
	// no error from the second pass.
	exec.tick()
}

// TestTickArchivesAgedObjects covers spec §4.6's Archive action: bumps
// metageneration, leaves generation untouched (§9's open-question
// resolution).
func TestTickArchivesAgedObjects(t *testing.T) {
	store := newTestStore(t)
	if _, err := store.CreateBucket(objectstore.CreateBucketInput{Name: "b1", ProjectID: "p1"}); err != nil {
		t.Fatalf("CreateBucket() error = %v", err)
	}
	before, err := store.PutObject(objectstore.PutInput{ProjectID: "p1", BucketName: "b1", ObjectName: "old"}, strings.NewReader("x"))
	if err != nil {
		t.Fatalf("PutObject() error = %v", err)
	}

	if _, err := store.PatchBucket("p1", "b1", objectstore.PatchBucketInput{
		LifecycleRules: []objectstore.LifecycleRule{{Action: objectstore.LifecycleArchive, AgeDays: 7}},
	}); err != nil {
		t.Fatalf("PatchBucket() error = %v", err)
	}

	exec := New(store, time.Minute, WithClock(func() time.Time { return time.Now().UTC().Add(8 * 24 * time.Hour) }))
	exec.tick()

	after, err := store.GetObject("p1", "b1", "old", 0)
	if err != nil {
		t.Fatalf("GetObject() error = %v", err)
	}
	if after.StorageClass != "ARCHIVE" {
		t.Fatalf("StorageClass after archive tick = %q, want ARCHIVE", after.StorageClass)
	}
	if after.Generation != before.Generation {
		t.Fatalf("Generation changed by archive tick: %d -> %d, want unchanged", before.Generation, after.Generation)
	}
	if after.Metageneration != before.Metageneration+1 {
		t.Fatalf("Metageneration after archive tick = %d, want %d", after.Metageneration, before.Metageneration+1)
	}
}

// TestTickSkipsBucketsWithoutRules ensures buckets with no lifecycle
// rules are left untouched.
func TestTickSkipsBucketsWithoutRules(t *testing.T) {
	store := newTestStore(t)
	if _, err := store.CreateBucket(objectstore.CreateBucketInput{Name: "b1", ProjectID: "p1"}); err != nil {
		t.Fatalf("CreateBucket() error = %v", err)
	}
	if _, err := store.PutObject(objectstore.PutInput{ProjectID: "p1", BucketName: "b1", ObjectName: "f"}, strings.NewReader("x")); err != nil {
		t.Fatalf("PutObject() error = %v", err)
	}

	exec := New(store, time.Minute, WithClock(func() time.Time { return time.Now().UTC().Add(365 * 24 * time.Hour) }))
	exec.tick()

	if _, err := store.GetObject("p1", "b1", "f", 0); err != nil {
		t.Fatalf("GetObject() after tick with no rules = %v, want object untouched", err)
	}
}
