package operations

import (
	"errors"
	"testing"

	"github.com/cloudcore/cloudcore/cmn/cmnerr"
	"github.com/cloudcore/cloudcore/kv"
)

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	store, err := kv.Open("")
	if err != nil {
		t.Fatalf("kv.Open() error = %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return New(store)
}

func TestWrapSuccessIsDone(t *testing.T) {
	r := newTestRegistry(t)
	op, err := r.Wrap("p1", ScopeZone, "us-central1-a", "insert", "link", func() error { return nil })
	if err != nil {
		t.Fatalf("Wrap() error = %v", err)
	}
	if op.Status != "DONE" || op.Progress != 100 {
		t.Fatalf("Wrap() op = %+v, want Status=DONE Progress=100", op)
	}
	if op.ID == "" {
		t.Fatalf("Wrap() did not assign an operation id")
	}

	got, err := r.Get("p1", op.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.ID != op.ID {
		t.Fatalf("Get() = %+v, want matching id %s", got, op.ID)
	}
}

func TestWrapFailurePersistsErrorButReturnsIt(t *testing.T) {
	r := newTestRegistry(t)
	domainErr := cmnerr.Conflictf("instance %q already exists", "vm1")

	op, err := r.Wrap("p1", ScopeZone, "us-central1-a", "insert", "link", func() error { return domainErr })
	if err == nil {
		t.Fatalf("Wrap() error = nil, want the domain error surfaced")
	}
	if op.ErrorCode != string(cmnerr.Conflict) {
		t.Fatalf("Wrap() persisted ErrorCode = %q, want %q", op.ErrorCode, cmnerr.Conflict)
	}

	got, getErr := r.Get("p1", op.ID)
	if getErr != nil {
		t.Fatalf("Get() error = %v", getErr)
	}
	if got.ErrorMessage == "" {
		t.Fatalf("Get() did not persist the failed operation's error message")
	}
}

func TestWrapInternalErrorForPlainGoError(t *testing.T) {
	r := newTestRegistry(t)
	op, err := r.Wrap("p1", ScopeGlobal, "", "insert", "link", func() error { return errors.New("boom") })
	if err == nil {
		t.Fatalf("Wrap() error = nil, want surfaced error")
	}
	if op.ErrorCode != "internalError" {
		t.Fatalf("Wrap() ErrorCode for a plain error = %q, want internalError", op.ErrorCode)
	}
}

func TestListFiltersByScope(t *testing.T) {
	r := newTestRegistry(t)
	r.Wrap("p1", ScopeZone, "us-central1-a", "insert", "l1", func() error { return nil })
	r.Wrap("p1", ScopeZone, "us-east1-b", "insert", "l2", func() error { return nil })
	r.Wrap("p1", ScopeGlobal, "", "insert", "l3", func() error { return nil })

	all, err := r.List("p1", "", "")
	if err != nil {
		t.Fatalf("List(all) error = %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("List(all) returned %d, want 3", len(all))
	}

	zoned, err := r.List("p1", ScopeZone, "us-central1-a")
	if err != nil {
		t.Fatalf("List(zone) error = %v", err)
	}
	if len(zoned) != 1 {
		t.Fatalf("List(zone) returned %d, want 1", len(zoned))
	}
}

func TestGetNotFound(t *testing.T) {
	r := newTestRegistry(t)
	_, err := r.Get("p1", "ghost")
	e, ok := cmnerr.As(err)
	if !ok || e.Kind != cmnerr.NotFound {
		t.Fatalf("Get(ghost) = %v, want cmnerr.NotFound", err)
	}
}

func TestOperationToWire(t *testing.T) {
	op := Operation{
		ID: "op1", OperationType: "insert", TargetLink: "link", Status: "DONE", Progress: 100,
		ErrorCode: string(cmnerr.Conflict), ErrorMessage: "already exists",
	}
	w := op.ToWire()
	if w.Name != "op1" {
		t.Fatalf("ToWire() Name = %q, want op1", w.Name)
	}
	if w.Error == nil || len(w.Error.Errors) != 1 || w.Error.Errors[0].Code != string(cmnerr.Conflict) {
		t.Fatalf("ToWire() Error = %+v, want one error carrying the conflict code", w.Error)
	}
}
