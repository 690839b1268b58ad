package cmnerr

import (
	"errors"
	"net/http"
	"testing"
)

func TestKindToHTTPCode(t *testing.T) {
	cases := []struct {
		kind Kind
		code int
	}{
		{Invalid, http.StatusBadRequest},
		{NotFound, http.StatusNotFound},
		{Conflict, http.StatusConflict},
		{ConditionNotMet, http.StatusPreconditionFailed},
		{Internal, http.StatusInternalServerError},
		{Unsupported, http.StatusNotImplemented},
	}
	for _, c := range cases {
		e := New(c.kind, "boom")
		if got := e.Code(); got != c.code {
			t.Errorf("Kind %s: Code() = %d, want %d", c.kind, got, c.code)
		}
		if e.Reason() != string(c.kind) {
			t.Errorf("Kind %s: Reason() = %q, want %q", c.kind, e.Reason(), c.kind)
		}
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := errors.New("disk full")
	e := Wrap(Internal, cause, "writing object %s", "foo.txt")
	if e.Error() != "writing object foo.txt" {
		t.Fatalf("Error() = %q", e.Error())
	}
	if !errors.Is(e, cause) {
		t.Fatalf("Wrap()'d error does not unwrap to cause")
	}
}

func TestAs(t *testing.T) {
	err := NotFoundf("bucket %q not found", "x")
	e, ok := As(err)
	if !ok {
		t.Fatalf("As() ok = false, want true")
	}
	if e.Kind != NotFound {
		t.Fatalf("As() Kind = %v, want NotFound", e.Kind)
	}

	if _, ok := As(errors.New("plain")); ok {
		t.Fatalf("As() ok = true for a non-cmnerr error")
	}
}
