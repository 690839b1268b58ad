package kv

import (
	"errors"
	"testing"
)

func openMem(t *testing.T) *Store {
	t.Helper()
	s, err := Open("")
	if err != nil {
		t.Fatalf("Open(:memory:) error = %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSetGetDelete(t *testing.T) {
	s := openMem(t)

	if err := s.Update(func(tx *Tx) error { return tx.Set("a", "1") }); err != nil {
		t.Fatalf("Update(Set) error = %v", err)
	}

	var got string
	if err := s.View(func(tx *Tx) error {
		v, err := tx.Get("a")
		got = v
		return err
	}); err != nil {
		t.Fatalf("View(Get) error = %v", err)
	}
	if got != "1" {
		t.Fatalf("Get(a) = %q, want %q", got, "1")
	}

	if err := s.Update(func(tx *Tx) error { return tx.Delete("a") }); err != nil {
		t.Fatalf("Update(Delete) error = %v", err)
	}

	err := s.View(func(tx *Tx) error {
		_, err := tx.Get("a")
		return err
	})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get after delete = %v, want ErrNotFound", err)
	}
}

func TestUpdateRollsBackOnError(t *testing.T) {
	s := openMem(t)
	boom := errors.New("boom")

	err := s.Update(func(tx *Tx) error {
		if err := tx.Set("k", "v"); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("Update() error = %v, want boom", err)
	}

	err = s.View(func(tx *Tx) error {
		_, err := tx.Get("k")
		return err
	})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("key set inside a failed Update was not rolled back: %v", err)
	}
}

func TestAscendPrefix(t *testing.T) {
	s := openMem(t)
	s.Update(func(tx *Tx) error {
		tx.Set("bucket/a/1", "x")
		tx.Set("bucket/a/2", "y")
		tx.Set("bucket/b/1", "z")
		return nil
	})

	var keys []string
	s.View(func(tx *Tx) error {
		return tx.AscendPrefix("bucket/a/", func(key, value string) bool {
			keys = append(keys, key)
			return true
		})
	})
	if len(keys) != 2 {
		t.Fatalf("AscendPrefix returned %d keys, want 2: %v", len(keys), keys)
	}
}

type record struct {
	Name string `json:"name"`
	N    int    `json:"n"`
}

func TestSetGetJSON(t *testing.T) {
	s := openMem(t)
	in := record{Name: "bucket1", N: 42}

	if err := s.Update(func(tx *Tx) error { return SetJSON(tx, "r1", in) }); err != nil {
		t.Fatalf("SetJSON() error = %v", err)
	}

	var out record
	if err := s.View(func(tx *Tx) error { return GetJSON(tx, "r1", &out) }); err != nil {
		t.Fatalf("GetJSON() error = %v", err)
	}
	if out != in {
		t.Fatalf("GetJSON() = %+v, want %+v", out, in)
	}
}

func TestNotFoundOr(t *testing.T) {
	if err := NotFoundOr(nil, "x"); err != nil {
		t.Fatalf("NotFoundOr(nil) = %v, want nil", err)
	}

	err := NotFoundOr(ErrNotFound, "bucket %q not found", "b1")
	if err == nil || err.Error() != `bucket "b1" not found` {
		t.Fatalf("NotFoundOr(ErrNotFound) = %v", err)
	}

	other := errors.New("disk error")
	err = NotFoundOr(other, "reading %q", "b1")
	if err == nil {
		t.Fatalf("NotFoundOr(other) = nil, want wrapped internal error")
	}
}
