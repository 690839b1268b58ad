// Package kv provides the transactional, secondary-indexed metadata store
// spec §1 declares an external collaborator ("Persistent key-value
// metadata store (assume a transactional KV with secondary indices)").
// Since the module must actually run, this package gives that assumption
// a concrete, in-process implementation over tidwall/buntdb — the only
// embeddable transactional KV in the retrieval pack, and already a direct
// dependency of the teacher (github.com/NVIDIA/aistore's go.mod).
package kv

import (
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"github.com/tidwall/buntdb"

	"github.com/cloudcore/cloudcore/cmn/cmnerr"
)

// ErrNotFound is returned by Tx.Get when the key is absent; callers
// typically translate it to a cmnerr.NotFound at the service layer where
// the resource name is known.
var ErrNotFound = errors.New("kv: key not found")

// Store is a transactional, secondary-indexed KV. Path == "" opens an
// in-memory store (used by tests); a file path opens a persisted one.
type Store struct {
	db *buntdb.DB
}

func Open(path string) (*Store, error) {
	if path == "" {
		path = ":memory:"
	}
	db, err := buntdb.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "kv: opening %s", path)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// CreateIndex builds a secondary index over keys matching pattern,
// ordered by less. Index creation is a one-time startup step (spec §3's
// "transactional KV with secondary indices"), mirrored here onto
// buntdb's native CreateIndex/pattern mechanism.
func (s *Store) CreateIndex(name, pattern string, less ...func(a, b string) bool) error {
	fns := less
	if len(fns) == 0 {
		fns = []func(a, b string) bool{buntdb.IndexString}
	}
	if err := s.db.CreateIndex(name, pattern, fns...); err != nil && err != buntdb.ErrIndexExists {
		return errors.Wrapf(err, "kv: creating index %s", name)
	}
	return nil
}

// Tx is the transaction handle passed to Update/View closures.
type Tx struct {
	tx *buntdb.Tx
}

// Update runs fn inside a read-write transaction; a returned error rolls
// back every Set/Delete performed inside fn (spec §5: "mutations [go] via
// transactions with row-level locks").
func (s *Store) Update(fn func(tx *Tx) error) error {
	err := s.db.Update(func(btx *buntdb.Tx) error {
		return fn(&Tx{tx: btx})
	})
	return translate(err)
}

// View runs fn inside a read-only, snapshot-isolated transaction (spec §5).
func (s *Store) View(fn func(tx *Tx) error) error {
	err := s.db.View(func(btx *buntdb.Tx) error {
		return fn(&Tx{tx: btx})
	})
	return translate(err)
}

func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, buntdb.ErrNotFound) {
		return ErrNotFound
	}
	return err
}

func (t *Tx) Set(key, value string) error {
	_, _, err := t.tx.Set(key, value, nil)
	return err
}

func (t *Tx) Get(key string) (string, error) {
	v, err := t.tx.Get(key)
	if err == buntdb.ErrNotFound {
		return "", ErrNotFound
	}
	return v, err
}

func (t *Tx) Delete(key string) error {
	_, err := t.tx.Delete(key)
	if err == buntdb.ErrNotFound {
		return ErrNotFound
	}
	return err
}

func (t *Tx) Has(key string) bool {
	_, err := t.tx.Get(key)
	return err == nil
}

// AscendPrefix iterates every key/value with the given prefix in
// ascending key order, stopping early if iter returns false.
func (t *Tx) AscendPrefix(prefix string, iter func(key, value string) bool) error {
	err := t.tx.AscendGreaterOrEqual("", prefix, func(key, value string) bool {
		if !strings.HasPrefix(key, prefix) {
			return false
		}
		return iter(key, value)
	})
	if err == buntdb.ErrNotFound {
		return nil
	}
	return err
}

// AscendIndex iterates an index created with CreateIndex, filtered to keys
// with the given prefix.
func (t *Tx) AscendIndex(index, prefix string, iter func(key, value string) bool) error {
	err := t.tx.Ascend(index, func(key, value string) bool {
		if prefix != "" && !strings.HasPrefix(key, prefix) {
			return true // keep scanning; index order isn't prefix order
		}
		return iter(key, value)
	})
	if err == buntdb.ErrNotFound {
		return nil
	}
	return err
}

// SetJSON/GetJSON are the encode/decode helpers every service package uses
// to store a Go struct as a KV value (spec §3's records), via
// json-iterator rather than encoding/json, matching the rest of the wire
// layer's JSON library.
func SetJSON(tx *Tx, key string, v interface{}) error {
	b, err := jsoniter.Marshal(v)
	if err != nil {
		return err
	}
	return tx.Set(key, string(b))
}

func GetJSON(tx *Tx, key string, v interface{}) error {
	s, err := tx.Get(key)
	if err != nil {
		return err
	}
	return jsoniter.Unmarshal([]byte(s), v)
}

// NotFoundOr translates a kv.ErrNotFound into a cmnerr.NotFound carrying a
// resource-specific message, leaving any other error (a real I/O failure)
// as an internalError.
func NotFoundOr(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNotFound) {
		return cmnerr.NotFoundf(format, args...)
	}
	return cmnerr.Internalf(err, format, args...)
}
