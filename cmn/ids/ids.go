// Package ids provides identifier generation and the provider-compatible
// timestamp formatting of spec §4.8.
package ids

import (
	"crypto/rand"
	"encoding/hex"
	"hash/fnv"
	"math/big"
	"time"

	"github.com/google/uuid"
	"github.com/teris-io/shortid"
)

// Clock is the ServiceContext's source of "now", replaced with a fixed
// clock in tests (spec §9: "pass a single ServiceContext... no
// process-wide singletons", applied here to time as well).
type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC() }

// FormatTimestamp renders spec §4.8's
// strftime("%Y-%m-%dT%H:%M:%S").%3fZ format from a timezone-aware instant.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000Z")
}

// NewOperationID returns a uuid for Operation.id (spec §3).
func NewOperationID() string { return uuid.NewString() }

// NewSessionID returns a random 128-bit hex string for
// ResumableSession.session_id (spec §3).
func NewSessionID() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		panic(err) // crypto/rand failure means the platform's entropy source is broken
	}
	return hex.EncodeToString(b)
}

// surrogate ids (the etags of service accounts and IAM policies) use
// shortid rather than uuid: shortid's shorter alphabet keeps them compact.
var sidGen = func() *shortid.Shortid {
	sid, err := shortid.New(1, shortid.DefaultABC, 1)
	if err != nil {
		panic(err)
	}
	return sid
}()

// NewSurrogateID returns a short surrogate identifier (used as an etag).
func NewSurrogateID() string {
	id, err := sidGen.Generate()
	if err != nil {
		// shortid's generator can exhaust its per-millisecond counter
		// under extreme concurrency; fall back to a uuid rather than fail
		// the request.
		return uuid.NewString()
	}
	return id
}

// NumericID returns the stable 64-bit hash of a project id (spec §3:
// "numeric_id is a stable 64-bit hash of id").
func NumericID(id string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(id))
	return h.Sum64()
}

// NewServiceAccountUniqueID returns a random 21-digit numeric string
// (spec §3: ServiceAccount.unique_id).
func NewServiceAccountUniqueID() string {
	max := new(big.Int)
	max.SetString("999999999999999999999", 10) // 21 nines
	min := new(big.Int)
	min.SetString("100000000000000000000", 10) // 21-digit floor
	span := new(big.Int).Sub(max, min)
	n, err := rand.Int(rand.Reader, span)
	if err != nil {
		panic(err)
	}
	n.Add(n, min)
	return n.String()
}

// NewKeyID returns an internal identifier for a ServiceAccountKey.
func NewKeyID() string { return hex.EncodeToString(randBytes(16)) }

func randBytes(n int) []byte {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		panic(err)
	}
	return b
}
