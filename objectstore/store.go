package objectstore

import (
	"time"

	"github.com/cloudcore/cloudcore/cmn/ids"
	"github.com/cloudcore/cloudcore/cmn/keylock"
	"github.com/cloudcore/cloudcore/cmn/metrics"
	"github.com/cloudcore/cloudcore/kv"
)

// EventType enumerates the object events spec §3/§4.7 define.
type EventType string

const (
	EventFinalize       EventType = "OBJECT_FINALIZE"
	EventDelete         EventType = "OBJECT_DELETE"
	EventMetadataUpdate EventType = "OBJECT_METADATA_UPDATE"
)

// Event is the payload objectstore hands to an EventPublisher after a
// commit; the events package turns it into the webhook wire shape.
type Event struct {
	ProjectID  string
	EventType  EventType
	Generation int64
	Object     Object
}

// EventPublisher delivers object events to every notification config that
// matches, per spec §4.7. objectstore only depends on this interface (not
// the events package) to keep the dependency graph acyclic; cmd/cloudcored
// wires the concrete events.Dispatcher in.
type EventPublisher interface {
	Publish(bucket Bucket, evt Event)
}

type noopPublisher struct{}

func (noopPublisher) Publish(Bucket, Event) {}

// Store is the object store's entry point, holding every dependency
// described as an external collaborator in spec §1 ("Persistent key-value
// metadata store", "Filesystem"). Mirrors the teacher's targetrunner
// holding its fs/kv/stats dependencies as plain fields rather than behind
// a shared singleton (ais/target.go).
type Store struct {
	kv          *kv.Store
	storageRoot string
	locks       *keylock.KeyLock
	clock       ids.Clock
	events      EventPublisher
	metrics     *metrics.Registry
}

type Option func(*Store)

func WithEventPublisher(p EventPublisher) Option {
	return func(s *Store) { s.events = p }
}

func WithMetrics(m *metrics.Registry) Option {
	return func(s *Store) { s.metrics = m }
}

func WithClock(c ids.Clock) Option {
	return func(s *Store) { s.clock = c }
}

func New(store *kv.Store, storageRoot string, opts ...Option) *Store {
	s := &Store{
		kv:          store,
		storageRoot: storageRoot,
		locks:       keylock.New(),
		clock:       ids.SystemClock{},
		events:      noopPublisher{},
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *Store) now() time.Time { return s.clock.Now() }

func (s *Store) nowString() string { return ids.FormatTimestamp(s.now()) }
