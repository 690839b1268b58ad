package operations

import (
	"github.com/cloudcore/cloudcore/cmn/cmnerr"
	"github.com/cloudcore/cloudcore/cmn/ids"
	"github.com/cloudcore/cloudcore/cmn/metrics"
	"github.com/cloudcore/cloudcore/kv"
)

// Registry persists Operation records and wraps domain calls to produce
// them (spec §4.5). Mirrors compute.Controller/objectstore.Store's
// plain-field dependency style.
type Registry struct {
	kv      *kv.Store
	clock   ids.Clock
	metrics *metrics.Registry
}

type Option func(*Registry)

func WithMetrics(m *metrics.Registry) Option { return func(r *Registry) { r.metrics = m } }
func WithClock(c ids.Clock) Option           { return func(r *Registry) { r.clock = c } }

func New(store *kv.Store, opts ...Option) *Registry {
	r := &Registry{kv: store, clock: ids.SystemClock{}}
	for _, o := range opts {
		o(r)
	}
	return r
}

func (r *Registry) now() string { return ids.FormatTimestamp(r.clock.Now()) }

// Wrap runs fn, which performs the actual mutating domain call, and
// records the result as a completed Operation (spec §4.5: every
// mutating compute/VPC request returns status=DONE, progress=100 at
// return time for this core — there is no separately-scheduled async
// execution to poll toward completion).
func (r *Registry) Wrap(projectID string, scope Scope, scopeName, operationType, targetLink string, fn func() error) (Operation, error) {
	now := r.now()
	op := Operation{
		ID:            ids.NewOperationID(),
		ProjectID:     projectID,
		Scope:         scope,
		ScopeName:     scopeName,
		OperationType: operationType,
		TargetLink:    targetLink,
		Status:        "DONE",
		Progress:      100,
		InsertTime:    now,
		StartTime:     now,
		EndTime:       r.now(),
	}
	if err := fn(); err != nil {
		op.ErrorMessage = err.Error()
		if ce, ok := cmnerr.As(err); ok {
			op.ErrorCode = string(ce.Kind)
		} else {
			op.ErrorCode = "internalError"
		}
	}
	if r.metrics != nil {
		r.metrics.OperationsTotal.WithLabelValues(operationType).Inc()
	}
	if persistErr := r.persist(op); persistErr != nil {
		return Operation{}, persistErr
	}
	if op.ErrorMessage != "" {
		return op, cmnerr.New(cmnerr.Kind(op.ErrorCode), "%s", op.ErrorMessage)
	}
	return op, nil
}

func (r *Registry) persist(op Operation) error {
	return r.kv.Update(func(tx *kv.Tx) error {
		return kv.SetJSON(tx, operationKey(op.ProjectID, op.ID), &op)
	})
}

func (r *Registry) Get(projectID, id string) (Operation, error) {
	var op Operation
	err := r.kv.View(func(tx *kv.Tx) error { return kv.GetJSON(tx, operationKey(projectID, id), &op) })
	if err != nil {
		return Operation{}, kv.NotFoundOr(err, "operation %q not found", id)
	}
	return op, nil
}

// List returns every operation for projectID, optionally filtered to a
// scope/scopeName pair (zonal/regional listings, spec §4.5).
func (r *Registry) List(projectID string, scope Scope, scopeName string) ([]Operation, error) {
	var out []Operation
	err := r.kv.View(func(tx *kv.Tx) error {
		return tx.AscendPrefix(operationProjectPrefix(projectID), func(_, value string) bool {
			var op Operation
			if unmarshalInto(value, &op) == nil {
				if scope == "" || (op.Scope == scope && op.ScopeName == scopeName) {
					out = append(out, op)
				}
			}
			return true
		})
	})
	return out, err
}
