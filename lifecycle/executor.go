// Package lifecycle implements spec §4.6: a periodic age-based rule
// executor that applies each bucket's LifecycleRules (Delete/Archive) to
// objects older than ageDays. Grounded on ais/daemon.go's background-
// runner discipline (a ticking goroutine started by the daemon and
// stopped via context cancellation).
package lifecycle

import (
	"context"
	"strings"
	"time"

	"github.com/cloudcore/cloudcore/cmn/log"
	"github.com/cloudcore/cloudcore/cmn/metrics"
	"github.com/cloudcore/cloudcore/objectstore"
)

// Executor runs one pass over every bucket's objects on each tick,
// comparing CreatedAt against each rule's age threshold. Idempotent:
// re-running against an object already Deleted or already on the rule's
// target storage class is a no-op (spec §4.6).
type Executor struct {
	store    *objectstore.Store
	interval time.Duration
	metrics  *metrics.Registry
	now      func() time.Time
}

func New(store *objectstore.Store, interval time.Duration, opts ...Option) *Executor {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	e := &Executor{store: store, interval: interval, now: func() time.Time { return time.Now().UTC() }}
	for _, o := range opts {
		o(e)
	}
	return e
}

type Option func(*Executor)

func WithMetrics(m *metrics.Registry) Option { return func(e *Executor) { e.metrics = m } }
func WithClock(now func() time.Time) Option  { return func(e *Executor) { e.now = now } }

// Run blocks until ctx is canceled, applying lifecycle rules on every
// tick.
func (e *Executor) Run(ctx context.Context) error {
	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			e.tick()
		}
	}
}

// tick lists every bucket the store knows about. objectstore has no
// cross-project bucket index, so the executor walks every project it has
// seen objects for; a developer-scale emulator has no need for a
// dedicated bucket catalogue beyond what objectstore already persists.
func (e *Executor) tick() {
	projects, err := e.store.KnownProjectIDs()
	if err != nil {
		log.Errorf("lifecycle: listing known projects: %v", err)
		return
	}
	for _, projectID := range projects {
		buckets, err := e.store.ListBuckets(projectID)
		if err != nil {
			log.Errorf("lifecycle: listing buckets for project %q: %v", projectID, err)
			continue
		}
		for _, b := range buckets {
			e.applyBucket(b)
		}
	}
}

func (e *Executor) applyBucket(b objectstore.Bucket) {
	if len(b.LifecycleRules) == 0 {
		return
	}
	res, err := e.store.ListObjects(objectstore.ListInput{ProjectID: b.ProjectID, BucketName: b.Name, MaxResults: 10000})
	if err != nil {
		log.Errorf("lifecycle: listing objects in %s/%s: %v", b.ProjectID, b.Name, err)
		return
	}
	now := e.now()
	for _, obj := range res.Items {
		rule := matchOldestRule(b.LifecycleRules, obj, now)
		if rule == nil {
			continue
		}
		e.apply(b, obj, *rule)
	}
}

// matchOldestRule returns the rule with the largest ageDays satisfied by
// obj's age, so that an object past multiple thresholds gets the most
// aggressive applicable action (spec §4.6 doesn't order rules). Among
// rules with equal ageDays the first one listed wins, whatever its action.
func matchOldestRule(rules []objectstore.LifecycleRule, obj objectstore.Object, now time.Time) *objectstore.LifecycleRule {
	created, err := time.Parse("2006-01-02T15:04:05.000Z", obj.CreatedAt)
	if err != nil {
		return nil
	}
	ageDays := int(now.Sub(created).Hours() / 24)
	var best *objectstore.LifecycleRule
	for i := range rules {
		r := rules[i]
		if ageDays >= r.AgeDays && (best == nil || r.AgeDays > best.AgeDays) {
			best = &r
		}
	}
	return best
}

func (e *Executor) apply(b objectstore.Bucket, obj objectstore.Object, rule objectstore.LifecycleRule) {
	switch rule.Action {
	case objectstore.LifecycleDelete:
		if obj.Deleted {
			return
		}
		if err := e.store.DeleteObject(b.ProjectID, b.Name, obj.Name, obj.Generation); err != nil {
			log.Errorf("lifecycle: deleting %s/%s/%s: %v", b.ProjectID, b.Name, obj.Name, err)
			return
		}
		e.record("delete")
	case objectstore.LifecycleArchive:
		if strings.EqualFold(obj.StorageClass, "ARCHIVE") {
			return
		}
		archive := "ARCHIVE"
		if _, err := e.store.PatchObjectMetadata(b.ProjectID, b.Name, obj.Name, objectstore.PatchMetadataInput{StorageClass: &archive}); err != nil {
			log.Errorf("lifecycle: archiving %s/%s/%s: %v", b.ProjectID, b.Name, obj.Name, err)
			return
		}
		e.record("archive")
	}
}

func (e *Executor) record(action string) {
	if e.metrics != nil {
		e.metrics.LifecycleActions.WithLabelValues(action).Inc()
	}
}
