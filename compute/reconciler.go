package compute

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/cloudcore/cloudcore/cmn/cmnerr"
)

// Reconciler polls RUNNING/STOPPING instances against the container
// runtime and corrects drift (spec §4.2's reconciler, default interval
// from cmn/config's Config.ReconcilerInterval). Grounded on aistore's xaction
// reconcile loop shape: bounded fan-out over a worklist each tick via an
// errgroup + semaphore, rather than one goroutine per instance.
type Reconciler struct {
	ctrl     *Controller
	interval time.Duration
	fanout   int64
}

func NewReconciler(ctrl *Controller, interval time.Duration) *Reconciler {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return &Reconciler{ctrl: ctrl, interval: interval, fanout: 8}
}

// Run blocks until ctx is canceled, reconciling on every tick.
func (r *Reconciler) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := r.tick(ctx); err != nil && ctx.Err() == nil {
				// A single bad tick shouldn't kill the loop; the next
				// tick retries naturally.
				continue
			}
		}
	}
}

func (r *Reconciler) tick(ctx context.Context) error {
	instances, err := r.allReconcilable(ctx)
	if err != nil {
		return err
	}
	sem := semaphore.NewWeighted(r.fanout)
	var g errgroup.Group
	for _, inst := range instances {
		inst := inst
		if err := sem.Acquire(ctx, 1); err != nil {
			break
		}
		g.Go(func() error {
			defer sem.Release(1)
			return r.reconcileOne(ctx, inst)
		})
	}
	return g.Wait()
}

// allReconcilable lists every instance across every project/zone known
// to the store. The emulator's scale doesn't warrant a project index;
// ListAllInstances() is cheap against the in-process KV store.
func (r *Reconciler) allReconcilable(ctx context.Context) ([]Instance, error) {
	var out []Instance
	seen, err := r.ctrl.ListAllInstances()
	if err != nil {
		return nil, err
	}
	for _, inst := range seen {
		if inst.Status == StatusRunning || inst.Status == StatusStopping {
			out = append(out, inst)
		}
	}
	_ = ctx
	return out, nil
}

// reconcileOne re-inspects the backing container and corrects the row if
// the runtime disagrees with the stored status (e.g. the container died
// out-of-band).
func (r *Reconciler) reconcileOne(ctx context.Context, inst Instance) error {
	if inst.ContainerID == "" {
		return nil
	}
	rctx, cancel := context.WithTimeout(ctx, r.ctrl.runtimeTimeout)
	defer cancel()
	status, err := r.ctrl.rt.Inspect(rctx, inst.ContainerID)
	if err != nil {
		if e, ok := cmnerr.As(err); ok && e.Kind == cmnerr.NotFound {
			// container vanished out-of-band: spec §4.2 "a crashed
			// container flips the instance to TERMINATED."
			r.ctrl.fail(&inst, cmnerr.Internalf(nil, "compute: container for instance %q no longer exists", inst.Name))
			return nil
		}
		return err
	}
	if inst.Status == StatusRunning && !status.Running {
		r.ctrl.fail(&inst, cmnerr.Internalf(nil, "compute: container for instance %q exited unexpectedly", inst.Name))
		return nil
	}
	return nil
}
