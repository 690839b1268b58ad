package compute

import (
	"context"
	"time"

	"github.com/cloudcore/cloudcore/cmn/cmnerr"
	"github.com/cloudcore/cloudcore/cmn/ids"
	"github.com/cloudcore/cloudcore/cmn/keylock"
	"github.com/cloudcore/cloudcore/cmn/metrics"
	"github.com/cloudcore/cloudcore/cmn/names"
	"github.com/cloudcore/cloudcore/kv"
	"github.com/cloudcore/cloudcore/network"
	"github.com/cloudcore/cloudcore/runtime"
)

// Controller owns the instance state machine of spec §4.2, holding every
// dependency as a plain field (the teacher's targetrunner pattern) rather
// than behind a shared singleton.
type Controller struct {
	kv             *kv.Store
	rt             runtime.Runtime
	net            *network.Allocator
	locks          *keylock.KeyLock
	clock          ids.Clock
	metrics        *metrics.Registry
	runtimeTimeout time.Duration
}

type Option func(*Controller)

func WithMetrics(m *metrics.Registry) Option { return func(c *Controller) { c.metrics = m } }
func WithClock(cl ids.Clock) Option          { return func(c *Controller) { c.clock = cl } }
func WithRuntimeTimeout(d time.Duration) Option {
	return func(c *Controller) { c.runtimeTimeout = d }
}

func New(store *kv.Store, rt runtime.Runtime, net *network.Allocator, opts ...Option) *Controller {
	c := &Controller{
		kv:             store,
		rt:             rt,
		net:            net,
		locks:          keylock.New(),
		clock:          ids.SystemClock{},
		runtimeTimeout: 30 * time.Second,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *Controller) now() string { return ids.FormatTimestamp(c.clock.Now()) }

func instanceKey(projectID, zone, name string) string {
	return "compute/instance/" + projectID + "/" + zone + "/" + name
}

func instanceZonePrefix(projectID, zone string) string {
	return "compute/instance/" + projectID + "/" + zone + "/"
}

func instanceProjectPrefix(projectID string) string {
	return "compute/instance/" + projectID + "/"
}

func (c *Controller) withInstanceLock(projectID, zone, name string, fn func() error) error {
	key := projectID + "/" + zone + "/" + name
	c.locks.Lock(key)
	defer c.locks.Unlock(key)
	return fn()
}

func (c *Controller) setStatus(tx *kv.Tx, inst *Instance, status Status) error {
	inst.Status = status
	if c.metrics != nil {
		c.metrics.InstanceTransitions.WithLabelValues(string(status)).Inc()
	}
	return kv.SetJSON(tx, instanceKey(inst.ProjectID, inst.Zone, inst.Name), inst)
}

// CreateInput is the normalized compute.instances.insert request body
// (spec §4.2).
type CreateInput struct {
	ProjectID   string
	Zone        string
	Name        string
	MachineType string
	Tags        []string
	Labels      map[string]string
	Metadata    map[string]string
}

// CreateInstance drives PROVISIONING -> STAGING -> RUNNING synchronously,
// per spec §4.2: "each step updates the row and emits operation
// progress." Allocates IPs, asks the runtime to create+start a
// container, and persists the final row.
func (c *Controller) CreateInstance(ctx context.Context, in CreateInput) (Instance, error) {
	if err := names.ValidateInstanceName(in.Name); err != nil {
		return Instance{}, err
	}
	mt, ok := LookupMachineType(in.Zone, in.MachineType)
	if !ok {
		return Instance{}, cmnerr.Invalidf("compute: unknown machine type %q", in.MachineType)
	}

	var inst Instance
	err := c.withInstanceLock(in.ProjectID, in.Zone, in.Name, func() error {
		key := instanceKey(in.ProjectID, in.Zone, in.Name)
		exists := false
		_ = c.kv.View(func(tx *kv.Tx) error { exists = tx.Has(key); return nil })
		if exists {
			return cmnerr.Conflictf("instance %q already exists in zone %q", in.Name, in.Zone)
		}

		inst = Instance{
			Name:           in.Name,
			ProjectID:      in.ProjectID,
			Zone:           in.Zone,
			MachineType:    mt.Name,
			Status:         StatusProvisioning,
			Tags:           in.Tags,
			Labels:         in.Labels,
			Metadata:       in.Metadata,
			ContainerImage: defaultContainerImage,
			CreatedAt:      c.now(),
		}
		return c.kv.Update(func(tx *kv.Tx) error { return c.setStatus(tx, &inst, StatusProvisioning) })
	})
	if err != nil {
		return Instance{}, err
	}

	if err := c.stageAndRun(ctx, &inst); err != nil {
		return inst, err
	}
	return inst, nil
}

// stageAndRun performs the STAGING -> RUNNING transition (spec §4.2
// "Container binding" steps 1-5), used by both create and start.
func (c *Controller) stageAndRun(ctx context.Context, inst *Instance) error {
	rctx, cancel := context.WithTimeout(ctx, c.runtimeTimeout)
	defer cancel()

	err := c.withInstanceLock(inst.ProjectID, inst.Zone, inst.Name, func() error {
		return c.kv.Update(func(tx *kv.Tx) error { return c.setStatus(tx, inst, StatusStaging) })
	})
	if err != nil {
		return err
	}

	if inst.InternalIP == "" {
		ip, err := c.net.AllocateInternal(inst.ProjectID)
		if err != nil {
			return c.fail(inst, err)
		}
		inst.InternalIP = ip
	}
	if inst.ExternalIP == "" {
		ip, err := c.net.AllocateExternal(inst.ProjectID)
		if err != nil {
			return c.fail(inst, err)
		}
		inst.ExternalIP = ip
	}

	if inst.ContainerID == "" {
		name := containerName(inst.ProjectID, inst.Zone, inst.Name)
		id, err := c.rt.Create(rctx, runtime.ContainerSpec{
			Name:    name,
			Image:   inst.ContainerImage,
			Network: "bridge",
			Labels:  map[string]string{"cloudcore.instance": inst.Name},
		})
		if err != nil {
			return c.fail(inst, cmnerr.Internalf(err, "compute: creating container for instance %q", inst.Name))
		}
		inst.ContainerID = id
	}
	if err := c.rt.Start(rctx, inst.ContainerID); err != nil {
		return c.fail(inst, cmnerr.Internalf(err, "compute: starting container for instance %q", inst.Name))
	}
	if status, err := c.rt.Inspect(rctx, inst.ContainerID); err == nil && status.InternalIP != "" {
		inst.InternalIP = status.InternalIP
	}

	inst.LastStartAt = c.now()
	return c.withInstanceLock(inst.ProjectID, inst.Zone, inst.Name, func() error {
		return c.kv.Update(func(tx *kv.Tx) error { return c.setStatus(tx, inst, StatusRunning) })
	})
}

func (c *Controller) fail(inst *Instance, err error) error {
	inst.StatusMessage = err.Error()
	_ = c.withInstanceLock(inst.ProjectID, inst.Zone, inst.Name, func() error {
		return c.kv.Update(func(tx *kv.Tx) error { return c.setStatus(tx, inst, StatusTerminated) })
	})
	return err
}

func containerName(projectID, zone, name string) string {
	return "gce-" + projectID + "-" + zone + "-" + name
}

func (c *Controller) GetInstance(projectID, zone, name string) (Instance, error) {
	var inst Instance
	err := c.kv.View(func(tx *kv.Tx) error {
		return kv.GetJSON(tx, instanceKey(projectID, zone, name), &inst)
	})
	if err != nil {
		return Instance{}, kv.NotFoundOr(err, "instance %q not found in zone %q", name, zone)
	}
	return inst, nil
}

// ListInstances returns every instance in zone, or every instance in the
// project when zone is "-" or "*" (spec §4.2's aggregated listing).
func (c *Controller) ListInstances(projectID, zone string) ([]Instance, error) {
	prefix := instanceZonePrefix(projectID, zone)
	if zone == "-" || zone == "*" {
		prefix = instanceProjectPrefix(projectID)
	}
	var out []Instance
	err := c.kv.View(func(tx *kv.Tx) error {
		return tx.AscendPrefix(prefix, func(_, value string) bool {
			var inst Instance
			if unmarshalInto(value, &inst) == nil {
				out = append(out, inst)
			}
			return true
		})
	})
	return out, err
}

// ListAllInstances scans every instance regardless of project or zone,
// used by the reconciler's tick (spec §4.2).
func (c *Controller) ListAllInstances() ([]Instance, error) {
	var out []Instance
	err := c.kv.View(func(tx *kv.Tx) error {
		return tx.AscendPrefix("compute/instance/", func(_, value string) bool {
			var inst Instance
			if unmarshalInto(value, &inst) == nil {
				out = append(out, inst)
			}
			return true
		})
	})
	return out, err
}

// StopInstance: RUNNING -> STOPPING -> TERMINATED (spec §4.2).
func (c *Controller) StopInstance(ctx context.Context, projectID, zone, name string) (Instance, error) {
	inst, err := c.GetInstance(projectID, zone, name)
	if err != nil {
		return Instance{}, err
	}
	if inst.Status != StatusRunning {
		return Instance{}, invalidStateErr(inst.Status, "stop")
	}
	rctx, cancel := context.WithTimeout(ctx, c.runtimeTimeout)
	defer cancel()

	err = c.withInstanceLock(projectID, zone, name, func() error {
		return c.kv.Update(func(tx *kv.Tx) error { return c.setStatus(tx, &inst, StatusStopping) })
	})
	if err != nil {
		return Instance{}, err
	}
	if inst.ContainerID != "" {
		if err := c.rt.Stop(rctx, inst.ContainerID); err != nil {
			return inst, c.fail(&inst, cmnerr.Internalf(err, "compute: stopping container for instance %q", name))
		}
	}
	inst.LastStopAt = c.now()
	err = c.withInstanceLock(projectID, zone, name, func() error {
		return c.kv.Update(func(tx *kv.Tx) error { return c.setStatus(tx, &inst, StatusTerminated) })
	})
	return inst, err
}

// StartInstance: TERMINATED -> STAGING -> RUNNING (spec §4.2); external
// IP persists, internal IP may be re-allocated if absent.
func (c *Controller) StartInstance(ctx context.Context, projectID, zone, name string) (Instance, error) {
	inst, err := c.GetInstance(projectID, zone, name)
	if err != nil {
		return Instance{}, err
	}
	if inst.Status != StatusTerminated {
		return Instance{}, invalidStateErr(inst.Status, "start")
	}
	if err := c.stageAndRun(ctx, &inst); err != nil {
		return inst, err
	}
	return inst, nil
}

// DeleteInstance stops (if running) then removes the row and container,
// releasing the internal IP only (spec §4.2: "releases internal IP from
// allocator's used set, keeps external IP in used set").
func (c *Controller) DeleteInstance(ctx context.Context, projectID, zone, name string) error {
	inst, err := c.GetInstance(projectID, zone, name)
	if err != nil {
		return err
	}
	rctx, cancel := context.WithTimeout(ctx, c.runtimeTimeout)
	defer cancel()

	if inst.Status == StatusRunning {
		if _, err := c.StopInstance(ctx, projectID, zone, name); err != nil {
			return err
		}
	}
	if inst.ContainerID != "" {
		_ = c.rt.Remove(rctx, inst.ContainerID)
	}
	if inst.InternalIP != "" {
		if err := c.net.ReleaseInternal(projectID, inst.InternalIP); err != nil {
			return err
		}
	}
	return c.withInstanceLock(projectID, zone, name, func() error {
		return c.kv.Update(func(tx *kv.Tx) error { return tx.Delete(instanceKey(projectID, zone, name)) })
	})
}

func invalidStateErr(current Status, op string) error {
	return cmnerr.Invalidf("compute: cannot %s instance in state %q", op, current)
}
