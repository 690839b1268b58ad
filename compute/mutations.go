package compute

import (
	"context"

	"github.com/cloudcore/cloudcore/cmn/cmnerr"
	"github.com/cloudcore/cloudcore/kv"
)

// SetMetadata replaces an instance's metadata map (spec §4.2
// setMetadata). Does not require a running instance.
func (c *Controller) SetMetadata(projectID, zone, name string, metadata map[string]string) (Instance, error) {
	var inst Instance
	err := c.withInstanceLock(projectID, zone, name, func() error {
		return c.kv.Update(func(tx *kv.Tx) error {
			if err := kv.GetJSON(tx, instanceKey(projectID, zone, name), &inst); err != nil {
				return kv.NotFoundOr(err, "instance %q not found in zone %q", name, zone)
			}
			inst.Metadata = metadata
			return kv.SetJSON(tx, instanceKey(projectID, zone, name), &inst)
		})
	})
	return inst, err
}

// SetTags replaces an instance's network tags (spec §4.2 setTags), which
// feed firewall rule matching (network.FirewallRule.Matches).
func (c *Controller) SetTags(projectID, zone, name string, tags []string) (Instance, error) {
	var inst Instance
	err := c.withInstanceLock(projectID, zone, name, func() error {
		return c.kv.Update(func(tx *kv.Tx) error {
			if err := kv.GetJSON(tx, instanceKey(projectID, zone, name), &inst); err != nil {
				return kv.NotFoundOr(err, "instance %q not found in zone %q", name, zone)
			}
			inst.Tags = tags
			return kv.SetJSON(tx, instanceKey(projectID, zone, name), &inst)
		})
	})
	return inst, err
}

// SetLabels replaces an instance's labels (spec §4.2 setLabels).
func (c *Controller) SetLabels(projectID, zone, name string, labels map[string]string) (Instance, error) {
	var inst Instance
	err := c.withInstanceLock(projectID, zone, name, func() error {
		return c.kv.Update(func(tx *kv.Tx) error {
			if err := kv.GetJSON(tx, instanceKey(projectID, zone, name), &inst); err != nil {
				return kv.NotFoundOr(err, "instance %q not found in zone %q", name, zone)
			}
			inst.Labels = labels
			return kv.SetJSON(tx, instanceKey(projectID, zone, name), &inst)
		})
	})
	return inst, err
}

// Reset stops and restarts the backing container without reassigning IPs
// or releasing them (spec §4.2 reset: "equivalent to a hard reboot;
// addresses are retained"). Only legal while RUNNING.
func (c *Controller) Reset(ctx context.Context, projectID, zone, name string) (Instance, error) {
	inst, err := c.GetInstance(projectID, zone, name)
	if err != nil {
		return Instance{}, err
	}
	if inst.Status != StatusRunning {
		return Instance{}, invalidStateErr(inst.Status, "reset")
	}
	rctx, cancel := context.WithTimeout(ctx, c.runtimeTimeout)
	defer cancel()

	if inst.ContainerID != "" {
		if err := c.rt.Stop(rctx, inst.ContainerID); err != nil {
			return inst, cmnerr.Internalf(err, "compute: reset stopping container for instance %q", name)
		}
		if err := c.rt.Start(rctx, inst.ContainerID); err != nil {
			return inst, c.fail(&inst, cmnerr.Internalf(err, "compute: reset restarting container for instance %q", name))
		}
	}
	inst.LastStartAt = c.now()
	err = c.withInstanceLock(projectID, zone, name, func() error {
		return c.kv.Update(func(tx *kv.Tx) error { return c.setStatus(tx, &inst, StatusRunning) })
	})
	return inst, err
}
