package compute

import (
	"github.com/cloudcore/cloudcore/cmn/cmnerr"
	"github.com/cloudcore/cloudcore/cmn/names"
	"github.com/cloudcore/cloudcore/kv"
)

func diskKey(projectID, zone, name string) string {
	return "compute/disk/" + projectID + "/" + zone + "/" + name
}

func diskZonePrefix(projectID, zone string) string {
	return "compute/disk/" + projectID + "/" + zone + "/"
}

const (
	diskStatusReady = "READY"
)

// CreateDisk persists a standalone Disk resource (SPEC_FULL.md §4.2
// expansion: instances may attach disks created independently of the
// instance, mirroring the real provider's disks.insert).
func (c *Controller) CreateDisk(projectID, zone, name string, sizeGB int64) (Disk, error) {
	if err := names.ValidateInstanceName(name); err != nil {
		return Disk{}, err
	}
	if sizeGB <= 0 {
		return Disk{}, cmnerr.Invalidf("compute: disk sizeGb must be positive")
	}
	d := Disk{Name: name, ProjectID: projectID, Zone: zone, SizeGB: sizeGB, Status: diskStatusReady, CreatedAt: c.now()}
	key := diskKey(projectID, zone, name)
	err := c.kv.Update(func(tx *kv.Tx) error {
		if tx.Has(key) {
			return cmnerr.Conflictf("disk %q already exists in zone %q", name, zone)
		}
		return kv.SetJSON(tx, key, &d)
	})
	return d, err
}

func (c *Controller) GetDisk(projectID, zone, name string) (Disk, error) {
	var d Disk
	err := c.kv.View(func(tx *kv.Tx) error { return kv.GetJSON(tx, diskKey(projectID, zone, name), &d) })
	if err != nil {
		return Disk{}, kv.NotFoundOr(err, "disk %q not found in zone %q", name, zone)
	}
	return d, nil
}

func (c *Controller) ListDisks(projectID, zone string) ([]Disk, error) {
	var out []Disk
	err := c.kv.View(func(tx *kv.Tx) error {
		return tx.AscendPrefix(diskZonePrefix(projectID, zone), func(_, value string) bool {
			var d Disk
			if unmarshalInto(value, &d) == nil {
				out = append(out, d)
			}
			return true
		})
	})
	return out, err
}

func (c *Controller) DeleteDisk(projectID, zone, name string) error {
	key := diskKey(projectID, zone, name)
	return c.kv.Update(func(tx *kv.Tx) error {
		if !tx.Has(key) {
			return cmnerr.NotFoundf("disk %q not found in zone %q", name, zone)
		}
		return tx.Delete(key)
	})
}
