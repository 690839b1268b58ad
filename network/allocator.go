package network

import (
	"fmt"

	"github.com/cloudcore/cloudcore/cmn/cmnerr"
	"github.com/cloudcore/cloudcore/cmn/ids"
	"github.com/cloudcore/cloudcore/cmn/keylock"
	"github.com/cloudcore/cloudcore/kv"
)

// Addresses are drawn from 10.0.0.0/16 for internal addresses and
// 203.0.113.0/24 (TEST-NET-3) for external addresses; externalMax caps
// the external counter.
const (
	externalMax = 254 // 203.0.113.1..203.0.113.254, counter starts at 10
)

// Allocator hands out internal and external IPs from per-project
// monotonic counters (spec §3 NetworkAllocation, §4.3, §5's per-project
// lock).
type Allocator struct {
	kv    *kv.Store
	locks *keylock.KeyLock
	clock ids.Clock
}

func NewAllocator(store *kv.Store) *Allocator {
	return &Allocator{kv: store, locks: keylock.New(), clock: ids.SystemClock{}}
}

func (a *Allocator) now() string { return ids.FormatTimestamp(a.clock.Now()) }

// AllocateInternal returns the next 10.x.y.z address for projectID,
// skipping .0 and .255 of each /24 (spec §4.3).
func (a *Allocator) AllocateInternal(projectID string) (string, error) {
	var ip string
	err := a.withProjectLock(projectID, func() error {
		return a.kv.Update(func(tx *kv.Tx) error {
			alloc, err := getOrInitAllocation(tx, projectID)
			if err != nil {
				return err
			}
			for {
				c := alloc.InternalCounter
				if c == 0 {
					c = 1
				}
				b2 := byte(c / 256 % 256)
				b3 := byte(c % 256)
				alloc.InternalCounter = c + 1
				if b3 == 0 || b3 == 255 {
					continue // skip network/broadcast of each /24
				}
				ip = fmt.Sprintf("10.%d.%d.%d", c/65536, b2, b3)
				break
			}
			alloc.AllocatedInternal = append(alloc.AllocatedInternal, ip)
			return kv.SetJSON(tx, allocationKey(projectID), alloc)
		})
	})
	return ip, err
}

// AllocateExternal returns the next 203.0.113.x address for projectID
// (spec §4.3); errors once the /24 is exhausted.
func (a *Allocator) AllocateExternal(projectID string) (string, error) {
	var ip string
	err := a.withProjectLock(projectID, func() error {
		return a.kv.Update(func(tx *kv.Tx) error {
			alloc, err := getOrInitAllocation(tx, projectID)
			if err != nil {
				return err
			}
			c := alloc.ExternalCounter
			if c == 0 {
				c = 10
			}
			if c > externalMax {
				return cmnerr.Internalf(nil, "network: external IP pool exhausted for project %q", projectID)
			}
			ip = fmt.Sprintf("203.0.113.%d", c)
			alloc.ExternalCounter = c + 1
			alloc.AllocatedExternal = append(alloc.AllocatedExternal, ip)
			return kv.SetJSON(tx, allocationKey(projectID), alloc)
		})
	})
	return ip, err
}

// ReleaseInternal removes ip from projectID's used set (spec §4.2's
// delete sequence: "releases internal IP from allocator's used set").
// The counter itself never decreases — spec §4.3's "no reuse even after
// release" — so a released address is simply no longer tracked as
// assigned to a live instance; it is never handed out again regardless.
func (a *Allocator) ReleaseInternal(projectID, ip string) error {
	return a.withProjectLock(projectID, func() error {
		return a.kv.Update(func(tx *kv.Tx) error {
			alloc, err := getOrInitAllocation(tx, projectID)
			if err != nil {
				return err
			}
			alloc.AllocatedInternal = removeString(alloc.AllocatedInternal, ip)
			return kv.SetJSON(tx, allocationKey(projectID), alloc)
		})
	})
}

func removeString(s []string, v string) []string {
	out := s[:0]
	for _, x := range s {
		if x != v {
			out = append(out, x)
		}
	}
	return out
}

func getOrInitAllocation(tx *kv.Tx, projectID string) (*Allocation, error) {
	var alloc Allocation
	err := kv.GetJSON(tx, allocationKey(projectID), &alloc)
	if err != nil {
		if err != kv.ErrNotFound {
			return nil, cmnerr.Internalf(err, "network: reading allocation for %q", projectID)
		}
		alloc = Allocation{ProjectID: projectID, InternalCounter: 1, ExternalCounter: 10}
	}
	return &alloc, nil
}

func (a *Allocator) withProjectLock(projectID string, fn func() error) error {
	a.locks.Lock(projectID)
	defer a.locks.Unlock(projectID)
	return fn()
}

// Counters returns the current allocation snapshot for observability
// (cmn/metrics gauges).
func (a *Allocator) Counters(projectID string) (Allocation, error) {
	var alloc Allocation
	err := a.kv.View(func(tx *kv.Tx) error {
		got, err := getOrInitAllocation(tx, projectID)
		if err != nil {
			return err
		}
		alloc = *got
		return nil
	})
	return alloc, err
}
