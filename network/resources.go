package network

import (
	"github.com/cloudcore/cloudcore/cmn/cmnerr"
	"github.com/cloudcore/cloudcore/cmn/names"
	"github.com/cloudcore/cloudcore/kv"
)

// CreateNetwork persists a Network record (spec §3 expansion).
func (a *Allocator) CreateNetwork(n Network) (Network, error) {
	if err := names.ValidateNetworkName(n.Name); err != nil {
		return Network{}, err
	}
	n.CreatedAt = a.now()
	key := networkKey(n.ProjectID, n.Name)
	err := a.kv.Update(func(tx *kv.Tx) error {
		if tx.Has(key) {
			return cmnerr.Conflictf("network %q already exists", n.Name)
		}
		return kv.SetJSON(tx, key, &n)
	})
	return n, err
}

func (a *Allocator) GetNetwork(projectID, name string) (Network, error) {
	var n Network
	err := a.kv.View(func(tx *kv.Tx) error { return kv.GetJSON(tx, networkKey(projectID, name), &n) })
	if err != nil {
		return Network{}, kv.NotFoundOr(err, "network %q not found", name)
	}
	return n, nil
}

func (a *Allocator) ListNetworks(projectID string) ([]Network, error) {
	var out []Network
	err := a.kv.View(func(tx *kv.Tx) error {
		return tx.AscendPrefix(networkProjectPrefix(projectID), func(_, value string) bool {
			var n Network
			if unmarshalInto(value, &n) == nil {
				out = append(out, n)
			}
			return true
		})
	})
	return out, err
}

func (a *Allocator) DeleteNetwork(projectID, name string) error {
	key := networkKey(projectID, name)
	return a.kv.Update(func(tx *kv.Tx) error {
		if !tx.Has(key) {
			return cmnerr.NotFoundf("network %q not found", name)
		}
		return tx.Delete(key)
	})
}

// CreateSubnetwork validates ipCidrRange against the subnet prefix rule
// (/8..29, spec §4.3) and persists the record.
func (a *Allocator) CreateSubnetwork(s Subnetwork) (Subnetwork, error) {
	if err := names.ValidateNetworkName(s.Name); err != nil {
		return Subnetwork{}, err
	}
	if err := names.ValidateSubnetCIDR(s.IPCIDRRange); err != nil {
		return Subnetwork{}, err
	}
	s.CreatedAt = a.now()
	key := subnetKey(s.ProjectID, s.Region, s.Name)
	err := a.kv.Update(func(tx *kv.Tx) error {
		if tx.Has(key) {
			return cmnerr.Conflictf("subnetwork %q already exists in region %q", s.Name, s.Region)
		}
		return kv.SetJSON(tx, key, &s)
	})
	return s, err
}

func (a *Allocator) GetSubnetwork(projectID, region, name string) (Subnetwork, error) {
	var s Subnetwork
	err := a.kv.View(func(tx *kv.Tx) error { return kv.GetJSON(tx, subnetKey(projectID, region, name), &s) })
	if err != nil {
		return Subnetwork{}, kv.NotFoundOr(err, "subnetwork %q not found", name)
	}
	return s, nil
}

func (a *Allocator) ListSubnetworks(projectID string) ([]Subnetwork, error) {
	var out []Subnetwork
	err := a.kv.View(func(tx *kv.Tx) error {
		return tx.AscendPrefix(subnetProjectPrefix(projectID), func(_, value string) bool {
			var s Subnetwork
			if unmarshalInto(value, &s) == nil {
				out = append(out, s)
			}
			return true
		})
	})
	return out, err
}

// CreateRoute validates that NextHopNetwork (if set) names an existing
// network — the expansion's cross-reference check (SPEC_FULL.md §4.3).
func (a *Allocator) CreateRoute(r Route) (Route, error) {
	if err := names.ValidateNetworkName(r.Name); err != nil {
		return Route{}, err
	}
	if r.NextHopNetwork != "" {
		if _, err := a.GetNetwork(r.ProjectID, r.NextHopNetwork); err != nil {
			return Route{}, cmnerr.Invalidf("network: route next hop network %q does not exist", r.NextHopNetwork)
		}
	}
	r.CreatedAt = a.now()
	key := routeKey(r.ProjectID, r.Name)
	err := a.kv.Update(func(tx *kv.Tx) error {
		if tx.Has(key) {
			return cmnerr.Conflictf("route %q already exists", r.Name)
		}
		return kv.SetJSON(tx, key, &r)
	})
	return r, err
}

func (a *Allocator) ListRoutes(projectID string) ([]Route, error) {
	var out []Route
	err := a.kv.View(func(tx *kv.Tx) error {
		return tx.AscendPrefix(routeProjectPrefix(projectID), func(_, value string) bool {
			var r Route
			if unmarshalInto(value, &r) == nil {
				out = append(out, r)
			}
			return true
		})
	})
	return out, err
}

// CreateRouter validates that every NAT's subnetworks already exist under
// the router's network/region (expansion cross-reference check).
func (a *Allocator) CreateRouter(r Router) (Router, error) {
	if err := names.ValidateNetworkName(r.Name); err != nil {
		return Router{}, err
	}
	for _, nat := range r.Nats {
		for _, sn := range nat.Subnetworks {
			if _, err := a.GetSubnetwork(r.ProjectID, r.Region, sn); err != nil {
				return Router{}, cmnerr.Invalidf("network: router NAT references unknown subnetwork %q", sn)
			}
		}
	}
	r.CreatedAt = a.now()
	key := routerKey(r.ProjectID, r.Region, r.Name)
	err := a.kv.Update(func(tx *kv.Tx) error {
		if tx.Has(key) {
			return cmnerr.Conflictf("router %q already exists in region %q", r.Name, r.Region)
		}
		return kv.SetJSON(tx, key, &r)
	})
	return r, err
}

func (a *Allocator) ListRouters(projectID string) ([]Router, error) {
	var out []Router
	err := a.kv.View(func(tx *kv.Tx) error {
		return tx.AscendPrefix(routerProjectPrefix(projectID), func(_, value string) bool {
			var r Router
			if unmarshalInto(value, &r) == nil {
				out = append(out, r)
			}
			return true
		})
	})
	return out, err
}

// ReserveAddress reserves a specific external address record distinct
// from AllocateExternal's counter-driven instance assignment — used for
// explicit `compute addresses create` calls (expansion).
func (a *Allocator) ReserveAddress(projectID, name, region string) (ExternalAddress, error) {
	if err := names.ValidateNetworkName(name); err != nil {
		return ExternalAddress{}, err
	}
	ip, err := a.AllocateExternal(projectID)
	if err != nil {
		return ExternalAddress{}, err
	}
	addr := ExternalAddress{Name: name, ProjectID: projectID, Address: ip, Region: region, Status: AddressReserved, CreatedAt: a.now()}
	key := addressKey(projectID, name)
	err = a.kv.Update(func(tx *kv.Tx) error {
		if tx.Has(key) {
			return cmnerr.Conflictf("address %q already exists", name)
		}
		return kv.SetJSON(tx, key, &addr)
	})
	return addr, err
}

func (a *Allocator) ListAddresses(projectID string) ([]ExternalAddress, error) {
	var out []ExternalAddress
	err := a.kv.View(func(tx *kv.Tx) error {
		return tx.AscendPrefix(addressProjectPrefix(projectID), func(_, value string) bool {
			var addr ExternalAddress
			if unmarshalInto(value, &addr) == nil {
				out = append(out, addr)
			}
			return true
		})
	})
	return out, err
}
