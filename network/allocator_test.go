package network

import (
	"testing"

	"github.com/cloudcore/cloudcore/cmn/cmnerr"
	"github.com/cloudcore/cloudcore/kv"
)

func newAllocator(t *testing.T) *Allocator {
	t.Helper()
	store, err := kv.Open("")
	if err != nil {
		t.Fatalf("kv.Open() error = %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return NewAllocator(store)
}

func TestAllocateInternalSequential(t *testing.T) {
	a := newAllocator(t)
	ip1, err := a.AllocateInternal("proj1")
	if err != nil {
		t.Fatalf("AllocateInternal() error = %v", err)
	}
	ip2, err := a.AllocateInternal("proj1")
	if err != nil {
		t.Fatalf("AllocateInternal() error = %v", err)
	}
	if ip1 == ip2 {
		t.Fatalf("AllocateInternal returned the same address twice: %s", ip1)
	}
	if ip1 != "10.0.0.1" {
		t.Fatalf("AllocateInternal() first = %s, want 10.0.0.1", ip1)
	}
}

func TestAllocateInternalSkipsNetworkAndBroadcast(t *testing.T) {
	a := newAllocator(t)
	for i := 0; i < 260; i++ {
		ip, err := a.AllocateInternal("proj1")
		if err != nil {
			t.Fatalf("AllocateInternal() error = %v", err)
		}
		if ip == "10.0.0.0" || ip[len(ip)-4:] == ".255" {
			t.Fatalf("AllocateInternal returned a network/broadcast address: %s", ip)
		}
	}
}

func TestAllocateInternalIsolatedPerProject(t *testing.T) {
	a := newAllocator(t)
	ip1, _ := a.AllocateInternal("proj1")
	ip2, _ := a.AllocateInternal("proj2")
	if ip1 != ip2 {
		t.Fatalf("independent projects should both start at the same base address: %s != %s", ip1, ip2)
	}
}

func TestAllocateExternalExhaustion(t *testing.T) {
	a := newAllocator(t)
	var lastErr error
	for i := 0; i < 260; i++ {
		_, lastErr = a.AllocateExternal("proj1")
		if lastErr != nil {
			break
		}
	}
	if lastErr == nil {
		t.Fatalf("AllocateExternal never exhausted the /24 pool")
	}
	e, ok := cmnerr.As(lastErr)
	if !ok || e.Kind != cmnerr.Internal {
		t.Fatalf("AllocateExternal exhaustion error = %v, want cmnerr.Internal", lastErr)
	}
}

func TestCreateNetworkConflict(t *testing.T) {
	a := newAllocator(t)
	n := Network{Name: "default", ProjectID: "p1"}
	if _, err := a.CreateNetwork(n); err != nil {
		t.Fatalf("CreateNetwork() error = %v", err)
	}
	_, err := a.CreateNetwork(n)
	e, ok := cmnerr.As(err)
	if !ok || e.Kind != cmnerr.Conflict {
		t.Fatalf("CreateNetwork duplicate = %v, want cmnerr.Conflict", err)
	}
}

func TestGetNetworkNotFound(t *testing.T) {
	a := newAllocator(t)
	_, err := a.GetNetwork("p1", "missing")
	e, ok := cmnerr.As(err)
	if !ok || e.Kind != cmnerr.NotFound {
		t.Fatalf("GetNetwork(missing) = %v, want cmnerr.NotFound", err)
	}
}

func TestCreateSubnetworkValidatesCIDR(t *testing.T) {
	a := newAllocator(t)
	_, err := a.CreateSubnetwork(Subnetwork{Name: "sub1", ProjectID: "p1", Region: "us-central1", IPCIDRRange: "10.0.0.0/30"})
	if err == nil {
		t.Fatalf("CreateSubnetwork(/30) = nil, want error (outside 8..29)")
	}

	sub, err := a.CreateSubnetwork(Subnetwork{Name: "sub1", ProjectID: "p1", Region: "us-central1", IPCIDRRange: "10.0.0.0/24"})
	if err != nil {
		t.Fatalf("CreateSubnetwork(/24) error = %v", err)
	}
	if sub.CreatedAt == "" {
		t.Fatalf("CreateSubnetwork did not stamp CreatedAt")
	}
}

func TestCreateRouteValidatesNextHopNetwork(t *testing.T) {
	a := newAllocator(t)
	_, err := a.CreateRoute(Route{Name: "r1", ProjectID: "p1", NextHopNetwork: "ghost"})
	if err == nil {
		t.Fatalf("CreateRoute with unknown next-hop network = nil, want error")
	}

	a.CreateNetwork(Network{Name: "default", ProjectID: "p1"})
	_, err = a.CreateRoute(Route{Name: "r1", ProjectID: "p1", NextHopNetwork: "default"})
	if err != nil {
		t.Fatalf("CreateRoute with known next-hop network error = %v", err)
	}
}

func TestCreateRouterValidatesNatSubnetworks(t *testing.T) {
	a := newAllocator(t)
	router := Router{
		Name: "r1", ProjectID: "p1", Region: "us-central1",
		Nats: []RouterNat{{Name: "nat1", Subnetworks: []string{"ghost"}}},
	}
	if _, err := a.CreateRouter(router); err == nil {
		t.Fatalf("CreateRouter with unknown NAT subnetwork = nil, want error")
	}

	a.CreateSubnetwork(Subnetwork{Name: "sub1", ProjectID: "p1", Region: "us-central1", IPCIDRRange: "10.0.0.0/24"})
	router.Nats[0].Subnetworks = []string{"sub1"}
	if _, err := a.CreateRouter(router); err != nil {
		t.Fatalf("CreateRouter with known NAT subnetwork error = %v", err)
	}
}

func TestReserveAddress(t *testing.T) {
	a := newAllocator(t)
	addr, err := a.ReserveAddress("p1", "addr1", "us-central1")
	if err != nil {
		t.Fatalf("ReserveAddress() error = %v", err)
	}
	if addr.Status != AddressReserved {
		t.Fatalf("ReserveAddress() status = %v, want AddressReserved", addr.Status)
	}
	if _, err := a.ReserveAddress("p1", "addr1", "us-central1"); err == nil {
		t.Fatalf("ReserveAddress duplicate name = nil, want error")
	}
}

func TestFirewallRuleMatches(t *testing.T) {
	noTags := FirewallRule{}
	if !noTags.Matches([]string{"anything"}) {
		t.Fatalf("rule with no target tags should match any instance")
	}

	tagged := FirewallRule{TargetTags: []string{"web"}}
	if !tagged.Matches([]string{"web", "prod"}) {
		t.Fatalf("rule should match instance carrying one of its target tags")
	}
	if tagged.Matches([]string{"db"}) {
		t.Fatalf("rule should not match instance without any target tag")
	}
}

func TestCreateFirewallRuleValidation(t *testing.T) {
	a := newAllocator(t)
	_, err := a.CreateFirewallRule(FirewallRule{
		Name: "fw1", ProjectID: "p1", Direction: "SIDEWAYS", Priority: 1000,
	})
	if err == nil {
		t.Fatalf("CreateFirewallRule with bad direction = nil, want error")
	}

	_, err = a.CreateFirewallRule(FirewallRule{
		Name: "fw1", ProjectID: "p1", Direction: DirectionIngress, Priority: 1000,
		Rules: []ProtocolRule{{Protocol: "sctp"}},
	})
	if err == nil {
		t.Fatalf("CreateFirewallRule with unsupported protocol = nil, want error")
	}

	rule, err := a.CreateFirewallRule(FirewallRule{
		Name: "fw1", ProjectID: "p1", Direction: DirectionIngress, Priority: 1000,
		Action: ActionAllow, Rules: []ProtocolRule{{Protocol: "tcp", Ports: []string{"80"}}},
		SourceRanges: []string{"0.0.0.0/0"},
	})
	if err != nil {
		t.Fatalf("CreateFirewallRule() error = %v", err)
	}
	if rule.CreatedAt == "" {
		t.Fatalf("CreateFirewallRule did not stamp CreatedAt")
	}

	if _, err := a.CreateFirewallRule(rule); err == nil {
		t.Fatalf("CreateFirewallRule duplicate name = nil, want error")
	}
}

func TestDeleteFirewallRuleNotFound(t *testing.T) {
	a := newAllocator(t)
	if err := a.DeleteFirewallRule("p1", "missing"); err == nil {
		t.Fatalf("DeleteFirewallRule(missing) = nil, want error")
	}
}
