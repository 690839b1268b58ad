// Package network implements spec §4.3: per-project sequential internal
// and external IP allocation, firewall-rule metadata, and the
// Network/Subnetwork/Route/Router/Address records the expansion adds.
// Grounded on the teacher's cmn/bucket.go (its BucketProps getters show
// the pattern of small, validated, per-field-accessor metadata types);
// the allocation counters themselves are a fresh component with no direct
// teacher analogue, built in the same KV-transaction-with-row-lock style
// as objectstore.
package network

// Allocation is the per-project IP counter record (spec §3).
type Allocation struct {
	ProjectID        string   `json:"projectId"`
	InternalCounter  uint32   `json:"internalCounter"` // next value to assign, starts at 1
	ExternalCounter  uint32   `json:"externalCounter"` // starts at 10
	AllocatedInternal []string `json:"allocatedInternal,omitempty"`
	AllocatedExternal []string `json:"allocatedExternal,omitempty"`
}

// FirewallAction is the rule-level allow/deny outcome (spec §3).
type FirewallAction string

const (
	ActionAllow FirewallAction = "ALLOW"
	ActionDeny  FirewallAction = "DENY"
)

type Direction string

const (
	DirectionIngress Direction = "INGRESS"
	DirectionEgress  Direction = "EGRESS"
)

type ProtocolRule struct {
	Protocol string   `json:"protocol"`
	Ports    []string `json:"ports,omitempty"`
}

// FirewallRule is the persisted record backing spec §3's FirewallRule.
type FirewallRule struct {
	Name              string         `json:"name"`
	ProjectID         string         `json:"projectId"`
	Direction         Direction      `json:"direction"`
	Priority          int32          `json:"priority"`
	Action            FirewallAction `json:"action"`
	Rules             []ProtocolRule `json:"rules"`
	SourceRanges      []string       `json:"sourceRanges,omitempty"`
	DestinationRanges []string       `json:"destinationRanges,omitempty"`
	TargetTags        []string       `json:"targetTags,omitempty"`
	CreatedAt         string         `json:"createdAt"`
}

// Network/Subnet/Route/Router/ExternalAddress: metadata records mirroring
// the provider's shapes (spec §3), not enforced in a packet plane.

type Network struct {
	Name                  string `json:"name"`
	ProjectID             string `json:"projectId"`
	AutoCreateSubnetworks bool   `json:"autoCreateSubnetworks"`
	CreatedAt             string `json:"createdAt"`
}

type Subnetwork struct {
	Name        string `json:"name"`
	ProjectID   string `json:"projectId"`
	Network     string `json:"network"`
	Region      string `json:"region"`
	IPCIDRRange string `json:"ipCidrRange"`
	CreatedAt   string `json:"createdAt"`
}

type Route struct {
	Name           string `json:"name"`
	ProjectID      string `json:"projectId"`
	Network        string `json:"network"`
	DestRange      string `json:"destRange"`
	NextHopIP      string `json:"nextHopIp,omitempty"`
	NextHopNetwork string `json:"nextHopNetwork,omitempty"`
	Priority       int32  `json:"priority"`
	CreatedAt      string `json:"createdAt"`
}

type RouterNat struct {
	Name                          string   `json:"name"`
	SourceSubnetworkIPRangesToNat string   `json:"sourceSubnetworkIpRangesToNat"`
	Subnetworks                   []string `json:"subnetworks,omitempty"`
}

type Router struct {
	Name      string      `json:"name"`
	ProjectID string      `json:"projectId"`
	Network   string      `json:"network"`
	Region    string      `json:"region"`
	Nats      []RouterNat `json:"nats,omitempty"`
	CreatedAt string      `json:"createdAt"`
}

type AddressStatus string

const (
	AddressReserved AddressStatus = "RESERVED"
	AddressInUse    AddressStatus = "IN_USE"
)

type ExternalAddress struct {
	Name      string        `json:"name"`
	ProjectID string        `json:"projectId"`
	Address   string        `json:"address"`
	Region    string        `json:"region,omitempty"`
	Status    AddressStatus `json:"status"`
	CreatedAt string        `json:"createdAt"`
}
