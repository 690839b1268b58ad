package wire

// Network mirrors compute/v1's Network resource (spec §4.3).
type Network struct {
	Kind              string `json:"kind"`
	ID                uint64 `json:"id,string"`
	SelfLink          string `json:"selfLink"`
	Name              string `json:"name"`
	AutoCreateSubnetworks bool `json:"autoCreateSubnetworks"`
	CreationTimestamp string `json:"creationTimestamp"`
}

type NetworkList struct {
	Kind  string    `json:"kind"`
	Items []Network `json:"items"`
}

// Subnetwork mirrors compute/v1's Subnetwork resource.
type Subnetwork struct {
	Kind              string `json:"kind"`
	ID                uint64 `json:"id,string"`
	SelfLink          string `json:"selfLink"`
	Name              string `json:"name"`
	Network           string `json:"network"`
	Region            string `json:"region"`
	IpCidrRange       string `json:"ipCidrRange"`
	CreationTimestamp string `json:"creationTimestamp"`
}

type SubnetworkList struct {
	Kind  string       `json:"kind"`
	Items []Subnetwork `json:"items"`
}

// Firewall mirrors compute/v1's Firewall resource (spec §4.3).
type Firewall struct {
	Kind              string          `json:"kind"`
	ID                uint64          `json:"id,string"`
	SelfLink          string          `json:"selfLink"`
	Name              string          `json:"name"`
	Network           string          `json:"network"`
	Direction         string          `json:"direction"` // INGRESS | EGRESS
	Priority          int32           `json:"priority"`
	SourceRanges      []string        `json:"sourceRanges,omitempty"`
	DestinationRanges []string        `json:"destinationRanges,omitempty"`
	Allowed           []FirewallAllowed `json:"allowed,omitempty"`
	Denied            []FirewallDenied  `json:"denied,omitempty"`
	CreationTimestamp string          `json:"creationTimestamp"`
}

type FirewallAllowed struct {
	IPProtocol string   `json:"IPProtocol"`
	Ports      []string `json:"ports,omitempty"`
}

type FirewallDenied struct {
	IPProtocol string   `json:"IPProtocol"`
	Ports      []string `json:"ports,omitempty"`
}

type FirewallList struct {
	Kind  string     `json:"kind"`
	Items []Firewall `json:"items"`
}

// Route mirrors compute/v1's Route resource (§4.3 expansion).
type Route struct {
	Kind             string `json:"kind"`
	ID               uint64 `json:"id,string"`
	SelfLink         string `json:"selfLink"`
	Name             string `json:"name"`
	Network          string `json:"network"`
	DestRange        string `json:"destRange"`
	NextHopIP        string `json:"nextHopIp,omitempty"`
	NextHopNetwork   string `json:"nextHopNetwork,omitempty"`
	Priority         int32  `json:"priority"`
	CreationTimestamp string `json:"creationTimestamp"`
}

type RouteList struct {
	Kind  string  `json:"kind"`
	Items []Route `json:"items"`
}

// Router mirrors compute/v1's Router resource (§4.3 expansion); NATs
// reference a subset of the router's own subnetworks.
type Router struct {
	Kind              string      `json:"kind"`
	ID                uint64      `json:"id,string"`
	SelfLink          string      `json:"selfLink"`
	Name              string      `json:"name"`
	Network           string      `json:"network"`
	Region            string      `json:"region"`
	Nats              []RouterNat `json:"nats,omitempty"`
	CreationTimestamp string      `json:"creationTimestamp"`
}

type RouterNat struct {
	Name                          string   `json:"name"`
	SourceSubnetworkIpRangesToNat string   `json:"sourceSubnetworkIpRangesToNat"`
	Subnetworks                   []string `json:"subnetworks,omitempty"`
}

type RouterList struct {
	Kind  string   `json:"kind"`
	Items []Router `json:"items"`
}

// Address mirrors compute/v1's Address resource for reserved external IPs.
type Address struct {
	Kind              string `json:"kind"`
	ID                uint64 `json:"id,string"`
	SelfLink          string `json:"selfLink"`
	Name              string `json:"name"`
	Address           string `json:"address"`
	Region            string `json:"region,omitempty"`
	Status            string `json:"status"` // RESERVED | IN_USE
	CreationTimestamp string `json:"creationTimestamp"`
}

type AddressList struct {
	Kind  string    `json:"kind"`
	Items []Address `json:"items"`
}
