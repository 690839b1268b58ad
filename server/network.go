package server

import (
	"net/http"

	"github.com/cloudcore/cloudcore/network"
	"github.com/cloudcore/cloudcore/operations"
	"github.com/cloudcore/cloudcore/wire"
)

func (s *Server) registerNetworkRoutes() {
	s.handle(http.MethodPost, "/compute/v1/projects/:project/global/networks", s.createNetwork)
	s.handle(http.MethodGet, "/compute/v1/projects/:project/global/networks", s.listNetworks)
	s.handle(http.MethodGet, "/compute/v1/projects/:project/global/networks/:name", s.getNetwork)
	s.handle(http.MethodDelete, "/compute/v1/projects/:project/global/networks/:name", s.deleteNetwork)

	s.handle(http.MethodPost, "/compute/v1/projects/:project/regions/:region/subnetworks", s.createSubnetwork)
	s.handle(http.MethodGet, "/compute/v1/projects/:project/regions/:region/subnetworks", s.listSubnetworks)
	s.handle(http.MethodGet, "/compute/v1/projects/:project/regions/:region/subnetworks/:name", s.getSubnetwork)

	s.handle(http.MethodPost, "/compute/v1/projects/:project/global/firewalls", s.createFirewall)
	s.handle(http.MethodGet, "/compute/v1/projects/:project/global/firewalls", s.listFirewalls)
	s.handle(http.MethodGet, "/compute/v1/projects/:project/global/firewalls/:name", s.getFirewall)
	s.handle(http.MethodDelete, "/compute/v1/projects/:project/global/firewalls/:name", s.deleteFirewall)

	s.handle(http.MethodPost, "/compute/v1/projects/:project/global/routes", s.createRoute)
	s.handle(http.MethodGet, "/compute/v1/projects/:project/global/routes", s.listRoutes)

	s.handle(http.MethodPost, "/compute/v1/projects/:project/regions/:region/routers", s.createRouter)
	s.handle(http.MethodGet, "/compute/v1/projects/:project/regions/:region/routers", s.listRouters)

	s.handle(http.MethodPost, "/compute/v1/projects/:project/regions/:region/addresses", s.reserveAddress)
	s.handle(http.MethodGet, "/compute/v1/projects/:project/regions/:region/addresses", s.listAddresses)
}

func (s *Server) createNetwork(w http.ResponseWriter, r *http.Request, params map[string]string) {
	var body wire.Network
	if err := wire.DecodeJSONBody(r, &body); err != nil {
		wire.WriteError(w, err)
		return
	}
	projectID := params["project"]
	op, err := s.Ops.Wrap(projectID, operations.ScopeGlobal, "", "insert",
		"/compute/v1/projects/"+projectID+"/global/networks/"+body.Name,
		func() error {
			_, ierr := s.Network.CreateNetwork(network.Network{
				Name: body.Name, ProjectID: projectID, AutoCreateSubnetworks: body.AutoCreateSubnetworks,
			})
			return ierr
		})
	if err != nil {
		wire.WriteError(w, err)
		return
	}
	wire.WriteJSON(w, http.StatusOK, toWireOperation(op))
}

func (s *Server) getNetwork(w http.ResponseWriter, r *http.Request, params map[string]string) {
	n, err := s.Network.GetNetwork(params["project"], params["name"])
	if err != nil {
		wire.WriteError(w, err)
		return
	}
	wire.WriteJSON(w, http.StatusOK, toWireNetwork(n))
}

func (s *Server) listNetworks(w http.ResponseWriter, r *http.Request, params map[string]string) {
	items, err := s.Network.ListNetworks(params["project"])
	if err != nil {
		wire.WriteError(w, err)
		return
	}
	out := make([]wire.Network, len(items))
	for i, n := range items {
		out[i] = toWireNetwork(n)
	}
	wire.WriteJSON(w, http.StatusOK, wire.NetworkList{Kind: "compute#networkList", Items: out})
}

func (s *Server) deleteNetwork(w http.ResponseWriter, r *http.Request, params map[string]string) {
	projectID, name := params["project"], params["name"]
	op, err := s.Ops.Wrap(projectID, operations.ScopeGlobal, "", "delete",
		"/compute/v1/projects/"+projectID+"/global/networks/"+name,
		func() error { return s.Network.DeleteNetwork(projectID, name) })
	if err != nil {
		wire.WriteError(w, err)
		return
	}
	wire.WriteJSON(w, http.StatusOK, toWireOperation(op))
}

func (s *Server) createSubnetwork(w http.ResponseWriter, r *http.Request, params map[string]string) {
	var body wire.Subnetwork
	if err := wire.DecodeJSONBody(r, &body); err != nil {
		wire.WriteError(w, err)
		return
	}
	projectID, region := params["project"], params["region"]
	op, err := s.Ops.Wrap(projectID, operations.ScopeRegion, region, "insert",
		"/compute/v1/projects/"+projectID+"/regions/"+region+"/subnetworks/"+body.Name,
		func() error {
			_, ierr := s.Network.CreateSubnetwork(network.Subnetwork{
				Name: body.Name, ProjectID: projectID, Network: body.Network, Region: region,
				IPCIDRRange: body.IpCidrRange,
			})
			return ierr
		})
	if err != nil {
		wire.WriteError(w, err)
		return
	}
	wire.WriteJSON(w, http.StatusOK, toWireOperation(op))
}

func (s *Server) getSubnetwork(w http.ResponseWriter, r *http.Request, params map[string]string) {
	sn, err := s.Network.GetSubnetwork(params["project"], params["region"], params["name"])
	if err != nil {
		wire.WriteError(w, err)
		return
	}
	wire.WriteJSON(w, http.StatusOK, toWireSubnetwork(sn))
}

func (s *Server) listSubnetworks(w http.ResponseWriter, r *http.Request, params map[string]string) {
	items, err := s.Network.ListSubnetworks(params["project"])
	if err != nil {
		wire.WriteError(w, err)
		return
	}
	out := make([]wire.Subnetwork, len(items))
	for i, sn := range items {
		out[i] = toWireSubnetwork(sn)
	}
	wire.WriteJSON(w, http.StatusOK, wire.SubnetworkList{Kind: "compute#subnetworkList", Items: out})
}

func (s *Server) createFirewall(w http.ResponseWriter, r *http.Request, params map[string]string) {
	var body wire.Firewall
	if err := wire.DecodeJSONBody(r, &body); err != nil {
		wire.WriteError(w, err)
		return
	}
	projectID := params["project"]
	op, err := s.Ops.Wrap(projectID, operations.ScopeGlobal, "", "insert",
		"/compute/v1/projects/"+projectID+"/global/firewalls/"+body.Name,
		func() error {
			_, ierr := s.Network.CreateFirewallRule(fromWireFirewall(body, projectID))
			return ierr
		})
	if err != nil {
		wire.WriteError(w, err)
		return
	}
	wire.WriteJSON(w, http.StatusOK, toWireOperation(op))
}

func (s *Server) getFirewall(w http.ResponseWriter, r *http.Request, params map[string]string) {
	fw, err := s.Network.GetFirewallRule(params["project"], params["name"])
	if err != nil {
		wire.WriteError(w, err)
		return
	}
	wire.WriteJSON(w, http.StatusOK, toWireFirewall(fw))
}

func (s *Server) listFirewalls(w http.ResponseWriter, r *http.Request, params map[string]string) {
	items, err := s.Network.ListFirewallRules(params["project"])
	if err != nil {
		wire.WriteError(w, err)
		return
	}
	out := make([]wire.Firewall, len(items))
	for i, fw := range items {
		out[i] = toWireFirewall(fw)
	}
	wire.WriteJSON(w, http.StatusOK, wire.FirewallList{Kind: "compute#firewallList", Items: out})
}

func (s *Server) deleteFirewall(w http.ResponseWriter, r *http.Request, params map[string]string) {
	projectID, name := params["project"], params["name"]
	op, err := s.Ops.Wrap(projectID, operations.ScopeGlobal, "", "delete",
		"/compute/v1/projects/"+projectID+"/global/firewalls/"+name,
		func() error { return s.Network.DeleteFirewallRule(projectID, name) })
	if err != nil {
		wire.WriteError(w, err)
		return
	}
	wire.WriteJSON(w, http.StatusOK, toWireOperation(op))
}

func (s *Server) createRoute(w http.ResponseWriter, r *http.Request, params map[string]string) {
	var body wire.Route
	if err := wire.DecodeJSONBody(r, &body); err != nil {
		wire.WriteError(w, err)
		return
	}
	projectID := params["project"]
	op, err := s.Ops.Wrap(projectID, operations.ScopeGlobal, "", "insert",
		"/compute/v1/projects/"+projectID+"/global/routes/"+body.Name,
		func() error {
			_, ierr := s.Network.CreateRoute(network.Route{
				Name: body.Name, ProjectID: projectID, Network: body.Network, DestRange: body.DestRange,
				NextHopIP: body.NextHopIP, NextHopNetwork: body.NextHopNetwork, Priority: body.Priority,
			})
			return ierr
		})
	if err != nil {
		wire.WriteError(w, err)
		return
	}
	wire.WriteJSON(w, http.StatusOK, toWireOperation(op))
}

func (s *Server) listRoutes(w http.ResponseWriter, r *http.Request, params map[string]string) {
	items, err := s.Network.ListRoutes(params["project"])
	if err != nil {
		wire.WriteError(w, err)
		return
	}
	out := make([]wire.Route, len(items))
	for i, rt := range items {
		out[i] = toWireRoute(rt)
	}
	wire.WriteJSON(w, http.StatusOK, wire.RouteList{Kind: "compute#routeList", Items: out})
}

func (s *Server) createRouter(w http.ResponseWriter, r *http.Request, params map[string]string) {
	var body wire.Router
	if err := wire.DecodeJSONBody(r, &body); err != nil {
		wire.WriteError(w, err)
		return
	}
	projectID, region := params["project"], params["region"]
	nats := make([]network.RouterNat, len(body.Nats))
	for i, n := range body.Nats {
		nats[i] = network.RouterNat{
			Name: n.Name, SourceSubnetworkIPRangesToNat: n.SourceSubnetworkIpRangesToNat, Subnetworks: n.Subnetworks,
		}
	}
	op, err := s.Ops.Wrap(projectID, operations.ScopeRegion, region, "insert",
		"/compute/v1/projects/"+projectID+"/regions/"+region+"/routers/"+body.Name,
		func() error {
			_, ierr := s.Network.CreateRouter(network.Router{
				Name: body.Name, ProjectID: projectID, Network: body.Network, Region: region, Nats: nats,
			})
			return ierr
		})
	if err != nil {
		wire.WriteError(w, err)
		return
	}
	wire.WriteJSON(w, http.StatusOK, toWireOperation(op))
}

func (s *Server) listRouters(w http.ResponseWriter, r *http.Request, params map[string]string) {
	items, err := s.Network.ListRouters(params["project"])
	if err != nil {
		wire.WriteError(w, err)
		return
	}
	out := make([]wire.Router, len(items))
	for i, rt := range items {
		out[i] = toWireRouter(rt)
	}
	wire.WriteJSON(w, http.StatusOK, wire.RouterList{Kind: "compute#routerList", Items: out})
}

func (s *Server) reserveAddress(w http.ResponseWriter, r *http.Request, params map[string]string) {
	var body wire.Address
	if err := wire.DecodeJSONBody(r, &body); err != nil {
		wire.WriteError(w, err)
		return
	}
	projectID, region := params["project"], params["region"]
	op, err := s.Ops.Wrap(projectID, operations.ScopeRegion, region, "insert",
		"/compute/v1/projects/"+projectID+"/regions/"+region+"/addresses/"+body.Name,
		func() error {
			_, ierr := s.Network.ReserveAddress(projectID, body.Name, region)
			return ierr
		})
	if err != nil {
		wire.WriteError(w, err)
		return
	}
	wire.WriteJSON(w, http.StatusOK, toWireOperation(op))
}

func (s *Server) listAddresses(w http.ResponseWriter, r *http.Request, params map[string]string) {
	items, err := s.Network.ListAddresses(params["project"])
	if err != nil {
		wire.WriteError(w, err)
		return
	}
	out := make([]wire.Address, len(items))
	for i, a := range items {
		out[i] = toWireAddress(a)
	}
	wire.WriteJSON(w, http.StatusOK, wire.AddressList{Kind: "compute#addressList", Items: out})
}
