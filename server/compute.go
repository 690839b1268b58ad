package server

import (
	"net/http"

	"github.com/cloudcore/cloudcore/compute"
	"github.com/cloudcore/cloudcore/operations"
	"github.com/cloudcore/cloudcore/wire"
)

func (s *Server) registerComputeRoutes() {
	s.handle(http.MethodGet, "/compute/v1/projects/:project/zones/:zone/machineTypes", s.listMachineTypes)

	s.handle(http.MethodPost, "/compute/v1/projects/:project/zones/:zone/instances", s.createInstance)
	s.handle(http.MethodGet, "/compute/v1/projects/:project/zones/:zone/instances", s.listInstances)
	s.handle(http.MethodGet, "/compute/v1/projects/:project/zones/:zone/instances/:name", s.getInstance)
	s.handle(http.MethodDelete, "/compute/v1/projects/:project/zones/:zone/instances/:name", s.deleteInstance)
	s.handle(http.MethodPost, "/compute/v1/projects/:project/zones/:zone/instances/:name/start", s.startInstance)
	s.handle(http.MethodPost, "/compute/v1/projects/:project/zones/:zone/instances/:name/stop", s.stopInstance)
	s.handle(http.MethodPost, "/compute/v1/projects/:project/zones/:zone/instances/:name/reset", s.resetInstance)
	s.handle(http.MethodPost, "/compute/v1/projects/:project/zones/:zone/instances/:name/setMetadata", s.setInstanceMetadata)
	s.handle(http.MethodPost, "/compute/v1/projects/:project/zones/:zone/instances/:name/setTags", s.setInstanceTags)
	s.handle(http.MethodPost, "/compute/v1/projects/:project/zones/:zone/instances/:name/setLabels", s.setInstanceLabels)

	s.handle(http.MethodPost, "/compute/v1/projects/:project/zones/:zone/disks", s.createDisk)
	s.handle(http.MethodGet, "/compute/v1/projects/:project/zones/:zone/disks", s.listDisks)
	s.handle(http.MethodGet, "/compute/v1/projects/:project/zones/:zone/disks/:name", s.getDisk)
	s.handle(http.MethodDelete, "/compute/v1/projects/:project/zones/:zone/disks/:name", s.deleteDisk)
}

func (s *Server) listMachineTypes(w http.ResponseWriter, r *http.Request, params map[string]string) {
	items := compute.Catalog(params["zone"])
	out := make([]wire.MachineType, len(items))
	for i, mt := range items {
		out[i] = toWireMachineType(mt)
	}
	wire.WriteJSON(w, http.StatusOK, wire.MachineTypeList{Kind: "compute#machineTypeList", Items: out})
}

type instanceRequest struct {
	Name        string            `json:"name"`
	MachineType string            `json:"machineType"`
	Tags        *wire.InstanceTags `json:"tags,omitempty"`
	Labels      map[string]string `json:"labels,omitempty"`
	Metadata    *wire.InstanceMetadata `json:"metadata,omitempty"`
}

func (s *Server) createInstance(w http.ResponseWriter, r *http.Request, params map[string]string) {
	var body instanceRequest
	if err := wire.DecodeJSONBody(r, &body); err != nil {
		wire.WriteError(w, err)
		return
	}
	projectID, zone := params["project"], params["zone"]
	op, err := s.Ops.Wrap(projectID, operations.ScopeZone, zone, "insert",
		"/compute/v1/projects/"+projectID+"/zones/"+zone+"/instances/"+body.Name,
		func() error {
			_, ierr := s.Compute.CreateInstance(r.Context(), compute.CreateInput{
				ProjectID:   projectID,
				Zone:        zone,
				Name:        body.Name,
				MachineType: body.MachineType,
				Tags:        tagsFromWire(body.Tags),
				Labels:      body.Labels,
				Metadata:    metadataFromWire(body.Metadata),
			})
			return ierr
		})
	if err != nil {
		wire.WriteError(w, err)
		return
	}
	wire.WriteJSON(w, http.StatusOK, toWireOperation(op))
}

func tagsFromWire(t *wire.InstanceTags) []string {
	if t == nil {
		return nil
	}
	return t.Items
}

func metadataFromWire(m *wire.InstanceMetadata) map[string]string {
	if m == nil {
		return nil
	}
	out := make(map[string]string, len(m.Items))
	for _, item := range m.Items {
		out[item.Key] = item.Value
	}
	return out
}

func (s *Server) getInstance(w http.ResponseWriter, r *http.Request, params map[string]string) {
	inst, err := s.Compute.GetInstance(params["project"], params["zone"], params["name"])
	if err != nil {
		wire.WriteError(w, err)
		return
	}
	wire.WriteJSON(w, http.StatusOK, toWireInstance(inst))
}

func (s *Server) listInstances(w http.ResponseWriter, r *http.Request, params map[string]string) {
	items, err := s.Compute.ListInstances(params["project"], params["zone"])
	if err != nil {
		wire.WriteError(w, err)
		return
	}
	out := make([]wire.Instance, len(items))
	for i, inst := range items {
		out[i] = toWireInstance(inst)
	}
	wire.WriteJSON(w, http.StatusOK, wire.InstanceList{Kind: "compute#instanceList", Items: out})
}

func (s *Server) deleteInstance(w http.ResponseWriter, r *http.Request, params map[string]string) {
	projectID, zone, name := params["project"], params["zone"], params["name"]
	op, err := s.Ops.Wrap(projectID, operations.ScopeZone, zone, "delete",
		"/compute/v1/projects/"+projectID+"/zones/"+zone+"/instances/"+name,
		func() error { return s.Compute.DeleteInstance(r.Context(), projectID, zone, name) })
	if err != nil {
		wire.WriteError(w, err)
		return
	}
	wire.WriteJSON(w, http.StatusOK, toWireOperation(op))
}

func (s *Server) startInstance(w http.ResponseWriter, r *http.Request, params map[string]string) {
	projectID, zone, name := params["project"], params["zone"], params["name"]
	op, err := s.Ops.Wrap(projectID, operations.ScopeZone, zone, "start",
		"/compute/v1/projects/"+projectID+"/zones/"+zone+"/instances/"+name,
		func() error {
			_, ierr := s.Compute.StartInstance(r.Context(), projectID, zone, name)
			return ierr
		})
	if err != nil {
		wire.WriteError(w, err)
		return
	}
	wire.WriteJSON(w, http.StatusOK, toWireOperation(op))
}

func (s *Server) stopInstance(w http.ResponseWriter, r *http.Request, params map[string]string) {
	projectID, zone, name := params["project"], params["zone"], params["name"]
	op, err := s.Ops.Wrap(projectID, operations.ScopeZone, zone, "stop",
		"/compute/v1/projects/"+projectID+"/zones/"+zone+"/instances/"+name,
		func() error {
			_, ierr := s.Compute.StopInstance(r.Context(), projectID, zone, name)
			return ierr
		})
	if err != nil {
		wire.WriteError(w, err)
		return
	}
	wire.WriteJSON(w, http.StatusOK, toWireOperation(op))
}

func (s *Server) resetInstance(w http.ResponseWriter, r *http.Request, params map[string]string) {
	projectID, zone, name := params["project"], params["zone"], params["name"]
	op, err := s.Ops.Wrap(projectID, operations.ScopeZone, zone, "reset",
		"/compute/v1/projects/"+projectID+"/zones/"+zone+"/instances/"+name,
		func() error {
			_, ierr := s.Compute.Reset(r.Context(), projectID, zone, name)
			return ierr
		})
	if err != nil {
		wire.WriteError(w, err)
		return
	}
	wire.WriteJSON(w, http.StatusOK, toWireOperation(op))
}

func (s *Server) setInstanceMetadata(w http.ResponseWriter, r *http.Request, params map[string]string) {
	var body wire.InstanceMetadata
	if err := wire.DecodeJSONBody(r, &body); err != nil {
		wire.WriteError(w, err)
		return
	}
	projectID, zone, name := params["project"], params["zone"], params["name"]
	op, err := s.Ops.Wrap(projectID, operations.ScopeZone, zone, "setMetadata",
		"/compute/v1/projects/"+projectID+"/zones/"+zone+"/instances/"+name,
		func() error {
			_, ierr := s.Compute.SetMetadata(projectID, zone, name, metadataFromWire(&body))
			return ierr
		})
	if err != nil {
		wire.WriteError(w, err)
		return
	}
	wire.WriteJSON(w, http.StatusOK, toWireOperation(op))
}

func (s *Server) setInstanceTags(w http.ResponseWriter, r *http.Request, params map[string]string) {
	var body wire.InstanceTags
	if err := wire.DecodeJSONBody(r, &body); err != nil {
		wire.WriteError(w, err)
		return
	}
	projectID, zone, name := params["project"], params["zone"], params["name"]
	op, err := s.Ops.Wrap(projectID, operations.ScopeZone, zone, "setTags",
		"/compute/v1/projects/"+projectID+"/zones/"+zone+"/instances/"+name,
		func() error {
			_, ierr := s.Compute.SetTags(projectID, zone, name, body.Items)
			return ierr
		})
	if err != nil {
		wire.WriteError(w, err)
		return
	}
	wire.WriteJSON(w, http.StatusOK, toWireOperation(op))
}

func (s *Server) setInstanceLabels(w http.ResponseWriter, r *http.Request, params map[string]string) {
	var body struct {
		Labels map[string]string `json:"labels"`
	}
	if err := wire.DecodeJSONBody(r, &body); err != nil {
		wire.WriteError(w, err)
		return
	}
	projectID, zone, name := params["project"], params["zone"], params["name"]
	op, err := s.Ops.Wrap(projectID, operations.ScopeZone, zone, "setLabels",
		"/compute/v1/projects/"+projectID+"/zones/"+zone+"/instances/"+name,
		func() error {
			_, ierr := s.Compute.SetLabels(projectID, zone, name, body.Labels)
			return ierr
		})
	if err != nil {
		wire.WriteError(w, err)
		return
	}
	wire.WriteJSON(w, http.StatusOK, toWireOperation(op))
}

func (s *Server) createDisk(w http.ResponseWriter, r *http.Request, params map[string]string) {
	var body wire.Disk
	if err := wire.DecodeJSONBody(r, &body); err != nil {
		wire.WriteError(w, err)
		return
	}
	projectID, zone := params["project"], params["zone"]
	op, err := s.Ops.Wrap(projectID, operations.ScopeZone, zone, "insert",
		"/compute/v1/projects/"+projectID+"/zones/"+zone+"/disks/"+body.Name,
		func() error {
			_, ierr := s.Compute.CreateDisk(projectID, zone, body.Name, body.SizeGb)
			return ierr
		})
	if err != nil {
		wire.WriteError(w, err)
		return
	}
	wire.WriteJSON(w, http.StatusOK, toWireOperation(op))
}

func (s *Server) getDisk(w http.ResponseWriter, r *http.Request, params map[string]string) {
	d, err := s.Compute.GetDisk(params["project"], params["zone"], params["name"])
	if err != nil {
		wire.WriteError(w, err)
		return
	}
	wire.WriteJSON(w, http.StatusOK, toWireDisk(d))
}

func (s *Server) listDisks(w http.ResponseWriter, r *http.Request, params map[string]string) {
	items, err := s.Compute.ListDisks(params["project"], params["zone"])
	if err != nil {
		wire.WriteError(w, err)
		return
	}
	out := make([]wire.Disk, len(items))
	for i, d := range items {
		out[i] = toWireDisk(d)
	}
	wire.WriteJSON(w, http.StatusOK, wire.DiskList{Kind: "compute#diskList", Items: out})
}

func (s *Server) deleteDisk(w http.ResponseWriter, r *http.Request, params map[string]string) {
	projectID, zone, name := params["project"], params["zone"], params["name"]
	op, err := s.Ops.Wrap(projectID, operations.ScopeZone, zone, "delete",
		"/compute/v1/projects/"+projectID+"/zones/"+zone+"/disks/"+name,
		func() error { return s.Compute.DeleteDisk(projectID, zone, name) })
	if err != nil {
		wire.WriteError(w, err)
		return
	}
	wire.WriteJSON(w, http.StatusOK, toWireOperation(op))
}
