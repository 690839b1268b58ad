package server

import (
	"net/http"

	"github.com/cloudcore/cloudcore/operations"
	"github.com/cloudcore/cloudcore/wire"
)

func (s *Server) registerOperationsRoutes() {
	s.handle(http.MethodGet, "/compute/v1/projects/:project/global/operations/:name", s.getGlobalOperation)
	s.handle(http.MethodGet, "/compute/v1/projects/:project/global/operations", s.listGlobalOperations)
	s.handle(http.MethodGet, "/compute/v1/projects/:project/regions/:region/operations/:name", s.getRegionOperation)
	s.handle(http.MethodGet, "/compute/v1/projects/:project/regions/:region/operations", s.listRegionOperations)
	s.handle(http.MethodGet, "/compute/v1/projects/:project/zones/:zone/operations/:name", s.getZoneOperation)
	s.handle(http.MethodGet, "/compute/v1/projects/:project/zones/:zone/operations", s.listZoneOperations)
}

func (s *Server) getGlobalOperation(w http.ResponseWriter, r *http.Request, params map[string]string) {
	s.writeOperation(w, params["project"], params["name"])
}

func (s *Server) getRegionOperation(w http.ResponseWriter, r *http.Request, params map[string]string) {
	s.writeOperation(w, params["project"], params["name"])
}

func (s *Server) getZoneOperation(w http.ResponseWriter, r *http.Request, params map[string]string) {
	s.writeOperation(w, params["project"], params["name"])
}

func (s *Server) writeOperation(w http.ResponseWriter, projectID, id string) {
	op, err := s.Ops.Get(projectID, id)
	if err != nil {
		wire.WriteError(w, err)
		return
	}
	wire.WriteJSON(w, http.StatusOK, toWireOperation(op))
}

func (s *Server) listGlobalOperations(w http.ResponseWriter, r *http.Request, params map[string]string) {
	s.listOperations(w, params["project"], operations.ScopeGlobal, "")
}

func (s *Server) listRegionOperations(w http.ResponseWriter, r *http.Request, params map[string]string) {
	s.listOperations(w, params["project"], operations.ScopeRegion, params["region"])
}

func (s *Server) listZoneOperations(w http.ResponseWriter, r *http.Request, params map[string]string) {
	s.listOperations(w, params["project"], operations.ScopeZone, params["zone"])
}

func (s *Server) listOperations(w http.ResponseWriter, projectID string, scope operations.Scope, scopeName string) {
	items, err := s.Ops.List(projectID, scope, scopeName)
	if err != nil {
		wire.WriteError(w, err)
		return
	}
	out := make([]wire.Operation, len(items))
	for i, op := range items {
		out[i] = toWireOperation(op)
	}
	wire.WriteJSON(w, http.StatusOK, wire.OperationList{Kind: "compute#operationList", Items: out})
}
