package server

import (
	"net/http"

	"github.com/golang-jwt/jwt/v4"
	jsoniter "github.com/json-iterator/go"

	"github.com/cloudcore/cloudcore/cmn/cmnerr"
	"github.com/cloudcore/cloudcore/wire"
)

func (s *Server) registerIdentityRoutes() {
	s.handle(http.MethodPost, "/v1/projects/:project/serviceAccounts", s.createServiceAccount)
	s.handle(http.MethodGet, "/v1/projects/:project/serviceAccounts", s.listServiceAccounts)
	s.handle(http.MethodGet, "/v1/projects/:project/serviceAccounts/:account", s.getServiceAccount)
	s.handle(http.MethodPatch, "/v1/projects/:project/serviceAccounts/:account", s.patchServiceAccount)
	s.handle(http.MethodDelete, "/v1/projects/:project/serviceAccounts/:account", s.deleteServiceAccount)

	s.handle(http.MethodPost, "/v1/projects/:project/serviceAccounts/:account/keys", s.createKey)
	s.handle(http.MethodGet, "/v1/projects/:project/serviceAccounts/:account/keys", s.listKeys)
	s.handle(http.MethodGet, "/v1/projects/:project/serviceAccounts/:account/keys/:key", s.getKey)
	s.handle(http.MethodDelete, "/v1/projects/:project/serviceAccounts/:account/keys/:key", s.deleteKey)

	s.handle(http.MethodPost, "/v1/projects/:project/serviceAccounts/:account:getIamPolicy", s.getIamPolicy)
	s.handle(http.MethodPost, "/v1/projects/:project/serviceAccounts/:account:setIamPolicy", s.setIamPolicy)
	s.handle(http.MethodPost, "/v1/projects/:project/serviceAccounts/:account:testIamPermissions", s.testIamPermissions)
	s.handle(http.MethodPost, "/v1/projects/:project/serviceAccounts/:account:signJwt", s.signJwt)
}

type createServiceAccountRequest struct {
	AccountID      string `json:"accountId"`
	ServiceAccount struct {
		DisplayName string `json:"displayName"`
		Description string `json:"description"`
	} `json:"serviceAccount"`
}

func (s *Server) createServiceAccount(w http.ResponseWriter, r *http.Request, params map[string]string) {
	var body createServiceAccountRequest
	if err := wire.DecodeJSONBody(r, &body); err != nil {
		wire.WriteError(w, err)
		return
	}
	sa, err := s.Identity.CreateServiceAccount(params["project"], body.AccountID,
		body.ServiceAccount.DisplayName, body.ServiceAccount.Description)
	if err != nil {
		wire.WriteError(w, err)
		return
	}
	wire.WriteJSON(w, http.StatusOK, toWireServiceAccount(sa))
}

func (s *Server) getServiceAccount(w http.ResponseWriter, r *http.Request, params map[string]string) {
	sa, err := s.Identity.GetServiceAccount(params["project"], params["account"])
	if err != nil {
		wire.WriteError(w, err)
		return
	}
	wire.WriteJSON(w, http.StatusOK, toWireServiceAccount(sa))
}

func (s *Server) listServiceAccounts(w http.ResponseWriter, r *http.Request, params map[string]string) {
	items, err := s.Identity.ListServiceAccounts(params["project"])
	if err != nil {
		wire.WriteError(w, err)
		return
	}
	out := make([]wire.ServiceAccount, len(items))
	for i, sa := range items {
		out[i] = toWireServiceAccount(sa)
	}
	wire.WriteJSON(w, http.StatusOK, wire.ServiceAccountList{Accounts: out})
}

func (s *Server) patchServiceAccount(w http.ResponseWriter, r *http.Request, params map[string]string) {
	var body wire.ServiceAccount
	if err := wire.DecodeJSONBody(r, &body); err != nil {
		wire.WriteError(w, err)
		return
	}
	var displayName, description *string
	if body.DisplayName != "" {
		displayName = &body.DisplayName
	}
	if body.Description != "" {
		description = &body.Description
	}
	disabled := &body.Disabled
	sa, err := s.Identity.UpdateServiceAccount(params["project"], params["account"], displayName, description, disabled)
	if err != nil {
		wire.WriteError(w, err)
		return
	}
	wire.WriteJSON(w, http.StatusOK, toWireServiceAccount(sa))
}

func (s *Server) deleteServiceAccount(w http.ResponseWriter, r *http.Request, params map[string]string) {
	if err := s.Identity.DeleteServiceAccount(params["project"], params["account"]); err != nil {
		wire.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) createKey(w http.ResponseWriter, r *http.Request, params map[string]string) {
	k, err := s.Identity.CreateKey(params["project"], params["account"])
	if err != nil {
		wire.WriteError(w, err)
		return
	}
	wire.WriteJSON(w, http.StatusOK, toWireKey(k))
}

func (s *Server) getKey(w http.ResponseWriter, r *http.Request, params map[string]string) {
	k, err := s.Identity.GetKey(params["account"], params["key"])
	if err != nil {
		wire.WriteError(w, err)
		return
	}
	wire.WriteJSON(w, http.StatusOK, toWireKey(k))
}

func (s *Server) listKeys(w http.ResponseWriter, r *http.Request, params map[string]string) {
	items, err := s.Identity.ListKeys(params["account"])
	if err != nil {
		wire.WriteError(w, err)
		return
	}
	out := make([]wire.ServiceAccountKey, len(items))
	for i, k := range items {
		out[i] = toWireKey(k)
	}
	wire.WriteJSON(w, http.StatusOK, wire.ServiceAccountKeyList{Keys: out})
}

func (s *Server) deleteKey(w http.ResponseWriter, r *http.Request, params map[string]string) {
	if err := s.Identity.DeleteKey(params["account"], params["key"]); err != nil {
		wire.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func resourcePath(params map[string]string) string {
	return "projects/" + params["project"] + "/serviceAccounts/" + params["account"]
}

func (s *Server) getIamPolicy(w http.ResponseWriter, r *http.Request, params map[string]string) {
	p, err := s.Identity.GetPolicy(resourcePath(params))
	if err != nil {
		wire.WriteError(w, err)
		return
	}
	wire.WriteJSON(w, http.StatusOK, wire.Policy{Version: p.Version, Bindings: p.Bindings, Etag: p.Etag})
}

func (s *Server) setIamPolicy(w http.ResponseWriter, r *http.Request, params map[string]string) {
	var body wire.SetIamPolicyRequest
	if err := wire.DecodeJSONBody(r, &body); err != nil {
		wire.WriteError(w, err)
		return
	}
	p, err := s.Identity.SetPolicy(resourcePath(params), body.Policy.Bindings, body.Policy.Etag)
	if err != nil {
		wire.WriteError(w, err)
		return
	}
	wire.WriteJSON(w, http.StatusOK, wire.Policy{Version: p.Version, Bindings: p.Bindings, Etag: p.Etag})
}

func (s *Server) testIamPermissions(w http.ResponseWriter, r *http.Request, params map[string]string) {
	var body wire.TestIamPermissionsRequest
	if err := wire.DecodeJSONBody(r, &body); err != nil {
		wire.WriteError(w, err)
		return
	}
	granted := s.Identity.TestPermissions(resourcePath(params), body.Permissions)
	wire.WriteJSON(w, http.StatusOK, wire.TestIamPermissionsResponse{Permissions: granted})
}

func (s *Server) signJwt(w http.ResponseWriter, r *http.Request, params map[string]string) {
	var body wire.SignJwtRequest
	if err := wire.DecodeJSONBody(r, &body); err != nil {
		wire.WriteError(w, err)
		return
	}
	var claims jwt.MapClaims
	if err := jsoniter.Unmarshal([]byte(body.Payload), &claims); err != nil {
		wire.WriteError(w, cmnerr.Invalidf("identity: signJwt payload is not valid JSON: %v", err))
		return
	}
	keys, err := s.Identity.ListKeys(params["account"])
	if err != nil {
		wire.WriteError(w, err)
		return
	}
	if len(keys) == 0 {
		wire.WriteError(w, cmnerr.NotFoundf("service account %q has no keys to sign with", params["account"]))
		return
	}
	keyID := keys[0].KeyID
	signed, err := s.Identity.SignJWT(params["account"], keyID, claims)
	if err != nil {
		wire.WriteError(w, err)
		return
	}
	wire.WriteJSON(w, http.StatusOK, wire.SignJwtResponse{KeyID: keyID, SignedJwt: signed})
}
