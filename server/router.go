// Package server wires objectstore/compute/network/identity/operations
// to the HTTP surface of spec §6: paths and JSON shapes byte-for-byte
// compatible with the target provider's v1 APIs. Grounded on the
// teacher's resource-family handler grouping (ais/proxy.go groups
// bucket/object/xaction handlers under one dispatch switch rather than
// per-route closures); routing here is a small segment matcher since the
// path grammar (project/zone/bucket segments as path parameters) doesn't
// fit net/http.ServeMux's pattern syntax on this module's Go version.
package server

import (
	"net/http"
	"strings"

	"github.com/cloudcore/cloudcore/cmn/config"
	"github.com/cloudcore/cloudcore/cmn/metrics"
	"github.com/cloudcore/cloudcore/identity"
	"github.com/cloudcore/cloudcore/network"
	"github.com/cloudcore/cloudcore/objectstore"
	"github.com/cloudcore/cloudcore/operations"

	"github.com/cloudcore/cloudcore/compute"
)

// Server holds every domain dependency as a plain field, consuming the
// handler table below (spec §9's "single ServiceContext").
type Server struct {
	Store    *objectstore.Store
	Compute  *compute.Controller
	Network  *network.Allocator
	Identity *identity.Registry
	Ops      *operations.Registry
	Config   *config.Config
	Metrics  *metrics.Registry

	routes []route
}

type handlerFunc func(w http.ResponseWriter, r *http.Request, params map[string]string)

type route struct {
	method  string
	pattern []string // segments; a segment of "*" matches one path part and is captured under its param name
	params  []string
	handler handlerFunc
}

func New(s *Server) *Server {
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.registerStorageRoutes()
	s.registerComputeRoutes()
	s.registerNetworkRoutes()
	s.registerIdentityRoutes()
	s.registerOperationsRoutes()
}

// projectID reads the ?project= query parameter the storage handlers
// accept as an override, falling back to Config.DefaultProjectID (spec §9's single
// default project when the caller omits one).
func (s *Server) projectID(r *http.Request) string {
	if p := r.URL.Query().Get("project"); p != "" {
		return p
	}
	if s.Config != nil {
		return s.Config.DefaultProjectID
	}
	return "default"
}

// segment kinds: a literal ("storage", "v1", "b") must match exactly; a
// leading ':' names a captured parameter; a segment of the form
// ":param:suffix" captures everything up to a literal ":suffix" custom-
// method tail on the same path segment (the provider's "resource:verb"
// convention, e.g. "serviceAccounts/foo:getIamPolicy").
func splitPattern(pattern string) ([]string, []string) {
	parts := strings.Split(strings.Trim(pattern, "/"), "/")
	var segs, params []string
	for _, p := range parts {
		if strings.HasPrefix(p, ":") {
			rest := strings.TrimPrefix(p, ":")
			if i := strings.IndexByte(rest, ':'); i >= 0 {
				segs = append(segs, ":"+rest[i+1:]) // "*:suffix" kind, matched against a literal tail
				params = append(params, rest[:i])
				continue
			}
			segs = append(segs, "*")
			params = append(params, rest)
		} else {
			segs = append(segs, p)
			params = append(params, "")
		}
	}
	return segs, params
}

func (s *Server) handle(method, pattern string, h handlerFunc) {
	segs, params := splitPattern(pattern)
	s.routes = append(s.routes, route{method: method, pattern: segs, params: params, handler: h})
}

// ServeHTTP implements http.Handler directly so cmd/cloudcored can wrap
// it with fasthttpadaptor.NewFastHTTPHandler without an intermediate mux.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path == "/metrics" {
		s.serveMetrics(w, r)
		return
	}
	path := strings.Trim(r.URL.Path, "/")
	var parts []string
	if path != "" {
		parts = strings.Split(path, "/")
	}
	for _, rt := range s.routes {
		if rt.method != r.Method || len(rt.pattern) != len(parts) {
			continue
		}
		params := map[string]string{}
		matched := true
		for i, seg := range rt.pattern {
			if seg == "*" {
				params[rt.params[i]] = parts[i]
				continue
			}
			if strings.HasPrefix(seg, ":") {
				suffix := ":" + seg[1:]
				if !strings.HasSuffix(parts[i], suffix) {
					matched = false
					break
				}
				params[rt.params[i]] = strings.TrimSuffix(parts[i], suffix)
				continue
			}
			if seg != parts[i] {
				matched = false
				break
			}
		}
		if !matched {
			continue
		}
		rt.handler(w, r, params)
		return
	}
	http.NotFound(w, r)
}
