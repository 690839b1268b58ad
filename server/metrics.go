package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (s *Server) serveMetrics(w http.ResponseWriter, r *http.Request) {
	if s.Metrics == nil {
		http.NotFound(w, r)
		return
	}
	promhttp.HandlerFor(s.Metrics.Gatherer(), promhttp.HandlerOpts{}).ServeHTTP(w, r)
}
