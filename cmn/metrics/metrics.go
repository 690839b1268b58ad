// Package metrics wires prometheus/client_golang counters and gauges for
// the ambient observability spec.md's Non-goals never exclude (only data
// plane throughput tuning and multi-tenant isolation are out of scope).
// Grounded on the teacher's own prometheus/client_golang dependency;
// aistore's legacy stats package targeted an older StatsD stack that
// doesn't match the teacher's current manifest (see DESIGN.md).
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Registry bundles every counter/gauge the daemon exposes. A single
// instance is built in cmd/cloudcored; tests construct their own to avoid
// colliding with the global prometheus registry.
type Registry struct {
	reg *prometheus.Registry

	RequestsTotal      *prometheus.CounterVec
	UploadBytesTotal    prometheus.Counter
	InstanceTransitions *prometheus.CounterVec
	InstancesByStatus   *prometheus.GaugeVec
	AllocatedInternalIPs *prometheus.GaugeVec
	AllocatedExternalIPs *prometheus.GaugeVec
	OperationsTotal     *prometheus.CounterVec
	WebhookDeliveries    *prometheus.CounterVec
	LifecycleActions     *prometheus.CounterVec
}

func New() *Registry {
	reg := prometheus.NewRegistry()
	r := &Registry{
		reg: reg,
		RequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cloudcore_requests_total",
			Help: "Total HTTP requests handled, by resource family and outcome.",
		}, []string{"family", "outcome"}),
		UploadBytesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cloudcore_upload_bytes_total",
			Help: "Total bytes accepted across all object upload methods.",
		}),
		InstanceTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cloudcore_instance_transitions_total",
			Help: "Instance state-machine transitions, by target status.",
		}, []string{"status"}),
		InstancesByStatus: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "cloudcore_instances_by_status",
			Help: "Current instance count, by status.",
		}, []string{"status"}),
		AllocatedInternalIPs: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "cloudcore_allocated_internal_ips",
			Help: "Allocated internal IP count, by project.",
		}, []string{"project"}),
		AllocatedExternalIPs: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "cloudcore_allocated_external_ips",
			Help: "Allocated external IP count, by project.",
		}, []string{"project"}),
		OperationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cloudcore_operations_total",
			Help: "Operations created, by operation_type.",
		}, []string{"operation_type"}),
		WebhookDeliveries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cloudcore_webhook_deliveries_total",
			Help: "Webhook delivery attempts, by outcome.",
		}, []string{"outcome"}),
		LifecycleActions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cloudcore_lifecycle_actions_total",
			Help: "Lifecycle rule applications, by action.",
		}, []string{"action"}),
	}
	reg.MustRegister(
		r.RequestsTotal, r.UploadBytesTotal, r.InstanceTransitions,
		r.InstancesByStatus, r.AllocatedInternalIPs, r.AllocatedExternalIPs,
		r.OperationsTotal, r.WebhookDeliveries, r.LifecycleActions,
	)
	return r
}

// Gatherer exposes the underlying prometheus registry for the /metrics
// handler (server.Server's serveMetrics).
func (r *Registry) Gatherer() prometheus.Gatherer { return r.reg }
