// Package events implements spec §4.7: synchronous webhook delivery of
// object events to every NotificationConfig that matches. Grounded on
// ais/tgts3.go's request/response shaping style, applied here to
// constructing and POSTing an outbound payload rather than parsing an
// inbound one.
package events

import (
	"bytes"
	"context"
	"net/http"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/cloudcore/cloudcore/cmn/log"
	"github.com/cloudcore/cloudcore/cmn/metrics"
	"github.com/cloudcore/cloudcore/objectstore"
)

const deliveryTimeout = 5 * time.Second

// Payload is the JSON body POSTed to a bucket's configured webhook URL
// (spec §4.7).
type Payload struct {
	Kind       string            `json:"kind"`
	Bucket     string            `json:"bucket"`
	Object     string            `json:"object"`
	EventType  string            `json:"eventType"`
	Generation int64             `json:"generation"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}

// Dispatcher implements objectstore.EventPublisher with a plain
// net/http.Client POST, retried exactly once on failure and never
// propagated back to the originating request (spec §4.7: "log, don't
// fail the originating request").
type Dispatcher struct {
	client  *http.Client
	metrics *metrics.Registry
}

func New(opts ...Option) *Dispatcher {
	d := &Dispatcher{client: &http.Client{Timeout: deliveryTimeout}}
	for _, o := range opts {
		o(d)
	}
	return d
}

type Option func(*Dispatcher)

func WithMetrics(m *metrics.Registry) Option { return func(d *Dispatcher) { d.metrics = m } }

var _ objectstore.EventPublisher = (*Dispatcher)(nil)

// Publish filters bucket.NotificationConfigs to the ones matching evt and
// delivers a Payload to each, synchronously, swallowing every delivery
// error after the retry.
func (d *Dispatcher) Publish(bucket objectstore.Bucket, evt objectstore.Event) {
	for _, cfg := range bucket.NotificationConfigs {
		if !matches(cfg, evt) {
			continue
		}
		payload := Payload{
			Kind:       "storage#notification",
			Bucket:     bucket.Name,
			Object:     evt.Object.Name,
			EventType:  string(evt.EventType),
			Generation: evt.Generation,
			Metadata:   evt.Object.Metadata,
		}
		d.deliverWithRetry(cfg.WebhookURL, payload)
	}
}

func matches(cfg objectstore.NotificationConfig, evt objectstore.Event) bool {
	if cfg.ObjectNamePrefix != "" && !strings.HasPrefix(evt.Object.Name, cfg.ObjectNamePrefix) {
		return false
	}
	if len(cfg.EventTypes) == 0 {
		return true
	}
	for _, t := range cfg.EventTypes {
		if t == string(evt.EventType) {
			return true
		}
	}
	return false
}

func (d *Dispatcher) deliverWithRetry(url string, payload Payload) {
	if d.deliver(url, payload) {
		d.record("delivered")
		return
	}
	if d.deliver(url, payload) {
		d.record("delivered_retry")
		return
	}
	d.record("failed")
	log.Warningf("events: webhook delivery to %s failed after retry (bucket=%s object=%s)", url, payload.Bucket, payload.Object)
}

func (d *Dispatcher) deliver(url string, payload Payload) bool {
	body, err := jsoniter.Marshal(payload)
	if err != nil {
		return false
	}
	ctx, cancel := context.WithTimeout(context.Background(), deliveryTimeout)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return false
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := d.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode >= 200 && resp.StatusCode < 300
}

func (d *Dispatcher) record(outcome string) {
	if d.metrics != nil {
		d.metrics.WebhookDeliveries.WithLabelValues(outcome).Inc()
	}
}
