package events

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/cloudcore/cloudcore/objectstore"
)

func TestPublishDeliversToMatchingWebhook(t *testing.T) {
	var received atomic.Int32
	var gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		received.Add(1)
		buf := make([]byte, 4096)
		n, _ := r.Body.Read(buf)
		gotBody = string(buf[:n])
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	d := New()
	bucket := objectstore.Bucket{
		Name: "b1",
		NotificationConfigs: []objectstore.NotificationConfig{
			{ID: "n1", WebhookURL: srv.URL},
		},
	}
	d.Publish(bucket, objectstore.Event{
		EventType:  objectstore.EventFinalize,
		Generation: 1,
		Object:     objectstore.Object{Name: "f"},
	})

	if received.Load() != 1 {
		t.Fatalf("webhook received %d requests, want 1", received.Load())
	}
	if !strings.Contains(gotBody, `"object":"f"`) {
		t.Fatalf("webhook body = %q, want it to mention object f", gotBody)
	}
}

func TestPublishSkipsNonMatchingPrefix(t *testing.T) {
	var received atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		received.Add(1)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	d := New()
	bucket := objectstore.Bucket{
		Name: "b1",
		NotificationConfigs: []objectstore.NotificationConfig{
			{ID: "n1", WebhookURL: srv.URL, ObjectNamePrefix: "logs/"},
		},
	}
	d.Publish(bucket, objectstore.Event{
		EventType: objectstore.EventFinalize,
		Object:    objectstore.Object{Name: "images/f.png"},
	})

	if received.Load() != 0 {
		t.Fatalf("webhook received %d requests, want 0 (prefix mismatch)", received.Load())
	}
}

func TestPublishRetriesOnceThenGivesUp(t *testing.T) {
	var attempts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	d := New()
	bucket := objectstore.Bucket{
		Name: "b1",
		NotificationConfigs: []objectstore.NotificationConfig{
			{ID: "n1", WebhookURL: srv.URL},
		},
	}
	d.Publish(bucket, objectstore.Event{
		EventType: objectstore.EventFinalize,
		Object:    objectstore.Object{Name: "f"},
	})

	if attempts.Load() != 2 {
		t.Fatalf("webhook attempts = %d, want 2 (one retry)", attempts.Load())
	}
}

func TestPublishFiltersByEventType(t *testing.T) {
	var received atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		received.Add(1)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	d := New()
	bucket := objectstore.Bucket{
		Name: "b1",
		NotificationConfigs: []objectstore.NotificationConfig{
			{ID: "n1", WebhookURL: srv.URL, EventTypes: []string{"OBJECT_DELETE"}},
		},
	}
	d.Publish(bucket, objectstore.Event{
		EventType: objectstore.EventFinalize,
		Object:    objectstore.Object{Name: "f"},
	})
	if received.Load() != 0 {
		t.Fatalf("webhook received %d requests, want 0 (event type filtered out)", received.Load())
	}

	d.Publish(bucket, objectstore.Event{
		EventType: objectstore.EventDelete,
		Object:    objectstore.Object{Name: "f"},
	})
	if received.Load() != 1 {
		t.Fatalf("webhook received %d requests, want 1 (event type matched)", received.Load())
	}
}
