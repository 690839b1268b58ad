// Package devtools builds real provider-SDK clients (the same
// cloud.google.com/go/storage and google.golang.org/api/compute/v1
// packages a production caller would import) pointed at a running
// emulator instance, the way tutils.BaseAPIParams/InitCluster hands
// integration tests a client wired to a live cluster rather than a
// hand-rolled HTTP wrapper.
package devtools

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/compute/v1"
	"google.golang.org/api/option"
)

// Env describes a running emulator instance for test clients to target.
type Env struct {
	BaseURL    string // e.g. "http://127.0.0.1:8080"
	ProjectID  string
	HTTPClient *http.Client
}

func (e *Env) httpClient() *http.Client {
	if e.HTTPClient != nil {
		return e.HTTPClient
	}
	return http.DefaultClient
}

// StorageClient returns a cloud.google.com/go/storage client whose
// requests all land on Env's emulator instead of the real GCS API.
func (e *Env) StorageClient(ctx context.Context) (*storage.Client, error) {
	endpoint := strings.TrimRight(e.BaseURL, "/") + "/storage/v1/"
	return storage.NewClient(ctx,
		option.WithEndpoint(endpoint),
		option.WithHTTPClient(e.httpClient()),
		option.WithoutAuthentication())
}

// ComputeService returns a google.golang.org/api/compute/v1 Service
// whose requests all land on Env's emulator.
func (e *Env) ComputeService(ctx context.Context) (*compute.Service, error) {
	endpoint := strings.TrimRight(e.BaseURL, "/") + "/compute/v1/"
	return compute.NewService(ctx,
		option.WithEndpoint(endpoint),
		option.WithHTTPClient(e.httpClient()),
		option.WithoutAuthentication())
}

// WaitReady polls the emulator's /metrics endpoint until it answers
// (mirroring tutils.initProxyURL's readiness probe loop, adapted to an
// in-process single-node emulator that has no smap to await).
func (e *Env) WaitReady(ctx context.Context, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	url := strings.TrimRight(e.BaseURL, "/") + "/metrics"
	for {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err == nil {
			resp, err := e.httpClient().Do(req)
			if err == nil {
				resp.Body.Close()
				return nil
			}
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("devtools: emulator at %s not ready after %s", e.BaseURL, timeout)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(50 * time.Millisecond):
		}
	}
}
