// Package httpenv implements the production runtime.Environment collaborators
// that are not storage (internal/storage covers GetStorage/SetStorage):
// Fetch, Now, Exec, APIURL, and AddonTransport. API calls (Fetch) go
// through httpclient.Default with httpclient.DefaultRetryPolicy; add-on
// calls go through one shared transport.NewClient, whose retries live in
// internal/transport.
package httpenv

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/addonify/core/internal/httpclient"
	"github.com/addonify/core/internal/runtime"
	"github.com/addonify/core/internal/storage"
	"github.com/addonify/core/internal/transport"
	"github.com/addonify/core/internal/types"
)

// Env is the production runtime.Environment: storage.Store for
// GetStorage/SetStorage plus two HTTP clients: httpclient.Default for API
// calls (retried with httpclient.DefaultRetryPolicy) and
// transport.NewClient for every add-on transport.
type Env struct {
	*storage.Store
	client          *http.Client
	transportClient *http.Client
	apiURL          string
}

// New builds an Env backed by store, POSTing API calls to apiURL.
func New(store *storage.Store, apiURL string) *Env {
	return &Env{
		Store:           store,
		client:          httpclient.Default(),
		transportClient: transport.NewClient(),
		apiURL:          apiURL,
	}
}

// Fetch implements runtime.Environment.Fetch: marshals req.Body as JSON
// when present, retries per httpclient.DefaultRetryPolicy, and returns the
// raw response — non-2xx is a valid FetchResult, never an error, matching
// the interface's documented contract.
func (e *Env) Fetch(ctx context.Context, req runtime.FetchRequest) (runtime.FetchResult, error) {
	var bodyReader io.Reader
	if req.Body != nil {
		encoded, err := json.Marshal(req.Body)
		if err != nil {
			return runtime.FetchResult{}, fmt.Errorf("httpenv: marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(encoded)
	}
	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URL, bodyReader)
	if err != nil {
		return runtime.FetchResult{}, fmt.Errorf("httpenv: build request: %w", err)
	}
	if req.Body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}

	resp, err := httpclient.DoWithRetry(ctx, e.client, httpReq, httpclient.DefaultRetryPolicy)
	if err != nil {
		return runtime.FetchResult{}, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return runtime.FetchResult{}, fmt.Errorf("httpenv: read response body: %w", err)
	}
	return runtime.FetchResult{
		StatusCode: resp.StatusCode,
		Body:       body,
		Header:     resp.Header,
	}, nil
}

// Now returns the wall-clock time. All dispatch-visible time flows through
// here (§6). Elsewhere time.Now() is called only to time metrics
// (internal/runtime, internal/transport) and in tests.
func (e *Env) Now() types.Timestamp {
	return types.FromTime(time.Now())
}

// Exec runs f on its own goroutine, detached from the caller's context so a
// Future keeps running after the dispatch that scheduled it returns.
func (e *Env) Exec(f func(ctx context.Context)) {
	go f(context.Background())
}

// APIURL returns the base URL API endpoints are POSTed under.
func (e *Env) APIURL() string {
	return e.apiURL
}

// AddonTransport returns the Transport collaborator for the add-on whose
// transport URL is baseURL, sharing this Env's tuned client across add-ons.
func (e *Env) AddonTransport(baseURL string) transport.Transport {
	return transport.New(baseURL, e.transportClient)
}
