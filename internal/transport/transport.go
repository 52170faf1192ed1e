// Package transport implements the add-on collaborator contract (§4.5,
// §6): fetching a manifest and fetching one planned resource from an
// add-on's transport URL. Two wire formats are supported behind the same
// Transport interface — the current GET-based protocol and a legacy
// JSON-RPC-like POST envelope — selected at construction time from the
// shape of the add-on's base URL. Every caller gets a pre-tuned
// *http.Client rather than configuring retries themselves.
package transport

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/andybalholm/brotli"
	"golang.org/x/net/http2"

	"github.com/addonify/core/internal/types"
)

// Transport is the per-add-on collaborator the runtime's Environment hands
// out (§6 "AddonTransport"). One instance is bound to one add-on base URL.
type Transport interface {
	// Manifest fetches and decodes the add-on's manifest.
	Manifest(ctx context.Context) (types.Manifest, error)

	// Resource fetches and decodes one resource call. The returned
	// ResourceResponse's Kind is validated against
	// types.ExpectedKindForResource(ref.Resource) before it is returned;
	// a mismatch surfaces as corerr.UnexpectedResponse.
	Resource(ctx context.Context, ref types.ResourceRef) (types.ResourceResponse, error)
}

// legacySuffix marks an add-on as speaking the pre-manifest-resolution
// protocol (spec.md §9 Open Question (b)): its transport URL ends in this
// path segment instead of /manifest.json.
const legacySuffix = "/stremio/v1"

// New builds the Transport for an add-on whose transport URL (or bare
// base, either is accepted) is base. client is shared across add-ons by
// the caller; pass nil to use NewClient().
func New(base string, client *http.Client) Transport {
	if client == nil {
		client = NewClient()
	}
	trimmed := strings.TrimSuffix(strings.TrimSuffix(base, "/manifest.json"), "/")
	if strings.HasSuffix(trimmed, legacySuffix) {
		return &legacyTransport{base: trimmed, client: client}
	}
	return &httpTransport{base: trimmed, client: client}
}

// NewClient returns an *http.Client tuned for add-on calls: HTTP/2 where
// the server supports it, brotli response decompression, and
// connection-reuse timeouts suited to short-lived outbound calls.
func NewClient() *http.Client {
	rt := &http.Transport{
		ResponseHeaderTimeout: 15 * time.Second,
		ExpectContinueTimeout: 5 * time.Second,
		IdleConnTimeout:       30 * time.Second,
	}
	// Best-effort: add-ons that don't support HTTP/2 fall back to
	// http.Transport's normal HTTP/1.1 path untouched.
	_ = http2.ConfigureTransport(rt)
	return &http.Client{
		Timeout:   60 * time.Second,
		Transport: &brotliTransport{base: rt},
	}
}

// brotliTransport adds "Accept-Encoding: br" to every request and
// transparently inflates a "Content-Encoding: br" response, the same
// opt-in-and-unwrap shape net/http already applies for gzip.
type brotliTransport struct {
	base http.RoundTripper
}

func (t *brotliTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Header.Get("Accept-Encoding") == "" {
		req = req.Clone(req.Context())
		req.Header.Set("Accept-Encoding", "br, gzip")
	}
	resp, err := t.base.RoundTrip(req)
	if err != nil || resp == nil {
		return resp, err
	}
	if strings.EqualFold(resp.Header.Get("Content-Encoding"), "br") {
		resp.Body = &brotliReadCloser{r: brotli.NewReader(resp.Body), orig: resp.Body}
		resp.Header.Del("Content-Encoding")
		resp.Header.Del("Content-Length")
		resp.ContentLength = -1
	}
	return resp, nil
}

type brotliReadCloser struct {
	r    *brotli.Reader
	orig interface{ Close() error }
}

func (b *brotliReadCloser) Read(p []byte) (int, error) { return b.r.Read(p) }
func (b *brotliReadCloser) Close() error               { return b.orig.Close() }
