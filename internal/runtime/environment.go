package runtime

import (
	"context"
	"net/http"

	"github.com/addonify/core/internal/transport"
	"github.com/addonify/core/internal/types"
)

// FetchRequest is a one-shot JSON HTTP request, the shape every external
// collaborator call (API client, transport) is built from (§6).
type FetchRequest struct {
	Method  string
	URL     string
	Body    any // marshaled as JSON if non-nil
	Headers map[string]string
}

// FetchResult is the raw result of a FetchRequest; callers decode Body
// themselves into the type they expect.
type FetchResult struct {
	StatusCode int
	Body       []byte
	Header     http.Header
}

// Environment is the full external-collaborator contract the core
// requires (§6). Production code is backed by internal/httpenv +
// internal/storage; each package's tests define their own in-memory fake.
type Environment interface {
	// Fetch issues req and returns the raw response or a transport-level
	// error (never an HTTP-status error: non-2xx is a valid FetchResult).
	Fetch(ctx context.Context, req FetchRequest) (FetchResult, error)

	// GetStorage reads key, returning (nil, false, nil) if absent.
	GetStorage(ctx context.Context, key string) ([]byte, bool, error)
	// SetStorage writes key; value == nil deletes the key.
	SetStorage(ctx context.Context, key string, value []byte) error

	// Now returns the current time. All business logic reads time through
	// here, never time.Now() directly, so dispatch stays deterministic
	// under test.
	Now() types.Timestamp

	// Exec is the platform scheduling hook (§6 "exec(future_returning_unit)
	// -> scheduling hook"): run f in the background. The runtime's only
	// suspension points (HTTP, storage, control-channel calls) go through
	// futures submitted here.
	Exec(f func(ctx context.Context))

	// APIURL returns the base URL API endpoints are POSTed under
	// (<api_url()>/api/<endpoint>).
	APIURL() string

	// AddonTransport returns the transport collaborator for the add-on
	// whose manifest/base URL is baseURL (§4.5/§6: detects legacy vs
	// current protocol from baseURL's shape).
	AddonTransport(baseURL string) transport.Transport
}
