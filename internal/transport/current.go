package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/addonify/core/internal/corerr"
	"github.com/addonify/core/internal/coremetrics"
	"github.com/addonify/core/internal/types"
)

// httpTransport speaks the current add-on protocol: GET <base>/manifest.json
// for the manifest, GET <base><ResourceRef.String()> for a resource call.
type httpTransport struct {
	base   string
	client *http.Client
}

func (t *httpTransport) Manifest(ctx context.Context) (types.Manifest, error) {
	raw, err := t.get(ctx, t.base+"/manifest.json")
	if err != nil {
		return types.Manifest{}, err
	}
	var w wireManifest
	if err := json.Unmarshal(raw, &w); err != nil {
		return types.Manifest{}, corerr.UnexpectedResponse("invalid manifest JSON: " + err.Error())
	}
	return w.toManifest(), nil
}

func (t *httpTransport) Resource(ctx context.Context, ref types.ResourceRef) (types.ResourceResponse, error) {
	raw, err := t.get(ctx, t.base+ref.String())
	if err != nil {
		return types.ResourceResponse{}, err
	}
	return decodeResponse(ref.Resource, raw)
}

func (t *httpTransport) get(ctx context.Context, url string) ([]byte, error) {
	start := time.Now()
	outcome := "ok"
	defer func() { coremetrics.ObserveFetch(time.Since(start).Seconds(), outcome) }()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		outcome = "env_error"
		return nil, corerr.Env(err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := doWithRetry(ctx, t.client, req, defaultRetryPolicy)
	if err != nil {
		outcome = "env_error"
		return nil, corerr.Env(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		outcome = "env_error"
		return nil, corerr.Env(err)
	}
	if resp.StatusCode != http.StatusOK {
		outcome = "unexpected_response"
		return nil, corerr.UnexpectedResponse(fmt.Sprintf("%s: HTTP %d", url, resp.StatusCode))
	}
	return body, nil
}
