package transport

import (
	"bytes"
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

// legacyTransport speaks the pre-manifest-resolution protocol (spec.md §9
// Open Question (b)): every call, manifest included, is a single POST of
// a JSON-RPC-like envelope {"method": ..., "params": [...]} to the add-on's
// base URL, with the reply wrapped as {"result": ...} or {"error": {...}}.
// Detected purely from the base URL ending in "/stremio/v1"; there is no
// other signal to go on once the URL has that shape.
type legacyTransport struct {
	base   string
	client *http.Client
}

type legacyRequest struct {
	Method string `json:"method"`
	Params []any  `json:"params"`
}

type legacyResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *legacyError    `json:"error"`
}

type legacyError struct {
	Message string `json:"message"`
	Code    int    `json:"code"`
}

func (t *legacyTransport) Manifest(ctx context.Context) (types.Manifest, error) {
	raw, err := t.call(ctx, "manifest", nil)
	if err != nil {
		return types.Manifest{}, err
	}
	var w wireManifest
	if err := json.Unmarshal(raw, &w); err != nil {
		return types.Manifest{}, corerr.UnexpectedResponse("invalid manifest JSON: " + err.Error())
	}
	return w.toManifest(), nil
}

func (t *legacyTransport) Resource(ctx context.Context, ref types.ResourceRef) (types.ResourceResponse, error) {
	params := []any{ref.Type, ref.ID}
	if ref.Resource == "catalog" && len(ref.Extra) > 0 {
		extra := make(map[string]string, len(ref.Extra))
		for _, e := range ref.Extra {
			extra[e.Name] = e.Value
		}
		params = append(params, extra)
	}
	raw, err := t.call(ctx, ref.Resource, params)
	if err != nil {
		return types.ResourceResponse{}, err
	}
	return decodeResponse(ref.Resource, raw)
}

func (t *legacyTransport) call(ctx context.Context, method string, params []any) ([]byte, error) {
	start := time.Now()
	outcome := "ok"
	defer func() { coremetrics.ObserveFetch(time.Since(start).Seconds(), outcome) }()

	payload, err := json.Marshal(legacyRequest{Method: method, Params: params})
	if err != nil {
		outcome = "env_error"
		return nil, corerr.Env(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.base, bytes.NewReader(payload))
	if err != nil {
		outcome = "env_error"
		return nil, corerr.Env(err)
	}
	req.Header.Set("Content-Type", "application/json")
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
		return nil, corerr.UnexpectedResponse(fmt.Sprintf("%s: HTTP %d", t.base, resp.StatusCode))
	}

	var envelope legacyResponse
	if err := json.Unmarshal(body, &envelope); err != nil {
		outcome = "unexpected_response"
		return nil, corerr.UnexpectedResponse("invalid envelope JSON: " + err.Error())
	}
	if envelope.Error != nil {
		outcome = "api_error"
		return nil, corerr.API(envelope.Error.Message, envelope.Error.Code)
	}
	return envelope.Result, nil
}
