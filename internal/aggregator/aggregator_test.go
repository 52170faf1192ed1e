package aggregator

import (
	"context"
	"testing"

	"github.com/addonify/core/internal/corerr"
	"github.com/addonify/core/internal/msg"
	"github.com/addonify/core/internal/transport"
	"github.com/addonify/core/internal/types"
)

type fakeTransport struct {
	manifest types.Manifest
	resp     types.ResourceResponse
	err      error
}

func (f fakeTransport) Manifest(ctx context.Context) (types.Manifest, error) { return f.manifest, nil }
func (f fakeTransport) Resource(ctx context.Context, ref types.ResourceRef) (types.ResourceResponse, error) {
	return f.resp, f.err
}

type fakeEnv struct {
	byBase map[string]transport.Transport
}

func (e fakeEnv) AddonTransport(base string) transport.Transport { return e.byBase[base] }

func TestExecuteFansOutAndPreservesOrder(t *testing.T) {
	requests := []types.ResourceRequest{
		{Base: "a", Path: types.ResourceRef{Resource: "catalog", Type: "movie", ID: "top"}},
		{Base: "b", Path: types.ResourceRef{Resource: "catalog", Type: "movie", ID: "top"}},
	}
	env := fakeEnv{byBase: map[string]transport.Transport{
		"a": fakeTransport{resp: types.ResourceResponse{Kind: types.ResponseKindMetas, Metas: []types.MetaPreview{{ID: "a1"}}}},
		"b": fakeTransport{err: corerr.UnexpectedResponse("boom")},
	}}

	results := Execute(context.Background(), env, requests)
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if !results[0].Request.Equal(requests[0]) || !results[1].Request.Equal(requests[1]) {
		t.Fatalf("results out of order: %+v", results)
	}
	if results[0].Err != nil {
		t.Fatalf("expected no error for request 0, got %v", results[0].Err)
	}
	if results[1].Err == nil || results[1].Err.Kind != corerr.KindUnexpectedResponse {
		t.Fatalf("expected UnexpectedResponse for request 1, got %+v", results[1].Err)
	}
}

func TestApplyResultsUpdatesGroupAndReportsChanged(t *testing.T) {
	req := types.ResourceRequest{Base: "a", Path: types.ResourceRef{Resource: "catalog", Type: "movie", ID: "top"}}
	group := types.PlanGroup[[]types.MetaPreview]([]types.ResourceRequest{req})

	results := []msg.InternalResourceRequestResult{
		{Request: req, Response: types.ResourceResponse{Kind: types.ResponseKindMetas, Metas: []types.MetaPreview{{ID: "x1"}}}},
	}
	decode := func(r types.ResourceResponse) []types.MetaPreview { return r.Metas }

	group, changed := ApplyResults(group, results, decode)
	if !changed {
		t.Fatal("expected changed=true")
	}
	if !group[0].Content.IsReady() {
		t.Fatalf("expected Ready, got %+v", group[0].Content)
	}
	if len(group[0].Content.Value) != 1 || group[0].Content.Value[0].ID != "x1" {
		t.Fatalf("unexpected decoded value: %+v", group[0].Content.Value)
	}
}

func TestApplyResultsDiscardsUnmatchedRequest(t *testing.T) {
	req := types.ResourceRequest{Base: "a", Path: types.ResourceRef{Resource: "catalog", Type: "movie", ID: "top"}}
	other := types.ResourceRequest{Base: "b", Path: types.ResourceRef{Resource: "catalog", Type: "movie", ID: "top"}}
	group := types.PlanGroup[[]types.MetaPreview]([]types.ResourceRequest{req})

	results := []msg.InternalResourceRequestResult{
		{Request: other, Response: types.ResourceResponse{Kind: types.ResponseKindMetas}},
	}
	decode := func(r types.ResourceResponse) []types.MetaPreview { return r.Metas }

	_, changed := ApplyResults(group, results, decode)
	if changed {
		t.Fatal("expected changed=false for a result matching no tracked request")
	}
}
