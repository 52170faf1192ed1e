package models

import (
	"context"
	"testing"

	"github.com/addonify/core/internal/msg"
	"github.com/addonify/core/internal/runtime"
	"github.com/addonify/core/internal/transport"
	"github.com/addonify/core/internal/types"
)

type fakeTransportEnv struct {
	resource func(ctx context.Context, path types.ResourceRef) (types.ResourceResponse, error)
}

func (f fakeTransportEnv) Fetch(ctx context.Context, req runtime.FetchRequest) (runtime.FetchResult, error) {
	return runtime.FetchResult{}, nil
}
func (f fakeTransportEnv) GetStorage(ctx context.Context, key string) ([]byte, bool, error) {
	return nil, false, nil
}
func (f fakeTransportEnv) SetStorage(ctx context.Context, key string, value []byte) error { return nil }
func (f fakeTransportEnv) Now() types.Timestamp                                           { return 0 }
func (f fakeTransportEnv) Exec(fn func(ctx context.Context))                              { fn(context.Background()) }
func (f fakeTransportEnv) APIURL() string                                                 { return "https://api.test" }
func (f fakeTransportEnv) AddonTransport(baseURL string) transport.Transport {
	return fakeTransport{resource: f.resource}
}

type fakeTransport struct {
	resource func(ctx context.Context, path types.ResourceRef) (types.ResourceResponse, error)
}

func (f fakeTransport) Resource(ctx context.Context, path types.ResourceRef) (types.ResourceResponse, error) {
	return f.resource(ctx, path)
}
func (f fakeTransport) Manifest(ctx context.Context) (types.Manifest, error) {
	return types.Manifest{}, nil
}

func movieAddon() types.Descriptor {
	return types.Descriptor{
		TransportURL: "https://addon.test/manifest.json",
		Manifest: types.Manifest{
			ID:    "addon.test",
			Types: []string{"movie"},
			Resources: []types.ManifestResource{
				{Name: "catalog", Types: []string{"movie"}},
			},
			Catalogs: []types.ManifestCatalog{
				{Type: "movie", ID: "top", Name: "Popular",
					Extra: []types.ExtraProp{{Name: "skip"}}},
			},
		},
	}
}

func runFuture(t *testing.T, eff runtime.Effects) msg.Msg {
	t.Helper()
	if len(eff.Items) != 1 {
		t.Fatalf("expected exactly one effect, got %d", len(eff.Items))
	}
	f, ok := eff.Items[0].AsFuture()
	if !ok {
		t.Fatalf("expected a Future effect")
	}
	return f(context.Background())
}

func TestCatalogWithFiltersLoadSchedulesOneResourceFuture(t *testing.T) {
	addons := []types.Descriptor{movieAddon()}
	env := fakeTransportEnv{resource: func(ctx context.Context, path types.ResourceRef) (types.ResourceResponse, error) {
		return types.ResourceResponse{Kind: types.ResponseKindMetas, Metas: []types.MetaPreview{{ID: "a", Type: "movie"}}}, nil
	}}
	c := NewCatalogWithFilters()
	selected := &types.ResourceRequest{Base: addons[0].TransportURL, Path: types.WithoutExtra("catalog", "movie", "top")}

	eff := c.Update(env, addons, msg.ActionLoadCatalogWithFilters{Selected: selected})
	if !c.Content.IsLoading() {
		t.Fatalf("expected Loading immediately after Load")
	}
	if len(c.SelectableCatalogs) != 1 || !c.SelectableCatalogs[0].IsSelected {
		t.Fatalf("expected selectable catalogs recomputed with selection marked, got %+v", c.SelectableCatalogs)
	}

	result := runFuture(t, eff)
	eff2 := c.Update(env, addons, result)
	if !eff2.Changed {
		t.Fatalf("expected content arrival to report changed")
	}
	if !c.Content.IsReady() || len(c.Content.Value) != 1 {
		t.Fatalf("expected content ready with one item, got %+v", c.Content)
	}
}

func TestCatalogWithFiltersDiscardsStaleResult(t *testing.T) {
	addons := []types.Descriptor{movieAddon()}
	env := fakeTransportEnv{resource: func(ctx context.Context, path types.ResourceRef) (types.ResourceResponse, error) {
		return types.ResourceResponse{Kind: types.ResponseKindMetas}, nil
	}}
	c := NewCatalogWithFilters()
	staleReq := types.ResourceRequest{Base: "https://stale.test/manifest.json", Path: types.WithoutExtra("catalog", "movie", "top")}
	stale := msg.InternalResourceRequestResult{Request: staleReq, Response: types.ResourceResponse{Kind: types.ResponseKindMetas, Metas: []types.MetaPreview{{ID: "x"}}}}

	eff := c.Update(env, addons, stale)
	if eff.Changed {
		t.Fatalf("expected no change for an untracked request result")
	}
	if !c.Content.IsLoading() {
		t.Fatalf("expected Content to remain at its zero-value Loading state")
	}
}

func TestCatalogWithFiltersUnexpectedResponseKindIsAnError(t *testing.T) {
	addons := []types.Descriptor{movieAddon()}
	env := fakeTransportEnv{resource: func(ctx context.Context, path types.ResourceRef) (types.ResourceResponse, error) {
		return types.ResourceResponse{Kind: types.ResponseKindStreams}, nil
	}}
	c := NewCatalogWithFilters()
	selected := &types.ResourceRequest{Base: addons[0].TransportURL, Path: types.WithoutExtra("catalog", "movie", "top")}
	eff := c.Update(env, addons, msg.ActionLoadCatalogWithFilters{Selected: selected})
	result := runFuture(t, eff)
	c.Update(env, addons, result)
	if !c.Content.IsErr() {
		t.Fatalf("expected UnexpectedResponse error, got %+v", c.Content)
	}
	if c.Content.Err.Kind.String() != "UnexpectedResponse" {
		t.Fatalf("expected UnexpectedResponse kind, got %v", c.Content.Err.Kind)
	}
}

func TestCatalogWithFiltersUnloadResetsSelectionAndContent(t *testing.T) {
	addons := []types.Descriptor{movieAddon()}
	env := fakeTransportEnv{resource: func(ctx context.Context, path types.ResourceRef) (types.ResourceResponse, error) {
		return types.ResourceResponse{Kind: types.ResponseKindMetas, Metas: []types.MetaPreview{{ID: "a"}}}, nil
	}}
	c := NewCatalogWithFilters()
	selected := &types.ResourceRequest{Base: addons[0].TransportURL, Path: types.WithoutExtra("catalog", "movie", "top")}
	eff := c.Update(env, addons, msg.ActionLoadCatalogWithFilters{Selected: selected})
	result := runFuture(t, eff)
	c.Update(env, addons, result)

	c.Update(env, addons, msg.ActionUnload{})
	if c.Selected != nil {
		t.Fatalf("expected Selected cleared after Unload")
	}
	if !c.Content.IsLoading() {
		t.Fatalf("expected Content reset to Loading after Unload")
	}
}

func TestCatalogWithFiltersPagingQuantizesSkip(t *testing.T) {
	addons := []types.Descriptor{movieAddon()}
	items := make([]types.MetaPreview, 100)
	for i := range items {
		items[i] = types.MetaPreview{ID: string(rune('a' + i%26))}
	}
	env := fakeTransportEnv{resource: func(ctx context.Context, path types.ResourceRef) (types.ResourceResponse, error) {
		return types.ResourceResponse{Kind: types.ResponseKindMetas, Metas: items}, nil
	}}
	c := NewCatalogWithFilters()
	extra := types.Extra{}.WithSet("skip", "150")
	selected := &types.ResourceRequest{Base: addons[0].TransportURL, Path: types.WithExtra("catalog", "movie", "top", extra)}
	eff := c.Update(env, addons, msg.ActionLoadCatalogWithFilters{Selected: selected})
	result := runFuture(t, eff)
	c.Update(env, addons, result)

	if c.PrevPage == nil {
		t.Fatalf("expected PrevPage present for skip=150 quantized to 100")
	}
	if v, _ := c.PrevPage.Get("skip"); v != "0" {
		t.Fatalf("expected PrevPage skip=0, got %s", v)
	}
	if c.NextPage == nil {
		t.Fatalf("expected NextPage present, content length == page size")
	}
	if v, _ := c.NextPage.Get("skip"); v != "200" {
		t.Fatalf("expected NextPage skip=200, got %s", v)
	}
}
