package models

import (
	"context"
	"testing"

	"github.com/addonify/core/internal/msg"
	"github.com/addonify/core/internal/types"
)

func metaCapableAddon(url string) types.Descriptor {
	return types.Descriptor{
		TransportURL: url,
		Manifest: types.Manifest{
			Resources: []types.ManifestResource{{Name: "meta", Types: []string{"movie"}}},
		},
	}
}

func TestMetaDetailsLoadPlansAndResolves(t *testing.T) {
	addons := []types.Descriptor{metaCapableAddon("https://a.test/manifest.json")}
	env := fakeTransportEnv{resource: func(ctx context.Context, path types.ResourceRef) (types.ResourceResponse, error) {
		return types.ResourceResponse{Kind: types.ResponseKindMeta, Meta: &types.MetaItemDetailed{MetaPreview: types.MetaPreview{ID: "tt1"}}}, nil
	}}
	d := NewMetaDetails()
	ref := types.WithoutExtra("meta", "movie", "tt1")
	eff := d.Update(env, addons, msg.ActionLoadMetaDetails{Ref: ref})
	if len(eff.Items) != 1 {
		t.Fatalf("expected one planned request, got %d", len(eff.Items))
	}
	f, _ := eff.Items[0].AsFuture()
	result := f(context.Background())
	d.Update(env, addons, result)

	if len(d.Results) != 1 || !d.Results[0].Content.IsReady() {
		t.Fatalf("expected resolved result, got %+v", d.Results)
	}
	if d.Results[0].Content.Value.ID != "tt1" {
		t.Fatalf("expected decoded meta id tt1, got %+v", d.Results[0].Content.Value)
	}
}

func TestMetaDetailsUnexpectedKindIsError(t *testing.T) {
	addons := []types.Descriptor{metaCapableAddon("https://a.test/manifest.json")}
	env := fakeTransportEnv{resource: func(ctx context.Context, path types.ResourceRef) (types.ResourceResponse, error) {
		return types.ResourceResponse{Kind: types.ResponseKindMetas}, nil
	}}
	d := NewMetaDetails()
	ref := types.WithoutExtra("meta", "movie", "tt1")
	eff := d.Update(env, addons, msg.ActionLoadMetaDetails{Ref: ref})
	f, _ := eff.Items[0].AsFuture()
	result := f(context.Background())
	d.Update(env, addons, result)
	if !d.Results[0].Content.IsErr() {
		t.Fatalf("expected UnexpectedResponse, got %+v", d.Results[0].Content)
	}
}

func TestMetaDetailsUnloadClearsState(t *testing.T) {
	addons := []types.Descriptor{metaCapableAddon("https://a.test/manifest.json")}
	env := fakeTransportEnv{}
	d := NewMetaDetails()
	ref := types.WithoutExtra("meta", "movie", "tt1")
	d.Update(env, addons, msg.ActionLoadMetaDetails{Ref: ref})
	d.Update(env, addons, msg.ActionUnload{})
	if d.Selected != nil || d.Results != nil {
		t.Fatalf("expected Unload to reset MetaDetails")
	}
}
