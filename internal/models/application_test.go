package models

import (
	"context"
	"testing"

	"github.com/addonify/core/internal/msg"
	"github.com/addonify/core/internal/runtime"
	"github.com/addonify/core/internal/types"
)

func TestApplicationPropagatesLibraryChangeToDependentModels(t *testing.T) {
	app := New()
	env := fakeTransportEnv{}
	rt := runtime.New(app, env, 8)

	rt.Dispatch(context.Background(), msg.ActionLoadContinueWatching{})
	rt.Dispatch(context.Background(), msg.ActionAddToLibrary{Meta: types.MetaPreview{ID: "tt1", Type: "movie", Name: "A"}})

	snap := rt.Model().(*Application)
	if _, ok := snap.Ctx.Library.Items["tt1"]; !ok {
		t.Fatalf("expected the new item to land in the library bucket")
	}
	// Continue-watching excludes never-started items; this only verifies
	// the recompute ran without panicking and left Items at zero length.
	if len(snap.ContinueWatching.Items) != 0 {
		t.Fatalf("expected no continue-watching entries for an unstarted item, got %+v", snap.ContinueWatching.Items)
	}
}

func TestApplicationSeedsNonEmptyProfileAddons(t *testing.T) {
	app := New()
	if len(app.Ctx.Profile.Addons) == 0 {
		t.Fatalf("expected invariant I1: Profile.Addons non-empty at process start")
	}
}

func TestApplicationUnloadWithEmptyModelResetsEveryLoadModel(t *testing.T) {
	app := New()
	env := fakeTransportEnv{}
	rt := runtime.New(app, env, 8)

	addons := []types.Descriptor{movieAddon()}
	app.Ctx.Profile.Addons = addons
	rt.Dispatch(context.Background(), msg.ActionLoadCatalogWithFilters{
		Selected: &types.ResourceRequest{Base: addons[0].TransportURL, Path: types.WithoutExtra("catalog", "movie", "top")},
	})
	rt.Dispatch(context.Background(), msg.ActionUnload{})

	snap := rt.Model().(*Application)
	if snap.Catalog.Selected != nil {
		t.Fatalf("expected global Unload to clear Catalog.Selected")
	}
}
