package models

import (
	"testing"

	"github.com/addonify/core/internal/ctxcore"
	"github.com/addonify/core/internal/msg"
	"github.com/addonify/core/internal/types"
)

func TestPlayerLoadSeedsStateFromBoundItem(t *testing.T) {
	ctx := ctxcore.New()
	ctx.Library.Items["tt1"] = types.LibItem{ID: "tt1", State: types.LibItemState{TimeOffset: 500, Duration: 9000}}
	env := fakeTransportEnv{}
	p := NewPlayer()

	req := types.ResourceRequest{Base: "https://a.test/manifest.json", Path: types.WithoutExtra("stream", "movie", "tt1")}
	p.Update(ctx, env, msg.ActionPlayerLoad{Stream: req, ItemID: "tt1"})
	if p.TimeOffset != 500 || p.Duration != 9000 {
		t.Fatalf("expected state seeded from the bound item, got %+v", p)
	}
}

func TestPlayerUpdateTimeOffsetPersistsThroughCtx(t *testing.T) {
	ctx := ctxcore.New()
	ctx.Library.Items["tt1"] = types.LibItem{ID: "tt1"}
	env := fakeTransportEnv{}
	p := NewPlayer()
	req := types.ResourceRequest{Base: "https://a.test/manifest.json", Path: types.WithoutExtra("stream", "movie", "tt1")}
	p.Update(ctx, env, msg.ActionPlayerLoad{Stream: req, ItemID: "tt1"})

	eff := p.Update(ctx, env, msg.ActionPlayerUpdateTimeOffset{TimeOffset: 1000, Duration: 9000})
	if !eff.Changed {
		t.Fatalf("expected the time-offset update to report changed")
	}
	item := ctx.Library.Items["tt1"]
	if item.State.TimeOffset != 1000 || item.State.OverallTimeWatched != 1000 {
		t.Fatalf("expected ctx.Library to carry the updated state, got %+v", item.State)
	}
}

func TestPlayerEndedBumpsTimesWatchedAndClearsSelection(t *testing.T) {
	ctx := ctxcore.New()
	ctx.Library.Items["tt1"] = types.LibItem{ID: "tt1", State: types.LibItemState{TimeOffset: 8000, TimesWatched: 1}}
	env := fakeTransportEnv{}
	p := NewPlayer()
	req := types.ResourceRequest{Base: "https://a.test/manifest.json", Path: types.WithoutExtra("stream", "movie", "tt1")}
	p.Update(ctx, env, msg.ActionPlayerLoad{Stream: req, ItemID: "tt1"})

	p.Update(ctx, env, msg.ActionPlayerEnded{})
	item := ctx.Library.Items["tt1"]
	if item.State.TimesWatched != 2 {
		t.Fatalf("expected TimesWatched incremented, got %d", item.State.TimesWatched)
	}
	if p.Stream != nil || p.ItemID != "" {
		t.Fatalf("expected Ended to clear the active selection")
	}
}

func TestPlayerUnloadWithoutSelectionIsNoop(t *testing.T) {
	ctx := ctxcore.New()
	env := fakeTransportEnv{}
	p := NewPlayer()
	eff := p.Update(ctx, env, msg.ActionUnload{})
	if eff.Changed {
		t.Fatalf("expected Unload on an idle Player to report unchanged")
	}
}
