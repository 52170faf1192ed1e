package models

import (
	"github.com/addonify/core/internal/ctxcore"
	"github.com/addonify/core/internal/msg"
	"github.com/addonify/core/internal/runtime"
	"github.com/addonify/core/internal/types"
)

// Player tracks the currently selected stream and the subset of its bound
// LibItem's state relevant to playback (SPEC_FULL.md §C.2). Its mutating
// actions (UpdateTimeOffset/Ended) route through
// ctxcore.Ctx.ApplyLibraryItemUpdate, the same "update" operation §4.4
// defines for add/remove, so a playback session and a manual library edit
// share one code path and one persistence/push policy.
type Player struct {
	Stream *types.ResourceRequest
	ItemID string

	TimeOffset         int64
	Duration           int64
	OverallTimeWatched int64
}

// NewPlayer builds a zero-value Player with nothing loaded.
func NewPlayer() Player { return Player{} }

// Update applies m to p given the current library bucket (read-only: all
// mutation flows back through ctx.ApplyLibraryItemUpdate).
func (p *Player) Update(ctx *ctxcore.Ctx, env runtime.Environment, m msg.Msg) runtime.Effects {
	switch a := m.(type) {
	case msg.ActionPlayerLoad:
		req := a.Stream
		p.Stream = &req
		p.ItemID = a.ItemID
		if item, ok := ctx.Library.Items[a.ItemID]; ok {
			p.TimeOffset = item.State.TimeOffset
			p.Duration = item.State.Duration
			p.OverallTimeWatched = item.State.OverallTimeWatched
		} else {
			p.TimeOffset, p.Duration, p.OverallTimeWatched = 0, 0, 0
		}
		return runtime.NoEffects()

	case msg.ActionPlayerUpdateTimeOffset:
		if p.Stream == nil || p.ItemID == "" {
			return runtime.Unchanged()
		}
		delta := a.TimeOffset - p.TimeOffset
		if delta < 0 {
			delta = 0
		}
		p.TimeOffset = a.TimeOffset
		p.Duration = a.Duration
		p.OverallTimeWatched += delta
		item := p.boundItem(ctx)
		item.State.TimeOffset = p.TimeOffset
		item.State.Duration = p.Duration
		item.State.OverallTimeWatched = p.OverallTimeWatched
		return ctx.ApplyLibraryItemUpdate(env, item)

	case msg.ActionPlayerEnded:
		if p.Stream == nil || p.ItemID == "" {
			return runtime.Unchanged()
		}
		item := p.boundItem(ctx)
		item.State.TimesWatched++
		item.State.FlaggedWatched = 1
		item.State.TimeOffset = 0
		p.TimeOffset = 0
		eff := ctx.ApplyLibraryItemUpdate(env, item)
		p.Stream = nil
		p.ItemID = ""
		return eff

	case msg.ActionUnload:
		if a.Model != "" && a.Model != "Player" {
			return runtime.Unchanged()
		}
		if p.Stream == nil && p.ItemID == "" {
			return runtime.Unchanged()
		}
		*p = Player{}
		return runtime.NoEffects()

	default:
		return runtime.Unchanged()
	}
}

// boundItem returns the currently-bound LibItem (or a zero-valued stub
// keyed by ItemID if the library has no matching entry yet — a playback
// session started on an item never explicitly added to the library still
// records watch progress under its id).
func (p *Player) boundItem(ctx *ctxcore.Ctx) types.LibItem {
	if item, ok := ctx.Library.Items[p.ItemID]; ok {
		return item
	}
	return types.LibItem{ID: p.ItemID, Temp: true}
}
