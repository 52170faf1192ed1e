package runtime

import (
	"context"

	"github.com/addonify/core/internal/msg"
)

// Future is a suspension point: a unit of work submitted to the platform
// executor (Environment.Exec) that, on completion, yields exactly one
// follow-up message re-entering dispatch. Futures never touch the model
// directly (§5 "Effects receive no direct access to the model").
type Future func(ctx context.Context) msg.Msg

// Effect is either an immediate message (recursed into the same dispatch,
// depth-first) or a Future (scheduled on the executor).
type Effect struct {
	immediate msg.Msg
	future    Future
}

// Immediate wraps a message to be dispatched immediately, in the same
// depth-first pass, after the current update returns.
func Immediate(m msg.Msg) Effect { return Effect{immediate: m} }

// FromFuture wraps f to be scheduled on the platform executor; its result
// re-enters dispatch when it resolves.
func FromFuture(f Future) Effect { return Effect{future: f} }

func (e Effect) isFuture() bool { return e.future != nil }

// AsImmediate returns e's immediate message and true, or (nil, false) if
// e is a Future. Exported for tests outside this package that need to
// inspect Effects produced by a Model under test without re-dispatching
// through a full Runtime.
func (e Effect) AsImmediate() (msg.Msg, bool) {
	if e.future != nil {
		return nil, false
	}
	return e.immediate, true
}

// AsFuture returns e's Future and true, or (nil, false) if e is immediate.
func (e Effect) AsFuture() (Future, bool) {
	if e.future == nil {
		return nil, false
	}
	return e.future, true
}

// Effects is the (effects, has_changed) pair every field.update returns
// (§4.1). NoEffects() returns the empty value with Changed=true, the
// "no effects but assume the model changed" default.
type Effects struct {
	Items   []Effect
	Changed bool
}

// NoEffects returns an empty Effects with Changed=true — the default for
// an update that touched nothing but still counts as "ran".
func NoEffects() Effects { return Effects{Changed: true} }

// Unchanged returns an empty Effects with Changed=false, for updates that
// genuinely left this field untouched (no match arm fired).
func Unchanged() Effects { return Effects{Changed: false} }

// WithEffects returns an Effects carrying items, Changed=true.
func WithEffects(items ...Effect) Effects { return Effects{Items: items, Changed: true} }

// Join concatenates e's items with other's and OR-combines Changed, the
// fold used across "Ctx then every field in declaration order" (§4.1
// step 1-2).
func (e Effects) Join(other Effects) Effects {
	return Effects{
		Items:   append(append([]Effect{}, e.Items...), other.Items...),
		Changed: e.Changed || other.Changed,
	}
}
