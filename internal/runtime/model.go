package runtime

import (
	"context"

	"github.com/addonify/core/internal/msg"
)

// Model is the composite application model contract (§4.1). A concrete
// Model (internal/models.Application) is responsible for internally
// applying "Ctx first, then every remaining field in declaration order,
// joined" — the runtime itself only knows Update/Snapshot; any
// implementation strategy that satisfies that composition contract is
// conformant.
type Model interface {
	// Update applies m against the model, mutating it in place, and
	// returns the Effects produced. Called with the Runtime's writer lock
	// held; must not suspend or call back into Dispatch.
	Update(ctx context.Context, env Environment, m msg.Msg) Effects

	// Snapshot returns a read-only copy of the model cheap enough to take
	// under the reader lock — a shallow copy sharing slice/map backing
	// storage is sufficient since every field is replaced wholesale on
	// mutation, never mutated in place (§5 "no large Vec copying").
	Snapshot() Model
}
