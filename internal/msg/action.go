// Package msg defines the closed message taxonomy that flows through the
// runtime: Action (caller-originated), Internal (core-originated) and
// Event (outbound-only) — spec.md §4.2.
package msg

import (
	"github.com/addonify/core/internal/types"
)

// Msg is the common marker every message variant implements. It carries
// no behavior; its only purpose is to make the three families (and their
// variants) a closed, type-switchable set, the idiomatic Go analogue of a
// Rust tagged enum.
type Msg interface {
	isMsg()
}

// Action is implemented by every caller-originated message.
type Action interface {
	Msg
	isAction()
}

type actionBase struct{}

func (actionBase) isMsg()    {}
func (actionBase) isAction() {}

// --- Ctx actions ---

type ActionAuthenticate struct {
	actionBase
	Request types.AuthRequest
}

type ActionLogout struct{ actionBase }

type ActionInstallAddon struct {
	actionBase
	Descriptor types.Descriptor
}

type ActionUninstallAddon struct {
	actionBase
	TransportURL string
}

type ActionUpdateSettings struct {
	actionBase
	Settings types.Settings
}

type ActionAddToLibrary struct {
	actionBase
	Meta types.MetaPreview
}

type ActionRemoveFromLibrary struct {
	actionBase
	ID string
}

type ActionPushUserToAPI struct{ actionBase }
type ActionPullUserFromAPI struct{ actionBase }
type ActionPushLibraryToAPI struct{ actionBase }
type ActionPullFromStorage struct{ actionBase }
type ActionSyncLibraryWithAPI struct{ actionBase }

// --- Load actions (one per model) ---

type ActionLoadCatalogsWithExtra struct {
	actionBase
	Extra types.Extra
}

type ActionLoadCatalogWithFilters struct {
	actionBase
	Selected *types.ResourceRequest // nil clears selection
}

type ActionLoadAddonCatalogWithFilters struct {
	actionBase
	Selected *types.ResourceRequest
}

type ActionLoadMetaDetails struct {
	actionBase
	Ref types.ResourceRef
}

type ActionLoadLibraryWithFilters struct {
	actionBase
	Type string // "" means all types
	Sort string
}

type ActionLoadContinueWatching struct{ actionBase }

type ActionLoadAddonDetails struct {
	actionBase
	TransportURL string
}

type ActionLoadNotifications struct{ actionBase }

// --- Player / Unload ---
//
// The streaming server's own reload/restart channel is out of scope (§1);
// changing its URL is an ordinary settings mutation and goes through
// ActionUpdateSettings like every other Settings field.

type ActionPlayerLoad struct {
	actionBase
	Stream types.ResourceRequest
	ItemID string
}

type ActionPlayerUpdateTimeOffset struct {
	actionBase
	TimeOffset int64
	Duration   int64
}

type ActionPlayerEnded struct{ actionBase }

type ActionUnload struct {
	actionBase
	Model string // name of the model field to reset, "" = all Load* models
}
