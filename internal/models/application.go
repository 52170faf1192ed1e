package models

import (
	"context"

	"github.com/addonify/core/internal/ctxcore"
	"github.com/addonify/core/internal/msg"
	"github.com/addonify/core/internal/runtime"
	"github.com/addonify/core/internal/types"
)

// Application is the full composite model: Ctx followed by every Load*
// and supplemented model, in declaration order (§4.1 step 1-2).
type Application struct {
	Ctx *ctxcore.Ctx

	Catalog          CatalogWithFilters[types.MetaPreview]
	AddonCatalog     CatalogWithFilters[types.AddonCatalogItem]
	Library          LibraryWithFilters
	ContinueWatching LibraryWithFilters
	Home             CatalogsWithExtra
	MetaDetails      MetaDetails
	AddonDetails     AddonDetails
	Notifications    Notifications
	Player           Player
}

// New returns a freshly-seeded Application, the process-start state (§9).
func New() *Application {
	return &Application{
		Ctx:              ctxcore.New(),
		Catalog:          NewCatalogWithFilters(),
		AddonCatalog:     NewAddonCatalogWithFilters(),
		Library:          NewLibraryWithFilters(),
		ContinueWatching: NewContinueWatching(),
		Home:             NewCatalogsWithExtra(),
		MetaDetails:      NewMetaDetails(),
		AddonDetails:     NewAddonDetails(),
		Notifications:    NewNotifications(),
		Player:           NewPlayer(),
	}
}

// Update implements runtime.Model: dispatch m to Ctx first, then to every
// other field in declaration order, joining the resulting Effects (§4.1).
func (a *Application) Update(ctx context.Context, env runtime.Environment, m msg.Msg) runtime.Effects {
	eff := a.Ctx.Update(ctx, env, m)

	addons := a.Ctx.Profile.Addons
	bucket := a.Ctx.Library

	eff = eff.Join(a.Catalog.Update(env, addons, m))
	eff = eff.Join(a.AddonCatalog.Update(env, addons, m))
	eff = eff.Join(boolEffects(a.Library.Update(bucket, m)))
	eff = eff.Join(boolEffects(a.ContinueWatching.Update(bucket, m)))
	eff = eff.Join(a.Home.Update(env, addons, m))
	eff = eff.Join(a.MetaDetails.Update(env, addons, m))
	eff = eff.Join(a.AddonDetails.Update(env, addons, m))
	eff = eff.Join(boolEffects(a.Notifications.Update(bucket, m)))
	eff = eff.Join(a.Player.Update(a.Ctx, env, m))

	return eff
}

// boolEffects adapts a model field whose Update only ever recomputes a
// pure projection (no effects of its own) into the (Effects, changed)
// shape every other field produces.
func boolEffects(changed bool) runtime.Effects {
	if changed {
		return runtime.NoEffects()
	}
	return runtime.Unchanged()
}

// Snapshot implements runtime.Model: a shallow copy is sufficient since
// every field is replaced wholesale on mutation, never mutated in place
// (§5).
func (a *Application) Snapshot() runtime.Model {
	out := *a
	ctxCopy := *a.Ctx
	out.Ctx = &ctxCopy
	return &out
}
