// Package ctxcore implements Ctx, the composite of Profile and LibBucket
// that orchestrates authentication and storage/API reconciliation
// (spec.md §4.3). Ctx is always the first field of the composite
// application Model and is the exclusive owner of Profile and LibBucket;
// every other model field only ever reads them through an immutable
// borrow taken during its own Update.
package ctxcore

import (
	"bytes"
	"context"

	"github.com/addonify/core/internal/apiclient"
	"github.com/addonify/core/internal/library"
	"github.com/addonify/core/internal/msg"
	"github.com/addonify/core/internal/profile"
	"github.com/addonify/core/internal/runtime"
	"github.com/addonify/core/internal/types"
)

// Storage keys, exact per spec.md §6.
const (
	KeyProfile       = "profile"
	KeyLibraryRecent = "library_recent"
	KeyLibrary       = "library"
	KeySchemaVersion = "schema_version"
)

// SchemaVersion is the current on-disk schema version this build writes
// and expects. A stored version greater than this is a fatal downgrade
// (§7 SchemaVersionDowngrade).
const SchemaVersion = 1

// Status is Ctx's state machine position (§3, §4.3).
type Status int

const (
	StatusReady Status = iota
	StatusLoadingStorage
	StatusLoadingAPI
)

// Ctx is the composite of Profile + LibBucket plus its own status (§3).
type Ctx struct {
	Status      Status
	PendingAuth types.AuthRequest // meaningful only while Status == StatusLoadingAPI
	Profile     types.Profile
	Library     types.LibBucket
}

// New returns a fresh, anonymous, Ready Ctx (process start state).
func New() *Ctx {
	return &Ctx{
		Status:  StatusReady,
		Profile: types.NewProfile(),
		Library: types.NewLibBucket(""),
	}
}

// Clone returns a value deep-enough to serve as a Model Snapshot: Profile
// and Library are replaced wholesale on every mutation, never mutated in
// place, so a shallow copy is a consistent snapshot (§5, §9).
func (c *Ctx) Clone() *Ctx {
	out := *c
	return &out
}

// Update applies m to c and returns the Effects produced, handling both
// the Ctx state-machine transitions (§4.3's table) and the Profile/Library
// mutating actions the Ctx exclusively owns. It always runs Profile and
// Library's own "did the serialized form change" diff after routing m,
// regardless of which branch handled it, and appends the matching
// InternalProfileChanged/InternalLibraryChanged effect plus its
// persistence future when it did (§4.3 "Persistence of the changed bucket
// is an effect, not part of the update").
func (c *Ctx) Update(ctx context.Context, env runtime.Environment, m msg.Msg) runtime.Effects {
	beforeProfile := profile.Serialize(c.Profile)
	beforeLibrary := library.Serialize(c.Library)

	eff, mutatedLibraryIDs := c.route(ctx, env, m)

	if !bytes.Equal(beforeProfile, profile.Serialize(c.Profile)) {
		eff = eff.Join(runtime.WithEffects(
			runtime.Immediate(msg.InternalProfileChanged{}),
			runtime.FromFuture(c.persistProfileFuture(env)),
		))
	}
	if !bytes.Equal(beforeLibrary, library.Serialize(c.Library)) {
		eff = eff.Join(runtime.WithEffects(
			runtime.Immediate(msg.InternalLibraryChanged{}),
			runtime.FromFuture(c.persistLibraryFuture(env, mutatedLibraryIDs)),
		))
	}
	return eff
}

// ApplyLibraryItemUpdate performs the §4.4 "update" operation on item
// directly, for collaborators other than Ctx.Update's own Action routing
// that still need to mutate the library through its one write path — the
// Player model's playback-state changes (SPEC_FULL.md §C.2), which carry
// no dedicated Action.Ctx.* message of their own. It mirrors Update's
// before/after diff and persistence/push effects exactly.
func (c *Ctx) ApplyLibraryItemUpdate(env runtime.Environment, item types.LibItem) runtime.Effects {
	beforeLibrary := library.Serialize(c.Library)

	updated, item := library.UpdateItem(c.Library, item, env.Now())
	c.Library = updated
	eff := runtime.NoEffects()
	if c.Profile.IsAuthenticated() && item.ShouldPush() {
		eff = eff.Join(runtime.WithEffects(runtime.FromFuture(c.pushLibraryItemFuture(env, item))))
	}

	if !bytes.Equal(beforeLibrary, library.Serialize(c.Library)) {
		eff = eff.Join(runtime.WithEffects(
			runtime.Immediate(msg.InternalLibraryChanged{}),
			runtime.FromFuture(c.persistLibraryFuture(env, []string{item.ID})),
		))
	}
	return eff
}

// route is the actual per-message-type switch; it returns the ids
// mutated in Library this dispatch (for the dual-slot write-plan), or nil
// when Library was not touched.
func (c *Ctx) route(ctx context.Context, env runtime.Environment, m msg.Msg) (runtime.Effects, []string) {
	switch a := m.(type) {

	case msg.ActionPullFromStorage:
		if c.Status != StatusReady {
			return runtime.Unchanged(), nil
		}
		c.Status = StatusLoadingStorage
		return runtime.WithEffects(runtime.FromFuture(c.pullFromStorageFuture(env))), nil

	case msg.ActionAuthenticate:
		if c.Status == StatusLoadingStorage {
			return runtime.Unchanged(), nil
		}
		// A second Authenticate while the first is still in flight
		// supersedes it (§4.3, I7): PendingAuth moves to the new
		// request, and the first future's eventual result will no
		// longer match PendingAuth and gets discarded.
		c.Status = StatusLoadingAPI
		c.PendingAuth = a.Request
		return runtime.WithEffects(runtime.FromFuture(c.authenticateFuture(env, a.Request))), nil

	case msg.ActionLogout:
		if c.Status != StatusReady {
			return runtime.Unchanged(), nil
		}
		authKey := c.Profile.AuthKey()
		c.Profile = profile.LoggedOut(c.Profile)
		c.Library = types.NewLibBucket("")
		return runtime.WithEffects(
			runtime.Immediate(msg.EventUserLoggedOut{}),
			runtime.FromFuture(c.logoutFuture(env, authKey)),
		), nil

	case msg.InternalCtxStorageResult:
		if c.Status != StatusLoadingStorage {
			return runtime.Unchanged(), nil
		}
		c.Status = StatusReady
		if a.Err != nil {
			return runtime.WithEffects(runtime.Immediate(msg.EventError{
				Error:  *a.Err,
				Source: msg.EventCtxPulledFromStorage{},
			})), nil
		}
		if a.Profile != nil {
			c.Profile = *a.Profile
		}
		if a.Library != nil {
			c.Library = *a.Library
		}
		return runtime.WithEffects(runtime.Immediate(msg.EventCtxPulledFromStorage{})), nil

	case msg.InternalCtxAuthResult:
		if c.Status != StatusLoadingAPI || a.Request != c.PendingAuth {
			// Auth-race policy (§4.3, I7): ignore results from a
			// superseded Authenticate.
			return runtime.Unchanged(), nil
		}
		c.Status = StatusReady
		if a.Err != nil {
			return runtime.WithEffects(runtime.Immediate(msg.EventError{
				Error:  *a.Err,
				Source: msg.EventUserAuthenticated{Request: a.Request},
			})), nil
		}
		if a.Auth != nil {
			c.Profile, _ = profile.Authenticated(c.Profile, *a.Auth)
		}
		if len(a.Addons) > 0 {
			// Invariant I1: never replace a non-empty list with empty.
			c.Profile.Addons = a.Addons
		}
		var mutated []string
		if a.Library != nil {
			c.Library = *a.Library
			for id := range a.Library.Items {
				mutated = append(mutated, id)
			}
		}
		return runtime.WithEffects(runtime.Immediate(msg.EventUserAuthenticated{Request: a.Request})), mutated

	case msg.ActionInstallAddon:
		updated, changed := profile.InstallAddon(c.Profile, a.Descriptor)
		if !changed {
			return runtime.Unchanged(), nil
		}
		c.Profile = updated
		eff := runtime.WithEffects(runtime.Immediate(msg.EventAddonInstalled{TransportURL: a.Descriptor.TransportURL}))
		if c.Profile.IsAuthenticated() {
			eff = eff.Join(runtime.WithEffects(runtime.FromFuture(c.pushUserFuture(env))))
		}
		return eff, nil

	case msg.ActionUninstallAddon:
		updated, changed := profile.UninstallAddon(c.Profile, a.TransportURL)
		if !changed {
			// Protected add-on: no-op, no Event (§8 scenario 3).
			return runtime.Unchanged(), nil
		}
		c.Profile = updated
		eff := runtime.WithEffects(runtime.Immediate(msg.EventAddonUninstalled{TransportURL: a.TransportURL}))
		if c.Profile.IsAuthenticated() {
			eff = eff.Join(runtime.WithEffects(runtime.FromFuture(c.pushUserFuture(env))))
		}
		return eff, nil

	case msg.ActionUpdateSettings:
		c.Profile = profile.UpdateSettings(c.Profile, a.Settings)
		eff := runtime.WithEffects(runtime.Immediate(msg.EventSettingsUpdated{}))
		if c.Profile.IsAuthenticated() {
			eff = eff.Join(runtime.WithEffects(runtime.FromFuture(c.pushUserFuture(env))))
		}
		return eff, nil

	case msg.ActionPushUserToAPI:
		if !c.Profile.IsAuthenticated() {
			return runtime.Unchanged(), nil
		}
		return runtime.WithEffects(runtime.FromFuture(c.pushUserFuture(env))), nil

	case msg.ActionPullUserFromAPI:
		if !c.Profile.IsAuthenticated() {
			return runtime.Unchanged(), nil
		}
		return runtime.WithEffects(runtime.FromFuture(c.pullUserFuture(env))), nil

	case msg.InternalProfileAddonsPulled:
		if a.Err != nil {
			return runtime.WithEffects(runtime.Immediate(msg.EventError{
				Error:  *a.Err,
				Source: msg.EventSettingsUpdated{},
			})), nil
		}
		if len(a.Addons) == 0 {
			// Invariant I1: never replace a non-empty list with empty.
			return runtime.Unchanged(), nil
		}
		c.Profile.Addons = a.Addons
		return runtime.NoEffects(), nil

	case msg.ActionAddToLibrary:
		updated, item := library.AddItem(c.Library, a.Meta, env.Now())
		c.Library = updated
		eff := runtime.NoEffects()
		if c.Profile.IsAuthenticated() && item.ShouldPush() {
			eff = eff.Join(runtime.WithEffects(runtime.FromFuture(c.pushLibraryItemFuture(env, item))))
		}
		return eff, []string{item.ID}

	case msg.ActionRemoveFromLibrary:
		updated, item, ok := library.RemoveItem(c.Library, a.ID, env.Now())
		if !ok {
			return runtime.Unchanged(), nil
		}
		c.Library = updated
		eff := runtime.NoEffects()
		if c.Profile.IsAuthenticated() && item.ShouldPush() {
			eff = eff.Join(runtime.WithEffects(runtime.FromFuture(c.pushLibraryItemFuture(env, item))))
		}
		return eff, []string{item.ID}

	case msg.ActionPushLibraryToAPI:
		if !c.Profile.IsAuthenticated() {
			return runtime.Unchanged(), nil
		}
		return runtime.WithEffects(runtime.FromFuture(c.pushLibraryBatchFuture(env))), nil

	case msg.ActionSyncLibraryWithAPI:
		if !c.Profile.IsAuthenticated() {
			return runtime.Unchanged(), nil
		}
		return runtime.WithEffects(runtime.FromFuture(c.syncLibraryFuture(env))), nil

	case msg.InternalLibrarySyncResult:
		if a.Err != nil {
			return runtime.WithEffects(runtime.Immediate(msg.EventError{
				Error:  *a.Err,
				Source: msg.EventLibrarySynced{},
			})), nil
		}
		c.Library = library.ApplyPulled(c.Library, a.Pulled)
		mutated := make([]string, 0, len(a.Pulled))
		for _, item := range a.Pulled {
			mutated = append(mutated, item.ID)
		}
		return runtime.WithEffects(runtime.Immediate(msg.EventLibrarySynced{})), mutated

	default:
		return runtime.Unchanged(), nil
	}
}

// apiClient builds the API client bound to env's base URL. Cheap and
// stateless, built fresh per future rather than cached on Ctx.
func apiClient(env runtime.Environment) *apiclient.Client {
	return apiclient.New(env, env.APIURL())
}
