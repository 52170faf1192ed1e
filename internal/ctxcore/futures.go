package ctxcore

import (
	"context"
	"encoding/json"

	"github.com/addonify/core/internal/apiclient"
	"github.com/addonify/core/internal/corerr"
	"github.com/addonify/core/internal/library"
	"github.com/addonify/core/internal/msg"
	"github.com/addonify/core/internal/profile"
	"github.com/addonify/core/internal/runtime"
	"github.com/addonify/core/internal/types"
)

// pullFromStorageFuture reads the schema-version key, fails fast on a
// downgrade (§7 SchemaVersionDowngrade), then reads and merges the two
// library slots plus the profile key (§4.3 PullFromStorage, §6 storage
// keys).
func (c *Ctx) pullFromStorageFuture(env runtime.Environment) runtime.Future {
	return func(ctx context.Context) msg.Msg {
		if err := migrateSchema(ctx, env); err != nil {
			return msg.InternalCtxStorageResult{Err: errPtr(asCoreError(err))}
		}

		profileBlob, _, err := env.GetStorage(ctx, KeyProfile)
		if err != nil {
			return msg.InternalCtxStorageResult{Err: errPtr(corerr.Env(err))}
		}
		loadedProfile, err := profile.Deserialize(profileBlob)
		if err != nil {
			return msg.InternalCtxStorageResult{Err: errPtr(corerr.Env(err))}
		}

		recentBlob, _, err := env.GetStorage(ctx, KeyLibraryRecent)
		if err != nil {
			return msg.InternalCtxStorageResult{Err: errPtr(corerr.Env(err))}
		}
		otherBlob, _, err := env.GetStorage(ctx, KeyLibrary)
		if err != nil {
			return msg.InternalCtxStorageResult{Err: errPtr(corerr.Env(err))}
		}
		merged, err := deserializeAndMergeBuckets(recentBlob, otherBlob)
		if err != nil {
			return msg.InternalCtxStorageResult{Err: errPtr(corerr.Env(err))}
		}

		return msg.InternalCtxStorageResult{Profile: &loadedProfile, Library: &merged}
	}
}

// authenticateFuture POSTs login or register, and on success fetches the
// add-on collection and full library datastore in parallel (§4.3
// Authenticate row).
func (c *Ctx) authenticateFuture(env runtime.Environment, req types.AuthRequest) runtime.Future {
	return func(ctx context.Context) msg.Msg {
		client := apiClient(env)
		body := apiclient.LoginRequest{Email: req.Email, Password: req.Password}

		var result apiclient.AuthResult
		var err error
		if req.Login {
			result, err = client.Login(ctx, body)
		} else {
			result, err = client.Register(ctx, body)
		}
		if err != nil {
			return msg.InternalCtxAuthResult{Request: req, Err: errPtr(asCoreError(err))}
		}
		auth := types.Auth{Key: result.Key, User: result.User}

		type addonsResult struct {
			addons []types.Descriptor
			err    error
		}
		type libResult struct {
			items []types.LibItem
			err   error
		}
		addonsCh := make(chan addonsResult, 1)
		libCh := make(chan libResult, 1)

		go func() {
			res, err := client.AddonCollectionGet(ctx, auth.Key)
			addonsCh <- addonsResult{addons: res.Addons, err: err}
		}()
		go func() {
			items, err := client.DatastoreGet(ctx, auth.Key, nil, true)
			libCh <- libResult{items: items, err: err}
		}()
		ar := <-addonsCh
		lr := <-libCh
		if ar.err != nil {
			return msg.InternalCtxAuthResult{Request: req, Err: errPtr(asCoreError(ar.err))}
		}
		if lr.err != nil {
			return msg.InternalCtxAuthResult{Request: req, Err: errPtr(asCoreError(lr.err))}
		}

		bucket := types.NewLibBucket(auth.User.ID)
		for _, item := range lr.items {
			bucket.Items[item.ID] = item
		}
		return msg.InternalCtxAuthResult{Request: req, Auth: &auth, Addons: ar.addons, Library: &bucket}
	}
}

// logoutFuture POSTs /logout fire-and-forget; the local state reset has
// already happened synchronously in route() before this future is ever
// scheduled (§4.3 "the local reset MUST happen before the session-delete
// response returns").
func (c *Ctx) logoutFuture(env runtime.Environment, authKey string) runtime.Future {
	return func(ctx context.Context) msg.Msg {
		if authKey == "" {
			return msg.EventSessionDeleted{}
		}
		if err := apiClient(env).Logout(ctx, authKey); err != nil {
			return msg.EventError{Error: asCoreError(err), Source: msg.EventSessionDeleted{}}
		}
		return msg.EventSessionDeleted{}
	}
}

// pushUserFuture POSTs the full current add-on list (§8 scenario 2).
func (c *Ctx) pushUserFuture(env runtime.Environment) runtime.Future {
	authKey := c.Profile.AuthKey()
	addons := append([]types.Descriptor(nil), c.Profile.Addons...)
	return func(ctx context.Context) msg.Msg {
		if err := apiClient(env).AddonCollectionSet(ctx, authKey, addons); err != nil {
			return msg.EventError{Error: asCoreError(err), Source: msg.EventSettingsUpdated{}}
		}
		return msg.InternalProfileChanged{}
	}
}

// pullUserFuture fetches the server's add-on collection (ActionPullUserFromAPI).
func (c *Ctx) pullUserFuture(env runtime.Environment) runtime.Future {
	authKey := c.Profile.AuthKey()
	return func(ctx context.Context) msg.Msg {
		res, err := apiClient(env).AddonCollectionGet(ctx, authKey)
		if err != nil {
			return msg.InternalProfileAddonsPulled{Err: errPtr(asCoreError(err))}
		}
		return msg.InternalProfileAddonsPulled{Addons: res.Addons}
	}
}

// pushLibraryItemFuture PUTs a single dirty item (the common case: one
// add/remove at a time).
func (c *Ctx) pushLibraryItemFuture(env runtime.Environment, item types.LibItem) runtime.Future {
	authKey := c.Profile.AuthKey()
	return func(ctx context.Context) msg.Msg {
		if err := apiClient(env).DatastorePut(ctx, authKey, []types.LibItem{item}); err != nil {
			return msg.EventError{Error: asCoreError(err), Source: msg.EventLibraryPersisted{}}
		}
		return msg.EventLibraryPersisted{}
	}
}

// pushLibraryBatchFuture PUTs every dirty (ShouldPush) item (ActionPushLibraryToAPI).
func (c *Ctx) pushLibraryBatchFuture(env runtime.Environment) runtime.Future {
	authKey := c.Profile.AuthKey()
	var dirty []types.LibItem
	for _, item := range c.Library.Items {
		if item.ShouldPush() {
			dirty = append(dirty, item)
		}
	}
	return func(ctx context.Context) msg.Msg {
		if len(dirty) == 0 {
			return msg.EventLibraryPersisted{}
		}
		if err := apiClient(env).DatastorePut(ctx, authKey, dirty); err != nil {
			return msg.EventError{Error: asCoreError(err), Source: msg.EventLibraryPersisted{}}
		}
		return msg.EventLibraryPersisted{}
	}
}

// syncLibraryFuture runs the full merge-sync protocol (§4.4 steps 1-5) in
// one future, returning the pulled items for Ctx to merge on resolution.
func (c *Ctx) syncLibraryFuture(env runtime.Environment) runtime.Future {
	authKey := c.Profile.AuthKey()
	local := c.Library
	return func(ctx context.Context) msg.Msg {
		client := apiClient(env)
		remoteMeta, err := client.DatastoreMeta(ctx, authKey)
		if err != nil {
			return msg.InternalLibrarySyncResult{Err: errPtr(asCoreError(err))}
		}
		remote := make([]library.RemoteMeta, 0, len(remoteMeta))
		for _, m := range remoteMeta {
			remote = append(remote, library.RemoteMeta{ID: m.ID, MTime: m.MTime})
		}
		plan := library.PlanSync(local, remote)

		type pullResult struct {
			items []types.LibItem
			err   error
		}
		pullCh := make(chan pullResult, 1)
		pushCh := make(chan error, 1)

		go func() {
			if len(plan.IDsToPull) == 0 {
				pullCh <- pullResult{}
				return
			}
			items, err := client.DatastoreGet(ctx, authKey, plan.IDsToPull, false)
			pullCh <- pullResult{items: items, err: err}
		}()
		go func() {
			if len(plan.ItemsToPush) == 0 {
				pushCh <- nil
				return
			}
			pushCh <- client.DatastorePut(ctx, authKey, plan.ItemsToPush)
		}()
		pr := <-pullCh
		perr := <-pushCh
		if pr.err != nil {
			return msg.InternalLibrarySyncResult{Err: errPtr(asCoreError(pr.err))}
		}
		if perr != nil {
			return msg.InternalLibrarySyncResult{Err: errPtr(asCoreError(perr))}
		}
		return msg.InternalLibrarySyncResult{Pulled: pr.items}
	}
}

// persistProfileFuture writes the `profile` storage key (§6). Per §7 only
// Library persistence errors are explicitly surfaced as Event::Error;
// a profile write failure is swallowed here (not logged) by returning the
// same InternalProfileChanged message, which is inert on replay (no route
// case reacts to it a second time without an accompanying diff).
func (c *Ctx) persistProfileFuture(env runtime.Environment) runtime.Future {
	blob := profile.Serialize(c.Profile)
	return func(ctx context.Context) msg.Msg {
		_ = env.SetStorage(ctx, KeyProfile, blob)
		return msg.InternalProfileChanged{}
	}
}

// persistLibraryFuture implements the dual-slot write policy (§4.4) for
// the items touched this dispatch.
func (c *Ctx) persistLibraryFuture(env runtime.Environment, mutatedIDs []string) runtime.Future {
	snapshot := c.Library
	plan := snapshot.PlanWrite(mutatedIDs)
	return func(ctx context.Context) msg.Msg {
		recent, other := snapshot.SplitRecent()
		if plan.WriteRecent {
			if err := env.SetStorage(ctx, KeyLibraryRecent, library.Serialize(recent)); err != nil {
				return msg.EventError{Error: asCoreError(err), Source: msg.EventLibraryPersisted{}}
			}
		}
		if plan.WriteOther {
			if err := env.SetStorage(ctx, KeyLibrary, library.Serialize(other)); err != nil {
				return msg.EventError{Error: asCoreError(err), Source: msg.EventLibraryPersisted{}}
			}
		}
		return msg.EventLibraryPersisted{}
	}
}

// migrateSchema reads the stored schema_version, refuses a downgrade, and
// writes the current version forward when storage is missing or behind.
func migrateSchema(ctx context.Context, env runtime.Environment) error {
	blob, ok, err := env.GetStorage(ctx, KeySchemaVersion)
	if err != nil {
		return corerr.Env(err)
	}
	stored := 0
	if ok {
		if err := json.Unmarshal(blob, &stored); err != nil {
			return corerr.Env(err)
		}
	}
	if stored > SchemaVersion {
		return corerr.SchemaVersionDowngrade(stored, SchemaVersion)
	}
	if stored != SchemaVersion {
		out, _ := json.Marshal(SchemaVersion)
		if err := env.SetStorage(ctx, KeySchemaVersion, out); err != nil {
			return corerr.Env(err)
		}
	}
	return nil
}

// deserializeAndMergeBuckets parses the two persisted slots and merges
// them into one bucket (§4.3 PullFromStorage reads "3 storage keys").
func deserializeAndMergeBuckets(recentBlob, otherBlob []byte) (types.LibBucket, error) {
	recent, err := deserializeBucket(recentBlob)
	if err != nil {
		return types.LibBucket{}, err
	}
	other, err := deserializeBucket(otherBlob)
	if err != nil {
		return types.LibBucket{}, err
	}
	return recent.Merge(other), nil
}

func deserializeBucket(blob []byte) (types.LibBucket, error) {
	if len(blob) == 0 {
		return types.NewLibBucket(""), nil
	}
	var wire struct {
		UID   string
		Items []types.LibItem
	}
	if err := json.Unmarshal(blob, &wire); err != nil {
		return types.LibBucket{}, err
	}
	b := types.NewLibBucket(wire.UID)
	for _, item := range wire.Items {
		b.Items[item.ID] = item
	}
	return b, nil
}

func errPtr(e corerr.CoreError) *corerr.CoreError { return &e }

// asCoreError coerces a generic error into a CoreError, preserving it
// as-is when it already is one (the apiclient package always returns
// CoreError values; this guards callers that might wrap them).
func asCoreError(err error) corerr.CoreError {
	if ce, ok := err.(corerr.CoreError); ok {
		return ce
	}
	return corerr.Env(err)
}
