package msg

import (
	"github.com/addonify/core/internal/corerr"
	"github.com/addonify/core/internal/types"
)

// Internal is implemented by every core-originated message: results of
// storage/HTTP operations, and change notifications. Never originated by
// a caller.
type Internal interface {
	Msg
	isInternal()
}

type internalBase struct{}

func (internalBase) isMsg()      {}
func (internalBase) isInternal() {}

// InternalProfileChanged is emitted after Profile.Update whenever the
// serialized form of Profile changed (§4.3).
type InternalProfileChanged struct{ internalBase }

// InternalLibraryChanged is emitted after Library.Update whenever the
// serialized form of LibBucket changed (§4.3).
type InternalLibraryChanged struct{ internalBase }

// InternalResourceRequestResult carries one add-on's response (or error)
// for one planned ResourceRequest (§4.5).
type InternalResourceRequestResult struct {
	internalBase
	Request  types.ResourceRequest
	Response types.ResourceResponse
	Err      *corerr.ResourceError
}

// InternalManifestRequestResult carries the result of fetching a single
// add-on's manifest (§4.9 descriptor resolution).
type InternalManifestRequestResult struct {
	internalBase
	TransportURL string
	Manifest     *types.Manifest
	Err          *corerr.ResourceError
}

// InternalCtxStorageResult carries the result of reading the three
// storage keys during PullFromStorage (§4.3).
type InternalCtxStorageResult struct {
	internalBase
	Profile *types.Profile
	Library *types.LibBucket
	Err     *corerr.CtxError
}

// InternalCtxAuthResult carries the result of an Authenticate flow: the
// embedded AuthRequest lets Ctx discard stale results per the auth-race
// policy (§4.3).
type InternalCtxAuthResult struct {
	internalBase
	Request types.AuthRequest
	Auth    *types.Auth
	Addons  []types.Descriptor // server's add-on collection, fetched in parallel with Library
	Library *types.LibBucket
	Err     *corerr.CtxError
}

// InternalLibrarySyncResult carries the items pulled from the server at
// the end of a SyncLibraryWithAPI round (§4.4 merge-sync step 5): Ctx
// merges Pulled into its local bucket via LibBucket.Merge.
type InternalLibrarySyncResult struct {
	internalBase
	Pulled []types.LibItem
	Err    *corerr.CtxError
}

// InternalProfileAddonsPulled carries the add-on list fetched by
// PullUserFromAPI, replacing Profile.Addons wholesale.
type InternalProfileAddonsPulled struct {
	internalBase
	Addons []types.Descriptor
	Err    *corerr.CtxError
}
