// Package library holds the pure business rules for mutating a
// types.LibBucket and planning its sync with the server Datastore (spec.md
// §4.4). internal/ctxcore calls into this package and decides what
// effects (persistence writes, API pushes) follow from the result.
package library

import (
	"encoding/json"

	"github.com/addonify/core/internal/types"
)

// AddItem builds a fresh LibItem from meta and upserts it into b (§4.4
// "add builds a fresh LibItem ... preserving prior state+ctime if an item
// already exists"), returning the updated bucket and the item as stored.
func AddItem(b types.LibBucket, meta types.MetaPreview, now types.Timestamp) (types.LibBucket, types.LibItem) {
	var prior *types.LibItem
	if existing, ok := b.Items[meta.ID]; ok {
		p := existing
		prior = &p
	}
	item := types.NewFromMeta(meta, now, prior)
	return b.WithItem(item), item
}

// RemoveItem marks the item with id as removed (§4.4 "remove clones the
// existing item, sets removed=true, bumps mtime"). A missing id is a
// no-op, reported via ok=false.
func RemoveItem(b types.LibBucket, id string, now types.Timestamp) (types.LibBucket, types.LibItem, bool) {
	existing, ok := b.Items[id]
	if !ok {
		return b, types.LibItem{}, false
	}
	removed := existing.WithRemoved(now)
	return b.WithItem(removed), removed, true
}

// UpdateItem bumps item's mtime to now and upserts it into b — the same
// WithItem-plus-mtime shape AddItem and RemoveItem use (they call WithItem
// themselves), and the path a playback session's state changes
// (SPEC_FULL.md §C.2) go through.
func UpdateItem(b types.LibBucket, item types.LibItem, now types.Timestamp) (types.LibBucket, types.LibItem) {
	item.MTime = now
	return b.WithItem(item), item
}

// RemoteMeta is one (id, mtime) pair returned by the server's
// datastoreMeta endpoint — the remote side of the merge-sync protocol
// (§4.4 step 1).
type RemoteMeta struct {
	ID    string
	MTime types.Timestamp
}

// SyncPlan is the result of planning a merge-sync round (§4.4 steps 2-3):
// which ids to pull from the server and which local items to push.
type SyncPlan struct {
	IDsToPull   []string
	ItemsToPush []types.LibItem
}

// PlanSync compares local against remote and builds the SyncPlan (§4.4):
//   - ids_to_pull: ids where local.mtime < remote.mtime, or local is
//     missing the id entirely.
//   - items_to_push: local items where (remote is missing the id, or
//     remote.mtime < local.mtime) AND item.ShouldPush().
func PlanSync(local types.LibBucket, remote []RemoteMeta) SyncPlan {
	remoteByID := make(map[string]types.Timestamp, len(remote))
	for _, r := range remote {
		remoteByID[r.ID] = r.MTime
	}

	var plan SyncPlan
	for id, remoteMTime := range remoteByID {
		localItem, ok := local.Items[id]
		if !ok || localItem.MTime.Before(remoteMTime) {
			plan.IDsToPull = append(plan.IDsToPull, id)
		}
	}
	for id, item := range local.Items {
		remoteMTime, hasRemote := remoteByID[id]
		if !item.ShouldPush() {
			continue
		}
		if !hasRemote || remoteMTime.Before(item.MTime) {
			plan.ItemsToPush = append(plan.ItemsToPush, item)
		}
	}
	return plan
}

// ApplyPulled merges items pulled from the server into local (§4.4 step
// 5: "construct a bucket from pulled items; merge into local via
// LibBucket.merge").
func ApplyPulled(local types.LibBucket, pulled []types.LibItem) types.LibBucket {
	remote := types.NewLibBucket(local.UID)
	for _, item := range pulled {
		remote.Items[item.ID] = item
	}
	return local.Merge(remote)
}

// Serialize returns the canonical JSON form of b, used for the
// before/after equality check that decides whether to emit
// Internal.LibraryChanged (§4.3).
func Serialize(b types.LibBucket) []byte {
	ids := make([]string, 0, len(b.Items))
	for id := range b.Items {
		ids = append(ids, id)
	}
	sortStrings(ids)
	ordered := make([]types.LibItem, 0, len(ids))
	for _, id := range ids {
		ordered = append(ordered, b.Items[id])
	}
	blob, _ := json.Marshal(struct {
		UID   string
		Items []types.LibItem
	}{UID: b.UID, Items: ordered})
	return blob
}

func sortStrings(ids []string) {
	for i := 1; i < len(ids); i++ {
		for j := i; j > 0 && ids[j-1] > ids[j]; j-- {
			ids[j-1], ids[j] = ids[j], ids[j-1]
		}
	}
}
