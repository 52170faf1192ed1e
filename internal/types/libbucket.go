package types

// LibBucket is a uid-scoped mapping from item id to LibItem (§3). An empty
// UID denotes the anonymous (unauthenticated) bucket.
type LibBucket struct {
	UID   string // empty means anonymous/no user bound
	Items map[string]LibItem
}

// NewLibBucket returns an empty bucket bound to uid ("" for anonymous).
func NewLibBucket(uid string) LibBucket {
	return LibBucket{UID: uid, Items: map[string]LibItem{}}
}

// Clone returns a deep-enough copy of b so callers can mutate the result
// without aliasing b's map.
func (b LibBucket) Clone() LibBucket {
	items := make(map[string]LibItem, len(b.Items))
	for k, v := range b.Items {
		items[k] = v
	}
	return LibBucket{UID: b.UID, Items: items}
}

// WithItem returns a copy of b with item inserted/replaced under item.ID.
func (b LibBucket) WithItem(item LibItem) LibBucket {
	out := b.Clone()
	out.Items[item.ID] = item
	return out
}

// Merge combines b with other, keyed by item id, keeping for each key the
// item with the greater mtime (ties keep b's, making Merge idempotent when
// called with itself and commutative up to equal-mtime ties per I4). Merge
// only proceeds if the two buckets share a uid; otherwise b is returned
// unchanged (§3: "merge(other): only merges if uids match").
func (b LibBucket) Merge(other LibBucket) LibBucket {
	if b.UID != other.UID {
		return b
	}
	out := b.Clone()
	for id, item := range other.Items {
		existing, ok := out.Items[id]
		if !ok || existing.MTime < item.MTime {
			out.Items[id] = item
		}
	}
	return out
}

// RecentSplitSize is the fixed N of spec.md §4.4: the number of
// most-recently-modified items that fit in the "recent" persistence slot.
const RecentSplitSize = 200

// SplitRecent partitions b's items into the "recent" N=RecentSplitSize
// most-recently-modified items and the rest, returning two LibBuckets
// bound to the same uid (§4.4 dual-slot persistence).
func (b LibBucket) SplitRecent() (recent LibBucket, other LibBucket) {
	recent = NewLibBucket(b.UID)
	other = NewLibBucket(b.UID)
	if len(b.Items) <= RecentSplitSize {
		for id, item := range b.Items {
			recent.Items[id] = item
		}
		return recent, other
	}
	ids := make([]string, 0, len(b.Items))
	for id := range b.Items {
		ids = append(ids, id)
	}
	sortByMTimeDesc(ids, b.Items)
	for i, id := range ids {
		if i < RecentSplitSize {
			recent.Items[id] = b.Items[id]
		} else {
			other.Items[id] = b.Items[id]
		}
	}
	return recent, other
}

func sortByMTimeDesc(ids []string, items map[string]LibItem) {
	// insertion sort is fine: RecentSplitSize is small and this runs only
	// on persistence writes, never on the dispatch hot path.
	for i := 1; i < len(ids); i++ {
		j := i
		for j > 0 && items[ids[j-1]].MTime < items[ids[j]].MTime {
			ids[j-1], ids[j] = ids[j], ids[j-1]
			j--
		}
	}
}

// WritePlan decides which of the two persistence slots (§6: storage keys
// `library_recent` and `library`) need to be written after a mutation
// touching mutatedIDs (§4.4 write policy).
type WritePlan struct {
	WriteRecent bool
	WriteOther  bool
}

// PlanWrite implements §4.4's write policy:
//  1. total items <= N: write library_recent, and clear library (WriteOther
//     is still true here — "clear" means persist an empty other-bucket so
//     invariant I8's union stays exact, not "leave the old key alone").
//  2. else split by mtime; if every mutated id falls inside the recent
//     slot, write only library_recent; otherwise write both.
func (b LibBucket) PlanWrite(mutatedIDs []string) WritePlan {
	if len(b.Items) <= RecentSplitSize {
		return WritePlan{WriteRecent: true, WriteOther: true}
	}
	recent, _ := b.SplitRecent()
	allInRecent := true
	for _, id := range mutatedIDs {
		if _, ok := recent.Items[id]; !ok {
			allInRecent = false
			break
		}
	}
	if allInRecent {
		return WritePlan{WriteRecent: true, WriteOther: false}
	}
	return WritePlan{WriteRecent: true, WriteOther: true}
}
