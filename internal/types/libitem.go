package types

// LibItemState is the playback/watch-progress state embedded in a
// LibItem.
type LibItemState struct {
	LastWatched        *Timestamp
	TimeWatched        int64      // ms
	TimeOffset         int64      // ms
	OverallTimeWatched int64      // ms
	TimesWatched       int
	FlaggedWatched     int
	Duration           int64      // ms
	VideoID            string
	Watched            string     // per-episode watched bitfield/string, opaque here
	LastVidReleased    *Timestamp
	NoNotif            bool
}

// LibItem is one entry of a user's library.
type LibItem struct {
	ID            string
	Type          string
	Name          string
	Poster        string
	PosterShape   PosterShape
	MTime         Timestamp
	CTime         *Timestamp
	Removed       bool
	Temp          bool
	State         LibItemState
	BehaviorHints map[string]any
}

// IsInContinueWatching reports whether this item belongs in the
// "continue watching" shelf: watched some but not finished, not removed.
func (i LibItem) IsInContinueWatching() bool {
	if i.Removed {
		return false
	}
	if i.State.TimeOffset <= 0 {
		return false
	}
	if i.State.Duration > 0 && i.State.TimeOffset >= i.State.Duration {
		return false
	}
	return true
}

// ShouldPush reports whether this item may be pushed to the server on
// sync (§4.4): every item except Temp ones (never persisted server-side).
// It does not look at mtime; callers decide whether the item is newer.
func (i LibItem) ShouldPush() bool {
	return !i.Temp
}

// clone returns a deep-enough copy of i for the remove/update flow (§4.4):
// "remove clones the existing item, sets removed=true, bumps mtime".
func (i LibItem) clone() LibItem {
	out := i
	if i.CTime != nil {
		ct := *i.CTime
		out.CTime = &ct
	}
	if i.State.LastWatched != nil {
		lw := *i.State.LastWatched
		out.State.LastWatched = &lw
	}
	if i.State.LastVidReleased != nil {
		lv := *i.State.LastVidReleased
		out.State.LastVidReleased = &lv
	}
	if i.BehaviorHints != nil {
		bh := make(map[string]any, len(i.BehaviorHints))
		for k, v := range i.BehaviorHints {
			bh[k] = v
		}
		out.BehaviorHints = bh
	}
	return out
}

// WithRemoved returns a copy of i marked removed, with mtime bumped to now
// (§4.4: "remove clones the existing item, sets removed=true, bumps
// mtime").
func (i LibItem) WithRemoved(now Timestamp) LibItem {
	out := i.clone()
	out.Removed = true
	out.MTime = now
	return out
}

// NewFromMeta builds a fresh LibItem for meta, the add path of §4.4's
// "update" operation, optionally carrying forward the prior item's State
// and CTime (the "preserving prior state+ctime if an item already
// exists" rule).
func NewFromMeta(meta MetaPreview, now Timestamp, prior *LibItem) LibItem {
	item := LibItem{
		ID:          meta.ID,
		Type:        meta.Type,
		Name:        meta.Name,
		Poster:      meta.Poster,
		PosterShape: meta.PosterShape,
		MTime:       now,
		CTime:       &now,
	}
	if prior != nil {
		item.State = prior.State
		item.CTime = prior.CTime
		item.Temp = prior.Temp
	}
	return item
}
