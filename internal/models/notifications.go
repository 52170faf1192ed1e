package models

import (
	"sort"

	"github.com/addonify/core/internal/msg"
	"github.com/addonify/core/internal/types"
)

// Notification is one library item with unwatched new content available
// (SPEC_FULL.md §C.1).
type Notification struct {
	Item types.LibItem
}

// Notifications projects, out of the locally-synced library bucket, every
// item whose last_vid_released is newer than last_watched and whose
// no_notif flag is false. It has no persistence of its own and issues no
// transport requests: it is a pure function of Ctx.library, recomputed
// whenever that bucket changes (SPEC_FULL.md §C.1).
type Notifications struct {
	Items []Notification
}

// NewNotifications builds a zero-value Notifications with nothing
// computed yet.
func NewNotifications() Notifications { return Notifications{} }

// Update applies m to n given the current library bucket.
func (n *Notifications) Update(bucket types.LibBucket, m msg.Msg) bool {
	switch a := m.(type) {
	case msg.InternalLibraryChanged:
		n.recompute(bucket)
		return true
	case msg.ActionLoadNotifications:
		n.recompute(bucket)
		return true
	case msg.ActionUnload:
		if a.Model != "" && a.Model != "Notifications" {
			return false
		}
		if n.Items == nil {
			return false
		}
		n.Items = nil
		return true
	default:
		return false
	}
}

func (n *Notifications) recompute(bucket types.LibBucket) {
	var out []Notification
	for _, item := range bucket.Items {
		if item.State.NoNotif {
			continue
		}
		if item.State.LastVidReleased == nil {
			continue
		}
		if item.State.LastWatched != nil && !item.State.LastVidReleased.After(*item.State.LastWatched) {
			continue
		}
		out = append(out, Notification{Item: item})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Item.State.LastVidReleased.After(*out[j].Item.State.LastVidReleased)
	})
	n.Items = out
}
