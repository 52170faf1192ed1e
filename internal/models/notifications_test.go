package models

import (
	"testing"

	"github.com/addonify/core/internal/msg"
	"github.com/addonify/core/internal/types"
)

func TestNotificationsProjectsUnwatchedNewVideos(t *testing.T) {
	bucket := types.NewLibBucket("")
	bucket.Items["a"] = types.LibItem{ID: "a", State: types.LibItemState{LastWatched: ts(100), LastVidReleased: ts(200)}}
	bucket.Items["b"] = types.LibItem{ID: "b", State: types.LibItemState{LastWatched: ts(300), LastVidReleased: ts(200)}}
	bucket.Items["c"] = types.LibItem{ID: "c", State: types.LibItemState{LastVidReleased: ts(50), NoNotif: true}}
	bucket.Items["d"] = types.LibItem{ID: "d", State: types.LibItemState{LastVidReleased: ts(10)}}

	n := NewNotifications()
	changed := n.Update(bucket, msg.InternalLibraryChanged{})
	if !changed {
		t.Fatalf("expected recompute to report changed")
	}
	ids := map[string]bool{}
	for _, item := range n.Items {
		ids[item.Item.ID] = true
	}
	if !ids["a"] || ids["b"] || ids["c"] || !ids["d"] {
		t.Fatalf("expected only a and d to notify, got %+v", ids)
	}
}

func TestNotificationsUnloadClears(t *testing.T) {
	bucket := types.NewLibBucket("")
	bucket.Items["a"] = types.LibItem{ID: "a", State: types.LibItemState{LastVidReleased: ts(10)}}
	n := NewNotifications()
	n.Update(bucket, msg.InternalLibraryChanged{})
	if len(n.Items) == 0 {
		t.Fatalf("expected at least one notification before Unload")
	}
	changed := n.Update(bucket, msg.ActionUnload{})
	if !changed || n.Items != nil {
		t.Fatalf("expected Unload to clear Items")
	}
}
