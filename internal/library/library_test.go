package library

import (
	"testing"

	"github.com/addonify/core/internal/types"
)

func TestAddItemPreservesStateOnReAdd(t *testing.T) {
	b := types.NewLibBucket("")
	now := types.Timestamp(1000)
	b, item := AddItem(b, types.MetaPreview{ID: "tt1", Type: "movie", Name: "A"}, now)
	if item.MTime != now {
		t.Fatalf("expected mtime %d, got %d", now, item.MTime)
	}

	b.Items["tt1"] = func() types.LibItem {
		it := b.Items["tt1"]
		it.State.TimeOffset = 500
		it.State.Duration = 1000
		return it
	}()

	later := types.Timestamp(2000)
	_, updated := AddItem(b, types.MetaPreview{ID: "tt1", Type: "movie", Name: "A"}, later)
	if updated.State.TimeOffset != 500 {
		t.Fatalf("expected prior watch state to be preserved, got %+v", updated.State)
	}
	if updated.MTime != later {
		t.Fatalf("expected mtime bumped to %d, got %d", later, updated.MTime)
	}
}

func TestRemoveItemMarksRemovedAndBumpsMTime(t *testing.T) {
	b := types.NewLibBucket("")
	b, _ = AddItem(b, types.MetaPreview{ID: "tt1"}, types.Timestamp(1000))

	b, removed, ok := RemoveItem(b, "tt1", types.Timestamp(2000))
	if !ok {
		t.Fatal("expected ok=true")
	}
	if !removed.Removed || removed.MTime != 2000 {
		t.Fatalf("unexpected removed item: %+v", removed)
	}
	if !b.Items["tt1"].Removed {
		t.Fatal("expected bucket to carry the removed item, not delete it (I2 identity must still hold)")
	}
}

func TestRemoveItemMissingIsNoOp(t *testing.T) {
	b := types.NewLibBucket("")
	_, _, ok := RemoveItem(b, "missing", types.Timestamp(1))
	if ok {
		t.Fatal("expected ok=false for a missing id")
	}
}

func TestPlanSyncPullsNewerRemoteAndPushesNewerLocal(t *testing.T) {
	local := types.NewLibBucket("u1")
	local.Items["a"] = types.LibItem{ID: "a", MTime: 100}
	local.Items["b"] = types.LibItem{ID: "b", MTime: 300}
	local.Items["temp"] = types.LibItem{ID: "temp", MTime: 999, Temp: true}

	remote := []RemoteMeta{
		{ID: "a", MTime: 200}, // remote newer -> pull
		{ID: "b", MTime: 100}, // local newer -> push
		{ID: "c", MTime: 50},  // missing locally -> pull
	}

	plan := PlanSync(local, remote)
	if !containsString(plan.IDsToPull, "a") || !containsString(plan.IDsToPull, "c") {
		t.Fatalf("expected pull of a,c got %v", plan.IDsToPull)
	}
	if containsString(plan.IDsToPull, "b") {
		t.Fatalf("did not expect to pull b, got %v", plan.IDsToPull)
	}
	if len(plan.ItemsToPush) != 1 || plan.ItemsToPush[0].ID != "b" {
		t.Fatalf("expected push of only b, got %+v", plan.ItemsToPush)
	}
}

func containsString(ss []string, s string) bool {
	for _, v := range ss {
		if v == s {
			return true
		}
	}
	return false
}

func TestApplyPulledMergesWithoutDecreasingMTime(t *testing.T) {
	local := types.NewLibBucket("u1")
	local.Items["a"] = types.LibItem{ID: "a", MTime: 100}

	pulled := []types.LibItem{{ID: "a", MTime: 50}, {ID: "b", MTime: 200}}
	merged := ApplyPulled(local, pulled)

	if merged.Items["a"].MTime != 100 {
		t.Fatalf("merge must never decrease mtime (I4), got %d", merged.Items["a"].MTime)
	}
	if merged.Items["b"].MTime != 200 {
		t.Fatalf("expected new item b to be merged in, got %+v", merged.Items["b"])
	}
}

func TestSerializeIsDeterministic(t *testing.T) {
	b := types.NewLibBucket("u1")
	b.Items["z"] = types.LibItem{ID: "z", MTime: 1}
	b.Items["a"] = types.LibItem{ID: "a", MTime: 2}

	first := Serialize(b)
	second := Serialize(b)
	if string(first) != string(second) {
		t.Fatal("expected Serialize to be deterministic across calls")
	}
}
