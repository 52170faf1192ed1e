package types

import "testing"

func TestMergeNeverDecreasesMTime(t *testing.T) {
	a := NewLibBucket("u1")
	a.Items["x"] = LibItem{ID: "x", MTime: 500}
	b := NewLibBucket("u1")
	b.Items["x"] = LibItem{ID: "x", MTime: 100}

	merged := a.Merge(b)
	if merged.Items["x"].MTime != 500 {
		t.Fatalf("I4: merge must never decrease mtime, got %d", merged.Items["x"].MTime)
	}
}

func TestMergeIsIdempotent(t *testing.T) {
	a := NewLibBucket("u1")
	a.Items["x"] = LibItem{ID: "x", MTime: 500}

	once := a.Merge(a)
	twice := once.Merge(a)
	if len(once.Items) != len(twice.Items) || once.Items["x"].MTime != twice.Items["x"].MTime {
		t.Fatal("I4: merge must be idempotent")
	}
}

func TestMergeRefusesMismatchedUID(t *testing.T) {
	a := NewLibBucket("u1")
	a.Items["x"] = LibItem{ID: "x", MTime: 1}
	b := NewLibBucket("u2")
	b.Items["x"] = LibItem{ID: "x", MTime: 999}

	merged := a.Merge(b)
	if merged.Items["x"].MTime != 1 {
		t.Fatal("merge across mismatched uids must return the receiver unchanged")
	}
}

func TestPlanWriteUnionInvariant(t *testing.T) {
	small := NewLibBucket("u1")
	for i := 0; i < 5; i++ {
		id := string(rune('a' + i))
		small.Items[id] = LibItem{ID: id, MTime: Timestamp(i)}
	}
	plan := small.PlanWrite([]string{"a"})
	if !plan.WriteRecent || !plan.WriteOther {
		t.Fatalf("I8: below-threshold mutation must still clear the other slot, got %+v", plan)
	}
	recent, other := small.SplitRecent()
	if len(other.Items) != 0 {
		t.Fatalf("expected all items in the recent slot below threshold, got %d in other", len(other.Items))
	}
	assertUnionEqualsBucket(t, small, recent, other)
}

func TestPlanWriteAboveThresholdSplitsCorrectly(t *testing.T) {
	big := NewLibBucket("u1")
	for i := 0; i < RecentSplitSize+10; i++ {
		id := itoa(i)
		big.Items[id] = LibItem{ID: id, MTime: Timestamp(i)}
	}
	recent, other := big.SplitRecent()
	if len(recent.Items) != RecentSplitSize {
		t.Fatalf("expected recent slot of size %d, got %d", RecentSplitSize, len(recent.Items))
	}
	assertUnionEqualsBucket(t, big, recent, other)

	// A mutation touching only an id that landed in "other" must write both.
	var otherID string
	for id := range other.Items {
		otherID = id
		break
	}
	plan := big.PlanWrite([]string{otherID})
	if !plan.WriteRecent || !plan.WriteOther {
		t.Fatalf("expected both slots written when a mutated id falls outside recent, got %+v", plan)
	}
}

func assertUnionEqualsBucket(t *testing.T, full, recent, other LibBucket) {
	t.Helper()
	if len(recent.Items)+len(other.Items) != len(full.Items) {
		t.Fatalf("I8: union size mismatch: recent=%d other=%d full=%d", len(recent.Items), len(other.Items), len(full.Items))
	}
	for id, item := range full.Items {
		r, inRecent := recent.Items[id]
		o, inOther := other.Items[id]
		if !inRecent && !inOther {
			t.Fatalf("I8: item %s missing from union", id)
		}
		if inRecent && inOther {
			t.Fatalf("I8: item %s present in both slots", id)
		}
		if inRecent && r.MTime != item.MTime {
			t.Fatalf("I8: recent copy of %s has wrong mtime", id)
		}
		if inOther && o.MTime != item.MTime {
			t.Fatalf("I8: other copy of %s has wrong mtime", id)
		}
	}
}

func itoa(i int) string {
	if i == 0 {
		return "0"
	}
	neg := i < 0
	if neg {
		i = -i
	}
	var buf [20]byte
	pos := len(buf)
	for i > 0 {
		pos--
		buf[pos] = byte('0' + i%10)
		i /= 10
	}
	if neg {
		pos--
		buf[pos] = '-'
	}
	return string(buf[pos:])
}
