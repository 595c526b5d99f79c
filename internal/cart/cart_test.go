package cart

import (
	"testing"

	"github.com/simkidd/dwec-winery-storefront/pkg/types"
)

func merlot() types.ProductSnapshot {
	return types.ProductSnapshot{ID: "p1", Name: "Merlot", PriceKobo: 150000}
}

func magnum() *types.VariantSnapshot {
	return &types.VariantSnapshot{ID: "v1", Label: "Magnum", PriceKobo: 280000}
}

func TestLineID(t *testing.T) {
	if got := LineID("p1", "v1"); got != "p1-v1" {
		t.Fatalf("unexpected line id %q", got)
	}
	if got := LineID("p1", ""); got != "p1" {
		t.Fatalf("unexpected line id %q", got)
	}
}

func TestAddItemAccumulatesSameIdentity(t *testing.T) {
	state := &State{}
	state.AddItem(merlot(), nil, 1)
	state.AddItem(merlot(), nil, 3)
	state.AddItem(merlot(), nil, 2)

	if len(state.Lines) != 1 {
		t.Fatalf("expected one line, got %d", len(state.Lines))
	}
	if state.Lines[0].Quantity != 6 {
		t.Fatalf("expected quantity 6, got %d", state.Lines[0].Quantity)
	}
}

func TestAddItemVariantCreatesDistinctIdentity(t *testing.T) {
	state := &State{}
	state.AddItem(merlot(), nil, 1)
	state.AddItem(merlot(), magnum(), 1)

	if len(state.Lines) != 2 {
		t.Fatalf("expected two lines, got %d", len(state.Lines))
	}
	if state.Lines[0].ID != "p1" || state.Lines[1].ID != "p1-v1" {
		t.Fatalf("unexpected identities %q %q", state.Lines[0].ID, state.Lines[1].ID)
	}
}

func TestAddItemPreservesInsertionOrder(t *testing.T) {
	state := &State{}
	state.AddItem(types.ProductSnapshot{ID: "p2", PriceKobo: 100}, nil, 1)
	state.AddItem(merlot(), nil, 1)
	state.AddItem(types.ProductSnapshot{ID: "p3", PriceKobo: 100}, nil, 1)
	state.AddItem(merlot(), nil, 1)

	want := []string{"p2", "p1", "p3"}
	for i, id := range want {
		if state.Lines[i].ID != id {
			t.Fatalf("expected %q at position %d, got %q", id, i, state.Lines[i].ID)
		}
	}
}

func TestAddItemClampsNonPositiveQuantity(t *testing.T) {
	state := &State{}
	state.AddItem(merlot(), nil, 0)
	if state.Lines[0].Quantity != 1 {
		t.Fatalf("expected quantity 1, got %d", state.Lines[0].Quantity)
	}
	state.AddItem(merlot(), nil, -5)
	if state.Lines[0].Quantity != 2 {
		t.Fatalf("expected quantity 2, got %d", state.Lines[0].Quantity)
	}
}

func TestSetQuantityClampsToOne(t *testing.T) {
	state := &State{}
	state.AddItem(merlot(), nil, 4)

	for _, q := range []int{0, -1, -100} {
		if !state.SetQuantity("p1", q) {
			t.Fatalf("expected line to be found")
		}
		if state.Lines[0].Quantity != 1 {
			t.Fatalf("quantity %d should clamp to 1, got %d", q, state.Lines[0].Quantity)
		}
	}

	state.SetQuantity("p1", 7)
	if state.Lines[0].Quantity != 7 {
		t.Fatalf("expected quantity 7, got %d", state.Lines[0].Quantity)
	}
}

func TestDecrementFloorsAtOneWithoutRemoval(t *testing.T) {
	state := &State{}
	state.AddItem(merlot(), nil, 1)

	if !state.Decrement("p1") {
		t.Fatalf("expected line to be found")
	}
	if len(state.Lines) != 1 {
		t.Fatalf("decrement must never remove the line")
	}
	if state.Lines[0].Quantity != 1 {
		t.Fatalf("expected floor of 1, got %d", state.Lines[0].Quantity)
	}
}

func TestIncrementAndDecrement(t *testing.T) {
	state := &State{}
	state.AddItem(merlot(), nil, 2)

	state.Increment("p1")
	if state.Lines[0].Quantity != 3 {
		t.Fatalf("expected 3, got %d", state.Lines[0].Quantity)
	}
	state.Decrement("p1")
	if state.Lines[0].Quantity != 2 {
		t.Fatalf("expected 2, got %d", state.Lines[0].Quantity)
	}
}

func TestMissingIdentityIsNoOp(t *testing.T) {
	state := &State{}
	state.AddItem(merlot(), nil, 2)

	if state.RemoveItem("ghost") {
		t.Fatalf("remove of missing identity should report not found")
	}
	if state.SetQuantity("ghost", 5) {
		t.Fatalf("set quantity of missing identity should report not found")
	}
	if state.Increment("ghost") || state.Decrement("ghost") {
		t.Fatalf("increment/decrement of missing identity should report not found")
	}
	if len(state.Lines) != 1 || state.Lines[0].Quantity != 2 {
		t.Fatalf("state must be unchanged after no-ops")
	}
}

func TestClearThenAddBehavesLikeFirstAdd(t *testing.T) {
	state := &State{}
	state.AddItem(merlot(), nil, 5)
	state.AddItem(merlot(), magnum(), 2)

	state.Clear()
	if !state.IsEmpty() {
		t.Fatalf("expected empty cart after clear")
	}

	state.AddItem(merlot(), nil, 1)
	if len(state.Lines) != 1 || state.Lines[0].Quantity != 1 {
		t.Fatalf("add after clear must behave like the first-ever add")
	}
}

func TestSubtotalUsesVariantPriceWhenPresent(t *testing.T) {
	state := &State{}
	state.AddItem(merlot(), nil, 2)      // 2 x 150000
	state.AddItem(merlot(), magnum(), 1) // 1 x 280000

	if got := state.SubtotalKobo(); got != 580000 {
		t.Fatalf("expected subtotal 580000, got %d", got)
	}
}

func TestSnapshotIsIndependent(t *testing.T) {
	state := &State{}
	state.AddItem(merlot(), magnum(), 1)

	snap := state.Snapshot()
	snap.Lines[0].Quantity = 99
	snap.Lines[0].Variant.PriceKobo = 1

	if state.Lines[0].Quantity != 1 {
		t.Fatalf("snapshot mutation leaked into state")
	}
	if state.Lines[0].Variant.PriceKobo != 280000 {
		t.Fatalf("snapshot variant mutation leaked into state")
	}
}
