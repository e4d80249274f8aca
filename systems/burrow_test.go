package systems

import (
	"math"
	"testing"
)

func TestBurrow_GrowthCompletes(t *testing.T) {
	h := newHarness(t, nil)
	id := h.w.AddBurrow(1, 60, 60, 1)

	h.burrows.Update(1)
	_, b, _ := h.w.Burrow(id)
	if math.Abs(b.DigProgress-h.cfg.Burrow.GrowthRate) > 1e-12 || b.Complete {
		t.Fatalf("progress = %v complete = %v after 1s", b.DigProgress, b.Complete)
	}

	h.burrows.Update(100)
	_, b, _ = h.w.Burrow(id)
	if b.DigProgress != 1 || !b.Complete {
		t.Errorf("progress = %v complete = %v, want capped at 1 and complete", b.DigProgress, b.Complete)
	}
}

func TestBurrow_PrunesOccupantsNotSheltered(t *testing.T) {
	h := newHarness(t, nil)
	inside := h.spawn(60, 60, plainGenome(), 50)
	outside := h.spawn(70, 70, plainGenome(), 50)
	bid := h.w.AddBurrow(inside, 60, 60, 1)

	_, a := h.agent(t, inside)
	a.CurrentBurrowID = bid
	_, b, _ := h.w.Burrow(bid)
	b.AddOccupant(inside)
	b.AddOccupant(outside)
	b.AddOccupant(999)

	h.burrows.Update(0.1)

	_, b, _ = h.w.Burrow(bid)
	if len(b.Occupants) != 1 || b.Occupants[0] != inside {
		t.Errorf("occupants = %v, want [%d]", b.Occupants, inside)
	}
}
