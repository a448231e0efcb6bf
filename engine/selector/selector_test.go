package selector

import (
	"errors"
	"testing"

	"github.com/hyluen/fateloom/engine/catalog"
	"github.com/hyluen/fateloom/engine/state"
	"github.com/hyluen/fateloom/types"
)

// fixedSource always returns the same index.
type fixedSource int

func (f fixedSource) WeightedSelect(weights []int) int { return int(f) }

// recordingSource captures the weights passed to the draw.
type recordingSource struct {
	weights []int
}

func (r *recordingSource) WeightedSelect(weights []int) int {
	r.weights = append([]int(nil), weights...)
	return 0
}

func ip(n int) *int { return &n }

func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	cat, err := catalog.Load([]types.Event{
		{ID: "fork", Type: types.EventNormal, Weight: 2},
		{ID: "late", Type: types.EventNormal, Chapter: 3},
		{ID: "omen", Type: types.EventConditional, Condition: &types.Condition{FateMin: ip(67)}},
		{ID: "zero", Type: types.EventNormal, Weight: 0},
	})
	if err != nil {
		t.Fatalf("catalog.Load: %v", err)
	}
	return cat
}

func TestEligible_ChapterGate(t *testing.T) {
	cat := testCatalog(t)
	s := state.New() // chapter 1, fate 0

	got := Eligible(cat, state.Snap(s))
	ids := make([]string, len(got))
	for i, ev := range got {
		ids[i] = ev.ID
	}
	if len(ids) != 2 || ids[0] != "fork" || ids[1] != "zero" {
		t.Errorf("expected [fork zero], got %v", ids)
	}

	s.Chapter = 3
	got = Eligible(cat, state.Snap(s))
	if len(got) != 3 {
		t.Errorf("expected chapter-gated event at chapter 3, got %d events", len(got))
	}
}

func TestEligible_ConditionGate(t *testing.T) {
	cat := testCatalog(t)
	s := state.New()
	s.Fate = 80

	got := Eligible(cat, state.Snap(s))
	found := false
	for _, ev := range got {
		if ev.ID == "omen" {
			found = true
		}
	}
	if !found {
		t.Error("expected conditional event eligible at high fate")
	}
}

func TestEligible_NeverExcludesShownEvents(t *testing.T) {
	// Selection carries no one-shot bookkeeping: eligibility depends only
	// on the snapshot, so repeated calls return the same set.
	cat := testCatalog(t)
	snap := state.Snap(state.New())

	first := Eligible(cat, snap)
	second := Eligible(cat, snap)
	if len(first) != len(second) {
		t.Errorf("eligibility changed between calls: %d then %d", len(first), len(second))
	}
}

func TestNext_UsesAuthoredWeights(t *testing.T) {
	cat := testCatalog(t)
	src := &recordingSource{}

	ev, err := Next(cat, state.Snap(state.New()), src)
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if ev.ID != "fork" {
		t.Errorf("index 0 should map to first eligible event, got %q", ev.ID)
	}
	// Raw weights go to the source untouched; the floor lives in the draw.
	if len(src.weights) != 2 || src.weights[0] != 2 || src.weights[1] != 0 {
		t.Errorf("expected weights [2 0], got %v", src.weights)
	}
}

func TestNext_NoEligible(t *testing.T) {
	cat, err := catalog.Load([]types.Event{
		{ID: "late", Type: types.EventNormal, Chapter: 5},
	})
	if err != nil {
		t.Fatalf("catalog.Load: %v", err)
	}

	_, err = Next(cat, state.Snap(state.New()), fixedSource(0))
	if !errors.Is(err, ErrNoEligible) {
		t.Errorf("expected ErrNoEligible, got %v", err)
	}
}

func TestNext_PicksBySourceIndex(t *testing.T) {
	cat := testCatalog(t)

	ev, err := Next(cat, state.Snap(state.New()), fixedSource(1))
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if ev.ID != "zero" {
		t.Errorf("expected second eligible event, got %q", ev.ID)
	}
}
