// Package selector filters the event catalog by eligibility and draws the
// next event under a weighted-random policy.
package selector

import (
	"errors"

	"github.com/hyluen/fateloom/engine/catalog"
	"github.com/hyluen/fateloom/engine/rules"
	"github.com/hyluen/fateloom/engine/state"
	"github.com/hyluen/fateloom/types"
)

// ErrNoEligible is returned when no event in the catalog is eligible for
// the current state. It usually indicates an authoring gap; callers may
// fall back to a catch-all event if the content guarantees one.
var ErrNoEligible = errors.New("no eligible event for current state")

// Source provides the random draw for selection. *engine.RNG satisfies it.
type Source interface {
	WeightedSelect(weights []int) int
}

// Eligible returns the events whose conditions hold for the snapshot, in
// authoring order. Non-conditional events are always eligible, subject only
// to the chapter gate. The selector never excludes previously shown events:
// one-shot semantics are authored with flag_true/flag_set pairs in content,
// not engine bookkeeping.
func Eligible(cat *catalog.Catalog, snap state.Snapshot) []types.Event {
	var out []types.Event
	for _, ev := range cat.Events() {
		if ev.Chapter > 0 && snap.Chapter() < ev.Chapter {
			continue
		}
		if !rules.Eval(ev.Condition, snap) {
			continue
		}
		out = append(out, ev)
	}
	return out
}

// Next draws one eligible event by weighted random selection. Weights below
// 1 count as 1, so every eligible event keeps a non-zero probability. The
// draw is deterministic for a fixed Source state.
func Next(cat *catalog.Catalog, snap state.Snapshot, src Source) (types.Event, error) {
	candidates := Eligible(cat, snap)
	if len(candidates) == 0 {
		return types.Event{}, ErrNoEligible
	}

	weights := make([]int, len(candidates))
	for i, ev := range candidates {
		weights[i] = ev.Weight
	}
	return candidates[src.WeightedSelect(weights)], nil
}
