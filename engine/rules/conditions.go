// Package rules implements pure predicate evaluation of event conditions
// against a player state snapshot.
package rules

import (
	"github.com/hyluen/fateloom/engine/state"
	"github.com/hyluen/fateloom/types"
)

// Eval evaluates a condition against a snapshot. A nil condition is always
// true. All present predicate keys must hold (AND). Predicate keys the
// evaluator does not recognize evaluate true: new condition types authored
// ahead of engine support degrade to "eligible" instead of failing. This
// permissive default is a contract, not an omission.
//
// Eval has no side effects and is safe to call repeatedly and concurrently
// against the same snapshot.
func Eval(c *types.Condition, snap state.Snapshot) bool {
	if c == nil {
		return true
	}

	if c.FateMin != nil && snap.Fate() < *c.FateMin {
		return false
	}
	if c.FateMax != nil && snap.Fate() > *c.FateMax {
		return false
	}
	if c.HPMin != nil && snap.Health() < *c.HPMin {
		return false
	}
	if c.HPMax != nil && snap.Health() > *c.HPMax {
		return false
	}

	if c.ChapterIs != nil && snap.Chapter() != *c.ChapterIs {
		return false
	}
	if c.ChapterMin != nil && snap.Chapter() < *c.ChapterMin {
		return false
	}
	if c.ChapterMax != nil && snap.Chapter() > *c.ChapterMax {
		return false
	}

	for _, item := range c.HasItem {
		if !snap.HasItem(item) {
			return false
		}
	}
	for _, item := range c.LacksItem {
		if snap.HasItem(item) {
			return false
		}
	}

	for _, flag := range c.FlagTrue {
		if !snap.Flag(flag) {
			return false
		}
	}
	for _, flag := range c.FlagFalse {
		if snap.Flag(flag) {
			return false
		}
	}

	// c.Unknown is deliberately ignored (treated as satisfied).
	return true
}
