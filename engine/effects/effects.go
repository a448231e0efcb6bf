// Package effects implements centralized state mutation via the Apply
// function. The resolver is the only writer of player state; everything
// else sees snapshots.
package effects

import (
	"fmt"
	"sort"

	"github.com/hyluen/fateloom/engine/fate"
	"github.com/hyluen/fateloom/types"
)

// Apply applies one effect to the state, mutating it in place, and returns
// an outcome summarizing every field actually changed.
//
// Key application order is a contract: numeric stat keys first (their
// relative order is free, they are independent), then inventory keys, then
// flag keys, then progression keys. All keys apply before the terminal
// check, so a single effect can damage and heal in one resolution.
//
// Health clamps at a lower bound of zero. No other clamp is imposed here;
// the capped fate keys route through the fate system, which owns its own
// limits. Unrecognized keys are skipped silently and stay preserved in the
// data. Apply never fails under well-formed input.
func Apply(s *types.State, eff types.Effect) types.Outcome {
	var out types.Outcome

	// Numeric stat keys.
	if eff.HPChange != 0 {
		old := s.Health
		s.Health += eff.HPChange
		if s.Health < 0 {
			s.Health = 0
		}
		out.HPDelta = s.Health - old
		out.Log = append(out.Log, fmt.Sprintf("HP %+d → %d", eff.HPChange, s.Health))
	}
	if eff.Fate != 0 {
		s.Fate += eff.Fate
		fate.Record(s)
		out.FateDelta += eff.Fate
		out.Log = append(out.Log, fmt.Sprintf("Fate %+d → %d", eff.Fate, s.Fate))
	}
	if eff.FateMajor != 0 {
		applied, log := fate.Apply(s, fate.Change{Value: eff.FateMajor, Reason: "major choice", Kind: fate.KindMajor})
		out.FateDelta += applied
		out.Log = append(out.Log, log...)
	}
	if eff.FateBias != 0 {
		applied, log := fate.Apply(s, fate.Change{Value: eff.FateBias, Reason: "fate adjustment", Kind: fate.KindBias})
		out.FateDelta += applied
		out.Log = append(out.Log, log...)
	}
	if eff.Atk != 0 {
		s.Atk += eff.Atk
		out.AtkDelta = eff.Atk
		out.Log = append(out.Log, fmt.Sprintf("ATK %+d → %d", eff.Atk, s.Atk))
	}
	if eff.Def != 0 {
		s.Def += eff.Def
		out.DefDelta = eff.Def
		out.Log = append(out.Log, fmt.Sprintf("DEF %+d → %d", eff.Def, s.Def))
	}

	// Inventory keys. Inventory is a multiset: adds always append,
	// removes drop the first occurrence only.
	for _, item := range eff.InventoryAdd {
		s.Inventory = append(s.Inventory, item)
		out.ItemsAdded = append(out.ItemsAdded, item)
		out.Log = append(out.Log, fmt.Sprintf("You obtained: %s", item))
	}
	for _, item := range eff.InventoryRemove {
		if removeFirst(s, item) {
			out.ItemsRemoved = append(out.ItemsRemoved, item)
			out.Log = append(out.Log, fmt.Sprintf("You lost: %s", item))
		}
	}

	// Flag keys: per-key overwrite, independent of prior value.
	if len(eff.FlagSet) > 0 {
		names := make([]string, 0, len(eff.FlagSet))
		for name := range eff.FlagSet {
			names = append(names, name)
		}
		sort.Strings(names)

		out.FlagsSet = make(map[string]bool, len(names))
		for _, name := range names {
			value := eff.FlagSet[name]
			s.Flags[name] = value
			out.FlagsSet[name] = value
			if value {
				out.Log = append(out.Log, fmt.Sprintf("Flag raised: %s", name))
			} else {
				out.Log = append(out.Log, fmt.Sprintf("Flag cleared: %s", name))
			}
		}
	}

	// Progression keys.
	if eff.GotoChapter != 0 {
		s.Chapter = eff.GotoChapter
		out.ChapterSet = eff.GotoChapter
		out.Log = append(out.Log, fmt.Sprintf("The story advances to chapter %d.", eff.GotoChapter))
	}
	out.Log = append(out.Log, eff.EmitLog...)
	if eff.ForcedEvent != "" {
		s.ForcedEvent = eff.ForcedEvent
		out.ForcedEvent = eff.ForcedEvent
	}

	// Terminal check runs after every key has applied.
	if s.Health == 0 {
		out.Defeated = true
	}

	return out
}

// removeFirst drops the first occurrence of item from inventory.
// Returns false if the item is not held.
func removeFirst(s *types.State, item string) bool {
	for i, held := range s.Inventory {
		if held == item {
			s.Inventory = append(s.Inventory[:i], s.Inventory[i+1:]...)
			return true
		}
	}
	return false
}
