// Package state owns the mutable player state. The effect resolver is the
// only writer; every other component reads through an immutable Snapshot.
package state

import "github.com/hyluen/fateloom/types"

// Baseline stats for a fresh playthrough.
const (
	BaseHealth = 20
	BaseAtk    = 5
	BaseDef    = 3
	BaseFate   = 0
)

// New creates a fresh player state at chapter 1 with baseline stats.
func New() *types.State {
	return &types.State{
		Health:    BaseHealth,
		Fate:      BaseFate,
		Atk:       BaseAtk,
		Def:       BaseDef,
		Chapter:   1,
		Inventory: []string{},
		Flags:     map[string]bool{},
	}
}

// Normalize repairs nil maps and slices, typically after deserialization.
func Normalize(s *types.State) {
	if s.Inventory == nil {
		s.Inventory = []string{}
	}
	if s.Flags == nil {
		s.Flags = map[string]bool{}
	}
	if s.Chapter < 1 {
		s.Chapter = 1
	}
}

// Snapshot is a read-only view of a player state. It is safe to evaluate
// conditions against the same snapshot repeatedly and concurrently as long
// as no resolver write happens in between.
type Snapshot struct {
	s *types.State
}

// Snap wraps a state in a read-only view.
func Snap(s *types.State) Snapshot {
	return Snapshot{s: s}
}

func (sn Snapshot) Health() int  { return sn.s.Health }
func (sn Snapshot) Fate() int    { return sn.s.Fate }
func (sn Snapshot) Atk() int     { return sn.s.Atk }
func (sn Snapshot) Def() int     { return sn.s.Def }
func (sn Snapshot) Chapter() int { return sn.s.Chapter }
func (sn Snapshot) Steps() int   { return sn.s.Steps }

// Flag returns the value of a flag. Unset flags are false.
func (sn Snapshot) Flag(name string) bool {
	return sn.s.Flags[name]
}

// HasItem returns true if the item appears at least once in inventory.
func (sn Snapshot) HasItem(name string) bool {
	for _, item := range sn.s.Inventory {
		if item == name {
			return true
		}
	}
	return false
}

// CountItem returns how many copies of the item the inventory holds.
// Inventory is a multiset, so duplicates are counted.
func (sn Snapshot) CountItem(name string) int {
	n := 0
	for _, item := range sn.s.Inventory {
		if item == name {
			n++
		}
	}
	return n
}

// InBattle returns true while a battle is active.
func (sn Snapshot) InBattle() bool {
	return sn.s.Battle != nil && sn.s.Battle.Active
}
