package state

import (
	"testing"

	"github.com/hyluen/fateloom/types"
)

func TestNew_Baseline(t *testing.T) {
	s := New()

	if s.Health != BaseHealth {
		t.Errorf("expected health %d, got %d", BaseHealth, s.Health)
	}
	if s.Atk != BaseAtk {
		t.Errorf("expected atk %d, got %d", BaseAtk, s.Atk)
	}
	if s.Def != BaseDef {
		t.Errorf("expected def %d, got %d", BaseDef, s.Def)
	}
	if s.Fate != BaseFate {
		t.Errorf("expected fate %d, got %d", BaseFate, s.Fate)
	}
	if s.Chapter != 1 {
		t.Errorf("expected chapter 1, got %d", s.Chapter)
	}
	if s.Inventory == nil || s.Flags == nil {
		t.Error("expected initialized inventory and flags")
	}
}

func TestNormalize_RepairsNils(t *testing.T) {
	s := &types.State{}
	Normalize(s)

	if s.Inventory == nil {
		t.Error("expected inventory to be repaired")
	}
	if s.Flags == nil {
		t.Error("expected flags to be repaired")
	}
	if s.Chapter != 1 {
		t.Errorf("expected chapter repaired to 1, got %d", s.Chapter)
	}
}

func TestSnapshot_Reads(t *testing.T) {
	s := New()
	s.Health = 15
	s.Fate = 42
	s.Chapter = 3
	s.Steps = 7
	s.Inventory = []string{"Rock", "Rock", "Rope"}
	s.Flags["briefed"] = true

	snap := Snap(s)

	if snap.Health() != 15 || snap.Fate() != 42 || snap.Chapter() != 3 || snap.Steps() != 7 {
		t.Errorf("snapshot reads do not match state: hp=%d fate=%d ch=%d steps=%d",
			snap.Health(), snap.Fate(), snap.Chapter(), snap.Steps())
	}
	if !snap.Flag("briefed") || snap.Flag("unknown") {
		t.Error("flag reads wrong")
	}
	if !snap.HasItem("Rope") || snap.HasItem("Lantern") {
		t.Error("item reads wrong")
	}
	if snap.CountItem("Rock") != 2 {
		t.Errorf("expected 2 Rocks, got %d", snap.CountItem("Rock"))
	}
	if snap.InBattle() {
		t.Error("expected no battle")
	}
}

func TestSnapshot_InBattle(t *testing.T) {
	s := New()
	s.Battle = &types.BattleState{Active: true}
	if !Snap(s).InBattle() {
		t.Error("expected active battle to be visible")
	}

	s.Battle.Active = false
	if Snap(s).InBattle() {
		t.Error("expected inactive battle to read false")
	}
}
