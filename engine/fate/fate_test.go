package fate

import (
	"testing"

	"github.com/hyluen/fateloom/engine/state"
)

func TestClamp(t *testing.T) {
	tests := []struct {
		in, want int
	}{
		{-10, 0},
		{0, 0},
		{50, 50},
		{100, 100},
		{140, 100},
	}
	for _, tt := range tests {
		if got := Clamp(tt.in); got != tt.want {
			t.Errorf("Clamp(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestBand(t *testing.T) {
	tests := []struct {
		v    int
		want string
	}{
		{0, "low"},
		{33, "low"},
		{34, "mid"},
		{50, "mid"},
		{66, "mid"},
		{67, "high"},
		{100, "high"},
	}
	for _, tt := range tests {
		if got := Band(tt.v); got != tt.want {
			t.Errorf("Band(%d) = %q, want %q", tt.v, got, tt.want)
		}
	}
}

func TestInMidband(t *testing.T) {
	tests := []struct {
		v    int
		want bool
	}{
		{39, false},
		{40, true},
		{50, true},
		{60, true},
		{61, false},
	}
	for _, tt := range tests {
		if got := InMidband(tt.v); got != tt.want {
			t.Errorf("InMidband(%d) = %v, want %v", tt.v, got, tt.want)
		}
	}
}

func TestApply_CapsPerKind(t *testing.T) {
	tests := []struct {
		name  string
		kind  Kind
		value int
		want  int // applied delta from fate 50
	}{
		{"normal within cap", KindNormal, 8, 8},
		{"normal over cap", KindNormal, 15, 10},
		{"normal negative over cap", KindNormal, -15, -10},
		{"major within cap", KindMajor, 15, 15},
		{"major over cap", KindMajor, 30, 20},
		{"bias over cap", KindBias, 9, 5},
		{"bias negative over cap", KindBias, -9, -5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := state.New()
			s.Fate = 50
			applied, _ := Apply(s, Change{Value: tt.value, Kind: tt.kind})
			if applied != tt.want {
				t.Errorf("applied = %d, want %d", applied, tt.want)
			}
			if s.Fate != 50+tt.want {
				t.Errorf("fate = %d, want %d", s.Fate, 50+tt.want)
			}
		})
	}
}

func TestApply_ClampsAtBounds(t *testing.T) {
	s := state.New()
	s.Fate = 98
	applied, _ := Apply(s, Change{Value: 10, Kind: KindNormal})
	if s.Fate != Max || applied != 2 {
		t.Errorf("expected clamp to %d with applied 2, got fate %d applied %d", Max, s.Fate, applied)
	}

	s.Fate = 3
	applied, _ = Apply(s, Change{Value: -10, Kind: KindNormal})
	if s.Fate != Min || applied != -3 {
		t.Errorf("expected clamp to %d with applied -3, got fate %d applied %d", Min, s.Fate, applied)
	}
}

func TestApply_ZeroAfterCapIsNoop(t *testing.T) {
	s := state.New()
	s.Fate = 50
	applied, _ := Apply(s, Change{Value: 0, Kind: KindNormal})
	if applied != 0 || len(s.FateHistory) != 0 {
		t.Errorf("zero change should not record history, got applied %d history %v", applied, s.FateHistory)
	}
}

func TestRecord_KeepsLastTen(t *testing.T) {
	s := state.New()
	for i := 1; i <= 15; i++ {
		s.Fate = i
		Record(s)
	}
	if len(s.FateHistory) != 10 {
		t.Fatalf("expected history of 10, got %d", len(s.FateHistory))
	}
	if s.FateHistory[0] != 6 || s.FateHistory[9] != 15 {
		t.Errorf("expected history [6..15], got %v", s.FateHistory)
	}
}

func TestTickMidband(t *testing.T) {
	s := state.New()
	s.Fate = 50

	for i := 1; i <= 3; i++ {
		if got := TickMidband(s); got != i {
			t.Errorf("tick %d: streak = %d", i, got)
		}
	}

	s.Fate = 80
	if got := TickMidband(s); got != 0 {
		t.Errorf("expected streak reset outside midband, got %d", got)
	}
}

func TestPostEvent_ChapterAdvance(t *testing.T) {
	s := state.New()

	// Steps 1 and 2 stay in chapter 1; step 3 unlocks chapter 2.
	PostEvent(s, false)
	PostEvent(s, false)
	if s.Chapter != 1 {
		t.Fatalf("expected chapter 1 at step 2, got %d", s.Chapter)
	}

	_, log := PostEvent(s, false)
	if s.Chapter != 2 {
		t.Fatalf("expected chapter 2 at step 3, got %d", s.Chapter)
	}
	if len(log) == 0 {
		t.Error("expected a chapter announcement")
	}
}

func TestPostEvent_ChapterBiasSkippedWhenFateChanged(t *testing.T) {
	s := state.New()
	s.Chapter = 2
	s.Steps = 3
	s.Fate = 80 // high band, chapter 2 pulls toward mid

	before := s.Fate
	PostEvent(s, true)
	if s.Fate != before {
		t.Errorf("bias should be skipped when the event changed fate, got %d", s.Fate)
	}

	PostEvent(s, false)
	if s.Fate != before-MaxBiasDelta {
		t.Errorf("expected bias pull of %d toward mid, got fate %d", MaxBiasDelta, s.Fate)
	}
}

func TestPostEvent_Chapter3Drift(t *testing.T) {
	s := state.New()
	s.Chapter = 3
	s.Steps = 6
	s.Fate = 60
	s.FateHistory = []int{60, 62, 58} // avg >= 55 drifts high

	PostEvent(s, false)
	if s.Fate != 65 {
		t.Errorf("expected drift toward high (65), got %d", s.Fate)
	}
}

func TestPostEvent_PathLockAtChapter4(t *testing.T) {
	s := state.New()
	s.Chapter = 4
	s.Steps = 9
	s.Fate = 80

	forced, _ := PostEvent(s, true)
	if forced != LockEvents["high"] {
		t.Errorf("expected lock event %q, got %q", LockEvents["high"], forced)
	}
	if !s.PathLocked || s.LockedBand != "high" {
		t.Errorf("expected locked high path, got locked=%v band=%q", s.PathLocked, s.LockedBand)
	}

	// The lock fires only once.
	forced, _ = PostEvent(s, true)
	if forced != "" {
		t.Errorf("expected no repeat lock, got %q", forced)
	}
}

func TestPostEvent_EndingUsesLockedBand(t *testing.T) {
	s := state.New()
	s.Chapter = 5
	s.Steps = 12
	s.Fate = 10 // current band low, but the locked band wins
	s.PathLocked = true
	s.LockedBand = "high"

	forced, _ := PostEvent(s, true)
	if forced != EndingEvents["high"] {
		t.Errorf("expected ending event %q, got %q", EndingEvents["high"], forced)
	}
	if !s.EndingReady {
		t.Error("expected ending marked ready")
	}
}

func TestHandleRefusal(t *testing.T) {
	s := state.New()

	forced, _ := HandleRefusal(s)
	if forced != "" || s.RefusalStreak != 1 {
		t.Errorf("first refusal: forced=%q streak=%d", forced, s.RefusalStreak)
	}

	forced, log := HandleRefusal(s)
	if forced != SelfDoubtEvent {
		t.Errorf("second refusal should force %q, got %q", SelfDoubtEvent, forced)
	}
	if s.RefusalStreak != 0 {
		t.Errorf("expected streak reset, got %d", s.RefusalStreak)
	}
	if len(log) == 0 {
		t.Error("expected a narrative line")
	}
}

func TestResetRefusal(t *testing.T) {
	s := state.New()
	HandleRefusal(s)
	ResetRefusal(s)
	if s.RefusalStreak != 0 {
		t.Errorf("expected streak 0, got %d", s.RefusalStreak)
	}

	// After a reset, the next refusal starts over.
	forced, _ := HandleRefusal(s)
	if forced != "" {
		t.Errorf("expected no forced event after reset, got %q", forced)
	}
}
