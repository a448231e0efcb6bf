// Package fate centralizes every rule around the fate meter: capped
// change kinds, band classification, midband watching, chapter
// progression, path locking, and ending preparation.
package fate

import (
	"fmt"
	"sort"

	"github.com/hyluen/fateloom/types"
)

// Fate range and band thresholds.
const (
	Min = 0
	Max = 100

	HighThreshold = 67
	LowThreshold  = 33

	MidbandMin   = 40
	MidbandMax   = 60
	MidbandLimit = 3 // consecutive midband events before an intervention fires
)

// Per-kind delta caps.
const (
	MaxNormalDelta = 10
	MaxMajorDelta  = 20
	MaxBiasDelta   = 5
)

const historyLen = 10

// Kind classifies a fate change for delta capping.
type Kind string

const (
	KindNormal Kind = "normal"
	KindMajor  Kind = "major"
	KindBias   Kind = "bias"
)

// Change is a single capped fate adjustment with its narrative reason.
type Change struct {
	Value  int
	Reason string
	Kind   Kind
}

// Event ids injected by the progression rules. Content that wants these
// hooks provides events with these ids.
var (
	LockEvents = map[string]string{
		"high": "fate_lock_high",
		"mid":  "fate_lock_mid",
		"low":  "fate_lock_low",
	}
	EndingEvents = map[string]string{
		"high": "fate_ending_high",
		"mid":  "fate_ending_mid",
		"low":  "fate_ending_low",
	}
)

// SelfDoubtEvent fires after two consecutive refusals.
const SelfDoubtEvent = "fate_trigger_self_doubt"

// ChapterThresholds maps chapter number to the step count that unlocks it.
var ChapterThresholds = map[int]int{
	2: 3,
	3: 6,
	4: 9,
	5: 12,
}

// Clamp restricts a fate value to the inclusive [Min, Max] range.
func Clamp(v int) int {
	if v < Min {
		return Min
	}
	if v > Max {
		return Max
	}
	return v
}

// Band classifies a fate value as "high", "mid", or "low".
func Band(v int) string {
	if v >= HighThreshold {
		return "high"
	}
	if v <= LowThreshold {
		return "low"
	}
	return "mid"
}

// InMidband reports whether a fate value sits in the neutral band.
func InMidband(v int) bool {
	return v >= MidbandMin && v <= MidbandMax
}

func limitDelta(delta int, kind Kind) int {
	limit := MaxNormalDelta
	switch kind {
	case KindMajor:
		limit = MaxMajorDelta
	case KindBias:
		limit = MaxBiasDelta
	}
	if delta > limit {
		return limit
	}
	if delta < -limit {
		return -limit
	}
	return delta
}

// Apply applies a capped, clamped fate change, records history, and
// returns the delta actually applied plus journal lines.
func Apply(s *types.State, ch Change) (applied int, log []string) {
	limited := limitDelta(ch.Value, ch.Kind)
	if limited != ch.Value {
		log = append(log, "The swing of fate is held back by some unseen force.")
	}
	if limited == 0 {
		return 0, log
	}

	old := s.Fate
	s.Fate = Clamp(old + limited)
	Record(s)

	log = append(log, fmt.Sprintf("Fate %d → %d", old, s.Fate))
	return s.Fate - old, log
}

// Record appends the current fate value to the rolling history used by the
// chapter-3 averaging bias. Only the last 10 values are kept.
func Record(s *types.State) {
	s.FateHistory = append(s.FateHistory, s.Fate)
	if len(s.FateHistory) > historyLen {
		s.FateHistory = s.FateHistory[len(s.FateHistory)-historyLen:]
	}
}

// TickMidband updates the consecutive-midband counter and returns it.
func TickMidband(s *types.State) int {
	if InMidband(s.Fate) {
		s.MidbandStreak++
	} else {
		s.MidbandStreak = 0
	}
	return s.MidbandStreak
}

// nudgeToward gently pulls fate toward a band's center, capped as a bias.
func nudgeToward(s *types.State, band, reason string) []string {
	target := map[string]int{"high": 75, "mid": 50, "low": 25}[band]
	delta := target - s.Fate
	if delta > MaxBiasDelta {
		delta = MaxBiasDelta
	} else if delta < -MaxBiasDelta {
		delta = -MaxBiasDelta
	}
	if delta == 0 {
		return nil
	}
	_, log := Apply(s, Change{Value: delta, Reason: reason, Kind: KindBias})
	return log
}

// advanceChapter raises the chapter when step thresholds are reached.
func advanceChapter(s *types.State) (int, []string) {
	chapters := make([]int, 0, len(ChapterThresholds))
	for ch := range ChapterThresholds {
		chapters = append(chapters, ch)
	}
	sort.Ints(chapters)

	next := s.Chapter
	for _, ch := range chapters {
		if s.Steps >= ChapterThresholds[ch] && ch > next {
			next = ch
		}
	}
	if next == s.Chapter {
		return 0, nil
	}
	s.Chapter = next
	return next, []string{fmt.Sprintf("Chapter %d begins. The weight of fate grows heavier.", next)}
}

// chapterBias applies the automatic per-chapter fate drift. Skipped when
// the event already changed fate, so a single event never moves the meter
// twice.
func chapterBias(s *types.State) []string {
	switch s.Chapter {
	case 2:
		// Without extreme choices, pull fate back toward neutral.
		switch Band(s.Fate) {
		case "high":
			return nudgeToward(s, "mid", "chapter 2 calibration")
		case "low":
			return nudgeToward(s, "mid", "chapter 2 calibration")
		}
	case 3:
		if len(s.FateHistory) == 0 {
			return nil
		}
		sum := 0
		for _, v := range s.FateHistory {
			sum += v
		}
		avg := float64(sum) / float64(len(s.FateHistory))
		switch {
		case avg >= 55:
			return nudgeToward(s, "high", "chapter 3 drift")
		case avg <= 45:
			return nudgeToward(s, "low", "chapter 3 drift")
		default:
			return nudgeToward(s, "mid", "chapter 3 drift")
		}
	}
	return nil
}

// maybeLockPath locks the main route to the current band at chapter 4.
// Returns the lock event id once, on the turn the lock engages.
func maybeLockPath(s *types.State) (string, []string) {
	if s.Chapter < 4 || s.PathLocked {
		return "", nil
	}
	band := Band(s.Fate)
	s.PathLocked = true
	s.LockedBand = band
	return LockEvents[band], []string{"Fate has seized your direction. The main route is sealed."}
}

// maybePrepareEnding queues the ending event at chapter 5, once.
func maybePrepareEnding(s *types.State) (string, []string) {
	if s.Chapter < 5 || s.EndingReady {
		return "", nil
	}
	band := s.LockedBand
	if band == "" {
		band = Band(s.Fate)
	}
	s.EndingReady = true
	return EndingEvents[band], []string{"The shadow of the ending surfaces. There is no turning back."}
}

// PostEvent runs the end-of-event progression: step count, chapter
// advancement, automatic bias (unless the event already changed fate),
// path locking, and ending preparation. Returns a forced event id if the
// story must branch immediately.
func PostEvent(s *types.State, fateChanged bool) (forced string, log []string) {
	s.Steps++

	_, chapterLog := advanceChapter(s)
	log = append(log, chapterLog...)

	if !fateChanged {
		log = append(log, chapterBias(s)...)
	}

	if id, lockLog := maybeLockPath(s); id != "" {
		return id, append(log, lockLog...)
	}
	id, endLog := maybePrepareEnding(s)
	return id, append(log, endLog...)
}

// HandleRefusal tracks consecutive refusals. Two in a row force the
// self-doubt intervention.
func HandleRefusal(s *types.State) (forced string, log []string) {
	s.RefusalStreak++
	if s.RefusalStreak >= 2 {
		s.RefusalStreak = 0
		return SelfDoubtEvent, []string{"Your repeated refusals make fate question your existence."}
	}
	return "", nil
}

// ResetRefusal clears the refusal streak after a non-refusal choice.
func ResetRefusal(s *types.State) {
	s.RefusalStreak = 0
}
