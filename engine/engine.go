// Package engine provides the session loop that wires the selector,
// effect resolver, battle system, and fate progression into turns.
package engine

import (
	"errors"
	"fmt"

	"github.com/hyluen/fateloom/engine/battle"
	"github.com/hyluen/fateloom/engine/catalog"
	"github.com/hyluen/fateloom/engine/effects"
	"github.com/hyluen/fateloom/engine/fate"
	"github.com/hyluen/fateloom/engine/selector"
	"github.com/hyluen/fateloom/engine/state"
	"github.com/hyluen/fateloom/types"
)

// GameOverFlag is raised on the player state when the session ends.
const GameOverFlag = "game_over"

// InvalidChoiceError reports an option index outside [0, optionCount).
type InvalidChoiceError struct {
	Index int
	Count int
}

func (e *InvalidChoiceError) Error() string {
	return fmt.Sprintf("choice %d out of range: event has %d option(s)", e.Index, e.Count)
}

// ErrNoActiveEvent is returned by Choose when no event is being presented.
var ErrNoActiveEvent = errors.New("no active event: call Advance first")

// Result is the output of one resolved choice.
type Result struct {
	Outcome types.Outcome
	Battle  *battle.Result // set when the choice ran a battle round
	Log     []string       // journal lines produced by this choice
	// EventDone is false while a battle event is still running and the
	// same event must be presented again for the next round.
	EventDone bool
}

// Session drives one playthrough. It owns its player state and RNG;
// the catalog is shared read-only with other sessions.
type Session struct {
	catalog *catalog.Catalog
	state   *types.State
	rng     *RNG

	current *types.Event

	// Content hooks.
	introEvent   string // presented first, until introFlag is raised by content
	introFlag    string
	midbandEvent string // forced after a midband fate streak
}

// SessionOption configures a session at creation.
type SessionOption func(*Session)

// WithIntro presents the given event before any random draw until content
// raises flag (typically from the intro's own option effects).
func WithIntro(eventID, flag string) SessionOption {
	return func(s *Session) {
		s.introEvent = eventID
		s.introFlag = flag
	}
}

// WithMidbandEvent forces the given event when fate lingers in the neutral
// band for too many consecutive events.
func WithMidbandEvent(eventID string) SessionOption {
	return func(s *Session) {
		s.midbandEvent = eventID
	}
}

// NewSession creates a session with a fresh player state and a seeded RNG.
func NewSession(cat *catalog.Catalog, seed int64, opts ...SessionOption) *Session {
	st := state.New()
	st.RNGSeed = seed
	s := &Session{
		catalog: cat,
		state:   st,
		rng:     NewRNG(seed),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ResumeSession creates a session around a previously saved state. The RNG
// is restored to the recorded seed and position so the draw stream
// continues exactly where it stopped.
func ResumeSession(cat *catalog.Catalog, st *types.State, opts ...SessionOption) *Session {
	state.Normalize(st)
	s := &Session{
		catalog: cat,
		state:   st,
		rng:     RestoreRNG(st.RNGSeed, st.RNGPosition),
	}
	for _, opt := range opts {
		opt(s)
	}
	// A save taken mid-battle resumes on the battle's own event; starting
	// it over would reset the enemy and consume an extra draw.
	if battle.Active(st) {
		if ev, err := cat.Lookup(st.Battle.EventID); err == nil {
			s.current = &ev
		} else {
			// The event is gone from the content; the fight cannot continue.
			battle.Clear(st)
		}
	}
	return s
}

// State exposes the session's player state for saving and display.
// Mutation belongs to the effect resolver only.
func (s *Session) State() *types.State {
	return s.state
}

// Over reports whether the session has ended.
func (s *Session) Over() bool {
	return s.state.Flags[GameOverFlag]
}

// Current returns the event being presented, if any.
func (s *Session) Current() (types.Event, bool) {
	if s.current == nil {
		return types.Event{}, false
	}
	return *s.current, true
}

// OptionTexts returns the display texts of the current event's options.
func (s *Session) OptionTexts() []string {
	if s.current == nil {
		return nil
	}
	texts := make([]string, len(s.current.Options))
	for i, opt := range s.current.Options {
		texts[i] = opt.Text
	}
	return texts
}

// Advance picks the next event and makes it current. Precedence: the intro
// hook, a queued forced event, the midband intervention, then a weighted
// random draw over the eligible set. Battle events initialize their battle
// state here; the returned log carries the opening lines.
func (s *Session) Advance() (types.Event, []string, error) {
	if s.Over() {
		return types.Event{}, nil, errors.New("session is over")
	}
	if s.current != nil && battle.Active(s.state) {
		// A battle round is still pending on the current event.
		return *s.current, nil, nil
	}

	ev, log, err := s.pickNext()
	if err != nil {
		return types.Event{}, nil, err
	}

	if ev.Type == types.EventBattle {
		log = append(log, battle.Start(s.state, ev)...)
	}

	s.current = &ev
	return ev, log, nil
}

func (s *Session) pickNext() (types.Event, []string, error) {
	// Intro hook: until content raises the intro flag, the briefing
	// preempts everything.
	if s.introEvent != "" && !s.state.Flags[s.introFlag] {
		if ev, err := s.catalog.Lookup(s.introEvent); err == nil {
			return ev, nil, nil
		}
	}

	// Queued forced event, consumed exactly once.
	if id := s.state.ForcedEvent; id != "" {
		s.state.ForcedEvent = ""
		if ev, err := s.catalog.Lookup(id); err == nil {
			return ev, nil, nil
		}
		// Missing forced event degrades to a normal draw.
	}

	// Midband watcher: too long in the neutral band forces a decision.
	if streak := fate.TickMidband(s.state); streak >= fate.MidbandLimit && s.midbandEvent != "" {
		if ev, err := s.catalog.Lookup(s.midbandEvent); err == nil {
			s.state.MidbandStreak = 0
			return ev, []string{"Fate refuses to stay neutral. Something intervenes."}, nil
		}
	}

	ev, err := selector.Next(s.catalog, state.Snap(s.state), s.rng)
	if err != nil {
		return types.Event{}, nil, err
	}
	s.state.RNGPosition = s.rng.Position()
	return ev, nil, nil
}

// Choose resolves the player's option index against the current event.
// It fails with *InvalidChoiceError when the index is out of range; player
// state is untouched on failure.
func (s *Session) Choose(index int) (Result, error) {
	if s.current == nil {
		return Result{}, ErrNoActiveEvent
	}
	if index < 0 || index >= len(s.current.Options) {
		return Result{}, &InvalidChoiceError{Index: index, Count: len(s.current.Options)}
	}

	opt := s.current.Options[index]
	var res Result

	if battle.Active(s.state) && opt.BattleAction != "" {
		res = s.resolveBattleRound(opt)
	} else {
		res = s.resolveChoice(opt)
	}

	s.state.RNGPosition = s.rng.Position()
	s.state.TurnCount++

	if res.Outcome.Defeated {
		s.state.Flags[GameOverFlag] = true
		battle.Clear(s.state)
		res.Log = append(res.Log, "Your wounds prove fatal. The diary ends here.")
		res.EventDone = true
	}

	if res.EventDone {
		s.current = nil
	}
	return res, nil
}

// Acknowledge completes a terminal (zero-option) event: the text has been
// shown, there is nothing to branch on, and the session moves on. It fails
// when the current event has options to choose from.
func (s *Session) Acknowledge() (Result, error) {
	if s.current == nil {
		return Result{}, ErrNoActiveEvent
	}
	if len(s.current.Options) > 0 {
		return Result{}, &InvalidChoiceError{Index: -1, Count: len(s.current.Options)}
	}

	var res Result
	res.EventDone = true
	fate.ResetRefusal(s.state)
	s.runPostEvent(&res)

	s.state.RNGPosition = s.rng.Position()
	s.state.TurnCount++
	s.current = nil
	return res, nil
}

// resolveChoice applies a plain option: effect, refusal tracking, and
// end-of-event fate progression.
func (s *Session) resolveChoice(opt types.Option) Result {
	out := effects.Apply(s.state, opt.Effect)
	res := Result{Outcome: out, Log: out.Log, EventDone: true}
	if out.Defeated {
		return res
	}

	if opt.Refuse {
		if forced, log := fate.HandleRefusal(s.state); forced != "" {
			res.Log = append(res.Log, log...)
			if s.state.ForcedEvent == "" {
				s.state.ForcedEvent = forced
			}
		}
	} else {
		fate.ResetRefusal(s.state)
	}

	s.runPostEvent(&res)
	return res
}

// resolveBattleRound runs one battle round and routes player damage back
// through the effect resolver.
func (s *Session) resolveBattleRound(opt types.Option) Result {
	br := battle.Perform(s.state, opt.BattleAction, s.rng)
	res := Result{Battle: &br, Log: br.Messages}

	if br.PlayerDamage > 0 {
		out := effects.Apply(s.state, types.Effect{HPChange: -br.PlayerDamage})
		res.Outcome = out
		res.Log = append(res.Log, out.Log...)
		if out.Defeated {
			res.EventDone = true
			return res
		}
	}

	if !br.Over {
		// Same event continues into the next round.
		return res
	}

	if br.Victory && opt.VictoryEffect != nil {
		out := effects.Apply(s.state, *opt.VictoryEffect)
		res.Outcome = mergeOutcomes(res.Outcome, out)
		res.Log = append(res.Log, out.Log...)
	}
	if br.Escaped && opt.EscapeEffect != nil {
		out := effects.Apply(s.state, *opt.EscapeEffect)
		res.Outcome = mergeOutcomes(res.Outcome, out)
		res.Log = append(res.Log, out.Log...)
	}
	battle.Clear(s.state)
	res.EventDone = true

	if !res.Outcome.Defeated {
		s.runPostEvent(&res)
	}
	return res
}

func (s *Session) runPostEvent(res *Result) {
	forced, log := fate.PostEvent(s.state, res.Outcome.FateDelta != 0)
	res.Log = append(res.Log, log...)
	if forced != "" && s.state.ForcedEvent == "" && s.catalog.Has(forced) {
		s.state.ForcedEvent = forced
	}
}

// mergeOutcomes folds a follow-up outcome into an earlier one. Later
// values win for overwrite-style fields.
func mergeOutcomes(a, b types.Outcome) types.Outcome {
	a.Defeated = a.Defeated || b.Defeated
	a.HPDelta += b.HPDelta
	a.FateDelta += b.FateDelta
	a.AtkDelta += b.AtkDelta
	a.DefDelta += b.DefDelta
	a.ItemsAdded = append(a.ItemsAdded, b.ItemsAdded...)
	a.ItemsRemoved = append(a.ItemsRemoved, b.ItemsRemoved...)
	if len(b.FlagsSet) > 0 {
		if a.FlagsSet == nil {
			a.FlagsSet = map[string]bool{}
		}
		for k, v := range b.FlagsSet {
			a.FlagsSet[k] = v
		}
	}
	if b.ChapterSet != 0 {
		a.ChapterSet = b.ChapterSet
	}
	if b.ForcedEvent != "" {
		a.ForcedEvent = b.ForcedEvent
	}
	a.Log = append(a.Log, b.Log...)
	return a
}
