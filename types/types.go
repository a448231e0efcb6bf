// Package types defines the shared data structures for the Fateloom engine
// and their JSON codecs. No engine logic lives here.
package types

import "encoding/json"

// EventType classifies an authored event.
type EventType string

const (
	EventNormal      EventType = "normal"
	EventBattle      EventType = "battle"
	EventDialogue    EventType = "dialogue"
	EventConditional EventType = "conditional"
)

// Event is a single authored narrative unit. Events are immutable after
// catalog construction.
type Event struct {
	ID      string    `json:"id"`
	Type    EventType `json:"type"`
	Text    string    `json:"text"`
	Chapter int       `json:"chapter,omitempty"` // eligible only when player chapter >= this; 0 = any
	Weight  int       `json:"weight,omitempty"`  // selection weight; values below 1 count as 1

	// Condition is present if and only if Type == EventConditional.
	Condition *Condition `json:"condition,omitempty"`

	// Enemy is set on battle events.
	Enemy *Enemy `json:"enemy,omitempty"`

	// Options in authoring order. An event with zero options is
	// terminal/read-only: text is shown, nothing branches.
	Options []Option `json:"options"`
}

// Option is a player-facing choice within an event.
type Option struct {
	Text   string `json:"text"`
	Effect Effect `json:"effect"`

	// Refuse marks the option as a refusal for the fate system's
	// self-doubt tracking.
	Refuse bool `json:"refuse,omitempty"`

	// Battle-event extras.
	BattleAction  string  `json:"battle_action,omitempty"` // "attack", "defend", "escape"
	VictoryEffect *Effect `json:"victory_effect,omitempty"`
	EscapeEffect  *Effect `json:"escape_effect,omitempty"`
}

// Enemy is the authored definition of a battle opponent.
type Enemy struct {
	Name string `json:"name"`
	HP   int    `json:"hp"`
	Atk  int    `json:"atk"`
	Def  int    `json:"def"`
}

// Effect is a declarative set of state deltas applied when an option is
// chosen. Numeric keys are additive; flag_set overwrites per key.
// Authored data round-trips losslessly: unrecognized keys are kept
// verbatim in Unknown, and recognized keys re-emit even when authored
// with a zero value.
type Effect struct {
	HPChange  int
	Fate      int // plain additive, uncapped
	FateMajor int // capped major-choice fate adjustment
	FateBias  int // capped bias nudge
	Atk       int
	Def       int

	InventoryAdd    []string
	InventoryRemove []string
	FlagSet         map[string]bool

	GotoChapter int      // 0 = no chapter jump
	EmitLog     []string // extra journal lines
	ForcedEvent string   // event id to present next

	Unknown map[string]json.RawMessage

	// present records which recognized keys appeared in the source, so a
	// zero-valued key is not confused with an absent one on re-emit.
	present map[string]bool
}

// Condition is a declarative predicate gating a conditional event.
// All present keys must hold (AND). Unrecognized keys evaluate true.
type Condition struct {
	FateMin *int
	FateMax *int
	HPMin   *int
	HPMax   *int

	ChapterIs  *int
	ChapterMin *int
	ChapterMax *int

	HasItem   []string
	LacksItem []string
	FlagTrue  []string
	FlagFalse []string

	Unknown map[string]json.RawMessage
}

// State is the complete mutable player state. It is owned by exactly one
// session; the effect resolver is its only writer.
type State struct {
	Health int `json:"health"`
	Fate   int `json:"fate"`
	Atk    int `json:"atk"`
	Def    int `json:"def"`

	Chapter int `json:"chapter"`
	Steps   int `json:"steps"`

	Inventory []string        `json:"inventory"` // multiset: duplicates allowed
	Flags     map[string]bool `json:"flags"`

	// Fate-system bookkeeping.
	FateHistory   []int  `json:"fate_history,omitempty"` // last 10 fate values
	MidbandStreak int    `json:"midband_streak,omitempty"`
	RefusalStreak int    `json:"refusal_streak,omitempty"`
	PathLocked    bool   `json:"path_locked,omitempty"`
	LockedBand    string `json:"locked_band,omitempty"`
	EndingReady   bool   `json:"ending_ready,omitempty"`

	ForcedEvent string `json:"forced_event,omitempty"` // id queued to preempt the next draw
	TurnCount   int    `json:"turn_count"`

	RNGSeed     int64 `json:"rng_seed"`
	RNGPosition int64 `json:"rng_position"`

	Battle *BattleState `json:"battle,omitempty"`
}

// BattleState is the runtime state of an active battle.
type BattleState struct {
	EventID string `json:"event_id"`
	Enemy   Enemy  `json:"enemy"` // HP mutates during the fight
	MaxHP   int    `json:"max_hp"`
	Active  bool   `json:"active"`
	Victory bool   `json:"victory"`
	Escaped bool   `json:"escaped"`
}

// Outcome summarizes what a resolved effect actually changed.
type Outcome struct {
	Defeated bool // health reached zero

	HPDelta   int
	FateDelta int
	AtkDelta  int
	DefDelta  int

	ItemsAdded   []string
	ItemsRemoved []string
	FlagsSet     map[string]bool
	ChapterSet   int // 0 = unchanged

	ForcedEvent string
	Log         []string
}
