package types

import (
	"encoding/json"
	"fmt"
)

// stringOrList decodes a JSON value that is either a single string or an
// array of strings. Content authors use both forms interchangeably.
func stringOrList(data json.RawMessage) ([]string, error) {
	var one string
	if err := json.Unmarshal(data, &one); err == nil {
		return []string{one}, nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return nil, fmt.Errorf("expected string or list of strings: %w", err)
	}
	return many, nil
}

// UnmarshalJSON decodes an effect mapping. Recognized keys are dispatched
// explicitly; everything else lands in Unknown untouched.
func (e *Effect) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	for key, val := range raw {
		var err error
		known := true
		switch key {
		case "hp_change":
			err = json.Unmarshal(val, &e.HPChange)
		case "fate":
			err = json.Unmarshal(val, &e.Fate)
		case "fate_major":
			err = json.Unmarshal(val, &e.FateMajor)
		case "fate_bias":
			err = json.Unmarshal(val, &e.FateBias)
		case "atk":
			err = json.Unmarshal(val, &e.Atk)
		case "def":
			err = json.Unmarshal(val, &e.Def)
		case "inventory_add":
			e.InventoryAdd, err = stringOrList(val)
		case "inventory_remove":
			e.InventoryRemove, err = stringOrList(val)
		case "flag_set":
			err = json.Unmarshal(val, &e.FlagSet)
		case "goto_chapter":
			err = json.Unmarshal(val, &e.GotoChapter)
		case "emit_log":
			e.EmitLog, err = stringOrList(val)
		case "forced_event":
			err = json.Unmarshal(val, &e.ForcedEvent)
		default:
			known = false
			if e.Unknown == nil {
				e.Unknown = map[string]json.RawMessage{}
			}
			e.Unknown[key] = val
		}
		if err != nil {
			return fmt.Errorf("effect key %q: %w", key, err)
		}
		if known {
			if e.present == nil {
				e.present = map[string]bool{}
			}
			e.present[key] = true
		}
	}
	return nil
}

// MarshalJSON re-emits the effect, including preserved unknown keys.
// Recognized keys are emitted when non-zero or when the source authored
// them explicitly, zero values included.
func (e Effect) MarshalJSON() ([]byte, error) {
	out := map[string]any{}
	if e.HPChange != 0 || e.present["hp_change"] {
		out["hp_change"] = e.HPChange
	}
	if e.Fate != 0 || e.present["fate"] {
		out["fate"] = e.Fate
	}
	if e.FateMajor != 0 || e.present["fate_major"] {
		out["fate_major"] = e.FateMajor
	}
	if e.FateBias != 0 || e.present["fate_bias"] {
		out["fate_bias"] = e.FateBias
	}
	if e.Atk != 0 || e.present["atk"] {
		out["atk"] = e.Atk
	}
	if e.Def != 0 || e.present["def"] {
		out["def"] = e.Def
	}
	if len(e.InventoryAdd) > 0 || e.present["inventory_add"] {
		out["inventory_add"] = e.InventoryAdd
	}
	if len(e.InventoryRemove) > 0 || e.present["inventory_remove"] {
		out["inventory_remove"] = e.InventoryRemove
	}
	if len(e.FlagSet) > 0 || e.present["flag_set"] {
		out["flag_set"] = e.FlagSet
	}
	if e.GotoChapter != 0 || e.present["goto_chapter"] {
		out["goto_chapter"] = e.GotoChapter
	}
	if len(e.EmitLog) > 0 || e.present["emit_log"] {
		out["emit_log"] = e.EmitLog
	}
	if e.ForcedEvent != "" || e.present["forced_event"] {
		out["forced_event"] = e.ForcedEvent
	}
	for k, v := range e.Unknown {
		out[k] = v
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes a condition mapping with the same explicit-dispatch,
// preserve-unknown policy as Effect.
func (c *Condition) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	intKey := func(val json.RawMessage) (*int, error) {
		n := new(int)
		if err := json.Unmarshal(val, n); err != nil {
			return nil, err
		}
		return n, nil
	}
	for key, val := range raw {
		var err error
		switch key {
		case "fate_min":
			c.FateMin, err = intKey(val)
		case "fate_max":
			c.FateMax, err = intKey(val)
		case "hp_min":
			c.HPMin, err = intKey(val)
		case "hp_max":
			c.HPMax, err = intKey(val)
		case "chapter_is":
			c.ChapterIs, err = intKey(val)
		case "chapter_min":
			c.ChapterMin, err = intKey(val)
		case "chapter_max":
			c.ChapterMax, err = intKey(val)
		case "has_item":
			c.HasItem, err = stringOrList(val)
		case "lacks_item":
			c.LacksItem, err = stringOrList(val)
		case "flag_true":
			c.FlagTrue, err = stringOrList(val)
		case "flag_false":
			c.FlagFalse, err = stringOrList(val)
		default:
			if c.Unknown == nil {
				c.Unknown = map[string]json.RawMessage{}
			}
			c.Unknown[key] = val
		}
		if err != nil {
			return fmt.Errorf("condition key %q: %w", key, err)
		}
	}
	return nil
}

// MarshalJSON re-emits the condition, including preserved unknown keys.
func (c Condition) MarshalJSON() ([]byte, error) {
	out := map[string]any{}
	if c.FateMin != nil {
		out["fate_min"] = *c.FateMin
	}
	if c.FateMax != nil {
		out["fate_max"] = *c.FateMax
	}
	if c.HPMin != nil {
		out["hp_min"] = *c.HPMin
	}
	if c.HPMax != nil {
		out["hp_max"] = *c.HPMax
	}
	if c.ChapterIs != nil {
		out["chapter_is"] = *c.ChapterIs
	}
	if c.ChapterMin != nil {
		out["chapter_min"] = *c.ChapterMin
	}
	if c.ChapterMax != nil {
		out["chapter_max"] = *c.ChapterMax
	}
	if len(c.HasItem) > 0 {
		out["has_item"] = c.HasItem
	}
	if len(c.LacksItem) > 0 {
		out["lacks_item"] = c.LacksItem
	}
	if len(c.FlagTrue) > 0 {
		out["flag_true"] = c.FlagTrue
	}
	if len(c.FlagFalse) > 0 {
		out["flag_false"] = c.FlagFalse
	}
	for k, v := range c.Unknown {
		out[k] = v
	}
	return json.Marshal(out)
}
