// Package save implements JSON serialization and deserialization of
// player state. The record shape mirrors the state fields exactly; where
// the record ends up (a file, the slot store) is the caller's concern.
package save

import (
	"encoding/json"

	"github.com/hyluen/fateloom/engine/state"
	"github.com/hyluen/fateloom/types"
)

// Version identifies the save record layout.
const Version = "1"

// Record is the JSON-serializable save format.
type Record struct {
	Version string      `json:"version"`
	State   types.State `json:"state"`
}

// Serialize encodes player state to an indented JSON record.
func Serialize(s *types.State) ([]byte, error) {
	rec := Record{
		Version: Version,
		State:   *s,
	}
	return json.MarshalIndent(rec, "", "  ")
}

// Deserialize decodes a JSON record into player state. Nil maps and
// slices are repaired so a loaded state behaves like a fresh one.
func Deserialize(data []byte) (*types.State, error) {
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, err
	}
	s := rec.State
	state.Normalize(&s)
	return &s, nil
}
