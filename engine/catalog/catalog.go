// Package catalog builds the immutable in-memory index of authored events.
// A catalog is constructed once per data source and may be shared read-only
// across concurrent sessions without locking.
package catalog

import (
	"fmt"
	"strings"

	"github.com/hyluen/fateloom/types"
)

// SchemaError collects every schema problem found in a raw event list.
// A SchemaError is fatal to that load, not to the process: the caller may
// reject the data source and fall back to another catalog.
type SchemaError struct {
	Problems []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("event data failed validation with %d problem(s):\n  %s",
		len(e.Problems), strings.Join(e.Problems, "\n  "))
}

// NotFoundError reports a lookup miss.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("event %q not found", e.ID)
}

var eventTypes = map[types.EventType]bool{
	types.EventNormal:      true,
	types.EventBattle:      true,
	types.EventDialogue:    true,
	types.EventConditional: true,
}

// Catalog is the read-only index of all authored events.
type Catalog struct {
	events []types.Event
	byID   map[string]int
}

// Load validates raw event records and builds a catalog. It fails with a
// *SchemaError when an id is duplicated or missing, a type is not one of
// the four recognized values, a conditional event is missing its condition,
// a non-conditional event carries one, or a battle event has no enemy.
func Load(raw []types.Event) (*Catalog, error) {
	se := &SchemaError{}
	byID := make(map[string]int, len(raw))

	for i, ev := range raw {
		if ev.ID == "" {
			se.Problems = append(se.Problems, fmt.Sprintf("event #%d: missing id", i))
			continue
		}
		if _, dup := byID[ev.ID]; dup {
			se.Problems = append(se.Problems, fmt.Sprintf("duplicate event id %q", ev.ID))
			continue
		}
		byID[ev.ID] = i

		if !eventTypes[ev.Type] {
			se.Problems = append(se.Problems, fmt.Sprintf("event %q: unknown type %q", ev.ID, ev.Type))
		}
		if ev.Type == types.EventConditional && ev.Condition == nil {
			se.Problems = append(se.Problems, fmt.Sprintf("event %q: conditional event missing condition", ev.ID))
		}
		if ev.Type != types.EventConditional && ev.Condition != nil {
			se.Problems = append(se.Problems, fmt.Sprintf("event %q: %s event must not carry a condition", ev.ID, ev.Type))
		}
		if ev.Type == types.EventBattle && ev.Enemy == nil {
			se.Problems = append(se.Problems, fmt.Sprintf("event %q: battle event missing enemy", ev.ID))
		}
	}

	if len(se.Problems) > 0 {
		return nil, se
	}

	events := make([]types.Event, len(raw))
	copy(events, raw)
	return &Catalog{events: events, byID: byID}, nil
}

// Lookup returns the event with the given id, or a *NotFoundError.
func (c *Catalog) Lookup(id string) (types.Event, error) {
	i, ok := c.byID[id]
	if !ok {
		return types.Event{}, &NotFoundError{ID: id}
	}
	return c.events[i], nil
}

// Has reports whether the catalog contains the given id.
func (c *Catalog) Has(id string) bool {
	_, ok := c.byID[id]
	return ok
}

// Events returns all events in authoring order. Authoring order carries no
// selection semantics; the selector decides ordering. Callers must not
// modify the returned slice.
func (c *Catalog) Events() []types.Event {
	return c.events
}

// Len returns the number of events in the catalog.
func (c *Catalog) Len() int {
	return len(c.events)
}
