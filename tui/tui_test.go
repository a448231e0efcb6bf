package tui

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/hyluen/fateloom/engine"
	"github.com/hyluen/fateloom/engine/catalog"
	"github.com/hyluen/fateloom/store"
	"github.com/hyluen/fateloom/types"
)

func TestClassifyLine(t *testing.T) {
	tests := []struct {
		line string
		want lineKind
	}{
		{"[Game saved to slot \"test\".]", kindSystem},
		{"  1) Take the rock", kindOption},
		{"12) Walk away", kindOption},
		{"Fate shifts by +4 (now 12).", kindFate},
		{"You deal 3 damage to Sand Wraith!", kindBattle},
		{"Sand Wraith has 2/5 HP left.", kindBattle},
		{"Battle begins: Sand Wraith (HP 5, ATK 4, DEF 1)", kindBattle},
		{"You brace yourself, absorbing 3 damage.", kindBattle},
		{"Your wounds prove fatal. The diary ends here.", kindDanger},
		{"The path splits beneath the dead tree.", kindStory},
		{"", kindStory},
	}
	for _, tt := range tests {
		got := classifyLine(tt.line)
		if got != tt.want {
			t.Errorf("classifyLine(%q) = %v, want %v", tt.line, got, tt.want)
		}
	}
}

func TestIsNumberedOption(t *testing.T) {
	tests := []struct {
		line string
		want bool
	}{
		{"1) Take the rock", true},
		{"12) Walk away", true},
		{") no number", false},
		{"Take the rock", false},
		{"", false},
		{"3 days later", false},
	}
	for _, tt := range tests {
		got := isNumberedOption(tt.line)
		if got != tt.want {
			t.Errorf("isNumberedOption(%q) = %v, want %v", tt.line, got, tt.want)
		}
	}
}

func TestWordWrap(t *testing.T) {
	tests := []struct {
		text  string
		width int
		want  string
	}{
		{"short", 80, "short"},
		{"hello world", 5, "hello\nworld"},
		{"The dunes stretch before you under a bruised violet sky.", 30,
			"The dunes stretch before you\nunder a bruised violet sky."},
		{"", 80, ""},
		{"one", 80, "one"},
		{"a b c d e", 3, "a b\nc d\ne"},
	}
	for _, tt := range tests {
		got := wordWrap(tt.text, tt.width)
		if got != tt.want {
			t.Errorf("wordWrap(%q, %d) =\n  %q\nwant:\n  %q", tt.text, tt.width, got, tt.want)
		}
	}
}

func TestHistory_PushAndPrev(t *testing.T) {
	h := NewHistory(5)
	h.Push("1")
	h.Push("2")
	h.Push("/state")

	prev, ok := h.Prev()
	if !ok || prev != "/state" {
		t.Errorf("expected '/state', got %q (ok=%v)", prev, ok)
	}

	prev, ok = h.Prev()
	if !ok || prev != "2" {
		t.Errorf("expected '2', got %q (ok=%v)", prev, ok)
	}

	prev, ok = h.Prev()
	if !ok || prev != "1" {
		t.Errorf("expected '1', got %q (ok=%v)", prev, ok)
	}

	// At oldest, stays there.
	prev, ok = h.Prev()
	if !ok || prev != "1" {
		t.Errorf("expected '1' at boundary, got %q (ok=%v)", prev, ok)
	}
}

func TestHistory_Next(t *testing.T) {
	h := NewHistory(5)
	h.Push("1")
	h.Push("2")

	h.Prev() // "2"
	h.Prev() // "1"

	next, ok := h.Next()
	if !ok || next != "2" {
		t.Errorf("expected '2', got %q (ok=%v)", next, ok)
	}

	_, ok = h.Next()
	if ok {
		t.Error("expected false when past newest entry")
	}
}

func TestHistory_Empty(t *testing.T) {
	h := NewHistory(5)
	_, ok := h.Prev()
	if ok {
		t.Error("expected false on empty history")
	}
	_, ok = h.Next()
	if ok {
		t.Error("expected false on empty history")
	}
}

func TestHistory_MaxSize(t *testing.T) {
	h := NewHistory(2)
	h.Push("a")
	h.Push("b")
	h.Push("c") // "a" evicted

	prev, _ := h.Prev()
	if prev != "c" {
		t.Errorf("expected 'c', got %q", prev)
	}
	prev, _ = h.Prev()
	if prev != "b" {
		t.Errorf("expected 'b', got %q", prev)
	}
	// "a" is gone.
	prev, _ = h.Prev()
	if prev != "b" {
		t.Errorf("expected 'b' at boundary, got %q", prev)
	}
}

func TestHistory_NoDuplicates(t *testing.T) {
	h := NewHistory(5)
	h.Push("1")
	h.Push("1") // skipped
	h.Push("1") // skipped

	if len(h.entries) != 1 {
		t.Errorf("expected 1 entry, got %d", len(h.entries))
	}
}

func TestHistory_ResetCursor(t *testing.T) {
	h := NewHistory(5)
	h.Push("1")
	h.Push("2")

	h.Prev() // "2"
	h.ResetCursor()

	// After reset, Prev starts from the end again.
	prev, ok := h.Prev()
	if !ok || prev != "2" {
		t.Errorf("expected '2' after reset, got %q", prev)
	}
}

// testCatalog returns a minimal event catalog for TUI testing.
func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	cat, err := catalog.Load([]types.Event{
		{
			ID:   "fork",
			Type: types.EventNormal,
			Text: "The path splits beneath the dead tree.",
			Options: []types.Option{
				{Text: "Take the rock", Effect: types.Effect{InventoryAdd: []string{"Rock"}}},
				{Text: "Walk on"},
			},
		},
		{
			ID:   "dust",
			Type: types.EventNormal,
			Text: "Dust settles over the road.",
			Options: []types.Option{
				{Text: "Keep walking"},
			},
		},
	})
	if err != nil {
		t.Fatalf("catalog.Load: %v", err)
	}
	return cat
}

func testModel(t *testing.T) Model {
	t.Helper()
	cat := testCatalog(t)
	return New(engine.NewSession(cat, 7), cat, nil)
}

func TestAdvanceLines_PresentsOptions(t *testing.T) {
	m := testModel(t)
	lines := m.advanceLines()

	joined := strings.Join(lines, "\n")
	if !strings.Contains(joined, "1)") {
		t.Errorf("expected numbered options in output, got:\n%s", joined)
	}
}

func TestHandleMeta_Quit(t *testing.T) {
	m := testModel(t)

	_, quit := m.handleMeta("/quit")
	if !quit {
		t.Error("expected quit=true for /quit")
	}

	_, quit = m.handleMeta("/exit")
	if !quit {
		t.Error("expected quit=true for /exit")
	}
}

func TestHandleMeta_SaveWithoutStore(t *testing.T) {
	m := testModel(t)

	output, quit := m.handleMeta("/save test")
	if quit {
		t.Error("save should not quit")
	}
	if len(output) == 0 || !strings.Contains(output[0], "not available") {
		t.Errorf("expected unavailable message, got %v", output)
	}
}

func TestHandleMeta_SaveAndLoad(t *testing.T) {
	saves, err := store.Open(filepath.Join(t.TempDir(), "saves.db"))
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	defer saves.Close()

	cat := testCatalog(t)
	m := New(engine.NewSession(cat, 7), cat, saves)

	output, quit := m.handleMeta("/save test")
	if quit {
		t.Error("save should not quit")
	}
	if len(output) == 0 || !strings.Contains(output[0], "Game saved") {
		t.Errorf("expected save confirmation, got %v", output)
	}

	output, quit = m.handleMeta("/load test")
	if quit {
		t.Error("load should not quit")
	}
	if len(output) == 0 || !strings.Contains(output[0], "Game loaded") {
		t.Errorf("expected load confirmation, got %v", output)
	}
}

func TestHandleMeta_LoadNonexistent(t *testing.T) {
	saves, err := store.Open(filepath.Join(t.TempDir(), "saves.db"))
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	defer saves.Close()

	cat := testCatalog(t)
	m := New(engine.NewSession(cat, 7), cat, saves)

	output, quit := m.handleMeta("/load nonexistent")
	if quit {
		t.Error("load should not quit")
	}
	if len(output) == 0 || !strings.Contains(output[0], "Load failed") {
		t.Errorf("expected load failure, got %v", output)
	}
}

func TestHandleMeta_Help(t *testing.T) {
	m := testModel(t)

	output, quit := m.handleMeta("/help")
	if quit {
		t.Error("help should not quit")
	}

	joined := strings.Join(output, "\n")
	for _, expected := range []string{"/save", "/load", "/quit", "option number"} {
		if !strings.Contains(joined, expected) {
			t.Errorf("expected %q in help output", expected)
		}
	}
}

func TestHandleMeta_Unknown(t *testing.T) {
	m := testModel(t)

	output, quit := m.handleMeta("/bogus")
	if quit {
		t.Error("unknown command should not quit")
	}
	if len(output) == 0 || !strings.Contains(output[0], "Unknown command") {
		t.Errorf("expected unknown command message, got %v", output)
	}
}

func TestHandleMeta_State(t *testing.T) {
	m := testModel(t)

	output, quit := m.handleMeta("/state")
	if quit {
		t.Error("state should not quit")
	}

	joined := strings.Join(output, "\n")
	if !strings.Contains(joined, "HP:") {
		t.Error("expected stats in state output")
	}
	if !strings.Contains(joined, "Turn:") {
		t.Error("expected turn count in state output")
	}
}
