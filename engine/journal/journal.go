// Package journal keeps the capped in-memory narrative log shown to the
// player. Story text and system notices are tagged so presentation layers
// can style them differently.
package journal

// Category tags a journal entry for styling.
type Category string

const (
	Story  Category = "story"
	System Category = "system"
)

// Entry is one journal line.
type Entry struct {
	Text     string
	Category Category
}

// Journal is a bounded log. When full, the oldest entries fall off.
type Journal struct {
	entries []Entry
	max     int
}

// New creates a journal holding at most max entries.
func New(max int) *Journal {
	return &Journal{
		entries: make([]Entry, 0, max),
		max:     max,
	}
}

// Add appends a story line.
func (j *Journal) Add(text string) {
	j.append(Entry{Text: text, Category: Story})
}

// AddSystem appends a system notice.
func (j *Journal) AddSystem(text string) {
	j.append(Entry{Text: text, Category: System})
}

func (j *Journal) append(e Entry) {
	j.entries = append(j.entries, e)
	if len(j.entries) > j.max {
		j.entries = j.entries[len(j.entries)-j.max:]
	}
}

// Entries returns the retained entries, oldest first. Callers must not
// modify the returned slice.
func (j *Journal) Entries() []Entry {
	return j.entries
}

// Len returns the number of retained entries.
func (j *Journal) Len() int {
	return len(j.entries)
}
