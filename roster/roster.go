// Package roster resolves free-text team and player names against a fixed,
// ordered snapshot of {id, full_name} entries.
package roster

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
)

var ErrNotFound = errors.New("no roster entry matches")

type Entry struct {
	ID       int    `json:"id" db:"id"`
	FullName string `json:"full_name" db:"full_name"`
}

// Table is read-only once built; it is safe for concurrent use.
type Table struct {
	kind    string
	entries []Entry
	folded  []string
}

func NewTable(kind string, entries []Entry) *Table {
	t := &Table{
		kind:    kind,
		entries: make([]Entry, len(entries)),
		folded:  make([]string, len(entries)),
	}
	copy(t.entries, entries)
	for i, e := range entries {
		t.folded[i] = strings.ToLower(e.FullName)
	}
	return t
}

// Resolve returns the first entry, in snapshot order, whose full name
// contains name case-insensitively. Later and exact matches are not
// preferred: "James" yields whichever James-named entry comes first.
func (t *Table) Resolve(name string) (Entry, error) {
	needle := strings.ToLower(name)
	for i, f := range t.folded {
		if strings.Contains(f, needle) {
			return t.entries[i], nil
		}
	}
	return Entry{}, fmt.Errorf("%s %q: %w", t.kind, name, ErrNotFound)
}

func (t *Table) Kind() string {
	return t.kind
}

func (t *Table) Len() int {
	return len(t.entries)
}

func (t *Table) Entries() []Entry {
	out := make([]Entry, len(t.entries))
	copy(out, t.entries)
	return out
}

//go:embed data/teams.json
var teamsJSON []byte

//go:embed data/players.json
var playersJSON []byte

// Teams loads the embedded team snapshot.
func Teams() (*Table, error) {
	return Decode("team", teamsJSON)
}

// Players loads the embedded player snapshot. It is a subset of the nba_api
// static player list kept in that list's order (by last name); LoadFile or
// the sqlite roster serve the complete list.
func Players() (*Table, error) {
	return Decode("player", playersJSON)
}

// LoadFile reads a JSON array in the nba_api static list shape from path.
// Fields other than id and full_name are ignored.
func LoadFile(kind, path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s roster: %w", kind, err)
	}
	return Decode(kind, data)
}

// Decode builds a table from a JSON array of entries, keeping array order.
func Decode(kind string, data []byte) (*Table, error) {
	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("decode %s roster: %w", kind, err)
	}
	return NewTable(kind, entries), nil
}
