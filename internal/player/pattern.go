package player

import (
	"sort"

	"github.com/kunquat/kqsynth/internal/project"
	"github.com/kunquat/kqsynth/internal/tstamp"
)

// MaxColumns is KQT_COLUMNS_MAX (spec.md §3 "Pattern").
const MaxColumns = 64

// Trigger is one timed event on a column: a name plus either a constant
// value or an unevaluated expression string (spec.md §3).
type Trigger struct {
	Name    string
	IsConst bool
	Const   project.Value
	Expr    string
}

// ColumnEntry is one (position, trigger) pair within a Column.
type ColumnEntry struct {
	Pos     tstamp.Tstamp
	Trigger Trigger
}

// Column is a time-ordered sequence of triggers (spec.md §3).
type Column struct {
	entries []ColumnEntry
}

// NewColumn builds a Column from entries, sorting them by position (stable,
// so same-Tstamp entries keep their authored order per spec.md §5's
// "events at the same Tstamp fire in column order").
func NewColumn(entries []ColumnEntry) *Column {
	c := &Column{entries: append([]ColumnEntry(nil), entries...)}
	sort.SliceStable(c.entries, func(i, j int) bool {
		return c.entries[i].Pos.Cmp(c.entries[j].Pos) < 0
	})
	return c
}

// cursor walks a Column forward-only, matching spec.md §4.10's column
// iterator (never rewinds within a single playback pass).
type cursor struct {
	col *Column
	idx int
}

func newCursor(c *Column) *cursor { return &cursor{col: c} }

// peek returns the next unconsumed entry without advancing, or false if the
// column is exhausted.
func (cu *cursor) peek() (ColumnEntry, bool) {
	if cu == nil || cu.col == nil || cu.idx >= len(cu.col.entries) {
		return ColumnEntry{}, false
	}
	return cu.col.entries[cu.idx], true
}

func (cu *cursor) advance() { cu.idx++ }

// Pattern is a fixed-length sequence of columns (spec.md §3): column 0 is the
// global column, 1..MaxColumns-1 are per-channel columns.
type Pattern struct {
	Length  tstamp.Tstamp
	Columns [MaxColumns]*Column
}

// NewPattern creates a Pattern of the given length with empty columns; the
// caller fills in Columns[i] from project data.
func NewPattern(length tstamp.Tstamp) *Pattern {
	p := &Pattern{Length: length}
	for i := range p.Columns {
		p.Columns[i] = NewColumn(nil)
	}
	return p
}
