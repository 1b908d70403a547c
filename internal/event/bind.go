package event

import "github.com/kunquat/kqsynth/internal/project"

// ArgConstraint optionally restricts a Bind entry to triggers whose argument
// matches (nil accepts any argument).
type ArgConstraint func(project.Value) bool

// BindEntry maps one (name, argument constraint) trigger to a cascaded
// target event on a channel offset from the firing channel (spec.md §4.9).
type BindEntry struct {
	Name       string
	Constraint ArgConstraint
	ChOffset   int
	TargetName string
	// TargetExpr, if non-empty, is evaluated with $ bound to the source
	// trigger's argument to produce the target event's argument.
	TargetExpr string
}

// BindTable is an ordered list of bindings, consulted after every trigger.
type BindTable struct {
	entries []BindEntry
}

// NewBindTable creates an empty bind table.
func NewBindTable() *BindTable { return &BindTable{} }

// Add installs a binding.
func (bt *BindTable) Add(e BindEntry) { bt.entries = append(bt.entries, e) }

// Matching returns every entry bound to name whose constraint accepts arg.
func (bt *BindTable) Matching(name string, arg project.Value) []BindEntry {
	var out []BindEntry
	for _, e := range bt.entries {
		if e.Name != name {
			continue
		}
		if e.Constraint != nil && !e.Constraint(arg) {
			continue
		}
		out = append(out, e)
	}
	return out
}
