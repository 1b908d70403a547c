// Package event implements the event/binding engine described in spec.md
// §4.9: a statically populated EventNames table, per-kind dispatch, and a
// Bind table cascading triggers to target channels. Adapted from the
// teacher's internal/events (eventbus, dedup, typed payloads) to synchronous
// single-thread dispatch per spec.md §5 — no background workers, no channels,
// every trigger() call runs to completion before returning.
package event

// Kind classifies an event name for dispatch (spec.md §4.9).
type Kind int

const (
	KindGeneral Kind = iota
	KindControl
	KindMaster
	KindChannel
	KindInstrument
	KindProcessor
	KindAudioEffect
	KindDSP
	KindQuery
)

// ValueType is the declared argument type an event expects.
type ValueType int

const (
	ValueNone ValueType = iota
	ValueBool
	ValueInt
	ValueFloat
	ValueTstamp
	ValueString
	ValuePatInstRef
)

// Info is one EventNames table entry.
type Info struct {
	Name      string
	Kind      Kind
	ValueType ValueType
}

// Names is the statically populated EventNames table (spec.md §4.9).
var Names = map[string]Info{
	"comment":      {"comment", KindGeneral, ValueString},
	"cond":         {"cond", KindGeneral, ValueBool},
	"if":           {"if", KindGeneral, ValueNone},
	"else":         {"else", KindGeneral, ValueNone},
	"end_if":       {"end_if", KindGeneral, ValueNone},
	"signal":       {"signal", KindGeneral, ValueString},

	"pause":        {"pause", KindControl, ValueNone},
	"resume":       {"resume", KindControl, ValueNone},
	"pattern":      {"pattern", KindControl, ValuePatInstRef},
	"env.set":      {"env.set", KindControl, ValueFloat},
	"goto.set":     {"goto.set", KindControl, ValuePatInstRef},
	"goto":         {"goto", KindControl, ValueNone},
	"infinite":     {"infinite", KindControl, ValueBool},
	"receive":      {"receive", KindControl, ValueString},

	"mtempo":       {"mtempo", KindMaster, ValueFloat},
	"m/tempo":      {"m/tempo", KindMaster, ValueFloat}, // slide tempo
	"mvol":         {"mvol", KindMaster, ValueFloat},
	"m/vol":        {"m/vol", KindMaster, ValueFloat}, // slide volume
	"mjump":        {"mjump", KindMaster, ValueNone},
	"mj.row":       {"mj.row", KindMaster, ValueTstamp},
	"mscale":       {"mscale", KindMaster, ValueInt},
	"mdelay":       {"mdelay", KindMaster, ValueTstamp},

	"c.gen":        {"c.gen", KindChannel, ValueInt},
	"c.eff":        {"c.eff", KindChannel, ValueInt},
	"c.dsp":        {"c.dsp", KindChannel, ValueInt},
	"force":        {"force", KindChannel, ValueFloat},
	"/force":       {"/force", KindChannel, ValueFloat}, // slide force
	"pitch":        {"pitch", KindChannel, ValueFloat},
	"/pitch":       {"/pitch", KindChannel, ValueFloat}, // slide pitch
	"vibrato":      {"vibrato", KindChannel, ValueFloat},
	"tremolo":      {"tremolo", KindChannel, ValueFloat},
	"autowah":      {"autowah", KindChannel, ValueFloat},
	"arp+":         {"arp+", KindChannel, ValueNone},
	"arp-":         {"arp-", KindChannel, ValueNone},
	"arp.reset":    {"arp.reset", KindChannel, ValueNone},
	"c.instr":      {"c.instr", KindChannel, ValueInt},
	"n+":           {"n+", KindChannel, ValueFloat},
	"n-":           {"n-", KindChannel, ValueNone},
	"h":            {"h", KindChannel, ValueInt},
	"cpitch.carry": {"cpitch.carry", KindChannel, ValueBool},
	"cforce.carry": {"cforce.carry", KindChannel, ValueBool},

	"i.set":  {"i.set", KindInstrument, ValueNone},
	"p.set":  {"p.set", KindProcessor, ValueNone},
	"e.set":  {"e.set", KindAudioEffect, ValueNone},
	"d.set":  {"d.set", KindDSP, ValueNone},

	"qlocation": {"qlocation", KindQuery, ValueNone},
	"qvoices":   {"qvoices", KindQuery, ValueNone},
	"qforce":    {"qforce", KindQuery, ValueNone},
}

// Lookup returns an event's Info, or false if it is not a known name.
func Lookup(name string) (Info, bool) {
	info, ok := Names[name]
	return info, ok
}
