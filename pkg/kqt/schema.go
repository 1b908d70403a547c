package kqt

import "github.com/kunquat/kqsynth/internal/tstamp"

// The key-namespace JSON shapes this loader understands, a reduced subset
// of spec.md §6's "Key namespace" sufficient to build a Connections graph,
// one kernel per audio unit, and pattern data. Each JSON file's existence
// under its directory's p_manifest.json marks that directory active.

type connectionsFile struct {
	Edges []edgeJSON `json:"edges"`
}

type edgeJSON struct {
	Src string `json:"src"`
	Dst string `json:"dst"`
}

// audioUnitFile declares an audio unit's external ports (au_XX/p_audio_unit.json).
type audioUnitFile struct {
	InPorts  []int `json:"in_ports"`
	OutPorts []int `json:"out_ports"`
}

// processorFile declares the kernel type driving a processor
// (au_XX/proc_YY/p_processor.json) — in this reduced loader, an audio unit's
// first active processor supplies the kernel for the whole unit.
type processorFile struct {
	Type     string `json:"type"`
	InPorts  []int  `json:"in_ports"`
	OutPorts []int  `json:"out_ports"`
}

type tstampJSON struct {
	Beats int64 `json:"beats"`
	Rem   int64 `json:"rem"`
}

func (t tstampJSON) toTstamp() tstamp.Tstamp { return tstamp.New(t.Beats, t.Rem) }

// patternFile is pat_XXX/p_pattern.json: a length plus one entries list per
// column index (0 = global column).
type patternFile struct {
	Length  tstampJSON             `json:"length"`
	Columns map[string][]entryJSON `json:"columns"`
}

type entryJSON struct {
	Pos   tstampJSON `json:"pos"`
	Name  string     `json:"name"`
	Const any        `json:"const,omitempty"`
	Expr  string     `json:"expr,omitempty"`
}

// tracksFile is album/p_tracks.json: the ordered list of pattern keys
// (e.g. "pat_000") played back-to-back in PlayModeNormal.
type tracksFile struct {
	Patterns []string `json:"patterns"`
}
