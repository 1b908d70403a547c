package kqt

import (
	"encoding/json"
	"sort"
	"strings"

	"github.com/kunquat/kqsynth/internal/audiounit"
	"github.com/kunquat/kqsynth/internal/device"
	"github.com/kunquat/kqsynth/internal/event"
	kqterrors "github.com/kunquat/kqsynth/internal/errors"
	"github.com/kunquat/kqsynth/internal/player"
	"github.com/kunquat/kqsynth/internal/processor/builtin"
	"github.com/kunquat/kqsynth/internal/state"
	"github.com/kunquat/kqsynth/internal/tstamp"
	"github.com/kunquat/kqsynth/internal/voice"
)

// Validate builds the playable engine (device graph, audio-unit kernels,
// voice pool, event engine, patterns) from every key set via SetData, per
// spec.md §6/§7: malformed or missing data is a format error and the handle
// is left unvalidated (Mix/Fire refuse until the next successful Validate).
func (h *Handle) Validate() error {
	if _, ok := h.data["p_manifest.json"]; !ok {
		return h.fail(formatErrf("missing root p_manifest.json"))
	}

	conn, err := h.buildConnections()
	if err != nil {
		return h.fail(err)
	}

	auNames := h.activeAudioUnits()
	if len(auNames) == 0 {
		return h.fail(formatErrf("no active audio units (no au_XX/p_manifest.json key)"))
	}

	reg := builtin.Default(h.audioRate, h.opts.DefaultTempo)
	tables := state.NewTables()

	pool := voice.NewPool(h.opts.PoolSize, nil)
	engine := event.NewEngine(nil)
	mp := player.NewMasterParams(float64(h.audioRate), h.opts.DefaultTempo, h.opts.DefaultVolume, h.metrics)
	plyr := player.NewPlayer(h.audioRate, h.bufSize, len(auNames), mp, pool, engine, conn, h.opts.RandomSeed)

	audioUnits := make(map[string]*audiounit.AudioUnit, len(auNames))
	deviceID := 0
	for _, name := range auNames {
		procFile, err := h.firstActiveProcessor(name)
		if err != nil {
			return h.fail(err)
		}
		kernel, err := reg.Create(procFile.Type)
		if err != nil {
			return h.fail(kqterrors.New(err).Component("kqt").Category(kqterrors.CategoryFormat).
				Context("audio_unit", name).Context("proc_type", procFile.Type).Build())
		}

		// Every audio unit exposes "pitch"/"force" control variables bound
		// 1:1 (identity expression) to its kernel's own p_pitch/p_force
		// parameters, so the "pitch"/"force" channel events (spec.md §4.9)
		// have a live AudioUnit.Apply target (§4.6) to drive. A kernel that
		// rejects unknown params (e.g. kernel/add, which has no p_force)
		// fails the bound write, and one whose SetParam accepts every name
		// (e.g. kernel/force's stub) ignores it; Apply's own error is
		// logged by the caller, not treated as fatal here.
		au := audiounit.New(deviceID)
		au.AddControlVar(&audiounit.ControlVar{
			Name: "pitch",
			Type: audiounit.CVFloat,
			Bindings: []audiounit.Binding{
				{TargetDevice: name, TargetVar: "p_pitch", Expr: "$"},
			},
		})
		au.AddControlVar(&audiounit.ControlVar{
			Name: "force",
			Type: audiounit.CVFloat,
			Bindings: []audiounit.Binding{
				{TargetDevice: name, TargetVar: "p_force", Expr: "$"},
			},
		})
		audioUnits[name] = au

		dev := device.NewDevice(deviceID, device.KindAudioUnit)
		ds, err := tables.Create(deviceID, h.audioRate, h.bufSize)
		if err != nil {
			return h.fail(err)
		}
		for _, p := range procFile.OutPorts {
			if err := dev.AddOutPort(p); err != nil {
				return h.fail(err)
			}
			ds.AddBuffer(state.PortOut, p, 1)
		}
		for _, p := range procFile.InPorts {
			if err := dev.AddInPort(p); err != nil {
				return h.fail(err)
			}
			ds.AddBuffer(state.PortIn, p, 1)
		}

		plyr.Mixer.Register(name, &player.DeviceEntry{Dev: dev, State: ds, Kernel: kernel})
		deviceID++
	}

	masterDevice := device.NewDevice(-1, device.KindAudioUnit)
	masterState := state.NewDeviceState(-1, h.audioRate, h.bufSize)
	for _, p := range conn.Master().InPortsUsed() {
		if err := masterDevice.AddInPort(p); err != nil {
			return h.fail(err)
		}
		masterState.AddBuffer(state.PortIn, p, 1)
	}
	plyr.Mixer.Register("", &player.DeviceEntry{Dev: masterDevice, State: masterState})

	for i, name := range auNames {
		plyr.Channels[i].ActiveAudioUnit = name
	}
	plyr.AudioUnits = audioUnits

	patterns, err := h.loadPatterns()
	if err != nil {
		return h.fail(err)
	}
	track, err := h.loadTrack()
	if err != nil {
		return h.fail(err)
	}
	for _, key := range track {
		if patterns[key] == nil {
			return h.fail(formatErrf("album track refers to unknown pattern %q", key))
		}
	}

	// MasterParams.System doubles as the current position in the flat track
	// sequence: it starts at 0 (matching SetPattern(track[0]) below), each
	// end-of-pattern advance increments it, and a "goto.set"/"mjump" jump
	// (spec.md §4.10) can set it directly via MasterParams.SetJumpTarget
	// before TakeJump repositions playback — JumpPattern re-resolves the
	// pattern for whatever System TakeJump just landed on.
	plyr.NextPattern = func(mp *player.MasterParams) *player.Pattern {
		mp.System++
		if mp.System < 0 || mp.System >= len(track) {
			return nil
		}
		return patterns[track[mp.System]]
	}
	plyr.JumpPattern = func(mp *player.MasterParams) *player.Pattern {
		if mp.System < 0 || mp.System >= len(track) {
			return nil
		}
		return patterns[track[mp.System]]
	}
	if len(track) > 0 {
		plyr.SetPattern(patterns[track[0]])
	}

	h.player = plyr
	h.masterState = masterState
	h.patterns = patterns
	h.track = track
	h.validated = true
	h.lastErr = nil
	return nil
}

func (h *Handle) buildConnections() (*device.Connections, error) {
	raw, ok := h.data["p_connections.json"]
	if !ok {
		return nil, formatErrf("missing p_connections.json")
	}
	var cf connectionsFile
	if err := json.Unmarshal(raw, &cf); err != nil {
		return nil, kqterrors.New(err).Component("kqt").Category(kqterrors.CategoryFormat).
			Context("key", "p_connections.json").Build()
	}
	edges := make([]device.Edge, len(cf.Edges))
	for i, e := range cf.Edges {
		edges[i] = device.Edge{Src: e.Src, Dst: e.Dst}
	}
	return device.Build(device.LevelGlobal, edges)
}

// activeAudioUnits returns every "au_XX" name with a present
// "au_XX/p_manifest.json" key, sorted (sort order fixes channel assignment:
// auNames[i] drives Channels[i]).
func (h *Handle) activeAudioUnits() []string {
	var names []string
	for key := range h.data {
		if !strings.HasSuffix(key, "/p_manifest.json") {
			continue
		}
		dir := strings.TrimSuffix(key, "/p_manifest.json")
		if strings.Contains(dir, "/") || !strings.HasPrefix(dir, "au_") {
			continue
		}
		names = append(names, dir)
	}
	sort.Strings(names)
	return names
}

// firstActiveProcessor finds auName's lowest-indexed active processor and
// parses its p_processor.json. A reduced stand-in for spec.md §4.6's full
// sub-graph of processors per audio unit: this loader drives the whole
// audio unit directly from one processor's Kernel (documented in
// DESIGN.md), leaving multi-processor audio units for a future loader.
func (h *Handle) firstActiveProcessor(auName string) (processorFile, error) {
	prefix := auName + "/proc_"
	var procDirs []string
	for key := range h.data {
		if !strings.HasPrefix(key, prefix) || !strings.HasSuffix(key, "/p_manifest.json") {
			continue
		}
		procDirs = append(procDirs, strings.TrimSuffix(key, "/p_manifest.json"))
	}
	if len(procDirs) == 0 {
		return processorFile{}, formatErrf("audio unit %q has no active processor", auName)
	}
	sort.Strings(procDirs)
	procDir := procDirs[0]

	raw, ok := h.data[procDir+"/p_processor.json"]
	if !ok {
		return processorFile{}, formatErrf("missing %s/p_processor.json", procDir)
	}
	var pf processorFile
	if err := json.Unmarshal(raw, &pf); err != nil {
		return processorFile{}, kqterrors.New(err).Component("kqt").Category(kqterrors.CategoryFormat).
			Context("key", procDir+"/p_processor.json").Build()
	}
	return pf, nil
}

// loadPatterns parses every "pat_XXX/p_pattern.json" key into a Pattern,
// keyed by its "pat_XXX" name.
func (h *Handle) loadPatterns() (map[string]*player.Pattern, error) {
	out := make(map[string]*player.Pattern)
	for key, raw := range h.data {
		if !strings.HasSuffix(key, "/p_pattern.json") {
			continue
		}
		name := strings.TrimSuffix(key, "/p_pattern.json")
		var pf patternFile
		if err := json.Unmarshal(raw, &pf); err != nil {
			return nil, kqterrors.New(err).Component("kqt").Category(kqterrors.CategoryFormat).
				Context("key", key).Build()
		}
		pat := player.NewPattern(pf.Length.toTstamp())
		for colStr, entries := range pf.Columns {
			colIdx, err := parseColumnIndex(colStr)
			if err != nil {
				return nil, err
			}
			columnEntries := make([]player.ColumnEntry, len(entries))
			for i, e := range entries {
				trig := player.Trigger{Name: e.Name}
				if e.Expr != "" {
					trig.Expr = e.Expr
				} else {
					trig.IsConst = true
					var err error
					trig.Const, err = constValueFor(e.Name, e.Const)
					if err != nil {
						return nil, err
					}
				}
				columnEntries[i] = player.ColumnEntry{Pos: e.Pos.toTstamp(), Trigger: trig}
			}
			pat.Columns[colIdx] = player.NewColumn(columnEntries)
		}
		out[name] = pat
	}
	return out, nil
}

// loadTrack parses the optional album/p_tracks.json ordered pattern list.
func (h *Handle) loadTrack() ([]string, error) {
	raw, ok := h.data["album/p_tracks.json"]
	if !ok {
		return nil, nil
	}
	var tf tracksFile
	if err := json.Unmarshal(raw, &tf); err != nil {
		return nil, kqterrors.New(err).Component("kqt").Category(kqterrors.CategoryFormat).
			Context("key", "album/p_tracks.json").Build()
	}
	return tf.Patterns, nil
}

func parseColumnIndex(s string) (int, error) {
	n := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, formatErrf("invalid pattern column index %q", s)
		}
		n = n*10 + int(r-'0')
	}
	if n < 0 || n >= player.MaxColumns {
		return 0, formatErrf("pattern column index %d out of range", n)
	}
	return n, nil
}

func formatErrf(format string, args ...any) error {
	return kqterrors.Newf(format, args...).Component("kqt").Category(kqterrors.CategoryFormat).Build()
}

// constValueFor converts a pattern entry's already-JSON-decoded "const"
// field (string/float64/bool/map/nil, per encoding/json's any-unmarshaling)
// into a project.Value matching name's declared event type.
func constValueFor(name string, raw any) (project.Value, error) {
	info, ok := event.Lookup(name)
	if !ok {
		return project.None, formatErrf("pattern entry: unknown event %q", name)
	}

	switch v := raw.(type) {
	case nil:
		return event.Coerce(info.ValueType, project.None)
	case bool:
		return event.Coerce(info.ValueType, project.BoolVal(v))
	case float64:
		return event.Coerce(info.ValueType, project.FloatVal(v))
	case string:
		if info.ValueType == event.ValueString {
			return project.StringVal(v), nil
		}
		return event.Coerce(info.ValueType, project.StringVal(v))
	case map[string]any:
		switch info.ValueType {
		case event.ValueTstamp:
			beats, _ := v["beats"].(float64)
			rem, _ := v["rem"].(float64)
			return project.TstampVal(tstamp.New(int64(beats), int64(rem))), nil
		case event.ValuePatInstRef:
			pat, _ := v["pattern"].(float64)
			inst, _ := v["instance"].(float64)
			return project.PatInstRefVal(project.PatInstRef{Pattern: int(pat), Instance: int(inst)}), nil
		}
	}
	return project.None, formatErrf("pattern entry: cannot parse const for event %q", name)
}
