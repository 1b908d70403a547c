package player_test

import (
	"testing"

	"github.com/kunquat/kqsynth/internal/device"
	"github.com/kunquat/kqsynth/internal/event"
	"github.com/kunquat/kqsynth/internal/player"
	"github.com/kunquat/kqsynth/internal/processor/builtin"
	"github.com/kunquat/kqsynth/internal/project"
	"github.com/kunquat/kqsynth/internal/state"
	"github.com/kunquat/kqsynth/internal/tstamp"
	"github.com/kunquat/kqsynth/internal/voice"
)

const (
	testAudioRate = 48000
	// testBufSize bounds every work/audio buffer's capacity; it must cover
	// the largest single Mix() call any test below makes (a real engine
	// would instead mix in per-block chunks no larger than the handle's
	// configured audio buffer size).
	testBufSize = 131072
)

// newHarness wires one audio unit ("au_00", an "add" kernel) straight into
// master, the minimal graph spec.md §8's scenarios need to observe mixed
// output.
func newHarness(t *testing.T, tempo float64) (*player.Player, *state.DeviceState) {
	t.Helper()

	reg := builtin.Default(testAudioRate, tempo)
	addKernel, err := reg.Create("add")
	if err != nil {
		t.Fatalf("create add kernel: %v", err)
	}

	conn, err := device.Build(device.LevelGlobal, []device.Edge{
		{Src: "au_00/out_00", Dst: "in_00"},
		{Src: "au_00/out_01", Dst: "in_01"},
	})
	if err != nil {
		t.Fatalf("build connections: %v", err)
	}

	auDevice := device.NewDevice(0, device.KindAudioUnit)
	if err := auDevice.AddOutPort(0); err != nil {
		t.Fatalf("au out port 0: %v", err)
	}
	if err := auDevice.AddOutPort(1); err != nil {
		t.Fatalf("au out port 1: %v", err)
	}

	masterDevice := device.NewDevice(-1, device.KindAudioUnit)
	if err := masterDevice.AddInPort(0); err != nil {
		t.Fatalf("master in port 0: %v", err)
	}
	if err := masterDevice.AddInPort(1); err != nil {
		t.Fatalf("master in port 1: %v", err)
	}

	tables := state.NewTables()
	auState, err := tables.Create(0, testAudioRate, testBufSize)
	if err != nil {
		t.Fatalf("create au state: %v", err)
	}
	auState.AddBuffer(state.PortOut, 0, 1)
	auState.AddBuffer(state.PortOut, 1, 1)

	masterState := state.NewDeviceState(-1, testAudioRate, testBufSize)
	masterState.AddBuffer(state.PortIn, 0, 1)
	masterState.AddBuffer(state.PortIn, 1, 1)

	pool := voice.NewPool(4, nil)
	engine := event.NewEngine(nil)
	mp := player.NewMasterParams(testAudioRate, tempo, 1.0, nil)

	p := player.NewPlayer(testAudioRate, testBufSize, 1, mp, pool, engine, conn, 42)
	p.Mixer.Register("au_00", &player.DeviceEntry{Dev: auDevice, State: auState, Kernel: addKernel})
	p.Mixer.Register("", &player.DeviceEntry{Dev: masterDevice, State: masterState, Kernel: nil})
	p.Channels[0].ActiveAudioUnit = "au_00"

	return p, masterState
}

func masterSamples(t *testing.T, st *state.DeviceState, port, n int) []float32 {
	t.Helper()
	ab := st.Buffer(state.PortIn, port)
	if ab == nil {
		t.Fatalf("no master input buffer at port %d", port)
	}
	wb, err := ab.Channel(0)
	if err != nil {
		t.Fatalf("channel 0: %v", err)
	}
	return wb.GetContents()[:n]
}

// Scenario A (spec.md §8): a single note-on at the start of a one-beat
// pattern renders a nonzero tone into the master output for the whole
// pattern length, and Mix reports every requested frame produced.
func TestPlayerMixesSingleTone(t *testing.T) {
	tempo := 120.0
	p, masterState := newHarness(t, tempo)

	length := tstamp.New(1, 0) // one beat
	pat := player.NewPattern(length)
	pat.Columns[1] = player.NewColumn([]player.ColumnEntry{
		{Pos: tstamp.Zero, Trigger: player.Trigger{Name: "n+", IsConst: true, Const: project.FloatVal(220)}},
	})
	p.MP.Mode = player.PlayModeOncePattern
	p.SetPattern(pat)

	nframes := int(length.Frames(testAudioRate, tempo))
	mixed, err := p.Mix(nframes)
	if err != nil {
		t.Fatalf("mix: %v", err)
	}
	if mixed != nframes {
		t.Fatalf("mixed = %d, want %d", mixed, nframes)
	}

	samples := masterSamples(t, masterState, 0, mixed)
	nonZero := false
	for _, s := range samples {
		if s != 0 {
			nonZero = true
			break
		}
	}
	if !nonZero {
		t.Fatalf("expected nonzero master output, got silence across %d frames", mixed)
	}
}

// A pattern with no entries (no note-on anywhere) produces silence but Mix
// still reports the full frame count — a dry run shouldn't stall the
// transport.
func TestPlayerMixesSilenceWithoutNoteOn(t *testing.T) {
	tempo := 120.0
	p, masterState := newHarness(t, tempo)

	length := tstamp.New(1, 0)
	pat := player.NewPattern(length)
	p.MP.Mode = player.PlayModeOncePattern
	p.SetPattern(pat)

	nframes := int(length.Frames(testAudioRate, tempo))
	mixed, err := p.Mix(nframes)
	if err != nil {
		t.Fatalf("mix: %v", err)
	}
	if mixed != nframes {
		t.Fatalf("mixed = %d, want %d", mixed, nframes)
	}
	for _, s := range masterSamples(t, masterState, 0, mixed) {
		if s != 0 {
			t.Fatalf("expected silence, found nonzero sample %v", s)
		}
	}
}

// Loop-mode wraparound: PlayModeLoopPattern wraps position back to zero at
// pattern end instead of stopping, so Mix keeps producing frames across
// pattern boundaries and never truncates the requested count. This is not
// spec.md §8's Scenario B (the two-pattern "mjump" jump) — see
// TestPlayerJumpsAcrossPatternsAtDocumentedFrame for that.
func TestPlayerLoopsPatternAcrossBoundaries(t *testing.T) {
	tempo := 120.0
	p, _ := newHarness(t, tempo)

	length := tstamp.New(0, tstamp.Beat/2) // half a beat
	pat := player.NewPattern(length)
	pat.Columns[1] = player.NewColumn([]player.ColumnEntry{
		{Pos: tstamp.Zero, Trigger: player.Trigger{Name: "n+", IsConst: true, Const: project.FloatVal(440)}},
	})
	p.MP.Mode = player.PlayModeLoopPattern
	p.SetPattern(pat)

	framesPerPattern := int(length.Frames(testAudioRate, tempo))
	nframes := framesPerPattern*3 + framesPerPattern/2 // spans 3.5 pattern lengths

	mixed, err := p.Mix(nframes)
	if err != nil {
		t.Fatalf("mix: %v", err)
	}
	if mixed != nframes {
		t.Fatalf("mixed = %d, want %d (loop mode must not truncate)", mixed, nframes)
	}
	if p.MP.Pos.Cmp(length) >= 0 {
		t.Fatalf("position %v did not wrap within pattern length %v", p.MP.Pos, length)
	}
}

// Scenario B (spec.md §8): pat 0 (length [4,0]) fires "goto.set"/"mj.row"/
// "mjump" together at tstamp [2,0], jumping to pat 1's row [0,0]. At
// 120 BPM/48000 Hz tstamp [2,0] is frame 48000 (2 beats * 24000 frames/beat)
// — spec.md's own worked numbers. "goto.set" (PatInstRef{Pattern: 1})
// selects which pattern in the track sequence to land in; the spec's prose
// narrative doesn't name it explicitly but our flat single-track model
// needs it to pick pat 1 over looping within pat 0 (see DESIGN.md).
func TestPlayerJumpsAcrossPatternsAtDocumentedFrame(t *testing.T) {
	tempo := 120.0
	p, _ := newHarness(t, tempo)

	pat0Length := tstamp.New(4, 0)
	pat0 := player.NewPattern(pat0Length)
	jumpPos := tstamp.New(2, 0)
	pat0.Columns[0] = player.NewColumn([]player.ColumnEntry{
		{Pos: jumpPos, Trigger: player.Trigger{Name: "goto.set", IsConst: true,
			Const: project.PatInstRefVal(project.PatInstRef{Pattern: 1})}},
		{Pos: jumpPos, Trigger: player.Trigger{Name: "mj.row", IsConst: true,
			Const: project.TstampVal(tstamp.Zero)}},
		{Pos: jumpPos, Trigger: player.Trigger{Name: "mjump", IsConst: true, Const: project.None}},
	})

	pat1Length := tstamp.New(4, 0)
	pat1 := player.NewPattern(pat1Length)

	patterns := []*player.Pattern{pat0, pat1}
	p.MP.Mode = player.PlayModeNormal
	p.JumpPattern = func(mp *player.MasterParams) *player.Pattern {
		if mp.System < 0 || mp.System >= len(patterns) {
			return nil
		}
		return patterns[mp.System]
	}
	p.SetPattern(pat0)

	jumpFrame := int(jumpPos.Frames(testAudioRate, tempo))
	if jumpFrame != 48000 {
		t.Fatalf("test setup: jump position = frame %d, want 48000 per spec.md §8", jumpFrame)
	}

	mixed, err := p.Mix(100000)
	if err != nil {
		t.Fatalf("mix: %v", err)
	}
	if mixed != 100000 {
		t.Fatalf("mixed = %d, want 100000", mixed)
	}
	if p.MP.System != 1 {
		t.Fatalf("MP.System = %d, want 1 (jumped into pat 1)", p.MP.System)
	}
}

// PlayModeOncePattern stops Mix exactly at pattern end even when more
// frames were requested, leaving the caller to detect the short read.
func TestPlayerOnceModeStopsAtPatternEnd(t *testing.T) {
	tempo := 120.0
	p, _ := newHarness(t, tempo)

	length := tstamp.New(0, tstamp.Beat/2)
	pat := player.NewPattern(length)
	p.MP.Mode = player.PlayModeOncePattern
	p.SetPattern(pat)

	framesPerPattern := int(length.Frames(testAudioRate, tempo))
	requested := framesPerPattern * 2

	mixed, err := p.Mix(requested)
	if err != nil {
		t.Fatalf("mix: %v", err)
	}
	if mixed != framesPerPattern {
		t.Fatalf("mixed = %d, want %d (should stop at pattern end)", mixed, framesPerPattern)
	}
}
