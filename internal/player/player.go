// Package player implements MasterParams transport state and pattern
// playback (spec.md §4.10): it drives the voice pool, event engine, and
// device-graph mixer through each processing block.
package player

import (
	"log/slog"

	"github.com/kunquat/kqsynth/internal/audiounit"
	"github.com/kunquat/kqsynth/internal/control"
	"github.com/kunquat/kqsynth/internal/device"
	"github.com/kunquat/kqsynth/internal/event"
	"github.com/kunquat/kqsynth/internal/expr"
	"github.com/kunquat/kqsynth/internal/logging"
	"github.com/kunquat/kqsynth/internal/project"
	"github.com/kunquat/kqsynth/internal/tstamp"
	"github.com/kunquat/kqsynth/internal/voice"
)

// defaultSlideLength is the ramp duration applied by "m/tempo"/"m/vol" when
// the column only supplies a target value. The real engine paces a slide's
// length from a separate slide-length event that spec.md's distillation
// doesn't name; one beat is a reasonable audible default and is documented
// here rather than invented silently.
var defaultSlideLength = tstamp.FromFloat(1.0)

// NextPatternFunc supplies the pattern to play after the current one ends in
// PlayModeNormal; returning nil stops playback (track exhausted).
type NextPatternFunc func(mp *MasterParams) *Pattern

// Player ties MasterParams, the voice pool/channels, the event engine, and
// the device-graph Mixer into Pattern_mix (spec.md §4.10).
type Player struct {
	MP          *MasterParams
	Mixer       *Mixer
	Pool        *voice.Pool
	Channels    []*voice.Channel
	Engine      *event.Engine
	Connections *device.Connections
	AudioRate   int
	BufSize     int

	NextPattern NextPatternFunc

	// JumpPattern resolves the pattern for MP.System after a "mjump"/"goto"
	// has repositioned the track cursor (spec.md §4.10); nil if the caller
	// never wires jump support (e.g. no album track loaded).
	JumpPattern NextPatternFunc

	// AudioUnits holds the per-channel-selectable AudioUnit wrappers used by
	// control-variable-set events ("force", "pitch", ...) to drive
	// AudioUnit.Apply's binding fan-out (spec.md §4.6), keyed the same way
	// as Mixer entries ("au_XX"). May be nil/partial if the caller only
	// wants the bare device graph wired, skipping control-variable support.
	AudioUnits map[string]*audiounit.AudioUnit

	pattern *Pattern
	cursors [MaxColumns]*cursor

	rand *expr.LCGRandom
	log  *slog.Logger
}

// NewPlayer wires a Player from its components. randomSeed seeds the
// expression evaluator's rand() stream (spec.md §5's module random_seed).
func NewPlayer(audioRate, bufSize, numChannels int, mp *MasterParams, pool *voice.Pool,
	engine *event.Engine, conn *device.Connections, randomSeed uint64) *Player {
	chans := make([]*voice.Channel, numChannels)
	for i := range chans {
		chans[i] = voice.NewChannel(i)
	}
	p := &Player{
		MP:          mp,
		Mixer:       NewMixer(),
		Pool:        pool,
		Channels:    chans,
		Engine:      engine,
		Connections: conn,
		AudioRate:   audioRate,
		BufSize:     bufSize,
		rand:        expr.NewLCGRandom(randomSeed),
		log:         logging.ForService("player"),
	}
	p.registerEvents()
	return p
}

// SetPattern installs pat as the pattern currently being played and resets
// every column cursor to its start.
func (p *Player) SetPattern(pat *Pattern) {
	p.pattern = pat
	for i := range p.cursors {
		p.cursors[i] = newCursor(pat.Columns[i])
	}
}

// registerEvents installs the event handlers Pattern_mix needs to exercise
// the voice pool, master transport, and control-variable fan-out end to
// end: note on/off (spec.md §4.8), master tempo/volume/jump/pause (§4.10),
// and channel carry flags plus the "force"/"pitch" control-variable set
// events routed through AudioUnit.Apply (§4.6).
//
// Deliberately NOT wired here, and scoped out of this revision (see
// DESIGN.md): vibrato/tremolo/autowah and arpeggio, which need a per-channel
// continuous control stream stepped every sample rather than a one-shot
// trigger; c.gen/c.eff/c.dsp sub-device addressing; and the generic
// i.set/p.set/e.set/d.set control-variable protocol, which spec.md's own
// event table models as a bare ValueNone trigger with no (name, value) pair
// to carry a control variable's name alongside its value. "force"/"pitch"
// are wired directly instead, as the two control variables every AudioUnit
// is guaranteed to expose.
func (p *Player) registerEvents() {
	p.Engine.Register("n+", func(chNum int, _ string, arg project.Value) error {
		p.noteOn(chNum, arg.Float)
		return nil
	})
	p.Engine.Register("n-", func(chNum int, _ string, _ project.Value) error {
		p.noteOff(chNum)
		return nil
	})

	p.Engine.Register("mtempo", func(_ int, _ string, arg project.Value) error {
		p.MP.SetTempo(arg.Float)
		return nil
	})
	p.Engine.Register("m/tempo", func(_ int, _ string, arg project.Value) error {
		p.MP.SlideTempo(arg.Float, defaultSlideLength, control.SlideLinear)
		return nil
	})
	p.Engine.Register("mvol", func(_ int, _ string, arg project.Value) error {
		p.MP.Volume.SetValue(arg.Float)
		return nil
	})
	p.Engine.Register("m/vol", func(_ int, _ string, arg project.Value) error {
		p.MP.Volume.Slide(arg.Float, defaultSlideLength, control.SlideLinear)
		return nil
	})
	p.Engine.Register("goto.set", func(_ int, _ string, arg project.Value) error {
		p.MP.SetJumpTarget(int(arg.Pat.Pattern))
		return nil
	})
	p.Engine.Register("mj.row", func(_ int, _ string, arg project.Value) error {
		p.MP.SetJumpRow(arg.Ts)
		return nil
	})
	p.Engine.Register("mjump", func(_ int, _ string, _ project.Value) error {
		p.MP.TriggerJump()
		return nil
	})
	p.Engine.Register("goto", func(_ int, _ string, _ project.Value) error {
		p.MP.TriggerJump()
		return nil
	})
	p.Engine.Register("pause", func(_ int, _ string, _ project.Value) error {
		p.MP.Paused = true
		return nil
	})
	p.Engine.Register("resume", func(_ int, _ string, _ project.Value) error {
		p.MP.Paused = false
		return nil
	})

	p.Engine.Register("cpitch.carry", func(chNum int, _ string, arg project.Value) error {
		if chNum >= 0 && chNum < len(p.Channels) {
			p.Channels[chNum].CarryPitch = arg.Bool
		}
		return nil
	})
	p.Engine.Register("cforce.carry", func(chNum int, _ string, arg project.Value) error {
		if chNum >= 0 && chNum < len(p.Channels) {
			p.Channels[chNum].CarryForce = arg.Bool
		}
		return nil
	})

	p.Engine.Register("force", func(chNum int, _ string, arg project.Value) error {
		p.applyControlVar(chNum, "force", arg)
		return nil
	})
	p.Engine.Register("pitch", func(chNum int, _ string, arg project.Value) error {
		p.applyControlVar(chNum, "pitch", arg)
		return nil
	})
}

// applyControlVar routes a channel-scoped control-variable set event through
// the active audio unit's AudioUnit.Apply (spec.md §4.6's binding fan-out),
// delivering each resolved binding straight to its target kernel's
// SetParam. A channel with no AudioUnits entry (bare device-graph callers
// that skip control-variable wiring) or no active audio unit is a no-op.
func (p *Player) applyControlVar(chNum int, name string, arg project.Value) {
	if chNum < 0 || chNum >= len(p.Channels) {
		return
	}
	ch := p.Channels[chNum]
	au := p.AudioUnits[ch.ActiveAudioUnit]
	if au == nil {
		return
	}
	setter := func(targetDevice, targetVar string, value project.Value) error {
		entry := p.Mixer.Entry(targetDevice)
		if entry == nil || entry.Kernel == nil {
			return nil
		}
		return entry.Kernel.SetParam(targetVar, value.Float)
	}
	if err := au.Apply(name, arg, setter); err != nil && p.log != nil {
		p.log.Warn("control variable apply failed", "name", name, "error", err)
	}
}

func (p *Player) noteOn(chNum int, pitch float64) {
	if chNum < 0 || chNum >= len(p.Channels) {
		return
	}
	ch := p.Channels[chNum]
	entry := p.Mixer.Entry(ch.ActiveAudioUnit)
	if entry == nil || entry.Kernel == nil {
		return
	}
	v := p.Pool.GetVoice()
	if v == nil {
		return
	}
	// SetParam before Init: VStateInit snapshots the kernel's current
	// parameters into the voice's Ext at init time, so the pitch must
	// already be set on the (shared) kernel instance before it runs.
	_ = entry.Kernel.SetParam("p_pitch", pitch)
	groupID := v.ID + 1
	v.Init(groupID, chNum, entry.Kernel, entry.State)
	v.RandP = p.rand
	v.RandS = p.rand
	_ = ch.SetForeground(0, v)
}

func (p *Player) noteOff(chNum int) {
	if chNum < 0 || chNum >= len(p.Channels) {
		return
	}
	if v := p.Channels[chNum].Foreground(0); v != nil {
		v.State.NoteOn = false
		v.State.NoteOffPos = v.State.Pos
	}
}

// Mix advances transport until nframes samples have been produced or
// playback stops, per spec.md §4.10's Pattern_mix. Returns the number of
// frames actually mixed.
func (p *Player) Mix(nframes int) (int, error) {
	if p.MP.Paused {
		return 0, nil
	}
	mixed := 0
	offset := 0
	for mixed < nframes && p.pattern != nil {
		remaining := nframes - mixed
		tempo := p.MP.Tempo.Value()
		if tempo <= 0 {
			break
		}

		windowBeats := float64(remaining) * tempo / (60.0 * float64(p.AudioRate))
		limit := p.MP.Pos.Add(tstamp.FromFloat(windowBeats))
		if limit.Cmp(p.pattern.Length) > 0 {
			limit = p.pattern.Length
		}
		if gn, ok := p.cursors[0].peek(); ok && gn.Pos.Cmp(p.MP.Pos) > 0 && gn.Pos.Cmp(limit) < 0 {
			limit = gn.Pos
		}

		p.fireDue(p.MP.Pos)

		if p.MP.TakeJump() {
			if p.JumpPattern == nil {
				break
			}
			next := p.JumpPattern(p.MP)
			if next == nil {
				break
			}
			p.SetPattern(next)
			continue
		}

		windowFrames := int(limit.Sub(p.MP.Pos).Frames(float64(p.AudioRate), tempo))
		if windowFrames > remaining {
			windowFrames = remaining
		}
		if windowFrames < 0 {
			windowFrames = 0
		}

		if windowFrames > 0 {
			start, stop := offset, offset+windowFrames
			p.Mixer.MixVoices(p.Pool, p.BufSize, start, stop, tempo)
			p.Mixer.MixGraph(p.Connections, start, stop, tempo)
			p.Pool.Sweep()
			offset += windowFrames
			mixed += windowFrames
		}

		p.MP.Pos = limit
		if p.MP.Pos.Cmp(p.pattern.Length) >= 0 {
			if !p.endOfPattern() {
				break
			}
		} else if windowFrames == 0 {
			// No frames could be produced and the pattern hasn't ended:
			// avoid spinning forever on a degenerate (zero-tempo-adjacent)
			// window.
			break
		}
	}
	if p.MP.metrics != nil {
		p.MP.metrics.FramesMixed.Add(float64(mixed))
		if mixed < nframes {
			p.MP.metrics.XrunsTotal.Inc()
		}
		p.MP.metrics.ActiveVoices.Set(float64(len(p.Pool.Active())))
	}
	return mixed, nil
}

// fireDue triggers every column entry at exactly pos, global column first
// (spec.md §5's "events at the same Tstamp fire in column order, global
// column first").
func (p *Player) fireDue(pos tstamp.Tstamp) {
	for ci, cur := range p.cursors {
		for {
			e, ok := cur.peek()
			if !ok || e.Pos.Cmp(pos) != 0 {
				break
			}
			p.fireTrigger(ci-1, e.Trigger)
			cur.advance()
		}
	}
}

// fireTrigger parses a Column entry's argument (const or expression) and
// dispatches it through the event engine. Channel -1 denotes the global
// column (spec.md §3's column 0); such events are delivered to the engine
// on channel 0 with master-level handlers distinguishing them by Kind.
func (p *Player) fireTrigger(chNum int, t Trigger) {
	if chNum < 0 {
		chNum = 0
	}
	info, known := event.Lookup(t.Name)
	if !known {
		return
	}
	var arg project.Value
	var err error
	if t.IsConst {
		arg, err = event.Coerce(info.ValueType, t.Const)
	} else {
		arg, err = event.ParseExpr(info.ValueType, t.Expr, expr.MapEnv{}, project.None, p.rand)
	}
	if err != nil {
		if p.log != nil {
			p.log.Warn("trigger argument error", "name", t.Name, "error", err)
		}
		return
	}
	_ = p.Engine.Trigger(chNum, t.Name, arg)
}

// endOfPattern applies spec.md §4.10's "at pat.length" behavior and reports
// whether playback should continue.
func (p *Player) endOfPattern() bool {
	switch p.MP.Mode {
	case PlayModeLoopPattern:
		p.MP.Pos = tstamp.Zero
		for i := range p.cursors {
			p.cursors[i] = newCursor(p.pattern.Columns[i])
		}
		return true
	case PlayModeOncePattern:
		return false
	default:
		if p.NextPattern == nil {
			return false
		}
		next := p.NextPattern(p.MP)
		if next == nil {
			return false
		}
		p.SetPattern(next)
		p.MP.Pos = tstamp.Zero
		return true
	}
}
