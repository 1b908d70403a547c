package event

import (
	"log/slog"

	kqterrors "github.com/kunquat/kqsynth/internal/errors"
	"github.com/kunquat/kqsynth/internal/expr"
	"github.com/kunquat/kqsynth/internal/logging"
	"github.com/kunquat/kqsynth/internal/project"
)

// maxRecursionDepth bounds cascaded-binding recursion (spec.md §4.9's
// "recursion is bounded by event cache").
const maxRecursionDepth = 32

// ringSize is the fixed capacity of each observer ring buffer.
const ringSize = 256

// Handler mutates channel/device/voice state for one event kind. Returning a
// non-nil error aborts only this trigger, not the containing render.
type Handler func(chNum int, name string, arg project.Value) error

// CondFrame is one entry in a channel's conditional-block stack
// (spec.md §9 "coroutine-like control flow").
type CondFrame struct {
	Active bool
}

// Record is one entry written to an observer ring buffer.
type Record struct {
	ChNum int
	Name  string
	Arg   project.Value
}

type ring struct {
	buf   []Record
	start int
	count int
}

func newRing(size int) *ring { return &ring{buf: make([]Record, size)} }

func (r *ring) push(rec Record) {
	idx := (r.start + r.count) % len(r.buf)
	r.buf[idx] = rec
	if r.count < len(r.buf) {
		r.count++
	} else {
		r.start = (r.start + 1) % len(r.buf)
	}
}

// Snapshot returns the ring's contents oldest-first.
func (r *ring) Snapshot() []Record {
	out := make([]Record, r.count)
	for i := 0; i < r.count; i++ {
		out[i] = r.buf[(r.start+i)%len(r.buf)]
	}
	return out
}

// Engine dispatches named events (spec.md §4.9). Handlers are registered by
// the caller (player/voice/audiounit wiring); Engine itself only knows event
// shape (name -> Kind/ValueType), the enabled-event filter, the Bind table,
// and the two observer ring buffers.
type Engine struct {
	handlers    map[string]Handler
	binds       *BindTable
	enabled     map[int]map[string]bool // per-channel filter; nil channel entry = all enabled
	cond        map[int][]CondFrame
	pendingCond map[int]bool

	general *ring
	tracker *ring

	log *slog.Logger
}

// NewEngine creates an Engine with the given Bind table (may be empty), with
// the cond/if/else/end_if control-flow handlers pre-registered.
func NewEngine(binds *BindTable) *Engine {
	if binds == nil {
		binds = NewBindTable()
	}
	e := &Engine{
		handlers:    make(map[string]Handler),
		binds:       binds,
		enabled:     make(map[int]map[string]bool),
		cond:        make(map[int][]CondFrame),
		pendingCond: make(map[int]bool),
		general:     newRing(ringSize),
		tracker:     newRing(ringSize),
		log:         logging.ForService("event"),
	}
	e.Register("cond", e.handleCond)
	e.Register("if", e.handleIf)
	e.Register("else", e.handleElse)
	e.Register("end_if", e.handleEndIf)
	return e
}

// handleCond records the boolean that the next "if" will open its frame
// with (spec.md §9's coroutine-like control flow).
func (e *Engine) handleCond(chNum int, _ string, arg project.Value) error {
	e.pendingCond[chNum] = arg.Bool
	return nil
}

// handleIf opens a new conditional frame. A frame nested inside an inactive
// parent stays inactive regardless of the new condition.
func (e *Engine) handleIf(chNum int, _ string, _ project.Value) error {
	active := e.CondActive(chNum) && e.pendingCond[chNum]
	e.PushCond(chNum, active)
	return nil
}

// handleElse flips the innermost frame, but only when its enclosing parent
// is active (an else under a dead parent stays dead).
func (e *Engine) handleElse(chNum int, _ string, _ project.Value) error {
	stack := e.cond[chNum]
	if len(stack) == 0 {
		return nil
	}
	parentActive := true
	if len(stack) > 1 {
		parentActive = stack[len(stack)-2].Active
	}
	stack[len(stack)-1].Active = parentActive && !stack[len(stack)-1].Active
	return nil
}

func (e *Engine) handleEndIf(chNum int, _ string, _ project.Value) error {
	e.PopCond(chNum)
	return nil
}

// Register installs the handler invoked for events named name.
func (e *Engine) Register(name string, h Handler) {
	e.handlers[name] = h
}

// SetEnabled restricts which events fire on a channel; omit a channel to
// leave every known event enabled there.
func (e *Engine) SetEnabled(chNum int, name string, on bool) {
	m, ok := e.enabled[chNum]
	if !ok {
		m = make(map[string]bool)
		e.enabled[chNum] = m
	}
	m[name] = on
}

func (e *Engine) isEnabled(chNum int, name string) bool {
	m, ok := e.enabled[chNum]
	if !ok {
		return true
	}
	v, ok := m[name]
	if !ok {
		return true
	}
	return v
}

// CondActive reports whether chNum's top-of-stack conditional frame is
// active (an empty stack is always active).
func (e *Engine) CondActive(chNum int) bool {
	stack := e.cond[chNum]
	if len(stack) == 0 {
		return true
	}
	return stack[len(stack)-1].Active
}

// PushCond pushes a new conditional frame.
func (e *Engine) PushCond(chNum int, active bool) {
	e.cond[chNum] = append(e.cond[chNum], CondFrame{Active: active})
}

// PopCond pops the innermost conditional frame, if any.
func (e *Engine) PopCond(chNum int) {
	stack := e.cond[chNum]
	if len(stack) == 0 {
		return
	}
	e.cond[chNum] = stack[:len(stack)-1]
}

// Trigger processes one event per spec.md §4.9's four steps. Top-level
// callers pass depth 0; cascaded bindings recurse with depth+1.
func (e *Engine) Trigger(chNum int, name string, arg project.Value) error {
	return e.trigger(chNum, name, arg, 0)
}

func (e *Engine) trigger(chNum int, name string, arg project.Value, depth int) error {
	if depth > maxRecursionDepth {
		return kqterrors.Newf("event cascade exceeds recursion depth %d", maxRecursionDepth).
			Component("event").Category(kqterrors.CategoryArgument).Context("name", name).Build()
	}
	info, known := Lookup(name)
	if !known {
		return kqterrors.Newf("unknown event %q", name).
			Component("event").Category(kqterrors.CategoryFormat).Context("name", name).Build()
	}
	if !e.isEnabled(chNum, name) {
		return nil
	}
	if info.Kind == KindGeneral && name != "cond" && name != "if" && name != "else" && name != "end_if" && !e.CondActive(chNum) {
		return nil
	}

	if h, ok := e.handlers[name]; ok {
		if err := h(chNum, name, arg); err != nil {
			if e.log != nil {
				e.log.Warn("event handler failed", "name", name, "channel", chNum, "error", err)
			}
			return err
		}
	}

	rec := Record{ChNum: chNum, Name: name, Arg: arg}
	e.general.push(rec)
	e.tracker.push(rec)

	// A binding's TargetExpr, when set, is evaluated with $ bound to the
	// source argument (empty environment, no Random source) and coerced to
	// the target event's type; otherwise the source argument is forwarded.
	for _, b := range e.binds.Matching(name, arg) {
		targetCh := chNum + b.ChOffset
		targetArg := arg
		if info, ok := Lookup(b.TargetName); ok && b.TargetExpr != "" {
			v, err := ParseExpr(info.ValueType, b.TargetExpr, expr.MapEnv{}, arg, nil)
			if err != nil {
				return err
			}
			targetArg = v
		}
		if err := e.trigger(targetCh, b.TargetName, targetArg, depth+1); err != nil {
			return err
		}
	}
	return nil
}

// GeneralLog returns a snapshot of the external-observer event buffer.
func (e *Engine) GeneralLog() []Record { return e.general.Snapshot() }

// TrackerLog returns a snapshot of the UI-echo tracker buffer.
func (e *Engine) TrackerLog() []Record { return e.tracker.Snapshot() }
