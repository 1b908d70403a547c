// Package kqt implements the engine's public Handle API (spec.md §6): a
// C-like surface — new_handle/set_data/validate/set_mixing_rate/mix/
// get_buffer/fire/get_error — backing every internal package (device,
// state, voice, event, player) behind one object callers drive without
// touching internal types directly.
package kqt

import (
	"encoding/json"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kunquat/kqsynth/internal/event"
	kqterrors "github.com/kunquat/kqsynth/internal/errors"
	"github.com/kunquat/kqsynth/internal/expr"
	"github.com/kunquat/kqsynth/internal/player"
	"github.com/kunquat/kqsynth/internal/project"
	"github.com/kunquat/kqsynth/internal/state"
)

// Options seeds a Handle's timing and resource parameters; the Handle API
// itself takes no constructor arguments (spec.md §6's new_handle() takes
// none), so a caller that wants non-default sizing passes Options here —
// cmd/kqtplay derives these from internal/conf.Settings, keeping this
// package itself free of config-file I/O.
type Options struct {
	AudioRate     int
	BufferSize    int
	PoolSize      int
	DefaultTempo  float64
	DefaultVolume float64
	RandomSeed    uint64
}

// DefaultOptions mirrors internal/conf's embedded config.yaml defaults.
func DefaultOptions() Options {
	return Options{
		AudioRate:     48000,
		BufferSize:    2048,
		PoolSize:      256,
		DefaultTempo:  120.0,
		DefaultVolume: 1.0,
		RandomSeed:    0,
	}
}

// Handle is the engine's single entry point: raw key/value project data in,
// mixed audio out.
type Handle struct {
	opts Options
	data map[string][]byte

	audioRate int
	bufSize   int

	validated bool
	lastErr   error

	metrics     *player.Metrics
	player      *player.Player
	masterState *state.DeviceState
	patterns    map[string]*player.Pattern
	track       []string
	randSrc     *expr.LCGRandom
}

// NewHandle creates an unvalidated Handle; call SetData for every project
// key, then Validate, before Mix.
func NewHandle(opts Options) *Handle {
	if opts.AudioRate <= 0 {
		opts = DefaultOptions()
	}
	m, err := player.NewMetrics(prometheus.NewRegistry())
	if err != nil {
		// Collector registration on a fresh, private registry cannot fail
		// from duplicate names; any other failure means client_golang
		// itself rejected the metric definitions, a programming error.
		panic(fmt.Sprintf("kqt: metrics registration failed: %v", err))
	}
	return &Handle{
		opts:      opts,
		data:      make(map[string][]byte),
		audioRate: opts.AudioRate,
		bufSize:   opts.BufferSize,
		metrics:   m,
		randSrc:   expr.NewLCGRandom(opts.RandomSeed),
	}
}

// SetData stores the raw bytes for one project key (spec.md §6's
// set_data(h, key, bytes, len)). Keys take effect on the next Validate.
func (h *Handle) SetData(key string, data []byte) error {
	if key == "" {
		return h.fail(kqterrors.Newf("set_data: empty key").
			Component("kqt").Category(kqterrors.CategoryArgument).Build())
	}
	buf := make([]byte, len(data))
	copy(buf, data)
	h.data[key] = buf
	h.validated = false
	return nil
}

// SetMixingRate changes the audio rate applied on the next Validate (the
// running graph, if any, keeps its previous rate until re-validated —
// spec.md §6 describes set/get_mixing_rate as a handle-level setting, not a
// live resample).
func (h *Handle) SetMixingRate(rate int) error {
	if rate <= 0 {
		return h.fail(kqterrors.Newf("set_mixing_rate: rate must be positive, got %d", rate).
			Component("kqt").Category(kqterrors.CategoryArgument).Build())
	}
	h.audioRate = rate
	return nil
}

// GetMixingRate returns the handle's current audio rate.
func (h *Handle) GetMixingRate() int { return h.audioRate }

// Mix renders up to nframes frames (spec.md §6's mix(h, nframes)). Mixing
// before a successful Validate is an argument error, per spec.md §7.
func (h *Handle) Mix(nframes int) (int, error) {
	if !h.validated || h.player == nil {
		return 0, h.fail(kqterrors.Newf("mix: handle not validated").
			Component("kqt").Category(kqterrors.CategoryArgument).Build())
	}
	if nframes < 0 {
		return 0, h.fail(kqterrors.Newf("mix: nframes must be >= 0, got %d", nframes).
			Component("kqt").Category(kqterrors.CategoryArgument).Build())
	}
	mixed, err := h.player.Mix(nframes)
	if err != nil {
		return mixed, h.fail(err)
	}
	if h.metrics != nil {
		h.metrics.Observe(h.bufferSamples(0, mixed))
	}
	return mixed, nil
}

// GetBuffer returns the master output samples for channel ch (0 = left,
// 1 = right) produced by the most recent Mix call (spec.md §6's
// get_buffer(h, ch)).
func (h *Handle) GetBuffer(ch int) []float32 {
	return h.bufferSamples(ch, h.bufSize)
}

func (h *Handle) bufferSamples(ch, n int) []float32 {
	if h.masterState == nil {
		return nil
	}
	ab := h.masterState.Buffer(state.PortIn, ch)
	if ab == nil {
		return nil
	}
	wb, err := ab.Channel(0)
	if err != nil {
		return nil
	}
	contents := wb.GetContents()
	if n < 0 || n > len(contents) {
		n = len(contents)
	}
	return contents[:n]
}

// Fire dispatches one event (spec.md §6's fire(h, ch, event_json)): a JSON
// array `["EventName", argument]`, argument either a literal matching the
// event's declared type or a quoted expression string.
func (h *Handle) Fire(chNum int, eventJSON string) error {
	if !h.validated || h.player == nil {
		return h.fail(kqterrors.Newf("fire: handle not validated").
			Component("kqt").Category(kqterrors.CategoryArgument).Build())
	}
	var raw []json.RawMessage
	if err := json.Unmarshal([]byte(eventJSON), &raw); err != nil || len(raw) != 2 {
		return h.fail(kqterrors.Newf("fire: malformed event_json %q", eventJSON).
			Component("kqt").Category(kqterrors.CategoryFormat).Build())
	}
	var name string
	if err := json.Unmarshal(raw[0], &name); err != nil {
		return h.fail(kqterrors.New(err).Component("kqt").Category(kqterrors.CategoryFormat).Build())
	}
	arg, err := h.decodeTriggerArg(name, raw[1])
	if err != nil {
		return h.fail(err)
	}
	if err := h.player.Engine.Trigger(chNum, name, arg); err != nil {
		return h.fail(err)
	}
	return nil
}

// GetError returns the last operation's diagnostic, or "" if none (spec.md
// §6's get_error(h)).
func (h *Handle) GetError() string {
	if h.lastErr == nil {
		return ""
	}
	return h.lastErr.Error()
}

func (h *Handle) fail(err error) error {
	h.lastErr = err
	return err
}

// decodeTriggerArg parses a fire() argument per spec.md §6: either a
// literal matching the event's declared type, or a quoted expression
// string evaluated against an empty environment.
func (h *Handle) decodeTriggerArg(name string, raw json.RawMessage) (project.Value, error) {
	info, ok := event.Lookup(name)
	if !ok {
		return project.None, kqterrors.Newf("fire: unknown event %q", name).
			Component("kqt").Category(kqterrors.CategoryFormat).Context("name", name).Build()
	}

	var asString string
	if err := json.Unmarshal(raw, &asString); err == nil {
		if info.ValueType == event.ValueString {
			return project.StringVal(asString), nil
		}
		v, err := event.ParseExpr(info.ValueType, asString, expr.MapEnv{}, project.None, h.rand())
		if err != nil {
			return project.None, err
		}
		return v, nil
	}

	var asBool bool
	if err := json.Unmarshal(raw, &asBool); err == nil {
		return event.Coerce(info.ValueType, project.BoolVal(asBool))
	}

	var asFloat float64
	if err := json.Unmarshal(raw, &asFloat); err == nil {
		return event.Coerce(info.ValueType, project.FloatVal(asFloat))
	}

	if info.ValueType == event.ValueTstamp {
		var ts tstampJSON
		if err := json.Unmarshal(raw, &ts); err == nil {
			return project.TstampVal(ts.toTstamp()), nil
		}
	}
	if info.ValueType == event.ValuePatInstRef {
		var ref struct {
			Pattern  int `json:"pattern"`
			Instance int `json:"instance"`
		}
		if err := json.Unmarshal(raw, &ref); err == nil {
			return project.PatInstRefVal(project.PatInstRef{Pattern: ref.Pattern, Instance: ref.Instance}), nil
		}
	}

	var asNull any
	if err := json.Unmarshal(raw, &asNull); err == nil && asNull == nil {
		return event.Coerce(info.ValueType, project.None)
	}

	return project.None, kqterrors.Newf("fire: cannot parse argument for event %q", name).
		Component("kqt").Category(kqterrors.CategoryFormat).Context("name", name).Build()
}

func (h *Handle) rand() expr.Random { return h.randSrc }
