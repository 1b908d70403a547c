// Package audiounit implements AudioUnit (spec.md §4.6): a composite device
// owning a Processor table, nested AudioUnits, parameter envelopes, and a
// control-variable table bound to target devices through expression or
// linear-map transforms.
package audiounit

import (
	"github.com/kunquat/kqsynth/internal/device"
	"github.com/kunquat/kqsynth/internal/envelope"
	kqterrors "github.com/kunquat/kqsynth/internal/errors"
	"github.com/kunquat/kqsynth/internal/expr"
	"github.com/kunquat/kqsynth/internal/processor"
	"github.com/kunquat/kqsynth/internal/project"
)

const (
	MaxProcessors = 64
	MaxAudioUnits = 64
)

// Envelopes holds the parameter envelopes an AudioUnit owns (spec.md §3):
// force->volume, force->filter, force->pitch, pitch->pan, and time envelopes
// for force/filter.
type Envelopes struct {
	ForceVolume *envelope.Envelope
	ForceFilter *envelope.Envelope
	ForcePitch  *envelope.Envelope
	PitchPan    *envelope.Envelope
	TimeForce   *envelope.Envelope
	TimeFilter  *envelope.Envelope
}

// AudioUnit is a composite device (spec.md §4.6).
type AudioUnit struct {
	Device      *device.Device
	Processors  map[int]*ProcessorSlot
	SubUnits    map[int]*AudioUnit
	Connections *device.Connections
	Envelopes   Envelopes
	ControlVars map[string]*ControlVar

	InInterface  *device.Device // mirrors the unit's external input ports
	OutInterface *device.Device // mirrors the unit's external output ports
	Bypass       bool
}

// ProcessorSlot binds a Processor device to its kernel implementation.
type ProcessorSlot struct {
	Device *device.Device
	Kernel processor.Kernel
}

// New creates an empty AudioUnit at the given device id.
func New(id int) *AudioUnit {
	d := device.NewDevice(id, device.KindAudioUnit)
	return &AudioUnit{
		Device:       d,
		Processors:   make(map[int]*ProcessorSlot),
		SubUnits:     make(map[int]*AudioUnit),
		Connections:  device.NewConnections(device.LevelAudioUnitInternal),
		ControlVars:  make(map[string]*ControlVar),
		InInterface:  device.NewDevice(-1, device.KindProcessor),
		OutInterface: device.NewDevice(-2, device.KindProcessor),
	}
}

// AddProcessor installs a processor slot at index idx.
func (au *AudioUnit) AddProcessor(idx int, d *device.Device, k processor.Kernel) error {
	if idx < 0 || idx >= MaxProcessors {
		return kqterrors.Newf("processor index %d out of range [0,%d)", idx, MaxProcessors).
			Component("audiounit").Category(kqterrors.CategoryArgument).Build()
	}
	au.Processors[idx] = &ProcessorSlot{Device: d, Kernel: k}
	return nil
}

// AddSubUnit installs a nested audio unit at index idx.
func (au *AudioUnit) AddSubUnit(idx int, sub *AudioUnit) error {
	if idx < 0 || idx >= MaxAudioUnits {
		return kqterrors.Newf("audio unit index %d out of range [0,%d)", idx, MaxAudioUnits).
			Component("audiounit").Category(kqterrors.CategoryArgument).Build()
	}
	au.SubUnits[idx] = sub
	return nil
}

// CVType is the declared type of a control variable.
type CVType int

const (
	CVBool CVType = iota
	CVInt
	CVFloat
	CVFloatSlide
	CVTstamp
)

// Binding describes one control-variable binding target (spec.md §4.6).
type Binding struct {
	TargetDevice string // "au_XX" or "proc_XX"
	TargetVar    string
	Expr         string  // non-empty for expression transforms, $ bound to source value
	MapMinTo     float64 // used only when Expr == "" (float_slide -> float linear map)
	MapMaxTo     float64
}

// ControlVar is one entry in an AudioUnit's control-variable table.
type ControlVar struct {
	Name     string
	Type     CVType
	Initial  project.Value
	Min, Max float64 // meaningful only for CVFloatSlide
	Bindings []Binding
}

// AddControlVar installs a control variable definition.
func (au *AudioUnit) AddControlVar(cv *ControlVar) {
	au.ControlVars[cv.Name] = cv
}

// TargetSetter receives the resolved value for one binding's target
// (device, var-name) pair, delegating to the target device's control-
// variable API (set/slide/osc-depth/osc-speed/init).
type TargetSetter func(targetDevice, targetVar string, value project.Value) error

// Apply computes each binding's target value for a control-variable update
// and delegates to setter, per spec.md §4.6.
func (au *AudioUnit) Apply(name string, source project.Value, setter TargetSetter) error {
	cv, ok := au.ControlVars[name]
	if !ok {
		return kqterrors.Newf("unknown control variable %q", name).
			Component("audiounit").Category(kqterrors.CategoryArgument).Context("name", name).Build()
	}
	for _, b := range cv.Bindings {
		target, err := resolveBinding(cv, b, source)
		if err != nil {
			return err
		}
		if err := setter(b.TargetDevice, b.TargetVar, target); err != nil {
			return err
		}
	}
	return nil
}

func resolveBinding(cv *ControlVar, b Binding, source project.Value) (project.Value, error) {
	if b.Expr != "" {
		env := expr.MapEnv{}
		v, err := expr.Eval(b.Expr, env, source, nil)
		if err != nil {
			return project.None, err
		}
		return v, nil
	}
	if cv.Type != CVFloatSlide {
		return project.None, kqterrors.Newf("linear-map binding requires a float_slide source").
			Component("audiounit").Category(kqterrors.CategoryFormat).Build()
	}
	if cv.Max == cv.Min {
		return project.FloatVal(b.MapMinTo), nil
	}
	t := (source.Float - cv.Min) / (cv.Max - cv.Min)
	mapped := b.MapMinTo + t*(b.MapMaxTo-b.MapMinTo)
	return project.FloatVal(mapped), nil
}
