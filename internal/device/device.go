// Package device implements the typed-port Device graph described in
// spec.md §3/§4.5: AudioUnit and Processor nodes connected by a cycle-free
// Connections graph, mixed via a topological post-order traversal.
package device

import (
	"github.com/google/uuid"
	kqterrors "github.com/kunquat/kqsynth/internal/errors"
)

// MaxPorts is KQT_DEVICE_PORTS_MAX.
const MaxPorts = 64

// Kind distinguishes the two device shapes.
type Kind int

const (
	KindProcessor Kind = iota
	KindAudioUnit
)

// Device is a node with a stable numeric id and existing input/output ports.
type Device struct {
	ID          int
	UUID        uuid.UUID // stable external identifier, echoed to callers
	Kind        Kind
	MixedSignal bool
	InPorts     [MaxPorts]bool
	OutPorts    [MaxPorts]bool
}

// NewDevice creates a Device with the given stable id.
func NewDevice(id int, kind Kind) *Device {
	return &Device{ID: id, UUID: uuid.New(), Kind: kind}
}

// AddInPort marks input port p as existing.
func (d *Device) AddInPort(p int) error {
	if p < 0 || p >= MaxPorts {
		return portRangeErr(p)
	}
	d.InPorts[p] = true
	return nil
}

// AddOutPort marks output port p as existing.
func (d *Device) AddOutPort(p int) error {
	if p < 0 || p >= MaxPorts {
		return portRangeErr(p)
	}
	d.OutPorts[p] = true
	return nil
}

func portRangeErr(p int) error {
	return kqterrors.Newf("port %d out of range [0,%d)", p, MaxPorts).
		Component("device").Category(kqterrors.CategoryArgument).Build()
}
