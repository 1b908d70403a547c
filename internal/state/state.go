// Package state implements the transient per-device and per-voice rendering
// state described in spec.md §3: DeviceState, VoiceState, and the tables that
// map device/voice ids to their state, resized when the handle's audio rate
// or buffer size changes.
package state

import (
	"sync"

	"github.com/kunquat/kqsynth/internal/buffer"
	kqterrors "github.com/kunquat/kqsynth/internal/errors"
)

// PortKind distinguishes a device-state buffer's direction.
type PortKind int

const (
	PortIn PortKind = iota
	PortOut
)

type portKey struct {
	kind PortKind
	num  int
}

// DeviceState is the transient per-device data keyed by device id (spec.md
// §3 "DeviceState"): audio_rate, audio_buffer_size, and one audio buffer per
// registered (port_type, port_num) pair.
type DeviceState struct {
	DeviceID        int
	AudioRate       int
	AudioBufferSize int

	mu      sync.Mutex
	buffers map[portKey]*buffer.AudioBuffer
}

// NewDeviceState creates empty state for a device; buffers are added with
// AddBuffer once the device's connected ports are known.
func NewDeviceState(deviceID, audioRate, bufSize int) *DeviceState {
	return &DeviceState{
		DeviceID:        deviceID,
		AudioRate:       audioRate,
		AudioBufferSize: bufSize,
		buffers:         make(map[portKey]*buffer.AudioBuffer),
	}
}

// AddBuffer registers an audio buffer for (kind, port) with the given
// channel count, sized to the state's current AudioBufferSize.
func (ds *DeviceState) AddBuffer(kind PortKind, port, channels int) {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	ds.buffers[portKey{kind, port}] = buffer.NewAudioBuffer(channels, ds.AudioBufferSize)
}

// Buffer returns the buffer registered for (kind, port), or nil if none was
// added (the port carries no signal this block — callers treat this as
// silence per spec.md §4.1's "skip ports that produced no output").
func (ds *DeviceState) Buffer(kind PortKind, port int) *buffer.AudioBuffer {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	return ds.buffers[portKey{kind, port}]
}

// Resize changes the audio buffer size for every registered port, keeping
// invariant 4 (every device-state buffer's length equals the handle's
// current audio buffer size).
func (ds *DeviceState) Resize(bufSize int) {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	ds.AudioBufferSize = bufSize
	for _, ab := range ds.buffers {
		_ = ab.Resize(bufSize)
	}
}

// SetAudioRate updates the rate recorded for timing-sensitive kernels.
func (ds *DeviceState) SetAudioRate(rate int) {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	ds.AudioRate = rate
}

// VoiceState is the per-voice transient rendering state (spec.md §3): the
// common fields every kernel needs plus an opaque per-kernel extension slot.
type VoiceState struct {
	Active       bool
	NoteOn       bool
	NoteOffPos   int64
	KeepAliveStop int64
	Pos          int64

	// Ext holds kernel-specific extension data (filter history, oscillator
	// phase, envelope cursors, arpeggio state, stream controls). Re-architected
	// per spec.md §9 as an interface{} slot rather than a manually-managed
	// largest-variant buffer; a kernel that needs per-voice scratch type-asserts
	// this to its own state struct, set once in vstate_init.
	Ext any
}

// Reset clears a VoiceState for reuse on a new note-on, preserving Ext's
// backing allocation by leaving it to the kernel's vstate_init to overwrite.
func (vs *VoiceState) Reset() {
	vs.Active = true
	vs.NoteOn = true
	vs.NoteOffPos = -1
	vs.KeepAliveStop = -1
	vs.Pos = 0
}

// Deactivate marks the voice inactive; callers (voice pool) return it to the
// free list on the next sweep.
func (vs *VoiceState) Deactivate() {
	vs.Active = false
}

// Tables owns the DeviceState map for a handle, keyed by device id.
type Tables struct {
	mu      sync.Mutex
	devices map[int]*DeviceState
}

// NewTables creates an empty device-state table.
func NewTables() *Tables {
	return &Tables{devices: make(map[int]*DeviceState)}
}

// Create allocates and registers DeviceState for a device id, erroring if one
// already exists (Resource_manager.go idiom: explicit duplicate-id check).
func (t *Tables) Create(deviceID, audioRate, bufSize int) (*DeviceState, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, exists := t.devices[deviceID]; exists {
		return nil, kqterrors.Newf("device state %d already exists", deviceID).
			Component("state").Category(kqterrors.CategoryArgument).Context("device_id", deviceID).Build()
	}
	ds := NewDeviceState(deviceID, audioRate, bufSize)
	t.devices[deviceID] = ds
	return ds, nil
}

// Get returns the DeviceState for deviceID, or nil if none exists.
func (t *Tables) Get(deviceID int) *DeviceState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.devices[deviceID]
}

// Remove destroys device state (Lifecycle: "destroyed with the device").
func (t *Tables) Remove(deviceID int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.devices, deviceID)
}

// ResizeAll resizes every tracked device's buffers, used when the handle's
// audio buffer size changes globally.
func (t *Tables) ResizeAll(bufSize int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, ds := range t.devices {
		ds.Resize(bufSize)
	}
}
