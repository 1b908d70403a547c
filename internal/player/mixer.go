package player

import (
	"github.com/kunquat/kqsynth/internal/buffer"
	"github.com/kunquat/kqsynth/internal/device"
	"github.com/kunquat/kqsynth/internal/processor"
	"github.com/kunquat/kqsynth/internal/state"
	"github.com/kunquat/kqsynth/internal/voice"
)

// DeviceEntry binds a graph node name to the concrete Device, its transient
// DeviceState, and (for Processor nodes) the Kernel driving it.
type DeviceEntry struct {
	Dev    *device.Device
	State  *state.DeviceState
	Kernel processor.Kernel
}

// Mixer performs the per-block render_mixed traversal over a Connections
// graph (spec.md §4.5's "topologically ordered render_mixed calls") and the
// voice-render summation step (spec.md §2's data-flow steps 3-5). It is a
// separate package from internal/device because it must see both the device
// graph and the processor/voice packages, which would otherwise cycle back
// through internal/audiounit -> internal/device.
type Mixer struct {
	entries map[string]*DeviceEntry
}

// NewMixer creates an empty Mixer.
func NewMixer() *Mixer {
	return &Mixer{entries: make(map[string]*DeviceEntry)}
}

// Register binds a graph node name to its device/state/kernel triple.
func (m *Mixer) Register(name string, e *DeviceEntry) {
	m.entries[name] = e
}

// Entry returns the registered entry for name, or nil.
func (m *Mixer) Entry(name string) *DeviceEntry { return m.entries[name] }

// sumInputs clears then sums every source feeding each used input port of n
// into n's own DeviceState input buffers.
func (m *Mixer) sumInputs(n *device.Node, entry *DeviceEntry, start, stop int) {
	for _, port := range n.InPortsUsed() {
		inAB := entry.State.Buffer(state.PortIn, port)
		if inAB == nil {
			continue
		}
		inWB, err := inAB.Channel(0)
		if err != nil {
			continue
		}
		inWB.Clear(start, stop)
		for _, src := range n.Sources(port) {
			srcEntry := m.entries[src.Node.Name]
			if srcEntry == nil {
				continue
			}
			srcAB := srcEntry.State.Buffer(state.PortOut, src.Port)
			if srcAB == nil {
				continue
			}
			srcWB, err := srcAB.Channel(0)
			if err != nil {
				continue
			}
			inWB.Mix(srcWB, start, stop)
		}
	}
}

// workBuffersFor builds the Recv/Send view a kernel call needs for entry's
// existing ports, pulling each port's single-channel WorkBuffer out of its
// DeviceState.
func workBuffersFor(entry *DeviceEntry) *processor.WorkBuffers {
	wbs := &processor.WorkBuffers{}
	for p := 0; p < device.MaxPorts; p++ {
		if entry.Dev.InPorts[p] {
			if ab := entry.State.Buffer(state.PortIn, p); ab != nil {
				if wb, err := ab.Channel(0); err == nil {
					wbs.Recv[p] = wb
				}
			}
		}
		if entry.Dev.OutPorts[p] {
			if ab := entry.State.Buffer(state.PortOut, p); ab != nil {
				if wb, err := ab.Channel(0); err == nil {
					wbs.Send[p] = wb
				}
			}
		}
	}
	return wbs
}

// MixGraph runs one block's render_mixed pass over conn in post (leaves-
// first) order: for every registered node, sum its inputs from already-
// rendered sources, then call RenderMixed if its kernel implements
// processor.MixedKernel.
func (m *Mixer) MixGraph(conn *device.Connections, start, stop int, tempo float64) {
	for _, n := range conn.PostOrder() {
		entry := m.entries[n.Name]
		if entry == nil {
			continue
		}
		m.sumInputs(n, entry, start, stop)
		mk, ok := entry.Kernel.(processor.MixedKernel)
		if !ok {
			continue
		}
		mk.RenderMixed(entry.State, workBuffersFor(entry), start, stop, tempo)
	}
}

// MixVoices renders every active voice's kernel for [start, stop) into its
// own scratch WorkBuffers, then sums the result into its driving processor's
// DeviceState output buffer (spec.md §2 step 3 and step 5's first half).
func (m *Mixer) MixVoices(pool *voice.Pool, capacity int, start, stop int, tempo float64) {
	for _, v := range pool.Active() {
		if v.Proc == nil || v.PState == nil {
			continue
		}
		if v.WBS == nil {
			v.WBS = newVoiceWorkBuffers(v.PState, capacity)
		}
		end := v.Proc.RenderVoice(v.State, v.PState, v.WBS, start, stop, tempo)
		if end < stop {
			v.State.Deactivate()
		}
		sumVoiceOutput(v.PState, v.WBS, start, end)
	}
}

func newVoiceWorkBuffers(pstate *state.DeviceState, capacity int) *processor.WorkBuffers {
	wbs := &processor.WorkBuffers{}
	for p := 0; p < device.MaxPorts; p++ {
		if pstate.Buffer(state.PortIn, p) != nil {
			wbs.Recv[p] = buffer.New(capacity)
		}
		if pstate.Buffer(state.PortOut, p) != nil {
			wbs.Send[p] = buffer.New(capacity)
		}
	}
	return wbs
}

func sumVoiceOutput(pstate *state.DeviceState, wbs *processor.WorkBuffers, start, stop int) {
	for p := 0; p < device.MaxPorts; p++ {
		if wbs.Send[p] == nil {
			continue
		}
		outAB := pstate.Buffer(state.PortOut, p)
		if outAB == nil {
			continue
		}
		outWB, err := outAB.Channel(0)
		if err != nil {
			continue
		}
		outWB.Mix(wbs.Send[p], start, stop)
	}
}
