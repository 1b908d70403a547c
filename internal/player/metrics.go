package player

import "github.com/prometheus/client_golang/prometheus"

// Metrics exposes MasterParams statistics as Prometheus collectors, following
// the teacher's observability/metrics package shape (one constructor taking a
// *prometheus.Registry, one field per recorded quantity), with Observe
// folding master-output samples into the clip and amplitude collectors.
type Metrics struct {
	ClipsTotal    prometheus.Counter
	XrunsTotal    prometheus.Counter
	ActiveVoices  prometheus.Gauge
	MinAmplitude  prometheus.Gauge
	MaxAmplitude  prometheus.Gauge
	FramesMixed   prometheus.Counter
}

// NewMetrics registers the player's collectors on registry.
func NewMetrics(registry prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		ClipsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "kqsynth",
			Subsystem: "player",
			Name:      "clips_total",
			Help:      "Number of output samples that fell outside [-1, 1].",
		}),
		XrunsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "kqsynth",
			Subsystem: "player",
			Name:      "xruns_total",
			Help:      "Number of render calls that could not produce the requested frame count.",
		}),
		ActiveVoices: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "kqsynth",
			Subsystem: "player",
			Name:      "active_voices",
			Help:      "Current count of non-inactive voices in the pool.",
		}),
		MinAmplitude: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "kqsynth",
			Subsystem: "player",
			Name:      "min_amplitude",
			Help:      "Minimum master-output sample value observed in the last block.",
		}),
		MaxAmplitude: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "kqsynth",
			Subsystem: "player",
			Name:      "max_amplitude",
			Help:      "Maximum master-output sample value observed in the last block.",
		}),
		FramesMixed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "kqsynth",
			Subsystem: "player",
			Name:      "frames_mixed_total",
			Help:      "Total frames produced across all Pattern_mix calls.",
		}),
	}
	for _, c := range []prometheus.Collector{
		m.ClipsTotal, m.XrunsTotal, m.ActiveVoices, m.MinAmplitude, m.MaxAmplitude, m.FramesMixed,
	} {
		if err := registry.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Observe folds one block's master-output samples into the running
// statistics (spec.md §4.10's "clipping counters and min/max amplitudes are
// tracked in MasterParams statistics for observability").
func (m *Metrics) Observe(samples []float32) {
	if m == nil || len(samples) == 0 {
		return
	}
	clips := 0
	for _, s := range samples {
		if s < -1 || s > 1 {
			clips++
		}
	}
	for i := 0; i < clips; i++ {
		m.ClipsTotal.Inc()
	}
	m.MinAmplitude.Set(float64(minFloat32(samples)))
	m.MaxAmplitude.Set(float64(maxFloat32(samples)))
}

func minFloat32(xs []float32) float32 {
	m := xs[0]
	for _, x := range xs[1:] {
		if x < m {
			m = x
		}
	}
	return m
}

func maxFloat32(xs []float32) float32 {
	m := xs[0]
	for _, x := range xs[1:] {
		if x > m {
			m = x
		}
	}
	return m
}
