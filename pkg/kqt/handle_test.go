package kqt_test

import (
	"encoding/json"
	"testing"

	"github.com/kunquat/kqsynth/pkg/kqt"
)

type fakeProject map[string]any

func loadFake(t *testing.T, h *kqt.Handle, key string, value any) {
	t.Helper()
	raw, err := json.Marshal(value)
	if err != nil {
		t.Fatalf("marshal %s: %v", key, err)
	}
	if err := h.SetData(key, raw); err != nil {
		t.Fatalf("set_data %s: %v", key, err)
	}
}

// minimalProject builds the smallest SetData key set Validate accepts: one
// audio unit with a single "add" processor driving the master output, one
// pattern with a note-on in its first channel column (column 1; column 0 is
// the global column), and a one-entry album track.
func minimalProject(t *testing.T, h *kqt.Handle) {
	t.Helper()

	loadFake(t, h, "p_manifest.json", fakeProject{})
	loadFake(t, h, "p_connections.json", fakeProject{
		"edges": []fakeProject{
			{"src": "au_00/out_00", "dst": "in_00"},
			{"src": "au_00/out_01", "dst": "in_01"},
		},
	})

	loadFake(t, h, "au_00/p_manifest.json", fakeProject{})
	loadFake(t, h, "au_00/proc_00/p_manifest.json", fakeProject{})
	loadFake(t, h, "au_00/proc_00/p_processor.json", fakeProject{
		"type":      "add",
		"in_ports":  []int{},
		"out_ports": []int{0, 1},
	})

	loadFake(t, h, "pat_000/p_pattern.json", fakeProject{
		"length": fakeProject{"beats": 1, "rem": 0},
		"columns": fakeProject{
			"1": []fakeProject{
				{"pos": fakeProject{"beats": 0, "rem": 0}, "name": "n+", "const": 220.0},
			},
		},
	})
	loadFake(t, h, "album/p_tracks.json", fakeProject{
		"patterns": []string{"pat_000"},
	})
}

func TestHandleRoundTrip(t *testing.T) {
	opts := kqt.DefaultOptions()
	opts.AudioRate = 44100
	opts.BufferSize = 4096
	h := kqt.NewHandle(opts)

	minimalProject(t, h)

	if err := h.Validate(); err != nil {
		t.Fatalf("validate: %v (get_error: %s)", err, h.GetError())
	}

	if err := h.SetMixingRate(44100); err != nil {
		t.Fatalf("set_mixing_rate: %v", err)
	}
	if got := h.GetMixingRate(); got != 44100 {
		t.Fatalf("get_mixing_rate = %d, want 44100", got)
	}

	mixed, err := h.Mix(1024)
	if err != nil {
		t.Fatalf("mix: %v", err)
	}
	if mixed != 1024 {
		t.Fatalf("mixed = %d, want 1024", mixed)
	}

	samples := h.GetBuffer(0)
	nonZero := false
	for _, s := range samples[:mixed] {
		if s != 0 {
			nonZero = true
			break
		}
	}
	if !nonZero {
		t.Fatal("expected nonzero master output after mixing a note-on pattern")
	}

	if err := h.Fire(0, `["n+", 440.0]`); err != nil {
		t.Fatalf("fire: %v", err)
	}

	if got := h.GetError(); got != "" {
		t.Fatalf("get_error = %q, want empty after a successful run", got)
	}
}

func TestHandleMixBeforeValidateIsArgumentError(t *testing.T) {
	h := kqt.NewHandle(kqt.DefaultOptions())
	if _, err := h.Mix(64); err == nil {
		t.Fatal("expected mix before validate to fail")
	}
	if h.GetError() == "" {
		t.Fatal("expected get_error to report the failed mix")
	}
}

func TestHandleValidateRejectsMissingManifest(t *testing.T) {
	h := kqt.NewHandle(kqt.DefaultOptions())
	if err := h.Validate(); err == nil {
		t.Fatal("expected validate to fail on an empty project")
	}
}

func TestHandleFireUnknownEventFails(t *testing.T) {
	opts := kqt.DefaultOptions()
	opts.AudioRate = 44100
	h := kqt.NewHandle(opts)
	minimalProject(t, h)
	if err := h.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if err := h.Fire(0, `["not.a.real.event", 1.0]`); err == nil {
		t.Fatal("expected fire with an unknown event name to fail")
	}
}
