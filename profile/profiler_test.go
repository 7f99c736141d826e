package profile

import (
	"slices"
	"testing"
)

func TestProfiler_EmptyMode_IsNoop(t *testing.T) {
	p := Profiler{}

	if p.Enabled() {
		t.Fatal("empty mode should be disabled")
	}

	stop := p.Start()
	if _, ok := stop.(ignore); !ok {
		t.Fatalf("expected no-op stopper, got %T", stop)
	}

	stop.Stop()
}

func TestProfiler_UnknownMode_IsNoop(t *testing.T) {
	p := Profiler{Mode: "nonexistent"}

	if p.Enabled() {
		t.Fatal("unknown mode should be disabled")
	}

	p.Start().Stop()
}

func TestModes_Sorted(t *testing.T) {
	if !slices.IsSorted(Modes()) {
		t.Errorf("modes not sorted: %v", Modes())
	}
}
