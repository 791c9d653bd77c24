package systems

import (
	"testing"

	"github.com/pthm-cable/buffon/telemetry"
)

func TestPhaseLabels(t *testing.T) {
	tests := []struct {
		id    string
		label string
		order int
	}{
		{telemetry.PhaseDrop, "Drop", 0},
		{telemetry.PhaseSpatial, "Spatial", 3},
		{telemetry.PhaseTelemetry, "Telemetry", 4},
		{telemetry.PhaseSweep, telemetry.PhaseSweep, -1},
		{"unknown", "unknown", -1},
	}

	for _, tt := range tests {
		if got := PhaseLabel(tt.id); got != tt.label {
			t.Errorf("PhaseLabel(%q) = %q, want %q", tt.id, got, tt.label)
		}
		if got := PhaseOrder(tt.id); got != tt.order {
			t.Errorf("PhaseOrder(%q) = %d, want %d", tt.id, got, tt.order)
		}
	}
}
