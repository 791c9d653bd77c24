package systems

import "github.com/pthm-cable/buffon/telemetry"

// Phase is one timed stage of a viewer step.
type Phase struct {
	ID    string // telemetry phase name
	Label string
	Hint  string
}

// StepPhases lists the viewer step stages in execution order.
var StepPhases = []Phase{
	{ID: telemetry.PhaseDrop, Label: "Drop", Hint: "sample needles and classify crossings"},
	{ID: telemetry.PhasePrune, Label: "Prune", Hint: "remove the oldest needles over capacity"},
	{ID: telemetry.PhaseEstimate, Label: "Estimate", Hint: "recompute the running estimate"},
	{ID: telemetry.PhaseSpatial, Label: "Spatial", Hint: "reindex needles for picking"},
	{ID: telemetry.PhaseTelemetry, Label: "Telemetry", Hint: "flush finished stats windows"},
}

// PhaseLabel returns the display label of a phase, or the ID when it is
// not a step phase.
func PhaseLabel(id string) string {
	if i := PhaseOrder(id); i >= 0 {
		return StepPhases[i].Label
	}
	return id
}

// PhaseOrder returns the position of a phase within a step, or -1.
func PhaseOrder(id string) int {
	for i, p := range StepPhases {
		if p.ID == id {
			return i
		}
	}
	return -1
}
