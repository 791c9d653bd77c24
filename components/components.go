// Package components defines ECS components for the needle viewer.
package components

import "github.com/pthm-cable/buffon/needle"

// Segment is a dropped needle in world coordinates.
type Segment struct {
	X, Y       float32 // start point
	EndX, EndY float32
	Angle      float32 // radians, [0, π)
}

// SegmentOf converts a sampled needle to its component.
func SegmentOf(n needle.Needle) Segment {
	return Segment{
		X:     float32(n.X),
		Y:     float32(n.Y),
		EndX:  float32(n.EndX),
		EndY:  float32(n.EndY),
		Angle: float32(n.Angle),
	}
}

// Crossing records the outcome of a needle.
type Crossing struct {
	Crosses bool
}

// Drop records when a needle was dropped.
type Drop struct {
	Seq   uint64 // running drop number since the last reset
	Frame int32  // viewer frame the needle was dropped on
}
