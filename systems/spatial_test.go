package systems

import (
	"testing"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/buffon/components"
)

func TestSegmentDistSq(t *testing.T) {
	tests := []struct {
		name   string
		px, py float32
		want   float32
	}{
		{"on segment", 0.5, 0, 0},
		{"above middle", 0.5, 2, 4},
		{"past end", 3, 0, 4},
		{"before start", -1, 1, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := segmentDistSq(tt.px, tt.py, 0, 0, 1, 0); got != tt.want {
				t.Errorf("segmentDistSq = %f, want %f", got, tt.want)
			}
		})
	}

	if got := segmentDistSq(3, 4, 0, 0, 0, 0); got != 25 {
		t.Errorf("degenerate segment distance = %f, want 25", got)
	}
}

func TestNearest(t *testing.T) {
	world := ecs.NewWorld()
	mapper := ecs.NewMap1[components.Segment](world)
	segMap := ecs.NewMap1[components.Segment](world)
	grid := NewSpatialGrid(10, 1)

	segs := []components.Segment{
		{X: 0, Y: 0, EndX: 0.5, EndY: 0},
		{X: 2, Y: 2, EndX: 2, EndY: 2.5},
		{X: -9.8, Y: 9.7, EndX: -9.3, EndY: 9.7},
	}
	entities := make([]ecs.Entity, len(segs))
	for i := range segs {
		entities[i] = mapper.NewEntity(&segs[i])
		grid.InsertSegment(entities[i], &segs[i])
	}

	e, ok := grid.Nearest(0.25, 0.05, 0.2, 0.25, segMap)
	if !ok || e != entities[0] {
		t.Errorf("expected first needle, got %v ok=%v", e, ok)
	}

	e, ok = grid.Nearest(2.05, 2.4, 0.2, 0.25, segMap)
	if !ok || e != entities[1] {
		t.Errorf("expected second needle, got %v ok=%v", e, ok)
	}

	e, ok = grid.Nearest(-9.5, 9.75, 0.2, 0.25, segMap)
	if !ok || e != entities[2] {
		t.Errorf("expected corner needle, got %v ok=%v", e, ok)
	}

	if _, ok := grid.Nearest(5, 5, 0.2, 0.25, segMap); ok {
		t.Error("expected no needle near (5, 5)")
	}

	grid.Clear()
	if _, ok := grid.Nearest(0.25, 0.05, 0.2, 0.25, segMap); ok {
		t.Error("expected empty grid after Clear")
	}
}

func TestSpatialGridClampsOutside(t *testing.T) {
	grid := NewSpatialGrid(10, 1)
	col, row := grid.cellCoords(-50, 50)
	if col != 0 || row != grid.rows-1 {
		t.Errorf("cellCoords clamped to (%d,%d), want (0,%d)", col, row, grid.rows-1)
	}
}

func TestSpatialGridBoundedForTinyCells(t *testing.T) {
	for _, cell := range []float32{0.5, 0.002, 1e-9, 0} {
		g := NewSpatialGrid(10, cell)
		if g.cols > MaxGridCols || g.rows > MaxGridCols {
			t.Errorf("cell %v: grid is %dx%d, want at most %d per axis", cell, g.cols, g.rows, MaxGridCols)
		}
		if len(g.cells) != g.cols*g.rows {
			t.Errorf("cell %v: %d cells for %dx%d grid", cell, len(g.cells), g.cols, g.rows)
		}
		if g.cellSize*float32(g.cols) < 20 {
			t.Errorf("cell %v: grid of %d cells of %v does not cover the extent", cell, g.cols, g.cellSize)
		}
	}

	// Picking still works once the cell size has been raised
	world := ecs.NewWorld()
	segMap := ecs.NewMap1[components.Segment](world)
	g := NewSpatialGrid(10, 0.002)
	seg := components.Segment{X: 9.99, Y: -9.99, EndX: 9.992, EndY: -9.99}
	e := segMap.NewEntity(&seg)
	g.InsertSegment(e, &seg)

	got, ok := g.Nearest(9.991, -9.99, 0.01, 0.001, segMap)
	if !ok || got != e {
		t.Errorf("expected the tiny needle, got %v ok=%v", got, ok)
	}
	g.Clear()
	if _, ok := g.Nearest(9.991, -9.99, 0.01, 0.001, segMap); ok {
		t.Error("cleared grid should find nothing")
	}
}
