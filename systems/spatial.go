// Package systems provides ECS systems for the needle viewer.
package systems

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/buffon/components"
)

// SpatialGrid buckets needles by midpoint for picking under the cursor.
type SpatialGrid struct {
	cellSize   float32
	halfExtent float32
	cols       int
	rows       int
	cells      [][]ecs.Entity // flat grid of entity lists
}

// MaxGridCols bounds the grid to MaxGridCols² cells however small the
// requested cell size is.
const MaxGridCols = 256

// NewSpatialGrid creates a grid covering [-halfExtent, halfExtent] on both axes.
// Points outside are clamped into the border cells. The cell size is raised
// when needed to keep at most MaxGridCols columns and rows.
func NewSpatialGrid(halfExtent, cellSize float32) *SpatialGrid {
	if minCell := 2 * halfExtent / MaxGridCols; !(cellSize >= minCell) {
		cellSize = minCell
	}
	cols := min(int(2*halfExtent/cellSize)+1, MaxGridCols)
	rows := cols

	return &SpatialGrid{
		cellSize:   cellSize,
		halfExtent: halfExtent,
		cols:       cols,
		rows:       rows,
		cells:      make([][]ecs.Entity, cols*rows), // cells grow on first insert
	}
}

// Clear removes all entities from the grid.
func (g *SpatialGrid) Clear() {
	for i := range g.cells {
		g.cells[i] = g.cells[i][:0]
	}
}

// Insert adds an entity to the grid at the given position.
func (g *SpatialGrid) Insert(e ecs.Entity, x, y float32) {
	idx := g.cellIndex(x, y)
	g.cells[idx] = append(g.cells[idx], e)
}

// InsertSegment indexes a needle by its midpoint.
func (g *SpatialGrid) InsertSegment(e ecs.Entity, seg *components.Segment) {
	g.Insert(e, (seg.X+seg.EndX)/2, (seg.Y+seg.EndY)/2)
}

// Nearest returns the needle closest to (x, y) among those whose segment
// lies within radius. Needles are indexed by midpoint, so the search widens
// by maxHalfLen to catch long needles whose midpoint sits further away.
func (g *SpatialGrid) Nearest(x, y, radius, maxHalfLen float32, segMap *ecs.Map1[components.Segment]) (ecs.Entity, bool) {
	reach := radius + maxHalfLen
	cellRadius := int(reach/g.cellSize) + 1
	centerCol, centerRow := g.cellCoords(x, y)

	var (
		best   ecs.Entity
		found  bool
		bestSq = radius * radius
	)
	for dc := -cellRadius; dc <= cellRadius; dc++ {
		col := centerCol + dc
		if col < 0 || col >= g.cols {
			continue
		}
		for dr := -cellRadius; dr <= cellRadius; dr++ {
			row := centerRow + dr
			if row < 0 || row >= g.rows {
				continue
			}
			for _, e := range g.cells[row*g.cols+col] {
				seg := segMap.Get(e)
				if seg == nil {
					continue
				}
				d := segmentDistSq(x, y, seg.X, seg.Y, seg.EndX, seg.EndY)
				if d <= bestSq {
					best, bestSq, found = e, d, true
				}
			}
		}
	}
	return best, found
}

// cellCoords returns the clamped column and row for a world position.
func (g *SpatialGrid) cellCoords(x, y float32) (col, row int) {
	col = int((x + g.halfExtent) / g.cellSize)
	row = int((y + g.halfExtent) / g.cellSize)

	// Clamp to valid range
	if col < 0 {
		col = 0
	} else if col >= g.cols {
		col = g.cols - 1
	}
	if row < 0 {
		row = 0
	} else if row >= g.rows {
		row = g.rows - 1
	}
	return col, row
}

// cellIndex returns the flat index for a world position.
func (g *SpatialGrid) cellIndex(x, y float32) int {
	col, row := g.cellCoords(x, y)
	return row*g.cols + col
}
