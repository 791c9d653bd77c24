package camera

import (
	"math"
	"testing"
)

func near(a, b float32) bool {
	return math.Abs(float64(a-b)) < 0.01
}

func TestNew(t *testing.T) {
	cam := New(1280, 800, 10)

	if cam.X != 0 || cam.Y != 0 {
		t.Errorf("expected camera at origin, got (%f, %f)", cam.X, cam.Y)
	}
	if cam.Zoom != 1.0 {
		t.Errorf("expected zoom 1.0, got %f", cam.Zoom)
	}
	// Shorter side 800 px spans 20 world units
	if !near(cam.Scale(), 40) {
		t.Errorf("expected scale 40, got %f", cam.Scale())
	}
}

func TestWorldToScreenCentered(t *testing.T) {
	cam := New(1280, 800, 10)

	sx, sy := cam.WorldToScreen(0, 0)
	if !near(sx, 640) || !near(sy, 400) {
		t.Errorf("expected screen center (640, 400), got (%f, %f)", sx, sy)
	}
}

func TestYAxisPointsUp(t *testing.T) {
	cam := New(1280, 800, 10)

	_, top := cam.WorldToScreen(0, 10)
	_, bottom := cam.WorldToScreen(0, -10)
	if !near(top, 0) || !near(bottom, 800) {
		t.Errorf("expected y=10 at top and y=-10 at bottom, got %f and %f", top, bottom)
	}
}

func TestScreenToWorldRoundtrip(t *testing.T) {
	cam := New(1280, 800, 10)
	cam.SetZoom(2.5)
	cam.X, cam.Y = 3, -2

	testCases := []struct{ sx, sy float32 }{
		{640, 400},  // center
		{100, 100},  // top-left
		{1200, 700}, // near bottom-right
	}

	for _, tc := range testCases {
		wx, wy := cam.ScreenToWorld(tc.sx, tc.sy)
		sx, sy := cam.WorldToScreen(wx, wy)
		if !near(sx, tc.sx) || !near(sy, tc.sy) {
			t.Errorf("roundtrip failed: (%f,%f) -> (%f,%f) -> (%f,%f)",
				tc.sx, tc.sy, wx, wy, sx, sy)
		}
	}
}

func TestPanClamps(t *testing.T) {
	cam := New(1280, 800, 10)

	// Dragging right by 40 px moves one world unit right
	cam.Pan(40, 0)
	if !near(cam.X, 1) {
		t.Errorf("expected X 1, got %f", cam.X)
	}

	// Dragging down moves the view down the plane
	cam.Pan(0, 80)
	if !near(cam.Y, -2) {
		t.Errorf("expected Y -2, got %f", cam.Y)
	}

	cam.Pan(100000, -100000)
	if cam.X != 10 || cam.Y != 10 {
		t.Errorf("expected pan clamped to (10, 10), got (%f, %f)", cam.X, cam.Y)
	}
}

func TestZoomClamp(t *testing.T) {
	cam := New(1280, 800, 10)

	cam.SetZoom(0.1) // Below min
	if cam.Zoom != 1.0 {
		t.Errorf("expected zoom clamped to 1.0, got %f", cam.Zoom)
	}

	cam.SetZoom(100.0) // Above max
	if cam.Zoom != 20.0 {
		t.Errorf("expected zoom clamped to 20.0, got %f", cam.Zoom)
	}
}

func TestZoomAtKeepsPointFixed(t *testing.T) {
	cam := New(1280, 800, 10)

	wx, wy := cam.ScreenToWorld(900, 200)
	cam.ZoomAt(900, 200, 2)
	sx, sy := cam.WorldToScreen(wx, wy)
	if !near(sx, 900) || !near(sy, 200) {
		t.Errorf("expected (%f,%f) to stay at (900, 200), got (%f, %f)", wx, wy, sx, sy)
	}
	if cam.Zoom != 2 {
		t.Errorf("expected zoom 2, got %f", cam.Zoom)
	}
}

func TestIsVisible(t *testing.T) {
	cam := New(1280, 800, 10)
	cam.SetZoom(4) // 160 px per unit: visible x in [-4, 4], y in [-2.5, 2.5]

	if !cam.IsVisible(0, 0, 0.5) {
		t.Error("center should be visible")
	}
	if cam.IsVisible(8, 8, 0.5) {
		t.Error("far point should not be visible")
	}
	if !cam.IsVisible(4.3, 0, 0.5) {
		t.Error("edge point with radius should be visible")
	}
}

func TestVisibleWorldBounds(t *testing.T) {
	cam := New(1280, 800, 10)

	minX, minY, maxX, maxY := cam.VisibleWorldBounds()
	if !near(minX, -16) || !near(maxX, 16) || !near(minY, -10) || !near(maxY, 10) {
		t.Errorf("unexpected bounds (%f,%f)-(%f,%f)", minX, minY, maxX, maxY)
	}
}

func TestReset(t *testing.T) {
	cam := New(1280, 800, 10)
	cam.X = 5
	cam.Y = 5
	cam.Zoom = 2.5

	cam.Reset()

	if cam.X != 0 || cam.Y != 0 {
		t.Errorf("expected position (0, 0), got (%f, %f)", cam.X, cam.Y)
	}
	if cam.Zoom != 1.0 {
		t.Errorf("expected zoom 1.0, got %f", cam.Zoom)
	}
}
