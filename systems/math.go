package systems

// clampFloat clamps a float32 value between min and max.
func clampFloat(v, minVal, maxVal float32) float32 {
	if v < minVal {
		return minVal
	}
	if v > maxVal {
		return maxVal
	}
	return v
}

// distanceSq returns the squared distance between two points.
func distanceSq(x1, y1, x2, y2 float32) float32 {
	dx := x1 - x2
	dy := y1 - y2
	return dx*dx + dy*dy
}

// segmentDistSq returns the squared distance from (px, py) to the segment
// (ax, ay)-(bx, by).
func segmentDistSq(px, py, ax, ay, bx, by float32) float32 {
	dx, dy := bx-ax, by-ay
	lenSq := dx*dx + dy*dy
	if lenSq == 0 {
		return distanceSq(px, py, ax, ay)
	}
	t := clampFloat(((px-ax)*dx+(py-ay)*dy)/lenSq, 0, 1)
	return distanceSq(px, py, ax+t*dx, ay+t*dy)
}
