package systems

import (
	"math"

	"github.com/pthm-cable/arena/components"
)

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

// distance returns the Euclidean distance between two points.
func distance(x1, y1, x2, y2 float32) float32 {
	return float32(math.Sqrt(float64(distanceSq(x1, y1, x2, y2))))
}

// Distance returns the Euclidean distance between two positions.
func Distance(a, b components.Position) float32 {
	return distance(a.X, a.Y, b.X, b.Y)
}

// segmentDistanceSq returns the squared distance from point p to segment ab.
func segmentDistanceSq(ax, ay, bx, by, px, py float32) float32 {
	dx := bx - ax
	dy := by - ay
	lenSq := dx*dx + dy*dy
	if lenSq < 1e-9 {
		return distanceSq(ax, ay, px, py)
	}
	t := ((px-ax)*dx + (py-ay)*dy) / lenSq
	t = clampFloat(t, 0, 1)
	return distanceSq(ax+t*dx, ay+t*dy, px, py)
}
