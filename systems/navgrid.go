package systems

import (
	"math"

	"github.com/pthm-cable/arena/components"
)

// halfDiagonal is half a cell diagonal in cell units. Blocking cells within
// that extra distance keeps straight segments between neighbouring open
// cell centres outside the inflated obstacles.
const halfDiagonal = 0.7072

// NavGrid stores a navigation grid for A* pathfinding.
// Cells are marked as blocked (true) or open (false).
type NavGrid struct {
	cells    []bool  // true = blocked
	cellSize float32 // pixels per cell
	width    int     // grid width in cells
	height   int     // grid height in cells
}

// NewNavGrid rasterises obstacles inflated by clearance onto a grid
// covering the world.
func NewNavGrid(obstacles []components.Obstacle, worldW, worldH, cellSize, clearance float32) *NavGrid {
	w := int(worldW/cellSize) + 1
	h := int(worldH/cellSize) + 1

	grid := &NavGrid{
		cells:    make([]bool, w*h),
		cellSize: cellSize,
		width:    w,
		height:   h,
	}

	pad := clearance + cellSize*halfDiagonal
	for _, o := range obstacles {
		reach := o.Radius + pad
		minX, minY := grid.WorldToGrid(o.X-reach, o.Y-reach)
		maxX, maxY := grid.WorldToGrid(o.X+reach, o.Y+reach)
		for gy := max(minY, 0); gy <= min(maxY, h-1); gy++ {
			for gx := max(minX, 0); gx <= min(maxX, w-1); gx++ {
				cx, cy := grid.GridToWorld(gx, gy)
				if distanceSq(cx, cy, o.X, o.Y) < reach*reach {
					grid.cells[gy*w+gx] = true
				}
			}
		}
	}

	return grid
}

// IsBlocked returns true if the given nav grid cell is blocked.
func (g *NavGrid) IsBlocked(gx, gy int) bool {
	if gx < 0 || gx >= g.width || gy < 0 || gy >= g.height {
		return true // Out of bounds is blocked
	}
	return g.cells[gy*g.width+gx]
}

// WorldToGrid converts world coordinates to nav grid coordinates.
func (g *NavGrid) WorldToGrid(x, y float32) (gx, gy int) {
	gx = int(math.Floor(float64(x / g.cellSize)))
	gy = int(math.Floor(float64(y / g.cellSize)))
	return
}

// ClampCell limits grid coordinates to the grid.
func (g *NavGrid) ClampCell(gx, gy int) (int, int) {
	return min(max(gx, 0), g.width-1), min(max(gy, 0), g.height-1)
}

// GridToWorld converts nav grid coordinates to world coordinates (cell center).
func (g *NavGrid) GridToWorld(gx, gy int) (x, y float32) {
	x = (float32(gx) + 0.5) * g.cellSize
	y = (float32(gy) + 0.5) * g.cellSize
	return
}

// Size returns the grid dimensions in cells.
func (g *NavGrid) Size() (w, h int) {
	return g.width, g.height
}

// CellSize returns the cell edge length in pixels.
func (g *NavGrid) CellSize() float32 {
	return g.cellSize
}
