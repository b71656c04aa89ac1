package systems

import (
	"container/heap"
	"errors"
	"fmt"
	"math"

	"github.com/pthm-cable/arena/components"
)

// ErrUnreachable is returned when no route is found within the search budget.
var ErrUnreachable = errors.New("goal unreachable")

// PathSettings configures a PathFinder.
type PathSettings struct {
	WorldWidth    float32
	WorldHeight   float32
	CellSize      float32
	UnitRadius    float32
	SafetyMargin  float32
	MaxExpansions int // 0 = one expansion per grid cell
}

// PathFinder computes obstacle-avoiding routes with A* over an inflated
// nav grid. It holds no per-search state, so identical inputs always give
// identical routes and concurrent calls are safe.
type PathFinder struct {
	obstacles     []components.Obstacle
	grid          *NavGrid
	clearance     float32
	maxExpansions int
}

// NewPathFinder builds the nav grid for a fixed obstacle set.
func NewPathFinder(obstacles []components.Obstacle, s PathSettings) *PathFinder {
	obs := make([]components.Obstacle, len(obstacles))
	copy(obs, obstacles)

	clearance := s.UnitRadius + s.SafetyMargin
	grid := NewNavGrid(obs, s.WorldWidth, s.WorldHeight, s.CellSize, clearance)

	maxExp := s.MaxExpansions
	if maxExp <= 0 {
		w, h := grid.Size()
		maxExp = w * h
	}

	return &PathFinder{
		obstacles:     obs,
		grid:          grid,
		clearance:     clearance,
		maxExpansions: maxExp,
	}
}

// Grid returns the inflated nav grid.
func (p *PathFinder) Grid() *NavGrid {
	return p.grid
}

// Obstacles returns the obstacle set the finder was built with.
func (p *PathFinder) Obstacles() []components.Obstacle {
	return p.obstacles
}

// Clearance returns the unit radius plus safety margin added to every obstacle.
func (p *PathFinder) Clearance() float32 {
	return p.clearance
}

// SegmentClear reports whether the segment ab stays outside every
// obstacle inflated by the clearance.
func (p *PathFinder) SegmentClear(a, b components.Position) bool {
	for _, o := range p.obstacles {
		r := o.Radius + p.clearance
		if segmentDistanceSq(a.X, a.Y, b.X, b.Y, o.X, o.Y) < r*r {
			return false
		}
	}
	return true
}

// astarNode is a node in the A* search.
type astarNode struct {
	id   int
	f, h float32
}

// nodeHeap implements heap.Interface for the A* open set. Ties on f are
// broken by h, then by cell id, so pop order is fully determined.
type nodeHeap []astarNode

func (h nodeHeap) Len() int { return len(h) }
func (h nodeHeap) Less(i, j int) bool {
	if h[i].f != h[j].f {
		return h[i].f < h[j].f
	}
	if h[i].h != h[j].h {
		return h[i].h < h[j].h
	}
	return h[i].id < h[j].id
}
func (h nodeHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *nodeHeap) Push(x any) { *h = append(*h, x.(astarNode)) }

func (h *nodeHeap) Pop() any {
	old := *h
	n := len(old)
	node := old[n-1]
	*h = old[:n-1]
	return node
}

// neighbour offsets: 4 cardinal then 4 diagonal.
var neighbours = [8][2]int{
	{-1, 0}, {1, 0}, {0, -1}, {0, 1},
	{-1, -1}, {1, -1}, {-1, 1}, {1, 1},
}

// FindPath returns waypoints from start to goal, excluding start. The last
// waypoint is always goal. When the straight segment is clear the route is
// exactly [goal].
func (p *PathFinder) FindPath(start, goal components.Position) ([]components.Position, error) {
	if p.SegmentClear(start, goal) {
		return []components.Position{goal}, nil
	}

	grid := p.grid
	sx, sy := grid.ClampCell(grid.WorldToGrid(start.X, start.Y))
	gx, gy := grid.ClampCell(grid.WorldToGrid(goal.X, goal.Y))

	var ok bool
	if sx, sy, ok = p.nearestOpen(start, sx, sy); !ok {
		return nil, fmt.Errorf("no open cell near start (%.0f, %.0f): %w", start.X, start.Y, ErrUnreachable)
	}
	if gx, gy, ok = p.nearestOpen(goal, gx, gy); !ok {
		return nil, fmt.Errorf("no open cell near goal (%.0f, %.0f): %w", goal.X, goal.Y, ErrUnreachable)
	}

	cells, ok := p.search(sx, sy, gx, gy)
	if !ok {
		return nil, fmt.Errorf("path (%.0f, %.0f) -> (%.0f, %.0f): %w", start.X, start.Y, goal.X, goal.Y, ErrUnreachable)
	}

	// Candidates: every cell centre on the path, start and goal cells
	// included, then the exact goal. Consecutive candidates always see
	// each other, so smoothing never emits a blind leg.
	candidates := make([]components.Position, 0, len(cells)+1)
	for _, id := range cells {
		x, y := grid.GridToWorld(id%grid.width, id/grid.width)
		candidates = append(candidates, components.Position{X: x, Y: y})
	}
	candidates = append(candidates, goal)

	return p.smooth(start, candidates), nil
}

// search runs A* between two open cells and returns the cell ids of the
// path, start first.
func (p *PathFinder) search(sx, sy, gx, gy int) ([]int, bool) {
	grid := p.grid
	n := grid.width * grid.height
	startID := sy*grid.width + sx
	goalID := gy*grid.width + gx

	if startID == goalID {
		return []int{startID}, true
	}

	gScore := make([]float32, n)
	for i := range gScore {
		gScore[i] = float32(math.Inf(1))
	}
	cameFrom := make([]int32, n)
	for i := range cameFrom {
		cameFrom[i] = -1
	}
	closed := make([]bool, n)

	open := &nodeHeap{}
	gScore[startID] = 0
	h0 := heuristic(sx, sy, gx, gy)
	heap.Push(open, astarNode{id: startID, f: h0, h: h0})

	expansions := 0
	for open.Len() > 0 && expansions < p.maxExpansions {
		current := heap.Pop(open).(astarNode)
		if closed[current.id] {
			continue // stale duplicate
		}
		if current.id == goalID {
			return reconstruct(cameFrom, startID, goalID), true
		}
		closed[current.id] = true
		expansions++

		cx := current.id % grid.width
		cy := current.id / grid.width
		for i, d := range neighbours {
			nx, ny := cx+d[0], cy+d[1]
			if grid.IsBlocked(nx, ny) {
				continue
			}
			// No corner cutting on diagonals
			if i >= 4 && (grid.IsBlocked(cx+d[0], cy) || grid.IsBlocked(cx, cy+d[1])) {
				continue
			}
			nid := ny*grid.width + nx
			if closed[nid] {
				continue
			}

			moveCost := float32(1.0)
			if i >= 4 {
				moveCost = math.Sqrt2
			}
			tentative := gScore[current.id] + moveCost
			if tentative >= gScore[nid] {
				continue
			}
			gScore[nid] = tentative
			cameFrom[nid] = int32(current.id)
			h := heuristic(nx, ny, gx, gy)
			heap.Push(open, astarNode{id: nid, f: tentative + h, h: h})
		}
	}

	return nil, false
}

// heuristic computes the Euclidean distance heuristic in cells.
func heuristic(x1, y1, x2, y2 int) float32 {
	dx := float64(x2 - x1)
	dy := float64(y2 - y1)
	return float32(math.Sqrt(dx*dx + dy*dy))
}

// reconstruct walks cameFrom back from the goal.
func reconstruct(cameFrom []int32, startID, goalID int) []int {
	var rev []int
	for cur := goalID; cur != startID; cur = int(cameFrom[cur]) {
		rev = append(rev, cur)
		if cameFrom[cur] < 0 {
			break
		}
	}
	rev = append(rev, startID)

	path := make([]int, len(rev))
	for i := range rev {
		path[i] = rev[len(rev)-1-i]
	}
	return path
}

// smooth string-pulls the candidate list: from each anchor it jumps to the
// furthest candidate with a clear line of sight.
func (p *PathFinder) smooth(start components.Position, candidates []components.Position) []components.Position {
	out := make([]components.Position, 0, 8)
	anchor := start
	i := 0
	for i < len(candidates) {
		next := i
		for j := len(candidates) - 1; j > i; j-- {
			if p.SegmentClear(anchor, candidates[j]) {
				next = j
				break
			}
		}
		out = append(out, candidates[next])
		anchor = candidates[next]
		i = next + 1
	}
	return out
}

// nearestOpen returns the open cell for pos: its own cell when open,
// otherwise the nearest open cell by ring whose centre pos can see. Only a
// pos already inside an inflated obstacle may take an unseen cell.
func (p *PathFinder) nearestOpen(pos components.Position, gx, gy int) (int, int, bool) {
	if !p.grid.IsBlocked(gx, gy) {
		return gx, gy, true
	}
	mustSee := p.SegmentClear(pos, pos)
	fx, fy, found := -1, -1, false
	for radius := 1; radius < 16; radius++ {
		for dy := -radius; dy <= radius; dy++ {
			for dx := -radius; dx <= radius; dx++ {
				// Only check cells at the current radius
				if abs(dx) != radius && abs(dy) != radius {
					continue
				}
				cx, cy := gx+dx, gy+dy
				if p.grid.IsBlocked(cx, cy) {
					continue
				}
				x, y := p.grid.GridToWorld(cx, cy)
				if p.SegmentClear(pos, components.Position{X: x, Y: y}) {
					return cx, cy, true
				}
				if !mustSee && !found {
					fx, fy, found = cx, cy, true
				}
			}
		}
	}
	return fx, fy, found
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
