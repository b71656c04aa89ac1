package game

import (
	"fmt"
	"log/slog"

	"github.com/pthm-cable/arena/components"
	"github.com/pthm-cable/arena/config"
	"github.com/pthm-cable/arena/traits"
)

// createBases places Blue in the top-left and Red in the bottom-right corner.
func (g *Game) createBases() ([traits.NumTeams]*components.Base, error) {
	var bases [traits.NumTeams]*components.Base
	cfg := g.cfg

	order, err := spawnOrder(cfg.Bases.SpawnOrder)
	if err != nil {
		return bases, err
	}
	if cfg.Bases.MaxUnitsPerTeam < 1 {
		return bases, fmt.Errorf("max_units_per_team must be >= 1, got %d", cfg.Bases.MaxUnitsPerTeam)
	}

	inset := float32(cfg.Bases.Inset)
	radius := float32(cfg.Bases.Radius)
	health := float32(cfg.Bases.Health)
	cooldown := cfg.Derived.SpawnCooldownTicks
	w, h := cfg.Derived.WorldW32, cfg.Derived.WorldH32

	bases[traits.Blue] = components.NewBase(traits.Blue, inset, inset, radius, health, cooldown, order)
	bases[traits.Red] = components.NewBase(traits.Red, w-inset, h-inset, radius, health, cooldown, order)
	return bases, nil
}

// generateObstacles scatters obstacles inside the edge margin, keeping
// them apart from each other and clear of both bases. An obstacle that
// finds no valid spot within the attempt budget is skipped.
func (g *Game) generateObstacles() []components.Obstacle {
	oc := g.cfg.Obstacles
	w, h := float64(g.cfg.Derived.WorldW32), float64(g.cfg.Derived.WorldH32)
	spanX := w - 2*oc.EdgeMargin
	spanY := h - 2*oc.EdgeMargin
	if spanX < 0 || spanY < 0 || len(oc.Kinds) == 0 {
		slog.Warn("obstacle_generation_skipped", "world_w", w, "world_h", h, "edge_margin", oc.EdgeMargin)
		return nil
	}

	obstacles := make([]components.Obstacle, 0, oc.Count)
	for i := 0; i < oc.Count; i++ {
		for attempt := 0; attempt < oc.Attempts; attempt++ {
			x := oc.EdgeMargin + g.rng.Float64()*spanX
			y := oc.EdgeMargin + g.rng.Float64()*spanY
			if !g.obstacleSpotFree(obstacles, x, y) {
				continue
			}
			kind := pickObstacleKind(g.rng.Intn, oc.Kinds)
			obstacles = append(obstacles, components.Obstacle{
				X:      float32(x),
				Y:      float32(y),
				Radius: float32(kind.Radius),
				Kind:   obstacleKind(kind.Name),
			})
			break
		}
	}
	return obstacles
}

func (g *Game) obstacleSpotFree(placed []components.Obstacle, x, y float64) bool {
	oc := g.cfg.Obstacles
	clearSq := oc.BaseClearance * oc.BaseClearance
	for _, b := range g.bases {
		dx, dy := x-float64(b.X), y-float64(b.Y)
		if dx*dx+dy*dy <= clearSq {
			return false
		}
	}
	spacingSq := oc.MinSpacing * oc.MinSpacing
	for _, o := range placed {
		dx, dy := x-float64(o.X), y-float64(o.Y)
		if dx*dx+dy*dy < spacingSq {
			return false
		}
	}
	return true
}

// pickObstacleKind draws a kind with probability proportional to its weight.
func pickObstacleKind(intn func(int) int, kinds []config.ObstacleKindConfig) config.ObstacleKindConfig {
	total := 0
	for _, k := range kinds {
		total += max(k.Weight, 0)
	}
	if total == 0 {
		return kinds[0]
	}
	r := intn(total)
	for _, k := range kinds {
		r -= max(k.Weight, 0)
		if r < 0 {
			return k
		}
	}
	return kinds[len(kinds)-1]
}

func obstacleKind(name string) components.ObstacleKind {
	if name == components.ObstacleRock.String() {
		return components.ObstacleRock
	}
	return components.ObstacleTree
}
