// Package terrain implements the Grid Terrain (§4.3) and the Terrain-Effect
// Engine (§4.6): spatial occupancy, walls, dynamic tile effects, movement
// cost, and the currents/hazard event handlers that act on them each round.
package terrain

import (
	"github.com/tinkerforge/tacticore/eventbus"
)

const (
	evtEntityMoved   = "entity_moved"
	evtWallAdded     = "wall_added"
	evtWallRemoved   = "wall_removed"
	evtEffectAdded   = "terrain_effect_added"
	evtEffectRemoved = "terrain_effect_removed"
	evtEffectTrigger = "terrain_effect_trigger"
	evtCurrentMoved  = "terrain_current_moved"
)

// rectangleOffsets returns the w x h rectangle of offsets anchored at
// (0,0) — the footprint shape for an entity with no BodyFootprint override.
func rectangleOffsets(w, h int) []Tile {
	offsets := make([]Tile, 0, w*h)
	for dx := 0; dx < w; dx++ {
		for dy := 0; dy < h; dy++ {
			offsets = append(offsets, Tile{X: dx, Y: dy})
		}
	}
	return offsets
}

// Terrain is a width x height grid of tiles tracking walls, entity
// occupancy, and dynamic effects, with an attached event bus for the
// notifications §4.3 and §4.6 require.
type Terrain struct {
	width, height int

	walls     map[Tile]bool
	occupants map[Tile]string   // tile -> occupying entity id
	anchors   map[string]Tile   // entity id -> anchor tile
	footprint map[string][]Tile // entity id -> offsets relative to anchor

	effectsByTile map[Tile][]Effect

	terrainVersion uint64
	blockerVersion uint64

	pathCache      map[[2]Tile][]Tile
	reachableCache map[tileBudget]map[Tile]bool

	bus *eventbus.Bus
}

type tileBudget struct {
	start  Tile
	budget int
}

// New creates an empty width x height terrain. bus may be nil, in which case
// Terrain operates silently (no events published).
func New(width, height int, bus *eventbus.Bus) *Terrain {
	return &Terrain{
		width:         width,
		height:        height,
		walls:         make(map[Tile]bool),
		occupants:     make(map[Tile]string),
		anchors:       make(map[string]Tile),
		footprint:     make(map[string][]Tile),
		effectsByTile: make(map[Tile][]Effect),
		bus:           bus,
	}
}

// Width returns the grid width in tiles.
func (t *Terrain) Width() int { return t.width }

// Height returns the grid height in tiles.
func (t *Terrain) Height() int { return t.height }

// TerrainVersion returns the counter bumped whenever walls, walkability, or
// cost on any tile changes.
func (t *Terrain) TerrainVersion() uint64 { return t.terrainVersion }

// BlockerVersion returns the counter bumped whenever an occupant's position
// or a cover object changes, invalidating cached line-of-sight results.
func (t *Terrain) BlockerVersion() uint64 { return t.blockerVersion }

// BumpBlockerVersion invalidates cached line-of-sight results from outside
// Terrain's own occupancy tracking — a cover object or visibility-affecting
// condition changing, for instance, neither of which Terrain observes
// directly.
func (t *Terrain) BumpBlockerVersion() { t.blockerVersion++ }

// InBounds reports whether (x,y) lies within the grid. Satisfies go-fov's
// Grid interface for radius-based visibility snapshots (see
// losengine.Engine.VisibleTiles).
func (t *Terrain) InBounds(x, y int) bool {
	return x >= 0 && x < t.width && y >= 0 && y < t.height
}

// IsOpaque reports whether (x,y) blocks line of sight. Walls only, matching
// the LOS Engine's "purely geometric" contract for HasLOS.
func (t *Terrain) IsOpaque(x, y int) bool {
	return t.walls[Tile{X: x, Y: y}]
}

func (t *Terrain) publish(eventType string, payload map[string]any) {
	if t.bus != nil {
		t.bus.Publish(eventType, payload)
	}
}

// IsValidPosition reports whether the entire w x h rectangle anchored at
// (x,y) lies within bounds.
func (t *Terrain) IsValidPosition(x, y, w, h int) bool {
	return t.validOffsets(Tile{X: x, Y: y}, rectangleOffsets(w, h))
}

func (t *Terrain) validOffsets(anchor Tile, offsets []Tile) bool {
	for _, off := range offsets {
		tile := anchor.Add(off.X, off.Y)
		if tile.X < 0 || tile.X >= t.width || tile.Y < 0 || tile.Y >= t.height {
			return false
		}
	}
	return true
}

// IsWalkable reports whether every tile under the w x h footprint anchored
// at (x,y) is in bounds, wall-free, and free of impassable_solid and
// impassable_void effects.
func (t *Terrain) IsWalkable(x, y, w, h int) bool {
	return t.walkableOffsets(Tile{X: x, Y: y}, rectangleOffsets(w, h))
}

func (t *Terrain) walkableOffsets(anchor Tile, offsets []Tile) bool {
	if !t.validOffsets(anchor, offsets) {
		return false
	}
	for _, off := range offsets {
		tile := anchor.Add(off.X, off.Y)
		if t.walls[tile] {
			return false
		}
		if t.isImpassableSolid(tile) || t.isImpassableVoid(tile) {
			return false
		}
	}
	return true
}

// IsOccupied reports whether any tile under the w x h footprint anchored at
// (x,y) already has an occupant other than ignore, or (when checkWalls is
// true) a wall.
func (t *Terrain) IsOccupied(x, y, w, h int, ignore string, checkWalls bool) bool {
	return t.occupiedOffsets(Tile{X: x, Y: y}, rectangleOffsets(w, h), ignore, checkWalls)
}

func (t *Terrain) occupiedOffsets(anchor Tile, offsets []Tile, ignore string, checkWalls bool) bool {
	for _, off := range offsets {
		tile := anchor.Add(off.X, off.Y)
		if occupant, ok := t.occupants[tile]; ok && occupant != ignore {
			return true
		}
	}
	if checkWalls {
		for _, off := range offsets {
			if t.walls[anchor.Add(off.X, off.Y)] {
				return true
			}
		}
	}
	return false
}

func (t *Terrain) clearOccupancy(entityID string) {
	anchor, ok := t.anchors[entityID]
	if !ok {
		return
	}
	for _, off := range t.footprint[entityID] {
		tile := anchor.Add(off.X, off.Y)
		if t.occupants[tile] == entityID {
			delete(t.occupants, tile)
		}
	}
}

func (t *Terrain) occupy(entityID string, anchor Tile, offsets []Tile) {
	for _, off := range offsets {
		t.occupants[anchor.Add(off.X, off.Y)] = entityID
	}
	t.anchors[entityID] = anchor
	t.footprint[entityID] = offsets
}

// AddEntity places entityID at (x,y) with a rectangular w x h footprint. It
// fails if the position is out of bounds or already occupied.
func (t *Terrain) AddEntity(entityID string, x, y, w, h int) bool {
	return t.AddEntityFootprint(entityID, Tile{X: x, Y: y}, rectangleOffsets(w, h))
}

// AddEntityFootprint places entityID at anchor with an explicit set of
// offsets (see components.BodyFootprint). It fails if any offset tile is out
// of bounds or already occupied.
func (t *Terrain) AddEntityFootprint(entityID string, anchor Tile, offsets []Tile) bool {
	if !t.validOffsets(anchor, offsets) || t.occupiedOffsets(anchor, offsets, "", false) {
		return false
	}
	t.occupy(entityID, anchor, offsets)
	t.blockerVersion++
	return true
}

// RemoveEntity clears entityID's occupancy. Removing an entity that was
// never present is a no-op that returns false.
func (t *Terrain) RemoveEntity(entityID string) bool {
	if _, ok := t.anchors[entityID]; !ok {
		return false
	}
	t.clearOccupancy(entityID)
	delete(t.anchors, entityID)
	delete(t.footprint, entityID)
	t.blockerVersion++
	return true
}

// MoveEntity relocates entityID to (newX,newY), keeping its existing
// footprint shape. It fails if the destination is invalid, or occupied by
// another entity, or walled. A move to the entity's current anchor succeeds
// as a no-op as long as that tile is still walkable. On success it
// publishes entity_moved and then runs HandleEntityEnter for the
// destination.
func (t *Terrain) MoveEntity(entityID string, newX, newY int) bool {
	oldAnchor, ok := t.anchors[entityID]
	if !ok {
		return false
	}
	offsets := t.footprint[entityID]
	newAnchor := Tile{X: newX, Y: newY}
	if newAnchor == oldAnchor {
		return t.walkableOffsets(newAnchor, offsets)
	}

	if !t.validOffsets(newAnchor, offsets) || t.occupiedOffsets(newAnchor, offsets, entityID, true) {
		return false
	}

	t.clearOccupancy(entityID)
	t.occupy(entityID, newAnchor, offsets)
	t.blockerVersion++

	t.publish(evtEntityMoved, map[string]any{
		"entity_id":    entityID,
		"old_position": oldAnchor,
		"new_position": newAnchor,
		"footprint":    offsets,
	})
	t.HandleEntityEnter(entityID, newX, newY)
	return true
}

// EntityAt returns the occupant of tile, if any.
func (t *Terrain) EntityAt(tile Tile) (string, bool) {
	id, ok := t.occupants[tile]
	return id, ok
}

// EntityPosition returns entityID's current anchor tile.
func (t *Terrain) EntityPosition(entityID string) (Tile, bool) {
	tile, ok := t.anchors[entityID]
	return tile, ok
}

// IsWall reports whether (x,y) is a wall tile.
func (t *Terrain) IsWall(x, y int) bool {
	return t.walls[Tile{X: x, Y: y}]
}

// AddWall places a wall at (x,y). Fails if the tile is out of bounds or
// already a wall. On success it bumps terrain_version, invalidates the path
// and reachability caches, and publishes wall_added.
func (t *Terrain) AddWall(x, y int) bool {
	if !t.IsValidPosition(x, y, 1, 1) {
		return false
	}
	tile := Tile{X: x, Y: y}
	if t.walls[tile] {
		return false
	}
	t.walls[tile] = true
	t.terrainVersion++
	t.invalidateCaches()
	t.publish(evtWallAdded, map[string]any{"position": tile})
	return true
}

// RemoveWall clears a wall at (x,y). Returns false if there was no wall
// there.
func (t *Terrain) RemoveWall(x, y int) bool {
	tile := Tile{X: x, Y: y}
	if !t.walls[tile] {
		return false
	}
	delete(t.walls, tile)
	t.terrainVersion++
	t.invalidateCaches()
	t.publish(evtWallRemoved, map[string]any{"position": tile})
	return true
}

// Neighbors returns the walkable cardinal (N, E, S, W) neighbors of (x,y).
func (t *Terrain) Neighbors(x, y int) []Tile {
	var out []Tile
	for _, d := range [4][2]int{{0, 1}, {1, 0}, {0, -1}, {-1, 0}} {
		nx, ny := x+d[0], y+d[1]
		if t.IsValidPosition(nx, ny, 1, 1) && t.IsWalkable(nx, ny, 1, 1) {
			out = append(out, Tile{X: nx, Y: ny})
		}
	}
	return out
}

func (t *Terrain) invalidateCaches() {
	t.pathCache = nil
	t.reachableCache = nil
}
