// Package movement implements the Movement Engine (§4.5): cost-aware
// reachability and pathfinding over a Terrain, and the stepwise execution of
// moves against the ECS Store, including movement-usage accounting and
// facing updates.
package movement

import (
	"github.com/tinkerforge/tacticore/components"
	"github.com/tinkerforge/tacticore/coords"
	"github.com/tinkerforge/tacticore/ecscore"
	"github.com/tinkerforge/tacticore/eventbus"
	"github.com/tinkerforge/tacticore/terrain"
)

// Tile is the shared grid coordinate type.
type Tile = coords.Tile

const (
	EvtMovementStarted       = "movement_started"
	EvtMovementEnded         = "movement_ended"
	EvtMovementDistanceSpent = "movement_distance_spent"
	EvtEntityDied            = "entity_died"
)

// Killer marks an entity dead for a given cause. The Game Facade implements
// this; Movement only needs it for the void-landing death rule (§4.5), so it
// depends on the narrow interface rather than importing the facade package.
type Killer interface {
	KillEntity(entityID, cause string)
}

// Engine is the Movement Engine: Dijkstra reachability/pathfinding over
// Terrain, and move execution against Store.
type Engine struct {
	store    *ecscore.Store
	registry *components.Registry
	terrain  *terrain.Terrain
	bus      *eventbus.Bus
	killer   Killer
}

// New creates a Movement Engine. bus and killer may be nil; killer's absence
// simply means void landings never trigger death (the Game Facade is
// expected to supply one once wired).
func New(store *ecscore.Store, registry *components.Registry, tr *terrain.Terrain, bus *eventbus.Bus, killer Killer) *Engine {
	return &Engine{store: store, registry: registry, terrain: tr, bus: bus, killer: killer}
}

// SetKiller wires the death callback after construction, for cases where the
// Game Facade (which owns KillEntity) is built after the Movement Engine.
func (e *Engine) SetKiller(k Killer) {
	e.killer = k
}

func (e *Engine) position(entityID string) (components.Position, bool) {
	value, ok := e.store.TryGet(entityID, e.registry.Position)
	if !ok {
		return components.Position{}, false
	}
	return value.(components.Position), true
}

func (e *Engine) setPosition(entityID string, pos components.Position) {
	e.store.AddComponent(entityID, e.registry.Position, pos)
}

func (e *Engine) movementUsage(entityID string) *components.MovementUsage {
	value, ok := e.store.TryGet(entityID, e.registry.MovementUsage)
	if ok {
		return value.(*components.MovementUsage)
	}
	usage := &components.MovementUsage{}
	e.store.AddComponent(entityID, e.registry.MovementUsage, usage)
	return usage
}

func (e *Engine) facing(entityID string) (*components.Facing, bool) {
	value, ok := e.store.TryGet(entityID, e.registry.Facing)
	if !ok {
		return nil, false
	}
	return value.(*components.Facing), true
}

func (e *Engine) canEnterTile(tile Tile, width, height int, ignoreID string) bool {
	if !e.terrain.IsWalkable(tile.X, tile.Y, width, height) {
		return false
	}
	return !e.terrain.IsOccupied(tile.X, tile.Y, width, height, ignoreID, false)
}

func (e *Engine) publish(eventType string, payload map[string]any) {
	if e.bus != nil {
		e.bus.Publish(eventType, payload)
	}
}

func (e *Engine) publishStarted(entityID string, from, to Tile, provokeAOO bool, step, length int) {
	e.publish(EvtMovementStarted, map[string]any{
		"entity_id":                   entityID,
		"from_position":               from,
		"to_position":                 to,
		"provoke_opportunity_attacks": provokeAOO,
		"path_step":                   step,
		"path_length":                 length,
	})
}

func (e *Engine) publishEnded(entityID string, from, to Tile, provokeAOO, succeeded bool, step, length int) {
	e.publish(EvtMovementEnded, map[string]any{
		"entity_id":                   entityID,
		"from_position":               from,
		"to_position":                 to,
		"provoke_opportunity_attacks": provokeAOO,
		"succeeded":                   succeeded,
		"path_step":                   step,
		"path_length":                 length,
	})
}

func (e *Engine) recordMovementUsage(entityID string, distance int) {
	if distance <= 0 {
		return
	}
	e.movementUsage(entityID).Add(distance)
	e.publish(EvtMovementDistanceSpent, map[string]any{
		"entity_id": entityID,
		"distance":  distance,
	})
}

func (e *Engine) updateFacing(entityID string, origin, dest Tile) {
	if origin == dest {
		return
	}
	facing, ok := e.facing(entityID)
	if !ok || facing.Fixed {
		return
	}
	facing.UpdateToward(dest.X-origin.X, dest.Y-origin.Y)
}
