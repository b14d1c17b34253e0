package movement

import "github.com/tinkerforge/tacticore/terrain"

// Move relocates entityID to dest. If pathfind is true it delegates to
// PathMove; otherwise it attempts a direct step, rejected if the Manhattan
// distance exceeds maxSteps (maxSteps<=0 means unbounded). impassable_void
// tiles are never a valid Move/PathMove destination — landing on void is
// only possible through Jump, per §4.5.
func (e *Engine) Move(entityID string, dest Tile, maxSteps int, pathfind, provokeAOO bool) bool {
	if pathfind {
		return e.PathMove(entityID, dest, maxSteps, provokeAOO)
	}

	pos, ok := e.position(entityID)
	if !ok {
		return false
	}
	origin := pos.Anchor
	distance := origin.ManhattanDistance(dest)
	if maxSteps > 0 && distance > maxSteps {
		return false
	}
	if !e.terrain.IsValidPosition(dest.X, dest.Y, pos.Width, pos.Height) {
		return false
	}
	if e.terrain.IsOccupied(dest.X, dest.Y, pos.Width, pos.Height, entityID, false) {
		return false
	}
	if origin == dest {
		return e.terrain.IsWalkable(dest.X, dest.Y, pos.Width, pos.Height)
	}
	if !e.terrain.IsWalkable(dest.X, dest.Y, pos.Width, pos.Height) {
		return false
	}

	e.publishStarted(entityID, origin, dest, provokeAOO, 0, 0)
	if !e.terrain.MoveEntity(entityID, dest.X, dest.Y) {
		e.publishEnded(entityID, origin, dest, provokeAOO, false, 0, 0)
		return false
	}
	pos.Anchor = dest
	e.setPosition(entityID, pos)
	e.publishEnded(entityID, origin, dest, provokeAOO, true, 0, 0)

	e.updateFacing(entityID, origin, dest)
	e.recordMovementUsage(entityID, distance)
	return true
}

// PathMove walks the path to dest one tile at a time, publishing
// movement_started/movement_ended per step. Each step commits atomically:
// a failed terrain move aborts the whole sequence without leaving the
// entity half-moved, and partial movement usage from completed steps is
// still recorded.
func (e *Engine) PathMove(entityID string, dest Tile, maxSteps int, provokeAOO bool) bool {
	pos, ok := e.position(entityID)
	if !ok {
		return false
	}
	start := pos.Anchor
	if start == dest {
		return true
	}

	path, ok := e.FindPath(entityID, dest, maxSteps)
	if !ok {
		return false
	}

	totalCost := 0
	current := start
	pathLength := len(path) - 1
	for step := 1; step < len(path); step++ {
		to := path[step]
		stepCost := e.terrain.GetMovementCost(to.X, to.Y)
		totalCost += stepCost
		if maxSteps > 0 && totalCost > maxSteps {
			return false
		}

		e.publishStarted(entityID, current, to, provokeAOO, step, pathLength)
		if !e.terrain.MoveEntity(entityID, to.X, to.Y) {
			e.publishEnded(entityID, current, to, provokeAOO, false, step, pathLength)
			return false
		}
		pos.Anchor = to
		e.setPosition(entityID, pos)
		e.publishEnded(entityID, current, to, provokeAOO, true, step, pathLength)

		e.recordMovementUsage(entityID, stepCost)
		e.updateFacing(entityID, current, to)
		current = to
	}
	return true
}

// Jump relocates entityID directly onto dest, rejected if the Manhattan
// distance exceeds maxRange (maxRange<=0 means unbounded). Unlike Move, it
// is the one action that may land on an impassable_void tile; doing so
// still completes the relocation, then kills the entity with cause "void"
// via the wired Killer.
func (e *Engine) Jump(entityID string, dest Tile, maxRange int, provokeAOO bool) bool {
	pos, ok := e.position(entityID)
	if !ok {
		return false
	}
	origin := pos.Anchor
	distance := origin.ManhattanDistance(dest)
	if maxRange > 0 && distance > maxRange {
		return false
	}
	if !e.terrain.IsValidPosition(dest.X, dest.Y, pos.Width, pos.Height) {
		return false
	}
	if e.terrain.IsOccupied(dest.X, dest.Y, pos.Width, pos.Height, entityID, false) {
		return false
	}

	voidLanding := e.terrain.HasEffect(dest.X, dest.Y, terrain.EffectImpassableVoid)
	if !e.terrain.IsWalkable(dest.X, dest.Y, pos.Width, pos.Height) && !voidLanding {
		return false
	}

	e.publishStarted(entityID, origin, dest, provokeAOO, 0, 0)
	if !e.terrain.MoveEntity(entityID, dest.X, dest.Y) {
		e.publishEnded(entityID, origin, dest, provokeAOO, false, 0, 0)
		return false
	}
	pos.Anchor = dest
	e.setPosition(entityID, pos)
	e.publishEnded(entityID, origin, dest, provokeAOO, true, 0, 0)

	e.updateFacing(entityID, origin, dest)
	e.recordMovementUsage(entityID, distance)

	if voidLanding && e.killer != nil {
		e.killer.KillEntity(entityID, "void")
	}
	return true
}
