package terrain

import "github.com/tinkerforge/tacticore/eventbus"

// SubscribeEffectEngine wires the Terrain-Effect Engine (§4.6) onto bus:
// round_started displaces entities standing on current tiles, and
// turn_started re-triggers hazard events for the entity whose turn is
// beginning. These are the Turn-Order Engine's own published event names
// (§6.1's wire-stable taxonomy never defines a present-tense round_start/
// turn_start pair). Returns the two subscription IDs so a caller rewiring
// onto a different bus (the Game Facade's SetEventBus) can unsubscribe
// them first. Call once after constructing both the bus and the terrain —
// game.New does this for the assembled Game.
func (t *Terrain) SubscribeEffectEngine(bus *eventbus.Bus) (roundStarted, turnStarted eventbus.SubscriptionID) {
	roundStarted = bus.Subscribe("round_started", func(event eventbus.Event) error {
		t.onRoundStart()
		return nil
	})
	turnStarted = bus.Subscribe("turn_started", func(event eventbus.Event) error {
		entityID, _ := event.Data["entity_id"].(string)
		if entityID != "" {
			t.onTurnStart(entityID)
		}
		return nil
	})
	return roundStarted, turnStarted
}

// onRoundStart displaces every entity standing on a current tile by that
// tile's (dx,dy) vector, one step at a time, up to magnitude steps, stopping
// at the first invalid, non-walkable, or occupied tile. Only entities that
// actually moved get terrain_current_moved.
func (t *Terrain) onRoundStart() {
	type move struct {
		id   string
		tile Tile
	}
	starts := make([]move, 0, len(t.anchors))
	for id, tile := range t.anchors {
		starts = append(starts, move{id: id, tile: tile})
	}

	for _, m := range starts {
		entityID, origin := m.id, m.tile
		current, ok := t.firstEffect(origin, EffectCurrent)
		if !ok {
			continue
		}
		dx := intData(current.Data, "dx", 0)
		dy := intData(current.Data, "dy", 0)
		magnitude := intData(current.Data, "magnitude", 1)
		if (dx == 0 && dy == 0) || magnitude <= 0 {
			continue
		}

		offsets := t.footprint[entityID]

		cur := origin
		for step := 0; step < magnitude; step++ {
			next := cur.Add(dx, dy)
			if !t.validOffsets(next, offsets) || !t.walkableOffsets(next, offsets) {
				break
			}
			if t.occupiedOffsets(next, offsets, entityID, false) {
				break
			}
			if !t.MoveEntity(entityID, next.X, next.Y) {
				break
			}
			cur = next
		}

		if cur != origin {
			t.publish(evtCurrentMoved, map[string]any{
				"entity_id":    entityID,
				"old_position": origin,
				"new_position": cur,
				"dx":           dx,
				"dy":           dy,
				"magnitude":    cur.ManhattanDistance(origin),
			})
		}
	}
}

// onTurnStart unconditionally re-publishes terrain_effect_trigger for any
// very_dangerous/dangerous/dangerous_aura effect under entityID's current
// footprint, regardless of whether it just moved there.
func (t *Terrain) onTurnStart(entityID string) {
	anchor, ok := t.anchors[entityID]
	if !ok {
		return
	}
	t.HandleEntityEnter(entityID, anchor.X, anchor.Y)
}

func (t *Terrain) firstEffect(tile Tile, name EffectKind) (Effect, bool) {
	for _, eff := range t.effectsByTile[tile] {
		if eff.Name == name {
			return eff, true
		}
	}
	return Effect{}, false
}
