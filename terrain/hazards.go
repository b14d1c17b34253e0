package terrain

// AddEffect marks every valid tile in positions with an effect of kind name
// carrying data, and publishes terrain_effect_added once for the whole
// batch. If name affects cost or walkability, terrain_version is bumped and
// the path/reachability caches are invalidated.
func (t *Terrain) AddEffect(name EffectKind, positions []Tile, data map[string]any) {
	var added []Tile
	for _, pos := range positions {
		if !t.IsValidPosition(pos.X, pos.Y, 1, 1) {
			continue
		}
		t.effectsByTile[pos] = append(t.effectsByTile[pos], Effect{Name: name, Data: data})
		added = append(added, pos)
	}
	if len(added) == 0 {
		return
	}
	t.publish(evtEffectAdded, map[string]any{"name": name, "positions": added, "data": data})
	if costAffecting[name] {
		t.terrainVersion++
		t.invalidateCaches()
	}
}

// RemoveEffect removes effects matching predicate from positions (or every
// tile carrying an effect, if positions is nil), publishing
// terrain_effect_removed for the tiles actually changed.
func (t *Terrain) RemoveEffect(predicate func(Effect) bool, positions []Tile) {
	targets := positions
	if targets == nil {
		targets = make([]Tile, 0, len(t.effectsByTile))
		for tile := range t.effectsByTile {
			targets = append(targets, tile)
		}
	}

	var removed []Tile
	bumpVersion := false
	for _, tile := range targets {
		effects, ok := t.effectsByTile[tile]
		if !ok {
			continue
		}
		kept := effects[:0]
		changed := false
		for _, eff := range effects {
			if predicate(eff) {
				changed = true
				if costAffecting[eff.Name] {
					bumpVersion = true
				}
				continue
			}
			kept = append(kept, eff)
		}
		if !changed {
			continue
		}
		if len(kept) == 0 {
			delete(t.effectsByTile, tile)
		} else {
			t.effectsByTile[tile] = kept
		}
		removed = append(removed, tile)
	}

	if len(removed) == 0 {
		return
	}
	t.publish(evtEffectRemoved, map[string]any{"positions": removed})
	if bumpVersion {
		t.terrainVersion++
		t.invalidateCaches()
	}
}

// AddDifficult marks positions as difficult terrain (movement cost 2).
func (t *Terrain) AddDifficult(positions []Tile) {
	t.AddEffect(EffectDifficult, positions, nil)
}

// AddVeryDifficult marks positions as very difficult terrain (movement cost 3).
func (t *Terrain) AddVeryDifficult(positions []Tile) {
	t.AddEffect(EffectVeryDifficult, positions, nil)
}

// AddImpassableSolid marks positions as unenterable.
func (t *Terrain) AddImpassableSolid(positions []Tile) {
	t.AddEffect(EffectImpassableSolid, positions, nil)
}

// AddImpassableVoid marks positions as void tiles: unenterable by ordinary
// movement (only a jump may land on one — see the movement engine).
func (t *Terrain) AddImpassableVoid(positions []Tile) {
	t.AddEffect(EffectImpassableVoid, positions, nil)
}

// AddDangerous marks positions as a dangerous hazard with the given
// difficulty/damage/aggravated parameters.
func (t *Terrain) AddDangerous(positions []Tile, difficulty, damage int, aggravated bool) {
	t.AddEffect(EffectDangerous, positions, map[string]any{
		"difficulty": difficulty,
		"damage":     damage,
		"aggravated": aggravated,
	})
}

// AddVeryDangerous marks center as a very-dangerous hazard and lays a
// dangerous_aura of the given radius around it, gradient or flat per
// gradient.
func (t *Terrain) AddVeryDangerous(center Tile, radius, difficulty, damage int, aggravated, gradient bool) {
	t.AddEffect(EffectVeryDangerous, []Tile{center}, map[string]any{
		"difficulty": difficulty,
		"damage":     damage,
		"aggravated": aggravated,
		"radius":     radius,
	})

	var auraTiles []Tile
	for dx := -radius; dx <= radius; dx++ {
		for dy := -radius; dy <= radius; dy++ {
			if dx == 0 && dy == 0 {
				continue
			}
			tile := center.Add(dx, dy)
			if !t.IsValidPosition(tile.X, tile.Y, 1, 1) {
				continue
			}
			if absInt(dx)+absInt(dy) <= radius {
				auraTiles = append(auraTiles, tile)
			}
		}
	}
	if len(auraTiles) == 0 {
		return
	}
	t.AddEffect(EffectDangerousAura, auraTiles, map[string]any{
		"source":     center,
		"difficulty": difficulty,
		"damage":     damage,
		"aggravated": aggravated,
		"radius":     radius,
		"gradient":   gradient,
	})
}

// AddCurrent marks positions as flowing terrain that displaces occupants by
// (dx,dy) up to magnitude tiles at round start.
func (t *Terrain) AddCurrent(positions []Tile, dx, dy, magnitude int) {
	t.AddEffect(EffectCurrent, positions, map[string]any{"dx": dx, "dy": dy, "magnitude": magnitude})
}

// AddDarkLow marks positions with low darkness (-1 attack modifier).
func (t *Terrain) AddDarkLow(positions []Tile) {
	t.AddEffect(EffectDarkLow, positions, nil)
}

// AddDarkTotal marks positions with total darkness (-3 attack modifier).
func (t *Terrain) AddDarkTotal(positions []Tile) {
	t.AddEffect(EffectDarkTotal, positions, nil)
}

// GetEffects returns the effects on (x,y) in insertion order.
func (t *Terrain) GetEffects(x, y int) []Effect {
	return t.effectsByTile[Tile{X: x, Y: y}]
}

// HasEffect reports whether (x,y) carries an effect of the given kind.
func (t *Terrain) HasEffect(x, y int, name EffectKind) bool {
	for _, eff := range t.effectsByTile[Tile{X: x, Y: y}] {
		if eff.Name == name {
			return true
		}
	}
	return false
}

func (t *Terrain) isImpassableSolid(tile Tile) bool {
	return t.hasEffectAt(tile, EffectImpassableSolid)
}

func (t *Terrain) isImpassableVoid(tile Tile) bool {
	return t.hasEffectAt(tile, EffectImpassableVoid)
}

func (t *Terrain) hasEffectAt(tile Tile, name EffectKind) bool {
	for _, eff := range t.effectsByTile[tile] {
		if eff.Name == name {
			return true
		}
	}
	return false
}

// GetMovementCost returns the movement cost of entering (x,y): the maximum
// cost implied by every effect present, at minimum 1, per §4.3's
// cost-aggregation rule.
func (t *Terrain) GetMovementCost(x, y int) int {
	tile := Tile{X: x, Y: y}
	cost := 1
	maxAuraIntensity := 0
	maxAuraRadius := 0
	auraGradient := false
	var auraSource Tile
	haveAuraSource := false

	for _, eff := range t.effectsByTile[tile] {
		switch eff.Name {
		case EffectDifficult:
			cost = maxInt(cost, 2)
		case EffectVeryDifficult:
			cost = maxInt(cost, 3)
		case EffectDangerous:
			cost = maxInt(cost, 4)
		case EffectVeryDangerous:
			cost = maxInt(cost, 12)
		case EffectDangerousAura:
			if boolData(eff.Data, "gradient") {
				auraGradient = true
				radius := intData(eff.Data, "radius", 3)
				if src, ok := tileData(eff.Data, "source"); ok {
					auraSource = src
					haveAuraSource = true
					maxAuraRadius = maxInt(maxAuraRadius, radius)
				}
			} else {
				intensity := intData(eff.Data, "intensity", 1)
				maxAuraIntensity = maxInt(maxAuraIntensity, intensity)
			}
		}
	}

	if auraGradient && haveAuraSource {
		dist := tile.ManhattanDistance(auraSource)
		cost = maxInt(cost, minInt(6, 4+maxInt(0, maxAuraRadius-dist)))
	} else if maxAuraIntensity > 0 {
		cost = maxInt(cost, minInt(6, 3+maxAuraIntensity))
	}
	return cost
}

// HandleEntityEnter aggregates, across entityID's footprint at (x,y), the
// strongest very_dangerous, dangerous, and dangerous_aura effect data and
// publishes at most one terrain_effect_trigger per category.
func (t *Terrain) HandleEntityEnter(entityID string, x, y int) {
	anchor := Tile{X: x, Y: y}
	offsets := t.footprint[entityID]
	if offsets == nil {
		offsets = []Tile{{X: 0, Y: 0}}
	}

	var bestVeryDangerous, bestDangerous, bestAura map[string]any
	for _, off := range offsets {
		tile := anchor.Add(off.X, off.Y)
		for _, eff := range t.effectsByTile[tile] {
			switch eff.Name {
			case EffectVeryDangerous:
				if bestVeryDangerous == nil ||
					intData(eff.Data, "difficulty", 0) > intData(bestVeryDangerous, "difficulty", 0) ||
					intData(eff.Data, "damage", 0) > intData(bestVeryDangerous, "damage", 0) {
					bestVeryDangerous = eff.Data
				}
			case EffectDangerous:
				if bestDangerous == nil ||
					intData(eff.Data, "difficulty", 0) > intData(bestDangerous, "difficulty", 0) ||
					intData(eff.Data, "damage", 0) > intData(bestDangerous, "damage", 0) {
					bestDangerous = eff.Data
				}
			case EffectDangerousAura:
				gradient := boolData(eff.Data, "gradient")
				if gradient {
					if bestAura == nil || !boolData(bestAura, "gradient") ||
						intData(eff.Data, "radius", 0) > intData(bestAura, "radius", 0) {
						bestAura = eff.Data
					}
				} else if bestAura == nil ||
					(!boolData(bestAura, "gradient") && intData(eff.Data, "intensity", 0) > intData(bestAura, "intensity", 0)) {
					bestAura = eff.Data
				}
			}
		}
	}

	tile := Tile{X: x, Y: y}
	if bestVeryDangerous != nil {
		t.publishTrigger(entityID, tile, EffectVeryDangerous, bestVeryDangerous, true)
	}
	if bestDangerous != nil {
		t.publishTrigger(entityID, tile, EffectDangerous, bestDangerous, false)
	}
	if bestAura != nil {
		t.publishTrigger(entityID, tile, EffectDangerousAura, bestAura, false)
	}
}

func (t *Terrain) publishTrigger(entityID string, tile Tile, kind EffectKind, data map[string]any, autoFail bool) {
	payload := map[string]any{
		"entity_id": entityID,
		"position":  tile,
		"effect":    kind,
	}
	if autoFail {
		payload["auto_fail"] = true
	}
	for k, v := range data {
		payload[k] = v
	}
	t.publish(evtEffectTrigger, payload)
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
