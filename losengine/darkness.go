package losengine

import "github.com/tinkerforge/tacticore/terrain"

// tileDarkness returns the darkness tier of a tile: 0 none, 1 low, 2 total.
func (e *Engine) tileDarkness(tile Tile) int {
	if e.terrain.HasEffect(tile.X, tile.Y, terrain.EffectDarkTotal) {
		return 2
	}
	if e.terrain.HasEffect(tile.X, tile.Y, terrain.EffectDarkLow) {
		return 1
	}
	return 0
}

// CanSee layers the domain's dynamic LOS blockers on top of the geometric
// HasLOS cache: a defender standing on a dark_total tile is invisible to an
// observer without total night vision, even along an otherwise clear ray.
// dark_low never blocks LOS, only the attack modifier below.
func (e *Engine) CanSee(observerID string, observer, defender Tile, nv NightVision) bool {
	if !e.HasLOS(observer, defender) {
		return false
	}
	if e.tileDarkness(defender) == 2 {
		tier := 0
		if nv != nil {
			tier = nv.NightVisionTier(observerID)
		}
		if tier < 2 {
			return false
		}
	}
	return true
}

// DarknessAttackModifier returns the darkness-driven attack modifier
// (§4.4): -3 for total darkness without total night vision (0 instead when
// the geometric ray itself is blocked), -1 for low darkness without partial
// night vision, 0 otherwise. Never below -3.
//
// Total darkness ordinarily means CanSee already blocked the attack before
// this is consulted; the -3 fallback exists for callers that reached a
// darkness check without going through CanSee first.
func (e *Engine) DarknessAttackModifier(observerID string, observer, defender Tile, nv NightVision) int {
	darkness := e.tileDarkness(defender)
	tier := 0
	if nv != nil {
		tier = nv.NightVisionTier(observerID)
	}

	if darkness == 2 && tier < 2 {
		if !e.HasLOS(observer, defender) {
			return 0
		}
		return -3
	}
	if darkness == 1 && tier < 1 {
		return -1
	}
	return 0
}
