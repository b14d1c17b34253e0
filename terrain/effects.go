package terrain

import "github.com/tinkerforge/tacticore/coords"

// Tile is the grid coordinate type terrain operates on.
type Tile = coords.Tile

// EffectKind names one of the recognized dynamic terrain effects (§3).
type EffectKind string

const (
	EffectDifficult       EffectKind = "difficult"
	EffectVeryDifficult   EffectKind = "very_difficult"
	EffectImpassableSolid EffectKind = "impassable_solid"
	EffectImpassableVoid  EffectKind = "impassable_void"
	EffectDangerous       EffectKind = "dangerous"
	EffectVeryDangerous   EffectKind = "very_dangerous"
	EffectDangerousAura   EffectKind = "dangerous_aura"
	EffectCurrent         EffectKind = "current"
	EffectDarkLow         EffectKind = "dark_low"
	EffectDarkTotal       EffectKind = "dark_total"
)

// costAffecting lists the effect kinds whose add/remove must bump
// terrain_version because they change cost or walkability (mirrors
// terrain_manager.py's add_effect rebuild-trigger list).
var costAffecting = map[EffectKind]bool{
	EffectDifficult:       true,
	EffectVeryDifficult:   true,
	EffectImpassableSolid: true,
	EffectImpassableVoid:  true,
	EffectDarkLow:         true,
	EffectDarkTotal:       true,
	EffectDangerous:       true,
	EffectVeryDangerous:   true,
	EffectDangerousAura:   true,
}

// Effect is one dynamic modifier applied to a tile.
type Effect struct {
	Name EffectKind
	Data map[string]any
}

func intData(data map[string]any, key string, fallback int) int {
	if data == nil {
		return fallback
	}
	v, ok := data[key]
	if !ok {
		return fallback
	}
	switch n := v.(type) {
	case int:
		return n
	case float64:
		return int(n)
	default:
		return fallback
	}
}

func boolData(data map[string]any, key string) bool {
	if data == nil {
		return false
	}
	v, ok := data[key]
	if !ok {
		return false
	}
	b, _ := v.(bool)
	return b
}

func tileData(data map[string]any, key string) (Tile, bool) {
	if data == nil {
		return Tile{}, false
	}
	v, ok := data[key]
	if !ok {
		return Tile{}, false
	}
	t, ok := v.(Tile)
	return t, ok
}
