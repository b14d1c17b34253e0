// Package components holds the plain component data types of §3 and the
// registry that binds each one to an ecscore.ComponentType slot.
package components

import (
	"fmt"

	"github.com/tinkerforge/tacticore/coords"
	"github.com/tinkerforge/tacticore/ecscore"
)

// Position anchors an entity at a tile with a rectangular extent. The
// entity occupies {(x+dx, y+dy) | 0<=dx<Width, 0<=dy<Height} unless a
// BodyFootprint overrides it.
type Position struct {
	Anchor        coords.Tile
	Width, Height int
}

// Footprint returns the tiles this Position occupies when no
// BodyFootprint is present.
func (p Position) Footprint() []coords.Tile {
	tiles := make([]coords.Tile, 0, p.Width*p.Height)
	for dx := 0; dx < p.Width; dx++ {
		for dy := 0; dy < p.Height; dy++ {
			tiles = append(tiles, p.Anchor.Add(dx, dy))
		}
	}
	return tiles
}

// BodyFootprint overrides Position's rectangular extent with an explicit,
// non-empty set of offsets relative to the anchor.
type BodyFootprint struct {
	Offsets []coords.Tile
}

// NewRectangularFootprint builds a BodyFootprint equivalent to a width x
// height rectangle anchored at (0,0), mirroring the original's
// BodyFootprintComponent.from_size.
func NewRectangularFootprint(width, height int) BodyFootprint {
	offsets := make([]coords.Tile, 0, width*height)
	for dx := 0; dx < width; dx++ {
		for dy := 0; dy < height; dy++ {
			offsets = append(offsets, coords.Tile{X: dx, Y: dy})
		}
	}
	return BodyFootprint{Offsets: offsets}
}

// Expand returns the absolute tiles occupied when anchored at anchor.
func (f BodyFootprint) Expand(anchor coords.Tile) []coords.Tile {
	tiles := make([]coords.Tile, len(f.Offsets))
	for i, offset := range f.Offsets {
		tiles[i] = anchor.Add(offset.X, offset.Y)
	}
	return tiles
}

// CharacterRef links an entity to the character-sheet domain object. The
// core only ever reads traits, states, and life status through this
// narrow surface; the referenced object's own type is out of scope.
type CharacterRef struct {
	ID string
}

// Team is an optional team affiliation.
type Team struct {
	ID string
}

// Initiative resolves the final initiative value on top of the base
// initiative computed from character traits (§4.7).
type Initiative struct {
	Bonus    int
	Override *int
	Enabled  bool
}

// Resolve returns the final initiative given the base initiative and the
// character's own modifier, per §3's resolution rule.
func (i Initiative) Resolve(base, characterModifier int) int {
	if !i.Enabled {
		return base + characterModifier
	}
	if i.Override != nil {
		return *i.Override + characterModifier
	}
	return base + characterModifier + i.Bonus
}

// MovementUsage tracks per-turn movement expenditure.
type MovementUsage struct {
	Distance int
}

// Reset zeroes the accumulated distance, called at turn start.
func (m *MovementUsage) Reset() {
	m.Distance = 0
}

// Add increments tracked distance by amount.
func (m *MovementUsage) Add(amount int) {
	m.Distance += amount
}

// ConditionTracker stores active timed conditions plus dynamic-only
// states (e.g. thresholds) and exposes their union.
type ConditionTracker struct {
	conditions    map[string]struct{}
	dynamicStates map[string]struct{}
}

// NewConditionTracker creates an empty tracker.
func NewConditionTracker() *ConditionTracker {
	return &ConditionTracker{
		conditions:    make(map[string]struct{}),
		dynamicStates: make(map[string]struct{}),
	}
}

// SetCondition marks a timed condition active.
func (c *ConditionTracker) SetCondition(name string) {
	c.conditions[name] = struct{}{}
}

// ClearCondition removes a timed condition.
func (c *ConditionTracker) ClearCondition(name string) {
	delete(c.conditions, name)
}

// SetDynamicState marks a dynamic-only state active.
func (c *ConditionTracker) SetDynamicState(name string) {
	c.dynamicStates[name] = struct{}{}
}

// ClearDynamicState clears a dynamic-only state.
func (c *ConditionTracker) ClearDynamicState(name string) {
	delete(c.dynamicStates, name)
}

// ActiveStates returns the union of timed conditions and dynamic states.
func (c *ConditionTracker) ActiveStates() []string {
	out := make([]string, 0, len(c.conditions)+len(c.dynamicStates))
	for name := range c.conditions {
		out = append(out, name)
	}
	for name := range c.dynamicStates {
		out = append(out, name)
	}
	return out
}

// Has reports whether name is currently active, timed or dynamic.
func (c *ConditionTracker) Has(name string) bool {
	if _, ok := c.conditions[name]; ok {
		return true
	}
	_, ok := c.dynamicStates[name]
	return ok
}

// CoverKind is one of the three recognized cover presets.
type CoverKind string

const (
	CoverLight        CoverKind = "light"
	CoverHeavy        CoverKind = "heavy"
	CoverRetrenchment CoverKind = "retrenchment"
)

var coverBonuses = map[CoverKind]int{
	CoverLight:        -1,
	CoverHeavy:        0,
	CoverRetrenchment: 1,
}

// Cover is a defensive bonus object occupying a tile.
type Cover struct {
	Kind         CoverKind
	Bonus        int
	Destructible bool
}

// NewCover builds a Cover with the standard bonus for kind.
func NewCover(kind CoverKind, destructible bool) (Cover, error) {
	bonus, ok := coverBonuses[kind]
	if !ok {
		return Cover{}, fmt.Errorf("components: invalid cover kind %q", kind)
	}
	return Cover{Kind: kind, Bonus: bonus, Destructible: destructible}, nil
}

// Structure is a destructible decor object's durability.
type Structure struct {
	Vigor, VigorMax int
	ArmorLevel      int
}

// NewStructure creates a Structure at full vigor.
func NewStructure(vigorMax, armorLevel int) Structure {
	return Structure{Vigor: vigorMax, VigorMax: vigorMax, ArmorLevel: armorLevel}
}

// ApplyDamage reduces vigor by amount, halving (rounded up, minimum 1
// effective point) superficial damage per §3, and returns the effective
// damage subtracted.
func (s *Structure) ApplyDamage(amount int, superficial bool) int {
	if amount <= 0 {
		return 0
	}
	effective := amount
	if superficial {
		effective = (amount + 1) / 2
	}
	if effective <= 0 {
		effective = 1
	}
	if effective > s.Vigor {
		effective = s.Vigor
	}
	s.Vigor -= effective
	return effective
}

// Destroyed reports whether the structure's vigor has been exhausted.
func (s Structure) Destroyed() bool {
	return s.Vigor <= 0
}

// Facing is an entity's current orientation, expressed as the last
// nonzero step vector it moved along.
type Facing struct {
	Dx, Dy int
	Fixed  bool
}

// UpdateToward sets the facing to (dx, dy) unless it is fixed.
func (f *Facing) UpdateToward(dx, dy int) {
	if f.Fixed {
		return
	}
	if dx == 0 && dy == 0 {
		return
	}
	f.Dx, f.Dy = dx, dy
}

// Registry binds every component type in this package to a Store slot.
type Registry struct {
	Position         *ecscore.ComponentType
	BodyFootprint    *ecscore.ComponentType
	CharacterRef     *ecscore.ComponentType
	Team             *ecscore.ComponentType
	Initiative       *ecscore.ComponentType
	MovementUsage    *ecscore.ComponentType
	ConditionTracker *ecscore.ComponentType
	Cover            *ecscore.ComponentType
	Structure        *ecscore.ComponentType
	Facing           *ecscore.ComponentType
}

// Register declares every component type on store and returns the
// Registry other packages use to read and write them.
func Register(store *ecscore.Store) *Registry {
	return &Registry{
		Position:         store.Register("position"),
		BodyFootprint:    store.Register("body_footprint"),
		CharacterRef:     store.Register("character_ref"),
		Team:             store.Register("team"),
		Initiative:       store.Register("initiative"),
		MovementUsage:    store.Register("movement_usage"),
		ConditionTracker: store.Register("condition_tracker"),
		Cover:            store.Register("cover"),
		Structure:        store.Register("structure"),
		Facing:           store.Register("facing"),
	}
}
