// Package vision implements the Condition/Vision hooks (module 8): a narrow
// read surface over an entity's ConditionTracker exposing the states LOS and
// combat rules care about — night-vision tier, invisibility, and the
// damage-threshold Weakened variants — without handing either caller the
// tracker itself.
package vision

import (
	"github.com/tinkerforge/tacticore/components"
	"github.com/tinkerforge/tacticore/ecscore"
	"github.com/tinkerforge/tacticore/eventbus"
)

// Condition identifiers. Kept as the source's own names so wire payloads and
// save data stay recognizable.
const (
	NightVisionPartial   = "NightVision.Partial"
	NightVisionTotal     = "NightVision.Total"
	Invisible            = "Invisible"
	SeeInvisible         = "SeeInvisible"
	Poisoned             = "Poisoned"
	Slowed               = "Slowed"
	Immobilized          = "Immobilized"
	Handicap             = "Handicap"
	WeakenedPhysical     = "Weakened.Physical"
	WeakenedMentalSocial = "Weakened.MentalSocial"
	WeakenedTotal        = "Weakened.Total"
)

// EvtVisibilityStateChanged is published whenever a condition that affects
// what an entity can see, or be seen as, toggles.
const EvtVisibilityStateChanged = "visibility_state_changed"

var visibilityAffecting = map[string]bool{
	NightVisionPartial: true,
	NightVisionTotal:   true,
	Invisible:          true,
	SeeInvisible:       true,
}

// Engine owns no state of its own; it is a typed wrapper over each entity's
// ConditionTracker component.
type Engine struct {
	store    *ecscore.Store
	registry *components.Registry
	bus      *eventbus.Bus
}

// New creates a condition/vision read surface. bus may be nil.
func New(store *ecscore.Store, registry *components.Registry, bus *eventbus.Bus) *Engine {
	return &Engine{store: store, registry: registry, bus: bus}
}

func (e *Engine) tracker(entityID string) (*components.ConditionTracker, bool) {
	value, ok := e.store.TryGet(entityID, e.registry.ConditionTracker)
	if !ok {
		return nil, false
	}
	return value.(*components.ConditionTracker), true
}

func (e *Engine) ensureTracker(entityID string) *components.ConditionTracker {
	if tracker, ok := e.tracker(entityID); ok {
		return tracker
	}
	tracker := components.NewConditionTracker()
	e.store.AddComponent(entityID, e.registry.ConditionTracker, tracker)
	return tracker
}

// Has reports whether name is currently active for entityID, timed or
// dynamic. An entity with no ConditionTracker has no active states.
func (e *Engine) Has(entityID, name string) bool {
	tracker, ok := e.tracker(entityID)
	return ok && tracker.Has(name)
}

// ActiveStates returns the union of entityID's timed conditions and dynamic
// states, for the Game Facade's read-only entity views (§4.8).
func (e *Engine) ActiveStates(entityID string) []string {
	tracker, ok := e.tracker(entityID)
	if !ok {
		return nil
	}
	return tracker.ActiveStates()
}

// SetCondition marks a timed condition active, publishing
// visibility_state_changed if name affects what the entity can see or be
// seen as and it was not already active.
func (e *Engine) SetCondition(entityID, name string) {
	tracker := e.ensureTracker(entityID)
	if tracker.Has(name) {
		return
	}
	tracker.SetCondition(name)
	e.publishIfVisibilityAffecting(entityID, name)
}

// ClearCondition removes a timed condition, publishing
// visibility_state_changed under the same rule as SetCondition.
func (e *Engine) ClearCondition(entityID, name string) {
	tracker, ok := e.tracker(entityID)
	if !ok || !tracker.Has(name) {
		return
	}
	tracker.ClearCondition(name)
	e.publishIfVisibilityAffecting(entityID, name)
}

func (e *Engine) publishIfVisibilityAffecting(entityID, name string) {
	if !visibilityAffecting[name] {
		return
	}
	if e.bus == nil {
		return
	}
	e.bus.Publish(EvtVisibilityStateChanged, map[string]any{
		"entity_id": entityID,
		"condition": name,
		"active":    e.Has(entityID, name),
	})
}

// NightVisionTier reports entityID's night-vision tier: 0 none, 1 partial,
// 2 total. Implements losengine.NightVision.
func (e *Engine) NightVisionTier(entityID string) int {
	tracker, ok := e.tracker(entityID)
	if !ok {
		return 0
	}
	if tracker.Has(NightVisionTotal) {
		return 2
	}
	if tracker.Has(NightVisionPartial) {
		return 1
	}
	return 0
}

// IsInvisible reports whether entityID currently has the Invisible state.
func (e *Engine) IsInvisible(entityID string) bool {
	return e.Has(entityID, Invisible)
}

// CanSeeInvisible reports whether entityID can perceive Invisible targets.
func (e *Engine) CanSeeInvisible(entityID string) bool {
	return e.Has(entityID, SeeInvisible)
}
