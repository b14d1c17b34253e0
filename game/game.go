// Package game implements the Game Facade (§4.8): the composition root that
// owns the ECS Store, Terrain, and Event Bus together, exposes read-only
// entity views assembled across components, and provides kill_entity and
// the bus-rewiring contract the rest of the core depends on.
package game

import (
	"github.com/tinkerforge/tacticore/components"
	"github.com/tinkerforge/tacticore/ecscore"
	"github.com/tinkerforge/tacticore/eventbus"
	"github.com/tinkerforge/tacticore/terrain"
	"github.com/tinkerforge/tacticore/vision"
)

const (
	evtMovementResetRequested = "movement_reset_requested"
	evtVisibilityStateChanged = "visibility_state_changed"
	evtEntityDied             = "entity_died"
	evtRoundStarted           = "round_started"
	evtTurnStarted            = "turn_started"
)

// CharacterSheet is the narrow read/write surface onto the character-sheet
// domain object a CharacterRef points to (§3): life status and the traits
// that feed initiative, plus the one mutation the core itself performs —
// marking a character dead. The object's own type stays out of scope;
// callers supply whatever backs this (a save system, a test double, a
// richer character engine) at construction.
type CharacterSheet interface {
	IsDead(characterID string) bool
	MarkDead(characterID string)
	Virtues(characterID string) (selfControl, instinct int)
	Wits(characterID string) int
	InitiativeModifier(characterID string) int
}

// Game is the composition root: Store, Terrain, Event Bus, and the Vision
// engine, wired together the way a higher layer would otherwise have to do
// by hand. It does not hold the LOS, Movement, or Turn-Order engines; the
// caller constructs those over the same Store, Terrain, and bus.
type Game struct {
	Store      *ecscore.Store
	Registry   *components.Registry
	Terrain    *terrain.Terrain
	Vision     *vision.Engine
	characters CharacterSheet

	bus             *eventbus.Bus
	movementSub     eventbus.SubscriptionID
	visibilitySub   eventbus.SubscriptionID
	roundStartedSub eventbus.SubscriptionID
	turnStartedSub  eventbus.SubscriptionID
	subscribed      bool
	subscribedOnBus *eventbus.Bus
}

// New creates a Game Facade over an existing Store/Terrain/Vision stack and
// wires the initial event bus subscriptions. characters may be nil; in that
// case KillEntity skips marking the sheet dead and only publishes
// entity_died, and Characters returns nil (no stand-in sheet is supplied).
func New(store *ecscore.Store, registry *components.Registry, tr *terrain.Terrain, vis *vision.Engine, bus *eventbus.Bus, characters CharacterSheet) *Game {
	g := &Game{
		Store:      store,
		Registry:   registry,
		Terrain:    tr,
		Vision:     vis,
		characters: characters,
	}
	g.SetEventBus(bus)
	return g
}

// Characters returns the injected CharacterSheet, satisfying
// turnorder.CharacterProvider directly (same method set minus MarkDead).
func (g *Game) Characters() CharacterSheet {
	return g.characters
}

// SetEventBus rewires subscriptions onto a new bus, unsubscribing from the
// previous one first. Idempotent: calling it again with the same bus does
// not create duplicate subscriptions, matching the source's
// already-registered guard in set_event_bus.
func (g *Game) SetEventBus(bus *eventbus.Bus) {
	if g.subscribed && g.subscribedOnBus == bus {
		return
	}
	if g.subscribed && g.subscribedOnBus != nil {
		g.subscribedOnBus.Unsubscribe(evtMovementResetRequested, g.movementSub)
		g.subscribedOnBus.Unsubscribe(evtVisibilityStateChanged, g.visibilitySub)
		g.subscribedOnBus.Unsubscribe(evtRoundStarted, g.roundStartedSub)
		g.subscribedOnBus.Unsubscribe(evtTurnStarted, g.turnStartedSub)
	}
	g.bus = bus
	g.subscribed = false
	g.subscribedOnBus = nil
	if bus == nil {
		return
	}
	g.movementSub = bus.Subscribe(evtMovementResetRequested, g.handleMovementResetRequested)
	g.visibilitySub = bus.Subscribe(evtVisibilityStateChanged, g.handleVisibilityStateChanged)
	g.roundStartedSub, g.turnStartedSub = g.Terrain.SubscribeEffectEngine(bus)
	g.subscribed = true
	g.subscribedOnBus = bus
}

func (g *Game) handleMovementResetRequested(e eventbus.Event) error {
	entityID, _ := e.Data["entity_id"].(string)
	if entityID == "" {
		return nil
	}
	g.ResetMovementUsage(entityID)
	return nil
}

func (g *Game) handleVisibilityStateChanged(eventbus.Event) error {
	g.Terrain.BumpBlockerVersion()
	return nil
}

// ResetMovementUsage zeroes entityID's per-turn movement budget, called at
// turn start (directly, or via a published movement_reset_requested).
func (g *Game) ResetMovementUsage(entityID string) {
	value, ok := g.Store.TryGet(entityID, g.Registry.MovementUsage)
	if !ok {
		g.Store.AddComponent(entityID, g.Registry.MovementUsage, &components.MovementUsage{})
		return
	}
	value.(*components.MovementUsage).Reset()
}

// KillEntity marks entityID's character dead and publishes entity_died.
// Implements movement.Killer. A no-op if entityID has no CharacterRef.
func (g *Game) KillEntity(entityID, cause string) {
	value, ok := g.Store.TryGet(entityID, g.Registry.CharacterRef)
	if !ok {
		return
	}
	ref := value.(components.CharacterRef)
	if g.characters != nil {
		g.characters.MarkDead(ref.ID)
	}
	if g.bus != nil {
		g.bus.Publish(evtEntityDied, map[string]any{
			"entity_id": entityID,
			"cause":     cause,
		})
	}
}
