// Package turnorder implements the Turn-Order Engine (§4.7): initiative
// calculation from character traits, round and turn sequencing, and the
// per-entity tie-breaker that keeps equal initiatives ordered deterministically
// for the life of an Engine.
package turnorder

import (
	"math/rand"
	"sort"

	"github.com/tinkerforge/tacticore/components"
	"github.com/tinkerforge/tacticore/ecscore"
	"github.com/tinkerforge/tacticore/eventbus"
)

const (
	EvtRoundStarted = "round_started"
	EvtTurnStarted  = "turn_started"
	EvtTurnEnded    = "turn_ended"
)

// CharacterProvider is the narrow read surface onto the character-sheet
// domain object a CharacterRef points to (§3): life status and the traits
// that feed initiative. The referenced object's own type stays out of scope.
type CharacterProvider interface {
	IsDead(characterID string) bool
	Virtues(characterID string) (selfControl, instinct int)
	Wits(characterID string) int
	InitiativeModifier(characterID string) int
}

// Engine is the Turn-Order Engine: round and turn sequencing over every
// living entity with a CharacterRef.
type Engine struct {
	store      *ecscore.Store
	registry   *components.Registry
	bus        *eventbus.Bus
	characters CharacterProvider
	rng        *rand.Rand

	tieBreakers map[string]int64

	turnOrder []string
	turnIndex int
	round     int
}

// New creates a Turn-Order Engine and immediately starts round 1, mirroring
// the source's constructor-starts-a-round behavior. seed controls the
// per-entity tie-breaker stream; pass a fixed seed for reproducible tests.
func New(store *ecscore.Store, registry *components.Registry, bus *eventbus.Bus, characters CharacterProvider, seed int64) *Engine {
	e := &Engine{
		store:       store,
		registry:    registry,
		bus:         bus,
		characters:  characters,
		rng:         rand.New(rand.NewSource(seed)),
		tieBreakers: make(map[string]int64),
	}
	e.StartRound()
	return e
}

type livingEntry struct {
	id         string
	initiative int
	tieBreaker int64
}

func (e *Engine) tieBreaker(entityID string) int64 {
	if value, ok := e.tieBreakers[entityID]; ok {
		return value
	}
	value := e.rng.Int63n(1_000_000_000)
	e.tieBreakers[entityID] = value
	return value
}

func (e *Engine) baseInitiative(characterID string) int {
	selfControl, instinct := e.characters.Virtues(characterID)
	best := selfControl
	if instinct > best {
		best = instinct
	}
	return best + e.characters.Wits(characterID)
}

func (e *Engine) finalInitiative(entityID, characterID string) int {
	base := e.baseInitiative(characterID)
	modifier := e.characters.InitiativeModifier(characterID)
	value, ok := e.store.TryGet(entityID, e.registry.Initiative)
	if !ok {
		return components.Initiative{}.Resolve(base, modifier)
	}
	return value.(components.Initiative).Resolve(base, modifier)
}

func (e *Engine) livingEntries() []livingEntry {
	var entries []livingEntry
	for _, row := range e.store.Iter(e.registry.CharacterRef) {
		ref := row.Value.(components.CharacterRef)
		if e.characters.IsDead(ref.ID) {
			continue
		}
		entries = append(entries, livingEntry{
			id:         row.StringID,
			initiative: e.finalInitiative(row.StringID, ref.ID),
			tieBreaker: e.tieBreaker(row.StringID),
		})
	}
	return entries
}

// StartRound collects every living entity with a CharacterRef, sorts them
// descending by (final initiative, tie-breaker), and publishes
// round_started followed by turn_started for the first entity.
func (e *Engine) StartRound() {
	e.round++
	entries := e.livingEntries()
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].initiative != entries[j].initiative {
			return entries[i].initiative > entries[j].initiative
		}
		return entries[i].tieBreaker > entries[j].tieBreaker
	})

	e.turnOrder = make([]string, len(entries))
	for i, entry := range entries {
		e.turnOrder[i] = entry.id
	}
	e.turnIndex = 0

	e.publish(EvtRoundStarted, map[string]any{
		"round_number": e.round,
		"turn_order":   e.GetTurnOrder(),
	})
	if first, ok := e.CurrentEntity(); ok {
		e.publish(EvtTurnStarted, map[string]any{"round_number": e.round, "entity_id": first})
	}
}

// GetTurnOrder returns a copy of the current round's initiative order.
func (e *Engine) GetTurnOrder() []string {
	out := make([]string, len(e.turnOrder))
	copy(out, e.turnOrder)
	return out
}

// Round returns the current round number (1-based).
func (e *Engine) Round() int {
	return e.round
}

// CurrentEntity returns whose turn it is, or false if the round is empty or
// past its end.
func (e *Engine) CurrentEntity() (string, bool) {
	if e.turnIndex < 0 || e.turnIndex >= len(e.turnOrder) {
		return "", false
	}
	return e.turnOrder[e.turnIndex], true
}

// DelayCurrentEntity moves the current entity one slot later in this
// round's order, or removes it from the round entirely if it is already
// last.
func (e *Engine) DelayCurrentEntity() {
	if e.turnIndex < 0 || e.turnIndex >= len(e.turnOrder) {
		return
	}
	if e.turnIndex < len(e.turnOrder)-1 {
		e.turnOrder[e.turnIndex], e.turnOrder[e.turnIndex+1] = e.turnOrder[e.turnIndex+1], e.turnOrder[e.turnIndex]
		return
	}
	e.turnOrder = e.turnOrder[:len(e.turnOrder)-1]
}

// NextTurn publishes turn_ended for the current entity, advances the
// index, and either publishes turn_started for the next entity in this
// round or starts a new round (which publishes round_started and its own
// turn_started). Returns the new current entity, if any.
func (e *Engine) NextTurn() (string, bool) {
	if current, ok := e.CurrentEntity(); ok {
		e.publish(EvtTurnEnded, map[string]any{"round_number": e.round, "entity_id": current})
	}
	e.turnIndex++
	if e.turnIndex >= len(e.turnOrder) {
		e.StartRound()
	} else if next, ok := e.CurrentEntity(); ok {
		e.publish(EvtTurnStarted, map[string]any{"round_number": e.round, "entity_id": next})
	}
	return e.CurrentEntity()
}

func (e *Engine) publish(eventType string, payload map[string]any) {
	if e.bus != nil {
		e.bus.Publish(eventType, payload)
	}
}
