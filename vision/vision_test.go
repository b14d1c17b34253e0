package vision

import (
	"testing"

	"github.com/tinkerforge/tacticore/components"
	"github.com/tinkerforge/tacticore/ecscore"
	"github.com/tinkerforge/tacticore/eventbus"
)

func newTestEngine(t *testing.T) (*Engine, *ecscore.Store, *components.Registry, *eventbus.Bus) {
	t.Helper()
	store := ecscore.NewStore()
	registry := components.Register(store)
	bus := eventbus.New()
	return New(store, registry, bus), store, registry, bus
}

func TestNightVisionTierDefaultsToNoneWithoutTracker(t *testing.T) {
	e, _, _, _ := newTestEngine(t)
	if got := e.NightVisionTier("nobody"); got != 0 {
		t.Fatalf("expected tier 0 for an entity with no ConditionTracker, got %d", got)
	}
}

func TestNightVisionTierReflectsHighestGrantedTier(t *testing.T) {
	e, _, _, _ := newTestEngine(t)
	e.SetCondition("scout", NightVisionPartial)
	if got := e.NightVisionTier("scout"); got != 1 {
		t.Fatalf("expected tier 1, got %d", got)
	}
	e.SetCondition("scout", NightVisionTotal)
	if got := e.NightVisionTier("scout"); got != 2 {
		t.Fatalf("expected tier 2 once total is granted, got %d", got)
	}
}

func TestSetConditionPublishesVisibilityStateChangedForVisionStates(t *testing.T) {
	e, _, _, bus := newTestEngine(t)
	var events []map[string]any
	bus.Subscribe(EvtVisibilityStateChanged, func(ev eventbus.Event) error {
		events = append(events, ev.Data)
		return nil
	})

	e.SetCondition("rogue", Invisible)
	if len(events) != 1 || events[0]["entity_id"] != "rogue" || events[0]["active"] != true {
		t.Fatalf("expected one visibility_state_changed(rogue, active=true), got %+v", events)
	}

	e.ClearCondition("rogue", Invisible)
	if len(events) != 2 || events[1]["active"] != false {
		t.Fatalf("expected a second event with active=false, got %+v", events)
	}
}

func TestSetConditionDoesNotPublishForNonVisionStates(t *testing.T) {
	e, _, _, bus := newTestEngine(t)
	published := false
	bus.Subscribe(EvtVisibilityStateChanged, func(eventbus.Event) error {
		published = true
		return nil
	})

	e.SetCondition("grunt", Poisoned)
	if published {
		t.Fatalf("expected Poisoned to not trigger visibility_state_changed")
	}
}

func TestWeakenedDicePenaltyAppliesOnlyToRelevantAttributeGroup(t *testing.T) {
	e, _, _, _ := newTestEngine(t)
	e.SetCondition("brute", WeakenedPhysical)

	if got := e.WeakenedDicePenalty("brute", 5, []string{"Strength"}); got != 3 {
		t.Errorf("expected physical roll penalized to 3, got %d", got)
	}
	if got := e.WeakenedDicePenalty("brute", 5, []string{"Intelligence"}); got != 5 {
		t.Errorf("expected mental roll unaffected by Weakened.Physical, got %d", got)
	}
}

func TestWeakenedTotalPenalizesAnyGroupButNeverStacks(t *testing.T) {
	e, _, _, _ := newTestEngine(t)
	e.SetCondition("victim", WeakenedTotal)
	e.SetCondition("victim", WeakenedPhysical)

	got := e.WeakenedDicePenalty("victim", 4, []string{"Strength"})
	if got != 2 {
		t.Fatalf("expected a single -2 penalty even with two Weakened variants active, got %d", got)
	}
}

func TestWeakenedDicePenaltyNeverGoesBelowZero(t *testing.T) {
	e, _, _, _ := newTestEngine(t)
	e.SetCondition("fragile", WeakenedTotal)
	if got := e.WeakenedDicePenalty("fragile", 1, []string{"Willpower"}); got != 0 {
		t.Fatalf("expected penalty floored at 0, got %d", got)
	}
}

func TestRefreshDamageThresholdsTogglesDynamicWeakenedStates(t *testing.T) {
	e, _, _, _ := newTestEngine(t)

	added, removed := e.RefreshDamageThresholds("soldier", 10, 10, 0, 8)
	if len(added) != 1 || added[0] != WeakenedPhysical || len(removed) != 0 {
		t.Fatalf("expected Weakened.Physical added at full health damage, got added=%v removed=%v", added, removed)
	}
	if !e.Has("soldier", WeakenedPhysical) {
		t.Fatalf("expected Weakened.Physical active on the tracker")
	}

	added, removed = e.RefreshDamageThresholds("soldier", 3, 10, 0, 8)
	if len(removed) != 1 || removed[0] != WeakenedPhysical || len(added) != 0 {
		t.Fatalf("expected Weakened.Physical cleared once damage drops below max, got added=%v removed=%v", added, removed)
	}
	if e.Has("soldier", WeakenedPhysical) {
		t.Fatalf("expected Weakened.Physical no longer active")
	}
}

func TestActiveStatesReturnsUnionOfTimedAndDynamic(t *testing.T) {
	e, _, _, _ := newTestEngine(t)
	e.SetCondition("hybrid", Slowed)
	e.RefreshDamageThresholds("hybrid", 10, 10, 0, 5)

	states := e.ActiveStates("hybrid")
	var hasSlowed, hasWeakened bool
	for _, s := range states {
		if s == Slowed {
			hasSlowed = true
		}
		if s == WeakenedPhysical {
			hasWeakened = true
		}
	}
	if !hasSlowed || !hasWeakened {
		t.Fatalf("expected both a timed and a dynamic state in ActiveStates, got %v", states)
	}
}
