package vision

import "github.com/tinkerforge/tacticore/config"

// Attribute groups the Weakened dice-pool penalty checks against.
var (
	PhysicalAttributes = map[string]bool{"Strength": true, "Dexterity": true, "Stamina": true}
	MentalAttributes   = map[string]bool{"Perception": true, "Intelligence": true, "Wits": true}
	SocialAttributes   = map[string]bool{"Charisma": true, "Manipulation": true, "Appearance": true}
	WillpowerTrait     = map[string]bool{"Willpower": true}
)

func anyIn(used []string, group map[string]bool) bool {
	for _, attr := range used {
		if group[attr] {
			return true
		}
	}
	return false
}

// WeakenedDicePenalty applies the Weakened penalty (-2 dice, never stacking
// past -2) to basePool if entityID has a Weakened variant relevant to
// usedAttributes. Total applies to any physical, mental, social, or
// willpower trait; Physical and MentalSocial apply only to their own group.
func (e *Engine) WeakenedDicePenalty(entityID string, basePool int, usedAttributes []string) int {
	if basePool <= 0 || len(usedAttributes) == 0 {
		return basePool
	}
	tracker, ok := e.tracker(entityID)
	if !ok {
		return basePool
	}

	if tracker.Has(WeakenedTotal) {
		if anyIn(usedAttributes, PhysicalAttributes) || anyIn(usedAttributes, MentalAttributes) ||
			anyIn(usedAttributes, SocialAttributes) || anyIn(usedAttributes, WillpowerTrait) {
			return maxInt(0, basePool-config.WeakenedPenaltyDice)
		}
		return basePool
	}

	penalized := (tracker.Has(WeakenedPhysical) && anyIn(usedAttributes, PhysicalAttributes)) ||
		(tracker.Has(WeakenedMentalSocial) && (anyIn(usedAttributes, MentalAttributes) ||
			anyIn(usedAttributes, SocialAttributes) || anyIn(usedAttributes, WillpowerTrait)))
	if penalized {
		return maxInt(0, basePool-config.WeakenedPenaltyDice)
	}
	return basePool
}

// RefreshDamageThresholds recomputes entityID's damage-based Weakened
// variants from its current damage totals, activating or clearing the
// corresponding dynamic state on its ConditionTracker. Returns the
// identifiers added and removed this call.
func (e *Engine) RefreshDamageThresholds(entityID string, healthDamage, maxHealth, willpowerDamage, maxWillpower int) (added, removed []string) {
	tracker := e.ensureTracker(entityID)

	physicalActive := maxHealth > 0 && healthDamage >= maxHealth
	if physicalActive && !tracker.Has(WeakenedPhysical) {
		tracker.SetDynamicState(WeakenedPhysical)
		added = append(added, WeakenedPhysical)
	}
	if !physicalActive && tracker.Has(WeakenedPhysical) {
		tracker.ClearDynamicState(WeakenedPhysical)
		removed = append(removed, WeakenedPhysical)
	}

	mentalActive := maxWillpower > 0 && willpowerDamage >= maxWillpower
	if mentalActive && !tracker.Has(WeakenedMentalSocial) {
		tracker.SetDynamicState(WeakenedMentalSocial)
		added = append(added, WeakenedMentalSocial)
	}
	if !mentalActive && tracker.Has(WeakenedMentalSocial) {
		tracker.ClearDynamicState(WeakenedMentalSocial)
		removed = append(removed, WeakenedMentalSocial)
	}

	return added, removed
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
