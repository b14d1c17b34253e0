// Package config holds the tunable constants the core combat engine reads
// at wiring time, the way the teacher's config package holds a flat set of
// exported defaults rather than a file-format loader (no env/flag parsing:
// this core has no CLI, §1 Non-goals).
package config

// LOS ray-sampling granularity (§4.4). Sparse mode samples only the anchor
// corners; Full mode subdivides each edge for grazing-case accuracy.
const (
	LOSGranularitySparse = 0
	LOSGranularityFull   = 10
)

// WeakenedPenaltyDice is the flat dice-pool penalty any Weakened variant
// applies, floored at zero pool size. It never stacks: having more than one
// Weakened variant active still costs exactly this many dice.
const WeakenedPenaltyDice = 2

// DefaultInitiativeSeed seeds the Turn-Order Engine's tie-breaker RNG when a
// caller has no scenario-specific seed to supply (e.g. a quick test fixture
// or a tool that only needs a deterministic run).
const DefaultInitiativeSeed int64 = 1
