package game

import "github.com/tinkerforge/tacticore/components"

// EntityView is a read-only, fully assembled snapshot of one entity's
// components, for legacy-style queries that want a plain record rather
// than per-component store lookups. Fields are nil when the entity has no
// component of that type.
type EntityView struct {
	ID            string
	Position      *components.Position
	BodyFootprint *components.BodyFootprint
	CharacterRef  *components.CharacterRef
	Team          *components.Team
	Initiative    *components.Initiative
	MovementUsage *components.MovementUsage
	Cover         *components.Cover
	Structure     *components.Structure
	Facing        *components.Facing

	// Conditions is the union of active timed conditions and dynamic
	// states, materialized from ConditionTracker.ActiveStates() (§4.8).
	Conditions []string
}

// EntityView assembles entityID's components into a plain record. Returns
// ok=false if the entity does not exist.
func (g *Game) EntityView(entityID string) (EntityView, bool) {
	if !g.Store.Exists(entityID) {
		return EntityView{}, false
	}
	view := EntityView{ID: entityID}

	if value, ok := g.Store.TryGet(entityID, g.Registry.Position); ok {
		pos := value.(components.Position)
		view.Position = &pos
	}
	if value, ok := g.Store.TryGet(entityID, g.Registry.BodyFootprint); ok {
		fp := value.(components.BodyFootprint)
		view.BodyFootprint = &fp
	}
	if value, ok := g.Store.TryGet(entityID, g.Registry.CharacterRef); ok {
		ref := value.(components.CharacterRef)
		view.CharacterRef = &ref
	}
	if value, ok := g.Store.TryGet(entityID, g.Registry.Team); ok {
		team := value.(components.Team)
		view.Team = &team
	}
	if value, ok := g.Store.TryGet(entityID, g.Registry.Initiative); ok {
		initiative := value.(components.Initiative)
		view.Initiative = &initiative
	}
	if value, ok := g.Store.TryGet(entityID, g.Registry.MovementUsage); ok {
		view.MovementUsage = value.(*components.MovementUsage)
	}
	if value, ok := g.Store.TryGet(entityID, g.Registry.Cover); ok {
		cover := value.(components.Cover)
		view.Cover = &cover
	}
	if value, ok := g.Store.TryGet(entityID, g.Registry.Structure); ok {
		structure := value.(components.Structure)
		view.Structure = &structure
	}
	if value, ok := g.Store.TryGet(entityID, g.Registry.Facing); ok {
		view.Facing = value.(*components.Facing)
	}

	if g.Vision != nil {
		view.Conditions = g.Vision.ActiveStates(entityID)
	} else if value, ok := g.Store.TryGet(entityID, g.Registry.ConditionTracker); ok {
		view.Conditions = value.(*components.ConditionTracker).ActiveStates()
	}

	return view, true
}
