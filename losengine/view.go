package losengine

import "github.com/norendren/go-fov/fov"

// VisibleTiles computes the set of tiles visible from (x,y) out to radius
// using go-fov's symmetric shadowcasting. This is an observer-centric
// snapshot, distinct from HasLOS's cached pairwise anchor queries — handy
// for "what can this entity see right now" callers (fog-of-war reveal, AI
// perception) that want one flood-filled view rather than repeated paired
// checks. The returned View is a one-shot snapshot; callers recompute it
// when they need a fresher one, same as the teacher's PlayerVisible.
func (e *Engine) VisibleTiles(x, y, radius int) *fov.View {
	view := fov.New()
	view.Compute(e.terrain, x, y, radius)
	return view
}
