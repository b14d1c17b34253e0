package movement

import (
	"testing"

	"github.com/tinkerforge/tacticore/components"
	"github.com/tinkerforge/tacticore/ecscore"
	"github.com/tinkerforge/tacticore/eventbus"
	"github.com/tinkerforge/tacticore/terrain"
)

func newTestEngine(t *testing.T, width, height int, bus *eventbus.Bus) (*Engine, *ecscore.Store, *components.Registry, *terrain.Terrain) {
	t.Helper()
	store := ecscore.NewStore()
	registry := components.Register(store)
	tr := terrain.New(width, height, bus)
	return New(store, registry, tr, bus, nil), store, registry, tr
}

func spawn(t *testing.T, store *ecscore.Store, registry *components.Registry, tr *terrain.Terrain, id string, anchor Tile, w, h int) {
	t.Helper()
	pos := components.Position{Anchor: anchor, Width: w, Height: h}
	if err := store.Create(id, map[*ecscore.ComponentType]any{registry.Position: pos}); err != nil {
		t.Fatalf("create %s: %v", id, err)
	}
	if !tr.AddEntity(id, anchor.X, anchor.Y, w, h) {
		t.Fatalf("terrain.AddEntity(%s) failed", id)
	}
}

func TestReachableTilesRespectsBudgetAndHazards(t *testing.T) {
	e, store, registry, tr := newTestEngine(t, 5, 1, nil)
	spawn(t, store, registry, tr, "hero", Tile{X: 0, Y: 0}, 1, 1)
	tr.AddDifficult([]Tile{{X: 2, Y: 0}}) // cost 2 to enter

	reachable := e.ReachableTiles("hero", 3)
	costs := make(map[Tile]int)
	for _, r := range reachable {
		costs[r.Tile] = r.Cost
	}
	if got, ok := costs[Tile{X: 2, Y: 0}]; !ok || got != 3 {
		t.Fatalf("expected (2,0) reachable at cost 3 (1 to reach (1,0) + 2 difficult), got %+v ok=%v", got, ok)
	}
	if _, ok := costs[Tile{X: 3, Y: 0}]; ok {
		t.Errorf("expected (3,0) out of budget (would cost 4), got %+v", costs)
	}
}

func TestFindPathAvoidsOccupant(t *testing.T) {
	e, store, registry, tr := newTestEngine(t, 3, 3, nil)
	spawn(t, store, registry, tr, "hero", Tile{X: 0, Y: 1}, 1, 1)
	spawn(t, store, registry, tr, "blocker", Tile{X: 1, Y: 1}, 1, 1)

	path, ok := e.FindPath("hero", Tile{X: 2, Y: 1}, 0)
	if !ok {
		t.Fatalf("expected a path around the blocker")
	}
	for _, tile := range path {
		if tile == (Tile{X: 1, Y: 1}) {
			t.Fatalf("expected path to avoid occupied tile, got %v", path)
		}
	}
}

func TestMoveUpdatesPositionFacingAndUsage(t *testing.T) {
	bus := eventbus.New()
	e, store, registry, tr := newTestEngine(t, 5, 5, bus)
	spawn(t, store, registry, tr, "hero", Tile{X: 0, Y: 0}, 1, 1)
	store.AddComponent("hero", registry.Facing, &components.Facing{})

	var started, ended []map[string]any
	bus.Subscribe(EvtMovementStarted, func(e eventbus.Event) error {
		started = append(started, e.Data)
		return nil
	})
	bus.Subscribe(EvtMovementEnded, func(e eventbus.Event) error {
		ended = append(ended, e.Data)
		return nil
	})

	if !e.Move("hero", Tile{X: 1, Y: 0}, 0, false, true) {
		t.Fatalf("expected move to succeed")
	}

	pos, _ := e.position("hero")
	if pos.Anchor != (Tile{X: 1, Y: 0}) {
		t.Fatalf("expected anchor (1,0), got %+v", pos.Anchor)
	}
	if len(started) != 1 || len(ended) != 1 {
		t.Fatalf("expected exactly one movement_started/ended pair, got %d/%d", len(started), len(ended))
	}
	if ended[0]["succeeded"] != true {
		t.Errorf("expected succeeded=true, got %v", ended[0]["succeeded"])
	}

	facing, _ := e.facing("hero")
	if facing.Dx != 1 || facing.Dy != 0 {
		t.Errorf("expected facing updated to (1,0), got (%d,%d)", facing.Dx, facing.Dy)
	}

	usage := e.movementUsage("hero")
	if usage.Distance != 1 {
		t.Errorf("expected movement usage 1, got %d", usage.Distance)
	}
}

func TestMoveFailsOntoWall(t *testing.T) {
	e, store, registry, tr := newTestEngine(t, 3, 3, nil)
	spawn(t, store, registry, tr, "hero", Tile{X: 0, Y: 0}, 1, 1)
	tr.AddWall(1, 0)

	if e.Move("hero", Tile{X: 1, Y: 0}, 0, false, true) {
		t.Fatalf("expected move onto a wall to fail")
	}
}

func TestPathMoveOverBudgetLeavesEntityInPlace(t *testing.T) {
	e, store, registry, tr := newTestEngine(t, 5, 1, nil)
	spawn(t, store, registry, tr, "hero", Tile{X: 0, Y: 0}, 1, 1)

	// Budget covers only 2 of the 3 steps needed to reach (3,0).
	if e.PathMove("hero", Tile{X: 3, Y: 0}, 2, true) {
		t.Fatalf("expected path_move to fail when the path exceeds the step budget")
	}
	pos, _ := e.position("hero")
	if pos.Anchor != (Tile{X: 0, Y: 0}) {
		t.Fatalf("expected entity to stay put on a rejected path_move, got %+v", pos.Anchor)
	}
}

type killRecorder struct {
	id, cause string
}

func (k *killRecorder) KillEntity(entityID, cause string) {
	k.id, k.cause = entityID, cause
}

func TestJumpOntoVoidKillsEntity(t *testing.T) {
	e, store, registry, tr := newTestEngine(t, 3, 1, nil)
	spawn(t, store, registry, tr, "hero", Tile{X: 0, Y: 0}, 1, 1)
	tr.AddImpassableVoid([]Tile{{X: 2, Y: 0}})

	recorder := &killRecorder{}
	e.SetKiller(recorder)

	if !e.Jump("hero", Tile{X: 2, Y: 0}, 0, false) {
		t.Fatalf("expected jump onto void to succeed as a landing")
	}
	pos, _ := e.position("hero")
	if pos.Anchor != (Tile{X: 2, Y: 0}) {
		t.Fatalf("expected entity relocated onto the void tile, got %+v", pos.Anchor)
	}
	if recorder.id != "hero" || recorder.cause != "void" {
		t.Errorf("expected kill_entity(hero, void), got (%q, %q)", recorder.id, recorder.cause)
	}
}

func TestMoveRejectsVoidLanding(t *testing.T) {
	e, store, registry, tr := newTestEngine(t, 3, 1, nil)
	spawn(t, store, registry, tr, "hero", Tile{X: 0, Y: 0}, 1, 1)
	tr.AddImpassableVoid([]Tile{{X: 1, Y: 0}})

	if e.Move("hero", Tile{X: 1, Y: 0}, 0, false, true) {
		t.Fatalf("expected ordinary move onto void to fail; only Jump may land there")
	}
}
