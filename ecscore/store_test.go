package ecscore

import (
	"errors"
	"fmt"
	"testing"
)

func TestStore_CreateGetAndTryGet(t *testing.T) {
	s := NewStore()
	hp := s.Register("hp")

	if err := s.Create("alice", map[*ComponentType]any{hp: 10}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	value, err := s.Get("alice", hp)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if value.(int) != 10 {
		t.Errorf("expected 10, got %v", value)
	}

	if _, ok := s.TryGet("alice", hp); !ok {
		t.Errorf("expected TryGet to find component")
	}
	if _, ok := s.TryGet("bob", hp); ok {
		t.Errorf("expected TryGet to miss unknown entity")
	}
}

func TestStore_CreateDuplicateFails(t *testing.T) {
	s := NewStore()
	hp := s.Register("hp")
	if err := s.Create("alice", map[*ComponentType]any{hp: 10}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	err := s.Create("alice", map[*ComponentType]any{hp: 5})
	if !errors.Is(err, ErrDuplicateEntity) {
		t.Errorf("expected ErrDuplicateEntity, got %v", err)
	}
}

func TestStore_GetMissingComponent(t *testing.T) {
	s := NewStore()
	hp := s.Register("hp")
	mana := s.Register("mana")
	if err := s.Create("alice", map[*ComponentType]any{hp: 10}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	_, err := s.Get("alice", mana)
	if !errors.Is(err, ErrComponentNotFound) {
		t.Errorf("expected ErrComponentNotFound, got %v", err)
	}
}

func TestStore_DeleteUnknownFails(t *testing.T) {
	s := NewStore()
	err := s.Delete("ghost")
	if !errors.Is(err, ErrEntityNotFound) {
		t.Errorf("expected ErrEntityNotFound, got %v", err)
	}
}

func TestStore_DeleteRemovesFromIteration(t *testing.T) {
	s := NewStore()
	hp := s.Register("hp")
	s.Create("alice", map[*ComponentType]any{hp: 10})
	s.Create("bob", map[*ComponentType]any{hp: 20})

	if err := s.Delete("alice"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	results := s.Iter(hp)
	if len(results) != 1 || results[0].StringID != "bob" {
		t.Errorf("expected only bob to remain, got %+v", results)
	}
	if s.Exists("alice") {
		t.Errorf("alice should no longer exist")
	}
}

func TestStore_IterIsInsertionOrdered(t *testing.T) {
	s := NewStore()
	hp := s.Register("hp")
	order := []string{"charlie", "alice", "bob"}
	for _, id := range order {
		if err := s.Create(id, map[*ComponentType]any{hp: 1}); err != nil {
			t.Fatalf("Create(%s) failed: %v", id, err)
		}
	}

	results := s.Iter(hp)
	if len(results) != len(order) {
		t.Fatalf("expected %d results, got %d", len(order), len(results))
	}
	for i, want := range order {
		if results[i].StringID != want {
			t.Errorf("position %d: expected %s, got %s", i, want, results[i].StringID)
		}
	}
}

func TestStore_IterWithRequiresAllTypes(t *testing.T) {
	s := NewStore()
	hp := s.Register("hp")
	mana := s.Register("mana")

	s.Create("alice", map[*ComponentType]any{hp: 10, mana: 5})
	s.Create("bob", map[*ComponentType]any{hp: 20})

	rows := s.IterWith(hp, mana)
	if len(rows) != 1 {
		t.Fatalf("expected 1 row with both components, got %d", len(rows))
	}
	if rows[0].StringID != "alice" {
		t.Errorf("expected alice, got %s", rows[0].StringID)
	}
	if rows[0].Values[0].(int) != 10 || rows[0].Values[1].(int) != 5 {
		t.Errorf("unexpected values %+v", rows[0].Values)
	}
}

func TestStore_AddAndRemoveComponent(t *testing.T) {
	s := NewStore()
	hp := s.Register("hp")
	status := s.Register("status")

	s.Create("alice", map[*ComponentType]any{hp: 10})
	if err := s.AddComponent("alice", status, "stunned"); err != nil {
		t.Fatalf("AddComponent failed: %v", err)
	}
	if value, _ := s.TryGet("alice", status); value != "stunned" {
		t.Errorf("expected stunned, got %v", value)
	}

	if err := s.RemoveComponent("alice", status); err != nil {
		t.Fatalf("RemoveComponent failed: %v", err)
	}
	if _, ok := s.TryGet("alice", status); ok {
		t.Errorf("expected status to be gone after RemoveComponent")
	}
}

func TestStore_ResolveEntityRoundTrip(t *testing.T) {
	s := NewStore()
	hp := s.Register("hp")
	s.Create("alice", map[*ComponentType]any{hp: 10})

	internal, ok := s.ResolveEntity("alice")
	if !ok {
		t.Fatalf("expected alice to resolve")
	}
	stringID, ok := s.StringID(internal)
	if !ok || stringID != "alice" {
		t.Errorf("expected round trip to alice, got %q (ok=%v)", stringID, ok)
	}
}

func BenchmarkStore_IterWith(b *testing.B) {
	s := NewStore()
	hp := s.Register("hp")
	mana := s.Register("mana")
	for i := 0; i < 200; i++ {
		s.Create(fmt.Sprintf("entity-%d", i), map[*ComponentType]any{hp: i, mana: i * 2})
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = s.IterWith(hp, mana)
	}
}
