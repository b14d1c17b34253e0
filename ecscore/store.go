// Package ecscore wraps github.com/bytearena/ecs with the store contract the
// combat core needs: entities addressed by a stable string ID rather than
// the library's internal EntityID, typed component access, and iteration
// that is stable across runs.
package ecscore

import (
	"errors"
	"fmt"

	"github.com/bytearena/ecs"
)

// ErrDuplicateEntity is returned by Create when the given string ID is
// already registered.
var ErrDuplicateEntity = errors.New("ecscore: duplicate entity id")

// ErrEntityNotFound is returned when a string ID has no matching entity.
var ErrEntityNotFound = errors.New("ecscore: entity not found")

// ErrComponentNotFound is returned by Get when the entity has no value of
// the requested component type.
var ErrComponentNotFound = errors.New("ecscore: component not found")

// ComponentType is a registered component slot. Packages register one
// ComponentType per Go type they store (see Register).
type ComponentType struct {
	name string
	comp *ecs.Component
}

// allEntitiesTag is the zero-value ecs.Tag (empty component set), the same
// idiom the teacher uses for AllEntitiesTag to query every entity
// regardless of its components.
var allEntitiesTag ecs.Tag

// Store is the ECS Store of §4.2: a typed component table keyed by a
// stable external string ID, backed by bytearena/ecs's internal EntityID.
type Store struct {
	world *ecs.Manager
	ids   map[string]ecs.EntityID
	rev   map[ecs.EntityID]string
	types map[string]*ComponentType

	// order records, per component type name, the external IDs in the
	// order components of that type were first inserted, so Iter/IterWith
	// produce deterministic, insertion-ordered results per §4.2's
	// invariant.
	order map[string][]string
}

// NewStore creates an empty ECS Store.
func NewStore() *Store {
	return &Store{
		world: ecs.NewManager(),
		ids:   make(map[string]ecs.EntityID),
		rev:   make(map[ecs.EntityID]string),
		types: make(map[string]*ComponentType),
		order: make(map[string][]string),
	}
}

// Register declares a component type under name. Call once per Go type
// before any Create/Add references it. Re-registering the same name
// returns the existing ComponentType.
func (s *Store) Register(name string) *ComponentType {
	if ct, ok := s.types[name]; ok {
		return ct
	}
	ct := &ComponentType{name: name, comp: s.world.NewComponent()}
	s.types[name] = ct
	return ct
}

// Create allocates a new entity under stringID with the given component
// values, keyed by their ComponentType. If a component of a given type is
// listed twice, the later value wins, matching the ECS Store's
// replace-on-duplicate-insert rule.
func (s *Store) Create(stringID string, values map[*ComponentType]any) error {
	if _, exists := s.ids[stringID]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateEntity, stringID)
	}
	entity := s.world.NewEntity()
	id := entity.GetID()
	s.ids[stringID] = id
	s.rev[id] = stringID
	for ct, value := range values {
		entity.AddComponent(ct.comp, value)
		s.order[ct.name] = append(s.order[ct.name], stringID)
	}
	return nil
}

// Delete removes an entity and all its components. Fails if stringID is
// unknown.
func (s *Store) Delete(stringID string) error {
	id, ok := s.ids[stringID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrEntityNotFound, stringID)
	}
	entity := s.entityByID(id)
	if entity != nil {
		s.world.DisposeEntity(entity)
	}
	delete(s.ids, stringID)
	delete(s.rev, id)
	for name, ids := range s.order {
		s.order[name] = removeString(ids, stringID)
	}
	return nil
}

// AddComponent inserts or replaces a component value on an existing
// entity.
func (s *Store) AddComponent(stringID string, ct *ComponentType, value any) error {
	entity, err := s.mustEntity(stringID)
	if err != nil {
		return err
	}
	_, hadIt := entity.GetComponentData(ct.comp)
	entity.AddComponent(ct.comp, value)
	if !hadIt {
		s.order[ct.name] = append(s.order[ct.name], stringID)
	}
	return nil
}

// RemoveComponent removes a component value from an entity, if present.
func (s *Store) RemoveComponent(stringID string, ct *ComponentType) error {
	entity, err := s.mustEntity(stringID)
	if err != nil {
		return err
	}
	entity.RemoveComponent(ct.comp)
	s.order[ct.name] = removeString(s.order[ct.name], stringID)
	return nil
}

// Get returns the component value for stringID, ErrComponentNotFound if
// the entity has no value of that type, or ErrEntityNotFound if the entity
// itself is unknown.
func (s *Store) Get(stringID string, ct *ComponentType) (any, error) {
	entity, err := s.mustEntity(stringID)
	if err != nil {
		return nil, err
	}
	value, ok := entity.GetComponentData(ct.comp)
	if !ok {
		return nil, fmt.Errorf("%w: %s on %s", ErrComponentNotFound, ct.name, stringID)
	}
	return value, nil
}

// TryGet is Get without the error: ok is false if the entity or the
// component is missing.
func (s *Store) TryGet(stringID string, ct *ComponentType) (value any, ok bool) {
	id, exists := s.ids[stringID]
	if !exists {
		return nil, false
	}
	entity := s.entityByID(id)
	if entity == nil {
		return nil, false
	}
	return entity.GetComponentData(ct.comp)
}

// ResolveEntity returns the internal entity ID for a string ID, and
// whether it exists.
func (s *Store) ResolveEntity(stringID string) (ecs.EntityID, bool) {
	id, ok := s.ids[stringID]
	return id, ok
}

// StringID returns the external ID for an internal entity ID.
func (s *Store) StringID(id ecs.EntityID) (string, bool) {
	sid, ok := s.rev[id]
	return sid, ok
}

// Iter returns (stringID, value) pairs for every entity holding ct, in the
// stable order components of that type were first inserted.
func (s *Store) Iter(ct *ComponentType) []IterResult {
	var out []IterResult
	for _, stringID := range s.order[ct.name] {
		if value, ok := s.TryGet(stringID, ct); ok {
			out = append(out, IterResult{StringID: stringID, Value: value})
		}
	}
	return out
}

// IterResult is one row of Iter's output.
type IterResult struct {
	StringID string
	Value    any
}

// IterWith returns, for every entity holding every type in types, the
// string ID and the matching tuple of values in the same order as types.
// Order follows the insertion order of types[0].
func (s *Store) IterWith(types ...*ComponentType) []TupleResult {
	if len(types) == 0 {
		return nil
	}
	var out []TupleResult
	for _, stringID := range s.order[types[0].name] {
		values := make([]any, len(types))
		complete := true
		for i, ct := range types {
			value, ok := s.TryGet(stringID, ct)
			if !ok {
				complete = false
				break
			}
			values[i] = value
		}
		if complete {
			out = append(out, TupleResult{StringID: stringID, Values: values})
		}
	}
	return out
}

// TupleResult is one row of IterWith's output.
type TupleResult struct {
	StringID string
	Values   []any
}

// Exists reports whether stringID names a live entity.
func (s *Store) Exists(stringID string) bool {
	_, ok := s.ids[stringID]
	return ok
}

func (s *Store) mustEntity(stringID string) (*ecs.Entity, error) {
	id, ok := s.ids[stringID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrEntityNotFound, stringID)
	}
	entity := s.entityByID(id)
	if entity == nil {
		return nil, fmt.Errorf("%w: %s", ErrEntityNotFound, stringID)
	}
	return entity, nil
}

// entityByID is the one linear scan the wrapper still performs, matching
// the teacher's own FindEntityByIDInManager idiom (bytearena/ecs has no
// direct EntityID -> *Entity lookup). Kept private; every lookup goes
// through it, including TryGet and therefore each row of Iter/IterWith.
func (s *Store) entityByID(id ecs.EntityID) *ecs.Entity {
	for _, result := range s.world.Query(allEntitiesTag) {
		if result.Entity.GetID() == id {
			return result.Entity
		}
	}
	return nil
}

func removeString(items []string, target string) []string {
	out := items[:0]
	for _, item := range items {
		if item != target {
			out = append(out, item)
		}
	}
	return out
}
