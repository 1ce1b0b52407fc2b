// Package world is an in-memory world model: it stores buildings, roads and
// blockades, notifies listeners of additions and removals, and allocates
// fresh entity identities.
package world

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/rescuesim/collapse/pkg/core"
)

// ErrDuplicateEntity is returned when an entity with the same ID already exists.
var ErrDuplicateEntity = errors.New("entity already exists")

// Listener is notified when entities enter or leave the world.
type Listener interface {
	EntityAdded(e core.Entity)
	EntityRemoved(e core.Entity)
}

// IDAllocator hands out identities no entity uses yet.
type IDAllocator interface {
	RequestNewEntityIDs(ctx context.Context, n int) ([]core.EntityID, error)
}

// Model holds every entity of the simulated world.
type Model struct {
	mu        sync.RWMutex
	entities  map[core.EntityID]core.Entity
	listeners []Listener
	nextID    core.EntityID
}

// NewModel creates an empty world.
func NewModel() *Model {
	return &Model{
		entities: make(map[core.EntityID]core.Entity),
		nextID:   1,
	}
}

// AddListener registers l for future additions and removals.
func (m *Model) AddListener(l Listener) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listeners = append(m.listeners, l)
}

// AddEntity stores e and notifies listeners.
func (m *Model) AddEntity(e core.Entity) error {
	m.mu.Lock()
	id := e.EntityID()
	if _, ok := m.entities[id]; ok {
		m.mu.Unlock()
		return fmt.Errorf("%w: %d", ErrDuplicateEntity, id)
	}
	m.entities[id] = e
	if id >= m.nextID {
		m.nextID = id + 1
	}
	listeners := append([]Listener(nil), m.listeners...)
	m.mu.Unlock()

	for _, l := range listeners {
		l.EntityAdded(e)
	}
	return nil
}

// RemoveEntity deletes the entity with id and notifies listeners.
// Removing an unknown id is a no-op.
func (m *Model) RemoveEntity(id core.EntityID) {
	m.mu.Lock()
	e, ok := m.entities[id]
	if !ok {
		m.mu.Unlock()
		return
	}
	delete(m.entities, id)
	listeners := append([]Listener(nil), m.listeners...)
	m.mu.Unlock()

	for _, l := range listeners {
		l.EntityRemoved(e)
	}
}

// Entity looks up an entity by id.
func (m *Model) Entity(id core.EntityID) (core.Entity, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.entities[id]
	return e, ok
}

// Len returns the number of entities.
func (m *Model) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entities)
}

// Buildings returns every building in ascending ID order.
func (m *Model) Buildings() []*core.Building {
	return ofType[*core.Building](m)
}

// Roads returns every road in ascending ID order.
func (m *Model) Roads() []*core.Road {
	return ofType[*core.Road](m)
}

// Blockades returns every blockade in ascending ID order.
func (m *Model) Blockades() []*core.Blockade {
	return ofType[*core.Blockade](m)
}

// RequestNewEntityIDs reserves n identities above every ID seen so far.
func (m *Model) RequestNewEntityIDs(ctx context.Context, n int) ([]core.EntityID, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if n < 0 {
		return nil, fmt.Errorf("cannot allocate %d ids", n)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]core.EntityID, n)
	for i := range ids {
		ids[i] = m.nextID
		m.nextID++
	}
	return ids, nil
}

// Merge adds the entities a step created.
func (m *Model) Merge(changes *ChangeSet) error {
	for _, e := range changes.NewEntities() {
		if err := m.AddEntity(e); err != nil {
			return err
		}
	}
	return nil
}

func ofType[T core.Entity](m *Model) []T {
	m.mu.RLock()
	out := make([]T, 0)
	for _, e := range m.entities {
		if t, ok := e.(T); ok {
			out = append(out, t)
		}
	}
	m.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].EntityID() < out[j].EntityID() })
	return out
}
