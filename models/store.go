package models

import (
	"sync"

	"github.com/google/uuid"
)

// EntityStore holds the resident entity snapshot for one loaded
// layout. The editor hydrates it wholesale on layout load and keeps
// it in sync during the editing session.
//
// Entities live in two key spaces: the client-side id assigned when a
// block is first dragged in, and the persisted id assigned once the
// surrounding application saves it. Resolve documents the lookup
// order so call sites do not grow ad hoc fallback chains.
type EntityStore struct {
	mutex          sync.RWMutex
	entities       map[string]*Entity
	persistedIndex map[string]string
}

func NewEntityStore() *EntityStore {
	return &EntityStore{
		entities:       make(map[string]*Entity),
		persistedIndex: make(map[string]string),
	}
}

func (s *EntityStore) NewID() string {
	return uuid.New().String()
}

// Hydrate replaces the whole snapshot. Prior contents are discarded,
// not diffed.
func (s *EntityStore) Hydrate(entities []*Entity) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.entities = make(map[string]*Entity, len(entities))
	s.persistedIndex = make(map[string]string, len(entities))
	for _, e := range entities {
		s.entities[e.ID] = e
		if e.PersistedID != "" {
			s.persistedIndex[e.PersistedID] = e.ID
		}
	}

	instrumentSetEntityCount(len(s.entities))
}

func (s *EntityStore) Add(e *Entity) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.entities[e.ID] = e
	if e.PersistedID != "" {
		s.persistedIndex[e.PersistedID] = e.ID
	}

	instrumentSetEntityCount(len(s.entities))
}

func (s *EntityStore) Remove(id string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	e, ok := s.entities[id]
	if !ok {
		return
	}
	if e.PersistedID != "" {
		delete(s.persistedIndex, e.PersistedID)
	}
	delete(s.entities, id)

	instrumentSetEntityCount(len(s.entities))
}

// Resolve looks an entity up by persisted id first, then by client
// id. Centralizing the order here is the contract; callers must not
// reimplement the fallback.
func (s *EntityStore) Resolve(id string) (*Entity, bool) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	if clientID, ok := s.persistedIndex[id]; ok {
		e, ok := s.entities[clientID]
		return e, ok
	}
	e, ok := s.entities[id]
	return e, ok
}

func (s *EntityStore) List() []*Entity {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	entities := make([]*Entity, 0, len(s.entities))
	for _, e := range s.entities {
		entities = append(entities, e)
	}
	return entities
}

// Floors returns all non-deleted floor entities.
func (s *EntityStore) Floors() []*Entity {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	var floors []*Entity
	for _, e := range s.entities {
		if e.IsFloor() && !e.Deleted {
			floors = append(floors, e)
		}
	}
	return floors
}

// ByParent returns all entities nested under the given parent id.
func (s *EntityStore) ByParent(parentID string) []*Entity {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	var children []*Entity
	for _, e := range s.entities {
		if e.ParentID == parentID {
			children = append(children, e)
		}
	}
	return children
}
