package graph

import (
	"context"
	"sync"
)

type connectionKey struct {
	from string
	to   string
}

// MemoryStore is a map-backed Store with the same upsert semantics as the
// Neo4j-backed store. Listing preserves insertion order. It backs tests and
// offline runs where no graph database is configured.
type MemoryStore struct {
	mu sync.Mutex

	entities    map[string]Entity
	entityOrder []string

	connections map[connectionKey]Connection
	connOrder   []connectionKey
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entities:    make(map[string]Entity),
		connections: make(map[connectionKey]Connection),
	}
}

// Available always reports true.
func (s *MemoryStore) Available() bool {
	return true
}

// Clear removes all entities and connections.
func (s *MemoryStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entities = make(map[string]Entity)
	s.entityOrder = nil
	s.connections = make(map[connectionKey]Connection)
	s.connOrder = nil
	return nil
}

// UpsertEntity inserts or overwrites the entity keyed by name.
func (s *MemoryStore) UpsertEntity(ctx context.Context, name string, topic string, round int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.upsertEntityLocked(name, topic, round)
	return nil
}

func (s *MemoryStore) upsertEntityLocked(name string, topic string, round int) {
	if _, exists := s.entities[name]; !exists {
		s.entityOrder = append(s.entityOrder, name)
	}
	s.entities[name] = Entity{Name: name, Topic: topic, Round: round}
}

// UpsertConnection inserts or overwrites the connection keyed by (from, to),
// creating missing endpoint entities the way the Cypher MERGE does.
func (s *MemoryStore) UpsertConnection(ctx context.Context, from, to, relationship string, suspicion int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.entities[from]; !exists {
		s.upsertEntityLocked(from, "", 0)
	}
	if _, exists := s.entities[to]; !exists {
		s.upsertEntityLocked(to, "", 0)
	}

	key := connectionKey{from: from, to: to}
	if _, exists := s.connections[key]; !exists {
		s.connOrder = append(s.connOrder, key)
	}
	s.connections[key] = Connection{
		From:         from,
		To:           to,
		Relationship: relationship,
		Suspicion:    suspicion,
	}
	return nil
}

// CountEntities returns the number of stored entities.
func (s *MemoryStore) CountEntities(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entities), nil
}

// ListEntities returns all entities in insertion order.
func (s *MemoryStore) ListEntities(ctx context.Context) ([]Entity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entities := make([]Entity, 0, len(s.entityOrder))
	for _, name := range s.entityOrder {
		entities = append(entities, s.entities[name])
	}
	return entities, nil
}

// ListConnections returns all connections in insertion order.
func (s *MemoryStore) ListConnections(ctx context.Context) ([]Connection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	connections := make([]Connection, 0, len(s.connOrder))
	for _, key := range s.connOrder {
		connections = append(connections, s.connections[key])
	}
	return connections, nil
}

// Close is a no-op for the in-memory store.
func (s *MemoryStore) Close(ctx context.Context) error {
	return nil
}
