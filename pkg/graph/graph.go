package graph

import "context"

// DefaultSuspicion is assigned to connections extracted without an explicit
// suspicion level.
const DefaultSuspicion = 5

// Entity is a named node on the board, attributed to one of the two
// investigated topics. Name is the unique key; Topic and Round reflect the
// most recent upsert (last writer wins).
type Entity struct {
	Name  string `json:"name"`
	Topic string `json:"topic"`
	Round int    `json:"round"`
}

// Connection is a directed, suspicion-scored relationship between two
// entities, keyed by the ordered (From, To) pair. Re-upserting the same pair
// overwrites Relationship and Suspicion. Suspicion is nominally 1-10 but is
// stored as-is without range validation.
type Connection struct {
	From         string `json:"from"`
	To           string `json:"to"`
	Relationship string `json:"relationship"`
	Suspicion    int    `json:"suspicion_level"`
}

// ExtractionResult is the structured output of one extraction pass: entity
// names per topic, the connections between them and a one-sentence insight
// carried into the next round.
type ExtractionResult struct {
	EntitiesA   []string     `json:"entities_a"`
	EntitiesB   []string     `json:"entities_b"`
	Connections []Connection `json:"connections"`
	Insight     string       `json:"insight"`
}

// Store is an upsert-only property graph of entities and directed weighted
// connections.
//
// Implementations degrade rather than fail: a store whose backend is
// unreachable reports Available() == false and every operation becomes a
// no-op returning zero values. Callers never branch on availability.
type Store interface {
	Available() bool

	// Clear deletes all entities and connections (fresh run).
	Clear(ctx context.Context) error

	// UpsertEntity inserts or updates the entity keyed by name, setting
	// topic and round to the given values.
	UpsertEntity(ctx context.Context, name string, topic string, round int) error

	// UpsertConnection inserts or updates the directed connection keyed by
	// (from, to), overwriting relationship and suspicion. Both endpoint
	// entities are created if missing.
	UpsertConnection(ctx context.Context, from, to, relationship string, suspicion int) error

	CountEntities(ctx context.Context) (int, error)
	ListEntities(ctx context.Context) ([]Entity, error)
	ListConnections(ctx context.Context) ([]Connection, error)

	Close(ctx context.Context) error
}
