package graph

import (
	"context"

	"corkboard/pkg/logger"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// BoltStore implements Store on top of a Neo4j database.
//
// When the database cannot be reached at construction time the store keeps
// running with available == false: every operation is a no-op returning zero
// values so the investigation can proceed without a graph backend.
type BoltStore struct {
	driver    neo4j.DriverWithContext
	available bool
}

// NewBoltStoreParams contains connection settings for the Neo4j backend.
type NewBoltStoreParams struct {
	URI      string
	Username string
	Password string
}

// NewBoltStore connects to Neo4j and verifies connectivity. Connection
// failures are absorbed: the returned store is unavailable, not nil.
func NewBoltStore(ctx context.Context, params NewBoltStoreParams) *BoltStore {
	if params.URI == "" {
		logger.Warn("Neo4j URI not configured, graph store disabled")
		return &BoltStore{}
	}

	driver, err := neo4j.NewDriverWithContext(
		params.URI,
		neo4j.BasicAuth(params.Username, params.Password, ""),
	)
	if err != nil {
		logger.Warn("Could not create Neo4j driver, graph store disabled", "uri", params.URI, "err", err)
		return &BoltStore{}
	}

	if err := driver.VerifyConnectivity(ctx); err != nil {
		logger.Warn("Neo4j not reachable, graph store disabled", "uri", params.URI, "err", err)
		return &BoltStore{}
	}

	return &BoltStore{
		driver:    driver,
		available: true,
	}
}

// Available reports whether the backing database is reachable.
func (s *BoltStore) Available() bool {
	return s.available
}

func (s *BoltStore) run(ctx context.Context, cypher string, params map[string]any) (*neo4j.EagerResult, error) {
	return neo4j.ExecuteQuery(ctx, s.driver, cypher, params, neo4j.EagerResultTransformer)
}

// Clear deletes all nodes and relationships.
func (s *BoltStore) Clear(ctx context.Context) error {
	if !s.available {
		return nil
	}
	_, err := s.run(ctx, "MATCH (n) DETACH DELETE n", nil)
	return err
}

// UpsertEntity merges an Entity node by name and sets topic and round.
func (s *BoltStore) UpsertEntity(ctx context.Context, name string, topic string, round int) error {
	if !s.available {
		return nil
	}
	_, err := s.run(ctx,
		"MERGE (e:Entity {name: $name}) SET e.topic = $topic, e.round = $round",
		map[string]any{
			"name":  name,
			"topic": topic,
			"round": round,
		},
	)
	return err
}

// UpsertConnection merges both endpoint entities and the CONNECTED_TO
// relationship between them, overwriting relationship and suspicion.
func (s *BoltStore) UpsertConnection(ctx context.Context, from, to, relationship string, suspicion int) error {
	if !s.available {
		return nil
	}
	_, err := s.run(ctx,
		"MERGE (a:Entity {name: $from_name}) "+
			"MERGE (b:Entity {name: $to_name}) "+
			"MERGE (a)-[r:CONNECTED_TO]->(b) "+
			"SET r.relationship = $rel, r.suspicion = $suspicion",
		map[string]any{
			"from_name": from,
			"to_name":   to,
			"rel":       relationship,
			"suspicion": suspicion,
		},
	)
	return err
}

// CountEntities returns the total number of Entity nodes.
func (s *BoltStore) CountEntities(ctx context.Context) (int, error) {
	if !s.available {
		return 0, nil
	}
	result, err := s.run(ctx, "MATCH (e:Entity) RETURN count(e) AS cnt", nil)
	if err != nil {
		return 0, err
	}
	if len(result.Records) == 0 {
		return 0, nil
	}
	value, ok := result.Records[0].Get("cnt")
	if !ok {
		return 0, nil
	}
	cnt, _ := value.(int64)
	return int(cnt), nil
}

// ListEntities returns all Entity nodes.
func (s *BoltStore) ListEntities(ctx context.Context) ([]Entity, error) {
	if !s.available {
		return []Entity{}, nil
	}
	result, err := s.run(ctx,
		"MATCH (e:Entity) RETURN e.name AS name, e.topic AS topic, e.round AS round",
		nil,
	)
	if err != nil {
		return []Entity{}, err
	}

	entities := make([]Entity, 0, len(result.Records))
	for _, record := range result.Records {
		entity := Entity{}
		if v, ok := record.Get("name"); ok {
			entity.Name, _ = v.(string)
		}
		if v, ok := record.Get("topic"); ok {
			entity.Topic, _ = v.(string)
		}
		if v, ok := record.Get("round"); ok {
			round, _ := v.(int64)
			entity.Round = int(round)
		}
		entities = append(entities, entity)
	}
	return entities, nil
}

// ListConnections returns all CONNECTED_TO relationships with endpoint names.
func (s *BoltStore) ListConnections(ctx context.Context) ([]Connection, error) {
	if !s.available {
		return []Connection{}, nil
	}
	result, err := s.run(ctx,
		"MATCH (a:Entity)-[r:CONNECTED_TO]->(b:Entity) "+
			"RETURN a.name AS from_name, b.name AS to_name, "+
			"r.relationship AS relationship, r.suspicion AS suspicion",
		nil,
	)
	if err != nil {
		return []Connection{}, err
	}

	connections := make([]Connection, 0, len(result.Records))
	for _, record := range result.Records {
		conn := Connection{}
		if v, ok := record.Get("from_name"); ok {
			conn.From, _ = v.(string)
		}
		if v, ok := record.Get("to_name"); ok {
			conn.To, _ = v.(string)
		}
		if v, ok := record.Get("relationship"); ok {
			conn.Relationship, _ = v.(string)
		}
		if v, ok := record.Get("suspicion"); ok {
			suspicion, _ := v.(int64)
			conn.Suspicion = int(suspicion)
		}
		connections = append(connections, conn)
	}
	return connections, nil
}

// Close releases the driver connection.
func (s *BoltStore) Close(ctx context.Context) error {
	if s.driver == nil {
		return nil
	}
	err := s.driver.Close(ctx)
	s.driver = nil
	s.available = false
	return err
}
