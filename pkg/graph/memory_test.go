package graph

import (
	"context"
	"testing"
)

func TestMemoryStoreUpsertEntityOverwrites(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	if err := store.UpsertEntity(ctx, "Stanley Kubrick", "Moon Landing", 1); err != nil {
		t.Fatalf("first upsert failed: %v", err)
	}
	if err := store.UpsertEntity(ctx, "Stanley Kubrick", "Moon Landing", 2); err != nil {
		t.Fatalf("second upsert failed: %v", err)
	}

	count, err := store.CountEntities(ctx)
	if err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 entity after double upsert, got %d", count)
	}

	entities, err := store.ListEntities(ctx)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if entities[0].Round != 2 {
		t.Fatalf("expected latest round 2, got %d", entities[0].Round)
	}
}

func TestMemoryStoreUpsertConnectionOverwrites(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	if err := store.UpsertConnection(ctx, "NASA", "Hollywood", "shared a sound stage", 4); err != nil {
		t.Fatalf("first upsert failed: %v", err)
	}
	if err := store.UpsertConnection(ctx, "NASA", "Hollywood", "funded the same studio", 9); err != nil {
		t.Fatalf("second upsert failed: %v", err)
	}

	conns, err := store.ListConnections(ctx)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(conns) != 1 {
		t.Fatalf("expected 1 connection after double upsert, got %d", len(conns))
	}
	if conns[0].Relationship != "funded the same studio" || conns[0].Suspicion != 9 {
		t.Fatalf("expected latest values, got %+v", conns[0])
	}
}

func TestMemoryStoreUpsertConnectionCreatesEndpoints(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	if err := store.UpsertConnection(ctx, "CIA", "Bigfoot", "classified sightings", 7); err != nil {
		t.Fatalf("upsert failed: %v", err)
	}

	count, err := store.CountEntities(ctx)
	if err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected both endpoints created, got %d entities", count)
	}
}

func TestMemoryStoreClear(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	_ = store.UpsertEntity(ctx, "Area 51", "UFOs", 1)
	_ = store.UpsertConnection(ctx, "Area 51", "Nevada", "located in", 3)

	if err := store.Clear(ctx); err != nil {
		t.Fatalf("clear failed: %v", err)
	}

	count, _ := store.CountEntities(ctx)
	if count != 0 {
		t.Fatalf("expected 0 entities after clear, got %d", count)
	}
	conns, _ := store.ListConnections(ctx)
	if len(conns) != 0 {
		t.Fatalf("expected 0 connections after clear, got %d", len(conns))
	}
}

func TestMemoryStoreListPreservesInsertionOrder(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	names := []string{"Zeta Reticuli", "Apollo 11", "Nevada Test Site"}
	for i, name := range names {
		_ = store.UpsertEntity(ctx, name, "UFOs", i+1)
	}

	entities, err := store.ListEntities(ctx)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	for i, name := range names {
		if entities[i].Name != name {
			t.Fatalf("expected %q at position %d, got %q", name, i, entities[i].Name)
		}
	}
}

func TestUnavailableBoltStoreIsNoop(t *testing.T) {
	store := &BoltStore{}
	ctx := context.Background()

	if store.Available() {
		t.Fatal("expected zero-value store to be unavailable")
	}
	if err := store.UpsertEntity(ctx, "x", "y", 1); err != nil {
		t.Fatalf("unavailable upsert should be a no-op, got %v", err)
	}
	count, err := store.CountEntities(ctx)
	if err != nil || count != 0 {
		t.Fatalf("unavailable count should be 0, got %d, %v", count, err)
	}
	if err := store.Close(ctx); err != nil {
		t.Fatalf("close on unavailable store failed: %v", err)
	}
}
