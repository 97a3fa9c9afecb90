// Package agent drives the investigation: each round searches the web,
// extracts entities and connections with a language model, pins them to the
// graph, hunts for image clues and narrates the findings with escalating
// paranoia. Every external dependency degrades to a safe default, so a round
// always runs to completion.
package agent

import (
	"context"
	"fmt"
	"sort"

	"corkboard/internal/search"
	"corkboard/internal/util"
	"corkboard/pkg/graph"
	"corkboard/pkg/logger"
)

// maxImagesPerRound caps how many unique images are analyzed each round.
const maxImagesPerRound = 2

// maxTopConnections caps the completion summary's connection list.
const maxTopConnections = 5

// maxRelationshipDisplay caps relationship text in the completion summary.
const maxRelationshipDisplay = 80

// KnowledgeStore is the external memory the agent consults before each
// round and feeds after each extraction.
type KnowledgeStore interface {
	// QueryFindings returns prior context about the topic pair, empty on
	// any failure or absence.
	QueryFindings(ctx context.Context, topicA, topicB string) string

	// StoreFinding records a round's outcome. Backends without ingest
	// support may ignore it.
	StoreFinding(ctx context.Context, topicA, topicB string, round int, insight string, connections []graph.Connection)
}

// Investigator owns one investigation's collaborators and runs the round
// loop. Construct one per run; runs share no mutable state.
type Investigator struct {
	graphStore graph.Store
	searcher   search.Searcher
	extractor  *graph.Extractor
	knowledge  KnowledgeStore
	narrator   *Narrator
	vision     *VisionClient
}

// NewInvestigatorParams contains all dependencies for creating an
// Investigator.
type NewInvestigatorParams struct {
	GraphStore graph.Store
	Searcher   search.Searcher
	Extractor  *graph.Extractor
	Knowledge  KnowledgeStore
	Narrator   *Narrator
	Vision     *VisionClient
}

// NewInvestigator creates an Investigator from its collaborators.
func NewInvestigator(params NewInvestigatorParams) *Investigator {
	return &Investigator{
		graphStore: params.GraphStore,
		searcher:   params.Searcher,
		extractor:  params.Extractor,
		knowledge:  params.Knowledge,
		narrator:   params.Narrator,
		vision:     params.Vision,
	}
}

// RunParams describes one investigation run.
type RunParams struct {
	TopicA string
	TopicB string
	Rounds int

	// Events receives the run's event stream. Optional.
	Events *EventLog

	// OnNarrationChunk receives incremental narration text as it streams
	// from the model. Optional.
	OnNarrationChunk func(chunk string)
}

func (p RunParams) validate() error {
	if p.TopicA == "" || p.TopicB == "" {
		return fmt.Errorf("both topics are required")
	}
	if p.Rounds < 1 {
		return fmt.Errorf("rounds must be at least 1, got %d", p.Rounds)
	}
	return nil
}

// Run executes the full investigation: clears the graph, runs every round
// and emits the completion summary. External failures inside a round are
// absorbed with fallbacks; only a broken precondition or internal fault
// returns an error, which the owning transport surfaces as an error event.
func (inv *Investigator) Run(ctx context.Context, params RunParams) error {
	if err := params.validate(); err != nil {
		return err
	}

	if err := inv.graphStore.Clear(ctx); err != nil {
		logger.Warn("Could not clear graph store", "err", err)
	}

	lastInsight := ""
	for round := 1; round <= params.Rounds; round++ {
		lastInsight = inv.runRound(ctx, params, round, lastInsight)
	}

	totalEntities, err := inv.graphStore.CountEntities(ctx)
	if err != nil {
		logger.Warn("Could not count entities", "err", err)
	}
	connections, err := inv.graphStore.ListConnections(ctx)
	if err != nil {
		logger.Warn("Could not list connections", "err", err)
	}

	topConnections := rankConnections(connections)
	if err := inv.graphStore.Close(ctx); err != nil {
		logger.Warn("Could not close graph store", "err", err)
	}

	emit(params.Events, EventComplete, map[string]any{
		"total_entities":    totalEntities,
		"total_connections": len(connections),
		"top_connections":   topConnections,
	})
	return nil
}

func (inv *Investigator) runRound(ctx context.Context, params RunParams, round int, lastInsight string) string {
	topicA, topicB := params.TopicA, params.TopicB

	logger.Info("Starting round", "round", round, "total", params.Rounds)
	emit(params.Events, EventRoundStart, map[string]any{
		"round":        round,
		"total_rounds": params.Rounds,
	})

	previousContext := inv.knowledge.QueryFindings(ctx, topicA, topicB)
	emit(params.Events, EventSensoQuery, map[string]any{
		"has_context":    previousContext != "",
		"context_length": len(previousContext),
	})

	results, images := inv.searchRound(ctx, round, topicA, topicB, lastInsight, previousContext)
	emit(params.Events, EventSearchComplete, map[string]any{
		"result_count": len(results),
		"round":        round,
	})

	contents := make([]string, 0, len(results))
	for _, r := range results {
		contents = append(contents, r.Content)
	}
	extracted := inv.extractor.Extract(ctx, topicA, topicB, contents)
	logger.Info("Extraction finished",
		"entities_a", len(extracted.EntitiesA),
		"entities_b", len(extracted.EntitiesB),
		"connections", len(extracted.Connections),
	)
	emit(params.Events, EventExtractionComplete, map[string]any{
		"entities_a":  extracted.EntitiesA,
		"entities_b":  extracted.EntitiesB,
		"connections": extracted.Connections,
		"insight":     extracted.Insight,
	})

	inv.updateGraph(ctx, round, topicA, topicB, extracted)
	entityCount, err := inv.graphStore.CountEntities(ctx)
	if err != nil {
		logger.Warn("Could not count entities", "err", err)
	}
	emit(params.Events, EventGraphUpdate, map[string]any{
		"entities":     taggedEntities(topicA, topicB, extracted),
		"connections":  extracted.Connections,
		"entity_count": entityCount,
	})

	inv.knowledge.StoreFinding(ctx, topicA, topicB, round, extracted.Insight, extracted.Connections)

	for _, imageURL := range firstUnique(images, maxImagesPerRound) {
		clue := inv.vision.AnalyzeImage(ctx, imageURL, topicA, topicB)
		if clue == "" {
			continue
		}
		emit(params.Events, EventImageClue, map[string]any{
			"image_url": imageURL,
			"clue_text": clue,
			"round":     round,
		})
	}

	narration := inv.narrator.Narrate(ctx, round, topicA, topicB, extracted.Insight, entityCount, params.OnNarrationChunk)
	emit(params.Events, EventNarration, map[string]any{
		"text":  narration,
		"round": round,
	})

	return extracted.Insight
}

// searchRound executes the round's search plan. Round 1 searches the
// topic-pair connection query and each topic. Later rounds first derive
// deeper queries from the previous insight and search each of those too.
// Image URLs from every call accumulate into one round-wide list.
func (inv *Investigator) searchRound(
	ctx context.Context,
	round int,
	topicA string,
	topicB string,
	lastInsight string,
	previousContext string,
) ([]search.Result, []string) {
	var roundImages []string

	connectionResults, images, err := search.SearchConnections(ctx, inv.searcher, topicA, topicB)
	if err != nil {
		logger.Warn("Connection search failed", "err", err)
	}
	roundImages = append(roundImages, images...)

	if round > 1 {
		for _, query := range inv.extractor.DeeperQueries(ctx, topicA, topicB, lastInsight) {
			extraResults, extraImages, err := inv.searcher.SearchTopic(ctx, query, 3)
			if err != nil {
				logger.Warn("Deeper search failed", "query", query, "err", err)
				continue
			}
			connectionResults = append(connectionResults, extraResults...)
			roundImages = append(roundImages, extraImages...)
		}
	}

	topicAResults, imagesA, err := inv.searcher.SearchTopic(ctx, topicA, 5)
	if err != nil {
		logger.Warn("Topic search failed", "topic", topicA, "err", err)
	}
	topicBResults, imagesB, err := inv.searcher.SearchTopic(ctx, topicB, 5)
	if err != nil {
		logger.Warn("Topic search failed", "topic", topicB, "err", err)
	}
	roundImages = append(roundImages, imagesA...)
	roundImages = append(roundImages, imagesB...)

	all := make([]search.Result, 0, len(topicAResults)+len(topicBResults)+len(connectionResults)+1)
	all = append(all, topicAResults...)
	if previousContext != "" {
		all = append(all, search.Result{
			Title:   "Previous Findings",
			Content: previousContext,
		})
	}
	all = append(all, topicBResults...)
	all = append(all, connectionResults...)

	logger.Info("Search finished", "results", len(all), "images", len(roundImages))
	return all, roundImages
}

func (inv *Investigator) updateGraph(ctx context.Context, round int, topicA, topicB string, extracted graph.ExtractionResult) {
	for _, name := range extracted.EntitiesA {
		if err := inv.graphStore.UpsertEntity(ctx, name, topicA, round); err != nil {
			logger.Warn("Entity upsert failed", "name", name, "err", err)
		}
	}
	for _, name := range extracted.EntitiesB {
		if err := inv.graphStore.UpsertEntity(ctx, name, topicB, round); err != nil {
			logger.Warn("Entity upsert failed", "name", name, "err", err)
		}
	}
	for _, conn := range extracted.Connections {
		if err := inv.graphStore.UpsertConnection(ctx, conn.From, conn.To, conn.Relationship, conn.Suspicion); err != nil {
			logger.Warn("Connection upsert failed", "from", conn.From, "to", conn.To, "err", err)
		}
	}
}

func taggedEntities(topicA, topicB string, extracted graph.ExtractionResult) []map[string]any {
	entities := make([]map[string]any, 0, len(extracted.EntitiesA)+len(extracted.EntitiesB))
	for _, name := range extracted.EntitiesA {
		entities = append(entities, map[string]any{"name": name, "topic": topicA})
	}
	for _, name := range extracted.EntitiesB {
		entities = append(entities, map[string]any{"name": name, "topic": topicB})
	}
	return entities
}

// rankConnections sorts connections by suspicion descending, ties keeping
// store order, and returns the top few with display-truncated relationships.
func rankConnections(connections []graph.Connection) []map[string]any {
	ranked := make([]graph.Connection, len(connections))
	copy(ranked, connections)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Suspicion > ranked[j].Suspicion
	})

	if len(ranked) > maxTopConnections {
		ranked = ranked[:maxTopConnections]
	}
	top := make([]map[string]any, 0, len(ranked))
	for _, conn := range ranked {
		top = append(top, map[string]any{
			"from":         conn.From,
			"to":           conn.To,
			"relationship": util.Truncate(conn.Relationship, maxRelationshipDisplay),
		})
	}
	return top
}

// firstUnique deduplicates preserving first-seen order and keeps at most
// limit values.
func firstUnique(values []string, limit int) []string {
	unique := util.DedupeStrings(values)
	if len(unique) > limit {
		unique = unique[:limit]
	}
	return unique
}

func emit(log *EventLog, eventType string, fields map[string]any) {
	if log == nil {
		return
	}
	log.Append(Event{Type: eventType, Fields: fields})
}
