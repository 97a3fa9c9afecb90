package agent

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"corkboard/internal/search"
	"corkboard/pkg/ai"
	"corkboard/pkg/graph"
)

type stubSearcher struct {
	results []search.Result
	images  []string
	queries []string
}

func (s *stubSearcher) SearchTopic(ctx context.Context, query string, maxResults int) ([]search.Result, []string, error) {
	s.queries = append(s.queries, query)
	return s.results, s.images, nil
}

type stubKnowledge struct {
	context    string
	storeCalls int
}

func (s *stubKnowledge) QueryFindings(ctx context.Context, topicA, topicB string) string {
	return s.context
}

func (s *stubKnowledge) StoreFinding(ctx context.Context, topicA, topicB string, round int, insight string, connections []graph.Connection) {
	s.storeCalls++
}

type scriptedAIClient struct {
	extractionJSON string
	deeperJSON     string
	streamChunks   []string
	streamErr      error
	clue           string

	deeperPrompts []string
}

func (c *scriptedAIClient) GenerateCompletion(ctx context.Context, prompt string, opts ...ai.GenerateOption) (string, error) {
	c.deeperPrompts = append(c.deeperPrompts, prompt)
	return c.deeperJSON, nil
}

func (c *scriptedAIClient) GenerateCompletionWithFormat(ctx context.Context, name, description, prompt string, out any, opts ...ai.GenerateOption) error {
	return json.Unmarshal([]byte(c.extractionJSON), out)
}

func (c *scriptedAIClient) GenerateChatStream(ctx context.Context, messages []ai.ChatMessage, opts ...ai.GenerateOption) (<-chan string, error) {
	if c.streamErr != nil {
		return nil, c.streamErr
	}
	ch := make(chan string, len(c.streamChunks))
	for _, chunk := range c.streamChunks {
		ch <- chunk
	}
	close(ch)
	return ch, nil
}

func (c *scriptedAIClient) GenerateImageDescription(ctx context.Context, prompt, imageURL string) (string, error) {
	return c.clue, nil
}

func (c *scriptedAIClient) ResetMetrics() {}

func (c *scriptedAIClient) GetMetrics() ai.ModelMetrics { return ai.ModelMetrics{} }

func newTestInvestigator(aiClient *scriptedAIClient, searcher *stubSearcher, knowledge *stubKnowledge) (*Investigator, *graph.MemoryStore) {
	store := graph.NewMemoryStore()
	inv := NewInvestigator(NewInvestigatorParams{
		GraphStore: store,
		Searcher:   searcher,
		Extractor:  graph.NewExtractor(graph.NewExtractorParams{AIClient: aiClient}),
		Knowledge:  knowledge,
		Narrator:   NewNarrator(NewNarratorParams{AIClient: aiClient}),
		Vision:     NewVisionClient(NewVisionClientParams{AIClient: aiClient}),
	})
	return inv, store
}

func eventTypes(events []Event) []string {
	types := make([]string, 0, len(events))
	for _, e := range events {
		types = append(types, e.Type)
	}
	return types
}

func TestRunSingleRoundEventSequence(t *testing.T) {
	aiClient := &scriptedAIClient{
		extractionJSON: `{
			"entities_a": ["NASA", "Apollo 11"],
			"entities_b": ["Patterson Film"],
			"connections": [
				{"from": "NASA", "to": "Patterson Film", "relationship": "same camera crew", "suspicion_level": 7}
			],
			"insight": "The footage shares a cinematographer."
		}`,
		streamChunks: []string{"I knew ", "it all along."},
	}
	searcher := &stubSearcher{
		results: []search.Result{{Title: "hit", URL: "https://example.com", Content: "grainy footage"}},
	}
	knowledge := &stubKnowledge{}
	inv, _ := newTestInvestigator(aiClient, searcher, knowledge)

	log := NewEventLog()
	var chunks []string
	err := inv.Run(context.Background(), RunParams{
		TopicA: "Moon Landing",
		TopicB: "Bigfoot",
		Rounds: 1,
		Events: log,
		OnNarrationChunk: func(chunk string) {
			chunks = append(chunks, chunk)
		},
	})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	want := []string{
		EventRoundStart, EventSensoQuery, EventSearchComplete,
		EventExtractionComplete, EventGraphUpdate, EventNarration, EventComplete,
	}
	got := eventTypes(log.Events())
	if len(got) != len(want) {
		t.Fatalf("expected %d events, got %v", len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("event %d: expected %s, got %s", i, want[i], got[i])
		}
	}

	events := log.Events()
	sensoQuery := events[1]
	if sensoQuery.Fields["has_context"] != false || sensoQuery.Fields["context_length"] != 0 {
		t.Fatalf("expected no prior context without a knowledge store, got %v", sensoQuery.Fields)
	}

	complete := events[len(events)-1]
	if complete.Fields["total_entities"] != 3 {
		t.Fatalf("expected 3 total entities, got %v", complete.Fields["total_entities"])
	}
	if complete.Fields["total_connections"] != 1 {
		t.Fatalf("expected 1 total connection, got %v", complete.Fields["total_connections"])
	}

	narration := events[len(events)-2]
	if narration.Fields["text"] != "I knew it all along." {
		t.Fatalf("unexpected narration %v", narration.Fields["text"])
	}
	if strings.Join(chunks, "") != "I knew it all along." {
		t.Fatalf("expected narration streamed in chunks, got %v", chunks)
	}

	if knowledge.storeCalls != 1 {
		t.Fatalf("expected one store call per round, got %d", knowledge.storeCalls)
	}
}

func TestRunRanksTopConnectionsBySuspicion(t *testing.T) {
	longRelationship := strings.Repeat("r", 120)
	aiClient := &scriptedAIClient{
		extractionJSON: `{
			"entities_a": ["A1"], "entities_b": ["B1"],
			"connections": [
				{"from": "A1", "to": "B1", "relationship": "` + longRelationship + `", "suspicion_level": 3},
				{"from": "B1", "to": "A1", "relationship": "short", "suspicion_level": 9}
			],
			"insight": "x"
		}`,
	}
	searcher := &stubSearcher{results: []search.Result{{Content: "text"}}}
	inv, _ := newTestInvestigator(aiClient, searcher, &stubKnowledge{})

	log := NewEventLog()
	if err := inv.Run(context.Background(), RunParams{TopicA: "a", TopicB: "b", Rounds: 1, Events: log}); err != nil {
		t.Fatalf("run failed: %v", err)
	}

	events := log.Events()
	complete := events[len(events)-1]
	top, ok := complete.Fields["top_connections"].([]map[string]any)
	if !ok {
		t.Fatalf("unexpected top_connections type %T", complete.Fields["top_connections"])
	}
	if len(top) != 2 {
		t.Fatalf("expected 2 top connections, got %d", len(top))
	}
	if top[0]["from"] != "B1" {
		t.Fatalf("expected suspicion-9 connection first, got %v", top[0])
	}
	if rel := top[1]["relationship"].(string); len(rel) != 80 {
		t.Fatalf("expected relationship truncated to 80 chars, got %d", len(rel))
	}
}

func TestRunAnalyzesFirstTwoUniqueImages(t *testing.T) {
	aiClient := &scriptedAIClient{
		extractionJSON: `{"entities_a": [], "entities_b": [], "connections": [], "insight": "x"}`,
		clue:           "a shadowy figure in the background",
	}
	searcher := &stubSearcher{
		results: []search.Result{{Content: "text"}},
		images:  []string{"https://img/1", "https://img/1", "https://img/2", "https://img/3"},
	}
	inv, _ := newTestInvestigator(aiClient, searcher, &stubKnowledge{})

	log := NewEventLog()
	if err := inv.Run(context.Background(), RunParams{TopicA: "a", TopicB: "b", Rounds: 1, Events: log}); err != nil {
		t.Fatalf("run failed: %v", err)
	}

	var clueURLs []string
	for _, event := range log.Events() {
		if event.Type == EventImageClue {
			clueURLs = append(clueURLs, event.Fields["image_url"].(string))
		}
	}
	if len(clueURLs) != 2 {
		t.Fatalf("expected 2 image clues, got %v", clueURLs)
	}
	if clueURLs[0] != "https://img/1" || clueURLs[1] != "https://img/2" {
		t.Fatalf("expected first two unique URLs analyzed, got %v", clueURLs)
	}
}

func TestRunUsesDeeperQueriesFromSecondRound(t *testing.T) {
	aiClient := &scriptedAIClient{
		extractionJSON: `{"entities_a": [], "entities_b": [], "connections": [], "insight": "they met in Nevada"}`,
		deeperJSON:     `["nevada meeting logs", "desert witnesses", "flight manifests"]`,
	}
	searcher := &stubSearcher{results: []search.Result{{Content: "text"}}}
	inv, _ := newTestInvestigator(aiClient, searcher, &stubKnowledge{})

	if err := inv.Run(context.Background(), RunParams{TopicA: "a", TopicB: "b", Rounds: 2}); err != nil {
		t.Fatalf("run failed: %v", err)
	}

	// Round 1: connection + two topic searches. Round 2 adds the three
	// deeper-query searches before the base plan repeats.
	if len(searcher.queries) != 9 {
		t.Fatalf("expected 9 searches over 2 rounds, got %d: %v", len(searcher.queries), searcher.queries)
	}
	if searcher.queries[4] != "nevada meeting logs" {
		t.Fatalf("expected deeper query searched in round 2, got %v", searcher.queries)
	}

	if len(aiClient.deeperPrompts) != 1 {
		t.Fatalf("expected one deeper-query generation, got %d", len(aiClient.deeperPrompts))
	}
	if !strings.Contains(aiClient.deeperPrompts[0], "they met in Nevada") {
		t.Fatalf("expected round-1 insight carried into deeper queries, got %q", aiClient.deeperPrompts[0])
	}
}

func TestRunValidatesParams(t *testing.T) {
	inv, _ := newTestInvestigator(&scriptedAIClient{}, &stubSearcher{}, &stubKnowledge{})

	cases := []struct {
		name   string
		params RunParams
	}{
		{name: "missing topic", params: RunParams{TopicA: "", TopicB: "b", Rounds: 1}},
		{name: "zero rounds", params: RunParams{TopicA: "a", TopicB: "b", Rounds: 0}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := inv.Run(context.Background(), tc.params); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestNarrateFallsBackPerBucket(t *testing.T) {
	cases := []struct {
		round int
		want  string
	}{
		{round: 1, want: "Interesting..."},
		{round: 2, want: "THIS IS NOT A COINCIDENCE."},
		{round: 3, want: "THEY DON'T WANT YOU TO KNOW THIS."},
		{round: 7, want: "THEY DON'T WANT YOU TO KNOW THIS."},
	}
	for _, tc := range cases {
		narrator := NewNarrator(NewNarratorParams{
			AIClient: &scriptedAIClient{streamErr: errors.New("model down")},
		})
		got := narrator.Narrate(context.Background(), tc.round, "a", "b", "insight", 0, nil)
		if got != tc.want {
			t.Fatalf("round %d: expected %q, got %q", tc.round, tc.want, got)
		}
	}
}

func TestAnalyzeImageWithoutBackend(t *testing.T) {
	var v *VisionClient
	if got := v.AnalyzeImage(context.Background(), "https://img/1", "a", "b"); got != "" {
		t.Fatalf("expected empty clue without a backend, got %q", got)
	}
}
