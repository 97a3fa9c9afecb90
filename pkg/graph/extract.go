package graph

import (
	"context"
	"fmt"
	"strings"

	"corkboard/internal/util"
	"corkboard/pkg/ai"
	"corkboard/pkg/logger"
)

// maxExtractionInput caps the combined search text handed to the extraction
// model in one pass.
const maxExtractionInput = 3000

// FallbackInsight stands in when extraction fails or yields no insight.
const FallbackInsight = "No connections found yet..."

type extractionConnectionSchema struct {
	From         string `json:"from" jsonschema_description:"Name of the source entity"`
	To           string `json:"to" jsonschema_description:"Name of the target entity"`
	Relationship string `json:"relationship" jsonschema_description:"One sentence describing how the entities are connected"`
	Suspicion    int    `json:"suspicion_level" jsonschema_description:"How suspicious the connection is, from 1 to 10"`
}

type extractionSchema struct {
	EntitiesA   []string                     `json:"entities_a" jsonschema_description:"Entities belonging to the first topic"`
	EntitiesB   []string                     `json:"entities_b" jsonschema_description:"Entities belonging to the second topic"`
	Connections []extractionConnectionSchema `json:"connections" jsonschema_description:"Suspicious connections between entities of the two topics"`
	Insight     string                       `json:"insight" jsonschema_description:"One sentence summarizing the most suspicious connection"`
}

// Extractor turns raw search text into entities and connections using a
// structured model call.
type Extractor struct {
	aiClient ai.BoardAIClient
}

// NewExtractorParams contains all dependencies for creating an Extractor.
type NewExtractorParams struct {
	AIClient ai.BoardAIClient
}

// NewExtractor creates an Extractor backed by the given model client.
func NewExtractor(params NewExtractorParams) *Extractor {
	return &Extractor{
		aiClient: params.AIClient,
	}
}

// Extract runs one extraction pass over the given search texts. The texts
// are joined, capped and sent to the extraction model. Model or parse
// failures never propagate: the result degrades to empty slices and an empty
// insight so the round can continue.
func (e *Extractor) Extract(
	ctx context.Context,
	topicA string,
	topicB string,
	texts []string,
) ExtractionResult {
	fallback := ExtractionResult{
		EntitiesA:   []string{},
		EntitiesB:   []string{},
		Connections: []Connection{},
		Insight:     FallbackInsight,
	}

	combined := util.Truncate(strings.Join(texts, "\n"), maxExtractionInput)
	if strings.TrimSpace(combined) == "" {
		return fallback
	}

	prompt := fmt.Sprintf(ai.ExtractPrompt, topicA, topicB, combined)

	var parsed extractionSchema
	err := e.aiClient.GenerateCompletionWithFormat(
		ctx,
		"extraction",
		"Entities and suspicious connections extracted from search results",
		prompt,
		&parsed,
		ai.WithSystemPrompts(ai.ExtractSystemPrompt),
	)
	if err != nil {
		logger.Warn("Extraction failed, continuing with fallback result", "err", err)
		return fallback
	}

	insight := parsed.Insight
	if strings.TrimSpace(insight) == "" {
		insight = FallbackInsight
	}
	result := ExtractionResult{
		EntitiesA:   util.DedupeStrings(parsed.EntitiesA),
		EntitiesB:   util.DedupeStrings(parsed.EntitiesB),
		Connections: make([]Connection, 0, len(parsed.Connections)),
		Insight:     insight,
	}
	for _, conn := range parsed.Connections {
		if strings.TrimSpace(conn.From) == "" || strings.TrimSpace(conn.To) == "" {
			continue
		}
		suspicion := conn.Suspicion
		if suspicion == 0 {
			suspicion = DefaultSuspicion
		}
		result.Connections = append(result.Connections, Connection{
			From:         conn.From,
			To:           conn.To,
			Relationship: conn.Relationship,
			Suspicion:    suspicion,
		})
	}
	return result
}

// DeeperQueries asks the model for up to three follow-up search queries
// grounded in the previous round's insight. On any failure it falls back to
// three templated queries so later rounds always have something to search.
func (e *Extractor) DeeperQueries(
	ctx context.Context,
	topicA string,
	topicB string,
	insight string,
) []string {
	fallback := []string{
		fmt.Sprintf("%s secret connections", topicA),
		fmt.Sprintf("%s hidden links", topicB),
		fmt.Sprintf("%s %s conspiracy", topicA, topicB),
	}

	prompt := fmt.Sprintf(ai.DeeperQueriesPrompt, topicA, topicB, insight)
	response, err := e.aiClient.GenerateCompletion(
		ctx,
		prompt,
		ai.WithSystemPrompts(ai.QuerySystemPrompt),
	)
	if err != nil {
		logger.Warn("Deeper query generation failed, using fallback queries", "err", err)
		return fallback
	}

	var queries []string
	if err := ai.UnmarshalFlexible(response, &queries); err != nil {
		logger.Warn("Deeper query response was not a JSON array, using fallback queries", "err", err)
		return fallback
	}

	cleaned := make([]string, 0, 3)
	for _, q := range queries {
		if strings.TrimSpace(q) == "" {
			continue
		}
		cleaned = append(cleaned, q)
		if len(cleaned) == 3 {
			break
		}
	}
	if len(cleaned) == 0 {
		return fallback
	}
	return cleaned
}
