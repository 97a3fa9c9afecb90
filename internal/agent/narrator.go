package agent

import (
	"context"
	"fmt"
	"strings"

	"corkboard/pkg/ai"
	"corkboard/pkg/logger"
)

// Narrator generates round-aware narration that escalates from intrigued to
// fully unhinged as the investigation deepens.
type Narrator struct {
	aiClient ai.BoardAIClient
}

// NewNarratorParams contains all dependencies for creating a Narrator.
type NewNarratorParams struct {
	AIClient ai.BoardAIClient
}

// NewNarrator creates a Narrator backed by the given model client.
func NewNarrator(params NewNarratorParams) *Narrator {
	return &Narrator{
		aiClient: params.AIClient,
	}
}

// personaBucket clamps a round number to one of the three persona buckets.
// Rounds past 3 stay at peak unhinged.
func personaBucket(round int) int {
	if round < 1 {
		return 1
	}
	if round > 3 {
		return 3
	}
	return round
}

// Narrate streams a reaction to the round's insight, forwarding each text
// chunk to onChunk as it arrives, and returns the trimmed full narration.
// Any model failure yields the bucket's canned line instead of an error.
func (n *Narrator) Narrate(
	ctx context.Context,
	round int,
	topicA string,
	topicB string,
	insight string,
	entityCount int,
	onChunk func(string),
) string {
	bucket := personaBucket(round)

	prompt := fmt.Sprintf(ai.NarrationPrompt, topicA, topicB, insight, entityCount)
	messages := []ai.ChatMessage{
		{Role: "user", Message: prompt},
	}

	stream, err := n.aiClient.GenerateChatStream(
		ctx,
		messages,
		ai.WithSystemPrompts(ai.NarrationSystemPrompts[bucket]),
	)
	if err != nil {
		logger.Warn("Narration failed, using canned line", "round", round, "err", err)
		return ai.NarrationFallbacks[bucket]
	}

	var builder strings.Builder
	for chunk := range stream {
		builder.WriteString(chunk)
		if onChunk != nil {
			onChunk(chunk)
		}
	}
	return strings.TrimSpace(builder.String())
}
