package agent

import (
	"context"
	"fmt"
	"strings"

	"corkboard/pkg/ai"
	"corkboard/pkg/logger"
)

// VisionClient captions images found during research, looking for
// conspiratorial clues tying them to the investigated topics.
type VisionClient struct {
	aiClient ai.BoardAIClient
}

// NewVisionClientParams contains all dependencies for creating a VisionClient.
type NewVisionClientParams struct {
	AIClient ai.BoardAIClient
}

// NewVisionClient creates a VisionClient backed by the given model client.
func NewVisionClient(params NewVisionClientParams) *VisionClient {
	return &VisionClient{
		aiClient: params.AIClient,
	}
}

// AnalyzeImage asks the vision model for a clue in the given image. It
// returns an empty string when no vision backend is configured or the call
// fails; the same URL analyzed twice performs two remote calls.
func (v *VisionClient) AnalyzeImage(ctx context.Context, imageURL, topicA, topicB string) string {
	if v == nil || v.aiClient == nil {
		return ""
	}

	prompt := fmt.Sprintf(ai.VisionPrompt, topicA, topicB)
	clue, err := v.aiClient.GenerateImageDescription(ctx, prompt, imageURL)
	if err != nil {
		logger.Warn("Image analysis failed", "url", imageURL, "err", err)
		return ""
	}
	return strings.TrimSpace(clue)
}
