package ollama

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"corkboard/pkg/ai"

	"github.com/ollama/ollama/api"
)

// maxImageBytes caps how much image data is downloaded for analysis.
const maxImageBytes = 8 << 20

// GenerateImageDescription downloads the image at imageURL and sends a
// vision chat request with the raw bytes, returning the model's textual
// description. Ollama has no URL-based image input, so the fetch happens
// client-side.
func (c *BoardOllamaClient) GenerateImageDescription(
	ctx context.Context,
	prompt string,
	imageURL string,
) (string, error) {
	raw, err := c.fetchImage(ctx, imageURL)
	if err != nil {
		return "", err
	}

	if err := c.imageLock.Acquire(ctx, 1); err != nil {
		return "", err
	}
	defer c.imageLock.Release(1)

	stream := false
	req := &api.ChatRequest{
		Model: c.imageModel,
		Messages: []api.Message{
			{Role: "system", Content: prompt},
			{
				Role:   "user",
				Images: []api.ImageData{raw},
			},
		},
		Stream: &stream,
	}

	var final api.ChatResponse
	if err := c.Client.Chat(ctx, req, func(cr api.ChatResponse) error {
		final.Message.Content += cr.Message.Content
		if cr.Done {
			final.Done = true
			final.Metrics = cr.Metrics
		}
		return nil
	}); err != nil {
		return "", err
	}

	metrics := ai.ModelMetrics{
		InputTokens:  final.Metrics.PromptEvalCount,
		OutputTokens: final.Metrics.EvalCount,
		TotalTokens:  final.Metrics.PromptEvalCount + final.Metrics.EvalCount,
		DurationMs:   final.Metrics.TotalDuration.Milliseconds(),
	}
	c.modifyMetrics(metrics)

	return final.Message.Content, nil
}

func (c *BoardOllamaClient) fetchImage(ctx context.Context, imageURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("image fetch returned status %d", resp.StatusCode)
	}

	return io.ReadAll(io.LimitReader(resp.Body, maxImageBytes))
}
