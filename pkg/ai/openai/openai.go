package openai

import (
	"sync"

	"corkboard/pkg/ai"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"golang.org/x/sync/semaphore"
)

// BoardOpenAIClient is an ai.BoardAIClient backed by OpenAI-compatible chat
// endpoints. It manages separate clients for chat/extraction and vision so
// each can point at a different provider.
//
// A BoardOpenAIClient should be created using NewBoardOpenAIClient. A client
// whose API key is missing is kept nil and every call on that surface
// reports ErrNotConfigured.
type BoardOpenAIClient struct {
	chatModel    string
	extractModel string
	imageModel   string

	chatURL  string
	chatKey  string
	imageURL string
	imageKey string

	imageLock *semaphore.Weighted

	metricsLock sync.Mutex
	metrics     ai.ModelMetrics

	ChatClient  *openai.Client
	ImageClient *openai.Client
}

// NewBoardOpenAIClientParams defines the configuration parameters for
// creating a new BoardOpenAIClient.
//
// ChatModel is used for narration and follow-up query generation,
// ExtractModel for structured entity extraction and ImageModel for vision
// requests. ChatURL/ChatKey and ImageURL/ImageKey configure the two API
// endpoints; an empty URL falls back to the provider default.
type NewBoardOpenAIClientParams struct {
	ChatModel    string
	ExtractModel string
	ImageModel   string

	ChatURL  string
	ChatKey  string
	ImageURL string
	ImageKey string
}

// NewBoardOpenAIClient creates and returns a new BoardOpenAIClient configured
// with the provided parameters.
func NewBoardOpenAIClient(params NewBoardOpenAIClientParams) *BoardOpenAIClient {
	chatClient := newOpenaiClient(params.ChatURL, params.ChatKey)
	imageClient := newOpenaiClient(params.ImageURL, params.ImageKey)

	return &BoardOpenAIClient{
		chatModel:    params.ChatModel,
		extractModel: params.ExtractModel,
		imageModel:   params.ImageModel,

		chatURL:  params.ChatURL,
		chatKey:  params.ChatKey,
		imageURL: params.ImageURL,
		imageKey: params.ImageKey,

		imageLock: semaphore.NewWeighted(1),

		metricsLock: sync.Mutex{},
		metrics:     ai.ModelMetrics{},

		ChatClient:  chatClient,
		ImageClient: imageClient,
	}
}

func newOpenaiClient(
	baseURL string,
	apiKey string,
) *openai.Client {
	if apiKey == "" {
		return nil
	}
	options := []option.RequestOption{
		option.WithAPIKey(apiKey),
	}

	if baseURL != "" {
		options = append(options, option.WithBaseURL(baseURL))
	}

	client := openai.NewClient(options...)

	return &client
}

// ResetMetrics clears all accumulated token and timing metrics to zero.
func (c *BoardOpenAIClient) ResetMetrics() {
	c.metricsLock.Lock()
	c.metrics = ai.ModelMetrics{}
	c.metricsLock.Unlock()
}

// GetMetrics returns the accumulated token usage and timing metrics since
// the last reset.
func (c *BoardOpenAIClient) GetMetrics() ai.ModelMetrics {
	c.metricsLock.Lock()
	defer c.metricsLock.Unlock()
	return c.metrics
}

func (c *BoardOpenAIClient) modifyMetrics(m ai.ModelMetrics) {
	c.metricsLock.Lock()
	defer c.metricsLock.Unlock()

	c.metrics.InputTokens += m.InputTokens
	c.metrics.OutputTokens += m.OutputTokens
	c.metrics.TotalTokens += m.TotalTokens
	c.metrics.DurationMs += m.DurationMs
}
