// Package senso wraps the Senso Context OS search API as the agent's
// knowledge store. The v2 API only exposes search, so storing findings is a
// kept-but-empty contract while the graph database holds the durable state.
package senso

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"corkboard/internal/util"
	"corkboard/pkg/graph"
	"corkboard/pkg/logger"
)

const defaultBaseURL = "https://apiv2.senso.ai/api/v1/org"

// noResultsSentinel is the literal answer Senso returns when nothing
// matched. It is treated the same as a missing answer.
const noResultsSentinel = "No results found for your query."

// maxContextChars caps the context string handed back to the caller.
const maxContextChars = 500

// Client talks to the Senso knowledge store. A client without an API key is
// permanently unavailable and returns empty context.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewClientParams contains all settings for creating a senso Client.
type NewClientParams struct {
	APIKey string

	// BaseURL overrides the Senso endpoint, used in tests.
	BaseURL string

	HTTPClient *http.Client
}

// NewClient creates a Senso client.
func NewClient(params NewClientParams) *Client {
	if params.APIKey == "" {
		logger.Warn("Senso API key not configured, knowledge store queries will return empty context")
	}
	if params.BaseURL == "" {
		params.BaseURL = defaultBaseURL
	}
	if params.HTTPClient == nil {
		params.HTTPClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{
		apiKey:     params.APIKey,
		baseURL:    params.BaseURL,
		httpClient: params.HTTPClient,
	}
}

type searchRequest struct {
	Query      string `json:"query"`
	MaxResults int    `json:"max_results"`
}

type searchResponse struct {
	Answer  string `json:"answer"`
	Results []struct {
		ChunkText string `json:"chunk_text"`
	} `json:"results"`
}

// QueryFindings asks the knowledge store for prior context about the two
// topics. It prefers the service's synthesized answer and falls back to
// concatenated result chunks. Any failure yields an empty string, never an
// error, so rounds start cleanly without prior context.
func (c *Client) QueryFindings(ctx context.Context, topicA, topicB string) string {
	if c.apiKey == "" {
		return ""
	}

	body, err := json.Marshal(searchRequest{
		Query:      fmt.Sprintf("connections between %s and %s", topicA, topicB),
		MaxResults: 3,
	})
	if err != nil {
		logger.Warn("Senso query failed", "err", err)
		return ""
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/search", bytes.NewReader(body))
	if err != nil {
		logger.Warn("Senso query failed", "err", err)
		return ""
	}
	req.Header.Set("X-API-Key", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		logger.Warn("Senso query failed", "err", err)
		return ""
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		logger.Warn("Senso query failed", "status", resp.StatusCode)
		return ""
	}

	var decoded searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		logger.Warn("Senso query returned malformed response", "err", err)
		return ""
	}

	if decoded.Answer != "" && decoded.Answer != noResultsSentinel {
		return util.Truncate(decoded.Answer, maxContextChars)
	}

	chunks := make([]string, 0, len(decoded.Results))
	for _, r := range decoded.Results {
		if r.ChunkText != "" {
			chunks = append(chunks, r.ChunkText)
		}
	}
	return util.Truncate(strings.Join(chunks, " "), maxContextChars)
}

// StoreFinding records a round's findings in the knowledge store. The v2 API
// exposes no ingest endpoint, so this is currently a no-op; the call site is
// kept so a backing service with ingest support slots in transparently.
func (c *Client) StoreFinding(ctx context.Context, topicA, topicB string, round int, insight string, connections []graph.Connection) {
}
