package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"corkboard/internal/util"
	"corkboard/pkg/logger"
)

const defaultTavilyURL = "https://api.tavily.com"

// maxContentChars caps each result's content before it reaches a prompt.
const maxContentChars = 500

// maxImagesPerSearch caps how many image URLs one search contributes.
const maxImagesPerSearch = 3

// TavilyClient implements Searcher against the Tavily search API. A client
// constructed without an API key is permanently unavailable and returns
// empty results instead of erroring.
type TavilyClient struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewTavilyClientParams contains all settings for creating a TavilyClient.
type NewTavilyClientParams struct {
	APIKey string

	// BaseURL overrides the Tavily endpoint, used in tests.
	BaseURL string

	HTTPClient *http.Client
}

// NewTavilyClient creates a Tavily-backed Searcher.
func NewTavilyClient(params NewTavilyClientParams) *TavilyClient {
	if params.APIKey == "" {
		logger.Warn("Tavily API key not configured, searches will return empty results")
	}
	if params.BaseURL == "" {
		params.BaseURL = defaultTavilyURL
	}
	if params.HTTPClient == nil {
		params.HTTPClient = http.DefaultClient
	}
	return &TavilyClient{
		apiKey:     params.APIKey,
		baseURL:    params.BaseURL,
		httpClient: params.HTTPClient,
	}
}

type tavilyRequest struct {
	Query         string `json:"query"`
	SearchDepth   string `json:"search_depth"`
	MaxResults    int    `json:"max_results"`
	IncludeImages bool   `json:"include_images"`
}

type tavilyResult struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Content string `json:"content"`
}

// tavilyImage tolerates both response shapes Tavily uses for images: a bare
// URL string or an object with url and description fields.
type tavilyImage struct {
	URL string
}

func (i *tavilyImage) UnmarshalJSON(data []byte) error {
	var plain string
	if err := json.Unmarshal(data, &plain); err == nil {
		i.URL = plain
		return nil
	}
	var obj struct {
		URL string `json:"url"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	i.URL = obj.URL
	return nil
}

type tavilyResponse struct {
	Results []tavilyResult `json:"results"`
	Images  []tavilyImage  `json:"images"`
}

// SearchTopic runs one advanced-depth search with images included. Result
// content is truncated and the image list is capped before returning.
func (c *TavilyClient) SearchTopic(ctx context.Context, query string, maxResults int) ([]Result, []string, error) {
	if c.apiKey == "" {
		return []Result{}, []string{}, nil
	}

	body, err := json.Marshal(tavilyRequest{
		Query:         query,
		SearchDepth:   "advanced",
		MaxResults:    maxResults,
		IncludeImages: true,
	})
	if err != nil {
		return nil, nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/search", bytes.NewReader(body))
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, nil, fmt.Errorf("tavily search returned status %d", resp.StatusCode)
	}

	var decoded tavilyResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, nil, err
	}

	results := make([]Result, 0, len(decoded.Results))
	for _, r := range decoded.Results {
		results = append(results, Result{
			Title:   r.Title,
			URL:     r.URL,
			Content: util.Truncate(r.Content, maxContentChars),
		})
	}

	images := make([]string, 0, maxImagesPerSearch)
	for _, img := range decoded.Images {
		if img.URL == "" {
			continue
		}
		images = append(images, img.URL)
		if len(images) == maxImagesPerSearch {
			break
		}
	}

	return results, images, nil
}
