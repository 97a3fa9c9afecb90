package search

import "context"

// Result is one ranked search hit with its content already truncated for
// prompt use.
type Result struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Content string `json:"content"`
}

// Searcher issues a web search and returns ranked results plus any image
// URLs the provider surfaced for the query.
type Searcher interface {
	SearchTopic(ctx context.Context, query string, maxResults int) ([]Result, []string, error)
}

// SearchConnections searches for direct links between two topics. It uses a
// fixed query shape and a smaller result count than a plain topic search.
func SearchConnections(ctx context.Context, s Searcher, topicA, topicB string) ([]Result, []string, error) {
	query := topicA + " " + topicB + " connection relationship"
	return s.SearchTopic(ctx, query, 3)
}
