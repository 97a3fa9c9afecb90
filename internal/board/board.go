// Package board wires the investigation agent from environment
// configuration. Both the CLI and the web server build their runs through
// it, each run owning a fresh graph store connection.
package board

import (
	"context"

	"corkboard/internal/agent"
	"corkboard/internal/search"
	"corkboard/internal/senso"
	"corkboard/internal/util"
	"corkboard/pkg/ai"
	oll "corkboard/pkg/ai/ollama"
	oai "corkboard/pkg/ai/openai"
	"corkboard/pkg/graph"
	"corkboard/pkg/logger"
)

// NewAIClientFromEnv builds the model client selected by AI_ADAPTER.
// Anything other than "ollama" gets the OpenAI-compatible client.
func NewAIClientFromEnv() ai.BoardAIClient {
	adapter := util.GetEnv("AI_ADAPTER")

	switch adapter {
	case "ollama":
		client, err := oll.NewBoardOllamaClient(oll.NewBoardOllamaClientParams{
			ChatModel:    util.GetEnv("AI_CHAT_MODEL"),
			ExtractModel: util.GetEnv("AI_EXTRACT_MODEL"),
			ImageModel:   util.GetEnv("AI_IMAGE_MODEL"),

			BaseURL: util.GetEnv("AI_CHAT_URL"),
			ApiKey:  util.GetEnv("AI_CHAT_KEY"),
		})
		if err != nil {
			logger.Fatal("Could not create Ollama client", "err", err)
		}
		return client
	default:
		return oai.NewBoardOpenAIClient(oai.NewBoardOpenAIClientParams{
			ChatModel:    util.GetEnv("AI_CHAT_MODEL"),
			ExtractModel: util.GetEnv("AI_EXTRACT_MODEL"),
			ImageModel:   util.GetEnv("AI_IMAGE_MODEL"),

			ChatURL:  util.GetEnv("AI_CHAT_URL"),
			ChatKey:  util.GetEnv("AI_CHAT_KEY"),
			ImageURL: util.GetEnv("AI_IMAGE_URL"),
			ImageKey: util.GetEnv("AI_IMAGE_KEY"),
		})
	}
}

// NewInvestigatorFromEnv assembles an Investigator for one run. The graph
// store connection is opened here and released by the run itself.
func NewInvestigatorFromEnv(ctx context.Context, aiClient ai.BoardAIClient) *agent.Investigator {
	graphStore := graph.NewBoltStore(ctx, graph.NewBoltStoreParams{
		URI:      util.GetEnv("NEO4J_URI"),
		Username: util.GetEnv("NEO4J_USERNAME"),
		Password: util.GetEnv("NEO4J_PASSWORD"),
	})

	return agent.NewInvestigator(agent.NewInvestigatorParams{
		GraphStore: graphStore,
		Searcher: search.NewTavilyClient(search.NewTavilyClientParams{
			APIKey: util.GetEnv("TAVILY_API_KEY"),
		}),
		Extractor: graph.NewExtractor(graph.NewExtractorParams{AIClient: aiClient}),
		Knowledge: senso.NewClient(senso.NewClientParams{
			APIKey: util.GetEnv("SENSO_API_KEY"),
		}),
		Narrator: agent.NewNarrator(agent.NewNarratorParams{AIClient: aiClient}),
		Vision:   agent.NewVisionClient(agent.NewVisionClientParams{AIClient: aiClient}),
	})
}
