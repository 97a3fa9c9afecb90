package main

import (
	"fmt"
	"strings"

	"corkboard/internal/agent"
)

// renderEvent prints one run event to the terminal. Narration text is not
// reprinted here since its chunks already streamed live.
func renderEvent(event agent.Event) {
	switch event.Type {
	case agent.EventRoundStart:
		fmt.Printf("\n%s\n", strings.Repeat("=", 50))
		fmt.Printf("  ROUND %d/%d\n", intField(event, "round"), intField(event, "total_rounds"))
		fmt.Printf("%s\n", strings.Repeat("=", 50))

	case agent.EventSensoQuery:
		if boolField(event, "has_context") {
			fmt.Printf("\n[Senso] Found prior context (%d chars)\n", intField(event, "context_length"))
		} else {
			fmt.Println("\n[Senso] No prior findings")
		}

	case agent.EventSearchComplete:
		fmt.Printf("[Search] Collected %d search results\n", intField(event, "result_count"))

	case agent.EventExtractionComplete:
		fmt.Printf("[Extract] Insight: %s\n", stringField(event, "insight"))

	case agent.EventGraphUpdate:
		fmt.Printf("[Graph] Total entities on the board: %d\n", intField(event, "entity_count"))

	case agent.EventImageClue:
		fmt.Printf("[Vision] Clue: %s\n", stringField(event, "clue_text"))

	case agent.EventNarration:
		fmt.Println()

	case agent.EventComplete:
		fmt.Printf("\n%s\n", strings.Repeat("=", 50))
		fmt.Println("  CONSPIRACY COMPLETE")
		fmt.Printf("%s\n", strings.Repeat("=", 50))
		fmt.Printf("  Total entities: %d\n", intField(event, "total_entities"))
		fmt.Printf("  Total connections: %d\n", intField(event, "total_connections"))
		if top, ok := event.Fields["top_connections"].([]map[string]any); ok && len(top) > 0 {
			fmt.Println("\n  Top connections:")
			for _, conn := range top {
				fmt.Printf("    %v -> %v: %v\n", conn["from"], conn["to"], conn["relationship"])
			}
		}

	case agent.EventError:
		fmt.Printf("\n[Error] %s\n", stringField(event, "message"))
	}
}

func intField(event agent.Event, key string) int {
	switch v := event.Fields[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return 0
}

func boolField(event agent.Event, key string) bool {
	v, _ := event.Fields[key].(bool)
	return v
}

func stringField(event agent.Event, key string) string {
	v, _ := event.Fields[key].(string)
	return v
}
