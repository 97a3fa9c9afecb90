package main

import (
	"context"
	"fmt"
	"os"

	"corkboard/internal/agent"
	"corkboard/internal/board"
	"corkboard/internal/server"
	"corkboard/internal/util"
	"corkboard/pkg/logger"
	"corkboard/pkg/logger/console"

	"github.com/spf13/cobra"
)

var (
	rounds  int
	webMode bool
	port    int
)

var rootCmd = &cobra.Command{
	Use:   "corkboard [topic A] [topic B]",
	Short: "Conspiracy Board Agent, connect any two topics",
	Long: "Investigates the hidden connections between two topics over several " +
		"rounds of web search, entity extraction and graph building, narrated " +
		"with escalating paranoia.",
	Args:          cobra.MaximumNArgs(2),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          run,
}

func init() {
	rootCmd.Flags().IntVar(&rounds, "rounds", 3, "number of investigation rounds")
	rootCmd.Flags().BoolVar(&webMode, "web", false, "launch the web UI instead of a CLI run")
	rootCmd.Flags().IntVar(&port, "port", 0, "web server port (default 8000, or PORT env)")
}

func run(cmd *cobra.Command, args []string) error {
	util.LoadEnv()

	debug := util.GetEnvBool("DEBUG", false)
	consoleLogger := console.NewConsoleLogger(console.ConsoleLoggerParams{
		Debug: debug,
	})
	logger.Init(consoleLogger)

	if webMode {
		if port == 0 {
			port = util.GetEnvInt("PORT", 8000)
		}
		fmt.Printf("Starting Conspiracy Board web UI at http://localhost:%d\n", port)
		server.Init(port)
		return nil
	}

	if len(args) < 2 {
		return fmt.Errorf("topic A and topic B are required in CLI mode (or use --web for the web UI)")
	}
	topicA, topicB := args[0], args[1]

	fmt.Println("=== CONSPIRACY BOARD AGENT ===")
	fmt.Printf("Investigating: %s <-> %s\n", topicA, topicB)
	fmt.Printf("Rounds: %d\n", rounds)

	ctx := context.Background()
	aiClient := board.NewAIClientFromEnv()
	investigator := board.NewInvestigatorFromEnv(ctx, aiClient)

	events := agent.NewEventLog()
	_, live, cancel := events.Subscribe()
	defer cancel()

	rendered := make(chan struct{})
	go func() {
		defer close(rendered)
		for event := range live {
			renderEvent(event)
		}
	}()

	err := investigator.Run(ctx, agent.RunParams{
		TopicA: topicA,
		TopicB: topicB,
		Rounds: rounds,
		Events: events,
		OnNarrationChunk: func(chunk string) {
			fmt.Print(chunk)
		},
	})
	events.Close()
	<-rendered
	return err
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
