package server

import (
	"context"
	"fmt"
	"sync"

	"corkboard/internal/agent"
	"corkboard/pkg/logger"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// InvestigatorFactory builds a fresh Investigator for one run, including its
// own graph store connection.
type InvestigatorFactory func(ctx context.Context) *agent.Investigator

// Run is one in-flight or finished investigation owned by the server.
type Run struct {
	ID     string
	TopicA string
	TopicB string
	Rounds int
	Events *agent.EventLog
}

// RunManager starts investigation runs in the background and keeps their
// event logs addressable by run ID for the lifetime of the process.
type RunManager struct {
	mu   sync.Mutex
	runs map[string]*Run

	newInvestigator InvestigatorFactory
}

// NewRunManagerParams contains all dependencies for creating a RunManager.
type NewRunManagerParams struct {
	NewInvestigator InvestigatorFactory
}

// NewRunManager creates a RunManager.
func NewRunManager(params NewRunManagerParams) *RunManager {
	return &RunManager{
		runs:            make(map[string]*Run),
		newInvestigator: params.NewInvestigator,
	}
}

// Start launches a run in the background and returns it immediately. Runs
// are isolated: each gets its own Investigator and event log.
func (m *RunManager) Start(topicA, topicB string, rounds int) (*Run, error) {
	id, err := gonanoid.New()
	if err != nil {
		return nil, err
	}

	run := &Run{
		ID:     id,
		TopicA: topicA,
		TopicB: topicB,
		Rounds: rounds,
		Events: agent.NewEventLog(),
	}

	m.mu.Lock()
	m.runs[id] = run
	m.mu.Unlock()

	go m.execute(run)
	return run, nil
}

// Get returns the run with the given ID, if it exists.
func (m *RunManager) Get(id string) (*Run, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	run, ok := m.runs[id]
	return run, ok
}

// execute drives one run to completion. Internal faults become a terminal
// error event rather than taking down the process, and the event log always
// closes so observers see the stream end.
func (m *RunManager) execute(run *Run) {
	defer run.Events.Close()
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Run panicked", "run_id", run.ID, "panic", r)
			run.Events.Append(agent.Event{
				Type:   agent.EventError,
				Fields: map[string]any{"message": fmt.Sprintf("internal error: %v", r)},
			})
		}
	}()

	ctx := context.Background()
	investigator := m.newInvestigator(ctx)
	err := investigator.Run(ctx, agent.RunParams{
		TopicA: run.TopicA,
		TopicB: run.TopicB,
		Rounds: run.Rounds,
		Events: run.Events,
	})
	if err != nil {
		logger.Error("Run failed", "run_id", run.ID, "err", err)
		run.Events.Append(agent.Event{
			Type:   agent.EventError,
			Fields: map[string]any{"message": err.Error()},
		})
	}
}
