package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"corkboard/internal/agent"
	"corkboard/internal/search"
	"corkboard/pkg/ai"
	"corkboard/pkg/graph"

	"github.com/go-playground/validator"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

type nullAIClient struct{}

func (nullAIClient) GenerateCompletion(ctx context.Context, prompt string, opts ...ai.GenerateOption) (string, error) {
	return "", errors.New("not configured")
}

func (nullAIClient) GenerateCompletionWithFormat(ctx context.Context, name, description, prompt string, out any, opts ...ai.GenerateOption) error {
	return errors.New("not configured")
}

func (nullAIClient) GenerateChatStream(ctx context.Context, messages []ai.ChatMessage, opts ...ai.GenerateOption) (<-chan string, error) {
	return nil, errors.New("not configured")
}

func (nullAIClient) GenerateImageDescription(ctx context.Context, prompt, imageURL string) (string, error) {
	return "", errors.New("not configured")
}

func (nullAIClient) ResetMetrics() {}

func (nullAIClient) GetMetrics() ai.ModelMetrics { return ai.ModelMetrics{} }

type nullSearcher struct{}

func (nullSearcher) SearchTopic(ctx context.Context, query string, maxResults int) ([]search.Result, []string, error) {
	return []search.Result{{Title: "hit", Content: "some text"}}, nil, nil
}

type nullKnowledge struct{}

func (nullKnowledge) QueryFindings(ctx context.Context, topicA, topicB string) string { return "" }

func (nullKnowledge) StoreFinding(ctx context.Context, topicA, topicB string, round int, insight string, connections []graph.Connection) {
}

func newTestManager() *RunManager {
	return NewRunManager(NewRunManagerParams{
		NewInvestigator: func(ctx context.Context) *agent.Investigator {
			return agent.NewInvestigator(agent.NewInvestigatorParams{
				GraphStore: graph.NewMemoryStore(),
				Searcher:   nullSearcher{},
				Extractor:  graph.NewExtractor(graph.NewExtractorParams{AIClient: nullAIClient{}}),
				Knowledge:  nullKnowledge{},
				Narrator:   agent.NewNarrator(agent.NewNarratorParams{AIClient: nullAIClient{}}),
				Vision:     agent.NewVisionClient(agent.NewVisionClientParams{AIClient: nullAIClient{}}),
			})
		},
	})
}

func newTestEcho(runs *RunManager) *echo.Echo {
	e := echo.New()
	e.Validator = &CustomValidator{validator: validator.New()}
	RegisterRoutes(e, runs)
	return e
}

func waitForClose(t *testing.T, log *agent.EventLog) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for !log.Closed() {
		if time.Now().After(deadline) {
			t.Fatal("run did not finish in time")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestStartRunHandlerRejectsMissingTopic(t *testing.T) {
	e := newTestEcho(newTestManager())

	req := httptest.NewRequest(http.MethodPost, "/run", strings.NewReader(`{"topic_a": "only one"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestStartRunHandlerStartsBackgroundRun(t *testing.T) {
	runs := newTestManager()
	e := newTestEcho(runs)

	body := `{"topic_a": "Moon Landing", "topic_b": "Bigfoot", "rounds": 1}`
	req := httptest.NewRequest(http.MethodPost, "/run", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		RunID string `json:"run_id"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("could not decode response: %v", err)
	}
	if resp.RunID == "" {
		t.Fatal("expected a run_id")
	}

	run, ok := runs.Get(resp.RunID)
	if !ok {
		t.Fatal("run not registered")
	}
	waitForClose(t, run.Events)

	events := run.Events.Events()
	if len(events) == 0 {
		t.Fatal("expected events from the run")
	}
	if events[len(events)-1].Type != agent.EventComplete {
		t.Fatalf("expected terminal complete event, got %s", events[len(events)-1].Type)
	}
}

func TestStartRunHandlerDefaultsRounds(t *testing.T) {
	runs := newTestManager()
	e := newTestEcho(runs)

	body := `{"topic_a": "a", "topic_b": "b"}`
	req := httptest.NewRequest(http.MethodPost, "/run", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp struct {
		RunID string `json:"run_id"`
	}
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	run, _ := runs.Get(resp.RunID)
	if run.Rounds != 3 {
		t.Fatalf("expected 3 default rounds, got %d", run.Rounds)
	}
	waitForClose(t, run.Events)
}

func TestRunEventsHandlerUnknownRun(t *testing.T) {
	e := newTestEcho(newTestManager())

	req := httptest.NewRequest(http.MethodGet, "/ws/nope", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestRunEventsWebSocketReplaysFinishedRun(t *testing.T) {
	runs := newTestManager()
	e := newTestEcho(runs)
	server := httptest.NewServer(e)
	defer server.Close()

	run, err := runs.Start("Moon Landing", "Bigfoot", 1)
	if err != nil {
		t.Fatalf("start failed: %v", err)
	}
	waitForClose(t, run.Events)

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws/" + run.ID
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	defer conn.Close()

	var types []string
	for {
		var event map[string]any
		if err := conn.ReadJSON(&event); err != nil {
			break
		}
		types = append(types, event["type"].(string))
	}

	expected := len(run.Events.Events())
	if len(types) != expected {
		t.Fatalf("expected %d replayed events, got %d: %v", expected, len(types), types)
	}
	if types[0] != agent.EventRoundStart || types[len(types)-1] != agent.EventComplete {
		t.Fatalf("unexpected event order: %v", types)
	}
}

func TestIndexServesBoardPage(t *testing.T) {
	e := newTestEcho(newTestManager())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Conspiracy Board Agent") {
		t.Fatal("expected board page HTML")
	}
}
