package router

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/gin-gonic/gin"

	"rhino-modeling-ai-api/internal/application/modeling"
	"rhino-modeling-ai-api/internal/config"
	"rhino-modeling-ai-api/internal/infrastructure/persistence/memory"
	"rhino-modeling-ai-api/internal/infrastructure/scriptstore"
	"rhino-modeling-ai-api/internal/interfaces/http/dto"
	"rhino-modeling-ai-api/internal/interfaces/http/handler"
)

// scriptedChatModel 按预置队列应答，队列耗尽后返回错误
type scriptedChatModel struct {
	mu        sync.Mutex
	responses []string
}

func (m *scriptedChatModel) Generate(context.Context, []*schema.Message, ...einomodel.Option) (*schema.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.responses) == 0 {
		return nil, fmt.Errorf("no scripted response left")
	}
	next := m.responses[0]
	m.responses = m.responses[1:]
	return schema.AssistantMessage(next, nil), nil
}

func (m *scriptedChatModel) Stream(context.Context, []*schema.Message, ...einomodel.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, fmt.Errorf("stream not supported")
}

type staticFactory struct {
	chat *scriptedChatModel
}

func (f *staticFactory) Get(context.Context, string) (einomodel.BaseChatModel, error) {
	return f.chat, nil
}

const suggestResponse = `Here you go:
{"height": {"default": 50, "min": 20, "max": 100, "step": 5}, "width": {"default": 10, "min": 1, "max": 30, "step": 1}}`

const stepsResponse = "# Modeling Steps\n\n1. Open Rhino and type EditPythonScript.\n2. Paste the script and press Run."

const generatedScript = "import rhinoscriptsyntax as rs\nrs.AddBox([(0,0,0)])"

const fixResponseFenced = "Here is the fix:\n```python\nimport rhinoscriptsyntax as rs\nrs.AddCylinder((0, 0, 0), 60, 12)\n```"

const fixedScript = "import rhinoscriptsyntax as rs\nrs.AddCylinder((0, 0, 0), 60, 12)"

const summaryResponse = "- Replaced the box with a cylinder"

func newTestRouterWithConfig(t *testing.T, mutate func(*config.Config), responses ...string) (*Router, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store, err := memory.NewStore(16)
	if err != nil {
		t.Fatalf("new memory store: %v", err)
	}
	scriptDir := t.TempDir()
	scripts, err := scriptstore.NewStore(scriptDir)
	if err != nil {
		t.Fatalf("new script store: %v", err)
	}

	cfg := &config.Config{
		App: config.AppConfig{Name: "rhino-modeling-ai-api", Env: "test"},
		LLM: config.LLMConfig{
			DefaultProvider: "openai",
			Providers: map[string]config.ProviderConfig{
				"openai": {APIKey: "sk-test", Model: "gpt-4o", Temperature: 0.2},
			},
		},
		Session: config.SessionConfig{StoreCapacity: 16},
		Script:  config.ScriptConfig{OutputDir: scriptDir},
	}
	if mutate != nil {
		mutate(cfg)
	}

	assistant := modeling.NewAssistant(
		cfg,
		&staticFactory{chat: &scriptedChatModel{responses: responses}},
		memory.NewModelingSessionRepository(store),
		memory.NewModelingTurnRepository(store),
		scripts,
	)
	handlers := RouterHandlers{
		Health:          handler.NewHealthHandler(cfg, scripts),
		ModelingSession: handler.NewModelingSessionHandler(cfg, assistant),
	}
	return NewWithDeps(cfg, handlers), scriptDir
}

func newTestRouter(t *testing.T, responses ...string) (*Router, string) {
	t.Helper()
	return newTestRouterWithConfig(t, nil, responses...)
}

func doJSON(t *testing.T, r *Router, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.Engine().ServeHTTP(w, req)
	return w
}

func decodeJSON(t *testing.T, w *httptest.ResponseRecorder, out any) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), out); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
}

func createSession(t *testing.T, r *Router, description string) string {
	t.Helper()
	w := doJSON(t, r, http.MethodPost, "/api/v1/modeling-sessions", dto.CreateModelingSessionRequest{Description: description})
	if w.Code != http.StatusCreated {
		t.Fatalf("create session: status %d body %s", w.Code, w.Body.String())
	}
	var resp dto.Response[dto.ModelingSessionResponse]
	decodeJSON(t, w, &resp)
	if resp.Data.ID == "" {
		t.Fatalf("session id missing: %s", w.Body.String())
	}
	return resp.Data.ID
}

func TestCreateAndFetchSession(t *testing.T) {
	r, _ := newTestRouter(t)

	w := doJSON(t, r, http.MethodPost, "/api/v1/modeling-sessions", dto.CreateModelingSessionRequest{Description: "a glass cube tower"})
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	if w.Header().Get("X-Request-ID") == "" {
		t.Fatalf("request id header missing")
	}
	var created dto.Response[dto.ModelingSessionResponse]
	decodeJSON(t, w, &created)
	if created.Data.Stage != "describing" || created.Data.Description != "a glass cube tower" {
		t.Fatalf("unexpected session: %+v", created.Data)
	}

	w = doJSON(t, r, http.MethodGet, "/api/v1/modeling-sessions/"+created.Data.ID, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var fetched dto.Response[dto.ModelingSessionResponse]
	decodeJSON(t, w, &fetched)
	if fetched.Data.ID != created.Data.ID {
		t.Fatalf("id mismatch: %q vs %q", fetched.Data.ID, created.Data.ID)
	}
}

func TestGetSessionNotFound(t *testing.T) {
	r, _ := newTestRouter(t)

	w := doJSON(t, r, http.MethodGet, "/api/v1/modeling-sessions/missing", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
	var resp dto.ErrorResponse
	decodeJSON(t, w, &resp)
	if resp.Error == nil || resp.Error.ErrorCode != "3001" {
		t.Fatalf("unexpected error payload: %s", w.Body.String())
	}
}

func TestListSessionsNewestFirst(t *testing.T) {
	r, _ := newTestRouter(t)

	first := createSession(t, r, "a tower")
	second := createSession(t, r, "a bridge")

	w := doJSON(t, r, http.MethodGet, "/api/v1/modeling-sessions?page=1&page_size=20", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var resp dto.Response[dto.ModelingSessionListResponse]
	decodeJSON(t, w, &resp)
	if resp.Meta == nil || resp.Meta.Total != 2 {
		t.Fatalf("unexpected meta: %+v", resp.Meta)
	}
	if len(resp.Data.Sessions) != 2 {
		t.Fatalf("expected 2 sessions, got %d", len(resp.Data.Sessions))
	}
	if resp.Data.Sessions[0].ID != second || resp.Data.Sessions[1].ID != first {
		t.Fatalf("expected newest first, got %v then %v", resp.Data.Sessions[0].ID, resp.Data.Sessions[1].ID)
	}
}

func TestSuggestAndTuneParameters(t *testing.T) {
	r, _ := newTestRouter(t, suggestResponse)
	sid := createSession(t, r, "a glass cube tower")

	w := doJSON(t, r, http.MethodPost, "/api/v1/modeling-sessions/"+sid+"/parameters", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("suggest: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var suggested dto.Response[dto.ModelingSessionResponse]
	decodeJSON(t, w, &suggested)
	if suggested.Data.Stage != "tuning" {
		t.Fatalf("unexpected stage: %q", suggested.Data.Stage)
	}
	if suggested.Data.Parameters["height"].Default != 50 {
		t.Fatalf("parameters missing: %+v", suggested.Data.Parameters)
	}
	if suggested.Data.TunedValues["height"] != 50 {
		t.Fatalf("tuned values not seeded: %v", suggested.Data.TunedValues)
	}

	w = doJSON(t, r, http.MethodPatch, "/api/v1/modeling-sessions/"+sid+"/parameters", map[string]any{"height": 72.5})
	if w.Code != http.StatusOK {
		t.Fatalf("tune: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var tuned dto.Response[dto.ModelingSessionResponse]
	decodeJSON(t, w, &tuned)
	if tuned.Data.TunedValues["height"] != 72.5 || tuned.Data.TunedValues["width"] != 10 {
		t.Fatalf("unexpected tuned values: %v", tuned.Data.TunedValues)
	}
}

func TestTuneParametersUnknownName(t *testing.T) {
	r, _ := newTestRouter(t, suggestResponse)
	sid := createSession(t, r, "a tower")

	if w := doJSON(t, r, http.MethodPost, "/api/v1/modeling-sessions/"+sid+"/parameters", nil); w.Code != http.StatusOK {
		t.Fatalf("suggest: %d", w.Code)
	}

	w := doJSON(t, r, http.MethodPatch, "/api/v1/modeling-sessions/"+sid+"/parameters", map[string]any{"bogus": 1})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
	}
	var resp dto.ErrorResponse
	decodeJSON(t, w, &resp)
	if resp.Error == nil || resp.Error.ErrorCode != "3002" {
		t.Fatalf("unexpected error payload: %s", w.Body.String())
	}
}

func TestSuggestParametersSoftFailure(t *testing.T) {
	r, _ := newTestRouter(t, "I cannot produce parameters for that request.")
	sid := createSession(t, r, "a tower")

	w := doJSON(t, r, http.MethodPost, "/api/v1/modeling-sessions/"+sid+"/parameters", nil)
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d: %s", w.Code, w.Body.String())
	}
	var resp dto.ErrorResponse
	decodeJSON(t, w, &resp)
	if resp.Error == nil || resp.Error.ErrorCode != "4001" {
		t.Fatalf("unexpected error payload: %s", w.Body.String())
	}

	// 软失败不得改动会话
	w = doJSON(t, r, http.MethodGet, "/api/v1/modeling-sessions/"+sid, nil)
	var session dto.Response[dto.ModelingSessionResponse]
	decodeJSON(t, w, &session)
	if session.Data.Stage != "describing" || len(session.Data.Parameters) != 0 {
		t.Fatalf("session mutated on soft failure: %+v", session.Data)
	}
}

func TestSuggestParametersUnknownProvider(t *testing.T) {
	r, _ := newTestRouter(t)
	sid := createSession(t, r, "a tower")

	w := doJSON(t, r, http.MethodPost, "/api/v1/modeling-sessions/"+sid+"/parameters",
		dto.SuggestParametersRequest{Provider: "azure"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
	}
}

func TestGenerateAndFeedbackFlow(t *testing.T) {
	r, scriptDir := newTestRouter(t,
		suggestResponse, stepsResponse, generatedScript, fixResponseFenced, summaryResponse)
	sid := createSession(t, r, "a glass cube tower")

	if w := doJSON(t, r, http.MethodPost, "/api/v1/modeling-sessions/"+sid+"/parameters", nil); w.Code != http.StatusOK {
		t.Fatalf("suggest: %d: %s", w.Code, w.Body.String())
	}

	w := doJSON(t, r, http.MethodPost, "/api/v1/modeling-sessions/"+sid+"/generate", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("generate: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var generated dto.Response[dto.GenerateModelResponse]
	decodeJSON(t, w, &generated)
	if generated.Data.Script != generatedScript {
		t.Fatalf("unexpected script: %q", generated.Data.Script)
	}
	if !strings.Contains(generated.Data.InstructionsHTML, "<h1") {
		t.Fatalf("instructions html missing: %q", generated.Data.InstructionsHTML)
	}
	if !strings.HasPrefix(generated.Data.ScriptPath, scriptDir) {
		t.Fatalf("script path outside dir: %q", generated.Data.ScriptPath)
	}
	if content, err := os.ReadFile(generated.Data.ScriptPath); err != nil || string(content) != generatedScript {
		t.Fatalf("saved script mismatch: %v", err)
	}

	w = doJSON(t, r, http.MethodPost, "/api/v1/modeling-sessions/"+sid+"/feedback",
		dto.FeedbackRequest{Feedback: "make the tower a cylinder instead"})
	if w.Code != http.StatusOK {
		t.Fatalf("feedback: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var revised dto.Response[dto.FeedbackResponse]
	decodeJSON(t, w, &revised)
	if revised.Data.Script != fixedScript || !revised.Data.ScriptFenced {
		t.Fatalf("unexpected revision: %+v", revised.Data)
	}
	if revised.Data.Summary != summaryResponse {
		t.Fatalf("unexpected summary: %q", revised.Data.Summary)
	}
	if revised.Data.Session.Stage != "revising" {
		t.Fatalf("unexpected stage: %q", revised.Data.Session.Stage)
	}

	// 轮次留痕覆盖全流程
	w = doJSON(t, r, http.MethodGet, "/api/v1/modeling-sessions/"+sid+"/turns?page_size=50", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("turns: expected 200, got %d", w.Code)
	}
	var turns dto.Response[dto.ModelingTurnListResponse]
	decodeJSON(t, w, &turns)
	wantKinds := []string{"description", "parameter_suggest", "modeling_steps", "script_gen", "feedback", "script_fix", "change_summary"}
	if turns.Meta == nil || turns.Meta.Total != len(wantKinds) {
		t.Fatalf("unexpected turn meta: %+v", turns.Meta)
	}
	for i, want := range wantKinds {
		if turns.Data.Turns[i].Kind != want {
			t.Fatalf("turn %d: expected kind %q, got %q", i, want, turns.Data.Turns[i].Kind)
		}
	}
}

func TestFeedbackRequiresScript(t *testing.T) {
	r, _ := newTestRouter(t)
	sid := createSession(t, r, "a tower")

	w := doJSON(t, r, http.MethodPost, "/api/v1/modeling-sessions/"+sid+"/feedback",
		dto.FeedbackRequest{Feedback: "it is broken"})
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d: %s", w.Code, w.Body.String())
	}
	var resp dto.ErrorResponse
	decodeJSON(t, w, &resp)
	if resp.Error == nil || resp.Error.ErrorCode != "4003" {
		t.Fatalf("unexpected error payload: %s", w.Body.String())
	}
}

func TestFeedbackRequiresBody(t *testing.T) {
	r, _ := newTestRouter(t)
	sid := createSession(t, r, "a tower")

	w := doJSON(t, r, http.MethodPost, "/api/v1/modeling-sessions/"+sid+"/feedback", map[string]any{})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing feedback, got %d", w.Code)
	}
}

func TestHealthEndpoints(t *testing.T) {
	r, _ := newTestRouter(t)

	for _, path := range []string{"/health", "/live", "/ready"} {
		w := doJSON(t, r, http.MethodGet, path, nil)
		if w.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d: %s", path, w.Code, w.Body.String())
		}
	}
}

func TestReadyReportsMissingCredential(t *testing.T) {
	r, _ := newTestRouterWithConfig(t, func(cfg *config.Config) {
		providers := cfg.LLM.Providers
		providers["openai"] = config.ProviderConfig{Model: "gpt-4o"}
	})

	w := doJSON(t, r, http.MethodGet, "/ready", nil)
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d: %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "api_key") {
		t.Fatalf("missing credential not reported: %s", w.Body.String())
	}
}

func TestMetricsEndpointWhenEnabled(t *testing.T) {
	r, _ := newTestRouterWithConfig(t, func(cfg *config.Config) {
		cfg.Observability.Metrics.Enabled = true
		cfg.Observability.Metrics.Path = "/metrics"
	})

	// 先打一个请求让 HTTP 指标产生样本
	if w := doJSON(t, r, http.MethodGet, "/health", nil); w.Code != http.StatusOK {
		t.Fatalf("health: %d", w.Code)
	}

	w := doJSON(t, r, http.MethodGet, "/metrics", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("metrics: expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "rhino_modeling_http_requests_total") {
		t.Fatalf("http metrics missing from exposition")
	}
}

func TestMetricsRouteAbsentWhenDisabled(t *testing.T) {
	r, _ := newTestRouter(t)

	w := doJSON(t, r, http.MethodGet, "/metrics", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 when metrics disabled, got %d", w.Code)
	}
}
