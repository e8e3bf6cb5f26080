package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"heritage-archive-api/internal/application/assistant"
)

type stubClassifier struct {
	intent assistant.Intent
}

func (s *stubClassifier) Classify(ctx context.Context, utterance string) (assistant.Intent, error) {
	return s.intent, nil
}

type stubGenerator struct {
	calls int
}

func (s *stubGenerator) Generate(ctx context.Context, in assistant.GenerateInput) (string, error) {
	s.calls++
	return fmt.Sprintf("generated query %d", s.calls), nil
}

type stubSearcher struct {
	items []assistant.ResultItem
}

func (s *stubSearcher) Search(ctx context.Context, query string, threshold float64, limit int) ([]assistant.ResultItem, error) {
	return s.items, nil
}

func newStreamEngine(controller *assistant.Controller) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	h := NewAssistantHandler(controller)
	engine.POST("/search", h.Search)
	engine.POST("/search/stream", h.SearchStream)
	return engine
}

// closeNotifyRecorder adds the http.CloseNotifier method gin's Stream
// requires, which httptest.ResponseRecorder does not implement.
type closeNotifyRecorder struct {
	*httptest.ResponseRecorder
	closed chan bool
}

func newCloseNotifyRecorder() *closeNotifyRecorder {
	return &closeNotifyRecorder{httptest.NewRecorder(), make(chan bool, 1)}
}

func (r *closeNotifyRecorder) CloseNotify() <-chan bool { return r.closed }

func postJSON(engine *gin.Engine, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := newCloseNotifyRecorder()
	engine.ServeHTTP(w, req)
	return w.ResponseRecorder
}

func TestSearchReturnsFullContract(t *testing.T) {
	controller := assistant.NewController(
		&stubClassifier{intent: assistant.IntentGreeting},
		&stubGenerator{},
		&stubSearcher{},
		assistant.Options{},
	)
	engine := newStreamEngine(controller)

	w := postJSON(engine, "/search", `{"query":"hello there"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var envelope struct {
		Data map[string]json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))

	for _, key := range []string{"response_type", "archives", "total", "query", "message"} {
		assert.Contains(t, envelope.Data, key)
	}
	assert.JSONEq(t, `"message"`, string(envelope.Data["response_type"]))
	assert.JSONEq(t, `[]`, string(envelope.Data["archives"]))
	assert.JSONEq(t, `0`, string(envelope.Data["total"]))
	assert.JSONEq(t, `"hello there"`, string(envelope.Data["query"]))
}

func TestSearchRejectsBlankQuery(t *testing.T) {
	engine := newStreamEngine(nil)

	w := postJSON(engine, "/search", `{"query":"   "}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSearchUnconfiguredControllerReturns503(t *testing.T) {
	engine := newStreamEngine(nil)

	w := postJSON(engine, "/search", `{"query":"batik"}`)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

// A turn that emits far more events than the channel buffer must still stream
// every frame and terminate.
func TestSearchStreamDeliversAllEvents(t *testing.T) {
	controller := assistant.NewController(
		&stubClassifier{intent: assistant.IntentHeritageSearch},
		&stubGenerator{},
		&stubSearcher{},
		assistant.Options{MaxAttempts: 20},
	)
	engine := newStreamEngine(controller)

	w := postJSON(engine, "/search/stream", `{"query":"batik"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/event-stream")

	body := w.Body.String()
	assert.Contains(t, body, "event:query_received")
	assert.Contains(t, body, "event:intent_classified")
	assert.Equal(t, 20, strings.Count(body, "event:search_attempt"))
	assert.Contains(t, body, "event:message")
	assert.Contains(t, body, "event:complete")
	assert.Equal(t, 1, strings.Count(body, "event:complete"))
}

func TestSearchStreamEndsOnClientDisconnect(t *testing.T) {
	controller := assistant.NewController(
		&stubClassifier{intent: assistant.IntentHeritageSearch},
		&stubGenerator{},
		&stubSearcher{},
		assistant.Options{MaxAttempts: 20},
	)
	engine := newStreamEngine(controller)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	req := httptest.NewRequest(http.MethodPost, "/search/stream", strings.NewReader(`{"query":"batik"}`)).WithContext(ctx)
	req.Header.Set("Content-Type", "application/json")
	w := newCloseNotifyRecorder()

	// Must return instead of blocking on a reader that is gone.
	engine.ServeHTTP(w, req)
	assert.NotContains(t, w.Body.String(), "event:complete")
}
