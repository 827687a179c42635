package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wgomg/aura/internal/config"
	"github.com/wgomg/aura/internal/corpus"
	"github.com/wgomg/aura/internal/dispatch"
	"github.com/wgomg/aura/internal/geo"
	"github.com/wgomg/aura/internal/lexical"
	"github.com/wgomg/aura/internal/semantic"
	"github.com/wgomg/aura/internal/utils"
)

func testAppConfig() *config.AppConfig {
	return &config.AppConfig{
		ServerPort:         "0",
		HttpTimeoutSeconds: 5,
		AllowedOrigins:     []string{"*"},
	}
}

func newTestServer(t *testing.T, cfg *config.AppConfig) (http.Handler, *corpus.Corpus) {
	t.Helper()
	logger := utils.NewDiscardLogger()

	c, err := corpus.Embedded()
	require.NoError(t, err)

	sem, err := semantic.NewMatcher(context.Background(), logger, c, semantic.NewHashingEncoder(512), semantic.Options{})
	require.NoError(t, err)

	svc := dispatch.NewService(logger, c, lexical.NewMatcher(c, lexical.DefaultThreshold), sem, time.Second)
	h := NewHandler(logger, svc, geo.NewResolver(geo.NewCoordinate(13.064, 80.180)))
	return NewServer(logger, cfg, h).Routes(), c
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func textBody(t *testing.T, text string) string {
	t.Helper()
	b, err := json.Marshal(map[string]string{"text": text})
	require.NoError(t, err)
	return string(b)
}

func TestProcessCommandExactTamil(t *testing.T) {
	h, c := newTestServer(t, testAppConfig())
	rec0 := c.At(0)
	query := rec0.Tamil + " "

	rec := do(t, h, http.MethodPost, "/process_command", textBody(t, query))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "exact", rec.Header().Get(headerMatchMethod))
	assert.Equal(t, "100.0000", rec.Header().Get(headerMatchScore))
	assert.NotEmpty(t, rec.Header().Get(headerRequestID))

	raw, err := json.Marshal(rec0)
	require.NoError(t, err)
	var want map[string]any
	require.NoError(t, json.Unmarshal(raw, &want))
	want["original_query"] = query

	assert.Equal(t, want, decodeBody(t, rec))
}

func TestProcessCommandSemanticFallback(t *testing.T) {
	h, _ := newTestServer(t, testAppConfig())

	rec := do(t, h, http.MethodPost, "/process_command", textBody(t, "survivors trapped near Gandhi Nagar"))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "semantic", rec.Header().Get(headerMatchMethod))

	body := decodeBody(t, rec)
	assert.Equal(t, "search_survivors", body["intent"])
	assert.Equal(t, "survivors trapped near Gandhi Nagar", body["original_query"])
}

func TestProcessCommandRejections(t *testing.T) {
	h, _ := newTestServer(t, testAppConfig())

	testCases := []struct {
		name        string
		body        string
		contentType string
		status      int
		message     string
	}{
		{name: "empty text", body: `{"text": ""}`, status: http.StatusBadRequest, message: "No text provided"},
		{name: "missing text", body: `{}`, status: http.StatusBadRequest, message: "No text provided"},
		{name: "blank text", body: `{"text": "  \t "}`, status: http.StatusBadRequest, message: "could not process empty command"},
		{name: "malformed json", body: `{"text": `, status: http.StatusBadRequest},
		{name: "wrong type", body: `{"text": 5}`, status: http.StatusBadRequest},
		{name: "not json", body: `text=hi`, contentType: "application/x-www-form-urlencoded", status: http.StatusUnsupportedMediaType},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/process_command", strings.NewReader(tt.body))
			ct := tt.contentType
			if ct == "" {
				ct = "application/json; charset=utf-8"
			}
			req.Header.Set("Content-Type", ct)
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.status, rec.Code)
			body := decodeBody(t, rec)
			assert.NotContains(t, body, "intent")
			if tt.message != "" {
				assert.Equal(t, tt.message, body["error"])
			}
		})
	}
}

type failingDispatcher struct {
	err   error
	panic bool
}

func (f *failingDispatcher) Match(context.Context, string) (*dispatch.Match, error) {
	if f.panic {
		panic("matcher blew up")
	}
	return nil, f.err
}

func (f *failingDispatcher) Lookup(string) (corpus.CommandRecord, error) {
	return corpus.CommandRecord{}, f.err
}

func (f *failingDispatcher) Examples(int) []string { return nil }

func newFailingServer(f *failingDispatcher) http.Handler {
	logger := utils.NewDiscardLogger()
	h := NewHandler(logger, f, geo.NewResolver(geo.DefaultCoordinate))
	return NewServer(logger, testAppConfig(), h).Routes()
}

func TestInternalErrorsAreGeneric(t *testing.T) {
	secret := errors.New("python worker 3: broken pipe at /home/secret")
	h := newFailingServer(&failingDispatcher{err: utils.WrapErrorf(secret, utils.ErrInternalServerError, "semantic match failed")})

	for _, target := range []string{"/process_command", "/api/match"} {
		rec := do(t, h, http.MethodPost, target, textBody(t, "anything"))
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, map[string]any{"error": "An internal error occurred"}, decodeBody(t, rec))
		assert.NotContains(t, rec.Body.String(), "secret")
	}

	h = newFailingServer(&failingDispatcher{err: errors.New("unclassified")})
	rec := do(t, h, http.MethodGet, "/api/commands/disaster_001", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestPanicIsRecovered(t *testing.T) {
	h := newFailingServer(&failingDispatcher{panic: true})

	rec := do(t, h, http.MethodPost, "/process_command", textBody(t, "anything"))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "An internal error occurred", decodeBody(t, rec)["error"])
}

func TestGetExamples(t *testing.T) {
	h, _ := newTestServer(t, testAppConfig())

	rec := do(t, h, http.MethodGet, "/get_examples", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var examples []string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &examples))
	assert.Len(t, examples, 5)
}

func TestAPIExamples(t *testing.T) {
	h, _ := newTestServer(t, testAppConfig())

	rec := do(t, h, http.MethodGet, "/api/examples?n=3", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeBody(t, rec)["data"], 3)

	rec = do(t, h, http.MethodGet, "/api/examples", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeBody(t, rec)["data"], defaultExamples)

	for _, q := range []string{"n=0", "n=21", "n=abc"} {
		rec = do(t, h, http.MethodGet, "/api/examples?"+q, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code, q)
	}

	rec = do(t, h, http.MethodGet, "/api/examples?n=0", "")
	assert.Contains(t, decodeBody(t, rec)["error"], "n must be 1 or greater")
}

func TestAPIMatch(t *testing.T) {
	h, _ := newTestServer(t, testAppConfig())

	rec := do(t, h, http.MethodPost, "/api/match", textBody(t, "survivors trapped near Gandhi Nagar"))
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	data := body["data"].(map[string]any)
	meta := body["meta"].(map[string]any)
	assert.Equal(t, "disaster_001", data["id"])
	assert.Equal(t, "semantic", meta["method"])
	assert.Greater(t, meta["score"].(float64), 0.0)

	rec = do(t, h, http.MethodPost, "/api/match", `{"text": ""}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "text is a required field", decodeBody(t, rec)["error"])
}

func TestAPICommands(t *testing.T) {
	h, _ := newTestServer(t, testAppConfig())

	rec := do(t, h, http.MethodGet, "/api/commands/disaster_001", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "search_survivors", decodeBody(t, rec)["data"].(map[string]any)["intent"])

	rec = do(t, h, http.MethodGet, "/api/commands/disaster_999", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, `command "disaster_999" not found`, decodeBody(t, rec)["error"])

	rec = do(t, h, http.MethodGet, "/api/commands/disaster_001/location", "")
	require.Equal(t, http.StatusOK, rec.Code)
	loc := decodeBody(t, rec)["data"].(map[string]any)
	assert.Equal(t, "gazetteer", loc["source"])
	assert.Equal(t, "gandhi nagar", loc["place"])
	assert.InDelta(t, 13.007, loc["lat"].(float64), 1e-9)
	assert.InDelta(t, 9.80, loc["distance_km"].(float64), 0.01)

	rec = do(t, h, http.MethodGet, "/api/commands/disaster_999/location", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRoutingAndMiddleware(t *testing.T) {
	h, _ := newTestServer(t, testAppConfig())

	rec := do(t, h, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, h, http.MethodGet, "/process_command", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	rec = do(t, h, http.MethodGet, "/nope", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/get_examples", nil)
	req.Header.Set(headerRequestID, "client-supplied")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, "client-supplied", rr.Header().Get(headerRequestID))
}

func TestRateLimit(t *testing.T) {
	cfg := testAppConfig()
	cfg.RateLimitRPS = 0.001
	cfg.RateLimitBurst = 1
	h, _ := newTestServer(t, cfg)

	assert.Equal(t, http.StatusOK, do(t, h, http.MethodGet, "/get_examples", "").Code)
	rec := do(t, h, http.MethodGet, "/get_examples", "")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))

	// health checks bypass the limiter
	assert.Equal(t, http.StatusOK, do(t, h, http.MethodGet, "/healthz", "").Code)
}
