package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/brisdel/langflow-api/internal/config"
	"github.com/brisdel/langflow-api/internal/middleware"
)

type errorEnvelope struct {
	Error struct {
		Code      string `json:"code"`
		Message   string `json:"message"`
		RequestID string `json:"requestId"`
	} `json:"error"`
}

type queryEnvelope struct {
	Status     string `json:"status"`
	Message    string `json:"message"`
	Data       any    `json:"data"`
	PartNumber string `json:"partNumber"`
}

func mockConfig() *config.Config {
	return &config.Config{
		Flow: config.FlowConfig{
			Provider:   "mock",
			Token:      "test-token",
			Timeout:    2000,
			MaxRetries: 1,
			RetryDelay: 1,
		},
	}
}

func langflowConfig(baseURL string) *config.Config {
	return &config.Config{
		Flow: config.FlowConfig{
			Provider:   "langflow",
			BaseURL:    baseURL,
			LangflowID: "lf-ns",
			FlowID:     "flow-1",
			Token:      "test-token",
			Timeout:    2000,
			MaxRetries: 1,
			RetryDelay: 1,
		},
	}
}

func testRouter(cfg *config.Config) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(middleware.RequestID())
	RegisterRoutes(router, cfg, zap.NewNop())
	return router
}

func postQuery(t *testing.T, router *gin.Engine, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/query", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)
	return res
}

func TestRootHealth(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	res := httptest.NewRecorder()
	testRouter(mockConfig()).ServeHTTP(res, req)

	require.Equal(t, http.StatusOK, res.Code)

	var payload struct {
		Status      string `json:"status"`
		Message     string `json:"message"`
		Environment struct {
			HasToken bool `json:"hasToken"`
		} `json:"environment"`
	}
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &payload))
	assert.Equal(t, "ok", payload.Status)
	assert.Equal(t, "API is alive", payload.Message)
	assert.True(t, payload.Environment.HasToken)
}

func TestRootHealthReportsMissingToken(t *testing.T) {
	cfg := mockConfig()
	cfg.Flow.Token = ""

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	res := httptest.NewRecorder()
	testRouter(cfg).ServeHTTP(res, req)

	require.Equal(t, http.StatusOK, res.Code)
	assert.Contains(t, res.Body.String(), `"hasToken":false`)
}

func TestHealthz(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	res := httptest.NewRecorder()
	testRouter(mockConfig()).ServeHTTP(res, req)

	require.Equal(t, http.StatusOK, res.Code)
	assert.JSONEq(t, `{"ok":true}`, res.Body.String())
}

func TestMetricsEndpoint(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	res := httptest.NewRecorder()
	testRouter(mockConfig()).ServeHTTP(res, req)

	require.Equal(t, http.StatusOK, res.Code)
	assert.Contains(t, res.Body.String(), "# HELP")
}

func TestQuerySuccess(t *testing.T) {
	res := postQuery(t, testRouter(mockConfig()), `{"message":"hello"}`)

	require.Equal(t, http.StatusOK, res.Code)

	var payload queryEnvelope
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &payload))
	assert.Equal(t, "success", payload.Status)
	assert.Equal(t, "[mock] hello", payload.Message)
	assert.Nil(t, payload.Data)
}

func TestQueryRejectsBlankMessage(t *testing.T) {
	router := testRouter(mockConfig())

	for _, body := range []string{`{"message":""}`, `{}`, `{"message":"   "}`} {
		res := postQuery(t, router, body)
		require.Equal(t, http.StatusBadRequest, res.Code, "body: %s", body)

		var payload errorEnvelope
		require.NoError(t, json.Unmarshal(res.Body.Bytes(), &payload))
		assert.Equal(t, "validation_error", payload.Error.Code)
		assert.NotEmpty(t, payload.Error.RequestID)
	}
}

func TestQueryRejectsInvalidJSON(t *testing.T) {
	res := postQuery(t, testRouter(mockConfig()), `{not json`)

	require.Equal(t, http.StatusBadRequest, res.Code)
	assert.Contains(t, res.Body.String(), "validation_error")
}

func TestQueryPartNumberVariant(t *testing.T) {
	cfg := mockConfig()
	cfg.Flow.RequirePartNumber = true
	router := testRouter(cfg)

	res := postQuery(t, router, `{"message":"how many in stock?"}`)
	require.Equal(t, http.StatusBadRequest, res.Code)

	var errPayload errorEnvelope
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &errPayload))
	assert.Equal(t, "missing_part_number", errPayload.Error.Code)
	assert.Contains(t, errPayload.Error.Message, "PA-")

	res = postQuery(t, router, `{"message":"stock for pa-42 please"}`)
	require.Equal(t, http.StatusOK, res.Code)

	var payload queryEnvelope
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &payload))
	assert.Equal(t, "PA-42", payload.PartNumber)
	assert.Equal(t, "[mock] stock for pa-42 please", payload.Message)
}

func TestQueryMissingTokenReturns500(t *testing.T) {
	cfg := langflowConfig("http://127.0.0.1:1")
	cfg.Flow.Token = ""

	res := postQuery(t, testRouter(cfg), `{"message":"hello"}`)

	require.Equal(t, http.StatusInternalServerError, res.Code)
	assert.Contains(t, res.Body.String(), "token_not_configured")
}

func TestQueryUpstreamTimeoutAfterRetries(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusGatewayTimeout)
	}))
	defer server.Close()

	res := postQuery(t, testRouter(langflowConfig(server.URL)), `{"message":"hello"}`)

	require.Equal(t, http.StatusGatewayTimeout, res.Code)
	assert.Contains(t, res.Body.String(), "upstream_timeout")
}

func TestQueryOversizedReturns413(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"detail":"maximum context length is 8192 tokens"}`))
	}))
	defer server.Close()

	res := postQuery(t, testRouter(langflowConfig(server.URL)), `{"message":"hello"}`)

	require.Equal(t, http.StatusRequestEntityTooLarge, res.Code)
	assert.Contains(t, res.Body.String(), "query_too_large")
	assert.Contains(t, res.Body.String(), "shorten")
}

func TestQueryUpstreamUnreachableReturns502(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	res := postQuery(t, testRouter(langflowConfig(server.URL)), `{"message":"hello"}`)

	require.Equal(t, http.StatusBadGateway, res.Code)
	assert.Contains(t, res.Body.String(), "upstream_unavailable")
}

func TestQueryBlankMessageSkipsUpstream(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("upstream must not be called for invalid input")
	}))
	defer server.Close()

	res := postQuery(t, testRouter(langflowConfig(server.URL)), `{"message":""}`)

	require.Equal(t, http.StatusBadRequest, res.Code)
}

func TestQueryIsIdempotentAcrossRequests(t *testing.T) {
	router := testRouter(mockConfig())

	first := postQuery(t, router, `{"message":"same question"}`)
	second := postQuery(t, router, `{"message":"same question"}`)

	require.Equal(t, http.StatusOK, first.Code)
	require.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, first.Body.String(), second.Body.String())
}

func TestQueryNeverEchoesToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"detail":"denied"}`))
	}))
	defer server.Close()

	cfg := langflowConfig(server.URL)
	res := postQuery(t, testRouter(cfg), `{"message":"hello"}`)

	require.Equal(t, http.StatusUnauthorized, res.Code)
	assert.NotContains(t, res.Body.String(), cfg.Flow.Token)
}
