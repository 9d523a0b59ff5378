package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requestIDRouter(t *testing.T, captured *string) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(RequestID())
	router.GET("/", func(c *gin.Context) {
		*captured = GetRequestID(c)
		c.Status(http.StatusOK)
	})
	return router
}

func TestRequestIDMintsWhenAbsent(t *testing.T) {
	var captured string
	router := requestIDRouter(t, &captured)

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/", nil))

	require.NotEmpty(t, captured)
	assert.Equal(t, captured, recorder.Header().Get(HeaderRequestID))
}

func TestRequestIDEchoesCallerValue(t *testing.T) {
	var captured string
	router := requestIDRouter(t, &captured)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderRequestID, "caller-supplied-id")
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)

	assert.Equal(t, "caller-supplied-id", captured)
	assert.Equal(t, "caller-supplied-id", recorder.Header().Get(HeaderRequestID))
}

func TestRequestIDReplacesOversizedValue(t *testing.T) {
	var captured string
	router := requestIDRouter(t, &captured)

	oversized := strings.Repeat("a", maxRequestIDLength+1)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderRequestID, oversized)
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)

	require.NotEmpty(t, captured)
	assert.NotEqual(t, oversized, captured)
	assert.LessOrEqual(t, len(recorder.Header().Get(HeaderRequestID)), maxRequestIDLength)
}
