package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"eralearn/internal/pkg/apperror"
)

func newErrorRouter(t *testing.T) (*gin.Engine, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zap.InfoLevel)

	r := gin.New()
	r.Use(RequestID(), ErrorHandler(zap.New(core)))
	r.GET("/validation", func(c *gin.Context) {
		_ = c.Error(apperror.Validationf("no file uploaded"))
	})
	r.GET("/too-large", func(c *gin.Context) {
		_ = c.Error(apperror.New(apperror.PayloadTooLarge, "file exceeds the maximum upload size of 50 MB"))
	})
	r.GET("/internal", func(c *gin.Context) {
		_ = c.Error(errors.New("open /srv/storage/.tmp/1_a.mp4: no space left on device"))
	})
	r.GET("/panic", func(c *gin.Context) {
		panic("boom")
	})
	return r, logs
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Success bool   `json:"success"`
		Error   string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.False(t, body.Success)
	return body.Error
}

func TestErrorHandler_TranslatesKinds(t *testing.T) {
	r, _ := newErrorRouter(t)

	cases := []struct {
		path    string
		status  int
		message string
	}{
		{"/validation", http.StatusBadRequest, "no file uploaded"},
		{"/too-large", http.StatusBadRequest, "file exceeds the maximum upload size of 50 MB"},
		{"/internal", http.StatusInternalServerError, "internal server error"},
		{"/panic", http.StatusInternalServerError, "internal server error"},
	}

	for _, tc := range cases {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tc.path, nil))

		assert.Equal(t, tc.status, w.Code, tc.path)
		assert.Equal(t, tc.message, decodeError(t, w), tc.path)
	}
}

func TestErrorHandler_LogsDetailButHidesPaths(t *testing.T) {
	r, logs := newErrorRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/internal", nil))

	assert.NotContains(t, w.Body.String(), "/srv/storage")
	require.Equal(t, 1, logs.FilterMessage("request failed").Len())
	entry := logs.FilterMessage("request failed").All()[0]
	assert.Contains(t, entry.ContextMap()["error"], "/srv/storage")
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestRateLimit(t *testing.T) {
	r := gin.New()
	r.GET("/upload", RateLimit(2), func(c *gin.Context) { c.Status(http.StatusOK) })

	// burst of max(2/2, 1) = 1
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/upload", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/upload", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}

func TestRateLimit_Disabled(t *testing.T) {
	r := gin.New()
	r.GET("/upload", RateLimit(0), func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 10; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/upload", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	}
}
