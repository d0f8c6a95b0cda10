package media

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"eralearn/internal/domain/video"
	"eralearn/internal/middleware"
	"eralearn/internal/pkg/jwt"
)

type mediaEnv struct {
	router *gin.Engine
	tokens *jwt.Service
	root   *video.Root
}

func setupMediaRouter(t *testing.T, internalRedirect string) *mediaEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	log := zap.NewNop()

	root, err := video.NewRoot(filepath.Join(t.TempDir(), "storage"), "videos")
	require.NoError(t, err)
	videos := video.NewService(root, "/media", 5, log)

	tokens := jwt.New("handler-secret", time.Hour, time.Minute)
	svc := NewService(newTestRepository(t), videos, tokens, "/media", internalRedirect, log)

	r := gin.New()
	r.Use(middleware.ErrorHandler(log))
	RegisterRoutes(r.Group("/api"), NewHandler(svc), middleware.JWTAuth(tokens), middleware.RequireRole("admin"))
	video.RegisterStaticRoutes(r, "/media", video.NewHandler(videos))

	return &mediaEnv{router: r, tokens: tokens, root: root}
}

func (e *mediaEnv) do(t *testing.T, method, path, role string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if role != "" {
		token, err := e.tokens.GenerateToken("user-"+role, role)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decodeData(t *testing.T, w *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	var env struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	require.True(t, env.Success, w.Body.String())
	require.NoError(t, json.Unmarshal(env.Data, out))
}

func TestHandler_RegisterResolveAndStream(t *testing.T) {
	env := setupMediaRouter(t, "")
	require.NoError(t, os.WriteFile(filepath.Join(env.root.UploadDir(), "1_aula.mp4"), []byte("lesson bytes"), 0o644))

	w := env.do(t, http.MethodPost, "/api/assets", "admin", map[string]string{
		"id": "lesson-1", "title": "Aula 1", "provider": "internal", "storage_path": "videos/1_aula.mp4",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = env.do(t, http.MethodGet, "/api/media/lesson-1/resolve", "student", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var res Resolution
	decodeData(t, w, &res)
	require.True(t, strings.HasPrefix(res.URL, "/api/media/stream/videos/1_aula.mp4?token="))

	w = env.do(t, http.MethodGet, res.URL, "", nil)
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/media/videos/1_aula.mp4", w.Header().Get("Location"))
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))

	w = env.do(t, http.MethodGet, w.Header().Get("Location"), "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "lesson bytes", w.Body.String())
}

func TestHandler_StreamFileWithReservedCharacters(t *testing.T) {
	env := setupMediaRouter(t, "")
	require.NoError(t, os.WriteFile(filepath.Join(env.root.UploadDir(), "aula 2#final.mp4"), []byte("manual upload"), 0o644))

	w := env.do(t, http.MethodPost, "/api/assets", "admin", map[string]string{
		"id": "lesson-2", "title": "Aula 2", "provider": "internal", "storage_path": "videos/aula 2#final.mp4",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = env.do(t, http.MethodGet, "/api/media/lesson-2/resolve", "student", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var res Resolution
	decodeData(t, w, &res)

	w = env.do(t, http.MethodGet, res.URL, "", nil)
	require.Equal(t, http.StatusFound, w.Code, w.Body.String())
	assert.Equal(t, "/media/videos/aula%202%23final.mp4", w.Header().Get("Location"))

	w = env.do(t, http.MethodGet, w.Header().Get("Location"), "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "manual upload", w.Body.String())
}

func TestHandler_StreamInternalRedirect(t *testing.T) {
	env := setupMediaRouter(t, "/protected")
	token, _, err := env.tokens.GenerateMediaToken("user-1", "videos/1_a.mp4")
	require.NoError(t, err)

	w := env.do(t, http.MethodGet, "/api/media/stream/videos/1_a.mp4?token="+token, "", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "/protected/videos/1_a.mp4", w.Header().Get("X-Accel-Redirect"))
	assert.Empty(t, w.Body.String())
}

func TestHandler_StreamRejectsBadToken(t *testing.T) {
	env := setupMediaRouter(t, "")
	token, _, err := env.tokens.GenerateMediaToken("user-1", "videos/1_a.mp4")
	require.NoError(t, err)

	for _, p := range []string{
		"/api/media/stream/videos/1_a.mp4",
		"/api/media/stream/videos/1_a.mp4?token=garbage",
		"/api/media/stream/videos/1_b.mp4?token=" + token,
	} {
		w := env.do(t, http.MethodGet, p, "", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code, p)
		assert.Contains(t, w.Body.String(), "invalid or expired media token", p)
	}
}

func TestHandler_CreateAssetGuards(t *testing.T) {
	env := setupMediaRouter(t, "")
	body := map[string]string{"title": "Intro", "provider": "youtube", "youtube_id": "dQw4w9WgXcQ"}

	assert.Equal(t, http.StatusUnauthorized, env.do(t, http.MethodPost, "/api/assets", "", body).Code)
	assert.Equal(t, http.StatusForbidden, env.do(t, http.MethodPost, "/api/assets", "student", body).Code)

	w := env.do(t, http.MethodPost, "/api/assets", "admin", map[string]string{"provider": "internal"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid fields")
	assert.Contains(t, w.Body.String(), "title (required)")
	assert.Contains(t, w.Body.String(), "storage_path (required_if)")

	w = env.do(t, http.MethodPost, "/api/assets", "admin", map[string]string{
		"title": "Escape", "provider": "internal", "storage_path": "../secret.txt",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "storage_path does not name a stored video")
}

func TestHandler_DuplicateAndLookup(t *testing.T) {
	env := setupMediaRouter(t, "")
	body := map[string]string{"id": "intro", "title": "Intro", "provider": "youtube", "youtube_id": "dQw4w9WgXcQ"}

	require.Equal(t, http.StatusCreated, env.do(t, http.MethodPost, "/api/assets", "admin", body).Code)
	assert.Equal(t, http.StatusConflict, env.do(t, http.MethodPost, "/api/assets", "admin", body).Code)

	w := env.do(t, http.MethodGet, "/api/assets/intro", "student", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var a Asset
	decodeData(t, w, &a)
	assert.Equal(t, "dQw4w9WgXcQ", a.YouTubeID)

	w = env.do(t, http.MethodGet, "/api/media/intro/resolve", "student", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var res Resolution
	decodeData(t, w, &res)
	assert.Equal(t, "https://www.youtube.com/embed/dQw4w9WgXcQ", res.URL)

	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodGet, "/api/assets/missing", "student", nil).Code)
	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodGet, "/api/media/missing/resolve", "student", nil).Code)
}
