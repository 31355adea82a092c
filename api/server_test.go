package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pevans/sfnews/listing"
	"github.com/pevans/sfnews/pagination"
	"github.com/pevans/sfnews/remote"
	"github.com/pevans/sfnews/remote/remotetest"
	"github.com/pevans/sfnews/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testEnv struct {
	router   *gin.Engine
	endpoint *remotetest.MockEndpoint
	store    *pagination.MemoryStore
	session  *listing.Session
}

// Test helper: create a router over a mock endpoint and memory store
func setupTestRouter(t *testing.T) *testEnv {
	ep := new(remotetest.MockEndpoint)
	store := pagination.NewMemoryStore()
	metrics := remote.NewMetrics()
	pipeline := &remote.Pipeline{Metrics: metrics}

	coord := pagination.NewCoordinator(ep, store, pagination.WithPipeline(pipeline))
	repo := repository.NewArticleRepository(ep, coord, pipeline, nil)
	session := listing.NewSession(repo, listing.WithDebounce(10*time.Millisecond))
	t.Cleanup(func() { session.Close() })

	server := NewServer(session, repo, WithMetrics(metrics.Handler()))
	return &testEnv{
		router:   server.SetupRouter(),
		endpoint: ep,
		store:    store,
		session:  session,
	}
}

func (e *testEnv) do(t *testing.T, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)

	var decoded map[string]any
	if rec.Body.Len() > 0 && strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &decoded))
	}
	return rec, decoded
}

// TestHandleGetArticles_Idle verifies the initial snapshot renders as loading
func TestHandleGetArticles_Idle(t *testing.T) {
	env := setupTestRouter(t)

	rec, body := env.do(t, http.MethodGet, "/api/v1/articles", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "loading", body["status"])
	assert.NotEmpty(t, body["session_id"])
}

// TestHandleLoad_ThenList verifies a load is accepted and its result listed
func TestHandleLoad_ThenList(t *testing.T) {
	env := setupTestRouter(t)
	env.endpoint.On("ListArticles", mock.Anything, remotetest.Search("")).
		Return(remotetest.Page(1, "https://x/?offset=10", 1), nil).Once()

	rec, body := env.do(t, http.MethodPost, "/api/v1/articles/load", "")
	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Contains(t, []any{"loading", "success"}, body["status"])

	env.session.Wait()

	rec, body = env.do(t, http.MethodGet, "/api/v1/articles", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "success", body["status"])
	data := body["data"].([]any)
	require.Len(t, data, 1)
	assert.Equal(t, float64(1), data[0].(map[string]any)["id"])

	rec, body = env.do(t, http.MethodGet, "/api/v1/pagination", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	row := body["pagination"].(map[string]any)
	assert.Equal(t, float64(1), row["count"])
	assert.Equal(t, float64(10), row["offset"])
}

// TestHandleLoadMore_AppendsAndError verifies errors keep data and carry the code
func TestHandleLoadMore_AppendsAndError(t *testing.T) {
	env := setupTestRouter(t)
	env.endpoint.On("ListArticles", mock.Anything, remotetest.Offset(-1)).
		Return(remotetest.Page(20, "https://x/?offset=10", 1), nil).Once()
	env.endpoint.On("ListArticles", mock.Anything, remotetest.Offset(10)).
		Return(remotetest.Status(504, "Gateway Timeout"), nil).Once()

	env.do(t, http.MethodPost, "/api/v1/articles/load", `{}`)
	env.session.Wait()
	rec, _ := env.do(t, http.MethodPost, "/api/v1/articles/more", "")
	assert.Equal(t, http.StatusAccepted, rec.Code)
	env.session.Wait()

	_, body := env.do(t, http.MethodGet, "/api/v1/articles", "")
	assert.Equal(t, "error", body["status"])
	errBody := body["error"].(map[string]any)
	assert.Equal(t, "504", errBody["code"])
	assert.Equal(t, "Gateway Timeout", errBody["message"])
	assert.Len(t, body["data"].([]any), 1)
}

// TestHandleLoadMore_KeepsLoadedQuery verifies the next page of a list
// loaded with an explicit query is searched with that query too.
func TestHandleLoadMore_KeepsLoadedQuery(t *testing.T) {
	env := setupTestRouter(t)
	env.endpoint.On("ListArticles", mock.Anything, remotetest.Search("NASA")).
		Return(remotetest.Page(20, "https://x/?offset=10", 1), nil).Twice()

	env.do(t, http.MethodPost, "/api/v1/articles/load", `{"query":"NASA"}`)
	env.session.Wait()
	rec, _ := env.do(t, http.MethodPost, "/api/v1/articles/more", "")
	assert.Equal(t, http.StatusAccepted, rec.Code)
	env.session.Wait()

	_, body := env.do(t, http.MethodGet, "/api/v1/articles", "")
	assert.Equal(t, "success", body["status"])
	assert.Len(t, body["data"].([]any), 2)
	env.endpoint.AssertExpectations(t)
	env.endpoint.AssertNumberOfCalls(t, "ListArticles", 2)
}

// TestHandleSearch verifies search text is applied after the quiet period
func TestHandleSearch(t *testing.T) {
	env := setupTestRouter(t)
	env.endpoint.On("ListArticles", mock.Anything, remotetest.Search("NASA")).
		Return(remotetest.Page(1, "", 5), nil).Once()

	rec, _ := env.do(t, http.MethodPut, "/api/v1/articles/search", `{"text":"NASA"}`)
	assert.Equal(t, http.StatusAccepted, rec.Code)
	env.session.Wait()

	_, body := env.do(t, http.MethodGet, "/api/v1/articles", "")
	assert.Equal(t, "success", body["status"])
	assert.Equal(t, "NASA", body["query"])
	env.endpoint.AssertExpectations(t)
}

// TestHandleSearch_MissingText verifies the text field is required
func TestHandleSearch_MissingText(t *testing.T) {
	env := setupTestRouter(t)

	rec, body := env.do(t, http.MethodPut, "/api/v1/articles/search", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "bad_request", body["error"].(map[string]any)["code"])
}

// TestHandleGetArticle verifies detail success, failure and bad IDs
func TestHandleGetArticle(t *testing.T) {
	env := setupTestRouter(t)
	env.endpoint.On("GetArticle", mock.Anything, int64(3)).
		Return(&remote.Response[remote.ArticleDTO]{StatusCode: 200, Body: &remote.ArticleDTO{ID: 3, Title: "Starship"}}, nil)
	env.endpoint.On("GetArticle", mock.Anything, int64(4)).
		Return(&remote.Response[remote.ArticleDTO]{StatusCode: 200}, nil)

	rec, body := env.do(t, http.MethodGet, "/api/v1/articles/3", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Starship", body["data"].(map[string]any)["title"])

	rec, body = env.do(t, http.MethodGet, "/api/v1/articles/4", "")
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, "1", body["error"].(map[string]any)["code"])

	rec, _ = env.do(t, http.MethodGet, "/api/v1/articles/abc", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// TestHandleResetPagination verifies the stored offset is cleared
func TestHandleResetPagination(t *testing.T) {
	env := setupTestRouter(t)
	off := 10
	require.NoError(t, env.store.Replace(context.Background(), 1, &off))

	rec, _ := env.do(t, http.MethodDelete, "/api/v1/pagination", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	_, body := env.do(t, http.MethodGet, "/api/v1/pagination", "")
	assert.Nil(t, body["pagination"])
}

// TestClosedSession verifies intents on a closed session are refused
func TestClosedSession(t *testing.T) {
	env := setupTestRouter(t)
	env.session.Close()

	rec, _ := env.do(t, http.MethodPost, "/api/v1/articles/retry", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec, _ = env.do(t, http.MethodDelete, "/api/v1/pagination", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

// TestMetricsEndpoint verifies call counters are exposed
func TestMetricsEndpoint(t *testing.T) {
	env := setupTestRouter(t)
	env.endpoint.On("GetArticle", mock.Anything, int64(3)).
		Return(&remote.Response[remote.ArticleDTO]{StatusCode: 200, Body: &remote.ArticleDTO{ID: 3}}, nil)
	env.do(t, http.MethodGet, "/api/v1/articles/3", "")

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `sfnews_remote_calls_total{code="ok",operation="get_article"} 1`)
}

// TestCORS_Preflight verifies preflight requests are answered without
// reaching a handler.
func TestCORS_Preflight(t *testing.T) {
	env := setupTestRouter(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/articles/load", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, listing.PhaseIdle, env.session.Snapshot().Phase)
	env.endpoint.AssertNumberOfCalls(t, "ListArticles", 0)
}
