package repository

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"

	"github.com/pevans/sfnews/outcome"
	"github.com/pevans/sfnews/pagination"
	"github.com/pevans/sfnews/remote"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedRequests struct {
	mu    sync.Mutex
	query []map[string][]string
}

func (r *recordedRequests) add(req *http.Request) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.query = append(r.query, req.URL.Query())
}

// Test helper: create a repository backed by a test server and SQLite store
func createTestRepository(t *testing.T, handler http.HandlerFunc, pipeline *remote.Pipeline) (*ArticleRepository, *pagination.SQLiteStore) {
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := remote.NewClient(srv.URL)
	require.NoError(t, err)

	store, err := pagination.NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	coord := pagination.NewCoordinator(client, store, pagination.WithPipeline(pipeline))
	return NewArticleRepository(client, coord, pipeline, nil), store
}

// TestArticles_FirstPageStoresOffset verifies a first fetch from an empty store end to end
func TestArticles_FirstPageStoresOffset(t *testing.T) {
	var reqs recordedRequests
	repo, store := createTestRepository(t, func(w http.ResponseWriter, r *http.Request) {
		reqs.add(r)
		w.Write([]byte(`{"count":1,"next":"https://x/?offset=10","previous":null,"results":[{"id":1,"title":"First"}]}`))
	}, nil)
	ctx := context.Background()

	o := repo.Articles(ctx, "")

	items, ok := outcome.Value(o)
	require.True(t, ok)
	require.Len(t, items, 1)
	assert.Equal(t, int64(1), items[0].ID)

	require.Len(t, reqs.query, 1)
	assert.NotContains(t, reqs.query[0], "offset")
	assert.NotContains(t, reqs.query[0], "search")

	row, err := store.Row(ctx)
	require.NoError(t, err)
	require.NotNil(t, row)
	assert.Equal(t, int64(1), row.Count)
	assert.Equal(t, 10, *row.Offset)

	row2, err := repo.PaginationRow(ctx)
	require.NoError(t, err)
	assert.Equal(t, row, row2)
}

// TestArticles_SecondPageSendsOffset verifies the next fetch continues at the stored offset
func TestArticles_SecondPageSendsOffset(t *testing.T) {
	var reqs recordedRequests
	repo, _ := createTestRepository(t, func(w http.ResponseWriter, r *http.Request) {
		reqs.add(r)
		w.Write([]byte(`{"count":20,"next":"https://x/?limit=10&offset=10","results":[{"id":1}]}`))
	}, nil)
	ctx := context.Background()

	repo.Articles(ctx, "NASA")
	repo.Articles(ctx, "NASA")

	require.Len(t, reqs.query, 2)
	assert.Equal(t, []string{"NASA"}, reqs.query[1]["search"])
	assert.Equal(t, []string{"10"}, reqs.query[1]["offset"])
}

// TestResetPagination verifies reset makes the next fetch start over
func TestResetPagination(t *testing.T) {
	var reqs recordedRequests
	repo, store := createTestRepository(t, func(w http.ResponseWriter, r *http.Request) {
		reqs.add(r)
		w.Write([]byte(`{"count":20,"next":"https://x/?offset=10","results":[{"id":1}]}`))
	}, nil)
	ctx := context.Background()

	repo.Articles(ctx, "")
	require.NoError(t, repo.ResetPagination(ctx))

	row, err := store.Row(ctx)
	require.NoError(t, err)
	assert.Nil(t, row)

	repo.Articles(ctx, "")
	require.Len(t, reqs.query, 2)
	assert.NotContains(t, reqs.query[1], "offset")
}

// TestArticleByID verifies detail fetches and their failures
func TestArticleByID(t *testing.T) {
	repo, _ := createTestRepository(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/articles/5/":
			w.Write([]byte(`{"id":5,"title":"Artemis","authors":[{"name":"A"}],"summary":"<b>Go</b> for launch","published_at":"2025-01-02T03:04:05Z"}`))
		case "/articles/6/":
			w.Write([]byte(`null`))
		default:
			http.NotFound(w, r)
		}
	}, nil)
	ctx := context.Background()

	detail, ok := outcome.Value(repo.ArticleByID(ctx, 5))
	require.True(t, ok)
	assert.Equal(t, "Artemis", detail.Title)
	assert.Equal(t, "Go for launch", detail.Summary)

	oerr := outcome.ErrorOf(repo.ArticleByID(ctx, 6))
	require.NotNil(t, oerr)
	assert.Equal(t, "1", oerr.Code)

	oerr = outcome.ErrorOf(repo.ArticleByID(ctx, 7))
	require.NotNil(t, oerr)
	assert.Equal(t, "404", oerr.Code)
}

// TestArticles_Offline verifies nothing is requested or stored while offline
func TestArticles_Offline(t *testing.T) {
	var reqs recordedRequests
	repo, store := createTestRepository(t, func(w http.ResponseWriter, r *http.Request) {
		reqs.add(r)
	}, &remote.Pipeline{Connectivity: remote.Offline})
	ctx := context.Background()

	oerr := outcome.ErrorOf(repo.Articles(ctx, ""))
	require.NotNil(t, oerr)
	assert.Equal(t, "5", oerr.Code)
	assert.Empty(t, reqs.query)

	row, err := store.Row(ctx)
	require.NoError(t, err)
	assert.Nil(t, row)
}
