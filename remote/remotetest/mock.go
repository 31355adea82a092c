// Package remotetest provides test doubles for the remote package.
package remotetest

import (
	"context"
	"fmt"

	"github.com/pevans/sfnews/remote"
	"github.com/stretchr/testify/mock"
)

// MockEndpoint is a testify mock of remote.Endpoint.
type MockEndpoint struct {
	mock.Mock
}

var _ remote.Endpoint = (*MockEndpoint)(nil)

func (m *MockEndpoint) ListArticles(ctx context.Context, params remote.ListParams) (*remote.Response[remote.PageDTO], error) {
	args := m.Called(ctx, params)
	resp, _ := args.Get(0).(*remote.Response[remote.PageDTO])
	return resp, args.Error(1)
}

func (m *MockEndpoint) GetArticle(ctx context.Context, id int64) (*remote.Response[remote.ArticleDTO], error) {
	args := m.Called(ctx, id)
	resp, _ := args.Get(0).(*remote.Response[remote.ArticleDTO])
	return resp, args.Error(1)
}

// Page builds a 200 response carrying count, next and one article per id.
func Page(count int64, next string, ids ...int64) *remote.Response[remote.PageDTO] {
	body := remote.PageDTO{Count: count, Results: []remote.ArticleDTO{}}
	if next != "" {
		body.Next = &next
	}
	for _, id := range ids {
		body.Results = append(body.Results, remote.ArticleDTO{
			ID:    id,
			Title: fmt.Sprintf("Article %d", id),
		})
	}
	return &remote.Response[remote.PageDTO]{StatusCode: 200, Body: &body}
}

// Status builds a non-2xx response with the given error body.
func Status(code int, body string) *remote.Response[remote.PageDTO] {
	return &remote.Response[remote.PageDTO]{StatusCode: code, ErrorBody: body}
}

// Search matches ListParams whose search equals q. An empty q matches an
// absent search.
func Search(q string) any {
	return mock.MatchedBy(func(p remote.ListParams) bool {
		if q == "" {
			return p.Search == nil
		}
		return p.Search != nil && *p.Search == q
	})
}

// Offset matches ListParams whose offset equals off. A negative off matches
// an absent offset.
func Offset(off int) any {
	return mock.MatchedBy(func(p remote.ListParams) bool {
		if off < 0 {
			return p.Offset == nil
		}
		return p.Offset != nil && *p.Offset == off
	})
}
