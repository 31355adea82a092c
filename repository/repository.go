// Package repository exposes articles to the rest of the application: the
// paginated list goes through the pagination coordinator, details are
// fetched directly.
package repository

import (
	"context"
	"log/slog"

	"github.com/pevans/sfnews/articles"
	"github.com/pevans/sfnews/outcome"
	"github.com/pevans/sfnews/pagination"
	"github.com/pevans/sfnews/remote"
)

// Articles is what the listing sessions need from a repository.
type Articles interface {
	Articles(ctx context.Context, query string) outcome.Outcome[[]articles.Article]
	ArticleByID(ctx context.Context, id int64) outcome.Outcome[articles.ArticleDetail]
	ResetPagination(ctx context.Context) error
}

// ArticleRepository implements Articles over a remote endpoint and a
// pagination coordinator.
type ArticleRepository struct {
	endpoint    remote.Endpoint
	coordinator *pagination.Coordinator
	pipeline    *remote.Pipeline
	logger      *slog.Logger
}

var _ Articles = (*ArticleRepository)(nil)

// NewArticleRepository creates a repository. The pipeline is shared with
// the coordinator's detail calls; nil means always online with no metrics.
func NewArticleRepository(
	endpoint remote.Endpoint,
	coordinator *pagination.Coordinator,
	pipeline *remote.Pipeline,
	logger *slog.Logger,
) *ArticleRepository {
	if logger == nil {
		logger = slog.Default()
	}
	if pipeline == nil {
		pipeline = &remote.Pipeline{Logger: logger}
	}
	return &ArticleRepository{
		endpoint:    endpoint,
		coordinator: coordinator,
		pipeline:    pipeline,
		logger:      logger,
	}
}

// Articles fetches the next page of articles. An empty query means no
// search filter.
func (r *ArticleRepository) Articles(ctx context.Context, query string) outcome.Outcome[[]articles.Article] {
	var q *string
	if query != "" {
		q = &query
	}

	page := r.coordinator.FetchPage(ctx, q)
	return outcome.Map(page, func(p articles.Page) []articles.Article {
		return p.Items
	})
}

// ArticleByID fetches a single article.
func (r *ArticleRepository) ArticleByID(ctx context.Context, id int64) outcome.Outcome[articles.ArticleDetail] {
	res := remote.SafeCall(ctx, r.pipeline, "get_article",
		func(ctx context.Context) (*remote.Response[remote.ArticleDTO], error) {
			return r.endpoint.GetArticle(ctx, id)
		},
	)
	return outcome.Map(res, remote.ArticleDTO.ToDetail)
}

// ResetPagination forgets the stored offset so the next fetch starts from
// the first page.
func (r *ArticleRepository) ResetPagination(ctx context.Context) error {
	r.logger.Debug("resetting pagination")
	return r.coordinator.Reset(ctx)
}

// PaginationRow returns the stored pagination row, or nil.
func (r *ArticleRepository) PaginationRow(ctx context.Context) (*pagination.Row, error) {
	return r.coordinator.Row(ctx)
}
