// Package pagination keeps track of where the next page of articles starts
// and fetches pages from the remote API accordingly.
package pagination

import (
	"context"
	"log/slog"
	"net/url"
	"strconv"

	"github.com/pevans/sfnews/articles"
	"github.com/pevans/sfnews/outcome"
	"github.com/pevans/sfnews/remote"
)

// DefaultPageSize is the number of articles requested per page.
const DefaultPageSize = 10

// DefaultOrdering lists newest articles first.
var DefaultOrdering = []string{"-published_at"}

// Coordinator reads the stored offset, fetches the page that starts there
// and stores the offset of the page after it.
type Coordinator struct {
	endpoint remote.Endpoint
	store    Store
	pipeline *remote.Pipeline
	pageSize int
	ordering []string
	logger   *slog.Logger
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithPipeline sets the pipeline remote calls run through.
func WithPipeline(p *remote.Pipeline) Option {
	return func(c *Coordinator) { c.pipeline = p }
}

// WithPageSize overrides DefaultPageSize.
func WithPageSize(n int) Option {
	return func(c *Coordinator) {
		if n > 0 {
			c.pageSize = n
		}
	}
}

// WithOrdering overrides DefaultOrdering.
func WithOrdering(ordering ...string) Option {
	return func(c *Coordinator) { c.ordering = ordering }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Coordinator) { c.logger = l }
}

// NewCoordinator creates a coordinator over endpoint and store.
func NewCoordinator(endpoint remote.Endpoint, store Store, opts ...Option) *Coordinator {
	c := &Coordinator{
		endpoint: endpoint,
		store:    store,
		pageSize: DefaultPageSize,
		ordering: DefaultOrdering,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.pipeline == nil {
		c.pipeline = &remote.Pipeline{Logger: c.logger}
	}
	return c
}

// FetchPage fetches the page starting at the stored offset. A nil query
// means no search filter. On success the offset of the following page is
// stored before the page is returned.
func (c *Coordinator) FetchPage(ctx context.Context, query *string) outcome.Outcome[articles.Page] {
	res := remote.SafeCall(ctx, c.pipeline, "list_articles",
		func(ctx context.Context) (*remote.Response[remote.PageDTO], error) {
			offset, err := c.store.Offset(ctx)
			if err != nil {
				return nil, err
			}

			return c.endpoint.ListArticles(ctx, remote.ListParams{
				Search:   query,
				Offset:   offset,
				Limit:    c.pageSize,
				Ordering: c.ordering,
			})
		},
	)

	dto, ok := outcome.Value(res)
	if !ok {
		return outcome.Map(res, remote.PageDTO.ToPage)
	}

	page := dto.ToPage()
	if err := c.persist(ctx, page); err != nil {
		if ctx.Err() != nil {
			c.logger.Debug("fetch canceled before storing pagination", "error", err)
		} else {
			c.logger.Error("failed to store pagination", "error", err)
		}
		return outcome.Fail[articles.Page](&outcome.Error{
			Code:    remote.CodeUnknown,
			Message: remote.MsgUnknown,
			Cause:   err,
		})
	}

	return outcome.Ok(page)
}

// persist stores the offset of the page after page. An empty page clears
// the store so the next fetch starts from the beginning.
func (c *Coordinator) persist(ctx context.Context, page articles.Page) error {
	if len(page.Items) == 0 {
		return c.store.Clear(ctx)
	}

	offset := ExtractOffset(page.Next)
	if offset != nil {
		c.logger.Debug("storing pagination", "count", page.Count, "offset", *offset)
	} else {
		c.logger.Debug("storing pagination", "count", page.Count, "offset", nil)
	}

	return c.store.Replace(ctx, page.Count, offset)
}

// Reset clears the stored offset.
func (c *Coordinator) Reset(ctx context.Context) error {
	return c.store.Clear(ctx)
}

// Row returns the stored pagination row.
func (c *Coordinator) Row(ctx context.Context) (*Row, error) {
	return c.store.Row(ctx)
}

// ExtractOffset parses the offset query parameter out of a next-page URL.
// It returns nil when next is nil, unparsable, or has no numeric offset.
func ExtractOffset(next *string) *int {
	if next == nil || *next == "" {
		return nil
	}

	u, err := url.Parse(*next)
	if err != nil {
		return nil
	}

	// Keep whatever parsed; a bad unrelated parameter must not hide offset
	q, _ := url.ParseQuery(u.RawQuery)

	raw := q.Get("offset")
	if raw == "" {
		return nil
	}

	offset, err := strconv.Atoi(raw)
	if err != nil {
		return nil
	}
	return &offset
}
