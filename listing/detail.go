package listing

import (
	"context"
	"log/slog"
	"sync"

	"github.com/pevans/sfnews/articles"
	"github.com/pevans/sfnews/outcome"
	"github.com/pevans/sfnews/repository"
)

// DetailSession loads a single article for display. Once an article has
// been fetched, asking for it again is a no-op unless reload is set.
type DetailSession struct {
	repo   repository.Articles
	logger *slog.Logger

	callMu sync.Mutex

	mu        sync.Mutex
	state     outcome.Outcome[articles.ArticleDetail]
	loadedID  int64
	hasLoaded bool

	subs subscribers[outcome.Outcome[articles.ArticleDetail]]
}

// NewDetailSession creates a detail session over repo. A nil logger uses
// slog.Default().
func NewDetailSession(repo repository.Articles, logger *slog.Logger) *DetailSession {
	if logger == nil {
		logger = slog.Default()
	}
	return &DetailSession{repo: repo, logger: logger}
}

// Subscribe registers fn to receive every state change.
func (d *DetailSession) Subscribe(fn func(outcome.Outcome[articles.ArticleDetail])) (unsubscribe func()) {
	return d.subs.add(fn)
}

// State returns the current state; Loading with no value before the first
// fetch.
func (d *DetailSession) State() outcome.Outcome[articles.ArticleDetail] {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.state == nil {
		return outcome.Pending[articles.ArticleDetail](nil)
	}
	return d.state
}

// Fetch loads article id, emitting Loading and then the result. When id is
// already loaded and reload is false, the current state is returned
// without a fetch.
func (d *DetailSession) Fetch(ctx context.Context, id int64, reload bool) outcome.Outcome[articles.ArticleDetail] {
	d.callMu.Lock()
	defer d.callMu.Unlock()

	d.mu.Lock()
	if d.hasLoaded && !reload && d.loadedID == id {
		state := d.state
		d.mu.Unlock()
		return state
	}
	loading := outcome.Pending[articles.ArticleDetail](nil)
	d.state = loading
	d.mu.Unlock()

	d.subs.notify(loading)

	d.logger.Debug("fetching article", "id", id, "reload", reload)
	res := d.repo.ArticleByID(ctx, id)

	d.mu.Lock()
	d.state = res
	d.loadedID = id
	d.hasLoaded = true
	d.mu.Unlock()

	d.subs.notify(res)
	return res
}
