// Package listing turns user intents (search, initial load, load more,
// retry) into article fetches and keeps the accumulated list they produce.
package listing

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pevans/sfnews/articles"
	"github.com/pevans/sfnews/outcome"
	"github.com/pevans/sfnews/remote"
	"github.com/pevans/sfnews/repository"
)

// ErrClosed is returned by intents sent to a closed session.
var ErrClosed = errors.New("session closed")

// LoadOptions describe one list fetch.
type LoadOptions struct {
	// Query overrides the search text for this fetch only. Without it a
	// load more uses the query of the loaded list and anything else uses
	// the last applied search text.
	Query *string

	// Reload fetches even when items are already loaded, clearing them
	// first.
	Reload bool

	// LoadMore appends the next page instead of replacing the list.
	LoadMore bool

	// ResetOffset clears the stored offset before fetching.
	ResetOffset bool
}

type request struct {
	query       string
	loadMore    bool
	clear       bool
	resetOffset bool
}

// Option configures a Session.
type Option func(*Session)

// WithDebounce sets how long search text must stay unchanged before it is
// applied.
func WithDebounce(d time.Duration) Option {
	return func(s *Session) {
		if d > 0 {
			s.debounce = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Session) { s.logger = l }
}

// Session is the article list state machine. All methods are safe for
// concurrent use. Fetches run on their own goroutines; subscribers are told
// about every state change.
//
// Subscribers run while the session holds its notification lock, so they
// must not call back into the session synchronously.
type Session struct {
	id       string
	repo     repository.Articles
	logger   *slog.Logger
	debounce time.Duration
	search   *debouncer

	ctx  context.Context
	stop context.CancelFunc

	mu          sync.Mutex
	closed      bool
	phase       Phase
	appending   bool
	items       []articles.Article
	err         *outcome.Error
	query       string // last applied search text
	activeQuery string // query of the latest fetch
	last        request
	hasLast     bool
	generation  uint64
	cancel      context.CancelFunc
	inFlight    bool
	running     int
	idle        chan struct{}
	searchSeq   uint64
	searching   bool
	seq         uint64

	// Serializes repository calls so the offset store sees one writer
	fetchMu sync.Mutex

	notifyMu  sync.Mutex
	delivered uint64
	subs      subscribers[Snapshot]
}

// NewSession creates an idle session over repo.
func NewSession(repo repository.Articles, opts ...Option) *Session {
	ctx, stop := context.WithCancel(context.Background())

	s := &Session{
		id:       uuid.NewString(),
		repo:     repo,
		logger:   slog.Default(),
		debounce: DefaultDebounce,
		ctx:      ctx,
		stop:     stop,
		phase:    PhaseIdle,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("session", s.id)
	s.search = newDebouncer(s.debounce)

	return s
}

// ID returns the session's unique ID.
func (s *Session) ID() string {
	return s.id
}

// Subscribe registers fn to receive every new snapshot. Snapshots arrive in
// order; a snapshot superseded before delivery is skipped.
func (s *Session) Subscribe(fn func(Snapshot)) (unsubscribe func()) {
	return s.subs.add(fn)
}

// Snapshot returns the current state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// SearchTextChanged records new search text. Once the text has stayed the
// same for the debounce period, and differs from the last applied search,
// the list is cleared and fetched for it. Empty text means no search.
func (s *Session) SearchTextChanged(text string) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	s.searchSeq++
	seq := s.searchSeq
	if !s.searching {
		s.searching = true
		s.beginLocked()
	}
	s.mu.Unlock()

	s.search.Trigger(func() { s.applySearch(seq, text) })
	return nil
}

func (s *Session) applySearch(seq uint64, text string) {
	s.mu.Lock()
	if s.closed || seq != s.searchSeq || !s.searching {
		s.mu.Unlock()
		return
	}
	s.searching = false

	var snap Snapshot
	var launch func()
	if text != s.query {
		s.query = text
		s.logger.Debug("applying search", "query", text)
		snap, launch = s.startLocked(request{query: text, clear: true}, true)
	}
	s.endLocked()
	s.mu.Unlock()

	s.begin(snap, launch)
}

// InitialLoad fetches the first page unless items are already loaded.
func (s *Session) InitialLoad() error {
	return s.Load(LoadOptions{})
}

// LoadMore appends the next page, fetched with the same query as the items
// already shown. It does nothing while the list is empty or a fetch is in
// flight.
func (s *Session) LoadMore() error {
	return s.Load(LoadOptions{LoadMore: true})
}

// Reload forgets the stored offset and fetches the list from the start.
func (s *Session) Reload() error {
	return s.Load(LoadOptions{Reload: true, ResetOffset: true})
}

// Retry issues the last request again, whether or not items are loaded.
func (s *Session) Retry() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}

	req := request{query: s.query}
	if s.hasLast {
		req = s.last
	}
	s.logger.Debug("retrying", "query", req.query, "load_more", req.loadMore)
	snap, launch := s.startLocked(req, true)
	s.mu.Unlock()

	s.begin(snap, launch)
	return nil
}

// ResetOffset clears the stored offset. A running fetch stores its own
// offset first, so the reset is never overwritten by it.
func (s *Session) ResetOffset(ctx context.Context) error {
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return ErrClosed
	}

	s.fetchMu.Lock()
	defer s.fetchMu.Unlock()

	s.logger.Debug("resetting pagination")
	return s.repo.ResetPagination(ctx)
}

// Load starts a fetch described by opts. Intents that the current state
// makes pointless are ignored without error.
func (s *Session) Load(opts LoadOptions) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}

	req := request{
		query:       s.query,
		loadMore:    opts.LoadMore,
		clear:       opts.Reload && !opts.LoadMore,
		resetOffset: opts.ResetOffset,
	}
	if opts.LoadMore {
		// The next page must match the list it extends
		req.query = s.activeQuery
	}
	if opts.Query != nil {
		req.query = *opts.Query
	}

	snap, launch := s.startLocked(req, opts.Reload)
	s.mu.Unlock()

	s.begin(snap, launch)
	return nil
}

// begin publishes the Loading snapshot and only then launches the fetch,
// so its result can never be delivered ahead of it.
func (s *Session) begin(snap Snapshot, launch func()) {
	if launch == nil {
		return
	}
	s.publish(snap)
	launch()
}

// startLocked moves to Loading and prepares the fetch. It returns a nil
// launch func when the guards reject the request.
func (s *Session) startLocked(req request, force bool) (Snapshot, func()) {
	if req.loadMore {
		if len(s.items) == 0 || s.inFlight {
			s.logger.Debug("ignoring load more", "items", len(s.items), "in_flight", s.inFlight)
			return Snapshot{}, nil
		}
	} else {
		if !force && len(s.items) > 0 {
			return Snapshot{}, nil
		}

		// Anything started before this belongs to an older generation
		s.generation++
		if s.cancel != nil {
			s.cancel()
		}
	}

	if req.clear {
		s.items = nil
	}

	ctx, cancel := context.WithCancel(s.ctx)
	s.cancel = cancel
	s.inFlight = true
	s.last, s.hasLast = req, true
	s.activeQuery = req.query
	s.phase = PhaseLoading
	s.appending = req.loadMore
	s.err = nil
	s.beginLocked()

	gen := s.generation
	s.logger.Debug("fetching articles",
		"query", req.query,
		"load_more", req.loadMore,
		"generation", gen,
	)
	return s.snapshotLocked(), func() { go s.run(ctx, cancel, gen, req) }
}

func (s *Session) run(ctx context.Context, cancel context.CancelFunc, gen uint64, req request) {
	defer cancel()
	s.finish(gen, req, s.fetch(ctx, req))
}

// fetch returns nil when the request was superseded before it ran.
func (s *Session) fetch(ctx context.Context, req request) outcome.Outcome[[]articles.Article] {
	s.fetchMu.Lock()
	defer s.fetchMu.Unlock()

	if ctx.Err() != nil {
		return nil
	}

	if req.resetOffset {
		if err := s.repo.ResetPagination(ctx); err != nil {
			s.logger.Error("failed to reset pagination", "error", err)
			return outcome.Fail[[]articles.Article](&outcome.Error{
				Code:    remote.CodeUnknown,
				Message: remote.MsgUnknown,
				Cause:   err,
			})
		}
	}

	return s.repo.Articles(ctx, req.query)
}

func (s *Session) finish(gen uint64, req request, res outcome.Outcome[[]articles.Article]) {
	s.mu.Lock()
	if res == nil || s.closed || gen != s.generation {
		s.logger.Debug("dropping stale result", "generation", gen, "current", s.generation)
		s.endLocked()
		s.mu.Unlock()
		return
	}

	s.inFlight = false
	s.appending = false
	if items, ok := outcome.Value(res); ok {
		if req.loadMore {
			s.items = append(slices.Clip(s.items), items...)
		} else {
			s.items = slices.Clone(items)
		}
		s.phase = PhaseSuccess
		s.err = nil
	} else {
		s.phase = PhaseError
		s.err = outcome.ErrorOf(res)
		if s.err == nil {
			s.err = &outcome.Error{Code: remote.CodeUnknown, Message: remote.MsgUnknown}
		}
		s.logger.Warn("fetch failed", "query", req.query, "code", s.err.Code, "error", s.err.Message)
	}
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.publish(snap)

	s.mu.Lock()
	s.endLocked()
	s.mu.Unlock()
}

func (s *Session) publish(snap Snapshot) {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	if snap.seq <= s.delivered {
		return
	}
	s.delivered = snap.seq
	s.subs.notify(snap)
}

func (s *Session) snapshotLocked() Snapshot {
	s.seq++

	items := make([]articles.Article, len(s.items))
	copy(items, s.items)

	return Snapshot{
		SessionID: s.id,
		Phase:     s.phase,
		Appending: s.appending,
		Query:     s.activeQuery,
		Items:     items,
		Err:       s.err,
		seq:       s.seq,
	}
}

func (s *Session) beginLocked() {
	if s.running == 0 {
		s.idle = make(chan struct{})
	}
	s.running++
}

func (s *Session) endLocked() {
	s.running--
	if s.running == 0 {
		close(s.idle)
	}
}

// Wait blocks until no search is pending and no fetch is running, and
// subscribers have seen the result.
func (s *Session) Wait() {
	for {
		s.mu.Lock()
		if s.running == 0 {
			s.mu.Unlock()
			return
		}
		idle := s.idle
		s.mu.Unlock()

		<-idle
	}
}

// Close cancels pending searches and running fetches and waits for them to
// finish. Later intents return ErrClosed.
func (s *Session) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.search.Stop()
	if s.searching {
		s.searching = false
		s.endLocked()
	}
	s.mu.Unlock()

	s.stop()
	s.Wait()
	return nil
}
