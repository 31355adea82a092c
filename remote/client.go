package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// DefaultBaseURL is the public Spaceflight News API.
const DefaultBaseURL = "https://api.spaceflightnewsapi.net/v4"

// DefaultUserAgent identifies sfnews to the API.
const DefaultUserAgent = "sfnews/1.0 (Spaceflight News client)"

// Response is a decoded HTTP response. Body is nil when the server sent no
// payload (or a JSON null). ErrorBody holds the raw body of a non-2xx
// response.
type Response[T any] struct {
	StatusCode int
	Body       *T
	ErrorBody  string
}

// IsSuccessful reports whether the status code is 2xx.
func (r *Response[T]) IsSuccessful() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// HTTPError is returned when the server answered with a status but the
// exchange could not be completed, e.g. the body stream broke.
type HTTPError struct {
	StatusCode int
	Err        error
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("http %d: %v", e.StatusCode, e.Err)
}

func (e *HTTPError) Unwrap() error {
	return e.Err
}

// ListParams are the query parameters of GET /articles. Nil pointers are
// left out of the request.
type ListParams struct {
	Search   *string
	Offset   *int
	Limit    int
	Ordering []string
}

// Endpoint is the remote list and detail API.
type Endpoint interface {
	ListArticles(ctx context.Context, params ListParams) (*Response[PageDTO], error)
	GetArticle(ctx context.Context, id int64) (*Response[ArticleDTO], error)
}

// Client talks to the Spaceflight News API over HTTP.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	limiter    *rate.Limiter
	userAgent  string
	logger     *slog.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.httpClient = hc }
}

// WithRateLimit allows at most rps requests per second. Zero or less
// disables limiting.
func WithRateLimit(rps float64) ClientOption {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
}

// WithTimeout sets the per-request timeout of the HTTP client. Zero or less
// keeps the current one.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) ClientOption {
	return func(c *Client) { c.userAgent = ua }
}

// WithClientLogger sets the logger.
func WithClientLogger(l *slog.Logger) ClientOption {
	return func(c *Client) { c.logger = l }
}

// NewClient creates a client for the API rooted at baseURL.
func NewClient(baseURL string, opts ...ClientOption) (*Client, error) {
	u, err := url.Parse(strings.TrimSuffix(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("failed to parse base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("base url scheme must be http or https, got %q", u.Scheme)
	}

	c := &Client{
		baseURL: u,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		userAgent: DefaultUserAgent,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// ListArticles fetches one page of articles.
func (c *Client) ListArticles(ctx context.Context, params ListParams) (*Response[PageDTO], error) {
	q := url.Values{}
	if params.Search != nil {
		q.Set("search", *params.Search)
	}
	if params.Offset != nil {
		q.Set("offset", strconv.Itoa(*params.Offset))
	}
	if params.Limit > 0 {
		q.Set("limit", strconv.Itoa(params.Limit))
	}
	for _, o := range params.Ordering {
		q.Add("ordering", o)
	}

	return get[PageDTO](ctx, c, "/articles/", q)
}

// GetArticle fetches a single article by ID.
func (c *Client) GetArticle(ctx context.Context, id int64) (*Response[ArticleDTO], error) {
	return get[ArticleDTO](ctx, c, fmt.Sprintf("/articles/%d/", id), url.Values{})
}

func (c *Client) endpointURL(path string, q url.Values) string {
	u := *c.baseURL
	u.Path = strings.TrimSuffix(u.Path, "/") + path

	// Every request asks for JSON explicitly
	q.Set("format", "json")
	u.RawQuery = q.Encode()

	return u.String()
}

func get[T any](ctx context.Context, c *Client, path string, q url.Values) (*Response[T], error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	target := c.endpointURL(path, q)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	c.logger.Debug("remote request", "url", target)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &HTTPError{StatusCode: resp.StatusCode, Err: err}
	}

	out := &Response[T]{StatusCode: resp.StatusCode}
	if !out.IsSuccessful() {
		out.ErrorBody = strings.TrimSpace(string(data))
		return out, nil
	}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return out, nil
	}

	var body T
	if err := json.Unmarshal(trimmed, &body); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	out.Body = &body

	return out, nil
}
