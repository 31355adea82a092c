package remote

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/url"
	"strconv"
	"time"

	"github.com/pevans/sfnews/outcome"
)

// Stable error codes reported in outcome.Error.Code. Non-2xx responses and
// HTTP errors use the status code itself.
const (
	CodeNullBody   = "1"
	CodeConnection = "2"
	CodeUnknown    = "4"
	CodeOffline    = "5"
	CodeTimeout    = "408"
)

// Error messages paired with the codes above.
const (
	MsgOffline       = "no network connection"
	MsgNullBody      = "response body is null"
	MsgTimeout       = "timeout"
	MsgHTTP          = "http error"
	MsgConnection    = "connection error"
	MsgUnknown       = "unknown error"
	MsgStatusDefault = "unknown error"
)

// ErrNetwork marks a failure to reach the network at all. Wrap it to have a
// failure classified as a connection error.
var ErrNetwork = errors.New("network unavailable")

var _ Endpoint = (*Client)(nil)

// Call is a single remote operation.
type Call[T any] func(ctx context.Context) (*Response[T], error)

// Pipeline holds what SafeCall needs besides the call itself. A nil
// Connectivity means always online; a nil Metrics records nothing.
type Pipeline struct {
	Connectivity Connectivity
	Metrics      *Metrics
	Logger       *slog.Logger
}

func (p *Pipeline) logger() *slog.Logger {
	if p == nil || p.Logger == nil {
		return slog.Default()
	}
	return p.Logger
}

// SafeCall runs call and converts whatever happens into an Outcome. It
// never panics and never returns a Loading outcome.
func SafeCall[T any](ctx context.Context, p *Pipeline, operation string, call Call[T]) (result outcome.Outcome[T]) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			cause, ok := r.(error)
			if !ok {
				cause = fmt.Errorf("panic: %v", r)
			}
			result = outcome.Fail[T](&outcome.Error{Code: CodeUnknown, Message: MsgUnknown, Cause: cause})
		}
		p.observe(operation, outcome.ErrorOf(result), time.Since(start))
	}()

	if p != nil && p.Connectivity != nil && !p.Connectivity.Available(ctx) {
		return outcome.Fail[T](&outcome.Error{Code: CodeOffline, Message: MsgOffline})
	}

	resp, err := call(ctx)
	if err != nil {
		return outcome.Fail[T](Classify(err))
	}

	return FromResponse(resp)
}

// FromResponse maps a completed HTTP exchange to an Outcome.
func FromResponse[T any](resp *Response[T]) outcome.Outcome[T] {
	if resp == nil {
		return outcome.Fail[T](&outcome.Error{Code: CodeNullBody, Message: MsgNullBody})
	}

	if !resp.IsSuccessful() {
		msg := resp.ErrorBody
		if msg == "" {
			msg = MsgStatusDefault
		}
		return outcome.Fail[T](&outcome.Error{Code: strconv.Itoa(resp.StatusCode), Message: msg})
	}

	if resp.Body == nil {
		return outcome.Fail[T](&outcome.Error{Code: CodeNullBody, Message: MsgNullBody})
	}

	return outcome.Ok(*resp.Body)
}

// Classify maps a failed call to its stable error. Every error yields
// exactly one classification.
func Classify(err error) *outcome.Error {
	var httpErr *HTTPError
	var netErr net.Error
	var opErr *net.OpError
	var dnsErr *net.DNSError
	var urlErr *url.Error

	switch {
	case errors.Is(err, context.DeadlineExceeded),
		errors.As(err, &netErr) && netErr.Timeout():
		return &outcome.Error{Code: CodeTimeout, Message: MsgTimeout, Cause: err}
	case errors.As(err, &httpErr):
		return &outcome.Error{Code: strconv.Itoa(httpErr.StatusCode), Message: MsgHTTP, Cause: err}
	case errors.Is(err, context.Canceled):
		return &outcome.Error{Code: CodeUnknown, Message: MsgUnknown, Cause: err}
	case errors.Is(err, ErrNetwork),
		errors.Is(err, io.ErrUnexpectedEOF),
		errors.As(err, &opErr),
		errors.As(err, &dnsErr),
		errors.As(err, &urlErr),
		errors.As(err, &netErr):
		return &outcome.Error{Code: CodeConnection, Message: MsgConnection, Cause: err}
	default:
		return &outcome.Error{Code: CodeUnknown, Message: MsgUnknown, Cause: err}
	}
}

func (p *Pipeline) observe(operation string, oerr *outcome.Error, elapsed time.Duration) {
	code := LabelOK
	switch {
	case oerr == nil:
	case errors.Is(oerr, context.Canceled):
		// A superseded fetch, not a failure of the remote
		code = LabelCanceled
	default:
		code = oerr.Code
	}

	if p != nil && p.Metrics != nil {
		p.Metrics.Observe(operation, code, elapsed)
	}

	switch code {
	case LabelOK:
		p.logger().Debug("remote call succeeded", "operation", operation)
	case LabelCanceled:
		p.logger().Debug("remote call canceled", "operation", operation)
	default:
		p.logger().Warn("remote call failed",
			"operation", operation,
			"code", oerr.Code,
			"error", oerr.Error(),
		)
	}
}
