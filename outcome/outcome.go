// Package outcome provides the three-way result wrapper used across the
// article pipeline: a call either succeeded, failed, or is still loading.
package outcome

import "fmt"

// Error describes a failed operation. Code is empty when the failure has no
// stable code.
type Error struct {
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
	Cause   error  `json:"-"`
}

func (e *Error) Error() string {
	if e.Code == "" {
		return e.Message
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause, if any.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Visitor handles each variant of an Outcome. Every Outcome dispatches to
// exactly one of these methods.
type Visitor[T any] interface {
	VisitSuccess(value T)
	VisitError(err *Error)
	VisitLoading(partial *T)
}

// Outcome is a tagged union of Success, Failure and Loading. The set of
// variants is closed: only this package can implement it.
type Outcome[T any] interface {
	Accept(v Visitor[T])
	sealed()
}

// Success holds the value of a completed operation.
type Success[T any] struct {
	Value T
}

// Failure holds the error of a failed operation.
type Failure[T any] struct {
	Err *Error
}

// Loading marks an operation in progress. Partial optionally carries the
// previous value so callers can keep showing it.
type Loading[T any] struct {
	Partial *T
}

func (s Success[T]) Accept(v Visitor[T]) { v.VisitSuccess(s.Value) }
func (f Failure[T]) Accept(v Visitor[T]) { v.VisitError(f.Err) }
func (l Loading[T]) Accept(v Visitor[T]) { v.VisitLoading(l.Partial) }

func (Success[T]) sealed() {}
func (Failure[T]) sealed() {}
func (Loading[T]) sealed() {}

// Ok wraps a value in a Success.
func Ok[T any](value T) Outcome[T] {
	return Success[T]{Value: value}
}

// Fail wraps an error in a Failure.
func Fail[T any](err *Error) Outcome[T] {
	return Failure[T]{Err: err}
}

// Pending returns a Loading outcome carrying the optional partial value.
func Pending[T any](partial *T) Outcome[T] {
	return Loading[T]{Partial: partial}
}

// Match folds an Outcome into a single value, one function per variant.
func Match[T, R any](
	o Outcome[T],
	onSuccess func(T) R,
	onError func(*Error) R,
	onLoading func(*T) R,
) R {
	m := &matcher[T, R]{onSuccess: onSuccess, onError: onError, onLoading: onLoading}
	o.Accept(m)
	return m.result
}

type matcher[T, R any] struct {
	onSuccess func(T) R
	onError   func(*Error) R
	onLoading func(*T) R
	result    R
}

func (m *matcher[T, R]) VisitSuccess(value T)    { m.result = m.onSuccess(value) }
func (m *matcher[T, R]) VisitError(err *Error)   { m.result = m.onError(err) }
func (m *matcher[T, R]) VisitLoading(partial *T) { m.result = m.onLoading(partial) }

// Map transforms the value of a Success (and the partial value of a
// Loading), leaving failures untouched.
func Map[T, U any](o Outcome[T], fn func(T) U) Outcome[U] {
	return Match(o,
		func(v T) Outcome[U] { return Ok(fn(v)) },
		func(err *Error) Outcome[U] { return Fail[U](err) },
		func(partial *T) Outcome[U] {
			if partial == nil {
				return Pending[U](nil)
			}
			u := fn(*partial)
			return Pending(&u)
		},
	)
}

// Value returns the value of a Success.
func Value[T any](o Outcome[T]) (T, bool) {
	s, ok := o.(Success[T])
	return s.Value, ok
}

// ErrorOf returns the error of a Failure, or nil for any other variant.
func ErrorOf[T any](o Outcome[T]) *Error {
	if f, ok := o.(Failure[T]); ok {
		return f.Err
	}
	return nil
}
