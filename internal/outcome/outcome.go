// Package outcome carries the result of a remote call whose failure the
// caller recovers from locally. Unlike swallowing the error, it keeps
// "zero results" and "call failed" distinguishable.
package outcome

type Outcome[T any] struct {
	value T
	err   error
}

func Ok[T any](v T) Outcome[T] {
	return Outcome[T]{value: v}
}

// Failed records err as the reason. A nil err is still a failure.
func Failed[T any](err error) Outcome[T] {
	if err == nil {
		err = errUnknown
	}
	return Outcome[T]{err: err}
}

func (o Outcome[T]) OK() bool { return o.err == nil }

// Value returns the value, or T's zero value for a failed outcome.
func (o Outcome[T]) Value() T { return o.value }

// Err is the failure reason, nil when OK.
func (o Outcome[T]) Err() error { return o.err }

func (o Outcome[T]) ValueOr(fallback T) T {
	if o.err != nil {
		return fallback
	}
	return o.value
}

type unknownError struct{}

func (unknownError) Error() string { return "outcome: failed without a reason" }

var errUnknown error = unknownError{}
