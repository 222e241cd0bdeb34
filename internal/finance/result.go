package finance

import "encoding/json"

// Result is either a value or a failure message. Failures encode to JSON
// as {"error": msg}; successes encode as the bare value.
type Result[T any] struct {
	value T
	msg   string
	ok    bool
}

// Ok wraps a successful value.
func Ok[T any](v T) Result[T] {
	return Result[T]{value: v, ok: true}
}

// Fail builds a failed result carrying msg.
func Fail[T any](msg string) Result[T] {
	return Result[T]{msg: msg}
}

// IsOK reports whether the result holds a value.
func (r Result[T]) IsOK() bool { return r.ok }

// Value returns the wrapped value, or the zero value on failure.
func (r Result[T]) Value() T { return r.value }

// Message returns the failure message, or "" on success.
func (r Result[T]) Message() string { return r.msg }

func (r Result[T]) MarshalJSON() ([]byte, error) {
	if !r.ok {
		return json.Marshal(map[string]string{"error": r.msg})
	}
	return json.Marshal(r.value)
}
