package store

import (
	"errors"
	"fmt"
)

var (
	ErrMissingID            = errors.New("missing transaction id")
	ErrTransactionNotFound  = errors.New("transaction not found")
	ErrDuplicateTransaction = errors.New("duplicate transaction id")
	ErrEmptyCategoryName    = errors.New("empty category name")
	ErrDuplicateCategory    = errors.New("category already exists")
	ErrCategoryNotFound     = errors.New("category not found")
)

// Outcome tells a caller what a mutation did.
type Outcome int

const (
	// Applied means the state changed and a snapshot was persisted.
	Applied Outcome = iota
	// NoOp means nothing matched; the state is unchanged.
	NoOp
	// Rejected means the input was invalid; the state is unchanged.
	Rejected
)

func (o Outcome) String() string {
	switch o {
	case Applied:
		return "applied"
	case NoOp:
		return "noop"
	case Rejected:
		return "rejected"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// Result is returned by every mutation. Value is only meaningful when
// Outcome is Applied; Reason is set otherwise.
type Result[T any] struct {
	Outcome Outcome
	Value   T
	Reason  error
}

// OK reports whether the mutation was applied.
func (r Result[T]) OK() bool {
	return r.Outcome == Applied
}

func applied[T any](v T) Result[T] {
	return Result[T]{Outcome: Applied, Value: v}
}

func noop[T any](reason error) Result[T] {
	return Result[T]{Outcome: NoOp, Reason: reason}
}

func rejected[T any](reason error) Result[T] {
	return Result[T]{Outcome: Rejected, Reason: reason}
}
