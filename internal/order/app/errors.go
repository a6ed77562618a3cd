package app

import "errors"

type Kind int

const (
	KindInternal Kind = iota
	KindNotFound
	KindForbidden
	KindEmptyCart
	KindInvalidTransition
	KindInvalidInput
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindForbidden:
		return "forbidden"
	case KindEmptyCart:
		return "empty_cart"
	case KindInvalidTransition:
		return "invalid_transition"
	case KindInvalidInput:
		return "invalid_input"
	default:
		return "internal"
	}
}

// Error is an expected failure the caller can act on. Reason is meant for
// end users.
type Error struct {
	Kind   Kind
	Reason string
}

func (e *Error) Error() string { return e.Reason }

// Is matches any *Error of the same kind, so the sentinels below work with
// errors.Is regardless of reason.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

var (
	ErrNotFound          = &Error{Kind: KindNotFound, Reason: "not found"}
	ErrForbidden         = &Error{Kind: KindForbidden, Reason: "forbidden"}
	ErrEmptyCart         = &Error{Kind: KindEmptyCart, Reason: "cart is empty"}
	ErrInvalidTransition = &Error{Kind: KindInvalidTransition, Reason: "invalid status transition"}
	ErrInvalidInput      = &Error{Kind: KindInvalidInput, Reason: "invalid input"}
)

func newError(kind Kind, reason string) *Error {
	return &Error{Kind: kind, Reason: reason}
}

// KindOf returns KindInternal for anything that is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}
