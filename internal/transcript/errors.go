package transcript

import "errors"

type Kind string

const (
	KindValidation  Kind = "validation"
	KindNotFound    Kind = "not_found"
	KindPersistence Kind = "persistence"
)

var (
	ErrValidation  = errors.New("validation error")
	ErrNotFound    = errors.New("transcript not found")
	ErrPersistence = errors.New("persistence error")
)

// Error is returned by every Service operation that fails. errors.Is matches
// it against the sentinel for its Kind as well as the wrapped cause.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() []error {
	errs := []error{e.Kind.sentinel()}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

func (k Kind) sentinel() error {
	switch k {
	case KindValidation:
		return ErrValidation
	case KindNotFound:
		return ErrNotFound
	default:
		return ErrPersistence
	}
}

func validationError(msg string) *Error {
	return &Error{Kind: KindValidation, Message: msg}
}

func persistenceError(msg string, err error) *Error {
	return &Error{Kind: KindPersistence, Message: msg, Err: err}
}

// KindOf reports the Kind of err, treating anything that is not an *Error
// as a persistence failure.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindPersistence
}
