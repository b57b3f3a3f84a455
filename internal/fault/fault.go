// Package fault holds the single error type every collaborator failure is
// reported through.
package fault

import (
	"errors"
	"fmt"
)

type Kind int

const (
	Unknown Kind = iota
	Transport
	Store
	HTTP
	URL
	Decode
	Date
)

func (k Kind) String() string {
	switch k {
	case Transport:
		return "transport"
	case Store:
		return "store"
	case HTTP:
		return "http"
	case URL:
		return "url"
	case Decode:
		return "decode"
	case Date:
		return "date"
	default:
		return "unknown"
	}
}

// Error tags a collaborator's native error with the kind of failure it is.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func New(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

func (e *Error) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("%s error: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("%s error: %s: %v", e.Kind, e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf returns the kind of the first fault in err's chain, or Unknown.
func KindOf(err error) Kind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return Unknown
}

func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
