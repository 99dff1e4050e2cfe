package compose

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNoMatch is returned when a fragment holds no declaration of the
	// requested kind.
	ErrNoMatch = errors.New("no match")
	// ErrAmbiguous is returned when a trailing field declaration exists but
	// cannot be attributed to a type body, for example because the body it
	// follows was already closed.
	ErrAmbiguous = errors.New("ambiguous match")
	// ErrUnresolvedType is returned when no type was opened at or before a
	// resolver's fragment.
	ErrUnresolvedType = errors.New("unresolved type")
	// ErrArity is returned when there are more resolvers than fragments.
	ErrArity = errors.New("more resolvers than fragments")
	// ErrDuplicate is returned by Merge when two modules bind the same
	// coordinate.
	ErrDuplicate = errors.New("duplicate coordinate")
)

// ExtractError describes a failed field or type extraction.
type ExtractError struct {
	Subject string // "field" or "type"
	Detail  string
	Err     error
}

func (e *ExtractError) Error() string {
	msg := e.Subject + " name: " + e.Err.Error()
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

func (e *ExtractError) Unwrap() error { return e.Err }

// BindError reports a resolver whose coordinate could not be determined.
// Position is the resolver index in the input sequence.
type BindError struct {
	Position   int
	Coordinate Coordinate // partially filled when one half was found
	Err        error
}

func (e *BindError) Error() string {
	return fmt.Sprintf("resolver %d (%s): %v", e.Position, e.Coordinate, e.Err)
}

func (e *BindError) Unwrap() error { return e.Err }

// BindErrors collects every BindError of one composition.
type BindErrors []*BindError

func (e BindErrors) Error() string {
	var b strings.Builder
	b.WriteString("binding failed:\n")
	for _, be := range e {
		b.WriteString("- ")
		b.WriteString(be.Error())
		b.WriteString("\n")
	}
	return b.String()
}

// Unwrap exposes the individual errors to errors.Is and errors.As.
func (e BindErrors) Unwrap() []error {
	errs := make([]error, len(e))
	for i, be := range e {
		errs[i] = be
	}
	return errs
}
