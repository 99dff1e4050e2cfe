package schema

import (
	"fmt"

	"github.com/hanpama/sdlcompose/internal/compose"
)

// CheckBindings verifies that every coordinate names a field of an object or
// interface type in s. All problems are returned together as a
// ValidationError.
func CheckBindings(s *Schema, coords []compose.Coordinate) error {
	var violations ValidationError
	for _, c := range coords {
		if v := checkBinding(s, c); v != nil {
			v.Coordinate = c.String()
			violations = append(violations, v)
		}
	}
	if len(violations) > 0 {
		return violations
	}
	return nil
}

func checkBinding(s *Schema, c compose.Coordinate) *Violation {
	t, ok := s.Types[c.Type]
	if !ok {
		return &Violation{Message: fmt.Sprintf("resolver %s is bound to undefined type %q", c, c.Type)}
	}
	if !t.Kind.HasFields() {
		return &Violation{Message: fmt.Sprintf("resolver %s is bound to %s type %q, which has no fields", c, t.Kind, c.Type)}
	}
	if t.Field(c.Field) == nil {
		return &Violation{Message: fmt.Sprintf("resolver %s is bound to field %q, which %q does not define", c, c.Field, c.Type)}
	}
	return nil
}
