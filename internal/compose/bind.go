package compose

import "fmt"

// carry is the type name threaded through the binding fold. It becomes known
// at the first fragment that opens a type and only changes when a later
// fragment opens another one.
type carry struct {
	name  string
	known bool
}

func (c carry) next(s fragmentScan) carry {
	if s.hasType {
		return carry{name: s.typeName, known: true}
	}
	return c
}

type binding[R any] struct {
	resolvers *ResolverMap[R]
	last      carry
	errs      BindErrors
}

func (b binding[R]) step(k int, fragment string, r R) binding[R] {
	s := scanFragment(fragment)
	b.last = b.last.next(s)
	coord := Coordinate{Type: b.last.name, Field: s.fieldName}
	switch {
	case s.fieldErr != nil:
		b.errs = append(b.errs, &BindError{Position: k, Coordinate: coord, Err: s.fieldErr})
	case !b.last.known:
		b.errs = append(b.errs, &BindError{Position: k, Coordinate: coord, Err: ErrUnresolvedType})
	default:
		b.resolvers.Set(coord.Type, coord.Field, r)
	}
	return b
}

// Bind pairs resolvers[k] with fragments[k] and records it under the type and
// field that fragment declares, carrying the type forward across fragments
// that do not open one. Fragments past the last resolver are not inspected.
//
// Every resolver that cannot be bound is reported; the returned error is a
// BindErrors in that case.
func Bind[R any](fragments []string, resolvers []R) (*ResolverMap[R], error) {
	if len(resolvers) > len(fragments) {
		return nil, fmt.Errorf("%w: %d resolvers, %d fragments", ErrArity, len(resolvers), len(fragments))
	}
	b := binding[R]{resolvers: NewResolverMap[R]()}
	for k, r := range resolvers {
		b = b.step(k, fragments[k], r)
	}
	if len(b.errs) > 0 {
		return nil, b.errs
	}
	return b.resolvers, nil
}
