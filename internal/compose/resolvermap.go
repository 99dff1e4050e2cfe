package compose

import "fmt"

// Coordinate identifies a field of a named type.
type Coordinate struct {
	Type  string
	Field string
}

func (c Coordinate) String() string {
	t, f := c.Type, c.Field
	if t == "" {
		t = "?"
	}
	if f == "" {
		f = "?"
	}
	return t + "." + f
}

// ResolverMap maps type name to field name to resolver. Types and fields
// iterate in the order they were first bound.
type ResolverMap[R any] struct {
	types  []string
	fields map[string]*fieldMap[R]
}

type fieldMap[R any] struct {
	names     []string
	resolvers map[string]R
}

// NewResolverMap returns an empty map.
func NewResolverMap[R any]() *ResolverMap[R] {
	return &ResolverMap[R]{fields: make(map[string]*fieldMap[R])}
}

// Set binds r to typeName.fieldName, keeping the other fields of the type.
// Rebinding a coordinate replaces the resolver and keeps its position.
func (m *ResolverMap[R]) Set(typeName, fieldName string, r R) {
	fm, ok := m.fields[typeName]
	if !ok {
		fm = &fieldMap[R]{resolvers: make(map[string]R)}
		m.fields[typeName] = fm
		m.types = append(m.types, typeName)
	}
	if _, ok := fm.resolvers[fieldName]; !ok {
		fm.names = append(fm.names, fieldName)
	}
	fm.resolvers[fieldName] = r
}

// Get returns the resolver bound to typeName.fieldName.
func (m *ResolverMap[R]) Get(typeName, fieldName string) (R, bool) {
	var zero R
	if m == nil {
		return zero, false
	}
	fm, ok := m.fields[typeName]
	if !ok {
		return zero, false
	}
	r, ok := fm.resolvers[fieldName]
	return r, ok
}

// Lookup returns a copy of the field resolvers of typeName.
func (m *ResolverMap[R]) Lookup(typeName string) (map[string]R, bool) {
	if m == nil {
		return nil, false
	}
	fm, ok := m.fields[typeName]
	if !ok {
		return nil, false
	}
	out := make(map[string]R, len(fm.names))
	for name, r := range fm.resolvers {
		out[name] = r
	}
	return out, true
}

// Types returns the bound type names in binding order.
func (m *ResolverMap[R]) Types() []string {
	if m == nil {
		return nil
	}
	return append([]string(nil), m.types...)
}

// Fields returns the bound field names of typeName in binding order.
func (m *ResolverMap[R]) Fields(typeName string) []string {
	if m == nil {
		return nil
	}
	fm, ok := m.fields[typeName]
	if !ok {
		return nil
	}
	return append([]string(nil), fm.names...)
}

// Coordinates lists every bound coordinate, types first, then fields, both
// in binding order.
func (m *ResolverMap[R]) Coordinates() []Coordinate {
	if m == nil {
		return nil
	}
	out := make([]Coordinate, 0, m.Len())
	for _, t := range m.types {
		for _, f := range m.fields[t].names {
			out = append(out, Coordinate{Type: t, Field: f})
		}
	}
	return out
}

// Len returns the number of bound coordinates.
func (m *ResolverMap[R]) Len() int {
	if m == nil {
		return 0
	}
	n := 0
	for _, fm := range m.fields {
		n += len(fm.names)
	}
	return n
}

// Map returns the bindings as plain nested maps.
func (m *ResolverMap[R]) Map() map[string]map[string]R {
	out := make(map[string]map[string]R)
	if m == nil {
		return out
	}
	for _, t := range m.types {
		out[t], _ = m.Lookup(t)
	}
	return out
}

// Merge copies the bindings of other into m. A coordinate bound in both maps
// is an ErrDuplicate error and leaves m unchanged.
func (m *ResolverMap[R]) Merge(other *ResolverMap[R]) error {
	for _, c := range other.Coordinates() {
		if _, ok := m.Get(c.Type, c.Field); ok {
			return fmt.Errorf("%w: %s", ErrDuplicate, c)
		}
	}
	for _, c := range other.Coordinates() {
		r, _ := other.Get(c.Type, c.Field)
		m.Set(c.Type, c.Field, r)
	}
	return nil
}
