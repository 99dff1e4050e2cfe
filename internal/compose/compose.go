package compose

import "strings"

// Module is the result of a composition.
type Module[R any] struct {
	Resolvers *ResolverMap[R]
	TypeDefs  string
}

// Extract binds resolvers to the fragments preceding them and concatenates
// the fragments into TypeDefs.
func Extract[R any](fragments []string, resolvers []R) (*Module[R], error) {
	rm, err := Bind(fragments, resolvers)
	if err != nil {
		return nil, err
	}
	return &Module[R]{Resolvers: rm, TypeDefs: Concat(fragments)}, nil
}

// Transformed is a Module whose TypeDefs went through a transform.
type Transformed[R, T any] struct {
	Resolvers *ResolverMap[R]
	TypeDefs  T
}

// Composer runs a composition followed by a transform.
type Composer[R, T any] func(fragments []string, resolvers []R) (*Transformed[R, T], error)

// WithTransform returns a Composer that hands the composed text to transform
// exactly once and stores its result as TypeDefs. An error from transform is
// returned as is. Binding errors are returned before transform is called.
//
//	gql := compose.WithTransform[any](schema.BuildFromSDL)
func WithTransform[R, T any](transform func(string) (T, error)) Composer[R, T] {
	return func(fragments []string, resolvers []R) (*Transformed[R, T], error) {
		mod, err := Extract(fragments, resolvers)
		if err != nil {
			return nil, err
		}
		out, err := transform(mod.TypeDefs)
		if err != nil {
			return nil, err
		}
		return &Transformed[R, T]{Resolvers: mod.Resolvers, TypeDefs: out}, nil
	}
}

// Compose interleaves parts and extracts the result.
func Compose(parts ...any) (*Module[any], error) {
	fragments, resolvers := Interleave(parts...)
	return Extract(fragments, resolvers)
}

// Merge combines independently composed modules. Type definitions are
// concatenated in argument order; binding the same coordinate in two modules
// is an ErrDuplicate error. Nil modules are skipped.
func Merge[R any](mods ...*Module[R]) (*Module[R], error) {
	out := &Module[R]{Resolvers: NewResolverMap[R]()}
	defs := make([]string, 0, len(mods))
	for _, m := range mods {
		if m == nil {
			continue
		}
		if err := out.Resolvers.Merge(m.Resolvers); err != nil {
			return nil, err
		}
		td := m.TypeDefs
		if td != "" && !strings.HasSuffix(td, "\n") {
			td += "\n"
		}
		defs = append(defs, td)
	}
	out.TypeDefs = Concat(defs)
	return out, nil
}
