// Package project composes every source of a Discovery into one schema and
// one resolver map, optionally validating the result.
package project

import (
	"context"
	"errors"
	"time"

	compose "github.com/hanpama/sdlcompose/internal/compose"
	eventbus "github.com/hanpama/sdlcompose/internal/eventbus"
	events "github.com/hanpama/sdlcompose/internal/events"
	schema "github.com/hanpama/sdlcompose/internal/schema"
	source "github.com/hanpama/sdlcompose/internal/source"
)

// Project is the composition of all sources.
type Project struct {
	Files     []*source.File
	Resolvers *compose.ResolverMap[source.Ref]
	TypeDefs  string
	// Schema is set when the project was built with validation.
	Schema *schema.Schema
}

type Options struct {
	// Validate builds the schema from TypeDefs and checks that every
	// resolver is bound to a field it defines.
	Validate bool
}

type Option func(*Options)

func WithValidation() Option { return func(o *Options) { o.Validate = true } }

// Load discovers, splits and builds.
func Load(ctx context.Context, disc source.Discovery, opts ...Option) (*Project, error) {
	files, err := source.Load(ctx, disc)
	if err != nil {
		return nil, err
	}
	return Build(ctx, files, opts...)
}

// Build composes each file independently and merges the results in file
// order. Problems tied to a marker are reported as a schema.ValidationError
// carrying the marker's location.
func Build(ctx context.Context, files []*source.File, opts ...Option) (*Project, error) {
	var op Options
	for _, f := range opts {
		f(&op)
	}

	mods := make([]*compose.Module[source.Ref], 0, len(files))
	var violations schema.ValidationError
	for _, f := range files {
		mod, err := composeFile(ctx, f)
		if err != nil {
			var bindErrs compose.BindErrors
			if !errors.As(err, &bindErrs) {
				return nil, err
			}
			for _, be := range bindErrs {
				violations = append(violations, locate(&schema.Violation{
					Message:    be.Err.Error(),
					Coordinate: be.Coordinate.String(),
				}, f.Refs[be.Position]))
			}
			continue
		}
		mods = append(mods, mod)
	}
	if len(violations) > 0 {
		return nil, violations
	}

	merged, err := compose.Merge(mods...)
	if err != nil {
		return nil, err
	}
	p := &Project{Files: files, Resolvers: merged.Resolvers, TypeDefs: merged.TypeDefs}
	if !op.Validate {
		return p, nil
	}
	if err := p.validate(ctx); err != nil {
		return nil, err
	}
	return p, nil
}

func composeFile(ctx context.Context, f *source.File) (*compose.Module[source.Ref], error) {
	start := time.Now()
	eventbus.Publish(ctx, events.ComposeStart{Source: f.Name, Fragments: len(f.Fragments), Resolvers: len(f.Refs)})
	mod, err := compose.Extract(f.Fragments, f.Refs)
	finish := events.ComposeFinish{Source: f.Name, Err: err, Duration: time.Since(start)}
	if mod != nil {
		finish.Bindings = mod.Resolvers.Len()
	}
	eventbus.Publish(ctx, finish)
	return mod, err
}

func (p *Project) validate(ctx context.Context) error {
	start := time.Now()
	s, err := schema.Build("composed.graphql", p.TypeDefs)
	if err == nil {
		err = schema.CheckBindings(s, p.Resolvers.Coordinates())
	}
	finish := events.ValidateFinish{Err: err, Start: start, Duration: time.Since(start)}
	if s != nil {
		finish.Types = len(s.Types)
	}
	eventbus.Publish(ctx, finish)

	var violations schema.ValidationError
	if errors.As(err, &violations) {
		for _, v := range violations {
			if ref, ok := p.refFor(v.Coordinate); ok {
				locate(v, ref)
			}
		}
		return violations
	}
	if err != nil {
		return err
	}
	p.Schema = s
	return nil
}

func (p *Project) refFor(coord string) (source.Ref, bool) {
	for _, c := range p.Resolvers.Coordinates() {
		if c.String() == coord {
			return p.Resolvers.Get(c.Type, c.Field)
		}
	}
	return source.Ref{}, false
}

func locate(v *schema.Violation, ref source.Ref) *schema.Violation {
	v.File, v.Line, v.Column = ref.File, ref.Line, ref.Column
	return v
}

// Bindings returns the resolver names keyed by type and field.
func (p *Project) Bindings() map[string]map[string]string {
	out := make(map[string]map[string]string)
	for _, c := range p.Resolvers.Coordinates() {
		if out[c.Type] == nil {
			out[c.Type] = make(map[string]string)
		}
		ref, _ := p.Resolvers.Get(c.Type, c.Field)
		out[c.Type][c.Field] = ref.Name
	}
	return out
}
