package project

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	compose "github.com/hanpama/sdlcompose/internal/compose"
	eventbus "github.com/hanpama/sdlcompose/internal/eventbus"
	events "github.com/hanpama/sdlcompose/internal/events"
	schema "github.com/hanpama/sdlcompose/internal/schema"
	source "github.com/hanpama/sdlcompose/internal/source"
	"github.com/stretchr/testify/require"
)

const usersSDL = `type Query {
  me: User
  ${users.me}
}

type User {
  id: ID!
  name: String!
}
`

const postsSDL = `type Post {
  id: ID!
  author: User!
  ${posts.author}
}

extend type User {
  posts: [Post!]!
  ${posts.byUser}
}
`

func newDiscovery(srcs ...source.InMemorySource) source.Discovery {
	return source.NewInMemoryDiscovery(srcs)
}

func TestLoad(t *testing.T) {
	p, err := Load(context.Background(), newDiscovery(
		source.InMemorySource{Name: "users.graphql", Content: usersSDL},
		source.InMemorySource{Name: "posts.graphql", Content: postsSDL},
	), WithValidation())
	require.NoError(t, err)

	want := map[string]map[string]string{
		"Query": {"me": "users.me"},
		"Post":  {"author": "posts.author"},
		"User":  {"posts": "posts.byUser"},
	}
	if diff := cmp.Diff(want, p.Bindings()); diff != "" {
		t.Fatalf("bindings mismatch (-want +got):\n%s", diff)
	}
	require.NotContains(t, p.TypeDefs, "${")
	require.NotContains(t, p.TypeDefs, "\n\n")
	require.NotNil(t, p.Schema)
	require.NotNil(t, p.Schema.Types["User"].Field("posts"))

	ref, ok := p.Resolvers.Get("User", "posts")
	require.True(t, ok)
	require.Equal(t, source.Ref{Name: "posts.byUser", File: "posts.graphql", Line: 9, Column: 3}, ref)
}

func TestLoad_WithoutValidation(t *testing.T) {
	p, err := Load(context.Background(), newDiscovery(
		source.InMemorySource{Name: "posts.graphql", Content: postsSDL},
	))
	require.NoError(t, err)
	require.Nil(t, p.Schema)
	require.Equal(t, 2, p.Resolvers.Len())
}

func TestLoad_BindErrorsAreLocated(t *testing.T) {
	_, err := Load(context.Background(), newDiscovery(
		source.InMemorySource{Name: "bad.graphql", Content: "scalar Time\n  at: Time\n  ${clock.now}\n"},
	))
	var violations schema.ValidationError
	require.ErrorAs(t, err, &violations)
	require.Len(t, violations, 1)
	require.Equal(t, "bad.graphql", violations[0].File)
	require.Equal(t, 3, violations[0].Line)
	require.Equal(t, 3, violations[0].Column)
	require.Contains(t, violations[0].Message, compose.ErrUnresolvedType.Error())
}

func TestLoad_DuplicateBindingAcrossFiles(t *testing.T) {
	_, err := Load(context.Background(), newDiscovery(
		source.InMemorySource{Name: "users.graphql", Content: usersSDL},
		source.InMemorySource{Name: "dup.graphql", Content: "extend type Query {\n  me: User\n  ${users.me2}\n}\n"},
	))
	require.ErrorIs(t, err, compose.ErrDuplicate)
}

func TestLoad_ValidationFailure(t *testing.T) {
	_, err := Load(context.Background(), newDiscovery(
		source.InMemorySource{Name: "users.graphql", Content: "type Query {\n  me: Missing\n  ${users.me}\n}\n"},
	), WithValidation())
	require.Error(t, err)
}

func TestLoad_PublishesEvents(t *testing.T) {
	eventbus.Use(eventbus.New())
	defer eventbus.Use(nil)

	var started []string
	var finished []events.ComposeFinish
	var validated []events.ValidateFinish
	defer eventbus.Subscribe(func(_ context.Context, e events.ComposeStart) { started = append(started, e.Source) })()
	defer eventbus.Subscribe(func(_ context.Context, e events.ComposeFinish) { finished = append(finished, e) })()
	defer eventbus.Subscribe(func(_ context.Context, e events.ValidateFinish) { validated = append(validated, e) })()

	_, err := Load(context.Background(), newDiscovery(
		source.InMemorySource{Name: "users.graphql", Content: usersSDL},
		source.InMemorySource{Name: "posts.graphql", Content: postsSDL},
	), WithValidation())
	require.NoError(t, err)

	require.Equal(t, []string{"users.graphql", "posts.graphql"}, started)
	require.Len(t, finished, 2)
	require.Equal(t, 2, finished[1].Bindings)
	require.Len(t, validated, 1)
	require.NoError(t, validated[0].Err)
	require.Equal(t, 3, validated[0].Types)
}
