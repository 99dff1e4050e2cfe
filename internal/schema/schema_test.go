package schema

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/hanpama/sdlcompose/internal/compose"
	"github.com/stretchr/testify/require"
)

func TestBuildFromSDL(t *testing.T) {
	s, err := BuildFromSDL(mustReadFile(t, "testdata/base.graphql") + mustReadFile(t, "testdata/extensions.graphql"))
	require.NoError(t, err)

	require.Equal(t, "Query", s.QueryType)
	require.Empty(t, s.MutationType)
	require.NotContains(t, s.Types, "String")
	require.NotContains(t, s.Types, "__Schema")
	require.NotContains(t, s.Directives, "skip")
	require.Contains(t, s.Directives, "cacheControl")

	query := s.GetQueryType()
	require.NotNil(t, query)
	require.Equal(t, "Root query.", query.Description)
	require.Nil(t, query.Field("__schema"))

	user := s.Types["User"]
	require.Equal(t, TypeKindObject, user.Kind)
	require.Equal(t, []string{"Node"}, user.Interfaces)
	var names []string
	for _, f := range user.Fields {
		names = append(names, f.Name)
	}
	require.Equal(t, []string{"id", "name", "nickname", "role", "createdAt", "posts"}, names)
	require.True(t, user.Field("nickname").IsDeprecated)
	require.Equal(t, "use name", user.Field("nickname").DeprecationReason)
	require.Equal(t, "[Post!]!", user.Field("posts").Type.String())

	users := query.Field("users")
	require.Equal(t, int64(10), users.Arguments[0].DefaultValue)
	require.Equal(t, EnumLiteral("MEMBER"), users.Arguments[1].DefaultValue)

	filter := user.Field("posts").Arguments[0].DefaultValue
	require.Equal(t, map[string]any{"tags": []any{"go"}, "limit": int64(5)}, filter)

	require.Equal(t, []string{"User", "Post"}, s.Types["SearchResult"].PossibleTypes)
	require.Equal(t, "https://tools.ietf.org/html/rfc3339", *s.Types["Time"].SpecifiedByURL)
	require.True(t, s.Directives["cacheControl"].IsRepeatable)
	require.Equal(t, []string{"FIELD_DEFINITION", "OBJECT"}, s.Directives["cacheControl"].Locations)
}

func TestBuildFromSDL_Invalid(t *testing.T) {
	_, err := BuildFromSDL("extend type Missing { a: Int }\n")
	require.Error(t, err)

	_, err = BuildFromSDL("type Query { a: Unknown }\n")
	require.Error(t, err)
}

func TestRender(t *testing.T) {
	s, err := BuildFromSDL("type User {\n  id: ID!\n  tags: [String!]\n}\n\ntype Query {\n  user(id: ID!, limit: Int = 3): User\n}\n")
	require.NoError(t, err)

	want := "type Query {\n  user(id: ID!, limit: Int = 3): User\n}\n\ntype User {\n  id: ID!\n  tags: [String!]\n}\n"
	if diff := cmp.Diff(want, Render(s)); diff != "" {
		t.Errorf("Render mismatch (-want +got):\n%s", diff)
	}
}

func TestRender_SchemaDefinition(t *testing.T) {
	s, err := BuildFromSDL("schema { query: Root }\ntype Root { ok: Boolean }\n")
	require.NoError(t, err)
	require.Equal(t, "schema {\n  query: Root\n}\n\ntype Root {\n  ok: Boolean\n}\n", Render(s))
}

func TestRender_RoundTrip(t *testing.T) {
	s, err := BuildFromSDL(mustReadFile(t, "testdata/base.graphql") + mustReadFile(t, "testdata/extensions.graphql"))
	require.NoError(t, err)

	again, err := BuildFromSDL(Render(s))
	require.NoError(t, err, "rendered SDL must be valid:\n%s", Render(s))
	if diff := cmp.Diff(s, again); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestSchemaRenderSnapshot(t *testing.T) {
	s, err := Build("composed.graphql", mustReadFile(t, "testdata/base.graphql")+mustReadFile(t, "testdata/extensions.graphql"))
	require.NoError(t, err, "failed to build schema")

	actual := Render(s)

	snapshotPath := filepath.Join("testdata", "schema_rendered.graphql")

	// If snapshot doesn't exist, create it
	if _, err := os.Stat(snapshotPath); os.IsNotExist(err) {
		err := os.WriteFile(snapshotPath, []byte(actual), 0644)
		require.NoError(t, err, "failed to write snapshot file")
		t.Logf("Created snapshot file: %s", snapshotPath)
		return
	}

	expected, err := os.ReadFile(snapshotPath)
	require.NoError(t, err, "failed to read snapshot file")

	if diff := cmp.Diff(string(expected), actual); diff != "" {
		t.Errorf("Rendered schema snapshot mismatch (-want +got):\n%s", diff)
	}
}

func TestCheckBindings(t *testing.T) {
	s, err := BuildFromSDL(mustReadFile(t, "testdata/base.graphql") + mustReadFile(t, "testdata/extensions.graphql"))
	require.NoError(t, err)

	require.NoError(t, CheckBindings(s, []compose.Coordinate{
		{Type: "User", Field: "posts"},
		{Type: "Node", Field: "id"},
		{Type: "Query", Field: "users"},
	}))

	err = CheckBindings(s, []compose.Coordinate{
		{Type: "Query", Field: "user"},
		{Type: "Comment", Field: "body"},
		{Type: "Role", Field: "ADMIN"},
		{Type: "User", Field: "email"},
	})
	var ve ValidationError
	require.ErrorAs(t, err, &ve)
	require.Len(t, ve, 3)
	require.Equal(t, "Comment.body", ve[0].Coordinate)
	require.Contains(t, ve[1].Message, "ENUM")
	require.Contains(t, ve[2].Message, `"email"`)
}

func TestBuildFromSDL_AsComposeTransform(t *testing.T) {
	resolveUser := func(id string) string { return id }
	fragments, resolvers := compose.Interleave(`
    type Query {
      user(id: ID!): User
      `, resolveUser, `
    }

    type User {
      id: ID!
    }
  `)

	gql := compose.WithTransform[any](BuildFromSDL)
	res, err := gql(fragments, resolvers)
	require.NoError(t, err)
	require.NotNil(t, res.TypeDefs.Types["User"])
	require.Equal(t, []compose.Coordinate{{Type: "Query", Field: "user"}}, res.Resolvers.Coordinates())
	require.NoError(t, CheckBindings(res.TypeDefs, res.Resolvers.Coordinates()))

	_, err = gql([]string{"type Query {\n  a: Nope\n", "\n}\n"}, []any{resolveUser})
	require.Error(t, err)
}

func mustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	require.NoError(t, err, "failed to read file: %s", path)
	return string(content)
}
