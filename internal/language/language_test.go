package language

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseSchema(t *testing.T) {
	doc, err := ParseSchema("user.graphql", "type User { id: ID! }\nextend type User { name: String }\n")
	require.NoError(t, err)
	require.Len(t, doc.Definitions, 1)
	require.Len(t, doc.Extensions, 1)
	require.Equal(t, "User", doc.Extensions[0].Name)
}

func TestParseSchema_SyntaxError(t *testing.T) {
	_, err := ParseSchema("bad.graphql", "type User {")
	require.Error(t, err)
	var gerr *Error
	require.True(t, errors.As(err, &gerr))
}

func TestLoadSchema_MergesExtensions(t *testing.T) {
	s, err := LoadSchema("schema.graphql", "type Query { user: User }\ntype User { id: ID! }\nextend type User { name: String }\n")
	require.NoError(t, err)
	user := s.Types["User"]
	require.NotNil(t, user)
	require.NotNil(t, user.Fields.ForName("name"))
	require.True(t, s.Types["String"].BuiltIn)
	require.False(t, IsBuiltIn(user.Position))
	require.True(t, IsBuiltIn(s.Directives["skip"].Position))
}

func TestLoadSchema_ValidationError(t *testing.T) {
	_, err := LoadSchema("schema.graphql", "extend type Missing { a: Int }\n")
	require.Error(t, err)
}
