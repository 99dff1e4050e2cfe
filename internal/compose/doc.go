// Package compose binds resolver values to the GraphQL schema coordinates
// they are interleaved with, and rebuilds the schema text without them.
//
// # Input
//
// A composition input is an ordered list of SDL fragments and an ordered
// list of resolvers. Resolver k sits between fragment k and fragment k+1:
//
//	fragments[0] resolvers[0] fragments[1] resolvers[1] ... fragments[n]
//
// Interleave produces that shape from a mixed argument list, which is the
// closest Go gets to writing the SDL and its resolvers in one literal:
//
//	mod, err := compose.Compose(`
//	    type User {
//	      name: String!
//	    `, resolveUserName, `
//	    }
//	`)
//
// # Binding
//
// The coordinate of resolver k is read from fragment k only. The field is the
// trailing field declaration of the fragment. The type is the last
// `type Name {` or `extend type Name {` opening in the fragment; when the
// fragment opens no type the type of the previous resolver is carried forward.
// A resolver that ends up without a type or a field is reported as a BindError
// naming its position instead of being stored under a placeholder key.
//
// # Text
//
// TypeDefs is the concatenation of every fragment, including the trailing
// one, with empty and whitespace-only lines removed. The resolver map and the
// text always come from the same call over the same input.
//
// Nothing in this package parses the GraphQL grammar, validates the schema,
// or invokes a resolver. See WithTransform for handing the composed text to a
// parser.
package compose
