package compose

// Interleave splits a mixed argument list into fragments and resolvers.
// Strings extend the current fragment; any other value is a resolver and
// starts a new fragment. The result always has one more fragment than
// resolvers, so adjacent resolvers are separated by an empty fragment.
func Interleave(parts ...any) ([]string, []any) {
	fragments := []string{""}
	var resolvers []any
	for _, p := range parts {
		if s, ok := p.(string); ok {
			fragments[len(fragments)-1] += s
			continue
		}
		resolvers = append(resolvers, p)
		fragments = append(fragments, "")
	}
	return fragments, resolvers
}
