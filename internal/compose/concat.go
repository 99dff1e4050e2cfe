package compose

import "strings"

// Concat joins fragments in order and drops every empty or whitespace-only
// line. Surviving lines, including their terminators, are left untouched.
func Concat(fragments []string) string {
	var b strings.Builder
	for _, line := range strings.SplitAfter(strings.Join(fragments, ""), "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		b.WriteString(line)
	}
	return b.String()
}
