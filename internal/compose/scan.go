package compose

type tokenKind int

const (
	tokenName tokenKind = iota
	tokenPunct
	tokenString
)

type token struct {
	kind tokenKind
	text string
	line int // logical line within the fragment, 0-based
}

func (t token) is(kind tokenKind, text string) bool {
	return t.kind == kind && t.text == text
}

// lex splits SDL text into names, punctuators and string literals.
// Whitespace, commas and comments are dropped. Unterminated strings end at
// the end of the input (block strings) or of the line (plain strings), since
// a fragment may stop anywhere.
func lex(src string) []token {
	var out []token
	line := 0
	for i := 0; i < len(src); {
		c := src[i]
		switch {
		case c == '\n':
			line++
			i++
		case c == ' ' || c == '\t' || c == '\r' || c == ',':
			i++
		case c == '#':
			for i < len(src) && src[i] != '\n' {
				i++
			}
		case c == '"':
			start, startLine := i, line
			if i+2 < len(src) && src[i+1] == '"' && src[i+2] == '"' {
				i += 3
				for i < len(src) {
					if src[i] == '\\' && i+3 < len(src) && src[i+1:i+4] == `"""` {
						i += 4
						continue
					}
					if i+2 < len(src) && src[i:i+3] == `"""` {
						i += 3
						break
					}
					if src[i] == '\n' {
						line++
					}
					i++
				}
			} else {
				i++
				for i < len(src) && src[i] != '"' && src[i] != '\n' {
					if src[i] == '\\' {
						i++
					}
					i++
				}
				if i < len(src) && src[i] == '"' {
					i++
				}
			}
			if i > len(src) {
				i = len(src)
			}
			out = append(out, token{kind: tokenString, text: src[start:i], line: startLine})
		case isNameStart(c):
			start := i
			for i < len(src) && isNameContinue(src[i]) {
				i++
			}
			out = append(out, token{kind: tokenName, text: src[start:i], line: line})
		default:
			out = append(out, token{kind: tokenPunct, text: src[i : i+1], line: line})
			i++
		}
	}
	return out
}

func isNameStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isNameContinue(c byte) bool {
	return isNameStart(c) || (c >= '0' && c <= '9')
}

// skipGroup returns the index just past the group opened at toks[i].
// Unbalanced groups run to the end of the slice.
func skipGroup(toks []token, i int, open, close string) int {
	depth := 0
	for ; i < len(toks); i++ {
		switch {
		case toks[i].is(tokenPunct, open):
			depth++
		case toks[i].is(tokenPunct, close):
			depth--
			if depth == 0 {
				return i + 1
			}
		}
	}
	return len(toks)
}

// typeOpening is a `type Name ... {` occurrence.
type typeOpening struct {
	name  string
	brace int // token index of the opening brace
}

// lastTypeOpening finds the opening closest to the end of toks.
func lastTypeOpening(toks []token) (typeOpening, bool) {
	var (
		found typeOpening
		ok    bool
	)
	for i := 0; i+1 < len(toks); i++ {
		if !toks[i].is(tokenName, "type") || toks[i+1].kind != tokenName {
			continue
		}
		if brace, isOpening := openingBrace(toks, i+2); isOpening {
			found, ok = typeOpening{name: toks[i+1].text, brace: brace}, true
		}
	}
	return found, ok
}

// openingBrace walks the implements clause and directives that may sit
// between a type name and its body. Anything else, such as the keyword of a
// following definition, means the type has no body here.
func openingBrace(toks []token, i int) (int, bool) {
	if i < len(toks) && toks[i].is(tokenName, "implements") {
		i++
		if i < len(toks) && toks[i].is(tokenPunct, "&") {
			i++
		}
		if i >= len(toks) || toks[i].kind != tokenName {
			return 0, false
		}
		i++
		for i+1 < len(toks) && toks[i].is(tokenPunct, "&") && toks[i+1].kind == tokenName {
			i += 2
		}
	}
	for i+1 < len(toks) && toks[i].is(tokenPunct, "@") && toks[i+1].kind == tokenName {
		i += 2
		if i < len(toks) && toks[i].is(tokenPunct, "(") {
			i = skipGroup(toks, i, "(", ")")
		}
	}
	if i < len(toks) && toks[i].is(tokenPunct, "{") {
		return i, true
	}
	return 0, false
}

// lastFieldDeclaration locates the last `name[(args)]:` on the final line of
// toks and returns the token index of its name.
func lastFieldDeclaration(toks []token) (int, bool) {
	if len(toks) == 0 {
		return 0, false
	}
	lastLine := toks[len(toks)-1].line
	start := len(toks) - 1
	for start > 0 && toks[start-1].line == lastLine {
		start--
	}
	// An argument list that spans lines leaves only `): Type` on the last line.
	if toks[start].is(tokenPunct, ")") {
		depth := 0
		for j := start; j >= 0; j-- {
			if toks[j].is(tokenPunct, ")") {
				depth++
			} else if toks[j].is(tokenPunct, "(") {
				depth--
				if depth == 0 {
					start = max(j-1, 0)
					break
				}
			}
		}
	}

	idx, found := 0, false
	for i := start; i < len(toks); {
		t := toks[i]
		switch {
		case t.is(tokenPunct, "("):
			i = skipGroup(toks, i, "(", ")")
		case t.is(tokenPunct, "["):
			i = skipGroup(toks, i, "[", "]")
		case t.is(tokenPunct, "{") && i > 0 && toks[i-1].is(tokenPunct, "="):
			i = skipGroup(toks, i, "{", "}")
		case t.kind == tokenName:
			next := i + 1
			if next < len(toks) && toks[next].is(tokenPunct, "(") {
				next = skipGroup(toks, next, "(", ")")
			}
			if next < len(toks) && toks[next].is(tokenPunct, ":") && !precededByAt(toks, i) {
				idx, found = i, true
				i = next + 1
				continue
			}
			i++
		default:
			i++
		}
	}
	return idx, found
}

func precededByAt(toks []token, i int) bool {
	return i > 0 && toks[i-1].is(tokenPunct, "@")
}

// enclosingBrace reports the index of the innermost brace still open at
// token index until, and whether a closing brace without a matching opening
// occurred before it.
func enclosingBrace(toks []token, until int) (idx int, open bool, underflow bool) {
	var stack []int
	for i := 0; i < until && i < len(toks); i++ {
		switch {
		case toks[i].is(tokenPunct, "{"):
			stack = append(stack, i)
		case toks[i].is(tokenPunct, "}"):
			if len(stack) == 0 {
				underflow = true
				continue
			}
			stack = stack[:len(stack)-1]
		}
	}
	if len(stack) == 0 {
		return 0, false, underflow
	}
	return stack[len(stack)-1], true, underflow
}

// closesAfter reports whether a brace opened before toks[decl] is closed
// after it.
func closesAfter(toks []token, decl int) bool {
	depth := 0
	for i := decl + 1; i < len(toks); i++ {
		switch {
		case toks[i].is(tokenPunct, "{"):
			depth++
		case toks[i].is(tokenPunct, "}"):
			if depth == 0 {
				return true
			}
			depth--
		}
	}
	return false
}
