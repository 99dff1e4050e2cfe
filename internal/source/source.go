// Package source turns SDL files with resolver markers into composition
// input. A marker is written `${name}` where the SDL would have a resolver,
// name being a dotted identifier such as `users.byID`.
package source

import (
	"fmt"
	"strings"
)

// Ref is the resolver a marker refers to, with the marker's location.
type Ref struct {
	Name   string `json:"name"`
	File   string `json:"file,omitempty"`
	Line   int    `json:"line"`
	Column int    `json:"column"`
}

func (r Ref) String() string {
	if r.File == "" {
		return fmt.Sprintf("%s (%d:%d)", r.Name, r.Line, r.Column)
	}
	return fmt.Sprintf("%s (%s:%d:%d)", r.Name, r.File, r.Line, r.Column)
}

// File is one source split at its markers.
// len(Fragments) == len(Refs)+1.
type File struct {
	Name      string
	Fragments []string
	Refs      []Ref
}

// SyntaxError reports a malformed marker.
type SyntaxError struct {
	File    string
	Line    int
	Column  int
	Message string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s:%d:%d: %s", e.File, e.Line, e.Column, e.Message)
}

// Split cuts text at every `${name}` marker. Lines and columns are 1-based.
func Split(name, text string) (*File, error) {
	f := &File{Name: name}
	var cur strings.Builder
	line, col := 1, 1
	for i := 0; i < len(text); {
		if text[i] == '$' && i+1 < len(text) && text[i+1] == '{' {
			end := strings.IndexByte(text[i:], '}')
			if end < 0 {
				return nil, &SyntaxError{File: name, Line: line, Column: col, Message: "unterminated resolver marker"}
			}
			ref := strings.TrimSpace(text[i+2 : i+end])
			if !validRefName(ref) {
				return nil, &SyntaxError{File: name, Line: line, Column: col, Message: fmt.Sprintf("invalid resolver name %q", ref)}
			}
			f.Fragments = append(f.Fragments, cur.String())
			f.Refs = append(f.Refs, Ref{Name: ref, File: name, Line: line, Column: col})
			cur.Reset()
			marker := text[i : i+end+1]
			if n := strings.Count(marker, "\n"); n > 0 {
				line += n
				col = len(marker) - strings.LastIndexByte(marker, '\n')
			} else {
				col += len(marker)
			}
			i += end + 1
			continue
		}
		cur.WriteByte(text[i])
		if text[i] == '\n' {
			line, col = line+1, 1
		} else {
			col++
		}
		i++
	}
	f.Fragments = append(f.Fragments, cur.String())
	return f, nil
}

func validRefName(s string) bool {
	if s == "" {
		return false
	}
	for _, part := range strings.Split(s, ".") {
		if part == "" {
			return false
		}
		for i := 0; i < len(part); i++ {
			c := part[i]
			letter := c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
			if !letter && (i == 0 || c < '0' || c > '9') {
				return false
			}
		}
	}
	return true
}
