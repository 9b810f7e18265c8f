package util

import (
	"go/ast"
	"strings"
)

// DirectivePrefix marks generator directives in doc comments, e.g. //zorsh:generate.
const DirectivePrefix = "zorsh:"

// Directives returns the zorsh directives of a doc comment, without the prefix.
// "//zorsh:enum" yields "enum".
func Directives(doc *ast.CommentGroup) []string {
	if doc == nil {
		return nil
	}
	var out []string
	for _, c := range doc.List {
		if name, ok := strings.CutPrefix(c.Text, "//"+DirectivePrefix); ok {
			out = append(out, strings.TrimSpace(name))
		}
	}
	return out
}

// HasDirective reports whether doc carries //zorsh:<name>.
func HasDirective(doc *ast.CommentGroup, name string) bool {
	for _, d := range Directives(doc) {
		if d == name {
			return true
		}
	}
	return false
}

// DocText returns the prose of a doc comment: comment markers removed, directives
// and trailing blank lines dropped, inner line breaks kept.
func DocText(doc *ast.CommentGroup) string {
	if doc == nil {
		return ""
	}
	var lines []string
	for _, c := range doc.List {
		if isDirective(c.Text) {
			continue
		}
		for _, line := range strings.Split(CleanCommentText(c.Text), "\n") {
			lines = append(lines, strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), "*")))
		}
	}
	for len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	for len(lines) > 0 && lines[0] == "" {
		lines = lines[1:]
	}
	return strings.Join(lines, "\n")
}

// CleanCommentText removes comment markers and trims whitespace
func CleanCommentText(text string) string {
	text = strings.TrimPrefix(text, "//")
	text = strings.TrimPrefix(text, "/**")
	text = strings.TrimPrefix(text, "/*")
	text = strings.TrimSuffix(text, "*/")
	return strings.TrimSpace(text)
}

// isDirective matches //go:generate style lines: no space after the slashes and
// a lowercase word followed by a colon.
func isDirective(text string) bool {
	rest, ok := strings.CutPrefix(text, "//")
	if !ok {
		return false
	}
	colon := strings.Index(rest, ":")
	if colon <= 0 {
		return false
	}
	for _, r := range rest[:colon] {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return false
		}
	}
	return true
}
