package util

import (
	"strings"
	"unicode"

	"github.com/teranos/zorsh-gen/errors"
)

// FieldCase selects how Go field names are rewritten when no tag names them.
type FieldCase string

const (
	CasePreserve FieldCase = "preserve"
	CaseSnake    FieldCase = "snake"
	CaseCamel    FieldCase = "camel"
)

// ParseFieldCase accepts the config spelling of a FieldCase. Empty means preserve.
func ParseFieldCase(s string) (FieldCase, error) {
	switch FieldCase(s) {
	case "", CasePreserve:
		return CasePreserve, nil
	case CaseSnake, CaseCamel:
		return FieldCase(s), nil
	}
	return "", errors.Newf("unknown field case %q (expected preserve, snake or camel)", s)
}

// Apply rewrites a Go identifier according to c.
func (c FieldCase) Apply(name string) string {
	switch c {
	case CaseSnake:
		return ToSnakeCase(name)
	case CaseCamel:
		return ToCamelCase(ToSnakeCase(name))
	default:
		return name
	}
}

// ToSnakeCase converts PascalCase or camelCase to snake_case.
// Acronyms stay together: "HTTPServerID" -> "http_server_id".
func ToSnakeCase(s string) string {
	var out strings.Builder
	runes := []rune(s)

	for i, r := range runes {
		if i > 0 && unicode.IsUpper(r) {
			prevUpper := unicode.IsUpper(runes[i-1])
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if (!prevUpper || nextLower) && runes[i-1] != '_' {
				out.WriteRune('_')
			}
		}
		out.WriteRune(unicode.ToLower(r))
	}
	return out.String()
}

// ToPascalCase converts snake_case or kebab-case to PascalCase
func ToPascalCase(s string) string {
	parts := strings.FieldsFunc(s, func(r rune) bool {
		return r == '_' || r == '-'
	})

	var out strings.Builder
	for _, part := range parts {
		runes := []rune(part)
		out.WriteRune(unicode.ToUpper(runes[0]))
		out.WriteString(string(runes[1:]))
	}
	return out.String()
}

// ToCamelCase converts snake_case or kebab-case to camelCase
func ToCamelCase(s string) string {
	runes := []rune(ToPascalCase(s))
	if len(runes) == 0 {
		return ""
	}
	runes[0] = unicode.ToLower(runes[0])
	return string(runes)
}
