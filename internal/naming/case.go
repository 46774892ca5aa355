// Package naming converts identifiers between Go, GraphQL and column casing.
package naming

import (
	"strings"
	"unicode"
)

// ToSnake converts s to snake_case using ASCII-aware rules.
// Punctuation that shows up in reflected type names (pointers, generic
// suffixes, package dots) collapses into a single underscore.
func ToSnake(s string) string {
	if s == "" {
		return ""
	}

	runes := []rune(s)
	var b strings.Builder
	b.Grow(len(runes) + len(runes)/2)

	lastUnderscore := false

	for i := 0; i < len(runes); i++ {
		r := runes[i]

		switch {
		case unicode.IsUpper(r):
			if b.Len() > 0 {
				prev := runes[i-1]
				nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
				if (unicode.IsLower(prev) || unicode.IsDigit(prev) || nextLower) && !lastUnderscore {
					b.WriteByte('_')
				}
			}
			b.WriteRune(unicode.ToLower(r))
			lastUnderscore = false

		case unicode.IsLower(r), unicode.IsDigit(r):
			b.WriteRune(r)
			lastUnderscore = false

		default:
			if !lastUnderscore && b.Len() > 0 {
				b.WriteByte('_')
				lastUnderscore = true
			}
		}
	}

	return strings.Trim(b.String(), "_")
}

// ToCamel converts a snake_case identifier to lowerCamelCase.
// Leading underscores are kept so private keys stay private.
func ToCamel(s string) string {
	if s == "" {
		return ""
	}

	prefix := len(s) - len(strings.TrimLeft(s, "_"))
	parts := strings.Split(s[prefix:], "_")

	var b strings.Builder
	b.WriteString(s[:prefix])
	for i, p := range parts {
		if p == "" {
			continue
		}
		if i == 0 {
			b.WriteString(p)
			continue
		}
		runes := []rune(p)
		runes[0] = unicode.ToUpper(runes[0])
		b.WriteString(string(runes))
	}
	return b.String()
}

// Camelize converts every map key in data to lowerCamelCase, recursing into
// nested maps and slices. Non container values are returned unchanged.
func Camelize(data any) any {
	switch v := data.(type) {
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, val := range v {
			out[ToCamel(k)] = Camelize(val)
		}
		return out
	case map[string][]string:
		out := make(map[string][]string, len(v))
		for k, val := range v {
			out[ToCamel(k)] = val
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, val := range v {
			out[i] = Camelize(val)
		}
		return out
	default:
		return data
	}
}

// SnakeKeys returns a copy of m with every key converted to snake_case.
func SnakeKeys(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[ToSnake(k)] = v
	}
	return out
}
