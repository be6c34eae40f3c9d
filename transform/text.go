// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package transform

import (
	"strings"
	"unicode"

	"github.com/stacklok/remap-core/tree"
)

// asText coerces scalar input for text transformers: Null becomes empty
// text, other scalars render canonically. Containers are not coerced.
func asText(v tree.Value) (string, bool) {
	switch t := v.(type) {
	case nil, tree.Null:
		return "", true
	case tree.Text:
		return string(t), true
	case tree.Bool, tree.Number:
		return v.String(), true
	default:
		return "", false
	}
}

// textFunc lifts a string function into a transformer under the text
// fallback policy.
func textFunc(fn func(string) string) Func {
	return func(v tree.Value) tree.Value {
		s, ok := asText(v)
		if !ok {
			return v
		}
		return tree.Text(fn(s))
	}
}

// Uppercase maps text to upper case.
func Uppercase() Func { return textFunc(strings.ToUpper) }

// Lowercase maps text to lower case.
func Lowercase() Func { return textFunc(strings.ToLower) }

// Trim removes leading and trailing whitespace.
func Trim() Func { return textFunc(strings.TrimSpace) }

// Title upper-cases the first letter of each whitespace-separated word and
// lower-cases the rest.
func Title() Func {
	return textFunc(func(s string) string {
		var sb strings.Builder
		sb.Grow(len(s))
		startWord := true
		for _, r := range s {
			switch {
			case unicode.IsSpace(r):
				startWord = true
				sb.WriteRune(r)
			case startWord:
				startWord = false
				sb.WriteRune(unicode.ToUpper(r))
			default:
				sb.WriteRune(unicode.ToLower(r))
			}
		}
		return sb.String()
	})
}

// Replace substitutes every occurrence of old with new.
func Replace(old, new string) Func {
	return textFunc(func(s string) string {
		return strings.ReplaceAll(s, old, new)
	})
}

// Prefix prepends p.
func Prefix(p string) Func {
	return textFunc(func(s string) string { return p + s })
}

// Suffix appends p.
func Suffix(p string) Func {
	return textFunc(func(s string) string { return s + p })
}

// Truncate cuts text to at most n runes. Non-positive n yields empty text.
func Truncate(n int) Func {
	return textFunc(func(s string) string {
		if n <= 0 {
			return ""
		}
		runes := []rune(s)
		if len(runes) <= n {
			return s
		}
		return string(runes[:n])
	})
}
