// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/stacklok/remap-core/tree"
)

// Check is one predicate over a resolved value. present is false when the
// path matched nothing; checks other than Required treat absent values as
// passing so that optional fields validate cleanly.
type Check interface {
	// Name identifies the check in failure codes and descriptions.
	Name() string
	// Check reports whether the value passes, with a message when it does
	// not.
	Check(v tree.Value, present bool) (ok bool, detail string)
}

type check struct {
	name string
	fn   func(v tree.Value, present bool) (bool, string)
}

func (c check) Name() string { return c.name }

func (c check) Check(v tree.Value, present bool) (bool, string) {
	return c.fn(v, present)
}

// Required fails when the path resolves to nothing. A stored Null counts
// as present; use NonEmpty to reject it.
func Required() Check {
	return check{name: "required", fn: func(_ tree.Value, present bool) (bool, string) {
		if !present {
			return false, "value is required"
		}
		return true, ""
	}}
}

// NonEmpty fails on Null, empty text, and empty containers. Absent values
// pass; combine with Required to reject those too.
func NonEmpty() Check {
	return check{name: "non-empty", fn: func(v tree.Value, present bool) (bool, string) {
		if !present {
			return true, ""
		}
		switch val := v.(type) {
		case tree.Null:
			return false, "value must not be null"
		case tree.Text:
			if strings.TrimSpace(string(val)) == "" {
				return false, "value must not be empty"
			}
		case tree.Array:
			if len(val) == 0 {
				return false, "array must not be empty"
			}
		case *tree.Object:
			if val.Len() == 0 {
				return false, "object must not be empty"
			}
		}
		return true, ""
	}}
}

// TypeIs fails when the value's kind differs from want.
func TypeIs(want tree.Kind) Check {
	return check{name: "type-is", fn: func(v tree.Value, present bool) (bool, string) {
		if !present {
			return true, ""
		}
		if v.Kind() != want {
			return false, fmt.Sprintf("expected %s, got %s", want, v.Kind())
		}
		return true, ""
	}}
}

// Range fails when a numeric value falls outside [min, max]. Pass
// math.Inf(-1) or math.Inf(1) to leave an end open. Non-numeric values
// fail.
func Range(min, max float64) Check {
	return check{name: "range", fn: func(v tree.Value, present bool) (bool, string) {
		if !present {
			return true, ""
		}
		n, isNum := v.(tree.Number)
		if !isNum {
			return false, fmt.Sprintf("expected number, got %s", v.Kind())
		}
		if float64(n) < min || float64(n) > max {
			return false, fmt.Sprintf("value %v outside range [%v, %v]", float64(n), min, max)
		}
		return true, ""
	}}
}

// Length fails when the value's length falls outside [min, max]. Length is
// rune count for text, element count for arrays, and key count for
// objects; other kinds fail. A negative max means unbounded.
func Length(min, max int) Check {
	return check{name: "length", fn: func(v tree.Value, present bool) (bool, string) {
		if !present {
			return true, ""
		}
		var n int
		switch val := v.(type) {
		case tree.Text:
			n = utf8.RuneCountInString(string(val))
		case tree.Array:
			n = len(val)
		case *tree.Object:
			n = val.Len()
		default:
			return false, fmt.Sprintf("cannot take length of %s", v.Kind())
		}
		if n < min || (max >= 0 && n > max) {
			return false, fmt.Sprintf("length %d outside range [%d, %d]", n, min, max)
		}
		return true, ""
	}}
}

// Pattern fails when text does not match re. Non-text values fail.
func Pattern(re *regexp.Regexp) Check {
	return check{name: "pattern", fn: func(v tree.Value, present bool) (bool, string) {
		if !present {
			return true, ""
		}
		s, isText := v.(tree.Text)
		if !isText {
			return false, fmt.Sprintf("expected text, got %s", v.Kind())
		}
		if !re.MatchString(string(s)) {
			return false, fmt.Sprintf("value %q does not match %s", string(s), re)
		}
		return true, ""
	}}
}

// OneOf fails when the value equals none of the allowed values.
func OneOf(allowed ...tree.Value) Check {
	return check{name: "one-of", fn: func(v tree.Value, present bool) (bool, string) {
		if !present {
			return true, ""
		}
		for _, a := range allowed {
			if tree.Equal(v, a) {
				return true, ""
			}
		}
		return false, fmt.Sprintf("value %s is not one of the allowed values", v)
	}}
}
