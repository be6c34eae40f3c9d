// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package validation

import (
	"fmt"
	"math"
	"strings"

	"github.com/stacklok/remap-core/pathexpr"
	"github.com/stacklok/remap-core/tree"
)

// SumTolerance is the absolute tolerance applied by SumEquals so that
// floating-point rounding across summed fields does not fail the check.
const SumTolerance = 0.01

// Rule is one unit of validation. Evaluate returns every failure it finds,
// in a stable order.
type Rule interface {
	Evaluate(doc tree.Value) []Failure
	Describe() string
}

// FieldRule resolves one path expression and runs its checks against every
// match. When the path matches nothing the checks see a single absent
// value at the literal path, so Required still fires.
type FieldRule struct {
	expr     string
	path     *pathexpr.Path
	checks   []Check
	severity Severity
	code     string
}

// Field compiles path and builds a rule running checks against it, at
// error severity by default.
func Field(path string, checks ...Check) (*FieldRule, error) {
	p, err := pathexpr.Compile(path)
	if err != nil {
		return nil, err
	}
	if len(checks) == 0 {
		return nil, fmt.Errorf("field rule %q has no checks", path)
	}
	return &FieldRule{
		expr:     path,
		path:     p,
		checks:   checks,
		severity: SeverityError,
	}, nil
}

// WithSeverity changes the severity of failures this rule produces.
func (r *FieldRule) WithSeverity(s Severity) *FieldRule {
	r.severity = s
	return r
}

// WithCode tags failures this rule produces with an identifying code.
func (r *FieldRule) WithCode(code string) *FieldRule {
	r.code = code
	return r
}

// Evaluate implements Rule.
func (r *FieldRule) Evaluate(doc tree.Value) []Failure {
	matches := pathexpr.Resolve(doc, r.path, nil)

	var out []Failure
	if len(matches) == 0 {
		for _, c := range r.checks {
			if ok, detail := c.Check(nil, false); !ok {
				out = append(out, r.failure(r.expr, nil, detail))
			}
		}
		return out
	}

	for _, m := range matches {
		for _, c := range r.checks {
			if ok, detail := c.Check(m.Value, true); !ok {
				out = append(out, r.failure(m.Path.String(), m.Value, detail))
			}
		}
	}
	return out
}

// Describe implements Rule.
func (r *FieldRule) Describe() string {
	names := make([]string, len(r.checks))
	for i, c := range r.checks {
		names[i] = c.Name()
	}
	return fmt.Sprintf("field %s [%s]", r.expr, strings.Join(names, ", "))
}

func (r *FieldRule) failure(path string, v tree.Value, detail string) Failure {
	return Failure{
		Path:     path,
		Message:  detail,
		Value:    v,
		Code:     r.code,
		Severity: r.severity,
	}
}

// FieldValue is one resolved group member handed to a GroupPredicate.
type FieldValue struct {
	// Path is the member's path expression as declared.
	Path string
	// Value is the first resolved value, Null when absent.
	Value tree.Value
	// Present reports whether the path matched anything.
	Present bool
}

// GroupPredicate evaluates one aggregate condition over resolved group
// members, returning a message when the condition does not hold.
type GroupPredicate func(vals []FieldValue) (ok bool, detail string)

// GroupRule resolves several paths and evaluates one predicate over the
// whole set. Missing members reach the predicate as absent Nulls; the
// arithmetic predicates coerce those to zero or empty text.
type GroupRule struct {
	exprs     []string
	paths     []*pathexpr.Path
	name      string
	predicate GroupPredicate
	severity  Severity
	code      string
}

// Group compiles paths and builds a rule evaluating predicate over them,
// at error severity by default. name labels the predicate in failures.
func Group(name string, predicate GroupPredicate, paths ...string) (*GroupRule, error) {
	if predicate == nil {
		return nil, fmt.Errorf("group rule %q has no predicate", name)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("group rule %q has no paths", name)
	}
	compiled := make([]*pathexpr.Path, len(paths))
	for i, expr := range paths {
		p, err := pathexpr.Compile(expr)
		if err != nil {
			return nil, err
		}
		compiled[i] = p
	}
	return &GroupRule{
		exprs:     paths,
		paths:     compiled,
		name:      name,
		predicate: predicate,
		severity:  SeverityError,
	}, nil
}

// WithSeverity changes the severity of failures this rule produces.
func (r *GroupRule) WithSeverity(s Severity) *GroupRule {
	r.severity = s
	return r
}

// WithCode tags failures this rule produces with an identifying code.
func (r *GroupRule) WithCode(code string) *GroupRule {
	r.code = code
	return r
}

// Evaluate implements Rule.
func (r *GroupRule) Evaluate(doc tree.Value) []Failure {
	vals := make([]FieldValue, len(r.paths))
	for i, p := range r.paths {
		v, ok := pathexpr.ResolveOne(doc, p, nil)
		vals[i] = FieldValue{Path: r.exprs[i], Value: v, Present: ok}
	}

	ok, detail := r.predicate(vals)
	if ok {
		return nil
	}
	return []Failure{{
		Path:     strings.Join(r.exprs, ", "),
		Message:  detail,
		Code:     r.code,
		Severity: r.severity,
	}}
}

// Describe implements Rule.
func (r *GroupRule) Describe() string {
	return fmt.Sprintf("group %s over [%s]", r.name, strings.Join(r.exprs, ", "))
}

// SumEquals checks that the values at all paths but the last sum to the
// value at the last path, within SumTolerance. Absent and non-numeric
// members count as zero.
func SumEquals() GroupPredicate {
	return func(vals []FieldValue) (bool, string) {
		if len(vals) < 2 {
			return false, "sum check needs at least one component and a total"
		}
		var sum float64
		for _, fv := range vals[:len(vals)-1] {
			sum += asNumber(fv)
		}
		total := asNumber(vals[len(vals)-1])
		if math.Abs(sum-total) > SumTolerance {
			return false, fmt.Sprintf("components sum to %v, expected %v", sum, total)
		}
		return true, ""
	}
}

// ConcatEquals checks that the text values at all paths but the last,
// joined with sep, equal the text at the last path. Absent and non-text
// members count as empty text.
func ConcatEquals(sep string) GroupPredicate {
	return func(vals []FieldValue) (bool, string) {
		if len(vals) < 2 {
			return false, "concatenation check needs at least one component and a total"
		}
		parts := make([]string, 0, len(vals)-1)
		for _, fv := range vals[:len(vals)-1] {
			parts = append(parts, asString(fv))
		}
		joined := strings.Join(parts, sep)
		want := asString(vals[len(vals)-1])
		if joined != want {
			return false, fmt.Sprintf("components join to %q, expected %q", joined, want)
		}
		return true, ""
	}
}

// AllPresent checks that every path in the group resolved to a value.
func AllPresent() GroupPredicate {
	return func(vals []FieldValue) (bool, string) {
		var missing []string
		for _, fv := range vals {
			if !fv.Present {
				missing = append(missing, fv.Path)
			}
		}
		if len(missing) > 0 {
			return false, fmt.Sprintf("missing: %s", strings.Join(missing, ", "))
		}
		return true, ""
	}
}

// AnyPresent checks that at least one path in the group resolved to a
// value.
func AnyPresent() GroupPredicate {
	return func(vals []FieldValue) (bool, string) {
		for _, fv := range vals {
			if fv.Present {
				return true, ""
			}
		}
		return false, "none of the paths are present"
	}
}

func asNumber(fv FieldValue) float64 {
	if !fv.Present {
		return 0
	}
	if n, ok := fv.Value.(tree.Number); ok {
		return float64(n)
	}
	return 0
}

func asString(fv FieldValue) string {
	if !fv.Present {
		return ""
	}
	if s, ok := fv.Value.(tree.Text); ok {
		return string(s)
	}
	return ""
}

var (
	_ Rule = (*FieldRule)(nil)
	_ Rule = (*GroupRule)(nil)
)
