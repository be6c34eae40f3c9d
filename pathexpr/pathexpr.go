// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package pathexpr

import (
	"fmt"
	"strconv"
	"strings"
)

// SegmentKind identifies how one path segment traverses a node.
type SegmentKind int

// The segment kinds produced by Compile.
const (
	SegmentKey SegmentKind = iota
	SegmentIndex
	SegmentWildcard
	SegmentVariable
)

// Segment is one step of a compiled path.
type Segment struct {
	// Kind selects which of the remaining fields is meaningful.
	Kind SegmentKind
	// Key is the field name for SegmentKey, or the variable name (without
	// the leading $) for SegmentVariable.
	Key string
	// Index is the array position for SegmentIndex.
	Index int
}

// String renders the segment in expression syntax.
func (s Segment) String() string {
	switch s.Kind {
	case SegmentIndex:
		return strconv.Itoa(s.Index)
	case SegmentWildcard:
		return "*"
	case SegmentVariable:
		return "$" + s.Key
	default:
		return s.Key
	}
}

// Path is an immutable compiled path expression. Compile once and reuse;
// a Path is safe for concurrent use.
type Path struct {
	raw      string
	segments []Segment
	concrete bool
}

// Compile parses a dotted path expression. The empty expression, empty
// segments, and variable references after the first segment are rejected.
func Compile(expr string) (*Path, error) {
	if expr == "" {
		return nil, fmt.Errorf("%w: empty expression", ErrInvalidExpression)
	}

	parts := strings.Split(expr, ".")
	segments := make([]Segment, 0, len(parts))
	concrete := true

	for i, part := range parts {
		switch {
		case part == "":
			return nil, fmt.Errorf("%w: empty segment in %q", ErrInvalidExpression, expr)
		case part == "*":
			segments = append(segments, Segment{Kind: SegmentWildcard})
			concrete = false
		case part[0] == '$':
			name := part[1:]
			if name == "" {
				return nil, fmt.Errorf("%w: empty variable name in %q", ErrInvalidExpression, expr)
			}
			if i != 0 {
				return nil, fmt.Errorf("%w: variable reference must lead the path in %q", ErrInvalidExpression, expr)
			}
			segments = append(segments, Segment{Kind: SegmentVariable, Key: name})
			concrete = false
		case isAllDigits(part):
			idx, err := strconv.Atoi(part)
			if err != nil {
				return nil, fmt.Errorf("%w: index %q in %q: %v", ErrInvalidExpression, part, expr, err)
			}
			segments = append(segments, Segment{Kind: SegmentIndex, Index: idx})
		default:
			segments = append(segments, Segment{Kind: SegmentKey, Key: part})
		}
	}

	return &Path{raw: expr, segments: segments, concrete: concrete}, nil
}

// MustCompile is Compile but panics on error, for fixed expressions.
func MustCompile(expr string) *Path {
	p, err := Compile(expr)
	if err != nil {
		panic(err)
	}
	return p
}

// New builds a path from segments programmatically, bypassing expression
// syntax. This is how callers address keys that the dotted syntax cannot
// express, such as field names containing dots. The same structural rules
// apply: at least one segment, variables only in leading position.
func New(segments ...Segment) (*Path, error) {
	if len(segments) == 0 {
		return nil, fmt.Errorf("%w: no segments", ErrInvalidExpression)
	}
	for i, s := range segments {
		if s.Kind == SegmentVariable && i != 0 {
			return nil, fmt.Errorf("%w: variable reference must lead the path", ErrInvalidExpression)
		}
		if (s.Kind == SegmentKey || s.Kind == SegmentVariable) && s.Key == "" {
			return nil, fmt.Errorf("%w: empty segment name", ErrInvalidExpression)
		}
		if s.Kind == SegmentIndex && s.Index < 0 {
			return nil, fmt.Errorf("%w: negative index", ErrInvalidExpression)
		}
	}
	kept := make([]Segment, len(segments))
	copy(kept, segments)
	return fromSegments(kept), nil
}

// String returns the expression the path was compiled from.
func (p *Path) String() string { return p.raw }

// Segments returns the compiled segments. Callers must not modify the
// returned slice.
func (p *Path) Segments() []Segment { return p.segments }

// Len returns the number of segments.
func (p *Path) Len() int { return len(p.segments) }

// IsConcrete reports whether the path is free of wildcards and variables
// and therefore usable with Set.
func (p *Path) IsConcrete() bool { return p.concrete }

// LastSegment returns the final segment. Paths always have at least one.
func (p *Path) LastSegment() Segment { return p.segments[len(p.segments)-1] }

// Child returns a new concrete-extending path with seg appended.
func (p *Path) Child(seg Segment) *Path {
	segments := make([]Segment, len(p.segments)+1)
	copy(segments, p.segments)
	segments[len(p.segments)] = seg

	raw := p.raw + "." + seg.String()
	if p.raw == "" {
		raw = seg.String()
	}

	concrete := p.concrete && seg.Kind != SegmentWildcard && seg.Kind != SegmentVariable
	return &Path{raw: raw, segments: segments, concrete: concrete}
}

// fromSegments builds a path from already-validated segments.
func fromSegments(segments []Segment) *Path {
	parts := make([]string, len(segments))
	concrete := true
	for i, s := range segments {
		parts[i] = s.String()
		if s.Kind == SegmentWildcard || s.Kind == SegmentVariable {
			concrete = false
		}
	}
	return &Path{raw: strings.Join(parts, "."), segments: segments, concrete: concrete}
}

func isAllDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}
