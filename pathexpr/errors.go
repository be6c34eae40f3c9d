// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package pathexpr

import (
	"errors"
	"fmt"

	"github.com/stacklok/remap-core/tree"
)

var (
	// ErrInvalidExpression indicates a path expression that does not parse.
	ErrInvalidExpression = errors.New("invalid path expression")

	// ErrStructuralConflict indicates a write through an existing
	// non-container node.
	ErrStructuralConflict = errors.New("structural conflict")

	// ErrNotConcrete indicates a write through a path that still contains
	// wildcard or variable segments.
	ErrNotConcrete = errors.New("path is not concrete")
)

// ConflictError describes where a write collided with an existing scalar.
type ConflictError struct {
	// Path is the full path the write was attempting.
	Path string
	// Segment is the segment at which the collision happened.
	Segment string
	// Kind is the kind of the node occupying that position.
	Kind tree.Kind
}

// Error implements error.
func (e *ConflictError) Error() string {
	return fmt.Sprintf("structural conflict in path %q: segment %q collides with existing %s node",
		e.Path, e.Segment, e.Kind)
}

// Unwrap lets errors.Is match ErrStructuralConflict.
func (e *ConflictError) Unwrap() error {
	return ErrStructuralConflict
}
