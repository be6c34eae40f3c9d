// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package engine

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidRule indicates a rule that cannot be constructed from its
	// configuration. Rule configuration problems surface when the rule is
	// built, never during execution.
	ErrInvalidRule = errors.New("invalid rule configuration")

	// ErrExecution indicates a mapping execution that did not produce a
	// complete target document.
	ErrExecution = errors.New("mapping execution failed")
)

// RuleError wraps a failure of one rule during execution.
type RuleError struct {
	// Index is the rule's position in declaration order.
	Index int
	// Rule is the failing rule's description.
	Rule string
	// Err is the underlying failure.
	Err error
}

// Error implements error.
func (e *RuleError) Error() string {
	return fmt.Sprintf("rule %d (%s): %v", e.Index, e.Rule, e.Err)
}

// Unwrap returns the underlying failure.
func (e *RuleError) Unwrap() error {
	return e.Err
}

// ExecutionError aggregates every rule failure from one execution. The
// first failure is the one exposed through Unwrap; all of them appear in
// the message and in Failures, in rule order.
type ExecutionError struct {
	// ExecutionID identifies the failed execution in logs.
	ExecutionID string
	// Failures holds each failing rule's error in declaration order.
	Failures []*RuleError
}

// Error implements error.
func (e *ExecutionError) Error() string {
	if len(e.Failures) == 1 {
		return fmt.Sprintf("mapping execution %s failed: %v", e.ExecutionID, e.Failures[0])
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "mapping execution %s failed with %d rule failures:", e.ExecutionID, len(e.Failures))
	for _, f := range e.Failures {
		sb.WriteString("\n  ")
		sb.WriteString(f.Error())
	}
	return sb.String()
}

// Unwrap returns the first rule failure, so errors.Is and errors.As reach
// the primary cause as well as ErrExecution.
func (e *ExecutionError) Unwrap() []error {
	out := make([]error, 0, len(e.Failures)+1)
	out = append(out, ErrExecution)
	for _, f := range e.Failures {
		out = append(out, f)
	}
	return out
}

// First returns the first rule failure.
func (e *ExecutionError) First() *RuleError {
	if len(e.Failures) == 0 {
		return nil
	}
	return e.Failures[0]
}
