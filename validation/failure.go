// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package validation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/stacklok/remap-core/tree"
)

// ErrValidation is the sentinel all thrown validation errors wrap, for use
// with errors.Is.
var ErrValidation = errors.New("validation failed")

// Failure is one failed check.
type Failure struct {
	// Path locates the checked value in the document.
	Path string `json:"path"`
	// Message describes what the check expected.
	Message string `json:"message"`
	// Value is the offending value, nil when the path resolved to nothing.
	Value tree.Value `json:"-"`
	// Code identifies the rule that produced the failure, if it set one.
	Code string `json:"code,omitempty"`
	// Severity classifies the failure.
	Severity Severity `json:"severity"`
}

// String renders the failure as "path: message".
func (f Failure) String() string {
	return fmt.Sprintf("%s: %s", f.Path, f.Message)
}

// Result is the ordered outcome of evaluating a validator. Failures appear
// in rule declaration order, and within a rule in match order.
type Result struct {
	failures []Failure
}

// IsValid reports whether the result contains no error-severity failures.
func (r *Result) IsValid() bool {
	for _, f := range r.failures {
		if f.Severity == SeverityError {
			return false
		}
	}
	return true
}

// Failures returns the collected failures in evaluation order.
func (r *Result) Failures() []Failure {
	return r.failures
}

// Len returns the number of collected failures.
func (r *Result) Len() int {
	return len(r.failures)
}

func (r *Result) add(f Failure) {
	r.failures = append(r.failures, f)
}

// Error is the thrown form of an invalid result, produced when a config
// sets ThrowOnError. It enumerates every collected failure.
type Error struct {
	// Phase is the phase whose boundary raised the error.
	Phase Phase
	// Result holds all failures accumulated in that phase.
	Result *Result
}

// Error implements the error interface.
func (e *Error) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s validation failed with %d failure(s)", e.Phase, e.Result.Len())
	for _, f := range e.Result.Failures() {
		sb.WriteString("\n\t")
		sb.WriteString(string(f.Severity))
		sb.WriteString(" ")
		sb.WriteString(f.String())
	}
	return sb.String()
}

// Unwrap supports errors.Is(err, ErrValidation).
func (e *Error) Unwrap() error {
	return ErrValidation
}
