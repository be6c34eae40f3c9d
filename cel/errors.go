// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package cel

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/cel-go/cel"
)

// Sentinel errors for condition operations.
var (
	// ErrExpressionCheck is returned when an expression fails syntax or
	// type checking.
	ErrExpressionCheck = errors.New("condition expression check failed")

	// ErrEvaluation is returned when condition evaluation fails.
	ErrEvaluation = errors.New("condition evaluation failed")

	// ErrInvalidResult is returned when a condition does not produce a
	// boolean.
	ErrInvalidResult = errors.New("condition returned non-boolean result")
)

// ErrKind identifies the compilation stage an expression failed in.
type ErrKind string

const (
	// ErrKindParse indicates a syntax error.
	ErrKindParse ErrKind = "parse"
	// ErrKindCheck indicates a type checking error.
	ErrKindCheck ErrKind = "check"
)

// ErrInstance represents one occurrence of an error in an expression.
type ErrInstance struct {
	Line int    `json:"line,omitempty"`
	Col  int    `json:"col,omitempty"`
	Msg  string `json:"msg,omitempty"`
}

// ErrDetails contains structured error information for an expression.
type ErrDetails struct {
	Errors []ErrInstance `json:"errors,omitempty"`
	Source string        `json:"source,omitempty"`
}

// AsJSON returns the ErrDetails as a JSON string.
func (ed *ErrDetails) AsJSON() string {
	edBytes, err := json.Marshal(ed)
	if err != nil {
		return fmt.Sprintf(`{"error": "failed to marshal JSON: %s"}`, err)
	}
	return string(edBytes)
}

// ExprError is a compilation failure with per-location details, suitable
// for surfacing against the text of a mapping definition.
type ExprError struct {
	ErrDetails
	Kind     ErrKind
	original error
}

// Error implements the error interface.
func (e *ExprError) Error() string {
	return fmt.Sprintf("condition %s error in expression %q: %s", e.Kind, e.Source, e.original)
}

// Unwrap returns the underlying error, which matches ErrExpressionCheck.
func (e *ExprError) Unwrap() error {
	return e.original
}

// newExprError builds an ExprError from CEL issues.
func newExprError(kind ErrKind, source string, issues *cel.Issues) error {
	ed := ErrDetails{
		Source: source,
		Errors: make([]ErrInstance, 0, len(issues.Errors())),
	}
	for _, err := range issues.Errors() {
		ed.Errors = append(ed.Errors, ErrInstance{
			Line: err.Location.Line(),
			Col:  err.Location.Column(),
			Msg:  err.Message,
		})
	}

	return &ExprError{
		ErrDetails: ed,
		Kind:       kind,
		original:   fmt.Errorf("%w: %w", ErrExpressionCheck, issues.Err()),
	}
}
