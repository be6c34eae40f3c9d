// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package recovery

import (
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
)

// ErrPanic is matched by errors.Is for any error produced by Guard.
var ErrPanic = errors.New("panic recovered")

// PanicError carries the panic value and stack captured by Guard.
type PanicError struct {
	// Op names the operation that panicked, e.g. a rule description or a
	// transformer name.
	Op string
	// Value is the recovered panic value.
	Value any
	// Stack is the goroutine stack at the point of recovery.
	Stack []byte
}

// Error implements error.
func (e *PanicError) Error() string {
	return fmt.Sprintf("panic in %s: %v", e.Op, e.Value)
}

// Unwrap lets errors.Is match ErrPanic.
func (e *PanicError) Unwrap() error {
	return ErrPanic
}

// Guard runs fn and converts a panic into a *PanicError instead of letting
// it unwind the caller. The stack is logged at error level when logger is
// non-nil. Errors returned by fn pass through unchanged.
func Guard(logger *slog.Logger, op string, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			stack := debug.Stack()
			if logger != nil {
				logger.Error("recovered panic",
					"op", op,
					"panic", fmt.Sprint(r),
					"stack", string(stack))
			}
			err = &PanicError{Op: op, Value: r, Stack: stack}
		}
	}()
	return fn()
}
