// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package recovery contains panics raised by user-supplied code.
//
// The transformation engine runs caller-registered transformers, functions
// and predicates on every execution. Guard wraps those calls so that a
// panic in one of them becomes an ordinary error on the rule that invoked
// it, instead of unwinding through the whole execution:
//
//	err := recovery.Guard(logger, "transformer uppercase", func() error {
//	    out = fn(in)
//	    return nil
//	})
//
// The recovered error is a *PanicError carrying the panic value and stack,
// and matches recovery.ErrPanic with errors.Is.
package recovery
