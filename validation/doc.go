// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package validation checks documents before, during, and after mapping
// execution.
//
// A Validator holds an ordered list of rules. Field rules resolve a path
// expression and run value checks against every match; group rules resolve
// several paths and evaluate one aggregate predicate over the set. Failures
// carry a path, message, offending value, code, and severity; only
// error-severity failures make a result invalid.
//
// Config controls evaluation: fail-fast stops a phase at the first
// error-severity failure, throw-on-error converts an invalid result into a
// returned *Error at the phase boundary, and include-warnings decides
// whether warning and info failures appear in the result at all. Configs
// load from JSON profile files.
//
// Pipeline ties validators to an engine.Mapping: the pre phase runs against
// the source document, in-phase validators are anchored to rule indices and
// observe the target as it is built, and the post phase runs against the
// finished target.
package validation
