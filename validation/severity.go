// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package validation

// Severity classifies a failure. Only SeverityError failures make a
// result invalid; warnings and info entries are advisory.
type Severity string

// Failure severities, in decreasing order of weight.
const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// Phase names when a validator runs relative to mapping execution.
type Phase string

// Validation phases.
const (
	// PhasePre runs against the source document before any rule applies.
	PhasePre Phase = "pre"
	// PhaseIn runs against the partially built target at declared rule
	// positions during execution.
	PhaseIn Phase = "in"
	// PhasePost runs against the completed target document.
	PhasePost Phase = "post"
)
