// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package validation

import (
	"fmt"

	"github.com/stacklok/remap-core/tree"
)

// Validator evaluates an ordered list of rules against one document.
// Validators are immutable once built and safe for concurrent use.
type Validator struct {
	phase Phase
	rules []Rule
}

// NewValidator builds a validator for one phase. The rule slice is copied;
// nil rules are rejected.
func NewValidator(phase Phase, rules ...Rule) (*Validator, error) {
	kept := make([]Rule, len(rules))
	for i, r := range rules {
		if r == nil {
			return nil, fmt.Errorf("validation rule %d is nil", i)
		}
		kept[i] = r
	}
	return &Validator{phase: phase, rules: kept}, nil
}

// Phase returns the phase this validator belongs to.
func (v *Validator) Phase() Phase {
	return v.phase
}

// Len returns the number of rules.
func (v *Validator) Len() int {
	return len(v.rules)
}

// Validate evaluates every rule against doc in declaration order. With
// cfg.FailFast, evaluation stops after the first rule that produced an
// error-severity failure; that rule's own failures are all kept. The
// returned error is non-nil only with cfg.ThrowOnError and an invalid
// result, and is then an *Error enumerating the failures.
func (v *Validator) Validate(doc tree.Value, cfg Config) (*Result, error) {
	result := &Result{}

	for _, rule := range v.rules {
		sawError := false
		for _, f := range rule.Evaluate(doc) {
			if f.Severity == SeverityError {
				sawError = true
			} else if !cfg.IncludeWarnings {
				continue
			}
			result.add(f)
		}
		if sawError && cfg.FailFast {
			break
		}
	}

	if cfg.ThrowOnError && !result.IsValid() {
		return result, &Error{Phase: v.phase, Result: result}
	}
	return result, nil
}
