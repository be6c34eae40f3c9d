// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package engine

import (
	"fmt"
	"log/slog"

	"github.com/stacklok/remap-core/recovery"
	"github.com/stacklok/remap-core/tree"
)

// Mapping is an ordered, immutable list of compiled rules. Build once with
// New and execute any number of times; executions are independent, so one
// Mapping may be shared across goroutines.
type Mapping struct {
	rules        []Rule
	sourceFormat string
	targetFormat string
	logger       *slog.Logger
}

// MappingOption configures a Mapping at build time.
type MappingOption func(*Mapping)

// WithFormats tags the mapping with source and target format names. The
// engine does not interpret them; codec callers do.
func WithFormats(source, target string) MappingOption {
	return func(m *Mapping) {
		m.sourceFormat = source
		m.targetFormat = target
	}
}

// WithLogger sets the logger executions derive their execution-scoped
// logger from. Defaults to slog.Default.
func WithLogger(logger *slog.Logger) MappingOption {
	return func(m *Mapping) {
		m.logger = logger
	}
}

// Hooks lets a caller observe execution. Validation interleaves its
// in-execution checks this way without the engine knowing about them.
type Hooks struct {
	// AfterRule runs after the rule at index completes successfully, seeing
	// the target built so far. Returning an error aborts the execution and
	// surfaces that error unchanged.
	AfterRule func(index int, target tree.Value) error
}

// New builds a Mapping from rules in declaration order. The slice is
// copied; nil rules are rejected.
func New(rules []Rule, opts ...MappingOption) (*Mapping, error) {
	kept := make([]Rule, len(rules))
	for i, r := range rules {
		if r == nil {
			return nil, fmt.Errorf("%w: rule %d is nil", ErrInvalidRule, i)
		}
		kept[i] = r
	}

	m := &Mapping{rules: kept, logger: slog.Default()}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// Len returns the number of rules.
func (m *Mapping) Len() int { return len(m.rules) }

// SourceFormat returns the opaque source format tag.
func (m *Mapping) SourceFormat() string { return m.sourceFormat }

// TargetFormat returns the opaque target format tag.
func (m *Mapping) TargetFormat() string { return m.targetFormat }

// Execute runs every rule in declaration order against a fresh target and
// returns the completed target document. Any rule failure makes the whole
// execution fail with an *ExecutionError; rules wrapped with Independent
// let execution continue so the error aggregates every failure, while
// other rules stop it at the first.
func (m *Mapping) Execute(source tree.Value) (tree.Value, error) {
	return m.ExecuteWithHooks(source, Hooks{})
}

// ExecuteWithHooks is Execute with observation points.
func (m *Mapping) ExecuteWithHooks(source tree.Value, hooks Hooks) (tree.Value, error) {
	ectx := NewContext(source, WithContextLogger(m.logger))
	logger := ectx.Logger()
	logger.Debug("executing mapping",
		"rules", len(m.rules),
		"source_format", m.sourceFormat,
		"target_format", m.targetFormat)

	var target tree.Value = tree.NewObject()
	var failures []*RuleError

	for i, rule := range m.rules {
		err := recovery.Guard(logger, rule.Describe(), func() error {
			updated, applyErr := rule.Apply(target, ectx)
			if applyErr != nil {
				return applyErr
			}
			target = updated
			return nil
		})
		if err != nil {
			logger.Debug("rule failed", "index", i, "rule", rule.Describe(), "error", err)
			failures = append(failures, &RuleError{Index: i, Rule: rule.Describe(), Err: err})
			if ruleContinues(rule) {
				continue
			}
			break
		}

		if hooks.AfterRule != nil {
			if hookErr := hooks.AfterRule(i, target); hookErr != nil {
				return nil, hookErr
			}
		}
	}

	if len(failures) > 0 {
		return nil, &ExecutionError{ExecutionID: ectx.ExecutionID(), Failures: failures}
	}

	logger.Debug("mapping execution complete")
	return target, nil
}

// ruleContinues reports whether a failing rule lets execution proceed.
func ruleContinues(r Rule) bool {
	c, ok := r.(interface{ continues() bool })
	return ok && c.continues()
}
