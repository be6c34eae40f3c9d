// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package engine

import (
	"fmt"

	"github.com/stacklok/remap-core/tree"
)

// Arm pairs a predicate with the rules that run when it is the first to
// match.
type Arm struct {
	// When is the arm's predicate, evaluated against the source document.
	When Predicate
	// Rules run in order when the arm wins.
	Rules []Rule
}

// Branch evaluates its arms in declaration order and executes the rule list
// of the first arm whose predicate yields true; remaining arms are not
// evaluated. When no arm matches, the default rules run, or nothing happens
// if there are none.
type Branch struct {
	arms        []Arm
	defaultRule []Rule
}

// BranchOption configures a Branch rule at build time.
type BranchOption func(*Branch)

// WithDefault sets the rules that run when no arm matches.
func WithDefault(rules ...Rule) BranchOption {
	return func(b *Branch) { b.defaultRule = rules }
}

// NewBranch builds a Branch rule from its arms, which are evaluated
// first-match-wins.
func NewBranch(arms []Arm, opts ...BranchOption) (*Branch, error) {
	if len(arms) == 0 {
		return nil, fmt.Errorf("%w: branch rule needs at least one arm", ErrInvalidRule)
	}
	for i, arm := range arms {
		if arm.When == nil {
			return nil, fmt.Errorf("%w: branch arm %d has no predicate", ErrInvalidRule, i)
		}
		if len(arm.Rules) == 0 {
			return nil, fmt.Errorf("%w: branch arm %d has no rules", ErrInvalidRule, i)
		}
	}

	kept := make([]Arm, len(arms))
	copy(kept, arms)
	b := &Branch{arms: kept}
	for _, opt := range opts {
		opt(b)
	}
	return b, nil
}

// Apply implements Rule.
func (b *Branch) Apply(target tree.Value, ectx *Context) (tree.Value, error) {
	for i, arm := range b.arms {
		ok, err := arm.When(ectx)
		if err != nil {
			return target, fmt.Errorf("arm %d predicate: %w", i, err)
		}
		if !ok {
			continue
		}

		updated, err := applyAll(arm.Rules, target, ectx)
		if err != nil {
			return target, fmt.Errorf("arm %d: %w", i, err)
		}
		return updated, nil
	}

	updated, err := applyAll(b.defaultRule, target, ectx)
	if err != nil {
		return target, fmt.Errorf("default arm: %w", err)
	}
	return updated, nil
}

// applyAll runs rules in order against target.
func applyAll(rules []Rule, target tree.Value, ectx *Context) (tree.Value, error) {
	for _, rule := range rules {
		updated, err := rule.Apply(target, ectx)
		if err != nil {
			return target, fmt.Errorf("%s: %w", rule.Describe(), err)
		}
		target = updated
	}
	return target, nil
}

// Describe implements Rule.
func (b *Branch) Describe() string {
	if len(b.defaultRule) > 0 {
		return fmt.Sprintf("branch with %d arms and default", len(b.arms))
	}
	return fmt.Sprintf("branch with %d arms", len(b.arms))
}

var _ Rule = (*Branch)(nil)
