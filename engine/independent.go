// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package engine

import (
	"fmt"

	"github.com/stacklok/remap-core/tree"
)

// Independent wraps a rule so that its failure is recorded in the final
// execution error without stopping the rules declared after it. Execution
// still fails overall; wrapping only controls whether later rules run.
func Independent(r Rule) Rule {
	return &independent{inner: r}
}

type independent struct {
	inner Rule
}

// Apply implements Rule.
func (i *independent) Apply(target tree.Value, ectx *Context) (tree.Value, error) {
	return i.inner.Apply(target, ectx)
}

// Describe implements Rule.
func (i *independent) Describe() string {
	return fmt.Sprintf("%s (independent)", i.inner.Describe())
}

// continues marks the rule for the executor.
func (i *independent) continues() bool { return true }

var _ Rule = (*independent)(nil)
