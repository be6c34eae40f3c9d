// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package engine

import (
	"log/slog"

	"github.com/google/uuid"

	"github.com/stacklok/remap-core/pathexpr"
	"github.com/stacklok/remap-core/tree"
)

// Context is the per-execution state threaded through rule application: the
// read-only source document and a stack of named variable bindings. A
// Context belongs to exactly one execution and is discarded when it
// returns; it is not safe for concurrent use.
type Context struct {
	source   tree.Value
	bindings []binding
	execID   string
	logger   *slog.Logger
}

type binding struct {
	name  string
	value tree.Value
}

// ContextOption configures a Context.
type ContextOption func(*Context)

// WithContextLogger attaches a logger; rule application logs through it
// at debug level. Defaults to slog.Default.
func WithContextLogger(logger *slog.Logger) ContextOption {
	return func(c *Context) {
		c.logger = logger
	}
}

// NewContext wraps source for one execution. A nil source is treated as
// Null so resolution sees an empty document.
func NewContext(source tree.Value, opts ...ContextOption) *Context {
	if source == nil {
		source = tree.Null{}
	}
	c := &Context{
		source: source,
		execID: uuid.NewString(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With("execution_id", c.execID)
	return c
}

// Source returns the source document. Rules must treat it as read-only.
func (c *Context) Source() tree.Value {
	return c.source
}

// ExecutionID returns the unique id assigned to this execution.
func (c *Context) ExecutionID() string {
	return c.execID
}

// Logger returns the execution logger.
func (c *Context) Logger() *slog.Logger {
	return c.logger
}

// PushBinding makes name visible to nested rules until the matching
// PopBinding. Inner bindings shadow outer ones of the same name.
func (c *Context) PushBinding(name string, v tree.Value) {
	if v == nil {
		v = tree.Null{}
	}
	c.bindings = append(c.bindings, binding{name: name, value: v})
}

// PopBinding removes the most recent binding. Popping an empty stack is a
// no-op.
func (c *Context) PopBinding() {
	if len(c.bindings) == 0 {
		return
	}
	c.bindings = c.bindings[:len(c.bindings)-1]
}

// Lookup implements pathexpr.Binder, innermost binding first.
func (c *Context) Lookup(name string) (tree.Value, bool) {
	for i := len(c.bindings) - 1; i >= 0; i-- {
		if c.bindings[i].name == name {
			return c.bindings[i].value, true
		}
	}
	return nil, false
}

// Bindings returns a snapshot of the visible bindings, innermost winning,
// for handing to condition evaluators.
func (c *Context) Bindings() map[string]tree.Value {
	out := make(map[string]tree.Value, len(c.bindings))
	for _, b := range c.bindings {
		out[b.name] = b.value
	}
	return out
}

var _ pathexpr.Binder = (*Context)(nil)
