// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package builder

import (
	"github.com/stacklok/remap-core/engine"
	"github.com/stacklok/remap-core/mappingfile"
)

// Builder assembles one mapping definition. Methods append rules in call
// order; Build compiles the accumulated definition against the given
// registries. A Builder is not safe for concurrent use.
type Builder struct {
	def   mappingfile.Definition
	rules Rules
}

// New starts a definition with the given mapping name.
func New(name string) *Builder {
	return &Builder{def: mappingfile.Definition{Name: name}}
}

// Description sets the free-form description recorded in the definition.
func (b *Builder) Description(text string) *Builder {
	b.def.Description = text
	return b
}

// Version sets the free-form version recorded in the definition.
func (b *Builder) Version(v string) *Builder {
	b.def.Version = v
	return b
}

// Formats sets the source and target format tags. Both default to "json"
// when left empty.
func (b *Builder) Formats(source, target string) *Builder {
	b.def.SourceFormat = source
	b.def.TargetFormat = target
	return b
}

// Direct copies the value at from to the target path to, passing it
// through the named transformers in order.
func (b *Builder) Direct(from, to string, transforms ...string) *Builder {
	b.rules.Direct(from, to, transforms...)
	return b
}

// DirectWhen is Direct guarded by a condition expression.
func (b *Builder) DirectWhen(from, to, when string, transforms ...string) *Builder {
	b.rules.DirectWhen(from, to, when, transforms...)
	return b
}

// Bulk copies every match of the wildcard path from under the target
// prefix to.
func (b *Builder) Bulk(from, to string, transforms ...string) *Builder {
	b.rules.Bulk(from, to, transforms...)
	return b
}

// BulkInclude is Bulk restricted to the listed relative paths.
func (b *Builder) BulkInclude(from, to string, include ...string) *Builder {
	b.rules.BulkInclude(from, to, include...)
	return b
}

// BulkExclude is Bulk with the listed relative paths skipped.
func (b *Builder) BulkExclude(from, to string, exclude ...string) *Builder {
	b.rules.BulkExclude(from, to, exclude...)
	return b
}

// Collection maps each element of the array at from through the rules
// body adds, binding the element to the variable as.
func (b *Builder) Collection(from, to, as string, body func(*Rules)) *Builder {
	b.rules.Collection(from, to, as, body)
	return b
}

// Branch adds a first-match-wins conditional rule.
func (b *Builder) Branch(body func(*Arms)) *Builder {
	b.rules.Branch(body)
	return b
}

// Nest groups root-level keys matching the wildcard pattern into a nested
// structure at to.
func (b *Builder) Nest(match, to string) *Builder {
	b.rules.Nest(match, to)
	return b
}

// NestFrom is Nest matching keys of the object at from instead of the
// document root.
func (b *Builder) NestFrom(from, match, to string) *Builder {
	b.rules.NestFrom(from, match, to)
	return b
}

// Flatten walks the subtree at from and writes one flat field per leaf
// under the target base to.
func (b *Builder) Flatten(from, to string) *Builder {
	b.rules.Flatten(from, to)
	return b
}

// Combine resolves the from paths and merges their values through the
// named function into the target path to.
func (b *Builder) Combine(to, function string, from ...string) *Builder {
	b.rules.Combine(to, function, from...)
	return b
}

// Independent marks every rule body adds so its failure is recorded but
// does not stop the mapping.
func (b *Builder) Independent(body func(*Rules)) *Builder {
	b.rules.Independent(body)
	return b
}

// Rule appends a raw definition entry for knobs the fluent methods do not
// expose.
func (b *Builder) Rule(def mappingfile.RuleDef) *Builder {
	b.rules.Rule(def)
	return b
}

// Definition returns the assembled definition. The rule list is copied, so
// adding further rules to the builder does not affect earlier snapshots.
func (b *Builder) Definition() *mappingfile.Definition {
	def := b.def
	def.Rules = append([]mappingfile.RuleDef(nil), b.rules.defs...)
	return &def
}

// Build compiles the assembled definition. Name resolution and rule
// validation happen here; see mappingfile.Definition.Compile.
func (b *Builder) Build(regs mappingfile.Registries, opts ...engine.MappingOption) (*engine.Mapping, error) {
	return b.Definition().Compile(regs, opts...)
}
