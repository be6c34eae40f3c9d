// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package builder

import (
	"github.com/stacklok/remap-core/mappingfile"
)

// Rules collects rule definitions in order. The document-level Builder
// delegates here, and nested scopes (collection bodies, branch arms,
// independent groups) receive a fresh collector of their own.
type Rules struct {
	defs []mappingfile.RuleDef
}

func (r *Rules) add(def mappingfile.RuleDef) *Rules {
	r.defs = append(r.defs, def)
	return r
}

// collect runs body against a fresh collector and returns what it added.
func collect(body func(*Rules)) []mappingfile.RuleDef {
	r := &Rules{}
	if body != nil {
		body(r)
	}
	return r.defs
}

// Direct copies the value at from to the target path to, passing it
// through the named transformers in order.
func (r *Rules) Direct(from, to string, transforms ...string) *Rules {
	return r.add(mappingfile.RuleDef{Direct: &mappingfile.DirectDef{
		From:      from,
		To:        to,
		Transform: mappingfile.StringList(transforms),
	}})
}

// DirectWhen is Direct guarded by a condition expression. The rule applies
// only when the expression evaluates to true against the source document.
func (r *Rules) DirectWhen(from, to, when string, transforms ...string) *Rules {
	return r.add(mappingfile.RuleDef{Direct: &mappingfile.DirectDef{
		From:      from,
		To:        to,
		When:      when,
		Transform: mappingfile.StringList(transforms),
	}})
}

// Bulk copies every match of the wildcard path from under the target
// prefix to, passing each value through the named transformers.
func (r *Rules) Bulk(from, to string, transforms ...string) *Rules {
	return r.add(mappingfile.RuleDef{Bulk: &mappingfile.BulkDef{
		From:      from,
		To:        to,
		Transform: mappingfile.StringList(transforms),
	}})
}

// BulkInclude is Bulk restricted to the listed relative paths.
func (r *Rules) BulkInclude(from, to string, include ...string) *Rules {
	return r.add(mappingfile.RuleDef{Bulk: &mappingfile.BulkDef{
		From:    from,
		To:      to,
		Include: mappingfile.StringList(include),
	}})
}

// BulkExclude is Bulk with the listed relative paths skipped.
func (r *Rules) BulkExclude(from, to string, exclude ...string) *Rules {
	return r.add(mappingfile.RuleDef{Bulk: &mappingfile.BulkDef{
		From:    from,
		To:      to,
		Exclude: mappingfile.StringList(exclude),
	}})
}

// Collection maps each element of the array at from through the rules body
// adds, binding the element to the variable as, and appends the results to
// the array at to.
func (r *Rules) Collection(from, to, as string, body func(*Rules)) *Rules {
	return r.add(mappingfile.RuleDef{Collection: &mappingfile.CollectionDef{
		From:  from,
		To:    to,
		As:    as,
		Rules: collect(body),
	}})
}

// Branch adds a first-match-wins conditional rule. The body declares arms
// with When and an optional fallback with Default.
func (r *Rules) Branch(body func(*Arms)) *Rules {
	a := &Arms{}
	if body != nil {
		body(a)
	}
	return r.add(mappingfile.RuleDef{Branch: &a.def})
}

// Nest groups root-level keys matching the wildcard pattern into a nested
// structure at to.
func (r *Rules) Nest(match, to string) *Rules {
	return r.NestFrom("", match, to)
}

// NestFrom is Nest matching keys of the object at from instead of the
// document root.
func (r *Rules) NestFrom(from, match, to string) *Rules {
	return r.add(mappingfile.RuleDef{Nest: &mappingfile.NestDef{
		From:  from,
		Match: match,
		To:    to,
	}})
}

// Flatten walks the subtree at from and writes one flat field per leaf
// under the target base to.
func (r *Rules) Flatten(from, to string) *Rules {
	return r.add(mappingfile.RuleDef{Flatten: &mappingfile.FlattenDef{
		From: from,
		To:   to,
	}})
}

// Combine resolves the from paths and merges their values through the
// named function into the target path to.
func (r *Rules) Combine(to, function string, from ...string) *Rules {
	return r.add(mappingfile.RuleDef{Combine: &mappingfile.CombineDef{
		From:     from,
		To:       to,
		Function: function,
	}})
}

// Independent marks every rule body adds so its failure is recorded but
// does not stop the mapping.
func (r *Rules) Independent(body func(*Rules)) *Rules {
	defs := collect(body)
	for i := range defs {
		defs[i].Independent = true
	}
	r.defs = append(r.defs, defs...)
	return r
}

// Rule appends a raw definition entry. Use it for knobs the fluent
// methods do not expose, such as flatten separators or bulk transforms
// combined with include lists.
func (r *Rules) Rule(def mappingfile.RuleDef) *Rules {
	return r.add(def)
}

// Arms collects the arms of one branch rule.
type Arms struct {
	def mappingfile.BranchDef
}

// When adds an arm: if the condition expression holds, the rules body adds
// apply and later arms are skipped.
func (a *Arms) When(expr string, body func(*Rules)) *Arms {
	a.def.Arms = append(a.def.Arms, mappingfile.ArmDef{
		When:  expr,
		Rules: collect(body),
	})
	return a
}

// Default sets the fallback rules applied when no arm matches.
func (a *Arms) Default(body func(*Rules)) *Arms {
	a.def.Default = collect(body)
	return a
}
