// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package builder assembles mapping definitions in code.
//
// It is a fluent front end over the same definition model the YAML files
// use: each call appends one rule, Build compiles the result exactly the
// way mappingfile compiles a parsed document. Transformer names, function
// names, and condition expressions stay unresolved strings while the
// builder accumulates them; Build is where they resolve against the
// registries, so an unknown name or a bad expression fails there, never
// at execution time.
//
//	m, err := builder.New("person").
//		Direct("firstName", "name.first").
//		Direct("lastName", "name.last").
//		Combine("displayName", "concat_ws", "firstName", "lastName").
//		Build(mappingfile.DefaultRegistries())
//
// Nested scopes (collection bodies, branch arms) take a function that
// receives a *Rules collector:
//
//	builder.New("invoice").
//		Collection("items", "lines", "item", func(r *builder.Rules) {
//			r.Combine("total", "product", "$item.p", "$item.q")
//		})
//
// For rule knobs the fluent methods do not cover, Rule appends a raw
// definition entry; Definition returns the assembled document for callers
// that want to serialize it or attach validation phases before compiling.
package builder
