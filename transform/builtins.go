// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package transform

import (
	"strings"

	"github.com/stacklok/remap-core/tree"
)

// Builtins returns a registry pre-populated with the fixed-name builtin
// transformers. Callers extend it with their own registrations; nothing in
// the engine assumes these names exist.
func Builtins() *Registry {
	reg := NewRegistry()
	for name, fn := range map[string]Func{
		"uppercase": Uppercase(),
		"lowercase": Lowercase(),
		"trim":      Trim(),
		"title":     Title(),
		"round":     Round(),
		"floor":     Floor(),
		"ceil":      Ceil(),
		"abs":       Abs(),
		"negate":    Negate(),
	} {
		// Names and functions are fixed above; registration cannot fail.
		if err := reg.Register(name, fn); err != nil {
			panic(err)
		}
	}
	return reg
}

// BuiltinFunctions returns a function registry pre-populated with the
// fixed-name multi-argument builtins.
func BuiltinFunctions() *FuncRegistry {
	reg := NewFuncRegistry()
	for _, fn := range []Function{
		{Name: "concat", MinArgs: 1, MaxArgs: -1, Fn: Concat("")},
		{Name: "concat_ws", MinArgs: 1, MaxArgs: -1, Fn: Concat(" ")},
		{Name: "sum", MinArgs: 1, MaxArgs: -1, Fn: Sum()},
		{Name: "product", MinArgs: 1, MaxArgs: -1, Fn: Product()},
		{Name: "coalesce", MinArgs: 1, MaxArgs: -1, Fn: Coalesce()},
	} {
		if err := reg.Register(fn); err != nil {
			panic(err)
		}
	}
	return reg
}

// Concat joins the text renderings of all arguments with sep. Null
// arguments render as empty text; container arguments are skipped.
func Concat(sep string) MultiFunc {
	return func(args []tree.Value) tree.Value {
		parts := make([]string, 0, len(args))
		for _, a := range args {
			s, ok := asText(a)
			if !ok {
				continue
			}
			parts = append(parts, s)
		}
		return tree.Text(strings.Join(parts, sep))
	}
}

// Sum adds all Number arguments; non-numbers count as zero.
func Sum() MultiFunc {
	return func(args []tree.Value) tree.Value {
		var total float64
		for _, a := range args {
			if n, ok := a.(tree.Number); ok {
				total += float64(n)
			}
		}
		return tree.Number(total)
	}
}

// Product multiplies all Number arguments; non-numbers count as one.
func Product() MultiFunc {
	return func(args []tree.Value) tree.Value {
		total := 1.0
		for _, a := range args {
			if n, ok := a.(tree.Number); ok {
				total *= float64(n)
			}
		}
		return tree.Number(total)
	}
}

// Coalesce returns the first non-Null argument, or Null.
func Coalesce() MultiFunc {
	return func(args []tree.Value) tree.Value {
		for _, a := range args {
			if a == nil {
				continue
			}
			if _, isNull := a.(tree.Null); isNull {
				continue
			}
			return a
		}
		return tree.Null{}
	}
}
