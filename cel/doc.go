// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

/*
Package cel compiles CEL condition expressions used as rule guards, branch
predicates and validation predicates.

Conditions see three dynamically-typed variables, so they can traverse
documents without schema declarations:

  - source: the source document of the execution
  - target: the target document built so far (null before any rule runs)
  - vars: the named bindings currently in scope

# Basic Usage

	engine := cel.NewEngine()

	cond, err := engine.Compile(`source.customer.age >= 18.0`)
	if err != nil {
	    // handle compilation error
	}

	ok, err := cond.Eval(cel.Activation{Source: doc})

# Limits

Compilation enforces an expression length limit and evaluation a runtime
cost limit, so untrusted mapping definitions cannot wedge an execution.
Both are configurable:

	engine := cel.NewEngine().
	    WithMaxExpressionLength(5000).
	    WithCostLimit(500000)

A compiled Condition is immutable and safe for concurrent Eval. The Engine
itself caches its environment lazily and is safe for concurrent use.
*/
package cel
