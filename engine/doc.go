// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package engine executes mappings: ordered lists of rules that read from a
// source document and build a target document.
//
// A Mapping is compiled once from rules and executed many times. Each
// execution gets a fresh Context carrying the read-only source, an
// execution id, and a stack of variable bindings that rules such as
// Collection push for their nested rules. Targets start empty and are
// grown rule by rule; rules never write values that share nodes with the
// source, so callers may retain and mutate results freely.
//
// Rule construction is eager: source and target paths compile, transformer
// chains resolve against their registry, and shape constraints are checked
// when the rule is built, not when it runs. A rule that constructs without
// error will not fail at execution time for reasons knowable at build
// time.
//
// The rule set:
//
//   - Direct copies one resolved value to one concrete target path.
//   - Bulk copies every wildcard match under a target prefix, optionally
//     filtered by include or exclude lists.
//   - Collection maps each element of a source array through nested rules,
//     binding the element to a variable, and appends the results to a
//     target array.
//   - Branch evaluates condition arms in order and applies the first arm
//     whose condition holds.
//   - Nest groups flat keys matching a wildcard pattern into nested
//     structures.
//   - Flatten walks a subtree and writes each leaf under a compound key.
//   - Combine resolves several source paths and merges them through a
//     variadic function.
//
// Any rule may be wrapped with Independent so its failure is recorded but
// does not stop the execution; the returned *ExecutionError then
// aggregates every failure observed.
package engine
