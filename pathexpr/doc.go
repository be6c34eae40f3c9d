// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package pathexpr compiles and evaluates path expressions against tree
// values. A path expression is a dotted sequence of segments:
//
//   - a literal field name        customer.address.city
//   - a numeric index             items.0.price
//   - a wildcard                  items.*.price
//   - a variable reference        $item.price
//
// Compile parses an expression once into an immutable Path; Resolve walks a
// tree and returns every match in document order, and Set writes through a
// concrete path, creating intermediate containers as needed.
//
// Resolution never fails on absent data: a path that matches nothing yields
// zero matches. Wildcards expand to one branch per existing child and are
// silently skipped on non-containers. A variable reference must lead the
// path; it is resolved against a Binder before traversal continues, and an
// unbound variable yields zero matches.
//
// Writing is stricter. Set requires a concrete path (no wildcards or
// variables) and auto-creates missing intermediate Objects, extends Arrays
// to reach an index (filling gaps with Null), and replaces existing leaves.
// Writing through an existing scalar is a structural conflict and fails
// with an error that wraps ErrStructuralConflict.
//
// All-digit segments are always indices. A field whose name is all digits
// cannot be addressed literally; it is still reachable through wildcards.
package pathexpr
