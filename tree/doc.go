// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package tree defines the generic document model shared by every layer of
// the transformation engine: a closed set of value kinds that both source
// and target documents are expressed in.
//
// A Value is one of exactly six kinds:
//
//   - Null: absence of a value
//   - Bool: true or false
//   - Number: double-precision floating point
//   - Text: a UTF-8 string
//   - Array: an ordered sequence of Values
//   - Object: an ordered mapping from unique string keys to Values
//
// Object preserves key insertion order so that documents survive a
// decode/transform/encode round trip without key shuffling. Array order is
// significant and always preserved.
//
// Values form trees: each node is owned by exactly one parent container, and
// the root by whoever created it. Code that needs an independent copy must
// use Clone rather than sharing nodes across trees.
//
// Construction is direct:
//
//	obj := tree.NewObject()
//	obj.Set("name", tree.Text("Ada"))
//	obj.Set("scores", tree.Array{tree.Number(1), tree.Number(2)})
//
// ToGo and FromGo bridge Values to plain Go values (interface{}, maps,
// slices) for interoperation with expression evaluators and encoders that
// do not understand the tree model.
package tree
