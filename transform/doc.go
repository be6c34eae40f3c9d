// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package transform provides named value transformers, the registries that
// hold them, and the chains that compose them.
//
// A transformer is a pure, total function from one tree value to one tree
// value. Transformers are registered once under a unique name and looked up
// by rules at build time; a chain is an ordered list of transformers applied
// left to right, the first receiving the raw resolved source value.
//
// Registries are safe for concurrent lookups during registration, but the
// expected discipline is registration at setup time, before mappings start
// executing. Pass registries to the code that builds mappings instead of
// relying on process globals.
//
// Every transformer must accept Null without panicking. The builtins follow
// one consistent fallback policy for mistyped input:
//
//   - text transformers treat Null as empty text and render other scalars
//     through their canonical text form; containers pass through unchanged
//   - numeric transformers only act on Number input; anything else passes
//     through unchanged
//   - date transformers only act on Text input that parses under their
//     input layout; anything else passes through unchanged
//
// FuncRegistry is the multi-argument analogue used by rules that derive one
// target field from several source fields.
package transform
