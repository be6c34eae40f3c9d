// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package codec converts between raw document bytes and tree values.
//
// The engine itself never touches bytes; codecs sit at its edges. Both
// built-in codecs preserve object key order in both directions, so a
// decode-execute-encode round trip through the engine keeps fields in the
// order the mapping wrote them.
//
// Documents are assumed acyclic. YAML aliases are resolved during decode;
// a document abusing aliases is rejected by the underlying parser, not by
// this package.
package codec
