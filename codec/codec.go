// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"errors"
	"fmt"

	"github.com/stacklok/remap-core/engine"
	"github.com/stacklok/remap-core/tree"
)

// ErrUnknownFormat is returned when no codec is registered for a format
// name.
var ErrUnknownFormat = errors.New("unknown format")

// Codec converts between raw bytes and tree values.
type Codec interface {
	// Name returns the format name the codec serves.
	Name() string
	// Decode parses raw bytes into a tree value, preserving object key
	// order.
	Decode(data []byte) (tree.Value, error)
	// Encode serializes a tree value, emitting object keys in insertion
	// order.
	Encode(v tree.Value) ([]byte, error)
}

// ForFormat returns the codec for a format name. Known names are "json",
// "yaml", and "yml".
func ForFormat(name string) (Codec, error) {
	switch name {
	case "json":
		return JSON{}, nil
	case "yaml", "yml":
		return YAML{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, name)
	}
}

// Transform decodes input with the mapping's source format codec, executes
// the mapping, and encodes the result with its target format codec.
func Transform(m *engine.Mapping, input []byte) ([]byte, error) {
	src, err := ForFormat(m.SourceFormat())
	if err != nil {
		return nil, fmt.Errorf("source codec: %w", err)
	}
	dst, err := ForFormat(m.TargetFormat())
	if err != nil {
		return nil, fmt.Errorf("target codec: %w", err)
	}

	doc, err := src.Decode(input)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s input: %w", src.Name(), err)
	}

	out, err := m.Execute(doc)
	if err != nil {
		return nil, err
	}

	encoded, err := dst.Encode(out)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s output: %w", dst.Name(), err)
	}
	return encoded, nil
}
