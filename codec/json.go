// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/stacklok/remap-core/tree"
)

// JSON reads and writes JSON documents. Decoding streams tokens rather
// than unmarshalling into map[string]any, which would lose object key
// order.
type JSON struct{}

// Name implements Codec.
func (JSON) Name() string { return "json" }

// Decode implements Codec.
func (JSON) Decode(data []byte) (tree.Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	v, err := decodeJSONValue(dec)
	if err != nil {
		return nil, fmt.Errorf("invalid JSON document: %w", err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("invalid JSON document: trailing content after value")
	}
	return v, nil
}

// Encode implements Codec. The tree types marshal themselves with object
// keys in insertion order.
func (JSON) Encode(v tree.Value) ([]byte, error) {
	if v == nil {
		v = tree.Null{}
	}
	return json.Marshal(v)
}

func decodeJSONValue(dec *json.Decoder) (tree.Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}

	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			return decodeJSONObject(dec)
		case '[':
			return decodeJSONArray(dec)
		default:
			return nil, fmt.Errorf("unexpected delimiter %q", t)
		}
	case bool:
		return tree.Bool(t), nil
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return nil, fmt.Errorf("invalid number %q: %w", t, err)
		}
		return tree.Number(f), nil
	case string:
		return tree.Text(t), nil
	case nil:
		return tree.Null{}, nil
	default:
		return nil, fmt.Errorf("unexpected token %v", tok)
	}
}

func decodeJSONObject(dec *json.Decoder) (tree.Value, error) {
	obj := tree.NewObject()
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, fmt.Errorf("object key is not a string: %v", keyTok)
		}
		v, err := decodeJSONValue(dec)
		if err != nil {
			return nil, err
		}
		obj.Set(key, v)
	}
	// Consume the closing brace.
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return obj, nil
}

func decodeJSONArray(dec *json.Decoder) (tree.Value, error) {
	arr := tree.Array{}
	for dec.More() {
		v, err := decodeJSONValue(dec)
		if err != nil {
			return nil, err
		}
		arr = append(arr, v)
	}
	// Consume the closing bracket.
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return arr, nil
}

var _ Codec = JSON{}
