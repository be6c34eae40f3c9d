// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package tree

import (
	"fmt"
	"sort"
)

// ToGo converts v into plain Go values: nil, bool, float64, string, []any
// and map[string]any. Object key order is lost; use the tree model directly
// when order matters.
func ToGo(v Value) any {
	switch t := v.(type) {
	case nil, Null:
		return nil
	case Bool:
		return bool(t)
	case Number:
		return float64(t)
	case Text:
		return string(t)
	case Array:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = ToGo(e)
		}
		return out
	case *Object:
		out := make(map[string]any, t.Len())
		for p := t.Oldest(); p != nil; p = p.Next() {
			out[p.Key] = ToGo(p.Value)
		}
		return out
	default:
		return nil
	}
}

// FromGo converts plain Go values into the tree model. Accepted inputs are
// nil, booleans, all integer and float widths, strings, []any, and
// map[string]any; map keys are inserted in sorted order so the result is
// deterministic. Anything else is an error.
func FromGo(v any) (Value, error) {
	switch t := v.(type) {
	case nil:
		return Null{}, nil
	case Value:
		return t, nil
	case bool:
		return Bool(t), nil
	case float64:
		return Number(t), nil
	case float32:
		return Number(t), nil
	case int:
		return Number(t), nil
	case int8:
		return Number(t), nil
	case int16:
		return Number(t), nil
	case int32:
		return Number(t), nil
	case int64:
		return Number(t), nil
	case uint:
		return Number(t), nil
	case uint8:
		return Number(t), nil
	case uint16:
		return Number(t), nil
	case uint32:
		return Number(t), nil
	case uint64:
		return Number(t), nil
	case string:
		return Text(t), nil
	case []any:
		out := make(Array, len(t))
		for i, e := range t {
			c, err := FromGo(e)
			if err != nil {
				return nil, fmt.Errorf("array element %d: %w", i, err)
			}
			out[i] = c
		}
		return out, nil
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		out := NewObjectSized(len(keys))
		for _, k := range keys {
			c, err := FromGo(t[k])
			if err != nil {
				return nil, fmt.Errorf("key %q: %w", k, err)
			}
			out.Set(k, c)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported Go type %T", v)
	}
}
