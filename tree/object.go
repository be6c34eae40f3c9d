// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package tree

import (
	"bytes"
	"encoding/json"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Object is an ordered mapping from unique string keys to Values. Keys keep
// their insertion order; replacing an existing key keeps its original
// position. Create with NewObject, not with a composite literal.
type Object struct {
	m *orderedmap.OrderedMap[string, Value]
}

// NewObject returns an empty Object.
func NewObject() *Object {
	return &Object{m: orderedmap.New[string, Value]()}
}

// NewObjectSized returns an empty Object with capacity for n entries.
func NewObjectSized(n int) *Object {
	if n < 0 {
		n = 0
	}
	return &Object{m: orderedmap.New[string, Value](n)}
}

// Kind implements Value.
func (*Object) Kind() Kind { return KindObject }

func (*Object) sealed() {}

// Set inserts or replaces the value under key and returns the receiver for
// chained construction.
func (o *Object) Set(key string, v Value) *Object {
	if v == nil {
		v = Null{}
	}
	o.m.Set(key, v)
	return o
}

// Get returns the value under key and whether the key is present.
func (o *Object) Get(key string) (Value, bool) {
	return o.m.Get(key)
}

// Has reports whether key is present.
func (o *Object) Has(key string) bool {
	_, ok := o.m.Get(key)
	return ok
}

// Delete removes key and reports whether it was present.
func (o *Object) Delete(key string) bool {
	_, ok := o.m.Delete(key)
	return ok
}

// Len returns the number of entries.
func (o *Object) Len() int {
	return o.m.Len()
}

// Keys returns the keys in insertion order.
func (o *Object) Keys() []string {
	keys := make([]string, 0, o.m.Len())
	for p := o.m.Oldest(); p != nil; p = p.Next() {
		keys = append(keys, p.Key)
	}
	return keys
}

// Oldest returns the first entry pair for in-order iteration:
//
//	for p := obj.Oldest(); p != nil; p = p.Next() { ... }
func (o *Object) Oldest() *orderedmap.Pair[string, Value] {
	return o.m.Oldest()
}

// String implements Value.
func (o *Object) String() string {
	var sb strings.Builder
	sb.WriteByte('{')
	first := true
	for p := o.m.Oldest(); p != nil; p = p.Next() {
		if !first {
			sb.WriteByte(',')
		}
		first = false
		sb.WriteString(render(Text(p.Key)))
		sb.WriteByte(':')
		sb.WriteString(render(p.Value))
	}
	sb.WriteByte('}')
	return sb.String()
}

// MarshalJSON emits entries in insertion order.
func (o *Object) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	first := true
	for p := o.m.Oldest(); p != nil; p = p.Next() {
		if !first {
			buf.WriteByte(',')
		}
		first = false
		k, err := json.Marshal(p.Key)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		v, err := json.Marshal(p.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

var _ Value = (*Object)(nil)
var _ json.Marshaler = (*Object)(nil)
