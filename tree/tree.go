// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package tree

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Kind identifies which of the six value kinds a Value is.
type Kind int

// The closed set of value kinds.
const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindText
	KindArray
	KindObject
)

// String returns the lower-case name of the kind.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindText:
		return "text"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// ParseKind is the inverse of Kind.String.
func ParseKind(name string) (Kind, error) {
	switch name {
	case "null":
		return KindNull, nil
	case "bool":
		return KindBool, nil
	case "number":
		return KindNumber, nil
	case "text":
		return KindText, nil
	case "array":
		return KindArray, nil
	case "object":
		return KindObject, nil
	default:
		return KindNull, fmt.Errorf("unknown kind %q", name)
	}
}

// Value is a node in a document tree. The set of implementations is closed:
// Null, Bool, Number, Text, Array and *Object. Callers dispatch with a type
// switch and must handle the default arm explicitly.
type Value interface {
	// Kind reports the value's kind.
	Kind() Kind
	// String renders the value for diagnostics and text coercion. Containers
	// render in a compact JSON-like form.
	String() string

	sealed()
}

// Null is the absence of a value. A resolved-but-missing field and an
// explicit null are indistinguishable at this level.
type Null struct{}

// Bool is a boolean value.
type Bool bool

// Number is a double-precision numeric value.
type Number float64

// Text is a string value.
type Text string

// Array is an ordered sequence of values.
type Array []Value

// Kind implements Value.
func (Null) Kind() Kind { return KindNull }

// Kind implements Value.
func (Bool) Kind() Kind { return KindBool }

// Kind implements Value.
func (Number) Kind() Kind { return KindNumber }

// Kind implements Value.
func (Text) Kind() Kind { return KindText }

// Kind implements Value.
func (Array) Kind() Kind { return KindArray }

// String implements Value.
func (Null) String() string { return "null" }

// String implements Value.
func (b Bool) String() string { return strconv.FormatBool(bool(b)) }

// String renders the number without a trailing ".0" when it is integral.
func (n Number) String() string {
	return strconv.FormatFloat(float64(n), 'f', -1, 64)
}

// String implements Value.
func (t Text) String() string { return string(t) }

// String implements Value.
func (a Array) String() string {
	var sb strings.Builder
	sb.WriteByte('[')
	for i, v := range a {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(render(v))
	}
	sb.WriteByte(']')
	return sb.String()
}

func (Null) sealed()   {}
func (Bool) sealed()   {}
func (Number) sealed() {}
func (Text) sealed()   {}
func (Array) sealed()  {}

// render is String except that text is quoted, so container rendering stays
// unambiguous.
func render(v Value) string {
	switch t := v.(type) {
	case Text:
		return strconv.Quote(string(t))
	case nil:
		return "null"
	default:
		return t.String()
	}
}

// MarshalJSON renders null rather than an empty object.
func (Null) MarshalJSON() ([]byte, error) { return []byte("null"), nil }

// Clone returns a deep copy of v. Scalars are copied by value; Array and
// Object nodes are reallocated recursively. Clone(nil) returns Null.
func Clone(v Value) Value {
	switch t := v.(type) {
	case nil, Null:
		return Null{}
	case Bool, Number, Text:
		return t
	case Array:
		out := make(Array, len(t))
		for i, e := range t {
			out[i] = Clone(e)
		}
		return out
	case *Object:
		out := NewObjectSized(t.Len())
		for p := t.Oldest(); p != nil; p = p.Next() {
			out.Set(p.Key, Clone(p.Value))
		}
		return out
	default:
		return Null{}
	}
}

// Equal reports deep structural equality. Objects compare key order as well
// as contents, matching the round-trip guarantees of the model. Numbers
// compare exactly; tolerant comparison belongs to callers that want it.
func Equal(a, b Value) bool {
	if a == nil {
		a = Null{}
	}
	if b == nil {
		b = Null{}
	}
	if a.Kind() != b.Kind() {
		return false
	}
	switch at := a.(type) {
	case Null:
		return true
	case Bool:
		return at == b.(Bool)
	case Number:
		return at == b.(Number)
	case Text:
		return at == b.(Text)
	case Array:
		bt := b.(Array)
		if len(at) != len(bt) {
			return false
		}
		for i := range at {
			if !Equal(at[i], bt[i]) {
				return false
			}
		}
		return true
	case *Object:
		bt := b.(*Object)
		if at.Len() != bt.Len() {
			return false
		}
		pa, pb := at.Oldest(), bt.Oldest()
		for pa != nil && pb != nil {
			if pa.Key != pb.Key || !Equal(pa.Value, pb.Value) {
				return false
			}
			pa, pb = pa.Next(), pb.Next()
		}
		return pa == nil && pb == nil
	default:
		return false
	}
}

// IsContainer reports whether v can hold children.
func IsContainer(v Value) bool {
	switch v.(type) {
	case Array, *Object:
		return true
	default:
		return false
	}
}

// Truthy reports the boolean interpretation of v: false for Null, false
// Bool, zero Number and empty Text; true otherwise. Containers are truthy
// when non-empty.
func Truthy(v Value) bool {
	switch t := v.(type) {
	case nil, Null:
		return false
	case Bool:
		return bool(t)
	case Number:
		return t != 0
	case Text:
		return t != ""
	case Array:
		return len(t) > 0
	case *Object:
		return t.Len() > 0
	default:
		return false
	}
}

var _ json.Marshaler = Null{}
