// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package pathexpr

import (
	"fmt"

	"github.com/stacklok/remap-core/tree"
)

// Set writes v at the position named by p, returning the (possibly new)
// root. Missing intermediate Objects are created, Arrays are extended to
// reach an index with gaps filled by Null, and an existing leaf at the full
// path is replaced. A nil or Null root grows the container the first
// segment requires.
//
// The path must be concrete. A segment that collides with an existing node
// of the wrong shape (a keyed step into an Array, an indexed step into an
// Object, any step through a scalar) fails with a ConflictError and leaves
// partially created containers in place.
func Set(root tree.Value, p *Path, v tree.Value) (tree.Value, error) {
	if !p.IsConcrete() {
		return root, fmt.Errorf("%w: %q", ErrNotConcrete, p.String())
	}
	return setSegments(root, p.segments, v, p.raw)
}

func setSegments(cur tree.Value, segs []Segment, v tree.Value, full string) (tree.Value, error) {
	if len(segs) == 0 {
		if v == nil {
			return tree.Null{}, nil
		}
		return v, nil
	}

	seg := segs[0]
	switch seg.Kind {
	case SegmentKey:
		var obj *tree.Object
		switch c := cur.(type) {
		case nil, tree.Null:
			obj = tree.NewObject()
		case *tree.Object:
			obj = c
		default:
			return nil, &ConflictError{Path: full, Segment: seg.String(), Kind: cur.Kind()}
		}
		child, _ := obj.Get(seg.Key)
		next, err := setSegments(child, segs[1:], v, full)
		if err != nil {
			return nil, err
		}
		obj.Set(seg.Key, next)
		return obj, nil

	case SegmentIndex:
		var arr tree.Array
		switch c := cur.(type) {
		case nil, tree.Null:
			arr = tree.Array{}
		case tree.Array:
			arr = c
		default:
			return nil, &ConflictError{Path: full, Segment: seg.String(), Kind: cur.Kind()}
		}
		for len(arr) <= seg.Index {
			arr = append(arr, tree.Null{})
		}
		next, err := setSegments(arr[seg.Index], segs[1:], v, full)
		if err != nil {
			return nil, err
		}
		arr[seg.Index] = next
		return arr, nil

	default:
		return nil, fmt.Errorf("%w: %q", ErrNotConcrete, full)
	}
}
