// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package tree_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stacklok/remap-core/tree"
)

func TestToGo(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		value tree.Value
		want  any
	}{
		{"nil", nil, nil},
		{"null", tree.Null{}, nil},
		{"bool", tree.Bool(true), true},
		{"number", tree.Number(1.5), 1.5},
		{"text", tree.Text("x"), "x"},
		{
			"array",
			tree.Array{tree.Number(1), tree.Text("a")},
			[]any{1.0, "a"},
		},
		{
			"object",
			tree.NewObject().Set("k", tree.Bool(false)),
			map[string]any{"k": false},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tree.ToGo(tt.value))
		})
	}
}

func TestFromGo(t *testing.T) {
	t.Parallel()

	t.Run("scalars", func(t *testing.T) {
		t.Parallel()
		tests := []struct {
			name  string
			input any
			want  tree.Value
		}{
			{"nil", nil, tree.Null{}},
			{"bool", true, tree.Bool(true)},
			{"float64", 1.5, tree.Number(1.5)},
			{"int", 7, tree.Number(7)},
			{"int64", int64(-3), tree.Number(-3)},
			{"uint32", uint32(9), tree.Number(9)},
			{"string", "x", tree.Text("x")},
		}
		for _, tt := range tests {
			got, err := tree.FromGo(tt.input)
			require.NoError(t, err, tt.name)
			assert.True(t, tree.Equal(tt.want, got), tt.name)
		}
	})

	t.Run("existing values pass through", func(t *testing.T) {
		t.Parallel()
		obj := tree.NewObject().Set("k", tree.Number(1))
		got, err := tree.FromGo(obj)
		require.NoError(t, err)
		assert.Same(t, obj, got)
	})

	t.Run("map keys are inserted sorted", func(t *testing.T) {
		t.Parallel()
		got, err := tree.FromGo(map[string]any{"z": 1, "a": 2, "m": 3})
		require.NoError(t, err)
		obj, ok := got.(*tree.Object)
		require.True(t, ok)
		assert.Equal(t, []string{"a", "m", "z"}, obj.Keys())
	})

	t.Run("nested structures convert recursively", func(t *testing.T) {
		t.Parallel()
		got, err := tree.FromGo(map[string]any{
			"items": []any{
				map[string]any{"n": 1},
				"text",
				nil,
			},
		})
		require.NoError(t, err)

		want := tree.NewObject().Set("items", tree.Array{
			tree.NewObject().Set("n", tree.Number(1)),
			tree.Text("text"),
			tree.Null{},
		})
		assert.True(t, tree.Equal(want, got), "got %s", got)
	})

	t.Run("unsupported type fails", func(t *testing.T) {
		t.Parallel()
		_, err := tree.FromGo(struct{ X int }{X: 1})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unsupported Go type")
	})

	t.Run("unsupported nested type names its position", func(t *testing.T) {
		t.Parallel()
		_, err := tree.FromGo([]any{1, make(chan int)})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "array element 1")
	})
}

func TestRoundTrip(t *testing.T) {
	t.Parallel()

	original := tree.NewObject().
		Set("name", tree.Text("Ada")).
		Set("age", tree.Number(36)).
		Set("tags", tree.Array{tree.Text("math"), tree.Text("engines")})

	back, err := tree.FromGo(tree.ToGo(original))
	require.NoError(t, err)

	// ToGo loses key order and FromGo re-sorts, so compare contents through
	// the Go form rather than tree.Equal.
	assert.Equal(t, tree.ToGo(original), tree.ToGo(back))
}
