// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package engine_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stacklok/remap-core/engine"
	"github.com/stacklok/remap-core/pathexpr"
	"github.com/stacklok/remap-core/transform"
	"github.com/stacklok/remap-core/tree"
)

func orderSource() *tree.Object {
	return tree.NewObject().Set("items", tree.Array{
		tree.NewObject().Set("sku", tree.Text("A-1")).Set("qty", tree.Number(2)).Set("price", tree.Number(5)),
		tree.NewObject().Set("sku", tree.Text("B-2")).Set("qty", tree.Number(1)).Set("price", tree.Number(9)),
	})
}

func TestNewCollection(t *testing.T) {
	t.Parallel()

	nested := []engine.Rule{mustDirect(t, "$item.sku", "sku")}

	t.Run("requires a variable name", func(t *testing.T) {
		t.Parallel()
		_, err := engine.NewCollection("items", "lines", "", nested)
		require.Error(t, err)
		assert.ErrorIs(t, err, engine.ErrInvalidRule)
		assert.Contains(t, err.Error(), "variable name")
	})

	t.Run("requires nested rules", func(t *testing.T) {
		t.Parallel()
		_, err := engine.NewCollection("items", "lines", "item", nil)
		require.Error(t, err)
		assert.ErrorIs(t, err, engine.ErrInvalidRule)
		assert.Contains(t, err.Error(), "at least one nested rule")
	})

	t.Run("rejects non-concrete target", func(t *testing.T) {
		t.Parallel()
		_, err := engine.NewCollection("items", "lines.*", "item", nested)
		assert.ErrorIs(t, err, engine.ErrInvalidRule)
	})

	t.Run("describes source, variable and target", func(t *testing.T) {
		t.Parallel()
		c, err := engine.NewCollection("items", "lines", "item", nested)
		require.NoError(t, err)
		assert.Equal(t, "collection items as $item -> lines", c.Describe())
	})
}

func TestCollection_Apply(t *testing.T) {
	t.Parallel()

	t.Run("builds one entry per element in order", func(t *testing.T) {
		t.Parallel()
		c, err := engine.NewCollection("items", "lines", "item", []engine.Rule{
			mustDirect(t, "$item.sku", "id"),
		})
		require.NoError(t, err)

		out, err := c.Apply(tree.NewObject(), engine.NewContext(orderSource()))
		require.NoError(t, err)

		want := tree.NewObject().Set("lines", tree.Array{
			tree.NewObject().Set("id", tree.Text("A-1")),
			tree.NewObject().Set("id", tree.Text("B-2")),
		})
		assert.True(t, tree.Equal(want, out))
	})

	t.Run("nested combine derives per-element values", func(t *testing.T) {
		t.Parallel()
		total, err := engine.NewCombine(
			[]string{"$item.qty", "$item.price"}, "total", "product",
			transform.BuiltinFunctions())
		require.NoError(t, err)

		c, err := engine.NewCollection("items", "lines", "item", []engine.Rule{total})
		require.NoError(t, err)

		out, err := c.Apply(tree.NewObject(), engine.NewContext(orderSource()))
		require.NoError(t, err)

		want := tree.NewObject().Set("lines", tree.Array{
			tree.NewObject().Set("total", tree.Number(10)),
			tree.NewObject().Set("total", tree.Number(9)),
		})
		assert.True(t, tree.Equal(want, out))
	})

	t.Run("missing source writes nothing", func(t *testing.T) {
		t.Parallel()
		c, err := engine.NewCollection("absent", "lines", "item", []engine.Rule{
			mustDirect(t, "$item.sku", "id"),
		})
		require.NoError(t, err)

		out, err := c.Apply(tree.NewObject(), engine.NewContext(orderSource()))
		require.NoError(t, err)
		assert.True(t, tree.Equal(tree.NewObject(), out))
	})

	t.Run("non-array source writes nothing", func(t *testing.T) {
		t.Parallel()
		c, err := engine.NewCollection("name", "lines", "item", []engine.Rule{
			mustDirect(t, "$item", "v"),
		})
		require.NoError(t, err)

		out, err := c.Apply(tree.NewObject(), engine.NewContext(
			tree.NewObject().Set("name", tree.Text("scalar"))))
		require.NoError(t, err)
		assert.True(t, tree.Equal(tree.NewObject(), out))
	})

	t.Run("empty array leaves the target untouched", func(t *testing.T) {
		t.Parallel()
		c, err := engine.NewCollection("items", "lines", "item", []engine.Rule{
			mustDirect(t, "$item.sku", "id"),
		})
		require.NoError(t, err)

		out, err := c.Apply(tree.NewObject(), engine.NewContext(
			tree.NewObject().Set("items", tree.Array{})))
		require.NoError(t, err)
		assert.True(t, tree.Equal(tree.NewObject(), out))
	})

	t.Run("binding is scoped to the iteration", func(t *testing.T) {
		t.Parallel()
		c, err := engine.NewCollection("items", "lines", "item", []engine.Rule{
			mustDirect(t, "$item.sku", "id"),
		})
		require.NoError(t, err)

		ectx := engine.NewContext(orderSource())
		_, err = c.Apply(tree.NewObject(), ectx)
		require.NoError(t, err)

		_, bound := ectx.Lookup("item")
		assert.False(t, bound)
	})

	t.Run("outer bindings stay visible to nested rules", func(t *testing.T) {
		t.Parallel()
		c, err := engine.NewCollection("items", "lines", "item", []engine.Rule{
			mustDirect(t, "$order", "order"),
			mustDirect(t, "$item.sku", "sku"),
		})
		require.NoError(t, err)

		ectx := engine.NewContext(orderSource())
		ectx.PushBinding("order", tree.Text("ord-7"))

		out, err := c.Apply(tree.NewObject(), ectx)
		require.NoError(t, err)

		lines, _ := out.(*tree.Object).Get("lines")
		first := lines.(tree.Array)[0].(*tree.Object)
		v, _ := first.Get("order")
		assert.True(t, tree.Equal(tree.Text("ord-7"), v))
	})

	t.Run("nested rule failure names the element", func(t *testing.T) {
		t.Parallel()
		sentinel := errors.New("bad element")
		failing := &fakeRule{desc: "exploder", fn: func(target tree.Value, _ *engine.Context) (tree.Value, error) {
			return target, sentinel
		}}
		c, err := engine.NewCollection("items", "lines", "item", []engine.Rule{failing})
		require.NoError(t, err)

		_, err = c.Apply(tree.NewObject(), engine.NewContext(orderSource()))
		require.Error(t, err)
		assert.ErrorIs(t, err, sentinel)
		assert.Contains(t, err.Error(), "element 0")
		assert.Contains(t, err.Error(), "exploder")
	})

	t.Run("appends to an array from an earlier rule", func(t *testing.T) {
		t.Parallel()
		c, err := engine.NewCollection("items", "lines", "item", []engine.Rule{
			mustDirect(t, "$item.sku", "id"),
		})
		require.NoError(t, err)

		ectx := engine.NewContext(orderSource())
		target, err := c.Apply(tree.NewObject(), ectx)
		require.NoError(t, err)
		target, err = c.Apply(target, ectx)
		require.NoError(t, err)

		lines, _ := target.(*tree.Object).Get("lines")
		assert.Len(t, lines.(tree.Array), 4)
	})

	t.Run("non-array at the target is a conflict", func(t *testing.T) {
		t.Parallel()
		c, err := engine.NewCollection("items", "lines", "item", []engine.Rule{
			mustDirect(t, "$item.sku", "id"),
		})
		require.NoError(t, err)

		occupied := tree.NewObject().Set("lines", tree.Text("taken"))
		_, err = c.Apply(occupied, engine.NewContext(orderSource()))
		require.Error(t, err)
		assert.ErrorIs(t, err, pathexpr.ErrStructuralConflict)
		assert.Contains(t, err.Error(), "element 0")
	})
}
