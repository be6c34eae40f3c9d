// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package transform_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stacklok/remap-core/transform"
	"github.com/stacklok/remap-core/tree"
)

func TestValidateName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"simple name", "uppercase", false},
		{"with digits and separators", "to_iso-8601", false},
		{"single letter", "x", false},
		{"at maximum length", strings.Repeat("a", transform.MaxNameLength), false},
		{"empty", "", true},
		{"over maximum length", strings.Repeat("a", transform.MaxNameLength+1), true},
		{"upper case", "Uppercase", true},
		{"leading digit", "1st", true},
		{"leading underscore", "_private", true},
		{"embedded space", "to upper", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := transform.ValidateName(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, transform.ErrInvalidName)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestRegistry(t *testing.T) {
	t.Parallel()

	t.Run("register and look up", func(t *testing.T) {
		t.Parallel()
		reg := transform.NewRegistry()
		require.NoError(t, reg.Register("double", transform.Scale(2)))

		fn, err := reg.Lookup("double")
		require.NoError(t, err)
		assert.True(t, tree.Equal(tree.Number(4), fn(tree.Number(2))))
		assert.True(t, reg.Has("double"))
		assert.False(t, reg.Has("triple"))
	})

	t.Run("duplicate name is rejected", func(t *testing.T) {
		t.Parallel()
		reg := transform.NewRegistry()
		require.NoError(t, reg.Register("trim", transform.Trim()))
		err := reg.Register("trim", transform.Trim())
		assert.ErrorIs(t, err, transform.ErrDuplicateName)
	})

	t.Run("nil function is rejected", func(t *testing.T) {
		t.Parallel()
		reg := transform.NewRegistry()
		err := reg.Register("noop", nil)
		assert.ErrorIs(t, err, transform.ErrNilFunc)
	})

	t.Run("invalid name is rejected", func(t *testing.T) {
		t.Parallel()
		reg := transform.NewRegistry()
		err := reg.Register("Not Valid", transform.Trim())
		assert.ErrorIs(t, err, transform.ErrInvalidName)
	})

	t.Run("lookup of unregistered name fails", func(t *testing.T) {
		t.Parallel()
		reg := transform.NewRegistry()
		_, err := reg.Lookup("missing")
		assert.ErrorIs(t, err, transform.ErrNotFound)
	})

	t.Run("names are sorted", func(t *testing.T) {
		t.Parallel()
		reg := transform.NewRegistry()
		require.NoError(t, reg.Register("zeta", transform.Trim()))
		require.NoError(t, reg.Register("alpha", transform.Trim()))
		require.NoError(t, reg.Register("mid", transform.Trim()))
		assert.Equal(t, []string{"alpha", "mid", "zeta"}, reg.Names())
	})
}

func TestFunction_AcceptsArity(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		fn   transform.Function
		n    int
		want bool
	}{
		{"below minimum", transform.Function{MinArgs: 2, MaxArgs: 3}, 1, false},
		{"at minimum", transform.Function{MinArgs: 2, MaxArgs: 3}, 2, true},
		{"at maximum", transform.Function{MinArgs: 2, MaxArgs: 3}, 3, true},
		{"above maximum", transform.Function{MinArgs: 2, MaxArgs: 3}, 4, false},
		{"unbounded maximum", transform.Function{MinArgs: 1, MaxArgs: -1}, 100, true},
		{"zero arguments allowed", transform.Function{MinArgs: 0, MaxArgs: 0}, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.fn.AcceptsArity(tt.n))
		})
	}
}

func TestFuncRegistry(t *testing.T) {
	t.Parallel()

	identity := func(args []tree.Value) tree.Value {
		if len(args) == 0 {
			return tree.Null{}
		}
		return args[0]
	}

	t.Run("register and look up", func(t *testing.T) {
		t.Parallel()
		reg := transform.NewFuncRegistry()
		require.NoError(t, reg.Register(transform.Function{Name: "first", MinArgs: 1, MaxArgs: -1, Fn: identity}))

		fn, err := reg.Lookup("first")
		require.NoError(t, err)
		assert.Equal(t, "first", fn.Name)
		assert.True(t, tree.Equal(tree.Text("a"), fn.Fn([]tree.Value{tree.Text("a")})))
	})

	t.Run("negative MinArgs is rejected", func(t *testing.T) {
		t.Parallel()
		reg := transform.NewFuncRegistry()
		err := reg.Register(transform.Function{Name: "bad", MinArgs: -1, Fn: identity})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "negative MinArgs")
	})

	t.Run("MaxArgs below MinArgs is rejected", func(t *testing.T) {
		t.Parallel()
		reg := transform.NewFuncRegistry()
		err := reg.Register(transform.Function{Name: "bad", MinArgs: 3, MaxArgs: 2, Fn: identity})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "MaxArgs below MinArgs")
	})

	t.Run("nil implementation is rejected", func(t *testing.T) {
		t.Parallel()
		reg := transform.NewFuncRegistry()
		err := reg.Register(transform.Function{Name: "bad", MinArgs: 1})
		assert.ErrorIs(t, err, transform.ErrNilFunc)
	})

	t.Run("duplicate name is rejected", func(t *testing.T) {
		t.Parallel()
		reg := transform.NewFuncRegistry()
		require.NoError(t, reg.Register(transform.Function{Name: "first", MinArgs: 1, MaxArgs: -1, Fn: identity}))
		err := reg.Register(transform.Function{Name: "first", MinArgs: 1, MaxArgs: -1, Fn: identity})
		assert.ErrorIs(t, err, transform.ErrDuplicateName)
	})

	t.Run("lookup of unregistered name fails", func(t *testing.T) {
		t.Parallel()
		reg := transform.NewFuncRegistry()
		_, err := reg.Lookup("missing")
		assert.ErrorIs(t, err, transform.ErrNotFound)
	})
}
