// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package mappingfile_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stacklok/remap-core/cel"
	"github.com/stacklok/remap-core/engine"
	"github.com/stacklok/remap-core/mappingfile"
	"github.com/stacklok/remap-core/pathexpr"
	"github.com/stacklok/remap-core/transform"
	"github.com/stacklok/remap-core/tree"
	"github.com/stacklok/remap-core/validation"
)

func parseDef(t *testing.T, doc string) *mappingfile.Definition {
	t.Helper()
	def, err := mappingfile.Parse([]byte(doc))
	require.NoError(t, err)
	return def
}

func valueAt(t *testing.T, doc tree.Value, expr string) tree.Value {
	t.Helper()
	p, err := pathexpr.Compile(expr)
	require.NoError(t, err)
	v, ok := pathexpr.ResolveOne(doc, p, nil)
	require.True(t, ok, "no value at %s", expr)
	return v
}

func absentAt(t *testing.T, doc tree.Value, expr string) {
	t.Helper()
	p, err := pathexpr.Compile(expr)
	require.NoError(t, err)
	_, ok := pathexpr.ResolveOne(doc, p, nil)
	assert.False(t, ok, "unexpected value at %s", expr)
}

func TestDefaultRegistries(t *testing.T) {
	t.Parallel()

	regs := mappingfile.DefaultRegistries()
	require.NotNil(t, regs.Transformers)
	require.NotNil(t, regs.Functions)
	assert.True(t, regs.Transformers.Has("trim"))
	_, err := regs.Functions.Lookup("concat_ws")
	assert.NoError(t, err)
}

func TestDefinition_Compile(t *testing.T) {
	t.Parallel()

	t.Run("defaults both formats to json", func(t *testing.T) {
		t.Parallel()
		def := parseDef(t, "name: x\nrules:\n  - direct:\n      from: a\n      to: b\n")

		m, err := def.Compile(mappingfile.DefaultRegistries())
		require.NoError(t, err)
		assert.Equal(t, "json", m.SourceFormat())
		assert.Equal(t, "json", m.TargetFormat())
	})

	t.Run("keeps declared formats", func(t *testing.T) {
		t.Parallel()
		def := parseDef(t, `
name: x
source_format: yaml
target_format: json
rules:
  - direct:
      from: a
      to: b
`)
		m, err := def.Compile(mappingfile.DefaultRegistries())
		require.NoError(t, err)
		assert.Equal(t, "yaml", m.SourceFormat())
		assert.Equal(t, "json", m.TargetFormat())
	})

	t.Run("requires a name", func(t *testing.T) {
		t.Parallel()
		def := &mappingfile.Definition{}
		_, err := def.Compile(mappingfile.DefaultRegistries())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "has no name")
	})

	t.Run("requires rules", func(t *testing.T) {
		t.Parallel()
		def := &mappingfile.Definition{Name: "x"}
		_, err := def.Compile(mappingfile.DefaultRegistries())
		require.Error(t, err)
		assert.Contains(t, err.Error(), `mapping definition "x" has no rules`)
	})

	t.Run("rejects a rule with no variant", func(t *testing.T) {
		t.Parallel()
		def := &mappingfile.Definition{Name: "x", Rules: []mappingfile.RuleDef{{}}}
		_, err := def.Compile(mappingfile.DefaultRegistries())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "rules[0]: expected exactly one rule variant, got 0")
	})

	t.Run("rejects a rule with two variants", func(t *testing.T) {
		t.Parallel()
		def := &mappingfile.Definition{Name: "x", Rules: []mappingfile.RuleDef{{
			Direct: &mappingfile.DirectDef{From: "a", To: "b"},
			Nest:   &mappingfile.NestDef{Match: "p_*", To: "out"},
		}}}
		_, err := def.Compile(mappingfile.DefaultRegistries())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "expected exactly one rule variant, got 2")
	})

	t.Run("unknown transformers fail eagerly", func(t *testing.T) {
		t.Parallel()
		def := &mappingfile.Definition{Name: "x", Rules: []mappingfile.RuleDef{{
			Direct: &mappingfile.DirectDef{From: "a", To: "b", Transform: mappingfile.StringList{"sparkle"}},
		}}}
		_, err := def.Compile(mappingfile.DefaultRegistries())
		require.Error(t, err)
		assert.ErrorIs(t, err, transform.ErrNotFound)
		assert.Contains(t, err.Error(), "rules[0]")
	})

	t.Run("unknown combine functions fail eagerly", func(t *testing.T) {
		t.Parallel()
		def := &mappingfile.Definition{Name: "x", Rules: []mappingfile.RuleDef{{
			Combine: &mappingfile.CombineDef{From: []string{"a"}, To: "b", Function: "warp"},
		}}}
		_, err := def.Compile(mappingfile.DefaultRegistries())
		require.Error(t, err)
		assert.ErrorIs(t, err, engine.ErrInvalidRule)
		assert.Contains(t, err.Error(), "not found")
	})

	t.Run("invalid conditions fail eagerly", func(t *testing.T) {
		t.Parallel()
		def := &mappingfile.Definition{Name: "x", Rules: []mappingfile.RuleDef{{
			Direct: &mappingfile.DirectDef{From: "a", To: "b", When: "1 +"},
		}}}
		_, err := def.Compile(mappingfile.DefaultRegistries())
		require.Error(t, err)
		assert.ErrorIs(t, err, cel.ErrExpressionCheck)
		assert.Contains(t, err.Error(), "rules[0]")
	})

	t.Run("branch arm errors name the arm", func(t *testing.T) {
		t.Parallel()
		def := &mappingfile.Definition{Name: "x", Rules: []mappingfile.RuleDef{{
			Branch: &mappingfile.BranchDef{Arms: []mappingfile.ArmDef{{
				When:  "(",
				Rules: []mappingfile.RuleDef{{Direct: &mappingfile.DirectDef{From: "a", To: "b"}}},
			}}},
		}}}
		_, err := def.Compile(mappingfile.DefaultRegistries())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "arm 0")
	})

	t.Run("nested rule errors carry their location", func(t *testing.T) {
		t.Parallel()
		def := &mappingfile.Definition{Name: "x", Rules: []mappingfile.RuleDef{{
			Collection: &mappingfile.CollectionDef{
				From: "items", To: "lines", As: "item",
				Rules: []mappingfile.RuleDef{{
					Direct: &mappingfile.DirectDef{From: "$item.a", To: "b", Transform: mappingfile.StringList{"sparkle"}},
				}},
			},
		}}}
		_, err := def.Compile(mappingfile.DefaultRegistries())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "rules[0].collection.rules[0]")
	})
}

func TestDefinition_Compile_EndToEnd(t *testing.T) {
	t.Parallel()

	def := parseDef(t, `
name: order-normalizer
version: "1.2.0"
rules:
  - direct:
      from: customer.nickname
      to: customer.displayName
      transform: [trim, title]
  - direct:
      from: customer.vip
      to: customer.tier
      when: source.customer.vip == true
  - direct:
      from: customer.vip
      to: customer.flagged
      when: source.customer.vip == false
  - combine:
      from: [customer.first_name, customer.last_name]
      to: customer.fullName
      function: concat_ws
  - bulk:
      from: meta.*
      to: annotations
      exclude: meta.internal
  - collection:
      from: items
      to: lines
      as: item
      rules:
        - direct:
            from: $item.sku
            to: sku
            transform: uppercase
        - combine:
            from: [$item.qty, $item.price]
            to: total
            function: product
  - branch:
      arms:
        - when: source.priority == true
          rules:
            - direct:
                from: labels.rush
                to: handling
      default:
        - direct:
            from: labels.normal
            to: handling
  - nest:
      match: addr_*
      to: address
  - flatten:
      from: customer.geo
      to: customer
      prefix: geo
`)

	m, err := def.Compile(mappingfile.DefaultRegistries())
	require.NoError(t, err)

	source := tree.NewObject().
		Set("customer", tree.NewObject().
			Set("nickname", tree.Text("  ada  ")).
			Set("first_name", tree.Text("Ada")).
			Set("last_name", tree.Text("Lovelace")).
			Set("vip", tree.Bool(true)).
			Set("geo", tree.NewObject().
				Set("lat", tree.Number(51.5)).
				Set("lng", tree.Number(-0.1)))).
		Set("meta", tree.NewObject().
			Set("owner", tree.Text("ops")).
			Set("internal", tree.Text("secret")).
			Set("team", tree.Text("core"))).
		Set("items", tree.Array{
			tree.NewObject().
				Set("sku", tree.Text("a-1")).
				Set("qty", tree.Number(2)).
				Set("price", tree.Number(5)),
			tree.NewObject().
				Set("sku", tree.Text("b-2")).
				Set("qty", tree.Number(1)).
				Set("price", tree.Number(9.5)),
		}).
		Set("priority", tree.Bool(true)).
		Set("labels", tree.NewObject().
			Set("rush", tree.Text("RUSH")).
			Set("normal", tree.Text("NORMAL"))).
		Set("addr_city", tree.Text("Berlin")).
		Set("addr_zip", tree.Text("10115"))

	target, err := m.Execute(source)
	require.NoError(t, err)

	assert.Equal(t, tree.Text("Ada"), valueAt(t, target, "customer.displayName"))
	assert.Equal(t, tree.Bool(true), valueAt(t, target, "customer.tier"))
	absentAt(t, target, "customer.flagged")
	assert.Equal(t, tree.Text("Ada Lovelace"), valueAt(t, target, "customer.fullName"))

	assert.Equal(t, tree.Text("ops"), valueAt(t, target, "annotations.owner"))
	assert.Equal(t, tree.Text("core"), valueAt(t, target, "annotations.team"))
	absentAt(t, target, "annotations.internal")

	assert.Equal(t, tree.Text("A-1"), valueAt(t, target, "lines.0.sku"))
	assert.Equal(t, tree.Number(10), valueAt(t, target, "lines.0.total"))
	assert.Equal(t, tree.Text("B-2"), valueAt(t, target, "lines.1.sku"))
	assert.Equal(t, tree.Number(9.5), valueAt(t, target, "lines.1.total"))

	assert.Equal(t, tree.Text("RUSH"), valueAt(t, target, "handling"))

	assert.Equal(t, tree.Text("Berlin"), valueAt(t, target, "address.city"))
	assert.Equal(t, tree.Text("10115"), valueAt(t, target, "address.zip"))

	assert.Equal(t, tree.Number(51.5), valueAt(t, target, "customer.geo_lat"))
	assert.Equal(t, tree.Number(-0.1), valueAt(t, target, "customer.geo_lng"))
}

func TestDefinition_Compile_IndependentRules(t *testing.T) {
	t.Parallel()

	def := parseDef(t, `
name: fragile
rules:
  - direct:
      from: a
      to: x
      when: source.a.b == 1.0
    independent: true
  - direct:
      from: a
      to: y
      when: source.a.b == 2.0
`)

	m, err := def.Compile(mappingfile.DefaultRegistries())
	require.NoError(t, err)

	_, err = m.Execute(tree.NewObject().Set("a", tree.Number(1)))
	require.Error(t, err)
	assert.ErrorIs(t, err, engine.ErrExecution)

	var execErr *engine.ExecutionError
	require.ErrorAs(t, err, &execErr)
	assert.Len(t, execErr.Failures, 2)
}

func TestDefinition_CompilePipeline(t *testing.T) {
	t.Parallel()

	doc := `
name: checked
rules:
  - direct:
      from: first
      to: name.first
  - direct:
      from: last
      to: name.last
  - combine:
      from: [first, last]
      to: name.full
      function: concat_ws
validation:
  config:
    throw_on_error: true
  pre:
    - field: first
      checks: [required, non-empty]
      type: text
      length: [1, 10]
  at:
    - after: 0
      rules:
        - field: name.first
          checks: required
  post:
    - group: concat-equals
      separator: " "
      paths: [name.first, name.last, name.full]
    - field: name.middle
      checks: required
      severity: warning
      code: middle-name
`

	source := tree.NewObject().
		Set("first", tree.Text("Ada")).
		Set("last", tree.Text("Lovelace"))

	t.Run("wires every phase", func(t *testing.T) {
		t.Parallel()
		p, err := parseDef(t, doc).CompilePipeline(mappingfile.DefaultRegistries())
		require.NoError(t, err)

		target, report, err := p.Run(source)
		require.NoError(t, err)
		assert.Equal(t, tree.Text("Ada Lovelace"), valueAt(t, target, "name.full"))

		require.NotNil(t, report.Pre)
		assert.True(t, report.Pre.IsValid())
		require.NotNil(t, report.In[0])
		assert.True(t, report.In[0].IsValid())
		require.NotNil(t, report.Post)
		assert.True(t, report.IsValid())

		require.Equal(t, 1, report.Post.Len())
		failure := report.Post.Failures()[0]
		assert.Equal(t, validation.SeverityWarning, failure.Severity)
		assert.Equal(t, "middle-name", failure.Code)
	})

	t.Run("throws on pre failures", func(t *testing.T) {
		t.Parallel()
		p, err := parseDef(t, doc).CompilePipeline(mappingfile.DefaultRegistries())
		require.NoError(t, err)

		target, _, err := p.Run(tree.NewObject().Set("last", tree.Text("Lovelace")))
		require.Error(t, err)
		assert.Nil(t, target)
		assert.ErrorIs(t, err, validation.ErrValidation)

		var vErr *validation.Error
		require.ErrorAs(t, err, &vErr)
		assert.Equal(t, validation.PhasePre, vErr.Phase)
	})

	t.Run("definitions without validation just execute", func(t *testing.T) {
		t.Parallel()
		def := parseDef(t, "name: plain\nrules:\n  - direct:\n      from: first\n      to: out\n")
		p, err := def.CompilePipeline(mappingfile.DefaultRegistries())
		require.NoError(t, err)

		target, report, err := p.Run(source)
		require.NoError(t, err)
		assert.Equal(t, tree.Text("Ada"), valueAt(t, target, "out"))
		assert.Nil(t, report.Pre)
		assert.Nil(t, report.In)
		assert.Nil(t, report.Post)
	})

	t.Run("config can drop warnings", func(t *testing.T) {
		t.Parallel()
		def := parseDef(t, `
name: quiet
rules:
  - direct:
      from: first
      to: out
validation:
  config:
    include_warnings: false
  post:
    - field: missing
      checks: required
      severity: warning
`)
		p, err := def.CompilePipeline(mappingfile.DefaultRegistries())
		require.NoError(t, err)

		_, report, err := p.Run(source)
		require.NoError(t, err)
		require.NotNil(t, report.Post)
		assert.Zero(t, report.Post.Len())
	})
}

func TestDefinition_CompilePipeline_CheckErrors(t *testing.T) {
	t.Parallel()

	twoRules := []mappingfile.RuleDef{
		{Direct: &mappingfile.DirectDef{From: "a", To: "x"}},
		{Direct: &mappingfile.DirectDef{From: "b", To: "y"}},
	}
	requiredList := mappingfile.StringList{"required"}

	tests := []struct {
		name    string
		val     *mappingfile.ValidationDef
		wantMsg string
	}{
		{
			name: "check with field and group",
			val: &mappingfile.ValidationDef{Pre: []mappingfile.CheckDef{{
				Field: "a", Checks: requiredList, Group: "all-present", Paths: []string{"a"},
			}}},
			wantMsg: "both field and group",
		},
		{
			name:    "check with neither field nor group",
			val:     &mappingfile.ValidationDef{Pre: []mappingfile.CheckDef{{}}},
			wantMsg: "neither field nor group",
		},
		{
			name: "unknown check name",
			val: &mappingfile.ValidationDef{Pre: []mappingfile.CheckDef{{
				Field: "a", Checks: mappingfile.StringList{"sparkly"},
			}}},
			wantMsg: `unknown check "sparkly"`,
		},
		{
			name: "field without any checks",
			val: &mappingfile.ValidationDef{Pre: []mappingfile.CheckDef{{
				Field: "a",
			}}},
			wantMsg: `field check for "a" declares no checks`,
		},
		{
			name: "unknown type",
			val: &mappingfile.ValidationDef{Pre: []mappingfile.CheckDef{{
				Field: "a", Type: "integer",
			}}},
			wantMsg: `unknown kind "integer"`,
		},
		{
			name: "range with wrong arity",
			val: &mappingfile.ValidationDef{Pre: []mappingfile.CheckDef{{
				Field: "a", Range: []float64{1},
			}}},
			wantMsg: "range needs [min, max], got 1 values",
		},
		{
			name: "length with wrong arity",
			val: &mappingfile.ValidationDef{Pre: []mappingfile.CheckDef{{
				Field: "a", Length: []int{1, 2, 3},
			}}},
			wantMsg: "length needs [min, max], got 3 values",
		},
		{
			name: "invalid pattern",
			val: &mappingfile.ValidationDef{Pre: []mappingfile.CheckDef{{
				Field: "a", Pattern: "(",
			}}},
			wantMsg: "invalid pattern",
		},
		{
			name: "unconvertible one_of value",
			val: &mappingfile.ValidationDef{Pre: []mappingfile.CheckDef{{
				Field: "a", OneOf: []any{struct{}{}},
			}}},
			wantMsg: "one_of value 0",
		},
		{
			name: "unknown group predicate",
			val: &mappingfile.ValidationDef{Pre: []mappingfile.CheckDef{{
				Group: "xor-present", Paths: []string{"a"},
			}}},
			wantMsg: `unknown group predicate "xor-present"`,
		},
		{
			name: "unknown severity",
			val: &mappingfile.ValidationDef{Pre: []mappingfile.CheckDef{{
				Field: "a", Checks: requiredList, Severity: "fatal",
			}}},
			wantMsg: `unknown severity "fatal"`,
		},
		{
			name: "anchor outside the rule list",
			val: &mappingfile.ValidationDef{At: []mappingfile.AnchoredDef{{
				After: 5, Rules: []mappingfile.CheckDef{{Field: "a", Checks: requiredList}},
			}}},
			wantMsg: "in-phase anchor 5 outside mapping rules [0, 2)",
		},
		{
			name: "anchored check errors carry their location",
			val: &mappingfile.ValidationDef{At: []mappingfile.AnchoredDef{{
				After: 0, Rules: []mappingfile.CheckDef{{Field: "a", Checks: mappingfile.StringList{"sparkly"}}},
			}}},
			wantMsg: "validation.at[0][0]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			def := &mappingfile.Definition{Name: "x", Rules: twoRules, Validation: tt.val}
			_, err := def.CompilePipeline(mappingfile.DefaultRegistries())
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestCompile_ErrorsAreNotExecutionErrors(t *testing.T) {
	t.Parallel()

	def := &mappingfile.Definition{Name: "x", Rules: []mappingfile.RuleDef{{
		Direct: &mappingfile.DirectDef{From: "a", To: "b", Transform: mappingfile.StringList{"sparkle"}},
	}}}
	_, err := def.Compile(mappingfile.DefaultRegistries())
	require.Error(t, err)
	assert.False(t, errors.Is(err, engine.ErrExecution))
}
