// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package validation_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stacklok/remap-core/tree"
	"github.com/stacklok/remap-core/validation"
)

func invoiceDoc() tree.Value {
	return tree.NewObject().
		Set("invoice", tree.NewObject().
			Set("net", tree.Number(100)).
			Set("tax", tree.Number(19)).
			Set("gross", tree.Number(119)).
			Set("currency", tree.Text("EUR"))).
		Set("customer", tree.NewObject().
			Set("first", tree.Text("Ada")).
			Set("last", tree.Text("Lovelace")).
			Set("full", tree.Text("Ada Lovelace"))).
		Set("lines", tree.Array{
			tree.NewObject().Set("sku", tree.Text("A-1")),
			tree.NewObject().Set("sku", tree.Text("")),
		})
}

func TestField(t *testing.T) {
	t.Parallel()

	t.Run("builds with defaults", func(t *testing.T) {
		t.Parallel()
		r, err := validation.Field("invoice.net", validation.Required())
		require.NoError(t, err)
		assert.Equal(t, "field invoice.net [required]", r.Describe())
	})

	t.Run("rejects invalid path", func(t *testing.T) {
		t.Parallel()
		_, err := validation.Field("a..b", validation.Required())
		assert.Error(t, err)
	})

	t.Run("rejects empty check list", func(t *testing.T) {
		t.Parallel()
		_, err := validation.Field("invoice.net")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "has no checks")
	})
}

func TestFieldRule_Evaluate(t *testing.T) {
	t.Parallel()

	t.Run("passing field yields no failures", func(t *testing.T) {
		t.Parallel()
		r, err := validation.Field("invoice.net", validation.Required(), validation.TypeIs(tree.KindNumber))
		require.NoError(t, err)

		assert.Empty(t, r.Evaluate(invoiceDoc()))
	})

	t.Run("required fires at the literal path when nothing matches", func(t *testing.T) {
		t.Parallel()
		r, err := validation.Field("invoice.due", validation.Required())
		require.NoError(t, err)

		failures := r.Evaluate(invoiceDoc())
		require.Len(t, failures, 1)
		assert.Equal(t, "invoice.due", failures[0].Path)
		assert.Equal(t, "value is required", failures[0].Message)
		assert.Nil(t, failures[0].Value)
		assert.Equal(t, validation.SeverityError, failures[0].Severity)
	})

	t.Run("optional checks pass on absent paths", func(t *testing.T) {
		t.Parallel()
		r, err := validation.Field("invoice.due", validation.NonEmpty(), validation.TypeIs(tree.KindText))
		require.NoError(t, err)

		assert.Empty(t, r.Evaluate(invoiceDoc()))
	})

	t.Run("wildcard failures carry concrete paths", func(t *testing.T) {
		t.Parallel()
		r, err := validation.Field("lines.*.sku", validation.NonEmpty())
		require.NoError(t, err)

		failures := r.Evaluate(invoiceDoc())
		require.Len(t, failures, 1)
		assert.Equal(t, "lines.1.sku", failures[0].Path)
		assert.Equal(t, tree.Text(""), failures[0].Value)
	})

	t.Run("every failing check produces its own failure", func(t *testing.T) {
		t.Parallel()
		r, err := validation.Field("invoice.currency",
			validation.TypeIs(tree.KindNumber),
			validation.Length(4, 5),
		)
		require.NoError(t, err)

		failures := r.Evaluate(invoiceDoc())
		require.Len(t, failures, 2)
		assert.Equal(t, "expected number, got text", failures[0].Message)
		assert.Contains(t, failures[1].Message, "length 3 outside range")
	})

	t.Run("severity and code are carried into failures", func(t *testing.T) {
		t.Parallel()
		r, err := validation.Field("invoice.due", validation.Required())
		require.NoError(t, err)
		r = r.WithSeverity(validation.SeverityWarning).WithCode("due-date")

		failures := r.Evaluate(invoiceDoc())
		require.Len(t, failures, 1)
		assert.Equal(t, validation.SeverityWarning, failures[0].Severity)
		assert.Equal(t, "due-date", failures[0].Code)
	})
}

func TestGroup(t *testing.T) {
	t.Parallel()

	t.Run("rejects nil predicate", func(t *testing.T) {
		t.Parallel()
		_, err := validation.Group("balance", nil, "a", "b")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "has no predicate")
	})

	t.Run("rejects empty path list", func(t *testing.T) {
		t.Parallel()
		_, err := validation.Group("balance", validation.SumEquals())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "has no paths")
	})

	t.Run("rejects invalid path", func(t *testing.T) {
		t.Parallel()
		_, err := validation.Group("balance", validation.SumEquals(), "a..b")
		assert.Error(t, err)
	})

	t.Run("describes name and members", func(t *testing.T) {
		t.Parallel()
		r, err := validation.Group("balance", validation.SumEquals(),
			"invoice.net", "invoice.tax", "invoice.gross")
		require.NoError(t, err)
		assert.Equal(t, "group balance over [invoice.net, invoice.tax, invoice.gross]", r.Describe())
	})
}

func TestGroupRule_SumEquals(t *testing.T) {
	t.Parallel()

	t.Run("balanced components pass", func(t *testing.T) {
		t.Parallel()
		r, err := validation.Group("balance", validation.SumEquals(),
			"invoice.net", "invoice.tax", "invoice.gross")
		require.NoError(t, err)

		assert.Empty(t, r.Evaluate(invoiceDoc()))
	})

	t.Run("rounding within tolerance passes", func(t *testing.T) {
		t.Parallel()
		doc := tree.NewObject().
			Set("a", tree.Number(0.1)).
			Set("b", tree.Number(0.2)).
			Set("total", tree.Number(0.3))
		r, err := validation.Group("balance", validation.SumEquals(), "a", "b", "total")
		require.NoError(t, err)

		assert.Empty(t, r.Evaluate(doc))
	})

	t.Run("imbalance fails with both sums", func(t *testing.T) {
		t.Parallel()
		doc := tree.NewObject().
			Set("a", tree.Number(1)).
			Set("b", tree.Number(2)).
			Set("total", tree.Number(4))
		r, err := validation.Group("balance", validation.SumEquals(), "a", "b", "total")
		require.NoError(t, err)

		failures := r.Evaluate(doc)
		require.Len(t, failures, 1)
		assert.Equal(t, "a, b, total", failures[0].Path)
		assert.Equal(t, "components sum to 3, expected 4", failures[0].Message)
	})

	t.Run("absent members count as zero", func(t *testing.T) {
		t.Parallel()
		doc := tree.NewObject().
			Set("net", tree.Number(100)).
			Set("gross", tree.Number(100))
		r, err := validation.Group("balance", validation.SumEquals(), "net", "discount", "gross")
		require.NoError(t, err)

		assert.Empty(t, r.Evaluate(doc))
	})

	t.Run("needs a component and a total", func(t *testing.T) {
		t.Parallel()
		r, err := validation.Group("balance", validation.SumEquals(), "invoice.gross")
		require.NoError(t, err)

		failures := r.Evaluate(invoiceDoc())
		require.Len(t, failures, 1)
		assert.Contains(t, failures[0].Message, "sum check needs")
	})
}

func TestGroupRule_ConcatEquals(t *testing.T) {
	t.Parallel()

	t.Run("joined components pass", func(t *testing.T) {
		t.Parallel()
		r, err := validation.Group("full name", validation.ConcatEquals(" "),
			"customer.first", "customer.last", "customer.full")
		require.NoError(t, err)

		assert.Empty(t, r.Evaluate(invoiceDoc()))
	})

	t.Run("mismatch fails with both strings", func(t *testing.T) {
		t.Parallel()
		doc := tree.NewObject().
			Set("first", tree.Text("Ada")).
			Set("last", tree.Text("Lovelace")).
			Set("full", tree.Text("A. Lovelace"))
		r, err := validation.Group("full name", validation.ConcatEquals(" "), "first", "last", "full")
		require.NoError(t, err)

		failures := r.Evaluate(doc)
		require.Len(t, failures, 1)
		assert.Equal(t, `components join to "Ada Lovelace", expected "A. Lovelace"`, failures[0].Message)
	})

	t.Run("absent members count as empty text", func(t *testing.T) {
		t.Parallel()
		doc := tree.NewObject().
			Set("first", tree.Text("Ada")).
			Set("full", tree.Text("Ada"))
		r, err := validation.Group("full name", validation.ConcatEquals(""), "first", "middle", "full")
		require.NoError(t, err)

		assert.Empty(t, r.Evaluate(doc))
	})
}

func TestGroupRule_Presence(t *testing.T) {
	t.Parallel()

	t.Run("all present passes", func(t *testing.T) {
		t.Parallel()
		r, err := validation.Group("identity", validation.AllPresent(),
			"customer.first", "customer.last")
		require.NoError(t, err)

		assert.Empty(t, r.Evaluate(invoiceDoc()))
	})

	t.Run("all present names the missing paths", func(t *testing.T) {
		t.Parallel()
		r, err := validation.Group("identity", validation.AllPresent(),
			"customer.first", "customer.phone", "customer.email")
		require.NoError(t, err)

		failures := r.Evaluate(invoiceDoc())
		require.Len(t, failures, 1)
		assert.Equal(t, "missing: customer.phone, customer.email", failures[0].Message)
		assert.Equal(t, "customer.first, customer.phone, customer.email", failures[0].Path)
	})

	t.Run("any present passes on one match", func(t *testing.T) {
		t.Parallel()
		r, err := validation.Group("contact", validation.AnyPresent(),
			"customer.phone", "customer.full")
		require.NoError(t, err)

		assert.Empty(t, r.Evaluate(invoiceDoc()))
	})

	t.Run("any present fails when nothing matches", func(t *testing.T) {
		t.Parallel()
		r, err := validation.Group("contact", validation.AnyPresent(),
			"customer.phone", "customer.email")
		require.NoError(t, err)

		failures := r.Evaluate(invoiceDoc())
		require.Len(t, failures, 1)
		assert.Equal(t, "none of the paths are present", failures[0].Message)
	})

	t.Run("severity and code are carried into failures", func(t *testing.T) {
		t.Parallel()
		r, err := validation.Group("contact", validation.AnyPresent(), "customer.phone")
		require.NoError(t, err)
		r = r.WithSeverity(validation.SeverityInfo).WithCode("contact-hint")

		failures := r.Evaluate(invoiceDoc())
		require.Len(t, failures, 1)
		assert.Equal(t, validation.SeverityInfo, failures[0].Severity)
		assert.Equal(t, "contact-hint", failures[0].Code)
	})
}
