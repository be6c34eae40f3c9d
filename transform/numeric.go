// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package transform

import (
	"math"

	"github.com/stacklok/remap-core/tree"
)

// numericFunc lifts a float64 function into a transformer under the numeric
// fallback policy: non-Number input passes through unchanged.
func numericFunc(fn func(float64) float64) Func {
	return func(v tree.Value) tree.Value {
		n, ok := v.(tree.Number)
		if !ok {
			return v
		}
		return tree.Number(fn(float64(n)))
	}
}

// Round rounds half away from zero to the nearest integer.
func Round() Func { return numericFunc(math.Round) }

// Floor rounds toward negative infinity.
func Floor() Func { return numericFunc(math.Floor) }

// Ceil rounds toward positive infinity.
func Ceil() Func { return numericFunc(math.Ceil) }

// Abs maps a number to its absolute value.
func Abs() Func { return numericFunc(math.Abs) }

// Negate flips the sign.
func Negate() Func { return numericFunc(func(f float64) float64 { return -f }) }

// Scale multiplies by factor.
func Scale(factor float64) Func {
	return numericFunc(func(f float64) float64 { return f * factor })
}

// Offset adds delta.
func Offset(delta float64) Func {
	return numericFunc(func(f float64) float64 { return f + delta })
}

// FixedPrecision rounds to digits decimal places, half away from zero.
// Negative digits are treated as zero.
func FixedPrecision(digits int) Func {
	if digits < 0 {
		digits = 0
	}
	pow := math.Pow(10, float64(digits))
	return numericFunc(func(f float64) float64 {
		return math.Round(f*pow) / pow
	})
}
