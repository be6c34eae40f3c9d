// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package transform

import (
	"time"

	timefmt "github.com/itchyny/timefmt-go"

	"github.com/stacklok/remap-core/tree"
)

// Date transformers use strptime-style layouts (%Y-%m-%d %H:%M:%S). Input
// that is not Text, or does not parse under the input layout, passes
// through unchanged.

// DateFormat reparses text from inLayout to outLayout.
func DateFormat(inLayout, outLayout string) Func {
	return func(v tree.Value) tree.Value {
		s, ok := v.(tree.Text)
		if !ok {
			return v
		}
		t, err := timefmt.Parse(string(s), inLayout)
		if err != nil {
			return v
		}
		return tree.Text(timefmt.Format(t, outLayout))
	}
}

// DateToEpoch parses text under layout and yields Unix seconds as a Number.
func DateToEpoch(layout string) Func {
	return func(v tree.Value) tree.Value {
		s, ok := v.(tree.Text)
		if !ok {
			return v
		}
		t, err := timefmt.Parse(string(s), layout)
		if err != nil {
			return v
		}
		return tree.Number(t.Unix())
	}
}

// EpochToDate formats a Number of Unix seconds under layout, in UTC.
func EpochToDate(layout string) Func {
	return func(v tree.Value) tree.Value {
		n, ok := v.(tree.Number)
		if !ok {
			return v
		}
		t := time.Unix(int64(n), 0).UTC()
		return tree.Text(timefmt.Format(t, layout))
	}
}
