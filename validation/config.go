// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package validation

import (
	"encoding/json"
	"fmt"
	"os"
)

// Config controls how a validator evaluates its rules.
type Config struct {
	// FailFast stops phase evaluation at the first error-severity failure.
	// Warnings and info failures never stop evaluation.
	FailFast bool `json:"fail_fast,omitempty"`

	// ThrowOnError converts an invalid result into a returned *Error at the
	// phase boundary instead of leaving the caller to inspect the result.
	ThrowOnError bool `json:"throw_on_error,omitempty"`

	// IncludeWarnings keeps warning and info failures in the result. When
	// false only error-severity failures are reported.
	IncludeWarnings bool `json:"include_warnings"`
}

// DefaultConfig collects everything: no fail-fast, no throwing, warnings
// included.
func DefaultConfig() Config {
	return Config{IncludeWarnings: true}
}

// ConfigFromFile loads a config profile from a JSON file. Absent fields
// keep their defaults.
func ConfigFromFile(path string) (Config, error) {
	cfg := DefaultConfig()

	// #nosec G304 - reading a user-specified validation profile is the point
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read validation profile: %w", err)
	}

	if err := json.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse validation profile: %w", err)
	}

	return cfg, nil
}
