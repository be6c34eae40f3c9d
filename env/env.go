// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package env

//go:generate mockgen -source=env.go -destination=mocks/mock_reader.go -package=mocks Reader

import "os"

// Reader supplies environment variable lookups.
type Reader interface {
	Getenv(key string) string
}

// OSReader reads from the process environment via the os package.
type OSReader struct{}

// Getenv returns the value of the environment variable named by key.
func (*OSReader) Getenv(key string) string {
	return os.Getenv(key)
}
