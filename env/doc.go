// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

/*
Package env abstracts environment variable access behind a small Reader
interface so that callers can be tested without mutating process state.

# Basic Usage

OSReader reads from the real process environment:

	reader := &env.OSReader{}
	value := reader.Getenv("REMAP_MAPPING_PATH")

# Testing

Code that accepts a Reader can swap in the generated mock from the mocks
sub-package instead of touching real environment variables:

	ctrl := gomock.NewController(t)
	reader := mocks.NewMockReader(ctrl)
	reader.EXPECT().Getenv("REMAP_MAPPING_PATH").Return("/etc/remap")

	dirs := mappingfile.SearchPath(reader)
*/
package env
