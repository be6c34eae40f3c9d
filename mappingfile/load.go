// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package mappingfile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"

	"github.com/stacklok/remap-core/env"
)

// EnvMappingPath names the environment variable holding a list of extra
// directories, in os.PathListSeparator form, that Find searches before the
// XDG config location.
const EnvMappingPath = "REMAP_MAPPING_PATH"

// ErrDefinitionNotFound is returned by Find when no search directory holds
// the named definition.
var ErrDefinitionNotFound = errors.New("mapping definition not found")

// Parse validates raw YAML against the mapping schema and decodes it into
// a Definition.
func Parse(data []byte) (*Definition, error) {
	if err := ValidateBytes(data); err != nil {
		return nil, err
	}

	var def Definition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("failed to parse mapping definition: %w", err)
	}
	return &def, nil
}

// LoadFile reads and parses a definition from an explicit path.
func LoadFile(path string) (*Definition, error) {
	// #nosec G304 - reading a user-specified mapping definition is the point
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read mapping definition: %w", err)
	}

	def, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return def, nil
}

// SearchPath returns the directories Find searches, in order: entries of
// EnvMappingPath, then the remap/mappings directory under the XDG config
// home. A nil reader uses the process environment.
func SearchPath(reader env.Reader) []string {
	if reader == nil {
		reader = &env.OSReader{}
	}

	var dirs []string
	if raw := reader.Getenv(EnvMappingPath); raw != "" {
		for _, dir := range filepath.SplitList(raw) {
			if dir != "" {
				dirs = append(dirs, dir)
			}
		}
	}
	return append(dirs, filepath.Join(xdg.ConfigHome, "remap", "mappings"))
}

// Find locates a definition by name, trying <dir>/<name>.yaml and
// <dir>/<name>.yml in each search directory.
func Find(name string, reader env.Reader) (*Definition, error) {
	for _, dir := range SearchPath(reader) {
		for _, ext := range []string{".yaml", ".yml"} {
			path := filepath.Join(dir, name+ext)
			if _, err := os.Stat(path); err == nil {
				return LoadFile(path)
			}
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrDefinitionNotFound, name)
}
