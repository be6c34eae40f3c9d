// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package bundle

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/opencontainers/go-digest"
	ocispec "github.com/opencontainers/image-spec/specs-go/v1"

	"github.com/stacklok/remap-core/engine"
	"github.com/stacklok/remap-core/mappingfile"
)

// Bundle is the unpacked content of one stored mapping bundle.
type Bundle struct {
	// Digest is the bundle's manifest digest.
	Digest digest.Digest

	// Config is the metadata recorded in the artifact's config labels.
	Config *Config

	// Definition is the parsed mapping definition.
	Definition *mappingfile.Definition

	resources map[string][]byte
}

// Open resolves ref in the local store and unpacks the bundle it names.
// ref may be a tag, a full OCI reference, or a digest string.
func Open(ctx context.Context, store *Store, ref string) (*Bundle, error) {
	d, err := store.Resolve(ctx, ref)
	if err != nil {
		return nil, err
	}

	manifestBytes, err := store.GetManifest(ctx, d)
	if err != nil {
		return nil, err
	}

	var manifest ocispec.Manifest
	if err := json.Unmarshal(manifestBytes, &manifest); err != nil {
		return nil, fmt.Errorf("parsing manifest: %w", err)
	}

	if manifest.MediaType != ocispec.MediaTypeImageManifest {
		return nil, fmt.Errorf("unexpected media type %q for %s", manifest.MediaType, ref)
	}
	if manifest.ArtifactType != ArtifactTypeBundle {
		return nil, fmt.Errorf("artifact %s is not a mapping bundle (artifact type %q)", ref, manifest.ArtifactType)
	}
	if len(manifest.Layers) != 1 {
		return nil, fmt.Errorf("bundle manifest must carry exactly one layer, got %d", len(manifest.Layers))
	}

	configBytes, err := store.GetBlob(ctx, manifest.Config.Digest)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var img ocispec.Image
	if err := json.Unmarshal(configBytes, &img); err != nil {
		return nil, fmt.Errorf("parsing image config: %w", err)
	}

	cfg, err := ConfigFromImage(&img)
	if err != nil {
		return nil, err
	}

	layerBytes, err := store.GetBlob(ctx, manifest.Layers[0].Digest)
	if err != nil {
		return nil, fmt.Errorf("reading layer: %w", err)
	}

	entries, err := ExtractLayer(layerBytes)
	if err != nil {
		return nil, fmt.Errorf("extracting layer: %w", err)
	}

	definitionName, definition, resources, err := splitEntries(entries)
	if err != nil {
		return nil, err
	}

	def, err := mappingfile.Parse(definition)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", definitionName, err)
	}

	return &Bundle{
		Digest:     d,
		Config:     cfg,
		Definition: def,
		resources:  resources,
	}, nil
}

// splitEntries separates the mapping definition from the auxiliary resources.
func splitEntries(entries []Entry) (name string, definition []byte, resources map[string][]byte, err error) {
	byPath := make(map[string][]byte, len(entries))
	for _, e := range entries {
		byPath[e.Path] = e.Data
	}

	for _, candidate := range definitionFilenames {
		if data, ok := byPath[candidate]; ok {
			delete(byPath, candidate)
			return candidate, data, byPath, nil
		}
	}

	return "", nil, nil, fmt.Errorf("bundle layer does not contain %s", DefinitionFilename)
}

// Resource returns the content of one auxiliary file by its archive path.
func (b *Bundle) Resource(path string) ([]byte, bool) {
	data, ok := b.resources[path]
	return data, ok
}

// Resources returns the archive paths of all auxiliary files, sorted.
func (b *Bundle) Resources() []string {
	paths := make([]string, 0, len(b.resources))
	for p := range b.resources {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Compile compiles the bundle's mapping definition against the given registries.
func (b *Bundle) Compile(regs mappingfile.Registries, opts ...engine.MappingOption) (*engine.Mapping, error) {
	return b.Definition.Compile(regs, opts...)
}
