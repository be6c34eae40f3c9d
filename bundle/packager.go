// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package bundle

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/opencontainers/go-digest"
	specs "github.com/opencontainers/image-spec/specs-go"
	ocispec "github.com/opencontainers/image-spec/specs-go/v1"

	"github.com/stacklok/remap-core/env"
	"github.com/stacklok/remap-core/mappingfile"
)

// DefinitionFilename is the canonical mapping definition name inside a
// bundle directory. A .yml variant is accepted as a fallback.
const DefinitionFilename = "mapping.yaml"

// definitionFilenames are the accepted definition names, in lookup order.
var definitionFilenames = []string{DefinitionFilename, "mapping.yml"}

// Packager creates reproducible OCI artifacts from bundle directories.
type Packager struct {
	store *Store
}

// bundleContent holds the raw files and parsed definition from a bundle directory.
type bundleContent struct {
	// definitionName is the definition filename as found on disk.
	definitionName string
	definition     []byte
	def            *mappingfile.Definition

	// resources maps relative paths (e.g., "samples/input.json") to content.
	resources map[string][]byte
}

// Compile-time assertion that Packager implements BundlePackager.
var _ BundlePackager = (*Packager)(nil)

// NewPackager creates a new packager with the given store.
// Panics if store is nil.
func NewPackager(store *Store) *Packager {
	if store == nil {
		panic("bundle: NewPackager called with nil store")
	}
	return &Packager{store: store}
}

// DefaultPackageOptions returns default packaging options from the process
// environment. Respects SOURCE_DATE_EPOCH for reproducible builds.
func DefaultPackageOptions() PackageOptions {
	return PackageOptionsFromEnv(&env.OSReader{})
}

// PackageOptionsFromEnv returns default packaging options using the given
// environment reader.
func PackageOptionsFromEnv(reader env.Reader) PackageOptions {
	epoch := time.Unix(0, 0).UTC()

	if sde := reader.Getenv("SOURCE_DATE_EPOCH"); sde != "" {
		if ts, err := strconv.ParseInt(sde, 10, 64); err == nil {
			epoch = time.Unix(ts, 0).UTC()
		}
	}

	return PackageOptions{Epoch: epoch}
}

// Package packages a bundle directory into an OCI artifact in the local store.
// The directory must contain a mapping definition (mapping.yaml); everything
// else in it travels along as resources.
func (p *Packager) Package(ctx context.Context, bundleDir string, opts PackageOptions) (*PackageResult, error) {
	if opts.Epoch.IsZero() {
		opts.Epoch = time.Unix(0, 0).UTC()
	}

	content, err := readBundleDirectory(bundleDir)
	if err != nil {
		return nil, fmt.Errorf("reading bundle directory: %w", err)
	}

	layer, err := buildContentLayer(content, opts)
	if err != nil {
		return nil, fmt.Errorf("creating content layer: %w", err)
	}

	layerDigest, err := p.store.PutBlob(ctx, layer.Content)
	if err != nil {
		return nil, fmt.Errorf("storing layer blob: %w", err)
	}

	imgConfig, cfg := buildImageConfig(content, layer, opts)
	configBytes, err := json.Marshal(imgConfig)
	if err != nil {
		return nil, fmt.Errorf("marshaling config: %w", err)
	}

	configDigest, err := p.store.PutBlob(ctx, configBytes)
	if err != nil {
		return nil, fmt.Errorf("storing config blob: %w", err)
	}

	manifest := buildManifest(configBytes, configDigest, layer, layerDigest, content.def, opts)
	manifestBytes, err := json.Marshal(manifest)
	if err != nil {
		return nil, fmt.Errorf("marshaling manifest: %w", err)
	}

	manifestDigest, err := p.store.PutManifest(ctx, manifestBytes)
	if err != nil {
		return nil, fmt.Errorf("storing manifest: %w", err)
	}

	return &PackageResult{
		ManifestDigest: manifestDigest,
		ConfigDigest:   configDigest,
		LayerDigest:    layerDigest,
		Config:         cfg,
	}, nil
}

// readBundleDirectory reads a bundle directory, parses the mapping definition,
// and collects the remaining resources.
func readBundleDirectory(dir string) (*bundleContent, error) {
	if err := validateBundleDir(dir); err != nil {
		return nil, err
	}

	definitionName, definition, err := readDefinitionFile(dir)
	if err != nil {
		return nil, err
	}

	def, err := mappingfile.Parse(definition)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", definitionName, err)
	}

	resources, err := collectResources(dir, definitionName)
	if err != nil {
		return nil, err
	}

	return &bundleContent{
		definitionName: definitionName,
		definition:     definition,
		def:            def,
		resources:      resources,
	}, nil
}

// readDefinitionFile locates and reads the mapping definition in a bundle directory.
func readDefinitionFile(dir string) (string, []byte, error) {
	for _, name := range definitionFilenames {
		data, err := os.ReadFile(filepath.Join(dir, name)) //#nosec G304 -- path constructed from user-provided bundle directory
		if err == nil {
			return name, data, nil
		}
		if !os.IsNotExist(err) {
			return "", nil, fmt.Errorf("reading %s: %w", name, err)
		}
	}
	return "", nil, fmt.Errorf("%s not found in bundle directory", DefinitionFilename)
}

// validateBundleDir checks that the directory exists and is safe to read.
func validateBundleDir(dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("bundle directory not found: %s", dir)
		}
		return fmt.Errorf("accessing bundle directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("path is not a directory: %s", dir)
	}

	cleanDir := filepath.Clean(dir)
	if strings.Contains(cleanDir, "..") {
		return fmt.Errorf("invalid path: contains path traversal")
	}

	return nil
}

// collectResources walks a bundle directory and returns all regular files
// excluding the definition file and hidden entries.
func collectResources(dir, definitionName string) (map[string][]byte, error) {
	resources := make(map[string][]byte)
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}

		if path == dir {
			return nil
		}

		relPath, err := filepath.Rel(dir, path)
		if err != nil {
			return fmt.Errorf("getting relative path: %w", err)
		}
		relPath = filepath.ToSlash(relPath)

		// Skip hidden files/directories
		if strings.HasPrefix(filepath.Base(relPath), ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		// Security: reject symlinked directories (WalkDir follows them silently)
		if d.Type()&os.ModeSymlink != 0 {
			return fmt.Errorf("symlinks not allowed in bundle directory: %s", relPath)
		}

		if d.IsDir() {
			return nil
		}

		if err := validateResourceFile(path, relPath); err != nil {
			return err
		}

		// The definition is archived separately.
		if relPath == definitionName {
			return nil
		}

		content, err := os.ReadFile(path) //#nosec G304 -- path from WalkDir, symlink-checked
		if err != nil {
			return fmt.Errorf("reading %s: %w", relPath, err)
		}

		resources[relPath] = content
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking bundle directory: %w", err)
	}
	return resources, nil
}

// validateResourceFile checks that a file in the bundle directory is safe to include.
func validateResourceFile(absPath, relPath string) error {
	fileInfo, err := os.Lstat(absPath)
	if err != nil {
		return fmt.Errorf("checking file type for %s: %w", relPath, err)
	}
	if fileInfo.Mode()&os.ModeSymlink != 0 {
		return fmt.Errorf("symlinks not allowed in bundle directory: %s", relPath)
	}
	if !fileInfo.Mode().IsRegular() {
		return fmt.Errorf("non-regular file not allowed in bundle directory: %s", relPath)
	}
	return nil
}

// buildContentLayer creates the reproducible tar.gz layer for the bundle content.
func buildContentLayer(content *bundleContent, opts PackageOptions) (*Layer, error) {
	entries := make([]Entry, 0, len(content.resources)+1)
	entries = append(entries, Entry{
		Path: content.definitionName,
		Data: content.definition,
	})
	for p, data := range content.resources {
		entries = append(entries, Entry{Path: p, Data: data})
	}

	return BuildLayer(entries, ArchiveOptions{Epoch: opts.Epoch})
}

// buildImageConfig creates the OCI image config with bundle metadata in labels.
func buildImageConfig(content *bundleContent, layer *Layer, opts PackageOptions) (*ocispec.Image, *Config) {
	allFiles := []string{content.definitionName}
	for p := range content.resources {
		allFiles = append(allFiles, p)
	}
	slices.Sort(allFiles)

	cfg := &Config{
		Name:         content.def.Name,
		Description:  content.def.Description,
		Version:      content.def.Version,
		SourceFormat: content.def.SourceFormat,
		TargetFormat: content.def.TargetFormat,
		Files:        allFiles,
	}

	filesJSON, _ := json.Marshal(cfg.Files)

	epoch := opts.Epoch
	imgConfig := &ocispec.Image{
		Created: &epoch,
		// Bundle content is platform-independent.
		Platform: ocispec.Platform{
			Architecture: "unknown",
			OS:           "unknown",
		},
		Config: ocispec.ImageConfig{
			Labels: map[string]string{
				LabelBundleName:         cfg.Name,
				LabelBundleDescription:  cfg.Description,
				LabelBundleVersion:      cfg.Version,
				LabelBundleSourceFormat: cfg.SourceFormat,
				LabelBundleTargetFormat: cfg.TargetFormat,
				LabelBundleFiles:        string(filesJSON),
			},
		},
		RootFS: ocispec.RootFS{
			Type:    "layers",
			DiffIDs: []digest.Digest{layer.DiffID},
		},
		History: []ocispec.History{
			{
				Created:   &epoch,
				CreatedBy: "remap bundle",
			},
		},
	}

	return imgConfig, cfg
}

// buildManifest creates the OCI manifest for a bundle artifact.
func buildManifest(
	configBytes []byte,
	configDigest digest.Digest,
	layer *Layer,
	layerDigest digest.Digest,
	def *mappingfile.Definition,
	opts PackageOptions,
) *ocispec.Manifest {
	annotations := map[string]string{
		ocispec.AnnotationCreated:   opts.Epoch.Format(time.RFC3339),
		AnnotationBundleName:        def.Name,
		AnnotationBundleDescription: def.Description,
		AnnotationBundleVersion:     def.Version,
	}

	return &ocispec.Manifest{
		Versioned:    specs.Versioned{SchemaVersion: 2},
		MediaType:    ocispec.MediaTypeImageManifest,
		ArtifactType: ArtifactTypeBundle,
		Config: ocispec.Descriptor{
			MediaType: ocispec.MediaTypeImageConfig,
			Digest:    configDigest,
			Size:      int64(len(configBytes)),
		},
		Layers: []ocispec.Descriptor{
			{
				MediaType: ocispec.MediaTypeImageLayerGzip,
				Digest:    layerDigest,
				Size:      int64(len(layer.Content)),
			},
		},
		Annotations: annotations,
	}
}
