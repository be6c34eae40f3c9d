// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package bundle

import (
	"encoding/json"
	"fmt"

	ocispec "github.com/opencontainers/image-spec/specs-go/v1"
)

// ArtifactTypeBundle identifies mapping-bundle artifacts in manifests.
const ArtifactTypeBundle = "dev.remap.bundles.v1"

// Annotation keys for bundle metadata in manifests.
const (
	// AnnotationBundleName is the annotation key for the mapping name.
	AnnotationBundleName = "dev.remap.bundles.name"

	// AnnotationBundleDescription is the annotation key for the mapping description.
	AnnotationBundleDescription = "dev.remap.bundles.description"

	// AnnotationBundleVersion is the annotation key for the mapping version.
	AnnotationBundleVersion = "dev.remap.bundles.version"
)

// Label keys for bundle metadata in OCI image config.
const (
	// LabelBundleName is the label key for the mapping name.
	LabelBundleName = "dev.remap.bundles.name"

	// LabelBundleDescription is the label key for the mapping description.
	LabelBundleDescription = "dev.remap.bundles.description"

	// LabelBundleVersion is the label key for the mapping version.
	LabelBundleVersion = "dev.remap.bundles.version"

	// LabelBundleSourceFormat is the label key for the mapping source format.
	LabelBundleSourceFormat = "dev.remap.bundles.sourceFormat"

	// LabelBundleTargetFormat is the label key for the mapping target format.
	LabelBundleTargetFormat = "dev.remap.bundles.targetFormat"

	// LabelBundleFiles is the label key for the bundle file list (JSON array).
	LabelBundleFiles = "dev.remap.bundles.files"
)

// Config represents bundle metadata extracted from OCI image config labels.
type Config struct {
	Name         string   `json:"name"`
	Description  string   `json:"description,omitempty"`
	Version      string   `json:"version,omitempty"`
	SourceFormat string   `json:"sourceFormat,omitempty"`
	TargetFormat string   `json:"targetFormat,omitempty"`
	Files        []string `json:"files"`
}

// ConfigFromImage extracts bundle Config from OCI image config labels.
func ConfigFromImage(img *ocispec.Image) (*Config, error) {
	if img == nil {
		return nil, fmt.Errorf("image config is nil")
	}

	labels := img.Config.Labels
	if labels == nil {
		return nil, fmt.Errorf("oci config has no labels")
	}

	config := &Config{
		Name:         labels[LabelBundleName],
		Description:  labels[LabelBundleDescription],
		Version:      labels[LabelBundleVersion],
		SourceFormat: labels[LabelBundleSourceFormat],
		TargetFormat: labels[LabelBundleTargetFormat],
	}

	if config.Name == "" {
		return nil, fmt.Errorf("bundle name is required in labels")
	}

	if filesJSON := labels[LabelBundleFiles]; filesJSON != "" {
		if err := json.Unmarshal([]byte(filesJSON), &config.Files); err != nil {
			return nil, fmt.Errorf("parsing files label: %w", err)
		}
	}

	return config, nil
}
