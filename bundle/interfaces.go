// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package bundle

//go:generate mockgen -source=interfaces.go -destination=mocks/mock_interfaces.go -package=mocks

import (
	"context"
	"time"

	"github.com/opencontainers/go-digest"
)

// RegistryClient provides remote OCI registry operations for bundles.
type RegistryClient interface {
	// Push pushes a bundle from the local store to a remote registry.
	Push(ctx context.Context, store *Store, manifestDigest digest.Digest, ref string) error

	// Pull pulls a bundle from a remote registry into the local store.
	Pull(ctx context.Context, store *Store, ref string) (digest.Digest, error)
}

// BundlePackager creates OCI artifacts from bundle directories.
type BundlePackager interface {
	// Package packages a bundle directory into an OCI artifact in the local store.
	Package(ctx context.Context, bundleDir string, opts PackageOptions) (*PackageResult, error)
}

// PackageOptions configures bundle packaging.
type PackageOptions struct {
	// Epoch is the timestamp to use for reproducible builds.
	Epoch time.Time
}

// PackageResult contains the result of packaging a bundle.
type PackageResult struct {
	ManifestDigest digest.Digest
	ConfigDigest   digest.Digest
	LayerDigest    digest.Digest
	Config         *Config
}
