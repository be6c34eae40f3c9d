// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

/*
Package bundle packages mapping definitions as OCI artifacts and moves them
between local content stores and remote registries.

A bundle is a directory holding one mapping definition (mapping.yaml) plus any
auxiliary resources: sample documents, downstream schemas, documentation. The
packager turns the directory into a single-manifest OCI artifact with one
reproducible tar.gz layer; metadata from the definition (name, description,
version, formats) lands in the image config labels and manifest annotations.
Bundle content is platform-independent, so artifacts carry no platform index.

# Packaging

	store, err := bundle.NewStore(bundle.DefaultStoreRoot())
	...
	packager := bundle.NewPackager(store)
	result, err := packager.Package(ctx, "./invoice-bundle", bundle.DefaultPackageOptions())

Layers are reproducible: entries are sorted, headers normalized, and all
timestamps pinned to the packaging epoch. DefaultPackageOptions honors
SOURCE_DATE_EPOCH.

# Distribution

Registry push and pull operate on manifest digests against OCI references:

	reg, err := bundle.NewRegistry()
	...
	err = reg.Push(ctx, store, result.ManifestDigest, "ghcr.io/myorg/invoice:v1")
	dgst, err := reg.Pull(ctx, store, "ghcr.io/myorg/invoice:v1")

Pulled content passes through a validating target that enforces size limits,
verifies digests, and rejects multi-manifest indexes before anything is
written to the local store.

# Reading

Open unpacks a stored bundle back into its parsed definition and resources:

	b, err := bundle.Open(ctx, store, "ghcr.io/myorg/invoice:v1")
	...
	mapping, err := b.Compile(mappingfile.DefaultRegistries())
*/
package bundle
