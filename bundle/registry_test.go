// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package bundle

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/opencontainers/go-digest"
	ocispec "github.com/opencontainers/image-spec/specs-go/v1"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"oras.land/oras-go/v2"
	"oras.land/oras-go/v2/content/memory"
	"oras.land/oras-go/v2/registry"
)

func TestNewRegistry_Default(t *testing.T) {
	t.Parallel()

	reg, err := NewRegistry()
	require.NoError(t, err)
	assert.NotNil(t, reg)
	assert.NotNil(t, reg.credStore, "default credential store should be set")
	assert.False(t, reg.plainHTTP, "plainHTTP should default to false")
}

func TestNewRegistry_WithOptions(t *testing.T) {
	t.Parallel()

	reg, err := NewRegistry(
		WithPlainHTTP(true),
	)
	require.NoError(t, err)
	assert.True(t, reg.plainHTTP, "plainHTTP should be set by option")
}

func TestParseReference(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		ref     string
		wantErr bool
	}{
		{"valid tag", "ghcr.io/myorg/bundle:v1.0.0", false},
		{"valid digest", "ghcr.io/myorg/bundle@sha256:e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855", false},
		{"missing tag or digest", "ghcr.io/myorg/bundle", true},
		{"invalid reference", ":::invalid", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := parseReference(tt.ref)
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestMediaTypePredicates(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		mediaType    string
		wantManifest bool
		wantIndex    bool
	}{
		{"OCI manifest", ocispec.MediaTypeImageManifest, true, false},
		{"Docker manifest", "application/vnd.docker.distribution.manifest.v2+json", true, false},
		{"OCI index", ocispec.MediaTypeImageIndex, false, true},
		{"Docker manifest list", "application/vnd.docker.distribution.manifest.list.v2+json", false, true},
		{"OCI config", ocispec.MediaTypeImageConfig, false, false},
		{"OCI gzip layer", ocispec.MediaTypeImageLayerGzip, false, false},
		{"octet-stream", "application/octet-stream", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.wantManifest, isManifestMediaType(tt.mediaType))
			assert.Equal(t, tt.wantIndex, isIndexMediaType(tt.mediaType))
		})
	}
}

// --- validatingTarget tests ---

func TestValidatingTarget_RejectOversizedContent(t *testing.T) {
	t.Parallel()

	ctx := t.Context()
	vt := newValidatingTarget(memory.New())

	oversized := make([]byte, MaxManifestSize+1)
	desc := ocispec.Descriptor{
		MediaType: ocispec.MediaTypeImageManifest,
		Digest:    digest.FromBytes(oversized),
		Size:      int64(len(oversized)),
	}

	err := vt.Push(ctx, desc, bytes.NewReader(oversized))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exceeds maximum allowed size")
}

func TestValidatingTarget_RejectLyingDescriptor(t *testing.T) {
	t.Parallel()

	ctx := t.Context()
	vt := newValidatingTarget(memory.New())

	oversized := make([]byte, MaxManifestSize+1)
	desc := ocispec.Descriptor{
		MediaType: ocispec.MediaTypeImageManifest,
		Digest:    digest.FromBytes(oversized),
		Size:      10, // lying
	}

	err := vt.Push(ctx, desc, bytes.NewReader(oversized))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exceeds maximum allowed size")
}

func TestValidatingTarget_RejectNegativeSize(t *testing.T) {
	t.Parallel()

	ctx := t.Context()
	vt := newValidatingTarget(memory.New())

	desc := ocispec.Descriptor{
		MediaType: ocispec.MediaTypeImageManifest,
		Digest:    digest.FromString("test"),
		Size:      -1,
	}

	err := vt.Push(ctx, desc, bytes.NewReader([]byte("test")))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid negative content size")
}

func TestValidatingTarget_RejectDigestMismatch(t *testing.T) {
	t.Parallel()

	ctx := t.Context()
	vt := newValidatingTarget(memory.New())

	content := []byte("actual content")
	desc := ocispec.Descriptor{
		MediaType: "application/octet-stream",
		Digest:    digest.FromString("something else"),
		Size:      int64(len(content)),
	}

	err := vt.Push(ctx, desc, bytes.NewReader(content))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "digest mismatch")
}

func TestValidatingTarget_RejectIndex(t *testing.T) {
	t.Parallel()

	ctx := t.Context()
	vt := newValidatingTarget(memory.New())

	index := ocispec.Index{MediaType: ocispec.MediaTypeImageIndex}
	indexBytes, err := json.Marshal(index)
	require.NoError(t, err)

	desc := ocispec.Descriptor{
		MediaType: ocispec.MediaTypeImageIndex,
		Digest:    digest.FromBytes(indexBytes),
		Size:      int64(len(indexBytes)),
	}

	err = vt.Push(ctx, desc, bytes.NewReader(indexBytes))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "single-manifest")
}

func TestValidatingTarget_AcceptValidContent(t *testing.T) {
	t.Parallel()

	ctx := t.Context()
	inner := memory.New()
	vt := newValidatingTarget(inner)

	content := []byte(`{"schemaVersion": 2}`)
	desc := ocispec.Descriptor{
		MediaType: ocispec.MediaTypeImageManifest,
		Digest:    digest.FromBytes(content),
		Size:      int64(len(content)),
	}

	err := vt.Push(ctx, desc, bytes.NewReader(content))
	require.NoError(t, err)

	exists, err := inner.Exists(ctx, desc)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestValidateManifestLayers(t *testing.T) {
	t.Parallel()

	t.Run("too many layers", func(t *testing.T) {
		t.Parallel()
		manifest := ocispec.Manifest{
			MediaType: ocispec.MediaTypeImageManifest,
			Layers:    make([]ocispec.Descriptor, maxManifestLayers+1),
		}
		data, err := json.Marshal(manifest)
		require.NoError(t, err)

		err = validateManifestLayers(data)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "exceeds maximum")
	})

	t.Run("single layer", func(t *testing.T) {
		t.Parallel()
		manifest := ocispec.Manifest{
			MediaType: ocispec.MediaTypeImageManifest,
			Layers:    make([]ocispec.Descriptor, 1),
		}
		data, err := json.Marshal(manifest)
		require.NoError(t, err)

		require.NoError(t, validateManifestLayers(data))
	})
}

// --- Integration tests using in-memory target ---

func newTestRegistry(t *testing.T, remoteStore *memory.Store) *Registry {
	t.Helper()
	return &Registry{
		newTarget: func(_ registry.Reference) (oras.Target, error) {
			return remoteStore, nil
		},
	}
}

func TestPushPull_RoundTrip(t *testing.T) {
	t.Parallel()

	ctx := t.Context()
	remoteStore := memory.New()

	localStore, err := NewStore(t.TempDir())
	require.NoError(t, err)

	result := packageTestBundle(t, localStore)

	reg := newTestRegistry(t, remoteStore)
	ref := "example.com/myorg/invoice-export:v1.0.0"

	err = reg.Push(ctx, localStore, result.ManifestDigest, ref)
	require.NoError(t, err)

	// Pull into a fresh store
	pullStore, err := NewStore(t.TempDir())
	require.NoError(t, err)

	pulledDigest, err := reg.Pull(ctx, pullStore, ref)
	require.NoError(t, err)
	assert.Equal(t, result.ManifestDigest, pulledDigest)

	// Verify tag resolution with the full reference
	resolved, err := pullStore.Resolve(ctx, ref)
	require.NoError(t, err)
	assert.Equal(t, pulledDigest, resolved)

	// The pulled bundle opens and parses cleanly
	b, err := Open(ctx, pullStore, ref)
	require.NoError(t, err)
	assert.Equal(t, testBundleName, b.Definition.Name)
	assert.Equal(t, []string{"samples/input.json"}, b.Resources())
}

func TestPush_InvalidReference(t *testing.T) {
	t.Parallel()

	ctx := t.Context()
	localStore, err := NewStore(t.TempDir())
	require.NoError(t, err)

	reg := newTestRegistry(t, memory.New())
	err = reg.Push(ctx, localStore, digest.FromString("test"), ":::invalid")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing reference")
}

func TestPull_InvalidReference(t *testing.T) {
	t.Parallel()

	ctx := t.Context()
	localStore, err := NewStore(t.TempDir())
	require.NoError(t, err)

	reg := newTestRegistry(t, memory.New())
	_, err = reg.Pull(ctx, localStore, ":::invalid")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing reference")
}

func TestPush_UnknownDigestFails(t *testing.T) {
	t.Parallel()

	ctx := t.Context()
	localStore, err := NewStore(t.TempDir())
	require.NoError(t, err)

	reg := newTestRegistry(t, memory.New())
	err = reg.Push(ctx, localStore, digest.FromString("never stored"), "example.com/org/bundle:v1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "resolving bundle descriptor")
}
