// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package bundle

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"fmt"
	"io"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/opencontainers/go-digest"
)

// MaxEntrySize is the maximum size of a single file extracted from a layer (100MB).
const MaxEntrySize int64 = 100 * 1024 * 1024

// MaxLayerSize is the maximum decompressed size of a layer (100MB).
// This prevents decompression bombs.
const MaxLayerSize int64 = 100 * 1024 * 1024

// gzipOSUnknown is the OS value for "unknown" in gzip headers (RFC 1952).
// Using this value ensures cross-platform reproducibility.
const gzipOSUnknown = 255

// Entry is one file inside a bundle layer.
type Entry struct {
	Path string // path within the archive
	Data []byte // file content
	Mode int64  // file mode (defaults to 0644)
}

// ArchiveOptions configures reproducible layer creation.
type ArchiveOptions struct {
	// Epoch is the timestamp stamped on every archive member and the gzip
	// header. If zero, uses Unix epoch (1970-01-01).
	Epoch time.Time

	// Level is the gzip compression level (defaults to gzip.BestCompression).
	Level int
}

// DefaultArchiveOptions returns default options for reproducible layers.
func DefaultArchiveOptions() ArchiveOptions {
	return ArchiveOptions{
		Epoch: time.Unix(0, 0).UTC(),
		Level: gzip.BestCompression,
	}
}

// Layer is a reproducible tar.gz built from bundle entries.
type Layer struct {
	// Content is the gzip-compressed archive, stored as the layer blob.
	Content []byte

	// DiffID is the digest of the uncompressed tar, recorded in the image
	// config rootfs.
	DiffID digest.Digest
}

// BuildLayer creates a reproducible tar.gz layer from the given entries.
// Entries are sorted by path and headers normalized so identical inputs
// produce byte-identical layers.
func BuildLayer(entries []Entry, opts ArchiveOptions) (*Layer, error) {
	if opts.Epoch.IsZero() {
		opts.Epoch = time.Unix(0, 0).UTC()
	}
	if opts.Level == 0 {
		opts.Level = gzip.BestCompression
	}

	tarData, err := writeTar(entries, opts.Epoch)
	if err != nil {
		return nil, err
	}

	compressed, err := compress(tarData, opts)
	if err != nil {
		return nil, err
	}

	return &Layer{
		Content: compressed,
		DiffID:  digest.FromBytes(tarData),
	}, nil
}

// ExtractLayer decompresses and unpacks a layer produced by BuildLayer.
// It rejects symlinks, hardlinks, device entries, absolute paths, and paths
// containing traversal sequences.
func ExtractLayer(data []byte) ([]Entry, error) {
	tarData, err := decompress(data, MaxLayerSize)
	if err != nil {
		return nil, err
	}
	return readTar(tarData, MaxEntrySize)
}

// writeTar produces a deterministic tar: sorted entries, PAX format, zeroed
// ownership, a fixed epoch.
func writeTar(entries []Entry, epoch time.Time) ([]byte, error) {
	sorted := make([]Entry, len(entries))
	copy(sorted, entries)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Path < sorted[j].Path
	})

	var buf bytes.Buffer
	tw := tar.NewWriter(&buf)

	for _, e := range sorted {
		mode := e.Mode
		if mode == 0 {
			mode = 0644
		}

		hdr := &tar.Header{
			Name:     e.Path,
			Size:     int64(len(e.Data)),
			Mode:     mode,
			ModTime:  epoch,
			Uid:      0,
			Gid:      0,
			Uname:    "",
			Gname:    "",
			Typeflag: tar.TypeReg,
			Format:   tar.FormatPAX,
		}

		if err := tw.WriteHeader(hdr); err != nil {
			return nil, fmt.Errorf("writing tar header for %s: %w", e.Path, err)
		}

		if _, err := tw.Write(e.Data); err != nil {
			return nil, fmt.Errorf("writing tar content for %s: %w", e.Path, err)
		}
	}

	if err := tw.Close(); err != nil {
		return nil, fmt.Errorf("closing tar writer: %w", err)
	}

	return buf.Bytes(), nil
}

// readTar unpacks a tar archive with a per-entry size limit, rejecting
// anything that is not a plain regular file under a relative path.
func readTar(data []byte, maxEntrySize int64) ([]Entry, error) {
	tr := tar.NewReader(bytes.NewReader(data))
	var entries []Entry

	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading tar header: %w", err)
		}

		if err := validateEntryPath(hdr.Name); err != nil {
			return nil, err
		}

		if hdr.Typeflag == tar.TypeDir {
			continue
		}

		if hdr.Typeflag == tar.TypeSymlink || hdr.Typeflag == tar.TypeLink {
			return nil, fmt.Errorf("archive contains disallowed link type: %s", hdr.Name)
		}

		if hdr.Typeflag != tar.TypeReg {
			return nil, fmt.Errorf("archive contains disallowed entry type %d: %s", hdr.Typeflag, hdr.Name)
		}

		if hdr.Size > maxEntrySize {
			return nil, fmt.Errorf("file %s exceeds maximum size of %d bytes", hdr.Name, maxEntrySize)
		}

		// LimitReader enforces the limit against lying headers.
		limitedReader := io.LimitReader(tr, maxEntrySize+1)
		content, err := io.ReadAll(limitedReader)
		if err != nil {
			return nil, fmt.Errorf("reading tar content for %s: %w", hdr.Name, err)
		}

		if int64(len(content)) > maxEntrySize {
			return nil, fmt.Errorf("file %s exceeds maximum size of %d bytes", hdr.Name, maxEntrySize)
		}

		entries = append(entries, Entry{
			Path: hdr.Name,
			Data: content,
			Mode: hdr.Mode,
		})
	}

	return entries, nil
}

// validateEntryPath checks that an archive member path is safe.
func validateEntryPath(p string) error {
	// path.Clean resolves all ".." segments; any remaining leading ".."
	// means the path escapes the archive root.
	cleaned := path.Clean(p)
	if strings.HasPrefix(cleaned, "..") {
		return fmt.Errorf("path traversal detected in archive: %s", p)
	}
	if path.IsAbs(cleaned) {
		return fmt.Errorf("absolute path not allowed in archive: %s", p)
	}
	return nil
}

// compress gzips data with explicitly controlled headers so output depends
// only on the input bytes and options.
func compress(data []byte, opts ArchiveOptions) ([]byte, error) {
	var buf bytes.Buffer
	gw, err := gzip.NewWriterLevel(&buf, opts.Level)
	if err != nil {
		return nil, fmt.Errorf("creating gzip writer: %w", err)
	}

	gw.ModTime = opts.Epoch
	gw.Name = ""
	gw.Comment = ""
	gw.OS = gzipOSUnknown

	if _, err := gw.Write(data); err != nil {
		return nil, fmt.Errorf("writing gzip data: %w", err)
	}

	if err := gw.Close(); err != nil {
		return nil, fmt.Errorf("closing gzip writer: %w", err)
	}

	return buf.Bytes(), nil
}

// decompress gunzips data with a size limit.
func decompress(data []byte, maxSize int64) ([]byte, error) {
	gr, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("creating gzip reader: %w", err)
	}
	defer func() { _ = gr.Close() }()

	limitedReader := io.LimitReader(gr, maxSize+1)
	result, err := io.ReadAll(limitedReader)
	if err != nil {
		return nil, fmt.Errorf("reading gzip data: %w", err)
	}

	if int64(len(result)) > maxSize {
		return nil, fmt.Errorf("decompressed data exceeds maximum size of %d bytes", maxSize)
	}

	return result, nil
}
