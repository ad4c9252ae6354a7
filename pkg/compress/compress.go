// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package compress

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/containerd/errdefs"
	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

const (
	Zstd     = "zstd"
	Gzip     = "gzip"
	Deflate  = "deflate"
	Identity = "identity"
)

// ErrUnsupported is returned for an encoding this package does not know.
var ErrUnsupported = fmt.Errorf("encoding %w", errdefs.ErrNotImplemented)

var (
	zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}
	gzipMagic = []byte{0x1f, 0x8b}
)

// Detect reports the encoding of data from its leading magic bytes. Raw
// deflate streams carry no header and are reported as Identity.
func Detect(data []byte) string {
	switch {
	case bytes.HasPrefix(data, zstdMagic):
		return Zstd
	case bytes.HasPrefix(data, gzipMagic):
		return Gzip
	}
	return Identity
}

// NewReader wraps r with a decoder for encoding. Closing the returned
// reader releases the decoder but leaves r open.
func NewReader(encoding string, r io.Reader) (io.ReadCloser, error) {
	switch encoding {
	case Zstd:
		zr, err := zstd.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("failed to create decompressor for %s: %w", encoding, err)
		}
		return zr.IOReadCloser(), nil
	case Gzip:
		gr, err := gzip.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("failed to create decompressor for %s: %w", encoding, err)
		}
		return gr, nil
	case Deflate:
		return flate.NewReader(r), nil
	case Identity, "":
		return io.NopCloser(r), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupported, encoding)
}

// NewWriter wraps w with an encoder for encoding. The caller must Close the
// returned writer to flush the stream.
func NewWriter(encoding string, w io.Writer) (io.WriteCloser, error) {
	switch encoding {
	case Zstd:
		return zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedFastest))
	case Gzip:
		return gzip.NewWriter(w), nil
	case Deflate:
		return flate.NewWriter(w, flate.DefaultCompression)
	case Identity, "":
		return nopWriteCloser{w}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupported, encoding)
}

// Decode decompresses data. An empty encoding means Detect picks one.
func Decode(encoding string, data []byte) ([]byte, error) {
	if encoding == "" {
		encoding = Detect(data)
	}
	if encoding == Identity {
		return data, nil
	}
	r, err := NewReader(encoding, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	out, err := io.ReadAll(r)
	return out, errors.Join(err, r.Close())
}

// Encode compresses data with encoding.
func Encode(encoding string, data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w, err := NewWriter(encoding, &buf)
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(data); err != nil {
		w.Close()
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }
