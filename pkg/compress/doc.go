// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package compress decodes and encodes compressed command output.
//
// # Supported Encodings
//
//   - zstd (Zstandard)
//   - gzip
//   - deflate (raw, no header)
//
// Tools such as backup or export commands often write compressed data to
// stdout. Decode turns it back into bytes a parser can read:
//
//	out, err := compress.Decode(compress.Gzip, stdout)
//
// Passing an empty encoding sniffs the magic bytes of zstd and gzip
// streams. Anything else is returned unchanged.
package compress
