// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fileutil

import (
	"bytes"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
)

// WriteFile writes data to dst. It is able to overwrite existing files that
// are in use. It does this by writing to a temporary file and then moving it
// into place, so readers never see a partial file.
func WriteFile(dst string, data []byte, perm fs.FileMode) (err error) {
	tempDst := dst + ".tmp"
	dstFile, err := os.OpenFile(tempDst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := dstFile.Close(); err == nil {
			err = cerr
		}
		if err == nil {
			err = os.Rename(tempDst, dst)
		}
		if err != nil {
			os.Remove(tempDst)
		}
	}()

	if _, err = dstFile.Write(data); err != nil {
		return err
	}
	return dstFile.Sync()
}

// WriteIfChanged writes data to dst unless dst already holds exactly data.
// It reports whether the file was written.
func WriteIfChanged(dst string, data []byte, perm fs.FileMode) (bool, error) {
	same, err := Identical(dst, data)
	if err != nil {
		return false, err
	}
	if same {
		return false, nil
	}
	if err := WriteFile(dst, data, perm); err != nil {
		return false, err
	}
	return true, nil
}

// Identical reports whether the file at path holds exactly data. A missing
// file is not identical.
func Identical(path string, data []byte) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	hasher := sha256.New()
	if _, err := io.Copy(hasher, f); err != nil {
		return false, fmt.Errorf("failed to hash file: %w", err)
	}
	want := sha256.Sum256(data)
	return bytes.Equal(hasher.Sum(nil), want[:]), nil
}
