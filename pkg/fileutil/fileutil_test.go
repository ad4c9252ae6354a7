// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fileutil

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWriteFile(t *testing.T) {
	dst := filepath.Join(t.TempDir(), "kubectl.yaml")
	if err := os.WriteFile(dst, []byte("old"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := WriteFile(dst, []byte("path: kubectl\n"), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	got, err := os.ReadFile(dst)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "path: kubectl\n" {
		t.Fatalf("content = %q", got)
	}
	if _, err := os.Stat(dst + ".tmp"); !os.IsNotExist(err) {
		t.Fatalf("temp file left behind: %v", err)
	}
}

func TestWriteFileMissingDir(t *testing.T) {
	dst := filepath.Join(t.TempDir(), "nope", "x.json")
	if err := WriteFile(dst, []byte("{}"), 0o644); err == nil {
		t.Fatal("WriteFile into a missing directory succeeded")
	}
}

func TestWriteIfChanged(t *testing.T) {
	dst := filepath.Join(t.TempDir(), "docker.json")
	data := []byte(`{"path": "docker"}`)

	changed, err := WriteIfChanged(dst, data, 0o644)
	if err != nil || !changed {
		t.Fatalf("first write = %v, %v; want true, nil", changed, err)
	}
	old := time.Now().Add(-time.Hour)
	if err := os.Chtimes(dst, old, old); err != nil {
		t.Fatal(err)
	}

	changed, err = WriteIfChanged(dst, data, 0o644)
	if err != nil || changed {
		t.Fatalf("identical write = %v, %v; want false, nil", changed, err)
	}
	fi, err := os.Stat(dst)
	if err != nil {
		t.Fatal(err)
	}
	if !fi.ModTime().Equal(old) {
		t.Fatal("identical write touched the file")
	}

	changed, err = WriteIfChanged(dst, []byte(`{"path": "podman"}`), 0o644)
	if err != nil || !changed {
		t.Fatalf("changed write = %v, %v; want true, nil", changed, err)
	}
}

func TestIdentical(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a")
	if err := os.WriteFile(path, []byte("abc"), 0o644); err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		name string
		path string
		data string
		want bool
	}{
		{"same", path, "abc", true},
		{"different", path, "abd", false},
		{"missing", filepath.Join(dir, "b"), "abc", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Identical(tt.path, []byte(tt.data))
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Fatalf("Identical = %v, want %v", got, tt.want)
			}
		})
	}
}
