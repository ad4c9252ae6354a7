// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package prepackaged ships ready-made wrapper definitions for common
// tools.
//
// Definitions live in a tree of status directories, each holding
// <name>.yaml, <name>.yml, <name>.json or <name>.toml files:
//
//	stable/kubectl.yaml
//	stable/docker.toml
//	beta/cilium.json
//
// Lookups search the statuses in the order given and stop at the first
// definition found. A name defined under both stable and beta therefore
// resolves to the stable file with DefaultStatuses; list Beta first to let
// beta definitions override stable ones.
package prepackaged

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"slices"
	"strings"

	"github.com/containerd/errdefs"
	"github.com/yeetrun/cliwrap/pkg/cliwrap"
)

// Status is the maturity of a definition, and the directory it lives in.
type Status string

const (
	Stable Status = "stable"
	Beta   Status = "beta"
)

// DefaultStatuses is the search order used when none is given.
var DefaultStatuses = []Status{Stable, Beta}

var ErrNotFound = fmt.Errorf("wrapper definition %w", errdefs.ErrNotFound)

//go:embed definitions
var definitions embed.FS

// FS returns the embedded definitions tree.
func FS() fs.FS {
	sub, err := fs.Sub(definitions, "definitions")
	if err != nil {
		panic(err)
	}
	return sub
}

var exts = []string{".yaml", ".yml", ".json", ".toml"}

// Load builds the packaged Wrapper for the tool name, searching statuses
// in order (stable, then beta, by default). The first match wins.
func Load(name string, statuses ...Status) (*cliwrap.Wrapper, error) {
	return LoadFS(FS(), name, statuses...)
}

// LoadFS is Load over a caller-provided definitions tree.
func LoadFS(fsys fs.FS, name string, statuses ...Status) (*cliwrap.Wrapper, error) {
	cfg, err := ReadConfig(fsys, name, statuses...)
	if err != nil {
		return nil, err
	}
	w, err := cliwrap.FromConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("wrapper %q: %w", name, err)
	}
	return w, nil
}

// ReadConfig finds and decodes the definition of name without building a
// Wrapper.
func ReadConfig(fsys fs.FS, name string, statuses ...Status) (cliwrap.Config, error) {
	if name == "" || strings.ContainsAny(name, `/\`) {
		return cliwrap.Config{}, fmt.Errorf("%w: invalid name %q", errdefs.ErrInvalidArgument, name)
	}
	if len(statuses) == 0 {
		statuses = DefaultStatuses
	}
	for _, st := range statuses {
		for _, ext := range exts {
			p := path.Join(string(st), name+ext)
			data, err := fs.ReadFile(fsys, p)
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			if err != nil {
				return cliwrap.Config{}, fmt.Errorf("reading %s: %w", p, err)
			}
			enc, _ := cliwrap.EncodingForExt(ext)
			cfg, err := cliwrap.DecodeConfig(data, enc)
			if err != nil {
				return cliwrap.Config{}, fmt.Errorf("decoding %s: %w", p, err)
			}
			return cfg, nil
		}
	}
	return cliwrap.Config{}, fmt.Errorf("%w: %q", ErrNotFound, name)
}

// Entry names one available definition.
type Entry struct {
	Name   string
	Status Status
}

// List returns the definitions in fsys for the given statuses (all
// default statuses if none), sorted by status order then name. A name
// present under several statuses is listed under each.
func List(fsys fs.FS, statuses ...Status) ([]Entry, error) {
	if len(statuses) == 0 {
		statuses = DefaultStatuses
	}
	var out []Entry
	for _, st := range statuses {
		ents, err := fs.ReadDir(fsys, string(st))
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, err
		}
		var names []string
		for _, e := range ents {
			ext := path.Ext(e.Name())
			if e.IsDir() || !slices.Contains(exts, ext) {
				continue
			}
			n := strings.TrimSuffix(e.Name(), ext)
			if !slices.Contains(names, n) {
				names = append(names, n)
			}
		}
		slices.Sort(names)
		for _, n := range names {
			out = append(out, Entry{Name: n, Status: st})
		}
	}
	return out, nil
}
