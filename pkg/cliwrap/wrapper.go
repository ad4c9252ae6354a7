// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cliwrap

import (
	"fmt"
	"maps"
	"slices"

	"github.com/agnivade/levenshtein"
	"github.com/yeetrun/cliwrap/pkg/cmdutil"
	"go.uber.org/zap"
	"tailscale.com/types/ptr"
	"tailscale.com/util/mak"
)

// Wrapper runs operations of one command-line tool.
//
// A Wrapper is not safe for concurrent use while commands are being
// registered or removed. Invocations may run concurrently.
type Wrapper struct {
	// Path is the executable, resolved through PATH if it has no slash.
	Path string
	// Env is merged over the current process environment for every call.
	Env map[string]string
	// Trusting makes unknown operations run as `Path <op> ...` with default
	// configuration instead of failing.
	Trusting bool
	// RaiseExc makes process failures unwrap to the underlying exec error.
	RaiseExc bool
	// Async makes Invoke return before the process finishes.
	Async bool
	// Format is captured by commands when they are registered.
	Format Format
	// Registries is captured by commands when they are registered.
	Registries Registries

	Runner cmdutil.Runner
	Logger *zap.Logger

	commands map[string]*Command
}

// New returns a trusting, synchronous Wrapper for the tool at path.
func New(path string) *Wrapper {
	return &Wrapper{
		Path:       path,
		Trusting:   true,
		Format:     DefaultFormat(),
		Registries: DefaultRegistries(),
		Runner:     cmdutil.ExecRunner{},
		Logger:     zap.NewNop(),
	}
}

// UpdateCommand registers or replaces the operation name. A nil
// cfg.CLICommand means the single token name.
func (w *Wrapper) UpdateCommand(name string, cfg CommandConfig) error {
	if cfg.CLICommand == nil && name != "" {
		cfg.CLICommand = Tokens{name}
	}
	c, err := NewCommand(cfg, w.Format, w.Registries)
	if err != nil {
		return fmt.Errorf("command %q: %w", name, err)
	}
	c.setLogger(w.logger())
	mak.Set(&w.commands, name, c)
	return nil
}

// RemoveCommand unregisters name. It reports whether name was registered.
func (w *Wrapper) RemoveCommand(name string) bool {
	_, ok := w.commands[name]
	delete(w.commands, name)
	return ok
}

// Command returns the registered command for name.
func (w *Wrapper) Command(name string) (*Command, bool) {
	c, ok := w.commands[name]
	return c, ok
}

// CommandNames returns the registered operation names, sorted.
func (w *Wrapper) CommandNames() []string {
	return slices.Sorted(maps.Keys(w.commands))
}

// resolve finds the Command for op. The empty op is the bare call.
func (w *Wrapper) resolve(op string) (*Command, error) {
	if c, ok := w.commands[op]; ok {
		return c, nil
	}
	if !w.Trusting {
		return nil, fmt.Errorf("%w: %q not found in %s%s", ErrUnknownCommand, op, w.Path, w.suggest(op))
	}
	var cfg CommandConfig
	if op != "" {
		cfg.CLICommand = Tokens{op}
	}
	c, err := NewCommand(cfg, w.Format, w.Registries)
	if err != nil {
		return nil, err
	}
	c.setLogger(w.logger())
	return c, nil
}

func (w *Wrapper) suggest(op string) string {
	best, bestDist := "", 3
	for name := range w.commands {
		if d := levenshtein.ComputeDistance(op, name); d < bestDist || (d == bestDist && name < best) {
			best, bestDist = name, d
		}
	}
	if best == "" {
		return ""
	}
	return fmt.Sprintf(" (did you mean %q?)", best)
}

func (w *Wrapper) logger() *zap.Logger {
	if w.Logger == nil {
		return zap.NewNop()
	}
	return w.Logger
}

func (w *Wrapper) runner() cmdutil.Runner {
	if w.Runner == nil {
		return cmdutil.ExecRunner{}
	}
	return w.Runner
}

// FromConfig builds a Wrapper from its serializable form.
func FromConfig(cfg Config) (*Wrapper, error) {
	w := New(cfg.Path)
	w.Env = maps.Clone(cfg.Env)
	if cfg.Trusting != nil {
		w.Trusting = *cfg.Trusting
	}
	w.RaiseExc = cfg.RaiseExc
	w.Async = cfg.Async
	w.Format = cfg.format()
	for _, name := range slices.Sorted(maps.Keys(cfg.Commands)) {
		if err := w.UpdateCommand(name, cfg.Commands[name]); err != nil {
			return nil, err
		}
	}
	return w, nil
}

// Config returns the serializable form of w. Inline callables in any chain
// are carried over as is and do not survive encoding.
func (w *Wrapper) Config() Config {
	trusting := w.Trusting
	cfg := Config{
		Path:               w.Path,
		Env:                maps.Clone(w.Env),
		Trusting:           &trusting,
		RaiseExc:           w.RaiseExc,
		Async:              w.Async,
		DefaultTransformer: w.Format.DefaultTransformer,
		ShortPrefix:        ptr.To(w.Format.ShortPrefix),
		LongPrefix:         ptr.To(w.Format.LongPrefix),
		ArgSeparator:       ptr.To(w.Format.ArgSeparator),
	}
	for name, c := range w.commands {
		mak.Set(&cfg.Commands, name, c.Config(w.Format))
	}
	return cfg
}
