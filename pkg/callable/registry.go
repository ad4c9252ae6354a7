// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package callable

import (
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/agnivade/levenshtein"
	"github.com/containerd/errdefs"
)

const (
	// Separator splits a qualified "group.name" reference.
	Separator = "."
	// CoreGroup is the group every registry starts with.
	CoreGroup = "core"
)

var (
	ErrNotFound      = fmt.Errorf("callable %w", errdefs.ErrNotFound)
	ErrGroupNotFound = fmt.Errorf("group %w", errdefs.ErrNotFound)
	ErrExists        = fmt.Errorf("callable %w", errdefs.ErrAlreadyExists)
	ErrGroupExists   = fmt.Errorf("group %w", errdefs.ErrAlreadyExists)
	ErrInvalidName   = fmt.Errorf("%w: invalid name", errdefs.ErrInvalidArgument)
	ErrGroupConflict = fmt.Errorf("%w: conflicting group", errdefs.ErrInvalidArgument)
)

// Func is the calling convention shared by every registered callable.
type Func func(args []any, kwargs map[string]any) (any, error)

// Bound is a Func with extra arguments already applied. Arguments passed
// at call time come first, the bound ones follow.
type Bound func(args ...any) (any, error)

// Registry maps names to callables, organized into groups. The zero value
// is not usable; use New.
type Registry struct {
	kind string

	mu     sync.RWMutex
	groups map[string]map[string]Func
	order  []string // group search order
}

// New returns a registry containing an empty core group. kind names what
// the registry holds ("validator", "parser") and shows up in errors.
func New(kind string) *Registry {
	return &Registry{
		kind:   kind,
		groups: map[string]map[string]Func{CoreGroup: {}},
		order:  []string{CoreGroup},
	}
}

// Kind reports what the registry holds.
func (r *Registry) Kind() string { return r.kind }

// Get resolves name and binds extraArgs and extraKwargs to it.
//
// A qualified name ("group.name") looks only in that group. A bare name
// searches every group in registration order and the first match wins.
func (r *Registry) Get(name string, extraArgs []any, extraKwargs map[string]any) (Bound, error) {
	group, entry, err := splitName(name)
	if err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	if group != "" {
		fns, ok := r.groups[group]
		if !ok {
			return nil, fmt.Errorf("%w: %s group %q%s", ErrGroupNotFound, r.kind, group, suggest(group, r.order))
		}
		fn, ok := fns[entry]
		if !ok {
			return nil, fmt.Errorf("%w: %s %q%s", ErrNotFound, r.kind, name, suggest(entry, sortedKeys(fns)))
		}
		return Bind(fn, extraArgs, extraKwargs), nil
	}
	for _, g := range r.order {
		if fn, ok := r.groups[g][entry]; ok {
			return Bind(fn, extraArgs, extraKwargs), nil
		}
	}
	return nil, fmt.Errorf("%w: %s %q%s", ErrNotFound, r.kind, name, suggest(entry, r.namesLocked()))
}

// Has reports whether name resolves.
func (r *Registry) Has(name string) bool {
	_, err := r.Get(name, nil, nil)
	return err == nil
}

// Bind wraps fn so that calling it appends extraArgs after the call's own
// arguments and passes extraKwargs as keyword arguments.
func Bind(fn Func, extraArgs []any, extraKwargs map[string]any) Bound {
	extra := slices.Clone(extraArgs)
	kwargs := make(map[string]any, len(extraKwargs))
	for k, v := range extraKwargs {
		kwargs[k] = v
	}
	return func(args ...any) (any, error) {
		all := make([]any, 0, len(args)+len(extra))
		all = append(all, args...)
		all = append(all, extra...)
		return fn(all, kwargs)
	}
}

// Register adds fn under name. An empty group means CoreGroup. The name
// may carry its group ("group.name"), in which case group must be empty or
// CoreGroup.
func (r *Registry) Register(name string, fn Func, group string) error {
	if fn == nil {
		return fmt.Errorf("%w: nil %s %q", ErrInvalidName, r.kind, name)
	}
	g, entry, err := splitName(name)
	if err != nil {
		return err
	}
	if g != "" {
		if group != "" && group != CoreGroup {
			return fmt.Errorf("%w: %q names group %q but %q was given", ErrGroupConflict, name, g, group)
		}
		group = g
	}
	if group == "" {
		group = CoreGroup
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	fns, ok := r.groups[group]
	if !ok {
		return fmt.Errorf("%w: %s group %q", ErrGroupNotFound, r.kind, group)
	}
	if _, ok := fns[entry]; ok {
		return fmt.Errorf("%w: %s %q in group %q", ErrExists, r.kind, entry, group)
	}
	fns[entry] = fn
	return nil
}

// RegisterGroup adds a new group holding fns.
func (r *Registry) RegisterGroup(name string, fns map[string]Func) error {
	if name == "" || strings.Contains(name, Separator) {
		return fmt.Errorf("%w: group %q", ErrInvalidName, name)
	}
	group := make(map[string]Func, len(fns))
	for n, fn := range fns {
		if n == "" || strings.Contains(n, Separator) {
			return fmt.Errorf("%w: %s %q in group %q", ErrInvalidName, r.kind, n, name)
		}
		if fn == nil {
			return fmt.Errorf("%w: nil %s %q in group %q", ErrInvalidName, r.kind, n, name)
		}
		group[n] = fn
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.groups[name]; ok {
		return fmt.Errorf("%w: %s group %q", ErrGroupExists, r.kind, name)
	}
	r.groups[name] = group
	r.order = append(r.order, name)
	return nil
}

// MustRegisterGroup is like RegisterGroup but panics on error. It is meant
// for package-level registration of built-ins.
func (r *Registry) MustRegisterGroup(name string, fns map[string]Func) {
	if err := r.RegisterGroup(name, fns); err != nil {
		panic(err)
	}
}

// Names returns every qualified name in the registry, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []string
	for _, g := range r.order {
		for n := range r.groups[g] {
			out = append(out, g+Separator+n)
		}
	}
	slices.Sort(out)
	return out
}

// Clone returns an independent copy of r.
func (r *Registry) Clone() *Registry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c := &Registry{
		kind:   r.kind,
		groups: make(map[string]map[string]Func, len(r.groups)),
		order:  slices.Clone(r.order),
	}
	for g, fns := range r.groups {
		m := make(map[string]Func, len(fns))
		for n, fn := range fns {
			m[n] = fn
		}
		c.groups[g] = m
	}
	return c
}

func (r *Registry) namesLocked() []string {
	var out []string
	for _, g := range r.order {
		out = append(out, sortedKeys(r.groups[g])...)
	}
	return out
}

func splitName(name string) (group, entry string, err error) {
	parts := strings.Split(name, Separator)
	switch {
	case len(parts) == 1 && parts[0] != "":
		return "", parts[0], nil
	case len(parts) == 2 && parts[0] != "" && parts[1] != "":
		return parts[0], parts[1], nil
	}
	return "", "", fmt.Errorf("%w: %q", ErrInvalidName, name)
}

func sortedKeys(m map[string]Func) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// suggest returns a " (did you mean ...)" hint for the closest candidate,
// or "" when nothing is close.
func suggest(name string, candidates []string) string {
	best, bestDist := "", 3
	for _, c := range candidates {
		if d := levenshtein.ComputeDistance(name, c); d < bestDist {
			best, bestDist = c, d
		}
	}
	if best == "" {
		return ""
	}
	return fmt.Sprintf(" (did you mean %q?)", best)
}
