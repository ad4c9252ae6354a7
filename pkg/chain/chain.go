// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package chain turns declarative callable configuration into an ordered
// list of bound callables.
//
// A configuration is one of:
//
//	nil                          empty chain
//	"name"                       registered callable, no extra params
//	{"name": params}             registered callable with extra params
//	Inline{...}, callable.Func   anonymous callable, never registered
//	[]any{...}                   any mix of the above, in order
//
// params is a list of positional arguments, a map of keyword arguments
// (an "args" key in the map holds positional arguments), or a single
// scalar positional argument.
package chain

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/yeetrun/cliwrap/pkg/callable"
)

// ErrInvalidConfig is returned for configuration values outside the
// supported shapes.
var ErrInvalidConfig = errors.New("invalid chain config")

// argsKey holds positional arguments inside a keyword parameter map.
const argsKey = "args"

// Inline is an anonymous chain entry. It is bound directly and does not
// need to be registered, but it cannot be serialized either.
type Inline struct {
	Name   string // used in logs only
	Func   callable.Func
	Args   []any
	Kwargs map[string]any
}

// Step is one resolved entry of a chain.
type Step struct {
	Label string
	Call  callable.Bound
}

// Chain is an ordered list of resolved callables plus the configuration
// they came from.
type Chain struct {
	config any
	steps  []Step
}

// New resolves config against reg.
func New(config any, reg *callable.Registry) (*Chain, error) {
	c := &Chain{config: config}
	if config == nil {
		return c, nil
	}
	var entries []any
	switch v := config.(type) {
	case []any:
		entries = v
	case []string:
		for _, s := range v {
			entries = append(entries, s)
		}
	case []map[string]any:
		for _, m := range v {
			entries = append(entries, m)
		}
	default:
		entries = []any{v}
	}
	for i, e := range entries {
		s, err := resolve(e, reg)
		if err != nil {
			if len(entries) > 1 {
				return nil, fmt.Errorf("entry %d: %w", i, err)
			}
			return nil, err
		}
		c.steps = append(c.steps, s)
	}
	return c, nil
}

// Config returns the configuration the chain was built from, unchanged.
func (c *Chain) Config() any {
	if c == nil {
		return nil
	}
	return c.config
}

// Steps returns the resolved entries in order.
func (c *Chain) Steps() []Step {
	if c == nil {
		return nil
	}
	return c.steps
}

// Len reports the number of entries.
func (c *Chain) Len() int {
	if c == nil {
		return 0
	}
	return len(c.steps)
}

// Serializable reports whether every entry came from a registered name.
func (c *Chain) Serializable() bool {
	return serializable(c.Config())
}

func serializable(config any) bool {
	switch v := config.(type) {
	case nil, string, map[string]any:
		return true
	case []string:
		return true
	case []any:
		for _, e := range v {
			if !serializable(e) {
				return false
			}
		}
		return true
	}
	return false
}

func resolve(entry any, reg *callable.Registry) (Step, error) {
	switch v := entry.(type) {
	case string:
		fn, err := reg.Get(v, nil, nil)
		if err != nil {
			return Step{}, err
		}
		return Step{Label: v, Call: fn}, nil
	case map[string]any:
		if len(v) != 1 {
			return Step{}, fmt.Errorf("%w: map entry must have exactly one key, got %d", ErrInvalidConfig, len(v))
		}
		for name, params := range v {
			args, kwargs, err := splitParams(params)
			if err != nil {
				return Step{}, fmt.Errorf("%s: %w", name, err)
			}
			fn, err := reg.Get(name, args, kwargs)
			if err != nil {
				return Step{}, err
			}
			return Step{Label: name, Call: fn}, nil
		}
	case map[string]string:
		m := make(map[string]any, len(v))
		for k, s := range v {
			m[k] = s
		}
		return resolve(m, reg)
	case Inline:
		if v.Func == nil {
			return Step{}, fmt.Errorf("%w: inline entry without Func", ErrInvalidConfig)
		}
		return Step{Label: inlineLabel(v.Name), Call: callable.Bind(v.Func, v.Args, v.Kwargs)}, nil
	case *Inline:
		if v == nil {
			return Step{}, fmt.Errorf("%w: nil inline entry", ErrInvalidConfig)
		}
		return resolve(*v, reg)
	case callable.Func:
		return resolve(Inline{Func: v}, reg)
	case func([]any, map[string]any) (any, error):
		return resolve(Inline{Func: v}, reg)
	case func(any) (any, error):
		return resolve(Inline{Func: callable.Unary(v)}, reg)
	case func(any) bool:
		return resolve(Inline{Func: callable.Predicate(v)}, reg)
	}
	return Step{}, fmt.Errorf("%w: unsupported entry type %T", ErrInvalidConfig, entry)
}

// splitParams interprets the value side of a {"name": params} entry. The
// caller's map is never modified.
func splitParams(params any) ([]any, map[string]any, error) {
	switch p := params.(type) {
	case []any:
		return slices.Clone(p), nil, nil
	case []string:
		args := make([]any, len(p))
		for i, s := range p {
			args[i] = s
		}
		return args, nil, nil
	case map[string]any:
		kwargs := maps.Clone(p)
		raw, ok := kwargs[argsKey]
		if !ok {
			return nil, kwargs, nil
		}
		delete(kwargs, argsKey)
		switch a := raw.(type) {
		case []any:
			return slices.Clone(a), kwargs, nil
		case []string:
			args, _, _ := splitParams(a)
			return args, kwargs, nil
		default:
			return []any{a}, kwargs, nil
		}
	}
	return []any{params}, nil, nil
}

func inlineLabel(name string) string {
	if name == "" {
		return "<inline>"
	}
	return name
}
