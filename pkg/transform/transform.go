// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package transform rewrites (key, value) argument pairs before they are
// turned into command-line tokens.
//
// Every transformer is called with the key and the value and returns a
// Pair. A chain of transformers threads the pair through each step.
package transform

import (
	"fmt"
	"strings"

	"github.com/yeetrun/cliwrap/pkg/callable"
	"github.com/yeetrun/cliwrap/pkg/chain"
)

// DefaultName is the transformer applied when none is configured.
const DefaultName = "snake2kebab"

// Pair is the result of a transformer.
type Pair struct {
	Key   Key
	Value any
}

// Transformer is a resolved chain of transformers.
type Transformer struct {
	chain *chain.Chain
}

// New resolves config against reg. A nil reg means Default.
func New(config any, reg *callable.Registry) (*Transformer, error) {
	if reg == nil {
		reg = Default
	}
	c, err := chain.New(config, reg)
	if err != nil {
		return nil, fmt.Errorf("transformer: %w", err)
	}
	return &Transformer{chain: c}, nil
}

// Config returns the configuration t was built from.
func (t *Transformer) Config() any {
	if t == nil {
		return nil
	}
	return t.chain.Config()
}

// Apply runs the chain. An empty chain returns key and value unchanged.
func (t *Transformer) Apply(key Key, value any) (Key, any, error) {
	if t == nil {
		return key, value, nil
	}
	for _, s := range t.chain.Steps() {
		out, err := s.Call(key, value)
		if err != nil {
			return Key{}, nil, fmt.Errorf("transformer %s: %w", s.Label, err)
		}
		p, ok := out.(Pair)
		if !ok {
			return Key{}, nil, fmt.Errorf("transformer %s returned %T, want transform.Pair", s.Label, out)
		}
		key, value = p.Key, p.Value
	}
	return key, value, nil
}

// Func adapts a typed transformer function to the registry calling
// convention.
func Func(fn func(key Key, value any, extra []any) (Pair, error)) callable.Func {
	return func(args []any, _ map[string]any) (any, error) {
		if len(args) < 2 {
			return nil, fmt.Errorf("%w: transformer needs key and value", callable.ErrArity)
		}
		key, ok := args[0].(Key)
		if !ok {
			return nil, fmt.Errorf("transformer key is %T, want transform.Key", args[0])
		}
		return fn(key, args[1], args[2:])
	}
}

// Inline wraps fn as an anonymous chain entry.
func Inline(name string, fn func(key Key, value any) (Pair, error)) chain.Inline {
	return chain.Inline{
		Name: name,
		Func: Func(func(k Key, v any, _ []any) (Pair, error) { return fn(k, v) }),
	}
}

// Default is the registry used when none is given. It holds the core
// transformers.
var Default = NewRegistry()

// NewRegistry returns a fresh registry holding the core transformers.
func NewRegistry() *callable.Registry {
	r := callable.New("transformer")
	for name, fn := range core {
		if err := r.Register(name, fn, callable.CoreGroup); err != nil {
			panic(err)
		}
	}
	return r
}

var core = map[string]callable.Func{
	"snake2kebab": Func(renameNamed(func(s string) string { return strings.ReplaceAll(s, "_", "-") })),
	"kebab2snake": Func(renameNamed(func(s string) string { return strings.ReplaceAll(s, "-", "_") })),
	"lower":       Func(renameNamed(strings.ToLower)),
	"upper":       Func(renameNamed(strings.ToUpper)),
	"rename":      Func(rename),
}

// renameNamed applies fn to named keys. Positional keys pass through.
func renameNamed(fn func(string) string) func(Key, any, []any) (Pair, error) {
	return func(k Key, v any, _ []any) (Pair, error) {
		if k.IsNamed() {
			k = Named(fn(k.Name()))
		}
		return Pair{Key: k, Value: v}, nil
	}
}

// rename turns any key, positional included, into the given name.
func rename(_ Key, v any, extra []any) (Pair, error) {
	if len(extra) < 1 {
		return Pair{}, fmt.Errorf("%w: rename needs a name", callable.ErrArity)
	}
	name, ok := extra[0].(string)
	if !ok || name == "" {
		return Pair{}, fmt.Errorf("rename: want non-empty string name, got %v", extra[0])
	}
	return Pair{Key: Named(name), Value: v}, nil
}
