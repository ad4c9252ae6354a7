// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package validators checks argument values against chains of named
// predicates.
package validators

import (
	"fmt"
	"reflect"

	"github.com/yeetrun/cliwrap/pkg/callable"
	"github.com/yeetrun/cliwrap/pkg/chain"
	"go.uber.org/zap"
)

// Result is the outcome of a validation. Reason is set when a validator
// explained the failure.
type Result struct {
	Valid  bool
	Reason string
}

// Validator runs a chain of validators against a value, stopping at the
// first one that fails.
type Validator struct {
	chain  *chain.Chain
	logger *zap.Logger
}

// New resolves config against reg. A nil reg means Default.
func New(config any, reg *callable.Registry) (*Validator, error) {
	if reg == nil {
		reg = Default
	}
	c, err := chain.New(config, reg)
	if err != nil {
		return nil, fmt.Errorf("validator: %w", err)
	}
	return &Validator{chain: c, logger: zap.NewNop()}, nil
}

// WithLogger sets the logger used for per-step debug output.
func (v *Validator) WithLogger(l *zap.Logger) *Validator {
	if l != nil {
		v.logger = l
	}
	return v
}

// Config returns the configuration v was built from.
func (v *Validator) Config() any {
	if v == nil {
		return nil
	}
	return v.chain.Config()
}

// Len reports the number of validators in the chain.
func (v *Validator) Len() int {
	if v == nil {
		return 0
	}
	return v.chain.Len()
}

// Validate runs every step in order. A step that returns a falsy value or a
// string stops the chain; a non-empty string becomes the Reason. An error
// from a step is returned as is.
func (v *Validator) Validate(value any) (Result, error) {
	if v == nil {
		return Result{Valid: true}, nil
	}
	for _, s := range v.chain.Steps() {
		out, err := s.Call(value)
		if err != nil {
			return Result{}, fmt.Errorf("validator %s: %w", s.Label, err)
		}
		v.logger.Debug("validator result", zap.String("validator", s.Label), zap.Any("value", value), zap.Any("result", out))
		if reason, ok := out.(string); ok {
			if reason == "" {
				return Result{}, nil
			}
			return Result{Reason: reason}, nil
		}
		if r, ok := out.(Result); ok {
			if !r.Valid {
				return r, nil
			}
			continue
		}
		if !Truthy(out) {
			return Result{}, nil
		}
	}
	return Result{Valid: true}, nil
}

// Truthy reports whether v counts as true: nil, false, zero numbers and
// empty strings, slices and maps are false.
func Truthy(v any) bool {
	if v == nil {
		return false
	}
	switch v := v.(type) {
	case bool:
		return v
	case string:
		return v != ""
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int() != 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return rv.Uint() != 0
	case reflect.Float32, reflect.Float64:
		return rv.Float() != 0
	case reflect.Slice, reflect.Map, reflect.Array, reflect.String, reflect.Chan:
		return rv.Len() != 0
	case reflect.Pointer, reflect.Interface, reflect.Func:
		return !rv.IsNil()
	}
	return true
}
