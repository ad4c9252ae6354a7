// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cliwrap

import (
	"fmt"

	"github.com/yeetrun/cliwrap/pkg/transform"
	"github.com/yeetrun/cliwrap/pkg/validators"
	"tailscale.com/types/lazy"
)

// Argument configures one positional or named argument of a Command.
type Argument struct {
	// LiteralName, if set, replaces the argument's key before transforming.
	// Setting it on a positional argument turns it into a flag.
	LiteralName string
	// Default is informational. It is never injected into a call.
	Default any

	validator         *validators.Validator
	transformerConfig any
	transformerReg    Registries
	transformer       lazy.SyncValue[*transform.Transformer]
	transformerErr    error
}

// NewArgument builds an Argument from its configuration. Validator names
// are resolved immediately; the transformer is resolved on first use.
func NewArgument(cfg ArgumentConfig, reg Registries) (*Argument, error) {
	reg = reg.orDefault()
	v, err := validators.New(cfg.Validator, reg.Validators)
	if err != nil {
		return nil, err
	}
	return &Argument{
		LiteralName:       cfg.LiteralName,
		Default:           cfg.Default,
		validator:         v,
		transformerConfig: cfg.Transformer,
		transformerReg:    reg,
	}, nil
}

// IsValid runs the argument's validators. An argument without validators
// accepts everything.
func (a *Argument) IsValid(value any) (validators.Result, error) {
	return a.validator.Validate(value)
}

// Transform runs the argument's transformer chain over (key, value).
func (a *Argument) Transform(key transform.Key, value any) (transform.Key, any, error) {
	t := a.transformer.Get(func() *transform.Transformer {
		tc := a.transformerConfig
		if tc == nil {
			tc = transform.DefaultName
		}
		t, err := transform.New(tc, a.transformerReg.Transformers)
		if err != nil {
			a.transformerErr = err
			return nil
		}
		return t
	})
	if t == nil {
		return transform.Key{}, nil, fmt.Errorf("argument %s: %w", key, a.transformerErr)
	}
	return t.Apply(key, value)
}

// Config returns the configuration that recreates a.
func (a *Argument) Config() ArgumentConfig {
	return ArgumentConfig{
		LiteralName: a.LiteralName,
		Default:     a.Default,
		Validator:   a.validator.Config(),
		Transformer: a.transformerConfig,
	}
}
