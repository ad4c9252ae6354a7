// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package parsers turns command output into structured values by piping
// it through a chain of named parsers.
package parsers

import (
	"fmt"

	"github.com/yeetrun/cliwrap/pkg/callable"
	"github.com/yeetrun/cliwrap/pkg/chain"
)

// Parser pipes a value through each step of its chain. The zero chain
// returns its input unchanged.
type Parser struct {
	chain *chain.Chain
}

// New resolves config against reg. A nil reg means Default.
func New(config any, reg *callable.Registry) (*Parser, error) {
	if reg == nil {
		reg = Default
	}
	c, err := chain.New(config, reg)
	if err != nil {
		return nil, fmt.Errorf("parser: %w", err)
	}
	return &Parser{chain: c}, nil
}

// Config returns the configuration p was built from.
func (p *Parser) Config() any {
	if p == nil {
		return nil
	}
	return p.chain.Config()
}

// Parse feeds src to the first step and each result to the next.
func (p *Parser) Parse(src any) (any, error) {
	if p == nil {
		return src, nil
	}
	out := src
	for _, s := range p.chain.Steps() {
		var err error
		out, err = s.Call(out)
		if err != nil {
			return nil, fmt.Errorf("parser %s: %w", s.Label, err)
		}
	}
	return out, nil
}
