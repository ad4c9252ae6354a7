// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cliwrap

import (
	"fmt"
	"slices"
	"unicode/utf8"

	"github.com/yeetrun/cliwrap/pkg/parsers"
	"github.com/yeetrun/cliwrap/pkg/transform"
	"go.uber.org/zap"
	"tailscale.com/types/lazy"
	"tailscale.com/types/ptr"
)

// Command is one operation of a wrapped tool: a fixed token prefix, default
// flags, per-argument configuration and an output parser.
type Command struct {
	CLICommand   []string
	DefaultFlags Flags
	Args         map[transform.Key]*Argument
	Format       Format

	parser *parsers.Parser
	reg    Registries
	logger *zap.Logger

	defaultTransformer lazy.SyncValue[transformerResult]
}

type transformerResult struct {
	t   *transform.Transformer
	err error
}

// NewCommand builds a Command from cfg. Per-command formatting in cfg
// overrides format. A nil cfg.CLICommand means no prefix tokens.
func NewCommand(cfg CommandConfig, format Format, reg Registries) (*Command, error) {
	reg = reg.orDefault()
	c := &Command{
		CLICommand:   slices.Clone([]string(cfg.CLICommand)),
		DefaultFlags: slices.Clone(cfg.DefaultFlags),
		Args:         make(map[transform.Key]*Argument, len(cfg.Args)),
		Format:       cfg.format(format),
		reg:          reg,
		logger:       zap.NewNop(),
	}
	if c.CLICommand == nil {
		c.CLICommand = []string{}
	}
	for k, acfg := range cfg.Args {
		a, err := NewArgument(acfg, reg)
		if err != nil {
			return nil, fmt.Errorf("arg %s: %w", k, err)
		}
		c.Args[transform.ParseKey(k)] = a
	}
	p, err := parsers.New(cfg.Parse, reg.Parsers)
	if err != nil {
		return nil, err
	}
	c.parser = p
	return c, nil
}

func (c *Command) setLogger(l *zap.Logger) {
	c.logger = l
	for _, a := range c.Args {
		a.validator.WithLogger(l)
	}
}

// ValidateArgs checks positional args and explicit flags against their
// Argument validators. Default flags are not validated. Only the first
// failure is reported.
func (c *Command) ValidateArgs(args []any, kwargs Flags) error {
	check := func(k transform.Key, v any) error {
		a, ok := c.Args[k]
		if !ok {
			return nil
		}
		res, err := a.IsValid(v)
		if err != nil {
			return fmt.Errorf("validating arg %s: %w", argLabel(k), err)
		}
		if !res.Valid {
			return &ValidationError{Command: c.CLICommand, Arg: k, Value: v, Reason: res.Reason}
		}
		return nil
	}
	for i, v := range args {
		if err := check(transform.Pos(i), v); err != nil {
			return err
		}
	}
	for _, fl := range kwargs {
		if err := check(transform.Named(fl.Name), fl.Value); err != nil {
			return err
		}
	}
	return nil
}

// BuildArgs renders a call into command-line tokens, not including the
// executable: the command prefix, then positional values, then flags.
// Flags are the explicit kwargs in call order followed by default flags
// that were not given explicitly.
func (c *Command) BuildArgs(args []any, kwargs Flags) ([]string, error) {
	positional := slices.Clone(c.CLICommand)
	var params []string

	emit := func(k transform.Key, v any) error {
		var err error
		if a, ok := c.Args[k]; ok {
			lit := k
			if a.LiteralName != "" {
				lit = transform.Named(a.LiteralName)
			}
			k, v, err = a.Transform(lit, v)
		} else {
			k, v, err = c.transformDefault(k, v)
		}
		if err != nil {
			return err
		}
		if !k.IsNamed() {
			positional = append(positional, text(v))
			return nil
		}
		prefix := c.Format.ShortPrefix
		if utf8.RuneCountInString(k.Name()) > 1 {
			prefix = c.Format.LongPrefix
		}
		switch v.(type) {
		case nil, bool:
			params = append(params, prefix+k.Name())
		default:
			if c.Format.ArgSeparator == " " {
				params = append(params, prefix+k.Name(), text(v))
			} else {
				params = append(params, prefix+k.Name()+c.Format.ArgSeparator+text(v))
			}
		}
		return nil
	}

	for i, v := range args {
		if err := emit(transform.Pos(i), v); err != nil {
			return nil, err
		}
	}
	for _, fl := range kwargs {
		if err := emit(transform.Named(fl.Name), fl.Value); err != nil {
			return nil, err
		}
	}
	for _, fl := range c.DefaultFlags {
		if kwargs.Has(fl.Name) {
			continue
		}
		if err := emit(transform.Named(fl.Name), fl.Value); err != nil {
			return nil, err
		}
	}
	out := append(positional, params...)
	c.logger.Debug("built args", zap.Strings("args", out))
	return out, nil
}

func (c *Command) transformDefault(k transform.Key, v any) (transform.Key, any, error) {
	r := c.defaultTransformer.Get(func() transformerResult {
		t, err := transform.New(c.Format.DefaultTransformer, c.reg.Transformers)
		return transformerResult{t: t, err: err}
	})
	if r.err != nil {
		return transform.Key{}, nil, r.err
	}
	return r.t.Apply(k, v)
}

// ParseOutput runs the command's parser over stdout.
func (c *Command) ParseOutput(stdout string) (any, error) {
	return c.parser.Parse(stdout)
}

// Config returns the configuration that recreates c. Formatting is
// included only where it differs from base.
func (c *Command) Config(base Format) CommandConfig {
	cfg := CommandConfig{
		CLICommand:   slices.Clone(Tokens(c.CLICommand)),
		DefaultFlags: slices.Clone(c.DefaultFlags),
		Parse:        c.parser.Config(),
	}
	if cfg.CLICommand == nil {
		cfg.CLICommand = Tokens{}
	}
	if len(c.Args) > 0 {
		cfg.Args = make(map[string]ArgumentConfig, len(c.Args))
		for k, a := range c.Args {
			cfg.Args[k.String()] = a.Config()
		}
	}
	if !c.Format.equal(base) {
		cfg.DefaultTransformer = c.Format.DefaultTransformer
		cfg.ShortPrefix = ptr.To(c.Format.ShortPrefix)
		cfg.LongPrefix = ptr.To(c.Format.LongPrefix)
		cfg.ArgSeparator = ptr.To(c.Format.ArgSeparator)
	}
	return cfg
}
