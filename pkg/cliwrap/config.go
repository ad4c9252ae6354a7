// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cliwrap

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Config is the serializable form of a Wrapper.
type Config struct {
	Path     string                   `json:"path" yaml:"path"`
	Env      map[string]string        `json:"env,omitempty" yaml:"env,omitempty"`
	Commands map[string]CommandConfig `json:"commands,omitempty" yaml:"commands,omitempty"`
	// Trusting defaults to true when unset.
	Trusting *bool `json:"trusting,omitempty" yaml:"trusting,omitempty"`
	RaiseExc bool  `json:"raise_exc,omitempty" yaml:"raise_exc,omitempty"`
	// Async is written as async_flag. Decoding also accepts async_ and
	// async.
	Async              bool `json:"async_flag,omitempty" yaml:"async_flag,omitempty"`
	DefaultTransformer any  `json:"default_transformer,omitempty" yaml:"default_transformer,omitempty"`
	// Nil formatting fields take the DefaultFormat value. An empty string
	// is a real setting.
	ShortPrefix  *string `json:"short_prefix,omitempty" yaml:"short_prefix,omitempty"`
	LongPrefix   *string `json:"long_prefix,omitempty" yaml:"long_prefix,omitempty"`
	ArgSeparator *string `json:"arg_separator,omitempty" yaml:"arg_separator,omitempty"`
}

// asyncKeys holds the spellings of the async mode key.
type asyncKeys struct {
	AsyncFlag  *bool `json:"async_flag" yaml:"async_flag"`
	Underscore *bool `json:"async_" yaml:"async_"`
	Short      *bool `json:"async" yaml:"async"`
}

// resolve returns the async setting, preferring async_flag, then async_,
// then async.
func (k asyncKeys) resolve() bool {
	for _, v := range []*bool{k.AsyncFlag, k.Underscore, k.Short} {
		if v != nil {
			return *v
		}
	}
	return false
}

func (c *Config) UnmarshalJSON(data []byte) error {
	type plain Config
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	var keys asyncKeys
	if err := json.Unmarshal(data, &keys); err != nil {
		return err
	}
	*c = Config(p)
	c.Async = keys.resolve()
	return nil
}

func (c *Config) UnmarshalYAML(n *yaml.Node) error {
	type plain Config
	var p plain
	if err := n.Decode(&p); err != nil {
		return err
	}
	var keys asyncKeys
	if err := n.Decode(&keys); err != nil {
		return err
	}
	*c = Config(p)
	c.Async = keys.resolve()
	return nil
}

// CommandConfig is the serializable form of a Command. The formatting
// fields are optional overrides of the Wrapper's formatting.
type CommandConfig struct {
	// CLICommand is the token prefix. When registered on a Wrapper, a nil
	// value means the command's own name.
	CLICommand   Tokens                    `json:"cli_command" yaml:"cli_command"`
	DefaultFlags Flags                     `json:"default_flags,omitempty" yaml:"default_flags,omitempty"`
	Args         map[string]ArgumentConfig `json:"args,omitempty" yaml:"args,omitempty"`
	Parse        any                       `json:"parse,omitempty" yaml:"parse,omitempty"`

	DefaultTransformer any     `json:"default_transformer,omitempty" yaml:"default_transformer,omitempty"`
	ShortPrefix        *string `json:"short_prefix,omitempty" yaml:"short_prefix,omitempty"`
	LongPrefix         *string `json:"long_prefix,omitempty" yaml:"long_prefix,omitempty"`
	ArgSeparator       *string `json:"arg_separator,omitempty" yaml:"arg_separator,omitempty"`
}

// ArgumentConfig is the serializable form of an Argument.
type ArgumentConfig struct {
	LiteralName string `json:"literal_name,omitempty" yaml:"literal_name,omitempty"`
	Default     any    `json:"default,omitempty" yaml:"default,omitempty"`
	Validator   any    `json:"validator,omitempty" yaml:"validator,omitempty"`
	// Transformer defaults to snake2kebab when nil. An empty list turns
	// transformation off.
	Transformer any `json:"transformer,omitempty" yaml:"transformer,omitempty"`
}

// format overlays the command's formatting overrides on base.
func (c CommandConfig) format(base Format) Format {
	f := base
	if c.DefaultTransformer != nil {
		f.DefaultTransformer = c.DefaultTransformer
	}
	if c.ShortPrefix != nil {
		f.ShortPrefix = *c.ShortPrefix
	}
	if c.LongPrefix != nil {
		f.LongPrefix = *c.LongPrefix
	}
	if c.ArgSeparator != nil {
		f.ArgSeparator = *c.ArgSeparator
	}
	return f
}

func (c Config) format() Format {
	return CommandConfig{
		DefaultTransformer: c.DefaultTransformer,
		ShortPrefix:        c.ShortPrefix,
		LongPrefix:         c.LongPrefix,
		ArgSeparator:       c.ArgSeparator,
	}.format(DefaultFormat())
}

// A command written as a bare string is its cli_command.
func (c *CommandConfig) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		*c = CommandConfig{CLICommand: Tokens{s}}
		return nil
	}
	type plain CommandConfig
	var p plain
	if err := json.Unmarshal(trimmed, &p); err != nil {
		return err
	}
	*c = CommandConfig(p)
	return nil
}

func (c *CommandConfig) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind == yaml.ScalarNode && n.Tag != "!!null" {
		*c = CommandConfig{CLICommand: Tokens{n.Value}}
		return nil
	}
	type plain CommandConfig
	var p plain
	if err := n.Decode(&p); err != nil {
		return err
	}
	*c = CommandConfig(p)
	return nil
}

// An argument written as a bare string or list is its validator.
func (a *ArgumentConfig) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && (trimmed[0] == '"' || trimmed[0] == '[') {
		var v any
		if err := json.Unmarshal(trimmed, &v); err != nil {
			return err
		}
		*a = ArgumentConfig{Validator: v}
		return nil
	}
	type plain ArgumentConfig
	var p plain
	if err := json.Unmarshal(trimmed, &p); err != nil {
		return err
	}
	*a = ArgumentConfig(p)
	return nil
}

func (a *ArgumentConfig) UnmarshalYAML(n *yaml.Node) error {
	switch {
	case n.Kind == yaml.ScalarNode && n.Tag != "!!null":
		*a = ArgumentConfig{Validator: n.Value}
		return nil
	case n.Kind == yaml.SequenceNode:
		var v []any
		if err := n.Decode(&v); err != nil {
			return err
		}
		*a = ArgumentConfig{Validator: v}
		return nil
	}
	type plain ArgumentConfig
	var p plain
	if err := n.Decode(&p); err != nil {
		return err
	}
	*a = ArgumentConfig(p)
	return nil
}

// Encoding names a configuration file format.
type Encoding string

const (
	JSON Encoding = "json"
	YAML Encoding = "yaml"
	TOML Encoding = "toml"
)

// EncodingForExt maps a file extension to its Encoding.
func EncodingForExt(ext string) (Encoding, bool) {
	switch ext {
	case ".json":
		return JSON, true
	case ".yaml", ".yml":
		return YAML, true
	case ".toml":
		return TOML, true
	}
	return "", false
}

// DecodeConfig parses a wrapper definition.
//
// TOML tables are unordered, so default_flags read from TOML are ordered
// by name.
func DecodeConfig(data []byte, enc Encoding) (Config, error) {
	var cfg Config
	switch enc {
	case JSON:
		if err := json.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
		}
	case YAML:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
		}
	case TOML:
		var m map[string]any
		if _, err := toml.Decode(string(data), &m); err != nil {
			return Config{}, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
		}
		// Go through JSON so the shorthand forms decode the same way.
		b, err := json.Marshal(m)
		if err != nil {
			return Config{}, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
		}
		return DecodeConfig(b, JSON)
	default:
		return Config{}, fmt.Errorf("%w: unknown encoding %q", ErrInvalidConfig, enc)
	}
	return cfg, nil
}

// EncodeConfig writes cfg as JSON (indented) or YAML.
func EncodeConfig(cfg Config, enc Encoding) ([]byte, error) {
	switch enc {
	case JSON:
		b, err := json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(b, '\n'), nil
	case YAML:
		var buf bytes.Buffer
		e := yaml.NewEncoder(&buf)
		e.SetIndent(2)
		if err := e.Encode(cfg); err != nil {
			return nil, err
		}
		if err := e.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}
	return nil, fmt.Errorf("%w: cannot encode %q", ErrInvalidConfig, enc)
}
