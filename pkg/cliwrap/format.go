// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cliwrap

import (
	"fmt"
	"reflect"

	"github.com/yeetrun/cliwrap/pkg/callable"
	"github.com/yeetrun/cliwrap/pkg/parsers"
	"github.com/yeetrun/cliwrap/pkg/transform"
	"github.com/yeetrun/cliwrap/pkg/validators"
)

// Format controls how named arguments are rendered.
type Format struct {
	// DefaultTransformer is the transformer chain config applied to
	// arguments without their own Argument entry.
	DefaultTransformer any
	ShortPrefix        string
	LongPrefix         string
	// ArgSeparator joins a flag and its value. A single space puts the
	// value in its own token.
	ArgSeparator string
}

// DefaultFormat returns "--long=value" / "-s=value" rendering with
// snake_case names turned into kebab-case.
func DefaultFormat() Format {
	return Format{
		DefaultTransformer: transform.DefaultName,
		ShortPrefix:        "-",
		LongPrefix:         "--",
		ArgSeparator:       "=",
	}
}

func (f Format) equal(o Format) bool {
	return f.ShortPrefix == o.ShortPrefix &&
		f.LongPrefix == o.LongPrefix &&
		f.ArgSeparator == o.ArgSeparator &&
		reflect.DeepEqual(f.DefaultTransformer, o.DefaultTransformer)
}

// Registries are the callable registries names resolve against.
type Registries struct {
	Validators   *callable.Registry
	Parsers      *callable.Registry
	Transformers *callable.Registry
}

// DefaultRegistries returns the process-wide built-in registries.
func DefaultRegistries() Registries {
	return Registries{
		Validators:   validators.Default,
		Parsers:      parsers.Default,
		Transformers: transform.Default,
	}
}

func (r Registries) orDefault() Registries {
	d := DefaultRegistries()
	if r.Validators == nil {
		r.Validators = d.Validators
	}
	if r.Parsers == nil {
		r.Parsers = d.Parsers
	}
	if r.Transformers == nil {
		r.Transformers = d.Transformers
	}
	return r
}

// text renders an argument value as a command-line token.
func text(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	case fmt.Stringer:
		return v.String()
	}
	return fmt.Sprint(v)
}
