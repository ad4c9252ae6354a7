// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cliwrap

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// Flag is one named argument.
type Flag struct {
	Name  string
	Value any
}

// Flags is an ordered list of named arguments. Order is kept through JSON
// and YAML encoding, where Flags appear as a mapping.
type Flags []Flag

// Kw builds Flags from alternating names and values:
//
//	Kw("namespace", "default", "watch", true)
//
// It panics if a name is not a string or a value is missing.
func Kw(kv ...any) Flags {
	if len(kv)%2 != 0 {
		panic("cliwrap.Kw: odd number of arguments")
	}
	f := make(Flags, 0, len(kv)/2)
	for i := 0; i < len(kv); i += 2 {
		name, ok := kv[i].(string)
		if !ok {
			panic(fmt.Sprintf("cliwrap.Kw: name %v is %T, not string", kv[i], kv[i]))
		}
		f = f.With(name, kv[i+1])
	}
	return f
}

// FlagsFromMap converts m to Flags ordered by name.
func FlagsFromMap(m map[string]any) Flags {
	names := make([]string, 0, len(m))
	for k := range m {
		names = append(names, k)
	}
	slices.Sort(names)
	f := make(Flags, 0, len(m))
	for _, n := range names {
		f = append(f, Flag{Name: n, Value: m[n]})
	}
	return f
}

// Get returns the value of the named flag.
func (f Flags) Get(name string) (any, bool) {
	for _, fl := range f {
		if fl.Name == name {
			return fl.Value, true
		}
	}
	return nil, false
}

func (f Flags) Has(name string) bool {
	_, ok := f.Get(name)
	return ok
}

// With returns a copy of f with name set to value. An existing entry keeps
// its position.
func (f Flags) With(name string, value any) Flags {
	out := slices.Clone(f)
	for i := range out {
		if out[i].Name == name {
			out[i].Value = value
			return out
		}
	}
	return append(out, Flag{Name: name, Value: value})
}

// Names returns the flag names in order.
func (f Flags) Names() []string {
	out := make([]string, len(f))
	for i, fl := range f {
		out[i] = fl.Name
	}
	return out
}

func (f Flags) MarshalJSON() ([]byte, error) {
	if f == nil {
		return []byte("null"), nil
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, fl := range f {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(fl.Name)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(fl.Value)
		if err != nil {
			return nil, fmt.Errorf("flag %q: %w", fl.Name, err)
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (f *Flags) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*f = nil
		return nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("flags: want object, got %v", tok)
	}
	out := Flags{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		name, _ := tok.(string)
		var v any
		if err := dec.Decode(&v); err != nil {
			return fmt.Errorf("flag %q: %w", name, err)
		}
		out = out.With(name, v)
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*f = out
	return nil
}

func (f Flags) MarshalYAML() (any, error) {
	n := &yaml.Node{Kind: yaml.MappingNode}
	for _, fl := range f {
		var v yaml.Node
		if err := v.Encode(fl.Value); err != nil {
			return nil, fmt.Errorf("flag %q: %w", fl.Name, err)
		}
		n.Content = append(n.Content, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: fl.Name}, &v)
	}
	return n, nil
}

func (f *Flags) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind == yaml.ScalarNode && n.Tag == "!!null" {
		*f = nil
		return nil
	}
	if n.Kind != yaml.MappingNode {
		return fmt.Errorf("flags: line %d: want mapping", n.Line)
	}
	out := Flags{}
	for i := 0; i+1 < len(n.Content); i += 2 {
		var v any
		if err := n.Content[i+1].Decode(&v); err != nil {
			return fmt.Errorf("flag %q: %w", n.Content[i].Value, err)
		}
		out = out.With(n.Content[i].Value, v)
	}
	*f = out
	return nil
}

// Tokens is the fixed prefix of a command line. In configuration it may be
// written as a single string.
type Tokens []string

func (t *Tokens) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		*t = Tokens{s}
		return nil
	}
	var list []string
	if err := json.Unmarshal(trimmed, &list); err != nil {
		return fmt.Errorf("cli_command: want string or list of strings: %w", err)
	}
	if list == nil && !bytes.Equal(trimmed, []byte("null")) {
		list = []string{}
	}
	*t = list
	return nil
}

func (t *Tokens) UnmarshalYAML(n *yaml.Node) error {
	switch {
	case n.Kind == yaml.ScalarNode && n.Tag == "!!null":
		*t = nil
	case n.Kind == yaml.ScalarNode:
		*t = Tokens{n.Value}
	case n.Kind == yaml.SequenceNode:
		list := make([]string, 0, len(n.Content))
		if err := n.Decode(&list); err != nil {
			return err
		}
		if list == nil {
			list = []string{}
		}
		*t = list
	default:
		return fmt.Errorf("cli_command: line %d: want string or list", n.Line)
	}
	return nil
}

func (t Tokens) String() string { return strings.Join(t, " ") }
