// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package parsers

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/Masterminds/semver/v3"
	"github.com/yeetrun/cliwrap/pkg/callable"
	"github.com/yeetrun/cliwrap/pkg/compress"
	"gopkg.in/yaml.v3"
)

// Default is the registry used when none is given. It holds the core
// parsers.
var Default = NewRegistry()

// NewRegistry returns a fresh registry holding the core parsers.
func NewRegistry() *callable.Registry {
	r := callable.New("parser")
	for name, fn := range core {
		if err := r.Register(name, fn, callable.CoreGroup); err != nil {
			panic(err)
		}
	}
	return r
}

var core = map[string]callable.Func{
	"json":        callable.Unary(parseJSON),
	"jsonl":       callable.Unary(parseJSONLines),
	"yaml":        callable.Unary(parseYAML),
	"toml":        callable.Unary(parseTOML),
	"lines":       callable.Unary(splitLines),
	"trim":        callable.Unary(trim),
	"zstd":        decompressor(compress.Zstd),
	"gunzip":      decompressor(compress.Gzip),
	"inflate":     decompressor(compress.Deflate),
	"decompress":  decompressor(""),
	"semver":      callable.Unary(findVersion),
	"dotted_dict": callable.Unary(dotted),
	"extract":     extract,
}

// text returns the textual form of command output.
func text(src any) (string, error) {
	switch v := src.(type) {
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	case nil:
		return "", nil
	}
	return "", fmt.Errorf("want text, got %T", src)
}

func parseJSON(src any) (any, error) {
	s, err := text(src)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal([]byte(s), &out); err != nil {
		return nil, err
	}
	return out, nil
}

func parseJSONLines(src any) (any, error) {
	s, err := text(src)
	if err != nil {
		return nil, err
	}
	out := []any{}
	dec := json.NewDecoder(strings.NewReader(s))
	for {
		var v any
		if err := dec.Decode(&v); err != nil {
			if errors.Is(err, io.EOF) {
				return out, nil
			}
			return nil, err
		}
		out = append(out, v)
	}
}

// parseYAML returns the document, or a list of documents when the input
// holds more than one.
func parseYAML(src any) (any, error) {
	s, err := text(src)
	if err != nil {
		return nil, err
	}
	var docs []any
	dec := yaml.NewDecoder(strings.NewReader(s))
	for {
		var v any
		if err := dec.Decode(&v); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, err
		}
		docs = append(docs, v)
	}
	switch len(docs) {
	case 0:
		return nil, nil
	case 1:
		return docs[0], nil
	}
	return docs, nil
}

func parseTOML(src any) (any, error) {
	s, err := text(src)
	if err != nil {
		return nil, err
	}
	var out map[string]any
	if _, err := toml.Decode(s, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func splitLines(src any) (any, error) {
	s, err := text(src)
	if err != nil {
		return nil, err
	}
	out := []any{}
	sc := bufio.NewScanner(strings.NewReader(s))
	for sc.Scan() {
		if line := strings.TrimRight(sc.Text(), " \t\r"); line != "" {
			out = append(out, line)
		}
	}
	return out, sc.Err()
}

func trim(src any) (any, error) {
	s, err := text(src)
	if err != nil {
		return nil, err
	}
	return strings.TrimSpace(s), nil
}

// decompressor returns a parser that decodes compressed output. An empty
// encoding sniffs zstd and gzip streams.
func decompressor(encoding string) callable.Func {
	return callable.Unary(func(src any) (any, error) {
		var in []byte
		switch v := src.(type) {
		case []byte:
			in = v
		case string:
			in = []byte(v)
		default:
			return nil, fmt.Errorf("want bytes, got %T", src)
		}
		out, err := compress.Decode(encoding, in)
		if err != nil {
			return nil, err
		}
		return string(out), nil
	})
}

var versionRE = regexp.MustCompile(`v?\d+\.\d+(\.\d+)?(-[0-9A-Za-z.-]+)?(\+[0-9A-Za-z.-]+)?`)

// findVersion returns the first semantic version found in the text.
func findVersion(src any) (any, error) {
	s, err := text(src)
	if err != nil {
		return nil, err
	}
	m := versionRE.FindString(s)
	if m == "" {
		return nil, fmt.Errorf("no version found in %q", truncate(s, 64))
	}
	return semver.NewVersion(m)
}

// extract walks src by each key in turn. Maps are indexed by key, lists by
// integer position.
func extract(args []any, _ map[string]any) (any, error) {
	if len(args) < 1 {
		return nil, fmt.Errorf("%w: extract needs a source", callable.ErrArity)
	}
	cur := args[0]
	for _, key := range args[1:] {
		next, err := index(cur, key)
		if err != nil {
			return nil, err
		}
		cur = next
	}
	return cur, nil
}

func index(src, key any) (any, error) {
	switch m := src.(type) {
	case map[string]any:
		k := fmt.Sprint(key)
		v, ok := m[k]
		if !ok {
			return nil, fmt.Errorf("key %q not found", k)
		}
		return v, nil
	case Dotted:
		return index(map[string]any(m), key)
	case []any:
		i, err := callable.IntArg(key)
		if err != nil {
			return nil, fmt.Errorf("list index %v: %w", key, err)
		}
		if i < 0 {
			i += len(m)
		}
		if i < 0 || i >= len(m) {
			return nil, fmt.Errorf("list index %d out of range [0,%d)", i, len(m))
		}
		return m[i], nil
	}
	return nil, fmt.Errorf("cannot index %T with %v", src, key)
}

// Dotted is a map whose nested values can be reached with a dotted path.
type Dotted map[string]any

// Get walks path ("a.b.0.c") through nested maps and lists.
func (d Dotted) Get(path string) (any, bool) {
	var cur any = d
	for _, part := range strings.Split(path, ".") {
		var key any = part
		if n, err := strconv.Atoi(part); err == nil {
			if _, isList := cur.([]any); isList {
				key = n
			}
		}
		next, err := index(cur, key)
		if err != nil {
			return nil, false
		}
		cur = next
	}
	return cur, true
}

// String returns the value at path, or "" if it is missing or not a string.
func (d Dotted) String(path string) string {
	v, _ := d.Get(path)
	s, _ := v.(string)
	return s
}

func dotted(src any) (any, error) {
	switch v := src.(type) {
	case map[string]any:
		out := make(Dotted, len(v))
		for k, e := range v {
			out[k], _ = dotted(e)
		}
		return out, nil
	case []any:
		out := make([]any, len(v))
		for i, e := range v {
			out[i], _ = dotted(e)
		}
		return out, nil
	}
	return src, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
