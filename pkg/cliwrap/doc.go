// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package cliwrap runs external command-line tools from declarative
// definitions.
//
// A Wrapper holds the path of a tool and a set of named operations
// (Commands). Invoking an operation validates the arguments, renders them
// into tokens, runs the tool, and pipes its stdout through the command's
// parser:
//
//	kubectl := cliwrap.New("kubectl")
//	kubectl.UpdateCommand("get", cliwrap.CommandConfig{
//		DefaultFlags: cliwrap.Kw("output", "json"),
//		Parse:        []any{"json", map[string]any{"extract": "items"}},
//	})
//	pods, err := kubectl.Op("get").Arg("pods").Flag("namespace", "default").Run(ctx)
//
// runs `kubectl get pods --namespace=default --output=json` and returns the
// decoded "items" list.
//
// # Rendering
//
// Positional arguments follow the command's token prefix in call order.
// Named arguments become flags: names longer than one character get the
// long prefix ("--"), others the short prefix ("-"). Boolean and nil values
// render as bare flags. Otherwise the name and value are joined by the
// separator ("="), or emitted as two tokens when the separator is a single
// space. Default flags are appended unless given explicitly.
//
// Argument names pass through a transformer chain first; the default turns
// snake_case into kebab-case.
//
// # Definitions
//
// Wrappers round-trip through Config, which encodes as JSON or YAML and
// decodes from JSON, YAML or TOML. Chains (validators, parsers,
// transformers) are written as names, {name: params} maps, or lists of
// those, and resolve against Registries.
package cliwrap
