// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cliwrap

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"gopkg.in/yaml.v3"
	"tailscale.com/types/ptr"
)

const kubectlYAML = `
path: kubectl
env:
  KUBECONFIG: /tmp/kc
arg_separator: " "
commands:
  version: version
  get:
    default_flags:
      output: json
      chunk_size: 500
    args:
      "0": is_alpha
      namespace:
        validator: [is_str, {startswith: kube}]
        default: default
    parse: [json, {extract: items}]
  logs:
    cli_command: logs
    args:
      follow:
        literal_name: f
        transformer: []
  ctx:
    cli_command: [config, current-context]
    parse: trim
    long_prefix: "-"
`

func TestDecodeYAMLShorthands(t *testing.T) {
	cfg, err := DecodeConfig([]byte(kubectlYAML), YAML)
	if err != nil {
		t.Fatalf("DecodeConfig: %v", err)
	}
	if got := cfg.Commands["version"].CLICommand; !cmp.Equal(got, Tokens{"version"}) {
		t.Errorf("version cli_command = %v", got)
	}
	get := cfg.Commands["get"]
	if get.CLICommand != nil {
		t.Errorf("get cli_command = %v, want nil (defaults to the name)", get.CLICommand)
	}
	if diff := cmp.Diff([]string{"output", "chunk_size"}, get.DefaultFlags.Names()); diff != "" {
		t.Errorf("default_flags order mismatch (-want +got):\n%s", diff)
	}
	if got := get.Args["0"].Validator; got != "is_alpha" {
		t.Errorf("arg 0 validator = %v, want is_alpha shorthand", got)
	}
	if diff := cmp.Diff(Tokens{"config", "current-context"}, cfg.Commands["ctx"].CLICommand); diff != "" {
		t.Errorf("ctx cli_command mismatch (-want +got):\n%s", diff)
	}
}

func TestFromConfigBuildsCommands(t *testing.T) {
	cfg, err := DecodeConfig([]byte(kubectlYAML), YAML)
	if err != nil {
		t.Fatal(err)
	}
	w, err := FromConfig(cfg)
	if err != nil {
		t.Fatalf("FromConfig: %v", err)
	}
	if !w.Trusting {
		t.Error("trusting should default to true")
	}
	if w.Env["KUBECONFIG"] != "/tmp/kc" {
		t.Errorf("env = %v", w.Env)
	}

	tests := []struct {
		op     string
		args   []any
		kwargs Flags
		want   []string
	}{
		{"get", []any{"pods"}, Kw("namespace", "kube-system"), []string{"kubectl", "get", "pods", "--namespace", "kube-system", "--output", "json", "--chunk-size", "500"}},
		{"logs", []any{"web"}, Kw("follow", true), []string{"kubectl", "logs", "web", "-f"}},
		{"ctx", nil, Kw("kubeconfig", "/x"), []string{"kubectl", "config", "current-context", "-kubeconfig", "/x"}},
		{"version", nil, nil, []string{"kubectl", "version"}},
	}
	for _, tt := range tests {
		got, err := w.Op(tt.op).Arg(tt.args...).Flags(tt.kwargs).Argv()
		if err != nil {
			t.Fatalf("%s: %v", tt.op, err)
		}
		if diff := cmp.Diff(tt.want, got); diff != "" {
			t.Errorf("%s argv mismatch (-want +got):\n%s", tt.op, diff)
		}
	}

	if _, err := w.Op("get").Arg("pods1").Argv(); err == nil {
		t.Error("is_alpha shorthand validator did not run")
	}
}

func TestConfigRoundTrip(t *testing.T) {
	w := New("kubectl")
	w.Env = map[string]string{"A": "b"}
	w.RaiseExc = true
	must := func(err error) {
		t.Helper()
		if err != nil {
			t.Fatal(err)
		}
	}
	must(w.UpdateCommand("get", CommandConfig{
		DefaultFlags: Kw("output", "json", "limit", 10),
		Args: map[string]ArgumentConfig{
			"0":         {Validator: "is_str"},
			"1":         {Validator: []any{"is_str", map[string]any{"startswith": "pod"}}},
			"namespace": {Validator: map[string]any{"one_of": []any{"a", "b"}}, Default: "a", LiteralName: "ns"},
		},
		Parse: []any{"json", map[string]any{"extract": map[string]any{"args": []any{"items"}}}},
	}))
	w.Format.ArgSeparator = " "
	must(w.UpdateCommand("ctx", CommandConfig{CLICommand: Tokens{"config", "current-context"}, Parse: "trim"}))
	must(w.UpdateCommand("bare", CommandConfig{CLICommand: Tokens{}}))

	first := w.Config()
	w2, err := FromConfig(first)
	if err != nil {
		t.Fatalf("FromConfig: %v", err)
	}
	if diff := cmp.Diff(first, w2.Config()); diff != "" {
		t.Fatalf("in-memory round trip mismatch (-first +second):\n%s", diff)
	}

	// The "get" command was registered before the separator changed and
	// must keep "=".
	if got := first.Commands["get"].ArgSeparator; got == nil || *got != "=" {
		t.Fatalf("get arg_separator = %v, want the registration-time value", got)
	}

	for _, enc := range []Encoding{JSON, YAML} {
		t.Run(string(enc), func(t *testing.T) {
			b, err := EncodeConfig(first, enc)
			if err != nil {
				t.Fatalf("EncodeConfig: %v", err)
			}
			decoded, err := DecodeConfig(b, enc)
			if err != nil {
				t.Fatalf("DecodeConfig: %v\n%s", err, b)
			}
			w3, err := FromConfig(decoded)
			if err != nil {
				t.Fatalf("FromConfig: %v", err)
			}
			b2, err := EncodeConfig(w3.Config(), enc)
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(string(b), string(b2)); diff != "" {
				t.Fatalf("encoded round trip mismatch (-first +second):\n%s", diff)
			}
			if got := decoded.Commands["bare"].CLICommand; got == nil || len(got) != 0 {
				t.Fatalf("empty cli_command decoded as %#v", got)
			}
		})
	}
}

func TestDecodeTOML(t *testing.T) {
	const src = `
path = "docker"
arg_separator = " "

[commands]
version = "version"

[commands.ps]
default_flags = { format = "{{json .}}", all = true }
parse = "jsonl"
`
	cfg, err := DecodeConfig([]byte(src), TOML)
	if err != nil {
		t.Fatalf("DecodeConfig: %v", err)
	}
	// TOML tables are unordered; flags come back sorted by name.
	if diff := cmp.Diff([]string{"all", "format"}, cfg.Commands["ps"].DefaultFlags.Names()); diff != "" {
		t.Fatalf("flag order mismatch (-want +got):\n%s", diff)
	}
	w, err := FromConfig(cfg)
	if err != nil {
		t.Fatal(err)
	}
	got, err := w.Op("ps").Argv()
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"docker", "ps", "--all", "--format", "{{json .}}"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("argv mismatch (-want +got):\n%s", diff)
	}
}

func TestFlagsJSONKeepsOrder(t *testing.T) {
	var f Flags
	if err := json.Unmarshal([]byte(`{"z": 1, "a": "x", "m": null}`), &f); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"z", "a", "m"}, f.Names()); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}
	b, err := json.Marshal(f)
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != `{"z":1,"a":"x","m":null}` {
		t.Fatalf("Marshal = %s", b)
	}
}

func TestFlagsYAMLKeepsOrder(t *testing.T) {
	var f Flags
	if err := yaml.Unmarshal([]byte("z: 1\na: x\n"), &f); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(Flags{{"z", 1}, {"a", "x"}}, f); diff != "" {
		t.Fatalf("decode mismatch (-want +got):\n%s", diff)
	}
	b, err := yaml.Marshal(f)
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != "z: 1\na: x\n" {
		t.Fatalf("Marshal = %q", b)
	}
}

func TestKwReplacesDuplicates(t *testing.T) {
	f := Kw("a", 1, "b", 2, "a", 3)
	if diff := cmp.Diff(Flags{{"a", 3}, {"b", 2}}, f); diff != "" {
		t.Fatalf("Kw mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeAsyncSpellings(t *testing.T) {
	tests := []struct {
		name string
		src  string
		enc  Encoding
		want bool
	}{
		{"json async_flag", `{"path": "x", "async_flag": true}`, JSON, true},
		{"json async_", `{"path": "x", "async_": true}`, JSON, true},
		{"json async", `{"path": "x", "async": true}`, JSON, true},
		{"json unset", `{"path": "x"}`, JSON, false},
		{"json async_flag wins", `{"path": "x", "async_flag": false, "async_": true}`, JSON, false},
		{"yaml async_flag", "path: x\nasync_flag: true\n", YAML, true},
		{"yaml async_", "path: x\nasync_: true\n", YAML, true},
		{"toml async_", "path = \"x\"\nasync_ = true\n", TOML, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := DecodeConfig([]byte(tt.src), tt.enc)
			if err != nil {
				t.Fatalf("DecodeConfig: %v", err)
			}
			w, err := FromConfig(cfg)
			if err != nil {
				t.Fatal(err)
			}
			if w.Async != tt.want {
				t.Fatalf("Async = %v, want %v", w.Async, tt.want)
			}
		})
	}
}

func TestEncodeWritesAsyncFlag(t *testing.T) {
	w := New("x")
	w.Async = true
	b, err := EncodeConfig(w.Config(), JSON)
	if err != nil {
		t.Fatal(err)
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		t.Fatal(err)
	}
	if m["async_flag"] != true {
		t.Fatalf("encoded config has no async_flag: %s", b)
	}
}

func TestConfigRoundTripEmptyFormatting(t *testing.T) {
	w := New("java")
	w.Format.ArgSeparator = ""
	w.Format.ShortPrefix = ""
	if err := w.UpdateCommand("prop", CommandConfig{
		CLICommand:   Tokens{"prop"},
		LongPrefix:   ptr.To(""),
		ArgSeparator: ptr.To(":"),
	}); err != nil {
		t.Fatal(err)
	}
	argv := func(t *testing.T, w *Wrapper) [][]string {
		t.Helper()
		run, err := w.Op("run").Flag("D", "x").Argv()
		if err != nil {
			t.Fatal(err)
		}
		prop, err := w.Op("prop").Flag("name", "v").Argv()
		if err != nil {
			t.Fatal(err)
		}
		return [][]string{run, prop}
	}
	want := [][]string{{"java", "run", "Dx"}, {"java", "prop", "name:v"}}
	if diff := cmp.Diff(want, argv(t, w)); diff != "" {
		t.Fatalf("argv mismatch (-want +got):\n%s", diff)
	}

	for _, enc := range []Encoding{JSON, YAML} {
		t.Run(string(enc), func(t *testing.T) {
			b, err := EncodeConfig(w.Config(), enc)
			if err != nil {
				t.Fatal(err)
			}
			cfg, err := DecodeConfig(b, enc)
			if err != nil {
				t.Fatalf("DecodeConfig: %v\n%s", err, b)
			}
			w2, err := FromConfig(cfg)
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(want, argv(t, w2)); diff != "" {
				t.Fatalf("argv after round trip mismatch (-want +got):\n%s\n%s", diff, b)
			}
		})
	}
}
