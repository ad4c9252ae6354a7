// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cli

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/shayne/yargs"
	"github.com/yeetrun/cliwrap/pkg/cliwrap"
	"github.com/yeetrun/cliwrap/pkg/helpscrape"
)

func TestParseScrapeFlagsAndArgs(t *testing.T) {
	args := []string{
		"--help-flag=-h",
		"--style", "generic",
		"--default-flags", "output=json",
		"--default-flags", "selector=a=b",
		"--parser-default-pairs", "json:output=json,x=1",
		"--parser-default-pairs", "yaml:format=yaml",
		"--default-separator", "=",
		"-f", "yaml",
		"--env", "KUBECONFIG=/tmp/kc",
		"-j", "8",
		"-v",
		"kubectl",
	}

	flags, command, err := ParseScrape(args)
	if err != nil {
		t.Fatalf("ParseScrape failed: %v", err)
	}
	if command != "kubectl" {
		t.Errorf("command = %q, want %q", command, "kubectl")
	}
	if flags.HelpFlag != "h" {
		t.Errorf("HelpFlag = %q, want %q", flags.HelpFlag, "h")
	}
	if flags.Style != "generic" {
		t.Errorf("Style = %q, want %q", flags.Style, "generic")
	}
	if flags.Separator != "=" {
		t.Errorf("Separator = %q, want %q", flags.Separator, "=")
	}
	if flags.Format != cliwrap.YAML {
		t.Errorf("Format = %q, want %q", flags.Format, cliwrap.YAML)
	}
	if flags.Concurrency != 8 || !flags.Verbose {
		t.Errorf("Concurrency, Verbose = %d, %v", flags.Concurrency, flags.Verbose)
	}
	wantDefaults := cliwrap.Kw("output", "json", "selector", "a=b")
	if !reflect.DeepEqual(flags.DefaultFlags, wantDefaults) {
		t.Errorf("DefaultFlags = %v, want %v", flags.DefaultFlags, wantDefaults)
	}
	wantParsers := []helpscrape.ParserDefault{
		{Parser: "json", Flags: cliwrap.Kw("output", "json", "x", "1")},
		{Parser: "yaml", Flags: cliwrap.Kw("format", "yaml")},
	}
	if !reflect.DeepEqual(flags.ParserDefaults, wantParsers) {
		t.Errorf("ParserDefaults = %v, want %v", flags.ParserDefaults, wantParsers)
	}
	if !reflect.DeepEqual(flags.Env, map[string]string{"KUBECONFIG": "/tmp/kc"}) {
		t.Errorf("Env = %v", flags.Env)
	}
}

func TestParseScrapeDefaults(t *testing.T) {
	flags, command, err := ParseScrape([]string{"kubectl"})
	if err != nil {
		t.Fatalf("ParseScrape failed: %v", err)
	}
	want := ScrapeFlags{
		HelpFlag:    "help",
		Style:       "golang",
		Format:      cliwrap.JSON,
		Concurrency: 4,
	}
	if command != "kubectl" || !reflect.DeepEqual(flags, want) {
		t.Errorf("ParseScrape = %+v, %q; want %+v, kubectl", flags, command, want)
	}
}

func TestParseScrapeOutputSetsFormat(t *testing.T) {
	tests := []struct {
		args []string
		want cliwrap.Encoding
	}{
		{[]string{"-o", "kubectl.yaml", "kubectl"}, cliwrap.YAML},
		{[]string{"-o", "kubectl.yml", "kubectl"}, cliwrap.YAML},
		{[]string{"-f", "yaml", "--output", "kubectl.json", "kubectl"}, cliwrap.JSON},
		{[]string{"-f", "yaml", "-o", "kubectl.def", "kubectl"}, cliwrap.YAML},
		{[]string{"-o", "kubectl.toml", "kubectl"}, cliwrap.JSON},
	}
	for _, tt := range tests {
		flags, _, err := ParseScrape(tt.args)
		if err != nil {
			t.Fatalf("ParseScrape(%q): %v", tt.args, err)
		}
		if flags.Format != tt.want {
			t.Errorf("ParseScrape(%q) format = %q, want %q", tt.args, flags.Format, tt.want)
		}
		if flags.Output == "" {
			t.Errorf("ParseScrape(%q) dropped the output path", tt.args)
		}
	}
}

func TestParseScrapeCommandAfterDoubleDash(t *testing.T) {
	_, command, err := ParseScrape([]string{"--style", "golang", "--", "-odd"})
	if err != nil {
		t.Fatalf("ParseScrape failed: %v", err)
	}
	if command != "-odd" {
		t.Errorf("command = %q, want %q", command, "-odd")
	}
}

func TestParseScrapeErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"no command", nil, "requires exactly 1"},
		{"two commands", []string{"a", "b"}, "requires exactly 1"},
		{"bad default flag", []string{"--default-flags", "output", "kubectl"}, "--default-flags"},
		{"bad env", []string{"--env", "=x", "kubectl"}, "--env"},
		{"bad format", []string{"--format", "toml", "kubectl"}, "--format"},
		{"parser without name", []string{"--parser-default-pairs", "output=json", "kubectl"}, "--parser-default-pairs"},
		{"parser without pairs", []string{"--parser-default-pairs", "json:", "kubectl"}, "no KEY=VALUE"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := ParseScrape(tt.args)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("ParseScrape(%q) = %v, want error containing %q", tt.args, err, tt.want)
			}
		})
	}
}

func TestParseScrapeUnknownFlag(t *testing.T) {
	_, _, err := ParseScrape([]string{"--nope", "kubectl"})
	var flagErr *yargs.InvalidFlagError
	if !errors.As(err, &flagErr) {
		t.Fatalf("ParseScrape = %v, want *yargs.InvalidFlagError", err)
	}
}

func TestParseScrapeHelp(t *testing.T) {
	for _, arg := range []string{"-h", "--help"} {
		if _, _, err := ParseScrape([]string{arg}); !errors.Is(err, yargs.ErrHelp) {
			t.Errorf("ParseScrape(%s) = %v, want ErrHelp", arg, err)
		}
	}
	help := ScrapeHelp()
	for _, want := range []string{"cliwrap-scrape", "--parser-default-pairs", "--help-flag"} {
		if !strings.Contains(help, want) {
			t.Errorf("help text missing %q:\n%s", want, help)
		}
	}
}
