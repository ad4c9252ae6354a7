// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cli

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/shayne/yargs"
	"github.com/yeetrun/cliwrap/pkg/cliwrap"
	"github.com/yeetrun/cliwrap/pkg/env"
	"github.com/yeetrun/cliwrap/pkg/helpscrape"
)

type CommandInfo struct {
	Name        string
	Description string
	Usage       string
	Examples    []string
}

// ScrapeFlags are the options of cliwrap-scrape.
type ScrapeFlags struct {
	HelpFlag       string
	Style          string
	DefaultFlags   cliwrap.Flags
	ParserDefaults []helpscrape.ParserDefault
	Separator      string
	Format         cliwrap.Encoding
	Output         string
	Env            map[string]string
	Concurrency    int
	Verbose        bool
}

type scrapeFlagsParsed struct {
	HelpFlag           string   `flag:"help-flag" default:"help" help:"Flag that prints help, without dashes"`
	Style              string   `flag:"style" default:"golang" help:"Help layout: golang or generic"`
	DefaultFlags       []string `flag:"default-flags" help:"KEY=VALUE default flag for commands that accept KEY (repeatable)"`
	ParserDefaultPairs []string `flag:"parser-default-pairs" help:"PARSER:KEY=VALUE,... parser for commands that accept every KEY (repeatable)"`
	DefaultSeparator   string   `flag:"default-separator" help:"Separator between a flag and its value (default: space)"`
	Format             string   `flag:"format" short:"f" default:"json" help:"Output format: json or yaml"`
	Output             string   `flag:"output" short:"o" help:"Write to FILE instead of stdout; a .json/.yaml extension sets the format"`
	Env                []string `flag:"env" short:"e" help:"KEY=VALUE set while probing (repeatable)"`
	Concurrency        int      `flag:"concurrency" short:"j" default:"4" help:"Help pages fetched at once"`
	Verbose            bool     `flag:"verbose" short:"v" help:"Debug logging"`
}

var ScrapeCommandInfo = CommandInfo{
	Name:        "cliwrap-scrape",
	Description: "Generate a cliwrap definition from a tool's help output",
	Usage:       "[OPTIONS] COMMAND",
	Examples: []string{
		"cliwrap-scrape kubectl",
		"cliwrap-scrape --default-flags output=json --parser-default-pairs json:output=json kubectl",
		"cliwrap-scrape --style generic --format yaml restic > restic.yaml",
		"cliwrap-scrape -o kubectl.yaml kubectl",
	},
}

// ScrapeHelp returns the usage text of cliwrap-scrape.
func ScrapeHelp() string {
	return yargs.GenerateGlobalHelp(yargs.HelpConfig{
		Command: yargs.CommandInfo{
			Name:        ScrapeCommandInfo.Name,
			Description: ScrapeCommandInfo.Description,
			Examples:    ScrapeCommandInfo.Examples,
		},
	}, scrapeFlagsParsed{})
}

// ParseScrape parses the cliwrap-scrape command line. It returns the
// command to scrape, or yargs.ErrHelp when help was requested.
func ParseScrape(args []string) (ScrapeFlags, string, error) {
	parseArgs, extraArgs := splitArgsAtDoubleDash(args)
	if slices.ContainsFunc(parseArgs, isHelpFlag) {
		return ScrapeFlags{}, "", yargs.ErrHelp
	}
	parsed, err := parseFlags[scrapeFlagsParsed](parseArgs)
	if err != nil {
		return ScrapeFlags{}, "", err
	}
	argsOut := append(parsed.Args, extraArgs...)
	if err := RequireArgsExactly("cliwrap-scrape", argsOut, 1); err != nil {
		return ScrapeFlags{}, "", err
	}

	p := parsed.Flags
	flags := ScrapeFlags{
		HelpFlag:    strings.TrimLeft(p.HelpFlag, "-"),
		Style:       p.Style,
		Separator:   p.DefaultSeparator,
		Concurrency: p.Concurrency,
		Output:      p.Output,
		Verbose:     p.Verbose,
	}
	switch enc := cliwrap.Encoding(p.Format); enc {
	case cliwrap.JSON, cliwrap.YAML:
		flags.Format = enc
	default:
		return ScrapeFlags{}, "", fmt.Errorf("--format: unsupported output format %q (want json or yaml)", p.Format)
	}
	if enc, ok := cliwrap.EncodingForExt(filepath.Ext(p.Output)); ok && enc != cliwrap.TOML {
		flags.Format = enc
	}
	if flags.DefaultFlags, err = ParseKeyValues(p.DefaultFlags); err != nil {
		return ScrapeFlags{}, "", fmt.Errorf("--default-flags: %w", err)
	}
	if flags.ParserDefaults, err = ParseParserDefaults(p.ParserDefaultPairs); err != nil {
		return ScrapeFlags{}, "", fmt.Errorf("--parser-default-pairs: %w", err)
	}
	if _, err := ParseKeyValues(p.Env); err != nil {
		return ScrapeFlags{}, "", fmt.Errorf("--env: %w", err)
	}
	if len(p.Env) > 0 {
		flags.Env = env.Parse(p.Env)
	}
	return flags, argsOut[0], nil
}

// ParseKeyValues parses KEY=VALUE pairs in order. Values may contain "=".
func ParseKeyValues(pairs []string) (cliwrap.Flags, error) {
	var out cliwrap.Flags
	for _, kv := range pairs {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid pair %q, expected KEY=VALUE", kv)
		}
		out = out.With(k, v)
	}
	return out, nil
}

// ParseParserDefaults parses PARSER:KEY=VALUE[,KEY=VALUE...] specs. Repeated
// slice flags arrive split at commas, so an element without a colon
// continues the previous spec.
func ParseParserDefaults(specs []string) ([]helpscrape.ParserDefault, error) {
	var out []helpscrape.ParserDefault
	for _, spec := range specs {
		var pairs string
		if parser, rest, ok := strings.Cut(spec, ":"); ok && !strings.Contains(parser, "=") {
			if parser == "" {
				return nil, fmt.Errorf("invalid spec %q, missing parser name", spec)
			}
			out = append(out, helpscrape.ParserDefault{Parser: parser})
			pairs = rest
		} else if len(out) == 0 {
			return nil, fmt.Errorf("invalid spec %q, expected PARSER:KEY=VALUE,...", spec)
		} else {
			pairs = spec
		}
		cur := &out[len(out)-1]
		for _, kv := range strings.Split(pairs, ",") {
			if kv == "" {
				continue
			}
			f, err := ParseKeyValues([]string{kv})
			if err != nil {
				return nil, err
			}
			cur.Flags = cur.Flags.With(f[0].Name, f[0].Value)
		}
	}
	for _, pd := range out {
		if len(pd.Flags) == 0 {
			return nil, fmt.Errorf("parser %q has no KEY=VALUE pairs", pd.Parser)
		}
	}
	return out, nil
}

type parsedFlags[T any] struct {
	Flags  T
	Args   []string
	Parser *yargs.Parser
}

func parseFlags[T any](args []string) (parsedFlags[T], error) {
	result, err := yargs.ParseFlags[T](args)
	if err != nil {
		return parsedFlags[T]{}, err
	}
	argsOut := append([]string{}, result.Args...)
	if len(result.RemainingArgs) > 0 {
		argsOut = append(argsOut, result.RemainingArgs...)
	}
	return parsedFlags[T]{Flags: result.Flags, Args: argsOut, Parser: result.Parser}, nil
}

func splitArgsAtDoubleDash(args []string) ([]string, []string) {
	for i, arg := range args {
		if arg == "--" {
			if i+1 < len(args) {
				return args[:i], args[i+1:]
			}
			return args[:i], nil
		}
	}
	return args, nil
}

func isHelpFlag(arg string) bool {
	return arg == "-h" || arg == "--help"
}

func RequireArgsExactly(subcmd string, args []string, count int) error {
	if len(args) != count {
		return fmt.Errorf("'%s' requires exactly %d argument(s), got %d", subcmd, count, len(args))
	}
	return nil
}
