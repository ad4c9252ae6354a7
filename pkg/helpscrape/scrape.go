// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package helpscrape generates wrapper definitions by reading a tool's
// help output.
//
// Scrape runs `<tool> --help`, then `<tool> <cmd> --help` for every
// subcommand found, then `<tool> <cmd> <sub> --help` one level deeper.
// Every flag found becomes a validated argument. The result is a
// cliwrap.Config ready to encode.
package helpscrape

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"strings"
	"sync/atomic"

	"github.com/yeetrun/cliwrap/pkg/cliwrap"
	"github.com/yeetrun/cliwrap/pkg/cmdutil"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ParserDefault selects a parser for commands that accept all of Flags.
// Flags are added to such commands' default flags.
type ParserDefault struct {
	Parser string
	Flags  cliwrap.Flags
}

// Options configures Scrape.
type Options struct {
	// Command is the tool to scrape.
	Command string
	// HelpFlag is the flag that prints help. Defaults to "help".
	HelpFlag string
	// Style names the help layout. Defaults to "golang".
	Style string
	// DefaultFlags are added to every command that accepts them.
	DefaultFlags cliwrap.Flags
	// ParserDefaults are tried in order; the first one whose flags a
	// command accepts sets its parser.
	ParserDefaults []ParserDefault
	// Separator is the wrapper's argument separator. Defaults to " ".
	Separator string
	// Env is merged into the environment of every help probe.
	Env map[string]string

	// Progress, if set, is called after each help page is fetched with the
	// number fetched so far and the number known so far. It is called from
	// several goroutines at once.
	Progress func(done, total int, path []string)

	Runner      cmdutil.Runner
	Logger      *zap.Logger
	Concurrency int // defaults to 4
}

func (o *Options) setDefaults() {
	if o.HelpFlag == "" {
		o.HelpFlag = "help"
	}
	if o.Style == "" {
		o.Style = "golang"
	}
	if o.Separator == "" {
		o.Separator = " "
	}
	if o.Runner == nil {
		o.Runner = cmdutil.ExecRunner{}
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	if o.Concurrency <= 0 {
		o.Concurrency = 4
	}
}

var ErrNoCommand = errors.New("no command to scrape")

// probe is one help page to fetch.
type probe struct {
	path []string // subcommand tokens
	help Help
}

// Scrape builds a wrapper definition for opts.Command.
func Scrape(ctx context.Context, opts Options) (cliwrap.Config, error) {
	opts.setDefaults()
	if opts.Command == "" {
		return cliwrap.Config{}, ErrNoCommand
	}
	style, err := LookupStyle(opts.Style)
	if err != nil {
		return cliwrap.Config{}, err
	}
	w := cliwrap.New(opts.Command)
	w.Env = opts.Env
	w.Format.ArgSeparator = opts.Separator
	w.Runner = opts.Runner
	w.Logger = opts.Logger
	log := opts.Logger.With(zap.String("command", opts.Command))

	var done, total atomic.Int64
	fetch := func(ctx context.Context, p *probe) error {
		args := make([]any, len(p.path))
		for i, tok := range p.path {
			args[i] = tok
		}
		out, err := w.Call(ctx, args, cliwrap.Kw(opts.HelpFlag, true))
		if err != nil {
			return fmt.Errorf("help for %q: %w", strings.Join(append([]string{opts.Command}, p.path...), " "), err)
		}
		s, _ := out.(string)
		p.help = style.Parse(s)
		log.Debug("parsed help",
			zap.Strings("path", p.path),
			zap.Strings("commands", p.help.Commands),
			zap.Int("flags", len(p.help.Flags)))
		n := done.Add(1)
		if opts.Progress != nil {
			opts.Progress(int(n), int(total.Load()), p.path)
		}
		return nil
	}
	fetchAll := func(probes []*probe) error {
		total.Add(int64(len(probes)))
		g, ctx := errgroup.WithContext(ctx)
		g.SetLimit(opts.Concurrency)
		for _, p := range probes {
			g.Go(func() error { return fetch(ctx, p) })
		}
		return g.Wait()
	}

	root := &probe{}
	total.Store(1)
	if err := fetch(ctx, root); err != nil {
		return cliwrap.Config{}, err
	}

	cmds := make([]*probe, len(root.help.Commands))
	for i, c := range root.help.Commands {
		cmds[i] = &probe{path: []string{c}}
	}
	if err := fetchAll(cmds); err != nil {
		return cliwrap.Config{}, err
	}

	subs := make([][]*probe, len(cmds))
	var flat []*probe
	for i, c := range cmds {
		for _, s := range c.help.Commands {
			p := &probe{path: []string{c.path[0], s}}
			subs[i] = append(subs[i], p)
			flat = append(flat, p)
		}
	}
	if err := fetchAll(flat); err != nil {
		return cliwrap.Config{}, err
	}

	for i, c := range cmds {
		cmdFlags := merge(root.help.Flags, c.help.Flags)
		if err := w.UpdateCommand(kebabToSnake(c.path[0]), opts.commandConfig(c.path, cmdFlags)); err != nil {
			return cliwrap.Config{}, err
		}
		for _, s := range subs[i] {
			name := kebabToSnake(strings.Join(s.path, "_"))
			if err := w.UpdateCommand(name, opts.commandConfig(s.path, merge(cmdFlags, s.help.Flags))); err != nil {
				return cliwrap.Config{}, err
			}
		}
	}
	log.Info("scraped", zap.Int("commands", len(w.CommandNames())))
	return w.Config(), nil
}

// commandConfig builds the definition of the command at path accepting
// flags (name → validator).
func (o *Options) commandConfig(path []string, flags map[string]string) cliwrap.CommandConfig {
	cfg := cliwrap.CommandConfig{CLICommand: cliwrap.Tokens(path)}
	accepts := make(map[string]bool, len(flags))
	for name, v := range flags {
		key := kebabToSnake(name)
		accepts[key] = true
		if cfg.Args == nil {
			cfg.Args = make(map[string]cliwrap.ArgumentConfig)
		}
		cfg.Args[key] = cliwrap.ArgumentConfig{Validator: v}
	}
	for _, f := range o.DefaultFlags {
		if accepts[kebabToSnake(f.Name)] {
			cfg.DefaultFlags = cfg.DefaultFlags.With(f.Name, f.Value)
		}
	}
	for _, pd := range o.ParserDefaults {
		if !acceptsAll(accepts, pd.Flags) {
			continue
		}
		cfg.Parse = pd.Parser
		for _, f := range pd.Flags {
			cfg.DefaultFlags = cfg.DefaultFlags.With(f.Name, f.Value)
		}
		break
	}
	return cfg
}

func acceptsAll(accepts map[string]bool, flags cliwrap.Flags) bool {
	for _, f := range flags {
		if !accepts[kebabToSnake(f.Name)] {
			return false
		}
	}
	return true
}

// merge returns the union of a and b; b wins on conflicts.
func merge(a, b map[string]string) map[string]string {
	out := maps.Clone(a)
	if out == nil {
		out = make(map[string]string, len(b))
	}
	maps.Copy(out, b)
	return out
}

func kebabToSnake(s string) string { return strings.ReplaceAll(s, "-", "_") }
