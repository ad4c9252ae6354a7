// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command cliwrap-scrape prints a cliwrap definition for a command-line
// tool, built from the tool's help output.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"os/signal"
	"slices"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/shayne/yargs"
	"github.com/yeetrun/cliwrap/pkg/cli"
	"github.com/yeetrun/cliwrap/pkg/cliwrap"
	"github.com/yeetrun/cliwrap/pkg/cmdutil"
	"github.com/yeetrun/cliwrap/pkg/fileutil"
	"github.com/yeetrun/cliwrap/pkg/helpscrape"
	"github.com/yeetrun/cliwrap/pkg/logging"
	"github.com/yeetrun/cliwrap/pkg/tui"
	"go.uber.org/zap/zapcore"
	"golang.org/x/term"
)

var (
	runner       cmdutil.Runner = cmdutil.ExecRunner{}
	isTerminalFn                = term.IsTerminal
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr, int(os.Stderr.Fd())); err != nil {
		printCLIError(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer, stderrFd int) error {
	flags, command, err := cli.ParseScrape(args)
	if errors.Is(err, yargs.ErrHelp) {
		fmt.Fprint(stdout, cli.ScrapeHelp())
		return nil
	}
	if err != nil {
		return err
	}

	logCfg := logging.Load(logging.ProfileRuntime)
	if flags.Verbose {
		logCfg.Level = zapcore.DebugLevel
		logCfg.Disabled = false
	}
	logger, err := logCfg.Build()
	if err != nil {
		return fmt.Errorf("failed to set up logging: %w", err)
	}
	defer logger.Sync()

	useColor := isTerminalFn(stderrFd)
	var progress func(done, total int, path []string)
	stopSpinner := func() {}
	if useColor && !flags.Verbose {
		frame := color.New(color.FgCyan)
		frame.EnableColor()
		spinner := tui.NewSpinner(stderr, tui.WithColor(frame))
		spinner.Start("probing " + command)
		stopSpinner = spinner.Stop
		progress = func(done, total int, path []string) {
			spinner.Update(fmt.Sprintf("%d/%d %s", done, total, strings.Join(append([]string{command}, path...), " ")))
		}
	}

	cfg, err := helpscrape.Scrape(ctx, helpscrape.Options{
		Command:        command,
		HelpFlag:       flags.HelpFlag,
		Style:          flags.Style,
		DefaultFlags:   flags.DefaultFlags,
		ParserDefaults: flags.ParserDefaults,
		Separator:      flags.Separator,
		Env:            flags.Env,
		Runner:         runner,
		Logger:         logger,
		Concurrency:    flags.Concurrency,
		Progress:       progress,
	})
	stopSpinner()
	if err != nil {
		return err
	}
	out, err := cliwrap.EncodeConfig(cfg, flags.Format)
	if err != nil {
		return err
	}
	if flags.Output == "" {
		if _, err := stdout.Write(out); err != nil {
			return err
		}
	} else {
		changed, err := fileutil.WriteIfChanged(flags.Output, out, 0o644)
		if err != nil {
			return fmt.Errorf("failed to write %s: %w", flags.Output, err)
		}
		if changed {
			fmt.Fprintf(stderr, "wrote %s\n", flags.Output)
		} else {
			fmt.Fprintf(stderr, "%s is up to date\n", flags.Output)
		}
	}
	printSummary(stderr, cfg, useColor)
	return nil
}

func printSummary(w io.Writer, cfg cliwrap.Config, useColor bool) {
	name := color.New(color.FgGreen, color.Bold)
	dim := color.New(color.Faint)
	if useColor {
		name.EnableColor()
		dim.EnableColor()
	} else {
		name.DisableColor()
		dim.DisableColor()
	}

	fmt.Fprintf(w, "%s: %d commands\n", name.Sprint(cfg.Path), len(cfg.Commands))
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, op := range slices.Sorted(maps.Keys(cfg.Commands)) {
		c := cfg.Commands[op]
		parse := "-"
		if c.Parse != nil {
			parse = fmt.Sprint(c.Parse)
		}
		fmt.Fprintf(tw, "  %s\t%s\t%s\t%s\n",
			name.Sprint(op),
			strings.Join(append([]string{cfg.Path}, c.CLICommand...), " "),
			dim.Sprintf("%d args", len(c.Args)),
			dim.Sprintf("parse: %s", parse))
	}
	tw.Flush()
}

func printCLIError(w io.Writer, err error) {
	if err == nil {
		return
	}
	var ee *cliwrap.ExitError
	if errors.As(err, &ee) {
		fmt.Fprint(w, color.RedString("%s exited with status %d\n", strings.Join(ee.Argv, " "), ee.ExitCode))
	}
	fmt.Fprintln(w, err)
}
