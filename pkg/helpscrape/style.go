// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package helpscrape

import (
	"fmt"
	"maps"
	"regexp"
	"slices"
	"strings"

	"github.com/containerd/errdefs"
)

// Help is what a Style extracts from one help page.
type Help struct {
	// Commands are the subcommand names, in page order.
	Commands []string
	// Flags maps a flag name, as printed, to a validator name.
	Flags map[string]string
}

func (h *Help) addCommand(name string) {
	if !slices.Contains(h.Commands, name) {
		h.Commands = append(h.Commands, name)
	}
}

func (h *Help) addFlag(name, validator string) {
	if h.Flags == nil {
		h.Flags = make(map[string]string)
	}
	h.Flags[name] = validator
}

// Style parses help output of one family of tools.
type Style interface {
	Parse(output string) Help
}

// StyleFunc adapts a function to Style.
type StyleFunc func(output string) Help

func (f StyleFunc) Parse(output string) Help { return f(output) }

var styles = map[string]Style{
	"golang":  StyleFunc(parseGolang),
	"generic": StyleFunc(parseGeneric),
}

// Styles returns the known style names, sorted.
func Styles() []string {
	return slices.Sorted(maps.Keys(styles))
}

// LookupStyle returns the named Style.
func LookupStyle(name string) (Style, error) {
	s, ok := styles[name]
	if !ok {
		return nil, fmt.Errorf("%w: unknown help style %q (have %s)", errdefs.ErrInvalidArgument, name, strings.Join(Styles(), ", "))
	}
	return s, nil
}

// typeValidators maps the value placeholder Go flag packages print to a
// validator.
var typeValidators = map[string]string{
	"string":      "is_str",
	"int":         "is_int",
	"float":       "is_float",
	"bool":        "is_bool",
	"stringArray": "is_list",
}

// parseGolang reads cobra and kubectl style help: "Flags:" sections with
// "--name type  description" lines, "Options:" sections with
// "--name=default:" lines, and "... Commands:" sections listing
// subcommands indented by two spaces.
func parseGolang(output string) Help {
	var h Help
	mode := ""
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimRight(line, "\r")
		switch {
		case strings.Contains(line, "Usage:"):
			mode = "usage"
			continue
		case strings.Contains(line, "Options:"):
			mode = "options"
			continue
		case strings.Contains(line, "Flags:"):
			mode = "flags"
			continue
		case strings.HasSuffix(line, ":") && strings.Contains(line, "Commands"):
			mode = "commands"
			continue
		}
		switch mode {
		case "flags":
			if !strings.HasPrefix(line, " ") {
				continue
			}
			_, rest, ok := strings.Cut(line, "--")
			if !ok {
				continue
			}
			tokens := strings.Fields(rest)
			if len(tokens) == 0 {
				continue
			}
			validator := typeValidators["bool"]
			if len(tokens) > 1 {
				if v, ok := typeValidators[tokens[1]]; ok {
					validator = v
				}
			}
			h.addFlag(tokens[0], validator)
		case "commands":
			if strings.HasPrefix(line, "  ") {
				if f := strings.Fields(line); len(f) > 0 {
					h.addCommand(f[0])
				}
			}
		case "options":
			if !strings.HasPrefix(line, "  ") {
				continue
			}
			_, rest, ok := strings.Cut(line, "--")
			if !ok {
				continue
			}
			name, def, ok := strings.Cut(rest, "=")
			if !ok {
				continue
			}
			def = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(def), ":"))
			switch def {
			case "true", "false":
				h.addFlag(name, typeValidators["bool"])
			case "[]":
				h.addFlag(name, typeValidators["stringArray"])
			default:
				h.addFlag(name, typeValidators["string"])
			}
		}
	}
	return h
}

var (
	// "  -o, --output FILE   description"
	flagLinePattern = regexp.MustCompile(`^(\s{1,12}-[^\t]+?)(?:\s{2,}|\t)(.+)$`)
	// a flag line with its description on the next line
	flagOnlyPattern = regexp.MustCompile(`^\s{1,12}(-[a-zA-Z0-9,\s\-\[\]<>=]+?)$`)
	longFlagPattern = regexp.MustCompile(`--(?:\[no-\])?([a-zA-Z0-9][a-zA-Z0-9\-]*)`)
	takesArgPattern = regexp.MustCompile(`=|<[^>]+>|\b(?i:value|file|path|string|int|num|port|url|host|addr|dir|name|key|secret|token)\b|\b[A-Z][A-Z_]+\b`)
	commandPattern  = regexp.MustCompile(`^\s{2,4}([a-z][a-zA-Z0-9_\-]+)\s{2,}(.+)$`)
)

// parseGeneric reads help output without a known layout. Any indented
// line starting with a long flag is a flag; flags followed by a value
// placeholder take strings and the rest are switches. Lines indented two
// to four spaces holding "name  description" are subcommands, except
// inside an options section.
func parseGeneric(output string) Help {
	var h Help
	inOptions := false
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimRight(line, "\r \t")
		if line != "" && !strings.HasPrefix(line, " ") && !strings.HasPrefix(line, "\t") {
			inOptions = isOptionsHeader(strings.ToLower(line))
			continue
		}

		flagsPart := ""
		if m := flagLinePattern.FindStringSubmatch(line); m != nil {
			flagsPart = m[1]
		} else if m := flagOnlyPattern.FindStringSubmatch(line); m != nil {
			flagsPart = m[1]
		}
		if flagsPart != "" {
			if m := longFlagPattern.FindStringSubmatch(flagsPart); m != nil {
				// Drop the flag names before looking for a placeholder.
				placeholder := longFlagPattern.ReplaceAllString(flagsPart, "")
				validator := typeValidators["bool"]
				if takesArgPattern.MatchString(placeholder) {
					validator = typeValidators["string"]
				}
				h.addFlag(m[1], validator)
			}
			continue
		}

		if inOptions {
			continue
		}
		if m := commandPattern.FindStringSubmatch(line); m != nil && m[1] != "help" {
			h.addCommand(m[1])
		}
	}
	return h
}

func isOptionsHeader(s string) bool {
	return strings.HasSuffix(s, ":") && (strings.HasPrefix(s, "option") ||
		strings.HasPrefix(s, "flag") ||
		strings.HasPrefix(s, "global option") ||
		strings.HasPrefix(s, "global flag"))
}
