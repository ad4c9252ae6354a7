// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package validators

import (
	"fmt"
	"os"
	"reflect"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/Masterminds/semver/v3"
	"github.com/opencontainers/go-digest"
	"github.com/yeetrun/cliwrap/pkg/callable"
)

// Default is the registry used when none is given. It holds the core
// validators.
var Default = NewRegistry()

// NewRegistry returns a fresh registry holding the core validators.
func NewRegistry() *callable.Registry {
	r := callable.New("validator")
	for name, fn := range core {
		if err := r.Register(name, fn, callable.CoreGroup); err != nil {
			panic(err)
		}
	}
	return r
}

var core = map[string]callable.Func{
	"is_dict":           callable.Predicate(isKind(reflect.Map)),
	"is_list":           callable.Predicate(isList),
	"is_str":            callable.Predicate(isStr),
	"is_str_or_list":    callable.Predicate(func(v any) bool { return isStr(v) || isList(v) }),
	"is_int":            callable.Predicate(isInt),
	"is_bool":           callable.Predicate(isKind(reflect.Bool)),
	"is_float":          callable.Predicate(isFloat),
	"is_alnum":          callable.Predicate(allRunes(func(r rune) bool { return unicode.IsLetter(r) || unicode.IsDigit(r) })),
	"is_alpha":          callable.Predicate(allRunes(unicode.IsLetter)),
	"is_digit":          callable.Predicate(allRunes(unicode.IsDigit)),
	"is_path":           callable.Predicate(isPath),
	"starts_alpha":      callable.Predicate(startsAlpha),
	"not_empty":         callable.Predicate(Truthy),
	"exists":            callable.Predicate(exists),
	"digest":            callable.Predicate(isDigest),
	"semver":            callable.Predicate(isSemver),
	"startswith":        startsWith,
	"endswith":          endsWith,
	"one_of":            oneOf,
	"matches":           matches,
	"semver_constraint": semverConstraint,
}

func isKind(k reflect.Kind) func(any) bool {
	return func(v any) bool {
		return v != nil && reflect.TypeOf(v).Kind() == k
	}
}

func isStr(v any) bool {
	_, ok := v.(string)
	return ok
}

func isList(v any) bool {
	if v == nil {
		return false
	}
	switch reflect.TypeOf(v).Kind() {
	case reflect.Slice, reflect.Array:
		return true
	}
	return false
}

func isInt(v any) bool {
	if v == nil {
		return false
	}
	switch reflect.TypeOf(v).Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return true
	}
	return false
}

func isFloat(v any) bool {
	if v == nil {
		return false
	}
	switch reflect.TypeOf(v).Kind() {
	case reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

func allRunes(pred func(rune) bool) func(any) bool {
	return func(v any) bool {
		s, ok := v.(string)
		if !ok || s == "" {
			return false
		}
		for _, r := range s {
			if !pred(r) {
				return false
			}
		}
		return true
	}
}

func isPath(v any) bool {
	s, ok := v.(string)
	return ok && s != "" && !strings.ContainsRune(s, 0)
}

func startsAlpha(v any) bool {
	s, ok := v.(string)
	if !ok || s == "" {
		return false
	}
	r, _ := utf8.DecodeRuneInString(s)
	return unicode.IsLetter(r)
}

func exists(v any) bool {
	if !isPath(v) {
		return false
	}
	_, err := os.Stat(v.(string))
	return err == nil
}

func isDigest(v any) bool {
	s, ok := v.(string)
	if !ok {
		return false
	}
	_, err := digest.Parse(s)
	return err == nil
}

func isSemver(v any) bool {
	s, ok := v.(string)
	if !ok {
		return false
	}
	_, err := semver.NewVersion(s)
	return err == nil
}

func startsWith(args []any, kwargs map[string]any) (any, error) {
	if len(args) < 1 {
		return nil, fmt.Errorf("%w: startswith needs a value", callable.ErrArity)
	}
	prefix, err := callable.StringArg(args, kwargs, 1, "prefix")
	if err != nil {
		return nil, err
	}
	s, ok := args[0].(string)
	return ok && strings.HasPrefix(s, prefix), nil
}

func endsWith(args []any, kwargs map[string]any) (any, error) {
	if len(args) < 1 {
		return nil, fmt.Errorf("%w: endswith needs a value", callable.ErrArity)
	}
	suffix, err := callable.StringArg(args, kwargs, 1, "suffix")
	if err != nil {
		return nil, err
	}
	s, ok := args[0].(string)
	return ok && strings.HasSuffix(s, suffix), nil
}

// oneOf accepts the value when it equals one of the remaining arguments.
// A single list argument is expanded.
func oneOf(args []any, kwargs map[string]any) (any, error) {
	if len(args) < 1 {
		return nil, fmt.Errorf("%w: one_of needs a value", callable.ErrArity)
	}
	choices := args[1:]
	if len(choices) == 0 {
		if c, ok := kwargs["choices"]; ok {
			choices = []any{c}
		}
	}
	if len(choices) == 1 {
		if list, ok := choices[0].([]any); ok {
			choices = list
		}
	}
	for _, c := range choices {
		if reflect.DeepEqual(c, args[0]) {
			return true, nil
		}
	}
	return fmt.Sprintf("must be one of %v", choices), nil
}

func matches(args []any, kwargs map[string]any) (any, error) {
	if len(args) < 1 {
		return nil, fmt.Errorf("%w: matches needs a value", callable.ErrArity)
	}
	pattern, err := callable.StringArg(args, kwargs, 1, "pattern")
	if err != nil {
		return nil, err
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}
	s, ok := args[0].(string)
	return ok && re.MatchString(s), nil
}

func semverConstraint(args []any, kwargs map[string]any) (any, error) {
	if len(args) < 1 {
		return nil, fmt.Errorf("%w: semver_constraint needs a value", callable.ErrArity)
	}
	expr, err := callable.StringArg(args, kwargs, 1, "constraint")
	if err != nil {
		return nil, err
	}
	c, err := semver.NewConstraint(expr)
	if err != nil {
		return nil, err
	}
	s, ok := args[0].(string)
	if !ok {
		return false, nil
	}
	ver, err := semver.NewVersion(s)
	if err != nil {
		return fmt.Sprintf("%q is not a version", s), nil
	}
	if ok, errs := c.Validate(ver); !ok {
		if len(errs) > 0 {
			return errs[0].Error(), nil
		}
		return false, nil
	}
	return true, nil
}
