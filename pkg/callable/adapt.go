// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package callable

import (
	"errors"
	"fmt"
	"strconv"
)

// ErrArity is returned by the adapters when a callable gets fewer
// arguments than it needs.
var ErrArity = errors.New("wrong number of arguments")

// Unary adapts a single-argument function. Extra arguments are ignored.
func Unary(fn func(any) (any, error)) Func {
	return func(args []any, _ map[string]any) (any, error) {
		if len(args) < 1 {
			return nil, fmt.Errorf("%w: want 1, got 0", ErrArity)
		}
		return fn(args[0])
	}
}

// Predicate adapts a single-argument boolean function.
func Predicate(fn func(any) bool) Func {
	return func(args []any, _ map[string]any) (any, error) {
		if len(args) < 1 {
			return nil, fmt.Errorf("%w: want 1, got 0", ErrArity)
		}
		return fn(args[0]), nil
	}
}

// StringArg returns args[i] as a string. Keyword argument kw is consulted
// when args is too short.
func StringArg(args []any, kwargs map[string]any, i int, kw string) (string, error) {
	v, err := Arg(args, kwargs, i, kw)
	if err != nil {
		return "", err
	}
	switch v := v.(type) {
	case string:
		return v, nil
	case fmt.Stringer:
		return v.String(), nil
	}
	return "", fmt.Errorf("argument %d: want string, got %T", i, v)
}

// Arg returns args[i], falling back to kwargs[kw].
func Arg(args []any, kwargs map[string]any, i int, kw string) (any, error) {
	if i < len(args) {
		return args[i], nil
	}
	if kw != "" {
		if v, ok := kwargs[kw]; ok {
			return v, nil
		}
	}
	return nil, fmt.Errorf("%w: missing argument %d (%s)", ErrArity, i, kw)
}

// IntArg coerces a config value to an int. Decoded JSON numbers arrive as
// float64 and TOML integers as int64.
func IntArg(v any) (int, error) {
	switch v := v.(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case int32:
		return int(v), nil
	case uint:
		return int(v), nil
	case uint64:
		return int(v), nil
	case float64:
		if v != float64(int(v)) {
			return 0, fmt.Errorf("%v is not an integer", v)
		}
		return int(v), nil
	case string:
		return strconv.Atoi(v)
	}
	return 0, fmt.Errorf("want integer, got %T", v)
}
