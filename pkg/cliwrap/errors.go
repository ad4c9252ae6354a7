// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cliwrap

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/yeetrun/cliwrap/pkg/transform"
)

var (
	// ErrUnknownCommand is returned by a non-trusting Wrapper for an
	// operation that was never registered.
	ErrUnknownCommand = errors.New("unknown command")
	// ErrInvalidValue matches every *ValidationError.
	ErrInvalidValue = errors.New("invalid value")
	// ErrInvalidConfig is returned for malformed wrapper definitions.
	ErrInvalidConfig = errors.New("invalid config")
	// ErrCommandFailed matches every *ExitError.
	ErrCommandFailed = errors.New("command failed")
)

// ValidationError reports an argument value rejected by its validator.
type ValidationError struct {
	Command []string
	Arg     transform.Key
	Value   any
	Reason  string
}

func (e *ValidationError) Error() string {
	msg := fmt.Sprintf("Value '%s' is invalid for command %s arg %s", text(e.Value), strings.Join(e.Command, " "), argLabel(e.Arg))
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	return msg
}

func (e *ValidationError) Is(target error) bool { return target == ErrInvalidValue }

// argLabel names an argument for humans. Positions are 1-based.
func argLabel(k transform.Key) string {
	if k.IsNamed() {
		return k.Name()
	}
	return strconv.Itoa(k.Index() + 1)
}

// ExitError reports a process that exited nonzero.
type ExitError struct {
	Op       string
	Argv     []string
	ExitCode int
	Stderr   string
	// Err is the underlying *exec.ExitError. It is only set when the
	// Wrapper has RaiseExc enabled.
	Err error
}

func (e *ExitError) Error() string {
	op := e.Op
	if op == "" {
		op = strings.Join(e.Argv, " ")
	}
	return fmt.Sprintf("command %s failed with error: %s", op, strings.TrimSpace(e.Stderr))
}

func (e *ExitError) Is(target error) bool { return target == ErrCommandFailed }

func (e *ExitError) Unwrap() error { return e.Err }
