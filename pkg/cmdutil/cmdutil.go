// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cmdutil

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
)

// Request describes one process to run.
type Request struct {
	Path string
	Args []string
	// Env is the complete child environment. Nil inherits the parent's.
	Env []string
	Dir string
}

// Result holds what a finished process produced.
type Result struct {
	Stdout   []byte
	Stderr   []byte
	ExitCode int
}

// Runner runs a process to completion.
//
// A process that starts and exits nonzero yields its Result together with
// an *exec.ExitError. A process that cannot be started yields an error and
// a Result with exit code 127 (not found) or 1.
type Runner interface {
	Run(ctx context.Context, req Request) (Result, error)
}

// RunnerFunc adapts a function to Runner.
type RunnerFunc func(ctx context.Context, req Request) (Result, error)

func (f RunnerFunc) Run(ctx context.Context, req Request) (Result, error) { return f(ctx, req) }

// ExecRunner runs processes on the local host with os/exec.
type ExecRunner struct {
	// NewCmd builds the command. Defaults to exec.CommandContext; tests
	// swap it out.
	NewCmd func(ctx context.Context, name string, arg ...string) *exec.Cmd
}

func (r ExecRunner) Run(ctx context.Context, req Request) (Result, error) {
	newCmd := r.NewCmd
	if newCmd == nil {
		newCmd = exec.CommandContext
	}
	cmd := newCmd(ctx, req.Path, req.Args...)
	if req.Env != nil {
		cmd.Env = req.Env
	}
	if req.Dir != "" {
		cmd.Dir = req.Dir
	}
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	res := Result{Stdout: stdout.Bytes(), Stderr: stderr.Bytes()}
	if err == nil {
		return res, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		res.ExitCode = exitErr.ExitCode()
		return res, err
	}
	res.ExitCode = 1
	var execErr *exec.Error
	if errors.As(err, &execErr) {
		res.ExitCode = 127
	}
	return res, err
}

// Started reports whether err (as returned by a Runner) still means the
// process ran and produced an exit status.
func Started(err error) bool {
	if err == nil {
		return true
	}
	var exitErr *exec.ExitError
	return errors.As(err, &exitErr)
}
