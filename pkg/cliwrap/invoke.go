// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cliwrap

import (
	"context"
	"fmt"
	"os"
	"slices"

	"github.com/google/uuid"
	"github.com/yeetrun/cliwrap/pkg/cmdutil"
	"github.com/yeetrun/cliwrap/pkg/env"
	"go.uber.org/zap"
)

// Pending is the eventual result of an invocation.
type Pending struct {
	done   chan struct{}
	result any
	err    error
}

func newPending() *Pending { return &Pending{done: make(chan struct{})} }

func (p *Pending) resolve(v any, err error) {
	p.result, p.err = v, err
	close(p.done)
}

// Wait blocks until the invocation finishes and returns its parsed output.
func (p *Pending) Wait() (any, error) {
	<-p.done
	return p.result, p.err
}

// Done is closed when the invocation finishes.
func (p *Pending) Done() <-chan struct{} { return p.done }

// Invoke runs operation op with positional args and named kwargs.
//
// In synchronous mode the returned Pending is already resolved. In async
// mode the work happens on a new goroutine and every error, validation
// included, is delivered through Wait.
func (w *Wrapper) Invoke(ctx context.Context, op string, args []any, kwargs Flags) *Pending {
	p := newPending()
	if w.Async {
		go func() { p.resolve(w.run(ctx, op, args, kwargs)) }()
		return p
	}
	p.resolve(w.run(ctx, op, args, kwargs))
	return p
}

// Run invokes op and waits for the result.
func (w *Wrapper) Run(ctx context.Context, op string, args []any, kwargs Flags) (any, error) {
	return w.Invoke(ctx, op, args, kwargs).Wait()
}

// Call runs the tool with no operation: `Path args... flags...`.
func (w *Wrapper) Call(ctx context.Context, args []any, kwargs Flags) (any, error) {
	return w.Run(ctx, "", args, kwargs)
}

func (w *Wrapper) run(ctx context.Context, op string, args []any, kwargs Flags) (any, error) {
	c, err := w.resolve(op)
	if err != nil {
		return nil, err
	}
	if err := c.ValidateArgs(args, kwargs); err != nil {
		return nil, err
	}
	argv, err := c.BuildArgs(args, kwargs)
	if err != nil {
		return nil, err
	}

	log := w.logger().With(zap.String("call_id", uuid.NewString()), zap.String("op", op))
	log.Debug("running command", zap.String("path", w.Path), zap.Strings("args", argv))

	req := cmdutil.Request{Path: w.Path, Args: argv}
	if len(w.Env) > 0 {
		req.Env = env.Merge(os.Environ(), w.Env)
	}
	res, err := w.runner().Run(ctx, req)
	if !cmdutil.Started(err) {
		return nil, fmt.Errorf("running %s: %w", w.Path, err)
	}
	if err != nil || res.ExitCode != 0 {
		log.Debug("command failed", zap.Int("exit_code", res.ExitCode), zap.ByteString("stderr", res.Stderr))
		ee := &ExitError{
			Op:       op,
			Argv:     append([]string{w.Path}, argv...),
			ExitCode: res.ExitCode,
			Stderr:   string(res.Stderr),
		}
		if w.RaiseExc {
			ee.Err = err
		}
		return nil, ee
	}
	log.Debug("command finished", zap.Int("stdout_bytes", len(res.Stdout)))
	return c.ParseOutput(string(res.Stdout))
}

// Op starts building a call to operation name:
//
//	w.Op("get").Arg("pods").Flag("namespace", "default").Run(ctx)
func (w *Wrapper) Op(name string) *Call {
	return &Call{w: w, op: name}
}

// Call accumulates the arguments of one invocation.
type Call struct {
	w      *Wrapper
	op     string
	args   []any
	kwargs Flags
}

// Arg appends positional arguments.
func (c *Call) Arg(vals ...any) *Call {
	c.args = append(c.args, vals...)
	return c
}

// Flag sets a named argument.
func (c *Call) Flag(name string, value any) *Call {
	c.kwargs = c.kwargs.With(name, value)
	return c
}

// Flags sets several named arguments.
func (c *Call) Flags(f Flags) *Call {
	for _, fl := range f {
		c.kwargs = c.kwargs.With(fl.Name, fl.Value)
	}
	return c
}

// Argv returns the tokens the call would run with, without running it.
func (c *Call) Argv() ([]string, error) {
	cmd, err := c.w.resolve(c.op)
	if err != nil {
		return nil, err
	}
	if err := cmd.ValidateArgs(c.args, c.kwargs); err != nil {
		return nil, err
	}
	argv, err := cmd.BuildArgs(c.args, c.kwargs)
	if err != nil {
		return nil, err
	}
	return append([]string{c.w.Path}, argv...), nil
}

// Start invokes the call. See Wrapper.Invoke.
func (c *Call) Start(ctx context.Context) *Pending {
	return c.w.Invoke(ctx, c.op, slices.Clone(c.args), slices.Clone(c.kwargs))
}

// Run invokes the call and waits for its result.
func (c *Call) Run(ctx context.Context) (any, error) {
	return c.Start(ctx).Wait()
}
