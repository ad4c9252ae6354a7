// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cmdutil

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"testing"
)

// helperCmd re-executes the test binary as the child process.
func helperCmd(ctx context.Context, name string, args ...string) *exec.Cmd {
	cs := []string{"-test.run=TestHelperProcess", "--", name}
	cs = append(cs, args...)
	cmd := exec.CommandContext(ctx, os.Args[0], cs...)
	cmd.Env = append(os.Environ(), "GO_WANT_HELPER_PROCESS=1")
	return cmd
}

func TestHelperProcess(t *testing.T) {
	if os.Getenv("GO_WANT_HELPER_PROCESS") != "1" {
		return
	}
	args := os.Args
	idx := -1
	for i, arg := range args {
		if arg == "--" {
			idx = i
			break
		}
	}
	if idx == -1 || idx+1 >= len(args) {
		os.Exit(0)
	}
	cmdArgs := args[idx+2:]
	fmt.Fprint(os.Stdout, strings.Join(cmdArgs, " "))
	if code := os.Getenv("HELPER_EXIT_CODE"); code != "" {
		fmt.Fprint(os.Stderr, "helper failed")
		n, _ := strconv.Atoi(code)
		os.Exit(n)
	}
	os.Exit(0)
}

func TestExecRunnerCapturesOutput(t *testing.T) {
	r := ExecRunner{NewCmd: helperCmd}
	res, err := r.Run(context.Background(), Request{Path: "kubectl", Args: []string{"get", "pods"}})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := string(res.Stdout); got != "get pods" {
		t.Fatalf("stdout = %q, want %q", got, "get pods")
	}
	if res.ExitCode != 0 {
		t.Fatalf("exit code = %d, want 0", res.ExitCode)
	}
}

func TestExecRunnerNonzeroExit(t *testing.T) {
	r := ExecRunner{NewCmd: helperCmd}
	env := append(os.Environ(), "GO_WANT_HELPER_PROCESS=1", "HELPER_EXIT_CODE=3")
	res, err := r.Run(context.Background(), Request{Path: "tool", Args: []string{"x"}, Env: env})
	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("Run error = %v, want *exec.ExitError", err)
	}
	if res.ExitCode != 3 {
		t.Fatalf("exit code = %d, want 3", res.ExitCode)
	}
	if string(res.Stderr) != "helper failed" {
		t.Fatalf("stderr = %q", res.Stderr)
	}
	if !Started(err) {
		t.Fatal("Started(exit error) = false")
	}
}

func TestExecRunnerMissingBinary(t *testing.T) {
	res, err := ExecRunner{}.Run(context.Background(), Request{Path: "/nonexistent/cliwrap-test-binary"})
	if err == nil {
		t.Fatal("Run succeeded for a missing binary")
	}
	if Started(err) {
		t.Fatalf("Started(%v) = true", err)
	}
	if res.ExitCode == 0 {
		t.Fatal("exit code 0 for a missing binary")
	}
}

func TestRunnerFunc(t *testing.T) {
	var got Request
	r := RunnerFunc(func(_ context.Context, req Request) (Result, error) {
		got = req
		return Result{Stdout: []byte("ok")}, nil
	})
	res, err := r.Run(context.Background(), Request{Path: "p", Args: []string{"a"}})
	if err != nil || string(res.Stdout) != "ok" || got.Path != "p" {
		t.Fatalf("RunnerFunc: res=%+v err=%v req=%+v", res, err, got)
	}
}
