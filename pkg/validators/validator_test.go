// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package validators

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/yeetrun/cliwrap/pkg/callable"
	"github.com/yeetrun/cliwrap/pkg/chain"
)

func TestCoreValidators(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "f")
	if err := os.WriteFile(file, nil, 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		config any
		value  any
		want   bool
	}{
		{"is_dict", map[string]any{}, true},
		{"is_dict", []any{}, false},
		{"is_list", []any{1}, true},
		{"is_list", []string{}, true},
		{"is_list", "x", false},
		{"is_str", "x", true},
		{"is_str", 1, false},
		{"is_str_or_list", "x", true},
		{"is_str_or_list", []any{}, true},
		{"is_str_or_list", 1.5, false},
		{"is_int", 3, true},
		{"is_int", int64(3), true},
		{"is_int", true, false},
		{"is_int", 3.0, false},
		{"is_bool", false, true},
		{"is_bool", 0, false},
		{"is_float", 1.5, true},
		{"is_float", 1, false},
		{"is_alnum", "abc123", true},
		{"is_alnum", "abc-123", false},
		{"is_alnum", "", false},
		{"is_alpha", "abc", true},
		{"is_alpha", "ab1", false},
		{"is_digit", "0123", true},
		{"is_digit", "12a", false},
		{"is_digit", 12, false},
		{"is_path", "/tmp/x", true},
		{"is_path", "", false},
		{"is_path", "a\x00b", false},
		{"starts_alpha", "pod-1", true},
		{"starts_alpha", "1pod", false},
		{"starts_alpha", "", false},
		{map[string]any{"startswith": "pod"}, "pod-1", true},
		{map[string]any{"startswith": "pod"}, "svc-1", false},
		{map[string]any{"startswith": map[string]any{"prefix": "svc"}}, "svc-1", true},
		{map[string]any{"endswith": ".yaml"}, "a.yaml", true},
		{map[string]any{"matches": `^[a-z]+-\d+$`}, "pod-12", true},
		{map[string]any{"matches": `^[a-z]+-\d+$`}, "Pod", false},
		{"exists", file, true},
		{"exists", filepath.Join(dir, "missing"), false},
		{"semver", "1.2.3", true},
		{"semver", "latest", false},
		{map[string]any{"semver_constraint": ">= 1.2"}, "1.3.0", true},
		{map[string]any{"semver_constraint": ">= 1.2"}, "1.1.0", false},
		{"digest", "sha256:e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855", true},
		{"digest", "sha256:abc", false},
		{"not_empty", "", false},
		{"not_empty", []any{1}, true},
		{map[string]any{"one_of": []any{"json", "yaml"}}, "yaml", true},
		{map[string]any{"one_of": []any{"json", "yaml"}}, "xml", false},
	}
	for _, tt := range tests {
		v, err := New(tt.config, nil)
		if err != nil {
			t.Fatalf("New(%v): %v", tt.config, err)
		}
		got, err := v.Validate(tt.value)
		if err != nil {
			t.Fatalf("%v.Validate(%v): %v", tt.config, tt.value, err)
		}
		if got.Valid != tt.want {
			t.Errorf("%v.Validate(%#v) = %+v, want valid=%v", tt.config, tt.value, got, tt.want)
		}
	}
}

func TestValidateShortCircuits(t *testing.T) {
	called := false
	cfg := []any{
		func(any) bool { return false },
		func(any) (any, error) {
			called = true
			panic("second validator must not run")
		},
	}
	v, err := New(cfg, nil)
	if err != nil {
		t.Fatal(err)
	}
	got, err := v.Validate("anything")
	if err != nil {
		t.Fatal(err)
	}
	if got.Valid {
		t.Fatal("Validate reported valid after a failing step")
	}
	if called {
		t.Fatal("second validator ran")
	}
}

func TestValidateReason(t *testing.T) {
	cfg := []any{
		"is_str",
		chain.Inline{Name: "explain", Func: func(args []any, _ map[string]any) (any, error) {
			return "too short", nil
		}},
		"is_int",
	}
	v, err := New(cfg, nil)
	if err != nil {
		t.Fatal(err)
	}
	got, err := v.Validate("x")
	if err != nil {
		t.Fatal(err)
	}
	if got.Valid || got.Reason != "too short" {
		t.Fatalf("Validate = %+v, want invalid with reason", got)
	}
}

func TestValidateEmptyAndNil(t *testing.T) {
	v, err := New(nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if got, _ := v.Validate(nil); !got.Valid {
		t.Fatal("empty validator rejected a value")
	}
	var nilV *Validator
	if got, _ := nilV.Validate(1); !got.Valid {
		t.Fatal("nil validator rejected a value")
	}
}

func TestValidateStepError(t *testing.T) {
	boom := errors.New("boom")
	v, err := New(chain.Inline{Func: func([]any, map[string]any) (any, error) { return nil, boom }}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := v.Validate(1); !errors.Is(err, boom) {
		t.Fatalf("Validate error = %v, want %v", err, boom)
	}
}

func TestKeywordOnlyCallNeedsValue(t *testing.T) {
	tests := []struct {
		name   string
		kwargs map[string]any
	}{
		{"startswith", map[string]any{"prefix": "pod"}},
		{"endswith", map[string]any{"suffix": ".yaml"}},
		{"matches", map[string]any{"pattern": "^a"}},
		{"semver_constraint", map[string]any{"constraint": ">= 1.0"}},
		{"one_of", map[string]any{"choices": []any{"a"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fn, err := Default.Get(tt.name, nil, tt.kwargs)
			if err != nil {
				t.Fatalf("Get: %v", err)
			}
			if _, err := fn(); !errors.Is(err, callable.ErrArity) {
				t.Fatalf("call without a value = %v, want ErrArity", err)
			}
		})
	}
}

func TestNewUnknownValidator(t *testing.T) {
	if _, err := New("is_nonsense", nil); !errors.Is(err, callable.ErrNotFound) {
		t.Fatalf("New(is_nonsense) = %v, want ErrNotFound", err)
	}
}

func TestCustomRegistry(t *testing.T) {
	reg := NewRegistry()
	err := reg.RegisterGroup("k8s", map[string]callable.Func{
		"namespace": callable.Predicate(func(v any) bool {
			s, _ := v.(string)
			return s == "default" || s == "kube-system"
		}),
	})
	if err != nil {
		t.Fatal(err)
	}
	v, err := New([]any{"is_str", "k8s.namespace"}, reg)
	if err != nil {
		t.Fatal(err)
	}
	if got, _ := v.Validate("default"); !got.Valid {
		t.Error("k8s.namespace rejected default")
	}
	if got, _ := v.Validate("prod"); got.Valid {
		t.Error("k8s.namespace accepted prod")
	}
	if Default.Has("k8s.namespace") {
		t.Error("custom group leaked into Default")
	}
}

func TestTruthy(t *testing.T) {
	tests := []struct {
		in   any
		want bool
	}{
		{nil, false},
		{false, false},
		{true, true},
		{0, false},
		{1, true},
		{0.0, false},
		{"", false},
		{"x", true},
		{[]any{}, false},
		{map[string]any{"a": 1}, true},
		{struct{}{}, true},
	}
	for _, tt := range tests {
		if got := Truthy(tt.in); got != tt.want {
			t.Errorf("Truthy(%#v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
