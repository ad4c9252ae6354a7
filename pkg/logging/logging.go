// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package logging builds the zap logger used by the cliwrap binaries.
package logging

import (
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	EnvLogLevel = "CLIWRAP_LOG_LEVEL"
	// EnvLogLevelFallback is read when EnvLogLevel is unset.
	EnvLogLevelFallback = "LOGLEVEL"
	EnvLogJSON          = "CLIWRAP_LOG_JSON"
)

type Profile int

const (
	ProfileRuntime Profile = iota
	ProfileTest
)

// Config is the resolved logging setup.
type Config struct {
	Level    zapcore.Level
	Disabled bool
	JSON     bool
}

// New returns a logger for profile with environment overrides applied.
// Logs go to stderr.
func New(profile Profile) (*zap.Logger, error) {
	return Load(profile).Build()
}

// Load returns the configuration for profile with environment overrides
// applied.
func Load(profile Profile) Config {
	cfg := defaultConfig(profile)
	applyEnvOverrides(&cfg, os.Getenv)
	return cfg
}

// Build returns the zap logger for c.
func (c Config) Build() (*zap.Logger, error) {
	if c.Disabled {
		return zap.NewNop(), nil
	}
	zc := zap.NewDevelopmentConfig()
	zc.DisableStacktrace = true
	zc.Development = false
	if c.JSON {
		zc.Encoding = "json"
		zc.EncoderConfig = zap.NewProductionEncoderConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(c.Level)
	zc.OutputPaths = []string{"stderr"}
	zc.ErrorOutputPaths = []string{"stderr"}
	return zc.Build()
}

func defaultConfig(profile Profile) Config {
	switch profile {
	case ProfileTest:
		return Config{Level: zapcore.DebugLevel}
	default:
		return Config{Level: zapcore.InfoLevel}
	}
}

func applyEnvOverrides(cfg *Config, getenv func(string) string) {
	raw := getenv(EnvLogLevel)
	if strings.TrimSpace(raw) == "" {
		raw = getenv(EnvLogLevelFallback)
	}
	switch lvl, ok := parseLevel(raw); {
	case !ok:
	case lvl == nil:
		cfg.Disabled = true
	default:
		cfg.Level = *lvl
		cfg.Disabled = false
	}
	if v, ok := parseBool(getenv(EnvLogJSON)); ok {
		cfg.JSON = v
	}
}

// parseLevel returns a nil level for "off".
func parseLevel(raw string) (*zapcore.Level, bool) {
	var l zapcore.Level
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "":
		return nil, false
	case "debug", "trace":
		l = zapcore.DebugLevel
	case "info":
		l = zapcore.InfoLevel
	case "warn", "warning":
		l = zapcore.WarnLevel
	case "error":
		l = zapcore.ErrorLevel
	case "disabled", "off", "none":
		return nil, true
	default:
		return nil, false
	}
	return &l, true
}

func parseBool(raw string) (bool, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return false, false
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, false
	}
	return v, true
}
