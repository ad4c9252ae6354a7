// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package tui draws transient progress on a terminal.
package tui

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/fatih/color"
)

var DefaultFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// Spinner redraws a single status line until stopped. All methods are safe
// for concurrent use.
type Spinner struct {
	out      io.Writer
	frames   []string
	interval time.Duration
	color    *color.Color

	mu      sync.Mutex // guards the fields below and writes to out
	msg     string
	idx     int
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

type SpinnerOption func(*Spinner)

func WithFrames(frames []string) SpinnerOption {
	return func(s *Spinner) {
		if len(frames) > 0 {
			s.frames = frames
		}
	}
}

func WithInterval(d time.Duration) SpinnerOption {
	return func(s *Spinner) {
		if d > 0 {
			s.interval = d
		}
	}
}

// WithColor paints the frame glyph.
func WithColor(c *color.Color) SpinnerOption {
	return func(s *Spinner) { s.color = c }
}

func NewSpinner(out io.Writer, opts ...SpinnerOption) *Spinner {
	s := &Spinner{
		out:      out,
		frames:   DefaultFrames,
		interval: 120 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start draws msg and begins animating. Starting a running spinner only
// replaces the message.
func (s *Spinner) Start(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.msg = msg
	if s.running {
		s.renderLocked()
		return
	}
	s.running = true
	s.stopCh = make(chan struct{})
	s.doneCh = make(chan struct{})
	s.renderLocked()
	go s.loop(s.stopCh, s.doneCh)
}

// Update replaces the message. It does nothing if the spinner is stopped.
func (s *Spinner) Update(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return
	}
	s.msg = msg
	s.renderLocked()
}

// Stop halts the animation and erases the line.
func (s *Spinner) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	stopCh, doneCh := s.stopCh, s.doneCh
	s.mu.Unlock()

	close(stopCh)
	<-doneCh

	s.mu.Lock()
	fmt.Fprint(s.out, "\r\033[K")
	s.mu.Unlock()
}

func (s *Spinner) loop(stopCh <-chan struct{}, doneCh chan<- struct{}) {
	defer close(doneCh)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.mu.Lock()
			if s.running {
				s.idx = (s.idx + 1) % len(s.frames)
				s.renderLocked()
			}
			s.mu.Unlock()
		case <-stopCh:
			return
		}
	}
}

func (s *Spinner) renderLocked() {
	frame := s.frames[s.idx%len(s.frames)]
	if s.color != nil {
		frame = s.color.Sprint(frame)
	}
	line := frame
	if s.msg != "" {
		line += " " + s.msg
	}
	fmt.Fprintf(s.out, "\r\033[K%s", line)
}
