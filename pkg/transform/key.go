// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package transform

import (
	"strconv"
)

// Key identifies an argument: either a position in the call or a flag
// name. The zero Key is position 0.
type Key struct {
	pos   int
	name  string
	named bool
}

// Pos returns the key for the i'th positional argument.
func Pos(i int) Key { return Key{pos: i} }

// Named returns the key for a named argument.
func Named(name string) Key { return Key{name: name, named: true} }

// ParseKey is the inverse of Key.String: strings of decimal digits are
// positions, anything else is a name.
func ParseKey(s string) Key {
	if s != "" && isDigits(s) {
		if i, err := strconv.Atoi(s); err == nil {
			return Pos(i)
		}
	}
	return Named(s)
}

func (k Key) IsNamed() bool { return k.named }
func (k Key) Name() string  { return k.name }
func (k Key) Index() int    { return k.pos }

func (k Key) String() string {
	if k.named {
		return k.name
	}
	return strconv.Itoa(k.pos)
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
