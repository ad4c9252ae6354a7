// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package callable implements a registry of named callables organized into
// groups.
//
// Names are either bare ("is_str") or qualified with their group
// ("core.is_str"). Bare names are searched across groups in the order the
// groups were registered. Every registry starts with a "core" group.
//
// Lookups return a Bound callable with extra positional and keyword
// arguments already applied, so a configuration entry such as
// {"startswith": "v"} resolves to a one-argument check.
package callable
