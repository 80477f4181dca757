// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package passes provides small reference components for render plans.
//
//   - Clear: clears a viewport-sized target to a configurable colour
//   - Copy: copies one published target into a new primary output
//   - Restore: rebinds an earlier depth-carrying target, no output
//   - Image: uploads a decoded image into a primary output
//
// Every pass unbinds its render targets before Draw returns.
package passes
