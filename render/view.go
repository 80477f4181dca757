// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import "image"

// Camera is the per-view camera published under meta.KeyCamera.
type Camera struct {
	Eye    [3]float32
	Center [3]float32
	Up     [3]float32

	// FovY is the vertical field of view in radians.
	FovY float32

	Near float32
	Far  float32
}

// DefaultCamera looks down -Z from (0, 0, 1) with a 60 degree field of view.
func DefaultCamera() Camera {
	return Camera{
		Eye:  [3]float32{0, 0, 1},
		Up:   [3]float32{0, 1, 0},
		FovY: 1.0471976,
		Near: 0.1,
		Far:  100,
	}
}

// View is one execution of the plan: a named viewport into the screen
// with its camera.
type View struct {
	Name string

	// Viewport is the screen rectangle the plan output is composited into.
	// An empty viewport means the whole screen.
	Viewport image.Rectangle

	Camera Camera
}
