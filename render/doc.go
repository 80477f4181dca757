// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package render drives a plan frame by frame against a backend device.
//
// A Renderer owns the device, the render target pool, the shared metadata
// table and the settings registry, and implements plan.Renderer so plan
// components reach all of them through it.
//
// # Devices
//
// The device is chosen at construction:
//
//   - WithDevice: an already opened backend.Device (not closed by the renderer)
//   - WithDeviceHandle: the GPU device of a host application such as gogpu.App
//   - WithBackend: a registered backend by name ("software", "native")
//   - otherwise the best registered backend, see backend.Default
//
// When a host handle is given the renderer RECEIVES the device and does NOT
// create its own. NullDeviceHandle selects the software device.
//
// # Frames
//
// Render executes the plan once per View. Before each execution the
// renderer publishes the view resolution, viewport, name and camera, the
// frame counter and the time since the previous frame in the metadata
// table (see the meta.Key constants). The plan output is then composited
// into the view's viewport on the screen and released.
//
//	r, err := render.New(render.WithBackend("software"), render.WithScreen(640, 480))
//	if err != nil {
//	    return err
//	}
//	defer r.Close()
//
//	p, err := plan.New(passes.NewClear("background"))
//	if err != nil {
//	    return err
//	}
//	if err := r.SetPlan(p); err != nil {
//	    return err
//	}
//	if err := r.Render(); err != nil {
//	    return err
//	}
//	img, err := r.Snapshot()
package render
