// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"time"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/frameplan/backend"
	"github.com/gogpu/frameplan/target"
)

// Option configures a Renderer during creation.
//
// Example:
//
//	// Best available backend, 800x600 screen
//	r, err := render.New(render.WithScreen(800, 600))
//
//	// Host-provided device (dependency injection)
//	r, err := render.New(render.WithDeviceHandle(app.DeviceHandle()))
type Option func(*options)

// options holds optional configuration for Renderer creation.
type options struct {
	device       backend.Device
	handle       DeviceHandle
	backendName  string
	pool         *target.Pool
	width        uint32
	height       uint32
	screenFormat gputypes.TextureFormat
	clock        func() time.Time
}

// defaultOptions returns the default renderer options.
func defaultOptions() options {
	return options{
		width:  800,
		height: 600,
		clock:  time.Now,
	}
}

// WithDevice sets the device to render with. The caller keeps ownership:
// Close does not close it.
func WithDevice(d backend.Device) Option {
	return func(o *options) {
		o.device = d
	}
}

// WithDeviceHandle renders with the device of a host application.
// NullDeviceHandle selects the software device.
func WithDeviceHandle(h DeviceHandle) Option {
	return func(o *options) {
		o.handle = h
	}
}

// WithBackend opens the named registered backend instead of the best
// available one.
func WithBackend(name string) Option {
	return func(o *options) {
		o.backendName = name
	}
}

// WithPool shares a target pool between renderers on the same device.
func WithPool(p *target.Pool) Option {
	return func(o *options) {
		o.pool = p
	}
}

// WithScreen sets the screen size. Zero keeps the default of 800x600.
func WithScreen(width, height uint32) Option {
	return func(o *options) {
		if width > 0 {
			o.width = width
		}
		if height > 0 {
			o.height = height
		}
	}
}

// WithScreenFormat sets the screen colour format. Undefined leaves the
// choice to the device.
func WithScreenFormat(f gputypes.TextureFormat) Option {
	return func(o *options) {
		o.screenFormat = f
	}
}

// WithClock sets the time source used for meta.KeyElapsed.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.clock = now
		}
	}
}
