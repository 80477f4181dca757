// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package plan

import (
	"github.com/gogpu/frameplan/backend"
	"github.com/gogpu/frameplan/meta"
	"github.com/gogpu/frameplan/settings"
	"github.com/gogpu/frameplan/target"
)

// Renderer is the environment a plan executes in.
//
// It owns the device, the target pool, the shared metadata table and the
// settings registry. Components reach everything through it.
type Renderer interface {
	// Device returns the device targets are allocated from.
	Device() backend.Device

	// Pool returns the render target pool.
	Pool() *target.Pool

	// Metadata returns the shared metadata table.
	Metadata() *meta.Table

	// Settings returns the settings registry components register tunables in.
	Settings() *settings.Registry

	// SetRenderTargets binds handles as render destinations on the device
	// and records the binding in the pool.
	SetRenderTargets(handles ...*target.Handle) error
}

// Component is one pass in a plan.
//
// SpecifyResources is called once when the component is appended and must
// not touch the device. Initialise is called lazily before the first Draw.
// Draw returns the handle of the component's primary output, or nil if it
// has none.
type Component interface {
	// SpecifyResources declares the inputs, outputs and output shape.
	SpecifyResources() Declaration

	// ValidateInput reports whether the component can follow a component
	// whose declared output shape is prev. prev is nil for the first
	// component or when no earlier component declared a shape.
	ValidateInput(prev *target.Descriptor) bool

	// Initialise performs one-time setup such as registering settings.
	Initialise(r Renderer) error

	// Draw performs the pass. Targets bound with SetRenderTargets must be
	// unbound before Draw returns: a bound target cannot be released at
	// its free point.
	Draw(r Renderer) (*target.Handle, error)

	// Initialised reports whether Initialise has completed.
	Initialised() bool

	// MarkInitialised records that Initialise has completed.
	MarkInitialised()
}

// Base provides the bookkeeping part of Component. Embed it and implement
// SpecifyResources and Draw; override Initialise and ValidateInput as
// needed.
//
//	type Blur struct {
//		plan.Base
//	}
type Base struct {
	initialised bool
}

// Initialised reports whether Initialise has completed.
func (b *Base) Initialised() bool { return b.initialised }

// MarkInitialised records that Initialise has completed.
func (b *Base) MarkInitialised() { b.initialised = true }

// Initialise does nothing.
func (b *Base) Initialise(Renderer) error { return nil }

// ValidateInput accepts any previous shape.
func (b *Base) ValidateInput(*target.Descriptor) bool { return true }
