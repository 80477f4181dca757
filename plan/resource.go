// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package plan

import (
	"fmt"
	"image"

	"github.com/gogpu/frameplan"
	"github.com/gogpu/frameplan/meta"
	"github.com/gogpu/frameplan/target"
)

// Input is a named resource a component reads.
type Input struct {
	Name string

	// Optional inputs may be absent from the chain.
	Optional bool
}

// Resource is a named resource a component produces.
type Resource struct {
	Name string

	// IsActive marks the component's primary output, the one Draw returns.
	IsActive bool

	// Finalizer runs at the resource's free point. The zero value returns
	// the resource's handle to the pool.
	Finalizer Finalizer
}

// Declaration is what a component returns from SpecifyResources.
type Declaration struct {
	Inputs  []Input
	Outputs []Resource

	// Shape is the output shape the component produces, or nil to inherit
	// the previous component's shape.
	Shape *target.Descriptor
}

// primary returns the output flagged IsActive, or nil.
func (d *Declaration) primary() *Resource {
	for i := range d.Outputs {
		if d.Outputs[i].IsActive {
			return &d.Outputs[i]
		}
	}
	return nil
}

// clone copies the slices and shape so later changes by the component are
// not observed by the plan.
func (d Declaration) clone() Declaration {
	out := Declaration{
		Inputs:  append([]Input(nil), d.Inputs...),
		Outputs: append([]Resource(nil), d.Outputs...),
	}
	if d.Shape != nil {
		shape := *d.Shape
		out.Shape = &shape
	}
	return out
}

// Finalizer is the release action of a resource: either the default
// return-to-pool action or a custom function.
type Finalizer struct {
	custom func(r Renderer, name string) error
}

// CustomFinalizer returns a Finalizer that calls fn instead of returning
// the handle to the pool, for example to keep it for double buffering.
func CustomFinalizer(fn func(r Renderer, name string) error) Finalizer {
	return Finalizer{custom: fn}
}

// IsDefault reports whether f is the return-to-pool action.
func (f Finalizer) IsDefault() bool {
	return f.custom == nil
}

// Finalize runs the action for the resource called name.
func (f Finalizer) Finalize(r Renderer, name string) error {
	if f.custom != nil {
		return f.custom(r, name)
	}
	return ReturnToPool(r, name)
}

// ReturnToPool releases the handle published under name in the metadata
// table and clears the entry. It does nothing if no handle is published.
func ReturnToPool(r Renderer, name string) error {
	box, ok := meta.Lookup[*target.Handle](r.Metadata(), name)
	if !ok || box.Value == nil {
		frameplan.Logger().Debug("plan: nothing to release", "resource", name)
		return nil
	}
	h := box.Value
	if err := r.Pool().Release(h); err != nil {
		return fmt.Errorf("plan: release %q: %w", name, err)
	}
	box.Value = nil
	frameplan.Logger().Debug("plan: released", "resource", name, "handle", h.String())
	return nil
}

// AcquireOutput acquires a target for the resource called name, resolving
// a zero width or height against meta.KeyResolution, and publishes it in
// the metadata table under name. It fails with ErrNotTarget if name
// already holds a value of another type.
func AcquireOutput(r Renderer, name string, desc target.Descriptor) (*target.Handle, error) {
	if res, ok := meta.Lookup[image.Point](r.Metadata(), meta.KeyResolution); ok {
		desc = desc.Resolve(uint32(max(res.Value.X, 0)), uint32(max(res.Value.Y, 0))) //nolint:gosec // clamped to non-negative
	}
	table := r.Metadata()
	if table.Has(name) {
		if _, ok := meta.Lookup[*target.Handle](table, name); !ok {
			return nil, fmt.Errorf("plan: acquire %q: %w", name, ErrNotTarget)
		}
	}
	h, err := r.Pool().Acquire(r.Device(), desc, name)
	if err != nil {
		return nil, fmt.Errorf("plan: acquire %q: %w", name, err)
	}
	meta.Set(table, name, h)
	return h, nil
}

// LookupTarget returns the handle currently published under name.
func LookupTarget(r Renderer, name string) (*target.Handle, bool) {
	box, ok := meta.Lookup[*target.Handle](r.Metadata(), name)
	if !ok || box.Value == nil {
		return nil, false
	}
	return box.Value, true
}
