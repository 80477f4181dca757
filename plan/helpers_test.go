// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package plan

import (
	"image"
	"testing"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/frameplan/backend"
	"github.com/gogpu/frameplan/backend/software"
	"github.com/gogpu/frameplan/meta"
	"github.com/gogpu/frameplan/settings"
	"github.com/gogpu/frameplan/target"
)

// testRenderer is a minimal Renderer over the software device.
type testRenderer struct {
	dev      *software.Device
	pool     *target.Pool
	table    *meta.Table
	registry *settings.Registry
	events   []string
}

func newTestRenderer(t *testing.T) *testRenderer {
	t.Helper()
	r := &testRenderer{
		dev:      software.New(),
		pool:     target.NewPool(),
		table:    meta.NewTable(),
		registry: settings.NewRegistry(),
	}
	meta.Set(r.table, meta.KeyResolution, image.Pt(16, 8))
	t.Cleanup(r.dev.Close)
	return r
}

func (r *testRenderer) Device() backend.Device { return r.dev }

func (r *testRenderer) Pool() *target.Pool { return r.pool }

func (r *testRenderer) Metadata() *meta.Table { return r.table }

func (r *testRenderer) Settings() *settings.Registry { return r.registry }

func (r *testRenderer) SetRenderTargets(handles ...*target.Handle) error {
	surfaces := make([]target.Surface, len(handles))
	for i, h := range handles {
		surfaces[i] = h.Surface()
	}
	if err := r.dev.SetRenderTargets(surfaces...); err != nil {
		return err
	}
	r.pool.Bind(handles...)
	return nil
}

func (r *testRenderer) record(event string) {
	r.events = append(r.events, event)
}

var colorTarget = target.Descriptor{Format: gputypes.TextureFormatRGBA8Unorm}

// probe is a configurable component that logs what happens to it.
type probe struct {
	Base
	label    string
	inputs   []Input
	outputs  []string
	primary  string
	shape    *target.Descriptor
	validate func(*target.Descriptor) bool
	initErr  error
	drawErr  error

	inits   int
	handles map[string]*target.Handle
}

func (p *probe) SpecifyResources() Declaration {
	d := Declaration{Inputs: p.inputs, Shape: p.shape}
	for _, name := range p.outputs {
		d.Outputs = append(d.Outputs, Resource{
			Name:      name,
			IsActive:  name == p.primary,
			Finalizer: CustomFinalizer(loggingFinalizer),
		})
	}
	return d
}

func (p *probe) ValidateInput(prev *target.Descriptor) bool {
	if p.validate != nil {
		return p.validate(prev)
	}
	return true
}

func (p *probe) Initialise(Renderer) error {
	p.inits++
	return p.initErr
}

func (p *probe) Draw(r Renderer) (*target.Handle, error) {
	r.(*testRenderer).record("draw:" + p.label)
	if p.drawErr != nil {
		return nil, p.drawErr
	}
	if p.handles == nil {
		p.handles = make(map[string]*target.Handle)
	}
	var primary *target.Handle
	for _, name := range p.outputs {
		h, err := AcquireOutput(r, name, colorTarget)
		if err != nil {
			return nil, err
		}
		p.handles[name] = h
		if name == p.primary {
			primary = h
		}
	}
	return primary, nil
}

// loggingFinalizer records the release and returns the target to the pool.
func loggingFinalizer(r Renderer, name string) error {
	r.(*testRenderer).record("free:" + name)
	return ReturnToPool(r, name)
}

func mustPlan(t *testing.T, components ...Component) *Plan {
	t.Helper()
	p, err := New(components...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return p
}
