// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"time"

	"github.com/gogpu/frameplan"
	"github.com/gogpu/frameplan/backend"
	"github.com/gogpu/frameplan/meta"
	"github.com/gogpu/frameplan/plan"
	"github.com/gogpu/frameplan/settings"
	"github.com/gogpu/frameplan/target"
)

var (
	// ErrNoPlan is returned by Render before a plan is set.
	ErrNoPlan = errors.New("render: no plan set")

	// ErrClosed is returned when using a Renderer after Close.
	ErrClosed = errors.New("render: renderer closed")
)

// Renderer drives a plan frame by frame.
//
// It owns the device (unless it was injected with WithDevice), the target
// pool, the metadata table, the settings registry and a screen surface
// the plan output is composited into. Renderer implements plan.Renderer.
//
// Thread Safety: Renderer is NOT thread-safe. Use it from one goroutine.
type Renderer struct {
	device     backend.Device
	ownsDevice bool
	pool       *target.Pool
	table      *meta.Table
	registry   *settings.Registry
	screen     *target.Handle
	plan       *plan.Plan
	clock      func() time.Time

	last     time.Time
	frame    uint64
	warnedNB bool
	closed   bool
}

// Ensure Renderer implements plan.Renderer.
var _ plan.Renderer = (*Renderer)(nil)

// New creates a renderer.
//
// The device is chosen in this order: WithDevice, WithDeviceHandle,
// WithBackend, then the best registered backend.
func New(opts ...Option) (*Renderer, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	dev, owns, err := openDevice(&o)
	if err != nil {
		return nil, err
	}

	screenDesc := target.Descriptor{
		Width:  o.width,
		Height: o.height,
		Format: o.screenFormat,
		Usage:  target.UsagePlatformContents,
	}
	s, err := dev.CreateSurface(screenDesc, "screen")
	if err != nil {
		if owns {
			dev.Close()
		}
		return nil, fmt.Errorf("render: create screen: %w", err)
	}

	pool := o.pool
	if pool == nil {
		pool = target.NewPool()
	}

	r := &Renderer{
		device:     dev,
		ownsDevice: owns,
		pool:       pool,
		table:      meta.NewTable(),
		registry:   settings.NewRegistry(),
		screen:     target.NewHandle(s),
		clock:      o.clock,
	}
	r.last = r.clock()
	meta.Set(r.table, meta.KeyResolution, image.Pt(int(o.width), int(o.height)))

	frameplan.Logger().Info("render: renderer created",
		"backend", dev.Name(), "width", o.width, "height", o.height)
	return r, nil
}

func openDevice(o *options) (backend.Device, bool, error) {
	switch {
	case o.device != nil:
		return o.device, false, nil
	case o.handle != nil:
		d, err := deviceFromHandle(o.handle)
		if err != nil {
			return nil, false, fmt.Errorf("render: device from handle: %w", err)
		}
		return d, true, nil
	case o.backendName != "":
		d, err := backend.Open(o.backendName)
		if err != nil {
			return nil, false, err
		}
		return d, true, nil
	default:
		d, err := backend.Default()
		if err != nil {
			return nil, false, err
		}
		return d, true, nil
	}
}

// Device returns the device targets are allocated from.
func (r *Renderer) Device() backend.Device { return r.device }

// Pool returns the render target pool.
func (r *Renderer) Pool() *target.Pool { return r.pool }

// Metadata returns the shared metadata table.
func (r *Renderer) Metadata() *meta.Table { return r.table }

// Settings returns the settings registry.
func (r *Renderer) Settings() *settings.Registry { return r.registry }

// Screen returns the screen target.
func (r *Renderer) Screen() *target.Handle { return r.screen }

// Plan returns the current plan, or nil.
func (r *Renderer) Plan() *plan.Plan { return r.plan }

// Frame returns the number of frames rendered.
func (r *Renderer) Frame() uint64 { return r.frame }

// SetRenderTargets binds handles on the device and records the binding in
// the pool. Calling it with no handles unbinds everything.
func (r *Renderer) SetRenderTargets(handles ...*target.Handle) error {
	surfaces := make([]target.Surface, len(handles))
	for i, h := range handles {
		if h == nil {
			return target.ErrNilHandle
		}
		surfaces[i] = h.Surface()
	}
	if err := r.device.SetRenderTargets(surfaces...); err != nil {
		return err
	}
	r.pool.Bind(handles...)
	return nil
}

// SetPlan replaces the plan executed by Render.
func (r *Renderer) SetPlan(p *plan.Plan) error {
	if p == nil {
		return ErrNoPlan
	}
	r.plan = p
	frameplan.Logger().Info("render: plan set", "components", p.Len(), "resources", len(p.Resources()))
	return nil
}

// ApplySettings initialises the plan so its components register their
// settings, then applies values by setting name.
func (r *Renderer) ApplySettings(values map[string]json.RawMessage) error {
	if r.plan == nil {
		return ErrNoPlan
	}
	if err := r.plan.Initialise(r); err != nil {
		return err
	}
	if err := r.registry.Apply(values); err != nil {
		return fmt.Errorf("render: apply settings: %w", err)
	}
	return nil
}

// Render executes the plan once per view and composites each output into
// the view's viewport on the screen. With no views the whole screen is
// rendered once.
func (r *Renderer) Render(views ...View) error {
	if r.closed {
		return ErrClosed
	}
	if r.plan == nil {
		return ErrNoPlan
	}
	if len(views) == 0 {
		views = []View{{Name: "main", Camera: DefaultCamera()}}
	}

	r.frame++
	now := r.clock()
	elapsed := now.Sub(r.last)
	r.last = now
	bounds := r.screenBounds()

	for _, v := range views {
		vp := v.Viewport
		if vp.Empty() {
			vp = bounds
		}
		r.publish(v, vp, elapsed)

		out, err := r.plan.Execute(r)
		if err != nil {
			return fmt.Errorf("render: view %q: %w", v.Name, err)
		}
		if err := r.SetRenderTargets(); err != nil {
			return err
		}
		if err := r.composite(out, vp); err != nil {
			return fmt.Errorf("render: view %q: %w", v.Name, err)
		}
		if err := out.Release(r); err != nil {
			return fmt.Errorf("render: view %q: release output: %w", v.Name, err)
		}
	}
	return nil
}

func (r *Renderer) publish(v View, vp image.Rectangle, elapsed time.Duration) {
	meta.Set(r.table, meta.KeyResolution, vp.Size())
	meta.Set(r.table, meta.KeyViewport, vp)
	meta.Set(r.table, meta.KeyViewName, v.Name)
	meta.Set(r.table, meta.KeyCamera, v.Camera)
	meta.Set(r.table, meta.KeyFrame, r.frame)
	meta.Set(r.table, meta.KeyElapsed, elapsed)
}

func (r *Renderer) composite(out *plan.Output, vp image.Rectangle) error {
	if out == nil || out.Handle == nil {
		return nil
	}
	if !out.Handle.Descriptor().HasColor() {
		frameplan.Logger().Debug("render: output has no colour plane", "resource", out.Resource())
		return nil
	}
	b, ok := r.device.(backend.Blitter)
	if !ok {
		if !r.warnedNB {
			r.warnedNB = true
			frameplan.Logger().Warn("render: device cannot composite", "backend", r.device.Name())
		}
		return nil
	}
	return b.Blit(r.screen.Surface(), vp, out.Handle.Surface())
}

func (r *Renderer) screenBounds() image.Rectangle {
	d := r.screen.Descriptor()
	return image.Rect(0, 0, int(d.Width), int(d.Height))
}

// Snapshot reads the screen back into a CPU image.
func (r *Renderer) Snapshot() (*image.RGBA, error) {
	if r.closed {
		return nil, ErrClosed
	}
	rd, ok := r.device.(backend.Reader)
	if !ok {
		return nil, fmt.Errorf("render: snapshot on %s: %w", r.device.Name(), backend.ErrUnsupported)
	}
	return rd.ReadPixels(r.screen.Surface())
}

// Close destroys the pooled targets and the screen, and closes the device
// if the renderer opened it. Calling Close more than once is safe.
func (r *Renderer) Close() {
	if r.closed {
		return
	}
	r.closed = true
	if active := r.pool.Active(); len(active) > 0 {
		frameplan.Logger().Warn("render: closing with acquired targets", "targets", active)
	}
	n := r.pool.Drain()
	r.screen.Surface().Destroy()
	if r.ownsDevice {
		r.device.Close()
	}
	frameplan.Logger().Debug("render: renderer closed", "drained", n, "frames", r.frame)
}
