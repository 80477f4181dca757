// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package software provides a CPU implementation of backend.Device.
//
// Colour planes are *image.RGBA regardless of the requested colour format;
// the format is carried in the descriptor only. Depth planes are []float32
// cleared to 1.0. Blit and Upload scale with golang.org/x/image/draw.
//
// Importing the package registers it under backend.BackendSoftware.
package software

import (
	"fmt"
	"image"
	"image/color"

	"github.com/gogpu/gputypes"
	"golang.org/x/image/draw"

	"github.com/gogpu/frameplan"
	"github.com/gogpu/frameplan/backend"
	"github.com/gogpu/frameplan/target"
)

// init registers the software backend on package import.
func init() {
	backend.Register(backend.BackendSoftware, func() (backend.Device, error) {
		return New(), nil
	})
}

// Option configures a Device.
type Option func(*Device)

// WithDefaultFormat sets the colour format given to descriptors that
// request neither a colour nor a depth plane.
func WithDefaultFormat(f gputypes.TextureFormat) Option {
	return func(d *Device) {
		if f != gputypes.TextureFormatUndefined {
			d.defaultFormat = f
		}
	}
}

// WithScaler sets the interpolator used by Blit and Upload.
// The default is draw.BiLinear.
func WithScaler(s draw.Scaler) Option {
	return func(d *Device) {
		if s != nil {
			d.scaler = s
		}
	}
}

// Device is a CPU rendering device.
//
// Device is NOT safe for concurrent use.
type Device struct {
	defaultFormat gputypes.TextureFormat
	scaler        draw.Scaler

	bound  []*Surface
	live   int
	closed bool
}

var (
	_ backend.Device   = (*Device)(nil)
	_ backend.Blitter  = (*Device)(nil)
	_ backend.Uploader = (*Device)(nil)
	_ backend.Reader   = (*Device)(nil)
)

// New creates a software device.
func New(opts ...Option) *Device {
	d := &Device{
		defaultFormat: gputypes.TextureFormatRGBA8Unorm,
		scaler:        draw.BiLinear,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Name returns backend.BackendSoftware.
func (d *Device) Name() string {
	return backend.BackendSoftware
}

// Live returns the number of surfaces allocated and not yet destroyed.
func (d *Device) Live() int {
	return d.live
}

// CreateSurface allocates image planes for desc.
//
// A descriptor with neither plane gets the default colour format and a
// zero sample count becomes 1; the returned surface reports the resolved
// descriptor.
func (d *Device) CreateSurface(desc target.Descriptor, label string) (target.Surface, error) {
	if d.closed {
		return nil, backend.ErrClosed
	}
	if !desc.Resolved() {
		return nil, fmt.Errorf("software: create %q: %w", label, target.ErrUnresolved)
	}
	if !desc.HasColor() && !desc.HasDepth() {
		desc.Format = d.defaultFormat
	}
	if desc.SampleCount == 0 {
		desc.SampleCount = 1
	}

	s := &Surface{desc: desc, label: label, owner: d}
	w, h := int(desc.Width), int(desc.Height)
	if desc.HasColor() {
		s.color = image.NewRGBA(image.Rect(0, 0, w, h))
	}
	if desc.HasDepth() {
		s.depth = make([]float32, w*h)
		for i := range s.depth {
			s.depth[i] = 1
		}
	}
	d.live++

	frameplan.Logger().Debug("software: surface created", "label", label, "desc", desc.String())
	return s, nil
}

// SetRenderTargets binds surfaces as render destinations.
func (d *Device) SetRenderTargets(surfaces ...target.Surface) error {
	if d.closed {
		return backend.ErrClosed
	}
	bound := make([]*Surface, 0, len(surfaces))
	depth := 0
	for _, s := range surfaces {
		ss, err := d.own(s)
		if err != nil {
			return err
		}
		if ss.depth != nil {
			depth++
		}
		bound = append(bound, ss)
	}
	if depth > 1 {
		return fmt.Errorf("software: %d depth planes bound, at most one allowed", depth)
	}
	d.bound = bound
	return nil
}

// Bound returns the currently bound surfaces.
func (d *Device) Bound() []*Surface {
	return d.bound
}

// Clear fills bound colour planes with c and bound depth planes with 1.0.
func (d *Device) Clear(c gputypes.Color) error {
	if d.closed {
		return backend.ErrClosed
	}
	if len(d.bound) == 0 {
		return backend.ErrNoRenderTarget
	}
	fill := image.NewUniform(toNRGBA(c))
	for _, s := range d.bound {
		if s.color != nil {
			draw.Draw(s.color, s.color.Bounds(), fill, image.Point{}, draw.Src)
		}
		for i := range s.depth {
			s.depth[i] = 1
		}
	}
	return nil
}

// Blit scales the colour plane of src into dstRect of dst.
func (d *Device) Blit(dst target.Surface, dstRect image.Rectangle, src target.Surface) error {
	ds, err := d.colorOf(dst)
	if err != nil {
		return err
	}
	ss, err := d.colorOf(src)
	if err != nil {
		return err
	}
	d.scaler.Scale(ds.color, dstRect, ss.color, ss.color.Bounds(), draw.Src, nil)
	return nil
}

// Upload scales img over the whole colour plane of dst.
func (d *Device) Upload(dst target.Surface, img image.Image) error {
	ds, err := d.colorOf(dst)
	if err != nil {
		return err
	}
	if img == nil {
		return fmt.Errorf("software: upload: nil image")
	}
	d.scaler.Scale(ds.color, ds.color.Bounds(), img, img.Bounds(), draw.Src, nil)
	return nil
}

// ReadPixels returns a copy of the colour plane of s.
func (d *Device) ReadPixels(s target.Surface) (*image.RGBA, error) {
	ss, err := d.colorOf(s)
	if err != nil {
		return nil, err
	}
	out := image.NewRGBA(ss.color.Bounds())
	copy(out.Pix, ss.color.Pix)
	return out, nil
}

// Close unbinds everything. Surfaces stay readable until destroyed.
func (d *Device) Close() {
	d.bound = nil
	d.closed = true
}

func (d *Device) own(s target.Surface) (*Surface, error) {
	ss, ok := s.(*Surface)
	if !ok || ss.owner != d {
		return nil, backend.ErrForeignSurface
	}
	if ss.destroyed {
		return nil, fmt.Errorf("software: surface %q destroyed", ss.label)
	}
	return ss, nil
}

func (d *Device) colorOf(s target.Surface) (*Surface, error) {
	if d.closed {
		return nil, backend.ErrClosed
	}
	ss, err := d.own(s)
	if err != nil {
		return nil, err
	}
	if ss.color == nil {
		return nil, fmt.Errorf("software: surface %q has no colour plane", ss.label)
	}
	return ss, nil
}

func toNRGBA(c gputypes.Color) color.NRGBA {
	return color.NRGBA{
		R: unorm8(float64(c.R)),
		G: unorm8(float64(c.G)),
		B: unorm8(float64(c.B)),
		A: unorm8(float64(c.A)),
	}
}

func unorm8(v float64) uint8 {
	switch {
	case v <= 0:
		return 0
	case v >= 1:
		return 255
	default:
		return uint8(v*255 + 0.5)
	}
}
