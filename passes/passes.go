// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package passes

import (
	"errors"
	"fmt"
	"image"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/frameplan"
	"github.com/gogpu/frameplan/backend"
	"github.com/gogpu/frameplan/plan"
	"github.com/gogpu/frameplan/settings"
	"github.com/gogpu/frameplan/target"
)

// ErrNotPublished is returned when an input has no target in the
// metadata table at draw time.
var ErrNotPublished = errors.New("passes: input not published")

var colorTarget = target.Descriptor{Format: gputypes.TextureFormatRGBA8Unorm}

func lookup(r plan.Renderer, name string) (*target.Handle, error) {
	h, ok := plan.LookupTarget(r, name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotPublished, name)
	}
	return h, nil
}

// Clear clears a target to a colour and publishes it as its primary
// output. The colour is registered as the setting "<output>.color"
// holding [r, g, b, a].
type Clear struct {
	plan.Base

	// Output is the published resource name.
	Output string

	// Target is the shape of the cleared target. Zero dimensions match
	// the viewport.
	Target target.Descriptor

	// Color is the default clear colour.
	Color gputypes.Color

	color *settings.Setting[[4]float64]
}

// NewClear returns a pass clearing a viewport-sized RGBA8 target to
// opaque black.
func NewClear(output string) *Clear {
	return &Clear{
		Output: output,
		Target: colorTarget,
		Color:  gputypes.Color{A: 1},
	}
}

// SpecifyResources declares Output as the primary output.
func (c *Clear) SpecifyResources() plan.Declaration {
	shape := c.Target
	return plan.Declaration{
		Outputs: []plan.Resource{{Name: c.Output, IsActive: true}},
		Shape:   &shape,
	}
}

// Initialise registers the colour setting.
func (c *Clear) Initialise(r plan.Renderer) error {
	def := [4]float64{c.Color.R, c.Color.G, c.Color.B, c.Color.A}
	s, err := settings.Register(r.Settings(), c.Output+".color", "clear colour of "+c.Output, def)
	if err != nil {
		return err
	}
	c.color = s
	return nil
}

// Draw acquires the target and clears it.
func (c *Clear) Draw(r plan.Renderer) (*target.Handle, error) {
	h, err := plan.AcquireOutput(r, c.Output, c.Target)
	if err != nil {
		return nil, err
	}
	if err := r.SetRenderTargets(h); err != nil {
		return nil, err
	}
	v := c.color.Value
	if err := r.Device().Clear(gputypes.Color{R: v[0], G: v[1], B: v[2], A: v[3]}); err != nil {
		return nil, err
	}
	return h, r.SetRenderTargets()
}

// Copy copies the colour plane of Input into a new primary output.
// The device must implement backend.Blitter.
type Copy struct {
	plan.Base

	Input  string
	Output string

	// Target is the shape of the copy. Zero dimensions match the viewport.
	Target target.Descriptor
}

// NewCopy returns a pass copying input into a viewport-sized RGBA8 output.
func NewCopy(input, output string) *Copy {
	return &Copy{Input: input, Output: output, Target: colorTarget}
}

// SpecifyResources declares Input and the primary Output.
func (c *Copy) SpecifyResources() plan.Declaration {
	shape := c.Target
	return plan.Declaration{
		Inputs:  []plan.Input{{Name: c.Input}},
		Outputs: []plan.Resource{{Name: c.Output, IsActive: true}},
		Shape:   &shape,
	}
}

// ValidateInput rejects a previous shape without a colour plane.
func (c *Copy) ValidateInput(prev *target.Descriptor) bool {
	return prev == nil || prev.HasColor()
}

// Draw blits Input over the whole output.
func (c *Copy) Draw(r plan.Renderer) (*target.Handle, error) {
	b, ok := r.Device().(backend.Blitter)
	if !ok {
		return nil, fmt.Errorf("passes: copy on %s: %w", r.Device().Name(), backend.ErrUnsupported)
	}
	src, err := lookup(r, c.Input)
	if err != nil {
		return nil, err
	}
	h, err := plan.AcquireOutput(r, c.Output, c.Target)
	if err != nil {
		return nil, err
	}
	d := h.Descriptor()
	if err := b.Blit(h.Surface(), image.Rect(0, 0, int(d.Width), int(d.Height)), src.Surface()); err != nil {
		return nil, err
	}
	return h, nil
}

// Restore binds a target that carries a depth plane, such as a geometry
// buffer, so its depth is current for the device. It has no output.
type Restore struct {
	plan.Base

	Input string
}

// NewRestore returns a pass restoring input.
func NewRestore(input string) *Restore {
	return &Restore{Input: input}
}

// SpecifyResources declares Input.
func (p *Restore) SpecifyResources() plan.Declaration {
	return plan.Declaration{Inputs: []plan.Input{{Name: p.Input}}}
}

// ValidateInput requires the previous shape to carry a depth plane.
func (p *Restore) ValidateInput(prev *target.Descriptor) bool {
	return prev != nil && prev.HasDepth()
}

// Draw binds Input and unbinds it again.
func (p *Restore) Draw(r plan.Renderer) (*target.Handle, error) {
	h, err := lookup(r, p.Input)
	if err != nil {
		return nil, err
	}
	if err := r.SetRenderTargets(h); err != nil {
		return nil, err
	}
	frameplan.Logger().Debug("passes: restored", "resource", p.Input, "handle", h.String())
	return nil, r.SetRenderTargets()
}

// Image uploads a decoded image into its primary output, scaling it to
// the target. The device must implement backend.Uploader.
type Image struct {
	plan.Base

	Output string
	Source image.Image

	// Target is the uploaded target shape. Zero dimensions match the viewport.
	Target target.Descriptor
}

// NewImage returns a pass uploading src into a viewport-sized RGBA8 output.
func NewImage(output string, src image.Image) *Image {
	return &Image{Output: output, Source: src, Target: colorTarget}
}

// SpecifyResources declares Output as the primary output.
func (p *Image) SpecifyResources() plan.Declaration {
	shape := p.Target
	return plan.Declaration{
		Outputs: []plan.Resource{{Name: p.Output, IsActive: true}},
		Shape:   &shape,
	}
}

// Draw acquires the output and uploads Source.
func (p *Image) Draw(r plan.Renderer) (*target.Handle, error) {
	if p.Source == nil {
		return nil, fmt.Errorf("passes: image %q: no source", p.Output)
	}
	u, ok := r.Device().(backend.Uploader)
	if !ok {
		return nil, fmt.Errorf("passes: image on %s: %w", r.Device().Name(), backend.ErrUnsupported)
	}
	h, err := plan.AcquireOutput(r, p.Output, p.Target)
	if err != nil {
		return nil, err
	}
	if err := u.Upload(h.Surface(), p.Source); err != nil {
		return nil, err
	}
	return h, nil
}
