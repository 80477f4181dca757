// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package software

import (
	"image"

	"github.com/gogpu/frameplan/target"
)

// Surface is a CPU render target: an RGBA colour plane and a float32 depth
// plane, either of which may be absent.
type Surface struct {
	desc  target.Descriptor
	label string
	owner *Device

	color *image.RGBA
	depth []float32

	destroyed bool
}

var _ target.Surface = (*Surface)(nil)

// Descriptor returns the concrete shape of the surface.
func (s *Surface) Descriptor() target.Descriptor {
	return s.desc
}

// Label returns the debug label given at allocation.
func (s *Surface) Label() string {
	return s.label
}

// Image returns the colour plane, or nil for depth-only surfaces.
func (s *Surface) Image() *image.RGBA {
	return s.color
}

// Depth returns the depth plane in row-major order, or nil if the surface
// has no depth plane.
func (s *Surface) Depth() []float32 {
	return s.depth
}

// DepthAt returns the depth value at (x, y), or 1 outside the plane.
func (s *Surface) DepthAt(x, y int) float32 {
	w, h := int(s.desc.Width), int(s.desc.Height)
	if s.depth == nil || x < 0 || y < 0 || x >= w || y >= h {
		return 1
	}
	return s.depth[y*w+x]
}

// Destroyed reports whether Destroy has been called.
func (s *Surface) Destroyed() bool {
	return s.destroyed
}

// Destroy releases the planes. Destroying twice is a no-op.
func (s *Surface) Destroy() {
	if s.destroyed {
		return
	}
	s.destroyed = true
	s.color = nil
	s.depth = nil
	if s.owner != nil {
		s.owner.live--
	}
}
