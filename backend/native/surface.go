// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !nogpu

package native

import (
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/frameplan/target"
)

// Surface is a GPU render target: an optional colour texture and an
// optional depth texture, each with a default view.
type Surface struct {
	desc  target.Descriptor
	label string
	owner *Device

	colorTex  hal.Texture
	colorView hal.TextureView
	depthTex  hal.Texture
	depthView hal.TextureView
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

// ColorTexture returns the colour texture, or nil.
func (s *Surface) ColorTexture() hal.Texture { return s.colorTex }

// ColorView returns the default colour view, or nil.
func (s *Surface) ColorView() hal.TextureView { return s.colorView }

// DepthTexture returns the depth texture, or nil.
func (s *Surface) DepthTexture() hal.Texture { return s.depthTex }

// DepthView returns the default depth view, or nil.
func (s *Surface) DepthView() hal.TextureView { return s.depthView }

// Destroyed reports whether the GPU resources have been released.
func (s *Surface) Destroyed() bool {
	return s.colorTex == nil && s.depthTex == nil
}

// Destroy releases the textures and views. Destroying twice is a no-op.
func (s *Surface) Destroy() {
	if s.owner == nil {
		return
	}
	device := s.owner.device
	if s.colorView != nil {
		device.DestroyTextureView(s.colorView)
		s.colorView = nil
	}
	if s.colorTex != nil {
		device.DestroyTexture(s.colorTex)
		s.colorTex = nil
	}
	if s.depthView != nil {
		device.DestroyTextureView(s.depthView)
		s.depthView = nil
	}
	if s.depthTex != nil {
		device.DestroyTexture(s.depthTex)
		s.depthTex = nil
	}
	s.owner.live--
	s.owner = nil
}
