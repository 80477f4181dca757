// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !nogpu

package native

import (
	"fmt"
	"image"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"golang.org/x/image/draw"

	"github.com/gogpu/frameplan/backend"
	"github.com/gogpu/frameplan/target"
)

// Upload scales img over the whole colour plane of dst.
func (d *Device) Upload(dst target.Surface, img image.Image) error {
	ns, bgra, err := d.writable(dst)
	if err != nil {
		return err
	}
	if img == nil {
		return fmt.Errorf("native: upload %q: nil image", ns.label)
	}
	rect := image.Rect(0, 0, int(ns.desc.Width), int(ns.desc.Height))
	return d.write(ns, rect, img, img.Bounds(), bgra)
}

// Blit scales the colour plane of src into dstRect of dst.
//
// The copy round-trips through host memory: src is read back, scaled on
// the CPU and written into dst.
func (d *Device) Blit(dst target.Surface, dstRect image.Rectangle, src target.Surface) error {
	ns, bgra, err := d.writable(dst)
	if err != nil {
		return err
	}
	pix, err := d.ReadPixels(src)
	if err != nil {
		return err
	}
	return d.write(ns, dstRect, pix, pix.Bounds(), bgra)
}

// writable checks that s is a single-sampled 8-bit colour surface of d.
func (d *Device) writable(s target.Surface) (*Surface, bool, error) {
	if d.closed {
		return nil, false, backend.ErrClosed
	}
	ns, err := d.own(s)
	if err != nil {
		return nil, false, err
	}
	if ns.colorTex == nil || ns.desc.SampleCount != 1 {
		return nil, false, fmt.Errorf("native: write %q: %w", ns.label, backend.ErrUnsupported)
	}
	switch ns.desc.Format {
	case gputypes.TextureFormatRGBA8Unorm:
		return ns, false, nil
	case gputypes.TextureFormatBGRA8Unorm:
		return ns, true, nil
	default:
		return nil, false, fmt.Errorf("native: write %v: %w", ns.desc.Format, backend.ErrUnsupported)
	}
}

// write scales srcRect of img into rect of the colour plane of ns. Parts
// of rect outside the surface are cropped, not squashed.
func (d *Device) write(ns *Surface, rect image.Rectangle, img image.Image, srcRect image.Rectangle, bgra bool) error {
	bounds := image.Rect(0, 0, int(ns.desc.Width), int(ns.desc.Height))
	staged := stage(rect, bounds, img, srcRect, bgra)
	if staged == nil {
		return nil
	}
	clip := staged.Rect

	w, h := uint32(clip.Dx()), uint32(clip.Dy()) //nolint:gosec // clip is inside the surface
	d.queue.WriteTexture(
		&hal.ImageCopyTexture{
			Texture:  ns.colorTex,
			MipLevel: 0,
			Origin:   hal.Origin3D{X: uint32(clip.Min.X), Y: uint32(clip.Min.Y), Z: 0}, //nolint:gosec // non-negative after clipping
		},
		staged.Pix,
		&hal.ImageDataLayout{
			Offset:       0,
			BytesPerRow:  uint32(staged.Stride), //nolint:gosec // w * 4
			RowsPerImage: h,
		},
		&hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
	)
	return nil
}

// stage scales srcRect of img onto rect and returns the part that falls
// inside bounds, rows packed, in bounds coordinates. It returns nil when
// nothing is visible.
func stage(rect, bounds image.Rectangle, img image.Image, srcRect image.Rectangle, bgra bool) *image.RGBA {
	clip := rect.Intersect(bounds)
	if clip.Empty() {
		return nil
	}
	staged := image.NewRGBA(clip)
	draw.BiLinear.Scale(staged, rect, img, srcRect, draw.Src, nil)
	if bgra {
		swapRB(staged.Pix)
	}
	return staged
}
