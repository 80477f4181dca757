// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !nogpu

// Package native provides a backend.Device over gogpu/wgpu/hal.
//
// Render targets are HAL textures with default views. Clear records a
// render pass with clear load ops, submits it and waits on a fence.
// ReadPixels copies colour through a staging buffer and Upload writes it
// through the queue. Blit composes the two on the host.
//
// A Device either borrows a device from the host application (New,
// FromProvider) or opens a standalone Vulkan device (Open, also used by
// the registered factory).
package native

import (
	"errors"
	"fmt"
	"time"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	// Import Vulkan backend so it registers via init().
	_ "github.com/gogpu/wgpu/hal/vulkan"

	"github.com/gogpu/frameplan"
	"github.com/gogpu/frameplan/backend"
	"github.com/gogpu/frameplan/target"
)

// Native device errors.
var (
	// ErrNilHALDevice is returned when constructing a Device without a HAL device or queue.
	ErrNilHALDevice = errors.New("native: HAL device or queue is nil")

	// ErrNoHAL is returned when a device provider does not expose HAL types.
	ErrNoHAL = errors.New("native: provider does not expose HAL types")

	// ErrNoAdapter is returned when no GPU adapter is found.
	ErrNoAdapter = errors.New("native: no GPU adapters found")

	// ErrGPUTimeout is returned when a submission does not complete in time.
	ErrGPUTimeout = errors.New("native: timed out waiting for GPU")
)

// fenceTimeout bounds every wait on submitted work.
const fenceTimeout = 5 * time.Second

func init() {
	backend.Register(backend.BackendNative, func() (backend.Device, error) {
		d, err := Open()
		if err != nil {
			return nil, err
		}
		return d, nil
	})
}

// Device is a GPU rendering device.
//
// Device is NOT safe for concurrent use.
type Device struct {
	instance hal.Instance
	device   hal.Device
	queue    hal.Queue

	defaultFormat gputypes.TextureFormat
	external      bool // borrowed device, not destroyed on Close

	bound  []*Surface
	live   int
	closed bool
}

var (
	_ backend.Device   = (*Device)(nil)
	_ backend.Reader   = (*Device)(nil)
	_ backend.Uploader = (*Device)(nil)
	_ backend.Blitter  = (*Device)(nil)
)

// New wraps a HAL device and queue owned by the caller.
// Close does not destroy them.
func New(device hal.Device, queue hal.Queue) (*Device, error) {
	if device == nil || queue == nil {
		return nil, ErrNilHALDevice
	}
	return &Device{
		device:        device,
		queue:         queue,
		defaultFormat: gputypes.TextureFormatBGRA8Unorm,
		external:      true,
	}, nil
}

// FromProvider wraps the shared device of a host application.
//
// The provider must also implement HalDevice() any and HalQueue() any
// returning hal.Device and hal.Queue. Its SurfaceFormat, when defined,
// becomes the colour format for descriptors that request none.
func FromProvider(provider gpucontext.DeviceProvider) (*Device, error) {
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	hp, ok := provider.(halProvider)
	if !ok {
		return nil, ErrNoHAL
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return nil, fmt.Errorf("%w: HalDevice is not hal.Device", ErrNoHAL)
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return nil, fmt.Errorf("%w: HalQueue is not hal.Queue", ErrNoHAL)
	}

	d, err := New(device, queue)
	if err != nil {
		return nil, err
	}
	if f := provider.SurfaceFormat(); f != gputypes.TextureFormatUndefined {
		d.defaultFormat = f
	}
	return d, nil
}

// Open creates a standalone Vulkan device, preferring discrete or
// integrated GPUs. Close destroys it.
func Open() (*Device, error) {
	vk, ok := hal.GetBackend(gputypes.BackendVulkan)
	if !ok {
		return nil, fmt.Errorf("native: %w: vulkan", backend.ErrBackendNotAvailable)
	}
	instance, err := vk.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return nil, fmt.Errorf("native: create instance: %w", err)
	}

	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		instance.Destroy()
		return nil, ErrNoAdapter
	}
	selected := &adapters[0]
	for i := range adapters {
		if adapters[i].Info.DeviceType == gputypes.DeviceTypeDiscreteGPU ||
			adapters[i].Info.DeviceType == gputypes.DeviceTypeIntegratedGPU {
			selected = &adapters[i]
			break
		}
	}

	openDev, err := selected.Adapter.Open(gputypes.Features(0), gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		return nil, fmt.Errorf("native: open device: %w", err)
	}

	frameplan.Logger().Info("native: GPU initialized", "adapter", selected.Info.Name)
	return &Device{
		instance:      instance,
		device:        openDev.Device,
		queue:         openDev.Queue,
		defaultFormat: gputypes.TextureFormatBGRA8Unorm,
	}, nil
}

// Name returns backend.BackendNative.
func (d *Device) Name() string {
	return backend.BackendNative
}

// HalDevice returns the underlying HAL device.
func (d *Device) HalDevice() hal.Device {
	return d.device
}

// Live returns the number of surfaces allocated and not yet destroyed.
func (d *Device) Live() int {
	return d.live
}

// CreateSurface creates the textures and views for desc.
//
// A descriptor with neither plane gets the default colour format and a
// zero sample count becomes 1.
func (d *Device) CreateSurface(desc target.Descriptor, label string) (target.Surface, error) {
	if d.closed {
		return nil, backend.ErrClosed
	}
	if !desc.Resolved() {
		return nil, fmt.Errorf("native: create %q: %w", label, target.ErrUnresolved)
	}
	if !desc.HasColor() && !desc.HasDepth() {
		desc.Format = d.defaultFormat
	}
	if desc.SampleCount == 0 {
		desc.SampleCount = 1
	}

	s := &Surface{desc: desc, label: label, owner: d}
	d.live++
	size := hal.Extent3D{Width: desc.Width, Height: desc.Height, DepthOrArrayLayers: 1}

	if desc.HasColor() {
		usage := gputypes.TextureUsageRenderAttachment | gputypes.TextureUsageCopySrc
		if desc.SampleCount == 1 {
			usage |= gputypes.TextureUsageTextureBinding | gputypes.TextureUsageCopyDst
		}
		tex, err := d.device.CreateTexture(&hal.TextureDescriptor{
			Label:         label + "_color",
			Size:          size,
			MipLevelCount: desc.MipLevels(),
			SampleCount:   desc.SampleCount,
			Dimension:     gputypes.TextureDimension2D,
			Format:        desc.Format,
			Usage:         usage,
		})
		if err != nil {
			s.Destroy()
			return nil, fmt.Errorf("native: create colour texture %q: %w", label, err)
		}
		s.colorTex = tex

		view, err := d.device.CreateTextureView(tex, &hal.TextureViewDescriptor{
			Label: label + "_color_view",
		})
		if err != nil {
			s.Destroy()
			return nil, fmt.Errorf("native: create colour view %q: %w", label, err)
		}
		s.colorView = view
	}

	if desc.HasDepth() {
		tex, err := d.device.CreateTexture(&hal.TextureDescriptor{
			Label:         label + "_depth",
			Size:          size,
			MipLevelCount: 1,
			SampleCount:   desc.SampleCount,
			Dimension:     gputypes.TextureDimension2D,
			Format:        desc.DepthFormat,
			Usage:         gputypes.TextureUsageRenderAttachment | gputypes.TextureUsageTextureBinding,
		})
		if err != nil {
			s.Destroy()
			return nil, fmt.Errorf("native: create depth texture %q: %w", label, err)
		}
		s.depthTex = tex

		view, err := d.device.CreateTextureView(tex, &hal.TextureViewDescriptor{
			Label: label + "_depth_view",
		})
		if err != nil {
			s.Destroy()
			return nil, fmt.Errorf("native: create depth view %q: %w", label, err)
		}
		s.depthView = view
	}

	frameplan.Logger().Debug("native: surface created", "label", label, "desc", desc.String())
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
		ns, err := d.own(s)
		if err != nil {
			return err
		}
		if ns.depthView != nil {
			depth++
		}
		bound = append(bound, ns)
	}
	if depth > 1 {
		return fmt.Errorf("native: %d depth attachments bound, at most one allowed", depth)
	}
	d.bound = bound
	return nil
}

// Clear clears the bound targets in a single render pass.
func (d *Device) Clear(c gputypes.Color) error {
	if d.closed {
		return backend.ErrClosed
	}
	if len(d.bound) == 0 {
		return backend.ErrNoRenderTarget
	}

	rpDesc := &hal.RenderPassDescriptor{Label: "frameplan_clear"}
	for _, s := range d.bound {
		if s.colorView != nil {
			rpDesc.ColorAttachments = append(rpDesc.ColorAttachments, hal.RenderPassColorAttachment{
				View:       s.colorView,
				LoadOp:     gputypes.LoadOpClear,
				StoreOp:    gputypes.StoreOpStore,
				ClearValue: c,
			})
		}
		if s.depthView != nil {
			ds := &hal.RenderPassDepthStencilAttachment{
				View:            s.depthView,
				DepthLoadOp:     gputypes.LoadOpClear,
				DepthStoreOp:    gputypes.StoreOpStore,
				DepthClearValue: 1.0,
			}
			if s.desc.DepthFormat == gputypes.TextureFormatDepth24PlusStencil8 {
				ds.StencilLoadOp = gputypes.LoadOpClear
				ds.StencilStoreOp = gputypes.StoreOpStore
				ds.StencilClearValue = 0
			}
			rpDesc.DepthStencilAttachment = ds
		}
	}

	return d.submit("frameplan_clear", func(encoder hal.CommandEncoder) error {
		rp := encoder.BeginRenderPass(rpDesc)
		rp.End()
		return nil
	})
}

// Close unbinds everything and, for devices opened by Open, destroys the
// HAL device and instance. Surfaces must be destroyed first.
func (d *Device) Close() {
	if d.closed {
		return
	}
	d.bound = nil
	d.closed = true
	if d.live > 0 {
		frameplan.Logger().Warn("native: closing device with live surfaces", "live", d.live)
	}
	if !d.external && d.device != nil {
		d.device.Destroy()
	}
	if d.instance != nil {
		d.instance.Destroy()
		d.instance = nil
	}
}

// submit records commands with fn, submits them and waits for completion.
func (d *Device) submit(label string, fn func(encoder hal.CommandEncoder) error) error {
	encoder, err := d.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{
		Label: label + "_encoder",
	})
	if err != nil {
		return fmt.Errorf("native: create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding(label); err != nil {
		return fmt.Errorf("native: begin encoding: %w", err)
	}
	if err := fn(encoder); err != nil {
		encoder.DiscardEncoding()
		return err
	}

	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return fmt.Errorf("native: end encoding: %w", err)
	}
	defer d.device.FreeCommandBuffer(cmdBuf)

	fence, err := d.device.CreateFence()
	if err != nil {
		return fmt.Errorf("native: create fence: %w", err)
	}
	defer d.device.DestroyFence(fence)

	if err := d.queue.Submit([]hal.CommandBuffer{cmdBuf}, fence, 1); err != nil {
		return fmt.Errorf("native: submit: %w", err)
	}
	ok, err := d.device.Wait(fence, 1, fenceTimeout)
	if err != nil {
		return fmt.Errorf("native: wait: %w", err)
	}
	if !ok {
		return ErrGPUTimeout
	}
	return nil
}

func (d *Device) own(s target.Surface) (*Surface, error) {
	ns, ok := s.(*Surface)
	if !ok || (ns.owner != d && ns.owner != nil) {
		return nil, backend.ErrForeignSurface
	}
	if ns.owner == nil {
		return nil, fmt.Errorf("native: surface %q destroyed", ns.label)
	}
	return ns, nil
}
