// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"

	"github.com/gogpu/frameplan/backend"
	"github.com/gogpu/frameplan/backend/software"
)

// DeviceHandle provides GPU device access from the host application.
//
// Key principle: when a handle is given, the renderer RECEIVES the device
// from the host and does NOT create one. The handle must also expose HAL
// types (HalDevice() any, HalQueue() any) for the native backend to use
// it; its SurfaceFormat becomes the screen format.
//
// DeviceHandle is an alias for gpucontext.DeviceProvider.
type DeviceHandle = gpucontext.DeviceProvider

// NullDeviceHandle is a DeviceHandle that provides nil implementations.
// Passing it to WithDeviceHandle selects the software device.
type NullDeviceHandle struct{}

// Device returns nil for the null device.
func (NullDeviceHandle) Device() gpucontext.Device { return nil }

// Queue returns nil for the null device.
func (NullDeviceHandle) Queue() gpucontext.Queue { return nil }

// Adapter returns nil for the null device.
func (NullDeviceHandle) Adapter() gpucontext.Adapter { return nil }

// SurfaceFormat returns undefined format for the null device.
func (NullDeviceHandle) SurfaceFormat() gputypes.TextureFormat {
	return gputypes.TextureFormatUndefined
}

// Ensure NullDeviceHandle implements DeviceHandle.
var _ DeviceHandle = NullDeviceHandle{}

// deviceFromHandle wraps a host device. A nil or null handle yields a
// software device.
func deviceFromHandle(h DeviceHandle) (backend.Device, error) {
	if h == nil {
		return software.New(), nil
	}
	if _, ok := h.(NullDeviceHandle); ok {
		return software.New(), nil
	}
	return nativeFromHandle(h)
}
