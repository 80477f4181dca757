// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"testing"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/frameplan/backend"
)

func TestNullDeviceHandle(t *testing.T) {
	var handle DeviceHandle = NullDeviceHandle{}

	if handle.Device() != nil {
		t.Error("NullDeviceHandle.Device() should return nil")
	}
	if handle.Queue() != nil {
		t.Error("NullDeviceHandle.Queue() should return nil")
	}
	if handle.Adapter() != nil {
		t.Error("NullDeviceHandle.Adapter() should return nil")
	}
	if handle.SurfaceFormat() != gputypes.TextureFormatUndefined {
		t.Error("NullDeviceHandle.SurfaceFormat() should return Undefined")
	}
}

func TestDeviceFromHandleSoftwareFallback(t *testing.T) {
	tests := []struct {
		name   string
		handle DeviceHandle
	}{
		{"nil", nil},
		{"null", NullDeviceHandle{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := deviceFromHandle(tt.handle)
			if err != nil {
				t.Fatalf("deviceFromHandle() error = %v", err)
			}
			defer d.Close()
			if d.Name() != backend.BackendSoftware {
				t.Errorf("Name() = %q, want %q", d.Name(), backend.BackendSoftware)
			}
		})
	}
}
