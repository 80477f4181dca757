// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build nogpu

package render

import (
	"fmt"

	"github.com/gogpu/frameplan/backend"
)

func nativeFromHandle(DeviceHandle) (backend.Device, error) {
	return nil, fmt.Errorf("render: built with nogpu: %w", backend.ErrBackendNotAvailable)
}
