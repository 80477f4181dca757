// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !nogpu

package render

import (
	"github.com/gogpu/frameplan/backend"
	"github.com/gogpu/frameplan/backend/native"
)

func nativeFromHandle(h DeviceHandle) (backend.Device, error) {
	d, err := native.FromProvider(h)
	if err != nil {
		return nil, err
	}
	return d, nil
}
