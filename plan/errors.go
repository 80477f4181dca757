// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package plan

import (
	"errors"
	"fmt"
)

// Plan errors.
var (
	// ErrMissingInput is returned when a required input is not produced by
	// any earlier component.
	ErrMissingInput = errors.New("missing required resource")

	// ErrIncompatibleInput is returned when ValidateInput rejects the
	// previous output shape.
	ErrIncompatibleInput = errors.New("incompatible input shape")

	// ErrMultiplePrimary is returned when a component flags more than one
	// output as primary.
	ErrMultiplePrimary = errors.New("more than one primary output")

	// ErrReservedName is returned when a component declares an output
	// under a key the renderer publishes (see meta.Reserved).
	ErrReservedName = errors.New("output name is reserved")

	// ErrNilComponent is returned when appending a nil component.
	ErrNilComponent = errors.New("nil component")

	// ErrNotTarget is returned when a resource name holds a metadata value
	// that is not a render target.
	ErrNotTarget = errors.New("plan: metadata value is not a render target")

	// ErrNilRenderer is returned when executing without a renderer.
	ErrNilRenderer = errors.New("plan: nil renderer")
)

// ConfigError reports a plan construction failure.
type ConfigError struct {
	// Component is the type name of the offending component.
	Component string

	// Resource is the resource involved, if any.
	Resource string

	// Err is ErrMissingInput, ErrIncompatibleInput, ErrMultiplePrimary,
	// ErrReservedName or ErrNilComponent.
	Err error
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	if e.Resource != "" {
		return fmt.Sprintf("plan: %s: %v %q", e.Component, e.Err, e.Resource)
	}
	return fmt.Sprintf("plan: %s: %v", e.Component, e.Err)
}

// Unwrap returns the underlying sentinel.
func (e *ConfigError) Unwrap() error {
	return e.Err
}

// DrawError reports a failure inside a component during Execute.
type DrawError struct {
	Component string
	Index     int
	Err       error
}

// Error implements the error interface.
func (e *DrawError) Error() string {
	return fmt.Sprintf("plan: %s (index %d): %v", e.Component, e.Index, e.Err)
}

// Unwrap returns the component's error.
func (e *DrawError) Unwrap() error {
	return e.Err
}
