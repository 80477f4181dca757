package backend

import (
	"errors"
	"image"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/frameplan/target"
)

// Backend name constants.
const (
	// BackendSoftware is the name of the CPU image-plane backend.
	BackendSoftware = "software"
	// BackendNative is the name of the GPU backend over gogpu/wgpu/hal.
	BackendNative = "native"
)

// Common backend errors.
var (
	// ErrBackendNotAvailable is returned when a requested backend is not registered.
	ErrBackendNotAvailable = errors.New("backend: not available")

	// ErrUnsupported is returned when a device lacks an optional capability.
	ErrUnsupported = errors.New("backend: operation not supported by device")

	// ErrNoRenderTarget is returned when drawing with nothing bound.
	ErrNoRenderTarget = errors.New("backend: no render target bound")

	// ErrForeignSurface is returned when a surface from another device is passed in.
	ErrForeignSurface = errors.New("backend: surface belongs to another device")

	// ErrClosed is returned when using a device after Close.
	ErrClosed = errors.New("backend: device closed")
)

// Device is the GPU device handle used by the pool and by pass components.
//
// It allocates render targets (through target.Allocator), binds them as
// render destinations, and clears the bound targets. Anything beyond that
// is an optional capability expressed by the Blitter and Uploader
// interfaces.
type Device interface {
	target.Allocator

	// Name returns the backend identifier (e.g., "software", "native").
	Name() string

	// SetRenderTargets binds surfaces as the current render destinations.
	// At most one surface may carry a depth plane; it is used as the depth
	// attachment. Calling with no surfaces unbinds everything.
	SetRenderTargets(surfaces ...target.Surface) error

	// Clear clears colour planes of the bound targets to c and depth planes
	// to the far plane (1.0).
	Clear(c gputypes.Color) error

	// Close releases device resources. Surfaces must not be used afterwards.
	Close()
}

// Blitter is implemented by devices that can copy colour between surfaces.
type Blitter interface {
	// Blit scales the colour plane of src into the dst rectangle of dst.
	Blit(dst target.Surface, dstRect image.Rectangle, src target.Surface) error
}

// Reader is implemented by devices that can read colour back to CPU memory.
type Reader interface {
	// ReadPixels returns a copy of the colour plane of s.
	ReadPixels(s target.Surface) (*image.RGBA, error)
}

// Uploader is implemented by devices that can fill a surface from CPU memory.
type Uploader interface {
	// Upload scales img into the colour plane of dst.
	Upload(dst target.Surface, img image.Image) error
}
