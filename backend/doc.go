// Package backend provides the device abstraction that render targets are
// allocated from and that pass components draw with.
//
// # Backend Registration
//
// Backends register a Factory from init() and are selected at runtime.
// Importing a backend package is enough to make it available:
//
//	import _ "github.com/gogpu/frameplan/backend/software"
//
// # Backend Selection
//
// Use Default() to open the best available backend, or Open() to request
// a specific backend by name:
//
//	dev, err := backend.Open(backend.BackendSoftware)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer dev.Close()
//
// # Available Backends
//
//   - "software": CPU image planes, supports Blit and Upload
//   - "native": GPU textures through gogpu/wgpu/hal (Vulkan)
package backend
