// Package frameplan sequences chains of GPU rendering passes and manages
// the lifetime of the render targets they exchange.
//
// # Overview
//
// A render plan is an ordered chain of pass components. Each component
// declares the named resources it reads and writes. The plan tracks, for
// every resource, the index of the last component that touches it and
// releases the resource back to a pooled allocator as soon as that point
// has passed. Targets are pooled by descriptor, so a frame that needs a
// 1920x1080 colour buffer reuses the one released by an earlier pass.
//
//	pool ──Acquire──▶ pass 0 ──"depth"──▶ pass 1 ──"final"──▶ screen
//	  ▲                                     │
//	  └────────────Release("depth")─────────┘
//
// # Packages
//
//   - target: resource descriptors, target handles, and the format-bucketed Pool
//   - plan: the pass component contract and the Plan scheduler
//   - render: the Renderer driver that owns pool, device, and metadata
//   - meta, settings: the shared parameter table and tunable registry
//   - backend: device abstraction, with software and native (wgpu/hal) devices
//   - passes: small reference components (Clear, Copy, Restore, Image)
//
// # Quick Start
//
//	r, _ := render.New(render.WithBackend("software"))
//	defer r.Close()
//
//	p, err := plan.New().Then(passes.NewClear("scene", gputypes.TextureFormatRGBA8Unorm))
//	if err != nil {
//	    log.Fatal(err) // configuration error: wrong pass order or missing input
//	}
//	r.SetPlan(p)
//	r.Render(render.View{Name: "main", Viewport: image.Rect(0, 0, 640, 480)})
//
// # Thread Safety
//
// Plans execute strictly in sequence on the caller's goroutine. The Pool,
// the metadata table, and the Renderer are NOT safe for concurrent use.
package frameplan

// Version information
const (
	// Version is the current version of the library
	Version = "0.1.0"

	// VersionMajor is the major version
	VersionMajor = 0

	// VersionMinor is the minor version
	VersionMinor = 1

	// VersionPatch is the patch version
	VersionPatch = 0
)
