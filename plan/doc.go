// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package plan sequences render pass components and schedules the release
// of the render targets they exchange.
//
// A Plan is built by appending components. Each component declares the
// named resources it reads (Input) and produces (Resource); appending
// validates the inputs against everything produced earlier in the chain,
// so a misordered pipeline fails at construction rather than at draw time.
//
// The plan records, for every resource, the index of the last component
// that reads or writes it. Execute walks the components in order, calls
// Draw, and finalizes each resource once its last user has drawn. The
// resource that is currently the active (primary) output is held back
// until a later component supersedes it:
//
//	p, err := plan.New(&gbuffer{}, &lighting{}, &tonemap{})
//	if err != nil {
//		return err // *plan.ConfigError naming the component and resource
//	}
//	out, err := p.Execute(renderer)
//	if err != nil {
//		return err
//	}
//	composite(out.Handle)
//	return out.Release(renderer)
//
// Plans are persistent: Then and Append return a new plan and leave the
// prior untouched, so variants can branch from a shared prefix.
package plan
