// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package plan

import (
	"fmt"

	"github.com/gogpu/frameplan"
	"github.com/gogpu/frameplan/target"
)

// Output is the result of one Execute.
//
// Handle is the primary output of the last component that returned one.
// Its resource has passed its free point but is kept alive for the
// caller; Release runs the deferred finalizer once the caller is done
// with Handle.
type Output struct {
	Handle *target.Handle

	resource *Resource
	pending  bool
}

// Resource returns the name of the resource behind Handle, or "".
func (o *Output) Resource() string {
	if o == nil || o.resource == nil {
		return ""
	}
	return o.resource.Name
}

// Pending reports whether Release still has a finalizer to run.
func (o *Output) Pending() bool {
	return o != nil && o.pending
}

// Release finalizes the output resource. Calling it more than once, or on
// an output with no pending resource, does nothing.
func (o *Output) Release(r Renderer) error {
	if !o.Pending() {
		return nil
	}
	o.pending = false
	return o.resource.Finalizer.Finalize(r, o.resource.Name)
}

// Initialise runs Initialise on every component that has not been
// initialised yet, without drawing. Execute does this lazily; calling it
// up front lets a caller apply settings the components register.
func (p *Plan) Initialise(r Renderer) error {
	if r == nil {
		return ErrNilRenderer
	}
	for i, l := range p.links {
		if err := initialise(r, l.component, i); err != nil {
			return err
		}
	}
	return nil
}

func initialise(r Renderer, c Component, index int) error {
	if c.Initialised() {
		return nil
	}
	if err := c.Initialise(r); err != nil {
		return &DrawError{Component: componentName(c), Index: index, Err: fmt.Errorf("initialise: %w", err)}
	}
	c.MarkInitialised()
	return nil
}

// Execute runs every component in order and releases each resource at its
// free point.
//
// A resource whose free point is reached while it is the active output is
// not finalized then. It is finalized when a later component returns a new
// active output, or handed to the caller through the returned Output if
// none does.
//
// A component that re-declares a name it can read replaces the target
// published under it. The replaced target goes straight back to the pool
// once Draw returns; if it was the active output, the output follows the
// name to the new target.
//
// Initialise is called before a component's first Draw. Errors from
// Initialise, Draw or a finalizer stop execution; resources already
// acquired in the frame are not recovered.
func (p *Plan) Execute(r Renderer) (*Output, error) {
	if r == nil {
		return nil, ErrNilRenderer
	}
	points := p.schedule()
	log := frameplan.Logger()

	out := &Output{}
	var active *Resource
	unneeded := false
	cursor := 0

	for i, l := range p.links {
		c := l.component
		if err := initialise(r, c, i); err != nil {
			return nil, err
		}

		prev := published(r, l.decl.Outputs)
		h, err := c.Draw(r)
		if err != nil {
			return nil, &DrawError{Component: componentName(c), Index: i, Err: err}
		}
		if err := releaseReplaced(r, prev, out); err != nil {
			return nil, &DrawError{Component: componentName(c), Index: i, Err: err}
		}

		if h != nil {
			if unneeded && active != nil {
				log.Debug("plan: finalize superseded output", "resource", active.Name, "index", i)
				if err := active.Finalizer.Finalize(r, active.Name); err != nil {
					return nil, &DrawError{Component: componentName(c), Index: i, Err: err}
				}
			}
			unneeded = false
			active = l.decl.primary()
			out.Handle = h
		}

		for cursor < len(points) && points[cursor].Index <= i {
			fp := points[cursor]
			cursor++
			if active != nil && fp.Name == active.Name {
				log.Debug("plan: defer active output", "resource", fp.Name, "index", i)
				unneeded = true
				continue
			}
			res := p.resources[fp.Name]
			if err := res.Finalizer.Finalize(r, fp.Name); err != nil {
				return nil, &DrawError{Component: componentName(c), Index: i, Err: err}
			}
		}
	}

	out.resource = active
	out.pending = unneeded && active != nil
	return out, nil
}

// replaced is a target published under an output name before the
// declaring component draws.
type replaced struct {
	name string
	h    *target.Handle
}

func published(r Renderer, outputs []Resource) []replaced {
	var prev []replaced
	for _, o := range outputs {
		if h, ok := LookupTarget(r, o.Name); ok {
			prev = append(prev, replaced{name: o.Name, h: h})
		}
	}
	return prev
}

// releaseReplaced returns each previous target that Draw republished a
// different target over. Targets the component released itself are
// skipped.
func releaseReplaced(r Renderer, prev []replaced, out *Output) error {
	for _, p := range prev {
		cur, _ := LookupTarget(r, p.name)
		if cur == p.h || r.Pool().IsIdle(p.h) {
			continue
		}
		if err := r.Pool().Release(p.h); err != nil {
			return fmt.Errorf("plan: release replaced %q: %w", p.name, err)
		}
		if out.Handle == p.h {
			out.Handle = cur
		}
		frameplan.Logger().Debug("plan: released replaced target", "resource", p.name, "handle", p.h.String())
	}
	return nil
}
