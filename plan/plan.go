// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package plan

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/gogpu/frameplan/meta"
	"github.com/gogpu/frameplan/target"
)

type link struct {
	component Component
	decl      Declaration
}

// FreePoint is the index of the last component that reads or writes a
// resource.
type FreePoint struct {
	Name  string
	Index int
}

// Plan is an ordered chain of components with the resource schedule
// derived from their declarations.
//
// A Plan is never modified by Then or Append: each returns a new plan that
// copies the tables of its prior, so several plans can branch from a
// common prefix. Components are shared between branches.
//
// Plan is NOT safe for concurrent use.
type Plan struct {
	links       []link
	resources   map[string]Resource
	order       []string // resource names by first declaration
	lastUsed    map[string]int
	outputShape *target.Descriptor

	freePoints []FreePoint
	scheduled  bool
}

// New builds a plan from components in order. New() returns the empty plan.
func New(components ...Component) (*Plan, error) {
	p := &Plan{
		resources: make(map[string]Resource),
		lastUsed:  make(map[string]int),
	}
	for _, c := range components {
		next, err := Append(p, c)
		if err != nil {
			return nil, err
		}
		p = next
	}
	return p, nil
}

// Append returns a new plan consisting of prior followed by c.
// A nil prior is the empty plan.
//
// Construction fails with a *ConfigError if c rejects the prior output
// shape, flags more than one primary output, or requires an input no
// earlier component produces.
func Append(prior *Plan, c Component) (*Plan, error) {
	if c == nil {
		return nil, &ConfigError{Component: "<nil>", Err: ErrNilComponent}
	}
	p := prior.clone()
	name := componentName(c)
	decl := c.SpecifyResources().clone()
	index := len(p.links)

	p.links = append(p.links, link{component: c, decl: decl})
	if !c.ValidateInput(p.OutputShape()) {
		return nil, &ConfigError{Component: name, Err: ErrIncompatibleInput}
	}

	primaries := 0
	for _, out := range decl.Outputs {
		if meta.Reserved(out.Name) {
			return nil, &ConfigError{Component: name, Resource: out.Name, Err: ErrReservedName}
		}
		if out.IsActive {
			primaries++
		}
	}
	if primaries > 1 {
		return nil, &ConfigError{Component: name, Err: ErrMultiplePrimary}
	}

	for _, in := range decl.Inputs {
		if _, ok := p.resources[in.Name]; ok {
			p.lastUsed[in.Name] = index
			continue
		}
		if !in.Optional {
			return nil, &ConfigError{Component: name, Resource: in.Name, Err: ErrMissingInput}
		}
	}

	for _, out := range decl.Outputs {
		if _, ok := p.resources[out.Name]; !ok {
			p.order = append(p.order, out.Name)
		}
		p.resources[out.Name] = out
		p.lastUsed[out.Name] = index
	}

	if decl.Shape != nil {
		p.outputShape = decl.Shape
	}
	return p, nil
}

// Then returns a new plan consisting of p followed by c.
func (p *Plan) Then(c Component) (*Plan, error) {
	return Append(p, c)
}

func (p *Plan) clone() *Plan {
	if p == nil {
		return &Plan{
			resources: make(map[string]Resource),
			lastUsed:  make(map[string]int),
		}
	}
	return &Plan{
		links:       slices.Clone(p.links),
		resources:   maps.Clone(p.resources),
		order:       slices.Clone(p.order),
		lastUsed:    maps.Clone(p.lastUsed),
		outputShape: p.outputShape,
	}
}

// Len returns the number of components.
func (p *Plan) Len() int {
	return len(p.links)
}

// Components returns the components in execution order.
func (p *Plan) Components() []Component {
	out := make([]Component, len(p.links))
	for i, l := range p.links {
		out[i] = l.component
	}
	return out
}

// Declaration returns the declaration recorded for the component at i.
func (p *Plan) Declaration(i int) Declaration {
	return p.links[i].decl.clone()
}

// Resources returns the resource names in first-declaration order.
func (p *Plan) Resources() []string {
	return slices.Clone(p.order)
}

// Resource returns the current entry for name. Later declarations of the
// same name replace earlier ones.
func (p *Plan) Resource(name string) (Resource, bool) {
	r, ok := p.resources[name]
	return r, ok
}

// LastUsed returns the index of the last component that reads or writes
// name.
func (p *Plan) LastUsed(name string) (int, bool) {
	i, ok := p.lastUsed[name]
	return i, ok
}

// OutputShape returns a copy of the output shape declared by the last
// component that declared one, or nil.
func (p *Plan) OutputShape() *target.Descriptor {
	if p.outputShape == nil {
		return nil
	}
	shape := *p.outputShape
	return &shape
}

// FreePoints returns the release schedule ordered by index. Resources with
// the same index keep their first-declaration order.
func (p *Plan) FreePoints() []FreePoint {
	return slices.Clone(p.schedule())
}

// schedule derives the free points on first use.
func (p *Plan) schedule() []FreePoint {
	if p.scheduled {
		return p.freePoints
	}
	points := make([]FreePoint, 0, len(p.order))
	for _, name := range p.order {
		points = append(points, FreePoint{Name: name, Index: p.lastUsed[name]})
	}
	slices.SortStableFunc(points, func(a, b FreePoint) int {
		return a.Index - b.Index
	})
	p.freePoints = points
	p.scheduled = true
	return points
}

// Describe renders the chain and its release schedule for diagnostics.
func (p *Plan) Describe() string {
	var b strings.Builder
	points := p.schedule()
	cursor := 0
	for i, l := range p.links {
		fmt.Fprintf(&b, "%2d %s", i, componentName(l.component))
		if len(l.decl.Inputs) > 0 {
			names := make([]string, len(l.decl.Inputs))
			for j, in := range l.decl.Inputs {
				names[j] = in.Name
				if in.Optional {
					names[j] += "?"
				}
			}
			fmt.Fprintf(&b, " in=[%s]", strings.Join(names, " "))
		}
		if len(l.decl.Outputs) > 0 {
			names := make([]string, len(l.decl.Outputs))
			for j, out := range l.decl.Outputs {
				names[j] = out.Name
				if out.IsActive {
					names[j] += "*"
				}
			}
			fmt.Fprintf(&b, " out=[%s]", strings.Join(names, " "))
		}
		var freed []string
		for cursor < len(points) && points[cursor].Index <= i {
			freed = append(freed, points[cursor].Name)
			cursor++
		}
		if len(freed) > 0 {
			fmt.Fprintf(&b, " free=[%s]", strings.Join(freed, " "))
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func componentName(c Component) string {
	return fmt.Sprintf("%T", c)
}
