// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package plan

import (
	"errors"
	"slices"
	"strings"
	"testing"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/frameplan/meta"
	"github.com/gogpu/frameplan/target"
)

func TestAppendMissingInputFailsFast(t *testing.T) {
	r := newTestRenderer(t)
	first := &probe{label: "first", outputs: []string{"color"}, primary: "color"}
	lighting := &probe{label: "lighting", inputs: []Input{{Name: "gbuffer_depth"}}}

	base := mustPlan(t, first)
	_, err := base.Then(lighting)

	var cfg *ConfigError
	if !errors.As(err, &cfg) {
		t.Fatalf("Then() error = %v, want *ConfigError", err)
	}
	if !errors.Is(err, ErrMissingInput) {
		t.Errorf("errors.Is(err, ErrMissingInput) = false for %v", err)
	}
	if cfg.Resource != "gbuffer_depth" || !strings.Contains(err.Error(), "gbuffer_depth") {
		t.Errorf("error %q does not name gbuffer_depth", err)
	}
	if !strings.Contains(cfg.Component, "probe") {
		t.Errorf("Component = %q, want the component type", cfg.Component)
	}
	if len(r.events) != 0 {
		t.Errorf("events = %v, want no Draw calls", r.events)
	}
	if base.Len() != 1 {
		t.Errorf("prior plan Len() = %d, want 1", base.Len())
	}
}

func TestAppendMissingInputOnEmptyPlan(t *testing.T) {
	_, err := Append(nil, &probe{label: "x", inputs: []Input{{Name: "gbuffer_depth"}}})
	if !errors.Is(err, ErrMissingInput) || !strings.Contains(err.Error(), "gbuffer_depth") {
		t.Errorf("Append() error = %v, want missing gbuffer_depth", err)
	}
}

func TestAppendOptionalInput(t *testing.T) {
	p := mustPlan(t, &probe{label: "x", inputs: []Input{{Name: "history", Optional: true}}})
	if _, ok := p.LastUsed("history"); ok {
		t.Error("absent optional input must not enter the last-used table")
	}
}

func TestAppendValidateInput(t *testing.T) {
	depthShape := &target.Descriptor{
		Format:      gputypes.TextureFormatRGBA8Unorm,
		DepthFormat: gputypes.TextureFormatDepth24PlusStencil8,
	}
	needsDepth := func(prev *target.Descriptor) bool {
		return prev != nil && prev.HasDepth()
	}

	tests := []struct {
		name    string
		chain   []Component
		wantErr bool
	}{
		{
			name:    "first component sees nil",
			chain:   []Component{&probe{label: "restore", validate: needsDepth}},
			wantErr: true,
		},
		{
			name: "shape without depth",
			chain: []Component{
				&probe{label: "c", shape: &colorTarget},
				&probe{label: "restore", validate: needsDepth},
			},
			wantErr: true,
		},
		{
			name: "depth shape inherited through a shapeless pass",
			chain: []Component{
				&probe{label: "g", shape: depthShape},
				&probe{label: "side"},
				&probe{label: "restore", validate: needsDepth},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.chain...)
			if tt.wantErr {
				if !errors.Is(err, ErrIncompatibleInput) {
					t.Errorf("New() error = %v, want ErrIncompatibleInput", err)
				}
				return
			}
			if err != nil {
				t.Errorf("New() error = %v", err)
			}
		})
	}
}

func TestAppendRejects(t *testing.T) {
	if _, err := Append(nil, nil); !errors.Is(err, ErrNilComponent) {
		t.Errorf("Append(nil) error = %v, want ErrNilComponent", err)
	}
	two := &probe{label: "two", outputs: []string{"a", "b"}}
	two.primary = "a"
	decl := two.SpecifyResources()
	decl.Outputs[1].IsActive = true
	if _, err := Append(nil, &fixedDecl{decl: decl}); !errors.Is(err, ErrMultiplePrimary) {
		t.Errorf("Append() error = %v, want ErrMultiplePrimary", err)
	}
}

func TestAppendRejectsReservedOutputNames(t *testing.T) {
	for _, name := range []string{meta.KeyFrame, meta.KeyResolution, meta.KeyViewport, meta.KeyViewName, meta.KeyCamera, meta.KeyElapsed} {
		t.Run(name, func(t *testing.T) {
			_, err := New(&probe{label: "bad", outputs: []string{name}, primary: name})
			if !errors.Is(err, ErrReservedName) {
				t.Fatalf("New() error = %v, want ErrReservedName", err)
			}
			var ce *ConfigError
			if !errors.As(err, &ce) || ce.Resource != name {
				t.Errorf("ConfigError = %+v, want resource %q", ce, name)
			}
		})
	}
}

// fixedDecl declares a fixed Declaration and draws nothing.
type fixedDecl struct {
	Base
	decl Declaration
}

func (f *fixedDecl) SpecifyResources() Declaration { return f.decl }

func (f *fixedDecl) Draw(Renderer) (*target.Handle, error) { return nil, nil }

func TestLastUsedAndFreePoints(t *testing.T) {
	p := mustPlan(t,
		&probe{label: "g", outputs: []string{"depth", "albedo"}, primary: "albedo"},
		&probe{label: "light", inputs: []Input{{Name: "albedo"}}, outputs: []string{"lit"}, primary: "lit"},
		&probe{label: "fog", inputs: []Input{{Name: "depth"}, {Name: "lit"}}, outputs: []string{"final"}, primary: "final"},
	)

	wantLast := map[string]int{"depth": 2, "albedo": 1, "lit": 2, "final": 2}
	for name, want := range wantLast {
		if got, _ := p.LastUsed(name); got != want {
			t.Errorf("LastUsed(%q) = %d, want %d", name, got, want)
		}
	}

	want := []FreePoint{{"albedo", 1}, {"depth", 2}, {"lit", 2}, {"final", 2}}
	if got := p.FreePoints(); !slices.Equal(got, want) {
		t.Errorf("FreePoints() = %v, want %v", got, want)
	}
	if got := p.Resources(); !slices.Equal(got, []string{"depth", "albedo", "lit", "final"}) {
		t.Errorf("Resources() = %v", got)
	}
}

func TestRedeclarationExtendsLastUse(t *testing.T) {
	p := mustPlan(t,
		&probe{label: "a", outputs: []string{"color"}, primary: "color"},
		&probe{label: "b", outputs: []string{"other"}},
		&probe{label: "c", outputs: []string{"color"}, primary: "color"},
	)
	if got, _ := p.LastUsed("color"); got != 2 {
		t.Errorf("LastUsed(color) = %d, want 2", got)
	}
	if got := p.Resources(); !slices.Equal(got, []string{"color", "other"}) {
		t.Errorf("Resources() = %v, want first-declaration order", got)
	}
}

func TestBranchIsolation(t *testing.T) {
	a := mustPlan(t, &probe{label: "base", outputs: []string{"scene"}, primary: "scene"})

	b, err := a.Then(&probe{label: "x", inputs: []Input{{Name: "scene"}}, outputs: []string{"bx"}, primary: "bx"})
	if err != nil {
		t.Fatal(err)
	}
	c, err := a.Then(&probe{label: "y", inputs: []Input{{Name: "scene"}}, outputs: []string{"cy"}, primary: "cy"})
	if err != nil {
		t.Fatal(err)
	}
	b2, err := b.Then(&probe{label: "z", inputs: []Input{{Name: "scene"}}, outputs: []string{"bz"}})
	if err != nil {
		t.Fatal(err)
	}

	if got := c.Resources(); !slices.Equal(got, []string{"scene", "cy"}) {
		t.Errorf("C resources = %v, want [scene cy]", got)
	}
	if got, _ := c.LastUsed("scene"); got != 1 {
		t.Errorf("C LastUsed(scene) = %d, want 1", got)
	}
	if got, _ := b2.LastUsed("scene"); got != 2 {
		t.Errorf("B2 LastUsed(scene) = %d, want 2", got)
	}
	if c.Len() != 2 || b.Len() != 2 || a.Len() != 1 {
		t.Errorf("Len() a=%d b=%d c=%d, want 1 2 2", a.Len(), b.Len(), c.Len())
	}
	if _, ok := c.Resource("bx"); ok {
		t.Error("C sees B's resource bx")
	}
	if c.Components()[1].(*probe).label != "y" {
		t.Error("C component list changed by appends to B")
	}
}

func TestDeclarationIsCopied(t *testing.T) {
	pr := &probe{label: "a", outputs: []string{"color"}, primary: "color", shape: &target.Descriptor{Width: 4, Height: 4}}
	p := mustPlan(t, pr)
	pr.shape.Width = 99
	if got := p.OutputShape().Width; got != 4 {
		t.Errorf("OutputShape().Width = %d, want 4", got)
	}
	p.OutputShape().Width = 7
	if got := p.OutputShape().Width; got != 4 {
		t.Errorf("OutputShape() exposes internal state: Width = %d", got)
	}
}

func TestDescribe(t *testing.T) {
	p := mustPlan(t,
		&probe{label: "a", outputs: []string{"depth"}, primary: "depth"},
		&probe{label: "b", inputs: []Input{{Name: "depth"}, {Name: "hist", Optional: true}}, outputs: []string{"final"}, primary: "final"},
	)
	got := p.Describe()
	for _, want := range []string{
		" 0 *plan.probe out=[depth*]\n",
		" 1 *plan.probe in=[depth hist?] out=[final*] free=[depth final]\n",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("Describe() = %q, missing %q", got, want)
		}
	}
}
