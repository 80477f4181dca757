// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package passes

import (
	"encoding/json"
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/gogpu/gputypes"
	"golang.org/x/image/draw"

	"github.com/gogpu/frameplan/backend/software"
	"github.com/gogpu/frameplan/plan"
	"github.com/gogpu/frameplan/render"
)

func newRenderer(t *testing.T) *render.Renderer {
	t.Helper()
	dev := software.New(software.WithScaler(draw.NearestNeighbor))
	t.Cleanup(dev.Close)
	r, err := render.New(render.WithDevice(dev), render.WithScreen(8, 4))
	if err != nil {
		t.Fatalf("render.New() error = %v", err)
	}
	t.Cleanup(r.Close)
	return r
}

func renderPlan(t *testing.T, r *render.Renderer, components ...plan.Component) *image.RGBA {
	t.Helper()
	p, err := plan.New(components...)
	if err != nil {
		t.Fatalf("plan.New() error = %v", err)
	}
	if err := r.SetPlan(p); err != nil {
		t.Fatalf("SetPlan() error = %v", err)
	}
	if err := r.Render(); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	img, err := r.Snapshot()
	if err != nil {
		t.Fatalf("Snapshot() error = %v", err)
	}
	return img
}

func TestClearDefaultColor(t *testing.T) {
	r := newRenderer(t)
	img := renderPlan(t, r, NewClear("background"))

	if got := img.RGBAAt(3, 2); got != (color.RGBA{A: 255}) {
		t.Errorf("pixel = %v, want opaque black", got)
	}
	e, ok := r.Settings().Lookup("background.color")
	if !ok {
		t.Fatal("setting background.color not registered")
	}
	if got := e.Format(); got != "[0 0 0 1]" {
		t.Errorf("Format() = %q, want [0 0 0 1]", got)
	}
}

func TestClearThenCopy(t *testing.T) {
	r := newRenderer(t)
	p, err := plan.New(NewClear("background"), NewCopy("background", "final"))
	if err != nil {
		t.Fatalf("plan.New() error = %v", err)
	}
	if err := r.SetPlan(p); err != nil {
		t.Fatal(err)
	}
	err = r.ApplySettings(map[string]json.RawMessage{"background.color": json.RawMessage(`[0, 1, 0, 1]`)})
	if err != nil {
		t.Fatalf("ApplySettings() error = %v", err)
	}
	if err := r.Render(); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	img, err := r.Snapshot()
	if err != nil {
		t.Fatal(err)
	}
	if got := img.RGBAAt(7, 3); got != (color.RGBA{G: 255, A: 255}) {
		t.Errorf("pixel = %v, want green", got)
	}

	// background is released at the copy, final after compositing; both
	// have the same shape and end up in the same bucket.
	if got := r.Pool().Stats(); got.Active != 0 || got.Idle != 2 {
		t.Errorf("Stats() = %v, want 0 active and 2 idle", got)
	}
}

func TestCopyInPlace(t *testing.T) {
	r := newRenderer(t)
	p, err := plan.New(NewClear("color"), NewCopy("color", "color"))
	if err != nil {
		t.Fatalf("plan.New() error = %v", err)
	}
	if err := r.SetPlan(p); err != nil {
		t.Fatal(err)
	}

	for i := range 3 {
		if err := r.Render(); err != nil {
			t.Fatalf("Render() #%d error = %v", i, err)
		}
	}
	img, err := r.Snapshot()
	if err != nil {
		t.Fatal(err)
	}
	if got := img.RGBAAt(0, 0); got != (color.RGBA{A: 255}) {
		t.Errorf("pixel = %v, want opaque black", got)
	}
	if got := r.Pool().Stats(); got.Active != 0 || got.Allocations != 2 {
		t.Errorf("Stats() = %v, want 0 active and 2 allocations", got)
	}
}

func TestImageUpload(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 2, 1))
	src.SetRGBA(0, 0, color.RGBA{R: 255, A: 255})
	src.SetRGBA(1, 0, color.RGBA{B: 255, A: 255})

	img := renderPlan(t, newRenderer(t), NewImage("picture", src))

	if got := img.RGBAAt(0, 0); got != (color.RGBA{R: 255, A: 255}) {
		t.Errorf("left pixel = %v, want red", got)
	}
	if got := img.RGBAAt(7, 3); got != (color.RGBA{B: 255, A: 255}) {
		t.Errorf("right pixel = %v, want blue", got)
	}
}

func TestImageNoSource(t *testing.T) {
	r := newRenderer(t)
	p, err := plan.New(NewImage("picture", nil))
	if err != nil {
		t.Fatal(err)
	}
	if err := r.SetPlan(p); err != nil {
		t.Fatal(err)
	}
	var de *plan.DrawError
	if err := r.Render(); !errors.As(err, &de) {
		t.Errorf("Render() error = %v, want *plan.DrawError", err)
	}
}

func TestRestoreRequiresDepth(t *testing.T) {
	_, err := plan.New(NewClear("scene"), NewRestore("scene"))
	if !errors.Is(err, plan.ErrIncompatibleInput) {
		t.Errorf("plan.New() error = %v, want ErrIncompatibleInput", err)
	}

	scene := NewClear("scene")
	scene.Target.DepthFormat = gputypes.TextureFormatDepth24PlusStencil8
	scene.Color = gputypes.Color{R: 1, A: 1}

	r := newRenderer(t)
	img := renderPlan(t, r, scene, NewRestore("scene"))
	if got := img.RGBAAt(0, 0); got != (color.RGBA{R: 255, A: 255}) {
		t.Errorf("pixel = %v, want red", got)
	}
	if active := r.Pool().Active(); len(active) != 0 {
		t.Errorf("Active() = %v, want none", active)
	}
}

func TestDrawUnpublishedInput(t *testing.T) {
	r := newRenderer(t)
	tests := []struct {
		name string
		c    plan.Component
	}{
		{"copy", NewCopy("missing", "out")},
		{"restore", NewRestore("missing")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tt.c.Draw(r); !errors.Is(err, ErrNotPublished) {
				t.Errorf("Draw() error = %v, want ErrNotPublished", err)
			}
		})
	}
}
