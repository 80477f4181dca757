// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package plan_test

import (
	"errors"
	"fmt"

	"github.com/gogpu/gputypes"
	"golang.org/x/image/draw"

	"github.com/gogpu/frameplan/backend/software"
	"github.com/gogpu/frameplan/passes"
	"github.com/gogpu/frameplan/plan"
	"github.com/gogpu/frameplan/render"
)

func ExamplePlan_Describe() {
	p, err := plan.New(passes.NewClear("background"), passes.NewCopy("background", "final"))
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Print(p.Describe())
	// Output:
	//  0 *passes.Clear out=[background*]
	//  1 *passes.Copy in=[background] out=[final*] free=[background final]
}

func ExampleAppend_missingInput() {
	base, _ := plan.New(passes.NewClear("background"))
	_, err := plan.Append(base, passes.NewCopy("gbuffer", "final"))

	var ce *plan.ConfigError
	fmt.Println(errors.As(err, &ce), errors.Is(err, plan.ErrMissingInput))
	fmt.Println(ce.Component, ce.Resource)
	// Output:
	// true true
	// *passes.Copy gbuffer
}

func ExamplePlan_Execute() {
	dev := software.New(software.WithScaler(draw.NearestNeighbor))
	defer dev.Close()
	r, err := render.New(render.WithDevice(dev), render.WithScreen(4, 4))
	if err != nil {
		fmt.Println(err)
		return
	}
	defer r.Close()

	bg := passes.NewClear("background")
	bg.Color = gputypes.Color{B: 1, A: 1}
	p, _ := plan.New(bg, passes.NewCopy("background", "final"))

	out, err := p.Execute(r)
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Println(out.Resource(), out.Pending(), r.Pool().Stats().Active)

	if err := out.Release(r); err != nil {
		fmt.Println(err)
		return
	}
	fmt.Println(out.Pending(), r.Pool().Stats().Active)
	// Output:
	// final true 1
	// false 0
}
