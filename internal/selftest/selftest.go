package selftest

import (
	"context"
	"time"

	"github.com/coreman2200/funtimes-braillecell/internal/braille"
)

type Kind string

const (
	None      Kind = ""
	DotSweep  Kind = "dot_sweep" // each single-dot mask in position order
	WholeCell Kind = "whole_cell"
)

// Parse matches a line against the self-test keyword, case-sensitive and
// exact. "<keyword>" runs a dot sweep, "<keyword> ALL" pulses the whole cell.
func Parse(line, keyword string) Kind {
	switch {
	case keyword == "":
		return None
	case line == keyword:
		return DotSweep
	case line == keyword+" ALL":
		return WholeCell
	}
	return None
}

// Renderer is the raw-mask primitive of the sequencer.
type Renderer interface {
	RenderMask(ctx context.Context, m braille.DotMask) error
	Pause(ctx context.Context, d time.Duration) error
}

type Plan struct {
	Kind  Kind
	Pause time.Duration // between steps
}

type Runner struct {
	plan Plan
	step int
	r    Renderer
}

func NewRunner(r Renderer, plan Plan) *Runner { return &Runner{plan: plan, r: r} }

// Step renders the next mask; returns false when complete.
func (r *Runner) Step(ctx context.Context) (bool, error) {
	var m braille.DotMask
	switch r.plan.Kind {
	case DotSweep:
		if r.step >= braille.CellDots {
			return false, nil
		}
		m = braille.Single(r.step)
	case WholeCell:
		if r.step >= 1 {
			return false, nil
		}
		m = braille.MaskBits
	default:
		return false, nil
	}
	if r.step > 0 {
		if err := r.r.Pause(ctx, r.plan.Pause); err != nil {
			return false, err
		}
	}
	r.step++
	if err := r.r.RenderMask(ctx, m); err != nil {
		return false, err
	}
	return true, nil
}

// Run steps until the plan is exhausted or ctx ends.
func (r *Runner) Run(ctx context.Context) error {
	for {
		more, err := r.Step(ctx)
		if err != nil || !more {
			return err
		}
	}
}
