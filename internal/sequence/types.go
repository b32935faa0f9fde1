package sequence

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/coreman2200/funtimes-braillecell/internal/actuator"
	"github.com/coreman2200/funtimes-braillecell/internal/braille"
)

// Timing holds the fixed pulse and gap durations. Zero durations are skipped.
type Timing struct {
	DotOn   time.Duration // whole cell energized
	DotGap  time.Duration // after every pulse, before control returns
	CharGap time.Duration // after every mask of a character
	WordGap time.Duration // for a space, instead of CharGap
}

// Gap names the kind of wait being taken.
type Gap string

const (
	PulseHold Gap = "pulse"
	DotGap    Gap = "dot"
	CharGap   Gap = "char"
	WordGap   Gap = "word"
	Pause     Gap = "pause"
)

// Waiter blocks for d or until ctx is done, whichever comes first.
type Waiter interface {
	Wait(ctx context.Context, d time.Duration) error
}

// PlayerState enumerates sequencer states.
type PlayerState string

const (
	Idle    PlayerState = "idle"
	Running PlayerState = "running"
)

// Hooks are optional observers called synchronously, in render order.
type Hooks struct {
	// A character is about to be rendered.
	OnGlyph func(g braille.Glyph)
	// A mask is about to be energized.
	OnMask func(m braille.DotMask)
	// A wait is about to start.
	OnGap func(kind Gap, d time.Duration)
}

// Config wires a Player. Driver, Waiter and Timing are required.
type Config struct {
	Driver actuator.Driver
	Layout actuator.Layout
	Timing Timing
	Waiter Waiter
	Hooks  Hooks
	Log    zerolog.Logger
}

// Player renders text on one cell. It is strictly sequential: every call
// blocks until its last wait has elapsed.
type Player struct {
	State PlayerState

	drv    actuator.Driver
	layout actuator.Layout
	timing Timing
	waiter Waiter
	hooks  Hooks
	log    zerolog.Logger
}
