package sequence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/coreman2200/funtimes-braillecell/internal/actuator"
	"github.com/coreman2200/funtimes-braillecell/internal/braille"
)

// NewPlayer validates the configuration and returns an idle Player.
func NewPlayer(cfg Config) (*Player, error) {
	if cfg.Driver == nil {
		return nil, errors.New("sequence: no driver")
	}
	if cfg.Waiter == nil {
		return nil, errors.New("sequence: no waiter")
	}
	if err := cfg.Layout.Validate(); err != nil {
		return nil, fmt.Errorf("sequence: %w", err)
	}
	t := cfg.Timing
	if t.DotOn < 0 || t.DotGap < 0 || t.CharGap < 0 || t.WordGap < 0 {
		return nil, fmt.Errorf("sequence: negative duration in %+v", t)
	}
	return &Player{
		State:  Idle,
		drv:    cfg.Driver,
		layout: cfg.Layout,
		timing: t,
		waiter: cfg.Waiter,
		hooks:  cfg.Hooks,
		log:    cfg.Log.With().Str("component", "sequence").Logger(),
	}, nil
}

// RenderMask pulses one cell: energize every enabled channel the mask
// addresses, hold for DotOn, release all channels, then wait DotGap.
//
// The release happens even if ctx ends during the hold.
func (p *Player) RenderMask(ctx context.Context, m braille.DotMask) error {
	m &= braille.MaskBits
	if p.hooks.OnMask != nil {
		p.hooks.OnMask(m)
	}
	for _, t := range p.layout.Targets(m) {
		if err := p.drv.Energize(t.Channel, t.Strength); err != nil {
			p.log.Warn().Err(err).Stringer("channel", t.Channel).Msg("energize failed")
		}
	}
	err := p.wait(ctx, PulseHold, p.timing.DotOn)
	p.releaseAll()
	if err != nil {
		return err
	}
	return p.wait(ctx, DotGap, p.timing.DotGap)
}

// PlayGlyph renders an encoded character: each mask followed by CharGap,
// or only WordGap for a word break.
func (p *Player) PlayGlyph(ctx context.Context, g braille.Glyph) error {
	if g.Empty() {
		return nil
	}
	if p.hooks.OnGlyph != nil {
		p.hooks.OnGlyph(g)
	}
	if g.WordBreak {
		return p.wait(ctx, WordGap, p.timing.WordGap)
	}
	for _, m := range g.Masks {
		if err := p.RenderMask(ctx, m); err != nil {
			return err
		}
		if err := p.wait(ctx, CharGap, p.timing.CharGap); err != nil {
			return err
		}
	}
	return nil
}

// PlayChar encodes r against mode and renders the result.
func (p *Player) PlayChar(ctx context.Context, r rune, mode *braille.Mode) error {
	return p.PlayGlyph(ctx, braille.Encode(r, mode))
}

// PlayLine renders a full line with fresh encoder state. It returns early
// only when ctx ends; unencodable characters are skipped.
func (p *Player) PlayLine(ctx context.Context, line string) error {
	p.State = Running
	defer func() { p.State = Idle }()

	mode := braille.Normal
	for _, r := range line {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := p.PlayChar(ctx, r, &mode); err != nil {
			return err
		}
	}
	p.log.Debug().Int("runes", len([]rune(line))).Msg("line done")
	return nil
}

// Pause waits d outside of any character, e.g. between self-test steps.
func (p *Player) Pause(ctx context.Context, d time.Duration) error {
	return p.wait(ctx, Pause, d)
}

// Stop forces every channel off.
func (p *Player) Stop() {
	p.releaseAll()
	p.State = Idle
}

func (p *Player) releaseAll() {
	if err := actuator.ReleaseAll(p.drv); err != nil {
		p.log.Warn().Err(err).Msg("release failed")
	}
}

func (p *Player) wait(ctx context.Context, kind Gap, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	if p.hooks.OnGap != nil {
		p.hooks.OnGap(kind, d)
	}
	return p.waiter.Wait(ctx, d)
}
