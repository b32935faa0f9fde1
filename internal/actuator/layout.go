package actuator

import (
	"errors"
	"fmt"

	"github.com/coreman2200/funtimes-braillecell/internal/braille"
)

// ChannelConfig is the drive setting of one channel.
type ChannelConfig struct {
	Strength uint8
	// Disabled channels are never energized but still count as off.
	Enabled bool
}

// Layout binds cell positions to channels. It is built once at startup and
// shared read-only.
type Layout struct {
	// DotMap[i] is the channel behind cell position i.
	DotMap   [braille.CellDots]Channel
	Channels [ChannelCount]ChannelConfig
}

// Identity returns a layout with position i on channel i, all enabled at
// full strength.
func Identity() Layout {
	var l Layout
	for i := range l.DotMap {
		l.DotMap[i] = Channel(i)
		l.Channels[i] = ChannelConfig{Strength: 255, Enabled: true}
	}
	return l
}

// ErrLayout reports a dot map that is not a permutation of the channels.
var ErrLayout = errors.New("invalid dot map")

// Validate checks that DotMap is a bijection onto the six channels.
func (l Layout) Validate() error {
	var seen [ChannelCount]bool
	for dot, ch := range l.DotMap {
		if !ch.Valid() {
			return fmt.Errorf("%w: dot %d -> %s out of range", ErrLayout, dot, ch)
		}
		if seen[ch] {
			return fmt.Errorf("%w: %s mapped twice", ErrLayout, ch)
		}
		seen[ch] = true
	}
	return nil
}

// Target is one channel to energize for a mask.
type Target struct {
	Channel  Channel
	Strength uint8
}

// Targets resolves the enabled channels a mask addresses, in position order.
func (l Layout) Targets(m braille.DotMask) []Target {
	out := make([]Target, 0, braille.CellDots)
	for dot := 0; dot < braille.CellDots; dot++ {
		if !m.Has(dot) {
			continue
		}
		ch := l.DotMap[dot]
		cfg := l.Channels[ch]
		if !cfg.Enabled {
			continue
		}
		out = append(out, Target{Channel: ch, Strength: cfg.Strength})
	}
	return out
}

// Disabled lists the cell positions whose channel is disabled.
func (l Layout) Disabled() []int {
	var out []int
	for dot, ch := range l.DotMap {
		if ch.Valid() && !l.Channels[ch].Enabled {
			out = append(out, dot)
		}
	}
	return out
}
