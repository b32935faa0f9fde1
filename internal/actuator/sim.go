package actuator

import (
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

// Sim is a hardware-free driver that logs a compact picture of the cell each
// time it changes. Used on desktops and as the fallback when bring-up fails.
type Sim struct {
	mu     sync.Mutex
	log    zerolog.Logger
	levels [ChannelCount]uint8
	count  int
}

func NewSim(log zerolog.Logger) *Sim {
	return &Sim{log: log.With().Str("driver", "sim").Logger()}
}

func (s *Sim) Energize(ch Channel, strength uint8) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !ch.Valid() {
		return nil
	}
	s.levels[ch] = strength
	s.count++
	s.log.Debug().Int("pulse", s.count).Str("cell", s.picture()).Msg("energize")
	return nil
}

func (s *Sim) Release(ch Channel) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !ch.Valid() || s.levels[ch] == 0 {
		return nil
	}
	s.levels[ch] = 0
	s.log.Debug().Str("cell", s.picture()).Msg("release")
	return nil
}

func (s *Sim) Close() error { return nil }

// Levels returns a copy of the channel levels.
func (s *Sim) Levels() [ChannelCount]uint8 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.levels
}

// picture renders channels as "o" (on) / "." (off), channel 0 first.
func (s *Sim) picture() string {
	var b strings.Builder
	for _, l := range s.levels {
		if l > 0 {
			b.WriteByte('o')
		} else {
			b.WriteByte('.')
		}
	}
	return b.String()
}
