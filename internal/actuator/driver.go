package actuator

import "fmt"

// ChannelCount is fixed: one actuator per cell position.
const ChannelCount = 6

// Channel identifies one physical actuator, 0..ChannelCount-1.
type Channel uint8

// Valid reports whether c addresses an existing actuator.
func (c Channel) Valid() bool { return c < ChannelCount }

func (c Channel) String() string { return fmt.Sprintf("ch%d", uint8(c)) }

// Driver abstracts the actuator outputs.
type Driver interface {
	// Energize drives channel ch at the given strength (0..255).
	Energize(ch Channel, strength uint8) error
	// Release de-energizes channel ch.
	Release(ch Channel) error
	// Close releases resources. Outputs are left de-energized.
	Close() error
}

// ReleaseAll de-energizes every channel, continuing past failures.
// It returns the first error seen.
func ReleaseAll(d Driver) error {
	var first error
	for ch := Channel(0); ch < ChannelCount; ch++ {
		if err := d.Release(ch); err != nil && first == nil {
			first = fmt.Errorf("release %s: %w", ch, err)
		}
	}
	return first
}
