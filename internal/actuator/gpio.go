package actuator

import (
	"fmt"
	"sync"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/physic"
)

// DefaultPWMFreq suits small vibration motors and solenoid drivers.
const DefaultPWMFreq = 1 * physic.KiloHertz

// GPIO drives each channel from a host pin. Strength 255 drives the pin high,
// anything lower is emitted as PWM at the configured frequency.
type GPIO struct {
	mu   sync.Mutex
	pins [ChannelCount]gpio.PinOut
	freq physic.Frequency
}

// NewGPIO looks pins up by name in the periph registry. An empty name leaves
// that channel unwired; it must then be disabled in the layout.
// host.Init must have run first.
func NewGPIO(names [ChannelCount]string, freq physic.Frequency) (*GPIO, error) {
	var pins [ChannelCount]gpio.PinOut
	for i, name := range names {
		if name == "" {
			continue
		}
		p := gpioreg.ByName(name)
		if p == nil {
			return nil, fmt.Errorf("gpio pin %q for %s not found", name, Channel(i))
		}
		pins[i] = p
	}
	return NewGPIOPins(pins, freq)
}

// NewGPIOPins wraps already resolved pins and drives them all low.
func NewGPIOPins(pins [ChannelCount]gpio.PinOut, freq physic.Frequency) (*GPIO, error) {
	if freq <= 0 {
		freq = DefaultPWMFreq
	}
	g := &GPIO{pins: pins, freq: freq}
	if err := ReleaseAll(g); err != nil {
		return nil, fmt.Errorf("gpio init: %w", err)
	}
	return g, nil
}

// Duty converts a 0..255 strength to a periph duty cycle.
func Duty(strength uint8) gpio.Duty {
	return gpio.Duty(int64(strength) * int64(gpio.DutyMax) / 255)
}

func (g *GPIO) Energize(ch Channel, strength uint8) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	p, err := g.pin(ch)
	if err != nil || p == nil {
		return err
	}
	switch strength {
	case 0:
		return p.Out(gpio.Low)
	case 255:
		return p.Out(gpio.High)
	}
	return p.PWM(Duty(strength), g.freq)
}

func (g *GPIO) Release(ch Channel) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	p, err := g.pin(ch)
	if err != nil || p == nil {
		return err
	}
	return p.Out(gpio.Low)
}

func (g *GPIO) Close() error {
	err := ReleaseAll(g)
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, p := range g.pins {
		if p == nil {
			continue
		}
		if herr := p.Halt(); herr != nil && err == nil {
			err = herr
		}
	}
	return err
}

func (g *GPIO) pin(ch Channel) (gpio.PinOut, error) {
	if !ch.Valid() {
		return nil, fmt.Errorf("channel %d out of range", ch)
	}
	return g.pins[ch], nil
}
