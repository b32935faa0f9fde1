package actuator

import (
	"fmt"
	"io"
	"sync"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/devices/v3/pca9685"
)

// pcaMax is the 12-bit full scale of the PCA9685 counters.
const pcaMax = 4095

// PCA9685 drives the six channels from outputs of a PCA9685 PWM expander,
// for boards whose host pins are too few or too unreliable at boot.
type PCA9685 struct {
	mu      sync.Mutex
	closer  io.Closer
	dev     *pca9685.Dev
	outputs [ChannelCount]int
}

// OpenPCA9685 opens the I2C bus (empty name picks the first one) and hands
// it to NewPCA9685. The bus is closed with the driver.
func OpenPCA9685(busName string, addr uint16, freq physic.Frequency, outputs [ChannelCount]int) (*PCA9685, error) {
	bus, err := i2creg.Open(busName)
	if err != nil {
		return nil, fmt.Errorf("open i2c %q: %w", busName, err)
	}
	p, err := NewPCA9685(bus, addr, freq, outputs)
	if err != nil {
		_ = bus.Close()
		return nil, err
	}
	return p, nil
}

// NewPCA9685 sets the PWM frequency and maps channel i to expander output
// outputs[i]. A negative output leaves the channel unwired. If bus is an
// io.Closer, Close closes it.
func NewPCA9685(bus i2c.Bus, addr uint16, freq physic.Frequency, outputs [ChannelCount]int) (*PCA9685, error) {
	if addr == 0 {
		addr = pca9685.I2CAddr
	}
	if freq <= 0 {
		freq = DefaultPWMFreq
	}
	for i, o := range outputs {
		if o > 15 {
			return nil, fmt.Errorf("pca9685 output %d for %s out of range", o, Channel(i))
		}
	}
	dev, err := pca9685.NewI2C(bus, addr)
	if err != nil {
		return nil, fmt.Errorf("pca9685 at 0x%02x: %w", addr, err)
	}
	if err := dev.SetPwmFreq(freq); err != nil {
		return nil, fmt.Errorf("pca9685 set freq: %w", err)
	}
	p := &PCA9685{dev: dev, outputs: outputs}
	if c, ok := bus.(io.Closer); ok {
		p.closer = c
	}
	if err := ReleaseAll(p); err != nil {
		return nil, err
	}
	return p, nil
}

// pcaOff converts a 0..255 strength to the 12-bit off count.
func pcaOff(strength uint8) gpio.Duty {
	return gpio.Duty(int(strength) * pcaMax / 255)
}

func (p *PCA9685) Energize(ch Channel, strength uint8) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	out, ok := p.output(ch)
	if !ok {
		return nil
	}
	if strength == 255 {
		return p.dev.SetFullOn(out)
	}
	return p.dev.SetPwm(out, 0, pcaOff(strength))
}

func (p *PCA9685) Release(ch Channel) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	out, ok := p.output(ch)
	if !ok {
		return nil
	}
	return p.dev.SetFullOff(out)
}

func (p *PCA9685) Close() error {
	err := ReleaseAll(p)
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closer != nil {
		if cerr := p.closer.Close(); cerr != nil && err == nil {
			err = cerr
		}
		p.closer = nil
	}
	return err
}

func (p *PCA9685) output(ch Channel) (int, bool) {
	if !ch.Valid() || p.outputs[ch] < 0 {
		return 0, false
	}
	return p.outputs[ch], true
}
