package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/coreman2200/funtimes-braillecell/internal/actuator"
	"github.com/coreman2200/funtimes-braillecell/internal/braille"
	"github.com/coreman2200/funtimes-braillecell/internal/sequence"
)

const (
	DriverGPIO    = "gpio"
	DriverPCA9685 = "pca9685"
	DriverSim     = "sim"

	InputStdin  = "stdin"
	InputSerial = "serial"
	InputMQTT   = "mqtt"
)

type Channel struct {
	Pin      string `yaml:"pin,omitempty"` // periph pin name, gpio driver
	Output   int    `yaml:"output"`        // expander output, pca9685 driver
	Strength uint8  `yaml:"strength"`
	// Disabled channels are skipped during actuation, e.g. strapping pins
	// that glitch at boot.
	Disabled bool `yaml:"disabled,omitempty"`
}

type Timing struct {
	DotOn   time.Duration `yaml:"dot_on"`
	DotGap  time.Duration `yaml:"dot_gap"`
	CharGap time.Duration `yaml:"char_gap"`
	WordGap time.Duration `yaml:"word_gap"`
}

type PCA9685 struct {
	Bus     string `yaml:"bus,omitempty"` // e.g. "/dev/i2c-1"; empty picks the first bus
	Address uint16 `yaml:"address"`
}

type Serial struct {
	Port string `yaml:"port,omitempty"` // empty: first /dev/ttyACM*, then /dev/ttyUSB*
	Baud int    `yaml:"baud"`
}

type MQTT struct {
	Broker   string `yaml:"broker"` // e.g. tcp://localhost:1883
	Topic    string `yaml:"topic"`
	ClientID string `yaml:"client_id"`
	QoS      byte   `yaml:"qos"`
	User     string `yaml:"user,omitempty"`
	Password string `yaml:"password,omitempty"`
}

type Input struct {
	Kind   string `yaml:"kind"` // "stdin" | "serial" | "mqtt"
	Serial Serial `yaml:"serial"`
	MQTT   MQTT   `yaml:"mqtt"`
}

type SelfTest struct {
	Keyword string        `yaml:"keyword"`
	Pause   time.Duration `yaml:"pause"`
}

type Monitor struct {
	Addr string `yaml:"addr,omitempty"` // empty disables the monitor
}

type Log struct {
	Level string `yaml:"level"`
}

type Config struct {
	Driver   string   `yaml:"driver"` // "gpio" | "pca9685" | "sim"
	PWMHz    int      `yaml:"pwm_hz"`
	PCA9685  PCA9685  `yaml:"pca9685"`
	Log      Log      `yaml:"log"`
	Monitor  Monitor  `yaml:"monitor"`
	Input    Input    `yaml:"input"`
	SelfTest SelfTest `yaml:"self_test"`

	Channels [actuator.ChannelCount]Channel `yaml:"channels"`

	// DotMap[i] is the channel index wired to cell position i.
	DotMap [braille.CellDots]int `yaml:"dot_map"`
	Timing Timing                `yaml:"timing"`
}

// Default returns a configuration that runs on the simulator.
func Default() *Config {
	c := &Config{
		Driver:  DriverSim,
		PWMHz:   1000,
		PCA9685: PCA9685{Address: 0x40},
		Log:     Log{Level: "info"},
		Input: Input{
			Kind:   InputStdin,
			Serial: Serial{Baud: 115200},
			MQTT: MQTT{
				Broker:   "tcp://localhost:1883",
				Topic:    "braille/text",
				ClientID: "brailled",
				QoS:      1,
			},
		},
		SelfTest: SelfTest{Keyword: "TEST", Pause: 500 * time.Millisecond},
		Timing: Timing{
			DotOn:   400 * time.Millisecond,
			DotGap:  100 * time.Millisecond,
			CharGap: 300 * time.Millisecond,
			WordGap: 700 * time.Millisecond,
		},
	}
	pins := [actuator.ChannelCount]string{"GPIO17", "GPIO27", "GPIO22", "GPIO23", "GPIO24", "GPIO25"}
	for i := range c.Channels {
		c.Channels[i] = Channel{Pin: pins[i], Output: i, Strength: 255}
		c.DotMap[i] = i
	}
	return c
}

// Load reads a YAML file over the defaults.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	c := Default()
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// LoadOrDefault is Load, except that a missing file yields Default with
// found == false. Any other failure is returned.
func LoadOrDefault(path string) (c *Config, found bool, err error) {
	c, err = Load(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return Default(), false, nil
	case err != nil:
		return nil, true, err
	}
	return c, true, nil
}

func Save(path string, c *Config) error {
	b, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0644)
}

// Layout converts the channel section into the actuator layout.
// Out-of-range map entries are passed through for Layout.Validate to reject.
func (c *Config) Layout() actuator.Layout {
	var l actuator.Layout
	for dot, ch := range c.DotMap {
		if ch < 0 || ch > 255 {
			ch = 255
		}
		l.DotMap[dot] = actuator.Channel(ch)
	}
	for i, ch := range c.Channels {
		l.Channels[i] = actuator.ChannelConfig{Strength: ch.Strength, Enabled: !ch.Disabled}
	}
	return l
}

func (c *Config) SequenceTiming() sequence.Timing {
	return sequence.Timing{
		DotOn:   c.Timing.DotOn,
		DotGap:  c.Timing.DotGap,
		CharGap: c.Timing.CharGap,
		WordGap: c.Timing.WordGap,
	}
}

// Pins lists the GPIO pin names of enabled channels; disabled ones are blank.
func (c *Config) Pins() [actuator.ChannelCount]string {
	var out [actuator.ChannelCount]string
	for i, ch := range c.Channels {
		if !ch.Disabled {
			out[i] = ch.Pin
		}
	}
	return out
}

// Outputs lists the PCA9685 outputs of enabled channels; disabled ones are -1.
func (c *Config) Outputs() [actuator.ChannelCount]int {
	var out [actuator.ChannelCount]int
	for i, ch := range c.Channels {
		out[i] = ch.Output
		if ch.Disabled {
			out[i] = -1
		}
	}
	return out
}

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid config")
