package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreman2200/funtimes-braillecell/internal/actuator"
	. "github.com/coreman2200/funtimes-braillecell/internal/config"
	diag "github.com/coreman2200/funtimes-braillecell/internal/diagnostics"
)

const sample = `
driver: gpio
log:
  level: debug
dot_map: [5, 4, 3, 2, 1, 0]
channels:
  - {pin: GPIO5, strength: 200}
  - {pin: GPIO6, strength: 200}
  - {pin: GPIO13, strength: 180}
  - {pin: GPIO19, strength: 180}
  - {pin: GPIO26, strength: 255}
  - {pin: GPIO0, disabled: true}
timing:
  dot_on: 250ms
  dot_gap: 0s
  char_gap: 150ms
  word_gap: 1s
input:
  kind: serial
`

func write(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	c := Default()
	assert.NoError(t, c.Validate())
	assert.Equal(t, actuator.Identity(), c.Layout())
}

func TestLoadOverDefaults(t *testing.T) {
	c, err := Load(write(t, sample))
	require.NoError(t, err)

	assert.Equal(t, DriverGPIO, c.Driver)
	assert.Equal(t, "debug", c.Log.Level)
	assert.Equal(t, 250*time.Millisecond, c.Timing.DotOn)
	assert.Equal(t, time.Second, c.SequenceTiming().WordGap)
	assert.Equal(t, InputSerial, c.Input.Kind)
	assert.Equal(t, 115200, c.Input.Serial.Baud, "kept from defaults")
	assert.Equal(t, "TEST", c.SelfTest.Keyword)

	l := c.Layout()
	assert.Equal(t, actuator.Channel(5), l.DotMap[0])
	assert.Equal(t, uint8(180), l.Channels[2].Strength)
	assert.False(t, l.Channels[5].Enabled)
	assert.Equal(t, "", c.Pins()[5])
	assert.Equal(t, -1, c.Outputs()[5])

	require.NoError(t, c.Validate())
	var warned bool
	for _, d := range c.Check() {
		if d.Code == "CFG.DISABLED" {
			warned = true
			assert.Equal(t, diag.Warn, d.Severity)
			assert.Equal(t, []int{0}, d.Evidence["positions"])
		}
	}
	assert.True(t, warned)
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.yaml")
	c := Default()
	c.Timing.CharGap = 275 * time.Millisecond
	c.Channels[3].Disabled = true
	require.NoError(t, Save(path, c))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), "char_gap: 275ms")

	back, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, c, back)
}

func TestLoadRejectsBadYAML(t *testing.T) {
	_, err := Load(write(t, "channels:\n  - {strength: 300}\n"))
	assert.Error(t, err)

	_, err = Load(write(t, "dot_map: [0, 1, 2]\n"))
	assert.Error(t, err, "dot map must list six channels")

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadOrDefault(t *testing.T) {
	c, found, err := LoadOrDefault(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.False(t, found)
	assert.Equal(t, Default(), c)

	c, found, err = LoadOrDefault(write(t, "driver: gpio\ndot_map: [0, 1, 2]\n"))
	require.Error(t, err, "a malformed file never falls back to defaults")
	assert.NotErrorIs(t, err, os.ErrNotExist)
	assert.True(t, found)
	assert.Nil(t, c)

	c, found, err = LoadOrDefault(write(t, sample))
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, DriverGPIO, c.Driver)
}

func TestValidate(t *testing.T) {
	cases := []struct {
		Name   string
		Mutate func(c *Config)
	}{
		{"duplicate channel", func(c *Config) { c.DotMap[1] = 0 }},
		{"channel out of range", func(c *Config) { c.DotMap[4] = 6 }},
		{"negative channel", func(c *Config) { c.DotMap[4] = -1 }},
		{"unknown driver", func(c *Config) { c.Driver = "spi" }},
		{"gpio pin missing", func(c *Config) { c.Driver = DriverGPIO; c.Channels[2].Pin = "" }},
		{"pca output shared", func(c *Config) { c.Driver = DriverPCA9685; c.Channels[2].Output = 1 }},
		{"pca output range", func(c *Config) { c.Driver = DriverPCA9685; c.Channels[2].Output = 16 }},
		{"negative timing", func(c *Config) { c.Timing.WordGap = -time.Second }},
		{"unknown input", func(c *Config) { c.Input.Kind = "bluetooth" }},
		{"mqtt topic", func(c *Config) { c.Input.Kind = InputMQTT; c.Input.MQTT.Topic = "" }},
	}
	for _, tc := range cases {
		t.Run(tc.Name, func(t *testing.T) {
			c := Default()
			tc.Mutate(c)
			err := c.Validate()
			assert.ErrorIs(t, err, ErrInvalid)
			assert.NotEmpty(t, diag.Errors(c.Check()))
		})
	}
}

func TestCheckSuggestsFixes(t *testing.T) {
	c := Default()
	c.Driver = DriverGPIO
	c.DotMap[1] = 0
	c.Channels[4].Pin = ""

	fixes := map[string][]string{}
	for _, d := range diag.Errors(c.Check()) {
		fixes[d.Code] = d.SuggestedFixes
	}
	require.Contains(t, fixes, "CFG.DOTMAP")
	require.Contains(t, fixes, "CFG.PIN")
	assert.NotEmpty(t, fixes["CFG.DOTMAP"])
	assert.Contains(t, fixes["CFG.PIN"][0], "channels[4].pin")
}

func TestDisabledChannelNeedsNoPin(t *testing.T) {
	c := Default()
	c.Driver = DriverGPIO
	c.Channels[0] = Channel{Disabled: true}
	assert.NoError(t, c.Validate())
}
