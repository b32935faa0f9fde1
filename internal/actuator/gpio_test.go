package actuator_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpiotest"
	"periph.io/x/conn/v3/physic"

	. "github.com/coreman2200/funtimes-braillecell/internal/actuator"
)

func testPins() ([ChannelCount]*gpiotest.Pin, [ChannelCount]gpio.PinOut) {
	var raw [ChannelCount]*gpiotest.Pin
	var out [ChannelCount]gpio.PinOut
	for i := range raw {
		raw[i] = &gpiotest.Pin{N: "DOT" + string(rune('1'+i)), Num: i, L: gpio.High}
		out[i] = raw[i]
	}
	return raw, out
}

func TestGPIOStartsLow(t *testing.T) {
	raw, pins := testPins()
	_, err := NewGPIOPins(pins, 0)
	require.NoError(t, err)
	for _, p := range raw {
		assert.Equal(t, gpio.Low, p.L, p.N)
	}
}

func TestGPIOStrength(t *testing.T) {
	raw, pins := testPins()
	g, err := NewGPIOPins(pins, 2*physic.KiloHertz)
	require.NoError(t, err)

	require.NoError(t, g.Energize(0, 255))
	assert.Equal(t, gpio.High, raw[0].L)

	require.NoError(t, g.Energize(1, 128))
	assert.Equal(t, Duty(128), raw[1].D)
	assert.Equal(t, 2*physic.KiloHertz, raw[1].F)

	require.NoError(t, g.Release(0))
	assert.Equal(t, gpio.Low, raw[0].L)

	assert.Error(t, g.Energize(Channel(6), 10))
}

func TestGPIOUnwiredChannelIgnored(t *testing.T) {
	raw, pins := testPins()
	pins[3] = nil
	g, err := NewGPIOPins(pins, 0)
	require.NoError(t, err)
	assert.NoError(t, g.Energize(3, 255))
	assert.NoError(t, g.Release(3))
	assert.Equal(t, gpio.High, raw[3].L, "unwired pin is untouched")
}

func TestGPIOCloseReleases(t *testing.T) {
	raw, pins := testPins()
	g, err := NewGPIOPins(pins, 0)
	require.NoError(t, err)
	for ch := Channel(0); ch < ChannelCount; ch++ {
		require.NoError(t, g.Energize(ch, 255))
	}
	require.NoError(t, g.Close())
	for _, p := range raw {
		assert.Equal(t, gpio.Low, p.L, p.N)
	}
}

func TestDutyScale(t *testing.T) {
	assert.Equal(t, gpio.Duty(0), Duty(0))
	assert.Equal(t, gpio.DutyMax, Duty(255))
	assert.True(t, Duty(1).Valid())
}
