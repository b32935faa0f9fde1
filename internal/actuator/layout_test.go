package actuator_test

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/coreman2200/funtimes-braillecell/internal/actuator"
	"github.com/coreman2200/funtimes-braillecell/internal/actuator/fake"
	"github.com/coreman2200/funtimes-braillecell/internal/braille"
)

func TestLayoutValidate(t *testing.T) {
	l := actuator.Identity()
	assert.NoError(t, l.Validate())

	l.DotMap[2] = 1
	assert.ErrorIs(t, l.Validate(), actuator.ErrLayout)

	l = actuator.Identity()
	l.DotMap[0] = 9
	assert.ErrorIs(t, l.Validate(), actuator.ErrLayout)
}

func TestLayoutTargets(t *testing.T) {
	l := actuator.Identity()
	l.DotMap = [braille.CellDots]actuator.Channel{5, 4, 3, 2, 1, 0}
	l.Channels[4] = actuator.ChannelConfig{Strength: 90, Enabled: true}
	l.Channels[3].Enabled = false

	got := l.Targets(0b000111)
	assert.Equal(t, []actuator.Target{
		{Channel: 5, Strength: 255},
		{Channel: 4, Strength: 90},
	}, got, "position 2 sits on disabled channel 3")
	assert.Equal(t, []int{2}, l.Disabled())
	assert.Empty(t, l.Targets(0))
}

func TestReleaseAll(t *testing.T) {
	d := fake.NewDriver(nil)
	_ = d.Energize(2, 200)
	assert.NoError(t, actuator.ReleaseAll(d))
	assert.Equal(t, 6, d.Log.Count(fake.Off))
	assert.Empty(t, d.Energized())
}

func TestSimLevels(t *testing.T) {
	s := actuator.NewSim(zerolog.Nop())
	_ = s.Energize(1, 40)
	assert.Equal(t, uint8(40), s.Levels()[1])
	_ = s.Release(1)
	assert.Zero(t, s.Levels()[1])
}
