package actuator

import (
	"fmt"

	"github.com/rs/zerolog"
	"periph.io/x/host/v3"
)

// InitHost loads the periph host drivers. Required before NewGPIO or
// OpenPCA9685 can find pins and buses.
func InitHost(log zerolog.Logger) error {
	state, err := host.Init()
	if err != nil {
		return fmt.Errorf("periph host init: %w", err)
	}
	for _, d := range state.Loaded {
		log.Debug().Str("periph", d.String()).Msg("driver loaded")
	}
	for _, f := range state.Failed {
		log.Debug().Str("periph", f.D.String()).Err(f.Err).Msg("driver failed")
	}
	return nil
}
