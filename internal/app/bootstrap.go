package app

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"periph.io/x/conn/v3/physic"

	"github.com/coreman2200/funtimes-braillecell/internal/actuator"
	"github.com/coreman2200/funtimes-braillecell/internal/config"
	"github.com/coreman2200/funtimes-braillecell/internal/input"
	"github.com/coreman2200/funtimes-braillecell/internal/monitor"
	"github.com/coreman2200/funtimes-braillecell/internal/sequence"
)

type Core struct {
	Cfg     *config.Config
	Player  *sequence.Player
	Driver  actuator.Driver
	Monitor *monitor.Monitor // nil unless monitor.addr is set
	Source  input.Source

	// DriverName is the driver actually in use after any fallback.
	DriverName string
	log        zerolog.Logger
}

// Deps overrides pieces InitCore would otherwise build from the config.
type Deps struct {
	Driver actuator.Driver
	Source input.Source
	Waiter sequence.Waiter
}

// InitCore validates the configuration and brings up driver, monitor,
// player and line source.
func InitCore(ctx context.Context, cfg *config.Config, deps Deps, log zerolog.Logger) (*Core, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	c := &Core{Cfg: cfg, log: log}

	// 1) Actuators
	c.Driver, c.DriverName = deps.Driver, "custom"
	if c.Driver == nil {
		c.Driver, c.DriverName = OpenDriver(cfg, log)
	}

	// 2) Optional monitor wraps the real driver
	var hooks sequence.Hooks
	if cfg.Monitor.Addr != "" {
		c.Monitor = monitor.New(c.Driver, c.DriverName, log)
		c.Driver = c.Monitor
		hooks = c.Monitor.Hooks()
	}

	// 3) Player
	waiter := deps.Waiter
	if waiter == nil {
		waiter = sequence.RealWaiter()
	}
	p, err := sequence.NewPlayer(sequence.Config{
		Driver: c.Driver,
		Layout: cfg.Layout(),
		Timing: cfg.SequenceTiming(),
		Waiter: waiter,
		Hooks:  hooks,
		Log:    log,
	})
	if err != nil {
		_ = c.Driver.Close()
		return nil, err
	}
	c.Player = p

	// 4) Line source
	c.Source = deps.Source
	if c.Source == nil {
		src, err := OpenSource(ctx, cfg.Input, log)
		if err != nil {
			_ = c.Driver.Close()
			return nil, err
		}
		c.Source = src
	}
	return c, nil
}

// OpenDriver builds the configured driver. Hardware bring-up failures fall
// back to the simulator so the daemon still starts.
func OpenDriver(cfg *config.Config, log zerolog.Logger) (actuator.Driver, string) {
	freq := physic.Frequency(cfg.PWMHz) * physic.Hertz
	switch cfg.Driver {
	case config.DriverGPIO, config.DriverPCA9685:
		if err := actuator.InitHost(log); err != nil {
			log.Warn().Err(err).Str("driver", cfg.Driver).Msg("host init failed; falling back to SIM")
			return actuator.NewSim(log), config.DriverSim
		}
	}

	switch cfg.Driver {
	case config.DriverGPIO:
		drv, err := actuator.NewGPIO(cfg.Pins(), freq)
		if err != nil {
			log.Warn().Err(err).Str("driver", cfg.Driver).Msg("GPIO init failed; falling back to SIM")
			break
		}
		return drv, config.DriverGPIO

	case config.DriverPCA9685:
		drv, err := actuator.OpenPCA9685(cfg.PCA9685.Bus, cfg.PCA9685.Address, freq, cfg.Outputs())
		if err != nil {
			log.Warn().Err(err).
				Str("driver", cfg.Driver).
				Str("bus", cfg.PCA9685.Bus).
				Uint16("addr", cfg.PCA9685.Address).
				Msg("PCA9685 init failed; falling back to SIM")
			break
		}
		return drv, config.DriverPCA9685
	}
	return actuator.NewSim(log), config.DriverSim
}

// OpenSource opens the configured line source.
func OpenSource(ctx context.Context, in config.Input, log zerolog.Logger) (input.Source, error) {
	switch in.Kind {
	case config.InputStdin, "":
		return input.NewLineReader("stdin", os.Stdin), nil
	case config.InputSerial:
		src, err := input.OpenSerial(in.Serial.Port, in.Serial.Baud)
		if err != nil {
			return nil, fmt.Errorf("serial input: %w", err)
		}
		log.Info().Str("port", src.String()).Int("baud", in.Serial.Baud).Msg("serial input open")
		return src, nil
	case config.InputMQTT:
		return input.DialMQTT(ctx, input.MQTTConf{
			Broker:   in.MQTT.Broker,
			Topic:    in.MQTT.Topic,
			ClientID: in.MQTT.ClientID,
			QoS:      in.MQTT.QoS,
			User:     in.MQTT.User,
			Password: in.MQTT.Password,
		}, log)
	}
	return nil, fmt.Errorf("unknown input %q", in.Kind)
}

// Close stops playback and releases every resource. The cell is left off.
func (c *Core) Close() error {
	c.Player.Stop()
	if c.Source != nil {
		if err := c.Source.Close(); err != nil {
			c.log.Debug().Err(err).Msg("close source")
		}
	}
	return c.Driver.Close()
}
