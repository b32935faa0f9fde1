package config

import (
	"errors"
	"fmt"

	diag "github.com/coreman2200/funtimes-braillecell/internal/diagnostics"
)

// Check inspects the configuration once at startup. Errors make Validate
// fail; warnings are for the operator only.
func (c *Config) Check() []diag.Diagnostic {
	var out []diag.Diagnostic
	add := func(sev diag.Severity, code, summary string, ev map[string]any, fixes ...string) {
		out = append(out, diag.Diagnostic{Severity: sev, Code: code, Summary: summary, Evidence: ev, SuggestedFixes: fixes})
	}

	if err := c.Layout().Validate(); err != nil {
		add(diag.Err, "CFG.DOTMAP", err.Error(), map[string]any{"dot_map": c.DotMap},
			"list each channel 0..5 exactly once, e.g. dot_map: [0, 1, 2, 3, 4, 5]")
	}

	switch c.Driver {
	case DriverSim:
	case DriverGPIO:
		for i, ch := range c.Channels {
			if !ch.Disabled && ch.Pin == "" {
				add(diag.Err, "CFG.PIN", fmt.Sprintf("channel %d has no pin", i), nil,
					fmt.Sprintf("set channels[%d].pin to a periph pin name such as GPIO17", i),
					fmt.Sprintf("or set channels[%d].disabled: true", i))
			}
		}
	case DriverPCA9685:
		seen := map[int]int{}
		for i, ch := range c.Channels {
			if ch.Disabled {
				continue
			}
			if ch.Output < 0 || ch.Output > 15 {
				add(diag.Err, "CFG.OUTPUT", fmt.Sprintf("channel %d output %d out of range 0..15", i, ch.Output), nil)
			}
			if prev, dup := seen[ch.Output]; dup {
				add(diag.Err, "CFG.OUTPUT", fmt.Sprintf("channels %d and %d share output %d", prev, i, ch.Output), nil)
			}
			seen[ch.Output] = i
		}
	default:
		add(diag.Err, "CFG.DRIVER", fmt.Sprintf("unknown driver %q", c.Driver), nil)
	}

	t := c.Timing
	if t.DotOn < 0 || t.DotGap < 0 || t.CharGap < 0 || t.WordGap < 0 || c.SelfTest.Pause < 0 {
		add(diag.Err, "CFG.TIMING", "durations must not be negative", map[string]any{"timing": t})
	}
	if t.DotOn == 0 {
		add(diag.Warn, "CFG.TIMING", "dot_on is zero; pulses will not be felt", nil)
	}

	switch c.Input.Kind {
	case InputStdin, InputSerial:
	case InputMQTT:
		if c.Input.MQTT.Broker == "" || c.Input.MQTT.Topic == "" {
			add(diag.Err, "CFG.MQTT", "mqtt input needs broker and topic", nil)
		}
		if c.Input.MQTT.QoS > 2 {
			add(diag.Err, "CFG.MQTT", fmt.Sprintf("qos %d out of range", c.Input.MQTT.QoS), nil)
		}
	default:
		add(diag.Err, "CFG.INPUT", fmt.Sprintf("unknown input %q", c.Input.Kind), nil)
	}

	if c.SelfTest.Keyword == "" {
		add(diag.Warn, "CFG.SELFTEST", "self-test keyword empty; self-test disabled", nil)
	}

	if dots := c.Layout().Disabled(); len(dots) > 0 {
		add(diag.Warn, "CFG.DISABLED", "cell positions on disabled channels will never be raised",
			map[string]any{"positions": dots})
	}
	for i, ch := range c.Channels {
		if !ch.Disabled && ch.Strength == 0 {
			add(diag.Warn, "CFG.STRENGTH", fmt.Sprintf("channel %d enabled with strength 0", i), nil)
		}
	}
	return out
}

// Validate returns ErrInvalid joined with every error-level finding.
func (c *Config) Validate() error {
	var errs []error
	for _, d := range diag.Errors(c.Check()) {
		errs = append(errs, fmt.Errorf("%s: %s", d.Code, d.Summary))
	}
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalid, errors.Join(errs...))
}
