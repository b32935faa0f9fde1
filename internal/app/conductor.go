package app

import (
	"context"
	"errors"
	"io"

	diag "github.com/coreman2200/funtimes-braillecell/internal/diagnostics"
	"github.com/coreman2200/funtimes-braillecell/internal/selftest"
)

// Run pulls lines from the source until it is exhausted or ctx ends. The
// self-test keyword runs a diagnostic sweep; every other line is rendered.
// A finished source is not an error.
func (c *Core) Run(ctx context.Context) error {
	for {
		line, err := c.Source.Next(ctx)
		switch {
		case errors.Is(err, io.EOF):
			c.log.Info().Msg("input closed")
			return nil
		case ctx.Err() != nil:
			return nil
		case err != nil:
			return err
		}

		if err := c.Dispatch(ctx, line); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
	}
}

// Dispatch handles a single input line.
func (c *Core) Dispatch(ctx context.Context, line string) error {
	if kind := selftest.Parse(line, c.Cfg.SelfTest.Keyword); kind != selftest.None {
		return c.SelfTest(ctx, kind)
	}
	c.log.Debug().Str("line", line).Msg("render")
	return c.Player.PlayLine(ctx, line)
}

// SelfTest runs one diagnostic plan and reports it to monitor viewers.
func (c *Core) SelfTest(ctx context.Context, kind selftest.Kind) error {
	c.log.Info().Str("test", string(kind)).Msg("self-test")
	c.push(diag.Diagnostic{Severity: diag.Info, Code: "SELFTEST.RUNNING", Summary: "Running self-test", Detail: string(kind)})

	r := selftest.NewRunner(c.Player, selftest.Plan{Kind: kind, Pause: c.Cfg.SelfTest.Pause})
	if err := r.Run(ctx); err != nil {
		c.push(diag.Diagnostic{Severity: diag.Warn, Code: "SELFTEST.ABORTED", Summary: "Self-test interrupted", Detail: err.Error()})
		return err
	}
	c.push(diag.Diagnostic{Severity: diag.Info, Code: "SELFTEST.DONE", Summary: "Self-test complete"})
	return nil
}

func (c *Core) push(d diag.Diagnostic) {
	if c.Monitor != nil {
		c.Monitor.Push(d)
	}
}
