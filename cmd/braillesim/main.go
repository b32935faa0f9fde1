// Command braillesim prints the actuation timeline of a text without
// touching hardware or sleeping.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/coreman2200/funtimes-braillecell/internal/actuator/fake"
	"github.com/coreman2200/funtimes-braillecell/internal/braille"
	"github.com/coreman2200/funtimes-braillecell/internal/config"
	"github.com/coreman2200/funtimes-braillecell/internal/sequence"
)

func main() {
	var (
		configPath string
		file       string
		verbose    bool
	)
	flag.StringVar(&configPath, "config", "", "config.yaml for timing and dot map (default: built-in)")
	flag.StringVar(&file, "file", "", "read lines from this file instead of arguments")
	flag.BoolVar(&verbose, "v", false, "print every driver call and wait")
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})

	cfg := config.Default()
	if configPath != "" {
		c, err := config.Load(configPath)
		if err != nil {
			log.Fatal().Err(err).Msg("config")
		}
		cfg = c
	}

	var lines []string
	switch {
	case file != "":
		b, err := os.ReadFile(file)
		if err != nil {
			log.Fatal().Err(err).Msg("read")
		}
		lines = strings.Split(strings.TrimRight(string(b), "\n"), "\n")
	case flag.NArg() > 0:
		lines = []string{strings.Join(flag.Args(), " ")}
	default:
		log.Fatal().Msg("provide text arguments or -file")
	}

	rec := &fake.Log{}
	waiter := fake.NewWaiter(rec)

	// virtual clock: the waiter's running total
	pulses := 0
	h := sequence.Hooks{
		OnGlyph: func(g braille.Glyph) {
			fmt.Printf("%10s  %q", waiter.Total, g.Char)
			if g.WordBreak {
				fmt.Println("  word break")
				return
			}
			for _, m := range g.Masks {
				fmt.Printf("  %s", m)
			}
			fmt.Println()
		},
		OnMask: func(braille.DotMask) { pulses++ },
	}
	player, err := sequence.NewPlayer(sequence.Config{
		Driver: fake.NewDriver(rec),
		Layout: cfg.Layout(),
		Timing: cfg.SequenceTiming(),
		Waiter: waiter,
		Hooks:  h,
		Log:    log.Logger,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("player")
	}

	ctx := context.Background()
	for _, line := range lines {
		masks := braille.Masks(braille.EncodeLine(line))
		dots := 0
		for _, m := range masks {
			dots += m.Count()
		}
		fmt.Printf("%q: %d cells, %d dots raised\n", line, len(masks), dots)
		if err := player.PlayLine(ctx, line); err != nil {
			log.Fatal().Err(err).Msg("play")
		}
	}

	if verbose {
		for _, e := range rec.Events {
			fmt.Println(e)
		}
	}
	fmt.Printf("Done at t=%s (%d pulses)\n", waiter.Total, pulses)
}
