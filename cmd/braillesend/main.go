// Command braillesend pushes text to a cell over its serial link.
package main

import (
	"context"
	"flag"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/coreman2200/funtimes-braillecell/internal/input"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout))
}

// run returns the exit code so deferred cleanup always happens.
func run(args []string, stdout io.Writer) int {
	fs := flag.NewFlagSet("braillesend", flag.ContinueOnError)
	var (
		port   = fs.String("port", "", "serial port (default: first /dev/ttyACM*, then /dev/ttyUSB*)")
		baud   = fs.Int("baud", input.DefaultBaud, "baud rate")
		file   = fs.String("file", "", "read text from this file instead of arguments/stdin")
		pause  = fs.Duration("pause", 150*time.Millisecond, "pause between chunks")
		settle = fs.Duration("settle", 2*time.Second, "wait after opening the port (boards reset on open)")
		dryRun = fs.Bool("dry-run", false, "print chunks to stdout instead of the port")
	)
	if err := fs.Parse(args); err != nil {
		return 2
	}

	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})

	text, err := readText(*file, fs.Args())
	if err != nil {
		log.Error().Err(err).Msg("read text")
		return 1
	}
	if strings.TrimSpace(text) == "" {
		log.Info().Msg("nothing to send")
		return 0
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	w := stdout
	if !*dryRun {
		p, name, err := input.OpenPort(*port, *baud, time.Second)
		if err != nil {
			log.Error().Err(err).Msg("open port")
			return 1
		}
		defer p.Close()
		log.Info().Str("port", name).Int("baud", *baud).Msg("port open")
		if err := sleep(ctx, *settle); err != nil {
			return 130
		}
		w = p
	}

	s := input.Sender{W: w, Pause: *pause, Sleep: sleep}
	n, err := s.Send(ctx, text)
	if err != nil {
		log.Error().Err(err).Int("sent", n).Msg("send failed")
		return 1
	}
	log.Info().Int("chunks", n).Msg("sent")
	return 0
}

// readText takes the file when given, else the arguments, else stdin.
func readText(file string, args []string) (string, error) {
	if file != "" {
		b, err := os.ReadFile(file)
		return string(b), err
	}
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}
	b, err := io.ReadAll(os.Stdin)
	return string(b), err
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
