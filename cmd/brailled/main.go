package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/coreman2200/funtimes-braillecell/internal/app"
	"github.com/coreman2200/funtimes-braillecell/internal/config"
	diag "github.com/coreman2200/funtimes-braillecell/internal/diagnostics"
)

func main() {
	// ---- Flags (config.yaml supplies the rest) ----
	var (
		configPath  = flag.String("config", "config.yaml", "path to config.yaml")
		driver      = flag.String("driver", "", "driver override: gpio | pca9685 | sim")
		input       = flag.String("input", "", "input override: stdin | serial | mqtt")
		port        = flag.String("port", "", "serial port (default: auto-detect)")
		monitorAddr = flag.String("monitor", "", "monitor listen address, e.g. :8080")
		simOnly     = flag.Bool("sim-only", false, "force simulation (no hardware output)")
		level       = flag.String("log-level", "", "log level override")
		writeConfig = flag.String("write-config", "", "write the effective config to this path and exit")
	)
	flag.Parse()

	// ---- Logging ----
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})

	// ---- Load config.yaml (optional, but never half-read) ----
	cfg, found, err := config.LoadOrDefault(*configPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", *configPath).Msg("config unreadable")
	}
	if !found {
		log.Warn().Str("path", *configPath).Msg("config not found; using defaults")
	}

	// ---- Flags override config ----
	if *driver != "" {
		cfg.Driver = *driver
	}
	if *simOnly {
		cfg.Driver = config.DriverSim
	}
	if *input != "" {
		cfg.Input.Kind = *input
	}
	if *port != "" {
		cfg.Input.Serial.Port = *port
	}
	if *monitorAddr != "" {
		cfg.Monitor.Addr = *monitorAddr
	}
	if *level != "" {
		cfg.Log.Level = *level
	}
	if lvl, err := zerolog.ParseLevel(cfg.Log.Level); err == nil {
		zerolog.SetGlobalLevel(lvl)
	} else {
		log.Warn().Str("level", cfg.Log.Level).Msg("unknown log level; keeping info")
	}

	if *writeConfig != "" {
		if err := config.Save(*writeConfig, cfg); err != nil {
			log.Fatal().Err(err).Str("path", *writeConfig).Msg("write config")
		}
		log.Info().Str("path", *writeConfig).Msg("config written")
		return
	}

	for _, d := range cfg.Check() {
		ev := log.Warn()
		if d.Severity == diag.Err {
			ev = log.Error()
		}
		ev.Str("code", d.Code).
			Interface("evidence", d.Evidence).
			Strs("fix", d.SuggestedFixes).
			Msg(d.Summary)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	core, err := app.InitCore(ctx, cfg, app.Deps{}, log.Logger)
	if err != nil {
		log.Fatal().Err(err).Msg("startup failed")
	}

	// ---- Monitor ----
	var srv *http.Server
	if core.Monitor != nil {
		srv = &http.Server{
			Addr:         cfg.Monitor.Addr,
			Handler:      withCORS(core.Monitor.Handler()),
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		}
		go func() {
			log.Info().Str("addr", srv.Addr).Msg("monitor starting")
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error().Err(err).Msg("monitor server failed")
			}
		}()
	}

	// ---- Run ----
	log.Info().
		Str("driver", core.DriverName).
		Str("input", cfg.Input.Kind).
		Dur("dot_on", cfg.Timing.DotOn).
		Msg("ready")

	done := make(chan error, 1)
	go func() { done <- core.Run(ctx) }()

	select {
	case err := <-done:
		if err != nil {
			log.Error().Err(err).Msg("input failed")
		}
	case <-ctx.Done():
		log.Info().Msg("shutting down")
		// A blocked stdin read cannot be interrupted; give playback a moment.
		select {
		case <-done:
		case <-time.After(2 * time.Second):
		}
	}

	// ---- Graceful shutdown ----
	if srv != nil {
		_ = srv.Close()
	}
	if err := core.Close(); err != nil {
		log.Warn().Err(err).Msg("close")
	}
}

func withCORS(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(200)
			return
		}
		h.ServeHTTP(w, r)
	})
}
