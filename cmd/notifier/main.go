package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/coreos/go-systemd/v22/daemon"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/cesarabia/mangoro-hunter-sub004/internal/config"
	"github.com/cesarabia/mangoro-hunter-sub004/internal/dispatch"
	"github.com/cesarabia/mangoro-hunter-sub004/internal/outbound"
	"github.com/cesarabia/mangoro-hunter-sub004/internal/ratelimit"
	"github.com/cesarabia/mangoro-hunter-sub004/internal/storage"
	"github.com/cesarabia/mangoro-hunter-sub004/internal/summary"
	"github.com/cesarabia/mangoro-hunter-sub004/internal/transport"
)

func main() {
	var cfgPath string
	flag.StringVar(&cfgPath, "config", "./config.yaml", "path to config yaml/json")
	flag.Parse()

	// Best-effort .env for local runs; real deployments use the unit file.
	_ = godotenv.Load()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "fatal:", err)
		os.Exit(1)
	}

	log := newLogger(cfg.Logging)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	st, err := storage.Open(storage.Config{
		Driver:      cfg.Storage.Driver,
		Path:        cfg.Storage.Path,
		BusyTimeout: parseDuration(cfg.Storage.BusyTimeout, 0),
	}, log)
	if err != nil {
		log.Fatal().Err(err).Msg("storage open failed")
	}
	if st == nil {
		log.Warn().Msg("storage disabled, duplicate suppression will not survive restarts")
		st = storage.NewMemory()
	}

	tr, err := transport.Open(transport.Config{
		Driver: cfg.Transport.Driver,
		Provider: transport.ProviderConfig{
			BaseURL:       cfg.Transport.Provider.BaseURL,
			Token:         cfg.Transport.Provider.Token,
			DefaultOrigin: cfg.Transport.Provider.DefaultOrigin,
			Timeout:       parseDuration(cfg.Transport.Provider.Timeout, 0),
		},
		Telegram: transport.TelegramConfig{Token: cfg.Transport.Telegram.Token},
	}, log)
	if err != nil {
		log.Fatal().Err(err).Msg("transport open failed")
	}

	env := outbound.Environment{Production: cfg.Production || envBool("HUNTER_PRODUCTION")}

	coord := dispatch.New(env,
		config.Loader{Settings: st.Settings},
		st, tr,
		dispatch.StaticOrigin(cfg.Transport.Provider.DefaultOrigin),
		ratelimit.New(),
		dispatchOptions(cfg),
		log,
	)

	sum := summary.New(summary.Config{
		Enabled:  cfg.Summary.Enabled,
		Schedule: cfg.Summary.Schedule,
		Period:   parseDuration(cfg.Summary.Period, 24*time.Hour),
	}, summary.StoreReporter{Store: st}, coord, log)
	if err := sum.Start(); err != nil {
		log.Fatal().Err(err).Msg("summary schedule failed")
	}

	var srv *triggerServer
	if cfg.HTTP.Enabled {
		srv = newTriggerServer(cfg.HTTP.Addr, coord, log)
		srv.Start()
	}

	go func() {
		err := config.Watch(ctx, cfgPath, log, func(nc *config.Config) {
			coord.Apply(dispatchOptions(nc))
		})
		if err != nil && !errors.Is(err, context.Canceled) {
			log.Warn().Err(err).Msg("config watch stopped")
		}
	}()

	_, _ = daemon.SdNotify(false, daemon.SdNotifyReady)
	log.Info().Bool("production", env.Production).Str("transport", cfg.Transport.Driver).Msg("notifier started")

	<-ctx.Done()
	_, _ = daemon.SdNotify(false, daemon.SdNotifyStopping)

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	if srv != nil {
		srv.Stop(shutdownCtx)
	}
	sum.Stop(shutdownCtx)
	coord.Wait()
	_ = tr.Close()
	_ = st.Close()
}

func dispatchOptions(cfg *config.Config) dispatch.Options {
	return dispatch.Options{
		Workspace:     cfg.Workspace,
		DefaultOrigin: cfg.Transport.Provider.DefaultOrigin,
		RatePerSec:    cfg.Dispatch.RatePerSec,
		BurstLimit:    cfg.Dispatch.BurstLimit,
		BurstWindow:   parseDuration(cfg.Dispatch.BurstWindow, 0),
	}
}

func newLogger(cfg config.LoggingConfig) zerolog.Logger {
	level, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(cfg.Level)))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	var w io.Writer = os.Stdout
	if cfg.Console {
		w = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: "2006-01-02T15:04:05.000Z07:00"}
	}
	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}

func parseDuration(s string, def time.Duration) time.Duration {
	s = strings.TrimSpace(s)
	if s == "" {
		return def
	}
	d, err := time.ParseDuration(s)
	if err != nil || d < 0 {
		return def
	}
	return d
}

func envBool(key string) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(key))) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}
