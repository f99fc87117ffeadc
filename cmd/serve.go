package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/etnz/dcadash/refresh"
	"github.com/etnz/dcadash/server"
	"github.com/google/subcommands"
)

type serveCmd struct {
	addr     string
	schedule string
}

func (*serveCmd) Name() string     { return "serve" }
func (*serveCmd) Synopsis() string { return "serve the dashboard API" }
func (*serveCmd) Usage() string {
	return `dcadash serve [-addr :8080] [-schedule "@every 30s"]

Serves the portfolio over HTTP and pushes every refresh to websocket clients.
`
}

func (c *serveCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.addr, "addr", "", "listen address (overrides DCADASH_ADDR)")
	f.StringVar(&c.schedule, "schedule", "", "refresh schedule, cron syntax or @every <duration> (overrides DCADASH_REFRESH_SCHEDULE)")
}

func (c *serveCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		return subcommands.ExitFailure
	}
	if c.addr != "" {
		cfg.Addr = c.addr
	}
	if c.schedule != "" {
		cfg.RefreshSchedule = c.schedule
	}
	log := newLogger(cfg)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	loader, err := newLoader(ctx, cfg, log)
	if err != nil {
		log.Error().Err(err).Msg("cannot open data source")
		return subcommands.ExitFailure
	}

	refresher := refresh.New(loader.Load, log)
	refresher.Refresh(ctx)
	if err := refresher.Start(cfg.RefreshSchedule); err != nil {
		log.Error().Err(err).Str("schedule", cfg.RefreshSchedule).Msg("invalid refresh schedule")
		return subcommands.ExitFailure
	}
	defer refresher.Stop()

	srv := server.New(server.Config{
		Addr:        cfg.Addr,
		CORSOrigins: cfg.CORSOrigins,
		Log:         log,
		Loader:      loader,
		Refresher:   refresher,
	})

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			log.Error().Err(err).Msg("server failed")
			return subcommands.ExitFailure
		}
	case <-ctx.Done():
		log.Info().Msg("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
