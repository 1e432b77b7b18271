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

	"recurcal/internal/config"
	appLog "recurcal/internal/log"
	"recurcal/internal/web"
)

const shutdownTimeout = 5 * time.Second

type flagConfig struct {
	configPath string
	listen     string
	debug      bool
}

func main() {
	flags := parseFlags()

	conf, err := config.Load(flags.configPath)
	if err != nil {
		appLog.Error("failed to load config", err, "config_path", flags.configPath)
		os.Exit(1)
	}

	// CLI --listen overrides config file listen if provided.
	if flags.listen != "" {
		conf.Listen = flags.listen
	}

	logOpts := conf.LogOptions()
	if flags.debug {
		logOpts.Level = appLog.LevelDebug
	}
	if err := appLog.Configure(logOpts); err != nil {
		appLog.Error("failed to configure logging", err)
		os.Exit(1)
	}
	defer appLog.Close()

	appLog.Info("recurcal starting", "version", "0.1.0")
	appLog.Info("effective config",
		"listen", conf.Listen,
		"week_start", conf.WeekStart,
		"refresh", conf.RefreshCron,
		"preview_count", conf.PreviewCount,
		"commit_count", conf.CommitCount,
		"max_count_limit", conf.MaxCountLimit,
		"log_level", logOpts.Level,
		"log_file", conf.Log.File,
		"basic_auth", conf.BasicAuth != nil,
	)

	// Root context with cancellation on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, conf, flags.debug); err != nil {
		appLog.Error("recurcal exited with error", err)
		appLog.Close()
		os.Exit(1)
	}
	appLog.Info("recurcal exiting")
}

func run(ctx context.Context, conf *config.Config, debug bool) error {
	srv := web.NewServer(conf, debug)
	if err := srv.StartRefresh(ctx); err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:              conf.Listen,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		appLog.Info("starting HTTP server", "listen", "http://"+conf.Listen, "debug", debug)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		appLog.Info("signal received, shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}

func parseFlags() flagConfig {
	var cfg flagConfig

	flag.StringVar(&cfg.configPath, "config", "/etc/recurcal/config.yaml", "Path to config file")
	flag.StringVar(&cfg.listen, "listen", "", "HTTP listen address (overrides config if set)")
	flag.BoolVar(&cfg.debug, "debug", false, "Enable debug logging")

	flag.Parse()

	return cfg
}
