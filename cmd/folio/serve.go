package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jtrask/folio/internal/api"
	"github.com/jtrask/folio/internal/api/job"
	"github.com/jtrask/folio/internal/chart"
	"github.com/jtrask/folio/internal/logger"
	"github.com/jtrask/folio/internal/metrics"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the folio server",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	log := logger.Must(debug)
	defer log.Sync()

	comps, err := buildComponents(log)
	if err != nil {
		return err
	}
	cfg := comps.cfg

	log.Info("starting folio server",
		zap.String("host", cfg.Server.Host),
		zap.Int("port", cfg.Server.Port),
		zap.String("storage", cfg.Storage.Type),
	)

	var reg *metrics.Registry
	if cfg.Metrics.Enabled {
		reg = metrics.NewRegistry()
	}

	jobs := job.NewStore(cfg.Server.MaxJobs,
		time.Duration(cfg.Server.JobTTLHours)*time.Hour)

	chartOpts := chart.DefaultOptions()
	if cfg.Chart.Width > 0 {
		chartOpts.Width = cfg.Chart.Width
	}
	if cfg.Chart.Height > 0 {
		chartOpts.Height = cfg.Chart.Height
	}

	server, err := api.NewServer(api.Config{
		Host:        cfg.Server.Host,
		Port:        cfg.Server.Port,
		AuthEnabled: cfg.Auth.Enabled,
		MetricsPath: cfg.Metrics.Path,
		ChartOpts:   chartOpts,
	}, api.Dependencies{
		Ledger:   comps.ledger,
		Prices:   comps.prices,
		Resolver: comps.resolver,
		Tokens:   comps.tokens,
		Jobs:     jobs,
		Metrics:  reg,
	}, log)
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}

	go func() {
		if err := server.Start(); err != nil {
			log.Error("server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down folio server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	return server.Shutdown(ctx)
}
