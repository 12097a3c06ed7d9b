package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jtrask/folio/internal/chart"
	"github.com/jtrask/folio/internal/logger"
	"github.com/jtrask/folio/internal/pricedata"
	"github.com/jtrask/folio/internal/replay"
)

var chartOut string

var chartCmd = &cobra.Command{
	Use:   "chart",
	Short: "Render the daily portfolio valuation chart to a PNG file",
	RunE:  runChart,
}

func init() {
	chartCmd.Flags().StringVarP(&chartOut, "out", "o", "portfolio.png", "output PNG path")
	rootCmd.AddCommand(chartCmd)
}

func runChart(cmd *cobra.Command, args []string) error {
	log := logger.Must(debug)
	defer log.Sync()

	comps, err := buildComponents(log)
	if err != nil {
		return err
	}

	ctx := context.Background()
	txs, err := comps.ledger.Load(ctx)
	if err != nil {
		return fmt.Errorf("loading ledger: %w", err)
	}

	repo := pricedata.NewCache(comps.prices)
	samples, diags, err := replay.NewSampler(repo, comps.resolver, log).Run(ctx, txs)
	if err != nil {
		return fmt.Errorf("sampling ledger: %w", err)
	}
	if len(diags) > 0 {
		log.Warn("some transactions were skipped", zap.Int("count", len(diags)))
	}

	opts := chart.DefaultOptions()
	if comps.cfg.Chart.Width > 0 {
		opts.Width = comps.cfg.Chart.Width
	}
	if comps.cfg.Chart.Height > 0 {
		opts.Height = comps.cfg.Chart.Height
	}

	png, err := chart.Render(samples, opts)
	if err != nil {
		return fmt.Errorf("rendering chart: %w", err)
	}

	if err := os.WriteFile(chartOut, png, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", chartOut, err)
	}

	fmt.Printf("wrote %s (%d samples, %d bytes)\n", chartOut, len(samples), len(png))
	return nil
}
