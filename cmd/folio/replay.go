package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jtrask/folio/internal/logger"
	"github.com/jtrask/folio/internal/pricedata"
	"github.com/jtrask/folio/internal/replay"
)

var replayCmd = &cobra.Command{
	Use:   "replay",
	Short: "Replay the transaction ledger and print the log and summary",
	RunE:  runReplay,
}

func init() {
	rootCmd.AddCommand(replayCmd)
}

func runReplay(cmd *cobra.Command, args []string) error {
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
	if len(txs) == 0 {
		fmt.Println("ledger is empty")
		return nil
	}

	repo := pricedata.NewCache(comps.prices)
	result, err := replay.New(repo, comps.resolver, log).Run(ctx, txs)
	if err != nil {
		return fmt.Errorf("replaying ledger: %w", err)
	}

	fmt.Printf("%-12s %-12s %-8s %-6s %10s %10s %12s %12s %12s\n",
		"REQUESTED", "RESOLVED", "SYMBOL", "ACTION", "QTY", "PRICE", "HOLDINGS", "CASH", "INVESTED")
	for _, e := range result.Log {
		fmt.Printf("%-12s %-12s %-8s %-6s %10.4f %10.2f %12.4f %12.2f %12.2f\n",
			e.RequestedDate, e.ResolvedDate, e.Symbol, e.Action,
			e.Quantity, e.Price, e.RawHoldings, e.Cash, e.TotalInvested)
	}

	if len(result.Diagnostics) > 0 {
		fmt.Printf("\nskipped %d transaction(s):\n", len(result.Diagnostics))
		for _, d := range result.Diagnostics {
			fmt.Printf("  #%d %s %s: %s\n", d.Index, d.Symbol, d.Date, d.Err.Error())
		}
	}

	summary, err := replay.Summarize(ctx, result.State, repo)
	if err != nil {
		return fmt.Errorf("summarizing: %w", err)
	}

	fmt.Println()
	for _, p := range summary.Positions {
		fmt.Printf("%-8s %12.4f shares @ %10.2f = %14.2f\n",
			p.Symbol, p.Quantity, p.LastPrice, p.Value)
	}
	fmt.Printf("\n%-20s %14.2f\n", "holdings value", summary.TotalValue)
	fmt.Printf("%-20s %14.2f\n", "cash", summary.Cash)
	fmt.Printf("%-20s %14.2f\n", "total money", summary.TotalMoney)
	fmt.Printf("%-20s %14.2f\n", "total invested", summary.TotalInvested)
	fmt.Printf("%-20s %13.2f%%\n", "gain", summary.GainPercent)

	return nil
}
