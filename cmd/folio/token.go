package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jtrask/folio/internal/logger"
)

var (
	tokenUsername string
	tokenType     string
	tokenDays     int
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Manage API tokens",
}

var tokenAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Issue a new API token",
	RunE:  runTokenAdd,
}

var tokenListCmd = &cobra.Command{
	Use:   "list",
	Short: "List issued API tokens",
	RunE:  runTokenList,
}

var tokenDeleteCmd = &cobra.Command{
	Use:   "delete <token>",
	Short: "Revoke an API token",
	Args:  cobra.ExactArgs(1),
	RunE:  runTokenDelete,
}

func init() {
	tokenAddCmd.Flags().StringVarP(&tokenUsername, "username", "u", "", "token owner (required)")
	tokenAddCmd.Flags().StringVarP(&tokenType, "type", "t", "user", "token type: admin or user")
	tokenAddCmd.Flags().IntVar(&tokenDays, "days", 365, "validity in days from now")
	tokenAddCmd.MarkFlagRequired("username")

	tokenCmd.AddCommand(tokenAddCmd)
	tokenCmd.AddCommand(tokenListCmd)
	tokenCmd.AddCommand(tokenDeleteCmd)
	rootCmd.AddCommand(tokenCmd)
}

func runTokenAdd(cmd *cobra.Command, args []string) error {
	log := logger.Must(debug)
	defer log.Sync()

	comps, err := buildComponents(log)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	tok, err := comps.tokens.Issue(context.Background(), tokenUsername, tokenType,
		now, now.Add(time.Duration(tokenDays)*24*time.Hour))
	if err != nil {
		return fmt.Errorf("issuing token: %w", err)
	}

	fmt.Printf("token: %s\n", tok.Value)
	fmt.Printf("  username: %s\n", tok.Username)
	fmt.Printf("  type:     %s\n", tok.Type)
	fmt.Printf("  expires:  %s\n", tok.ExpiresAt.Format("2006-01-02"))
	return nil
}

func runTokenList(cmd *cobra.Command, args []string) error {
	log := logger.Must(debug)
	defer log.Sync()

	comps, err := buildComponents(log)
	if err != nil {
		return err
	}

	tokens, err := comps.tokens.List(context.Background())
	if err != nil {
		return fmt.Errorf("listing tokens: %w", err)
	}
	if len(tokens) == 0 {
		fmt.Println("no tokens issued")
		return nil
	}

	now := time.Now().UTC()
	for _, tok := range tokens {
		state := "active"
		if !tok.ActiveAt(now) {
			state = "expired"
		}
		fmt.Printf("%s  %-10s %-6s %-8s expires %s\n",
			tok.Value, tok.Username, tok.Type, state,
			tok.ExpiresAt.Format("2006-01-02"))
	}
	return nil
}

func runTokenDelete(cmd *cobra.Command, args []string) error {
	log := logger.Must(debug)
	defer log.Sync()

	comps, err := buildComponents(log)
	if err != nil {
		return err
	}

	if err := comps.tokens.Revoke(context.Background(), args[0]); err != nil {
		return fmt.Errorf("revoking token: %w", err)
	}
	fmt.Println("token revoked")
	return nil
}
