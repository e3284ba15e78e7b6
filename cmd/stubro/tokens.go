package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var flagLedgerLimit int

var tokensCmd = &cobra.Command{
	Use:   "tokens",
	Short: "Show your token balance",
	Long: `Show your token balance and recent ledger entries.

Building a level with an online generator costs tokens. Curated library
levels and the offline generators are free.

Examples:
  stubro tokens
  stubro tokens --user ada
  stubro tokens grant 50`,
	Args: cobra.NoArgs,
	Run:  runTokens,
}

var tokensGrantCmd = &cobra.Command{
	Use:   "grant <amount>",
	Short: "Add tokens to a balance",
	Args:  cobra.ExactArgs(1),
	Run:   runTokensGrant,
}

func init() {
	tokensCmd.Flags().IntVar(&flagLedgerLimit, "limit", 10, "Number of ledger entries to show")
	tokensCmd.AddCommand(tokensGrantCmd)
}

func runTokens(_ *cobra.Command, _ []string) {
	a := mustStore()
	defer a.Close()

	balance, err := a.store.Balance(a.user)
	if err != nil {
		a.Close()
		fatal("%v", err)
	}
	fmt.Printf("Tokens of %s: %d\n", a.user, balance)
	if cost := a.cfg.Tokens.LevelCost; cost > 0 {
		fmt.Printf("An AI-built level costs %d tokens.\n", cost)
	}

	entries, err := a.store.LedgerEntries(a.user, flagLedgerLimit)
	if err != nil || len(entries) == 0 {
		return
	}
	fmt.Println()
	fmt.Printf("  %-16s  %6s  %7s  %s\n", "Date", "Change", "Balance", "Reason")
	fmt.Printf("  %-16s  %6s  %7s  %s\n", "----", "------", "-------", "------")
	for _, e := range entries {
		fmt.Printf("  %-16s  %+6d  %7d  %s\n",
			e.CreatedAt.Local().Format("2006-01-02 15:04"), e.Delta, e.BalanceAfter, e.Reason)
	}
}

func runTokensGrant(_ *cobra.Command, args []string) {
	amount, err := strconv.Atoi(args[0])
	if err != nil || amount <= 0 {
		fatal("amount must be a positive number, got %q", args[0])
	}

	a := mustStore()
	defer a.Close()

	balance, err := a.store.Grant(a.user, amount, "grant")
	if err != nil {
		a.Close()
		fatal("%v", err)
	}
	fmt.Printf("Granted %d tokens to %s. Balance: %d\n", amount, a.user, balance)
}

// mustStore sets up a headless command that cannot work without the
// database.
func mustStore() *app {
	a, err := setup(false)
	if err != nil {
		fatal("%v", err)
	}
	if a.store == nil {
		a.Close()
		fatal("the token database is unavailable (see --db)")
	}
	return a
}
