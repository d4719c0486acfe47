package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// statsCmd represents the stats command.
var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Display ledger statistics",
	Long: `Display record counts and per-account balances.

Example:
  budget-ledger stats`,
	Run: runStats,
}

func runStats(cmd *cobra.Command, args []string) {
	a := openApp()
	defer a.Close()

	counts, err := a.store.Counts()
	exitOnError(err, "failed to get statistics")

	accounts, err := a.store.ListAccounts()
	exitOnError(err, "failed to list accounts")

	fmt.Println("\n=== Ledger Statistics ===")
	fmt.Printf("Accounts:     %d\n", counts.Accounts)
	fmt.Printf("Categories:   %d\n", counts.Categories)
	fmt.Printf("Budgets:      %d\n", counts.Budgets)
	fmt.Printf("Transactions: %d\n", counts.Transactions)
	fmt.Printf("Rules:        %d\n", counts.Rules)

	if len(accounts) > 0 {
		fmt.Println("\n=== Balances ===")
		for _, account := range accounts {
			fmt.Printf("%-30s %12.2f %s  (%s)\n", account.Name, account.Balance, account.Currency, account.AccountType)
		}
	}

	fmt.Println()
}
