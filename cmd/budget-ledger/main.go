// Package main is the entry point for the budget-ledger CLI.
package main

import (
	"os"

	"github.com/shunichi-ikebuchi/budget-ledger/cmd/budget-ledger/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
