package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/shunichi-ikebuchi/budget-ledger/internal/seed"
)

// seedCmd represents the seed command.
var seedCmd = &cobra.Command{
	Use:   "seed [file]",
	Short: "Load accounts, categories and rules from a YAML file",
	Long: `Bootstrap the database from a YAML seed file.

Records that already exist by name are skipped, so seeding is safe to
re-run. The file path may also come from LEDGER_SEED_PATH.

Example:
  budget-ledger seed ./seed.yaml`,
	Args: cobra.MaximumNArgs(1),
	Run:  runSeed,
}

func runSeed(cmd *cobra.Command, args []string) {
	a := openApp()
	defer a.Close()

	path := a.cfg.Seed.Path
	if len(args) == 1 {
		path = args[0]
	}
	if path == "" {
		exitOnError(fmt.Errorf("no seed file given and LEDGER_SEED_PATH is not set"), "missing seed file")
	}

	slog.Info("loading seed file", "path", path)
	file, err := seed.LoadFile(path)
	exitOnError(err, "failed to load seed file")

	result, err := seed.New(a.store).Apply(file)
	exitOnError(err, "failed to apply seed")

	fmt.Printf("Created %d account(s), %d categorie(s), %d rule(s).\n",
		result.Accounts, result.Categories, result.Rules)
}
