// Package cmd provides CLI commands for budget-ledger.
package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/shunichi-ikebuchi/budget-ledger/internal/ledger"
	"github.com/shunichi-ikebuchi/budget-ledger/internal/rules"
	"github.com/shunichi-ikebuchi/budget-ledger/internal/store"
	"github.com/shunichi-ikebuchi/budget-ledger/pkg/config"
	"github.com/shunichi-ikebuchi/budget-ledger/pkg/db"
)

var (
	cfgFile string
	debug   bool
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "budget-ledger",
	Short: "Double-entry personal finance ledger",
	Long: `budget-ledger keeps personal finance accounts balanced with
double-entry bookkeeping and categorizes transactions with a rule engine.

It supports:
- Accounts, categories, budgets and transactions over a JSON API
- Automatic counterparty account creation
- Priority-ordered categorization rules
- Spending reports by category and over time

Example:
  budget-ledger serve
  budget-ledger rules apply
  budget-ledger stats`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// Setup logging
		logLevel := slog.LevelInfo
		if debug {
			logLevel = slog.LevelDebug
		}

		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: logLevel,
		}))
		slog.SetDefault(logger)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .env)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	// Add subcommands
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(rulesCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(seedCmd)
}

// Helper function to get config file path.
func getConfigFile() string {
	if cfgFile != "" {
		return cfgFile
	}
	return "" // Will use default .env loading
}

// Helper function to handle errors and exit.
func exitOnError(err error, msg string) {
	if err != nil {
		slog.Error(msg, "error", err)
		fmt.Fprintf(os.Stderr, "Error: %s: %v\n", msg, err)
		os.Exit(1)
	}
}

// app bundles the wired core for commands that need the full stack.
type app struct {
	cfg    *config.Config
	conn   *db.Connection
	store  *store.Store
	ledger *ledger.Engine
	rules  *rules.Engine
}

// openApp loads configuration, opens the database and wires the engines.
// The caller must Close the returned app.
func openApp() *app {
	cfg, err := config.Load(getConfigFile())
	exitOnError(err, "failed to load configuration")

	slog.Debug("Opening database", "path", cfg.DBPath)
	conn, err := db.Open(cfg.DBPath)
	exitOnError(err, "failed to open database")

	if err := db.InitializeSchema(conn); err != nil {
		conn.Close()
		exitOnError(err, "failed to initialize schema")
	}

	st := store.New(conn)
	return &app{
		cfg:    cfg,
		conn:   conn,
		store:  st,
		ledger: ledger.New(conn, st),
		rules:  rules.New(st),
	}
}

func (a *app) Close() {
	if err := a.conn.Close(); err != nil {
		slog.Error("failed to close database", "error", err)
	}
}
