package cmd

import (
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/shunichi-ikebuchi/budget-ledger/internal/api"
	"github.com/shunichi-ikebuchi/budget-ledger/internal/reports"
	"github.com/shunichi-ikebuchi/budget-ledger/internal/service"
)

// serveCmd represents the serve command.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the ledger HTTP API server",
	Long: `Start the JSON API server for accounts, transactions, rules and reports.

The listen address and database path come from the environment
(LEDGER_HOST, LEDGER_PORT, LEDGER_DB_PATH) or a .env file.

Example:
  budget-ledger serve
  budget-ledger serve --debug`,
	Run: runServe,
}

func runServe(cmd *cobra.Command, args []string) {
	a := openApp()
	defer a.Close()

	orchestrator := service.New(a.ledger, a.rules)
	reader := reports.New(a.conn)
	router := api.NewRouter(a.store, orchestrator, a.rules, reader)

	addr := a.cfg.Server.Addr()
	slog.Info("starting ledger server", "addr", addr, "db_path", a.cfg.DBPath)

	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	go func() {
		sigint := make(chan os.Signal, 1)
		signal.Notify(sigint, os.Interrupt, syscall.SIGTERM)
		<-sigint

		slog.Info("shutting down server")
		if err := server.Close(); err != nil {
			slog.Error("server shutdown error", "error", err)
		}
	}()

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped")
}
