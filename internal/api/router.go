package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/shunichi-ikebuchi/budget-ledger/internal/reports"
	"github.com/shunichi-ikebuchi/budget-ledger/internal/rules"
	"github.com/shunichi-ikebuchi/budget-ledger/internal/service"
	"github.com/shunichi-ikebuchi/budget-ledger/internal/store"
)

// NewRouter wires all handlers under /api.
func NewRouter(st *store.Store, orchestrator *service.Orchestrator, rulesEngine *rules.Engine, reader *reports.Reader) chi.Router {
	accounts := NewAccountsHandler(st)
	categories := NewCategoriesHandler(st)
	budgets := NewBudgetsHandler(st)
	transactions := NewTransactionsHandler(orchestrator, st)
	ruleHandlers := NewRulesHandler(st, rulesEngine)
	reportHandlers := NewReportsHandler(reader)

	r := chi.NewRouter()

	// Middleware.
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Route("/accounts", func(r chi.Router) {
			r.Get("/", accounts.List)
			r.Post("/", accounts.Create)
			r.Get("/{id}", accounts.Get)
			r.Put("/{id}", accounts.Update)
			r.Delete("/{id}", accounts.Delete)
			r.Get("/{id}/transactions", accounts.Transactions)
		})

		r.Route("/categories", func(r chi.Router) {
			r.Get("/", categories.List)
			r.Post("/", categories.Create)
			r.Get("/{id}", categories.Get)
			r.Put("/{id}", categories.Update)
			r.Delete("/{id}", categories.Delete)
		})

		r.Route("/budgets", func(r chi.Router) {
			r.Get("/", budgets.List)
			r.Post("/", budgets.Create)
			r.Get("/{id}", budgets.Get)
			r.Put("/{id}", budgets.Update)
			r.Delete("/{id}", budgets.Delete)
		})

		r.Route("/transactions", func(r chi.Router) {
			r.Get("/", transactions.List)
			r.Post("/", transactions.Create)
			r.Get("/{id}", transactions.Get)
			r.Put("/{id}", transactions.Update)
			r.Delete("/{id}", transactions.Delete)
		})

		r.Route("/rules", func(r chi.Router) {
			r.Get("/", ruleHandlers.List)
			r.Post("/", ruleHandlers.Create)
			r.Post("/test", ruleHandlers.Test)
			r.Post("/run", ruleHandlers.RunAll)
			r.Get("/{id}", ruleHandlers.Get)
			r.Put("/{id}", ruleHandlers.Update)
			r.Delete("/{id}", ruleHandlers.Delete)
			r.Post("/{id}/run", ruleHandlers.Run)
		})

		r.Route("/reports", func(r chi.Router) {
			r.Get("/spending-by-category", reportHandlers.SpendingByCategory)
			r.Get("/spending-over-time", reportHandlers.SpendingOverTime)
			r.Get("/monthly-incoming", reportHandlers.MonthlyIncoming)
		})
	})

	return r
}
