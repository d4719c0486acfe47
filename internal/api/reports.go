package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/shunichi-ikebuchi/budget-ledger/internal/reports"
)

// ReportsHandler exposes the read-only reporting queries.
type ReportsHandler struct {
	reader *reports.Reader
}

// NewReportsHandler creates a new ReportsHandler.
func NewReportsHandler(reader *reports.Reader) *ReportsHandler {
	return &ReportsHandler{reader: reader}
}

// SpendingByCategory handles GET /api/reports/spending-by-category.
func (h *ReportsHandler) SpendingByCategory(w http.ResponseWriter, r *http.Request) {
	start, err := parseTimeParam(r, "start_date")
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_parameter", "Invalid start_date")
		return
	}
	end, err := parseTimeParam(r, "end_date")
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_parameter", "Invalid end_date")
		return
	}

	result, err := h.reader.SpendingByCategory(start, end)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"spending": result})
}

// SpendingOverTime handles GET /api/reports/spending-over-time. The
// period parameter accepts day, week or month and defaults to month.
func (h *ReportsHandler) SpendingOverTime(w http.ResponseWriter, r *http.Request) {
	period := r.URL.Query().Get("period")
	switch period {
	case "", "day", "week", "month":
	default:
		writeJSONError(w, http.StatusBadRequest, "invalid_parameter", "Period must be day, week or month")
		return
	}

	start, err := parseTimeParam(r, "start_date")
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_parameter", "Invalid start_date")
		return
	}
	end, err := parseTimeParam(r, "end_date")
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_parameter", "Invalid end_date")
		return
	}

	result, err := h.reader.SpendingOverTime(period, start, end)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"spending": result})
}

// MonthlyIncoming handles GET /api/reports/monthly-incoming. Year and
// month default to the current month.
func (h *ReportsHandler) MonthlyIncoming(w http.ResponseWriter, r *http.Request) {
	now := time.Now()
	year := now.Year()
	month := now.Month()

	if v := r.URL.Query().Get("year"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, "invalid_parameter", "Invalid year")
			return
		}
		year = n
	}
	if v := r.URL.Query().Get("month"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 12 {
			writeJSONError(w, http.StatusBadRequest, "invalid_parameter", "Invalid month")
			return
		}
		month = time.Month(n)
	}

	transactions, err := h.reader.MonthlyIncoming(year, month)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"transactions": transactions})
}
