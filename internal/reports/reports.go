// Package reports provides read-only aggregation queries over the
// transaction table. No invariant maintenance happens here.
package reports

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/shunichi-ikebuchi/budget-ledger/internal/models"
	"github.com/shunichi-ikebuchi/budget-ledger/pkg/db"
)

// Reader runs reporting queries.
type Reader struct {
	conn *db.Connection
}

// New creates a report reader.
func New(conn *db.Connection) *Reader {
	return &Reader{conn: conn}
}

// CategorySpend is one row of the spending-by-category report.
type CategorySpend struct {
	Category string  `json:"category"`
	Total    float64 `json:"total_amount"`
}

// PeriodSpend is one row of the spending-over-time report.
type PeriodSpend struct {
	Period   string  `json:"period"` // YYYY-MM-DD bucket start
	Category string  `json:"category"`
	Total    float64 `json:"total_amount"`
}

// SpendingByCategory sums transaction amounts per category, optionally
// restricted to a date range. The resolved category name wins over the
// legacy free-text field.
func (r *Reader) SpendingByCategory(startDate, endDate *time.Time) ([]CategorySpend, error) {
	query := `
		SELECT COALESCE(c.name, t.category, 'No category') AS category,
		       SUM(t.amount) AS total_amount
		FROM transactions t
		LEFT JOIN categories c ON c.id = t.category_id
		WHERE 1=1`
	var args []interface{}

	if startDate != nil {
		query += ` AND t.transaction_date >= ?`
		args = append(args, *startDate)
	}
	if endDate != nil {
		query += ` AND t.transaction_date <= ?`
		args = append(args, *endDate)
	}

	query += ` GROUP BY 1 ORDER BY total_amount DESC`

	rows, err := r.conn.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query spending by category: %w", err)
	}
	defer rows.Close()

	var result []CategorySpend
	for rows.Next() {
		var row CategorySpend
		if err := rows.Scan(&row.Category, &row.Total); err != nil {
			return nil, fmt.Errorf("failed to scan spending row: %w", err)
		}
		result = append(result, row)
	}
	return result, rows.Err()
}

// SpendingOverTime buckets positive spending from on-budget source
// accounts into day, week or month periods per category. Transfer
// categories are excluded.
func (r *Reader) SpendingOverTime(period string, startDate, endDate *time.Time) ([]PeriodSpend, error) {
	var bucket string
	switch period {
	case "day":
		bucket = `strftime('%Y-%m-%d', t.transaction_date)`
	case "week":
		// Bucket on the Monday of the transaction's week.
		bucket = `date(t.transaction_date, 'weekday 1', '-7 days')`
	default:
		bucket = `strftime('%Y-%m-01', t.transaction_date)`
	}

	query := `
		SELECT ` + bucket + ` AS period,
		       COALESCE(c.name, t.category, 'Uncategorized') AS category,
		       SUM(t.amount) AS total_amount
		FROM transactions t
		JOIN accounts src ON t.source_account_id = src.id
		LEFT JOIN categories c ON c.id = t.category_id
		WHERE src.account_type = ? AND t.amount > 0
		  AND (COALESCE(c.name, t.category) IS NULL
		       OR COALESCE(c.name, t.category) NOT IN ('Transfer', 'Transfers'))`
	args := []interface{}{models.AccountOnBudget}

	if startDate != nil {
		query += ` AND t.transaction_date >= ?`
		args = append(args, *startDate)
	}
	if endDate != nil {
		query += ` AND t.transaction_date <= ?`
		args = append(args, *endDate)
	}

	query += ` GROUP BY 1, 2 ORDER BY 1, 2`

	rows, err := r.conn.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query spending over time: %w", err)
	}
	defer rows.Close()

	var result []PeriodSpend
	for rows.Next() {
		var row PeriodSpend
		if err := rows.Scan(&row.Period, &row.Category, &row.Total); err != nil {
			return nil, fmt.Errorf("failed to scan spending row: %w", err)
		}
		result = append(result, row)
	}
	return result, rows.Err()
}

// MonthlyIncoming returns the month's incoming transactions to on-budget
// accounts, excluding transfers between on-budget accounts, most recent
// first.
func (r *Reader) MonthlyIncoming(year int, month time.Month) ([]models.Transaction, error) {
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)

	query := `
		SELECT t.id, t.source_account_id, t.destination_account_id, t.destination_name,
		       t.description, t.amount, t.category, t.category_id, t.budget_id,
		       t.transaction_date, t.created_at, t.updated_at
		FROM transactions t
		JOIN accounts dst ON t.destination_account_id = dst.id
		LEFT JOIN accounts src ON t.source_account_id = src.id
		WHERE dst.account_type = ?
		  AND (src.account_type IS NULL OR src.account_type <> ?)
		  AND t.amount > 0
		  AND t.transaction_date >= ?
		  AND t.transaction_date < ?
		ORDER BY t.transaction_date DESC`

	rows, err := r.conn.Query(query, models.AccountOnBudget, models.AccountOnBudget, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to query monthly incoming: %w", err)
	}
	defer rows.Close()

	var transactions []models.Transaction
	for rows.Next() {
		var t models.Transaction
		var destName sql.NullString
		var categoryID, budgetID uuid.NullUUID
		err := rows.Scan(&t.ID, &t.SourceAccountID, &t.DestinationAccountID, &destName,
			&t.Description, &t.Amount, &t.Category, &categoryID, &budgetID,
			&t.TransactionDate, &t.CreatedAt, &t.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		if destName.Valid {
			t.DestinationName = &destName.String
		}
		if categoryID.Valid {
			id := categoryID.UUID
			t.CategoryID = &id
		}
		if budgetID.Valid {
			id := budgetID.UUID
			t.BudgetID = &id
		}
		transactions = append(transactions, t)
	}
	return transactions, rows.Err()
}
