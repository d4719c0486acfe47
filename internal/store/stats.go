package store

import "fmt"

// Counts holds per-table record counts.
type Counts struct {
	Accounts     int
	Categories   int
	Budgets      int
	Transactions int
	Rules        int
}

// Counts retrieves record counts for the stats display.
func (s *Store) Counts() (*Counts, error) {
	counts := Counts{}
	for _, c := range []struct {
		table string
		dest  *int
	}{
		{"accounts", &counts.Accounts},
		{"categories", &counts.Categories},
		{"budgets", &counts.Budgets},
		{"transactions", &counts.Transactions},
		{"rules", &counts.Rules},
	} {
		if err := s.conn.QueryRow(`SELECT COUNT(*) FROM ` + c.table).Scan(c.dest); err != nil {
			return nil, fmt.Errorf("failed to count %s: %w", c.table, err)
		}
	}
	return &counts, nil
}
