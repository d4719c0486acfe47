package store

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/shunichi-ikebuchi/budget-ledger/internal/models"
)

const categoryColumns = `id, name, description, group_id, created_at, updated_at`

func scanCategory(row rowScanner) (*models.Category, error) {
	var c models.Category
	var description sql.NullString
	var groupID uuid.NullUUID
	err := row.Scan(&c.ID, &c.Name, &description, &groupID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if description.Valid {
		c.Description = &description.String
	}
	if groupID.Valid {
		id := groupID.UUID
		c.GroupID = &id
	}
	return &c, nil
}

// FindOrCreateCategory resolves a category name to its stable row,
// creating the category if unseen. The UNIQUE constraint on name plus
// INSERT OR IGNORE makes resolution idempotent under races: two
// concurrent calls with the same name converge on one row.
func (s *Store) FindOrCreateCategory(name string) (*models.Category, error) {
	now := time.Now().UTC()
	_, err := s.conn.Exec(`
		INSERT OR IGNORE INTO categories (id, name, created_at, updated_at)
		VALUES (?, ?, ?, ?)`,
		uuid.New(), name, now, now)
	if err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}

	return s.GetCategoryByName(name)
}

// GetCategory retrieves a category by ID.
func (s *Store) GetCategory(id uuid.UUID) (*models.Category, error) {
	c, err := scanCategory(s.conn.QueryRow(`SELECT `+categoryColumns+` FROM categories WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get category: %w", err)
	}
	return c, nil
}

// GetCategoryByName retrieves a category by its unique name.
func (s *Store) GetCategoryByName(name string) (*models.Category, error) {
	c, err := scanCategory(s.conn.QueryRow(`SELECT `+categoryColumns+` FROM categories WHERE name = ?`, name))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get category by name: %w", err)
	}
	return c, nil
}

// ListCategories returns all categories ordered by name.
func (s *Store) ListCategories() ([]models.Category, error) {
	rows, err := s.conn.Query(`SELECT ` + categoryColumns + ` FROM categories ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	var categories []models.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, *c)
	}
	return categories, rows.Err()
}

// CreateCategory creates a category with an explicit request. Returns
// ErrDuplicateName when the name is taken.
func (s *Store) CreateCategory(req *models.CreateCategoryRequest) (*models.Category, error) {
	now := time.Now().UTC()
	category := &models.Category{
		ID:          uuid.New(),
		Name:        req.Name,
		Description: req.Description,
		GroupID:     req.GroupID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	_, err := s.conn.Exec(`
		INSERT INTO categories (`+categoryColumns+`)
		VALUES (?, ?, ?, ?, ?, ?)`,
		category.ID, category.Name, category.Description, category.GroupID,
		category.CreatedAt, category.UpdatedAt)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return nil, ErrDuplicateName
		}
		return nil, fmt.Errorf("failed to create category: %w", err)
	}
	return category, nil
}

// UpdateCategory updates a category. Returns ErrNotFound if absent.
func (s *Store) UpdateCategory(id uuid.UUID, req *models.UpdateCategoryRequest) (*models.Category, error) {
	if _, err := s.GetCategory(id); err != nil {
		return nil, err
	}

	sets := []string{"updated_at = ?"}
	args := []interface{}{time.Now().UTC()}

	if req.Name != nil {
		sets = append(sets, "name = ?")
		args = append(args, *req.Name)
	}
	if req.Description != nil {
		sets = append(sets, "description = ?")
		args = append(args, *req.Description)
	}
	if req.GroupID != nil {
		sets = append(sets, "group_id = ?")
		args = append(args, *req.GroupID)
	}
	args = append(args, id)

	_, err := s.conn.Exec(`UPDATE categories SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return nil, ErrDuplicateName
		}
		return nil, fmt.Errorf("failed to update category: %w", err)
	}
	return s.GetCategory(id)
}

// DeleteCategory deletes a category, detaching it from any transactions
// first so the legacy display name survives on the rows.
func (s *Store) DeleteCategory(id uuid.UUID) (bool, error) {
	if _, err := s.GetCategory(id); err != nil {
		if err == ErrNotFound {
			return false, nil
		}
		return false, err
	}

	var affected int64
	err := s.conn.Transaction(func(tx *sql.Tx) error {
		if _, err := tx.Exec(`UPDATE transactions SET category_id = NULL WHERE category_id = ?`, id); err != nil {
			return fmt.Errorf("failed to detach category: %w", err)
		}

		result, err := tx.Exec(`DELETE FROM categories WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("failed to delete category: %w", err)
		}
		affected, err = result.RowsAffected()
		return err
	})
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}
