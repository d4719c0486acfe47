package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/shunichi-ikebuchi/budget-ledger/internal/models"
)

const ruleColumns = `id, name, description, is_active, priority, group_id, conditions_json, actions_json, created_at, updated_at`

// defaultRulePriority is assigned when a create request omits priority.
const defaultRulePriority = 100

func scanRule(row rowScanner) (*models.Rule, error) {
	var r models.Rule
	var description sql.NullString
	var groupID uuid.NullUUID
	err := row.Scan(&r.ID, &r.Name, &description, &r.IsActive, &r.Priority,
		&groupID, &r.ConditionsJSON, &r.ActionsJSON, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if description.Valid {
		r.Description = &description.String
	}
	if groupID.Valid {
		id := groupID.UUID
		r.GroupID = &id
	}
	return &r, nil
}

// CreateRule creates a rule, serializing its ordered condition and
// action lists.
func (s *Store) CreateRule(req *models.CreateRuleRequest) (*models.Rule, error) {
	conditionsJSON, err := json.Marshal(req.Conditions)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize conditions: %w", err)
	}
	actionsJSON, err := json.Marshal(req.Actions)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize actions: %w", err)
	}

	priority := defaultRulePriority
	if req.Priority != nil {
		priority = *req.Priority
	}

	now := time.Now().UTC()
	rule := &models.Rule{
		ID:             uuid.New(),
		Name:           req.Name,
		Description:    req.Description,
		IsActive:       req.IsActive,
		Priority:       priority,
		GroupID:        req.GroupID,
		ConditionsJSON: string(conditionsJSON),
		ActionsJSON:    string(actionsJSON),
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	_, err = s.conn.Exec(`
		INSERT INTO rules (`+ruleColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rule.ID, rule.Name, rule.Description, rule.IsActive, rule.Priority,
		rule.GroupID, rule.ConditionsJSON, rule.ActionsJSON,
		rule.CreatedAt, rule.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create rule: %w", err)
	}
	return rule, nil
}

// GetRule retrieves a rule by ID.
func (s *Store) GetRule(id uuid.UUID) (*models.Rule, error) {
	r, err := scanRule(s.conn.QueryRow(`SELECT `+ruleColumns+` FROM rules WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get rule: %w", err)
	}
	return r, nil
}

// ListRules returns all rules in evaluation order: ascending priority,
// ties broken by name.
func (s *Store) ListRules() ([]models.Rule, error) {
	return s.queryRules(`SELECT ` + ruleColumns + ` FROM rules ORDER BY priority ASC, name ASC`)
}

// ActiveRules returns active rules in evaluation order: ascending
// priority, ties broken by name ascending.
func (s *Store) ActiveRules() ([]models.Rule, error) {
	return s.queryRules(`SELECT ` + ruleColumns + ` FROM rules WHERE is_active = 1 ORDER BY priority ASC, name ASC`)
}

func (s *Store) queryRules(query string, args ...interface{}) ([]models.Rule, error) {
	rows, err := s.conn.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query rules: %w", err)
	}
	defer rows.Close()

	var rules []models.Rule
	for rows.Next() {
		r, err := scanRule(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan rule: %w", err)
		}
		rules = append(rules, *r)
	}
	return rules, rows.Err()
}

// UpdateRule updates a rule. Returns ErrNotFound if absent.
func (s *Store) UpdateRule(id uuid.UUID, req *models.UpdateRuleRequest) (*models.Rule, error) {
	if _, err := s.GetRule(id); err != nil {
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
	if req.IsActive != nil {
		sets = append(sets, "is_active = ?")
		args = append(args, *req.IsActive)
	}
	if req.Priority != nil {
		sets = append(sets, "priority = ?")
		args = append(args, *req.Priority)
	}
	if req.GroupID != nil {
		sets = append(sets, "group_id = ?")
		args = append(args, *req.GroupID)
	}
	if req.Conditions != nil {
		conditionsJSON, err := json.Marshal(*req.Conditions)
		if err != nil {
			return nil, fmt.Errorf("failed to serialize conditions: %w", err)
		}
		sets = append(sets, "conditions_json = ?")
		args = append(args, string(conditionsJSON))
	}
	if req.Actions != nil {
		actionsJSON, err := json.Marshal(*req.Actions)
		if err != nil {
			return nil, fmt.Errorf("failed to serialize actions: %w", err)
		}
		sets = append(sets, "actions_json = ?")
		args = append(args, string(actionsJSON))
	}
	args = append(args, id)

	_, err := s.conn.Exec(`UPDATE rules SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to update rule: %w", err)
	}
	return s.GetRule(id)
}

// DeleteRule deletes a rule.
func (s *Store) DeleteRule(id uuid.UUID) (bool, error) {
	result, err := s.conn.Exec(`DELETE FROM rules WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete rule: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}
