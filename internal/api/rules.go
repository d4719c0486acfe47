package api

import (
	"encoding/json"
	"net/http"

	"github.com/shunichi-ikebuchi/budget-ledger/internal/models"
	"github.com/shunichi-ikebuchi/budget-ledger/internal/rules"
	"github.com/shunichi-ikebuchi/budget-ledger/internal/store"
)

// RulesHandler handles rule CRUD plus the test and apply endpoints.
type RulesHandler struct {
	store  *store.Store
	engine *rules.Engine
}

// NewRulesHandler creates a new RulesHandler.
func NewRulesHandler(s *store.Store, engine *rules.Engine) *RulesHandler {
	return &RulesHandler{store: s, engine: engine}
}

// List handles GET /api/rules. Rules are returned in evaluation order.
func (h *RulesHandler) List(w http.ResponseWriter, r *http.Request) {
	stored, err := h.store.ListRules()
	if err != nil {
		writeError(w, err)
		return
	}

	details := make([]models.RuleDetail, 0, len(stored))
	for _, rule := range stored {
		detail, err := rule.ToDetail()
		if err != nil {
			// A malformed row must not hide the rest of the list.
			continue
		}
		details = append(details, *detail)
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"rules": details})
}

// Get handles GET /api/rules/{id}.
func (h *RulesHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	rule, err := h.store.GetRule(id)
	if err != nil {
		writeError(w, err)
		return
	}

	detail, err := rule.ToDetail()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

// Create handles POST /api/rules.
func (h *RulesHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateRuleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_body", "Invalid request body")
		return
	}
	if req.Name == "" {
		writeJSONError(w, http.StatusBadRequest, "invalid_parameter", "Name is required")
		return
	}
	if err := rules.Validate(req.Conditions, req.Actions); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_rule", err.Error())
		return
	}

	rule, err := h.store.CreateRule(&req)
	if err != nil {
		writeError(w, err)
		return
	}

	detail, err := rule.ToDetail()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, detail)
}

// Update handles PUT /api/rules/{id}.
func (h *RulesHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	var req models.UpdateRuleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_body", "Invalid request body")
		return
	}
	if req.Conditions != nil || req.Actions != nil {
		var conditions []models.RuleCondition
		var actions []models.RuleAction
		if req.Conditions != nil {
			conditions = *req.Conditions
		}
		if req.Actions != nil {
			actions = *req.Actions
		}
		if err := rules.Validate(conditions, actions); err != nil {
			writeJSONError(w, http.StatusBadRequest, "invalid_rule", err.Error())
			return
		}
	}

	rule, err := h.store.UpdateRule(id, &req)
	if err != nil {
		writeError(w, err)
		return
	}

	detail, err := rule.ToDetail()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

// Delete handles DELETE /api/rules/{id}.
func (h *RulesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	deleted, err := h.store.DeleteRule(id)
	if err != nil {
		writeError(w, err)
		return
	}
	if !deleted {
		writeJSONError(w, http.StatusNotFound, "not_found", "Rule not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// testRequest is the body of POST /api/rules/test.
type testRequest struct {
	Conditions []models.RuleCondition `json:"conditions"`
}

// testResponse reports how many stored transactions a condition set
// matches, with a bounded sample.
type testResponse struct {
	MatchCount int                  `json:"match_count"`
	Sample     []models.Transaction `json:"sample"`
}

// Test handles POST /api/rules/test: dry-run a condition set against all
// stored transactions without writing anything.
func (h *RulesHandler) Test(w http.ResponseWriter, r *http.Request) {
	var req testRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_body", "Invalid request body")
		return
	}

	total, sample, err := h.engine.TestConditions(req.Conditions)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_rule", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, testResponse{MatchCount: total, Sample: sample})
}

// applyResponse reports how many transactions an apply run changed.
type applyResponse struct {
	Affected int `json:"affected"`
}

// Run handles POST /api/rules/{id}/run: apply one rule to every stored
// transaction.
func (h *RulesHandler) Run(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	affected, err := h.engine.ApplyRule(id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, applyResponse{Affected: affected})
}

// RunAll handles POST /api/rules/run: apply every active rule to every
// stored transaction.
func (h *RulesHandler) RunAll(w http.ResponseWriter, r *http.Request) {
	affected, err := h.engine.ApplyAllActive()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, applyResponse{Affected: affected})
}
