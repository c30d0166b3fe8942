package http

import (
	"net/http"

	"chitieu/internal/core"
)

type budgetListResponse struct {
	Success    bool                  `json:"success"`
	Budgets    []core.CategoryBudget `json:"budgets"`
	TotalLimit core.Money            `json:"totalLimit"`
}

type budgetRequest struct {
	Category string     `json:"category"`
	Limit    core.Money `json:"limit"`
}

type budgetUpdateRequest struct {
	Category string     `json:"category"` // new name; empty keeps the current one
	Limit    core.Money `json:"limit"`
}

type categoryListResponse struct {
	Success    bool     `json:"success"`
	Categories []string `json:"categories"`
}

// handleListBudgets returns every budget plus the derived total limit.
func (s *Server) handleListBudgets(w http.ResponseWriter, r *http.Request) {
	l := s.tracker.Ledger()
	writeJSON(w, http.StatusOK, budgetListResponse{
		Success:    true,
		Budgets:    l.Budgets(),
		TotalLimit: l.TotalCategoryLimit(),
	})
}

// handleCreateBudget adds a budget for a category without one.
func (s *Server) handleCreateBudget(w http.ResponseWriter, r *http.Request) {
	var req budgetRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	if err := s.tracker.AddCategoryBudget(r.Context(), req.Category, req.Limit); err != nil {
		respondError(w, errorStatus(err), err.Error())
		return
	}
	respondMessage(w, http.StatusCreated, "budget created")
}

// handleUpdateBudget changes a budget's limit and optionally renames
// its category.
func (s *Server) handleUpdateBudget(w http.ResponseWriter, r *http.Request) {
	category := r.PathValue("category")

	var req budgetUpdateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	if err := s.tracker.UpdateCategoryBudget(r.Context(), category, req.Category, req.Limit); err != nil {
		respondError(w, errorStatus(err), err.Error())
		return
	}
	respondMessage(w, http.StatusOK, "budget updated")
}

// handleDeleteBudget removes a budget; unknown categories are a no-op.
func (s *Server) handleDeleteBudget(w http.ResponseWriter, r *http.Request) {
	category := r.PathValue("category")
	s.tracker.RemoveCategoryBudget(r.Context(), category)
	respondMessage(w, http.StatusOK, "budget removed")
}

// handleListCategories returns the union of expense categories and
// budgeted categories in collated order.
func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	cats := s.tracker.Ledger().AllUniqueCategories()
	if cats == nil {
		cats = []string{}
	}
	writeJSON(w, http.StatusOK, categoryListResponse{Success: true, Categories: cats})
}
