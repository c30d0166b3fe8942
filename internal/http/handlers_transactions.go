package http

import (
	"net/http"

	"chitieu/internal/core"
	"chitieu/internal/ledger"
)

type transactionResponse struct {
	Success     bool             `json:"success"`
	Transaction core.Transaction `json:"transaction"`
	Alerts      []ledger.Alert   `json:"alerts,omitempty"`
}

type transactionListResponse struct {
	Success      bool               `json:"success"`
	Transactions []core.Transaction `json:"transactions"`
	LastDate     string             `json:"lastDate,omitempty"`
}

// handleCreateTransaction records a transaction of either type.
func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var in core.TransactionInput
	if err := decodeJSON(w, r, &in); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	tx, alerts, err := s.tracker.AddTransaction(r.Context(), in)
	if err != nil {
		respondError(w, errorStatus(err), err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, transactionResponse{Success: true, Transaction: tx, Alerts: alerts})
}

// handleCreateExpense is the dedicated expense-entry route; the type
// field of the body is ignored.
func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	var in core.TransactionInput
	if err := decodeJSON(w, r, &in); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	tx, alerts, err := s.tracker.AddExpense(r.Context(), in)
	if err != nil {
		respondError(w, errorStatus(err), err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, transactionResponse{Success: true, Transaction: tx, Alerts: alerts})
}

// handleListTransactions returns the filtered record list, newest
// first. Query parameters: category, type, from, to (ISO dates,
// inclusive).
func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := ledger.TransactionFilter{
		Category: q.Get("category"),
		Type:     core.TransactionType(q.Get("type")),
	}
	if filter.Type != "" {
		if err := filter.Type.Validate(); err != nil {
			respondError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
	}
	if v := q.Get("from"); v != "" {
		from, err := core.ParseDate(v)
		if err != nil {
			respondError(w, http.StatusUnprocessableEntity, "invalid 'from' date")
			return
		}
		filter.From = from
	}
	if v := q.Get("to"); v != "" {
		to, err := core.ParseDate(v)
		if err != nil {
			respondError(w, http.StatusUnprocessableEntity, "invalid 'to' date")
			return
		}
		filter.To = to
	}

	resp := transactionListResponse{
		Success:      true,
		Transactions: s.tracker.Ledger().Transactions(filter),
	}
	if last := s.tracker.Ledger().LastTransactionDate(); !last.IsZero() {
		resp.LastDate = last.ISO()
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleGetTransaction returns a single record by id.
func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	for _, tx := range s.tracker.Ledger().Transactions(ledger.TransactionFilter{}) {
		if tx.ID == id {
			writeJSON(w, http.StatusOK, transactionResponse{Success: true, Transaction: tx})
			return
		}
	}
	respondError(w, http.StatusNotFound, ledger.ErrTransactionNotFound.Error())
}

type transactionPatchRequest struct {
	Amount   *core.Money           `json:"amount"`
	Category *string               `json:"category"`
	Date     *core.Date            `json:"date"`
	Note     *string               `json:"note"`
	Type     *core.TransactionType `json:"type"`
}

// handleUpdateTransaction applies a partial update; absent fields keep
// their current value.
func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var req transactionPatchRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	patch := ledger.TransactionPatch{
		Amount:   req.Amount,
		Category: req.Category,
		Date:     req.Date,
		Note:     req.Note,
		Type:     req.Type,
	}
	tx, err := s.tracker.UpdateTransaction(r.Context(), id, patch)
	if err != nil {
		respondError(w, errorStatus(err), err.Error())
		return
	}

	writeJSON(w, http.StatusOK, transactionResponse{Success: true, Transaction: tx})
}

// handleDeleteTransaction removes a record. Removal is idempotent, so
// an unknown id still succeeds.
func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	s.tracker.RemoveTransaction(r.Context(), id)
	respondMessage(w, http.StatusOK, "transaction removed")
}
