package http

import (
	"net/http"
	"strconv"

	"chitieu/internal/core"
)

type summaryResponse struct {
	Success bool              `json:"success"`
	Summary core.MonthSummary `json:"summary"`
}

type periodsResponse struct {
	Success bool          `json:"success"`
	Periods []core.Period `json:"periods"`
}

type yearlyResponse struct {
	Success bool                   `json:"success"`
	Year    int                    `json:"year"`
	Months  []core.MonthComparison `json:"months"`
}

// handleMonthSummary reports one month. Query parameters month (0-11)
// and year default to the session clock's current calendar month.
func (s *Server) handleMonthSummary(w http.ResponseWriter, r *http.Request) {
	month, year := s.tracker.Ledger().CurrentPeriod()

	q := r.URL.Query()
	if v := q.Get("month"); v != "" {
		m, err := strconv.Atoi(v)
		if err != nil || m < 0 || m > 11 {
			respondError(w, http.StatusUnprocessableEntity, "month must be between 0 and 11")
			return
		}
		month = m
	}
	if v := q.Get("year"); v != "" {
		y, err := strconv.Atoi(v)
		if err != nil {
			respondError(w, http.StatusUnprocessableEntity, "invalid year")
			return
		}
		year = y
	}

	summary := s.tracker.Ledger().MonthSummary(month, year)
	writeJSON(w, http.StatusOK, summaryResponse{Success: true, Summary: summary})
}

// handleReportPeriods lists the months that have expense data, most
// recent first.
func (s *Server) handleReportPeriods(w http.ResponseWriter, r *http.Request) {
	periods := s.tracker.Ledger().AvailableReportPeriods()
	if periods == nil {
		periods = []core.Period{}
	}
	writeJSON(w, http.StatusOK, periodsResponse{Success: true, Periods: periods})
}

// handleYearlyComparison returns twelve month rows of spend against the
// derived total limit.
func (s *Server) handleYearlyComparison(w http.ResponseWriter, r *http.Request) {
	_, year := s.tracker.Ledger().CurrentPeriod()
	if v := r.URL.Query().Get("year"); v != "" {
		y, err := strconv.Atoi(v)
		if err != nil {
			respondError(w, http.StatusUnprocessableEntity, "invalid year")
			return
		}
		year = y
	}

	months := s.tracker.Ledger().YearlyComparison(year)
	writeJSON(w, http.StatusOK, yearlyResponse{Success: true, Year: year, Months: months})
}
