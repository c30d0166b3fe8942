package http

import (
	"net/http"

	"chitieu/internal/notify"
)

type notificationListResponse struct {
	Success       bool                  `json:"success"`
	Notifications []notify.Notification `json:"notifications"`
}

// handleListNotifications returns the active notifications in
// insertion order. Expired and dismissed entries never appear.
func (s *Server) handleListNotifications(w http.ResponseWriter, r *http.Request) {
	items := s.queue.Active()
	if items == nil {
		items = []notify.Notification{}
	}
	writeJSON(w, http.StatusOK, notificationListResponse{Success: true, Notifications: items})
}

// handleDismissNotification removes one notification. Dismissing an
// unknown or already-expired id succeeds; dismissal is idempotent.
func (s *Server) handleDismissNotification(w http.ResponseWriter, r *http.Request) {
	s.queue.Dismiss(r.PathValue("id"))
	respondMessage(w, http.StatusOK, "notification dismissed")
}

// handleSessionReset drops every transaction, budget, and notification
// and clears the persisted snapshot.
func (s *Server) handleSessionReset(w http.ResponseWriter, r *http.Request) {
	if err := s.tracker.Reset(r.Context()); err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.queue.Clear()
	respondMessage(w, http.StatusOK, "session reset")
}
