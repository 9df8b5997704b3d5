package httpserver

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/skillsync/skillsync/internal/domain"
)

// SendMessageHandler delivers a job-scoped message to the other participant.
func (s *Server) SendMessageHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := requirePrincipal(w, r)
		if !ok {
			return
		}
		var in messageRequest
		if err := decodeValid(r, &in); err != nil {
			writeError(w, r, err, nil)
			return
		}
		if err := validateAttachments(in.Attachments); err != nil {
			writeError(w, r, err, nil)
			return
		}
		m, err := s.Messages.Send(r.Context(), p, chi.URLParam(r, "id"), in.RecipientID, in.Content, attachmentsIn(in.Attachments))
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusCreated, toMessageResponse(m))
	}
}

// ListMessagesHandler serves the job conversation, marking the caller's unread
// messages as read.
func (s *Server) ListMessagesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := requirePrincipal(w, r)
		if !ok {
			return
		}
		page, err := s.Messages.ListForJob(r.Context(), p, chi.URLParam(r, "id"), pageRequestFrom(r))
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		items := make([]messageResponse, 0, len(page.Items))
		for _, m := range page.Items {
			items = append(items, toMessageResponse(m))
		}
		writeJSON(w, http.StatusOK, domain.Page[messageResponse]{
			Items: items, CurrentPage: page.CurrentPage, TotalPages: page.TotalPages, Total: page.Total,
		})
	}
}

// MarkMessageReadHandler marks one received message as read.
func (s *Server) MarkMessageReadHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := requirePrincipal(w, r)
		if !ok {
			return
		}
		if err := s.Messages.MarkRead(r.Context(), p, chi.URLParam(r, "id")); err != nil {
			writeError(w, r, err, nil)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// UnreadCountHandler reports how many unread messages await the caller.
func (s *Server) UnreadCountHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := requirePrincipal(w, r)
		if !ok {
			return
		}
		n, err := s.Messages.UnreadCount(r.Context(), p)
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, map[string]int64{"unread": n})
	}
}
