package httpserver

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/skillsync/skillsync/internal/domain"
)

// SubmitApplicationHandler files an application against an open job.
func (s *Server) SubmitApplicationHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := requirePrincipal(w, r)
		if !ok {
			return
		}
		var in applicationRequest
		if err := decodeValid(r, &in); err != nil {
			writeError(w, r, err, nil)
			return
		}
		if err := validateAttachments(in.Attachments); err != nil {
			writeError(w, r, err, nil)
			return
		}
		a, err := s.Apps.Submit(r.Context(), p, chi.URLParam(r, "id"), in.toDomain())
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusCreated, toApplicationResponse(a))
	}
}

// ListJobApplicationsHandler returns a job's applications to its client.
func (s *Server) ListJobApplicationsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := requirePrincipal(w, r)
		if !ok {
			return
		}
		apps, err := s.Apps.ListForJob(r.Context(), p, chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		out := make([]applicationResponse, 0, len(apps))
		for _, a := range apps {
			out = append(out, toApplicationResponse(a))
		}
		writeJSON(w, http.StatusOK, map[string]any{"items": out, "total": len(out)})
	}
}

// EditApplicationHandler updates a pending application.
func (s *Server) EditApplicationHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := requirePrincipal(w, r)
		if !ok {
			return
		}
		var in applicationRequest
		if err := decodeValid(r, &in); err != nil {
			writeError(w, r, err, nil)
			return
		}
		if err := validateAttachments(in.Attachments); err != nil {
			writeError(w, r, err, nil)
			return
		}
		a, err := s.Apps.Edit(r.Context(), p, chi.URLParam(r, "id"), in.toDomain())
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, toApplicationResponse(a))
	}
}

// WithdrawApplicationHandler moves a pending application to withdrawn.
func (s *Server) WithdrawApplicationHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := requirePrincipal(w, r)
		if !ok {
			return
		}
		if err := s.Apps.Withdraw(r.Context(), p, chi.URLParam(r, "id")); err != nil {
			writeError(w, r, err, nil)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// ListOwnApplicationsHandler serves the calling developer's applications.
func (s *Server) ListOwnApplicationsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := requirePrincipal(w, r)
		if !ok {
			return
		}
		status := domain.ApplicationStatus(r.URL.Query().Get("status"))
		page, err := s.Apps.ListOwn(r.Context(), p, status, pageRequestFrom(r))
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		items := make([]applicationResponse, 0, len(page.Items))
		for _, a := range page.Items {
			items = append(items, toApplicationResponse(a))
		}
		writeJSON(w, http.StatusOK, domain.Page[applicationResponse]{
			Items: items, CurrentPage: page.CurrentPage, TotalPages: page.TotalPages, Total: page.Total,
		})
	}
}
