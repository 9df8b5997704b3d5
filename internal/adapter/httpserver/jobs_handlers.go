package httpserver

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/skillsync/skillsync/internal/domain"
)

func jobFilterFrom(r *http.Request) domain.JobFilter {
	q := r.URL.Query()
	f := domain.JobFilter{
		Status:          domain.JobStatus(q.Get("status")),
		Category:        q.Get("category"),
		ExperienceLevel: q.Get("experience_level"),
		BudgetType:      domain.BudgetType(q.Get("budget_type")),
		Search:          q.Get("search"),
		PageRequest:     pageRequestFrom(r),
	}
	if v := q.Get("min_budget"); v != "" {
		if n, err := strconv.ParseFloat(v, 64); err == nil {
			f.MinBudget = &n
		}
	}
	if v := q.Get("max_budget"); v != "" {
		if n, err := strconv.ParseFloat(v, 64); err == nil {
			f.MaxBudget = &n
		}
	}
	if v := q.Get("skills"); v != "" {
		for _, s := range strings.Split(v, ",") {
			if s = strings.TrimSpace(s); s != "" {
				f.Skills = append(f.Skills, s)
			}
		}
	}
	return f
}

// CreateJobHandler posts a new job for the calling client.
func (s *Server) CreateJobHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := requirePrincipal(w, r)
		if !ok {
			return
		}
		var in jobRequest
		if err := decodeValid(r, &in); err != nil {
			writeError(w, r, err, nil)
			return
		}
		if err := validateAttachments(in.Attachments); err != nil {
			writeError(w, r, err, nil)
			return
		}
		j, err := s.Jobs.Create(r.Context(), p, in.toDomain())
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusCreated, toJobResponse(j))
	}
}

// ListJobsHandler serves the public browse listing.
func (s *Server) ListJobsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, err := s.Jobs.List(r.Context(), jobFilterFrom(r))
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, toJobPage(page))
	}
}

// GetJobHandler serves a single job.
func (s *Server) GetJobHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		j, err := s.Jobs.Get(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, toJobResponse(j))
	}
}

// UpdateJobHandler edits an open job.
func (s *Server) UpdateJobHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := requirePrincipal(w, r)
		if !ok {
			return
		}
		var in jobRequest
		if err := decodeValid(r, &in); err != nil {
			writeError(w, r, err, nil)
			return
		}
		if err := validateAttachments(in.Attachments); err != nil {
			writeError(w, r, err, nil)
			return
		}
		j, err := s.Jobs.Update(r.Context(), p, chi.URLParam(r, "id"), in.toDomain())
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, toJobResponse(j))
	}
}

// DeleteJobHandler removes a job and its dependents.
func (s *Server) DeleteJobHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := requirePrincipal(w, r)
		if !ok {
			return
		}
		if err := s.Jobs.Delete(r.Context(), p, chi.URLParam(r, "id")); err != nil {
			writeError(w, r, err, nil)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// CancelJobHandler moves an open job to cancelled.
func (s *Server) CancelJobHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := requirePrincipal(w, r)
		if !ok {
			return
		}
		if err := s.Jobs.Cancel(r.Context(), p, chi.URLParam(r, "id")); err != nil {
			writeError(w, r, err, nil)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// CompleteJobHandler moves an in-progress job to completed.
func (s *Server) CompleteJobHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := requirePrincipal(w, r)
		if !ok {
			return
		}
		if err := s.Jobs.Complete(r.Context(), p, chi.URLParam(r, "id")); err != nil {
			writeError(w, r, err, nil)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// HireHandler selects a developer's application for the job.
func (s *Server) HireHandler() http.HandlerFunc {
	type hireRequest struct {
		DeveloperID string `json:"developer_id" validate:"required"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := requirePrincipal(w, r)
		if !ok {
			return
		}
		var in hireRequest
		if err := decodeValid(r, &in); err != nil {
			writeError(w, r, err, nil)
			return
		}
		accepted, err := s.Hiring.Hire(r.Context(), p, chi.URLParam(r, "id"), in.DeveloperID)
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, toApplicationResponse(accepted))
	}
}

// ReleasePaymentHandler flips the payment boundary flag on a completed job.
func (s *Server) ReleasePaymentHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := requirePrincipal(w, r)
		if !ok {
			return
		}
		if err := s.Jobs.ReleasePayment(r.Context(), p, chi.URLParam(r, "id")); err != nil {
			writeError(w, r, err, nil)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// ListOwnJobsHandler serves the calling client's jobs.
func (s *Server) ListOwnJobsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := requirePrincipal(w, r)
		if !ok {
			return
		}
		status := domain.JobStatus(r.URL.Query().Get("status"))
		page, err := s.Jobs.ListOwn(r.Context(), p, status, pageRequestFrom(r))
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, toJobPage(page))
	}
}
