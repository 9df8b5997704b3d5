package httpserver

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/skillsync/skillsync/internal/domain"
)

// CreateRatingHandler rates a completed job's hired developer.
func (s *Server) CreateRatingHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := requirePrincipal(w, r)
		if !ok {
			return
		}
		var in ratingRequest
		if err := decodeValid(r, &in); err != nil {
			writeError(w, r, err, nil)
			return
		}
		rt, err := s.Ratings.Create(r.Context(), p, in.toDomain())
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusCreated, toRatingResponse(rt))
	}
}

// GetJobRatingHandler returns the rating attached to a job.
func (s *Server) GetJobRatingHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rt, err := s.Ratings.GetForJob(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, toRatingResponse(rt))
	}
}

// UpdateRatingHandler edits an authored rating. The rating stays pinned to its
// job and developer; only the scores and review text change.
func (s *Server) UpdateRatingHandler() http.HandlerFunc {
	type ratingUpdateRequest struct {
		Score      int    `json:"score" validate:"required,min=1,max=5"`
		Review     string `json:"review"`
		Categories struct {
			Communication int `json:"communication" validate:"min=0,max=5"`
			Quality       int `json:"quality" validate:"min=0,max=5"`
			Timeliness    int `json:"timeliness" validate:"min=0,max=5"`
		} `json:"categories"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := requirePrincipal(w, r)
		if !ok {
			return
		}
		var in ratingUpdateRequest
		if err := decodeValid(r, &in); err != nil {
			writeError(w, r, err, nil)
			return
		}
		rt, err := s.Ratings.Update(r.Context(), p, chi.URLParam(r, "id"), domain.Rating{
			Score:  in.Score,
			Review: in.Review,
			Categories: domain.RatingCategories{
				Communication: in.Categories.Communication,
				Quality:       in.Categories.Quality,
				Timeliness:    in.Categories.Timeliness,
			},
		})
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, toRatingResponse(rt))
	}
}

// DeleteRatingHandler removes an authored rating.
func (s *Server) DeleteRatingHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := requirePrincipal(w, r)
		if !ok {
			return
		}
		if err := s.Ratings.Delete(r.Context(), p, chi.URLParam(r, "id")); err != nil {
			writeError(w, r, err, nil)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// ListDeveloperRatingsHandler serves a developer's received ratings.
func (s *Server) ListDeveloperRatingsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, err := s.Ratings.ListForDeveloper(r.Context(), chi.URLParam(r, "id"), pageRequestFrom(r))
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		items := make([]ratingResponse, 0, len(page.Items))
		for _, rt := range page.Items {
			items = append(items, toRatingResponse(rt))
		}
		writeJSON(w, http.StatusOK, domain.Page[ratingResponse]{
			Items: items, CurrentPage: page.CurrentPage, TotalPages: page.TotalPages, Total: page.Total,
		})
	}
}
