package httpserver

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/skillsync/skillsync/internal/domain"
)

// GetProfileHandler serves a user's public profile.
func (s *Server) GetProfileHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, err := s.Profiles.Get(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, toProfileResponse(u))
	}
}

// UpdateOwnProfileHandler edits the caller's profile.
func (s *Server) UpdateOwnProfileHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := requirePrincipal(w, r)
		if !ok {
			return
		}
		var in profileRequest
		if err := decodeValid(r, &in); err != nil {
			writeError(w, r, err, nil)
			return
		}
		u, err := s.Profiles.UpdateOwn(r.Context(), p, in.toDomain())
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, toProfileResponse(u))
	}
}

// ListDevelopersHandler serves the developer directory.
func (s *Server) ListDevelopersHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		f := domain.DeveloperFilter{
			Search:      q.Get("search"),
			PageRequest: pageRequestFrom(r),
		}
		if v := q.Get("min_rating"); v != "" {
			if n, err := strconv.ParseFloat(v, 64); err == nil {
				f.MinRating = n
			}
		}
		if v := q.Get("skills"); v != "" {
			for _, sk := range strings.Split(v, ",") {
				if sk = strings.TrimSpace(sk); sk != "" {
					f.Skills = append(f.Skills, sk)
				}
			}
		}
		page, err := s.Profiles.ListDevelopers(r.Context(), f)
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		items := make([]profileResponse, 0, len(page.Items))
		for _, u := range page.Items {
			items = append(items, toProfileResponse(u))
		}
		writeJSON(w, http.StatusOK, domain.Page[profileResponse]{
			Items: items, CurrentPage: page.CurrentPage, TotalPages: page.TotalPages, Total: page.Total,
		})
	}
}
