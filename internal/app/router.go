// Package app wires configuration, adapters and routes into runnable servers.
package app

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/skillsync/skillsync/internal/adapter/httpserver"
	"github.com/skillsync/skillsync/internal/config"
	"github.com/skillsync/skillsync/internal/domain"
	"github.com/skillsync/skillsync/internal/observability"
)

// ParseOrigins splits a comma-separated origin list, trimming spaces. An empty
// input means all origins.
func ParseOrigins(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" || s == "*" {
		return []string{"*"}
	}
	out := make([]string, 0)
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}

// BuildRouter constructs the HTTP handler with all middleware and routes.
func BuildRouter(cfg config.Config, srv *httpserver.Server, verifier domain.TokenVerifier) http.Handler {
	r := chi.NewRouter()
	r.Use(httpserver.Recoverer())
	r.Use(httpserver.RequestID())
	r.Use(httpserver.TimeoutMiddleware(30 * time.Second))
	r.Use(httpserver.AccessLog())
	r.Use(observability.HTTPMetricsMiddleware)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   ParseOrigins(cfg.CORSAllowOrigins),
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Public surface
	r.Get("/v1/jobs", srv.ListJobsHandler())
	r.Get("/v1/jobs/{id}", srv.GetJobHandler())
	r.Get("/v1/jobs/{id}/rating", srv.GetJobRatingHandler())
	r.Get("/v1/developers", srv.ListDevelopersHandler())
	r.Get("/v1/developers/{id}/ratings", srv.ListDeveloperRatingsHandler())
	r.Get("/v1/users/{id}", srv.GetProfileHandler())

	// Authenticated surface; mutating routes are also rate limited per IP.
	r.Group(func(ar chi.Router) {
		ar.Use(httpserver.Authenticate(verifier))

		ar.Get("/v1/my/jobs", srv.ListOwnJobsHandler())
		ar.Get("/v1/my/applications", srv.ListOwnApplicationsHandler())
		ar.Get("/v1/my/messages/unread-count", srv.UnreadCountHandler())
		ar.Get("/v1/jobs/{id}/applications", srv.ListJobApplicationsHandler())
		ar.Get("/v1/jobs/{id}/messages", srv.ListMessagesHandler())

		ar.Group(func(wr chi.Router) {
			wr.Use(httprate.LimitByIP(cfg.RateLimitPerMin, 1*time.Minute))

			wr.Post("/v1/jobs", srv.CreateJobHandler())
			wr.Put("/v1/jobs/{id}", srv.UpdateJobHandler())
			wr.Delete("/v1/jobs/{id}", srv.DeleteJobHandler())
			wr.Post("/v1/jobs/{id}/cancel", srv.CancelJobHandler())
			wr.Post("/v1/jobs/{id}/complete", srv.CompleteJobHandler())
			wr.Post("/v1/jobs/{id}/hire", srv.HireHandler())
			wr.Post("/v1/jobs/{id}/release-payment", srv.ReleasePaymentHandler())

			wr.Post("/v1/jobs/{id}/applications", srv.SubmitApplicationHandler())
			wr.Put("/v1/applications/{id}", srv.EditApplicationHandler())
			wr.Post("/v1/applications/{id}/withdraw", srv.WithdrawApplicationHandler())

			wr.Post("/v1/ratings", srv.CreateRatingHandler())
			wr.Put("/v1/ratings/{id}", srv.UpdateRatingHandler())
			wr.Delete("/v1/ratings/{id}", srv.DeleteRatingHandler())

			wr.Post("/v1/jobs/{id}/messages", srv.SendMessageHandler())
			wr.Post("/v1/messages/{id}/read", srv.MarkMessageReadHandler())

			wr.Put("/v1/my/profile", srv.UpdateOwnProfileHandler())
		})
	})

	// Health and metrics
	r.Get("/healthz", srv.HealthzHandler())
	r.Get("/readyz", srv.ReadyzHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) { promhttp.Handler().ServeHTTP(w, r) })

	return otelhttp.NewHandler(httpserver.SecurityHeaders(r), "http.server")
}
