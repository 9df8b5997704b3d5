package usecase

import (
	"fmt"
	"log/slog"

	"github.com/skillsync/skillsync/internal/domain"
	"github.com/skillsync/skillsync/internal/observability"
)

// RatingService is the rating gate: one rating per completed job, tied to the
// hired developer, with the developer aggregate recomputed on every change.
type RatingService struct {
	Ratings domain.RatingRepository
	Jobs    domain.JobRepository
	Cache   domain.ProfileCache
}

// NewRatingService constructs a RatingService with its dependencies.
func NewRatingService(ratings domain.RatingRepository, jobs domain.JobRepository, cache domain.ProfileCache) RatingService {
	return RatingService{Ratings: ratings, Jobs: jobs, Cache: cache}
}

func validateRatingInput(r domain.Rating) error {
	if r.Score < 1 || r.Score > 5 {
		return fmt.Errorf("%w: score must be between 1 and 5", domain.ErrInvalidArgument)
	}
	for name, v := range map[string]int{
		"communication": r.Categories.Communication,
		"quality":       r.Categories.Quality,
		"timeliness":    r.Categories.Timeliness,
	} {
		if v < 0 || v > 5 {
			return fmt.Errorf("%w: %s sub-score must be between 0 and 5", domain.ErrInvalidArgument, name)
		}
	}
	return nil
}

// Create rates a completed job. All guards run before the insert; the unique
// index on job_id is the authority on "exactly one rating per job" under
// concurrent submits.
func (s RatingService) Create(ctx domain.Context, p domain.Principal, r domain.Rating) (domain.Rating, error) {
	if err := validateRatingInput(r); err != nil {
		return domain.Rating{}, err
	}
	j, err := s.Jobs.Get(ctx, r.JobID)
	if err != nil {
		return domain.Rating{}, err
	}
	if j.ClientID != p.ID {
		return domain.Rating{}, fmt.Errorf("%w: only the job's client can rate", domain.ErrForbidden)
	}
	if j.Status != domain.JobCompleted {
		return domain.Rating{}, fmt.Errorf("%w: only completed jobs can be rated", domain.ErrStateConflict)
	}
	if j.HiredDeveloperID == nil || *j.HiredDeveloperID != r.DeveloperID {
		return domain.Rating{}, fmt.Errorf("%w: developer was not hired for this job", domain.ErrInvalidArgument)
	}

	r.ClientID = p.ID
	id, err := s.Ratings.Create(ctx, r)
	if err != nil {
		return domain.Rating{}, err
	}
	observability.RatingsTotal.WithLabelValues("create").Inc()
	s.recompute(ctx, r.DeveloperID)
	return s.Ratings.Get(ctx, id)
}

// loadAuthored fetches the rating and verifies the caller authored it.
func (s RatingService) loadAuthored(ctx domain.Context, p domain.Principal, id string) (domain.Rating, error) {
	r, err := s.Ratings.Get(ctx, id)
	if err != nil {
		return domain.Rating{}, err
	}
	if r.ClientID != p.ID {
		return domain.Rating{}, fmt.Errorf("%w: not the rating's author", domain.ErrForbidden)
	}
	return r, nil
}

// Update edits an authored rating and recomputes the developer aggregate.
func (s RatingService) Update(ctx domain.Context, p domain.Principal, id string, in domain.Rating) (domain.Rating, error) {
	r, err := s.loadAuthored(ctx, p, id)
	if err != nil {
		return domain.Rating{}, err
	}
	in.ID = r.ID
	if err := validateRatingInput(in); err != nil {
		return domain.Rating{}, err
	}
	if err := s.Ratings.Update(ctx, in); err != nil {
		return domain.Rating{}, err
	}
	observability.RatingsTotal.WithLabelValues("update").Inc()
	s.recompute(ctx, r.DeveloperID)
	return s.Ratings.Get(ctx, id)
}

// Delete removes an authored rating and recomputes the developer aggregate
// over the remaining set.
func (s RatingService) Delete(ctx domain.Context, p domain.Principal, id string) error {
	r, err := s.loadAuthored(ctx, p, id)
	if err != nil {
		return err
	}
	if err := s.Ratings.Delete(ctx, id); err != nil {
		return err
	}
	observability.RatingsTotal.WithLabelValues("delete").Inc()
	s.recompute(ctx, r.DeveloperID)
	return nil
}

// GetForJob returns the rating attached to a job.
func (s RatingService) GetForJob(ctx domain.Context, jobID string) (domain.Rating, error) {
	return s.Ratings.GetByJob(ctx, jobID)
}

// ListForDeveloper returns a developer's received ratings, newest first. The
// aggregate itself lives on the user row and is served by the profile surface.
func (s RatingService) ListForDeveloper(ctx domain.Context, developerID string, pr domain.PageRequest) (domain.Page[domain.Rating], error) {
	return s.Ratings.ListByDeveloper(ctx, developerID, pr)
}

// recompute refreshes the aggregate and drops the cached profile. A recompute
// failure leaves a stale aggregate, not a broken rating set, so it is logged
// rather than failing the operation that triggered it.
func (s RatingService) recompute(ctx domain.Context, developerID string) {
	if _, err := s.Ratings.RecomputeAggregate(ctx, developerID); err != nil {
		observability.LoggerFromContext(ctx).Error("rating aggregate recompute failed",
			slog.String("developer_id", developerID),
			slog.Any("error", err))
		return
	}
	if s.Cache != nil {
		if err := s.Cache.Invalidate(ctx, developerID); err != nil {
			observability.LoggerFromContext(ctx).Warn("profile cache invalidate failed",
				slog.String("developer_id", developerID),
				slog.Any("error", err))
		}
	}
}
