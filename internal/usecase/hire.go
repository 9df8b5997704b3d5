package usecase

import (
	"fmt"

	"github.com/skillsync/skillsync/internal/domain"
	"github.com/skillsync/skillsync/internal/observability"
)

// HireService coordinates the hire transition: one atomic unit spanning the
// job and every application filed against it. Either the job moves to
// in_progress with exactly one accepted application and all competitors
// rejected, or nothing changes.
type HireService struct {
	Jobs     domain.JobRepository
	Notifier domain.Notifier
}

// NewHireService constructs a HireService with its dependencies.
func NewHireService(jobs domain.JobRepository, n domain.Notifier) HireService {
	return HireService{Jobs: jobs, Notifier: n}
}

// Hire selects the developer's pending application for the job. The guard
// reads here produce friendly errors; the repository transaction re-validates
// job state under a row lock, so a concurrent hire on the same job loses with
// ErrStateConflict instead of producing a second accepted application.
func (s HireService) Hire(ctx domain.Context, p domain.Principal, jobID, developerID string) (domain.Application, error) {
	if developerID == "" {
		return domain.Application{}, fmt.Errorf("%w: developer id required", domain.ErrInvalidArgument)
	}
	j, err := s.Jobs.Get(ctx, jobID)
	if err != nil {
		return domain.Application{}, err
	}
	if j.ClientID != p.ID {
		return domain.Application{}, fmt.Errorf("%w: not the job's client", domain.ErrForbidden)
	}
	if j.Status != domain.JobOpen {
		return domain.Application{}, fmt.Errorf("%w: job is %s, hiring requires an open job", domain.ErrStateConflict, j.Status)
	}

	accepted, err := s.Jobs.Hire(ctx, jobID, developerID)
	if err != nil {
		return domain.Application{}, err
	}
	observability.JobTransitionsTotal.WithLabelValues(string(domain.JobInProgress)).Inc()
	publish(ctx, s.Notifier, domain.Event{
		Kind:        domain.EventDeveloperHired,
		JobID:       j.ID,
		JobTitle:    j.Title,
		ClientID:    j.ClientID,
		DeveloperID: developerID,
	})
	return accepted, nil
}
