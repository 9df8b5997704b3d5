package usecase

import (
	"fmt"
	"strings"

	"github.com/skillsync/skillsync/internal/domain"
	"github.com/skillsync/skillsync/internal/observability"
)

// ApplicationService owns the per-(job, developer) application ledger.
type ApplicationService struct {
	Applications domain.ApplicationRepository
	Jobs         domain.JobRepository
	Notifier     domain.Notifier
}

// NewApplicationService constructs an ApplicationService with its dependencies.
func NewApplicationService(apps domain.ApplicationRepository, jobs domain.JobRepository, n domain.Notifier) ApplicationService {
	return ApplicationService{Applications: apps, Jobs: jobs, Notifier: n}
}

func validateApplicationInput(a domain.Application) error {
	if strings.TrimSpace(a.CoverLetter) == "" {
		return fmt.Errorf("%w: cover letter required", domain.ErrInvalidArgument)
	}
	if a.ProposedRate < 0 {
		return fmt.Errorf("%w: proposed rate must be non-negative", domain.ErrInvalidArgument)
	}
	return nil
}

// Submit files a pending application against an open job. The storage-level
// unique index is the authority on duplicates: a concurrent submit by the same
// developer loses with ErrConflict even though both passed the guard reads.
func (s ApplicationService) Submit(ctx domain.Context, p domain.Principal, jobID string, a domain.Application) (domain.Application, error) {
	if p.Role != domain.RoleDeveloper {
		return domain.Application{}, fmt.Errorf("%w: only developers can apply", domain.ErrForbidden)
	}
	if err := validateApplicationInput(a); err != nil {
		return domain.Application{}, err
	}
	j, err := s.Jobs.Get(ctx, jobID)
	if err != nil {
		return domain.Application{}, err
	}
	if j.Status != domain.JobOpen {
		return domain.Application{}, fmt.Errorf("%w: job is not open for applications", domain.ErrStateConflict)
	}
	a.JobID = jobID
	a.DeveloperID = p.ID
	a.Status = domain.ApplicationPending
	id, err := s.Applications.Create(ctx, a)
	if err != nil {
		return domain.Application{}, err
	}
	observability.ApplicationsSubmittedTotal.Inc()
	publish(ctx, s.Notifier, domain.Event{
		Kind:        domain.EventApplicationSubmitted,
		JobID:       j.ID,
		JobTitle:    j.Title,
		ClientID:    j.ClientID,
		DeveloperID: p.ID,
	})
	return s.Applications.Get(ctx, id)
}

// loadOwned fetches the application and verifies the caller owns it.
func (s ApplicationService) loadOwned(ctx domain.Context, p domain.Principal, id string) (domain.Application, error) {
	a, err := s.Applications.Get(ctx, id)
	if err != nil {
		return domain.Application{}, err
	}
	if a.DeveloperID != p.ID {
		return domain.Application{}, fmt.Errorf("%w: not the application's developer", domain.ErrForbidden)
	}
	return a, nil
}

// Edit updates a pending application's fields.
func (s ApplicationService) Edit(ctx domain.Context, p domain.Principal, id string, in domain.Application) (domain.Application, error) {
	a, err := s.loadOwned(ctx, p, id)
	if err != nil {
		return domain.Application{}, err
	}
	if !a.Mutable() {
		return domain.Application{}, fmt.Errorf("%w: application is %s, only pending applications can be edited", domain.ErrStateConflict, a.Status)
	}
	if err := validateApplicationInput(in); err != nil {
		return domain.Application{}, err
	}
	in.ID = a.ID
	if err := s.Applications.Update(ctx, in); err != nil {
		return domain.Application{}, err
	}
	return s.Applications.Get(ctx, id)
}

// Withdraw moves a pending application to withdrawn, terminally.
func (s ApplicationService) Withdraw(ctx domain.Context, p domain.Principal, id string) error {
	a, err := s.loadOwned(ctx, p, id)
	if err != nil {
		return err
	}
	if !a.Mutable() {
		return fmt.Errorf("%w: application is %s, only pending applications can be withdrawn", domain.ErrStateConflict, a.Status)
	}
	return s.Applications.Withdraw(ctx, a.ID)
}

// ListForJob enumerates a job's applications; only the owning client may look.
func (s ApplicationService) ListForJob(ctx domain.Context, p domain.Principal, jobID string) ([]domain.Application, error) {
	j, err := s.Jobs.Get(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if j.ClientID != p.ID {
		return nil, fmt.Errorf("%w: not the job's client", domain.ErrForbidden)
	}
	return s.Applications.ListByJob(ctx, jobID)
}

// ListOwn returns the calling developer's applications across jobs.
func (s ApplicationService) ListOwn(ctx domain.Context, p domain.Principal, status domain.ApplicationStatus, pr domain.PageRequest) (domain.Page[domain.Application], error) {
	return s.Applications.ListByDeveloper(ctx, p.ID, status, pr)
}
