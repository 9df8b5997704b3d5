// Package usecase contains application business logic services.
//
// Every operation takes the authenticated principal and evaluates all guards
// (existence, ownership, lifecycle state) before any mutation. Repositories
// re-check lifecycle state atomically so races between a guard read and the
// write cannot corrupt the state machine.
package usecase

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/skillsync/skillsync/internal/domain"
	"github.com/skillsync/skillsync/internal/observability"
)

// JobService owns the job lifecycle state machine.
type JobService struct {
	Jobs     domain.JobRepository
	Notifier domain.Notifier
}

// NewJobService constructs a JobService with its dependencies.
func NewJobService(jobs domain.JobRepository, n domain.Notifier) JobService {
	return JobService{Jobs: jobs, Notifier: n}
}

func validateJobInput(j domain.Job, now time.Time) error {
	if strings.TrimSpace(j.Title) == "" || strings.TrimSpace(j.Description) == "" {
		return fmt.Errorf("%w: title and description required", domain.ErrInvalidArgument)
	}
	if j.Budget < 0 {
		return fmt.Errorf("%w: budget must be non-negative", domain.ErrInvalidArgument)
	}
	if j.BudgetType != domain.BudgetFixed && j.BudgetType != domain.BudgetHourly {
		return fmt.Errorf("%w: budget_type must be fixed or hourly", domain.ErrInvalidArgument)
	}
	if !j.Deadline.After(now) {
		return fmt.Errorf("%w: deadline must be in the future", domain.ErrInvalidArgument)
	}
	if j.Category == "" {
		return fmt.Errorf("%w: category required", domain.ErrInvalidArgument)
	}
	return nil
}

// Create posts a new open job owned by the calling client.
func (s JobService) Create(ctx domain.Context, p domain.Principal, j domain.Job) (domain.Job, error) {
	if p.Role != domain.RoleClient {
		return domain.Job{}, fmt.Errorf("%w: only clients can post jobs", domain.ErrForbidden)
	}
	if err := validateJobInput(j, time.Now().UTC()); err != nil {
		return domain.Job{}, err
	}
	j.ClientID = p.ID
	j.Status = domain.JobOpen
	j.HiredDeveloperID = nil
	id, err := s.Jobs.Create(ctx, j)
	if err != nil {
		return domain.Job{}, err
	}
	observability.JobsCreatedTotal.Inc()
	return s.Jobs.Get(ctx, id)
}

// Get loads a job by id.
func (s JobService) Get(ctx domain.Context, id string) (domain.Job, error) {
	return s.Jobs.Get(ctx, id)
}

// List returns the filtered browse page; browsing defaults to open jobs.
func (s JobService) List(ctx domain.Context, f domain.JobFilter) (domain.Page[domain.Job], error) {
	return s.Jobs.List(ctx, f)
}

// ListOwn returns the calling client's jobs.
func (s JobService) ListOwn(ctx domain.Context, p domain.Principal, status domain.JobStatus, pr domain.PageRequest) (domain.Page[domain.Job], error) {
	return s.Jobs.ListByClient(ctx, p.ID, status, pr)
}

// loadOwned fetches the job and verifies the caller owns it.
func (s JobService) loadOwned(ctx domain.Context, p domain.Principal, id string) (domain.Job, error) {
	j, err := s.Jobs.Get(ctx, id)
	if err != nil {
		return domain.Job{}, err
	}
	if j.ClientID != p.ID {
		return domain.Job{}, fmt.Errorf("%w: not the job's client", domain.ErrForbidden)
	}
	return j, nil
}

// Update edits job fields while the job is still open.
func (s JobService) Update(ctx domain.Context, p domain.Principal, id string, in domain.Job) (domain.Job, error) {
	j, err := s.loadOwned(ctx, p, id)
	if err != nil {
		return domain.Job{}, err
	}
	if !j.Editable() {
		return domain.Job{}, fmt.Errorf("%w: job is %s, only open jobs can be edited", domain.ErrStateConflict, j.Status)
	}
	if err := validateJobInput(in, time.Now().UTC()); err != nil {
		return domain.Job{}, err
	}
	in.ID = j.ID
	if err := s.Jobs.Update(ctx, in); err != nil {
		return domain.Job{}, err
	}
	return s.Jobs.Get(ctx, id)
}

// Cancel moves an open job to cancelled.
func (s JobService) Cancel(ctx domain.Context, p domain.Principal, id string) error {
	j, err := s.loadOwned(ctx, p, id)
	if err != nil {
		return err
	}
	if j.Status != domain.JobOpen {
		return fmt.Errorf("%w: job is %s, only open jobs can be cancelled", domain.ErrStateConflict, j.Status)
	}
	if err := s.Jobs.Cancel(ctx, id); err != nil {
		return err
	}
	observability.JobTransitionsTotal.WithLabelValues(string(domain.JobCancelled)).Inc()
	return nil
}

// Complete moves an in-progress job to completed, crediting the hired
// developer's completed_projects, and emits the jobCompleted event.
func (s JobService) Complete(ctx domain.Context, p domain.Principal, id string) error {
	j, err := s.loadOwned(ctx, p, id)
	if err != nil {
		return err
	}
	if j.Status != domain.JobInProgress {
		return fmt.Errorf("%w: job is %s, only in-progress jobs can be completed", domain.ErrStateConflict, j.Status)
	}
	developerID, err := s.Jobs.Complete(ctx, id)
	if err != nil {
		return err
	}
	observability.JobTransitionsTotal.WithLabelValues(string(domain.JobCompleted)).Inc()
	publish(ctx, s.Notifier, domain.Event{
		Kind:        domain.EventJobCompleted,
		JobID:       j.ID,
		JobTitle:    j.Title,
		ClientID:    j.ClientID,
		DeveloperID: developerID,
	})
	return nil
}

// Delete removes a job and everything hanging off it. In-progress jobs cannot
// be deleted: work is underway and deletion would orphan an active engagement.
func (s JobService) Delete(ctx domain.Context, p domain.Principal, id string) error {
	j, err := s.loadOwned(ctx, p, id)
	if err != nil {
		return err
	}
	if !j.Deletable() {
		return fmt.Errorf("%w: jobs in progress cannot be deleted", domain.ErrStateConflict)
	}
	return s.Jobs.Delete(ctx, id)
}

// ReleasePayment flips the payment boundary flag on a completed job.
func (s JobService) ReleasePayment(ctx domain.Context, p domain.Principal, id string) error {
	j, err := s.loadOwned(ctx, p, id)
	if err != nil {
		return err
	}
	if j.Status != domain.JobCompleted {
		return fmt.Errorf("%w: payment can be released only on completed jobs", domain.ErrStateConflict)
	}
	return s.Jobs.SetPaymentReleased(ctx, id)
}

// publish hands an event to the notifier. Notification is fire-and-forget:
// failures are logged and counted, never surfaced to the caller.
func publish(ctx domain.Context, n domain.Notifier, ev domain.Event) {
	if n == nil {
		return
	}
	ev.At = time.Now().UTC()
	if err := n.Publish(ctx, ev); err != nil {
		observability.NotifyPublishFailures.Inc()
		observability.LoggerFromContext(ctx).Warn("notification publish failed",
			slog.String("kind", string(ev.Kind)),
			slog.String("job_id", ev.JobID),
			slog.Any("error", err))
	}
}
