package postgres

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel"

	"github.com/skillsync/skillsync/internal/domain"
)

// ApplicationRepo persists and loads applications.
type ApplicationRepo struct{ Pool PgxPool }

// NewApplicationRepo constructs an ApplicationRepo with the given pool.
func NewApplicationRepo(p PgxPool) *ApplicationRepo { return &ApplicationRepo{Pool: p} }

const applicationColumns = `id, job_id, developer_id, cover_letter, proposed_rate,
	estimated_duration, status, portfolio, attachments, created_at, updated_at`

func scanApplication(row pgx.Row) (domain.Application, error) {
	var a domain.Application
	var portfolio, attachments []byte
	err := row.Scan(&a.ID, &a.JobID, &a.DeveloperID, &a.CoverLetter, &a.ProposedRate,
		&a.EstimatedDuration, &a.Status, &portfolio, &attachments, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return domain.Application{}, err
	}
	if len(portfolio) > 0 {
		if err := json.Unmarshal(portfolio, &a.Portfolio); err != nil {
			return domain.Application{}, err
		}
	}
	if len(attachments) > 0 {
		if err := json.Unmarshal(attachments, &a.Attachments); err != nil {
			return domain.Application{}, err
		}
	}
	return a, nil
}

// Create inserts a pending application. The (job_id, developer_id) unique
// index closes the duplicate-submit race; violations surface as ErrConflict.
func (r *ApplicationRepo) Create(ctx domain.Context, a domain.Application) (string, error) {
	tracer := otel.Tracer("repo.applications")
	ctx, span := tracer.Start(ctx, "applications.Create")
	defer span.End()
	id := a.ID
	if id == "" {
		id = uuid.New().String()
	}
	portfolio, err := json.Marshal(a.Portfolio)
	if err != nil {
		return "", wrap("application.create", err)
	}
	attachments, err := json.Marshal(a.Attachments)
	if err != nil {
		return "", wrap("application.create", err)
	}
	now := time.Now().UTC()
	q := `INSERT INTO applications (id, job_id, developer_id, cover_letter, proposed_rate,
		estimated_duration, status, portfolio, attachments, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`
	_, err = r.Pool.Exec(ctx, q, id, a.JobID, a.DeveloperID, a.CoverLetter, a.ProposedRate,
		a.EstimatedDuration, domain.ApplicationPending, portfolio, attachments, now, now)
	if err != nil {
		return "", wrap("application.create", err)
	}
	return id, nil
}

// Get loads an application by id.
func (r *ApplicationRepo) Get(ctx domain.Context, id string) (domain.Application, error) {
	tracer := otel.Tracer("repo.applications")
	ctx, span := tracer.Start(ctx, "applications.Get")
	defer span.End()
	q := `SELECT ` + applicationColumns + ` FROM applications WHERE id=$1`
	a, err := scanApplication(r.Pool.QueryRow(ctx, q, id))
	if err != nil {
		return domain.Application{}, wrap("application.get", err)
	}
	return a, nil
}

// Update persists editable fields while the application is still pending.
func (r *ApplicationRepo) Update(ctx domain.Context, a domain.Application) error {
	tracer := otel.Tracer("repo.applications")
	ctx, span := tracer.Start(ctx, "applications.Update")
	defer span.End()
	portfolio, err := json.Marshal(a.Portfolio)
	if err != nil {
		return wrap("application.update", err)
	}
	attachments, err := json.Marshal(a.Attachments)
	if err != nil {
		return wrap("application.update", err)
	}
	q := `UPDATE applications SET cover_letter=$2, proposed_rate=$3, estimated_duration=$4,
		portfolio=$5, attachments=$6, updated_at=$7
		WHERE id=$1 AND status='pending'`
	tag, err := r.Pool.Exec(ctx, q, a.ID, a.CoverLetter, a.ProposedRate, a.EstimatedDuration,
		portfolio, attachments, time.Now().UTC())
	if err != nil {
		return wrap("application.update", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("op=application.update: %w", domain.ErrStateConflict)
	}
	return nil
}

// Withdraw moves a pending application to the terminal withdrawn state.
func (r *ApplicationRepo) Withdraw(ctx domain.Context, id string) error {
	tracer := otel.Tracer("repo.applications")
	ctx, span := tracer.Start(ctx, "applications.Withdraw")
	defer span.End()
	q := `UPDATE applications SET status='withdrawn', updated_at=$2 WHERE id=$1 AND status='pending'`
	tag, err := r.Pool.Exec(ctx, q, id, time.Now().UTC())
	if err != nil {
		return wrap("application.withdraw", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("op=application.withdraw: %w", domain.ErrStateConflict)
	}
	return nil
}

// ListByJob returns a job's applications ordered by creation.
func (r *ApplicationRepo) ListByJob(ctx domain.Context, jobID string) ([]domain.Application, error) {
	tracer := otel.Tracer("repo.applications")
	ctx, span := tracer.Start(ctx, "applications.ListByJob")
	defer span.End()
	q := `SELECT ` + applicationColumns + ` FROM applications WHERE job_id=$1 ORDER BY created_at`
	rows, err := r.Pool.Query(ctx, q, jobID)
	if err != nil {
		return nil, wrap("application.list_by_job", err)
	}
	defer rows.Close()

	var apps []domain.Application
	for rows.Next() {
		a, err := scanApplication(rows)
		if err != nil {
			return nil, wrap("application.list_by_job", err)
		}
		apps = append(apps, a)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap("application.list_by_job", err)
	}
	return apps, nil
}

// ListByDeveloper returns the developer's applications across jobs, newest first.
func (r *ApplicationRepo) ListByDeveloper(ctx domain.Context, developerID string, status domain.ApplicationStatus, pr domain.PageRequest) (domain.Page[domain.Application], error) {
	tracer := otel.Tracer("repo.applications")
	ctx, span := tracer.Start(ctx, "applications.ListByDeveloper")
	defer span.End()
	pr = pr.Normalize()
	where := "developer_id=$1"
	args := []any{developerID}
	if status != "" {
		where += " AND status=$2"
		args = append(args, status)
	}

	var total int64
	if err := r.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM applications WHERE `+where, args...).Scan(&total); err != nil {
		return domain.Page[domain.Application]{}, wrap("application.list_by_developer", err)
	}

	q := fmt.Sprintf(`SELECT %s FROM applications WHERE %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		applicationColumns, where, len(args)+1, len(args)+2)
	rows, err := r.Pool.Query(ctx, q, append(args, pr.Limit, pr.Offset())...)
	if err != nil {
		return domain.Page[domain.Application]{}, wrap("application.list_by_developer", err)
	}
	defer rows.Close()

	var apps []domain.Application
	for rows.Next() {
		a, err := scanApplication(rows)
		if err != nil {
			return domain.Page[domain.Application]{}, wrap("application.list_by_developer", err)
		}
		apps = append(apps, a)
	}
	if err := rows.Err(); err != nil {
		return domain.Page[domain.Application]{}, wrap("application.list_by_developer", err)
	}
	return domain.NewPage(apps, pr, total), nil
}
