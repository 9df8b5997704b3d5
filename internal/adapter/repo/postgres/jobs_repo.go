package postgres

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel"

	"github.com/skillsync/skillsync/internal/domain"
)

// JobRepo persists and loads jobs from PostgreSQL using a minimal pgx pool.
type JobRepo struct{ Pool PgxPool }

// NewJobRepo constructs a JobRepo with the given pool.
func NewJobRepo(p PgxPool) *JobRepo { return &JobRepo{Pool: p} }

const jobColumns = `id, title, description, required_skills, budget, budget_type, deadline,
	experience_level, category, status, client_id, hired_developer_id, is_urgent,
	estimated_duration, payment_released, attachments, created_at, updated_at`

func scanJob(row pgx.Row) (domain.Job, error) {
	var j domain.Job
	var attachments []byte
	err := row.Scan(&j.ID, &j.Title, &j.Description, &j.RequiredSkills, &j.Budget, &j.BudgetType,
		&j.Deadline, &j.ExperienceLevel, &j.Category, &j.Status, &j.ClientID, &j.HiredDeveloperID,
		&j.IsUrgent, &j.EstimatedDuration, &j.PaymentReleased, &attachments, &j.CreatedAt, &j.UpdatedAt)
	if err != nil {
		return domain.Job{}, err
	}
	if len(attachments) > 0 {
		if err := json.Unmarshal(attachments, &j.Attachments); err != nil {
			return domain.Job{}, err
		}
	}
	return j, nil
}

// Create inserts a new open job and returns its id.
func (r *JobRepo) Create(ctx domain.Context, j domain.Job) (string, error) {
	tracer := otel.Tracer("repo.jobs")
	ctx, span := tracer.Start(ctx, "jobs.Create")
	defer span.End()
	id := j.ID
	if id == "" {
		id = uuid.New().String()
	}
	attachments, err := json.Marshal(j.Attachments)
	if err != nil {
		return "", wrap("job.create", err)
	}
	now := time.Now().UTC()
	q := `INSERT INTO jobs (id, title, description, required_skills, budget, budget_type, deadline,
		experience_level, category, status, client_id, is_urgent, estimated_duration,
		payment_released, attachments, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)`
	_, err = r.Pool.Exec(ctx, q, id, j.Title, j.Description, j.RequiredSkills, j.Budget, j.BudgetType,
		j.Deadline, j.ExperienceLevel, j.Category, domain.JobOpen, j.ClientID, j.IsUrgent,
		j.EstimatedDuration, false, attachments, now, now)
	if err != nil {
		return "", wrap("job.create", err)
	}
	return id, nil
}

// Get loads a job by id.
func (r *JobRepo) Get(ctx domain.Context, id string) (domain.Job, error) {
	tracer := otel.Tracer("repo.jobs")
	ctx, span := tracer.Start(ctx, "jobs.Get")
	defer span.End()
	q := `SELECT ` + jobColumns + ` FROM jobs WHERE id=$1`
	j, err := scanJob(r.Pool.QueryRow(ctx, q, id))
	if err != nil {
		return domain.Job{}, wrap("job.get", err)
	}
	return j, nil
}

// Update persists editable fields. The status predicate keeps the write from
// landing on a job that left the open state after the caller's read.
func (r *JobRepo) Update(ctx domain.Context, j domain.Job) error {
	tracer := otel.Tracer("repo.jobs")
	ctx, span := tracer.Start(ctx, "jobs.Update")
	defer span.End()
	attachments, err := json.Marshal(j.Attachments)
	if err != nil {
		return wrap("job.update", err)
	}
	q := `UPDATE jobs SET title=$2, description=$3, required_skills=$4, budget=$5, budget_type=$6,
		deadline=$7, experience_level=$8, category=$9, is_urgent=$10, estimated_duration=$11,
		attachments=$12, updated_at=$13
		WHERE id=$1 AND status='open'`
	tag, err := r.Pool.Exec(ctx, q, j.ID, j.Title, j.Description, j.RequiredSkills, j.Budget,
		j.BudgetType, j.Deadline, j.ExperienceLevel, j.Category, j.IsUrgent, j.EstimatedDuration,
		attachments, time.Now().UTC())
	if err != nil {
		return wrap("job.update", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("op=job.update: %w", domain.ErrStateConflict)
	}
	return nil
}

// Cancel moves an open job to cancelled.
func (r *JobRepo) Cancel(ctx domain.Context, id string) error {
	tracer := otel.Tracer("repo.jobs")
	ctx, span := tracer.Start(ctx, "jobs.Cancel")
	defer span.End()
	q := `UPDATE jobs SET status='cancelled', updated_at=$2 WHERE id=$1 AND status='open'`
	tag, err := r.Pool.Exec(ctx, q, id, time.Now().UTC())
	if err != nil {
		return wrap("job.cancel", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("op=job.cancel: %w", domain.ErrStateConflict)
	}
	return nil
}

// Complete moves an in-progress job to completed and increments the hired
// developer's completed_projects, both in one transaction.
func (r *JobRepo) Complete(ctx domain.Context, id string) (string, error) {
	tracer := otel.Tracer("repo.jobs")
	ctx, span := tracer.Start(ctx, "jobs.Complete")
	defer span.End()
	var developerID string
	err := inTx(ctx, r.Pool, func(tx pgx.Tx) error {
		q := `UPDATE jobs SET status='completed', updated_at=$2
			WHERE id=$1 AND status='in_progress'
			RETURNING hired_developer_id`
		if err := tx.QueryRow(ctx, q, id, time.Now().UTC()).Scan(&developerID); err != nil {
			if err == pgx.ErrNoRows {
				return domain.ErrStateConflict
			}
			return err
		}
		_, err := tx.Exec(ctx, `UPDATE users SET completed_projects = completed_projects + 1, updated_at=$2 WHERE id=$1`,
			developerID, time.Now().UTC())
		return err
	})
	if err != nil {
		return "", wrap("job.complete", err)
	}
	return developerID, nil
}

// Hire executes the hire transition as one transaction: lock the job row,
// verify it is still open, accept the chosen pending application and reject
// every competing one. A concurrent hire on the same job blocks on the row
// lock, re-reads a non-open status and fails with ErrStateConflict.
func (r *JobRepo) Hire(ctx domain.Context, jobID, developerID string) (domain.Application, error) {
	tracer := otel.Tracer("repo.jobs")
	ctx, span := tracer.Start(ctx, "jobs.Hire")
	defer span.End()
	var accepted domain.Application
	err := inTx(ctx, r.Pool, func(tx pgx.Tx) error {
		var status domain.JobStatus
		if err := tx.QueryRow(ctx, `SELECT status FROM jobs WHERE id=$1 FOR UPDATE`, jobID).Scan(&status); err != nil {
			return err
		}
		if status != domain.JobOpen {
			return domain.ErrStateConflict
		}

		var appID string
		q := `SELECT id FROM applications WHERE job_id=$1 AND developer_id=$2 AND status='pending' FOR UPDATE`
		if err := tx.QueryRow(ctx, q, jobID, developerID).Scan(&appID); err != nil {
			return err
		}

		now := time.Now().UTC()
		if _, err := tx.Exec(ctx, `UPDATE jobs SET status='in_progress', hired_developer_id=$2, updated_at=$3 WHERE id=$1`,
			jobID, developerID, now); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `UPDATE applications SET status='accepted', updated_at=$2 WHERE id=$1`, appID, now); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `UPDATE applications SET status='rejected', updated_at=$3 WHERE job_id=$1 AND id<>$2`,
			jobID, appID, now); err != nil {
			return err
		}

		var err error
		accepted, err = scanApplication(tx.QueryRow(ctx, `SELECT `+applicationColumns+` FROM applications WHERE id=$1`, appID))
		return err
	})
	if err != nil {
		return domain.Application{}, wrap("job.hire", err)
	}
	return accepted, nil
}

// Delete removes the job and cascades to its dependent records.
func (r *JobRepo) Delete(ctx domain.Context, id string) error {
	tracer := otel.Tracer("repo.jobs")
	ctx, span := tracer.Start(ctx, "jobs.Delete")
	defer span.End()
	err := inTx(ctx, r.Pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM ratings WHERE job_id=$1`, id); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `DELETE FROM messages WHERE job_id=$1`, id); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `DELETE FROM applications WHERE job_id=$1`, id); err != nil {
			return err
		}
		tag, err := tx.Exec(ctx, `DELETE FROM jobs WHERE id=$1`, id)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return domain.ErrNotFound
		}
		return nil
	})
	return wrap("job.delete", err)
}

// SetPaymentReleased flips the payment boundary flag on a completed job.
func (r *JobRepo) SetPaymentReleased(ctx domain.Context, id string) error {
	tracer := otel.Tracer("repo.jobs")
	ctx, span := tracer.Start(ctx, "jobs.SetPaymentReleased")
	defer span.End()
	q := `UPDATE jobs SET payment_released=true, updated_at=$2 WHERE id=$1 AND status='completed'`
	tag, err := r.Pool.Exec(ctx, q, id, time.Now().UTC())
	if err != nil {
		return wrap("job.release_payment", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("op=job.release_payment: %w", domain.ErrStateConflict)
	}
	return nil
}

var jobSortColumns = map[string]string{
	"created_at": "created_at",
	"budget":     "budget",
	"deadline":   "deadline",
}

// buildJobFilter renders the WHERE clause and args for a browse listing.
func buildJobFilter(f domain.JobFilter) (string, []any) {
	clauses := []string{"status=$1"}
	status := f.Status
	if status == "" {
		status = domain.JobOpen
	}
	args := []any{status}
	add := func(clause string, arg any) {
		args = append(args, arg)
		clauses = append(clauses, fmt.Sprintf(clause, len(args)))
	}
	if f.Category != "" {
		add("category=$%d", f.Category)
	}
	if f.ExperienceLevel != "" {
		add("experience_level=$%d", f.ExperienceLevel)
	}
	if f.BudgetType != "" {
		add("budget_type=$%d", f.BudgetType)
	}
	if f.MinBudget != nil {
		add("budget>=$%d", *f.MinBudget)
	}
	if f.MaxBudget != nil {
		add("budget<=$%d", *f.MaxBudget)
	}
	if len(f.Skills) > 0 {
		add("required_skills && $%d", f.Skills)
	}
	if f.Search != "" {
		args = append(args, "%"+f.Search+"%")
		n := len(args)
		clauses = append(clauses, fmt.Sprintf("(title ILIKE $%d OR description ILIKE $%d)", n, n))
	}
	return strings.Join(clauses, " AND "), args
}

// List returns the filtered browse page over jobs.
func (r *JobRepo) List(ctx domain.Context, f domain.JobFilter) (domain.Page[domain.Job], error) {
	tracer := otel.Tracer("repo.jobs")
	ctx, span := tracer.Start(ctx, "jobs.List")
	defer span.End()
	pr := f.PageRequest.Normalize()
	where, args := buildJobFilter(f)

	var total int64
	if err := r.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM jobs WHERE `+where, args...).Scan(&total); err != nil {
		return domain.Page[domain.Job]{}, wrap("job.list", err)
	}

	sortCol, ok := jobSortColumns[pr.SortBy]
	if !ok {
		sortCol = "created_at"
	}
	dir := "DESC"
	if pr.SortOrder == "asc" {
		dir = "ASC"
	}
	q := fmt.Sprintf(`SELECT %s FROM jobs WHERE %s ORDER BY %s %s LIMIT $%d OFFSET $%d`,
		jobColumns, where, sortCol, dir, len(args)+1, len(args)+2)
	rows, err := r.Pool.Query(ctx, q, append(args, pr.Limit, pr.Offset())...)
	if err != nil {
		return domain.Page[domain.Job]{}, wrap("job.list", err)
	}
	defer rows.Close()

	var jobs []domain.Job
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return domain.Page[domain.Job]{}, wrap("job.list", err)
		}
		jobs = append(jobs, j)
	}
	if err := rows.Err(); err != nil {
		return domain.Page[domain.Job]{}, wrap("job.list", err)
	}
	return domain.NewPage(jobs, pr, total), nil
}

// ListByClient returns the client's own jobs, optionally filtered by status.
func (r *JobRepo) ListByClient(ctx domain.Context, clientID string, status domain.JobStatus, pr domain.PageRequest) (domain.Page[domain.Job], error) {
	tracer := otel.Tracer("repo.jobs")
	ctx, span := tracer.Start(ctx, "jobs.ListByClient")
	defer span.End()
	pr = pr.Normalize()
	where := "client_id=$1"
	args := []any{clientID}
	if status != "" {
		where += " AND status=$2"
		args = append(args, status)
	}

	var total int64
	if err := r.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM jobs WHERE `+where, args...).Scan(&total); err != nil {
		return domain.Page[domain.Job]{}, wrap("job.list_by_client", err)
	}

	q := fmt.Sprintf(`SELECT %s FROM jobs WHERE %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		jobColumns, where, len(args)+1, len(args)+2)
	rows, err := r.Pool.Query(ctx, q, append(args, pr.Limit, pr.Offset())...)
	if err != nil {
		return domain.Page[domain.Job]{}, wrap("job.list_by_client", err)
	}
	defer rows.Close()

	var jobs []domain.Job
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return domain.Page[domain.Job]{}, wrap("job.list_by_client", err)
		}
		jobs = append(jobs, j)
	}
	if err := rows.Err(); err != nil {
		return domain.Page[domain.Job]{}, wrap("job.list_by_client", err)
	}
	return domain.NewPage(jobs, pr, total), nil
}
