package postgres

import (
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel"

	"github.com/skillsync/skillsync/internal/domain"
)

// UserRepo loads and updates user rows. Credential fields live with the
// external identity service; this repo only touches profile and aggregate data.
type UserRepo struct{ Pool PgxPool }

// NewUserRepo constructs a UserRepo with the given pool.
func NewUserRepo(p PgxPool) *UserRepo { return &UserRepo{Pool: p} }

const userColumns = `id, email, first_name, last_name, role, bio, skills, hourly_rate,
	experience, company, avatar_url, resume_url, rating, total_ratings, completed_projects,
	created_at, updated_at`

func scanUser(row pgx.Row) (domain.User, error) {
	var u domain.User
	err := row.Scan(&u.ID, &u.Email, &u.FirstName, &u.LastName, &u.Role, &u.Bio, &u.Skills,
		&u.HourlyRate, &u.Experience, &u.Company, &u.AvatarURL, &u.ResumeURL, &u.Rating,
		&u.TotalRatings, &u.CompletedProjects, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

// Get loads a user by id.
func (r *UserRepo) Get(ctx domain.Context, id string) (domain.User, error) {
	tracer := otel.Tracer("repo.users")
	ctx, span := tracer.Start(ctx, "users.Get")
	defer span.End()
	u, err := scanUser(r.Pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id=$1`, id))
	if err != nil {
		return domain.User{}, wrap("user.get", err)
	}
	return u, nil
}

// UpdateProfile persists the caller-editable profile fields. Aggregate fields
// (rating, total_ratings, completed_projects) are owned by the rating gate and
// the completion step and are never written here.
func (r *UserRepo) UpdateProfile(ctx domain.Context, u domain.User) error {
	tracer := otel.Tracer("repo.users")
	ctx, span := tracer.Start(ctx, "users.UpdateProfile")
	defer span.End()
	q := `UPDATE users SET first_name=$2, last_name=$3, bio=$4, skills=$5, hourly_rate=$6,
		experience=$7, company=$8, avatar_url=$9, resume_url=$10, updated_at=$11
		WHERE id=$1`
	tag, err := r.Pool.Exec(ctx, q, u.ID, u.FirstName, u.LastName, u.Bio, u.Skills, u.HourlyRate,
		u.Experience, u.Company, u.AvatarURL, u.ResumeURL, time.Now().UTC())
	if err != nil {
		return wrap("user.update_profile", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("op=user.update_profile: %w", domain.ErrNotFound)
	}
	return nil
}

// ListDevelopers returns the developer directory page.
func (r *UserRepo) ListDevelopers(ctx domain.Context, f domain.DeveloperFilter) (domain.Page[domain.User], error) {
	tracer := otel.Tracer("repo.users")
	ctx, span := tracer.Start(ctx, "users.ListDevelopers")
	defer span.End()
	pr := f.PageRequest.Normalize()

	clauses := []string{"role='developer'"}
	var args []any
	if len(f.Skills) > 0 {
		args = append(args, f.Skills)
		clauses = append(clauses, fmt.Sprintf("skills && $%d", len(args)))
	}
	if f.MinRating > 0 {
		args = append(args, f.MinRating)
		clauses = append(clauses, fmt.Sprintf("rating >= $%d", len(args)))
	}
	if f.Search != "" {
		args = append(args, "%"+f.Search+"%")
		n := len(args)
		clauses = append(clauses, fmt.Sprintf("(first_name ILIKE $%d OR last_name ILIKE $%d OR bio ILIKE $%d)", n, n, n))
	}
	where := strings.Join(clauses, " AND ")

	var total int64
	if err := r.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM users WHERE `+where, args...).Scan(&total); err != nil {
		return domain.Page[domain.User]{}, wrap("user.list_developers", err)
	}

	q := fmt.Sprintf(`SELECT %s FROM users WHERE %s ORDER BY rating DESC, total_ratings DESC LIMIT $%d OFFSET $%d`,
		userColumns, where, len(args)+1, len(args)+2)
	rows, err := r.Pool.Query(ctx, q, append(args, pr.Limit, pr.Offset())...)
	if err != nil {
		return domain.Page[domain.User]{}, wrap("user.list_developers", err)
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return domain.Page[domain.User]{}, wrap("user.list_developers", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return domain.Page[domain.User]{}, wrap("user.list_developers", err)
	}
	return domain.NewPage(users, pr, total), nil
}
