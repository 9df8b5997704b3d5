package postgres

import (
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel"

	"github.com/skillsync/skillsync/internal/domain"
)

// RatingRepo persists ratings and maintains the developer aggregate.
type RatingRepo struct{ Pool PgxPool }

// NewRatingRepo constructs a RatingRepo with the given pool.
func NewRatingRepo(p PgxPool) *RatingRepo { return &RatingRepo{Pool: p} }

const ratingColumns = `id, job_id, client_id, developer_id, score, review, categories, created_at, updated_at`

func scanRating(row pgx.Row) (domain.Rating, error) {
	var r domain.Rating
	var categories []byte
	err := row.Scan(&r.ID, &r.JobID, &r.ClientID, &r.DeveloperID, &r.Score, &r.Review,
		&categories, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return domain.Rating{}, err
	}
	if len(categories) > 0 {
		if err := json.Unmarshal(categories, &r.Categories); err != nil {
			return domain.Rating{}, err
		}
	}
	return r, nil
}

// Create inserts a rating. The unique index on job_id guarantees at most one
// rating per job; violations surface as ErrConflict.
func (r *RatingRepo) Create(ctx domain.Context, rt domain.Rating) (string, error) {
	tracer := otel.Tracer("repo.ratings")
	ctx, span := tracer.Start(ctx, "ratings.Create")
	defer span.End()
	id := rt.ID
	if id == "" {
		id = uuid.New().String()
	}
	categories, err := json.Marshal(rt.Categories)
	if err != nil {
		return "", wrap("rating.create", err)
	}
	now := time.Now().UTC()
	q := `INSERT INTO ratings (id, job_id, client_id, developer_id, score, review, categories, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`
	_, err = r.Pool.Exec(ctx, q, id, rt.JobID, rt.ClientID, rt.DeveloperID, rt.Score, rt.Review, categories, now, now)
	if err != nil {
		return "", wrap("rating.create", err)
	}
	return id, nil
}

// Get loads a rating by id.
func (r *RatingRepo) Get(ctx domain.Context, id string) (domain.Rating, error) {
	tracer := otel.Tracer("repo.ratings")
	ctx, span := tracer.Start(ctx, "ratings.Get")
	defer span.End()
	rt, err := scanRating(r.Pool.QueryRow(ctx, `SELECT `+ratingColumns+` FROM ratings WHERE id=$1`, id))
	if err != nil {
		return domain.Rating{}, wrap("rating.get", err)
	}
	return rt, nil
}

// GetByJob loads the rating attached to a job, if any.
func (r *RatingRepo) GetByJob(ctx domain.Context, jobID string) (domain.Rating, error) {
	tracer := otel.Tracer("repo.ratings")
	ctx, span := tracer.Start(ctx, "ratings.GetByJob")
	defer span.End()
	rt, err := scanRating(r.Pool.QueryRow(ctx, `SELECT `+ratingColumns+` FROM ratings WHERE job_id=$1`, jobID))
	if err != nil {
		return domain.Rating{}, wrap("rating.get_by_job", err)
	}
	return rt, nil
}

// Update persists score, review and category sub-scores.
func (r *RatingRepo) Update(ctx domain.Context, rt domain.Rating) error {
	tracer := otel.Tracer("repo.ratings")
	ctx, span := tracer.Start(ctx, "ratings.Update")
	defer span.End()
	categories, err := json.Marshal(rt.Categories)
	if err != nil {
		return wrap("rating.update", err)
	}
	q := `UPDATE ratings SET score=$2, review=$3, categories=$4, updated_at=$5 WHERE id=$1`
	tag, err := r.Pool.Exec(ctx, q, rt.ID, rt.Score, rt.Review, categories, time.Now().UTC())
	if err != nil {
		return wrap("rating.update", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("op=rating.update: %w", domain.ErrNotFound)
	}
	return nil
}

// Delete removes a rating.
func (r *RatingRepo) Delete(ctx domain.Context, id string) error {
	tracer := otel.Tracer("repo.ratings")
	ctx, span := tracer.Start(ctx, "ratings.Delete")
	defer span.End()
	tag, err := r.Pool.Exec(ctx, `DELETE FROM ratings WHERE id=$1`, id)
	if err != nil {
		return wrap("rating.delete", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("op=rating.delete: %w", domain.ErrNotFound)
	}
	return nil
}

// ListByDeveloper returns the developer's received ratings, newest first.
func (r *RatingRepo) ListByDeveloper(ctx domain.Context, developerID string, pr domain.PageRequest) (domain.Page[domain.Rating], error) {
	tracer := otel.Tracer("repo.ratings")
	ctx, span := tracer.Start(ctx, "ratings.ListByDeveloper")
	defer span.End()
	pr = pr.Normalize()

	var total int64
	if err := r.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM ratings WHERE developer_id=$1`, developerID).Scan(&total); err != nil {
		return domain.Page[domain.Rating]{}, wrap("rating.list_by_developer", err)
	}

	q := `SELECT ` + ratingColumns + ` FROM ratings WHERE developer_id=$1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	rows, err := r.Pool.Query(ctx, q, developerID, pr.Limit, pr.Offset())
	if err != nil {
		return domain.Page[domain.Rating]{}, wrap("rating.list_by_developer", err)
	}
	defer rows.Close()

	var ratings []domain.Rating
	for rows.Next() {
		rt, err := scanRating(rows)
		if err != nil {
			return domain.Page[domain.Rating]{}, wrap("rating.list_by_developer", err)
		}
		ratings = append(ratings, rt)
	}
	if err := rows.Err(); err != nil {
		return domain.Page[domain.Rating]{}, wrap("rating.list_by_developer", err)
	}
	return domain.NewPage(ratings, pr, total), nil
}

// RecomputeAggregate reads the full rating set for the developer and writes
// mean and count back to the user row. Reading everything keeps the aggregate
// correct under edits and deletes; concurrent recomputes for the same
// developer are last-write-wins by design.
func (r *RatingRepo) RecomputeAggregate(ctx domain.Context, developerID string) (domain.DeveloperRatingStats, error) {
	tracer := otel.Tracer("repo.ratings")
	ctx, span := tracer.Start(ctx, "ratings.RecomputeAggregate")
	defer span.End()

	var stats domain.DeveloperRatingStats
	q := `SELECT COALESCE(AVG(score), 0), COUNT(*) FROM ratings WHERE developer_id=$1`
	if err := r.Pool.QueryRow(ctx, q, developerID).Scan(&stats.Average, &stats.Count); err != nil {
		return domain.DeveloperRatingStats{}, wrap("rating.recompute", err)
	}
	// Round to one decimal to match the display precision.
	stats.Average = math.Round(stats.Average*10) / 10

	u := `UPDATE users SET rating=$2, total_ratings=$3, updated_at=$4 WHERE id=$1`
	if _, err := r.Pool.Exec(ctx, u, developerID, stats.Average, stats.Count, time.Now().UTC()); err != nil {
		return domain.DeveloperRatingStats{}, wrap("rating.recompute", err)
	}
	return stats, nil
}
