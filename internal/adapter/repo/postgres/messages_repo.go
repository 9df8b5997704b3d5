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

// MessageRepo persists job-scoped messages.
type MessageRepo struct{ Pool PgxPool }

// NewMessageRepo constructs a MessageRepo with the given pool.
func NewMessageRepo(p PgxPool) *MessageRepo { return &MessageRepo{Pool: p} }

const messageColumns = `id, job_id, sender_id, recipient_id, content, attachments, is_read, read_at, created_at`

func scanMessage(row pgx.Row) (domain.Message, error) {
	var m domain.Message
	var attachments []byte
	err := row.Scan(&m.ID, &m.JobID, &m.SenderID, &m.RecipientID, &m.Content, &attachments,
		&m.IsRead, &m.ReadAt, &m.CreatedAt)
	if err != nil {
		return domain.Message{}, err
	}
	if len(attachments) > 0 {
		if err := json.Unmarshal(attachments, &m.Attachments); err != nil {
			return domain.Message{}, err
		}
	}
	return m, nil
}

// Create inserts a message.
func (r *MessageRepo) Create(ctx domain.Context, m domain.Message) (string, error) {
	tracer := otel.Tracer("repo.messages")
	ctx, span := tracer.Start(ctx, "messages.Create")
	defer span.End()
	id := m.ID
	if id == "" {
		id = uuid.New().String()
	}
	attachments, err := json.Marshal(m.Attachments)
	if err != nil {
		return "", wrap("message.create", err)
	}
	q := `INSERT INTO messages (id, job_id, sender_id, recipient_id, content, attachments, is_read, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,false,$7)`
	_, err = r.Pool.Exec(ctx, q, id, m.JobID, m.SenderID, m.RecipientID, m.Content, attachments, time.Now().UTC())
	if err != nil {
		return "", wrap("message.create", err)
	}
	return id, nil
}

// ListByJob returns the conversation page for a job and marks the reader's
// unread messages as read.
func (r *MessageRepo) ListByJob(ctx domain.Context, jobID, readerID string, pr domain.PageRequest) (domain.Page[domain.Message], error) {
	tracer := otel.Tracer("repo.messages")
	ctx, span := tracer.Start(ctx, "messages.ListByJob")
	defer span.End()
	pr = pr.Normalize()

	var total int64
	if err := r.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM messages WHERE job_id=$1`, jobID).Scan(&total); err != nil {
		return domain.Page[domain.Message]{}, wrap("message.list_by_job", err)
	}

	q := `SELECT ` + messageColumns + ` FROM messages WHERE job_id=$1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	rows, err := r.Pool.Query(ctx, q, jobID, pr.Limit, pr.Offset())
	if err != nil {
		return domain.Page[domain.Message]{}, wrap("message.list_by_job", err)
	}
	defer rows.Close()

	var msgs []domain.Message
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return domain.Page[domain.Message]{}, wrap("message.list_by_job", err)
		}
		msgs = append(msgs, m)
	}
	if err := rows.Err(); err != nil {
		return domain.Page[domain.Message]{}, wrap("message.list_by_job", err)
	}

	u := `UPDATE messages SET is_read=true, read_at=$3 WHERE job_id=$1 AND recipient_id=$2 AND NOT is_read`
	if _, err := r.Pool.Exec(ctx, u, jobID, readerID, time.Now().UTC()); err != nil {
		return domain.Page[domain.Message]{}, wrap("message.list_by_job", err)
	}
	return domain.NewPage(msgs, pr, total), nil
}

// MarkRead marks one message as read; only the recipient may do so.
func (r *MessageRepo) MarkRead(ctx domain.Context, messageID, recipientID string) error {
	tracer := otel.Tracer("repo.messages")
	ctx, span := tracer.Start(ctx, "messages.MarkRead")
	defer span.End()
	q := `UPDATE messages SET is_read=true, read_at=$3 WHERE id=$1 AND recipient_id=$2`
	tag, err := r.Pool.Exec(ctx, q, messageID, recipientID, time.Now().UTC())
	if err != nil {
		return wrap("message.mark_read", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("op=message.mark_read: %w", domain.ErrNotFound)
	}
	return nil
}

// UnreadCount returns the number of unread messages addressed to the user.
func (r *MessageRepo) UnreadCount(ctx domain.Context, recipientID string) (int64, error) {
	tracer := otel.Tracer("repo.messages")
	ctx, span := tracer.Start(ctx, "messages.UnreadCount")
	defer span.End()
	var n int64
	q := `SELECT COUNT(*) FROM messages WHERE recipient_id=$1 AND NOT is_read`
	if err := r.Pool.QueryRow(ctx, q, recipientID).Scan(&n); err != nil {
		return 0, wrap("message.unread_count", err)
	}
	return n, nil
}

// DeleteByJob removes all messages attached to a job.
func (r *MessageRepo) DeleteByJob(ctx domain.Context, jobID string) error {
	tracer := otel.Tracer("repo.messages")
	ctx, span := tracer.Start(ctx, "messages.DeleteByJob")
	defer span.End()
	_, err := r.Pool.Exec(ctx, `DELETE FROM messages WHERE job_id=$1`, jobID)
	return wrap("message.delete_by_job", err)
}
