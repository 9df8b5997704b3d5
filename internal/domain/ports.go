package domain

import "time"

// PageRequest carries the caller's pagination and sorting intent. Zero values
// are normalized by Normalize.
type PageRequest struct {
	Page      int
	Limit     int
	SortBy    string
	SortOrder string
}

// Normalize clamps a PageRequest to sane bounds.
func (p PageRequest) Normalize() PageRequest {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 {
		p.Limit = 10
	}
	if p.Limit > 100 {
		p.Limit = 100
	}
	if p.SortOrder != "asc" {
		p.SortOrder = "desc"
	}
	return p
}

// Offset returns the row offset for the request.
func (p PageRequest) Offset() int { return (p.Page - 1) * p.Limit }

// Page is a paginated result set.
type Page[T any] struct {
	Items       []T   `json:"items"`
	CurrentPage int   `json:"currentPage"`
	TotalPages  int   `json:"totalPages"`
	Total       int64 `json:"total"`
}

// NewPage assembles a Page from items and the matching total row count.
func NewPage[T any](items []T, pr PageRequest, total int64) Page[T] {
	pages := int(total) / pr.Limit
	if int(total)%pr.Limit != 0 {
		pages++
	}
	return Page[T]{Items: items, CurrentPage: pr.Page, TotalPages: pages, Total: total}
}

// JobFilter narrows the open-job browse listing.
type JobFilter struct {
	Status          JobStatus
	Category        string
	ExperienceLevel string
	BudgetType      BudgetType
	MinBudget       *float64
	MaxBudget       *float64
	Skills          []string
	Search          string
	PageRequest
}

// DeveloperFilter narrows the developer directory listing.
type DeveloperFilter struct {
	Skills    []string
	MinRating float64
	Search    string
	PageRequest
}

// Repositories (ports)

type UserRepository interface {
	Get(ctx Context, id string) (User, error)
	UpdateProfile(ctx Context, u User) error
	ListDevelopers(ctx Context, f DeveloperFilter) (Page[User], error)
}

type JobRepository interface {
	Create(ctx Context, j Job) (string, error)
	Get(ctx Context, id string) (Job, error)
	// Update persists editable fields while the job is still open; a job that
	// left the open state since the caller read it yields ErrStateConflict.
	Update(ctx Context, j Job) error
	// Cancel moves open -> cancelled; ErrStateConflict when no longer open.
	Cancel(ctx Context, id string) error
	// Complete moves in_progress -> completed and increments the hired
	// developer's completed_projects in the same transaction. Returns the
	// hired developer id.
	Complete(ctx Context, id string) (string, error)
	// Hire atomically moves the job to in_progress, accepts the chosen
	// developer's pending application and rejects every competing one.
	// All five effects land or none do.
	Hire(ctx Context, jobID, developerID string) (Application, error)
	// Delete removes the job and cascades to its applications, messages and
	// rating in one transaction.
	Delete(ctx Context, id string) error
	SetPaymentReleased(ctx Context, id string) error
	List(ctx Context, f JobFilter) (Page[Job], error)
	ListByClient(ctx Context, clientID string, status JobStatus, pr PageRequest) (Page[Job], error)
}

type ApplicationRepository interface {
	// Create inserts a pending application; a duplicate (job, developer) pair
	// surfaces as ErrConflict from the unique index, closing the race between
	// concurrent submits.
	Create(ctx Context, a Application) (string, error)
	Get(ctx Context, id string) (Application, error)
	// Update persists editable fields while still pending; ErrStateConflict otherwise.
	Update(ctx Context, a Application) error
	// Withdraw moves pending -> withdrawn; ErrStateConflict otherwise.
	Withdraw(ctx Context, id string) error
	ListByJob(ctx Context, jobID string) ([]Application, error)
	ListByDeveloper(ctx Context, developerID string, status ApplicationStatus, pr PageRequest) (Page[Application], error)
}

// DeveloperRatingStats is the aggregate view over one developer's ratings.
type DeveloperRatingStats struct {
	Average float64 `json:"average"`
	Count   int64   `json:"count"`
}

type RatingRepository interface {
	// Create inserts a rating; a second rating for the same job surfaces as
	// ErrConflict from the unique index.
	Create(ctx Context, r Rating) (string, error)
	Get(ctx Context, id string) (Rating, error)
	GetByJob(ctx Context, jobID string) (Rating, error)
	Update(ctx Context, r Rating) error
	Delete(ctx Context, id string) error
	ListByDeveloper(ctx Context, developerID string, pr PageRequest) (Page[Rating], error)
	// RecomputeAggregate reads the full rating set for the developer and
	// writes mean and count back to the user row. Read-all-then-write keeps
	// the aggregate correct under edits and deletes; concurrent recomputes
	// for the same developer are last-write-wins.
	RecomputeAggregate(ctx Context, developerID string) (DeveloperRatingStats, error)
}

type MessageRepository interface {
	Create(ctx Context, m Message) (string, error)
	// ListByJob returns the conversation page and marks the reader's unread
	// messages in it as read.
	ListByJob(ctx Context, jobID, readerID string, pr PageRequest) (Page[Message], error)
	MarkRead(ctx Context, messageID, recipientID string) error
	UnreadCount(ctx Context, recipientID string) (int64, error)
	DeleteByJob(ctx Context, jobID string) error
}

// EventKind enumerates the fire-and-forget notification events.
type EventKind string

const (
	EventApplicationSubmitted EventKind = "application.submitted"
	EventDeveloperHired       EventKind = "developer.hired"
	EventJobCompleted         EventKind = "job.completed"
)

// Event is handed to the notification collaborator. Delivery failure must
// never affect the outcome of the operation that emitted it.
type Event struct {
	Kind        EventKind `json:"kind"`
	JobID       string    `json:"job_id"`
	JobTitle    string    `json:"job_title"`
	ClientID    string    `json:"client_id"`
	DeveloperID string    `json:"developer_id"`
	At          time.Time `json:"at"`
}

// Notifier publishes events to the notification collaborator.
type Notifier interface {
	Publish(ctx Context, ev Event) error
}

// TokenVerifier is the identity collaborator boundary: request credentials in,
// Principal out, ErrUnauthenticated on failure.
type TokenVerifier interface {
	Verify(ctx Context, token string) (Principal, error)
}

// ProfileCache caches public developer profiles; a miss is not an error.
type ProfileCache interface {
	Get(ctx Context, id string) (User, bool, error)
	Set(ctx Context, u User) error
	Invalidate(ctx Context, id string) error
}

// Mailer delivers a rendered notification email.
type Mailer interface {
	Send(ctx Context, to, subject, htmlBody string) error
}
