package domain

import (
	"context"
	"errors"
	"time"
)

// Error taxonomy (sentinels)
var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")
	ErrStateConflict   = errors.New("state conflict")
	ErrInternal        = errors.New("internal error")
)

// Role identifies what a principal is allowed to do at operation boundaries.
type Role string

const (
	RoleClient    Role = "client"
	RoleDeveloper Role = "developer"
	RoleAdmin     Role = "admin"
)

// Principal is the authenticated caller as reported by the identity collaborator.
// The core trusts it for every ownership and role check.
type Principal struct {
	ID   string
	Role Role
}

// JobStatus is the lifecycle state of a job. Transitions only move forward:
// open -> in_progress -> completed, or open -> cancelled.
type JobStatus string

const (
	JobOpen       JobStatus = "open"
	JobInProgress JobStatus = "in_progress"
	JobCompleted  JobStatus = "completed"
	JobCancelled  JobStatus = "cancelled"
)

// BudgetType distinguishes fixed-price jobs from hourly engagements.
type BudgetType string

const (
	BudgetFixed  BudgetType = "fixed"
	BudgetHourly BudgetType = "hourly"
)

// Attachment is a stored reference only; upload and deletion of the bytes are
// handled by the external attachment storage collaborator.
type Attachment struct {
	Filename   string    `json:"filename"`
	URL        string    `json:"url"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// Job is a unit of work posted by a client.
// Invariant: HiredDeveloperID is set iff Status is in_progress or completed.
type Job struct {
	ID               string
	Title            string
	Description      string
	RequiredSkills   []string
	Budget           float64
	BudgetType       BudgetType
	Deadline         time.Time
	ExperienceLevel  string
	Category         string
	Status           JobStatus
	ClientID         string
	HiredDeveloperID *string
	IsUrgent         bool
	EstimatedDuration string
	PaymentReleased  bool
	Attachments      []Attachment
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// ApplicationStatus is the lifecycle state of an application. pending is the only
// mutable state; accepted, rejected and withdrawn are terminal.
type ApplicationStatus string

const (
	ApplicationPending   ApplicationStatus = "pending"
	ApplicationAccepted  ApplicationStatus = "accepted"
	ApplicationRejected  ApplicationStatus = "rejected"
	ApplicationWithdrawn ApplicationStatus = "withdrawn"
)

// PortfolioItem is a work sample attached to an application.
type PortfolioItem struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	Description string `json:"description"`
}

// Application is a developer's bid on a job. At most one exists per
// (job, developer) pair, enforced by a storage-level unique index.
type Application struct {
	ID                string
	JobID             string
	DeveloperID       string
	CoverLetter       string
	ProposedRate      float64
	EstimatedDuration string
	Status            ApplicationStatus
	Portfolio         []PortfolioItem
	Attachments       []Attachment
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// RatingCategories are optional per-aspect sub-scores.
type RatingCategories struct {
	Communication int `json:"communication,omitempty"`
	Quality       int `json:"quality,omitempty"`
	Timeliness    int `json:"timeliness,omitempty"`
}

// Rating is a client's post-completion score of the hired developer.
// At most one exists per job, enforced by a storage-level unique index.
type Rating struct {
	ID          string
	JobID       string
	ClientID    string
	DeveloperID string
	Score       int
	Review      string
	Categories  RatingCategories
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Message is job-scoped correspondence between the client and the hired developer.
type Message struct {
	ID          string
	JobID       string
	SenderID    string
	RecipientID string
	Content     string
	Attachments []Attachment
	IsRead      bool
	ReadAt      *time.Time
	CreatedAt   time.Time
}

// User carries profile data plus the developer aggregate fields owned by the
// rating gate and the job-completion step: Rating (mean of all ratings
// received), TotalRatings and CompletedProjects.
type User struct {
	ID                string
	Email             string
	FirstName         string
	LastName          string
	Role              Role
	Bio               string
	Skills            []string
	HourlyRate        float64
	Experience        string
	Company           string
	AvatarURL         string
	ResumeURL         string
	Rating            float64
	TotalRatings      int64
	CompletedProjects int64
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Context is an alias so adapters and usecases share the std context type.
type Context = context.Context
