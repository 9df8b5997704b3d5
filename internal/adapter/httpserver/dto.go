package httpserver

import (
	"time"

	"github.com/skillsync/skillsync/internal/domain"
)

type attachmentDTO struct {
	Filename    string `json:"filename" validate:"required"`
	URL         string `json:"url" validate:"required,url"`
	ContentType string `json:"content_type,omitempty"`
}

func attachmentsIn(in []attachmentDTO) []domain.Attachment {
	if len(in) == 0 {
		return nil
	}
	out := make([]domain.Attachment, 0, len(in))
	for _, a := range in {
		out = append(out, domain.Attachment{Filename: a.Filename, URL: a.URL, UploadedAt: time.Now().UTC()})
	}
	return out
}

func attachmentsOut(in []domain.Attachment) []attachmentDTO {
	out := make([]attachmentDTO, 0, len(in))
	for _, a := range in {
		out = append(out, attachmentDTO{Filename: a.Filename, URL: a.URL})
	}
	return out
}

type jobRequest struct {
	Title             string          `json:"title" validate:"required"`
	Description       string          `json:"description" validate:"required"`
	RequiredSkills    []string        `json:"required_skills"`
	Budget            float64         `json:"budget" validate:"gte=0"`
	BudgetType        string          `json:"budget_type" validate:"required,oneof=fixed hourly"`
	Deadline          time.Time       `json:"deadline" validate:"required"`
	ExperienceLevel   string          `json:"experience_level" validate:"omitempty,oneof=beginner intermediate expert"`
	Category          string          `json:"category" validate:"required"`
	IsUrgent          bool            `json:"is_urgent"`
	EstimatedDuration string          `json:"estimated_duration"`
	Attachments       []attachmentDTO `json:"attachments" validate:"dive"`
}

func (in jobRequest) toDomain() domain.Job {
	return domain.Job{
		Title:             in.Title,
		Description:       in.Description,
		RequiredSkills:    in.RequiredSkills,
		Budget:            in.Budget,
		BudgetType:        domain.BudgetType(in.BudgetType),
		Deadline:          in.Deadline,
		ExperienceLevel:   in.ExperienceLevel,
		Category:          in.Category,
		IsUrgent:          in.IsUrgent,
		EstimatedDuration: in.EstimatedDuration,
		Attachments:       attachmentsIn(in.Attachments),
	}
}

type jobResponse struct {
	ID                string          `json:"id"`
	Title             string          `json:"title"`
	Description       string          `json:"description"`
	RequiredSkills    []string        `json:"required_skills,omitempty"`
	Budget            float64         `json:"budget"`
	BudgetType        string          `json:"budget_type"`
	Deadline          time.Time       `json:"deadline"`
	ExperienceLevel   string          `json:"experience_level,omitempty"`
	Category          string          `json:"category"`
	Status            string          `json:"status"`
	ClientID          string          `json:"client_id"`
	HiredDeveloperID  *string         `json:"hired_developer_id,omitempty"`
	IsUrgent          bool            `json:"is_urgent"`
	EstimatedDuration string          `json:"estimated_duration,omitempty"`
	PaymentReleased   bool            `json:"payment_released"`
	Attachments       []attachmentDTO `json:"attachments,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

func toJobResponse(j domain.Job) jobResponse {
	return jobResponse{
		ID:                j.ID,
		Title:             j.Title,
		Description:       j.Description,
		RequiredSkills:    j.RequiredSkills,
		Budget:            j.Budget,
		BudgetType:        string(j.BudgetType),
		Deadline:          j.Deadline,
		ExperienceLevel:   j.ExperienceLevel,
		Category:          j.Category,
		Status:            string(j.Status),
		ClientID:          j.ClientID,
		HiredDeveloperID:  j.HiredDeveloperID,
		IsUrgent:          j.IsUrgent,
		EstimatedDuration: j.EstimatedDuration,
		PaymentReleased:   j.PaymentReleased,
		Attachments:       attachmentsOut(j.Attachments),
		CreatedAt:         j.CreatedAt,
		UpdatedAt:         j.UpdatedAt,
	}
}

func toJobPage(p domain.Page[domain.Job]) domain.Page[jobResponse] {
	items := make([]jobResponse, 0, len(p.Items))
	for _, j := range p.Items {
		items = append(items, toJobResponse(j))
	}
	return domain.Page[jobResponse]{Items: items, CurrentPage: p.CurrentPage, TotalPages: p.TotalPages, Total: p.Total}
}

type portfolioItemDTO struct {
	Title       string `json:"title" validate:"required"`
	URL         string `json:"url" validate:"required,url"`
	Description string `json:"description"`
}

type applicationRequest struct {
	CoverLetter       string             `json:"cover_letter" validate:"required"`
	ProposedRate      float64            `json:"proposed_rate" validate:"gte=0"`
	EstimatedDuration string             `json:"estimated_duration"`
	Portfolio         []portfolioItemDTO `json:"portfolio" validate:"dive"`
	Attachments       []attachmentDTO    `json:"attachments" validate:"dive"`
}

func (in applicationRequest) toDomain() domain.Application {
	var portfolio []domain.PortfolioItem
	for _, p := range in.Portfolio {
		portfolio = append(portfolio, domain.PortfolioItem{Title: p.Title, URL: p.URL, Description: p.Description})
	}
	return domain.Application{
		CoverLetter:       in.CoverLetter,
		ProposedRate:      in.ProposedRate,
		EstimatedDuration: in.EstimatedDuration,
		Portfolio:         portfolio,
		Attachments:       attachmentsIn(in.Attachments),
	}
}

type applicationResponse struct {
	ID                string                 `json:"id"`
	JobID             string                 `json:"job_id"`
	DeveloperID       string                 `json:"developer_id"`
	CoverLetter       string                 `json:"cover_letter"`
	ProposedRate      float64                `json:"proposed_rate"`
	EstimatedDuration string                 `json:"estimated_duration,omitempty"`
	Status            string                 `json:"status"`
	Portfolio         []domain.PortfolioItem `json:"portfolio,omitempty"`
	Attachments       []attachmentDTO        `json:"attachments,omitempty"`
	CreatedAt         time.Time              `json:"created_at"`
	UpdatedAt         time.Time              `json:"updated_at"`
}

func toApplicationResponse(a domain.Application) applicationResponse {
	return applicationResponse{
		ID:                a.ID,
		JobID:             a.JobID,
		DeveloperID:       a.DeveloperID,
		CoverLetter:       a.CoverLetter,
		ProposedRate:      a.ProposedRate,
		EstimatedDuration: a.EstimatedDuration,
		Status:            string(a.Status),
		Portfolio:         a.Portfolio,
		Attachments:       attachmentsOut(a.Attachments),
		CreatedAt:         a.CreatedAt,
		UpdatedAt:         a.UpdatedAt,
	}
}

type ratingRequest struct {
	JobID       string `json:"job_id" validate:"required"`
	DeveloperID string `json:"developer_id" validate:"required"`
	Score       int    `json:"score" validate:"required,min=1,max=5"`
	Review      string `json:"review"`
	Categories  struct {
		Communication int `json:"communication" validate:"min=0,max=5"`
		Quality       int `json:"quality" validate:"min=0,max=5"`
		Timeliness    int `json:"timeliness" validate:"min=0,max=5"`
	} `json:"categories"`
}

func (in ratingRequest) toDomain() domain.Rating {
	return domain.Rating{
		JobID:       in.JobID,
		DeveloperID: in.DeveloperID,
		Score:       in.Score,
		Review:      in.Review,
		Categories: domain.RatingCategories{
			Communication: in.Categories.Communication,
			Quality:       in.Categories.Quality,
			Timeliness:    in.Categories.Timeliness,
		},
	}
}

type ratingResponse struct {
	ID          string                  `json:"id"`
	JobID       string                  `json:"job_id"`
	ClientID    string                  `json:"client_id"`
	DeveloperID string                  `json:"developer_id"`
	Score       int                     `json:"score"`
	Review      string                  `json:"review,omitempty"`
	Categories  domain.RatingCategories `json:"categories"`
	CreatedAt   time.Time               `json:"created_at"`
	UpdatedAt   time.Time               `json:"updated_at"`
}

func toRatingResponse(r domain.Rating) ratingResponse {
	return ratingResponse{
		ID:          r.ID,
		JobID:       r.JobID,
		ClientID:    r.ClientID,
		DeveloperID: r.DeveloperID,
		Score:       r.Score,
		Review:      r.Review,
		Categories:  r.Categories,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

type messageRequest struct {
	RecipientID string          `json:"recipient_id" validate:"required"`
	Content     string          `json:"content" validate:"required"`
	Attachments []attachmentDTO `json:"attachments" validate:"dive"`
}

type messageResponse struct {
	ID          string          `json:"id"`
	JobID       string          `json:"job_id"`
	SenderID    string          `json:"sender_id"`
	RecipientID string          `json:"recipient_id"`
	Content     string          `json:"content"`
	Attachments []attachmentDTO `json:"attachments,omitempty"`
	IsRead      bool            `json:"is_read"`
	ReadAt      *time.Time      `json:"read_at,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

func toMessageResponse(m domain.Message) messageResponse {
	return messageResponse{
		ID:          m.ID,
		JobID:       m.JobID,
		SenderID:    m.SenderID,
		RecipientID: m.RecipientID,
		Content:     m.Content,
		Attachments: attachmentsOut(m.Attachments),
		IsRead:      m.IsRead,
		ReadAt:      m.ReadAt,
		CreatedAt:   m.CreatedAt,
	}
}

type profileRequest struct {
	FirstName  string   `json:"first_name" validate:"required"`
	LastName   string   `json:"last_name" validate:"required"`
	Bio        string   `json:"bio"`
	Skills     []string `json:"skills"`
	HourlyRate float64  `json:"hourly_rate" validate:"gte=0"`
	Experience string   `json:"experience"`
	Company    string   `json:"company"`
	AvatarURL  string   `json:"avatar_url" validate:"omitempty,url"`
	ResumeURL  string   `json:"resume_url" validate:"omitempty,url"`
}

func (in profileRequest) toDomain() domain.User {
	return domain.User{
		FirstName:  in.FirstName,
		LastName:   in.LastName,
		Bio:        in.Bio,
		Skills:     in.Skills,
		HourlyRate: in.HourlyRate,
		Experience: in.Experience,
		Company:    in.Company,
		AvatarURL:  in.AvatarURL,
		ResumeURL:  in.ResumeURL,
	}
}

type profileResponse struct {
	ID                string    `json:"id"`
	Email             string    `json:"email,omitempty"`
	FirstName         string    `json:"first_name"`
	LastName          string    `json:"last_name"`
	Role              string    `json:"role"`
	Bio               string    `json:"bio,omitempty"`
	Skills            []string  `json:"skills,omitempty"`
	HourlyRate        float64   `json:"hourly_rate,omitempty"`
	Experience        string    `json:"experience,omitempty"`
	Company           string    `json:"company,omitempty"`
	AvatarURL         string    `json:"avatar_url,omitempty"`
	ResumeURL         string    `json:"resume_url,omitempty"`
	Rating            float64   `json:"rating"`
	TotalRatings      int64     `json:"total_ratings"`
	CompletedProjects int64     `json:"completed_projects"`
	CreatedAt         time.Time `json:"created_at"`
}

func toProfileResponse(u domain.User) profileResponse {
	return profileResponse{
		ID:                u.ID,
		Email:             u.Email,
		FirstName:         u.FirstName,
		LastName:          u.LastName,
		Role:              string(u.Role),
		Bio:               u.Bio,
		Skills:            u.Skills,
		HourlyRate:        u.HourlyRate,
		Experience:        u.Experience,
		Company:           u.Company,
		AvatarURL:         u.AvatarURL,
		ResumeURL:         u.ResumeURL,
		Rating:            u.Rating,
		TotalRatings:      u.TotalRatings,
		CompletedProjects: u.CompletedProjects,
		CreatedAt:         u.CreatedAt,
	}
}
