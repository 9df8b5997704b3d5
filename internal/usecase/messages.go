package usecase

import (
	"fmt"
	"strings"

	"github.com/skillsync/skillsync/internal/domain"
)

// MessageService handles job-scoped correspondence. Messaging permission
// follows the job: only the owning client and the hired developer may talk.
type MessageService struct {
	Messages domain.MessageRepository
	Jobs     domain.JobRepository
}

// NewMessageService constructs a MessageService with its dependencies.
func NewMessageService(messages domain.MessageRepository, jobs domain.JobRepository) MessageService {
	return MessageService{Messages: messages, Jobs: jobs}
}

// Send delivers a message about a job to the other participant.
func (s MessageService) Send(ctx domain.Context, p domain.Principal, jobID, recipientID, content string, attachments []domain.Attachment) (domain.Message, error) {
	if strings.TrimSpace(content) == "" {
		return domain.Message{}, fmt.Errorf("%w: content required", domain.ErrInvalidArgument)
	}
	j, err := s.Jobs.Get(ctx, jobID)
	if err != nil {
		return domain.Message{}, err
	}
	if !j.Participant(p.ID) {
		return domain.Message{}, fmt.Errorf("%w: not involved in this job", domain.ErrForbidden)
	}
	if !j.Participant(recipientID) || recipientID == p.ID {
		return domain.Message{}, fmt.Errorf("%w: recipient is not the other participant", domain.ErrInvalidArgument)
	}
	m := domain.Message{
		JobID:       jobID,
		SenderID:    p.ID,
		RecipientID: recipientID,
		Content:     content,
		Attachments: attachments,
	}
	id, err := s.Messages.Create(ctx, m)
	if err != nil {
		return domain.Message{}, err
	}
	m.ID = id
	return m, nil
}

// ListForJob returns the conversation page, marking the caller's unread
// messages in it as read.
func (s MessageService) ListForJob(ctx domain.Context, p domain.Principal, jobID string, pr domain.PageRequest) (domain.Page[domain.Message], error) {
	j, err := s.Jobs.Get(ctx, jobID)
	if err != nil {
		return domain.Page[domain.Message]{}, err
	}
	if !j.Participant(p.ID) {
		return domain.Page[domain.Message]{}, fmt.Errorf("%w: not involved in this job", domain.ErrForbidden)
	}
	return s.Messages.ListByJob(ctx, jobID, p.ID, pr)
}

// MarkRead marks a single received message as read.
func (s MessageService) MarkRead(ctx domain.Context, p domain.Principal, messageID string) error {
	return s.Messages.MarkRead(ctx, messageID, p.ID)
}

// UnreadCount returns how many unread messages await the caller.
func (s MessageService) UnreadCount(ctx domain.Context, p domain.Principal) (int64, error) {
	return s.Messages.UnreadCount(ctx, p.ID)
}
