package mailer

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/skillsync/skillsync/internal/domain"
)

// EmailNotifier turns notification events into emails. Application notices go
// to the job's client; hire and completion notices go to the developer.
type EmailNotifier struct {
	Users        domain.UserRepository
	Sender       domain.Mailer
	DashboardURL string
}

// Handle processes one event. Errors bubble up so the queue redelivers.
func (n EmailNotifier) Handle(ctx context.Context, ev domain.Event) error {
	client, err := n.Users.Get(ctx, ev.ClientID)
	if err != nil {
		return fmt.Errorf("op=notify.handle: load client: %w", err)
	}
	developer, err := n.Users.Get(ctx, ev.DeveloperID)
	if err != nil {
		return fmt.Errorf("op=notify.handle: load developer: %w", err)
	}

	out, err := Render(ev.Kind, EmailData{
		JobTitle:      ev.JobTitle,
		ClientName:    fullName(client),
		DeveloperName: fullName(developer),
		DashboardURL:  n.DashboardURL,
	})
	if err != nil {
		return err
	}

	to := developer.Email
	if ev.Kind == domain.EventApplicationSubmitted {
		to = client.Email
	}
	if to == "" {
		// Nothing to deliver to; dropping beats redelivering forever.
		slog.Warn("notification recipient has no email",
			slog.String("kind", string(ev.Kind)), slog.String("job_id", ev.JobID))
		return nil
	}
	if err := n.Sender.Send(ctx, to, out.Subject, out.HTML); err != nil {
		return fmt.Errorf("op=notify.handle: %w", err)
	}
	slog.Info("notification email sent",
		slog.String("kind", string(ev.Kind)),
		slog.String("job_id", ev.JobID),
		slog.String("to", to))
	return nil
}

func fullName(u domain.User) string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Email
	}
	return name
}
