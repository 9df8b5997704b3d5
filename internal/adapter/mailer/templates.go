package mailer

import (
	"fmt"
	"html/template"
	"strings"

	"github.com/skillsync/skillsync/internal/domain"
)

// RenderedEmail is a subject plus HTML body ready to send.
type RenderedEmail struct {
	Subject string
	HTML    string
}

// EmailData feeds the notification templates.
type EmailData struct {
	JobTitle      string
	ClientName    string
	DeveloperName string
	DashboardURL  string
}

const bodyWrap = `<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">{{template "body" .}}<p>Best regards,<br>The SkillSync Team</p></div>`

var (
	applicationTmpl = mustTemplate(`{{define "body"}}<h2 style="color: #333;">New Job Application</h2>
<p>You have received a new application for your job post: <strong>{{.JobTitle}}</strong></p>
<p>Applicant: {{.DeveloperName}}</p>
<p>Please log in to your account to review the application.</p>
<a href="{{.DashboardURL}}/dashboard" style="background-color: #007bff; color: white; padding: 10px 20px; text-decoration: none; border-radius: 5px;">View Application</a>{{end}}`)

	hiredTmpl = mustTemplate(`{{define "body"}}<h2 style="color: #28a745;">Congratulations!</h2>
<p>You have been selected for the project: <strong>{{.JobTitle}}</strong></p>
<p>Client: {{.ClientName}}</p>
<p>Please log in to your account to view project details and start communication with the client.</p>
<a href="{{.DashboardURL}}/dashboard" style="background-color: #28a745; color: white; padding: 10px 20px; text-decoration: none; border-radius: 5px;">View Project</a>{{end}}`)

	completedTmpl = mustTemplate(`{{define "body"}}<h2 style="color: #28a745;">Job Completed Successfully!</h2>
<p>Your project <strong>{{.JobTitle}}</strong> has been marked as completed by {{.ClientName}}.</p>
<p>Payment will be processed within 24-48 hours.</p>
<p>Thank you for your excellent work!</p>
<a href="{{.DashboardURL}}/dashboard" style="background-color: #007bff; color: white; padding: 10px 20px; text-decoration: none; border-radius: 5px;">View Dashboard</a>{{end}}`)
)

func mustTemplate(body string) *template.Template {
	return template.Must(template.Must(template.New("email").Parse(body)).Parse(bodyWrap))
}

// Render produces the email for one event kind. The recipient depends on the
// kind: the client gets application notices, the developer gets hire and
// completion notices.
func Render(kind domain.EventKind, data EmailData) (RenderedEmail, error) {
	var (
		tmpl    *template.Template
		subject string
	)
	switch kind {
	case domain.EventApplicationSubmitted:
		tmpl, subject = applicationTmpl, "New Application for Your Job Post"
	case domain.EventDeveloperHired:
		tmpl, subject = hiredTmpl, "Congratulations! You've been hired"
	case domain.EventJobCompleted:
		tmpl, subject = completedTmpl, "Job Completed - Payment Processing"
	default:
		return RenderedEmail{}, fmt.Errorf("op=mailer.render: unknown event kind %q", kind)
	}
	var sb strings.Builder
	if err := tmpl.Execute(&sb, data); err != nil {
		return RenderedEmail{}, fmt.Errorf("op=mailer.render: %w", err)
	}
	return RenderedEmail{Subject: subject, HTML: sb.String()}, nil
}
