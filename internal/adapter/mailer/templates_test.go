package mailer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skillsync/skillsync/internal/adapter/mailer"
	"github.com/skillsync/skillsync/internal/domain"
)

func TestRender(t *testing.T) {
	t.Parallel()

	data := mailer.EmailData{
		JobTitle:      "Build a REST API",
		ClientName:    "Grace Hopper",
		DeveloperName: "Ada Lovelace",
		DashboardURL:  "https://app.skillsync.test",
	}

	t.Run("application submitted goes to the client", func(t *testing.T) {
		t.Parallel()
		out, err := mailer.Render(domain.EventApplicationSubmitted, data)
		require.NoError(t, err)
		assert.Equal(t, "New Application for Your Job Post", out.Subject)
		assert.Contains(t, out.HTML, "Build a REST API")
		assert.Contains(t, out.HTML, "Ada Lovelace")
		assert.Contains(t, out.HTML, "https://app.skillsync.test/dashboard")
		assert.Contains(t, out.HTML, "The SkillSync Team")
	})

	t.Run("developer hired", func(t *testing.T) {
		t.Parallel()
		out, err := mailer.Render(domain.EventDeveloperHired, data)
		require.NoError(t, err)
		assert.Equal(t, "Congratulations! You've been hired", out.Subject)
		assert.Contains(t, out.HTML, "Grace Hopper")
	})

	t.Run("job completed", func(t *testing.T) {
		t.Parallel()
		out, err := mailer.Render(domain.EventJobCompleted, data)
		require.NoError(t, err)
		assert.Equal(t, "Job Completed - Payment Processing", out.Subject)
		assert.Contains(t, out.HTML, "Payment will be processed")
	})

	t.Run("html escaping", func(t *testing.T) {
		t.Parallel()
		d := data
		d.JobTitle = `<script>alert("x")</script>`
		out, err := mailer.Render(domain.EventDeveloperHired, d)
		require.NoError(t, err)
		assert.NotContains(t, out.HTML, "<script>")
	})

	t.Run("unknown kind", func(t *testing.T) {
		t.Parallel()
		_, err := mailer.Render(domain.EventKind("nope"), data)
		assert.Error(t, err)
	})
}
