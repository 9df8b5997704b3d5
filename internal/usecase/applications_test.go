package usecase_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skillsync/skillsync/internal/domain"
)

func validApplicationInput() domain.Application {
	return domain.Application{
		CoverLetter:  "I have shipped three similar backends.",
		ProposedRate: 45,
	}
}

func TestApplicationSubmit(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	dev := domain.Principal{ID: "dev-1", Role: domain.RoleDeveloper}

	t.Run("files a pending application and notifies the client", func(t *testing.T) {
		t.Parallel()
		e := newEnv()
		j := e.seedJob(domain.Job{ClientID: "client-1", Status: domain.JobOpen, Title: "API work"})

		a, err := e.apps.Submit(ctx, dev, j.ID, validApplicationInput())
		require.NoError(t, err)
		assert.Equal(t, domain.ApplicationPending, a.Status)
		assert.Equal(t, dev.ID, a.DeveloperID)
		assert.Equal(t, j.ID, a.JobID)

		require.Len(t, e.notifier.kinds(), 1)
		assert.Equal(t, domain.EventApplicationSubmitted, e.notifier.kinds()[0])
	})

	t.Run("rejects clients", func(t *testing.T) {
		t.Parallel()
		e := newEnv()
		j := e.seedJob(domain.Job{ClientID: "client-1", Status: domain.JobOpen})
		client := domain.Principal{ID: "client-1", Role: domain.RoleClient}
		_, err := e.apps.Submit(ctx, client, j.ID, validApplicationInput())
		assert.ErrorIs(t, err, domain.ErrForbidden)
	})

	t.Run("rejects non-open jobs", func(t *testing.T) {
		t.Parallel()
		e := newEnv()
		j := e.seedJob(domain.Job{ClientID: "client-1", Status: domain.JobCancelled})
		_, err := e.apps.Submit(ctx, dev, j.ID, validApplicationInput())
		assert.ErrorIs(t, err, domain.ErrStateConflict)
	})

	t.Run("second application by the same developer conflicts", func(t *testing.T) {
		t.Parallel()
		e := newEnv()
		j := e.seedJob(domain.Job{ClientID: "client-1", Status: domain.JobOpen})
		_, err := e.apps.Submit(ctx, dev, j.ID, validApplicationInput())
		require.NoError(t, err)
		_, err = e.apps.Submit(ctx, dev, j.ID, validApplicationInput())
		assert.ErrorIs(t, err, domain.ErrConflict)
	})

	t.Run("withdrawing does not free the slot", func(t *testing.T) {
		t.Parallel()
		e := newEnv()
		j := e.seedJob(domain.Job{ClientID: "client-1", Status: domain.JobOpen})
		a, err := e.apps.Submit(ctx, dev, j.ID, validApplicationInput())
		require.NoError(t, err)
		require.NoError(t, e.apps.Withdraw(ctx, dev, a.ID))
		_, err = e.apps.Submit(ctx, dev, j.ID, validApplicationInput())
		assert.ErrorIs(t, err, domain.ErrConflict)
	})

	t.Run("validates input", func(t *testing.T) {
		t.Parallel()
		e := newEnv()
		j := e.seedJob(domain.Job{ClientID: "client-1", Status: domain.JobOpen})
		in := validApplicationInput()
		in.CoverLetter = "  "
		_, err := e.apps.Submit(ctx, dev, j.ID, in)
		assert.ErrorIs(t, err, domain.ErrInvalidArgument)

		in = validApplicationInput()
		in.ProposedRate = -5
		_, err = e.apps.Submit(ctx, dev, j.ID, in)
		assert.ErrorIs(t, err, domain.ErrInvalidArgument)
	})
}

func TestApplicationEditWithdraw(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	dev := domain.Principal{ID: "dev-1", Role: domain.RoleDeveloper}

	t.Run("pending applications can be edited", func(t *testing.T) {
		t.Parallel()
		e := newEnv()
		a := e.seedApplication(domain.Application{JobID: "job-1", DeveloperID: dev.ID, Status: domain.ApplicationPending})
		in := validApplicationInput()
		in.ProposedRate = 60
		got, err := e.apps.Edit(ctx, dev, a.ID, in)
		require.NoError(t, err)
		assert.Equal(t, float64(60), got.ProposedRate)
		assert.Equal(t, domain.ApplicationPending, got.Status)
	})

	t.Run("only the applicant may touch it", func(t *testing.T) {
		t.Parallel()
		e := newEnv()
		a := e.seedApplication(domain.Application{JobID: "job-1", DeveloperID: "dev-2", Status: domain.ApplicationPending})
		_, err := e.apps.Edit(ctx, dev, a.ID, validApplicationInput())
		assert.ErrorIs(t, err, domain.ErrForbidden)
		assert.ErrorIs(t, e.apps.Withdraw(ctx, dev, a.ID), domain.ErrForbidden)
	})

	t.Run("withdrawn applications are terminal", func(t *testing.T) {
		t.Parallel()
		e := newEnv()
		a := e.seedApplication(domain.Application{JobID: "job-1", DeveloperID: dev.ID, Status: domain.ApplicationPending})
		require.NoError(t, e.apps.Withdraw(ctx, dev, a.ID))
		_, err := e.apps.Edit(ctx, dev, a.ID, validApplicationInput())
		assert.ErrorIs(t, err, domain.ErrStateConflict)
		assert.ErrorIs(t, e.apps.Withdraw(ctx, dev, a.ID), domain.ErrStateConflict)
	})

	t.Run("rejected applications cannot be edited", func(t *testing.T) {
		t.Parallel()
		e := newEnv()
		a := e.seedApplication(domain.Application{JobID: "job-1", DeveloperID: dev.ID, Status: domain.ApplicationRejected})
		_, err := e.apps.Edit(ctx, dev, a.ID, validApplicationInput())
		assert.ErrorIs(t, err, domain.ErrStateConflict)
	})
}

func TestApplicationListForJob(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	client := domain.Principal{ID: "client-1", Role: domain.RoleClient}

	t.Run("owning client sees all applications", func(t *testing.T) {
		t.Parallel()
		e := newEnv()
		j := e.seedJob(domain.Job{ClientID: client.ID, Status: domain.JobOpen})
		e.seedApplication(domain.Application{JobID: j.ID, DeveloperID: "dev-1"})
		e.seedApplication(domain.Application{JobID: j.ID, DeveloperID: "dev-2"})

		apps, err := e.apps.ListForJob(ctx, client, j.ID)
		require.NoError(t, err)
		assert.Len(t, apps, 2)
	})

	t.Run("other users are forbidden", func(t *testing.T) {
		t.Parallel()
		e := newEnv()
		j := e.seedJob(domain.Job{ClientID: client.ID, Status: domain.JobOpen})
		other := domain.Principal{ID: "client-2", Role: domain.RoleClient}
		_, err := e.apps.ListForJob(ctx, other, j.ID)
		assert.ErrorIs(t, err, domain.ErrForbidden)
	})
}

func TestApplicationListOwn(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	dev := domain.Principal{ID: "dev-1", Role: domain.RoleDeveloper}

	e := newEnv()
	e.seedApplication(domain.Application{JobID: "job-1", DeveloperID: dev.ID, Status: domain.ApplicationPending})
	e.seedApplication(domain.Application{JobID: "job-2", DeveloperID: dev.ID, Status: domain.ApplicationRejected})
	e.seedApplication(domain.Application{JobID: "job-3", DeveloperID: "dev-2", Status: domain.ApplicationPending})

	page, err := e.apps.ListOwn(ctx, dev, "", domain.PageRequest{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.Total)

	page, err = e.apps.ListOwn(ctx, dev, domain.ApplicationPending, domain.PageRequest{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.Total)
}
