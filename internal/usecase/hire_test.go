package usecase_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skillsync/skillsync/internal/domain"
)

func TestHire(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	client := domain.Principal{ID: "client-1", Role: domain.RoleClient}

	t.Run("accepts the chosen application and rejects the rest", func(t *testing.T) {
		t.Parallel()
		e := newEnv()
		j := e.seedJob(domain.Job{ClientID: client.ID, Status: domain.JobOpen, Title: "API work"})
		e.seedApplication(domain.Application{JobID: j.ID, DeveloperID: "dev-1"})
		e.seedApplication(domain.Application{JobID: j.ID, DeveloperID: "dev-2"})
		e.seedApplication(domain.Application{JobID: j.ID, DeveloperID: "dev-3"})

		accepted, err := e.hire.Hire(ctx, client, j.ID, "dev-2")
		require.NoError(t, err)
		assert.Equal(t, domain.ApplicationAccepted, accepted.Status)
		assert.Equal(t, "dev-2", accepted.DeveloperID)

		got, err := e.jobs.Get(ctx, j.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.JobInProgress, got.Status)
		require.NotNil(t, got.HiredDeveloperID)
		assert.Equal(t, "dev-2", *got.HiredDeveloperID)

		apps, err := appStore{e.store}.ListByJob(ctx, j.ID)
		require.NoError(t, err)
		var rejected int
		for _, a := range apps {
			if a.Status == domain.ApplicationRejected {
				rejected++
			}
		}
		assert.Equal(t, 2, rejected)

		require.Len(t, e.notifier.kinds(), 1)
		assert.Equal(t, domain.EventDeveloperHired, e.notifier.kinds()[0])
	})

	t.Run("only the job's client may hire", func(t *testing.T) {
		t.Parallel()
		e := newEnv()
		j := e.seedJob(domain.Job{ClientID: client.ID, Status: domain.JobOpen})
		e.seedApplication(domain.Application{JobID: j.ID, DeveloperID: "dev-1"})
		other := domain.Principal{ID: "client-2", Role: domain.RoleClient}
		_, err := e.hire.Hire(ctx, other, j.ID, "dev-1")
		assert.ErrorIs(t, err, domain.ErrForbidden)
	})

	t.Run("second hire on the same job conflicts", func(t *testing.T) {
		t.Parallel()
		e := newEnv()
		j := e.seedJob(domain.Job{ClientID: client.ID, Status: domain.JobOpen})
		e.seedApplication(domain.Application{JobID: j.ID, DeveloperID: "dev-1"})
		e.seedApplication(domain.Application{JobID: j.ID, DeveloperID: "dev-2"})

		_, err := e.hire.Hire(ctx, client, j.ID, "dev-1")
		require.NoError(t, err)
		_, err = e.hire.Hire(ctx, client, j.ID, "dev-2")
		assert.ErrorIs(t, err, domain.ErrStateConflict)
	})

	t.Run("no pending application for the developer", func(t *testing.T) {
		t.Parallel()
		e := newEnv()
		j := e.seedJob(domain.Job{ClientID: client.ID, Status: domain.JobOpen})
		e.seedApplication(domain.Application{JobID: j.ID, DeveloperID: "dev-1", Status: domain.ApplicationWithdrawn})
		_, err := e.hire.Hire(ctx, client, j.ID, "dev-1")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("developer id required", func(t *testing.T) {
		t.Parallel()
		e := newEnv()
		j := e.seedJob(domain.Job{ClientID: client.ID, Status: domain.JobOpen})
		_, err := e.hire.Hire(ctx, client, j.ID, "")
		assert.ErrorIs(t, err, domain.ErrInvalidArgument)
	})
}

// Two clients racing to hire different developers on the same job: exactly one
// wins, the loser sees a state conflict, and the job ends up with one hired
// developer and one accepted application.
func TestHireConcurrent(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	client := domain.Principal{ID: "client-1", Role: domain.RoleClient}

	e := newEnv()
	j := e.seedJob(domain.Job{ClientID: client.ID, Status: domain.JobOpen})
	e.seedApplication(domain.Application{JobID: j.ID, DeveloperID: "dev-1"})
	e.seedApplication(domain.Application{JobID: j.ID, DeveloperID: "dev-2"})

	errs := make([]error, 2)
	var wg sync.WaitGroup
	for i, dev := range []string{"dev-1", "dev-2"} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = e.hire.Hire(ctx, client, j.ID, dev)
		}()
	}
	wg.Wait()

	var won, lost int
	for _, err := range errs {
		switch {
		case err == nil:
			won++
		case assert.ErrorIs(t, err, domain.ErrStateConflict):
			lost++
		}
	}
	assert.Equal(t, 1, won)
	assert.Equal(t, 1, lost)

	got, err := e.jobs.Get(ctx, j.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.JobInProgress, got.Status)
	require.NotNil(t, got.HiredDeveloperID)

	apps, err := appStore{e.store}.ListByJob(ctx, j.ID)
	require.NoError(t, err)
	var acceptedCount int
	for _, a := range apps {
		if a.Status == domain.ApplicationAccepted {
			acceptedCount++
			assert.Equal(t, *got.HiredDeveloperID, a.DeveloperID)
		}
	}
	assert.Equal(t, 1, acceptedCount)
}
