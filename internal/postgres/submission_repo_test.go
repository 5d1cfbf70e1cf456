package postgres_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/arunjadaun2002/FlyPrep/internal/domain"
	"github.com/arunjadaun2002/FlyPrep/internal/postgres"
)

func newRepo(t *testing.T) *postgres.SubmissionRepo {
	t.Helper()
	if testing.Short() {
		t.Skip("postgres container test skipped in -short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("flyprep"),
		tcpostgres.WithUsername("flyprep"),
		tcpostgres.WithPassword("flyprep"),
		testcontainers.WithWaitStrategy(wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	require.NoError(t, postgres.Migrate(ctx, dsn))

	pool, err := postgres.NewPool(ctx, postgres.Config{DSN: dsn, MaxConns: 4, ApplicationName: "flyprep-test"})
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	return postgres.NewSubmissionRepo(pool)
}

func TestSubmissionRepo(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	report := domain.BugReport{Title: "Timer stuck", Description: "at 00:01"}

	t.Run("SaveAndGet", func(t *testing.T) {
		id, err := repo.Save(ctx, domain.KindBugReport, report)
		require.NoError(t, err)

		s, err := repo.Get(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, domain.KindBugReport, s.Kind)
		assert.False(t, s.Delivered)
		assert.Nil(t, s.DeliveredAt)

		var got domain.BugReport
		require.NoError(t, json.Unmarshal(s.Payload, &got))
		assert.Equal(t, report, got)
	})

	t.Run("MarkDelivered", func(t *testing.T) {
		ok, err := repo.Save(ctx, domain.KindBugReport, report)
		require.NoError(t, err)
		failed, err := repo.Save(ctx, domain.KindBugReport, report)
		require.NoError(t, err)

		require.NoError(t, repo.MarkDelivered(ctx, ok, nil))
		require.NoError(t, repo.MarkDelivered(ctx, failed, errors.New("smtp 421")))

		s, err := repo.Get(ctx, ok)
		require.NoError(t, err)
		assert.True(t, s.Delivered)
		assert.NotNil(t, s.DeliveredAt)

		s, err = repo.Get(ctx, failed)
		require.NoError(t, err)
		assert.False(t, s.Delivered)
		assert.Equal(t, "smtp 421", s.SendError)
	})

	t.Run("NotFound", func(t *testing.T) {
		_, err := repo.Get(ctx, 999999)
		assert.ErrorIs(t, err, postgres.ErrSubmissionNotFound)
		assert.ErrorIs(t, repo.MarkDelivered(ctx, 999999, nil), postgres.ErrSubmissionNotFound)
	})

	t.Run("ListRecent", func(t *testing.T) {
		_, err := repo.Save(ctx, domain.KindInterviewRequest, domain.InterviewRequest{Name: "Asha", Email: "a@b.co"})
		require.NoError(t, err)

		items, err := repo.ListRecent(ctx, domain.KindInterviewRequest, 10)
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, domain.KindInterviewRequest, items[0].Kind)
	})
}
