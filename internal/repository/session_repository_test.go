package repository_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/Freeeeeet/artacademy/internal/app"
	"github.com/Freeeeeet/artacademy/internal/model"
	"github.com/Freeeeeet/artacademy/internal/repository"
	"github.com/Freeeeeet/artacademy/migrations"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// setupSessions поднимает схему в TEST_DB_DSN и создаёт курс для занятий.
// Без TEST_DB_DSN тесты пропускаются.
func setupSessions(t *testing.T) (*repository.SessionRepository, string) {
	t.Helper()

	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		t.Skip("TEST_DB_DSN not set")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	migrator, err := app.NewMigrator(pool, migrations.FS, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = migrator.Close() })
	require.NoError(t, migrator.Run(ctx))

	course := &model.Course{
		ID:     uuid.NewString(),
		Title:  "Oil painting",
		Level:  model.CourseLevelBeginner,
		Status: model.CourseStatusActive,
	}
	require.NoError(t, repository.NewCourseRepository(pool).Create(ctx, course))

	return repository.NewSessionRepository(pool), course.ID
}

func createSession(t *testing.T, repo *repository.SessionRepository, courseID string, start, end time.Time) *model.LiveSession {
	t.Helper()
	s := &model.LiveSession{
		ID:             uuid.NewString(),
		CourseID:       courseID,
		Title:          "Still life",
		ScheduledStart: start,
		ScheduledEnd:   end,
	}
	require.NoError(t, repo.Create(context.Background(), s))
	return s
}

func TestSessionRepository_StartAndEndByChannel(t *testing.T) {
	repo, courseID := setupSessions(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Microsecond)
	channel := "room-" + uuid.NewString()

	s := createSession(t, repo, courseID, now.Add(-time.Minute), now.Add(time.Hour))

	started, err := repo.Start(ctx, s.ID, channel, now)
	require.NoError(t, err)
	assert.True(t, started)

	started, err = repo.Start(ctx, s.ID, "room-other", now)
	require.NoError(t, err)
	assert.False(t, started, "channel already open")

	ended, err := repo.EndByChannel(ctx, channel, now)
	require.NoError(t, err)
	require.Len(t, ended, 1)
	assert.Equal(t, s.ID, ended[0].ID)
	assert.Nil(t, ended[0].ActiveChannel)
	require.NotNil(t, ended[0].EndedAt)
	assert.WithinDuration(t, now, *ended[0].EndedAt, time.Microsecond)
	assert.WithinDuration(t, now, ended[0].ScheduledEnd, time.Microsecond)

	ended, err = repo.EndByChannel(ctx, channel, now)
	require.NoError(t, err)
	assert.Empty(t, ended, "second leave finds nothing")

	started, err = repo.Start(ctx, s.ID, channel, now)
	require.NoError(t, err)
	assert.False(t, started, "ended session is not reopened")
}

func TestSessionRepository_EarlyStartEndIsTerminal(t *testing.T) {
	repo, courseID := setupSessions(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Microsecond)
	channel := "room-" + uuid.NewString()

	start, end := now.Add(time.Hour), now.Add(2*time.Hour)
	s := createSession(t, repo, courseID, start, end)

	started, err := repo.Start(ctx, s.ID, channel, now)
	require.NoError(t, err)
	require.True(t, started)

	ended, err := repo.EndByChannel(ctx, channel, now)
	require.NoError(t, err)
	require.Len(t, ended, 1)
	assert.WithinDuration(t, start, ended[0].ScheduledEnd, time.Microsecond, "end clamped to start")
	require.NotNil(t, ended[0].EndedAt)

	got, err := repo.GetByID(ctx, s.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, model.SessionStateEnded, got.State(now))

	started, err = repo.Start(ctx, s.ID, "room-"+uuid.NewString(), now)
	require.NoError(t, err)
	assert.False(t, started, "window is still ahead but the session was ended")

	upcoming, err := repo.ListUpcoming(ctx, now, 1000)
	require.NoError(t, err)
	for _, u := range upcoming {
		assert.NotEqual(t, s.ID, u.ID)
	}
}

func TestSessionRepository_CloseExpired(t *testing.T) {
	repo, courseID := setupSessions(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Microsecond)

	expired := createSession(t, repo, courseID, now.Add(-2*time.Hour), now.Add(-time.Hour))
	running := createSession(t, repo, courseID, now.Add(-time.Minute), now.Add(time.Hour))

	// Открываем оба канала в момент, когда окно expired ещё шло
	past := now.Add(-90 * time.Minute)
	started, err := repo.Start(ctx, expired.ID, "room-"+uuid.NewString(), past)
	require.NoError(t, err)
	require.True(t, started)
	started, err = repo.Start(ctx, running.ID, "room-"+uuid.NewString(), now)
	require.NoError(t, err)
	require.True(t, started)

	list, err := repo.ListExpired(ctx, now)
	require.NoError(t, err)
	ids := make([]string, 0, len(list))
	for _, s := range list {
		ids = append(ids, s.ID)
	}
	assert.Contains(t, ids, expired.ID)
	assert.NotContains(t, ids, running.ID)

	closed, err := repo.CloseExpired(ctx, expired.ID, now)
	require.NoError(t, err)
	assert.True(t, closed)

	closed, err = repo.CloseExpired(ctx, expired.ID, now)
	require.NoError(t, err)
	assert.False(t, closed, "already closed")

	closed, err = repo.CloseExpired(ctx, running.ID, now)
	require.NoError(t, err)
	assert.False(t, closed, "window not over")

	got, err := repo.GetByID(ctx, expired.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Nil(t, got.ActiveChannel)
	require.NotNil(t, got.EndedAt)
	assert.WithinDuration(t, now, *got.EndedAt, time.Microsecond)
}
