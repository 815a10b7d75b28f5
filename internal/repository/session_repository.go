package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/Freeeeeet/artacademy/internal/model"
	"github.com/Freeeeeet/artacademy/internal/repository/base"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const sessionColumns = `id, course_id, title, scheduled_start, scheduled_end, active_channel, ended_at, created_at`

type SessionRepository struct {
	*base.Repository
}

func NewSessionRepository(pool *pgxpool.Pool) *SessionRepository {
	return &SessionRepository{Repository: base.NewRepository(pool)}
}

func scanSession(row pgx.Row) (*model.LiveSession, error) {
	var s model.LiveSession
	err := row.Scan(
		&s.ID,
		&s.CourseID,
		&s.Title,
		&s.ScheduledStart,
		&s.ScheduledEnd,
		&s.ActiveChannel,
		&s.EndedAt,
		&s.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func collectSessions(rows pgx.Rows) ([]*model.LiveSession, error) {
	defer rows.Close()

	var sessions []*model.LiveSession
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		sessions = append(sessions, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}
	return sessions, nil
}

// Create создаёт запланированное занятие
func (r *SessionRepository) Create(ctx context.Context, s *model.LiveSession) error {
	query := `
		INSERT INTO live_sessions (id, course_id, title, scheduled_start, scheduled_end, active_channel)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`

	err := r.QueryRow(ctx, query,
		s.ID,
		s.CourseID,
		s.Title,
		s.ScheduledStart,
		s.ScheduledEnd,
		s.ActiveChannel,
	).Scan(&s.CreatedAt)
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}

	return nil
}

// GetByID получает занятие по ID
func (r *SessionRepository) GetByID(ctx context.Context, id string) (*model.LiveSession, error) {
	query := `SELECT ` + sessionColumns + ` FROM live_sessions WHERE id = $1`

	s, err := scanSession(r.QueryRow(ctx, query, id))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get session by id: %w", err)
	}

	return s, nil
}

// Start открывает канал, только если он ещё не открыт, занятие не завершено
// и окно не закончилось
func (r *SessionRepository) Start(ctx context.Context, id, channel string, now time.Time) (bool, error) {
	query := `
		UPDATE live_sessions
		SET active_channel = $2
		WHERE id = $1
		  AND active_channel IS NULL
		  AND ended_at IS NULL
		  AND scheduled_end > $3
	`

	affected, err := r.ExecAffected(ctx, query, id, channel, now)
	if err != nil {
		return false, fmt.Errorf("start session: %w", err)
	}

	return affected > 0, nil
}

// EndByChannel закрывает все занятия с этим каналом, фиксирует ended_at и сдвигает
// scheduled_end на now. Возвращает только строки, изменённые этим вызовом.
// ended_at делает завершение окончательным, даже если окно ещё впереди.
func (r *SessionRepository) EndByChannel(ctx context.Context, channel string, now time.Time) ([]*model.LiveSession, error) {
	query := `
		UPDATE live_sessions
		SET active_channel = NULL,
		    ended_at = $2,
		    scheduled_end = GREATEST(scheduled_start, $2)
		WHERE active_channel = $1
		RETURNING ` + sessionColumns

	rows, err := r.Query(ctx, query, channel, now)
	if err != nil {
		return nil, fmt.Errorf("end session by channel: %w", err)
	}

	return collectSessions(rows)
}

// ListExpired занятия с открытым каналом, окно которых уже прошло
func (r *SessionRepository) ListExpired(ctx context.Context, now time.Time) ([]*model.LiveSession, error) {
	query := `
		SELECT ` + sessionColumns + `
		FROM live_sessions
		WHERE active_channel IS NOT NULL
		  AND scheduled_end < $1
		ORDER BY scheduled_end
	`

	rows, err := r.Query(ctx, query, now)
	if err != nil {
		return nil, fmt.Errorf("list expired sessions: %w", err)
	}

	return collectSessions(rows)
}

// CloseExpired compare-and-clear: false, если канал уже закрыл кто-то другой
func (r *SessionRepository) CloseExpired(ctx context.Context, id string, now time.Time) (bool, error) {
	query := `
		UPDATE live_sessions
		SET active_channel = NULL,
		    ended_at = $2
		WHERE id = $1
		  AND active_channel IS NOT NULL
		  AND scheduled_end < $2
	`

	affected, err := r.ExecAffected(ctx, query, id, now)
	if err != nil {
		return false, fmt.Errorf("close expired session: %w", err)
	}

	return affected > 0, nil
}

// ListLive занятия, идущие прямо сейчас
func (r *SessionRepository) ListLive(ctx context.Context, now time.Time) ([]*model.LiveSession, error) {
	query := `
		SELECT ` + sessionColumns + `
		FROM live_sessions
		WHERE active_channel IS NOT NULL
		  AND scheduled_start <= $1
		  AND scheduled_end >= $1
		ORDER BY scheduled_start
	`

	rows, err := r.Query(ctx, query, now)
	if err != nil {
		return nil, fmt.Errorf("list live sessions: %w", err)
	}

	return collectSessions(rows)
}

// ListUpcoming незавершённые занятия, окно которых ещё не закончилось
func (r *SessionRepository) ListUpcoming(ctx context.Context, now time.Time, limit int) ([]*model.LiveSession, error) {
	query := `
		SELECT ` + sessionColumns + `
		FROM live_sessions
		WHERE scheduled_end >= $1
		  AND ended_at IS NULL
		ORDER BY scheduled_start
		LIMIT $2
	`

	rows, err := r.Query(ctx, query, now, limit)
	if err != nil {
		return nil, fmt.Errorf("list upcoming sessions: %w", err)
	}

	return collectSessions(rows)
}
