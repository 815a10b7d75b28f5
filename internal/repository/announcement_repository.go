package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/Freeeeeet/artacademy/internal/model"
	"github.com/Freeeeeet/artacademy/internal/repository/base"
	"github.com/jackc/pgx/v5/pgxpool"
)

type AnnouncementRepository struct {
	*base.Repository
}

func NewAnnouncementRepository(pool *pgxpool.Pool) *AnnouncementRepository {
	return &AnnouncementRepository{Repository: base.NewRepository(pool)}
}

// Create сохраняет объявление
func (r *AnnouncementRepository) Create(ctx context.Context, a *model.Announcement) error {
	query := `
		INSERT INTO announcements (id, title, content, type, target_audience, is_active, is_pinned, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at
	`

	err := r.QueryRow(ctx, query,
		a.ID,
		a.Title,
		a.Content,
		a.Type,
		a.Audience,
		a.IsActive,
		a.IsPinned,
		a.ExpiresAt,
	).Scan(&a.CreatedAt)
	if err != nil {
		return fmt.Errorf("create announcement: %w", err)
	}

	return nil
}

// ListActive активные и не истёкшие объявления, закреплённые первыми
func (r *AnnouncementRepository) ListActive(ctx context.Context, now time.Time, limit int) ([]*model.Announcement, error) {
	query := `
		SELECT id, title, content, type, target_audience, is_active, is_pinned, expires_at, created_at
		FROM announcements
		WHERE is_active AND (expires_at IS NULL OR expires_at > $1)
		ORDER BY is_pinned DESC, created_at DESC
		LIMIT $2
	`

	rows, err := r.Query(ctx, query, now, limit)
	if err != nil {
		return nil, fmt.Errorf("list announcements: %w", err)
	}
	defer rows.Close()

	var items []*model.Announcement
	for rows.Next() {
		var a model.Announcement
		err := rows.Scan(
			&a.ID,
			&a.Title,
			&a.Content,
			&a.Type,
			&a.Audience,
			&a.IsActive,
			&a.IsPinned,
			&a.ExpiresAt,
			&a.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan announcement: %w", err)
		}
		items = append(items, &a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate announcements: %w", err)
	}
	return items, nil
}
