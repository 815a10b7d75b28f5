package repository

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/artacademy/internal/model"
	"github.com/Freeeeeet/artacademy/internal/repository/base"
	"github.com/jackc/pgx/v5/pgxpool"
)

type MaterialRepository struct {
	*base.Repository
}

func NewMaterialRepository(pool *pgxpool.Pool) *MaterialRepository {
	return &MaterialRepository{Repository: base.NewRepository(pool)}
}

// Create добавляет материал к курсу
func (r *MaterialRepository) Create(ctx context.Context, m *model.CourseMaterial) error {
	query := `
		INSERT INTO course_materials (id, course_id, session_id, kind, title, url)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`

	err := r.QueryRow(ctx, query,
		m.ID,
		m.CourseID,
		m.SessionID,
		m.Kind,
		m.Title,
		m.URL,
	).Scan(&m.CreatedAt)
	if err != nil {
		return fmt.Errorf("create material: %w", err)
	}

	return nil
}

// ListByCourse материалы курса, новые первыми
func (r *MaterialRepository) ListByCourse(ctx context.Context, courseID string) ([]*model.CourseMaterial, error) {
	query := `
		SELECT id, course_id, session_id, kind, title, url, created_at
		FROM course_materials
		WHERE course_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.Query(ctx, query, courseID)
	if err != nil {
		return nil, fmt.Errorf("list materials: %w", err)
	}
	defer rows.Close()

	var items []*model.CourseMaterial
	for rows.Next() {
		var m model.CourseMaterial
		if err := rows.Scan(&m.ID, &m.CourseID, &m.SessionID, &m.Kind, &m.Title, &m.URL, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan material: %w", err)
		}
		items = append(items, &m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate materials: %w", err)
	}
	return items, nil
}
