package repository

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/artacademy/internal/model"
	"github.com/Freeeeeet/artacademy/internal/repository/base"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const courseColumns = `id, title, description, price, duration, level, status, instructor_name,
	is_featured, enrolled_count, created_at, updated_at`

type CourseRepository struct {
	*base.Repository
}

func NewCourseRepository(pool *pgxpool.Pool) *CourseRepository {
	return &CourseRepository{Repository: base.NewRepository(pool)}
}

func scanCourse(row pgx.Row) (*model.Course, error) {
	var c model.Course
	err := row.Scan(
		&c.ID,
		&c.Title,
		&c.Description,
		&c.Price,
		&c.Duration,
		&c.Level,
		&c.Status,
		&c.InstructorName,
		&c.IsFeatured,
		&c.EnrolledCount,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Create создаёт курс
func (r *CourseRepository) Create(ctx context.Context, c *model.Course) error {
	query := `
		INSERT INTO courses (id, title, description, price, duration, level, status, instructor_name, is_featured)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING enrolled_count, created_at, updated_at
	`

	err := r.QueryRow(ctx, query,
		c.ID,
		c.Title,
		c.Description,
		c.Price,
		c.Duration,
		c.Level,
		c.Status,
		c.InstructorName,
		c.IsFeatured,
	).Scan(&c.EnrolledCount, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create course: %w", err)
	}

	return nil
}

// GetByID получает курс по ID
func (r *CourseRepository) GetByID(ctx context.Context, id string) (*model.Course, error) {
	query := `SELECT ` + courseColumns + ` FROM courses WHERE id = $1`

	c, err := scanCourse(r.QueryRow(ctx, query, id))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get course by id: %w", err)
	}

	return c, nil
}

// ListActive получает активные курсы, избранные первыми
func (r *CourseRepository) ListActive(ctx context.Context) ([]*model.Course, error) {
	query := `
		SELECT ` + courseColumns + `
		FROM courses
		WHERE status = 'active'
		ORDER BY is_featured DESC, created_at DESC
	`

	rows, err := r.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list active courses: %w", err)
	}
	defer rows.Close()

	var courses []*model.Course
	for rows.Next() {
		c, err := scanCourse(rows)
		if err != nil {
			return nil, fmt.Errorf("scan course: %w", err)
		}
		courses = append(courses, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate courses: %w", err)
	}
	return courses, nil
}

// incrementEnrolled увеличивает счётчик студентов курса
func incrementEnrolled(ctx context.Context, q base.Querier, courseID string) error {
	query := `
		UPDATE courses
		SET enrolled_count = enrolled_count + 1, updated_at = NOW()
		WHERE id = $1
	`

	if _, err := q.Exec(ctx, query, courseID); err != nil {
		return fmt.Errorf("increment enrolled count: %w", err)
	}
	return nil
}
