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

const enrollmentColumns = `id, user_id, course_id, payment_status, access_granted, enrolled_at, expires_at`

type EnrollmentRepository struct {
	*base.Repository
}

func NewEnrollmentRepository(pool *pgxpool.Pool) *EnrollmentRepository {
	return &EnrollmentRepository{Repository: base.NewRepository(pool)}
}

func scanEnrollment(row pgx.Row) (*model.CourseEnrollment, error) {
	var e model.CourseEnrollment
	err := row.Scan(
		&e.ID,
		&e.UserID,
		&e.CourseID,
		&e.PaymentStatus,
		&e.AccessGranted,
		&e.EnrolledAt,
		&e.ExpiresAt,
	)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// GetByUserAndCourse получает запись пользователя на курс
func (r *EnrollmentRepository) GetByUserAndCourse(ctx context.Context, userID, courseID string) (*model.CourseEnrollment, error) {
	query := `
		SELECT ` + enrollmentColumns + `
		FROM course_enrollments
		WHERE user_id = $1 AND course_id = $2
		ORDER BY enrolled_at DESC
		LIMIT 1
	`

	e, err := scanEnrollment(r.QueryRow(ctx, query, userID, courseID))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get enrollment: %w", err)
	}

	return e, nil
}

// GetByID получает запись по ID
func (r *EnrollmentRepository) GetByID(ctx context.Context, id string) (*model.CourseEnrollment, error) {
	query := `SELECT ` + enrollmentColumns + ` FROM course_enrollments WHERE id = $1`

	e, err := scanEnrollment(r.QueryRow(ctx, query, id))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get enrollment by id: %w", err)
	}

	return e, nil
}

// CreateIfAbsent создаёт запись, если пары (user, course) ещё нет.
// Возвращает актуальную запись и признак того, что она создана этим вызовом.
func (r *EnrollmentRepository) CreateIfAbsent(ctx context.Context, e *model.CourseEnrollment) (*model.CourseEnrollment, bool, error) {
	query := `
		INSERT INTO course_enrollments (id, user_id, course_id, payment_status, access_granted, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id, course_id) DO NOTHING
		RETURNING ` + enrollmentColumns

	created, err := scanEnrollment(r.QueryRow(ctx, query,
		e.ID,
		e.UserID,
		e.CourseID,
		e.PaymentStatus,
		e.AccessGranted,
		e.ExpiresAt,
	))
	if err == nil {
		return created, true, nil
	}
	if !base.IsNotFound(err) {
		return nil, false, fmt.Errorf("create enrollment: %w", err)
	}

	existing, err := r.GetByUserAndCourse(ctx, e.UserID, e.CourseID)
	if err != nil {
		return nil, false, err
	}
	if existing == nil {
		return nil, false, fmt.Errorf("create enrollment: conflicting row disappeared")
	}
	return existing, false, nil
}

// ConfirmPaid в одной транзакции переводит запись в paid, открывает доступ и
// увеличивает счётчик курса. nil - запись не найдена или уже оплачена.
func (r *EnrollmentRepository) ConfirmPaid(ctx context.Context, id string, expiresAt *time.Time) (*model.CourseEnrollment, error) {
	var paid *model.CourseEnrollment

	err := r.InTx(ctx, func(q base.Querier) error {
		e, err := markPaid(ctx, q, id, expiresAt)
		if err != nil {
			return err
		}
		if e == nil {
			return nil
		}

		if err := incrementEnrolled(ctx, q, e.CourseID); err != nil {
			return err
		}
		paid = e
		return nil
	})
	if err != nil {
		return nil, err
	}

	return paid, nil
}

func markPaid(ctx context.Context, q base.Querier, id string, expiresAt *time.Time) (*model.CourseEnrollment, error) {
	query := `
		UPDATE course_enrollments
		SET payment_status = 'paid', access_granted = TRUE, expires_at = $2
		WHERE id = $1 AND payment_status <> 'paid'
		RETURNING ` + enrollmentColumns

	e, err := scanEnrollment(q.QueryRow(ctx, query, id, expiresAt))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("mark enrollment paid: %w", err)
	}
	return e, nil
}

// MarkFailed фиксирует неуспешную оплату, оплаченные записи не трогает
func (r *EnrollmentRepository) MarkFailed(ctx context.Context, id string) (bool, error) {
	query := `
		UPDATE course_enrollments
		SET payment_status = 'failed'
		WHERE id = $1 AND payment_status <> 'paid'
	`

	affected, err := r.ExecAffected(ctx, query, id)
	if err != nil {
		return false, fmt.Errorf("mark enrollment failed: %w", err)
	}
	return affected > 0, nil
}

// RevokeAccess снимает флаг доступа, статус оплаты остаётся
func (r *EnrollmentRepository) RevokeAccess(ctx context.Context, id string) (bool, error) {
	query := `
		UPDATE course_enrollments
		SET access_granted = FALSE
		WHERE id = $1 AND access_granted
	`

	affected, err := r.ExecAffected(ctx, query, id)
	if err != nil {
		return false, fmt.Errorf("revoke enrollment access: %w", err)
	}
	return affected > 0, nil
}
