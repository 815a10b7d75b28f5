package service

import (
	"context"
	"time"

	"github.com/Freeeeeet/artacademy/internal/model"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PaymentEvent подтверждение оплаты от доверенного серверного callback
type PaymentEvent struct {
	EnrollmentID string              `json:"enrollment_id"`
	Status       model.PaymentStatus `json:"status"`
	ExpiresAt    *time.Time          `json:"expires_at"`
}

type EnrollmentService struct {
	enrollments EnrollmentStore
	courses     CourseStore
	logger      *zap.Logger
}

func NewEnrollmentService(enrollments EnrollmentStore, courses CourseStore, logger *zap.Logger) *EnrollmentService {
	return &EnrollmentService{
		enrollments: enrollments,
		courses:     courses,
		logger:      logger,
	}
}

// Enroll создаёт заявку на курс. Повторный вызов возвращает существующую запись.
// Бесплатный курс открывается сразу.
func (s *EnrollmentService) Enroll(ctx context.Context, p *model.Principal, courseID string) (*model.CourseEnrollment, error) {
	if p.Anonymous() {
		return nil, model.ErrNotAuthenticated
	}

	course, err := s.courses.GetByID(ctx, courseID)
	if err != nil {
		s.logger.Error("Failed to load course for enrollment", zap.String("course_id", courseID), zap.Error(err))
		return nil, model.ErrStoreUnavailable
	}
	if course == nil || course.Status != model.CourseStatusActive {
		return nil, model.ErrNotFound
	}

	enrollment, created, err := s.enrollments.CreateIfAbsent(ctx, &model.CourseEnrollment{
		ID:            uuid.NewString(),
		UserID:        p.UserID,
		CourseID:      course.ID,
		PaymentStatus: model.PaymentStatusPending,
	})
	if err != nil {
		s.logger.Error("Failed to create enrollment",
			zap.String("user_id", p.UserID),
			zap.String("course_id", course.ID),
			zap.Error(err),
		)
		return nil, model.ErrStoreUnavailable
	}

	if created {
		s.logger.Info("Enrollment created",
			zap.String("enrollment_id", enrollment.ID),
			zap.String("user_id", p.UserID),
			zap.String("course_id", course.ID),
		)
	}

	if course.IsFree() && enrollment.PaymentStatus != model.PaymentStatusPaid {
		paid, err := s.enrollments.ConfirmPaid(ctx, enrollment.ID, nil)
		if err != nil {
			s.logger.Error("Failed to grant free course", zap.String("enrollment_id", enrollment.ID), zap.Error(err))
			return nil, model.ErrStoreUnavailable
		}
		if paid != nil {
			enrollment = paid
		}
	}

	return enrollment, nil
}

// ConfirmPayment применяет результат оплаты. Вызывается только из webhook.
func (s *EnrollmentService) ConfirmPayment(ctx context.Context, ev PaymentEvent) (*model.CourseEnrollment, error) {
	switch ev.Status {
	case model.PaymentStatusPaid:
		paid, err := s.enrollments.ConfirmPaid(ctx, ev.EnrollmentID, ev.ExpiresAt)
		if err != nil {
			s.logger.Error("Failed to confirm payment", zap.String("enrollment_id", ev.EnrollmentID), zap.Error(err))
			return nil, model.ErrStoreUnavailable
		}
		if paid != nil {
			s.logger.Info("Payment confirmed", zap.String("enrollment_id", paid.ID))
			return paid, nil
		}

	case model.PaymentStatusFailed:
		if _, err := s.enrollments.MarkFailed(ctx, ev.EnrollmentID); err != nil {
			s.logger.Error("Failed to record payment failure", zap.String("enrollment_id", ev.EnrollmentID), zap.Error(err))
			return nil, model.ErrStoreUnavailable
		}
		s.logger.Info("Payment failed", zap.String("enrollment_id", ev.EnrollmentID))

	default:
		return nil, model.ErrInvalidPaymentStatus
	}

	// Повторный callback или уже оплаченная запись - отдаём текущее состояние
	current, err := s.enrollments.GetByID(ctx, ev.EnrollmentID)
	if err != nil {
		s.logger.Error("Failed to reload enrollment", zap.String("enrollment_id", ev.EnrollmentID), zap.Error(err))
		return nil, model.ErrStoreUnavailable
	}
	if current == nil {
		return nil, model.ErrNotFound
	}
	return current, nil
}

// RevokeAccess закрывает доступ, статус оплаты не меняется
func (s *EnrollmentService) RevokeAccess(ctx context.Context, enrollmentID string) error {
	ok, err := s.enrollments.RevokeAccess(ctx, enrollmentID)
	if err != nil {
		s.logger.Error("Failed to revoke access", zap.String("enrollment_id", enrollmentID), zap.Error(err))
		return model.ErrStoreUnavailable
	}

	if !ok {
		existing, err := s.enrollments.GetByID(ctx, enrollmentID)
		if err != nil {
			s.logger.Error("Failed to load enrollment", zap.String("enrollment_id", enrollmentID), zap.Error(err))
			return model.ErrStoreUnavailable
		}
		if existing == nil {
			return model.ErrNotFound
		}
		return nil
	}

	s.logger.Info("Enrollment access revoked", zap.String("enrollment_id", enrollmentID))
	return nil
}
