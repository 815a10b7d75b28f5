package service

import (
	"context"
	"time"

	"github.com/Freeeeeet/artacademy/internal/model"
	"go.uber.org/zap"
)

// AccessResult решение о доступе к платным материалам курса
type AccessResult struct {
	HasAccess  bool                    `json:"has_access"`
	Enrollment *model.CourseEnrollment `json:"enrollment"`
}

// AccessService решает, может ли пользователь видеть платный контент курса
type AccessService struct {
	enrollments EnrollmentStore
	now         Clock
	logger      *zap.Logger
}

func NewAccessService(enrollments EnrollmentStore, now Clock, logger *zap.Logger) *AccessService {
	if now == nil {
		now = time.Now
	}
	return &AccessService{
		enrollments: enrollments,
		now:         now,
		logger:      logger,
	}
}

// EvaluateAccess только читает данные. Любая ошибка хранилища означает отказ.
func (s *AccessService) EvaluateAccess(ctx context.Context, p *model.Principal, courseID string) AccessResult {
	if p.Anonymous() {
		return AccessResult{}
	}

	if p.Admin() {
		// Запись нужна только для отображения, её отсутствие доступ не меняет
		enrollment, err := s.enrollments.GetByUserAndCourse(ctx, p.UserID, courseID)
		if err != nil {
			s.logger.Warn("Failed to load admin enrollment",
				zap.String("user_id", p.UserID),
				zap.String("course_id", courseID),
				zap.Error(err),
			)
			enrollment = nil
		}
		return AccessResult{HasAccess: true, Enrollment: enrollment}
	}

	enrollment, err := s.enrollments.GetByUserAndCourse(ctx, p.UserID, courseID)
	if err != nil {
		s.logger.Error("Failed to load enrollment, denying access",
			zap.String("user_id", p.UserID),
			zap.String("course_id", courseID),
			zap.Error(err),
		)
		return AccessResult{}
	}

	if enrollment == nil {
		return AccessResult{}
	}

	return AccessResult{
		HasAccess:  enrollment.GrantsAccess(s.now()),
		Enrollment: enrollment,
	}
}
