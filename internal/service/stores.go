package service

import (
	"context"
	"time"

	"github.com/Freeeeeet/artacademy/internal/model"
)

// Clock источник текущего времени, в тестах подменяется
type Clock func() time.Time

type CourseStore interface {
	Create(ctx context.Context, c *model.Course) error
	GetByID(ctx context.Context, id string) (*model.Course, error)
	ListActive(ctx context.Context) ([]*model.Course, error)
}

type EnrollmentStore interface {
	GetByUserAndCourse(ctx context.Context, userID, courseID string) (*model.CourseEnrollment, error)
	GetByID(ctx context.Context, id string) (*model.CourseEnrollment, error)
	CreateIfAbsent(ctx context.Context, e *model.CourseEnrollment) (*model.CourseEnrollment, bool, error)
	ConfirmPaid(ctx context.Context, id string, expiresAt *time.Time) (*model.CourseEnrollment, error)
	MarkFailed(ctx context.Context, id string) (bool, error)
	RevokeAccess(ctx context.Context, id string) (bool, error)
}

type SessionStore interface {
	Create(ctx context.Context, s *model.LiveSession) error
	GetByID(ctx context.Context, id string) (*model.LiveSession, error)
	Start(ctx context.Context, id, channel string, now time.Time) (bool, error)
	EndByChannel(ctx context.Context, channel string, now time.Time) ([]*model.LiveSession, error)
	ListExpired(ctx context.Context, now time.Time) ([]*model.LiveSession, error)
	CloseExpired(ctx context.Context, id string, now time.Time) (bool, error)
	ListLive(ctx context.Context, now time.Time) ([]*model.LiveSession, error)
	ListUpcoming(ctx context.Context, now time.Time, limit int) ([]*model.LiveSession, error)
}

type AnnouncementStore interface {
	Create(ctx context.Context, a *model.Announcement) error
	ListActive(ctx context.Context, now time.Time, limit int) ([]*model.Announcement, error)
}

type MaterialStore interface {
	Create(ctx context.Context, m *model.CourseMaterial) error
	ListByCourse(ctx context.Context, courseID string) ([]*model.CourseMaterial, error)
}
