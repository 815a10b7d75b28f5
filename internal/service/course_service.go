package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/Freeeeeet/artacademy/internal/model"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AccessEvaluator проверка доступа к платному контенту
type AccessEvaluator interface {
	EvaluateAccess(ctx context.Context, p *model.Principal, courseID string) AccessResult
}

// CreateCourseInput поля нового курса
type CreateCourseInput struct {
	Title          string            `json:"title"`
	Description    string            `json:"description"`
	Price          int64             `json:"price"`
	Duration       string            `json:"duration"`
	Level          model.CourseLevel `json:"level"`
	InstructorName string            `json:"instructor_name"`
	IsFeatured     bool              `json:"is_featured"`
}

// AddMaterialInput новый материал курса
type AddMaterialInput struct {
	SessionID *string            `json:"session_id"`
	Kind      model.MaterialKind `json:"kind"`
	Title     string             `json:"title"`
	URL       string             `json:"url"`
}

type CourseService struct {
	courses   CourseStore
	materials MaterialStore
	access    AccessEvaluator
	logger    *zap.Logger
}

func NewCourseService(courses CourseStore, materials MaterialStore, access AccessEvaluator, logger *zap.Logger) *CourseService {
	return &CourseService{
		courses:   courses,
		materials: materials,
		access:    access,
		logger:    logger,
	}
}

// ListCourses активный каталог, при ошибке - пустой список
func (s *CourseService) ListCourses(ctx context.Context) []*model.Course {
	courses, err := s.courses.ListActive(ctx)
	if err != nil {
		s.logger.Error("Failed to list courses", zap.Error(err))
		return []*model.Course{}
	}
	if courses == nil {
		return []*model.Course{}
	}
	return courses
}

// GetCourse для прямых ссылок: отсутствие курса - ErrNotFound
func (s *CourseService) GetCourse(ctx context.Context, id string) (*model.Course, error) {
	course, err := s.courses.GetByID(ctx, id)
	if err != nil {
		s.logger.Error("Failed to get course", zap.String("course_id", id), zap.Error(err))
		return nil, model.ErrStoreUnavailable
	}
	if course == nil {
		return nil, model.ErrNotFound
	}
	return course, nil
}

// CreateCourse создаёт курс (админ)
func (s *CourseService) CreateCourse(ctx context.Context, in CreateCourseInput) (*model.Course, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", model.ErrInvalidInput)
	}
	if in.Price < 0 {
		return nil, fmt.Errorf("%w: price must not be negative", model.ErrInvalidInput)
	}
	if in.Level == "" {
		in.Level = model.CourseLevelBeginner
	}
	if !model.IsValidLevel(in.Level) {
		return nil, fmt.Errorf("%w: unknown level %q", model.ErrInvalidInput, in.Level)
	}

	course := &model.Course{
		ID:             uuid.NewString(),
		Title:          title,
		Description:    in.Description,
		Price:          in.Price,
		Duration:       in.Duration,
		Level:          in.Level,
		Status:         model.CourseStatusActive,
		InstructorName: in.InstructorName,
		IsFeatured:     in.IsFeatured,
	}

	if err := s.courses.Create(ctx, course); err != nil {
		s.logger.Error("Failed to create course", zap.Error(err))
		return nil, model.ErrStoreUnavailable
	}

	s.logger.Info("Course created", zap.String("course_id", course.ID), zap.String("title", course.Title))
	return course, nil
}

// AddMaterial добавляет запись занятия или файл (админ)
func (s *CourseService) AddMaterial(ctx context.Context, courseID string, in AddMaterialInput) (*model.CourseMaterial, error) {
	if in.Kind != model.MaterialKindRecording && in.Kind != model.MaterialKindFile {
		return nil, fmt.Errorf("%w: unknown material kind %q", model.ErrInvalidInput, in.Kind)
	}
	if strings.TrimSpace(in.Title) == "" || strings.TrimSpace(in.URL) == "" {
		return nil, fmt.Errorf("%w: title and url are required", model.ErrInvalidInput)
	}

	if _, err := s.GetCourse(ctx, courseID); err != nil {
		return nil, err
	}

	material := &model.CourseMaterial{
		ID:        uuid.NewString(),
		CourseID:  courseID,
		SessionID: in.SessionID,
		Kind:      in.Kind,
		Title:     strings.TrimSpace(in.Title),
		URL:       strings.TrimSpace(in.URL),
	}

	if err := s.materials.Create(ctx, material); err != nil {
		s.logger.Error("Failed to create material", zap.String("course_id", courseID), zap.Error(err))
		return nil, model.ErrStoreUnavailable
	}

	return material, nil
}

// ListMaterials платные материалы курса. Без доступа - ErrNotAuthenticated или ErrForbidden.
func (s *CourseService) ListMaterials(ctx context.Context, p *model.Principal, courseID string) ([]*model.CourseMaterial, error) {
	if p.Anonymous() {
		return nil, model.ErrNotAuthenticated
	}

	if !s.access.EvaluateAccess(ctx, p, courseID).HasAccess {
		return nil, model.ErrForbidden
	}

	materials, err := s.materials.ListByCourse(ctx, courseID)
	if err != nil {
		s.logger.Error("Failed to list materials", zap.String("course_id", courseID), zap.Error(err))
		return []*model.CourseMaterial{}, nil
	}
	if materials == nil {
		return []*model.CourseMaterial{}, nil
	}
	return materials, nil
}
