package service

import (
	"context"
	"fmt"
	"time"

	"github.com/Freeeeeet/artacademy/internal/model"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Mirror дублирует объявление во внешний канал (например, Telegram)
type Mirror interface {
	Mirror(ctx context.Context, a *model.Announcement) error
}

type AnnouncementService struct {
	store   AnnouncementStore
	mirrors []Mirror
	now     Clock
	logger  *zap.Logger
}

func NewAnnouncementService(store AnnouncementStore, now Clock, logger *zap.Logger, mirrors ...Mirror) *AnnouncementService {
	if now == nil {
		now = time.Now
	}
	return &AnnouncementService{
		store:   store,
		mirrors: mirrors,
		now:     now,
		logger:  logger,
	}
}

// Publish сохраняет объявление и рассылает его по зеркалам.
// Ошибки зеркал только логируются.
func (s *AnnouncementService) Publish(ctx context.Context, a *model.Announcement) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.Type == "" {
		a.Type = model.AnnouncementTypeInfo
	}
	if a.Audience == "" {
		a.Audience = model.AudienceAll
	}

	if err := s.store.Create(ctx, a); err != nil {
		return fmt.Errorf("save announcement: %w", err)
	}

	for _, m := range s.mirrors {
		if err := m.Mirror(ctx, a); err != nil {
			s.logger.Warn("Failed to mirror announcement",
				zap.String("announcement_id", a.ID),
				zap.Error(err),
			)
		}
	}

	s.logger.Info("Announcement published",
		zap.String("announcement_id", a.ID),
		zap.String("title", a.Title),
	)

	return nil
}

// ListActive активные объявления, при ошибке хранилища - пустой список
func (s *AnnouncementService) ListActive(ctx context.Context, limit int) []*model.Announcement {
	items, err := s.store.ListActive(ctx, s.now(), limit)
	if err != nil {
		s.logger.Error("Failed to list announcements", zap.Error(err))
		return []*model.Announcement{}
	}
	if items == nil {
		return []*model.Announcement{}
	}
	return items
}
