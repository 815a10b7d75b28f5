package notifier

import (
	"context"
	"fmt"
	"strings"

	"github.com/Freeeeeet/artacademy/internal/model"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// messageSender часть API бота, нужная для рассылки
type messageSender interface {
	SendMessage(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error)
}

// TelegramMirror дублирует объявления в Telegram-канал академии
type TelegramMirror struct {
	sender messageSender
	chatID any
	logger *zap.Logger
}

// NewTelegramMirror chatID - числовой id чата или @username канала
func NewTelegramMirror(sender messageSender, chatID any, logger *zap.Logger) *TelegramMirror {
	return &TelegramMirror{
		sender: sender,
		chatID: chatID,
		logger: logger,
	}
}

func (m *TelegramMirror) Mirror(ctx context.Context, a *model.Announcement) error {
	_, err := m.sender.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: m.chatID,
		Text:   FormatAnnouncement(a),
	})
	if err != nil {
		return fmt.Errorf("send telegram message: %w", err)
	}

	m.logger.Debug("Announcement mirrored to telegram", zap.String("announcement_id", a.ID))
	return nil
}

// FormatAnnouncement текст сообщения для канала
func FormatAnnouncement(a *model.Announcement) string {
	icon := "ℹ️"
	switch a.Type {
	case model.AnnouncementTypeWarning:
		icon = "⚠️"
	case model.AnnouncementTypeSuccess:
		icon = "✅"
	}

	var sb strings.Builder
	sb.WriteString(icon)
	sb.WriteString(" ")
	sb.WriteString(a.Title)
	if a.Content != "" {
		sb.WriteString("\n\n")
		sb.WriteString(a.Content)
	}
	return sb.String()
}
