package controller

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Freeeeeet/artacademy/internal/model"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// SessionLister то, что боту нужно от менеджера занятий
type SessionLister interface {
	ListLive(ctx context.Context) []*model.LiveSession
	ListUpcoming(ctx context.Context) []*model.LiveSession
}

// AnnouncementLister лента объявлений
type AnnouncementLister interface {
	ListActive(ctx context.Context, limit int) []*model.Announcement
}

// BotController Telegram-бот академии: расписание и объявления в чате
type BotController struct {
	bot           *bot.Bot
	sessions      SessionLister
	announcements AnnouncementLister
	joinBaseURL   string
	logger        *zap.Logger
}

func NewBotController(
	botInstance *bot.Bot,
	sessions SessionLister,
	announcements AnnouncementLister,
	joinBaseURL string,
	logger *zap.Logger,
) *BotController {
	return &BotController{
		bot:           botInstance,
		sessions:      sessions,
		announcements: announcements,
		joinBaseURL:   strings.TrimRight(joinBaseURL, "/"),
		logger:        logger,
	}
}

// RegisterHandlers регистрирует все обработчики команд
func (c *BotController) RegisterHandlers(ctx context.Context) error {
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/start", bot.MatchTypeExact, c.HandleStart)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/live", bot.MatchTypeExact, c.HandleLive)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/upcoming", bot.MatchTypeExact, c.HandleUpcoming)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/news", bot.MatchTypeExact, c.HandleNews)

	return c.setCommands(ctx)
}

// setCommands устанавливает список команд в меню бота
func (c *BotController) setCommands(ctx context.Context) error {
	commands := []models.BotCommand{
		{Command: "start", Description: "🎨 Start"},
		{Command: "live", Description: "🔴 Live classes right now"},
		{Command: "upcoming", Description: "🗓 Upcoming classes"},
		{Command: "news", Description: "📢 Academy announcements"},
	}

	_, err := c.bot.SetMyCommands(ctx, &bot.SetMyCommandsParams{
		Commands: commands,
	})
	if err != nil {
		c.logger.Error("Failed to set bot commands", zap.Error(err))
		return err
	}

	c.logger.Info("Bot commands menu set")
	return nil
}

// Start запускает бота, блокируется до отмены ctx
func (c *BotController) Start(ctx context.Context) {
	c.logger.Info("Starting bot...")
	c.bot.Start(ctx)
}

func (c *BotController) HandleStart(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	c.send(ctx, b, update.Message.Chat.ID,
		"👋 Welcome to the art academy!\n\n"+
			"/live - classes that are live right now\n"+
			"/upcoming - the schedule\n"+
			"/news - announcements")
}

func (c *BotController) HandleLive(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	c.send(ctx, b, update.Message.Chat.ID, FormatLive(c.sessions.ListLive(ctx), c.joinBaseURL))
}

func (c *BotController) HandleUpcoming(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	c.send(ctx, b, update.Message.Chat.ID, FormatUpcoming(c.sessions.ListUpcoming(ctx), time.Now()))
}

func (c *BotController) HandleNews(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	items := c.announcements.ListActive(ctx, 5)
	if len(items) == 0 {
		c.send(ctx, b, update.Message.Chat.ID, "📭 No announcements yet.")
		return
	}

	var sb strings.Builder
	for i, a := range items {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		if a.IsPinned {
			sb.WriteString("📌 ")
		}
		sb.WriteString(a.Title)
		if a.Content != "" {
			sb.WriteString("\n")
			sb.WriteString(a.Content)
		}
	}
	c.send(ctx, b, update.Message.Chat.ID, sb.String())
}

// send отправляет сообщение и логирует если не удалось
func (c *BotController) send(ctx context.Context, b *bot.Bot, chatID int64, text string) {
	_, err := b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   text,
	})
	if err != nil {
		c.logger.Error("Failed to send message",
			zap.Int64("chat_id", chatID),
			zap.Error(err),
		)
	}
}

// FormatLive список идущих занятий со ссылками на вход
func FormatLive(sessions []*model.LiveSession, joinBaseURL string) string {
	if len(sessions) == 0 {
		return "😴 No live classes right now."
	}

	var sb strings.Builder
	sb.WriteString("🔴 Live now:\n")
	for _, s := range sessions {
		fmt.Fprintf(&sb, "\n• %s (until %s)", s.Title, s.ScheduledEnd.Format("15:04"))
		if joinBaseURL != "" {
			fmt.Fprintf(&sb, "\n  %s/join?session_id=%s", joinBaseURL, s.ID)
		}
	}
	return sb.String()
}

// FormatUpcoming расписание с пометкой идущих занятий
func FormatUpcoming(sessions []*model.LiveSession, now time.Time) string {
	if len(sessions) == 0 {
		return "🗓 Nothing scheduled yet."
	}

	var sb strings.Builder
	sb.WriteString("🗓 Schedule:\n")
	for _, s := range sessions {
		mark := "▫️"
		if s.IsLive(now) {
			mark = "🔴"
		}
		fmt.Fprintf(&sb, "\n%s %s - %s %s",
			mark,
			s.ScheduledStart.Format("02.01 15:04"),
			s.ScheduledEnd.Format("15:04"),
			s.Title,
		)
	}
	return sb.String()
}
