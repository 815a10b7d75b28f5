package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Freeeeeet/artacademy/internal/model"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	identityTokenLength = 6
	channelTokenLength  = 6
	upcomingLimit       = 50

	teacherLeftNotice = "The live class has ended for everyone."
)

// Announcer приёмник объявлений о завершении занятий
type Announcer interface {
	Publish(ctx context.Context, a *model.Announcement) error
}

// JoinRequest запрос на вход в комнату: либо явный канал (deep link), либо ID занятия
type JoinRequest struct {
	Channel          *string `json:"channel"`
	SessionID        string  `json:"session_id"`
	WantsTeacherRole bool    `json:"teacher"`
}

// JoinDirective что передаётся провайдеру видеосвязи
type JoinDirective struct {
	Channel  string     `json:"channel"`
	Role     model.Role `json:"role"`
	Identity string     `json:"identity"`
}

// LeaveOutcome результат выхода учителя. Пустой Ended - ничего не закрыто.
type LeaveOutcome struct {
	Ended  []*model.LiveSession `json:"ended"`
	Notice string               `json:"notice,omitempty"`
}

// CreateSessionInput параметры нового занятия
type CreateSessionInput struct {
	CourseID       string    `json:"course_id"`
	Title          string    `json:"title"`
	ScheduledStart time.Time `json:"scheduled_start"`
	ScheduledEnd   time.Time `json:"scheduled_end"`
}

// SessionService управляет жизненным циклом живых занятий
type SessionService struct {
	sessions  SessionStore
	courses   CourseStore
	announcer Announcer
	now       Clock
	logger    *zap.Logger
}

func NewSessionService(
	sessions SessionStore,
	courses CourseStore,
	announcer Announcer,
	now Clock,
	logger *zap.Logger,
) *SessionService {
	if now == nil {
		now = time.Now
	}
	return &SessionService{
		sessions:  sessions,
		courses:   courses,
		announcer: announcer,
		now:       now,
		logger:    logger,
	}
}

// ============ Роли и идентичность ============

// ResolveRole: явный флаг учителя, затем админ, иначе студент
func ResolveRole(p *model.Principal, wantsTeacher bool) model.Role {
	if wantsTeacher || p.Admin() {
		return model.RoleTeacher
	}
	return model.RoleStudent
}

// DeriveIdentity "{role}-{первый сегмент id}" или "{role}-{случайный токен}" для гостя
func DeriveIdentity(p *model.Principal, role model.Role) (string, error) {
	token := p.ShortUserToken()
	if token == "" {
		random, err := randomToken(identityTokenLength)
		if err != nil {
			return "", fmt.Errorf("generate guest token: %w", err)
		}
		token = random
	}
	return fmt.Sprintf("%s-%s", role, token), nil
}

// ============ Вход в комнату ============

// ResolveJoin определяет канал, роль и идентичность участника.
// Возвращает ErrInvalidJoinRequest или ErrNotJoinable, ошибки хранилища не пробрасываются.
func (s *SessionService) ResolveJoin(ctx context.Context, req JoinRequest, p *model.Principal) (*JoinDirective, error) {
	channel, err := s.resolveChannel(ctx, req)
	if err != nil {
		return nil, err
	}

	role := ResolveRole(p, req.WantsTeacherRole)

	identity, err := DeriveIdentity(p, role)
	if err != nil {
		s.logger.Error("Failed to derive identity", zap.Error(err))
		return nil, model.ErrNotJoinable
	}

	s.logger.Info("Join resolved",
		zap.String("channel", channel),
		zap.String("role", string(role)),
		zap.String("identity", identity),
	)

	return &JoinDirective{
		Channel:  channel,
		Role:     role,
		Identity: identity,
	}, nil
}

func (s *SessionService) resolveChannel(ctx context.Context, req JoinRequest) (string, error) {
	// Явный канал из deep link
	if req.Channel != nil {
		channel := strings.TrimSpace(*req.Channel)
		if channel == "" {
			return "", model.ErrInvalidJoinRequest
		}
		return channel, nil
	}

	sessionID := strings.TrimSpace(req.SessionID)
	if sessionID == "" {
		return "", model.ErrInvalidJoinRequest
	}

	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		s.logger.Error("Failed to load session for join",
			zap.String("session_id", sessionID),
			zap.Error(err),
		)
		return "", model.ErrNotJoinable
	}

	if session == nil || !session.IsLive(s.now()) {
		return "", model.ErrNotJoinable
	}

	return session.Channel(), nil
}

// ============ Старт занятия ============

// StartSession открывает канал занятия. Пустой channel - токен генерируется.
// Повторный старт без явного канала возвращает уже открытую сессию.
func (s *SessionService) StartSession(ctx context.Context, sessionID, channel string) (*model.LiveSession, error) {
	channel = strings.TrimSpace(channel)

	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		s.logger.Error("Failed to load session for start",
			zap.String("session_id", sessionID),
			zap.Error(err),
		)
		return nil, model.ErrStoreUnavailable
	}

	if session == nil {
		return nil, model.ErrNotFound
	}

	now := s.now()

	// Завершённое занятие не переоткрывается, даже если его окно ещё впереди
	if session.EndedAt != nil {
		return nil, model.ErrSessionEnded
	}

	if session.ActiveChannel != nil {
		return s.alreadyStarted(session, channel)
	}

	if !now.Before(session.ScheduledEnd) {
		return nil, model.ErrSessionEnded
	}

	requested := channel
	if channel == "" {
		channel, err = generateChannel(session.ID)
		if err != nil {
			s.logger.Error("Failed to generate channel", zap.Error(err))
			return nil, model.ErrStoreUnavailable
		}
	}

	started, err := s.sessions.Start(ctx, session.ID, channel, now)
	if err != nil {
		s.logger.Error("Failed to start session",
			zap.String("session_id", session.ID),
			zap.Error(err),
		)
		return nil, model.ErrStoreUnavailable
	}

	if !started {
		// Проиграли гонку: перечитываем, кто победил
		current, err := s.sessions.GetByID(ctx, session.ID)
		if err != nil {
			s.logger.Error("Failed to reload session after start race",
				zap.String("session_id", session.ID),
				zap.Error(err),
			)
			return nil, model.ErrStoreUnavailable
		}
		if current == nil {
			return nil, model.ErrNotFound
		}
		if current.EndedAt == nil && current.ActiveChannel != nil {
			return s.alreadyStarted(current, requested)
		}
		return nil, model.ErrSessionEnded
	}

	session.ActiveChannel = &channel

	s.logger.Info("Live session started",
		zap.String("session_id", session.ID),
		zap.String("channel", channel),
	)

	return session, nil
}

func (s *SessionService) alreadyStarted(session *model.LiveSession, channel string) (*model.LiveSession, error) {
	if channel == "" || channel == session.Channel() {
		return session, nil
	}

	s.logger.Warn("Session already has a different active channel",
		zap.String("session_id", session.ID),
		zap.String("active_channel", session.Channel()),
		zap.String("requested_channel", channel),
	)
	return nil, model.ErrSessionAlreadyLive
}

func generateChannel(sessionID string) (string, error) {
	suffix, err := randomToken(channelTokenLength)
	if err != nil {
		return "", err
	}

	prefix := sessionID
	if i := strings.Index(prefix, "-"); i > 0 {
		prefix = prefix[:i]
	}
	return fmt.Sprintf("class-%s-%s", prefix, suffix), nil
}

// ============ Выход ============

// Leave выход участника: закрытие занятия только для роли учителя
func (s *SessionService) Leave(ctx context.Context, role model.Role, channel string) *LeaveOutcome {
	if role != model.RoleTeacher {
		return &LeaveOutcome{}
	}
	return s.OnTeacherLeave(ctx, channel)
}

// OnTeacherLeave закрывает занятия с этим каналом, сдвигает конец окна на now
// и публикует объявление. Нет такого канала - ничего не делает.
func (s *SessionService) OnTeacherLeave(ctx context.Context, channel string) *LeaveOutcome {
	channel = strings.TrimSpace(channel)
	if channel == "" {
		return &LeaveOutcome{}
	}

	ended, err := s.sessions.EndByChannel(ctx, channel, s.now())
	if err != nil {
		s.logger.Error("Failed to end session on teacher leave",
			zap.String("channel", channel),
			zap.Error(err),
		)
		return &LeaveOutcome{}
	}

	if len(ended) == 0 {
		s.logger.Debug("Teacher left channel without live session", zap.String("channel", channel))
		return &LeaveOutcome{}
	}

	for _, session := range ended {
		s.logger.Info("Live session ended by teacher",
			zap.String("session_id", session.ID),
			zap.String("channel", channel),
		)
		s.announce(ctx, session, &model.Announcement{
			Title:   "Live class ended",
			Content: fmt.Sprintf("The live class %q has ended.", session.Title),
		})
	}

	return &LeaveOutcome{Ended: ended, Notice: teacherLeftNotice}
}

// ============ Sweep ============

// SweepExpired закрывает занятия, окно которых прошло. Каждое обрабатывается
// отдельно, объявление публикуется только если закрытие затронуло строку.
func (s *SessionService) SweepExpired(ctx context.Context) int {
	now := s.now()

	expired, err := s.sessions.ListExpired(ctx, now)
	if err != nil {
		s.logger.Error("Failed to list expired sessions", zap.Error(err))
		return 0
	}

	closed := 0
	for _, session := range expired {
		if ctx.Err() != nil {
			break
		}

		ok, err := s.sessions.CloseExpired(ctx, session.ID, now)
		if err != nil {
			s.logger.Error("Failed to close expired session",
				zap.String("session_id", session.ID),
				zap.Error(err),
			)
			continue
		}

		if !ok {
			// Канал уже закрыт выходом учителя или параллельным sweep
			continue
		}

		closed++
		s.logger.Info("Expired live session closed",
			zap.String("session_id", session.ID),
			zap.String("channel", session.Channel()),
			zap.Time("scheduled_end", session.ScheduledEnd),
		)

		s.announce(ctx, session, &model.Announcement{
			Title:   "Live class ended automatically",
			Content: fmt.Sprintf("The live class %q reached its scheduled end and was closed automatically.", session.Title),
		})
	}

	if closed > 0 {
		s.logger.Info("Expiry sweep completed", zap.Int("closed", closed))
	}

	return closed
}

// announce публикует объявление об уже закрытом занятии. Отмена ctx публикацию
// не прерывает: канал к этому моменту уже очищен.
func (s *SessionService) announce(ctx context.Context, session *model.LiveSession, a *model.Announcement) {
	a.Type = model.AnnouncementTypeInfo
	a.Audience = model.AudienceAll
	a.IsActive = true

	if err := s.announcer.Publish(context.WithoutCancel(ctx), a); err != nil {
		s.logger.Error("Failed to publish session announcement",
			zap.String("session_id", session.ID),
			zap.Error(err),
		)
	}
}

// ============ Списки ============

// ListLive идущие занятия. Перед чтением синхронно выполняется sweep.
func (s *SessionService) ListLive(ctx context.Context) []*model.LiveSession {
	s.SweepExpired(ctx)

	now := s.now()
	sessions, err := s.sessions.ListLive(ctx, now)
	if err != nil {
		s.logger.Error("Failed to list live sessions", zap.Error(err))
		return []*model.LiveSession{}
	}

	live := make([]*model.LiveSession, 0, len(sessions))
	for _, session := range sessions {
		if session.IsLive(now) {
			live = append(live, session)
		}
	}
	return live
}

// ListUpcoming предстоящие и идущие занятия, тоже после sweep
func (s *SessionService) ListUpcoming(ctx context.Context) []*model.LiveSession {
	s.SweepExpired(ctx)

	sessions, err := s.sessions.ListUpcoming(ctx, s.now(), upcomingLimit)
	if err != nil {
		s.logger.Error("Failed to list upcoming sessions", zap.Error(err))
		return []*model.LiveSession{}
	}
	if sessions == nil {
		return []*model.LiveSession{}
	}
	return sessions
}

// ============ Планирование ============

// CreateSession планирует занятие курса
func (s *SessionService) CreateSession(ctx context.Context, in CreateSessionInput) (*model.LiveSession, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" || in.CourseID == "" {
		return nil, fmt.Errorf("%w: course_id and title are required", model.ErrInvalidInput)
	}
	if !in.ScheduledEnd.After(in.ScheduledStart) {
		return nil, fmt.Errorf("%w: scheduled_end must be after scheduled_start", model.ErrInvalidInput)
	}

	course, err := s.courses.GetByID(ctx, in.CourseID)
	if err != nil {
		s.logger.Error("Failed to load course for session", zap.String("course_id", in.CourseID), zap.Error(err))
		return nil, model.ErrStoreUnavailable
	}
	if course == nil {
		return nil, model.ErrNotFound
	}

	session := &model.LiveSession{
		ID:             uuid.NewString(),
		CourseID:       course.ID,
		Title:          title,
		ScheduledStart: in.ScheduledStart,
		ScheduledEnd:   in.ScheduledEnd,
	}

	if err := s.sessions.Create(ctx, session); err != nil {
		s.logger.Error("Failed to create session", zap.String("course_id", course.ID), zap.Error(err))
		return nil, model.ErrStoreUnavailable
	}

	s.logger.Info("Live session scheduled",
		zap.String("session_id", session.ID),
		zap.String("course_id", course.ID),
		zap.Time("scheduled_start", session.ScheduledStart),
	)

	return session, nil
}
