package model

import "time"

type SessionState string

const (
	SessionStateScheduled SessionState = "scheduled"
	SessionStateLive      SessionState = "live"
	SessionStateEnded     SessionState = "ended"
)

type LiveSession struct {
	ID             string     `json:"id"`
	CourseID       string     `json:"course_id"`
	Title          string     `json:"title"`
	ScheduledStart time.Time  `json:"scheduled_start"`
	ScheduledEnd   time.Time  `json:"scheduled_end"`
	ActiveChannel  *string    `json:"active_channel"` // nil - в комнату войти нельзя
	EndedAt        *time.Time `json:"ended_at"`       // не nil - занятие завершено окончательно
	CreatedAt      time.Time  `json:"created_at"`
}

// IsLive сессия доступна для входа, только если канал открыт и now внутри окна
func (s *LiveSession) IsLive(now time.Time) bool {
	if s.EndedAt != nil || s.ActiveChannel == nil || *s.ActiveChannel == "" {
		return false
	}
	return !now.Before(s.ScheduledStart) && !now.After(s.ScheduledEnd)
}

// IsExpired канал ещё открыт, но окно уже прошло - кандидат для sweep
func (s *LiveSession) IsExpired(now time.Time) bool {
	return s.ActiveChannel != nil && s.ScheduledEnd.Before(now)
}

// State вычисляет состояние сессии
func (s *LiveSession) State(now time.Time) SessionState {
	switch {
	case s.EndedAt != nil:
		return SessionStateEnded
	case s.IsLive(now):
		return SessionStateLive
	case s.ActiveChannel == nil && now.Before(s.ScheduledEnd):
		return SessionStateScheduled
	default:
		return SessionStateEnded
	}
}

// Channel возвращает токен канала или пустую строку
func (s *LiveSession) Channel() string {
	if s.ActiveChannel == nil {
		return ""
	}
	return *s.ActiveChannel
}
