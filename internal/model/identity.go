package model

import "strings"

type Role string

const (
	RoleTeacher Role = "teacher"
	RoleStudent Role = "student"
)

// Principal то, что даёт провайдер аутентификации на каждый запрос
type Principal struct {
	UserID  string
	IsAdmin bool
}

// Anonymous проверяет, что пользователь не аутентифицирован
func (p *Principal) Anonymous() bool {
	return p == nil || strings.TrimSpace(p.UserID) == ""
}

// Admin nil-безопасная проверка роли администратора
func (p *Principal) Admin() bool {
	return p != nil && p.IsAdmin && !p.Anonymous()
}

// ShortUserToken первый сегмент id до дефиса
func (p *Principal) ShortUserToken() string {
	if p.Anonymous() {
		return ""
	}
	id := strings.TrimSpace(p.UserID)
	if i := strings.Index(id, "-"); i >= 0 {
		id = id[:i]
	}
	return id
}
