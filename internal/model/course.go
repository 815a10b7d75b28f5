package model

import "time"

type CourseLevel string

const (
	CourseLevelBeginner     CourseLevel = "beginner"
	CourseLevelIntermediate CourseLevel = "intermediate"
	CourseLevelAdvanced     CourseLevel = "advanced"
)

type CourseStatus string

const (
	CourseStatusActive   CourseStatus = "active"
	CourseStatusInactive CourseStatus = "inactive"
)

type Course struct {
	ID             string       `json:"id"`
	Title          string       `json:"title"`
	Description    string       `json:"description"`
	Price          int64        `json:"price"` // в минимальных единицах валюты, 0 = бесплатно
	Duration       string       `json:"duration"`
	Level          CourseLevel  `json:"level"`
	Status         CourseStatus `json:"status"`
	InstructorName string       `json:"instructor_name"`
	IsFeatured     bool         `json:"is_featured"`
	EnrolledCount  int          `json:"enrolled_count"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`
}

// IsFree возвращает true для бесплатного курса
func (c *Course) IsFree() bool {
	return c.Price == 0
}

// IsValidLevel проверяет уровень курса
func IsValidLevel(level CourseLevel) bool {
	switch level {
	case CourseLevelBeginner, CourseLevelIntermediate, CourseLevelAdvanced:
		return true
	}
	return false
}
