package model

import "time"

type MaterialKind string

const (
	MaterialKindRecording MaterialKind = "recording"
	MaterialKindFile      MaterialKind = "file"
)

// CourseMaterial платный контент курса: записи занятий и файлы
type CourseMaterial struct {
	ID        string       `json:"id"`
	CourseID  string       `json:"course_id"`
	SessionID *string      `json:"session_id"` // запись привязана к занятию
	Kind      MaterialKind `json:"kind"`
	Title     string       `json:"title"`
	URL       string       `json:"url"`
	CreatedAt time.Time    `json:"created_at"`
}
