package model

import "time"

type AnnouncementType string

const (
	AnnouncementTypeInfo    AnnouncementType = "info"
	AnnouncementTypeWarning AnnouncementType = "warning"
	AnnouncementTypeSuccess AnnouncementType = "success"
)

type AnnouncementAudience string

const (
	AudienceAll      AnnouncementAudience = "all"
	AudienceStudents AnnouncementAudience = "students"
	AudienceAdmins   AnnouncementAudience = "admins"
)

type Announcement struct {
	ID        string               `json:"id"`
	Title     string               `json:"title"`
	Content   string               `json:"content"`
	Type      AnnouncementType     `json:"type"`
	Audience  AnnouncementAudience `json:"target_audience"`
	IsActive  bool                 `json:"is_active"`
	IsPinned  bool                 `json:"is_pinned"`
	ExpiresAt *time.Time           `json:"expires_at"`
	CreatedAt time.Time            `json:"created_at"`
}
