package model

import "time"

// PaymentStatus открытый строковый enum: неизвестные значения хранятся как есть
type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusPaid    PaymentStatus = "paid"
	PaymentStatusFailed  PaymentStatus = "failed"
)

type CourseEnrollment struct {
	ID            string        `json:"id"`
	UserID        string        `json:"user_id"`
	CourseID      string        `json:"course_id"`
	PaymentStatus PaymentStatus `json:"payment_status"`
	AccessGranted bool          `json:"access_granted"` // может отставать от оплаты или быть отозван вручную
	EnrolledAt    time.Time     `json:"enrolled_at"`
	ExpiresAt     *time.Time    `json:"expires_at"` // nil = бессрочно
}

// GrantsAccess проверяет, открывает ли запись доступ к платным материалам на момент now
func (e *CourseEnrollment) GrantsAccess(now time.Time) bool {
	if e.PaymentStatus != PaymentStatusPaid || !e.AccessGranted {
		return false
	}

	if e.ExpiresAt != nil && !e.ExpiresAt.After(now) {
		return false
	}

	return true
}
