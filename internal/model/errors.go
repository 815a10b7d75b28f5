package model

import "errors"

var (
	ErrNotAuthenticated     = errors.New("not authenticated")
	ErrNotFound             = errors.New("not found")
	ErrStoreUnavailable     = errors.New("store unavailable")
	ErrInvalidJoinRequest   = errors.New("invalid join request")
	ErrNotJoinable          = errors.New("session is not joinable")
	ErrSessionAlreadyLive   = errors.New("session already has an active channel")
	ErrSessionEnded         = errors.New("session window has ended")
	ErrForbidden            = errors.New("forbidden")
	ErrInvalidPaymentStatus = errors.New("invalid payment status")
	ErrInvalidInput         = errors.New("invalid input")
)
