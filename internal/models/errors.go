package models

import "errors"

// Common errors
var (
	ErrUserNotFound      = errors.New("user not found")
	ErrEmailInUse        = errors.New("user with this email already exists")
	ErrInvalidRole       = errors.New("invalid role")
	ErrAccessDenied      = errors.New("access denied")
	ErrSessionExpired    = errors.New("session expired")
	ErrRecordNotFound    = errors.New("record not found")
	ErrDuplicateMobile   = errors.New("mobile number already tracked")
	ErrInvalidCredential = errors.New("invalid credentials")
)
