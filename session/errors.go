package session

import "errors"

var (
	ErrDuplicateSession = errors.New("duplicate session id")
	ErrSessionNotFound  = errors.New("session not found")
)
