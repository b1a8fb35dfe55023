package services

import "errors"

var (
	ErrAPIKeyMissing   = errors.New("api key is required")
	ErrSendInProgress  = errors.New("a message is already being sent")
	ErrSessionNotFound = errors.New("session not found")
	ErrInvalidHeaders  = errors.New("invalid headers JSON")
	ErrInvalidBody     = errors.New("invalid body JSON")
)
