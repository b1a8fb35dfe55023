// Package storage defines the one CRUD contract every backend satisfies and
// the startup probe that picks a backend.
package storage

import (
	"context"

	"github.com/rs/zerolog"

	"apivault/internal/models"
)

// Store is the storage surface the UI side programs against. The bridge
// client and the local fallback store both implement it with identical
// semantics, so callers never know which one is active.
type Store interface {
	ListApis(ctx context.Context, search string) ([]models.ApiRecord, error)
	SaveApi(ctx context.Context, patch models.ApiRecordPatch) (models.ApiRecord, error)
	DeleteApi(ctx context.Context, id int64) error

	ListCredentials(ctx context.Context, search string) ([]models.Credential, error)
	SaveCredential(ctx context.Context, patch models.CredentialPatch) (models.Credential, error)
	DeleteCredential(ctx context.Context, id int64) error

	GetSettings(ctx context.Context) (models.Settings, error)
	SaveSettings(ctx context.Context, patch models.Settings) error

	GetSessions(ctx context.Context) ([]models.Session, error)
	SaveSession(ctx context.Context, session models.Session) error
	DeleteSession(ctx context.Context, id string) error
}

// LegacyHistory is the pre-sessions single-thread chat history.
type LegacyHistory interface {
	GetChatHistory(ctx context.Context) ([]models.ChatMessage, error)
	SaveChatHistory(ctx context.Context, messages []models.ChatMessage) error
}

// Capability is a Store that can report whether its privileged side answers.
type Capability interface {
	Store
	Available(ctx context.Context) bool
}

// Backend names reported by Select.
const (
	BackendBridge   = "bridge"
	BackendFallback = "fallback"
)

// Select runs the capability probe once: the bridge when it answers,
// otherwise the store built by fallback.
func Select(ctx context.Context, bridge Capability, fallback func() (Store, error), log zerolog.Logger) (Store, string, error) {
	if bridge != nil && bridge.Available(ctx) {
		log.Info().Str("backend", BackendBridge).Msg("storage backend selected")
		return bridge, BackendBridge, nil
	}

	store, err := fallback()
	if err != nil {
		return nil, "", err
	}
	log.Info().Str("backend", BackendFallback).Msg("storage backend selected")
	return store, BackendFallback, nil
}
