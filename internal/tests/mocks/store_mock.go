package mocks

import (
	"context"

	"apivault/internal/models"
	"apivault/internal/storage"
)

// StoreMock overrides individual storage operations. Anything left nil is
// served by Memory.
type StoreMock struct {
	Memory *MemoryStore

	GetSettingsFunc   func(ctx context.Context) (models.Settings, error)
	SaveSettingsFunc  func(ctx context.Context, patch models.Settings) error
	GetSessionsFunc   func(ctx context.Context) ([]models.Session, error)
	SaveSessionFunc   func(ctx context.Context, session models.Session) error
	DeleteSessionFunc func(ctx context.Context, id string) error
}

var _ storage.Store = (*StoreMock)(nil)

func NewStoreMock() *StoreMock {
	return &StoreMock{Memory: NewMemoryStore()}
}

func (m *StoreMock) ListApis(ctx context.Context, search string) ([]models.ApiRecord, error) {
	return m.Memory.ListApis(ctx, search)
}

func (m *StoreMock) SaveApi(ctx context.Context, patch models.ApiRecordPatch) (models.ApiRecord, error) {
	return m.Memory.SaveApi(ctx, patch)
}

func (m *StoreMock) DeleteApi(ctx context.Context, id int64) error {
	return m.Memory.DeleteApi(ctx, id)
}

func (m *StoreMock) ListCredentials(ctx context.Context, search string) ([]models.Credential, error) {
	return m.Memory.ListCredentials(ctx, search)
}

func (m *StoreMock) SaveCredential(ctx context.Context, patch models.CredentialPatch) (models.Credential, error) {
	return m.Memory.SaveCredential(ctx, patch)
}

func (m *StoreMock) DeleteCredential(ctx context.Context, id int64) error {
	return m.Memory.DeleteCredential(ctx, id)
}

func (m *StoreMock) GetSettings(ctx context.Context) (models.Settings, error) {
	if m.GetSettingsFunc != nil {
		return m.GetSettingsFunc(ctx)
	}
	return m.Memory.GetSettings(ctx)
}

func (m *StoreMock) SaveSettings(ctx context.Context, patch models.Settings) error {
	if m.SaveSettingsFunc != nil {
		return m.SaveSettingsFunc(ctx, patch)
	}
	return m.Memory.SaveSettings(ctx, patch)
}

func (m *StoreMock) GetSessions(ctx context.Context) ([]models.Session, error) {
	if m.GetSessionsFunc != nil {
		return m.GetSessionsFunc(ctx)
	}
	return m.Memory.GetSessions(ctx)
}

func (m *StoreMock) SaveSession(ctx context.Context, session models.Session) error {
	if m.SaveSessionFunc != nil {
		return m.SaveSessionFunc(ctx, session)
	}
	return m.Memory.SaveSession(ctx, session)
}

func (m *StoreMock) DeleteSession(ctx context.Context, id string) error {
	if m.DeleteSessionFunc != nil {
		return m.DeleteSessionFunc(ctx, id)
	}
	return m.Memory.DeleteSession(ctx, id)
}
