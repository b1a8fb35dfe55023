package mocks

import (
	"context"
	"sync"
	"time"

	"apivault/internal/ids"
	"apivault/internal/models"
	"apivault/internal/records"
	"apivault/internal/storage"
)

// MemoryStore is an in-memory storage.Store with the same collection
// semantics as the real backends. It also holds a legacy chat history.
type MemoryStore struct {
	mu          sync.Mutex
	gen         *ids.Generator
	apis        []models.ApiRecord
	credentials []models.Credential
	settings    models.Settings
	sessions    []models.Session
	history     []models.ChatMessage
}

var (
	_ storage.Store         = (*MemoryStore)(nil)
	_ storage.LegacyHistory = (*MemoryStore)(nil)
)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		gen:      ids.NewGenerator(nil),
		settings: models.Settings{},
	}
}

func (m *MemoryStore) ListApis(_ context.Context, search string) ([]models.ApiRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return records.SearchApis(m.apis, search), nil
}

func (m *MemoryStore) SaveApi(_ context.Context, patch models.ApiRecordPatch) (models.ApiRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var saved models.ApiRecord
	m.apis, saved = records.SaveApi(m.apis, patch, m.gen)
	return saved, nil
}

func (m *MemoryStore) DeleteApi(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.apis = records.DeleteApi(m.apis, id)
	return nil
}

func (m *MemoryStore) ListCredentials(_ context.Context, search string) ([]models.Credential, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return records.SearchCredentials(m.credentials, search), nil
}

func (m *MemoryStore) SaveCredential(_ context.Context, patch models.CredentialPatch) (models.Credential, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var saved models.Credential
	m.credentials, saved = records.SaveCredential(m.credentials, patch, m.gen, time.Now())
	return saved, nil
}

func (m *MemoryStore) DeleteCredential(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.credentials = records.DeleteCredential(m.credentials, id)
	return nil
}

func (m *MemoryStore) GetSettings(context.Context) (models.Settings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return models.DefaultSettings().Merge(m.settings), nil
}

func (m *MemoryStore) SaveSettings(_ context.Context, patch models.Settings) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.settings = m.settings.Merge(patch)
	return nil
}

func (m *MemoryStore) GetSessions(context.Context) ([]models.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Session, len(m.sessions))
	copy(out, m.sessions)
	return out, nil
}

func (m *MemoryStore) SaveSession(_ context.Context, session models.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions = records.UpsertSession(m.sessions, session)
	return nil
}

func (m *MemoryStore) DeleteSession(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions = records.DeleteSession(m.sessions, id)
	return nil
}

func (m *MemoryStore) GetChatHistory(context.Context) ([]models.ChatMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.ChatMessage, len(m.history))
	copy(out, m.history)
	return out, nil
}

func (m *MemoryStore) SaveChatHistory(_ context.Context, messages []models.ChatMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.history = append([]models.ChatMessage(nil), messages...)
	return nil
}
