// Package fallback is the Local Fallback Store: the same CRUD surface as the
// Storage Gateway, kept in a localStorage-like key/value area. It is picked
// when no bridge to a privileged process answers, e.g. when running outside
// the desktop shell.
package fallback

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"apivault/internal/ids"
	"apivault/internal/models"
	"apivault/internal/records"
	"apivault/internal/storage"
)

// Storage keys. Each holds the JSON shape of the matching document collection.
const (
	KeyApis        = "app_apis"
	KeyCreds       = "app_creds"
	KeySettings    = "app_settings"
	KeyChatHistory = "app_chat_history"
	KeySessions    = "app_chat_sessions"
)

// StorageFile is the file name of the key/value area inside the data directory.
const StorageFile = "localstorage.db"

// Entry is one key of the storage area.
type Entry struct {
	Key       string `gorm:"column:storage_key;primaryKey;size:191"`
	Value     string `gorm:"type:text;not null"`
	UpdatedAt time.Time
}

func (Entry) TableName() string { return "local_storage" }

// Config holds fallback store configuration
type Config struct {
	Path     string
	LogLevel logger.LogLevel
	Logger   zerolog.Logger
}

type LocalStore struct {
	db  *gorm.DB
	ids *ids.Generator
	now func() time.Time
	log zerolog.Logger

	mu sync.Mutex
}

var (
	_ storage.Store         = (*LocalStore)(nil)
	_ storage.LegacyHistory = (*LocalStore)(nil)
)

// Open opens the SQLite file backing the storage area and migrates it.
func Open(cfg Config) (*LocalStore, error) {
	if cfg.LogLevel == 0 {
		cfg.LogLevel = logger.Warn
	}

	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_busy_timeout=5000", cfg.Path)

	gormLogger := logger.New(
		log.New(zerologWriter{log: cfg.Logger}, "", 0),
		logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  cfg.LogLevel,
			IgnoreRecordNotFoundError: true,
		},
	)

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormLogger,
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// One connection keeps SQLite from reporting "database is locked".
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql db: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)

	if err := db.AutoMigrate(&Entry{}); err != nil {
		return nil, fmt.Errorf("auto migrate: %w", err)
	}

	return New(db, ids.NewGenerator(nil), cfg.Logger), nil
}

// New wraps an already migrated database.
func New(db *gorm.DB, gen *ids.Generator, log zerolog.Logger) *LocalStore {
	return &LocalStore{
		db:  db,
		ids: gen,
		now: time.Now,
		log: log.With().Str("component", "fallback").Logger(),
	}
}

// Close releases the underlying connection pool.
func (s *LocalStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *LocalStore) ListApis(ctx context.Context, search string) ([]models.ApiRecord, error) {
	apis, err := read(ctx, s, KeyApis, []models.ApiRecord{})
	if err != nil {
		return nil, err
	}
	return records.SearchApis(apis, search), nil
}

func (s *LocalStore) SaveApi(ctx context.Context, patch models.ApiRecordPatch) (models.ApiRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	apis, err := read(ctx, s, KeyApis, []models.ApiRecord{})
	if err != nil {
		return models.ApiRecord{}, err
	}
	apis, saved := records.SaveApi(apis, patch, s.ids)
	return saved, s.write(ctx, KeyApis, apis)
}

func (s *LocalStore) DeleteApi(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	apis, err := read(ctx, s, KeyApis, []models.ApiRecord{})
	if err != nil {
		return err
	}
	return s.write(ctx, KeyApis, records.DeleteApi(apis, id))
}

func (s *LocalStore) ListCredentials(ctx context.Context, search string) ([]models.Credential, error) {
	creds, err := read(ctx, s, KeyCreds, []models.Credential{})
	if err != nil {
		return nil, err
	}
	return records.SearchCredentials(creds, search), nil
}

func (s *LocalStore) SaveCredential(ctx context.Context, patch models.CredentialPatch) (models.Credential, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	creds, err := read(ctx, s, KeyCreds, []models.Credential{})
	if err != nil {
		return models.Credential{}, err
	}
	creds, saved := records.SaveCredential(creds, patch, s.ids, s.now())
	return saved, s.write(ctx, KeyCreds, creds)
}

func (s *LocalStore) DeleteCredential(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	creds, err := read(ctx, s, KeyCreds, []models.Credential{})
	if err != nil {
		return err
	}
	return s.write(ctx, KeyCreds, records.DeleteCredential(creds, id))
}

// GetSettings returns the stored settings over the install defaults, the
// same view the document store gives.
func (s *LocalStore) GetSettings(ctx context.Context) (models.Settings, error) {
	stored, err := read(ctx, s, KeySettings, models.Settings{})
	if err != nil {
		return nil, err
	}
	return models.DefaultSettings().Merge(stored), nil
}

func (s *LocalStore) SaveSettings(ctx context.Context, patch models.Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.GetSettings(ctx)
	if err != nil {
		return err
	}
	return s.write(ctx, KeySettings, current.Merge(patch))
}

func (s *LocalStore) GetSessions(ctx context.Context) ([]models.Session, error) {
	return read(ctx, s, KeySessions, []models.Session{})
}

func (s *LocalStore) SaveSession(ctx context.Context, session models.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sessions, err := read(ctx, s, KeySessions, []models.Session{})
	if err != nil {
		return err
	}
	return s.write(ctx, KeySessions, records.UpsertSession(sessions, session))
}

func (s *LocalStore) DeleteSession(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sessions, err := read(ctx, s, KeySessions, []models.Session{})
	if err != nil {
		return err
	}
	return s.write(ctx, KeySessions, records.DeleteSession(sessions, id))
}

func (s *LocalStore) GetChatHistory(ctx context.Context) ([]models.ChatMessage, error) {
	return read(ctx, s, KeyChatHistory, []models.ChatMessage{})
}

func (s *LocalStore) SaveChatHistory(ctx context.Context, messages []models.ChatMessage) error {
	if messages == nil {
		messages = []models.ChatMessage{}
	}
	return s.write(ctx, KeyChatHistory, messages)
}

// GetItem returns the raw value stored under key.
func (s *LocalStore) GetItem(ctx context.Context, key string) (string, bool, error) {
	var entry Entry
	err := s.db.WithContext(ctx).Take(&entry, "storage_key = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("read %s: %w", key, err)
	}
	return entry.Value, true, nil
}

// SetItem stores value under key, replacing what was there.
func (s *LocalStore) SetItem(ctx context.Context, key, value string) error {
	entry := Entry{Key: key, Value: value, UpdatedAt: s.now()}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "storage_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&entry).Error
	if err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}

func (s *LocalStore) write(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return s.SetItem(ctx, key, string(data))
}

// read decodes the value under key. A missing or malformed value yields def.
func read[T any](ctx context.Context, s *LocalStore, key string, def T) (T, error) {
	raw, ok, err := s.GetItem(ctx, key)
	if err != nil || !ok || strings.TrimSpace(raw) == "null" {
		return def, err
	}
	var out T
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("malformed stored value, using default")
		return def, nil
	}
	return out, nil
}

// zerologWriter satisfies io.Writer for the GORM logger but delegates to zerolog.
type zerologWriter struct {
	log zerolog.Logger
}

// Write picks the zerolog level from gorm's line format: "[error]", "[warn]"
// and "[info]" prefixes, "SLOW SQL" traces, and traces whose first line
// carries an error after the caller's file:line.
func (w zerologWriter) Write(p []byte) (int, error) {
	msg := strings.TrimSpace(string(p))
	w.log.WithLevel(gormLineLevel(msg)).Str("component", "gorm").Msg(msg)
	return len(p), nil
}

func gormLineLevel(msg string) zerolog.Level {
	first, _, _ := strings.Cut(msg, "\n")
	switch {
	case strings.Contains(msg, "[error]"):
		return zerolog.ErrorLevel
	case strings.Contains(msg, "[warn]"), strings.Contains(first, "SLOW SQL"):
		return zerolog.WarnLevel
	case strings.Contains(msg, "[info]"):
		return zerolog.InfoLevel
	case strings.Contains(strings.TrimSpace(first), " "):
		return zerolog.ErrorLevel
	default:
		return zerolog.DebugLevel
	}
}
