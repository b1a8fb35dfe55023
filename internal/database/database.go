// Package database is the Document Store: a single JSON file holding every
// persisted collection, read and rewritten whole on each access.
package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"apivault/internal/models"
)

// DocumentFile is the file name of the document inside the data directory.
const DocumentFile = "db.json"

// Top-level document keys.
const (
	KeyApis        = "apis"
	KeyCredentials = "credentials"
	KeySettings    = "settings"
	KeySessions    = "sessions"
)

// Document is the in-memory form of the JSON file.
type Document struct {
	Apis        []models.ApiRecord  `json:"apis"`
	Credentials []models.Credential `json:"credentials"`
	Settings    models.Settings     `json:"settings"`
	Sessions    []models.Session    `json:"sessions"`

	// extra keeps top-level keys this version does not know about.
	extra map[string]json.RawMessage
}

func defaultDocument() *Document {
	return &Document{
		Apis:        []models.ApiRecord{},
		Credentials: []models.Credential{},
		Settings:    models.DefaultSettings(),
		Sessions:    []models.Session{},
	}
}

// Config holds Document Store configuration
type Config struct {
	Path   string
	Logger zerolog.Logger
}

// Store owns the document file. It is opened once at startup and handed to
// the repositories; nothing else touches the file.
type Store struct {
	path string
	log  zerolog.Logger
	now  func() time.Time

	// mu serializes read-mutate-write cycles within this process. Other
	// processes writing the same file are last-writer-wins.
	mu sync.Mutex
}

// Open prepares the directory for the document at cfg.Path. The file itself
// is created on first write; until then reads see the defaults.
func Open(cfg Config) (*Store, error) {
	if cfg.Path == "" {
		cfg.Path = filepath.Join(GetDefaultDataDir(), DocumentFile)
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	cfg.Logger.Info().Str("path", cfg.Path).Bool("dev", IsDevelopment()).Msg("document store opened")
	return &Store{path: cfg.Path, log: cfg.Logger, now: time.Now}, nil
}

// Path returns the document file location.
func (s *Store) Path() string {
	return s.path
}

// View loads the document and passes it to fn. Changes fn makes are discarded.
func (s *Store) View(ctx context.Context, fn func(doc *Document) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return err
	}
	return fn(doc)
}

// Update loads the document, lets fn mutate it and writes the whole document
// back. Nothing is written when fn returns an error.
func (s *Store) Update(ctx context.Context, fn func(doc *Document) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return err
	}
	if err := fn(doc); err != nil {
		return err
	}
	return s.write(doc)
}

func (s *Store) load() (*Document, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return defaultDocument(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		s.quarantine(data, err)
		return defaultDocument(), nil
	}

	doc := defaultDocument()
	doc.Apis = decode(s, raw, KeyApis, doc.Apis)
	doc.Credentials = decode(s, raw, KeyCredentials, doc.Credentials)
	doc.Sessions = decode(s, raw, KeySessions, doc.Sessions)
	doc.Settings = doc.Settings.Merge(decode(s, raw, KeySettings, models.Settings{}))

	for _, key := range []string{KeyApis, KeyCredentials, KeySettings, KeySessions} {
		delete(raw, key)
	}
	if len(raw) > 0 {
		doc.extra = raw
	}
	return doc, nil
}

// decode returns raw[key] decoded as T. A missing, null or malformed value
// yields def.
func decode[T any](s *Store, raw map[string]json.RawMessage, key string, def T) T {
	value, ok := raw[key]
	if !ok || string(value) == "null" {
		return def
	}
	var out T
	if err := json.Unmarshal(value, &out); err != nil {
		s.log.Warn().Err(err).Str("collection", key).Msg("malformed collection, using empty default")
		return def
	}
	return out
}

// quarantine copies an unparseable document aside before it gets replaced.
func (s *Store) quarantine(data []byte, cause error) {
	backup := s.path + ".corrupt-" + strconv.FormatInt(s.now().UnixMilli(), 10)
	if err := os.WriteFile(backup, data, 0o600); err != nil {
		s.log.Error().Err(err).Str("path", s.path).Msg("failed to back up corrupt document")
	}
	s.log.Warn().Err(cause).Str("backup", backup).Msg("document is not valid JSON, starting from defaults")
}

func (s *Store) write(doc *Document) error {
	out := make(map[string]any, 4+len(doc.extra))
	for k, v := range doc.extra {
		out[k] = v
	}
	out[KeyApis] = nonNil(doc.Apis)
	out[KeyCredentials] = nonNil(doc.Credentials)
	out[KeySessions] = nonNil(doc.Sessions)
	if doc.Settings == nil {
		doc.Settings = models.Settings{}
	}
	out[KeySettings] = doc.Settings

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}
	return writeAtomic(s.path, data)
}

// writeAtomic replaces path with data using the temp-file, fsync, rename
// pattern so readers never observe a half-written document.
func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".db-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace document: %w", err)
	}
	return nil
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
