package services

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"apivault/internal/database"
	"apivault/internal/ids"
	"apivault/internal/models"
	"apivault/internal/repositories"
	"apivault/internal/storage"
)

// StorageGateway aggregates the repositories backed by the Document Store.
// It runs in the privileged process and is the only code allowed to touch
// the document file; the UI reaches it through the bridge.
type StorageGateway struct {
	Apis        repositories.ApiRepository
	Credentials repositories.CredentialRepository
	Settings    repositories.SettingsRepository
	Sessions    repositories.SessionRepository

	log zerolog.Logger
}

var _ storage.Store = (*StorageGateway)(nil)

// NewStorageGateway constructs the gateway using repositories backed by db.
func NewStorageGateway(db *database.Store, gen *ids.Generator, log zerolog.Logger) *StorageGateway {
	return &StorageGateway{
		Apis:        repositories.NewApiRepository(db, gen),
		Credentials: repositories.NewCredentialRepository(db, gen, time.Now),
		Settings:    repositories.NewSettingsRepository(db),
		Sessions:    repositories.NewSessionRepository(db),
		log:         log.With().Str("component", "gateway").Logger(),
	}
}

func (g *StorageGateway) ListApis(ctx context.Context, search string) ([]models.ApiRecord, error) {
	apis, err := g.Apis.List(ctx, search)
	if err != nil {
		return nil, fmt.Errorf("list apis: %w", err)
	}
	return apis, nil
}

func (g *StorageGateway) SaveApi(ctx context.Context, patch models.ApiRecordPatch) (models.ApiRecord, error) {
	saved, err := g.Apis.Save(ctx, patch)
	if err != nil {
		return models.ApiRecord{}, fmt.Errorf("save api: %w", err)
	}
	g.log.Debug().Int64("id", saved.ID).Msg("api saved")
	return saved, nil
}

func (g *StorageGateway) DeleteApi(ctx context.Context, id int64) error {
	if err := g.Apis.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete api: %w", err)
	}
	return nil
}

func (g *StorageGateway) ListCredentials(ctx context.Context, search string) ([]models.Credential, error) {
	creds, err := g.Credentials.List(ctx, search)
	if err != nil {
		return nil, fmt.Errorf("list credentials: %w", err)
	}
	return creds, nil
}

func (g *StorageGateway) SaveCredential(ctx context.Context, patch models.CredentialPatch) (models.Credential, error) {
	saved, err := g.Credentials.Save(ctx, patch)
	if err != nil {
		return models.Credential{}, fmt.Errorf("save credential: %w", err)
	}
	g.log.Debug().Int64("id", saved.ID).Msg("credential saved")
	return saved, nil
}

func (g *StorageGateway) DeleteCredential(ctx context.Context, id int64) error {
	if err := g.Credentials.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete credential: %w", err)
	}
	return nil
}

func (g *StorageGateway) GetSettings(ctx context.Context) (models.Settings, error) {
	settings, err := g.Settings.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("get settings: %w", err)
	}
	return settings, nil
}

func (g *StorageGateway) SaveSettings(ctx context.Context, patch models.Settings) error {
	if err := g.Settings.Merge(ctx, patch); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	g.log.Debug().Int("keys", len(patch)).Msg("settings saved")
	return nil
}

func (g *StorageGateway) GetSessions(ctx context.Context) ([]models.Session, error) {
	sessions, err := g.Sessions.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("get sessions: %w", err)
	}
	return sessions, nil
}

func (g *StorageGateway) SaveSession(ctx context.Context, session models.Session) error {
	if err := g.Sessions.Save(ctx, session); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (g *StorageGateway) DeleteSession(ctx context.Context, id string) error {
	if err := g.Sessions.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}
