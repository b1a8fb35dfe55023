package repositories

import (
	"context"

	"apivault/internal/database"
	"apivault/internal/models"
)

type SettingsRepository interface {
	Get(ctx context.Context) (models.Settings, error)
	Merge(ctx context.Context, patch models.Settings) error
}

type settingsRepository struct {
	db *database.Store
}

func NewSettingsRepository(db *database.Store) SettingsRepository {
	return &settingsRepository{db: db}
}

func (r *settingsRepository) Get(ctx context.Context) (models.Settings, error) {
	var out models.Settings
	err := r.db.View(ctx, func(doc *database.Document) error {
		out = doc.Settings
		return nil
	})
	return out, err
}

func (r *settingsRepository) Merge(ctx context.Context, patch models.Settings) error {
	return r.db.Update(ctx, func(doc *database.Document) error {
		doc.Settings = doc.Settings.Merge(patch)
		return nil
	})
}
