package repositories

import (
	"context"
	"time"

	"apivault/internal/database"
	"apivault/internal/ids"
	"apivault/internal/models"
	"apivault/internal/records"
)

type CredentialRepository interface {
	List(ctx context.Context, search string) ([]models.Credential, error)
	Save(ctx context.Context, patch models.CredentialPatch) (models.Credential, error)
	Delete(ctx context.Context, id int64) error
}

type credentialRepository struct {
	db  *database.Store
	ids *ids.Generator
	now func() time.Time
}

func NewCredentialRepository(db *database.Store, gen *ids.Generator, now func() time.Time) CredentialRepository {
	if now == nil {
		now = time.Now
	}
	return &credentialRepository{db: db, ids: gen, now: now}
}

func (r *credentialRepository) List(ctx context.Context, search string) ([]models.Credential, error) {
	var out []models.Credential
	err := r.db.View(ctx, func(doc *database.Document) error {
		out = records.SearchCredentials(doc.Credentials, search)
		return nil
	})
	return out, err
}

func (r *credentialRepository) Save(ctx context.Context, patch models.CredentialPatch) (models.Credential, error) {
	var saved models.Credential
	err := r.db.Update(ctx, func(doc *database.Document) error {
		doc.Credentials, saved = records.SaveCredential(doc.Credentials, patch, r.ids, r.now())
		return nil
	})
	return saved, err
}

func (r *credentialRepository) Delete(ctx context.Context, id int64) error {
	return r.db.Update(ctx, func(doc *database.Document) error {
		doc.Credentials = records.DeleteCredential(doc.Credentials, id)
		return nil
	})
}
