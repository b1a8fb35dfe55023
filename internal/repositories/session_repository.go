package repositories

import (
	"context"

	"apivault/internal/database"
	"apivault/internal/models"
	"apivault/internal/records"
)

type SessionRepository interface {
	List(ctx context.Context) ([]models.Session, error)
	Save(ctx context.Context, session models.Session) error
	Delete(ctx context.Context, id string) error
}

type sessionRepository struct {
	db *database.Store
}

func NewSessionRepository(db *database.Store) SessionRepository {
	return &sessionRepository{db: db}
}

func (r *sessionRepository) List(ctx context.Context) ([]models.Session, error) {
	var out []models.Session
	err := r.db.View(ctx, func(doc *database.Document) error {
		out = doc.Sessions
		return nil
	})
	return out, err
}

func (r *sessionRepository) Save(ctx context.Context, session models.Session) error {
	return r.db.Update(ctx, func(doc *database.Document) error {
		doc.Sessions = records.UpsertSession(doc.Sessions, session)
		return nil
	})
}

func (r *sessionRepository) Delete(ctx context.Context, id string) error {
	return r.db.Update(ctx, func(doc *database.Document) error {
		doc.Sessions = records.DeleteSession(doc.Sessions, id)
		return nil
	})
}
