package repositories

import (
	"context"

	"apivault/internal/database"
	"apivault/internal/ids"
	"apivault/internal/models"
	"apivault/internal/records"
)

type ApiRepository interface {
	List(ctx context.Context, search string) ([]models.ApiRecord, error)
	Save(ctx context.Context, patch models.ApiRecordPatch) (models.ApiRecord, error)
	Delete(ctx context.Context, id int64) error
}

type apiRepository struct {
	db  *database.Store
	ids *ids.Generator
}

func NewApiRepository(db *database.Store, gen *ids.Generator) ApiRepository {
	return &apiRepository{db: db, ids: gen}
}

func (r *apiRepository) List(ctx context.Context, search string) ([]models.ApiRecord, error) {
	var out []models.ApiRecord
	err := r.db.View(ctx, func(doc *database.Document) error {
		out = records.SearchApis(doc.Apis, search)
		return nil
	})
	return out, err
}

func (r *apiRepository) Save(ctx context.Context, patch models.ApiRecordPatch) (models.ApiRecord, error) {
	var saved models.ApiRecord
	err := r.db.Update(ctx, func(doc *database.Document) error {
		doc.Apis, saved = records.SaveApi(doc.Apis, patch, r.ids)
		return nil
	})
	return saved, err
}

func (r *apiRepository) Delete(ctx context.Context, id int64) error {
	return r.db.Update(ctx, func(doc *database.Document) error {
		doc.Apis = records.DeleteApi(doc.Apis, id)
		return nil
	})
}
