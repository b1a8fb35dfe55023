// Package records holds the collection semantics shared by every storage
// backend: search, merge-on-save, delete and session upsert. Backends only
// decide where a collection is loaded from and written to.
package records

import (
	"strings"
	"time"

	"apivault/internal/ids"
	"apivault/internal/models"
)

// ISOTime is the created_at layout (millisecond precision, UTC "Z").
const ISOTime = "2006-01-02T15:04:05.000Z07:00"

// Search returns the items whose field contains term, ignoring case. An empty
// term returns every item.
func Search[T any](items []T, term string, field func(T) string) []T {
	if term == "" {
		return nonNil(items)
	}
	needle := strings.ToLower(term)
	return filter(items, func(item T) bool {
		return strings.Contains(strings.ToLower(field(item)), needle)
	})
}

func SearchApis(items []models.ApiRecord, term string) []models.ApiRecord {
	return Search(items, term, func(a models.ApiRecord) string { return a.Name })
}

func SearchCredentials(items []models.Credential, term string) []models.Credential {
	return Search(items, term, func(c models.Credential) string { return c.SiteName })
}

// SaveApi merges patch over the record with the same id, or appends a new
// record with a fresh id when there is none.
func SaveApi(items []models.ApiRecord, patch models.ApiRecordPatch, gen *ids.Generator) ([]models.ApiRecord, models.ApiRecord) {
	if patch.ID != nil {
		for i := range items {
			if items[i].ID == *patch.ID {
				items[i] = patch.Apply(items[i])
				return items, items[i]
			}
		}
	}

	var maxID int64
	for _, a := range items {
		maxID = max(maxID, a.ID)
	}
	rec := patch.Apply(models.ApiRecord{})
	rec.ID = gen.Next(maxID)
	return append(items, rec), rec
}

// SaveCredential behaves like SaveApi and stamps CreatedAt on creation.
func SaveCredential(items []models.Credential, patch models.CredentialPatch, gen *ids.Generator, now time.Time) ([]models.Credential, models.Credential) {
	if patch.ID != nil {
		for i := range items {
			if items[i].ID == *patch.ID {
				items[i] = patch.Apply(items[i])
				return items, items[i]
			}
		}
	}

	var maxID int64
	for _, c := range items {
		maxID = max(maxID, c.ID)
	}
	rec := patch.Apply(models.Credential{})
	rec.ID = gen.Next(maxID)
	rec.CreatedAt = now.UTC().Format(ISOTime)
	return append(items, rec), rec
}

func DeleteApi(items []models.ApiRecord, id int64) []models.ApiRecord {
	return filter(items, func(a models.ApiRecord) bool { return a.ID != id })
}

func DeleteCredential(items []models.Credential, id int64) []models.Credential {
	return filter(items, func(c models.Credential) bool { return c.ID != id })
}

// UpsertSession replaces the session with the same id, or puts s in front.
// Ordering beyond that is the caller's business.
func UpsertSession(items []models.Session, s models.Session) []models.Session {
	if s.Messages == nil {
		s.Messages = []models.ChatMessage{}
	}
	for i := range items {
		if items[i].ID == s.ID {
			items[i] = s
			return items
		}
	}
	out := make([]models.Session, 0, len(items)+1)
	out = append(out, s)
	return append(out, items...)
}

func DeleteSession(items []models.Session, id string) []models.Session {
	return filter(items, func(s models.Session) bool { return s.ID != id })
}

func filter[T any](items []T, keep func(T) bool) []T {
	out := make([]T, 0, len(items))
	for _, item := range items {
		if keep(item) {
			out = append(out, item)
		}
	}
	return out
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
