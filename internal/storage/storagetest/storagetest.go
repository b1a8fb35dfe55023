// Package storagetest is a conformance suite for storage.Store
// implementations. Every backend runs the same cases so they stay
// behaviorally indistinguishable.
package storagetest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"apivault/internal/models"
	"apivault/internal/storage"
)

// Factory returns a fresh, empty store for one test case.
type Factory func(t *testing.T) storage.Store

func ptr[T any](v T) *T { return &v }

// Run executes every conformance case against stores built by newStore.
func Run(t *testing.T, newStore Factory) {
	cases := []struct {
		name string
		fn   func(t *testing.T, s storage.Store)
	}{
		{"CreateAssignsRetrievableID", testCreateAssignsRetrievableID},
		{"MergeKeepsUnspecifiedFields", testMergeKeepsUnspecifiedFields},
		{"SaveWithUnknownIDCreates", testSaveWithUnknownIDCreates},
		{"DeleteUnknownIsNoop", testDeleteUnknownIsNoop},
		{"SearchSemantics", testSearchSemantics},
		{"CredentialLifecycle", testCredentialLifecycle},
		{"SettingsShallowMerge", testSettingsShallowMerge},
		{"SessionUpsertAndDelete", testSessionUpsertAndDelete},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tc.fn(t, newStore(t))
		})
	}
}

func testCreateAssignsRetrievableID(t *testing.T, s storage.Store) {
	ctx := context.Background()

	first, err := s.SaveApi(ctx, models.ApiRecordPatch{Name: ptr("one"), URL: ptr("https://one")})
	require.NoError(t, err)
	second, err := s.SaveApi(ctx, models.ApiRecordPatch{Name: ptr("two")})
	require.NoError(t, err)

	assert.NotZero(t, first.ID)
	assert.NotEqual(t, first.ID, second.ID)

	apis, err := s.ListApis(ctx, "")
	require.NoError(t, err)
	require.Len(t, apis, 2)
	assert.Equal(t, first, apis[0])
	assert.Equal(t, second, apis[1])
}

func testMergeKeepsUnspecifiedFields(t *testing.T, s storage.Store) {
	ctx := context.Background()

	created, err := s.SaveApi(ctx, models.ApiRecordPatch{
		Name: ptr("GLM"), URL: ptr("https://glm"), Key: ptr("k"), Description: ptr("d"),
	})
	require.NoError(t, err)

	_, err = s.SaveApi(ctx, models.ApiRecordPatch{ID: ptr(created.ID), Description: ptr("x")})
	require.NoError(t, err)

	apis, err := s.ListApis(ctx, "")
	require.NoError(t, err)
	require.Len(t, apis, 1)
	assert.Equal(t, models.ApiRecord{ID: created.ID, Name: "GLM", URL: "https://glm", Key: "k", Description: "x"}, apis[0])
}

func testSaveWithUnknownIDCreates(t *testing.T, s storage.Store) {
	ctx := context.Background()

	saved, err := s.SaveApi(ctx, models.ApiRecordPatch{ID: ptr(int64(42)), Name: ptr("ghost")})
	require.NoError(t, err)
	assert.NotEqual(t, int64(42), saved.ID)

	apis, err := s.ListApis(ctx, "")
	require.NoError(t, err)
	require.Len(t, apis, 1)
	assert.Equal(t, "ghost", apis[0].Name)
}

func testDeleteUnknownIsNoop(t *testing.T, s storage.Store) {
	ctx := context.Background()

	a, err := s.SaveApi(ctx, models.ApiRecordPatch{Name: ptr("a")})
	require.NoError(t, err)
	_, err = s.SaveCredential(ctx, models.CredentialPatch{SiteName: ptr("c")})
	require.NoError(t, err)

	require.NoError(t, s.DeleteApi(ctx, a.ID+1000))
	require.NoError(t, s.DeleteCredential(ctx, 1))
	require.NoError(t, s.DeleteSession(ctx, "missing"))

	apis, err := s.ListApis(ctx, "")
	require.NoError(t, err)
	assert.Len(t, apis, 1)
	creds, err := s.ListCredentials(ctx, "")
	require.NoError(t, err)
	assert.Len(t, creds, 1)

	require.NoError(t, s.DeleteApi(ctx, a.ID))
	apis, err = s.ListApis(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, apis)
}

func testSearchSemantics(t *testing.T, s storage.Store) {
	ctx := context.Background()

	for _, name := range []string{"GLM API", "glm-test", "OpenAI"} {
		_, err := s.SaveApi(ctx, models.ApiRecordPatch{Name: ptr(name), URL: ptr("https://glm.example/" + name)})
		require.NoError(t, err)
	}

	all, err := s.ListApis(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	matched, err := s.ListApis(ctx, "glm")
	require.NoError(t, err)
	require.Len(t, matched, 2)
	assert.Equal(t, "GLM API", matched[0].Name)
	assert.Equal(t, "glm-test", matched[1].Name)

	none, err := s.ListApis(ctx, "zzz")
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)

	_, err = s.SaveCredential(ctx, models.CredentialPatch{SiteName: ptr("GitHub"), Username: ptr("glm")})
	require.NoError(t, err)
	creds, err := s.ListCredentials(ctx, "GITHUB")
	require.NoError(t, err)
	assert.Len(t, creds, 1)
	creds, err = s.ListCredentials(ctx, "glm")
	require.NoError(t, err)
	assert.Empty(t, creds, "credentials search only the site name")
}

func testCredentialLifecycle(t *testing.T, s storage.Store) {
	ctx := context.Background()

	created, err := s.SaveCredential(ctx, models.CredentialPatch{
		SiteName: ptr("site"), URL: ptr("https://site"), Username: ptr("me"), Password: ptr("secret"),
	})
	require.NoError(t, err)
	require.NotEmpty(t, created.CreatedAt)

	_, err = s.SaveCredential(ctx, models.CredentialPatch{ID: ptr(created.ID), Password: ptr("rotated")})
	require.NoError(t, err)

	creds, err := s.ListCredentials(ctx, "")
	require.NoError(t, err)
	require.Len(t, creds, 1)
	assert.Equal(t, "rotated", creds[0].Password)
	assert.Equal(t, "me", creds[0].Username)
	assert.Equal(t, created.CreatedAt, creds[0].CreatedAt)
}

func testSettingsShallowMerge(t *testing.T, s storage.Store) {
	ctx := context.Background()

	require.NoError(t, s.SaveSettings(ctx, models.Settings{"apiKey": "k1", "theme": "light"}))
	require.NoError(t, s.SaveSettings(ctx, models.Settings{"theme": "dark"}))

	settings, err := s.GetSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, "k1", settings.APIKey())
	assert.Equal(t, "dark", settings.Theme())
	assert.Equal(t, "glm", settings.Provider())
}

func testSessionUpsertAndDelete(t *testing.T, s storage.Store) {
	ctx := context.Background()

	a := models.Session{ID: "a", Title: "A", Messages: []models.ChatMessage{{Role: "user", Content: "hi"}}, UpdatedAt: 1}
	b := models.Session{ID: "b", Title: "B", UpdatedAt: 2}
	require.NoError(t, s.SaveSession(ctx, a))
	require.NoError(t, s.SaveSession(ctx, b))

	sessions, err := s.GetSessions(ctx)
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.Equal(t, "b", sessions[0].ID, "new sessions go in front")
	assert.NotNil(t, sessions[0].Messages)

	a.Title = "A2"
	a.UpdatedAt = 3
	require.NoError(t, s.SaveSession(ctx, a))
	sessions, err = s.GetSessions(ctx)
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.Equal(t, "a", sessions[1].ID, "existing sessions keep their slot")
	assert.Equal(t, "A2", sessions[1].Title)
	assert.Equal(t, a.Messages, sessions[1].Messages)

	require.NoError(t, s.DeleteSession(ctx, "b"))
	sessions, err = s.GetSessions(ctx)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, "a", sessions[0].ID)
}
