package fallback

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"apivault/internal/models"
	"apivault/internal/storage"
	"apivault/internal/storage/storagetest"
)

func openTemp(t *testing.T) *LocalStore {
	t.Helper()
	store, err := Open(Config{
		Path:   filepath.Join(t.TempDir(), StorageFile),
		Logger: zerolog.Nop(),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestLocalStore_Conformance(t *testing.T) {
	storagetest.Run(t, func(t *testing.T) storage.Store {
		return openTemp(t)
	})
}

func TestLocalStore_MalformedValueDegradesToDefault(t *testing.T) {
	ctx := context.Background()
	store := openTemp(t)

	for _, key := range []string{KeyApis, KeyCreds, KeySessions, KeySettings, KeyChatHistory} {
		require.NoError(t, store.SetItem(ctx, key, "{broken"))
	}

	apis, err := store.ListApis(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, apis)

	creds, err := store.ListCredentials(ctx, "x")
	require.NoError(t, err)
	assert.Empty(t, creds)

	sessions, err := store.GetSessions(ctx)
	require.NoError(t, err)
	assert.Empty(t, sessions)

	settings, err := store.GetSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.DefaultSettings(), settings)

	history, err := store.GetChatHistory(ctx)
	require.NoError(t, err)
	assert.Empty(t, history)

	_, err = store.SaveApi(ctx, models.ApiRecordPatch{})
	require.NoError(t, err)
	apis, err = store.ListApis(ctx, "")
	require.NoError(t, err)
	assert.Len(t, apis, 1)
}

func TestLocalStore_ValuesUseDocumentShapes(t *testing.T) {
	ctx := context.Background()
	store := openTemp(t)

	name := "GLM"
	_, err := store.SaveApi(ctx, models.ApiRecordPatch{Name: &name})
	require.NoError(t, err)

	raw, ok, err := store.GetItem(ctx, KeyApis)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Contains(t, raw, `"name":"GLM"`)
	assert.Contains(t, raw, `"description":""`)
}

func TestLocalStore_ChatHistoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := openTemp(t)

	history := []models.ChatMessage{
		{Role: models.RoleUser, Content: "hello"},
		{Role: models.RoleAssistant, Content: "hi there"},
	}
	require.NoError(t, store.SaveChatHistory(ctx, history))

	got, err := store.GetChatHistory(ctx)
	require.NoError(t, err)
	assert.Equal(t, history, got)
}

func TestLocalStore_SetItemOverwrites(t *testing.T) {
	ctx := context.Background()
	store := openTemp(t)

	require.NoError(t, store.SetItem(ctx, "k", "1"))
	require.NoError(t, store.SetItem(ctx, "k", "2"))

	value, ok, err := store.GetItem(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "2", value)

	_, ok, err = store.GetItem(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)
}
