package main

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"

	"apivault/internal/fallback"
	"apivault/internal/models"
	"apivault/internal/services"
)

func run(t *testing.T, dataDir string, stdin string, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(bytes.NewBufferString(stdin))
	cmd.SetArgs(append([]string{"--data-dir", dataDir}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestVaultctl_ApisLifecycle(t *testing.T) {
	dir := t.TempDir()

	_, err := run(t, dir, "", "apis", "save", "--name", "GLM API", "--url", "https://open.bigmodel.cn", "--key", "sk-1")
	require.NoError(t, err)
	_, err = run(t, dir, "", "apis", "save", "--name", "Other")
	require.NoError(t, err)

	out, err := run(t, dir, "", "--json", "apis", "list", "glm")
	require.NoError(t, err)
	var apis []models.ApiRecord
	require.NoError(t, json.Unmarshal([]byte(out), &apis))
	require.Len(t, apis, 1)
	assert.Equal(t, "sk-1", apis[0].Key)

	id := apis[0].ID
	_, err = run(t, dir, "", "apis", "save", "--id", jsonInt(id), "--description", "prod")
	require.NoError(t, err)

	out, err = run(t, dir, "", "--json", "apis", "list")
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(out), &apis))
	require.Len(t, apis, 2)
	assert.Equal(t, "GLM API", apis[0].Name, "untouched fields survive the merge")
	assert.Equal(t, "prod", apis[0].Description)

	out, err = run(t, dir, "", "apis", "list")
	require.NoError(t, err)
	assert.NotContains(t, out, "sk-1", "table output masks keys")

	_, err = run(t, dir, "", "apis", "delete", jsonInt(id))
	require.NoError(t, err)
	out, err = run(t, dir, "", "--json", "apis", "list")
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(out), &apis))
	assert.Len(t, apis, 1)
}

func TestVaultctl_CredsAndSettings(t *testing.T) {
	dir := t.TempDir()

	_, err := run(t, dir, "", "creds", "save", "--site-name", "GitHub", "--username", "me", "--password", "pw")
	require.NoError(t, err)
	out, err := run(t, dir, "", "--json", "creds", "list", "git")
	require.NoError(t, err)
	var creds []models.Credential
	require.NoError(t, json.Unmarshal([]byte(out), &creds))
	require.Len(t, creds, 1)
	assert.NotEmpty(t, creds[0].CreatedAt)

	_, err = run(t, dir, "", "settings", "set", "theme=dark", "language=en")
	require.NoError(t, err)
	out, err = run(t, dir, "", "settings", "get", "theme")
	require.NoError(t, err)
	assert.Equal(t, "dark\n", out)

	out, err = run(t, dir, "", "--json", "settings", "get")
	require.NoError(t, err)
	var settings map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &settings))
	assert.Equal(t, "en", settings["language"])
	assert.Equal(t, "glm", settings["provider"])

	_, err = run(t, dir, "", "settings", "set", "novalue")
	assert.Error(t, err)
}

func seedSession(t *testing.T, dir string, session models.Session) {
	t.Helper()
	local, err := fallback.Open(fallback.Config{
		Path:   filepath.Join(dir, fallback.StorageFile),
		Logger: zerolog.Nop(),
	})
	require.NoError(t, err)
	require.NoError(t, local.SaveSession(context.Background(), session))
	require.NoError(t, local.Close())
}

func listSessions(t *testing.T, dir string) []models.Session {
	t.Helper()
	out, err := run(t, dir, "", "--json", "sessions", "list")
	require.NoError(t, err)
	var sessions []models.Session
	require.NoError(t, json.Unmarshal([]byte(out), &sessions))
	return sessions
}

func TestVaultctl_SessionsDeleteNeedsConfirmation(t *testing.T) {
	keyring.MockInit()
	dir := t.TempDir()
	seedSession(t, dir, models.Session{ID: "s1", Title: "Hello", Messages: []models.ChatMessage{}, UpdatedAt: 1})

	_, err := run(t, dir, "n\n", "sessions", "delete", "s1")
	require.NoError(t, err)
	sessions := listSessions(t, dir)
	require.Len(t, sessions, 1)
	assert.Equal(t, "s1", sessions[0].ID, "declined prompt keeps the session")

	_, err = run(t, dir, "y\n", "sessions", "delete", "s1")
	require.NoError(t, err)
	sessions = listSessions(t, dir)
	require.Len(t, sessions, 1)
	assert.NotEqual(t, "s1", sessions[0].ID, "deleting the last session starts a new one")
}

func TestVaultctl_SessionsDeleteUnknownHasNoSideEffects(t *testing.T) {
	keyring.MockInit()
	dir := t.TempDir()

	_, err := run(t, dir, "", "sessions", "delete", "missing", "--yes")
	assert.ErrorIs(t, err, services.ErrSessionNotFound)
	assert.Empty(t, listSessions(t, dir))
}

func TestVaultctl_ChatSendNewOnFreshStoreKeepsOneSession(t *testing.T) {
	keyring.MockInit()
	dir := t.TempDir()

	_, err := run(t, dir, "", "chat", "send", "--new", "hello")
	assert.ErrorIs(t, err, services.ErrAPIKeyMissing)
	assert.Len(t, listSessions(t, dir), 1)
}

func TestVaultctl_ChatSendUnknownSession(t *testing.T) {
	keyring.MockInit()
	dir := t.TempDir()

	_, err := run(t, dir, "", "chat", "send", "--session", "missing", "hello")
	assert.ErrorIs(t, err, services.ErrSessionNotFound)
	assert.Empty(t, listSessions(t, dir))
}

func TestVaultctl_ChatSendWithoutKey(t *testing.T) {
	keyring.MockInit()
	dir := t.TempDir()

	_, err := run(t, dir, "", "chat", "send", "hello")
	assert.ErrorIs(t, err, services.ErrAPIKeyMissing)
}

func jsonInt(v int64) string {
	data, _ := json.Marshal(v)
	return string(data)
}
