package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"apivault/internal/models"
)

func TestBuildMessages_SystemFirst(t *testing.T) {
	msgs := BuildMessages("be nice", []models.ChatMessage{
		{Role: models.RoleUser, Content: "hi"},
		{Role: models.RoleAssistant, Content: "hello"},
		{Role: models.RoleUser, Content: "again"},
	})

	require.Len(t, msgs, 4)
	assert.Equal(t, schema.System, msgs[0].Role)
	assert.Equal(t, "be nice", msgs[0].Content)
	assert.Equal(t, schema.User, msgs[1].Role)
	assert.Equal(t, schema.Assistant, msgs[2].Role)
	assert.Equal(t, "again", msgs[3].Content)
}

func TestNewChatModel_RequiresKey(t *testing.T) {
	_, err := NewChatModel(context.Background(), Config{
		Provider: models.Provider{ID: "glm", Kind: models.ProviderKindOpenAI},
		APIKey:   "  ",
	})
	require.Error(t, err)
}

func TestNewChatModel_UnsupportedKind(t *testing.T) {
	_, err := NewChatModel(context.Background(), Config{
		Provider: models.Provider{ID: "x", Kind: "carrier-pigeon"},
		APIKey:   "k",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported provider kind")
}

func TestComplete_OpenAICompatibleWire(t *testing.T) {
	var (
		gotPath string
		gotAuth string
		gotBody struct {
			Model    string `json:"model"`
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "chatcmpl-1",
			"object": "chat.completion",
			"created": 1700000000,
			"model": "glm-4-flash",
			"choices": [{"index": 0, "message": {"role": "assistant", "content": "pong"}, "finish_reason": "stop"}],
			"usage": {"prompt_tokens": 3, "completion_tokens": 1, "total_tokens": 4}
		}`))
	}))
	defer srv.Close()

	ctx := context.Background()
	cm, err := NewChatModel(ctx, Config{
		Provider: models.Provider{ID: "glm", Kind: models.ProviderKindOpenAI, BaseURL: srv.URL, DefaultModel: "glm-4-flash"},
		APIKey:   "secret",
	})
	require.NoError(t, err)

	reply, err := Complete(ctx, cm, BuildMessages("sys", []models.ChatMessage{{Role: models.RoleUser, Content: "ping"}}))
	require.NoError(t, err)

	assert.Equal(t, "pong", reply)
	assert.Equal(t, "/chat/completions", gotPath)
	assert.Equal(t, "Bearer secret", gotAuth)
	assert.Equal(t, "glm-4-flash", gotBody.Model)
	require.Len(t, gotBody.Messages, 2)
	assert.Equal(t, "system", gotBody.Messages[0].Role)
	assert.Equal(t, "ping", gotBody.Messages[1].Content)
}

func TestComplete_HTTPErrorSurfaces(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error": {"message": "invalid api key", "type": "auth"}}`))
	}))
	defer srv.Close()

	ctx := context.Background()
	cm, err := NewChatModel(ctx, Config{
		Provider: models.Provider{ID: "openai", Kind: models.ProviderKindOpenAI, BaseURL: srv.URL},
		APIKey:   "bad",
		Model:    "gpt-4o",
	})
	require.NoError(t, err)

	_, err = Complete(ctx, cm, BuildMessages("", []models.ChatMessage{{Role: models.RoleUser, Content: "hi"}}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid api key")
}
