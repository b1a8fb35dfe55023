package unit_tests

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"apivault/internal/events"
	"apivault/internal/llm/client"
	"apivault/internal/models"
	"apivault/internal/services"
)

func TestChatService_Init_FirstRunCreatesNewChat(t *testing.T) {
	f := newChatFixture(t)

	state, err := f.svc.Init()
	require.NoError(t, err)

	require.Len(t, state.Sessions, 1)
	assert.Equal(t, services.DefaultSessionTitle, state.Sessions[0].Title)
	assert.Equal(t, state.Sessions[0].ID, state.ActiveID)
	assert.Empty(t, state.Messages)

	stored, _ := f.store.Memory.GetSessions(context.Background())
	require.Len(t, stored, 1)
	assert.Equal(t, state.ActiveID, stored[0].ID)

	assert.Equal(t, services.ChatConfig{
		Model:        "glm-4-flash",
		Provider:     "glm",
		SystemPrompt: services.DefaultSystemPrompt,
	}, state.Config)
	assert.Contains(t, f.recorder.Names(), events.ChatUpdated)
}

func TestChatService_Init_LoadsMostRecentSession(t *testing.T) {
	f := newChatFixture(t)
	ctx := context.Background()
	require.NoError(t, f.store.Memory.SaveSession(ctx, models.Session{ID: "old", Title: "Old", UpdatedAt: 100,
		Messages: []models.ChatMessage{{Role: models.RoleUser, Content: "old"}}}))
	require.NoError(t, f.store.Memory.SaveSession(ctx, models.Session{ID: "new", Title: "New", UpdatedAt: 200,
		Messages: []models.ChatMessage{{Role: models.RoleUser, Content: "new"}}}))
	require.NoError(t, f.store.Memory.SaveSession(ctx, models.Session{ID: "mid", Title: "Mid", UpdatedAt: 150}))
	require.NoError(t, f.store.Memory.SaveSettings(ctx, models.Settings{
		"apiKey": "k", "model": "deepseek-chat", "provider": "deepseek", "systemPrompt": "terse",
	}))

	state, err := f.svc.Init()
	require.NoError(t, err)

	require.Len(t, state.Sessions, 3)
	assert.Equal(t, []string{"new", "mid", "old"}, sessionIDs(state.Sessions))
	assert.Equal(t, "new", state.ActiveID)
	assert.Equal(t, "new", state.Messages[0].Content)
	assert.Equal(t, services.ChatConfig{APIKey: "k", Model: "deepseek-chat", Provider: "deepseek", SystemPrompt: "terse"}, state.Config)
}

func TestChatService_Init_MigratesLegacyHistory(t *testing.T) {
	f := newChatFixture(t)
	ctx := context.Background()
	history := []models.ChatMessage{
		{Role: models.RoleUser, Content: "这是一个非常长的第一条消息用于测试标题截断功能"},
		{Role: models.RoleAssistant, Content: "ok"},
	}
	require.NoError(t, f.store.Memory.SaveChatHistory(ctx, history))

	state, err := f.svc.Init()
	require.NoError(t, err)

	require.Len(t, state.Sessions, 1)
	assert.Equal(t, "这是一个非常长的第一条消息用于测试标题截", state.Sessions[0].Title)
	assert.Len(t, []rune(state.Sessions[0].Title), 20)
	assert.Equal(t, history, state.Messages)
	assert.Equal(t, state.Sessions[0].ID, state.ActiveID)

	stored, _ := f.store.Memory.GetSessions(ctx)
	require.Len(t, stored, 1)
	assert.Equal(t, history, stored[0].Messages)
}

func TestChatService_Init_MigrationWithEmptyFirstEntry(t *testing.T) {
	f := newChatFixture(t)
	require.NoError(t, f.store.Memory.SaveChatHistory(context.Background(), []models.ChatMessage{
		{Role: models.RoleSystem, Content: ""},
		{Role: models.RoleUser, Content: "hi"},
	}))

	state, err := f.svc.Init()
	require.NoError(t, err)
	assert.Equal(t, services.RecoveredSessionTitle, state.Sessions[0].Title)
}

func TestChatService_Init_SettingsError(t *testing.T) {
	f := newChatFixture(t)
	f.store.GetSettingsFunc = func(context.Context) (models.Settings, error) {
		return nil, errors.New("disk gone")
	}

	_, err := f.svc.Init()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk gone")
}

func TestChatService_Send_AppendsReplyAndTitles(t *testing.T) {
	f := newChatFixture(t)
	var seen []client.Config
	f.svc = services.NewChatService(services.ChatServiceConfig{
		Store:     f.store,
		Providers: providers(t),
		Emitter:   f.recorder,
		NewModel:  f.model.Factory(&seen),
		Now:       newStepClock().Now,
	})
	f.model.GenerateFunc = func(_ context.Context, input []*schema.Message) (*schema.Message, error) {
		return schema.AssistantMessage("reply", nil), nil
	}
	_, err := f.svc.Init()
	require.NoError(t, err)
	require.NoError(t, f.svc.SaveConfig("key-1", "deepseek-chat", "be brief", "deepseek"))

	state, err := f.svc.Send("What is the capital of France?")
	require.NoError(t, err)

	require.Len(t, state.Messages, 2)
	assert.Equal(t, models.ChatMessage{Role: models.RoleUser, Content: "What is the capital of France?"}, state.Messages[0])
	assert.Equal(t, models.ChatMessage{Role: models.RoleAssistant, Content: "reply"}, state.Messages[1])
	assert.False(t, state.Loading)
	assert.Equal(t, "What is the cap", state.Sessions[0].Title)

	require.Len(t, f.model.Calls, 1)
	call := f.model.Calls[0]
	require.Len(t, call, 2)
	assert.Equal(t, schema.System, call[0].Role)
	assert.Equal(t, "be brief", call[0].Content)
	assert.Equal(t, schema.User, call[1].Role)

	require.Len(t, seen, 1)
	assert.Equal(t, "deepseek", seen[0].Provider.ID)
	assert.Equal(t, "key-1", seen[0].APIKey)
	assert.Equal(t, "deepseek-chat", seen[0].Model)

	stored, _ := f.store.Memory.GetSessions(context.Background())
	require.Len(t, stored, 1)
	assert.Len(t, stored[0].Messages, 2)
	assert.Equal(t, state.Sessions[0].Title, stored[0].Title)
}

func TestChatService_Send_ProviderErrorBecomesMessage(t *testing.T) {
	f := newChatFixture(t)
	f.model.GenerateFunc = func(context.Context, []*schema.Message) (*schema.Message, error) {
		return nil, errors.New("401 invalid api key")
	}
	_, err := f.svc.Init()
	require.NoError(t, err)
	require.NoError(t, f.svc.SaveConfig("k", "glm-4-flash", "sys", "glm"))

	state, err := f.svc.Send("hello")
	require.NoError(t, err)

	require.Len(t, state.Messages, 2)
	assert.Equal(t, models.RoleAssistant, state.Messages[1].Role)
	assert.Equal(t, "Error: 401 invalid api key", state.Messages[1].Content)
	assert.False(t, state.Loading)
}

func TestChatService_Send_BlankIgnored(t *testing.T) {
	f := newChatFixture(t)
	_, err := f.svc.Init()
	require.NoError(t, err)

	state, err := f.svc.Send("   \n\t")
	require.NoError(t, err)
	assert.Empty(t, state.Messages)
	assert.Zero(t, f.model.CallCount())
}

func TestChatService_Send_MissingKey(t *testing.T) {
	f := newChatFixture(t)
	_, err := f.svc.Init()
	require.NoError(t, err)

	state, err := f.svc.Send("hello")
	assert.ErrorIs(t, err, services.ErrAPIKeyMissing)
	assert.Empty(t, state.Messages)
	assert.Zero(t, f.model.CallCount())
}

func TestChatService_Send_FallsBackToKeyring(t *testing.T) {
	f := newChatFixture(t)
	f.keys.Keys = map[string]string{"glm": "from-keyring"}
	var seen []client.Config
	f.svc = services.NewChatService(services.ChatServiceConfig{
		Store:     f.store,
		Providers: providers(t),
		Keys:      f.keys,
		NewModel:  f.model.Factory(&seen),
	})
	_, err := f.svc.Init()
	require.NoError(t, err)

	_, err = f.svc.Send("hello")
	require.NoError(t, err)
	require.Len(t, seen, 1)
	assert.Equal(t, "from-keyring", seen[0].APIKey)
}

func TestChatService_Send_RejectsConcurrentSend(t *testing.T) {
	f := newChatFixture(t)
	release := make(chan struct{})
	f.model.GenerateFunc = func(context.Context, []*schema.Message) (*schema.Message, error) {
		<-release
		return schema.AssistantMessage("late", nil), nil
	}
	_, err := f.svc.Init()
	require.NoError(t, err)
	require.NoError(t, f.svc.SaveConfig("k", "m", "s", "glm"))

	done := make(chan error, 1)
	go func() {
		_, err := f.svc.Send("first")
		done <- err
	}()
	require.Eventually(t, func() bool { return f.svc.State().Loading }, time.Second, 5*time.Millisecond)

	_, err = f.svc.Send("second")
	assert.ErrorIs(t, err, services.ErrSendInProgress)

	close(release)
	require.NoError(t, <-done)

	state := f.svc.State()
	assert.False(t, state.Loading)
	require.Len(t, state.Messages, 2)
	assert.Equal(t, "late", state.Messages[1].Content)
}

func TestChatService_Send_ReplyFollowsOriginatingSession(t *testing.T) {
	f := newChatFixture(t)
	release := make(chan struct{})
	f.model.GenerateFunc = func(context.Context, []*schema.Message) (*schema.Message, error) {
		<-release
		return schema.AssistantMessage("answer", nil), nil
	}
	first, err := f.svc.Init()
	require.NoError(t, err)
	require.NoError(t, f.svc.SaveConfig("k", "m", "s", "glm"))
	askingID := first.ActiveID

	done := make(chan struct{})
	go func() {
		_, _ = f.svc.Send("question")
		close(done)
	}()
	require.Eventually(t, func() bool { return f.svc.State().Loading }, time.Second, 5*time.Millisecond)

	other, err := f.svc.NewChat()
	require.NoError(t, err)
	close(release)
	<-done

	state := f.svc.State()
	assert.Equal(t, other.ActiveID, state.ActiveID)
	assert.Empty(t, state.Messages)

	stored, _ := f.store.Memory.GetSessions(context.Background())
	var asking models.Session
	for _, s := range stored {
		if s.ID == askingID {
			asking = s
		}
	}
	require.Len(t, asking.Messages, 2)
	assert.Equal(t, "answer", asking.Messages[1].Content)
}

func TestChatService_SetMessages_ResortsSessions(t *testing.T) {
	f := newChatFixture(t)
	ctx := context.Background()
	require.NoError(t, f.store.Memory.SaveSession(ctx, models.Session{ID: "a", Title: "A", UpdatedAt: 1}))
	require.NoError(t, f.store.Memory.SaveSession(ctx, models.Session{ID: "b", Title: "B", UpdatedAt: 2}))

	state, err := f.svc.Init()
	require.NoError(t, err)
	require.Equal(t, []string{"b", "a"}, sessionIDs(state.Sessions))

	_, err = f.svc.LoadSession("a")
	require.NoError(t, err)
	state, err = f.svc.SetMessages([]models.ChatMessage{{Role: models.RoleUser, Content: "bump"}})
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b"}, sessionIDs(state.Sessions))
	assert.Equal(t, "A", state.Sessions[0].Title, "non-default titles are kept")
	assert.Greater(t, state.Sessions[0].UpdatedAt, int64(2))
}

func TestChatService_SetMessages_EmptyTranscriptNotPersisted(t *testing.T) {
	f := newChatFixture(t)
	_, err := f.svc.Init()
	require.NoError(t, err)

	saves := 0
	f.store.SaveSessionFunc = func(context.Context, models.Session) error {
		saves++
		return nil
	}
	_, err = f.svc.SetMessages(nil)
	require.NoError(t, err)
	assert.Zero(t, saves)
}

func TestChatService_SetMessages_StorageErrorKeepsList(t *testing.T) {
	f := newChatFixture(t)
	before, err := f.svc.Init()
	require.NoError(t, err)

	f.store.SaveSessionFunc = func(context.Context, models.Session) error {
		return errors.New("read-only filesystem")
	}
	state, err := f.svc.SetMessages([]models.ChatMessage{{Role: models.RoleUser, Content: "x"}})
	require.Error(t, err)
	assert.Equal(t, before.Sessions, state.Sessions)
	assert.Empty(t, state.Messages)
	assert.Empty(t, f.svc.State().Messages)
}

func TestChatService_Send_UserSaveErrorSkipsProvider(t *testing.T) {
	f := newChatFixture(t)
	_, err := f.svc.Init()
	require.NoError(t, err)
	require.NoError(t, f.svc.SaveConfig("k", "glm-4-flash", "sys", "glm"))

	f.store.SaveSessionFunc = func(context.Context, models.Session) error {
		return errors.New("disk full")
	}
	state, err := f.svc.Send("hello")
	require.ErrorContains(t, err, "disk full")
	assert.Empty(t, state.Messages)
	assert.False(t, state.Loading)
	assert.Equal(t, 0, f.model.CallCount())
}

func TestChatService_Send_ReplySaveErrorReturned(t *testing.T) {
	f := newChatFixture(t)
	_, err := f.svc.Init()
	require.NoError(t, err)
	require.NoError(t, f.svc.SaveConfig("k", "glm-4-flash", "sys", "glm"))

	saves := 0
	f.store.SaveSessionFunc = func(ctx context.Context, s models.Session) error {
		saves++
		if saves > 1 {
			return errors.New("disk full")
		}
		return f.store.Memory.SaveSession(ctx, s)
	}
	state, err := f.svc.Send("hello")
	require.ErrorContains(t, err, "disk full")
	assert.Equal(t, 1, f.model.CallCount())
	require.Len(t, state.Messages, 1, "reply is not kept when it could not be saved")
	assert.Equal(t, models.RoleUser, state.Messages[0].Role)
	assert.False(t, state.Loading)
}

func TestChatService_LoadSession_Unknown(t *testing.T) {
	f := newChatFixture(t)
	_, err := f.svc.Init()
	require.NoError(t, err)

	_, err = f.svc.LoadSession("nope")
	assert.ErrorIs(t, err, services.ErrSessionNotFound)
}

func TestChatService_DeleteSession_Declined(t *testing.T) {
	f := newChatFixture(t)
	state, err := f.svc.Init()
	require.NoError(t, err)
	f.confirm.Answer = false

	after, err := f.svc.DeleteSession(state.ActiveID)
	require.NoError(t, err)

	assert.Equal(t, 1, f.confirm.Asked)
	assert.Equal(t, state.Sessions, after.Sessions)
	stored, _ := f.store.Memory.GetSessions(context.Background())
	assert.Len(t, stored, 1)
}

func TestChatService_DeleteSession_ActiveFallsBackToMostRecent(t *testing.T) {
	f := newChatFixture(t)
	ctx := context.Background()
	require.NoError(t, f.store.Memory.SaveSession(ctx, models.Session{ID: "a", Title: "A", UpdatedAt: 1,
		Messages: []models.ChatMessage{{Role: models.RoleUser, Content: "from a"}}}))
	require.NoError(t, f.store.Memory.SaveSession(ctx, models.Session{ID: "b", Title: "B", UpdatedAt: 2}))
	_, err := f.svc.Init()
	require.NoError(t, err)

	state, err := f.svc.DeleteSession("b")
	require.NoError(t, err)

	assert.Equal(t, "a", state.ActiveID)
	assert.Equal(t, "from a", state.Messages[0].Content)
	assert.Equal(t, []string{"a"}, sessionIDs(state.Sessions))
}

func TestChatService_DeleteSession_LastOneCreatesNewChat(t *testing.T) {
	f := newChatFixture(t)
	first, err := f.svc.Init()
	require.NoError(t, err)

	state, err := f.svc.DeleteSession(first.ActiveID)
	require.NoError(t, err)

	require.Len(t, state.Sessions, 1)
	assert.NotEqual(t, first.ActiveID, state.ActiveID)
	assert.Equal(t, services.DefaultSessionTitle, state.Sessions[0].Title)
	stored, _ := f.store.Memory.GetSessions(context.Background())
	require.Len(t, stored, 1)
	assert.Equal(t, state.ActiveID, stored[0].ID)
}

func TestChatService_DeleteSession_InactiveKeepsActive(t *testing.T) {
	f := newChatFixture(t)
	ctx := context.Background()
	require.NoError(t, f.store.Memory.SaveSession(ctx, models.Session{ID: "a", UpdatedAt: 1}))
	require.NoError(t, f.store.Memory.SaveSession(ctx, models.Session{ID: "b", UpdatedAt: 2}))
	_, err := f.svc.Init()
	require.NoError(t, err)

	state, err := f.svc.DeleteSession("a")
	require.NoError(t, err)
	assert.Equal(t, "b", state.ActiveID)
	assert.Equal(t, []string{"b"}, sessionIDs(state.Sessions))
}

func TestChatService_SaveConfig(t *testing.T) {
	f := newChatFixture(t)
	_, err := f.svc.Init()
	require.NoError(t, err)

	assert.ErrorIs(t, f.svc.SaveConfig("  ", "m", "s", "glm"), services.ErrAPIKeyMissing)

	require.NoError(t, f.store.Memory.SaveSettings(context.Background(), models.Settings{"theme": "dark"}))
	require.NoError(t, f.svc.SaveConfig("k", "qwen-plus", "sys", "qwen"))

	settings, _ := f.store.Memory.GetSettings(context.Background())
	assert.Equal(t, "k", settings.APIKey())
	assert.Equal(t, "qwen-plus", settings.Model())
	assert.Equal(t, "qwen", settings.Provider())
	assert.Equal(t, "sys", settings.SystemPrompt())
	assert.Equal(t, "dark", settings.Theme(), "other keys survive")
	assert.Equal(t, "qwen", f.svc.State().Config.Provider)
}

func sessionIDs(sessions []models.Session) []string {
	out := make([]string, 0, len(sessions))
	for _, s := range sessions {
		out = append(out, s.ID)
	}
	return out
}
