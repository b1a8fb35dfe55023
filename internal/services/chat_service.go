package services

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/cloudwego/eino/schema"
	"github.com/rs/zerolog"

	"apivault/internal/events"
	"apivault/internal/ids"
	"apivault/internal/llm/client"
	"apivault/internal/models"
	"apivault/internal/storage"
)

const (
	DefaultSessionTitle   = "New Chat"
	RecoveredSessionTitle = "Recovered Chat"
	DefaultSystemPrompt   = "你是一个乐于助人的AI助手。"
	DefaultChatModel      = "glm-4-flash"

	autoTitleRunes      = 15
	recoveredTitleRunes = 20
)

// KeySource looks up a provider key outside the settings document.
type KeySource interface {
	GetApiKey(provider string) (string, error)
}

type ChatConfig struct {
	APIKey       string `json:"apiKey"`
	Model        string `json:"model"`
	Provider     string `json:"provider"`
	SystemPrompt string `json:"systemPrompt"`
}

// ChatState is the snapshot the chat view renders.
type ChatState struct {
	Sessions []models.Session     `json:"sessions"`
	ActiveID string               `json:"activeId"`
	Messages []models.ChatMessage `json:"messages"`
	Loading  bool                 `json:"loading"`
	Config   ChatConfig           `json:"config"`
}

type ChatServiceConfig struct {
	Store     storage.Store
	Providers ProviderService
	// Legacy is the pre-sessions history read once by Init. Optional.
	Legacy storage.LegacyHistory
	// Keys is consulted when the settings carry no apiKey. Optional.
	Keys KeySource
	// Confirmer gates DeleteSession. Nil approves every deletion.
	Confirmer Confirmer
	Emitter   events.Emitter
	// NewModel defaults to client.NewChatModel.
	NewModel   client.Factory
	HTTPClient *http.Client
	Now        func() time.Time
	Logger     zerolog.Logger
}

// ChatService owns the chat sessions: which one is active, its transcript,
// and sending messages to the configured provider. Every transcript change
// is written through to the store.
type ChatService struct {
	store      storage.Store
	legacy     storage.LegacyHistory
	providers  ProviderService
	keys       KeySource
	confirm    Confirmer
	emitter    events.Emitter
	newModel   client.Factory
	httpClient *http.Client
	now        func() time.Time
	log        zerolog.Logger
	context    context.Context

	mu       sync.Mutex
	sessions []models.Session
	activeID string
	messages []models.ChatMessage
	loading  bool
	config   ChatConfig
}

func NewChatService(cfg ChatServiceConfig) *ChatService {
	s := &ChatService{
		store:      cfg.Store,
		legacy:     cfg.Legacy,
		providers:  cfg.Providers,
		keys:       cfg.Keys,
		confirm:    cfg.Confirmer,
		emitter:    cfg.Emitter,
		newModel:   cfg.NewModel,
		httpClient: cfg.HTTPClient,
		now:        cfg.Now,
		log:        cfg.Logger.With().Str("component", "chat").Logger(),
		config:     defaultChatConfig(),
		messages:   []models.ChatMessage{},
		sessions:   []models.Session{},
	}
	if s.confirm == nil {
		s.confirm = AutoConfirm(true)
	}
	if s.emitter == nil {
		s.emitter = events.Nop{}
	}
	if s.newModel == nil {
		s.newModel = client.NewChatModel
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

func defaultChatConfig() ChatConfig {
	return ChatConfig{
		Model:        DefaultChatModel,
		Provider:     DefaultProviderID,
		SystemPrompt: DefaultSystemPrompt,
	}
}

func (s *ChatService) Startup(ctx context.Context) {
	s.context = ctx
}

func (s *ChatService) ctx() context.Context {
	if s.context == nil {
		return context.Background()
	}
	return s.context
}

// Init loads the model config and sessions. With no sessions stored it
// migrates the legacy history into a session, or starts a new chat.
func (s *ChatService) Init() (ChatState, error) {
	ctx := s.ctx()

	s.mu.Lock()
	state, err := s.initLocked(ctx)
	s.mu.Unlock()
	if err != nil {
		return state, err
	}
	s.emit(ctx, state.ActiveID, "chat initialised")
	return state, nil
}

func (s *ChatService) initLocked(ctx context.Context) (ChatState, error) {
	settings, err := s.store.GetSettings(ctx)
	if err != nil {
		return s.stateLocked(), fmt.Errorf("load settings: %w", err)
	}
	cfg := defaultChatConfig()
	if v := settings.APIKey(); v != "" {
		cfg.APIKey = v
	}
	if v := settings.Model(); v != "" {
		cfg.Model = v
	}
	if v := settings.Provider(); v != "" {
		cfg.Provider = v
	}
	if v := settings.SystemPrompt(); v != "" {
		cfg.SystemPrompt = v
	}
	s.config = cfg

	sessions, err := s.store.GetSessions(ctx)
	if err != nil {
		return s.stateLocked(), fmt.Errorf("load sessions: %w", err)
	}
	if len(sessions) > 0 {
		sortSessions(sessions)
		s.sessions = sessions
		s.activate(sessions[0])
		return s.stateLocked(), nil
	}

	history := s.legacyHistory(ctx)
	if len(history) > 0 {
		now := s.now()
		title := leadingRunes(history[0].Content, recoveredTitleRunes)
		if title == "" {
			title = RecoveredSessionTitle
		}
		recovered := models.Session{
			ID:        ids.NewSessionID(now),
			Title:     title,
			Messages:  cloneMessages(history),
			UpdatedAt: now.UnixMilli(),
		}
		if err := s.store.SaveSession(ctx, recovered); err != nil {
			return s.stateLocked(), fmt.Errorf("save recovered session: %w", err)
		}
		s.log.Info().Str("session_id", recovered.ID).Int("messages", len(history)).Msg("migrated legacy chat history")
		s.sessions = []models.Session{recovered}
		s.activate(recovered)
		return s.stateLocked(), nil
	}

	if err := s.newChatLocked(ctx); err != nil {
		return s.stateLocked(), err
	}
	return s.stateLocked(), nil
}

func (s *ChatService) legacyHistory(ctx context.Context) []models.ChatMessage {
	if s.legacy == nil {
		return nil
	}
	history, err := s.legacy.GetChatHistory(ctx)
	if err != nil {
		s.log.Warn().Err(err).Msg("legacy chat history unreadable")
		return nil
	}
	return history
}

// NewChat starts an empty session and makes it active.
func (s *ChatService) NewChat() (ChatState, error) {
	ctx := s.ctx()

	s.mu.Lock()
	err := s.newChatLocked(ctx)
	state := s.stateLocked()
	s.mu.Unlock()
	if err != nil {
		return state, err
	}
	s.emit(ctx, state.ActiveID, "new chat")
	return state, nil
}

func (s *ChatService) newChatLocked(ctx context.Context) error {
	now := s.now()
	session := models.Session{
		ID:        ids.NewSessionID(now),
		Title:     DefaultSessionTitle,
		Messages:  []models.ChatMessage{},
		UpdatedAt: now.UnixMilli(),
	}
	if err := s.store.SaveSession(ctx, session); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	s.sessions = append([]models.Session{session}, s.sessions...)
	s.activate(session)
	return nil
}

// LoadSession makes id the active session. Nothing is written.
func (s *ChatService) LoadSession(id string) (ChatState, error) {
	s.mu.Lock()
	idx := s.indexOf(id)
	if idx < 0 {
		state := s.stateLocked()
		s.mu.Unlock()
		return state, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	s.activate(s.sessions[idx])
	state := s.stateLocked()
	s.mu.Unlock()

	s.emit(s.ctx(), id, "session loaded")
	return state, nil
}

// SetMessages replaces the active transcript and writes the session.
func (s *ChatService) SetMessages(messages []models.ChatMessage) (ChatState, error) {
	ctx := s.ctx()

	s.mu.Lock()
	staged := cloneMessages(messages)
	err := s.saveTranscriptLocked(ctx, s.activeID, staged)
	if err == nil {
		s.messages = staged
	}
	state := s.stateLocked()
	s.mu.Unlock()
	if err != nil {
		return state, err
	}
	s.emit(ctx, state.ActiveID, "messages updated")
	return state, nil
}

// DeleteSession removes a session once the user confirms. Deleting the
// active session activates the most recent remaining one, or a new chat.
func (s *ChatService) DeleteSession(id string) (ChatState, error) {
	ctx := s.ctx()

	ok, err := s.confirm.Confirm(ctx, "Delete chat", "Delete this chat session?")
	if err != nil {
		return s.State(), fmt.Errorf("confirm delete: %w", err)
	}
	if !ok {
		return s.State(), nil
	}

	s.mu.Lock()
	state, err := s.deleteLocked(ctx, id)
	s.mu.Unlock()
	if err != nil {
		return state, err
	}
	s.emit(ctx, state.ActiveID, "session deleted")
	return state, nil
}

func (s *ChatService) deleteLocked(ctx context.Context, id string) (ChatState, error) {
	if err := s.store.DeleteSession(ctx, id); err != nil {
		return s.stateLocked(), fmt.Errorf("delete session: %w", err)
	}

	remaining := make([]models.Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		if sess.ID != id {
			remaining = append(remaining, sess)
		}
	}
	s.sessions = remaining

	if id == s.activeID {
		if len(s.sessions) > 0 {
			s.activate(s.sessions[0])
		} else if err := s.newChatLocked(ctx); err != nil {
			s.activeID = ""
			s.messages = []models.ChatMessage{}
			return s.stateLocked(), err
		}
	}
	return s.stateLocked(), nil
}

// SaveConfig persists the model config. An empty apiKey is rejected.
func (s *ChatService) SaveConfig(apiKey, model, systemPrompt, provider string) error {
	if strings.TrimSpace(apiKey) == "" {
		return ErrAPIKeyMissing
	}
	ctx := s.ctx()

	s.mu.Lock()
	defer s.mu.Unlock()

	patch := models.Settings{
		models.SettingAPIKey:       apiKey,
		models.SettingModel:        model,
		models.SettingSystemPrompt: systemPrompt,
		models.SettingProvider:     provider,
	}
	if err := s.store.SaveSettings(ctx, patch); err != nil {
		return fmt.Errorf("save config: %w", err)
	}
	s.config = ChatConfig{APIKey: apiKey, Model: model, Provider: provider, SystemPrompt: systemPrompt}
	return nil
}

// Send appends text as a user message, asks the provider for a reply and
// appends it. A failed request becomes an assistant message starting with
// "Error: ". A failed save is returned and leaves the transcript as it was.
// Only one send may be in flight.
func (s *ChatService) Send(text string) (ChatState, error) {
	if strings.TrimSpace(text) == "" {
		return s.State(), nil
	}
	ctx := s.ctx()

	s.mu.Lock()
	if s.loading {
		state := s.stateLocked()
		s.mu.Unlock()
		return state, ErrSendInProgress
	}
	cfg := s.config
	apiKey := s.resolveKeyLocked(cfg)
	if apiKey == "" {
		state := s.stateLocked()
		s.mu.Unlock()
		return state, ErrAPIKeyMissing
	}
	if s.activeID == "" {
		if err := s.newChatLocked(ctx); err != nil {
			state := s.stateLocked()
			s.mu.Unlock()
			return state, err
		}
	}
	sessionID := s.activeID
	staged := append(cloneMessages(s.messages), models.ChatMessage{Role: models.RoleUser, Content: text})
	if err := s.saveTranscriptLocked(ctx, sessionID, staged); err != nil {
		state := s.stateLocked()
		s.mu.Unlock()
		return state, err
	}
	s.messages = staged
	transcript := cloneMessages(s.messages)
	s.loading = true
	state := s.stateLocked()
	s.mu.Unlock()
	s.emit(ctx, state.ActiveID, "message sent")

	reply := s.complete(ctx, cfg, apiKey, transcript)

	s.mu.Lock()
	s.loading = false
	var saveErr error
	if s.activeID == sessionID {
		staged := append(cloneMessages(s.messages), reply)
		if saveErr = s.saveTranscriptLocked(ctx, sessionID, staged); saveErr == nil {
			s.messages = staged
		}
	} else if idx := s.indexOf(sessionID); idx >= 0 {
		// The user switched sessions mid-request; the reply still belongs
		// to the session that asked.
		msgs := append(cloneMessages(s.sessions[idx].Messages), reply)
		saveErr = s.saveTranscriptLocked(ctx, sessionID, msgs)
	}
	state = s.stateLocked()
	s.mu.Unlock()

	if saveErr != nil {
		s.log.Warn().Err(saveErr).Str("session_id", sessionID).Msg("reply not persisted")
		return state, saveErr
	}
	s.emit(ctx, sessionID, "reply received")
	return state, nil
}

func (s *ChatService) resolveKeyLocked(cfg ChatConfig) string {
	if cfg.APIKey != "" {
		return cfg.APIKey
	}
	if s.keys == nil {
		return ""
	}
	provider := s.providers.Resolve(cfg.Provider)
	key, err := s.keys.GetApiKey(provider.ID)
	if err != nil {
		return ""
	}
	return key
}

func (s *ChatService) complete(ctx context.Context, cfg ChatConfig, apiKey string, transcript []models.ChatMessage) models.ChatMessage {
	provider := s.providers.Resolve(cfg.Provider)
	content, err := s.generate(ctx, client.Config{
		Provider:   provider,
		APIKey:     apiKey,
		Model:      cfg.Model,
		HTTPClient: s.httpClient,
	}, client.BuildMessages(cfg.SystemPrompt, transcript))
	if err != nil {
		s.log.Error().Err(err).Str("provider", provider.ID).Msg("chat request failed")
		return models.ChatMessage{Role: models.RoleAssistant, Content: "Error: " + err.Error()}
	}
	return models.ChatMessage{Role: models.RoleAssistant, Content: content}
}

func (s *ChatService) generate(ctx context.Context, cfg client.Config, messages []*schema.Message) (string, error) {
	cm, err := s.newModel(ctx, cfg)
	if err != nil {
		return "", err
	}
	return client.Complete(ctx, cm, messages)
}

// saveTranscriptLocked writes messages as session id and reconciles the
// in-memory list. An empty transcript or no session is a no-op.
func (s *ChatService) saveTranscriptLocked(ctx context.Context, id string, messages []models.ChatMessage) error {
	if id == "" || len(messages) == 0 {
		return nil
	}

	idx := s.indexOf(id)
	title := DefaultSessionTitle
	if idx >= 0 && s.sessions[idx].Title != "" {
		title = s.sessions[idx].Title
	}
	if title == DefaultSessionTitle {
		for _, m := range messages {
			if m.Role == models.RoleUser {
				title = leadingRunes(m.Content, autoTitleRunes)
				break
			}
		}
	}

	updated := models.Session{
		ID:        id,
		Title:     title,
		Messages:  cloneMessages(messages),
		UpdatedAt: s.now().UnixMilli(),
	}
	if err := s.store.SaveSession(ctx, updated); err != nil {
		return fmt.Errorf("save session: %w", err)
	}

	if idx >= 0 {
		s.sessions[idx] = updated
		sortSessions(s.sessions)
	} else {
		s.sessions = append([]models.Session{updated}, s.sessions...)
	}
	return nil
}

func (s *ChatService) activate(session models.Session) {
	s.activeID = session.ID
	s.messages = cloneMessages(session.Messages)
}

func (s *ChatService) indexOf(id string) int {
	for i, sess := range s.sessions {
		if sess.ID == id {
			return i
		}
	}
	return -1
}

func (s *ChatService) emit(ctx context.Context, sessionID, message string) {
	evt := events.NewEvent(events.EventInfo, message)
	evt.SessionID = sessionID
	s.emitter.Emit(ctx, events.ChatUpdated, evt)
}

// State returns a copy of the current chat state.
func (s *ChatService) State() ChatState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stateLocked()
}

func (s *ChatService) stateLocked() ChatState {
	sessions := make([]models.Session, len(s.sessions))
	for i, sess := range s.sessions {
		sess.Messages = cloneMessages(sess.Messages)
		sessions[i] = sess
	}
	return ChatState{
		Sessions: sessions,
		ActiveID: s.activeID,
		Messages: cloneMessages(s.messages),
		Loading:  s.loading,
		Config:   s.config,
	}
}

func sortSessions(sessions []models.Session) {
	sort.SliceStable(sessions, func(i, j int) bool {
		return sessions[i].UpdatedAt > sessions[j].UpdatedAt
	})
}

func cloneMessages(messages []models.ChatMessage) []models.ChatMessage {
	out := make([]models.ChatMessage, len(messages))
	copy(out, messages)
	return out
}

func leadingRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
