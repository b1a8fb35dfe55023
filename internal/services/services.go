package services

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"

	"apivault/internal/events"
	"apivault/internal/storage"
)

// Services aggregates the services bound to the frontend. Every one of them
// reads and writes through the same selected Store.
type Services struct {
	Providers ProviderService
	Keyring   *KeyringService
	Settings  AppSettingsService
	ApiTester *ApiTesterService
	Chat      *ChatService
}

// Deps carries what NewServices needs from the host.
type Deps struct {
	Store storage.Store
	// Legacy is optional; only the local fallback keeps old chat history.
	Legacy       storage.LegacyHistory
	ProviderData []byte
	Confirmer    Confirmer
	Emitter      events.Emitter
	HTTPClient   *http.Client
	Logger       zerolog.Logger
}

// NewServices constructs the service container around deps.Store.
func NewServices(deps Deps) (*Services, error) {
	providers, err := NewProviderService(deps.ProviderData)
	if err != nil {
		return nil, fmt.Errorf("load provider catalog: %w", err)
	}
	keys := NewKeyringService(providers)

	var tester *resty.Client
	if deps.HTTPClient != nil {
		tester = resty.NewWithClient(deps.HTTPClient)
	}

	return &Services{
		Providers: providers,
		Keyring:   keys,
		Settings:  NewAppSettingsService(deps.Store),
		ApiTester: NewApiTesterService(tester, deps.Logger),
		Chat: NewChatService(ChatServiceConfig{
			Store:      deps.Store,
			Providers:  providers,
			Legacy:     deps.Legacy,
			Keys:       keys,
			Confirmer:  deps.Confirmer,
			Emitter:    deps.Emitter,
			HTTPClient: deps.HTTPClient,
			Logger:     deps.Logger,
		}),
	}, nil
}

// Startup hands the Wails context to every service that needs one.
func (s *Services) Startup(ctx context.Context) {
	s.Settings.Startup(ctx)
	s.ApiTester.Startup(ctx)
	s.Chat.Startup(ctx)
}

// Bindings lists the services exposed to the frontend.
func (s *Services) Bindings() []interface{} {
	return []interface{}{s.Chat, s.Settings, s.ApiTester, s.Providers, s.Keyring}
}
