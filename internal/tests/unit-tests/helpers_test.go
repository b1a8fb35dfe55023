package unit_tests

import (
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"apivault/internal/assets"
	"apivault/internal/events"
	"apivault/internal/services"
	"apivault/internal/tests/mocks"
)

// stepClock advances one second on every reading.
type stepClock struct {
	mu sync.Mutex
	t  time.Time
}

func newStepClock() *stepClock {
	return &stepClock{t: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(time.Second)
	return c.t
}

func providers(t *testing.T) services.ProviderService {
	t.Helper()
	svc, err := services.NewProviderService(assets.ProvidersData)
	require.NoError(t, err)
	return svc
}

type chatFixture struct {
	store    *mocks.StoreMock
	model    *mocks.ChatModelMock
	confirm  *mocks.ConfirmerMock
	keys     *mocks.KeySourceMock
	recorder *events.Recorder
	svc      *services.ChatService
}

func newChatFixture(t *testing.T) *chatFixture {
	t.Helper()
	f := &chatFixture{
		store:    mocks.NewStoreMock(),
		model:    &mocks.ChatModelMock{},
		confirm:  &mocks.ConfirmerMock{Answer: true},
		keys:     &mocks.KeySourceMock{},
		recorder: &events.Recorder{},
	}
	f.svc = services.NewChatService(services.ChatServiceConfig{
		Store:     f.store,
		Legacy:    f.store.Memory,
		Providers: providers(t),
		Keys:      f.keys,
		Confirmer: f.confirm,
		Emitter:   f.recorder,
		NewModel:  f.model.Factory(nil),
		Now:       newStepClock().Now,
		Logger:    zerolog.Nop(),
	})
	return f
}
