package mocks

import (
	"context"
	"errors"
	"sync"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"apivault/internal/llm/client"
)

// ChatModelMock is a model.BaseChatModel whose reply is scripted.
type ChatModelMock struct {
	GenerateFunc func(ctx context.Context, input []*schema.Message) (*schema.Message, error)

	mu    sync.Mutex
	Calls [][]*schema.Message
}

var _ model.BaseChatModel = (*ChatModelMock)(nil)

func (m *ChatModelMock) Generate(ctx context.Context, input []*schema.Message, _ ...model.Option) (*schema.Message, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, input)
	m.mu.Unlock()
	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, input)
	}
	return schema.AssistantMessage("ok", nil), nil
}

func (m *ChatModelMock) Stream(context.Context, []*schema.Message, ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, errors.New("streaming not supported")
}

// CallCount reports how many times Generate ran.
func (m *ChatModelMock) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

// Factory returns a client.Factory that always yields m and records the
// config it was asked for.
func (m *ChatModelMock) Factory(seen *[]client.Config) client.Factory {
	return func(_ context.Context, cfg client.Config) (model.BaseChatModel, error) {
		if seen != nil {
			*seen = append(*seen, cfg)
		}
		return m, nil
	}
}
