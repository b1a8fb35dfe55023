package bridge

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"apivault/internal/models"
	"apivault/internal/storage"
)

// Client is the webview-side adapter: it implements storage.Store by sending
// requests over a Transport. Arguments and results are JSON-encoded, so the
// caller never shares memory with the privileged side.
type Client struct {
	transport Transport
}

var _ storage.Capability = (*Client)(nil)

// NewClient returns a client over t. A nil t yields a client that is never
// available.
func NewClient(t Transport) *Client {
	return &Client{transport: t}
}

// Available is the capability probe.
func (c *Client) Available(context.Context) bool {
	return c != nil && c.transport != nil && c.transport.Ready()
}

func (c *Client) call(ctx context.Context, name string, arg any, out any) error {
	if c == nil || c.transport == nil {
		return ErrUnavailable
	}

	req := Request{ID: uuid.NewString(), Name: name}
	if arg != nil {
		data, err := json.Marshal(arg)
		if err != nil {
			return fmt.Errorf("encode %s args: %w", name, err)
		}
		req.Args = data
	}

	resp, err := c.transport.Invoke(ctx, req)
	if err != nil {
		return err
	}
	if resp.Error != "" {
		return &CallError{Name: name, Code: resp.Code, Message: resp.Error}
	}
	if out != nil && len(resp.Result) > 0 {
		if err := json.Unmarshal(resp.Result, out); err != nil {
			return fmt.Errorf("decode %s result: %w", name, err)
		}
	}
	return nil
}

// Call sends an arbitrary request name. It exists for callers that speak the
// protocol by name; typed methods are preferred.
func (c *Client) Call(ctx context.Context, name string, arg any, out any) error {
	return c.call(ctx, name, arg, out)
}

func (c *Client) ListApis(ctx context.Context, search string) ([]models.ApiRecord, error) {
	var out []models.ApiRecord
	if err := c.call(ctx, GetApis, search, &out); err != nil {
		return nil, err
	}
	return nonNil(out), nil
}

func (c *Client) SaveApi(ctx context.Context, patch models.ApiRecordPatch) (models.ApiRecord, error) {
	var out models.ApiRecord
	err := c.call(ctx, SaveApi, patch, &out)
	return out, err
}

func (c *Client) DeleteApi(ctx context.Context, id int64) error {
	return c.call(ctx, DeleteApi, id, nil)
}

func (c *Client) ListCredentials(ctx context.Context, search string) ([]models.Credential, error) {
	var out []models.Credential
	if err := c.call(ctx, GetCreds, search, &out); err != nil {
		return nil, err
	}
	return nonNil(out), nil
}

func (c *Client) SaveCredential(ctx context.Context, patch models.CredentialPatch) (models.Credential, error) {
	var out models.Credential
	err := c.call(ctx, SaveCred, patch, &out)
	return out, err
}

func (c *Client) DeleteCredential(ctx context.Context, id int64) error {
	return c.call(ctx, DeleteCred, id, nil)
}

func (c *Client) GetSettings(ctx context.Context) (models.Settings, error) {
	var out models.Settings
	if err := c.call(ctx, GetSettings, nil, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = models.Settings{}
	}
	return out, nil
}

func (c *Client) SaveSettings(ctx context.Context, patch models.Settings) error {
	return c.call(ctx, SaveSettings, patch, nil)
}

func (c *Client) GetSessions(ctx context.Context) ([]models.Session, error) {
	var out []models.Session
	if err := c.call(ctx, GetSessions, nil, &out); err != nil {
		return nil, err
	}
	return nonNil(out), nil
}

func (c *Client) SaveSession(ctx context.Context, session models.Session) error {
	return c.call(ctx, SaveSession, session, nil)
}

func (c *Client) DeleteSession(ctx context.Context, id string) error {
	return c.call(ctx, DeleteSession, id, nil)
}

func (c *Client) WindowMinimise(ctx context.Context) error {
	return c.call(ctx, WindowMinimize, nil, nil)
}

func (c *Client) WindowToggleMaximise(ctx context.Context) error {
	return c.call(ctx, WindowMaximize, nil, nil)
}

func (c *Client) WindowClose(ctx context.Context) error {
	return c.call(ctx, WindowClose, nil, nil)
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
