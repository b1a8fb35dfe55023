package bridge

import (
	"context"

	"apivault/internal/models"
	"apivault/internal/storage"
)

// WindowControls is the chrome half of the bound surface.
type WindowControls interface {
	WindowMinimise(ctx context.Context) error
	WindowToggleMaximise(ctx context.Context) error
	WindowClose(ctx context.Context) error
}

// API is bound into the webview. It is the only capability the page gets:
// one method per call name plus the window controls. Storage goes to
// whichever backend the startup probe selected.
type API struct {
	ctx     context.Context
	store   storage.Store
	backend string
	window  WindowControls
}

func NewAPI(store storage.Store, backend string, window WindowControls) *API {
	return &API{store: store, backend: backend, window: window}
}

func (a *API) Startup(ctx context.Context) {
	a.ctx = ctx
}

func (a *API) context() context.Context {
	if a.ctx == nil {
		return context.Background()
	}
	return a.ctx
}

// Backend reports which storage backend is active.
func (a *API) Backend() string {
	return a.backend
}

func (a *API) GetApis(search string) ([]models.ApiRecord, error) {
	return a.store.ListApis(a.context(), search)
}

func (a *API) SaveApi(patch models.ApiRecordPatch) (bool, error) {
	if _, err := a.store.SaveApi(a.context(), patch); err != nil {
		return false, err
	}
	return true, nil
}

func (a *API) DeleteApi(id int64) (bool, error) {
	if err := a.store.DeleteApi(a.context(), id); err != nil {
		return false, err
	}
	return true, nil
}

func (a *API) GetCreds(search string) ([]models.Credential, error) {
	return a.store.ListCredentials(a.context(), search)
}

func (a *API) SaveCred(patch models.CredentialPatch) (bool, error) {
	if _, err := a.store.SaveCredential(a.context(), patch); err != nil {
		return false, err
	}
	return true, nil
}

func (a *API) DeleteCred(id int64) (bool, error) {
	if err := a.store.DeleteCredential(a.context(), id); err != nil {
		return false, err
	}
	return true, nil
}

func (a *API) GetSettings() (models.Settings, error) {
	return a.store.GetSettings(a.context())
}

func (a *API) SaveSettings(patch models.Settings) (bool, error) {
	if err := a.store.SaveSettings(a.context(), patch); err != nil {
		return false, err
	}
	return true, nil
}

func (a *API) GetSessions() ([]models.Session, error) {
	return a.store.GetSessions(a.context())
}

func (a *API) SaveSession(session models.Session) (bool, error) {
	if err := a.store.SaveSession(a.context(), session); err != nil {
		return false, err
	}
	return true, nil
}

func (a *API) DeleteSession(id string) (bool, error) {
	if err := a.store.DeleteSession(a.context(), id); err != nil {
		return false, err
	}
	return true, nil
}

func (a *API) WindowMinimise() error {
	if a.window == nil {
		return ErrUnavailable
	}
	return a.window.WindowMinimise(a.context())
}

func (a *API) WindowToggleMaximise() error {
	if a.window == nil {
		return ErrUnavailable
	}
	return a.window.WindowToggleMaximise(a.context())
}

func (a *API) WindowClose() error {
	if a.window == nil {
		return ErrUnavailable
	}
	return a.window.WindowClose(a.context())
}
