package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"apivault/internal/database"
	"apivault/internal/events"
	"apivault/internal/models"
	"apivault/internal/storage"
)

var errBadArgs = errors.New("bad arguments")

// Handler runs on the privileged side. It decodes arguments and forwards to
// the gateway; nothing is validated or transformed beyond decoding.
type Handler struct {
	store   storage.Store
	window  Window
	emitter events.Emitter
	log     zerolog.Logger
}

// NewHandler wires the gateway, window chrome and event sink. window may be
// nil for headless use, in which case window calls fail. emitter may be nil.
func NewHandler(store storage.Store, window Window, emitter events.Emitter, log zerolog.Logger) *Handler {
	if emitter == nil {
		emitter = events.Nop{}
	}
	return &Handler{
		store:   store,
		window:  window,
		emitter: emitter,
		log:     log.With().Str("component", "bridge").Logger(),
	}
}

// Handle serves one request. Errors are carried in the response.
func (h *Handler) Handle(ctx context.Context, req Request) Response {
	resp := Response{ID: req.ID}

	result, err := h.dispatch(ctx, req)
	if err != nil {
		resp.Error = err.Error()
		switch {
		case errors.Is(err, ErrUnknownRequest):
			resp.Code = CodeUnknownRequest
		case errors.Is(err, errBadArgs):
			resp.Code = CodeBadRequest
		default:
			resp.Code = CodeFailed
		}
		h.log.Warn().Err(err).Str("name", req.Name).Str("request_id", req.ID).Msg("request rejected")
		return resp
	}

	if result != nil {
		data, err := json.Marshal(result)
		if err != nil {
			resp.Error = fmt.Sprintf("encode result: %v", err)
			resp.Code = CodeFailed
			return resp
		}
		resp.Result = data
	}
	return resp
}

func (h *Handler) dispatch(ctx context.Context, req Request) (any, error) {
	switch req.Name {
	case GetApis:
		var search string
		if err := decodeArgs(req.Args, &search); err != nil {
			return nil, err
		}
		return h.store.ListApis(ctx, search)
	case SaveApi:
		var patch models.ApiRecordPatch
		if err := decodeArgs(req.Args, &patch); err != nil {
			return nil, err
		}
		saved, err := h.store.SaveApi(ctx, patch)
		if err != nil {
			return nil, err
		}
		h.changed(ctx, database.KeyApis)
		return saved, nil
	case DeleteApi:
		var id int64
		if err := decodeArgs(req.Args, &id); err != nil {
			return nil, err
		}
		if err := h.store.DeleteApi(ctx, id); err != nil {
			return nil, err
		}
		h.changed(ctx, database.KeyApis)
		return true, nil

	case GetCreds:
		var search string
		if err := decodeArgs(req.Args, &search); err != nil {
			return nil, err
		}
		return h.store.ListCredentials(ctx, search)
	case SaveCred:
		var patch models.CredentialPatch
		if err := decodeArgs(req.Args, &patch); err != nil {
			return nil, err
		}
		saved, err := h.store.SaveCredential(ctx, patch)
		if err != nil {
			return nil, err
		}
		h.changed(ctx, database.KeyCredentials)
		return saved, nil
	case DeleteCred:
		var id int64
		if err := decodeArgs(req.Args, &id); err != nil {
			return nil, err
		}
		if err := h.store.DeleteCredential(ctx, id); err != nil {
			return nil, err
		}
		h.changed(ctx, database.KeyCredentials)
		return true, nil

	case GetSettings:
		return h.store.GetSettings(ctx)
	case SaveSettings:
		var patch models.Settings
		if err := decodeArgs(req.Args, &patch); err != nil {
			return nil, err
		}
		if err := h.store.SaveSettings(ctx, patch); err != nil {
			return nil, err
		}
		h.changed(ctx, database.KeySettings)
		return true, nil

	case GetSessions:
		return h.store.GetSessions(ctx)
	case SaveSession:
		var session models.Session
		if err := decodeArgs(req.Args, &session); err != nil {
			return nil, err
		}
		if err := h.store.SaveSession(ctx, session); err != nil {
			return nil, err
		}
		h.changed(ctx, database.KeySessions)
		return true, nil
	case DeleteSession:
		var id string
		if err := decodeArgs(req.Args, &id); err != nil {
			return nil, err
		}
		if err := h.store.DeleteSession(ctx, id); err != nil {
			return nil, err
		}
		h.changed(ctx, database.KeySessions)
		return true, nil

	case WindowMinimize, WindowMaximize, WindowClose:
		if h.window == nil {
			return nil, errors.New("window controls not available")
		}
		switch req.Name {
		case WindowMinimize:
			h.window.Minimise(ctx)
		case WindowMaximize:
			h.window.ToggleMaximise(ctx)
		default:
			h.window.Close(ctx)
		}
		return nil, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownRequest, req.Name)
}

func (h *Handler) changed(ctx context.Context, collection string) {
	h.emitter.Emit(ctx, events.StoreChanged, events.CollectionChanged(collection))
}

// decodeArgs leaves dst at its zero value when no arguments were sent.
func decodeArgs(raw json.RawMessage, dst any) error {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("%w: %v", errBadArgs, err)
	}
	return nil
}
