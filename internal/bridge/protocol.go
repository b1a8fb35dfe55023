// Package bridge is the narrow request/response surface between the webview
// and the privileged process. Requests carry a name and JSON arguments; the
// handler on the privileged side forwards them to the storage gateway
// unchanged.
package bridge

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Call names. The set is closed: anything else is rejected.
const (
	GetApis        = "get-apis"
	SaveApi        = "save-api"
	DeleteApi      = "delete-api"
	GetCreds       = "get-creds"
	SaveCred       = "save-cred"
	DeleteCred     = "delete-cred"
	GetSettings    = "get-settings"
	SaveSettings   = "save-settings"
	GetSessions    = "get-sessions"
	SaveSession    = "save-session"
	DeleteSession  = "delete-session"
	WindowMinimize = "window-minimize"
	WindowMaximize = "window-maximize"
	WindowClose    = "window-close"
)

// Names lists every accepted call name.
var Names = []string{
	GetApis, SaveApi, DeleteApi,
	GetCreds, SaveCred, DeleteCred,
	GetSettings, SaveSettings,
	GetSessions, SaveSession, DeleteSession,
	WindowMinimize, WindowMaximize, WindowClose,
}

var (
	// ErrUnavailable is returned when no privileged side is serving requests.
	ErrUnavailable = errors.New("bridge unavailable")
	// ErrUnknownRequest is returned for names outside the accepted set.
	ErrUnknownRequest = errors.New("unknown request")
)

// Error codes carried in Response.Code.
const (
	CodeFailed         = "failed"
	CodeBadRequest     = "bad_request"
	CodeUnknownRequest = "unknown_request"
)

type Request struct {
	ID   string          `json:"id"`
	Name string          `json:"name"`
	Args json.RawMessage `json:"args,omitempty"`
}

type Response struct {
	ID     string          `json:"id"`
	Result json.RawMessage `json:"result,omitempty"`
	Error  string          `json:"error,omitempty"`
	Code   string          `json:"code,omitempty"`
}

// CallError is a call the privileged side rejected.
type CallError struct {
	Name    string
	Code    string
	Message string
}

func (e *CallError) Error() string {
	return fmt.Sprintf("%s: %s", e.Name, e.Message)
}

func (e *CallError) Is(target error) bool {
	return target == ErrUnknownRequest && e.Code == CodeUnknownRequest
}
