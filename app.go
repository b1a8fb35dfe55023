package main

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/wailsapp/wails/v2/pkg/runtime"

	"apivault/internal/bridge"
	"apivault/internal/events"
	"apivault/internal/fallback"
	"apivault/internal/utils"
)

// App struct
type App struct {
	ctx      context.Context
	log      zerolog.Logger
	dataDir  string
	backend  string
	channel  *bridge.Channel
	local    *fallback.LocalStore
	emitter  *events.RuntimeEmitter
	stopServ context.CancelFunc
}

// AppInfo describes the running instance to the about panel.
type AppInfo struct {
	DataDir       string `json:"dataDir"`
	DataDirExists bool   `json:"dataDirExists"`
	Backend       string `json:"backend"`
}

// NewApp creates a new App application struct
func NewApp(log zerolog.Logger, dataDir, backend string, channel *bridge.Channel, local *fallback.LocalStore, emitter *events.RuntimeEmitter, stopServ context.CancelFunc) *App {
	return &App{
		log:      log,
		dataDir:  dataDir,
		backend:  backend,
		channel:  channel,
		local:    local,
		emitter:  emitter,
		stopServ: stopServ,
	}
}

// startup is called when the app starts. The context is saved
// so we can call the runtime methods
func (a *App) startup(ctx context.Context) {
	a.ctx = ctx
	a.emitter.Attach(ctx)
	runtime.LogInfo(ctx, fmt.Sprintf("apivault started (backend=%s, data=%s)", a.backend, a.dataDir))
}

// shutdown is called when the app is closing. Clean up resources here.
func (a *App) shutdown(ctx context.Context) {
	if a.channel != nil {
		a.channel.Close()
	}
	if a.stopServ != nil {
		a.stopServ()
	}

	if a.local != nil {
		if err := a.local.Close(); err != nil {
			runtime.LogError(ctx, fmt.Sprintf("failed to close local storage: %v", err))
		} else {
			runtime.LogInfo(ctx, "local storage closed")
		}
		a.local = nil
	}
}

// Info returns where data lives and which storage backend is active.
func (a *App) Info() AppInfo {
	return AppInfo{
		DataDir:       a.dataDir,
		DataDirExists: utils.DirectoryExists(a.dataDir),
		Backend:       a.backend,
	}
}
