package main

import (
	"context"
	"embed"
	"fmt"
	"net/http"

	"github.com/wailsapp/wails/v2"
	"github.com/wailsapp/wails/v2/pkg/options"
	"github.com/wailsapp/wails/v2/pkg/options/assetserver"
	"github.com/wailsapp/wails/v2/pkg/options/linux"

	"apivault/internal/assets"
	"apivault/internal/bridge"
	"apivault/internal/config"
	"apivault/internal/database"
	"apivault/internal/events"
	"apivault/internal/fallback"
	"apivault/internal/ids"
	"apivault/internal/logging"
	"apivault/internal/services"
	"apivault/internal/storage"
)

//go:embed all:frontend/dist
var assetsFS embed.FS

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		return
	}
	log := logging.New(cfg.LogLevel, nil)

	db, err := database.Open(database.Config{
		Path:   cfg.DocumentPath(),
		Logger: log,
	})
	if err != nil {
		log.Error().Err(err).Msg("open document store")
		return
	}
	local, err := fallback.Open(fallback.Config{
		Path:     cfg.FallbackPath(),
		LogLevel: cfg.GormLogLevel(),
		Logger:   log,
	})
	if err != nil {
		log.Error().Err(err).Msg("open local storage")
		return
	}

	// Privileged side: gateway behind the bridge channel.
	emitter := events.NewRuntimeEmitter()
	gateway := services.NewStorageGateway(db, ids.NewGenerator(nil), log)
	handler := bridge.NewHandler(gateway, bridge.RuntimeWindow{}, emitter, log)
	channel := bridge.NewChannel(handler)
	serveCtx, stopServing := context.WithCancel(context.Background())
	channel.Start(serveCtx)

	// Webview side: probe once, then everything goes through the chosen store.
	bridgeClient := bridge.NewClient(channel)
	store, backend, err := storage.Select(serveCtx, bridgeClient, func() (storage.Store, error) {
		return local, nil
	}, log)
	if err != nil {
		log.Error().Err(err).Msg("select storage backend")
		stopServing()
		return
	}

	svc, err := services.NewServices(services.Deps{
		Store:        store,
		Legacy:       local,
		ProviderData: assets.ProvidersData,
		Confirmer:    services.DialogConfirmer{},
		Emitter:      emitter,
		HTTPClient:   http.DefaultClient,
		Logger:       log,
	})
	if err != nil {
		log.Error().Err(err).Msg("build services")
		stopServing()
		return
	}
	api := bridge.NewAPI(store, backend, bridgeClient)

	app := NewApp(log, cfg.DataDir, backend, channel, local, emitter, stopServing)

	// Create application with options
	err = wails.Run(&options.App{
		Title:     "API Vault",
		Width:     1200,
		Height:    800,
		MinWidth:  900,
		MinHeight: 600,
		Frameless: true,
		AssetServer: &assetserver.Options{
			Assets: assetsFS,
		},
		Linux: &linux.Options{
			WindowIsTranslucent: false,
			WebviewGpuPolicy:    linux.WebviewGpuPolicyAlways,
			ProgramName:         "API Vault",
		},
		Logger:           logging.NewWailsLogger(log),
		LogLevel:         logging.WailsLevel(log.GetLevel()),
		BackgroundColour: &options.RGBA{R: 27, G: 38, B: 54, A: 1},
		OnStartup: func(ctx context.Context) {
			app.startup(ctx)
			api.Startup(ctx)
			svc.Startup(ctx)
		},
		OnShutdown: app.shutdown,
		Bind:       append([]interface{}{app, api}, svc.Bindings()...),
	})

	if err != nil {
		log.Error().Err(err).Msg("wails run")
	}
}
