package bridge

import (
	"context"

	"github.com/wailsapp/wails/v2/pkg/runtime"
)

// Window is the frameless window chrome the webview can drive.
type Window interface {
	Minimise(ctx context.Context)
	ToggleMaximise(ctx context.Context)
	Close(ctx context.Context)
}

// RuntimeWindow drives the real window through the Wails runtime. The
// context must come from the Wails startup hook.
type RuntimeWindow struct{}

func (RuntimeWindow) Minimise(ctx context.Context) {
	runtime.WindowMinimise(ctx)
}

// ToggleMaximise restores a maximised window and maximises any other.
func (RuntimeWindow) ToggleMaximise(ctx context.Context) {
	if runtime.WindowIsMaximised(ctx) {
		runtime.WindowUnmaximise(ctx)
		return
	}
	runtime.WindowMaximise(ctx)
}

func (RuntimeWindow) Close(ctx context.Context) {
	runtime.Quit(ctx)
}
