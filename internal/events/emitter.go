package events

import (
	"context"
	"sync"

	"github.com/wailsapp/wails/v2/pkg/runtime"
)

// Emitter delivers events to whoever renders them.
type Emitter interface {
	Emit(ctx context.Context, name string, evt Event)
}

// Nop drops every event. Used by headless runs and tests.
type Nop struct{}

func (Nop) Emit(context.Context, string, Event) {}

// RuntimeEmitter pushes events into the Wails webview. Events are dropped
// until Attach receives the context Wails hands to OnStartup; the runtime
// aborts on any other context.
type RuntimeEmitter struct {
	mu  sync.RWMutex
	ctx context.Context
}

func NewRuntimeEmitter() *RuntimeEmitter {
	return &RuntimeEmitter{}
}

func (e *RuntimeEmitter) Attach(ctx context.Context) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.ctx = ctx
}

func (e *RuntimeEmitter) Emit(_ context.Context, name string, evt Event) {
	e.mu.RLock()
	ctx := e.ctx
	e.mu.RUnlock()
	if ctx == nil {
		return
	}
	runtime.EventsEmit(ctx, name, evt)
	logRuntimeEvent(ctx, name, evt)
}

// Recorder keeps emitted events in memory.
type Recorder struct {
	mu     sync.Mutex
	Events []Recorded
}

type Recorded struct {
	Name  string
	Event Event
}

func (r *Recorder) Emit(_ context.Context, name string, evt Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Events = append(r.Events, Recorded{Name: name, Event: evt})
}

// Names returns the names of the recorded events in emission order.
func (r *Recorder) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.Events))
	for _, e := range r.Events {
		out = append(out, e.Name)
	}
	return out
}
