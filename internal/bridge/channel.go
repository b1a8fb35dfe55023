package bridge

import (
	"context"
	"sync"
	"sync/atomic"
)

// RequestHandler serves one request on the privileged side.
type RequestHandler interface {
	Handle(ctx context.Context, req Request) Response
}

// Transport carries requests to the privileged side.
type Transport interface {
	Invoke(ctx context.Context, req Request) (Response, error)
	// Ready reports whether a privileged side is serving requests.
	Ready() bool
}

type call struct {
	ctx   context.Context
	req   Request
	reply chan Response
}

// Channel is the in-process transport. One goroutine running Serve handles
// requests in arrival order.
type Channel struct {
	handler RequestHandler
	calls   chan call
	done    chan struct{}
	once    sync.Once
	serving atomic.Bool
}

var _ Transport = (*Channel)(nil)

func NewChannel(handler RequestHandler) *Channel {
	return &Channel{
		handler: handler,
		calls:   make(chan call),
		done:    make(chan struct{}),
	}
}

// Start marks the channel ready and serves it on a new goroutine.
func (c *Channel) Start(ctx context.Context) {
	c.serving.Store(true)
	go func() { _ = c.Serve(ctx) }()
}

// Serve handles requests until ctx is cancelled or Close is called. A
// channel is not reusable once Serve returns.
func (c *Channel) Serve(ctx context.Context) error {
	c.serving.Store(true)
	defer c.Close()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-c.done:
			return nil
		case cl := <-c.calls:
			// An issued request runs to completion even if its caller gives up.
			cl.reply <- c.handler.Handle(context.WithoutCancel(cl.ctx), cl.req)
		}
	}
}

// Close stops Serve. Subsequent calls to Invoke fail with ErrUnavailable.
func (c *Channel) Close() {
	c.once.Do(func() { close(c.done) })
}

func (c *Channel) Ready() bool {
	select {
	case <-c.done:
		return false
	default:
		return c.serving.Load()
	}
}

// Invoke sends req and waits for the response. It fails with ErrUnavailable
// when nothing serves the channel.
func (c *Channel) Invoke(ctx context.Context, req Request) (Response, error) {
	if !c.Ready() {
		return Response{}, ErrUnavailable
	}
	cl := call{ctx: ctx, req: req, reply: make(chan Response, 1)}
	select {
	case c.calls <- cl:
	case <-c.done:
		return Response{}, ErrUnavailable
	case <-ctx.Done():
		return Response{}, ctx.Err()
	}
	return <-cl.reply, nil
}
