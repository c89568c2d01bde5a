package server

import (
	"context"
	"sync"

	"github.com/gcalphotos/gcalphotos/internal/instrumentation"
	"github.com/gcalphotos/gcalphotos/internal/router"
)

// ServerContext holds the long-lived state of the MCP server: the tool
// router and the optional metrics recorder, under a context that is
// cancelled on shutdown.
type ServerContext struct {
	ctx    context.Context
	cancel context.CancelFunc
	router *router.Router

	mu       sync.RWMutex
	metrics  *instrumentation.Metrics
	shutdown bool
}

// NewServerContext creates a new server context around the given router.
func NewServerContext(ctx context.Context, rt *router.Router) (*ServerContext, error) {
	shutdownCtx, cancel := context.WithCancel(ctx)

	return &ServerContext{
		ctx:    shutdownCtx,
		cancel: cancel,
		router: rt,
	}, nil
}

// Context returns the server context.
func (sc *ServerContext) Context() context.Context {
	return sc.ctx
}

// Router returns the tool router.
func (sc *ServerContext) Router() *router.Router {
	return sc.router
}

// SetMetrics installs the metrics recorder. May be nil when instrumentation
// is disabled.
func (sc *ServerContext) SetMetrics(m *instrumentation.Metrics) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.metrics = m
}

// Metrics returns the metrics recorder, or nil when none is installed.
func (sc *ServerContext) Metrics() *instrumentation.Metrics {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.metrics
}

// IsShutdown returns whether the server has been shutdown.
func (sc *ServerContext) IsShutdown() bool {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.shutdown
}

// Shutdown shuts down the server context. Safe to call more than once.
func (sc *ServerContext) Shutdown() error {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if sc.shutdown {
		return nil
	}

	sc.shutdown = true
	sc.cancel()
	return nil
}
