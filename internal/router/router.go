package router

import (
	"context"
	"log/slog"
	"sync"

	"github.com/gcalphotos/gcalphotos/internal/format"
	"github.com/gcalphotos/gcalphotos/internal/gapi"
	"github.com/gcalphotos/gcalphotos/internal/logging"
)

// State is the router's auth lifecycle state.
type State int

const (
	StateUninitialized State = iota
	StateAuthenticating
	StateReady
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateAuthenticating:
		return "authenticating"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Response is the envelope returned for every dispatch. Text is the payload
// for the host; IsError marks failure envelopes.
type Response struct {
	Text    string
	IsError bool
}

// Router owns the tool catalog and the authenticated session, and dispatches
// tool calls by name. A failed auth attempt leaves the router in StateFailed,
// which is retryable: the next dispatch runs the auth sequence again.
type Router struct {
	registry *Registry
	creds    CredentialSource
	build    SessionBuilder
	handlers map[string]handler
	logger   *slog.Logger

	mu      sync.Mutex
	state   State
	session *Session
}

// Option configures a Router.
type Option func(*Router)

// WithLogger sets the logger used by the router.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Router) {
		r.logger = logger
	}
}

// New creates a router over the given catalog, credential source and session
// builder.
func New(registry *Registry, creds CredentialSource, build SessionBuilder, opts ...Option) *Router {
	r := &Router{
		registry: registry,
		creds:    creds,
		build:    build,
		handlers: handlerTable(),
		logger:   slog.Default(),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Registry returns the tool catalog.
func (r *Router) Registry() *Registry {
	return r.registry
}

// State returns the current lifecycle state.
func (r *Router) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Dispatch routes one tool call: ensure an authenticated session exists,
// look the tool up, validate arguments, run the handler. Every outcome is a
// Response; errors never escape as Go errors because the host expects a
// result either way.
func (r *Router) Dispatch(ctx context.Context, name string, args map[string]any) Response {
	logger := logging.WithTool(r.logger, name)

	session, err := r.ensureReady(ctx)
	if err != nil {
		logger.Error("authentication failed", logging.Err(err))
		return Response{
			Text:    format.Failure("Error authenticating with Google for tool "+name, err),
			IsError: true,
		}
	}

	def, ok := r.registry.Lookup(name)
	if !ok {
		err := &UnknownToolError{Name: name, Known: r.registry.Names()}
		logger.Warn("unknown tool requested", logging.Err(err))
		return Response{
			Text:    format.UnknownTool(name, err.Known),
			IsError: true,
		}
	}

	normalized, err := def.Validate(args)
	if err != nil {
		logger.Warn("argument validation failed", logging.Err(err))
		return Response{
			Text:    format.Failure("Invalid arguments for "+name, err),
			IsError: true,
		}
	}

	h := r.handlers[name]
	text, err := h.run(ctx, session, normalized)

	// A remote auth rejection means the token looked valid locally but was
	// revoked or expired server-side. Re-run the auth sequence once and
	// retry; a second failure surfaces the original error.
	if err != nil && gapi.IsAuthRejected(err) {
		logger.Warn("credentials rejected remotely, re-authenticating", logging.Err(err))
		r.invalidate()

		if retrySession, authErr := r.ensureReady(ctx); authErr == nil {
			if retryText, retryErr := h.run(ctx, retrySession, normalized); retryErr == nil {
				text, err = retryText, nil
			}
		}
	}

	if err != nil {
		logger.Error("tool failed", logging.Err(err))
		return Response{
			Text:    format.Failure(h.phrase, err),
			IsError: true,
		}
	}

	logger.Debug("tool dispatched", logging.Status(logging.StatusSuccess))
	return Response{Text: text}
}

// ensureReady returns the current session, running the auth sequence when
// none exists. The mutex makes the transition single-flight: concurrent
// dispatches before readiness trigger exactly one credential sequence, the
// rest wait and reuse its result.
func (r *Router) ensureReady(ctx context.Context) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state == StateReady {
		return r.session, nil
	}

	r.state = StateAuthenticating
	r.logger.Debug("establishing Google session", logging.State(r.state.String()))

	token, err := r.creds.EnsureValid(ctx)
	if err != nil {
		r.state = StateFailed
		return nil, err
	}

	session, err := r.build(ctx, token)
	if err != nil {
		r.state = StateFailed
		return nil, err
	}

	r.session = session
	r.state = StateReady
	r.logger.Info("Google session established", logging.State(r.state.String()))

	return session, nil
}

// invalidate drops the session and cached credentials so the next
// ensureReady builds everything fresh.
func (r *Router) invalidate() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.creds.Invalidate()
	r.session = nil
	r.state = StateUninitialized
}
