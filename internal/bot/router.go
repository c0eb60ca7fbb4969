package bot

import (
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/Proton-105/econ-bot/internal/bot/handlers"
)

// Router dispatches commands and callbacks through a shared middleware chain.
type Router struct {
	mu          sync.RWMutex
	commands    map[string]handlers.Handler
	aliases     map[string]string
	callbacks   map[string]handlers.Handler
	prefixes    []string
	middlewares []handlers.Middleware
	log         *slog.Logger
}

// NewRouter builds a Router with empty registries.
func NewRouter(log *slog.Logger) *Router {
	if log == nil {
		log = slog.Default()
	}

	return &Router{
		commands:    make(map[string]handlers.Handler),
		aliases:     make(map[string]string),
		callbacks:   make(map[string]handlers.Handler),
		middlewares: make([]handlers.Middleware, 0),
		log:         log,
	}
}

// RegisterCommand registers a handler under a command name and its aliases.
func (r *Router) RegisterCommand(name string, h handlers.Handler, aliases ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	name = strings.ToLower(name)
	r.commands[name] = h
	for _, alias := range aliases {
		r.aliases[strings.ToLower(alias)] = name
	}
}

// RegisterCallback registers a handler for a callback action prefix.
func (r *Router) RegisterCallback(prefix string, h handlers.Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.callbacks[prefix]; !ok {
		r.prefixes = append(r.prefixes, prefix)
		// Longest prefix wins.
		sort.Slice(r.prefixes, func(i, j int) bool { return len(r.prefixes[i]) > len(r.prefixes[j]) })
	}
	r.callbacks[prefix] = h
}

// Use appends a middleware to the chain.
func (r *Router) Use(mw handlers.Middleware) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.middlewares = append(r.middlewares, mw)
}

// Resolve returns the canonical command name for name or an alias.
func (r *Router) Resolve(name string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	name = strings.ToLower(strings.TrimSpace(name))
	if _, ok := r.commands[name]; ok {
		return name, true
	}
	canonical, ok := r.aliases[name]
	return canonical, ok
}

// Route directs the event to its handler. Unknown commands and stale
// buttons are ignored.
func (r *Router) Route(e *handlers.Event) error {
	if e == nil {
		return nil
	}

	if e.IsCallback() {
		prefix, handler := r.findCallbackHandler(e.Callback)
		if handler == nil {
			r.log.Info("no callback handler found", slog.String("data", e.Callback))
			return nil
		}
		e.Command = prefix
		return r.executeHandler(handler, e)
	}

	name, ok := r.Resolve(e.Command)
	if !ok {
		r.log.Debug("unknown command", slog.String("command", e.Command))
		return nil
	}
	e.Command = name

	r.mu.RLock()
	handler := r.commands[name]
	r.mu.RUnlock()

	return r.executeHandler(handler, e)
}

func (r *Router) executeHandler(h handlers.Handler, e *handlers.Event) error {
	wrapped := r.applyMiddlewares(h)
	if wrapped == nil {
		return nil
	}
	return wrapped(e)
}

func (r *Router) findCallbackHandler(data string) (string, handlers.Handler) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, prefix := range r.prefixes {
		if data == prefix || strings.HasPrefix(data, prefix+":") {
			return prefix, r.callbacks[prefix]
		}
	}

	return "", nil
}

// applyMiddlewares wraps the handler with all registered middlewares.
func (r *Router) applyMiddlewares(h handlers.Handler) handlers.Handler {
	if h == nil {
		return nil
	}

	middlewares := r.middlewaresSnapshot()
	wrapped := h
	for i := len(middlewares) - 1; i >= 0; i-- {
		wrapped = middlewares[i](wrapped)
	}

	return wrapped
}

func (r *Router) middlewaresSnapshot() []handlers.Middleware {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if len(r.middlewares) == 0 {
		return nil
	}

	snapshot := make([]handlers.Middleware, len(r.middlewares))
	copy(snapshot, r.middlewares)
	return snapshot
}
