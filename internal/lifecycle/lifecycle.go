// Package lifecycle runs a command-line operation under a context that is
// cancelled on SIGINT or SIGTERM, and releases the resources the operation
// acquired once it returns.
package lifecycle

import (
	"context"
	"errors"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"
)

// Resource is anything held open for the duration of a command.
type Resource interface {
	Close()
}

// CloseFunc adapts a plain function into a Resource.
type CloseFunc func()

// Close calls f.
func (f CloseFunc) Close() { f() }

// Lifecycle owns the resources of one command.
// Resources are released in reverse registration order.
type Lifecycle struct {
	logger    *zap.Logger
	mu        sync.Mutex
	resources []namedResource
}

type namedResource struct {
	name     string
	resource Resource
}

// New creates a Lifecycle.
//
// Precondition: logger must be non-nil.
func New(logger *zap.Logger) *Lifecycle {
	return &Lifecycle{logger: logger}
}

// Add registers a resource to release after Run.
//
// Precondition: name must be non-empty; r must be non-nil.
func (l *Lifecycle) Add(name string, r Resource) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.resources = append(l.resources, namedResource{name: name, resource: r})
}

// Run calls fn with a context derived from ctx that is also cancelled by
// SIGINT or SIGTERM, then releases every registered resource.
//
// Postcondition: All resources are released when Run returns, and fn's error
// is returned unchanged.
func (l *Lifecycle) Run(ctx context.Context, name string, fn func(context.Context) error) error {
	start := time.Now()
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	defer l.Shutdown()

	err := fn(ctx)
	switch {
	case err == nil:
		l.logger.Debug("command completed",
			zap.String("command", name),
			zap.Duration("elapsed", time.Since(start)),
		)
	case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
		l.logger.Warn("command interrupted",
			zap.String("command", name),
			zap.Error(err),
			zap.Duration("elapsed", time.Since(start)),
		)
	default:
		l.logger.Error("command failed",
			zap.String("command", name),
			zap.Error(err),
			zap.Duration("elapsed", time.Since(start)),
		)
	}
	return err
}

// Shutdown releases the registered resources in reverse order. It is safe to
// call more than once; each resource is released at most once.
func (l *Lifecycle) Shutdown() {
	l.mu.Lock()
	resources := l.resources
	l.resources = nil
	l.mu.Unlock()

	for i := len(resources) - 1; i >= 0; i-- {
		nr := resources[i]
		start := time.Now()
		nr.resource.Close()
		l.logger.Debug("resource released",
			zap.String("resource", nr.name),
			zap.Duration("elapsed", time.Since(start)),
		)
	}
}
