package log

import (
	"context"
	"sync"
)

// Hook contributes context-derived fields to every log entry.
type Hook interface {
	Apply(ctx context.Context, msg string) []Field
}

// HookFunc adapts a function to the Hook interface.
type HookFunc func(ctx context.Context, msg string) []Field

func (f HookFunc) Apply(ctx context.Context, msg string) []Field {
	return f(ctx, msg)
}

var (
	hooksMu sync.RWMutex
	hooks   []Hook
)

// RegisterHook installs a hook applied to all subsequent log calls.
func RegisterHook(h Hook) {
	hooksMu.Lock()
	defer hooksMu.Unlock()

	hooks = append(hooks, h)
}

func withHooks(ctx context.Context, msg string, fields []Field) []Field {
	hooksMu.RLock()
	defer hooksMu.RUnlock()

	for _, h := range hooks {
		fields = append(fields, h.Apply(ctx, msg)...)
	}

	return fields
}
