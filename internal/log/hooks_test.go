package log

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

type requestIDKey struct{}

func requestIDFields(ctx context.Context, _ string) []Field {
	if ctx == nil {
		return nil
	}

	if id, ok := ctx.Value(requestIDKey{}).(string); ok && id != "" {
		return []Field{String("request_id", id)}
	}

	return nil
}

func TestHookFuncApply(t *testing.T) {
	hook := HookFunc(requestIDFields)

	t.Run("with request ID", func(t *testing.T) {
		ctx := context.WithValue(context.Background(), requestIDKey{}, "req-1")
		fields := hook.Apply(ctx, "test message")
		assert.Len(t, fields, 1)
		assert.Equal(t, "request_id", fields[0].Key)
		assert.Equal(t, "req-1", fields[0].String)
	})

	t.Run("with context that doesn't have request ID", func(t *testing.T) {
		fields := hook.Apply(context.Background(), "test message")
		assert.Len(t, fields, 0)
	})

	t.Run("with nil context", func(t *testing.T) {
		fields := hook.Apply(nil, "test message")
		assert.Len(t, fields, 0)
	})
}

func TestWithHooks(t *testing.T) {
	RegisterHook(HookFunc(requestIDFields))

	ctx := context.WithValue(context.Background(), requestIDKey{}, "req-2")
	fields := withHooks(ctx, "msg", []Field{String("provider", "codex")})
	assert.GreaterOrEqual(t, len(fields), 2)
	assert.Equal(t, "provider", fields[0].Key)
}
