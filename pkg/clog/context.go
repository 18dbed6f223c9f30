package clog

import (
	"context"
	"maps"
	"sync"
)

type ctxSlog struct {
	mu         sync.RWMutex
	attributes map[string]any
}

type ctxSlogKey struct{}

// ContextWithSlog returns a context that collects log attributes for the
// lifetime of one request or one ledger transition.
func ContextWithSlog(ctx context.Context) context.Context {
	if _, ok := ctx.Value(ctxSlogKey{}).(*ctxSlog); ok {
		return ctx
	}
	return context.WithValue(ctx, ctxSlogKey{}, &ctxSlog{
		attributes: make(map[string]any),
	})
}

func AddAttribute(ctx context.Context, key string, value any) {
	l, ok := ctx.Value(ctxSlogKey{}).(*ctxSlog)
	if !ok {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.attributes[key] = value
}

func AddAttributes(ctx context.Context, attributes map[string]any) {
	l, ok := ctx.Value(ctxSlogKey{}).(*ctxSlog)
	if !ok {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	mergeMaps(l.attributes, attributes)
}

func GetAttribute[T any](ctx context.Context, key string) T {
	var zero T
	l, ok := ctx.Value(ctxSlogKey{}).(*ctxSlog)
	if !ok {
		return zero
	}
	l.mu.RLock()
	v, ok := l.attributes[key]
	l.mu.RUnlock()
	if !ok {
		return zero
	}
	typed, ok := v.(T)
	if !ok {
		return zero
	}
	return typed
}

func mergeMaps(dst, src map[string]any) {
	for k, v := range src {
		vMap, ok := v.(map[string]any)
		if !ok {
			dst[k] = v
			continue
		}
		if dstMap, ok := dst[k].(map[string]any); ok {
			mergeMaps(dstMap, vMap)
		} else {
			dst[k] = vMap
		}
	}
}

const (
	ErrorAttributeKey     = "error.message"
	StackAttributeKey     = "error.stack"
	OperationAttributeKey = "op"
)

func AddError(ctx context.Context, err error) {
	AddAttribute(ctx, ErrorAttributeKey, err)
}

func GetError(ctx context.Context) error {
	return GetAttribute[error](ctx, ErrorAttributeKey)
}

func AddStack(ctx context.Context, stack string) {
	AddAttribute(ctx, StackAttributeKey, stack)
}

// AddOperation tags the context with the ledger operation being applied.
func AddOperation(ctx context.Context, op string) {
	AddAttribute(ctx, OperationAttributeKey, op)
}

func GetAttributes(ctx context.Context) map[string]any {
	l, ok := ctx.Value(ctxSlogKey{}).(*ctxSlog)
	if !ok {
		return nil
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	return maps.Clone(l.attributes)
}
