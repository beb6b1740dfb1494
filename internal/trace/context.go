package trace

import (
	"context"
	"time"
)

type ctxKey struct{}

// FromContext extracts the Tracer from context, or Nop.
func FromContext(ctx context.Context) Tracer {
	if ctx == nil {
		return Nop
	}
	if t, ok := ctx.Value(ctxKey{}).(Tracer); ok {
		return t
	}
	return Nop
}

// WithTracer attaches a Tracer to context.
func WithTracer(ctx context.Context, t Tracer) context.Context {
	if t == nil {
		t = Nop
	}
	return context.WithValue(ctx, ctxKey{}, t)
}

// position is the innermost span and file carried by a context.
type position struct {
	spanID uint64
	file   string
}

type posKey struct{}

func positionOf(ctx context.Context) position {
	if ctx == nil {
		return position{}
	}
	pos, _ := ctx.Value(posKey{}).(position)
	return pos
}

// Start begins a span under the span already in ctx. The returned context
// carries the new span as parent for nested work.
func Start(ctx context.Context, scope Scope, name string) (context.Context, *Span) {
	pos := positionOf(ctx)
	span := Begin(FromContext(ctx), scope, name, pos.file, pos.spanID)
	if span.ID() == 0 {
		return ctx, span
	}
	return context.WithValue(ctx, posKey{}, position{spanID: span.ID(), file: pos.file}), span
}

// StartFile begins a per-file span. Spans and notes under the returned
// context are attributed to path.
func StartFile(ctx context.Context, name, path string) (context.Context, *Span) {
	pos := positionOf(ctx)
	span := Begin(FromContext(ctx), ScopeFile, name, path, pos.spanID)
	if span.ID() == 0 {
		return ctx, span
	}
	return context.WithValue(ctx, posKey{}, position{spanID: span.ID(), file: path}), span
}

// Note emits an instant event under the span and file carried by ctx.
func Note(ctx context.Context, scope Scope, name, detail string) {
	t := FromContext(ctx)
	if !t.Enabled() {
		return
	}
	pos := positionOf(ctx)
	t.Emit(&Event{
		Time:     time.Now(),
		Kind:     KindPoint,
		Scope:    scope,
		ParentID: pos.spanID,
		File:     pos.file,
		Name:     name,
		Detail:   detail,
	})
}
