// Package logger 在 context 中传递请求级日志字段（request_id、trace_id 等）。
package logger

import (
	"context"

	"github.com/kart-io/logger"
	"github.com/kart-io/logger/core"
	"go.opentelemetry.io/otel/trace"
)

type contextKey int

const fieldsKey contextKey = iota

// 常用字段名。
const (
	FieldRequestID = "request_id"
	FieldTraceID   = "trace_id"
	FieldSpanID    = "span_id"
)

// fields 保持插入顺序，同名键后写覆盖先写。
type fields struct {
	keys   []string
	values map[string]any
}

func fromContext(ctx context.Context) *fields {
	if f, ok := ctx.Value(fieldsKey).(*fields); ok {
		return f
	}
	return nil
}

func (f *fields) with(kv ...any) *fields {
	n := &fields{values: make(map[string]any, len(kv)/2)}
	if f != nil {
		n.keys = append(n.keys, f.keys...)
		for k, v := range f.values {
			n.values[k] = v
		}
	}
	for i := 0; i+1 < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok || key == "" {
			continue
		}
		if _, exists := n.values[key]; !exists {
			n.keys = append(n.keys, key)
		}
		n.values[key] = kv[i+1]
	}
	return n
}

// WithFields 向 context 追加键值对字段，奇数个参数时忽略最后一个。
func WithFields(ctx context.Context, keysAndValues ...any) context.Context {
	if len(keysAndValues) < 2 {
		return ctx
	}
	return context.WithValue(ctx, fieldsKey, fromContext(ctx).with(keysAndValues...))
}

// WithRequestID 记录请求 ID。
func WithRequestID(ctx context.Context, requestID string) context.Context {
	if requestID == "" {
		return ctx
	}
	return WithFields(ctx, FieldRequestID, requestID)
}

// RequestID 返回 context 中的请求 ID。
func RequestID(ctx context.Context) string {
	if f := fromContext(ctx); f != nil {
		if id, ok := f.values[FieldRequestID].(string); ok {
			return id
		}
	}
	return ""
}

// WithTraceContext 从 OpenTelemetry span 中提取 trace_id 与 span_id。
func WithTraceContext(ctx context.Context) context.Context {
	sc := trace.SpanFromContext(ctx).SpanContext()
	if !sc.IsValid() {
		return ctx
	}
	return WithFields(ctx, FieldTraceID, sc.TraceID().String(), FieldSpanID, sc.SpanID().String())
}

// Fields 按插入顺序返回 context 中的全部字段。
func Fields(ctx context.Context) []any {
	f := fromContext(ctx)
	if f == nil {
		return nil
	}
	kv := make([]any, 0, len(f.keys)*2)
	for _, k := range f.keys {
		kv = append(kv, k, f.values[k])
	}
	return kv
}

// L 返回带有 context 字段的全局 logger。
func L(ctx context.Context) core.Logger {
	base := logger.Global()
	if kv := Fields(ctx); len(kv) > 0 {
		return base.With(kv...)
	}
	return base
}
