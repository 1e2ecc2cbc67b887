// Package trace wraps change handlers with a per-message trace identifier,
// start and completion logging, and simple throughput metrics.
package trace

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"lexify/internal/amqp"
	"lexify/internal/log"
)

type contextKey struct{}

const FieldTraceID = "trace_id"

// Metrics tracks handled messages
type Metrics struct {
	TotalMessages  int64
	FailedMessages int64
	// LastDuration is the handling time of the latest message in microseconds.
	LastDuration int64
}

type Middleware struct {
	logger  *log.Logger
	metrics Metrics
}

func NewMiddleware(logger *log.Logger) *Middleware {
	if logger == nil {
		logger = log.Default()
	}
	return &Middleware{logger: logger}
}

// Wrap returns a handler that tags ctx with a fresh trace ID and logs the
// outcome of next.
func (m *Middleware) Wrap(next amqp.ChangeHandler) amqp.ChangeHandler {
	return func(ctx context.Context, msg *amqp.ChangeMessage) error {
		start := time.Now()
		traceID := GenerateTraceID()
		ctx = context.WithValue(ctx, contextKey{}, traceID)
		ctx = log.IntoContext(ctx, m.logger.With(FieldTraceID, traceID))

		m.logger.DebugContext(ctx, "Change message received",
			FieldTraceID, traceID,
			log.FieldKind, msg.Kind,
			"op", msg.Op,
			log.FieldID, msg.ID)

		err := next(ctx, msg)

		duration := time.Since(start)
		atomic.AddInt64(&m.metrics.TotalMessages, 1)
		atomic.StoreInt64(&m.metrics.LastDuration, duration.Microseconds())

		level := slog.LevelInfo
		if err != nil {
			atomic.AddInt64(&m.metrics.FailedMessages, 1)
			level = slog.LevelError
		}
		m.logger.Log(ctx, level, "Change message handled",
			FieldTraceID, traceID,
			log.FieldComponent, m.logger.Component(),
			log.FieldKind, msg.Kind,
			"op", msg.Op,
			log.FieldID, msg.ID,
			log.FieldDuration, duration.Milliseconds(),
			"success", err == nil,
			log.FieldError, err)
		return err
	}
}

// GenerateTraceID creates a unique identifier for one handled message
func GenerateTraceID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		// Fallback to timestamp if random fails
		return fmt.Sprintf("msg_%d", time.Now().UnixNano())
	}
	return "msg_" + hex.EncodeToString(bytes)
}

// TraceID extracts the trace ID from ctx, or "".
func TraceID(ctx context.Context) string {
	if id, ok := ctx.Value(contextKey{}).(string); ok {
		return id
	}
	return ""
}

// GetMetrics returns current metrics
func (m *Middleware) GetMetrics() Metrics {
	return Metrics{
		TotalMessages:  atomic.LoadInt64(&m.metrics.TotalMessages),
		FailedMessages: atomic.LoadInt64(&m.metrics.FailedMessages),
		LastDuration:   atomic.LoadInt64(&m.metrics.LastDuration),
	}
}
