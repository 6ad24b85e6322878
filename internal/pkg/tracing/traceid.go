// Package tracing связывает таймеры координатора с OpenTelemetry.
//
// Launcher генерирует один trace ID на запуск группы и передаёт его рангам
// через окружение. Каждый ранг строит от него remote span context, поэтому
// span-ы таймеров всех рангов попадают в один трейс:
//
//	ctx := tracing.ContextWithOTelTraceID(ctx, traceID)
//	_, span := tracing.Tracer().Start(ctx, "solve")
package tracing

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sync/atomic"
	"time"
)

// fallbackCounter обеспечивает уникальность fallback ID.
var fallbackCounter atomic.Uint64

// GenerateTraceID генерирует trace ID: 32 hex-символа (16 байт),
// совместимый с W3C Trace Context.
func GenerateTraceID() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return fallbackTraceID()
	}
	return hex.EncodeToString(b)
}

// fallbackTraceID строит ID из времени и счётчика, если crypto/rand недоступен.
// %016x гарантирует ровно 16 символов на каждую половину.
func fallbackTraceID() string {
	counter := fallbackCounter.Add(1)
	timestamp := uint64(time.Now().UnixNano())
	return fmt.Sprintf("%016x%016x", timestamp, counter)
}
