package coordinator

import (
	"fmt"
	"time"

	"github.com/Kargones/rankmgr/internal/severity"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Timer — запущенный именованный интервал.
type Timer struct {
	// Start — момент запуска.
	Start time.Time

	// Severity — уровень сообщений о запуске и остановке.
	Severity severity.Severity

	// Name — имя таймера.
	Name string

	span trace.Span
}

// Timers возвращает копию стека таймеров, от первого запущенного к последнему.
func (c *Coordinator) Timers() []Timer {
	out := make([]Timer, len(c.timers))
	copy(out, c.timers)
	return out
}

// TimerStart запускает таймер name с уровнем s.
// Если s не проходит фильтрацию, таймер не создаётся.
func (c *Coordinator) TimerStart(s severity.Severity, name string) {
	if !c.permitted(s) {
		return
	}

	start := c.now()

	// вложенный таймер становится дочерним span-ом текущего верхнего
	ctx := c.ctx
	if n := len(c.timers); n > 0 {
		ctx = trace.ContextWithSpan(ctx, c.timers[n-1].span)
	}
	_, span := c.tracer.Start(ctx, name,
		trace.WithTimestamp(start),
		trace.WithAttributes(
			attribute.Int("rank", c.rt.Rank()),
			attribute.String("severity", s.String()),
		),
	)

	c.timers = append(c.timers, Timer{Start: start, Severity: s, Name: name, span: span})
	c.Log(s, fmt.Sprintf("Timer '%s' started at %s", name, formatTimestamp(start)))
}

// TimerStop останавливает последний запущенный таймер.
//
// Пустой стек или ранг, не проходящий проверку видимости, — no-op.
// Уровень отдельно не проверяется: сообщение об остановке проходит обычную
// фильтрацию в Log с уровнем самого таймера.
func (c *Coordinator) TimerStop() {
	n := len(c.timers)
	if n == 0 || !c.rankEligible() {
		return
	}

	end := c.now()
	t := c.timers[n-1]
	c.timers = c.timers[:n-1]
	elapsed := end.Sub(t.Start)

	c.Log(t.Severity, fmt.Sprintf("Timer '%s' stopped at %s with duration %s",
		t.Name, formatTimestamp(end), formatDuration(elapsed)))

	t.span.End(trace.WithTimestamp(end))
	c.metrics.RecordTimer(t.Name, t.Severity.String(), elapsed)
}
