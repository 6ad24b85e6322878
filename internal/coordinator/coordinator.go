package coordinator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/Kargones/rankmgr/internal/group"
	"github.com/Kargones/rankmgr/internal/pkg/apperrors"
	"github.com/Kargones/rankmgr/internal/pkg/logging"
	"github.com/Kargones/rankmgr/internal/pkg/metrics"
	"github.com/Kargones/rankmgr/internal/pkg/tracing"
	"github.com/Kargones/rankmgr/internal/severity"

	"github.com/charmbracelet/lipgloss"
	"go.opentelemetry.io/otel/trace"
)

// LeakWarning выводится при Close, если остались незакрытые таймеры.
const LeakWarning = "Timers are running at the time of environment destruction"

// Coordinator — координатор вывода и таймеров одного ранга.
// maxSeverity и visibility неизменны после New.
type Coordinator struct {
	rt          group.Runtime
	maxSeverity severity.Severity
	visibility  severity.Visibility

	out      io.Writer
	renderer *lipgloss.Renderer
	format   *formatter
	logger   logging.Logger
	metrics  metrics.Collector
	tracer   trace.Tracer
	ctx      context.Context
	now      func() time.Time

	timers []Timer
	closed bool
}

// Option настраивает Coordinator при создании.
type Option func(*Coordinator)

// WithOutput задаёт writer для строк координатора (по умолчанию os.Stdout).
// Каждая строка пишется одним вызовом Write.
func WithOutput(w io.Writer) Option {
	return func(c *Coordinator) { c.out = w }
}

// WithRenderer задаёт lipgloss renderer (цветовой профиль) для меток уровней.
func WithRenderer(r *lipgloss.Renderer) Option {
	return func(c *Coordinator) { c.renderer = r }
}

// WithLogger задаёт диагностический логгер.
func WithLogger(l logging.Logger) Option {
	return func(c *Coordinator) { c.logger = l }
}

// WithMetrics задаёт сборщик метрик.
func WithMetrics(m metrics.Collector) Option {
	return func(c *Coordinator) { c.metrics = m }
}

// WithTracer задаёт tracer для span-ов таймеров.
func WithTracer(t trace.Tracer) Option {
	return func(c *Coordinator) { c.tracer = t }
}

// WithContext задаёт базовый context для span-ов таймеров и отправки метрик.
func WithContext(ctx context.Context) Option {
	return func(c *Coordinator) { c.ctx = ctx }
}

// WithClock подменяет источник времени. Используется в тестах.
func WithClock(now func() time.Time) Option {
	return func(c *Coordinator) { c.now = now }
}

// New создаёт Coordinator поверх инициализированного runtime группы.
// Coordinator становится владельцем rt и финализирует его в Close.
func New(rt group.Runtime, maxSeverity severity.Severity, visibility severity.Visibility, opts ...Option) *Coordinator {
	c := &Coordinator{
		rt:          rt,
		maxSeverity: maxSeverity,
		visibility:  visibility,
		out:         os.Stdout,
		logger:      logging.NewNopLogger(),
		metrics:     metrics.NewNopCollector(),
		tracer:      tracing.Tracer(),
		ctx:         context.Background(),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.renderer == nil {
		c.renderer = defaultRenderer(c.out)
	}
	c.format = newFormatter(c.renderer)
	c.logger = logging.ForRank(c.logger, rt.Rank(), rt.Size())
	return c
}

// Rank возвращает ранг текущего процесса.
func (c *Coordinator) Rank() int { return c.rt.Rank() }

// Size возвращает размер группы.
func (c *Coordinator) Size() int { return c.rt.Size() }

// Runtime возвращает runtime группы для прямого доступа к его примитивам.
func (c *Coordinator) Runtime() group.Runtime { return c.rt }

// MaxSeverity возвращает наименее срочный выводимый уровень.
func (c *Coordinator) MaxSeverity() severity.Severity { return c.maxSeverity }

// Visibility возвращает область видимости вывода.
func (c *Coordinator) Visibility() severity.Visibility { return c.visibility }

// rankEligible — проверка ранга политики фильтрации.
func (c *Coordinator) rankEligible() bool {
	return c.visibility == severity.AllRanks || c.rt.Rank() == 0
}

// permitted — полная проверка политики: уровень и ранг. Без побочных эффектов.
func (c *Coordinator) permitted(s severity.Severity) bool {
	return s.AtLeastAsUrgentAs(c.maxSeverity) && c.rankEligible()
}

// Log выводит msg с уровнем s, если его пропускает фильтрация.
//
// При AllRanks все ранги проходят size барьеров, строка ранга i пишется
// перед i-м барьером. При RankZero строку сразу пишет ранг 0.
func (c *Coordinator) Log(s severity.Severity, msg string) {
	if !c.permitted(s) {
		return
	}

	if c.visibility != severity.AllRanks {
		c.emit(s, msg)
		return
	}

	rank := c.rt.Rank()
	for i := range c.rt.Size() {
		if i == rank {
			c.emit(s, msg)
		}
		c.barrier()
	}
}

// Logf форматирует сообщение и вызывает Log.
// Форматирование выполняется только для прошедших фильтрацию сообщений.
func (c *Coordinator) Logf(s severity.Severity, format string, args ...any) {
	if !c.permitted(s) {
		return
	}
	c.Log(s, fmt.Sprintf(format, args...))
}

// emit пишет строку текущего ранга одним Write.
func (c *Coordinator) emit(s severity.Severity, msg string) {
	line := c.format.line(c.rt.Rank(), s, msg)
	if _, err := io.WriteString(c.out, line); err != nil {
		c.logger.Warn("не удалось записать строку координатора",
			"severity", s.String(),
			"error", err.Error(),
		)
		return
	}
	c.metrics.RecordEmit(s.String())
}

// barrier ждёт группу. Ошибка барьера означает, что группа не работает:
// ранг завершает группу, повторов нет.
func (c *Coordinator) barrier() {
	c.metrics.RecordBarrier()
	err := c.rt.Barrier()
	if err == nil {
		return
	}

	if errors.Is(err, group.ErrAborted) {
		// группу уже завершает другой ранг, его сообщение уже выведено
		c.logger.Warn("барьер прерван abort группы")
		c.rt.Abort(group.ExitFailure)
		return
	}

	appErr := apperrors.NewAppError(apperrors.ErrGroupBarrier, "барьер группы не пройден", err)
	c.logger.Error("ошибка барьера, группа завершается", "error", appErr.Error())
	c.Abort(appErr.Error())
}

// Abort выводит msg с уровнем Emergency на текущем ранге без фильтрации
// и завершает всю группу со статусом group.ExitFailure. Не возвращает управление.
func (c *Coordinator) Abort(msg string) {
	c.emit(severity.Emergency, msg)
	c.logger.Error("abort группы", "message", msg, "timers", len(c.timers))
	c.rt.Abort(group.ExitFailure)
}

// Close останавливает незакрытые таймеры и финализирует runtime группы.
//
// Если стек таймеров не пуст, сначала выводится предупреждение LeakWarning,
// затем таймеры останавливаются от последнего запущенного. Finalize
// вызывается строго после опустошения стека. Повторный Close ничего не делает.
func (c *Coordinator) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true

	if n := len(c.timers); n > 0 {
		c.logger.Warn("незакрытые таймеры при завершении", "count", n)
		c.Log(severity.Warning, LeakWarning)
		for range n {
			c.TimerStop()
		}
	}

	if err := c.metrics.Push(c.ctx); err != nil {
		c.logger.Warn("не удалось отправить метрики", "error", err.Error())
	}

	if err := c.rt.Finalize(); err != nil {
		return apperrors.NewAppError(apperrors.ErrGroupFinalize, "не удалось финализировать группу", err)
	}
	return nil
}
