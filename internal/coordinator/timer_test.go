package coordinator

import (
	"context"
	"testing"
	"time"

	"github.com/Kargones/rankmgr/internal/group/grouptest"
	"github.com/Kargones/rankmgr/internal/severity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

// fakeClock выдаёт заранее заданные моменты времени по одному на вызов.
type fakeClock struct {
	times []time.Time
}

func (f *fakeClock) now() time.Time {
	t := f.times[0]
	if len(f.times) > 1 {
		f.times = f.times[1:]
	}
	return t
}

func clockAt(offsets ...time.Duration) *fakeClock {
	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.Local)
	f := &fakeClock{}
	for _, o := range offsets {
		f.times = append(f.times, base.Add(o))
	}
	return f
}

func TestTimer_StartStopMessages(t *testing.T) {
	clock := clockAt(0, 90*time.Second+250*time.Millisecond)
	c, buf := newTestCoordinator(grouptest.NewRecorder(0, 1), severity.Info, severity.RankZero,
		WithClock(clock.now))

	c.TimerStart(severity.Notice, "solve")
	c.TimerStop()

	assert.Equal(t, []string{
		"Rank 0: [NOTICE]: Timer 'solve' started at 2026-01-02 03:04:05",
		"Rank 0: [NOTICE]: Timer 'solve' stopped at 2026-01-02 03:05:35 with duration 00:01:30.250",
	}, outputLines(buf))
	assert.Empty(t, c.Timers())
}

// TestTimer_StackDiscipline: A, B, stop, stop — сначала B, затем A.
func TestTimer_StackDiscipline(t *testing.T) {
	clock := clockAt(0, time.Second, 3*time.Second, 10*time.Second)
	c, buf := newTestCoordinator(grouptest.NewRecorder(0, 1), severity.Debug, severity.RankZero,
		WithClock(clock.now))

	c.TimerStart(severity.Info, "A")
	c.TimerStart(severity.Debug, "B")

	timers := c.Timers()
	require.Len(t, timers, 2)
	assert.Equal(t, "A", timers[0].Name)
	assert.Equal(t, "B", timers[1].Name)

	c.TimerStop()
	c.TimerStop()

	lines := outputLines(buf)
	require.Len(t, lines, 4)
	assert.Equal(t, "Rank 0: [DEBUG]: Timer 'B' stopped at 2026-01-02 03:04:08 with duration 00:00:02.000", lines[2])
	assert.Equal(t, "Rank 0: [INFO]: Timer 'A' stopped at 2026-01-02 03:04:15 with duration 00:00:10.000", lines[3])
	assert.Empty(t, c.Timers())
}

func TestTimerStop_EmptyStack(t *testing.T) {
	rec := grouptest.NewRecorder(0, 3)
	c, buf := newTestCoordinator(rec, severity.Debug, severity.AllRanks)

	assert.NotPanics(t, func() {
		c.TimerStop()
		c.TimerStop()
	})
	assert.Empty(t, buf.String())
	assert.Zero(t, rec.Barriers())
}

func TestTimerStart_Filtered(t *testing.T) {
	tests := []struct {
		name string
		rank int
		max  severity.Severity
		vis  severity.Visibility
		sev  severity.Severity
	}{
		{"уровень ниже лимита", 0, severity.Warning, severity.AllRanks, severity.Info},
		{"ранг не ноль при RankZero", 1, severity.Debug, severity.RankZero, severity.Emergency},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := grouptest.NewRecorder(tt.rank, 2)
			c, buf := newTestCoordinator(rec, tt.max, tt.vis)

			c.TimerStart(tt.sev, "t")
			c.TimerStop()

			assert.Empty(t, c.Timers())
			assert.Empty(t, buf.String())
			assert.Zero(t, rec.Barriers())
		})
	}
}

func TestTimer_AllRanksUsesBarriers(t *testing.T) {
	rec := grouptest.NewRecorder(1, 3)
	c, buf := newTestCoordinator(rec, severity.Info, severity.AllRanks,
		WithClock(clockAt(0, time.Second).now))

	c.TimerStart(severity.Info, "io")
	c.TimerStop()

	assert.Equal(t, 6, rec.Barriers(), "start и stop — по size барьеров")
	assert.Len(t, outputLines(buf), 2)
}

// finalizeWatcher запоминает строки и число вызовов Finalize на момент каждой записи.
type finalizeWatcher struct {
	rec       *grouptest.Recorder
	lines     []string
	finalized []int
}

func (w *finalizeWatcher) Write(p []byte) (int, error) {
	w.lines = append(w.lines, string(p))
	w.finalized = append(w.finalized, w.rec.Finalized())
	return len(p), nil
}

// TestClose_DrainsLeakedTimers: незакрытые таймеры дают предупреждение,
// затем сообщения об остановке; Finalize строго после.
func TestClose_DrainsLeakedTimers(t *testing.T) {
	rec := grouptest.NewRecorder(0, 1)
	clock := clockAt(0, time.Second, 2*time.Second, 5*time.Second)
	out := &finalizeWatcher{rec: rec}
	c := New(rec, severity.Info, severity.RankZero,
		WithOutput(out), WithRenderer(plainRenderer(out)), WithClock(clock.now))

	c.TimerStart(severity.Info, "X")
	c.TimerStart(severity.Notice, "Y")
	require.NoError(t, c.Close())

	require.Len(t, out.lines, 5)
	assert.Equal(t, "Rank 0: [WARNING]: "+LeakWarning+"\n", out.lines[2])
	assert.Contains(t, out.lines[3], "Timer 'Y' stopped")
	assert.Contains(t, out.lines[4], "Timer 'X' stopped")
	assert.Empty(t, c.Timers())

	assert.Equal(t, 1, rec.Finalized())
	for i, n := range out.finalized {
		assert.Zero(t, n, "запись %d выполнена после Finalize", i)
	}
}

func TestClose_LeakWarningRespectsFiltering(t *testing.T) {
	// Warning не проходит лимит Error: предупреждения нет, таймер всё равно остановлен
	c, buf := newTestCoordinator(grouptest.NewRecorder(0, 1), severity.Error, severity.RankZero,
		WithClock(clockAt(0, time.Second).now))

	c.TimerStart(severity.Critical, "X")
	require.NoError(t, c.Close())

	lines := outputLines(buf)
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "Timer 'X' started")
	assert.Contains(t, lines[1], "Timer 'X' stopped")
}

func TestTimer_Spans(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	defer func() { _ = tp.Shutdown(context.Background()) }()

	clock := clockAt(0, time.Second, 2*time.Second, 3*time.Second)
	c, _ := newTestCoordinator(grouptest.NewRecorder(2, 4), severity.Info, severity.AllRanks,
		WithTracer(tp.Tracer("test")), WithClock(clock.now))

	c.TimerStart(severity.Info, "outer")
	c.TimerStart(severity.Info, "inner")
	c.TimerStop()
	c.TimerStop()

	spans := exporter.GetSpans()
	require.Len(t, spans, 2)

	inner, outer := spans[0], spans[1]
	assert.Equal(t, "inner", inner.Name)
	assert.Equal(t, "outer", outer.Name)
	assert.Equal(t, outer.SpanContext.SpanID(), inner.Parent.SpanID(), "вложенный таймер — дочерний span")
	assert.Equal(t, 3*time.Second, outer.EndTime.Sub(outer.StartTime))
	assert.Equal(t, time.Second, inner.EndTime.Sub(inner.StartTime))

	attrs := make(map[string]any)
	for _, a := range outer.Attributes {
		attrs[string(a.Key)] = a.Value.AsInterface()
	}
	assert.EqualValues(t, 2, attrs["rank"])
	assert.Equal(t, "info", attrs["severity"])
}

type recordedTimer struct {
	name     string
	severity string
	duration time.Duration
}

type fakeCollector struct {
	barriers int
	emits    map[string]int
	timers   []recordedTimer
	pushes   int
}

func (f *fakeCollector) RecordBarrier() { f.barriers++ }

func (f *fakeCollector) RecordEmit(s string) {
	if f.emits == nil {
		f.emits = make(map[string]int)
	}
	f.emits[s]++
}

func (f *fakeCollector) RecordTimer(name, s string, d time.Duration) {
	f.timers = append(f.timers, recordedTimer{name, s, d})
}

func (f *fakeCollector) Push(context.Context) error {
	f.pushes++
	return nil
}

func TestTimer_Metrics(t *testing.T) {
	m := &fakeCollector{}
	c, _ := newTestCoordinator(grouptest.NewRecorder(0, 2), severity.Info, severity.AllRanks,
		WithMetrics(m), WithClock(clockAt(0, 1500*time.Millisecond).now))

	c.TimerStart(severity.Notice, "load")
	c.TimerStop()
	require.NoError(t, c.Close())

	assert.Equal(t, 4, m.barriers)
	assert.Equal(t, 2, m.emits["notice"])
	assert.Equal(t, []recordedTimer{{"load", "notice", 1500 * time.Millisecond}}, m.timers)
	assert.Equal(t, 1, m.pushes, "метрики отправляются один раз при Close")
}
