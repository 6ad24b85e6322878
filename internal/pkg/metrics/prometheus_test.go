package metrics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Kargones/rankmgr/internal/pkg/logging"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func enabledConfig(url string) Config {
	return Config{
		Enabled:        true,
		PushgatewayURL: url,
		JobName:        "rankmgr-test",
		Timeout:        5 * time.Second,
		InstanceLabel:  "node-a",
	}
}

func gatherNames(t *testing.T, c *PrometheusCollector) map[string]float64 {
	t.Helper()
	families, err := c.Registry().Gather()
	require.NoError(t, err)

	values := make(map[string]float64)
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			switch {
			case m.GetCounter() != nil:
				values[mf.GetName()] += m.GetCounter().GetValue()
			case m.GetHistogram() != nil:
				values[mf.GetName()] += float64(m.GetHistogram().GetSampleCount())
			}
		}
	}
	return values
}

func TestPrometheusCollector_Records(t *testing.T) {
	collector, err := NewPrometheusCollector(enabledConfig("http://localhost:9091"), 2, logging.NewNopLogger())
	require.NoError(t, err)

	collector.RecordBarrier()
	collector.RecordBarrier()
	collector.RecordEmit("info")
	collector.RecordTimer("solve", "info", 1500*time.Millisecond)

	values := gatherNames(t, collector)
	assert.Equal(t, 2.0, values["rankmgr_barrier_total"])
	assert.Equal(t, 1.0, values["rankmgr_lines_emitted_total"])
	assert.Equal(t, 1.0, values["rankmgr_timer_duration_seconds"])
}

func TestPrometheusCollector_PushGroupsByRank(t *testing.T) {
	var method, path string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		method = r.Method
		path = r.URL.Path
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	collector, err := NewPrometheusCollector(enabledConfig(server.URL), 3, logging.NewNopLogger())
	require.NoError(t, err)
	collector.RecordBarrier()

	require.NoError(t, collector.Push(context.Background()))
	assert.Equal(t, http.MethodPut, method)
	assert.Contains(t, path, "/metrics/job/rankmgr-test")
	assert.Contains(t, path, "/rank/3")
	assert.Contains(t, path, "/instance/node-a")
}

func TestPrometheusCollector_PushErrorIsSwallowed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	collector, err := NewPrometheusCollector(enabledConfig(server.URL), 0, logging.NewNopLogger())
	require.NoError(t, err)

	assert.NoError(t, collector.Push(context.Background()))
}

func TestPrometheusCollector_PushCancelled(t *testing.T) {
	called := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	collector, err := NewPrometheusCollector(enabledConfig(server.URL), 0, logging.NewNopLogger())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.NoError(t, collector.Push(ctx))
	assert.False(t, called, "отменённый контекст не должен отправлять запрос")
}

func TestNewCollector_Disabled(t *testing.T) {
	collector, err := NewCollector(Config{Enabled: false}, 0, logging.NewNopLogger())
	require.NoError(t, err)

	_, isNop := collector.(*NopCollector)
	assert.True(t, isNop)

	collector.RecordBarrier()
	collector.RecordEmit("debug")
	collector.RecordTimer("t", "debug", time.Second)
	assert.NoError(t, collector.Push(context.Background()))
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr error
	}{
		{"disabled", Config{}, nil},
		{"valid", enabledConfig("http://pg:9091"), nil},
		{"no url", Config{Enabled: true, JobName: "j", Timeout: time.Second}, ErrPushgatewayURLRequired},
		{"bad url", Config{Enabled: true, PushgatewayURL: "pg:9091", JobName: "j", Timeout: time.Second}, ErrPushgatewayURLInvalid},
		{"no job", Config{Enabled: true, PushgatewayURL: "http://pg", Timeout: time.Second}, ErrJobNameRequired},
		{"no timeout", Config{Enabled: true, PushgatewayURL: "http://pg", JobName: "j"}, ErrInvalidTimeout},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestSanitizeLabel(t *testing.T) {
	assert.Equal(t, "a_b", sanitizeLabel("a\nb"))
	long := strings.Repeat("я", maxLabelLength+10)
	assert.Len(t, []rune(sanitizeLabel(long)), maxLabelLength)
}
