package telemetry_test

import (
	"context"
	"testing"
	"time"

	"github.com/orderbridge/backend/internal/infrastructure/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.uber.org/zap"
)

func TestNewMeterProvider_Disabled(t *testing.T) {
	ctx := context.Background()
	mp, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{Enabled: false}, zap.NewNop())
	require.NoError(t, err)
	assert.False(t, mp.IsEnabled())
	assert.NotNil(t, mp.Meter("test"))
	assert.NoError(t, mp.Shutdown(ctx))
}

func TestMetricHelpers(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })
	meter := provider.Meter("test")
	ctx := context.Background()

	counter, err := telemetry.NewCounter(meter, "requests_total", "Requests", "{requests}")
	require.NoError(t, err)
	counter.Inc(ctx, telemetry.AttrHTTPMethod.String("GET"))
	counter.Add(ctx, 4, telemetry.AttrHTTPMethod.String("GET"))

	hist, err := telemetry.NewHistogram(meter, telemetry.HistogramOpts{
		Name:       "request_duration_seconds",
		Unit:       "s",
		Boundaries: telemetry.HTTPDurationBuckets,
	})
	require.NoError(t, err)
	hist.RecordDuration(ctx, 1500*time.Millisecond)
	hist.Record(ctx, 0.02)

	gauge, err := telemetry.NewGauge(meter, "open_pages", "Open pages", "{pages}")
	require.NoError(t, err)
	gauge.Record(ctx, 3)
	gauge.Record(ctx, 2)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))

	found := map[string]bool{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			found[m.Name] = true
			switch data := m.Data.(type) {
			case metricdata.Sum[int64]:
				require.Len(t, data.DataPoints, 1)
				assert.Equal(t, int64(5), data.DataPoints[0].Value)
			case metricdata.Histogram[float64]:
				require.Len(t, data.DataPoints, 1)
				assert.Equal(t, uint64(2), data.DataPoints[0].Count)
				assert.InDelta(t, 1.52, data.DataPoints[0].Sum, 1e-9)
			case metricdata.Gauge[int64]:
				require.Len(t, data.DataPoints, 1)
				assert.Equal(t, int64(2), data.DataPoints[0].Value)
			}
		}
	}
	assert.True(t, found["requests_total"])
	assert.True(t, found["request_duration_seconds"])
	assert.True(t, found["open_pages"])
}
