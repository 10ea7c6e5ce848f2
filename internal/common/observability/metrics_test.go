package observability

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func TestRecordJob(t *testing.T) {
	reader := metric.NewManualReader()
	provider := metric.NewMeterProvider(metric.WithReader(reader))
	defer provider.Shutdown(context.Background())

	o, err := newWithMeter(provider.Meter("test"))
	require.NoError(t, err)

	ctx := context.Background()
	o.RecordJob(ctx, "assemble-context", "completed", 12*time.Millisecond)
	o.RecordJob(ctx, "assemble-context", "failed", 3*time.Millisecond)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))
	require.Len(t, rm.ScopeMetrics, 1)

	names := map[string]metricdata.Aggregation{}
	for _, m := range rm.ScopeMetrics[0].Metrics {
		names[m.Name] = m.Data
	}

	sum, ok := names["docgen.jobs.processed"].(metricdata.Sum[int64])
	require.True(t, ok)
	var total int64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}
	assert.Equal(t, int64(2), total)

	_, ok = names["docgen.jobs.duration"].(metricdata.Histogram[float64])
	assert.True(t, ok)
}

func TestNilObservability(t *testing.T) {
	var o *Observability
	assert.NotPanics(t, func() {
		o.RecordJob(context.Background(), "x", "completed", time.Second)
	})
	assert.NoError(t, o.Shutdown(context.Background()))
}
