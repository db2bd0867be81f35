package observability

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"r2-dashboard/internal/config"
)

func TestSetupWithoutExporter(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.Config
	}{
		{name: "tracing off", cfg: config.Config{OTLPEndpoint: "collector:4318"}},
		{name: "no endpoint", cfg: config.Config{EnableTracing: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			shutdown, err := Setup(context.Background(), &tt.cfg, zerolog.Nop())
			require.NoError(t, err)
			assert.NoError(t, shutdown(context.Background()))
			assert.Contains(t, otel.GetTextMapPropagator().Fields(), "traceparent")
		})
	}
}

func TestSetupInstallsProvider(t *testing.T) {
	collector := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer collector.Close()

	previous := otel.GetTracerProvider()
	t.Cleanup(func() { otel.SetTracerProvider(previous) })

	cfg := &config.Config{
		ServiceName:   "r2-dashboard-test",
		Environment:   "test",
		EnableTracing: true,
		OTLPEndpoint:  strings.TrimPrefix(collector.URL, "http://"),
		OTLPInsecure:  true,
		TraceSample:   0.5,
	}
	shutdown, err := Setup(context.Background(), cfg, zerolog.Nop())
	require.NoError(t, err)

	_, ok := otel.GetTracerProvider().(*sdktrace.TracerProvider)
	assert.True(t, ok)

	_, span := Tracer().Start(context.Background(), "list_objects")
	span.End()
	assert.NoError(t, shutdown(context.Background()))
}

func TestSampleRatio(t *testing.T) {
	assert.Equal(t, 1.0, sampleRatio(0))
	assert.Equal(t, 1.0, sampleRatio(-2))
	assert.Equal(t, 1.0, sampleRatio(3))
	assert.Equal(t, 0.25, sampleRatio(0.25))
}
