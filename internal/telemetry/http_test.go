package telemetry

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

func newTestRouter(middlewares ...func(http.Handler) http.Handler) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middlewares...)
	r.Get("/v1/timing", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.Put("/v1/period", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	})
	return r
}

func TestNewHTTPMetrics(t *testing.T) {
	t.Parallel()

	metrics, err := NewHTTPMetrics(nil)
	require.NoError(t, err)
	assert.Nil(t, metrics)

	mp := sdkmetric.NewMeterProvider()
	defer func() { _ = mp.Shutdown(context.Background()) }()

	metrics, err = NewHTTPMetrics(mp)
	require.NoError(t, err)
	require.NotNil(t, metrics)
	assert.NotNil(t, metrics.requestDuration)
	assert.NotNil(t, metrics.requestsTotal)
	assert.NotNil(t, metrics.activeRequests)
}

func TestHTTPMetrics_Middleware(t *testing.T) {
	t.Parallel()

	t.Run("passes through when metrics is nil", func(t *testing.T) {
		t.Parallel()

		var metrics *HTTPMetrics
		router := newTestRouter(metrics.Middleware)

		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/v1/timing", nil))
		assert.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("records requests by route and status", func(t *testing.T) {
		t.Parallel()

		reader := sdkmetric.NewManualReader()
		mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
		defer func() { _ = mp.Shutdown(context.Background()) }()

		mw, err := MetricsMiddleware(mp)
		require.NoError(t, err)
		router := newTestRouter(mw)

		for _, req := range []*http.Request{
			httptest.NewRequest(http.MethodGet, "/v1/timing?periodOffset=1", nil),
			httptest.NewRequest(http.MethodGet, "/v1/timing", nil),
			httptest.NewRequest(http.MethodPut, "/v1/period", nil),
			httptest.NewRequest(http.MethodGet, "/nowhere", nil),
		} {
			router.ServeHTTP(httptest.NewRecorder(), req)
		}

		var rm metricdata.ResourceMetrics
		require.NoError(t, reader.Collect(context.Background(), &rm))

		counts := map[string]int64{}
		var sawHistogram bool
		for _, scope := range rm.ScopeMetrics {
			if scope.Scope.Name != HTTPMetricsMeterName {
				continue
			}
			for _, m := range scope.Metrics {
				switch data := m.Data.(type) {
				case metricdata.Sum[int64]:
					if m.Name != "vsync_reactor_http_requests_total" {
						continue
					}
					for _, dp := range data.DataPoints {
						route, _ := dp.Attributes.Value("route")
						status, _ := dp.Attributes.Value("status_code")
						counts[route.AsString()+" "+status.AsString()] += dp.Value
					}
				case metricdata.Histogram[float64]:
					sawHistogram = m.Name == "vsync_reactor_http_request_duration_seconds"
				}
			}
		}

		assert.True(t, sawHistogram, "expected request duration histogram")
		assert.Equal(t, map[string]int64{
			"/v1/timing 200":    2,
			"/v1/period 400":    1,
			"unknown_route 404": 1,
		}, counts)
	})
}

func newTestTracerProvider(t *testing.T) (*tracetest.InMemoryExporter, *sdktrace.TracerProvider) {
	t.Helper()
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })
	return exporter, tp
}

func spanAttr(attrs []attribute.KeyValue, key attribute.Key) (attribute.Value, bool) {
	for _, attr := range attrs {
		if attr.Key == key {
			return attr.Value, true
		}
	}
	return attribute.Value{}, false
}

func TestTracingMiddleware(t *testing.T) {
	t.Parallel()

	t.Run("nil provider passes through", func(t *testing.T) {
		t.Parallel()

		router := newTestRouter(TracingMiddleware(nil))
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/v1/timing", nil))
		assert.Equal(t, http.StatusOK, rr.Code)
	})

	tests := []struct {
		name       string
		method     string
		path       string
		wantName   string
		wantStatus int
		wantCode   codes.Code
	}{
		{
			name:       "successful request",
			method:     http.MethodGet,
			path:       "/v1/timing?periodOffset=2",
			wantName:   "GET /v1/timing",
			wantStatus: http.StatusOK,
			wantCode:   codes.Ok,
		},
		{
			name:       "client error",
			method:     http.MethodPut,
			path:       "/v1/period",
			wantName:   "PUT /v1/period",
			wantStatus: http.StatusBadRequest,
			wantCode:   codes.Error,
		},
		{
			name:       "unmatched route",
			method:     http.MethodGet,
			path:       "/v1/unknown/123",
			wantName:   "GET " + unknownRoute,
			wantStatus: http.StatusNotFound,
			wantCode:   codes.Error,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			exporter, tp := newTestTracerProvider(t)
			router := newTestRouter(TracingMiddleware(tp))

			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, httptest.NewRequest(tt.method, tt.path, nil))
			assert.Equal(t, tt.wantStatus, rr.Code)

			spans := exporter.GetSpans()
			require.Len(t, spans, 1)
			span := spans[0]
			assert.Equal(t, tt.wantName, span.Name)
			assert.Equal(t, tt.wantCode, span.Status.Code)

			status, ok := spanAttr(span.Attributes, semconv.HTTPResponseStatusCodeKey)
			require.True(t, ok)
			assert.Equal(t, int64(tt.wantStatus), status.AsInt64())

			method, ok := spanAttr(span.Attributes, semconv.HTTPRequestMethodKey)
			require.True(t, ok)
			assert.Equal(t, tt.method, method.AsString())
		})
	}
}
