package telemetry

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func useRecorder(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

	prevProvider := otel.GetTracerProvider()
	prevGlobal := globalTelemetry
	otel.SetTracerProvider(provider)
	globalTelemetry = &Telemetry{provider: provider, tracer: provider.Tracer("test")}
	t.Cleanup(func() {
		otel.SetTracerProvider(prevProvider)
		globalTelemetry = prevGlobal
	})
	return recorder
}

func TestInit_Disabled(t *testing.T) {
	tel, err := Init(context.Background(), &Config{ServiceName: "session-planner"})
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	if tel.provider != nil {
		t.Error("disabled telemetry should not own a provider")
	}
	if err := Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown: %v", err)
	}

	if _, err := Init(context.Background(), nil); err != nil {
		t.Errorf("Init(nil): %v", err)
	}
}

func TestStartSpan_SetSpanError(t *testing.T) {
	recorder := useRecorder(t)

	ctx, span := StartSpan(context.Background(), "service.test")
	if GetTraceID(ctx) == "" {
		t.Error("expected a trace id inside the span")
	}
	AddSpanEvent(ctx, "checked")
	SetSpanError(ctx, errors.New("boom"))
	span.End()

	ended := recorder.Ended()
	if len(ended) != 1 {
		t.Fatalf("ended spans = %d, want 1", len(ended))
	}
	if ended[0].Status().Code != codes.Error {
		t.Errorf("status = %v, want Error", ended[0].Status().Code)
	}
	if len(ended[0].Events()) < 2 {
		t.Errorf("events = %d, want event plus exception", len(ended[0].Events()))
	}
}

func TestGetTraceID_NoSpan(t *testing.T) {
	if id := GetTraceID(context.Background()); id != "" {
		t.Errorf("GetTraceID = %q, want empty", id)
	}
}

func TestTracingMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	recorder := useRecorder(t)

	router := gin.New()
	router.Use(TracingMiddleware("session-planner"), TraceHeaderMiddleware())
	router.GET("/drafts/:id", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/drafts/abc", nil))

	if w.Header().Get(TraceIDHeader) == "" {
		t.Error("expected trace id response header")
	}
	ended := recorder.Ended()
	if len(ended) != 1 {
		t.Fatalf("ended spans = %d, want 1", len(ended))
	}
	if ended[0].Name() != "GET /drafts/:id" {
		t.Errorf("span name = %s", ended[0].Name())
	}
	if ended[0].Status().Code != codes.Error {
		t.Errorf("5xx should mark the span failed")
	}
}
