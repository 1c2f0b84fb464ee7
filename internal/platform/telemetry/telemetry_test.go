package telemetry

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
)

func TestObservePrediction(t *testing.T) {
	m := New("cardio")
	m.ObservePrediction(10 * time.Millisecond)
	m.ObservePrediction(30 * time.Millisecond)

	if got := m.TotalPredictions(); got != 2 {
		t.Errorf("expected 2 predictions, got %d", got)
	}
	avg := m.AvgLatencyMs()
	if avg < 15 || avg > 25 {
		t.Errorf("expected avg latency near 20ms, got %f", avg)
	}
}

func TestAvgLatency_Empty(t *testing.T) {
	m := New("cardio")
	if got := m.AvgLatencyMs(); got != 0 {
		t.Errorf("expected 0 avg latency before traffic, got %f", got)
	}
}

func TestHandler_Exposition(t *testing.T) {
	m := New("cardio")
	m.ModelsLoaded.Set(3)
	m.ObservePrediction(5 * time.Millisecond)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := m.Handler()(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "cardio_predictions_total 1") {
		t.Errorf("expected predictions counter in exposition, got:\n%s", body)
	}
	if !strings.Contains(body, "cardio_models_loaded 3") {
		t.Errorf("expected models gauge in exposition, got:\n%s", body)
	}
}
