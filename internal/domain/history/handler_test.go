package history

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func newTestHandler(t *testing.T) (*echo.Echo, *Service) {
	t.Helper()
	e := echo.New()
	svc := newTestService(newMockRepo(), 500)
	NewHandler(svc, 500).RegisterRoutes(e)
	return e, svc
}

func TestGetHistory_ReturnsSubjectRecords(t *testing.T) {
	e, svc := newTestHandler(t)
	svc.Record(context.Background(), "user-1", record("pred-1"))
	svc.Record(context.Background(), "user-1", record("pred-2"))
	svc.Record(context.Background(), "user-2", record("pred-x"))

	req := httptest.NewRequest(http.MethodGet, "/history/user-1", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp historyResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.UserID != "user-1" || resp.Count != 2 {
		t.Errorf("expected user-1 with 2 records, got %s/%d", resp.UserID, resp.Count)
	}
	if resp.Predictions[0].ID != "pred-2" {
		t.Errorf("expected newest record first, got %s", resp.Predictions[0].ID)
	}
}

func TestGetHistory_UnknownSubjectEmptyList(t *testing.T) {
	e, _ := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/history/ghost", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp historyResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Count != 0 || resp.Predictions == nil {
		t.Errorf("expected empty non-null predictions, body: %s", rec.Body.String())
	}
}

func TestGetHistory_LimitQueryParam(t *testing.T) {
	e, svc := newTestHandler(t)
	for i := 0; i < 5; i++ {
		svc.Record(context.Background(), "user-1", record("pred-"+string(rune('a'+i))))
	}

	req := httptest.NewRequest(http.MethodGet, "/history/user-1?limit=3", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	var resp historyResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Count != 3 || resp.Limit != 3 {
		t.Errorf("expected count and limit 3, got %d/%d", resp.Count, resp.Limit)
	}
}
