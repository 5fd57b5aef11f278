package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/kakeibo/internal/model"
)

// --- モック定義 ---

type mockAnalyticsService struct {
	atypicalFn       func(ctx context.Context, userID string) ([]model.AtypicalExpense, error)
	categoryTotalsFn func(ctx context.Context, userID string) ([]model.CategoryTotal, error)
	monthlyTotalsFn  func(ctx context.Context, userID string) ([]model.MonthTotal, error)
}

func (m *mockAnalyticsService) Atypical(ctx context.Context, userID string) ([]model.AtypicalExpense, error) {
	if m.atypicalFn != nil {
		return m.atypicalFn(ctx, userID)
	}
	return []model.AtypicalExpense{}, nil
}

func (m *mockAnalyticsService) CategoryTotals(ctx context.Context, userID string) ([]model.CategoryTotal, error) {
	if m.categoryTotalsFn != nil {
		return m.categoryTotalsFn(ctx, userID)
	}
	return []model.CategoryTotal{}, nil
}

func (m *mockAnalyticsService) MonthlyTotals(ctx context.Context, userID string) ([]model.MonthTotal, error) {
	if m.monthlyTotalsFn != nil {
		return m.monthlyTotalsFn(ctx, userID)
	}
	return []model.MonthTotal{}, nil
}

var _ AnalyticsServiceInterface = (*mockAnalyticsService)(nil)

const testUserUUID = "3f1c9a52-6b7e-4d2a-9c11-0e5b7a8d4f60"

func analyticsRouter(svc AnalyticsServiceInterface) http.Handler {
	h := NewAnalyticsHandler(svc)
	r := chi.NewRouter()
	r.Get("/{userId}/atipicos", h.Atypical)
	r.Get("/grafico/categoria/{userId}", h.ByCategory)
	r.Get("/grafico/mensual/{userId}", h.ByMonth)
	return r
}

func TestAnalyticsHandler_Atypical_ResponseShape(t *testing.T) {
	date := time.Date(2025, 5, 2, 0, 0, 0, 0, time.UTC)
	var gotUser string
	svc := &mockAnalyticsService{
		atypicalFn: func(_ context.Context, userID string) ([]model.AtypicalExpense, error) {
			gotUser = userID
			return []model.AtypicalExpense{{
				ID:           "exp-1",
				Date:         date,
				Description:  "televisor",
				CategoryName: "electronica",
				Amount:       100,
				Flags:        []model.AnomalyFlag{model.FlagUnusualAmount, model.FlagInfrequentCategory},
				Message:      "msg",
			}}, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/"+testUserUUID+"/atipicos", nil)
	w := httptest.NewRecorder()
	analyticsRouter(svc).ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if gotUser != testUserUUID {
		t.Errorf("userID = %q, want %q", gotUser, testUserUUID)
	}

	var body struct {
		Data []map[string]any `json:"data"`
	}
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode: %v", err)
	}
	if len(body.Data) != 1 {
		t.Fatalf("len(data) = %d, want 1", len(body.Data))
	}
	row := body.Data[0]
	for _, key := range []string{"id", "fecha", "descripcion", "categoria", "monto", "flags", "mensaje"} {
		if _, ok := row[key]; !ok {
			t.Errorf("missing key %q", key)
		}
	}
	if row["categoria"] != "electronica" {
		t.Errorf("categoria = %v, want electronica", row["categoria"])
	}
	flags, _ := row["flags"].([]any)
	if len(flags) != 2 || flags[0] != "MONTO_INUSUAL" || flags[1] != "CATEGORIA_POCO_FRECUENTE" {
		t.Errorf("flags = %v", row["flags"])
	}
}

func TestAnalyticsHandler_Atypical_Empty_ReturnsEmptyArray(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/"+testUserUUID+"/atipicos", nil)
	w := httptest.NewRecorder()
	analyticsRouter(&mockAnalyticsService{}).ServeHTTP(w, req)

	if got := strings.TrimSpace(w.Body.String()); got != `{"data":[]}` {
		t.Errorf("body = %s, want {\"data\":[]}", got)
	}
}

func TestAnalyticsHandler_ByCategory_ResponseShape(t *testing.T) {
	svc := &mockAnalyticsService{
		categoryTotalsFn: func(_ context.Context, _ string) ([]model.CategoryTotal, error) {
			return []model.CategoryTotal{{CategoryID: "c1", CategoryName: "comida", Total: 25.5}}, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/grafico/categoria/"+testUserUUID, nil)
	w := httptest.NewRecorder()
	analyticsRouter(svc).ServeHTTP(w, req)

	want := `{"msg":"Totales por categoria","data":[{"category_id":"c1","category":"comida","total":25.5}]}`
	if got := strings.TrimSpace(w.Body.String()); got != want {
		t.Errorf("body = %s, want %s", got, want)
	}
}

func TestAnalyticsHandler_ByMonth_ResponseShape(t *testing.T) {
	svc := &mockAnalyticsService{
		monthlyTotalsFn: func(_ context.Context, _ string) ([]model.MonthTotal, error) {
			return []model.MonthTotal{{Month: 1, Total: 50}, {Month: 3, Total: 7.25}}, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/grafico/mensual/"+testUserUUID, nil)
	w := httptest.NewRecorder()
	analyticsRouter(svc).ServeHTTP(w, req)

	want := `{"msg":"Totales por mes","data":[{"mes":1,"total":50},{"mes":3,"total":7.25}]}`
	if got := strings.TrimSpace(w.Body.String()); got != want {
		t.Errorf("body = %s, want %s", got, want)
	}
}

func TestAnalyticsHandler_InvalidUserID_Returns400(t *testing.T) {
	called := false
	svc := &mockAnalyticsService{
		monthlyTotalsFn: func(_ context.Context, _ string) ([]model.MonthTotal, error) {
			called = true
			return nil, nil
		},
	}

	for _, path := range []string{"/grafico/mensual/not-a-uuid", "/12345/atipicos", "/grafico/categoria/abc"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		w := httptest.NewRecorder()
		analyticsRouter(svc).ServeHTTP(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want %d", path, w.Code, http.StatusBadRequest)
		}
		if body := decodeError(t, w); body.Code != model.ErrCodeInvalidUserID {
			t.Errorf("%s: code = %q, want %q", path, body.Code, model.ErrCodeInvalidUserID)
		}
	}
	if called {
		t.Error("service should not be called for invalid user id")
	}
}

func TestAnalyticsHandler_ServiceError_Returns500(t *testing.T) {
	svc := &mockAnalyticsService{
		categoryTotalsFn: func(_ context.Context, _ string) ([]model.CategoryTotal, error) {
			return nil, errors.New("db down")
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/grafico/categoria/"+testUserUUID, nil)
	w := httptest.NewRecorder()
	analyticsRouter(svc).ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want %d", w.Code, http.StatusInternalServerError)
	}
}
