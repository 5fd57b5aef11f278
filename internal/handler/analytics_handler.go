package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/hitoshi/kakeibo/internal/model"
)

// AnalyticsServiceInterface は分析ハンドラーが必要とするサービスインターフェース。
type AnalyticsServiceInterface interface {
	Atypical(ctx context.Context, userID string) ([]model.AtypicalExpense, error)
	CategoryTotals(ctx context.Context, userID string) ([]model.CategoryTotal, error)
	MonthlyTotals(ctx context.Context, userID string) ([]model.MonthTotal, error)
}

// AnalyticsHandler は支出分析のHTTPハンドラー。
// レスポンスのキーは既存フロントエンドとの互換のためスペイン語を維持する。
type AnalyticsHandler struct {
	service AnalyticsServiceInterface
}

// NewAnalyticsHandler はAnalyticsHandlerを生成する。
func NewAnalyticsHandler(service AnalyticsServiceInterface) *AnalyticsHandler {
	return &AnalyticsHandler{service: service}
}

type atypicalExpenseResponse struct {
	ID          string              `json:"id"`
	Date        time.Time           `json:"fecha"`
	Description string              `json:"descripcion"`
	Category    string              `json:"categoria"`
	Amount      float64             `json:"monto"`
	Flags       []model.AnomalyFlag `json:"flags"`
	Message     string              `json:"mensaje"`
}

type atypicalListResponse struct {
	Data []atypicalExpenseResponse `json:"data"`
}

type categoryTotalResponse struct {
	CategoryID string  `json:"category_id"`
	Category   string  `json:"category"`
	Total      float64 `json:"total"`
}

type monthTotalResponse struct {
	Month int     `json:"mes"`
	Total float64 `json:"total"`
}

// chartResponse はグラフ用集計のレスポンス。
type chartResponse[T any] struct {
	Msg  string `json:"msg"`
	Data []T    `json:"data"`
}

// Atypical は非定型支出の一覧を返す。
// GET /{userId}/atipicos
func (h *AnalyticsHandler) Atypical(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathUserID(w, r)
	if !ok {
		return
	}

	result, err := h.service.Atypical(r.Context(), userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	data := make([]atypicalExpenseResponse, len(result))
	for i, a := range result {
		data[i] = atypicalExpenseResponse{
			ID:          a.ID,
			Date:        a.Date,
			Description: a.Description,
			Category:    a.CategoryName,
			Amount:      a.Amount,
			Flags:       a.Flags,
			Message:     a.Message,
		}
	}
	writeJSON(w, http.StatusOK, atypicalListResponse{Data: data})
}

// ByCategory はカテゴリ別の支出合計を返す。
// GET /grafico/categoria/{userId}
func (h *AnalyticsHandler) ByCategory(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathUserID(w, r)
	if !ok {
		return
	}

	totals, err := h.service.CategoryTotals(r.Context(), userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	data := make([]categoryTotalResponse, len(totals))
	for i, t := range totals {
		data[i] = categoryTotalResponse{CategoryID: t.CategoryID, Category: t.CategoryName, Total: t.Total}
	}
	writeJSON(w, http.StatusOK, chartResponse[categoryTotalResponse]{Msg: "Totales por categoria", Data: data})
}

// ByMonth は暦月別の支出合計を返す。
// GET /grafico/mensual/{userId}
func (h *AnalyticsHandler) ByMonth(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathUserID(w, r)
	if !ok {
		return
	}

	totals, err := h.service.MonthlyTotals(r.Context(), userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	data := make([]monthTotalResponse, len(totals))
	for i, t := range totals {
		data[i] = monthTotalResponse{Month: t.Month, Total: t.Total}
	}
	writeJSON(w, http.StatusOK, chartResponse[monthTotalResponse]{Msg: "Totales por mes", Data: data})
}

// pathUserID はURLパスの{userId}をUUIDとして検証し、正規化した文字列を返す。
func pathUserID(w http.ResponseWriter, r *http.Request) (string, bool) {
	raw := chi.URLParam(r, "userId")
	id, err := uuid.Parse(raw)
	if err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidUserIDError(raw))
		return "", false
	}
	return id.String(), true
}
