package analytics

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hitoshi/kakeibo/internal/metrics"
	"github.com/hitoshi/kakeibo/internal/model"
	"github.com/hitoshi/kakeibo/internal/repository"
)

// レポート種別（メトリクスのラベル値）
const (
	ReportAtypical = "atypical"
	ReportCategory = "category"
	ReportMonthly  = "monthly"
)

// Service は支出リポジトリから読み出した支出に対して分析を行う。
type Service struct {
	expenses repository.ExpenseRepository
	metrics  metrics.MetricsCollector
}

// NewService はServiceを生成する。
// mcがnilの場合はメトリクスを記録しない。
func NewService(expenses repository.ExpenseRepository, mc metrics.MetricsCollector) *Service {
	if mc == nil {
		mc = metrics.Nop{}
	}
	return &Service{expenses: expenses, metrics: mc}
}

// Atypical は指定ユーザーの非定型支出を返す。
func (s *Service) Atypical(ctx context.Context, userID string) ([]model.AtypicalExpense, error) {
	start := time.Now()
	expenses, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	result := DetectAtypical(expenses)
	for _, a := range result {
		for _, f := range a.Flags {
			s.metrics.RecordAtypicalFlag(string(f))
		}
	}
	s.metrics.RecordReportLatency(ReportAtypical, time.Since(start))

	slog.Debug("atypical expenses detected",
		slog.String("user_id", userID),
		slog.Int("expenses", len(expenses)),
		slog.Int("flagged", len(result)),
	)
	return result, nil
}

// CategoryTotals は指定ユーザーのカテゴリ別合計を返す。
func (s *Service) CategoryTotals(ctx context.Context, userID string) ([]model.CategoryTotal, error) {
	start := time.Now()
	expenses, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	result := TotalsByCategory(expenses)
	s.metrics.RecordReportLatency(ReportCategory, time.Since(start))
	return result, nil
}

// MonthlyTotals は指定ユーザーの暦月別合計を返す。
func (s *Service) MonthlyTotals(ctx context.Context, userID string) ([]model.MonthTotal, error) {
	start := time.Now()
	expenses, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	result := TotalsByMonth(expenses)
	s.metrics.RecordReportLatency(ReportMonthly, time.Since(start))
	return result, nil
}

func (s *Service) load(ctx context.Context, userID string) ([]model.Expense, error) {
	expenses, err := s.expenses.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	return expenses, nil
}
