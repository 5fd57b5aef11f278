package analytics

import (
	"sort"

	"github.com/hitoshi/kakeibo/internal/model"
)

// TotalsByCategory はカテゴリ別に金額を合計する。
// 支出のないカテゴリは結果に含まれない。結果はカテゴリID昇順。
func TotalsByCategory(expenses []model.Expense) []model.CategoryTotal {
	byID := make(map[string]*model.CategoryTotal)
	for _, e := range expenses {
		ct, ok := byID[e.CategoryID]
		if !ok {
			ct = &model.CategoryTotal{CategoryID: e.CategoryID, CategoryName: e.CategoryName}
			byID[e.CategoryID] = ct
		}
		ct.Total += e.Amount
	}

	result := make([]model.CategoryTotal, 0, len(byID))
	for _, ct := range byID {
		result = append(result, *ct)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CategoryID < result[j].CategoryID
	})
	return result
}

// TotalsByMonth は暦月（1〜12）別に金額を合計する。結果は月の昇順。
//
// 年は区別しないため、異なる年の同じ月は1つにまとめられる。
// 月はUTCで判定する。expense_dateはTIMESTAMPTZで保存され、スキャン時のロケーションは
// 接続のタイムゾーン設定に依存するため、UTCに揃えないと月末・月初の支出が前後の月に移る。
func TotalsByMonth(expenses []model.Expense) []model.MonthTotal {
	byMonth := make(map[int]float64)
	for _, e := range expenses {
		byMonth[int(e.ExpenseDate.UTC().Month())] += e.Amount
	}

	result := make([]model.MonthTotal, 0, len(byMonth))
	for month, total := range byMonth {
		result = append(result, model.MonthTotal{Month: month, Total: total})
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Month < result[j].Month
	})
	return result
}
