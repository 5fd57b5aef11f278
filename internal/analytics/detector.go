// Package analytics は支出の非定型判定と集計レポートを提供する。
// いずれも入力の支出スライスのみに依存する純粋な計算であり、並行に呼び出してよい。
package analytics

import "github.com/hitoshi/kakeibo/internal/model"

const (
	// minSampleSize 未満の支出件数では判定を行わない。
	minSampleSize = 6
	// unusualAmountFactor を平均に掛けた値を超える金額をMONTO_INUSUALとする。
	unusualAmountFactor = 1.5
	// infrequentCategoryMax 以下の利用回数のカテゴリをCATEGORIA_POCO_FRECUENTEとする。
	infrequentCategoryMax = 3
)

// 判定結果ごとのメッセージ（既存フロントエンドに表示される文言）
const (
	messageBoth     = "Este gasto es mayor al promedio habitual y pertenece a una categoría que usas con poca frecuencia."
	messageAmount   = "Este gasto supera significativamente tu promedio habitual."
	messageCategory = "Esta categoría no es común dentro de tus gastos habituales."
)

// DetectAtypical は支出一覧から非定型の支出を抽出する。
//
// 件数がminSampleSize未満の場合は空スライスを返す。
// 平均は全件の単純平均、カテゴリ頻度は事前に一度だけ集計する。
// フラグが1つも付かない支出は結果に含めず、結果は入力と同じ順序を保つ。
func DetectAtypical(expenses []model.Expense) []model.AtypicalExpense {
	result := []model.AtypicalExpense{}
	n := len(expenses)
	if n < minSampleSize {
		return result
	}

	var sum float64
	frequency := make(map[string]int, n)
	for _, e := range expenses {
		sum += e.Amount
		frequency[e.CategoryID]++
	}
	threshold := unusualAmountFactor * (sum / float64(n))

	for _, e := range expenses {
		unusual := e.Amount > threshold
		infrequent := frequency[e.CategoryID] <= infrequentCategoryMax
		if !unusual && !infrequent {
			continue
		}

		flags := make([]model.AnomalyFlag, 0, 2)
		if unusual {
			flags = append(flags, model.FlagUnusualAmount)
		}
		if infrequent {
			flags = append(flags, model.FlagInfrequentCategory)
		}

		result = append(result, model.AtypicalExpense{
			ID:           e.ID,
			Date:         e.ExpenseDate,
			Description:  e.Description,
			CategoryName: e.CategoryName,
			Amount:       e.Amount,
			Flags:        flags,
			Message:      messageFor(unusual, infrequent),
		})
	}

	return result
}

func messageFor(unusual, infrequent bool) string {
	switch {
	case unusual && infrequent:
		return messageBoth
	case unusual:
		return messageAmount
	default:
		return messageCategory
	}
}
