package model

import "time"

// Expense はユーザーが記録した支出を表す。
// 分析コンポーネントからは読み取り専用として扱う。
type Expense struct {
	ID           string
	UserID       string
	CategoryID   string
	CategoryName string // categoriesテーブルとJOINして取得される
	Amount       float64
	ExpenseDate  time.Time
	Description  string
	IsRecurring  bool
}

// Category は支出カテゴリを表す。
type Category struct {
	ID          string
	Name        string
	Description string
	CreatedAt   time.Time
}

// AnomalyFlag は非定型支出と判定された理由を表す。
type AnomalyFlag string

const (
	// FlagUnusualAmount は金額が全支出の平均の1.5倍を超えることを示す。
	FlagUnusualAmount AnomalyFlag = "MONTO_INUSUAL"
	// FlagInfrequentCategory はカテゴリの利用回数が3回以下であることを示す。
	FlagInfrequentCategory AnomalyFlag = "CATEGORIA_POCO_FRECUENTE"
)

// AtypicalExpense は非定型と判定された支出と、その理由を表す。
type AtypicalExpense struct {
	ID           string
	Date         time.Time
	Description  string
	CategoryName string
	Amount       float64
	Flags        []AnomalyFlag
	Message      string
}

// CategoryTotal はカテゴリ別の支出合計を表す。
type CategoryTotal struct {
	CategoryID   string
	CategoryName string
	Total        float64
}

// MonthTotal は暦月（1〜12）別の支出合計を表す。年は区別しない。
type MonthTotal struct {
	Month int
	Total float64
}
