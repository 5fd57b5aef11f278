// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/hitoshi/kakeibo/internal/model"
)

// ErrDuplicateEmail はメールアドレスの一意制約違反を表す。
var ErrDuplicateEmail = errors.New("email already exists")

// UserRepository はユーザーデータの永続化インターフェース。
type UserRepository interface {
	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.User, error)

	// FindByEmail はメールアドレスでユーザーを検索する。見つからない場合はnilを返す。
	FindByEmail(ctx context.Context, email string) (*model.User, error)

	// Create はユーザーを作成する。メールアドレスが重複する場合はErrDuplicateEmailを返す。
	Create(ctx context.Context, user *model.User) error

	// Update はnilでないフィールドのみを更新し、更新後のユーザーを返す。
	// 見つからない場合はnilを返す。メールアドレスが重複する場合はErrDuplicateEmailを返す。
	Update(ctx context.Context, id string, update model.UserUpdate, updatedAt time.Time) (*model.User, error)

	// UpdatePassword はパスワードハッシュを置き換える。対象が存在しない場合はfalseを返す。
	UpdatePassword(ctx context.Context, id, passwordHash string, updatedAt time.Time) (bool, error)

	// DeleteByID は指定IDのユーザーを削除する。
	// 関連するsessions、expensesはCASCADE削除される。
	DeleteByID(ctx context.Context, id string) error
}

// SessionRepository はセッションデータの永続化インターフェース。
type SessionRepository interface {
	// Create はセッションを作成する。
	Create(ctx context.Context, session *model.Session) error

	// Touch はセッションのlast_activityをatと比較して新しい方に更新し、更新後のセッションを返す。
	// 更新と読み出しは単一の原子的操作で行い、last_activityが巻き戻ることはない。
	// 見つからない場合はnilを返す。
	Touch(ctx context.Context, id string, at time.Time) (*model.Session, error)

	// DeleteByID は指定IDのセッションを削除する。削除した場合はtrueを返す。
	DeleteByID(ctx context.Context, id string) (bool, error)

	// DeleteByUserID は指定ユーザーの全セッションを削除する。
	DeleteByUserID(ctx context.Context, userID string) error
}

// ExpenseRepository は支出データの読み取りインターフェース。
// 支出のCRUDは本サービスの範囲外であり、分析に必要な読み取りのみを提供する。
type ExpenseRepository interface {
	// ListByUserID はユーザーの全支出をカテゴリ名付きでexpense_date降順に返す。
	ListByUserID(ctx context.Context, userID string) ([]model.Expense, error)
}
