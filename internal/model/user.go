// Package model はドメインモデルを定義する。
package model

import "time"

// RoleUser は登録時に付与される既定のロール。
const RoleUser = "user"

// User はサービス利用ユーザーを表す。
type User struct {
	ID           string
	FullName     string
	Email        string
	PasswordHash string
	Role         string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// UserUpdate はプロフィールの部分更新を表す。
// nilのフィールドは変更せず、既存の値を維持する。
type UserUpdate struct {
	FullName *string
	Email    *string
	Role     *string
}

// IsEmpty は更新対象のフィールドが1つも指定されていないかを返す。
func (u UserUpdate) IsEmpty() bool {
	return u.FullName == nil && u.Email == nil && u.Role == nil
}

// Session はユーザーのログインセッションを表す。
// IDは不透明なベアラートークンそのものであり、主キーと資格情報を兼ねる。
// 有効期限は持たず、明示的に破棄されるまで有効。
type Session struct {
	ID           string
	UserID       string
	LastActivity time.Time
	CreatedAt    time.Time
}
