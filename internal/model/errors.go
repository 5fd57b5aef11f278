// Package model はドメインモデルを定義する。
package model

import (
	"errors"
	"fmt"
)

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, validation, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeTokenRequired          = "TOKEN_REQUIRED"
	ErrCodeInvalidToken           = "INVALID_TOKEN"
	ErrCodeBadCredentials         = "BAD_CREDENTIALS"
	ErrCodeTokenNotFound          = "TOKEN_NOT_FOUND"
	ErrCodeEmailAlreadyRegistered = "EMAIL_ALREADY_REGISTERED"
	ErrCodePasswordTooLong        = "PASSWORD_TOO_LONG"
	ErrCodeInvalidRequest         = "INVALID_REQUEST"
	ErrCodeInvalidUserID          = "INVALID_USER_ID"
	ErrCodeUserNotFound           = "USER_NOT_FOUND"
	ErrCodeRateLimited            = "RATE_LIMIT_EXCEEDED"
	ErrCodeInternal               = "INTERNAL_ERROR"
)

// NewTokenRequiredError はトークン未指定エラーを生成する。
func NewTokenRequiredError() *APIError {
	return &APIError{
		Code:     ErrCodeTokenRequired,
		Message:  "Token requerido",
		Category: "auth",
		Action:   "X-Token ヘッダーまたは Authorization: Bearer ヘッダーでトークンを送信してください。",
	}
}

// NewInvalidTokenError は未知のトークンが提示された場合のエラーを生成する。
func NewInvalidTokenError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidToken,
		Message:  "Token invalido",
		Category: "auth",
		Action:   "ログインし直してください。",
	}
}

// NewBadCredentialsError はログイン失敗エラーを生成する。
// メールアドレスの存在有無は区別しない。
func NewBadCredentialsError() *APIError {
	return &APIError{
		Code:     ErrCodeBadCredentials,
		Message:  "Email o contraseña incorrectos",
		Category: "auth",
		Action:   "メールアドレスとパスワードを確認してください。",
	}
}

// NewTokenNotFoundError はログアウト対象のトークンが存在しない場合のエラーを生成する。
func NewTokenNotFoundError() *APIError {
	return &APIError{
		Code:     ErrCodeTokenNotFound,
		Message:  "Token no encontrado",
		Category: "auth",
		Action:   "既にログアウト済みの可能性があります。",
	}
}

// NewEmailAlreadyRegisteredError はメールアドレス重複エラーを生成する。
func NewEmailAlreadyRegisteredError() *APIError {
	return &APIError{
		Code:     ErrCodeEmailAlreadyRegistered,
		Message:  "El email ya está registrado",
		Category: "validation",
		Action:   "別のメールアドレスを指定するか、ログインしてください。",
	}
}

// NewPasswordTooLongError はbcryptの入力上限（72バイト）を超えるパスワードのエラーを生成する。
func NewPasswordTooLongError() *APIError {
	return &APIError{
		Code:     ErrCodePasswordTooLong,
		Message:  "La contraseña no puede superar 72 caracteres",
		Category: "validation",
		Action:   "72バイト以内のパスワードを指定してください。",
	}
}

// NewInvalidRequestError はリクエスト内容の不備を表すエラーを生成する。
func NewInvalidRequestError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidRequest,
		Message:  fmt.Sprintf("リクエストが不正です: %s", reason),
		Category: "validation",
		Action:   "リクエストの内容を確認してください。",
	}
}

// NewInvalidUserIDError はユーザーIDの形式が不正な場合のエラーを生成する。
func NewInvalidUserIDError(userID string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidUserID,
		Message:  fmt.Sprintf("無効なユーザーIDです: %s", userID),
		Category: "validation",
		Action:   "UUID形式のユーザーIDを指定してください。",
	}
}

// NewUserNotFoundError はユーザーが見つからない場合のエラーを生成する。
func NewUserNotFoundError() *APIError {
	return &APIError{
		Code:     ErrCodeUserNotFound,
		Message:  "Usuario no encontrado",
		Category: "auth",
		Action:   "ログインし直してください。",
	}
}

// NewRateLimitedError はレート制限超過エラーを生成する。
func NewRateLimitedError() *APIError {
	return &APIError{
		Code:     ErrCodeRateLimited,
		Message:  "Demasiadas solicitudes",
		Category: "system",
		Action:   "Retry-After ヘッダーの秒数だけ待ってから再度お試しください。",
	}
}

// NewInternalError は内部エラーを生成する。詳細はログにのみ残す。
func NewInternalError() *APIError {
	return &APIError{
		Code:     ErrCodeInternal,
		Message:  "Error interno del servidor",
		Category: "system",
		Action:   "しばらく待ってから再度お試しください。",
	}
}

// HasCode はerr（ラップされたものを含む）が指定コードのAPIErrorかを判定する。
func HasCode(err error, code string) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Code == code
}
