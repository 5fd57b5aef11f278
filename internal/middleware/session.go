// Package middleware はHTTPミドルウェアを提供する。
package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/hitoshi/kakeibo/internal/model"
)

// TokenHeader はセッショントークン専用のリクエストヘッダー名。
const TokenHeader = "X-Token"

// contextKey はコンテキストに値を格納するための型安全なキー。
type contextKey string

// userIDContextKey はリクエストコンテキストにユーザーIDを格納するためのキー。
var userIDContextKey = contextKey("user_id")

// SessionValidator はトークンの検証に必要なインターフェース。
// auth.SessionAuthorityの部分集合として定義する。
type SessionValidator interface {
	Validate(ctx context.Context, token string) (string, error)
}

// ExtractToken はリクエストからセッショントークンを取り出す。
// X-Tokenヘッダーを優先し、なければAuthorization: Bearerを参照する。
// どちらもない場合は空文字を返す。
func ExtractToken(r *http.Request) string {
	if tok := strings.TrimSpace(r.Header.Get(TokenHeader)); tok != "" {
		return tok
	}

	authz := strings.TrimSpace(r.Header.Get("Authorization"))
	scheme, tok, ok := strings.Cut(authz, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(tok)
}

// NewSessionMiddleware はリクエストのトークンを検証するミドルウェアを返す。
// 認証済みユーザーIDをリクエストコンテキストに注入する。
// トークンなしは422、未知のトークンは403を返し、後続のハンドラーは実行しない。
func NewSessionMiddleware(validator SessionValidator) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := ExtractToken(r)
			if token == "" {
				WriteErrorResponse(w, http.StatusUnprocessableEntity, model.NewTokenRequiredError())
				return
			}

			userID, err := validator.Validate(r.Context(), token)
			if err != nil {
				switch {
				case model.HasCode(err, model.ErrCodeTokenRequired):
					WriteErrorResponse(w, http.StatusUnprocessableEntity, model.NewTokenRequiredError())
				case model.HasCode(err, model.ErrCodeInvalidToken):
					WriteErrorResponse(w, http.StatusForbidden, model.NewInvalidTokenError())
				default:
					slog.Error("failed to validate session",
						slog.String("error", err.Error()),
					)
					WriteInternalServerError(w)
				}
				return
			}

			setLoggedUserID(r.Context(), userID)
			ctx := context.WithValue(r.Context(), userIDContextKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserIDFromContext はリクエストコンテキストからユーザーIDを取得する。
// セッションミドルウェアを通過したリクエストでのみ有効。
func UserIDFromContext(ctx context.Context) (string, error) {
	userID, ok := ctx.Value(userIDContextKey).(string)
	if !ok || userID == "" {
		return "", fmt.Errorf("user ID not found in context")
	}
	return userID, nil
}

// ContextWithUserID はコンテキストにユーザーIDを注入する。
// テストやミドルウェア以外のコンテキスト生成で使用する。
func ContextWithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDContextKey, userID)
}
