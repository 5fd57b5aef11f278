// Package user はユーザープロフィールと退会処理のドメインロジックを提供する。
package user

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/hitoshi/kakeibo/internal/model"
	"github.com/hitoshi/kakeibo/internal/repository"
)

// Service はユーザー管理のサービス層。
type Service struct {
	userRepo    repository.UserRepository
	sessionRepo repository.SessionRepository
	now         func() time.Time
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(userRepo repository.UserRepository, sessionRepo repository.SessionRepository) *Service {
	return &Service{
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
		now:         time.Now,
	}
}

// GetProfile はユーザーのプロフィールを取得する。
func (s *Service) GetProfile(ctx context.Context, userID string) (*model.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("ユーザーの取得に失敗しました: %w", err)
	}
	if user == nil {
		return nil, model.NewUserNotFoundError()
	}
	return user, nil
}

// UpdateProfile は指定されたフィールドのみを更新する。
// 未指定のフィールドは既存の値を維持する。
func (s *Service) UpdateProfile(ctx context.Context, userID string, update model.UserUpdate) (*model.User, error) {
	if update.IsEmpty() {
		return nil, model.NewInvalidRequestError("更新するフィールドがありません")
	}
	update, err := normalize(update)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.Update(ctx, userID, update, s.now())
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, model.NewEmailAlreadyRegisteredError()
		}
		return nil, fmt.Errorf("ユーザーの更新に失敗しました: %w", err)
	}
	if user == nil {
		return nil, model.NewUserNotFoundError()
	}

	slog.Info("プロフィールを更新しました", slog.String("user_id", userID))
	return user, nil
}

// normalize は指定フィールドの前後空白を除去したコピーを返す。空文字は拒否する。
func normalize(update model.UserUpdate) (model.UserUpdate, error) {
	var out model.UserUpdate
	fields := []struct {
		name string
		in   *string
		out  **string
	}{
		{"full_name", update.FullName, &out.FullName},
		{"email", update.Email, &out.Email},
		{"role", update.Role, &out.Role},
	}
	for _, f := range fields {
		if f.in == nil {
			continue
		}
		v := strings.TrimSpace(*f.in)
		if v == "" {
			return model.UserUpdate{}, model.NewInvalidRequestError(f.name + " は空にできません")
		}
		*f.out = &v
	}
	return out, nil
}

// Withdraw はユーザーの退会処理を実行する。
// 削除順序: sessions → user（expensesはCASCADE削除）
func (s *Service) Withdraw(ctx context.Context, userID string) error {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("ユーザーの取得に失敗しました: %w", err)
	}
	if user == nil {
		return model.NewUserNotFoundError()
	}

	slog.Info("退会処理を開始します", slog.String("user_id", userID))

	if err := s.sessionRepo.DeleteByUserID(ctx, userID); err != nil {
		return fmt.Errorf("セッションの削除に失敗しました: %w", err)
	}

	if err := s.userRepo.DeleteByID(ctx, userID); err != nil {
		return fmt.Errorf("ユーザーの削除に失敗しました: %w", err)
	}

	slog.Info("退会処理が完了しました", slog.String("user_id", userID))
	return nil
}
