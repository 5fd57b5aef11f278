// Package auth はログイン、ユーザー登録、セッショントークンの発行・検証・破棄を提供する。
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/hitoshi/kakeibo/internal/metrics"
	"github.com/hitoshi/kakeibo/internal/model"
	"github.com/hitoshi/kakeibo/internal/repository"
)

// maxPasswordBytes はbcryptが扱える入力の上限バイト数。
const maxPasswordBytes = 72

// dummyPassword は未登録メールアドレスでのログイン時に照合するダミーハッシュの元。
const dummyPassword = "kakeibo-dummy-password"

// SessionAuthority はセッショントークンのライフサイクルを管理するインターフェース。
// ミドルウェアとハンドラーはこのインターフェース経由で認証を行う。
type SessionAuthority interface {
	IssueSession(ctx context.Context, userID string) (*model.Session, error)
	Validate(ctx context.Context, token string) (string, error)
	Revoke(ctx context.Context, token string) error
}

// ServiceConfig は認証サービスの設定。
type ServiceConfig struct {
	BcryptCost int // パスワードハッシュのコスト
}

// RegisterInput はユーザー登録の入力。
type RegisterInput struct {
	FullName string
	Email    string
	Password string
	Role     string // 空の場合はmodel.RoleUser
}

// Service は認証に関するビジネスロジックを提供する。
type Service struct {
	userRepo    repository.UserRepository
	sessionRepo repository.SessionRepository
	tokens      TokenGenerator
	metrics     metrics.MetricsCollector
	config      ServiceConfig
	now         func() time.Time

	// dummyHash は未登録ユーザーでも登録済みと同じコストの照合を行うためのハッシュ。
	dummyHash   []byte
	compareHash func(hash, password []byte) error
}

// NewService はServiceを生成する。
// mcがnilの場合はメトリクスを記録しない。
func NewService(
	userRepo repository.UserRepository,
	sessionRepo repository.SessionRepository,
	tokens TokenGenerator,
	mc metrics.MetricsCollector,
	config ServiceConfig,
) *Service {
	if mc == nil {
		mc = metrics.Nop{}
	}
	if config.BcryptCost < bcrypt.MinCost || config.BcryptCost > bcrypt.MaxCost {
		config.BcryptCost = bcrypt.DefaultCost
	}
	dummyHash, err := bcrypt.GenerateFromPassword([]byte(dummyPassword), config.BcryptCost)
	if err != nil {
		slog.Warn("failed to prepare dummy password hash", slog.String("error", err.Error()))
	}
	return &Service{
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
		tokens:      tokens,
		metrics:     mc,
		config:      config,
		now:         time.Now,
		dummyHash:   dummyHash,
		compareHash: bcrypt.CompareHashAndPassword,
	}
}

// Register は新しいユーザーを登録する。
// パスワードはbcryptでハッシュ化して保存する。
func (s *Service) Register(ctx context.Context, in RegisterInput) (*model.User, error) {
	email := strings.TrimSpace(in.Email)
	fullName := strings.TrimSpace(in.FullName)
	if email == "" || in.Password == "" {
		return nil, model.NewInvalidRequestError("email と password は必須です")
	}
	if fullName == "" {
		return nil, model.NewInvalidRequestError("full_name は必須です")
	}
	if len(in.Password) > maxPasswordBytes {
		return nil, model.NewPasswordTooLongError()
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.config.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	role := in.Role
	if role == "" {
		role = model.RoleUser
	}

	now := s.now()
	user := &model.User{
		ID:           uuid.New().String(),
		FullName:     fullName,
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, model.NewEmailAlreadyRegisteredError()
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	slog.Info("user registered",
		slog.String("user_id", user.ID),
		slog.String("email", user.Email),
	)
	return user, nil
}

// Login はメールアドレスとパスワードを検証し、新しいセッションを発行する。
// 未登録のメールアドレスとパスワード不一致は同じBadCredentialsとして扱い、
// 応答時間で区別できないよう未登録の場合もダミーハッシュと照合する。
func (s *Service) Login(ctx context.Context, email, password string) (*model.Session, error) {
	user, err := s.userRepo.FindByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		_ = s.compareHash(s.dummyHash, []byte(password))
		s.metrics.RecordLogin(false)
		slog.Warn("login failed: unknown email")
		return nil, model.NewBadCredentialsError()
	}

	if err := s.compareHash([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.metrics.RecordLogin(false)
		slog.Warn("login failed: password mismatch", slog.String("user_id", user.ID))
		return nil, model.NewBadCredentialsError()
	}

	session, err := s.IssueSession(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	s.metrics.RecordLogin(true)
	slog.Info("user logged in", slog.String("user_id", user.ID))
	return session, nil
}

// ChangePassword は現在のパスワードを確認してから新しいパスワードのハッシュを保存する。
// 発行済みのセッションはそのまま有効に残る。
func (s *Service) ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error {
	if oldPassword == "" || newPassword == "" {
		return model.NewInvalidRequestError("old_password と new_password は必須です")
	}
	if len(newPassword) > maxPasswordBytes {
		return model.NewPasswordTooLongError()
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		return model.NewUserNotFoundError()
	}

	if err := s.compareHash([]byte(user.PasswordHash), []byte(oldPassword)); err != nil {
		slog.Warn("password change rejected: password mismatch", slog.String("user_id", userID))
		return model.NewBadCredentialsError()
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), s.config.BcryptCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	updated, err := s.userRepo.UpdatePassword(ctx, userID, string(hash), s.now())
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	if !updated {
		return model.NewUserNotFoundError()
	}

	slog.Info("password changed", slog.String("user_id", userID))
	return nil
}

// IssueSession は指定ユーザーの新しいセッションを発行し永続化する。
// 同一ユーザーの既存セッションはそのまま有効に残る。
func (s *Service) IssueSession(ctx context.Context, userID string) (*model.Session, error) {
	now := s.now()
	token, err := s.tokens.Generate(userID, now)
	if err != nil {
		return nil, fmt.Errorf("failed to generate session token: %w", err)
	}

	session := &model.Session{
		ID:           token,
		UserID:       userID,
		LastActivity: now,
		CreatedAt:    now,
	}
	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	s.metrics.RecordSessionIssued()
	return session, nil
}

// Validate はトークンを検証し、セッションの所有ユーザーIDを返す。
// 検証に成功した場合はlast_activityを現在時刻へ更新する。
func (s *Service) Validate(ctx context.Context, token string) (string, error) {
	if token == "" {
		s.metrics.RecordSessionValidation(false)
		return "", model.NewTokenRequiredError()
	}

	session, err := s.sessionRepo.Touch(ctx, token, s.now())
	if err != nil {
		return "", fmt.Errorf("failed to refresh session: %w", err)
	}
	if session == nil {
		s.metrics.RecordSessionValidation(false)
		return "", model.NewInvalidTokenError()
	}

	s.metrics.RecordSessionValidation(true)
	return session.UserID, nil
}

// Revoke はトークンに対応するセッションを破棄する。
// 存在しないトークン（破棄済みを含む）はTokenNotFoundを返す。
func (s *Service) Revoke(ctx context.Context, token string) error {
	if token == "" {
		return model.NewTokenRequiredError()
	}

	deleted, err := s.sessionRepo.DeleteByID(ctx, token)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	if !deleted {
		return model.NewTokenNotFoundError()
	}

	s.metrics.RecordSessionRevoked()
	slog.Info("session revoked")
	return nil
}

// compile-time interface check
var _ SessionAuthority = (*Service)(nil)
