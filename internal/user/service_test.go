package user

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hitoshi/kakeibo/internal/model"
	"github.com/hitoshi/kakeibo/internal/repository"
)

// --- モック ---

type mockUserRepo struct {
	findByIDFn   func(ctx context.Context, id string) (*model.User, error)
	updateFn     func(ctx context.Context, id string, update model.UserUpdate, updatedAt time.Time) (*model.User, error)
	deleteByIDFn func(ctx context.Context, id string) error
}

func (m *mockUserRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, nil
}
func (m *mockUserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return nil, nil
}
func (m *mockUserRepo) Create(ctx context.Context, user *model.User) error {
	return nil
}
func (m *mockUserRepo) Update(ctx context.Context, id string, update model.UserUpdate, updatedAt time.Time) (*model.User, error) {
	if m.updateFn != nil {
		return m.updateFn(ctx, id, update, updatedAt)
	}
	return nil, nil
}
func (m *mockUserRepo) UpdatePassword(ctx context.Context, id, passwordHash string, updatedAt time.Time) (bool, error) {
	return false, nil
}
func (m *mockUserRepo) DeleteByID(ctx context.Context, id string) error {
	if m.deleteByIDFn != nil {
		return m.deleteByIDFn(ctx, id)
	}
	return nil
}

type mockSessionRepo struct {
	deleteByUserIDFn func(ctx context.Context, userID string) error
}

func (m *mockSessionRepo) Create(ctx context.Context, session *model.Session) error {
	return nil
}
func (m *mockSessionRepo) Touch(ctx context.Context, id string, at time.Time) (*model.Session, error) {
	return nil, nil
}
func (m *mockSessionRepo) DeleteByID(ctx context.Context, id string) (bool, error) {
	return false, nil
}
func (m *mockSessionRepo) DeleteByUserID(ctx context.Context, userID string) error {
	if m.deleteByUserIDFn != nil {
		return m.deleteByUserIDFn(ctx, userID)
	}
	return nil
}

var _ repository.UserRepository = (*mockUserRepo)(nil)
var _ repository.SessionRepository = (*mockSessionRepo)(nil)

func strPtr(s string) *string { return &s }

// applyUpdate はCOALESCEによる部分更新をリポジトリ側の振る舞いとして再現する。
func applyUpdate(u *model.User, update model.UserUpdate) {
	if update.FullName != nil {
		u.FullName = *update.FullName
	}
	if update.Email != nil {
		u.Email = *update.Email
	}
	if update.Role != nil {
		u.Role = *update.Role
	}
}

func existingUser(_ context.Context, id string) (*model.User, error) {
	return &model.User{ID: id, FullName: "Ana", Email: "ana@example.com", Role: model.RoleUser}, nil
}

// --- GetProfile ---

func TestGetProfile_Found(t *testing.T) {
	svc := NewService(&mockUserRepo{findByIDFn: existingUser}, &mockSessionRepo{})

	u, err := svc.GetProfile(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u.ID != "user-1" {
		t.Errorf("ID = %s, want user-1", u.ID)
	}
}

func TestGetProfile_NotFound(t *testing.T) {
	svc := NewService(&mockUserRepo{}, &mockSessionRepo{})

	_, err := svc.GetProfile(context.Background(), "missing")
	if !model.HasCode(err, model.ErrCodeUserNotFound) {
		t.Errorf("expected USER_NOT_FOUND, got %v", err)
	}
}

// --- UpdateProfile ---

func TestUpdateProfile_PassesOnlyGivenFields(t *testing.T) {
	var got model.UserUpdate
	repo := &mockUserRepo{
		updateFn: func(_ context.Context, id string, update model.UserUpdate, _ time.Time) (*model.User, error) {
			got = update
			u := &model.User{ID: id, FullName: "Ana", Email: "ana@example.com", Role: model.RoleUser}
			applyUpdate(u, update)
			return u, nil
		},
	}
	svc := NewService(repo, &mockSessionRepo{})

	u, err := svc.UpdateProfile(context.Background(), "user-1", model.UserUpdate{FullName: strPtr("  Ana Maria ")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Email != nil || got.Role != nil {
		t.Error("unspecified fields must stay nil")
	}
	if u.FullName != "Ana Maria" {
		t.Errorf("FullName = %q, want %q", u.FullName, "Ana Maria")
	}
	if u.Email != "ana@example.com" {
		t.Errorf("Email = %q, should be unchanged", u.Email)
	}
}

func TestUpdateProfile_DoesNotMutateInput(t *testing.T) {
	repo := &mockUserRepo{
		updateFn: func(_ context.Context, id string, _ model.UserUpdate, _ time.Time) (*model.User, error) {
			return &model.User{ID: id}, nil
		},
	}
	svc := NewService(repo, &mockSessionRepo{})
	name := " Ana "

	if _, err := svc.UpdateProfile(context.Background(), "user-1", model.UserUpdate{FullName: &name}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if name != " Ana " {
		t.Errorf("caller value mutated to %q", name)
	}
}

func TestUpdateProfile_Empty_ReturnsInvalidRequest(t *testing.T) {
	svc := NewService(&mockUserRepo{}, &mockSessionRepo{})

	_, err := svc.UpdateProfile(context.Background(), "user-1", model.UserUpdate{})
	if !model.HasCode(err, model.ErrCodeInvalidRequest) {
		t.Errorf("expected INVALID_REQUEST, got %v", err)
	}
}

func TestUpdateProfile_BlankField_ReturnsInvalidRequest(t *testing.T) {
	svc := NewService(&mockUserRepo{}, &mockSessionRepo{})

	_, err := svc.UpdateProfile(context.Background(), "user-1", model.UserUpdate{Email: strPtr("   ")})
	if !model.HasCode(err, model.ErrCodeInvalidRequest) {
		t.Errorf("expected INVALID_REQUEST, got %v", err)
	}
}

func TestUpdateProfile_DuplicateEmail(t *testing.T) {
	repo := &mockUserRepo{
		updateFn: func(_ context.Context, _ string, _ model.UserUpdate, _ time.Time) (*model.User, error) {
			return nil, repository.ErrDuplicateEmail
		},
	}
	svc := NewService(repo, &mockSessionRepo{})

	_, err := svc.UpdateProfile(context.Background(), "user-1", model.UserUpdate{Email: strPtr("luis@example.com")})
	if !model.HasCode(err, model.ErrCodeEmailAlreadyRegistered) {
		t.Errorf("expected EMAIL_ALREADY_REGISTERED, got %v", err)
	}
}

func TestUpdateProfile_UserMissing(t *testing.T) {
	svc := NewService(&mockUserRepo{}, &mockSessionRepo{})

	_, err := svc.UpdateProfile(context.Background(), "gone", model.UserUpdate{Role: strPtr("admin")})
	if !model.HasCode(err, model.ErrCodeUserNotFound) {
		t.Errorf("expected USER_NOT_FOUND, got %v", err)
	}
}

// --- Withdraw ---

func TestWithdraw_DeletesSessionsThenUser(t *testing.T) {
	var order []string
	users := &mockUserRepo{
		findByIDFn: existingUser,
		deleteByIDFn: func(_ context.Context, _ string) error {
			order = append(order, "user")
			return nil
		},
	}
	sessions := &mockSessionRepo{
		deleteByUserIDFn: func(_ context.Context, _ string) error {
			order = append(order, "sessions")
			return nil
		},
	}
	svc := NewService(users, sessions)

	if err := svc.Withdraw(context.Background(), "user-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(order) != 2 || order[0] != "sessions" || order[1] != "user" {
		t.Errorf("delete order = %v, want [sessions user]", order)
	}
}

func TestWithdraw_UserNotFound(t *testing.T) {
	svc := NewService(&mockUserRepo{}, &mockSessionRepo{})

	err := svc.Withdraw(context.Background(), "missing")
	if !model.HasCode(err, model.ErrCodeUserNotFound) {
		t.Errorf("expected USER_NOT_FOUND, got %v", err)
	}
}

func TestWithdraw_SessionDeleteError_StopsBeforeUserDelete(t *testing.T) {
	userDeleted := false
	users := &mockUserRepo{
		findByIDFn: existingUser,
		deleteByIDFn: func(_ context.Context, _ string) error {
			userDeleted = true
			return nil
		},
	}
	sessions := &mockSessionRepo{
		deleteByUserIDFn: func(_ context.Context, _ string) error {
			return errors.New("db error")
		},
	}
	svc := NewService(users, sessions)

	if err := svc.Withdraw(context.Background(), "user-1"); err == nil {
		t.Fatal("expected error, got nil")
	}
	if userDeleted {
		t.Error("user must not be deleted when session cleanup fails")
	}
}
