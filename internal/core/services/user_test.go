package services

import (
	"context"
	"errors"
	"testing"

	"github.com/shelfwise/shelfwise-core/internal/core/domain"
	"github.com/shelfwise/shelfwise-core/internal/core/ports/driven/mocks"
	"github.com/shelfwise/shelfwise-core/internal/core/ports/driving"
)

func newTestUserService() (*mocks.MockUserStore, *mocks.MockSessionStore, *userService) {
	userStore := mocks.NewMockUserStore()
	sessionStore := mocks.NewMockSessionStore()
	svc := NewUserService(userStore, sessionStore, mocks.NewMockAuthAdapter()).(*userService)
	return userStore, sessionStore, svc
}

func TestUserService_Register_FirstUserIsAdmin(t *testing.T) {
	_, _, svc := newTestUserService()
	ctx := context.Background()

	first, err := svc.Register(ctx, domain.RegisterRequest{Username: "owner", Password: "secret1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.Role != domain.RoleAdmin {
		t.Errorf("expected first user to be admin, got %s", first.Role)
	}

	second, err := svc.Register(ctx, domain.RegisterRequest{Username: "reader", Password: "secret2"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if second.Role != domain.RoleMember {
		t.Errorf("expected member, got %s", second.Role)
	}
	if second.PasswordHash != "secret2" {
		t.Error("expected password to be hashed by the adapter")
	}
}

func TestUserService_Register_Validation(t *testing.T) {
	_, _, svc := newTestUserService()
	ctx := context.Background()
	if _, err := svc.Register(ctx, domain.RegisterRequest{Username: "taken", Password: "secret1"}); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		req     domain.RegisterRequest
		wantErr error
	}{
		{"missing username", domain.RegisterRequest{Password: "secret1"}, domain.ErrInvalidInput},
		{"missing password", domain.RegisterRequest{Username: "new"}, domain.ErrInvalidInput},
		{"blank username", domain.RegisterRequest{Username: "   ", Password: "secret1"}, domain.ErrInvalidInput},
		{"inner space", domain.RegisterRequest{Username: "a b", Password: "secret1"}, domain.ErrInvalidInput},
		{"short password", domain.RegisterRequest{Username: "new", Password: "123"}, domain.ErrInvalidInput},
		{"duplicate", domain.RegisterRequest{Username: "taken", Password: "secret1"}, domain.ErrAlreadyExists},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(ctx, tt.req)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestUserService_Create_InvalidRole(t *testing.T) {
	_, _, svc := newTestUserService()
	_, err := svc.Create(context.Background(), driving.CreateUserRequest{Username: "x", Password: "secret1", Role: "owner"})
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}

func TestUserService_Create_StoreError(t *testing.T) {
	userStore, _, svc := newTestUserService()
	userStore.SaveErr = errors.New("db down")
	_, err := svc.Create(context.Background(), driving.CreateUserRequest{Username: "x", Password: "secret1", Role: domain.RoleMember})
	if err == nil {
		t.Error("expected store error")
	}
}

func TestUserService_GetAndList(t *testing.T) {
	_, _, svc := newTestUserService()
	ctx := context.Background()
	created, _ := svc.Register(ctx, domain.RegisterRequest{Username: "owner", Password: "secret1"})
	_, _ = svc.Register(ctx, domain.RegisterRequest{Username: "reader", Password: "secret1"})

	got, err := svc.Get(ctx, created.ID)
	if err != nil || got.Username != "owner" {
		t.Errorf("Get: %v %+v", err, got)
	}
	got, err = svc.GetByUsername(ctx, " reader ")
	if err != nil || got.Username != "reader" {
		t.Errorf("GetByUsername: %v %+v", err, got)
	}
	if _, err := svc.Get(ctx, "missing"); err != domain.ErrNotFound {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	users, err := svc.List(ctx)
	if err != nil || len(users) != 2 {
		t.Errorf("List: %v, %d users", err, len(users))
	}
}

func TestUserService_Update(t *testing.T) {
	_, sessionStore, svc := newTestUserService()
	ctx := context.Background()
	_, _ = svc.Register(ctx, domain.RegisterRequest{Username: "owner", Password: "secret1"})
	reader, _ := svc.Register(ctx, domain.RegisterRequest{Username: "reader", Password: "secret1"})
	_ = sessionStore.Save(ctx, &domain.Session{ID: "s1", UserID: reader.ID, Token: "t1"})

	admin := domain.RoleAdmin
	updated, err := svc.Update(ctx, reader.ID, driving.UpdateUserRequest{Role: &admin})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Role != domain.RoleAdmin {
		t.Errorf("expected admin, got %s", updated.Role)
	}

	bad := domain.Role("root")
	if _, err := svc.Update(ctx, reader.ID, driving.UpdateUserRequest{Role: &bad}); err != domain.ErrInvalidInput {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}

	inactive := false
	if _, err := svc.Update(ctx, reader.ID, driving.UpdateUserRequest{Active: &inactive}); err != nil {
		t.Fatal(err)
	}
	if sessionStore.Count() != 0 {
		t.Error("expected deactivation to revoke sessions")
	}
}

func TestUserService_Delete(t *testing.T) {
	_, sessionStore, svc := newTestUserService()
	ctx := context.Background()
	user, _ := svc.Register(ctx, domain.RegisterRequest{Username: "owner", Password: "secret1"})
	_ = sessionStore.Save(ctx, &domain.Session{ID: "s1", UserID: user.ID, Token: "t1"})

	if err := svc.Delete(ctx, user.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sessionStore.Count() != 0 {
		t.Error("expected sessions to be removed")
	}
	if err := svc.Delete(ctx, user.ID); err != domain.ErrNotFound {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestUserService_SetPassword(t *testing.T) {
	userStore, _, svc := newTestUserService()
	ctx := context.Background()
	user, _ := svc.Register(ctx, domain.RegisterRequest{Username: "owner", Password: "secret1"})

	if err := svc.SetPassword(ctx, user.ID, "abc"); err != domain.ErrInvalidInput {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
	if err := svc.SetPassword(ctx, user.ID, "changed1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	stored, _ := userStore.Get(ctx, user.ID)
	if stored.PasswordHash != "changed1" {
		t.Errorf("expected new hash, got %s", stored.PasswordHash)
	}
}
