package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/hitoshi/todoapp/internal/model"
)

// MemoryUserRepoはUserRepositoryインターフェースを満たすことを検証
func TestMemoryUserRepo_ImplementsInterface(t *testing.T) {
	var _ UserRepository = (*MemoryUserRepo)(nil)
}

func TestMemoryUserRepo_CreateAndFind(t *testing.T) {
	repo := NewMemoryUserRepo()
	ctx := context.Background()

	if err := repo.Create(ctx, &model.User{Username: "alice", Password: "secret"}); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	u, err := repo.FindByUsername(ctx, "alice")
	if err != nil {
		t.Fatalf("FindByUsername returned error: %v", err)
	}
	if u == nil {
		t.Fatal("expected user, got nil")
	}
	if u.Password != "secret" {
		t.Errorf("Password = %q, want %q", u.Password, "secret")
	}
}

func TestMemoryUserRepo_Create_Duplicate(t *testing.T) {
	repo := NewMemoryUserRepo()
	ctx := context.Background()

	repo.Create(ctx, &model.User{Username: "alice", Password: "a"})
	err := repo.Create(ctx, &model.User{Username: "alice", Password: "b"})
	if !errors.Is(err, ErrDuplicate) {
		t.Fatalf("err = %v, want ErrDuplicate", err)
	}

	// 最初の登録内容が維持されること
	u, _ := repo.FindByUsername(ctx, "alice")
	if u.Password != "a" {
		t.Errorf("Password = %q, want %q", u.Password, "a")
	}
}

func TestMemoryUserRepo_FindByUsername_Missing(t *testing.T) {
	repo := NewMemoryUserRepo()

	u, err := repo.FindByUsername(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u != nil {
		t.Errorf("expected nil user, got %+v", u)
	}
}

func TestMemoryUserRepo_ReturnedUserIsCopy(t *testing.T) {
	repo := NewMemoryUserRepo()
	ctx := context.Background()
	repo.Create(ctx, &model.User{Username: "alice", Password: "secret"})

	u, _ := repo.FindByUsername(ctx, "alice")
	u.Password = "changed"

	again, _ := repo.FindByUsername(ctx, "alice")
	if again.Password != "secret" {
		t.Errorf("stored password changed through returned pointer: %q", again.Password)
	}
}
