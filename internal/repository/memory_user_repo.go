package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/hitoshi/todoapp/internal/model"
	"github.com/hitoshi/todoapp/internal/store"
)

// MemoryUserRepo はstore.StoreによるUserRepositoryの実装。
type MemoryUserRepo struct {
	users *store.Store[string, model.User]
}

// NewMemoryUserRepo は空のMemoryUserRepoを生成する。
func NewMemoryUserRepo() *MemoryUserRepo {
	return &MemoryUserRepo{users: store.New[string, model.User]()}
}

// Create はユーザーを登録する。
func (r *MemoryUserRepo) Create(ctx context.Context, user *model.User) error {
	if _, err := r.users.Save(user.Username, *user); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return fmt.Errorf("user %q: %w", user.Username, ErrDuplicate)
		}
		return fmt.Errorf("failed to save user: %w", err)
	}
	return nil
}

// FindByUsername はユーザー名でユーザーを取得する。
func (r *MemoryUserRepo) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	u, ok := r.users.Get(username)
	if !ok {
		return nil, nil
	}
	return &u, nil
}

// Count は登録済みユーザー数を返す。
func (r *MemoryUserRepo) Count(ctx context.Context) int {
	return r.users.Len()
}

var _ UserRepository = (*MemoryUserRepo)(nil)
