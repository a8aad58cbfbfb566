package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/hitoshi/todoapp/internal/model"
	"github.com/hitoshi/todoapp/internal/store"
)

// MemoryTaskRepo はstore.StoreによるTaskRepositoryの実装。
// 返却するタスクは毎回新しいコピーで、呼び出し側が変更してもストアには影響しない。
type MemoryTaskRepo struct {
	tasks *store.Store[uuid.UUID, model.Task]
}

// NewMemoryTaskRepo は空のMemoryTaskRepoを生成する。
func NewMemoryTaskRepo() *MemoryTaskRepo {
	return &MemoryTaskRepo{tasks: store.New[uuid.UUID, model.Task]()}
}

// Create はタスクを作成する。
func (r *MemoryTaskRepo) Create(ctx context.Context, task *model.Task) error {
	if _, err := r.tasks.Save(task.ID, *task); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return fmt.Errorf("task %s: %w", task.ID, ErrDuplicate)
		}
		return fmt.Errorf("failed to save task: %w", err)
	}
	return nil
}

// FindByID は指定IDのタスクを取得する。
func (r *MemoryTaskRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Task, error) {
	t, ok := r.tasks.Get(id)
	if !ok {
		return nil, nil
	}
	return &t, nil
}

// ListByOwner は指定ユーザーが所有するタスクを作成順で返す。
func (r *MemoryTaskRepo) ListByOwner(ctx context.Context, owner string) ([]*model.Task, error) {
	found := r.tasks.Find(func(t model.Task) bool {
		return t.Owner == owner
	})

	results := make([]*model.Task, len(found))
	for i := range found {
		results[i] = &found[i]
	}
	return results, nil
}

// Update は既存タスクを丸ごと置き換える。
func (r *MemoryTaskRepo) Update(ctx context.Context, task *model.Task) (bool, error) {
	_, ok := r.tasks.Update(task.ID, *task)
	return ok, nil
}

// Delete は指定IDのタスクを削除する。
func (r *MemoryTaskRepo) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	return r.tasks.Delete(id), nil
}

// Count は保持しているタスク数を返す。
func (r *MemoryTaskRepo) Count(ctx context.Context) int {
	return r.tasks.Len()
}

var _ TaskRepository = (*MemoryTaskRepo)(nil)
