// Package repository はデータ保持のインターフェースとインメモリ実装を提供する。
package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/hitoshi/todoapp/internal/model"
)

// ErrDuplicate はキーが既に使われている場合に返される。
var ErrDuplicate = errors.New("repository: duplicate key")

// UserRepository はユーザーデータの保持インターフェース。
type UserRepository interface {
	// Create はユーザーを登録する。ユーザー名が既に存在する場合はErrDuplicateを返す。
	// 存在確認と挿入は1回の原子的な操作で行う。
	Create(ctx context.Context, user *model.User) error

	// FindByUsername はユーザー名でユーザーを取得する。見つからない場合はnilを返す。
	FindByUsername(ctx context.Context, username string) (*model.User, error)

	// Count は登録済みユーザー数を返す。
	Count(ctx context.Context) int
}

// TaskRepository はタスクデータの保持インターフェース。
type TaskRepository interface {
	// Create はタスクを作成する。IDが既に存在する場合はErrDuplicateを返す。
	Create(ctx context.Context, task *model.Task) error

	// FindByID は指定IDのタスクを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id uuid.UUID) (*model.Task, error)

	// ListByOwner は指定ユーザーが所有するタスクを作成順で返す。
	// 呼び出し時点のスナップショットを返す。
	ListByOwner(ctx context.Context, owner string) ([]*model.Task, error)

	// Update は既存タスクを丸ごと置き換える。存在しない場合はfalseを返す。
	Update(ctx context.Context, task *model.Task) (bool, error)

	// Delete は指定IDのタスクを削除する。削除した場合のみtrueを返す。
	Delete(ctx context.Context, id uuid.UUID) (bool, error)

	// Count は保持しているタスク数を返す。
	Count(ctx context.Context) int
}
