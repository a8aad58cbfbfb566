// Package todo はユーザー登録とタスク管理のドメインロジックを提供する。
//
// 認証ヘッダーの形式検証はHTTP層（middleware）で先に行われる。
// このパッケージは、それ以降の検証順序を各ユースケースごとに固定する。
package todo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/hitoshi/todoapp/internal/credential"
	"github.com/hitoshi/todoapp/internal/model"
	"github.com/hitoshi/todoapp/internal/repository"
	"github.com/hitoshi/todoapp/internal/validation"
)

// ErrIDCollision は生成したタスクIDが既存IDと衝突した場合のエラー。
// 不変条件違反であり、リトライしない。
var ErrIDCollision = errors.New("generated task id collides with an existing task")

// Recorder はドメインイベントの計測インターフェース。
type Recorder interface {
	RecordUserRegistered()
	RecordTaskCreated()
	RecordTaskDeleted()
}

// ServiceConfig はServiceの設定。
type ServiceConfig struct {
	// NewID はタスクIDの生成関数。nilの場合はuuid.NewRandomを使う。
	NewID func() (uuid.UUID, error)
	// Recorder はnilの場合は計測しない。
	Recorder Recorder
}

// Service はユーザーとタスクのユースケースを提供する。
type Service struct {
	users    repository.UserRepository
	tasks    repository.TaskRepository
	newID    func() (uuid.UUID, error)
	recorder Recorder
}

// NewService はServiceを生成する。
func NewService(users repository.UserRepository, tasks repository.TaskRepository, config ServiceConfig) *Service {
	newID := config.NewID
	if newID == nil {
		newID = uuid.NewRandom
	}
	return &Service{
		users:    users,
		tasks:    tasks,
		newID:    newID,
		recorder: config.Recorder,
	}
}

// RegisterUser はユーザーを登録する。
// 検証順序: 項目の必須チェック → ユーザー名の重複チェック
func (s *Service) RegisterUser(ctx context.Context, user *model.User) error {
	if err := validation.ValidateUser(user); err != nil {
		return err
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return model.NewUserAlreadyExistsError(user.Username)
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	if s.recorder != nil {
		s.recorder.RecordUserRegistered()
	}
	slog.Info("user registered", slog.String("username", user.Username))
	return nil
}

// CreateTask はタスクを作成し、生成したIDを返す。
// 検証順序: ボディ → 認証情報 → （ID採番、所有者設定、保存）
func (s *Service) CreateTask(ctx context.Context, creds credential.Credentials, body *model.TaskBody) (uuid.UUID, error) {
	if err := validation.ValidateTaskBody(body); err != nil {
		return uuid.Nil, err
	}
	if err := s.authenticate(ctx, creds); err != nil {
		return uuid.Nil, err
	}

	id, err := s.newID()
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to generate task id: %w", err)
	}

	task := &model.Task{
		ID:          id,
		Description: body.Description,
		Due:         body.DueValue(),
		Owner:       creds.Username,
	}
	if err := s.tasks.Create(ctx, task); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			slog.Error("task id collision", slog.String("task_id", id.String()))
			return uuid.Nil, fmt.Errorf("%w: %s", ErrIDCollision, id)
		}
		return uuid.Nil, fmt.Errorf("failed to create task: %w", err)
	}

	if s.recorder != nil {
		s.recorder.RecordTaskCreated()
	}
	slog.Info("task created",
		slog.String("task_id", id.String()),
		slog.String("owner", creds.Username),
	)
	return id, nil
}

// ListTasks は認証ユーザーが所有するタスクを返す。
// 検証順序: 認証情報 → 所有者で絞り込み
func (s *Service) ListTasks(ctx context.Context, creds credential.Credentials) ([]*model.Task, error) {
	if err := s.authenticate(ctx, creds); err != nil {
		return nil, err
	}

	tasks, err := s.tasks.ListByOwner(ctx, creds.Username)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, nil
}

// GetTask は指定IDのタスクを返す。
// 検証順序: 認証情報 → 取得 → 所有者確認
func (s *Service) GetTask(ctx context.Context, creds credential.Credentials, id uuid.UUID) (*model.Task, error) {
	if err := s.authenticate(ctx, creds); err != nil {
		return nil, err
	}
	return s.findOwnedTask(ctx, id, creds.Username)
}

// UpdateTask は指定IDのタスクをボディの内容で丸ごと置き換える。
// IDはパスから、所有者は認証情報から設定し、ボディ側の値は使わない。
// 検証順序: ボディ → 認証情報 → 取得 → 所有者確認 → 置換
func (s *Service) UpdateTask(ctx context.Context, creds credential.Credentials, id uuid.UUID, body *model.TaskBody) (*model.Task, error) {
	if err := validation.ValidateTaskBody(body); err != nil {
		return nil, err
	}
	if err := s.authenticate(ctx, creds); err != nil {
		return nil, err
	}
	if _, err := s.findOwnedTask(ctx, id, creds.Username); err != nil {
		return nil, err
	}

	updated := &model.Task{
		ID:          id,
		Description: body.Description,
		Due:         body.DueValue(),
		Owner:       creds.Username,
	}
	ok, err := s.tasks.Update(ctx, updated)
	if err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}
	if !ok {
		// 所有者確認の後に並行して削除された
		return nil, model.NewTaskNotFoundError(id.String())
	}

	slog.Info("task updated",
		slog.String("task_id", id.String()),
		slog.String("owner", creds.Username),
	)
	return updated, nil
}

// DeleteTask は指定IDのタスクを削除する。
// 検証順序: 認証情報 → 取得 → 所有者確認 → 削除
func (s *Service) DeleteTask(ctx context.Context, creds credential.Credentials, id uuid.UUID) error {
	if err := s.authenticate(ctx, creds); err != nil {
		return err
	}
	if _, err := s.findOwnedTask(ctx, id, creds.Username); err != nil {
		return err
	}

	ok, err := s.tasks.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	if !ok {
		return model.NewTaskNotFoundError(id.String())
	}

	if s.recorder != nil {
		s.recorder.RecordTaskDeleted()
	}
	slog.Info("task deleted",
		slog.String("task_id", id.String()),
		slog.String("owner", creds.Username),
	)
	return nil
}

// UserCount は登録済みユーザー数を返す。
func (s *Service) UserCount(ctx context.Context) int {
	return s.users.Count(ctx)
}

// TaskCount は保持しているタスク数を返す。
func (s *Service) TaskCount(ctx context.Context) int {
	return s.tasks.Count(ctx)
}

func (s *Service) authenticate(ctx context.Context, creds credential.Credentials) error {
	return validation.ValidateCredentials(ctx, s.users, creds.Username, creds.Password)
}

// findOwnedTask はタスクを取得し、存在と所有者を検証する。
func (s *Service) findOwnedTask(ctx context.Context, id uuid.UUID, username string) (*model.Task, error) {
	task, err := s.tasks.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to find task: %w", err)
	}
	if err := validation.ValidateOwnership(task, id.String(), username); err != nil {
		return nil, err
	}
	return task, nil
}
