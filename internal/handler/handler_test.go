package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/hitoshi/todoapp/internal/credential"
	"github.com/hitoshi/todoapp/internal/middleware"
	"github.com/hitoshi/todoapp/internal/model"
)

// --- モック定義 ---

// mockUserService はUserServiceInterfaceのモック実装。
type mockUserService struct {
	registerUserFn func(ctx context.Context, user *model.User) error
}

func (m *mockUserService) RegisterUser(ctx context.Context, user *model.User) error {
	if m.registerUserFn != nil {
		return m.registerUserFn(ctx, user)
	}
	return nil
}

// mockTaskService はTaskServiceInterfaceのモック実装。
type mockTaskService struct {
	createTaskFn func(ctx context.Context, creds credential.Credentials, body *model.TaskBody) (uuid.UUID, error)
	listTasksFn  func(ctx context.Context, creds credential.Credentials) ([]*model.Task, error)
	getTaskFn    func(ctx context.Context, creds credential.Credentials, id uuid.UUID) (*model.Task, error)
	updateTaskFn func(ctx context.Context, creds credential.Credentials, id uuid.UUID, body *model.TaskBody) (*model.Task, error)
	deleteTaskFn func(ctx context.Context, creds credential.Credentials, id uuid.UUID) error
}

func (m *mockTaskService) CreateTask(ctx context.Context, creds credential.Credentials, body *model.TaskBody) (uuid.UUID, error) {
	if m.createTaskFn != nil {
		return m.createTaskFn(ctx, creds, body)
	}
	return uuid.Nil, nil
}

func (m *mockTaskService) ListTasks(ctx context.Context, creds credential.Credentials) ([]*model.Task, error) {
	if m.listTasksFn != nil {
		return m.listTasksFn(ctx, creds)
	}
	return nil, nil
}

func (m *mockTaskService) GetTask(ctx context.Context, creds credential.Credentials, id uuid.UUID) (*model.Task, error) {
	if m.getTaskFn != nil {
		return m.getTaskFn(ctx, creds, id)
	}
	return nil, nil
}

func (m *mockTaskService) UpdateTask(ctx context.Context, creds credential.Credentials, id uuid.UUID, body *model.TaskBody) (*model.Task, error) {
	if m.updateTaskFn != nil {
		return m.updateTaskFn(ctx, creds, id, body)
	}
	return nil, nil
}

func (m *mockTaskService) DeleteTask(ctx context.Context, creds credential.Credentials, id uuid.UUID) error {
	if m.deleteTaskFn != nil {
		return m.deleteTaskFn(ctx, creds, id)
	}
	return nil
}

// mockRejections はRejectionRecorderのモック実装。
type mockRejections struct {
	kinds []string
}

func (m *mockRejections) RecordRejection(kind string) {
	m.kinds = append(m.kinds, kind)
}

// --- テストヘルパー ---

// withCredentials はテスト用にコンテキストへ認証情報を注入するヘルパー。
func withCredentials(r *http.Request, username, password string) *http.Request {
	ctx := middleware.ContextWithCredentials(r.Context(), credential.Credentials{Username: username, Password: password})
	return r.WithContext(ctx)
}

// withChiURLParam はテスト用にchiのURLパラメータを注入するヘルパー。
func withChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	ctx := context.WithValue(r.Context(), chi.RouteCtxKey, rctx)
	return r.WithContext(ctx)
}
