package todo

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/hitoshi/todoapp/internal/credential"
	"github.com/hitoshi/todoapp/internal/model"
	"github.com/hitoshi/todoapp/internal/repository"
)

// --- モック ---

type mockRecorder struct {
	mu         sync.Mutex
	registered int
	created    int
	deleted    int
}

func (m *mockRecorder) RecordUserRegistered() { m.mu.Lock(); m.registered++; m.mu.Unlock() }
func (m *mockRecorder) RecordTaskCreated()    { m.mu.Lock(); m.created++; m.mu.Unlock() }
func (m *mockRecorder) RecordTaskDeleted()    { m.mu.Lock(); m.deleted++; m.mu.Unlock() }

type failingTaskRepo struct {
	repository.TaskRepository
	findErr error
}

func (f *failingTaskRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Task, error) {
	return nil, f.findErr
}

// --- ヘルパー ---

func newTestService(t *testing.T) *Service {
	t.Helper()
	return NewService(repository.NewMemoryUserRepo(), repository.NewMemoryTaskRepo(), ServiceConfig{})
}

func register(t *testing.T, svc *Service, username, password string) credential.Credentials {
	t.Helper()
	if err := svc.RegisterUser(context.Background(), &model.User{Username: username, Password: password}); err != nil {
		t.Fatalf("RegisterUser(%q) returned error: %v", username, err)
	}
	return credential.Credentials{Username: username, Password: password}
}

func createTask(t *testing.T, svc *Service, creds credential.Credentials, description string) uuid.UUID {
	t.Helper()
	id, err := svc.CreateTask(context.Background(), creds, &model.TaskBody{Description: description})
	if err != nil {
		t.Fatalf("CreateTask returned error: %v", err)
	}
	return id
}

func strPtr(s string) *string { return &s }

func assertKind(t *testing.T, err error, want *model.APIError) {
	t.Helper()
	if !errors.Is(err, want) {
		t.Fatalf("err = %v, want %s", err, want.Code)
	}
}

// --- RegisterUser ---

func TestService_RegisterUser(t *testing.T) {
	svc := newTestService(t)
	register(t, svc, "username", "password")

	if svc.UserCount(context.Background()) != 1 {
		t.Errorf("UserCount = %d, want 1", svc.UserCount(context.Background()))
	}
}

func TestService_RegisterUser_InvalidBody(t *testing.T) {
	svc := newTestService(t)

	for _, u := range []*model.User{nil, {Username: "a"}, {Password: "b"}} {
		err := svc.RegisterUser(context.Background(), u)
		assertKind(t, err, model.ErrInvalidBody)
	}
}

func TestService_RegisterUser_Duplicate(t *testing.T) {
	svc := newTestService(t)
	register(t, svc, "username", "password")

	err := svc.RegisterUser(context.Background(), &model.User{Username: "username", Password: "other"})
	assertKind(t, err, model.ErrAlreadyExists)
}

// TestService_RegisterUser_InvalidBeforeDuplicate は必須チェックが重複チェックより先に行われることを検証する。
func TestService_RegisterUser_InvalidBeforeDuplicate(t *testing.T) {
	svc := newTestService(t)
	register(t, svc, "username", "password")

	err := svc.RegisterUser(context.Background(), &model.User{Username: "username"})
	assertKind(t, err, model.ErrInvalidBody)
}

// TestService_RegisterUser_ConcurrentSameUsername は同一ユーザー名の同時登録が1回だけ成功することを検証する。
func TestService_RegisterUser_ConcurrentSameUsername(t *testing.T) {
	rec := &mockRecorder{}
	svc := NewService(repository.NewMemoryUserRepo(), repository.NewMemoryTaskRepo(), ServiceConfig{Recorder: rec})

	const workers = 50
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		conflicts int
	)
	start := make(chan struct{})
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			err := svc.RegisterUser(context.Background(), &model.User{Username: "same", Password: "p"})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case errors.Is(err, model.ErrAlreadyExists):
				conflicts++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	close(start)
	wg.Wait()

	if successes != 1 || conflicts != workers-1 {
		t.Errorf("successes = %d, conflicts = %d; want 1, %d", successes, conflicts, workers-1)
	}
	if rec.registered != 1 {
		t.Errorf("recorded registrations = %d, want 1", rec.registered)
	}
}

// --- CreateTask ---

func TestService_CreateTask_RoundTrip(t *testing.T) {
	svc := newTestService(t)
	creds := register(t, svc, "username", "password")

	id, err := svc.CreateTask(context.Background(), creds, &model.TaskBody{Description: "buy milk", Due: strPtr("2021-06-30")})
	if err != nil {
		t.Fatalf("CreateTask returned error: %v", err)
	}
	if id == uuid.Nil {
		t.Fatal("expected non-nil id")
	}

	task, err := svc.GetTask(context.Background(), creds, id)
	if err != nil {
		t.Fatalf("GetTask returned error: %v", err)
	}
	if task.Description != "buy milk" || task.Due != "2021-06-30" {
		t.Errorf("task = %+v, want buy milk / 2021-06-30", task)
	}
	if task.Owner != "username" {
		t.Errorf("Owner = %q, want %q", task.Owner, "username")
	}
}

func TestService_CreateTask_DueOmitted(t *testing.T) {
	svc := newTestService(t)
	creds := register(t, svc, "username", "password")

	id := createTask(t, svc, creds, "buy milk")
	task, _ := svc.GetTask(context.Background(), creds, id)
	if task.HasDue() {
		t.Errorf("expected no due, got %q", task.Due)
	}
}

func TestService_CreateTask_InvalidDue(t *testing.T) {
	svc := newTestService(t)
	creds := register(t, svc, "username", "password")

	_, err := svc.CreateTask(context.Background(), creds, &model.TaskBody{Description: "buy milk", Due: strPtr("no-valid-data")})
	assertKind(t, err, model.ErrInvalidBody)
}

// TestService_CreateTask_BodyCheckedBeforeCredentials は不正ボディと不正認証が同時にある場合INVALID_BODYになることを検証する。
func TestService_CreateTask_BodyCheckedBeforeCredentials(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.CreateTask(context.Background(),
		credential.Credentials{Username: "nobody", Password: "x"},
		&model.TaskBody{Description: ""},
	)
	assertKind(t, err, model.ErrInvalidBody)
}

func TestService_CreateTask_NotAuthenticated(t *testing.T) {
	svc := newTestService(t)
	register(t, svc, "username", "password")

	tests := []credential.Credentials{
		{Username: "invalid", Password: "password"},
		{Username: "username", Password: "invalid"},
		{Username: "a", Password: "b"},
	}
	for _, creds := range tests {
		_, err := svc.CreateTask(context.Background(), creds, &model.TaskBody{Description: "buy milk"})
		assertKind(t, err, model.ErrNotAuthenticated)
	}
	if svc.TaskCount(context.Background()) != 0 {
		t.Errorf("TaskCount = %d, want 0", svc.TaskCount(context.Background()))
	}
}

func TestService_CreateTask_IDCollisionIsInternalDefect(t *testing.T) {
	fixed := uuid.MustParse("3f9c2a5e-8d1b-4c7a-9e2f-1a2b3c4d5e6f")
	svc := NewService(repository.NewMemoryUserRepo(), repository.NewMemoryTaskRepo(), ServiceConfig{
		NewID: func() (uuid.UUID, error) { return fixed, nil },
	})
	creds := register(t, svc, "username", "password")
	createTask(t, svc, creds, "first")

	_, err := svc.CreateTask(context.Background(), creds, &model.TaskBody{Description: "second"})
	if !errors.Is(err, ErrIDCollision) {
		t.Fatalf("err = %v, want ErrIDCollision", err)
	}
	if model.ErrKind(err) != "" {
		t.Errorf("collision must not map to a client failure kind, got %q", model.ErrKind(err))
	}
}

func TestService_CreateTask_IDGeneratorError(t *testing.T) {
	svc := NewService(repository.NewMemoryUserRepo(), repository.NewMemoryTaskRepo(), ServiceConfig{
		NewID: func() (uuid.UUID, error) { return uuid.Nil, errors.New("entropy exhausted") },
	})
	creds := register(t, svc, "username", "password")

	_, err := svc.CreateTask(context.Background(), creds, &model.TaskBody{Description: "x"})
	if err == nil {
		t.Fatal("expected error")
	}
}

// --- ListTasks ---

func TestService_ListTasks_OwnershipIsolation(t *testing.T) {
	svc := newTestService(t)
	alice := register(t, svc, "alice", "pa")
	bob := register(t, svc, "bob", "pb")

	createTask(t, svc, alice, "a1")
	createTask(t, svc, alice, "a2")
	createTask(t, svc, bob, "b1")

	aliceTasks, err := svc.ListTasks(context.Background(), alice)
	if err != nil {
		t.Fatalf("ListTasks returned error: %v", err)
	}
	if len(aliceTasks) != 2 {
		t.Fatalf("alice tasks = %d, want 2", len(aliceTasks))
	}
	for _, task := range aliceTasks {
		if task.Owner != "alice" {
			t.Errorf("alice received task owned by %q", task.Owner)
		}
	}

	bobTasks, _ := svc.ListTasks(context.Background(), bob)
	if len(bobTasks) != 1 || bobTasks[0].Description != "b1" {
		t.Errorf("bob tasks = %+v, want [b1]", bobTasks)
	}
}

func TestService_ListTasks_NotAuthenticated(t *testing.T) {
	svc := newTestService(t)
	register(t, svc, "username", "password")

	_, err := svc.ListTasks(context.Background(), credential.Credentials{Username: "username", Password: "invalidPassword"})
	assertKind(t, err, model.ErrNotAuthenticated)
}

// --- GetTask / UpdateTask / DeleteTask ---

func TestService_OtherUsersTask_IsForbidden(t *testing.T) {
	svc := newTestService(t)
	alice := register(t, svc, "alice", "pa")
	bob := register(t, svc, "bob", "pb")
	id := createTask(t, svc, alice, "secret")
	ctx := context.Background()

	_, err := svc.GetTask(ctx, bob, id)
	assertKind(t, err, model.ErrForbidden)

	_, err = svc.UpdateTask(ctx, bob, id, &model.TaskBody{Description: "hijacked"})
	assertKind(t, err, model.ErrForbidden)

	err = svc.DeleteTask(ctx, bob, id)
	assertKind(t, err, model.ErrForbidden)

	// aliceのタスクは変更されていないこと
	task, err := svc.GetTask(ctx, alice, id)
	if err != nil {
		t.Fatalf("GetTask returned error: %v", err)
	}
	if task.Description != "secret" {
		t.Errorf("Description = %q, want %q", task.Description, "secret")
	}
}

// TestService_MissingTask_IsNotFoundNotForbidden は存在しないIDがFORBIDDENではなくNOT_FOUNDになることを検証する。
func TestService_MissingTask_IsNotFoundNotForbidden(t *testing.T) {
	svc := newTestService(t)
	creds := register(t, svc, "alice", "pa")
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		id := uuid.New()
		_, err := svc.GetTask(ctx, creds, id)
		assertKind(t, err, model.ErrNotFound)

		_, err = svc.UpdateTask(ctx, creds, id, &model.TaskBody{Description: "x"})
		assertKind(t, err, model.ErrNotFound)

		err = svc.DeleteTask(ctx, creds, id)
		assertKind(t, err, model.ErrNotFound)
	}
}

// TestService_GetTask_CredentialsBeforeExistence は認証が存在確認より先に行われることを検証する。
func TestService_GetTask_CredentialsBeforeExistence(t *testing.T) {
	svc := newTestService(t)
	register(t, svc, "alice", "pa")

	_, err := svc.GetTask(context.Background(), credential.Credentials{Username: "alice", Password: "wrong"}, uuid.New())
	assertKind(t, err, model.ErrNotAuthenticated)
}

func TestService_UpdateTask_ReplacesPayload(t *testing.T) {
	svc := newTestService(t)
	creds := register(t, svc, "alice", "pa")
	ctx := context.Background()

	id, _ := svc.CreateTask(ctx, creds, &model.TaskBody{Description: "old", Due: strPtr("2021-06-30")})

	updated, err := svc.UpdateTask(ctx, creds, id, &model.TaskBody{Description: "new"})
	if err != nil {
		t.Fatalf("UpdateTask returned error: %v", err)
	}
	if updated.ID != id || updated.Owner != "alice" {
		t.Errorf("updated = %+v, want id %s owner alice", updated, id)
	}

	task, _ := svc.GetTask(ctx, creds, id)
	if task.Description != "new" {
		t.Errorf("Description = %q, want %q", task.Description, "new")
	}
	if task.HasDue() {
		t.Errorf("due should be cleared by wholesale replace, got %q", task.Due)
	}
}

// TestService_UpdateTask_BodyBeforeCredentials は更新でもボディ検証が認証より先に行われることを検証する。
func TestService_UpdateTask_BodyBeforeCredentials(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.UpdateTask(context.Background(),
		credential.Credentials{Username: "nobody", Password: "x"},
		uuid.New(),
		&model.TaskBody{Description: "x", Due: strPtr("no-valid-data")},
	)
	assertKind(t, err, model.ErrInvalidBody)
}

func TestService_DeleteTask_TwiceYieldsNotFound(t *testing.T) {
	rec := &mockRecorder{}
	svc := NewService(repository.NewMemoryUserRepo(), repository.NewMemoryTaskRepo(), ServiceConfig{Recorder: rec})
	creds := register(t, svc, "alice", "pa")
	id := createTask(t, svc, creds, "x")
	ctx := context.Background()

	if err := svc.DeleteTask(ctx, creds, id); err != nil {
		t.Fatalf("first DeleteTask returned error: %v", err)
	}
	err := svc.DeleteTask(ctx, creds, id)
	assertKind(t, err, model.ErrNotFound)

	if rec.created != 1 || rec.deleted != 1 {
		t.Errorf("recorder created=%d deleted=%d, want 1/1", rec.created, rec.deleted)
	}
}

func TestService_GetTask_RepositoryErrorIsInternal(t *testing.T) {
	users := repository.NewMemoryUserRepo()
	tasks := &failingTaskRepo{TaskRepository: repository.NewMemoryTaskRepo(), findErr: errors.New("boom")}
	svc := NewService(users, tasks, ServiceConfig{})
	creds := register(t, svc, "alice", "pa")

	_, err := svc.GetTask(context.Background(), creds, uuid.New())
	if err == nil {
		t.Fatal("expected error")
	}
	if model.ErrKind(err) != "" {
		t.Errorf("ErrKind = %q, want empty", model.ErrKind(err))
	}
}

// TestService_ConcurrentCreateAndDelete は複数ユーザーの同時操作でタスクが失われないことを検証する。
func TestService_ConcurrentCreateAndDelete(t *testing.T) {
	svc := newTestService(t)
	users := []credential.Credentials{
		register(t, svc, "u1", "p"),
		register(t, svc, "u2", "p"),
		register(t, svc, "u3", "p"),
	}
	ctx := context.Background()

	var wg sync.WaitGroup
	for _, creds := range users {
		wg.Add(1)
		go func(creds credential.Credentials) {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				id, err := svc.CreateTask(ctx, creds, &model.TaskBody{Description: "t"})
				if err != nil {
					t.Errorf("CreateTask: %v", err)
					return
				}
				if i%2 == 0 {
					if err := svc.DeleteTask(ctx, creds, id); err != nil {
						t.Errorf("DeleteTask: %v", err)
						return
					}
				}
			}
		}(creds)
	}
	wg.Wait()

	for _, creds := range users {
		tasks, err := svc.ListTasks(ctx, creds)
		if err != nil {
			t.Fatalf("ListTasks: %v", err)
		}
		if len(tasks) != 25 {
			t.Errorf("%s tasks = %d, want 25", creds.Username, len(tasks))
		}
	}
}
