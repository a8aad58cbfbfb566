package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/hitoshi/todoapp/internal/credential"
	"github.com/hitoshi/todoapp/internal/middleware"
	"github.com/hitoshi/todoapp/internal/model"
)

// TaskServiceInterface はタスクハンドラーが必要とするサービスインターフェース。
// 認証情報はauthヘッダーミドルウェアがデコード済みのものを渡す。
type TaskServiceInterface interface {
	CreateTask(ctx context.Context, creds credential.Credentials, body *model.TaskBody) (uuid.UUID, error)
	ListTasks(ctx context.Context, creds credential.Credentials) ([]*model.Task, error)
	GetTask(ctx context.Context, creds credential.Credentials, id uuid.UUID) (*model.Task, error)
	// UpdateTask はタスクを丸ごと置き換える。IDはパスの値を使う。
	UpdateTask(ctx context.Context, creds credential.Credentials, id uuid.UUID, body *model.TaskBody) (*model.Task, error)
	DeleteTask(ctx context.Context, creds credential.Credentials, id uuid.UUID) error
}

// TaskHandler はタスク管理のHTTPハンドラー。
type TaskHandler struct {
	service TaskServiceInterface
	config  HandlerConfig
}

// NewTaskHandler はTaskHandlerを生成する。
func NewTaskHandler(service TaskServiceInterface, config HandlerConfig) *TaskHandler {
	return &TaskHandler{
		service: service,
		config:  config,
	}
}

// --- リクエスト/レスポンス型 ---

// taskRequest はタスク作成・更新リクエストのボディ。
// dueの省略とnullはどちらも期限なしとして扱う。
type taskRequest struct {
	Description string  `json:"description"`
	Due         *string `json:"due"`
}

// taskResponse はタスクのレスポンス。所有者は含めない。
type taskResponse struct {
	ID          string `json:"id"`
	Description string `json:"description"`
	Due         string `json:"due,omitempty"`
}

// createTaskResponse はタスク作成のレスポンス。
type createTaskResponse struct {
	ID string `json:"id"`
}

func toTaskResponse(task *model.Task) taskResponse {
	return taskResponse{
		ID:          task.ID.String(),
		Description: task.Description,
		Due:         task.Due,
	}
}

func toTaskBody(req *taskRequest) *model.TaskBody {
	if req == nil {
		return nil
	}
	return &model.TaskBody{Description: req.Description, Due: req.Due}
}

// CreateTask はタスクを作成する。
// POST /todo/task
func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	creds, ok := h.credentials(w, r)
	if !ok {
		return
	}

	req, err := decodeJSONBody[taskRequest](w, r, h.config.MaxBodyBytes)
	if err != nil {
		handleServiceError(w, err, h.config.Rejections)
		return
	}

	id, err := h.service.CreateTask(r.Context(), creds, toTaskBody(req))
	if err != nil {
		handleServiceError(w, err, h.config.Rejections)
		return
	}

	writeJSON(w, http.StatusCreated, createTaskResponse{ID: id.String()})
}

// ListTasks は認証ユーザーのタスク一覧を返す。タスクがない場合は空配列を返す。
// GET /todo/task
func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	creds, ok := h.credentials(w, r)
	if !ok {
		return
	}

	tasks, err := h.service.ListTasks(r.Context(), creds)
	if err != nil {
		handleServiceError(w, err, h.config.Rejections)
		return
	}

	results := make([]taskResponse, len(tasks))
	for i, task := range tasks {
		results[i] = toTaskResponse(task)
	}
	writeJSON(w, http.StatusOK, results)
}

// GetTask はタスクを1件返す。
// GET /todo/task/{id}
func (h *TaskHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	creds, ok := h.credentials(w, r)
	if !ok {
		return
	}
	id, ok := taskIDFromPath(w, r)
	if !ok {
		return
	}

	task, err := h.service.GetTask(r.Context(), creds, id)
	if err != nil {
		handleServiceError(w, err, h.config.Rejections)
		return
	}

	writeJSON(w, http.StatusOK, toTaskResponse(task))
}

// UpdateTask はタスクを置き換え、更新後のタスクを返す。
// PUT /todo/task/{id}
func (h *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	creds, ok := h.credentials(w, r)
	if !ok {
		return
	}
	id, ok := taskIDFromPath(w, r)
	if !ok {
		return
	}

	req, err := decodeJSONBody[taskRequest](w, r, h.config.MaxBodyBytes)
	if err != nil {
		handleServiceError(w, err, h.config.Rejections)
		return
	}

	task, err := h.service.UpdateTask(r.Context(), creds, id, toTaskBody(req))
	if err != nil {
		handleServiceError(w, err, h.config.Rejections)
		return
	}

	writeJSON(w, http.StatusOK, toTaskResponse(task))
}

// DeleteTask はタスクを削除し、確認メッセージをテキストで返す。
// DELETE /todo/task/{id}
func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	creds, ok := h.credentials(w, r)
	if !ok {
		return
	}
	id, ok := taskIDFromPath(w, r)
	if !ok {
		return
	}

	if err := h.service.DeleteTask(r.Context(), creds, id); err != nil {
		handleServiceError(w, err, h.config.Rejections)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, "Task %q has been deleted.", id.String())
}

// credentials はミドルウェアが注入した認証情報を取り出す。
// ミドルウェアを通っていない場合はヘッダー不正として応答する。
func (h *TaskHandler) credentials(w http.ResponseWriter, r *http.Request) (credential.Credentials, bool) {
	creds, err := middleware.CredentialsFromContext(r.Context())
	if err != nil {
		handleServiceError(w, model.NewMalformedHeaderError("認証情報がありません"), h.config.Rejections)
		return credential.Credentials{}, false
	}
	return creds, true
}

// taskIDFromPath はURLパスのタスクIDを解析する。
// ルートの正規表現で形式は保証されるため、失敗は未定義ルートと同じ扱いにする。
func taskIDFromPath(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.WriteEmptyBadRequest(w, r)
		return uuid.Nil, false
	}
	return id, true
}
