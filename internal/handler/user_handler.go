package handler

import (
	"context"
	"net/http"

	"github.com/hitoshi/todoapp/internal/middleware"
	"github.com/hitoshi/todoapp/internal/model"
)

// UserServiceInterface はユーザーハンドラーが必要とするサービスインターフェース。
type UserServiceInterface interface {
	// RegisterUser はユーザーを登録する。
	// ユーザー名が登録済みの場合はALREADY_EXISTSを返す。
	RegisterUser(ctx context.Context, user *model.User) error
}

// HandlerConfig はハンドラー共通の設定。
type HandlerConfig struct {
	// MaxBodyBytes はリクエストボディの上限バイト数。0以下なら無制限。
	MaxBodyBytes int64
	// Rejections はnilの場合は記録しない。
	Rejections middleware.RejectionRecorder
}

// UserHandler はユーザー登録のHTTPハンドラー。
type UserHandler struct {
	service UserServiceInterface
	config  HandlerConfig
}

// NewUserHandler はUserHandlerを生成する。
func NewUserHandler(service UserServiceInterface, config HandlerConfig) *UserHandler {
	return &UserHandler{
		service: service,
		config:  config,
	}
}

// userRequest はユーザー登録リクエストのボディ。
type userRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Register はユーザーを登録する。成功時は本文なしの201を返す。
// POST /todo/user
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	req, err := decodeJSONBody[userRequest](w, r, h.config.MaxBodyBytes)
	if err != nil {
		handleServiceError(w, err, h.config.Rejections)
		return
	}

	var user *model.User
	if req != nil {
		user = &model.User{Username: req.Username, Password: req.Password}
	}

	if err := h.service.RegisterUser(r.Context(), user); err != nil {
		handleServiceError(w, err, h.config.Rejections)
		return
	}

	w.WriteHeader(http.StatusCreated)
}
