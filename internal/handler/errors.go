package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/hitoshi/todoapp/internal/middleware"
	"github.com/hitoshi/todoapp/internal/model"
)

// handleServiceError はサービス層から返されたエラーを適切なHTTPステータスコードに変換する。
// recorderが指定された場合は失敗種別を記録する。
func handleServiceError(w http.ResponseWriter, err error, recorder middleware.RejectionRecorder) {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		if recorder != nil {
			recorder.RecordRejection(apiErr.Code)
		}
		middleware.WriteErrorResponse(w, mapAPIErrorToHTTPStatus(apiErr), apiErr)
		return
	}

	// APIError以外のエラーは内部サーバーエラーとして扱う
	slog.Error("internal server error", slog.String("error", err.Error()))
	if recorder != nil {
		recorder.RecordRejection(model.ErrCodeInternal)
	}
	middleware.WriteInternalServerError(w)
}

// mapAPIErrorToHTTPStatus はAPIErrorコードからHTTPステータスコードにマッピングする。
func mapAPIErrorToHTTPStatus(apiErr *model.APIError) int {
	switch apiErr.Code {
	case model.ErrCodeInvalidBody, model.ErrCodeMalformedHeader:
		return http.StatusBadRequest
	case model.ErrCodeNotAuthenticated:
		return http.StatusUnauthorized
	case model.ErrCodeForbidden:
		return http.StatusForbidden
	case model.ErrCodeNotFound:
		return http.StatusNotFound
	case model.ErrCodeAlreadyExists:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// decodeJSONBody はリクエストボディをJSONとしてデコードする。
// ボディがJSONのnullの場合は(nil, nil)を返し、必須チェックは呼び出し側の検証に任せる。
// 空ボディ、構文エラー、型不一致、サイズ超過はINVALID_BODYとして扱う。
func decodeJSONBody[T any](w http.ResponseWriter, r *http.Request, maxBytes int64) (*T, error) {
	body := r.Body
	if maxBytes > 0 {
		body = http.MaxBytesReader(w, r.Body, maxBytes)
	}

	var v *T
	if err := json.NewDecoder(body).Decode(&v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, model.NewInvalidBodyError("リクエストボディが大きすぎます")
		}
		return nil, model.NewInvalidBodyError("JSONとして解析できません")
	}
	return v, nil
}

// writeJSON はJSONレスポンスを書き込む。
func writeJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", slog.String("error", err.Error()))
	}
}
