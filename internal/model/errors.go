// Package model はドメインモデルを定義する。
package model

import (
	"errors"
	"fmt"
)

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, validation, task, user
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Is はエラーコードが一致するAPIErrorを同一とみなす。
// errors.Is(err, model.ErrNotFound) のように種別で判定できる。
func (e *APIError) Is(target error) bool {
	t, ok := target.(*APIError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// 定義済みエラーコード
const (
	ErrCodeInvalidBody      = "INVALID_BODY"
	ErrCodeMalformedHeader  = "MALFORMED_HEADER"
	ErrCodeNotAuthenticated = "NOT_AUTHENTICATED"
	ErrCodeForbidden        = "FORBIDDEN"
	ErrCodeNotFound         = "NOT_FOUND"
	ErrCodeAlreadyExists    = "ALREADY_EXISTS"
	ErrCodeInternal         = "INTERNAL_ERROR"
)

// 種別判定用のセンチネル。errors.Isの比較対象としてのみ使う。
var (
	ErrInvalidBody      = &APIError{Code: ErrCodeInvalidBody}
	ErrMalformedHeader  = &APIError{Code: ErrCodeMalformedHeader}
	ErrNotAuthenticated = &APIError{Code: ErrCodeNotAuthenticated}
	ErrForbidden        = &APIError{Code: ErrCodeForbidden}
	ErrNotFound         = &APIError{Code: ErrCodeNotFound}
	ErrAlreadyExists    = &APIError{Code: ErrCodeAlreadyExists}
)

// ErrKind はエラーチェーン中のAPIErrorのコードを返す。
// APIErrorを含まない場合は空文字列を返す。
func ErrKind(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code
	}
	return ""
}

// NewInvalidBodyError はリクエストボディ不正エラーを生成する。
func NewInvalidBodyError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidBody,
		Message:  fmt.Sprintf("リクエストボディが不正です: %s", reason),
		Category: "validation",
		Action:   "必須項目と日付形式（YYYY-MM-DD）を確認してください。",
	}
}

// NewMalformedHeaderError は認証ヘッダー形式不正エラーを生成する。
func NewMalformedHeaderError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeMalformedHeader,
		Message:  fmt.Sprintf("認証ヘッダーの形式が不正です: %s", reason),
		Category: "auth",
		Action:   "authヘッダーに base64(ユーザー名):base64(パスワード) を指定してください。",
	}
}

// NewNotAuthenticatedError は認証失敗エラーを生成する。
// ユーザー不在とパスワード不一致は区別しない。
func NewNotAuthenticatedError() *APIError {
	return &APIError{
		Code:     ErrCodeNotAuthenticated,
		Message:  "ユーザー名またはパスワードが正しくありません。",
		Category: "auth",
		Action:   "登録済みのユーザー名とパスワードを指定してください。",
	}
}

// NewForbiddenError は他ユーザーのタスクへのアクセスエラーを生成する。
func NewForbiddenError(taskID string) *APIError {
	return &APIError{
		Code:     ErrCodeForbidden,
		Message:  fmt.Sprintf("このタスクへのアクセス権限がありません: %s", taskID),
		Category: "task",
		Action:   "自分が作成したタスクのみ操作できます。",
	}
}

// NewTaskNotFoundError はタスク未検出エラーを生成する。
func NewTaskNotFoundError(taskID string) *APIError {
	return &APIError{
		Code:     ErrCodeNotFound,
		Message:  fmt.Sprintf("指定されたタスクが見つかりません: %s", taskID),
		Category: "task",
		Action:   "タスクIDを確認してください。",
	}
}

// NewUserAlreadyExistsError はユーザー名重複エラーを生成する。
func NewUserAlreadyExistsError(username string) *APIError {
	return &APIError{
		Code:     ErrCodeAlreadyExists,
		Message:  fmt.Sprintf("ユーザーは既に登録されています: %s", username),
		Category: "user",
		Action:   "別のユーザー名で登録してください。",
	}
}

// NewInternalError は内部エラーを生成する。
// 詳細はログのみに記録し、ユーザーには一般的なメッセージを返す。
func NewInternalError() *APIError {
	return &APIError{
		Code:     ErrCodeInternal,
		Message:  "内部エラーが発生しました。",
		Category: "system",
		Action:   "しばらく待ってから再度お試しください。",
	}
}
