// Package validation はリクエストの検証処理を提供する。
// 各関数は独立しており、呼び出し順序はtodo.Serviceが決める。
package validation

import (
	"context"
	"fmt"
	"time"

	"github.com/hitoshi/todoapp/internal/model"
)

// dueLayouts は受け付ける期限の形式。
// YYYY-MM-DD に加え、ISO-8601のオフセット付き日付（2021-06-30Z, 2021-06-30+01:00）を許可する。
var dueLayouts = []string{
	"2006-01-02",
	"2006-01-02Z07:00",
}

// UserFinder は認証情報の検証に必要なユーザー検索インターフェース。
// repository.UserRepositoryの部分集合として定義する。
type UserFinder interface {
	FindByUsername(ctx context.Context, username string) (*model.User, error)
}

// ValidateUser はユーザー登録ペイロードを検証する。
func ValidateUser(user *model.User) error {
	if user == nil {
		return model.NewInvalidBodyError("ユーザー情報がありません")
	}
	if user.Username == "" || user.Password == "" {
		return model.NewInvalidBodyError("ユーザー名とパスワードは必須です")
	}
	return nil
}

// ValidateTaskBody はタスクペイロードを検証する。
// ボディがない、説明が空、期限が日付として不正な場合にINVALID_BODYを返す。
func ValidateTaskBody(body *model.TaskBody) error {
	if body == nil {
		return model.NewInvalidBodyError("タスクがありません")
	}
	if body.Description == "" {
		return model.NewInvalidBodyError("説明は必須です")
	}
	if body.Due != nil && !IsValidDue(*body.Due) {
		return model.NewInvalidBodyError(fmt.Sprintf("期限の日付形式が不正です: %q", *body.Due))
	}
	return nil
}

// IsValidDue は値が実在する暦日を表すISO-8601の日付かを返す。
func IsValidDue(due string) bool {
	for _, layout := range dueLayouts {
		if _, err := time.Parse(layout, due); err == nil {
			return true
		}
	}
	return false
}

// ValidateCredentials はユーザー名とパスワードを検証する。
// ユーザーが存在しない、またはパスワードがバイト単位で一致しない場合は
// NOT_AUTHENTICATEDを返す。
func ValidateCredentials(ctx context.Context, users UserFinder, username, password string) error {
	user, err := users.FindByUsername(ctx, username)
	if err != nil {
		return fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil || user.Password != password {
		return model.NewNotAuthenticatedError()
	}
	return nil
}

// ValidateOwnership はタスクの存在と所有者を検証する。
// 存在確認を所有者確認より先に行うため、存在しないタスクは常にNOT_FOUNDになる。
func ValidateOwnership(task *model.Task, id, username string) error {
	if task == nil {
		return model.NewTaskNotFoundError(id)
	}
	if task.Owner != username {
		return model.NewForbiddenError(id)
	}
	return nil
}
