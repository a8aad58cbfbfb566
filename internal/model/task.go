// Package model はドメインモデルを定義する。
package model

import "github.com/google/uuid"

// Task はユーザーが作成したタスクを表す。
type Task struct {
	ID          uuid.UUID
	Description string
	Due         string // ISO-8601の日付。空文字列は期限なし
	// Owner は作成ユーザーのユーザー名。
	// ユーザーストアとの参照整合性は検証せず、ユーザー削除時の連鎖削除も行わない。
	Owner string
}

// HasDue は期限が設定されているかを返す。
func (t *Task) HasDue() bool {
	return t.Due != ""
}

// TaskBody はタスク作成・更新リクエストのペイロードを表す。
// Dueがnilの場合は期限の省略を、非nilの場合は検証対象の値を表す。
type TaskBody struct {
	Description string
	Due         *string
}

// DueValue は期限の値を返す。省略時は空文字列を返す。
func (b *TaskBody) DueValue() string {
	if b == nil || b.Due == nil {
		return ""
	}
	return *b.Due
}
