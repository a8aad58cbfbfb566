// Package model はドメインモデルを定義する。
package model

// User はサービス利用ユーザーを表す。
// Usernameが主キーで、登録後は変更されない。
// Passwordはハッシュ化せず、そのまま比較する。
type User struct {
	Username string
	Password string
}
