// Package credential は認証ヘッダーのエンコードとデコードを提供する。
//
// ヘッダー値は base64(ユーザー名):base64(パスワード) の形式で、
// 各セグメントは標準base64（パディング付き）でなければならない。
package credential

import (
	"encoding/base64"
	"regexp"
	"strings"

	"github.com/hitoshi/todoapp/internal/model"
)

// HeaderName は認証情報を運ぶHTTPヘッダー名。
const HeaderName = "auth"

// base64Pattern はパディングを含めた標準base64の1セグメントにマッチする。
// 空文字列にはマッチしない。
var base64Pattern = regexp.MustCompile(`^(?:[A-Za-z0-9+/]{4})*(?:[A-Za-z0-9+/]{2}==|[A-Za-z0-9+/]{3}=|[A-Za-z0-9+/]{4})$`)

// Credentials はデコード済みのユーザー名とパスワード。
type Credentials struct {
	Username string
	Password string
}

// Decode は認証ヘッダーの値をCredentialsにデコードする。
// ヘッダーが空、セグメント数が2でない、base64として不正な場合は
// MALFORMED_HEADERのAPIErrorを返す。
func Decode(headerValue string) (Credentials, error) {
	if headerValue == "" {
		return Credentials{}, model.NewMalformedHeaderError("ヘッダーがありません")
	}

	parts := strings.Split(headerValue, ":")
	if len(parts) != 2 {
		return Credentials{}, model.NewMalformedHeaderError("セグメント数が不正です")
	}

	decoded := make([]string, len(parts))
	for i, part := range parts {
		if !base64Pattern.MatchString(part) {
			return Credentials{}, model.NewMalformedHeaderError("base64形式ではありません")
		}
		b, err := base64.StdEncoding.DecodeString(part)
		if err != nil {
			return Credentials{}, model.NewMalformedHeaderError("base64のデコードに失敗しました")
		}
		decoded[i] = string(b)
	}

	return Credentials{Username: decoded[0], Password: decoded[1]}, nil
}

// Encode はユーザー名とパスワードから認証ヘッダーの値を生成する。
func Encode(username, password string) string {
	return base64.StdEncoding.EncodeToString([]byte(username)) + ":" +
		base64.StdEncoding.EncodeToString([]byte(password))
}
