// Package middleware はHTTPミドルウェアを提供する。
package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/hitoshi/todoapp/internal/credential"
	"github.com/hitoshi/todoapp/internal/model"
)

// contextKey はコンテキストに値を格納するための型安全なキー。
type contextKey string

// credentialsContextKey はリクエストコンテキストに認証情報を格納するためのキー。
var credentialsContextKey = contextKey("credentials")

// RejectionRecorder は拒否したリクエストを失敗種別ごとに記録する。
type RejectionRecorder interface {
	RecordRejection(kind string)
}

// NewAuthHeaderMiddleware はauthヘッダーをデコードし、
// 認証情報をリクエストコンテキストに注入するミドルウェアを返す。
// ヘッダーが欠落または不正な場合はボディを読む前に400 Bad Requestを返す。
// ユーザーの存在確認とパスワード照合はサービス層で行う。
func NewAuthHeaderMiddleware(recorder RejectionRecorder) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			creds, err := credential.Decode(r.Header.Get(credential.HeaderName))
			if err != nil {
				if recorder != nil {
					recorder.RecordRejection(model.ErrCodeMalformedHeader)
				}
				WriteErrorResponse(w, http.StatusBadRequest, malformedHeaderError(err))
				return
			}

			setLoggedUsername(r.Context(), creds.Username)

			ctx := ContextWithCredentials(r.Context(), creds)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// CredentialsFromContext はリクエストコンテキストから認証情報を取得する。
// 認証ヘッダーミドルウェアを通過したリクエストでのみ有効。
func CredentialsFromContext(ctx context.Context) (credential.Credentials, error) {
	creds, ok := ctx.Value(credentialsContextKey).(credential.Credentials)
	if !ok {
		return credential.Credentials{}, fmt.Errorf("credentials not found in context")
	}
	return creds, nil
}

// ContextWithCredentials はコンテキストに認証情報を注入する。
// テストやミドルウェア以外のコンテキスト生成で使用する。
func ContextWithCredentials(ctx context.Context, creds credential.Credentials) context.Context {
	return context.WithValue(ctx, credentialsContextKey, creds)
}

func malformedHeaderError(err error) *model.APIError {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}
	return model.NewMalformedHeaderError(err.Error())
}
