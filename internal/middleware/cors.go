package middleware

import (
	"net/http"

	"github.com/go-chi/cors"
	"github.com/hitoshi/todoapp/internal/credential"
)

// NewCORSMiddleware は指定されたオリジンに対するCORSミドルウェアを返す。
// 認証情報はCookieではなくauthヘッダーで送るため、credentialsは許可しない。
// "*" を指定すると全オリジンを許可する。
func NewCORSMiddleware(allowedOrigin string) func(next http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins:   []string{allowedOrigin},
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type", credential.HeaderName},
		AllowCredentials: false,
		MaxAge:           86400,
	})
}
