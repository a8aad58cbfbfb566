package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/hitoshi/todoapp/internal/middleware"
	"github.com/hitoshi/todoapp/internal/todo"
)

// taskIDPattern はタスクIDとして受け付けるUUIDの形式。
// 一致しないパスは未定義ルートとして扱う。
const taskIDPattern = `[0-9a-f]{8}-[0-9a-f]{4}-[1-5][0-9a-f]{3}-[89ab][0-9a-f]{3}-[0-9a-f]{12}`

// MetricsRecorder はルーターが記録するメトリクスのインターフェース。
// metrics.Collectorが満たす。
type MetricsRecorder interface {
	middleware.RequestRecorder
	middleware.RejectionRecorder
}

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	Logger            *slog.Logger
	CORSAllowedOrigin string
	MaxBodyBytes      int64

	// Metrics はnilの場合は計測しない。
	Metrics MetricsRecorder
	// MetricsHandler はnilの場合は/metricsを公開しない。
	MetricsHandler http.Handler

	UserService UserServiceInterface
	TaskService TaskServiceInterface
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	RequestID → Recovery → Logging → Metrics → SecurityHeaders → CORS → (AuthHeader)
//
// AuthHeaderミドルウェアは/todo/task配下のルートにのみ適用する。
// 未定義のパスとメソッドには本文なしの400を返す。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r.Use(chimiddleware.RequestID)
	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewLoggingMiddleware(logger))
	if deps.Metrics != nil {
		r.Use(middleware.NewMetricsMiddleware(deps.Metrics))
	}
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))

	// サブルーターに引き継がれるよう、ルート定義より前に設定する
	r.NotFound(middleware.WriteEmptyBadRequest)
	r.MethodNotAllowed(middleware.WriteEmptyBadRequest)

	config := HandlerConfig{
		MaxBodyBytes: deps.MaxBodyBytes,
		Rejections:   deps.Metrics,
	}

	userHandler := NewUserHandler(deps.UserService, config)
	taskHandler := NewTaskHandler(deps.TaskService, config)

	// --- 運用エンドポイント ---
	r.Get("/health", Health)
	if deps.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", deps.MetricsHandler)
	}

	// --- 認証不要のルート ---
	r.Route("/todo/user", func(r chi.Router) {
		r.Post("/", userHandler.Register)
	})

	// --- authヘッダーが必要なルート ---
	r.Route("/todo/task", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(middleware.NewAuthHeaderMiddleware(config.Rejections))

			r.Post("/", taskHandler.CreateTask)
			r.Get("/", taskHandler.ListTasks)

			r.Route("/{id:"+taskIDPattern+"}", func(r chi.Router) {
				r.Get("/", taskHandler.GetTask)
				r.Put("/", taskHandler.UpdateTask)
				r.Delete("/", taskHandler.DeleteTask)
			})
		})
	})

	return r
}

// todo.Serviceがハンドラーのインターフェースを満たすことのコンパイル時チェック。
var _ UserServiceInterface = (*todo.Service)(nil)
var _ TaskServiceInterface = (*todo.Service)(nil)
