package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/hitoshi/todoapp/internal/config"
	"github.com/hitoshi/todoapp/internal/handler"
	"github.com/hitoshi/todoapp/internal/logger"
	"github.com/hitoshi/todoapp/internal/metrics"
	"github.com/hitoshi/todoapp/internal/repository"
	"github.com/hitoshi/todoapp/internal/todo"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Init はアプリケーションの初期化を行う。
// 環境変数からConfigを読み込み、JSON構造化ログをセットアップする。
// writerが指定された場合はログ出力先としてそのwriterを使用する。
func Init(w io.Writer) (*config.Config, error) {
	// 1. ログの初期化（設定読み込み前にログを使えるようにする）
	logger.SetupDefault(w)

	// 2. 環境変数から設定を読み込む
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	return cfg, nil
}

// Run はアプリケーションのメインエントリーポイント。
// コマンドライン引数からサブコマンドを解析し、対応するモードで起動する。
// argsにはos.Args[1:]を渡す。
func Run(w io.Writer, args []string) error {
	cmd := ParseCommand(args)

	// healthcheck は軽量サブコマンドのため、ログの初期化をスキップする
	if cmd == CommandHealthcheck {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if err := cfg.ApplyFlags(flagArgs(args)); err != nil {
			return err
		}
		return runHealthcheck(cfg.ServerPort)
	}

	cfg, err := Init(w)
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}
	if err := cfg.ApplyFlags(flagArgs(args)); err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}
	if err := logger.SetLevel(cfg.LogLevel); err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	slog.Info("starting application",
		slog.String("command", string(cmd)),
		slog.String("addr", cfg.Addr()),
		slog.Bool("metrics_enabled", cfg.MetricsEnabled),
	)

	return runServe(cfg)
}

// NewHandler は全依存関係をワイヤリングしたHTTPハンドラーを返す。
// メトリクスが有効な場合はregにコレクタを登録する。
func NewHandler(cfg *config.Config, reg *prometheus.Registry) http.Handler {
	// 1. リポジトリの初期化
	userRepo := repository.NewMemoryUserRepo()
	taskRepo := repository.NewMemoryTaskRepo()

	deps := &handler.RouterDeps{
		Logger:            slog.Default(),
		CORSAllowedOrigin: cfg.CORSAllowedOrigin,
		MaxBodyBytes:      cfg.MaxBodyBytes,
	}

	// 2. メトリクスの初期化
	var serviceConfig todo.ServiceConfig
	if cfg.MetricsEnabled {
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		collector := metrics.NewCollector(reg, userRepo, taskRepo)
		serviceConfig.Recorder = collector
		deps.Metrics = collector
		deps.MetricsHandler = metrics.Handler(reg)
	}

	// 3. ドメインサービスの初期化
	svc := todo.NewService(userRepo, taskRepo, serviceConfig)
	deps.UserService = svc
	deps.TaskService = svc

	// 4. ルーターの構築
	return handler.NewRouter(deps)
}

// runServe はAPIサーバーモードで起動する。
// SIGINTまたはSIGTERMシグナルを受信するとグレースフルシャットダウンを行う。
func runServe(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ln, err := net.Listen("tcp", cfg.Addr())
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", cfg.Addr(), err)
	}

	return serve(ctx, cfg, ln)
}

// serve はlnでHTTPサーバーを起動し、ctxがキャンセルされるとシャットダウンする。
func serve(ctx context.Context, cfg *config.Config, ln net.Listener) error {
	server := &http.Server{
		Handler:      NewHandler(cfg, prometheus.NewRegistry()),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("API server starting",
			slog.String("addr", ln.Addr().String()),
		)
		errCh <- server.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server listen error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("shutting down API server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	slog.Info("API server stopped gracefully")
	return nil
}

// runHealthcheck はヘルスチェックを実行する。
// distroless環境でのDockerヘルスチェック用サブコマンド。
// /health エンドポイントにHTTPリクエストを送り、結果を返す。
func runHealthcheck(port string) error {
	url := fmt.Sprintf("http://localhost:%s/health", port)
	client := &http.Client{Timeout: 5 * time.Second}

	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned status %d", resp.StatusCode)
	}

	return nil
}
