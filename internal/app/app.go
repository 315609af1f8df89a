package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/hitoshi/spinbux/internal/auth"
	"github.com/hitoshi/spinbux/internal/config"
	"github.com/hitoshi/spinbux/internal/database"
	"github.com/hitoshi/spinbux/internal/handler"
	"github.com/hitoshi/spinbux/internal/leaderboard"
	"github.com/hitoshi/spinbux/internal/logger"
	"github.com/hitoshi/spinbux/internal/metrics"
	"github.com/hitoshi/spinbux/internal/notify"
	"github.com/hitoshi/spinbux/internal/repository"
	"github.com/hitoshi/spinbux/internal/security"
	"github.com/hitoshi/spinbux/internal/task"
	"github.com/hitoshi/spinbux/internal/user"
	"github.com/hitoshi/spinbux/internal/wheel"
	"github.com/hitoshi/spinbux/internal/withdrawal"
	"github.com/hitoshi/spinbux/internal/worker/cleanup"
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

	if cfg.UsesInsecureSecret() {
		slog.Warn("SESSION_SECRET is not set; using insecure default secret. " +
			"Set SESSION_SECRET before deploying to production.")
	}
	if cfg.BotToken == "" {
		slog.Warn("BOT_TOKEN is not set; identity payload verification is disabled")
	}

	return cfg, nil
}

// Run はアプリケーションのメインエントリーポイント。
// コマンドライン引数からサブコマンドを解析し、対応するモードで起動する。
// argsにはos.Args[1:]を渡す。
func Run(w io.Writer, args []string) error {
	cmd := ParseCommand(args)

	// healthcheck は軽量サブコマンドのため、フル初期化をスキップする
	if cmd == CommandHealthcheck {
		port := os.Getenv("SERVER_PORT")
		if port == "" {
			port = "8080"
		}
		return runHealthcheck(port)
	}

	cfg, err := Init(w)
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	slog.Info("starting application",
		slog.String("command", string(cmd)),
		slog.String("port", cfg.ServerPort),
	)

	switch cmd {
	case CommandServe:
		return runServe(cfg)
	case CommandWorker:
		return runWorker(cfg)
	case CommandMigrate:
		return runMigrate(cfg)
	default:
		return runServe(cfg)
	}
}

// runServe はAPIサーバーモードで起動する。
// DB接続を開き、全依存関係をワイヤリングし、HTTPサーバーを起動する。
// SIGINTまたはSIGTERMシグナルを受信するとグレースフルシャットダウンを行う。
func runServe(cfg *config.Config) error {
	// 1. DB接続
	db, err := database.Open(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	slog.Info("database connection established")

	// 2. リポジトリの初期化
	userRepo := repository.NewPostgresUserRepo(db)
	taskRepo := repository.NewPostgresTaskRepo(db)
	spinRepo := repository.NewPostgresWheelSpinRepo(db)
	withdrawalRepo := repository.NewPostgresWithdrawalRepo(db)

	// 3. メトリクスとセキュリティサービスの初期化
	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)
	sanitizer := security.NewNameSanitizer()

	// 4. ドメインサービスの初期化
	tokenService := auth.NewTokenService(cfg.SessionSecret, cfg.TokenMaxAge)
	authService := auth.NewService(
		tokenService, userRepo, sanitizer, collector,
		auth.ServiceConfig{BotToken: cfg.BotToken},
	)

	userService := user.NewService(userRepo, sanitizer)
	taskService := task.NewService(taskRepo, userRepo, collector)
	wheelService := wheel.NewService(spinRepo, userRepo, collector)
	leaderboardService := leaderboard.NewService(userRepo)

	// 出金Webhook通知（WITHDRAW_WEBHOOK_URL設定時のみ有効）
	var notifier withdrawal.Notifier
	if cfg.WithdrawWebhookURL != "" {
		ssrfGuard := security.NewSSRFGuard()
		if err := ssrfGuard.ValidateURL(cfg.WithdrawWebhookURL); err != nil {
			return fmt.Errorf("invalid WITHDRAW_WEBHOOK_URL: %w", err)
		}
		notifier = notify.NewWebhookNotifier(
			ssrfGuard.NewSafeClient(cfg.WebhookTimeout),
			cfg.WithdrawWebhookURL,
		)
	}
	withdrawalService := withdrawal.NewService(
		userRepo, withdrawalRepo, notifier, collector,
		withdrawal.ServiceConfig{MinAmount: cfg.MinWithdrawAmount},
	)

	// 5. ルーターの構築
	deps := &handler.RouterDeps{
		TokenVerifier:     tokenService,
		AuthMetrics:       collector,
		CORSAllowedOrigin: cfg.CORSAllowedOrigin,

		AuthService:        authService,
		UserService:        userService,
		TaskService:        taskService,
		WheelService:       wheelService,
		LeaderboardService: leaderboardService,
		WithdrawalService:  withdrawalService,

		Gatherer:    registry,
		HealthCheck: db.Ping,
	}

	router := handler.NewRouter(deps)

	// 6. HTTPサーバーの起動
	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// グレースフルシャットダウンのためのシグナルハンドリング
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("API server starting",
			slog.String("addr", server.Addr),
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server listen error", slog.String("error", err.Error()))
		}
	}()

	<-stop
	slog.Info("shutting down API server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	slog.Info("API server stopped gracefully")
	return nil
}

// runWorker はワーカーモードで起動する。
// DB接続を開き、スピン履歴クリーンアップジョブを日次で実行する。
// SIGINTまたはSIGTERMシグナルを受信するとシャットダウンする。
func runWorker(cfg *config.Config) error {
	// 1. DB接続
	db, err := database.Open(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	slog.Info("database connection established (worker)")

	// 2. クリーンアップジョブの初期化
	spinRepo := repository.NewPostgresWheelSpinRepo(db)
	cleanupJob := cleanup.NewCleanupJob(spinRepo, slog.Default())
	cleanupJob.RetentionDays = cfg.SpinRetentionDays

	// グレースフルシャットダウンのためのシグナルハンドリング
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-stop
		slog.Info("shutting down worker...")
		cancel()
	}()

	slog.Info("worker starting",
		slog.Int("spin_retention_days", cfg.SpinRetentionDays),
		slog.Duration("cleanup_interval", cfg.CleanupInterval),
	)

	// 起動直後に1回実行
	if err := cleanupJob.Run(ctx); err != nil {
		slog.Error("cleanup job failed", slog.String("error", err.Error()))
	}

	ticker := time.NewTicker(cfg.CleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			slog.Info("worker stopped gracefully")
			return nil
		case <-ticker.C:
			if err := cleanupJob.Run(ctx); err != nil {
				slog.Error("cleanup job failed", slog.String("error", err.Error()))
			}
		}
	}
}

// runMigrate はデータベースマイグレーションを実行する。
// すべての未適用マイグレーションを順番に適用する。
func runMigrate(cfg *config.Config) error {
	slog.Info("running database migrations",
		slog.String("database_url", maskDatabaseURL(cfg.DatabaseURL)),
	)

	if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	slog.Info("database migrations completed successfully")
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

// maskDatabaseURL はデータベースURLの認証情報をマスクする。
func maskDatabaseURL(url string) string {
	if len(url) > 20 {
		return url[:12] + "***@..."
	}
	return "***"
}
