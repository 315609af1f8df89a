package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/spinbux/internal/metrics"
	"github.com/hitoshi/spinbux/internal/middleware"
	"github.com/prometheus/client_golang/prometheus"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	TokenVerifier     middleware.TokenVerifier
	AuthMetrics       middleware.AuthMetricsRecorder
	CORSAllowedOrigin string

	// サービス
	AuthService        AuthServiceInterface
	UserService        UserServiceInterface
	TaskService        TaskServiceInterface
	WheelService       WheelServiceInterface
	LeaderboardService LeaderboardServiceInterface
	WithdrawalService  WithdrawalServiceInterface

	// 運用
	Gatherer    prometheus.Gatherer
	HealthCheck func() error
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	CORSMiddleware → SecurityHeaders → Logging → Recovery → Auth(必須/任意)
//
// 認証ルート（/auth/*）と運用ルート（/health, /metrics）は
// 認証ミドルウェアの外に配置する。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	// 全ルートに効くミドルウェア
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewLoggingMiddleware(slog.Default()))
	r.Use(middleware.NewRecoveryMiddleware())

	authHandler := NewAuthHandler(deps.AuthService)
	userHandler := NewUserHandler(deps.UserService)
	taskHandler := NewTaskHandler(deps.TaskService)
	wheelHandler := NewWheelHandler(deps.WheelService)
	leaderboardHandler := NewLeaderboardHandler(deps.LeaderboardService)
	withdrawalHandler := NewWithdrawalHandler(deps.WithdrawalService)

	// --- 認証不要のルート ---

	r.Route("/auth", func(r chi.Router) {
		r.Post("/telegram", authHandler.Authenticate)
		r.Post("/refresh", authHandler.Refresh)
	})

	r.Get("/health", newHealthHandler(deps.HealthCheck))
	if deps.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", metrics.Handler(deps.Gatherer))
	}

	// ランキングは認証任意。認証済みの場合のみ自分の順位が含まれる。
	r.Group(func(r chi.Router) {
		r.Use(middleware.NewOptionalAuthMiddleware(deps.TokenVerifier))

		r.Route("/api/leaderboard", func(r chi.Router) {
			r.Get("/", leaderboardHandler.List)
			r.Get("/{userId}", leaderboardHandler.UserRank)
		})
	})

	// --- 認証が必要なルート ---
	r.Group(func(r chi.Router) {
		r.Use(middleware.NewAuthMiddleware(deps.TokenVerifier, deps.AuthMetrics))

		// ユーザー管理
		r.Route("/api/users", func(r chi.Router) {
			r.Get("/me", userHandler.GetProfile)
			r.Put("/me", userHandler.UpdateProfile)
		})

		// タスク管理
		r.Route("/api/tasks", func(r chi.Router) {
			r.Get("/", taskHandler.ListTasks)
			r.Post("/{id}/complete", taskHandler.CompleteTask)
		})

		// ルーレット
		r.Route("/api/wheel", func(r chi.Router) {
			r.Post("/spin", wheelHandler.Spin)
			r.Get("/spins", wheelHandler.ListSpins)
		})

		// 出金
		r.Route("/api/withdrawals", func(r chi.Router) {
			r.Get("/", withdrawalHandler.List)
			r.Post("/", withdrawalHandler.Request)
		})
	})

	return r
}

// newHealthHandler は依存先の疎通確認を行うヘルスチェックハンドラーを返す。
// checkにnilを渡すとプロセス生存のみを応答する。
func newHealthHandler(check func() error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if check != nil {
			if err := check(); err != nil {
				writeJSON(w, http.StatusServiceUnavailable, map[string]string{
					"status": "unhealthy",
				})
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
