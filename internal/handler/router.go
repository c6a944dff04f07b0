package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/creditman/internal/middleware"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	SessionFinder     middleware.SessionFinder
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter
	Logger            *slog.Logger

	// メトリクス計測ミドルウェア（nilの場合は無効）
	MetricsMiddleware func(next http.Handler) http.Handler

	// 認証
	AuthService AuthServiceInterface
	AuthConfig  AuthHandlerConfig

	// 顧客
	CustomerService CustomerServiceInterface

	// 信用供与
	CreditService CreditServiceInterface

	// ヘルスチェック
	HealthChecker HealthChecker
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	Recovery → SecurityHeaders → CORS → Logging → [Metrics] →
//	(認証ルートのみ) SessionMiddleware → RateLimitMiddleware
//
// 登録（POST /api/customers）と認証ルート（/auth/*）、/healthは
// セッションミドルウェアの外に配置する。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	r.Use(middleware.NewLoggingMiddleware(logger))
	if deps.MetricsMiddleware != nil {
		r.Use(deps.MetricsMiddleware)
	}

	authHandler := NewAuthHandler(deps.AuthService, deps.AuthConfig)
	customerHandler := NewCustomerHandler(deps.CustomerService)
	creditHandler := NewCreditHandler(deps.CreditService)

	// --- 認証不要のルート ---

	r.Get("/health", NewHealthHandler(deps.HealthChecker))

	r.Route("/auth", func(r chi.Router) {
		r.Post("/login", authHandler.Login)
		r.Post("/logout", authHandler.Logout)
		r.Get("/me", authHandler.Me)
	})

	// 顧客登録は認証前に行うため公開ルート
	r.Post("/api/customers", customerHandler.Create)

	// --- 認証が必要なルート ---
	// ミドルウェアスタック: Session → RateLimit(General)
	r.Group(func(r chi.Router) {
		r.Use(middleware.NewSessionMiddleware(deps.SessionFinder))
		r.Use(deps.RateLimiter.GeneralMiddleware())

		// 顧客管理
		r.Route("/api/customers/{id}", func(r chi.Router) {
			r.Get("/", customerHandler.Get)
			r.Patch("/", customerHandler.Patch)
			r.Delete("/", customerHandler.Delete)
		})

		// 信用供与
		r.Route("/api/credits", func(r chi.Router) {
			// POST /api/credits - 申込（専用レート制限を追加）
			r.With(deps.RateLimiter.IssuanceMiddleware()).Post("/", creditHandler.Issue)

			r.Get("/", creditHandler.List)
			r.Get("/{creditCode}", creditHandler.Get)
		})
	})

	return r
}
