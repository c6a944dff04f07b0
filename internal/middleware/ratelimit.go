package middleware

import (
	"encoding/json"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiterConfig はレート制限の設定を保持する。
type RateLimiterConfig struct {
	GeneralRate     rate.Limit    // API全般のレート（req/sec）。120/60 = 2 req/sec
	GeneralBurst    int           // API全般のバーストサイズ
	IssuanceRate    rate.Limit    // 信用供与申込のレート（req/sec）。10/60
	IssuanceBurst   int           // 信用供与申込のバーストサイズ
	CleanupInterval time.Duration // 期限切れエントリのクリーンアップ間隔
}

// DefaultRateLimiterConfig はデフォルトのレート制限設定を返す。
// 要件: API全般 120 req/min/customer、信用供与申込 10 req/min/customer
func DefaultRateLimiterConfig() RateLimiterConfig {
	return RateLimiterConfig{
		GeneralRate:     rate.Limit(120.0 / 60.0), // 2 req/sec
		GeneralBurst:    120,
		IssuanceRate:    rate.Limit(10.0 / 60.0), // ~0.167 req/sec
		IssuanceBurst:   10,
		CleanupInterval: 5 * time.Minute,
	}
}

// customerLimiter は顧客ごとのレートリミッターとアクセス時刻を保持する。
type customerLimiter struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// RateLimiter は顧客ごとのレート制限を管理する。
// API全般のレート制限と信用供与申込のレート制限の2種類を提供する。
type RateLimiter struct {
	config RateLimiterConfig

	generalMu       sync.RWMutex
	generalLimiters map[int64]*customerLimiter

	issuanceMu       sync.RWMutex
	issuanceLimiters map[int64]*customerLimiter

	stopCh chan struct{}
}

// NewRateLimiter は新しいRateLimiterを生成する。
// バックグラウンドで期限切れエントリのクリーンアップを開始する。
func NewRateLimiter(config RateLimiterConfig) *RateLimiter {
	rl := &RateLimiter{
		config:           config,
		generalLimiters:  make(map[int64]*customerLimiter),
		issuanceLimiters: make(map[int64]*customerLimiter),
		stopCh:           make(chan struct{}),
	}

	go rl.cleanupLoop()

	return rl
}

// Stop はクリーンアップのバックグラウンドゴルーチンを停止する。
func (rl *RateLimiter) Stop() {
	close(rl.stopCh)
}

// GeneralMiddleware はAPI全般のレート制限ミドルウェアを返す。
// リクエストコンテキストに顧客IDが含まれている必要がある（SessionMiddlewareの後に配置）。
func (rl *RateLimiter) GeneralMiddleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			customerID, err := CustomerIDFromContext(r.Context())
			if err != nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			limiter := rl.getOrCreateGeneralLimiter(customerID)

			if !limiter.Allow() {
				writeRateLimitResponse(w, rl.config.GeneralRate)
				slog.Warn("rate limit exceeded",
					slog.Int64("customer_id", customerID),
					slog.String("limit_type", "general"),
				)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// IssuanceMiddleware は信用供与申込専用のレート制限ミドルウェアを返す。
// API全般のレート制限とは独立に動作する。
func (rl *RateLimiter) IssuanceMiddleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			customerID, err := CustomerIDFromContext(r.Context())
			if err != nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			limiter := rl.getOrCreateIssuanceLimiter(customerID)

			if !limiter.Allow() {
				writeRateLimitResponse(w, rl.config.IssuanceRate)
				slog.Warn("rate limit exceeded",
					slog.Int64("customer_id", customerID),
					slog.String("limit_type", "issuance"),
				)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// GeneralLimiterCount は現在管理されているAPI全般リミッターのエントリ数を返す。
// テストおよびメトリクス用。
func (rl *RateLimiter) GeneralLimiterCount() int {
	rl.generalMu.RLock()
	defer rl.generalMu.RUnlock()
	return len(rl.generalLimiters)
}

// IssuanceLimiterCount は現在管理されている信用供与申込リミッターのエントリ数を返す。
// テストおよびメトリクス用。
func (rl *RateLimiter) IssuanceLimiterCount() int {
	rl.issuanceMu.RLock()
	defer rl.issuanceMu.RUnlock()
	return len(rl.issuanceLimiters)
}

// getOrCreateGeneralLimiter は顧客のAPI全般リミッターを取得または作成する。
func (rl *RateLimiter) getOrCreateGeneralLimiter(customerID int64) *rate.Limiter {
	rl.generalMu.RLock()
	cl, exists := rl.generalLimiters[customerID]
	rl.generalMu.RUnlock()

	if exists {
		rl.generalMu.Lock()
		cl.lastAccess = time.Now()
		rl.generalMu.Unlock()
		return cl.limiter
	}

	rl.generalMu.Lock()
	defer rl.generalMu.Unlock()

	// ダブルチェック
	if cl, exists := rl.generalLimiters[customerID]; exists {
		cl.lastAccess = time.Now()
		return cl.limiter
	}

	limiter := rate.NewLimiter(rl.config.GeneralRate, rl.config.GeneralBurst)
	rl.generalLimiters[customerID] = &customerLimiter{
		limiter:    limiter,
		lastAccess: time.Now(),
	}

	return limiter
}

// getOrCreateIssuanceLimiter は顧客の信用供与申込リミッターを取得または作成する。
func (rl *RateLimiter) getOrCreateIssuanceLimiter(customerID int64) *rate.Limiter {
	rl.issuanceMu.RLock()
	cl, exists := rl.issuanceLimiters[customerID]
	rl.issuanceMu.RUnlock()

	if exists {
		rl.issuanceMu.Lock()
		cl.lastAccess = time.Now()
		rl.issuanceMu.Unlock()
		return cl.limiter
	}

	rl.issuanceMu.Lock()
	defer rl.issuanceMu.Unlock()

	// ダブルチェック
	if cl, exists := rl.issuanceLimiters[customerID]; exists {
		cl.lastAccess = time.Now()
		return cl.limiter
	}

	limiter := rate.NewLimiter(rl.config.IssuanceRate, rl.config.IssuanceBurst)
	rl.issuanceLimiters[customerID] = &customerLimiter{
		limiter:    limiter,
		lastAccess: time.Now(),
	}

	return limiter
}

// cleanupLoop はバックグラウンドで期限切れエントリを定期的にクリーンアップする。
func (rl *RateLimiter) cleanupLoop() {
	ticker := time.NewTicker(rl.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.cleanup()
		case <-rl.stopCh:
			return
		}
	}
}

// cleanup は最終アクセス時刻がCleanupIntervalの2倍を超えたエントリを削除する。
func (rl *RateLimiter) cleanup() {
	ttl := rl.config.CleanupInterval * 2

	now := time.Now()

	rl.generalMu.Lock()
	for customerID, cl := range rl.generalLimiters {
		if now.Sub(cl.lastAccess) > ttl {
			delete(rl.generalLimiters, customerID)
		}
	}
	rl.generalMu.Unlock()

	rl.issuanceMu.Lock()
	for customerID, cl := range rl.issuanceLimiters {
		if now.Sub(cl.lastAccess) > ttl {
			delete(rl.issuanceLimiters, customerID)
		}
	}
	rl.issuanceMu.Unlock()
}

// writeRateLimitResponse は429 Too Many Requestsレスポンスを書き込む。
// Retry-Afterヘッダーにはトークンが補充されるまでの推定秒数を設定する。
func writeRateLimitResponse(w http.ResponseWriter, r rate.Limit) {
	// Retry-Afterの算出: 1トークンが補充されるまでの秒数
	retryAfterSec := int(math.Ceil(1.0 / float64(r)))
	if retryAfterSec < 1 {
		retryAfterSec = 1
	}

	w.Header().Set("Retry-After", strconv.Itoa(retryAfterSec))
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusTooManyRequests)

	json.NewEncoder(w).Encode(map[string]string{
		"code":     "rate_limit_exceeded",
		"message":  "Too many requests. Please try again later.",
		"category": "system",
		"action":   "Please wait and retry after the specified time.",
	})
}
