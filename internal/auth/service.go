// Package auth はパスワード認証とセッション管理を提供する。
package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	"github.com/hitoshi/creditman/internal/model"
	"github.com/hitoshi/creditman/internal/repository"
)

// ServiceConfig は認証サービスの設定。
type ServiceConfig struct {
	SessionMaxAge int // セッション有効期間（秒）
}

// Service は認証に関するビジネスロジックを提供する。
type Service struct {
	customerRepo repository.CustomerRepository
	sessionRepo  repository.SessionRepository
	config       ServiceConfig
}

// NewService はServiceを生成する。
func NewService(
	customerRepo repository.CustomerRepository,
	sessionRepo repository.SessionRepository,
	config ServiceConfig,
) *Service {
	return &Service{
		customerRepo: customerRepo,
		sessionRepo:  sessionRepo,
		config:       config,
	}
}

// Login はメールアドレスとパスワードを検証し、セッションを発行する。
// 顧客が存在しない場合とパスワード不一致の場合で同じエラーを返し、
// メールアドレスの登録有無を外部に漏らさない。
func (s *Service) Login(ctx context.Context, email, password string) (*model.Session, *model.Customer, error) {
	customer, err := s.customerRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to find customer by email: %w", err)
	}
	if customer == nil {
		return nil, nil, model.NewInvalidCredentialsError()
	}

	if !CheckPassword(customer.PasswordHash, password) {
		return nil, nil, model.NewInvalidCredentialsError()
	}

	session, err := s.createSession(ctx, customer.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create session: %w", err)
	}

	slog.Info("customer logged in",
		slog.Int64("customer_id", customer.ID),
	)

	return session, customer, nil
}

// Logout はセッションを破棄する。
func (s *Service) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return fmt.Errorf("session ID is required")
	}

	if err := s.sessionRepo.DeleteByID(ctx, sessionID); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	slog.Info("customer logged out")
	return nil
}

// GetCurrentCustomer はセッションから現在の顧客を取得する。
func (s *Service) GetCurrentCustomer(ctx context.Context, sessionID string) (*model.Customer, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("session ID is required")
	}

	session, err := s.sessionRepo.FindByID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to find session: %w", err)
	}
	if session == nil {
		return nil, fmt.Errorf("session not found or expired")
	}

	customer, err := s.customerRepo.FindByID(ctx, session.CustomerID)
	if err != nil {
		return nil, fmt.Errorf("failed to find customer: %w", err)
	}
	if customer == nil {
		return nil, fmt.Errorf("customer not found")
	}

	return customer, nil
}

// createSession はセッションを作成し永続化する。
func (s *Service) createSession(ctx context.Context, customerID int64) (*model.Session, error) {
	sessionID, err := generateSessionID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate session ID: %w", err)
	}

	now := time.Now()
	session := &model.Session{
		ID:         sessionID,
		CustomerID: customerID,
		ExpiresAt:  now.Add(time.Duration(s.config.SessionMaxAge) * time.Second),
		CreatedAt:  now,
	}

	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to persist session: %w", err)
	}

	return session, nil
}

// generateSessionID は暗号学的乱数による256ビットのセッションIDを生成する。
func generateSessionID() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	return hex.EncodeToString(b), nil
}
