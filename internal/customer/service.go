// Package customer は顧客管理のドメインロジックを提供する。
package customer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hitoshi/creditman/internal/model"
	"github.com/hitoshi/creditman/internal/repository"
	"github.com/shopspring/decimal"
)

// PasswordHasher はパスワードのハッシュ化インターフェース。
// 実装はauthパッケージのBcryptHasher。
type PasswordHasher interface {
	Hash(password string) (string, error)
}

// RegisterInput は顧客登録の入力。
// フィールドの存在・形式チェック（必須項目、email形式、CPF形式）は
// 境界層で実施済みであることを前提とし、ここでは再チェックしない。
type RegisterInput struct {
	FirstName string
	LastName  string
	CPF       string
	Income    decimal.Decimal
	Email     string
	Password  string
	ZipCode   string
	Street    string
}

// Service は顧客管理のサービス層。
// 登録・取得・更新・削除と「顧客は存在しなければならない」不変条件を担う。
type Service struct {
	repo   repository.CustomerRepository
	hasher PasswordHasher
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(repo repository.CustomerRepository, hasher PasswordHasher) *Service {
	return &Service{
		repo:   repo,
		hasher: hasher,
	}
}

// Register は検証済み入力から顧客を作成して永続化する。
// パスワードはハッシュ化してから保存し、平文は保持しない。
func (s *Service) Register(ctx context.Context, in RegisterInput) (*model.Customer, error) {
	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now()
	customer := &model.Customer{
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		CPF:          in.CPF,
		Income:       in.Income,
		Email:        in.Email,
		PasswordHash: hash,
		Address: model.Address{
			ZipCode: in.ZipCode,
			Street:  in.Street,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Create(ctx, customer); err != nil {
		return nil, err
	}

	slog.Info("customer registered",
		slog.Int64("customer_id", customer.ID),
	)

	return customer, nil
}

// FindByID は指定IDの顧客を取得する。
// 存在しない場合はnot_foundカテゴリのAPIErrorを返す。
// 顧客IDの解決が必要な全操作はこのメソッドを経由すること。
func (s *Service) FindByID(ctx context.Context, id int64) (*model.Customer, error) {
	customer, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to find customer: %w", err)
	}
	if customer == nil {
		return nil, model.NewCustomerNotFoundError(id)
	}
	return customer, nil
}

// Update はFindByIDで顧客を解決し、パッチを適用した新しい値を永続化して返す。
// 氏名・収入・住所のみ上書きし、id/cpf/email/パスワードは変更しない。
func (s *Service) Update(ctx context.Context, id int64, patch model.CustomerPatch) (*model.Customer, error) {
	customer, err := s.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	updated := model.ApplyCustomerPatch(*customer, patch)
	if err := s.repo.Update(ctx, &updated); err != nil {
		return nil, fmt.Errorf("failed to update customer: %w", err)
	}

	return &updated, nil
}

// DeleteByID はFindByIDで顧客を解決してから削除する。
// 存在しない場合はNotFoundエラーをそのまま伝播する。
func (s *Service) DeleteByID(ctx context.Context, id int64) error {
	if _, err := s.FindByID(ctx, id); err != nil {
		return err
	}

	if err := s.repo.DeleteByID(ctx, id); err != nil {
		return fmt.Errorf("failed to delete customer: %w", err)
	}

	slog.Info("customer deleted",
		slog.Int64("customer_id", id),
	)

	return nil
}
