// Package credit は信用供与の発行・照会のドメインロジックを提供する。
package credit

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/hitoshi/creditman/internal/model"
	"github.com/hitoshi/creditman/internal/repository"
	"github.com/shopspring/decimal"
)

// installmentWindowMonths は発行時点から初回支払日まで許容する月数の上限。
const installmentWindowMonths = 3

// CustomerFinder は顧客解決に必要な最小インターフェース。
// customer.Serviceの部分集合として定義する。
type CustomerFinder interface {
	FindByID(ctx context.Context, id int64) (*model.Customer, error)
}

// MetricsRecorder は発行結果のメトリクス記録インターフェース。nil許容。
type MetricsRecorder interface {
	RecordCreditIssued()
	RecordIssuanceRejected(reason string)
}

// IssueInput は信用供与発行の入力。
// 値の非null・分割回数の範囲チェックは境界層で実施済みであることを前提とする。
type IssueInput struct {
	CreditValue          decimal.Decimal
	DayFirstInstallment  time.Time
	NumberOfInstallments int
	CustomerID           int64
}

// CreditInfo は信用供与と所有顧客の表示用情報を結合したドメインオブジェクト。
type CreditInfo struct {
	Credit         model.Credit
	CustomerEmail  string
	CustomerIncome decimal.Decimal
}

// Service は信用供与のサービス層。
// 初回支払日の許容範囲ルールと所有者チェックを担う。
type Service struct {
	creditRepo repository.CreditRepository
	customers  CustomerFinder
	metrics    MetricsRecorder

	// now は現在時刻の取得関数。テストで差し替える。
	now func() time.Time
}

// NewService はServiceの新しいインスタンスを生成する。
// metricsはnilでもよい。
func NewService(creditRepo repository.CreditRepository, customers CustomerFinder, metrics MetricsRecorder) *Service {
	return &Service{
		creditRepo: creditRepo,
		customers:  customers,
		metrics:    metrics,
		now:        time.Now,
	}
}

// Issue は信用供与を発行する。
//
// 検証順序は固定:
//  1. 初回支払日が現在日付から3ヶ月以内であること（上限チェック。
//     過去日付の拒否は境界層のバリデーションが担う）。
//  2. 顧客をCustomerFinder経由で解決する。未検出はNotFoundをそのまま伝播。
//
// 検証を通過した場合のみ、新しいクレジットコードとIN_PROGRESSステータスで
// 永続化する。検証失敗時は一切永続化しない。
func (s *Service) Issue(ctx context.Context, in IssueInput) (*CreditInfo, error) {
	deadline := s.now().AddDate(0, installmentWindowMonths, 0)
	if in.DayFirstInstallment.After(deadline) {
		if s.metrics != nil {
			s.metrics.RecordIssuanceRejected("installment_window")
		}
		return nil, model.NewInstallmentWindowError()
	}

	customer, err := s.customers.FindByID(ctx, in.CustomerID)
	if err != nil {
		if s.metrics != nil {
			s.metrics.RecordIssuanceRejected("customer_not_found")
		}
		return nil, err
	}

	credit := model.Credit{
		CreditCode:           uuid.New(),
		CreditValue:          in.CreditValue,
		DayFirstInstallment:  in.DayFirstInstallment,
		NumberOfInstallments: in.NumberOfInstallments,
		Status:               model.CreditStatusInProgress,
		CustomerID:           customer.ID,
		CreatedAt:            s.now(),
	}

	if err := s.creditRepo.Create(ctx, &credit); err != nil {
		return nil, fmt.Errorf("failed to create credit: %w", err)
	}

	if s.metrics != nil {
		s.metrics.RecordCreditIssued()
	}
	slog.Info("credit issued",
		slog.String("credit_code", credit.CreditCode.String()),
		slog.Int64("customer_id", customer.ID),
	)

	return &CreditInfo{
		Credit:         credit,
		CustomerEmail:  customer.Email,
		CustomerIncome: customer.Income,
	}, nil
}

// ListByCustomer は指定顧客の信用供与一覧を発行順で返す。
// 顧客の存在チェックは行わず、未知のIDには空のリストを返す。
func (s *Service) ListByCustomer(ctx context.Context, customerID int64) ([]*model.Credit, error) {
	credits, err := s.creditRepo.ListByCustomerID(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list credits: %w", err)
	}
	return credits, nil
}

// FindByCreditCode はクレジットコードで信用供与を照会する。
//
//  1. コードが存在しない場合はNotFound（"Creditcode {code} not found"）。
//  2. 存在するが所有顧客のIDが一致しない場合はinvalid_argument
//     （"Contact admin"）。存在と非所有を呼び出し側が区別できるようにする。
func (s *Service) FindByCreditCode(ctx context.Context, customerID int64, creditCode uuid.UUID) (*CreditInfo, error) {
	credit, err := s.creditRepo.FindByCreditCode(ctx, creditCode)
	if err != nil {
		return nil, fmt.Errorf("failed to find credit: %w", err)
	}
	if credit == nil {
		return nil, model.NewCreditNotFoundError(creditCode)
	}
	if credit.CustomerID != customerID {
		slog.Warn("credit owner mismatch",
			slog.String("credit_code", creditCode.String()),
			slog.Int64("requested_customer_id", customerID),
		)
		return nil, model.NewCreditOwnerMismatchError()
	}

	customer, err := s.customers.FindByID(ctx, credit.CustomerID)
	if err != nil {
		return nil, err
	}

	return &CreditInfo{
		Credit:         *credit,
		CustomerEmail:  customer.Email,
		CustomerIncome: customer.Income,
	}, nil
}
