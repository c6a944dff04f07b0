package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/hitoshi/creditman/internal/model"
)

// PostgresCreditRepo はPostgreSQLを使用した信用供与リポジトリ。
type PostgresCreditRepo struct {
	db *sql.DB
}

// NewPostgresCreditRepo はPostgresCreditRepoを生成する。
func NewPostgresCreditRepo(db *sql.DB) *PostgresCreditRepo {
	return &PostgresCreditRepo{db: db}
}

// Create は信用供与を作成し、採番されたIDをcredit.IDに設定する。
// credit_codeのユニーク制約はスキーマで保証する（生成側でも衝突しない前提）。
func (r *PostgresCreditRepo) Create(ctx context.Context, credit *model.Credit) error {
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO credits (credit_code, credit_value, day_first_installment, number_of_installments, status, customer_id, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id`,
		credit.CreditCode, credit.CreditValue, credit.DayFirstInstallment,
		credit.NumberOfInstallments, credit.Status, credit.CustomerID,
		credit.CreatedAt,
	).Scan(&credit.ID)

	if err != nil {
		return fmt.Errorf("failed to insert credit: %w", err)
	}

	return nil
}

// FindByCreditCode はクレジットコードで信用供与を検索する。見つからない場合はnilを返す。
func (r *PostgresCreditRepo) FindByCreditCode(ctx context.Context, creditCode uuid.UUID) (*model.Credit, error) {
	credit := &model.Credit{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, credit_code, credit_value, day_first_installment, number_of_installments, status, customer_id, created_at
		 FROM credits WHERE credit_code = $1`,
		creditCode,
	).Scan(
		&credit.ID, &credit.CreditCode, &credit.CreditValue,
		&credit.DayFirstInstallment, &credit.NumberOfInstallments,
		&credit.Status, &credit.CustomerID, &credit.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find credit by credit code: %w", err)
	}

	return credit, nil
}

// ListByCustomerID は指定顧客の信用供与一覧を発行順（id昇順 = 挿入順）で返す。
func (r *PostgresCreditRepo) ListByCustomerID(ctx context.Context, customerID int64) ([]*model.Credit, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, credit_code, credit_value, day_first_installment, number_of_installments, status, customer_id, created_at
		 FROM credits WHERE customer_id = $1 ORDER BY id ASC`,
		customerID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list credits by customer ID: %w", err)
	}
	defer rows.Close()

	var credits []*model.Credit
	for rows.Next() {
		credit := &model.Credit{}
		if err := rows.Scan(
			&credit.ID, &credit.CreditCode, &credit.CreditValue,
			&credit.DayFirstInstallment, &credit.NumberOfInstallments,
			&credit.Status, &credit.CustomerID, &credit.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan credit row: %w", err)
		}
		credits = append(credits, credit)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate credit rows: %w", err)
	}
	return credits, nil
}

// compile-time interface check
var _ CreditRepository = (*PostgresCreditRepo)(nil)
