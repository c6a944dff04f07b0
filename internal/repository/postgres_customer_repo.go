package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/hitoshi/creditman/internal/model"
	"github.com/lib/pq"
)

// uniqueViolation はPostgreSQLのunique_violationエラーコード。
const uniqueViolation = "23505"

// PostgresCustomerRepo はPostgreSQLを使用した顧客リポジトリ。
type PostgresCustomerRepo struct {
	db *sql.DB
}

// NewPostgresCustomerRepo はPostgresCustomerRepoを生成する。
func NewPostgresCustomerRepo(db *sql.DB) *PostgresCustomerRepo {
	return &PostgresCustomerRepo{db: db}
}

// Create は顧客を作成し、採番されたIDをcustomer.IDに設定する。
// email/cpfのユニーク制約違反はvalidationカテゴリのAPIErrorに変換する。
func (r *PostgresCustomerRepo) Create(ctx context.Context, customer *model.Customer) error {
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO customers (first_name, last_name, cpf, income, email, password_hash, zip_code, street, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 RETURNING id`,
		customer.FirstName, customer.LastName, customer.CPF, customer.Income,
		customer.Email, customer.PasswordHash,
		customer.Address.ZipCode, customer.Address.Street,
		customer.CreatedAt, customer.UpdatedAt,
	).Scan(&customer.ID)

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return model.NewDuplicateCustomerError(duplicateField(pqErr.Constraint))
		}
		return fmt.Errorf("failed to insert customer: %w", err)
	}

	return nil
}

// duplicateField はユニーク制約名から重複したフィールド名を判定する。
func duplicateField(constraint string) string {
	if strings.Contains(constraint, "cpf") {
		return "cpf"
	}
	return "email"
}

// FindByID は指定IDの顧客を取得する。見つからない場合はnilを返す。
func (r *PostgresCustomerRepo) FindByID(ctx context.Context, id int64) (*model.Customer, error) {
	customer := &model.Customer{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, first_name, last_name, cpf, income, email, password_hash, zip_code, street, created_at, updated_at
		 FROM customers WHERE id = $1`,
		id,
	).Scan(
		&customer.ID, &customer.FirstName, &customer.LastName, &customer.CPF,
		&customer.Income, &customer.Email, &customer.PasswordHash,
		&customer.Address.ZipCode, &customer.Address.Street,
		&customer.CreatedAt, &customer.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find customer by ID: %w", err)
	}

	return customer, nil
}

// FindByEmail はメールアドレスで顧客を検索する。見つからない場合はnilを返す。
func (r *PostgresCustomerRepo) FindByEmail(ctx context.Context, email string) (*model.Customer, error) {
	customer := &model.Customer{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, first_name, last_name, cpf, income, email, password_hash, zip_code, street, created_at, updated_at
		 FROM customers WHERE email = $1`,
		email,
	).Scan(
		&customer.ID, &customer.FirstName, &customer.LastName, &customer.CPF,
		&customer.Income, &customer.Email, &customer.PasswordHash,
		&customer.Address.ZipCode, &customer.Address.Street,
		&customer.CreatedAt, &customer.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find customer by email: %w", err)
	}

	return customer, nil
}

// Update は顧客の可変フィールド（氏名・収入・住所）を更新する。
// cpf、email、password_hashはこの経路では書き換えない。
func (r *PostgresCustomerRepo) Update(ctx context.Context, customer *model.Customer) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE customers
		 SET first_name = $2, last_name = $3, income = $4, zip_code = $5, street = $6, updated_at = NOW()
		 WHERE id = $1`,
		customer.ID, customer.FirstName, customer.LastName, customer.Income,
		customer.Address.ZipCode, customer.Address.Street,
	)
	if err != nil {
		return fmt.Errorf("failed to update customer: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("customer not found: %d", customer.ID)
	}
	return nil
}

// DeleteByID は指定IDの顧客を削除する。
// 関連するcredits、sessionsはCASCADE削除される。
func (r *PostgresCustomerRepo) DeleteByID(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM customers WHERE id = $1`,
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to delete customer: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("customer not found: %d", id)
	}
	return nil
}

// compile-time interface check
var _ CustomerRepository = (*PostgresCustomerRepo)(nil)
