// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/hitoshi/creditman/internal/model"
)

// CustomerRepository は顧客データの永続化インターフェース。
// 未検出は常にnilの結果として表現し、エラーにはしない。
type CustomerRepository interface {
	// Create は顧客を作成し、ストアが採番したIDをcustomer.IDに設定する。
	// email/cpfのユニーク制約違反は*model.APIError（validation）として返す。
	Create(ctx context.Context, customer *model.Customer) error

	// FindByID は指定IDの顧客を取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id int64) (*model.Customer, error)

	// FindByEmail はメールアドレスで顧客を検索する。見つからない場合はnilを返す。
	FindByEmail(ctx context.Context, email string) (*model.Customer, error)

	// Update は顧客の可変フィールド（氏名・収入・住所）を更新する。
	Update(ctx context.Context, customer *model.Customer) error

	// DeleteByID は指定IDの顧客を削除する。
	// 関連するcredits、sessionsはCASCADE削除される。
	DeleteByID(ctx context.Context, id int64) error
}

// CreditRepository は信用供与データの永続化インターフェース。
type CreditRepository interface {
	// Create は信用供与を作成し、ストアが採番したIDをcredit.IDに設定する。
	Create(ctx context.Context, credit *model.Credit) error

	// FindByCreditCode はクレジットコードで信用供与を検索する。
	// 見つからない場合はnilを返す。
	FindByCreditCode(ctx context.Context, creditCode uuid.UUID) (*model.Credit, error)

	// ListByCustomerID は指定顧客の信用供与一覧を発行順（挿入順）で返す。
	// 1件もない場合は空のスライスを返す。顧客の存在チェックは行わない。
	ListByCustomerID(ctx context.Context, customerID int64) ([]*model.Credit, error)
}

// SessionRepository はセッションデータの永続化インターフェース。
type SessionRepository interface {
	// Create はセッションを作成する。
	Create(ctx context.Context, session *model.Session) error

	// FindByID は指定IDのセッションを取得する。
	// 期限切れまたは未検出の場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Session, error)

	// DeleteByID は指定IDのセッションを削除する。
	DeleteByID(ctx context.Context, id string) error

	// DeleteByCustomerID は指定顧客の全セッションを削除する。
	DeleteByCustomerID(ctx context.Context, customerID int64) error

	// DeleteExpired は期限切れセッションを削除し、削除件数を返す。
	DeleteExpired(ctx context.Context) (int64, error)
}
