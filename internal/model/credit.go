// Package model はドメインモデルを定義する。
package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Credit は1人の顧客に紐づく信用供与の申込/契約を表す。
// CreditCodeは発行時に生成されるグローバル一意な識別子で、
// 外部からの参照には内部の数値IDではなくこちらを使う。
type Credit struct {
	ID                   int64
	CreditCode           uuid.UUID
	CreditValue          decimal.Decimal
	DayFirstInstallment  time.Time
	NumberOfInstallments int
	Status               CreditStatus
	CustomerID           int64
	CreatedAt            time.Time
}

// CreditStatus は信用供与の審査状態を表す。
type CreditStatus string

const (
	// CreditStatusInProgress は審査中の状態。発行時の初期値。
	CreditStatusInProgress CreditStatus = "IN_PROGRESS"
	// CreditStatusApproved は承認済みの状態。
	CreditStatusApproved CreditStatus = "APPROVED"
	// CreditStatusRejected は否認された状態。
	CreditStatusRejected CreditStatus = "REJECTED"
)
