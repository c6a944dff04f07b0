// Package model はドメインモデルを定義する。
package model

import (
	"fmt"

	"github.com/google/uuid"
)

// APIError は統一エラーフォーマットを表す。
// Categoryはエラーの分類で、境界層がHTTPステータスへのマッピングに使う。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: not_found, business, invalid_argument, validation, auth, system
	Action   string // 呼び出し側への対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// エラーカテゴリ
const (
	// CategoryNotFound は参照先のエンティティが存在しないことを表す。
	// 呼び出し側がIDを確認すれば回復可能。自動リトライはしない。
	CategoryNotFound = "not_found"
	// CategoryBusiness はドメインルール違反を表す。入力の修正が必要。
	CategoryBusiness = "business"
	// CategoryInvalidArgument は通常の利用では発生しない構造的な不整合を表す。
	// 「存在しない」とは区別して呼び出し側・運用者に通知する。
	CategoryInvalidArgument = "invalid_argument"
	// CategoryValidation はリクエスト内容の形式エラーを表す。
	CategoryValidation = "validation"
	// CategoryAuth は認証エラーを表す。
	CategoryAuth = "auth"
	// CategorySystem は内部エラーを表す。
	CategorySystem = "system"
)

// 定義済みエラーコード
const (
	ErrCodeCustomerNotFound    = "CUSTOMER_NOT_FOUND"
	ErrCodeCreditNotFound      = "CREDIT_NOT_FOUND"
	ErrCodeInstallmentWindow   = "INSTALLMENT_WINDOW_EXCEEDED"
	ErrCodeCreditOwnerMismatch = "CREDIT_OWNER_MISMATCH"
	ErrCodeDuplicateCustomer   = "DUPLICATE_CUSTOMER"
	ErrCodeInvalidCredentials  = "INVALID_CREDENTIALS"
)

// NewCustomerNotFoundError は顧客未検出エラーを生成する。
// メッセージには要求されたIDをそのまま含める。
func NewCustomerNotFoundError(id int64) *APIError {
	return &APIError{
		Code:     ErrCodeCustomerNotFound,
		Message:  fmt.Sprintf("Id %d not found", id),
		Category: CategoryNotFound,
		Action:   "Check the customer id and try again.",
	}
}

// NewCreditNotFoundError は信用供与未検出エラーを生成する。
func NewCreditNotFoundError(creditCode uuid.UUID) *APIError {
	return &APIError{
		Code:     ErrCodeCreditNotFound,
		Message:  fmt.Sprintf("Creditcode %s not found", creditCode),
		Category: CategoryNotFound,
		Action:   "Check the credit code and try again.",
	}
}

// NewInstallmentWindowError は初回支払日が3ヶ月の許容範囲を超えた場合のエラーを生成する。
// 上限チェックであり、過去日付のチェックではない点に注意。
func NewInstallmentWindowError() *APIError {
	return &APIError{
		Code:     ErrCodeInstallmentWindow,
		Message:  "Date of first installment must be up to 3 months from current date",
		Category: CategoryBusiness,
		Action:   "Choose a first installment date within 3 months.",
	}
}

// NewCreditOwnerMismatchError は信用供与の所有者と要求された顧客IDが
// 一致しない場合のエラーを生成する。存在するが所有していないケースであり、
// 未検出とは区別して扱う。
func NewCreditOwnerMismatchError() *APIError {
	return &APIError{
		Code:     ErrCodeCreditOwnerMismatch,
		Message:  "Contact admin",
		Category: CategoryInvalidArgument,
		Action:   "Contact admin",
	}
}

// NewDuplicateCustomerError はユニーク制約（email, cpf）違反時のエラーを生成する。
func NewDuplicateCustomerError(field string) *APIError {
	return &APIError{
		Code:     ErrCodeDuplicateCustomer,
		Message:  fmt.Sprintf("%s is already registered", field),
		Category: CategoryValidation,
		Action:   "Use a different " + field + " or log in with the existing account.",
	}
}

// NewInvalidCredentialsError は認証失敗エラーを生成する。
// メールアドレスの存在有無を漏らさないよう、原因は区別しない。
func NewInvalidCredentialsError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidCredentials,
		Message:  "Invalid email or password",
		Category: CategoryAuth,
		Action:   "Check your credentials and try again.",
	}
}
