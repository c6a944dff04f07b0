package model

import (
	"strings"
	"testing"

	"github.com/google/uuid"
)

// 顧客未検出エラーのメッセージに要求されたIDが含まれることを検証
func TestNewCustomerNotFoundError_MessageContainsID(t *testing.T) {
	err := NewCustomerNotFoundError(12345)

	if err.Code != ErrCodeCustomerNotFound {
		t.Errorf("Code = %q, want %q", err.Code, ErrCodeCustomerNotFound)
	}
	if err.Category != CategoryNotFound {
		t.Errorf("Category = %q, want %q", err.Category, CategoryNotFound)
	}
	if err.Message != "Id 12345 not found" {
		t.Errorf("Message = %q, want %q", err.Message, "Id 12345 not found")
	}
}

// 信用供与未検出エラーのメッセージにクレジットコードが含まれることを検証
func TestNewCreditNotFoundError_MessageContainsCode(t *testing.T) {
	code := uuid.New()
	err := NewCreditNotFoundError(code)

	if err.Category != CategoryNotFound {
		t.Errorf("Category = %q, want %q", err.Category, CategoryNotFound)
	}
	if !strings.Contains(err.Message, code.String()) {
		t.Errorf("Message %q should contain credit code %q", err.Message, code)
	}
}

// 分割払い期限エラーがbusinessカテゴリであることを検証
func TestNewInstallmentWindowError_IsBusinessCategory(t *testing.T) {
	err := NewInstallmentWindowError()

	if err.Category != CategoryBusiness {
		t.Errorf("Category = %q, want %q", err.Category, CategoryBusiness)
	}
	want := "Date of first installment must be up to 3 months from current date"
	if err.Message != want {
		t.Errorf("Message = %q, want %q", err.Message, want)
	}
}

// 所有者不一致エラーがnot_foundと区別されることを検証
func TestNewCreditOwnerMismatchError_IsInvalidArgument(t *testing.T) {
	err := NewCreditOwnerMismatchError()

	if err.Category != CategoryInvalidArgument {
		t.Errorf("Category = %q, want %q", err.Category, CategoryInvalidArgument)
	}
	if err.Category == CategoryNotFound {
		t.Error("owner mismatch must not be classified as not_found")
	}
	if err.Message != "Contact admin" {
		t.Errorf("Message = %q, want %q", err.Message, "Contact admin")
	}
}

// APIErrorがerrorインターフェースを満たし、コードとメッセージを含むことを検証
func TestAPIError_ErrorString(t *testing.T) {
	err := NewCustomerNotFoundError(7)

	msg := err.Error()
	if !strings.Contains(msg, ErrCodeCustomerNotFound) {
		t.Errorf("Error() = %q, should contain code %q", msg, ErrCodeCustomerNotFound)
	}
	if !strings.Contains(msg, "Id 7 not found") {
		t.Errorf("Error() = %q, should contain message", msg)
	}
}
