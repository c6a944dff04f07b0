package model

import (
	"testing"

	"github.com/shopspring/decimal"
)

// ApplyCustomerPatchが可変フィールドのみを上書きすることを検証
func TestApplyCustomerPatch_OverwritesMutableFields(t *testing.T) {
	original := Customer{
		ID:           1,
		FirstName:    "Cami",
		LastName:     "Cavalcante",
		CPF:          "28475934625",
		Income:       decimal.NewFromInt(1000),
		Email:        "camila@email.com",
		PasswordHash: "$2a$10$hash",
		Address: Address{
			ZipCode: "000000",
			Street:  "Rua da Cami, 123",
		},
	}

	patch := CustomerPatch{
		FirstName: "Camila",
		LastName:  "Souza",
		Income:    decimal.NewFromInt(2500),
		ZipCode:   "111111",
		Street:    "Rua Nova, 45",
	}

	updated := ApplyCustomerPatch(original, patch)

	if updated.FirstName != "Camila" {
		t.Errorf("FirstName = %q, want %q", updated.FirstName, "Camila")
	}
	if updated.LastName != "Souza" {
		t.Errorf("LastName = %q, want %q", updated.LastName, "Souza")
	}
	if !updated.Income.Equal(decimal.NewFromInt(2500)) {
		t.Errorf("Income = %s, want %s", updated.Income, "2500")
	}
	if updated.Address.ZipCode != "111111" {
		t.Errorf("ZipCode = %q, want %q", updated.Address.ZipCode, "111111")
	}
	if updated.Address.Street != "Rua Nova, 45" {
		t.Errorf("Street = %q, want %q", updated.Address.Street, "Rua Nova, 45")
	}
}

// ApplyCustomerPatchが不変フィールドを変更しないことを検証
func TestApplyCustomerPatch_PreservesImmutableFields(t *testing.T) {
	original := Customer{
		ID:           42,
		FirstName:    "Cami",
		CPF:          "28475934625",
		Income:       decimal.NewFromInt(1000),
		Email:        "camila@email.com",
		PasswordHash: "$2a$10$hash",
	}

	updated := ApplyCustomerPatch(original, CustomerPatch{FirstName: "Other"})

	if updated.ID != 42 {
		t.Errorf("ID = %d, want %d", updated.ID, 42)
	}
	if updated.CPF != "28475934625" {
		t.Errorf("CPF = %q, want %q", updated.CPF, "28475934625")
	}
	if updated.Email != "camila@email.com" {
		t.Errorf("Email = %q, want %q", updated.Email, "camila@email.com")
	}
	if updated.PasswordHash != "$2a$10$hash" {
		t.Errorf("PasswordHash = %q, want %q", updated.PasswordHash, "$2a$10$hash")
	}
}

// ApplyCustomerPatchが引数のCustomerを変更しない純粋関数であることを検証
func TestApplyCustomerPatch_DoesNotMutateArgument(t *testing.T) {
	original := Customer{
		ID:        1,
		FirstName: "Cami",
		Address:   Address{ZipCode: "000000", Street: "Rua da Cami, 123"},
	}

	_ = ApplyCustomerPatch(original, CustomerPatch{
		FirstName: "Changed",
		ZipCode:   "999999",
		Street:    "Changed St",
	})

	if original.FirstName != "Cami" {
		t.Errorf("original.FirstName = %q, want %q", original.FirstName, "Cami")
	}
	if original.Address.ZipCode != "000000" {
		t.Errorf("original.Address.ZipCode = %q, want %q", original.Address.ZipCode, "000000")
	}
}
