// Package model はドメインモデルを定義する。
package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Address は顧客が所有する住所の値オブジェクト。
// 独立したIDを持たず、ライフサイクルは所有するCustomerに従属する。
type Address struct {
	ZipCode string
	Street  string
}

// Customer は信用供与の申込主体となる顧客を表す。
// IDはストアが採番し、一度割り当てられたら変更されない。
// PasswordHashはbcryptハッシュのみを保持し、平文パスワードは保存しない。
type Customer struct {
	ID           int64
	FirstName    string
	LastName     string
	CPF          string
	Income       decimal.Decimal
	Email        string
	PasswordHash string
	Address      Address
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// CustomerPatch は更新操作で書き換え可能なフィールドのみを持つ。
// ID、CPF、Email、パスワードは登録後に変更できない。
type CustomerPatch struct {
	FirstName string
	LastName  string
	Income    decimal.Decimal
	ZipCode   string
	Street    string
}

// ApplyCustomerPatch はパッチを適用した新しいCustomer値を返す。
// 引数のcustomerは変更せず、可変フィールドのみ上書きする。
func ApplyCustomerPatch(customer Customer, patch CustomerPatch) Customer {
	customer.FirstName = patch.FirstName
	customer.LastName = patch.LastName
	customer.Income = patch.Income
	customer.Address.ZipCode = patch.ZipCode
	customer.Address.Street = patch.Street
	return customer
}
