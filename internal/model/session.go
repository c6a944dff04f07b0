// Package model はドメインモデルを定義する。
package model

import "time"

// Session は顧客のログインセッションを表す。
type Session struct {
	ID         string
	CustomerID int64
	ExpiresAt  time.Time
	CreatedAt  time.Time
}
