package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/hitoshi/creditman/internal/credit"
	"github.com/hitoshi/creditman/internal/model"
	"github.com/shopspring/decimal"
)

// dateLayout は初回支払日のJSON表現。
const dateLayout = "2006-01-02"

// maxInstallments は1件の信用供与で許容する分割回数の上限。
const maxInstallments = 48

// CreditServiceInterface は信用供与ハンドラーが必要とするサービスインターフェース。
type CreditServiceInterface interface {
	// Issue は信用供与を発行する。
	Issue(ctx context.Context, in credit.IssueInput) (*credit.CreditInfo, error)
	// ListByCustomer は指定顧客の信用供与一覧を発行順で返す。
	ListByCustomer(ctx context.Context, customerID int64) ([]*model.Credit, error)
	// FindByCreditCode はクレジットコードで信用供与を照会する。
	FindByCreditCode(ctx context.Context, customerID int64, creditCode uuid.UUID) (*credit.CreditInfo, error)
}

// CreditHandler は信用供与のHTTPハンドラー。
type CreditHandler struct {
	service CreditServiceInterface
}

// NewCreditHandler はCreditHandlerを生成する。
func NewCreditHandler(service CreditServiceInterface) *CreditHandler {
	return &CreditHandler{service: service}
}

// issueCreditRequest は信用供与申込リクエストのボディ。
type issueCreditRequest struct {
	CreditValue          *decimal.Decimal `json:"creditValue"`
	DayFirstInstallment  string           `json:"dayFirstOfInstallment"`
	NumberOfInstallments int              `json:"numberOfInstallments"`
	CustomerID           int64            `json:"customerId"`
}

// creditResponse は信用供与詳細のAPIレスポンス。所有顧客の表示情報を含む。
type creditResponse struct {
	CreditCode           string          `json:"creditCode"`
	CreditValue          decimal.Decimal `json:"creditValue"`
	NumberOfInstallments int             `json:"numberOfInstallments"`
	Status               string          `json:"status"`
	EmailCustomer        string          `json:"emailCustomer"`
	IncomeCustomer       decimal.Decimal `json:"incomeCustomer"`
}

// creditListItemResponse は信用供与一覧のAPIレスポンスの1要素。
type creditListItemResponse struct {
	CreditCode           string          `json:"creditCode"`
	CreditValue          decimal.Decimal `json:"creditValue"`
	NumberOfInstallments int             `json:"numberOfInstallments"`
}

// Issue は信用供与申込を処理する。
// POST /api/credits
func (h *CreditHandler) Issue(w http.ResponseWriter, r *http.Request) {
	var req issueCreditRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, newValidationError("Malformed request body"))
		return
	}

	dayFirstInstallment, apiErr := validateIssueCreditRequest(&req)
	if apiErr != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, apiErr)
		return
	}

	info, err := h.service.Issue(r.Context(), credit.IssueInput{
		CreditValue:          *req.CreditValue,
		DayFirstInstallment:  dayFirstInstallment,
		NumberOfInstallments: req.NumberOfInstallments,
		CustomerID:           req.CustomerID,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toCreditResponse(info))
}

// List は顧客の信用供与一覧を取得する。
// GET /api/credits?customerId=N
func (h *CreditHandler) List(w http.ResponseWriter, r *http.Request) {
	customerID, apiErr := parseCustomerIDQuery(r)
	if apiErr != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, apiErr)
		return
	}

	credits, err := h.service.ListByCustomer(r.Context(), customerID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	// 空の場合もJSON配列で返す
	items := make([]creditListItemResponse, 0, len(credits))
	for _, c := range credits {
		items = append(items, creditListItemResponse{
			CreditCode:           c.CreditCode.String(),
			CreditValue:          c.CreditValue,
			NumberOfInstallments: c.NumberOfInstallments,
		})
	}

	writeJSON(w, http.StatusOK, items)
}

// Get はクレジットコードで信用供与詳細を取得する。
// GET /api/credits/:creditCode?customerId=N
func (h *CreditHandler) Get(w http.ResponseWriter, r *http.Request) {
	creditCode, err := uuid.Parse(chi.URLParam(r, "creditCode"))
	if err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, newValidationError("Credit code must be a valid UUID"))
		return
	}

	customerID, apiErr := parseCustomerIDQuery(r)
	if apiErr != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, apiErr)
		return
	}

	info, svcErr := h.service.FindByCreditCode(r.Context(), customerID, creditCode)
	if svcErr != nil {
		handleServiceError(w, svcErr)
		return
	}

	writeJSON(w, http.StatusOK, toCreditResponse(info))
}

// --- ヘルパー関数 ---

// parseCustomerIDQuery はクエリパラメータから顧客IDを取り出す。
func parseCustomerIDQuery(r *http.Request) (int64, *model.APIError) {
	raw := r.URL.Query().Get("customerId")
	if raw == "" {
		return 0, newValidationError("Query parameter customerId is required")
	}
	customerID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || customerID <= 0 {
		return 0, newValidationError("Query parameter customerId must be a positive integer")
	}
	return customerID, nil
}

// validateIssueCreditRequest は申込リクエストの形式を検証し、
// 解析済みの初回支払日を返す。
// 3ヶ月上限のドメインルールはサービス層が担い、ここでは形式と
// 「未来の日付であること」のみを確認する。
func validateIssueCreditRequest(req *issueCreditRequest) (time.Time, *model.APIError) {
	if req.CreditValue == nil || !req.CreditValue.IsPositive() {
		return time.Time{}, newValidationError("Invalid input: creditValue must be greater than zero")
	}
	if req.NumberOfInstallments < 1 || req.NumberOfInstallments > maxInstallments {
		return time.Time{}, newValidationError("Invalid input: numberOfInstallments must be between 1 and 48")
	}
	if req.CustomerID <= 0 {
		return time.Time{}, newValidationError("Invalid input: customerId must be a positive integer")
	}

	day, err := time.Parse(dateLayout, req.DayFirstInstallment)
	if err != nil {
		return time.Time{}, newValidationError("Invalid input: dayFirstOfInstallment must be a date in YYYY-MM-DD format")
	}
	if !day.After(time.Now()) {
		return time.Time{}, newValidationError("Invalid input: dayFirstOfInstallment must be a future date")
	}

	return day, nil
}

// toCreditResponse はcredit.CreditInfoからAPIレスポンスに変換する。
func toCreditResponse(info *credit.CreditInfo) creditResponse {
	return creditResponse{
		CreditCode:           info.Credit.CreditCode.String(),
		CreditValue:          info.Credit.CreditValue,
		NumberOfInstallments: info.Credit.NumberOfInstallments,
		Status:               string(info.Credit.Status),
		EmailCustomer:        info.CustomerEmail,
		IncomeCustomer:       info.CustomerIncome,
	}
}
