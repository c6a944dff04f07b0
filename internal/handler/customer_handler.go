package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/creditman/internal/customer"
	"github.com/hitoshi/creditman/internal/model"
	"github.com/shopspring/decimal"
)

// CustomerServiceInterface は顧客ハンドラーが必要とするサービスインターフェース。
type CustomerServiceInterface interface {
	// Register は検証済み入力から顧客を登録する。
	Register(ctx context.Context, in customer.RegisterInput) (*model.Customer, error)
	// FindByID は指定IDの顧客を取得する。
	FindByID(ctx context.Context, id int64) (*model.Customer, error)
	// Update はパッチを適用した顧客を永続化して返す。
	Update(ctx context.Context, id int64, patch model.CustomerPatch) (*model.Customer, error)
	// DeleteByID は指定IDの顧客を削除する。
	DeleteByID(ctx context.Context, id int64) error
}

// CustomerHandler は顧客管理のHTTPハンドラー。
type CustomerHandler struct {
	service CustomerServiceInterface
}

// NewCustomerHandler はCustomerHandlerを生成する。
func NewCustomerHandler(service CustomerServiceInterface) *CustomerHandler {
	return &CustomerHandler{service: service}
}

// createCustomerRequest は顧客登録リクエストのボディ。
type createCustomerRequest struct {
	FirstName string           `json:"firstName"`
	LastName  string           `json:"lastName"`
	CPF       string           `json:"cpf"`
	Income    *decimal.Decimal `json:"income"`
	Email     string           `json:"email"`
	Password  string           `json:"password"`
	ZipCode   string           `json:"zipCode"`
	Street    string           `json:"street"`
}

// patchCustomerRequest は顧客更新リクエストのボディ。
// 氏名・収入・住所のみを受け付ける。
type patchCustomerRequest struct {
	FirstName string           `json:"firstName"`
	LastName  string           `json:"lastName"`
	Income    *decimal.Decimal `json:"income"`
	ZipCode   string           `json:"zipCode"`
	Street    string           `json:"street"`
}

// customerResponse は顧客情報のAPIレスポンス。パスワードは含めない。
type customerResponse struct {
	ID        int64           `json:"id"`
	FirstName string          `json:"firstName"`
	LastName  string          `json:"lastName"`
	CPF       string          `json:"cpf"`
	Income    decimal.Decimal `json:"income"`
	Email     string          `json:"email"`
	ZipCode   string          `json:"zipCode"`
	Street    string          `json:"street"`
}

// Create は顧客登録を処理する。
// POST /api/customers
func (h *CustomerHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createCustomerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, newValidationError("Malformed request body"))
		return
	}

	if apiErr := validateCreateCustomerRequest(&req); apiErr != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, apiErr)
		return
	}

	created, err := h.service.Register(r.Context(), customer.RegisterInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		CPF:       req.CPF,
		Income:    *req.Income,
		Email:     req.Email,
		Password:  req.Password,
		ZipCode:   req.ZipCode,
		Street:    req.Street,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toCustomerResponse(created))
}

// Get は顧客詳細を取得する。
// GET /api/customers/:id
func (h *CustomerHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, apiErr := parseCustomerID(r)
	if apiErr != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, apiErr)
		return
	}

	found, err := h.service.FindByID(r.Context(), id)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toCustomerResponse(found))
}

// Patch は顧客の可変フィールドを更新する。
// PATCH /api/customers/:id
func (h *CustomerHandler) Patch(w http.ResponseWriter, r *http.Request) {
	id, apiErr := parseCustomerID(r)
	if apiErr != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, apiErr)
		return
	}

	var req patchCustomerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, newValidationError("Malformed request body"))
		return
	}

	if apiErr := validatePatchCustomerRequest(&req); apiErr != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, apiErr)
		return
	}

	updated, err := h.service.Update(r.Context(), id, model.CustomerPatch{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Income:    *req.Income,
		ZipCode:   req.ZipCode,
		Street:    req.Street,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toCustomerResponse(updated))
}

// Delete は顧客を削除する。
// DELETE /api/customers/:id
func (h *CustomerHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, apiErr := parseCustomerID(r)
	if apiErr != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, apiErr)
		return
	}

	if err := h.service.DeleteByID(r.Context(), id); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// --- ヘルパー関数 ---

// parseCustomerID はURLパスから顧客IDを取り出す。
func parseCustomerID(r *http.Request) (int64, *model.APIError) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, newValidationError("Customer id must be a positive integer")
	}
	return id, nil
}

// toCustomerResponse はmodel.CustomerからAPIレスポンスに変換する。
func toCustomerResponse(c *model.Customer) customerResponse {
	return customerResponse{
		ID:        c.ID,
		FirstName: c.FirstName,
		LastName:  c.LastName,
		CPF:       c.CPF,
		Income:    c.Income,
		Email:     c.Email,
		ZipCode:   c.Address.ZipCode,
		Street:    c.Address.Street,
	}
}

// validateCreateCustomerRequest は登録リクエストの形式を検証する。
func validateCreateCustomerRequest(req *createCustomerRequest) *model.APIError {
	switch {
	case req.FirstName == "":
		return newValidationError("Invalid input: firstName must not be empty")
	case req.LastName == "":
		return newValidationError("Invalid input: lastName must not be empty")
	case req.Email == "" || !strings.Contains(req.Email, "@"):
		return newValidationError("Invalid input: email must be a valid address")
	case req.Password == "":
		return newValidationError("Invalid input: password must not be empty")
	case req.ZipCode == "":
		return newValidationError("Invalid input: zipCode must not be empty")
	case req.Street == "":
		return newValidationError("Invalid input: street must not be empty")
	case req.Income == nil:
		return newValidationError("Invalid input: income must not be null")
	case req.Income.IsNegative():
		return newValidationError("Invalid input: income must not be negative")
	}
	if !isValidCPF(req.CPF) {
		return newValidationError("Invalid input: cpf is not a valid CPF")
	}
	return nil
}

// validatePatchCustomerRequest は更新リクエストの形式を検証する。
func validatePatchCustomerRequest(req *patchCustomerRequest) *model.APIError {
	switch {
	case req.FirstName == "":
		return newValidationError("Invalid input: firstName must not be empty")
	case req.LastName == "":
		return newValidationError("Invalid input: lastName must not be empty")
	case req.ZipCode == "":
		return newValidationError("Invalid input: zipCode must not be empty")
	case req.Street == "":
		return newValidationError("Invalid input: street must not be empty")
	case req.Income == nil:
		return newValidationError("Invalid input: income must not be null")
	case req.Income.IsNegative():
		return newValidationError("Invalid input: income must not be negative")
	}
	return nil
}

// isValidCPF はブラジルの個人納税者番号（CPF）のチェックディジットを検証する。
// 数字のみの11桁を受け付け、全桁同一の既知の無効値は拒否する。
func isValidCPF(cpf string) bool {
	if len(cpf) != 11 {
		return false
	}

	digits := make([]int, 11)
	allSame := true
	for i, r := range cpf {
		if r < '0' || r > '9' {
			return false
		}
		digits[i] = int(r - '0')
		if digits[i] != digits[0] {
			allSame = false
		}
	}
	if allSame {
		return false
	}

	// 第1チェックディジット
	sum := 0
	for i := 0; i < 9; i++ {
		sum += digits[i] * (10 - i)
	}
	check := (sum * 10) % 11
	if check == 10 {
		check = 0
	}
	if check != digits[9] {
		return false
	}

	// 第2チェックディジット
	sum = 0
	for i := 0; i < 10; i++ {
		sum += digits[i] * (11 - i)
	}
	check = (sum * 10) % 11
	if check == 10 {
		check = 0
	}
	return check == digits[10]
}
