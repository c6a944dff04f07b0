package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/creditman/internal/customer"
	"github.com/hitoshi/creditman/internal/model"
	"github.com/shopspring/decimal"
)

// --- モック ---

type mockCustomerService struct {
	registerFn   func(ctx context.Context, in customer.RegisterInput) (*model.Customer, error)
	findByIDFn   func(ctx context.Context, id int64) (*model.Customer, error)
	updateFn     func(ctx context.Context, id int64, patch model.CustomerPatch) (*model.Customer, error)
	deleteByIDFn func(ctx context.Context, id int64) error
}

func (m *mockCustomerService) Register(ctx context.Context, in customer.RegisterInput) (*model.Customer, error) {
	if m.registerFn != nil {
		return m.registerFn(ctx, in)
	}
	return &model.Customer{ID: 1}, nil
}

func (m *mockCustomerService) FindByID(ctx context.Context, id int64) (*model.Customer, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, model.NewCustomerNotFoundError(id)
}

func (m *mockCustomerService) Update(ctx context.Context, id int64, patch model.CustomerPatch) (*model.Customer, error) {
	if m.updateFn != nil {
		return m.updateFn(ctx, id, patch)
	}
	return nil, model.NewCustomerNotFoundError(id)
}

func (m *mockCustomerService) DeleteByID(ctx context.Context, id int64) error {
	if m.deleteByIDFn != nil {
		return m.deleteByIDFn(ctx, id)
	}
	return model.NewCustomerNotFoundError(id)
}

func newCustomerTestRouter(service CustomerServiceInterface) http.Handler {
	h := NewCustomerHandler(service)
	r := chi.NewRouter()
	r.Post("/api/customers", h.Create)
	r.Get("/api/customers/{id}", h.Get)
	r.Patch("/api/customers/{id}", h.Patch)
	r.Delete("/api/customers/{id}", h.Delete)
	return r
}

const validCreateBody = `{
	"firstName": "Cami",
	"lastName": "Cavalcante",
	"cpf": "28475934625",
	"income": "1000",
	"email": "camila@email.com",
	"password": "12345",
	"zipCode": "000000",
	"street": "Rua da Cami, 123"
}`

// --- 登録テスト ---

func TestCustomerHandler_Create_Returns201WithoutPassword(t *testing.T) {
	var captured customer.RegisterInput
	service := &mockCustomerService{
		registerFn: func(ctx context.Context, in customer.RegisterInput) (*model.Customer, error) {
			captured = in
			return &model.Customer{
				ID:        1,
				FirstName: in.FirstName,
				LastName:  in.LastName,
				CPF:       in.CPF,
				Income:    in.Income,
				Email:     in.Email,
				Address:   model.Address{ZipCode: in.ZipCode, Street: in.Street},
			}, nil
		},
	}
	router := newCustomerTestRouter(service)

	req := httptest.NewRequest(http.MethodPost, "/api/customers", strings.NewReader(validCreateBody))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d, body: %s", w.Code, http.StatusCreated, w.Body.String())
	}
	if captured.Password != "12345" {
		t.Errorf("service should receive the raw password, got %q", captured.Password)
	}

	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if body["firstName"] != "Cami" {
		t.Errorf("firstName = %v, want Cami", body["firstName"])
	}
	if _, exists := body["password"]; exists {
		t.Error("response must not contain the password")
	}
	if _, exists := body["passwordHash"]; exists {
		t.Error("response must not contain the password hash")
	}
}

func TestCustomerHandler_Create_InvalidCPF_Returns400(t *testing.T) {
	router := newCustomerTestRouter(&mockCustomerService{})

	body := strings.Replace(validCreateBody, "28475934625", "12345678901", 1)
	req := httptest.NewRequest(http.MethodPost, "/api/customers", strings.NewReader(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestCustomerHandler_Create_MissingFirstName_Returns400(t *testing.T) {
	router := newCustomerTestRouter(&mockCustomerService{})

	body := strings.Replace(validCreateBody, `"Cami"`, `""`, 1)
	req := httptest.NewRequest(http.MethodPost, "/api/customers", strings.NewReader(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestCustomerHandler_Create_MalformedJSON_Returns400(t *testing.T) {
	router := newCustomerTestRouter(&mockCustomerService{})

	req := httptest.NewRequest(http.MethodPost, "/api/customers", strings.NewReader("{not json"))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestCustomerHandler_Create_DuplicateCPF_Returns400(t *testing.T) {
	service := &mockCustomerService{
		registerFn: func(ctx context.Context, in customer.RegisterInput) (*model.Customer, error) {
			return nil, model.NewDuplicateCustomerError("cpf")
		},
	}
	router := newCustomerTestRouter(service)

	req := httptest.NewRequest(http.MethodPost, "/api/customers", strings.NewReader(validCreateBody))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

// --- 取得テスト ---

func TestCustomerHandler_Get_Returns200(t *testing.T) {
	service := &mockCustomerService{
		findByIDFn: func(ctx context.Context, id int64) (*model.Customer, error) {
			return &model.Customer{
				ID:        id,
				FirstName: "Cami",
				Income:    decimal.NewFromInt(1000),
				Address:   model.Address{ZipCode: "000000", Street: "Rua da Cami, 123"},
			}, nil
		},
	}
	router := newCustomerTestRouter(service)

	req := httptest.NewRequest(http.MethodGet, "/api/customers/1", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}

	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if body["id"] != float64(1) {
		t.Errorf("id = %v, want 1", body["id"])
	}
	if body["street"] != "Rua da Cami, 123" {
		t.Errorf("street = %v, want Rua da Cami, 123", body["street"])
	}
}

func TestCustomerHandler_Get_Unknown_Returns404WithMessage(t *testing.T) {
	router := newCustomerTestRouter(&mockCustomerService{})

	req := httptest.NewRequest(http.MethodGet, "/api/customers/2", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusNotFound)
	}

	var body apiErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if body.Message != "Id 2 not found" {
		t.Errorf("message = %q, want %q", body.Message, "Id 2 not found")
	}
	if body.Category != model.CategoryNotFound {
		t.Errorf("category = %q, want %q", body.Category, model.CategoryNotFound)
	}
}

func TestCustomerHandler_Get_NonNumericID_Returns400(t *testing.T) {
	router := newCustomerTestRouter(&mockCustomerService{})

	req := httptest.NewRequest(http.MethodGet, "/api/customers/abc", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

// --- 更新テスト ---

func TestCustomerHandler_Patch_Returns200WithUpdatedView(t *testing.T) {
	service := &mockCustomerService{
		updateFn: func(ctx context.Context, id int64, patch model.CustomerPatch) (*model.Customer, error) {
			return &model.Customer{
				ID:        id,
				FirstName: patch.FirstName,
				LastName:  patch.LastName,
				CPF:       "28475934625",
				Income:    patch.Income,
				Email:     "camila@email.com",
				Address:   model.Address{ZipCode: patch.ZipCode, Street: patch.Street},
			}, nil
		},
	}
	router := newCustomerTestRouter(service)

	body := `{"firstName":"CamiUpdate","lastName":"CavalcanteUpdate","income":"5000","zipCode":"45656","street":"Rua Updated"}`
	req := httptest.NewRequest(http.MethodPatch, "/api/customers/1", strings.NewReader(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d, body: %s", w.Code, http.StatusOK, w.Body.String())
	}

	var resp map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if resp["firstName"] != "CamiUpdate" {
		t.Errorf("firstName = %v, want CamiUpdate", resp["firstName"])
	}
	if resp["cpf"] != "28475934625" {
		t.Errorf("cpf = %v, must be unchanged", resp["cpf"])
	}
}

func TestCustomerHandler_Patch_Unknown_Returns404(t *testing.T) {
	router := newCustomerTestRouter(&mockCustomerService{})

	body := `{"firstName":"X","lastName":"Y","income":"1","zipCode":"1","street":"1"}`
	req := httptest.NewRequest(http.MethodPatch, "/api/customers/99", strings.NewReader(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
}

// --- 削除テスト ---

func TestCustomerHandler_Delete_Returns204(t *testing.T) {
	service := &mockCustomerService{
		deleteByIDFn: func(ctx context.Context, id int64) error { return nil },
	}
	router := newCustomerTestRouter(service)

	req := httptest.NewRequest(http.MethodDelete, "/api/customers/1", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Errorf("status = %d, want %d", w.Code, http.StatusNoContent)
	}
}

func TestCustomerHandler_Delete_Unknown_Returns404(t *testing.T) {
	router := newCustomerTestRouter(&mockCustomerService{})

	req := httptest.NewRequest(http.MethodDelete, "/api/customers/99", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
}

// --- CPF検証テスト ---

func TestIsValidCPF(t *testing.T) {
	tests := []struct {
		name string
		cpf  string
		want bool
	}{
		{"valid cpf", "28475934625", true},
		{"wrong check digit", "28475934620", false},
		{"all same digits", "11111111111", false},
		{"too short", "2847593462", false},
		{"too long", "284759346255", false},
		{"non numeric", "2847593462a", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isValidCPF(tt.cpf); got != tt.want {
				t.Errorf("isValidCPF(%q) = %v, want %v", tt.cpf, got, tt.want)
			}
		})
	}
}
