package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/storefront-backend/api/middleware"
	"github.com/angelmondragon/storefront-backend/internal/catalog"
	"github.com/angelmondragon/storefront-backend/internal/checkout"
	"github.com/angelmondragon/storefront-backend/internal/settings"
	"github.com/angelmondragon/storefront-backend/pkg/config"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
)

type stubCheckout struct {
	lastSession  string
	lastCustomer checkout.Customer
	lastMethod   enums.PaymentMethod
	err          error
}

func (s *stubCheckout) state(stage enums.CheckoutStage) *checkout.State {
	return &checkout.State{SessionID: s.lastSession, Stage: stage, LockedAmount: decimal.RequireFromString("1299")}
}

func (s *stubCheckout) Begin(_ context.Context, sessionID string) (*checkout.State, error) {
	s.lastSession = sessionID
	return s.state(enums.CheckoutStageDetails), s.err
}

func (s *stubCheckout) SubmitDetails(_ context.Context, sessionID string, customer checkout.Customer) (*checkout.State, error) {
	s.lastSession = sessionID
	s.lastCustomer = customer
	if s.err != nil {
		return nil, s.err
	}
	return s.state(enums.CheckoutStagePayment), nil
}

func (s *stubCheckout) ConfirmPayment(_ context.Context, sessionID string) (*checkout.State, error) {
	s.lastSession = sessionID
	if s.err != nil {
		return nil, s.err
	}
	return s.state(enums.CheckoutStageMethodSelection), nil
}

func (s *stubCheckout) SelectDeliveryMethod(_ context.Context, sessionID string, method enums.PaymentMethod) (*checkout.State, error) {
	s.lastSession = sessionID
	s.lastMethod = method
	if s.err != nil {
		return nil, s.err
	}
	return s.state(enums.CheckoutStageSuccess), nil
}

func (s *stubCheckout) Steps(context.Context, uuid.UUID) ([]models.CheckoutStep, error) {
	return nil, nil
}

func sessionRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req.WithContext(middleware.WithSessionID(req.Context(), "sess-1"))
}

func TestCheckoutDetailsPassesCustomer(t *testing.T) {
	svc := &stubCheckout{}
	resp := httptest.NewRecorder()
	CheckoutDetails(svc, nil).ServeHTTP(resp, sessionRequest(http.MethodPost, "/", `{"name":"Asha","phone":"+91 98765 43210","email":"asha@example.com"}`))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	if svc.lastSession != "sess-1" {
		t.Fatalf("expected session from context, got %q", svc.lastSession)
	}
	if svc.lastCustomer.Email != "asha@example.com" {
		t.Fatalf("unexpected customer %+v", svc.lastCustomer)
	}
	var envelope struct {
		Data checkout.State `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.Stage != enums.CheckoutStagePayment {
		t.Fatalf("unexpected stage %s", envelope.Data.Stage)
	}
}

func TestCheckoutDetailsRejectsUnknownFields(t *testing.T) {
	svc := &stubCheckout{}
	resp := httptest.NewRecorder()
	CheckoutDetails(svc, nil).ServeHTTP(resp, sessionRequest(http.MethodPost, "/", `{"name":"Asha","address":"x"}`))
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
	if svc.lastSession != "" {
		t.Fatalf("service should not be called")
	}
}

func TestCheckoutConfirmPaymentStateConflict(t *testing.T) {
	svc := &stubCheckout{err: pkgerrors.New(pkgerrors.CodeStateConflict, "checkout is not awaiting payment")}
	resp := httptest.NewRecorder()
	CheckoutConfirmPayment(svc, nil).ServeHTTP(resp, sessionRequest(http.MethodPost, "/", ""))
	if resp.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 got %d", resp.Code)
	}
}

func TestCheckoutDeliveryNormalizesMethod(t *testing.T) {
	svc := &stubCheckout{}
	resp := httptest.NewRecorder()
	CheckoutDelivery(svc, nil).ServeHTTP(resp, sessionRequest(http.MethodPost, "/", `{"method":" WhatsApp "}`))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if svc.lastMethod != enums.PaymentMethodWhatsApp {
		t.Fatalf("unexpected method %q", svc.lastMethod)
	}
}

func TestCheckoutDeliveryRequiresMethod(t *testing.T) {
	resp := httptest.NewRecorder()
	CheckoutDelivery(&stubCheckout{}, nil).ServeHTTP(resp, sessionRequest(http.MethodPost, "/", `{}`))
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestCheckoutUnavailable(t *testing.T) {
	resp := httptest.NewRecorder()
	CheckoutBegin(nil, nil).ServeHTTP(resp, sessionRequest(http.MethodGet, "/", ""))
	if resp.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 got %d", resp.Code)
	}
}

type stubSettings struct {
	settings.Service
	putKey enums.SettingKey
	putRaw json.RawMessage
	putErr error
}

func (s *stubSettings) All(context.Context) (map[enums.SettingKey]json.RawMessage, error) {
	return map[enums.SettingKey]json.RawMessage{
		enums.SettingKeyUPIID: json.RawMessage(`{"vpa":"shop@upi","payee_name":"Shop"}`),
	}, nil
}

func (s *stubSettings) Put(_ context.Context, key enums.SettingKey, raw json.RawMessage) error {
	s.putKey = key
	s.putRaw = raw
	return s.putErr
}

func withURLParam(req *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestAdminGetSettings(t *testing.T) {
	resp := httptest.NewRecorder()
	AdminGetSettings(&stubSettings{}, nil).ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), `"shop@upi"`) {
		t.Fatalf("expected upi block in %s", resp.Body.String())
	}
}

func TestAdminPutSetting(t *testing.T) {
	svc := &stubSettings{}
	req := withURLParam(httptest.NewRequest(http.MethodPut, "/", strings.NewReader(`{"vpa":"new@upi","payee_name":"Shop"}`)), "key", "upi_id")
	resp := httptest.NewRecorder()
	AdminPutSetting(svc, nil).ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	if svc.putKey != enums.SettingKeyUPIID || !strings.Contains(string(svc.putRaw), "new@upi") {
		t.Fatalf("unexpected put %s %s", svc.putKey, svc.putRaw)
	}
}

func TestAdminPutSettingRejectsUnknownKeyAndBadJSON(t *testing.T) {
	svc := &stubSettings{}

	resp := httptest.NewRecorder()
	AdminPutSetting(svc, nil).ServeHTTP(resp, withURLParam(httptest.NewRequest(http.MethodPut, "/", strings.NewReader(`{}`)), "key", "smtp"))
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown key, got %d", resp.Code)
	}

	resp = httptest.NewRecorder()
	AdminPutSetting(svc, nil).ServeHTTP(resp, withURLParam(httptest.NewRequest(http.MethodPut, "/", strings.NewReader(`{"vpa":`)), "key", "upi_id"))
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed json, got %d", resp.Code)
	}
	if svc.putKey != "" {
		t.Fatalf("service should not be called")
	}
}

type stubCatalog struct {
	catalog.Service
	viewed uuid.UUID
	err    error
}

func (s *stubCatalog) ListActive(context.Context) ([]catalog.ProductDTO, error) {
	return []catalog.ProductDTO{{ID: uuid.New(), Name: "Tee", Price: decimal.RequireFromString("499"), IsActive: true, Purchasable: true}}, nil
}

func (s *stubCatalog) ViewProduct(_ context.Context, id uuid.UUID) (*catalog.ProductDTO, error) {
	s.viewed = id
	if s.err != nil {
		return nil, s.err
	}
	return &catalog.ProductDTO{ID: id, Name: "Tee", IsActive: true}, nil
}

func (s *stubCatalog) Deactivate(context.Context, uuid.UUID) error {
	return s.err
}

func TestStorefrontProducts(t *testing.T) {
	resp := httptest.NewRecorder()
	StorefrontProducts(&stubCatalog{}, nil).ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	var envelope struct {
		Data []catalog.ProductDTO `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(envelope.Data) != 1 || envelope.Data[0].Name != "Tee" {
		t.Fatalf("unexpected products %+v", envelope.Data)
	}
}

func TestStorefrontProductNotFound(t *testing.T) {
	id := uuid.New()
	svc := &stubCatalog{err: pkgerrors.New(pkgerrors.CodeNotFound, "product not found")}
	resp := httptest.NewRecorder()
	StorefrontProduct(svc, nil).ServeHTTP(resp, withURLParam(httptest.NewRequest(http.MethodGet, "/", nil), "productId", id.String()))
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", resp.Code)
	}
	if svc.viewed != id {
		t.Fatalf("expected view for %s", id)
	}
}

func TestStorefrontProductMalformedID(t *testing.T) {
	resp := httptest.NewRecorder()
	StorefrontProduct(&stubCatalog{}, nil).ServeHTTP(resp, withURLParam(httptest.NewRequest(http.MethodGet, "/", nil), "productId", "not-a-uuid"))
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestAdminDeactivateProduct(t *testing.T) {
	resp := httptest.NewRecorder()
	AdminDeactivateProduct(&stubCatalog{}, nil).ServeHTTP(resp, withURLParam(httptest.NewRequest(http.MethodDelete, "/", nil), "productId", uuid.NewString()))
	if resp.Code != http.StatusNoContent {
		t.Fatalf("expected 204 got %d", resp.Code)
	}
}

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestHealthReady(t *testing.T) {
	cfg := &config.Config{App: config.AppConfig{Env: "test"}}

	resp := httptest.NewRecorder()
	HealthReady(cfg, nil, map[string]Pinger{
		"postgres": pingFunc(func(context.Context) error { return nil }),
		"redis":    pingFunc(func(context.Context) error { return nil }),
	}).ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if resp.Header().Get("X-Storefront-Env") != "test" {
		t.Fatalf("missing env header")
	}

	resp = httptest.NewRecorder()
	HealthReady(cfg, nil, map[string]Pinger{
		"redis": pingFunc(func(context.Context) error { return errors.New("dial tcp: refused") }),
	}).ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	if resp.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 got %d", resp.Code)
	}
	if strings.Contains(resp.Body.String(), "refused") {
		t.Fatalf("dependency cause leaked: %s", resp.Body.String())
	}
}
