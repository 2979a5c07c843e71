package orders

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	internalorders "github.com/angelmondragon/storefront-backend/internal/orders"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
)

type stubOrders struct {
	listFn   func(ctx context.Context, filter internalorders.ListFilter) (*internalorders.OrderList, error)
	order    *models.Order
	err      error
	status   enums.OrderStatus
	payment  enums.PaymentStatus
	upiTxnID *string
}

func (s *stubOrders) List(ctx context.Context, filter internalorders.ListFilter) (*internalorders.OrderList, error) {
	return s.listFn(ctx, filter)
}

func (s *stubOrders) Get(context.Context, uuid.UUID) (*models.Order, error) {
	return s.order, s.err
}

func (s *stubOrders) UpdateStatus(_ context.Context, _ uuid.UUID, status enums.OrderStatus) (*models.Order, error) {
	s.status = status
	return s.order, s.err
}

func (s *stubOrders) UpdatePaymentStatus(_ context.Context, _ uuid.UUID, status enums.PaymentStatus, txn *string) (*models.Order, error) {
	s.payment = status
	s.upiTxnID = txn
	return s.order, s.err
}

type stubSteps struct {
	steps []models.CheckoutStep
}

func (s stubSteps) Steps(context.Context, uuid.UUID) ([]models.CheckoutStep, error) {
	return s.steps, nil
}

func withOrderID(req *http.Request, id string) *http.Request {
	rc := chi.NewRouteContext()
	rc.URLParams.Add("orderId", id)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rc))
}

func sampleOrder() *models.Order {
	return &models.Order{
		ID:            uuid.New(),
		OrderNumber:   "ORD-1",
		CustomerName:  "Asha",
		TotalAmount:   decimal.RequireFromString("1697.00"),
		Status:        enums.OrderStatusPending,
		PaymentStatus: enums.PaymentStatusPending,
	}
}

func TestAdminListParsesFilters(t *testing.T) {
	svc := &stubOrders{listFn: func(_ context.Context, filter internalorders.ListFilter) (*internalorders.OrderList, error) {
		if filter.Params.Limit != 5 {
			t.Fatalf("unexpected limit %d", filter.Params.Limit)
		}
		if filter.Status == nil || *filter.Status != enums.OrderStatusCompleted {
			t.Fatalf("expected completed filter, got %v", filter.Status)
		}
		if filter.PaymentStatus != nil {
			t.Fatalf("expected no payment filter")
		}
		return &internalorders.OrderList{Orders: []internalorders.OrderDTO{{OrderNumber: "ORD-9"}}}, nil
	}}

	resp := httptest.NewRecorder()
	AdminList(svc, nil).ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/?limit=5&status=completed", nil))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	var envelope struct {
		Data internalorders.OrderList `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(envelope.Data.Orders) != 1 || envelope.Data.Orders[0].OrderNumber != "ORD-9" {
		t.Fatalf("unexpected payload %+v", envelope.Data)
	}
}

func TestAdminListRejectsUnknownStatus(t *testing.T) {
	svc := &stubOrders{listFn: func(context.Context, internalorders.ListFilter) (*internalorders.OrderList, error) {
		t.Fatalf("service should not be called")
		return nil, nil
	}}
	resp := httptest.NewRecorder()
	AdminList(svc, nil).ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/?status=shipped", nil))
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestAdminGetNotFound(t *testing.T) {
	svc := &stubOrders{err: pkgerrors.New(pkgerrors.CodeNotFound, "order not found")}
	req := withOrderID(httptest.NewRequest(http.MethodGet, "/", nil), uuid.NewString())

	resp := httptest.NewRecorder()
	AdminGet(svc, nil).ServeHTTP(resp, req)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", resp.Code)
	}
}

func TestAdminGetRejectsMalformedID(t *testing.T) {
	req := withOrderID(httptest.NewRequest(http.MethodGet, "/", nil), "not-a-uuid")
	resp := httptest.NewRecorder()
	AdminGet(&stubOrders{order: sampleOrder()}, nil).ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestAdminUpdatePaymentStatus(t *testing.T) {
	svc := &stubOrders{order: sampleOrder()}
	body := `{"payment_status":"completed","upi_transaction_id":"UTR123"}`
	req := withOrderID(httptest.NewRequest(http.MethodPatch, "/", strings.NewReader(body)), uuid.NewString())

	resp := httptest.NewRecorder()
	AdminUpdatePaymentStatus(svc, nil).ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	if svc.payment != enums.PaymentStatusCompleted {
		t.Fatalf("expected completed, got %s", svc.payment)
	}
	if svc.upiTxnID == nil || *svc.upiTxnID != "UTR123" {
		t.Fatalf("expected transaction id forwarded")
	}
}

func TestAdminUpdateStatusRejectsUnknownField(t *testing.T) {
	svc := &stubOrders{order: sampleOrder()}
	req := withOrderID(httptest.NewRequest(http.MethodPatch, "/", strings.NewReader(`{"status":"completed","extra":1}`)), uuid.NewString())

	resp := httptest.NewRecorder()
	AdminUpdateStatus(svc, nil).ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
	if svc.status != "" {
		t.Fatalf("service should not be called")
	}
}

func TestAdminSteps(t *testing.T) {
	orderID := uuid.New()
	steps := stubSteps{steps: []models.CheckoutStep{
		{OrderID: orderID, Step: enums.CheckoutStepInvoicePersisted, Outcome: enums.StepOutcomeSucceeded, Attempt: 1},
		{OrderID: orderID, Step: enums.CheckoutStepInvoiceDelivered, Outcome: enums.StepOutcomeFailed, Detail: "smtp", Attempt: 1},
	}}
	req := withOrderID(httptest.NewRequest(http.MethodGet, "/", nil), orderID.String())

	resp := httptest.NewRecorder()
	AdminSteps(steps, nil).ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	var envelope struct {
		Data []struct {
			Step    string `json:"step"`
			Outcome string `json:"outcome"`
			Detail  string `json:"detail"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(envelope.Data) != 2 || envelope.Data[1].Outcome != string(enums.StepOutcomeFailed) || envelope.Data[1].Detail != "smtp" {
		t.Fatalf("unexpected payload %+v", envelope.Data)
	}
}
