package orders

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/foreverlabs/storefront-backend/api/middleware"
	internalorders "github.com/foreverlabs/storefront-backend/internal/orders"
	"github.com/foreverlabs/storefront-backend/pkg/db/models"
	"github.com/foreverlabs/storefront-backend/pkg/enums"
	pkgerrors "github.com/foreverlabs/storefront-backend/pkg/errors"
	"github.com/foreverlabs/storefront-backend/pkg/types"
)

type stubOrdersService struct {
	order          *models.Order
	orders         []models.Order
	err            error
	lastPlace      internalorders.PlaceOrderInput
	lastTransition internalorders.TransitionInput
	lastPaidOrder  uuid.UUID
	lastPaidUser   uuid.UUID
}

func (s *stubOrdersService) PlaceOrder(ctx context.Context, input internalorders.PlaceOrderInput) (*models.Order, error) {
	s.lastPlace = input
	return s.order, s.err
}

func (s *stubOrdersService) Transition(ctx context.Context, input internalorders.TransitionInput) (*models.Order, error) {
	s.lastTransition = input
	return s.order, s.err
}

func (s *stubOrdersService) MarkPaid(ctx context.Context, orderID, userID uuid.UUID) (*models.Order, error) {
	s.lastPaidOrder = orderID
	s.lastPaidUser = userID
	return s.order, s.err
}

func (s *stubOrdersService) ListAll(ctx context.Context) ([]models.Order, error) {
	return s.orders, s.err
}

func (s *stubOrdersService) ListForCustomer(ctx context.Context, userID uuid.UUID) ([]models.Order, error) {
	return s.orders, s.err
}

func withUser(req *http.Request, userID uuid.UUID) *http.Request {
	return req.WithContext(middleware.WithUserID(req.Context(), userID.String()))
}

func withOrderParam(req *http.Request, orderID uuid.UUID) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("orderId", orderID.String())
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func checkoutBody(method string) string {
	return fmt.Sprintf(`{
		"address": {
			"first_name": "Meera",
			"last_name": "Nair",
			"street": "12 Marine Drive",
			"city": "Kochi",
			"state": "Kerala",
			"zip_code": "682001",
			"country": "India",
			"phone": "9876543210"
		},
		"payment_method": %q
	}`, method)
}

func TestCheckoutSuccess(t *testing.T) {
	userID := uuid.New()
	service := &stubOrdersService{order: &models.Order{ID: uuid.New(), UserID: userID}}
	handler := Checkout(service, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders", strings.NewReader(checkoutBody("COD")))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, withUser(req, userID))

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", resp.Code, resp.Body.String())
	}
	if service.lastPlace.UserID != userID {
		t.Fatalf("expected user %s got %s", userID, service.lastPlace.UserID)
	}
	if service.lastPlace.PaymentMethod != enums.PaymentMethodCOD {
		t.Fatalf("expected COD got %s", service.lastPlace.PaymentMethod)
	}
	if service.lastPlace.Address.FullName() != "Meera Nair" {
		t.Fatalf("unexpected address forwarded: %+v", service.lastPlace.Address)
	}
}

func TestCheckoutRejectsUnknownPaymentMethod(t *testing.T) {
	handler := Checkout(&stubOrdersService{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders", strings.NewReader(checkoutBody("Wire")))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, withUser(req, uuid.New()))

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestCheckoutMapsValidationErrors(t *testing.T) {
	service := &stubOrdersService{err: pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")}
	handler := Checkout(service, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders", strings.NewReader(checkoutBody("COD")))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, withUser(req, uuid.New()))

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}

	var envelope struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Error.Message != "cart is empty" {
		t.Fatalf("unexpected message %q", envelope.Error.Message)
	}
}

func TestListReturnsOrders(t *testing.T) {
	service := &stubOrdersService{orders: []models.Order{{ID: uuid.New()}, {ID: uuid.New()}}}
	handler := List(service, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, withUser(req, uuid.New()))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}

	var envelope struct {
		Data []models.Order `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(envelope.Data) != 2 {
		t.Fatalf("expected 2 orders got %d", len(envelope.Data))
	}
}

func TestCancelForwardsCustomerActor(t *testing.T) {
	userID := uuid.New()
	orderID := uuid.New()
	service := &stubOrdersService{order: &models.Order{ID: orderID, Status: enums.OrderStatusCancelled}}
	handler := Cancel(service, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders/"+orderID.String()+"/cancel", nil)
	req = withOrderParam(withUser(req, userID), orderID)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	if service.lastTransition.OrderID != orderID {
		t.Fatalf("expected order %s got %s", orderID, service.lastTransition.OrderID)
	}
	if service.lastTransition.Target != enums.OrderStatusCancelled {
		t.Fatalf("expected Cancelled target got %s", service.lastTransition.Target)
	}
	if service.lastTransition.Actor.Role != enums.ActorRoleCustomer || service.lastTransition.Actor.UserID != userID {
		t.Fatalf("unexpected actor: %+v", service.lastTransition.Actor)
	}
}

func TestCancelRejectsMalformedOrderID(t *testing.T) {
	handler := Cancel(&stubOrdersService{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders/not-a-uuid/cancel", nil)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("orderId", "not-a-uuid")
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, withUser(req, uuid.New()))

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestCancelMapsStateConflict(t *testing.T) {
	service := &stubOrdersService{err: pkgerrors.New(pkgerrors.CodeStateConflict, "order can no longer be cancelled")}
	handler := Cancel(service, nil)

	orderID := uuid.New()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders/"+orderID.String()+"/cancel", nil)
	req = withOrderParam(withUser(req, uuid.New()), orderID)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 got %d", resp.Code)
	}
}

func TestConfirmPaymentForwardsIDs(t *testing.T) {
	userID := uuid.New()
	orderID := uuid.New()
	service := &stubOrdersService{order: &models.Order{ID: orderID, Paid: true}}
	handler := ConfirmPayment(service, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders/"+orderID.String()+"/payment/verify", nil)
	req = withOrderParam(withUser(req, userID), orderID)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if service.lastPaidOrder != orderID || service.lastPaidUser != userID {
		t.Fatalf("expected (%s, %s) got (%s, %s)", orderID, userID, service.lastPaidOrder, service.lastPaidUser)
	}
}

func TestAdminUpdateStatusForwardsAdminActor(t *testing.T) {
	userID := uuid.New()
	orderID := uuid.New()
	service := &stubOrdersService{order: &models.Order{ID: orderID, Status: enums.OrderStatusShipped}}
	handler := AdminUpdateStatus(service, nil)

	req := httptest.NewRequest(http.MethodPatch, "/api/admin/v1/orders/"+orderID.String()+"/status", strings.NewReader(`{"status": "Shipped"}`))
	req.Header.Set("Content-Type", "application/json")
	req = withOrderParam(withUser(req, userID), orderID)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	if service.lastTransition.Target != enums.OrderStatusShipped {
		t.Fatalf("expected Shipped target got %s", service.lastTransition.Target)
	}
	if service.lastTransition.Actor.Role != enums.ActorRoleAdmin {
		t.Fatalf("expected admin actor got %s", service.lastTransition.Actor.Role)
	}
}

func TestAdminUpdateStatusRejectsUnknownStatus(t *testing.T) {
	handler := AdminUpdateStatus(&stubOrdersService{}, nil)

	orderID := uuid.New()
	req := httptest.NewRequest(http.MethodPatch, "/api/admin/v1/orders/"+orderID.String()+"/status", strings.NewReader(`{"status": "Teleported"}`))
	req.Header.Set("Content-Type", "application/json")
	req = withOrderParam(withUser(req, uuid.New()), orderID)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestAdminListAppliesProjection(t *testing.T) {
	base := time.Date(2026, time.March, 1, 10, 0, 0, 0, time.UTC)
	packing := enums.OrderStatusPacking
	orders := []models.Order{
		{
			ID:       uuid.New(),
			Status:   enums.OrderStatusPlaced,
			PlacedAt: base,
			Address:  types.Address{FirstName: "Meera", LastName: "Nair"},
		},
		{
			ID:       uuid.New(),
			Status:   packing,
			PlacedAt: base.Add(time.Hour),
			Address:  types.Address{FirstName: "Arjun", LastName: "Rao"},
		},
		{
			ID:       uuid.New(),
			Status:   packing,
			PlacedAt: base.Add(2 * time.Hour),
			Address:  types.Address{FirstName: "Meera", LastName: "Pillai"},
		},
	}
	service := &stubOrdersService{orders: orders}
	handler := AdminList(service, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/admin/v1/orders?status=Packing&q=meera&sort=oldest", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, withUser(req, uuid.New()))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}

	var envelope struct {
		Data []models.Order `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(envelope.Data) != 1 {
		t.Fatalf("expected 1 order got %d", len(envelope.Data))
	}
	if envelope.Data[0].ID != orders[2].ID {
		t.Fatalf("expected order %s got %s", orders[2].ID, envelope.Data[0].ID)
	}
}

func TestAdminListRejectsBadSort(t *testing.T) {
	handler := AdminList(&stubOrdersService{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/admin/v1/orders?sort=sideways", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, withUser(req, uuid.New()))

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestAdminListRejectsBadStatus(t *testing.T) {
	handler := AdminList(&stubOrdersService{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/admin/v1/orders?status=Lost", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, withUser(req, uuid.New()))

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}
