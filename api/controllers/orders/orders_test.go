package orders

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mtaanigas/fulfillment-backend/api/middleware"
	internalorders "github.com/mtaanigas/fulfillment-backend/internal/orders"
	"github.com/mtaanigas/fulfillment-backend/pkg/enums"
	pkgerrors "github.com/mtaanigas/fulfillment-backend/pkg/errors"
)

type stubOrdersService struct {
	createInput  internalorders.CreateOrderInput
	createResult *internalorders.CreateOrderResult
	listInput    internalorders.ListCustomerOrdersInput
	cancelInput  internalorders.CancelOrderInput
	advanceInput internalorders.AdvanceStatusInput
	acceptResult *internalorders.AcceptResult
	err          error
}

func (s *stubOrdersService) CreateFromCart(ctx context.Context, input internalorders.CreateOrderInput) (*internalorders.CreateOrderResult, error) {
	s.createInput = input
	return s.createResult, s.err
}

func (s *stubOrdersService) Accept(ctx context.Context, orderID, dealerID uuid.UUID) (*internalorders.AcceptResult, error) {
	return s.acceptResult, s.err
}

func (s *stubOrdersService) AdvanceStatus(ctx context.Context, input internalorders.AdvanceStatusInput) (*internalorders.StatusUpdateResult, error) {
	s.advanceInput = input
	if s.err != nil {
		return nil, s.err
	}
	return &internalorders.StatusUpdateResult{Message: "Order status updated", Order: internalorders.StatusUpdateDTO{ID: input.OrderID, Status: enums.OrderStatus(input.Status)}}, nil
}

func (s *stubOrdersService) Cancel(ctx context.Context, input internalorders.CancelOrderInput) (*internalorders.CancelResult, error) {
	s.cancelInput = input
	if s.err != nil {
		return nil, s.err
	}
	return &internalorders.CancelResult{Message: "Order cancelled successfully", OrderID: input.OrderID, Status: enums.OrderStatusCancelled}, nil
}

func (s *stubOrdersService) ListCustomerOrders(ctx context.Context, input internalorders.ListCustomerOrdersInput) (*internalorders.CustomerOrderList, error) {
	s.listInput = input
	return &internalorders.CustomerOrderList{Orders: []internalorders.OrderDTO{}}, s.err
}

func (s *stubOrdersService) GetCustomerOrder(ctx context.Context, customerID, orderID uuid.UUID) (*internalorders.OrderDetailDTO, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &internalorders.OrderDetailDTO{OrderDTO: internalorders.OrderDTO{ID: orderID, CustomerID: customerID}}, nil
}

func (s *stubOrdersService) StatusCounts(ctx context.Context, customerID uuid.UUID) (*internalorders.StatusCountsResult, error) {
	return &internalorders.StatusCountsResult{StatusCounts: []internalorders.StatusCount{{Status: enums.OrderStatusPending, Count: 2}}}, s.err
}

func (s *stubOrdersService) Stats(ctx context.Context, customerID uuid.UUID) (*internalorders.OrderStats, error) {
	return &internalorders.OrderStats{TotalOrders: 3, TotalSpent: decimal.NewFromInt(2500)}, s.err
}

func (s *stubOrdersService) ListAvailable(ctx context.Context, dealerID uuid.UUID) (*internalorders.AvailableOrdersResult, error) {
	return &internalorders.AvailableOrdersResult{AvailableOrders: []internalorders.AvailableOrderDTO{}}, s.err
}

func (s *stubOrdersService) ListDealerOrders(ctx context.Context, dealerID uuid.UUID) (*internalorders.DealerOrderList, error) {
	return &internalorders.DealerOrderList{Orders: []internalorders.DealerOrderDTO{}}, s.err
}

func (s *stubOrdersService) GetDealerOrder(ctx context.Context, dealerID, orderID uuid.UUID) (*internalorders.OrderDetailDTO, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &internalorders.OrderDetailDTO{OrderDTO: internalorders.OrderDTO{ID: orderID, DealerID: &dealerID}}, nil
}

func (s *stubOrdersService) ListExpiredAssignments(ctx context.Context, limit int) ([]uuid.UUID, error) {
	return nil, nil
}

func (s *stubOrdersService) ExpireAssignment(ctx context.Context, orderID uuid.UUID) (bool, error) {
	return false, nil
}

func authed(req *http.Request, userID uuid.UUID) *http.Request {
	return req.WithContext(middleware.WithUserID(req.Context(), userID.String()))
}

func withOrderParam(req *http.Request, orderID string) *http.Request {
	rc := chi.NewRouteContext()
	rc.URLParams.Add("orderId", orderID)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rc))
}

type errorPayload struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Code    string `json:"code"`
}

func decodeError(t *testing.T, resp *httptest.ResponseRecorder) errorPayload {
	t.Helper()
	var payload errorPayload
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &payload))
	return payload
}

func TestCreateReturnsCreated(t *testing.T) {
	customerID := uuid.New()
	orderID := uuid.New()
	svc := &stubOrdersService{createResult: &internalorders.CreateOrderResult{
		Message:       "Order created successfully",
		OrderID:       orderID,
		TotalAmount:   decimal.NewFromInt(200),
		Status:        enums.OrderStatusPending,
		PaymentStatus: enums.OrderPaymentStatusPending,
		CustomerWard:  "kasarani",
	}}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders", strings.NewReader(`{"delivery_location":"Kasarani, Nairobi","payment_method":"mpesa"}`))
	resp := httptest.NewRecorder()
	Create(svc, nil).ServeHTTP(resp, authed(req, customerID))

	require.Equal(t, http.StatusCreated, resp.Code)
	assert.Equal(t, customerID, svc.createInput.CustomerID)
	assert.Equal(t, "Kasarani, Nairobi", svc.createInput.DeliveryLocation)
	assert.Equal(t, "mpesa", svc.createInput.PaymentMethod)

	var body struct {
		Success      bool            `json:"success"`
		OrderID      uuid.UUID       `json:"order_id"`
		TotalAmount  decimal.Decimal `json:"total_amount"`
		Status       string          `json:"status"`
		CustomerWard string          `json:"customer_ward"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Equal(t, orderID, body.OrderID)
	assert.True(t, body.TotalAmount.Equal(decimal.NewFromInt(200)))
	assert.Equal(t, "pending", body.Status)
	assert.Equal(t, "kasarani", body.CustomerWard)
}

func TestCreateSurfacesEmptyCart(t *testing.T) {
	svc := &stubOrdersService{err: pkgerrors.New(pkgerrors.CodeValidation, "Cart is empty")}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders", strings.NewReader(`{"delivery_location":"Kasarani"}`))
	resp := httptest.NewRecorder()
	Create(svc, nil).ServeHTTP(resp, authed(req, uuid.New()))

	require.Equal(t, http.StatusBadRequest, resp.Code)
	payload := decodeError(t, resp)
	assert.False(t, payload.Success)
	assert.Equal(t, "Cart is empty", payload.Error)
	assert.Equal(t, string(pkgerrors.CodeValidation), payload.Code)
}

func TestCreateRequiresIdentity(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders", strings.NewReader(`{}`))
	resp := httptest.NewRecorder()
	Create(&stubOrdersService{}, nil).ServeHTTP(resp, req)
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestListParsesFilters(t *testing.T) {
	svc := &stubOrdersService{}
	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders?status=preparing&payment_status=paid&limit=5&cursor=abc", nil)
	resp := httptest.NewRecorder()
	List(svc, nil).ServeHTTP(resp, authed(req, uuid.New()))

	require.Equal(t, http.StatusOK, resp.Code)
	require.NotNil(t, svc.listInput.Filters.Status)
	assert.Equal(t, enums.OrderStatusPreparing, *svc.listInput.Filters.Status)
	require.NotNil(t, svc.listInput.Filters.PaymentStatus)
	assert.Equal(t, enums.OrderPaymentStatusPaid, *svc.listInput.Filters.PaymentStatus)
	assert.Equal(t, 5, svc.listInput.Pagination.Limit)
	assert.Equal(t, "abc", svc.listInput.Pagination.Cursor)
}

func TestListTreatsAllAsNoFilter(t *testing.T) {
	svc := &stubOrdersService{}
	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders?status=all", nil)
	resp := httptest.NewRecorder()
	List(svc, nil).ServeHTTP(resp, authed(req, uuid.New()))

	require.Equal(t, http.StatusOK, resp.Code)
	assert.Nil(t, svc.listInput.Filters.Status)
}

func TestListRejectsUnknownStatus(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders?status=shipped", nil)
	resp := httptest.NewRecorder()
	List(&stubOrdersService{}, nil).ServeHTTP(resp, authed(req, uuid.New()))
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestDetailWrapsOrder(t *testing.T) {
	orderID := uuid.New()
	req := withOrderParam(httptest.NewRequest(http.MethodGet, "/api/v1/orders/"+orderID.String(), nil), orderID.String())
	resp := httptest.NewRecorder()
	Detail(&stubOrdersService{}, nil).ServeHTTP(resp, authed(req, uuid.New()))

	require.Equal(t, http.StatusOK, resp.Code)
	var body struct {
		Success bool `json:"success"`
		Order   struct {
			ID uuid.UUID `json:"id"`
		} `json:"order"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Equal(t, orderID, body.Order.ID)
}

func TestDetailRejectsBadOrderID(t *testing.T) {
	req := withOrderParam(httptest.NewRequest(http.MethodGet, "/api/v1/orders/123", nil), "123")
	resp := httptest.NewRecorder()
	Detail(&stubOrdersService{}, nil).ServeHTTP(resp, authed(req, uuid.New()))
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestCancelWithoutBody(t *testing.T) {
	orderID := uuid.New()
	customerID := uuid.New()
	svc := &stubOrdersService{}
	req := withOrderParam(httptest.NewRequest(http.MethodPatch, "/api/v1/orders/"+orderID.String()+"/cancel", http.NoBody), orderID.String())
	resp := httptest.NewRecorder()
	Cancel(svc, nil).ServeHTTP(resp, authed(req, customerID))

	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, orderID, svc.cancelInput.OrderID)
	assert.Equal(t, customerID, svc.cancelInput.CustomerID)
	assert.Nil(t, svc.cancelInput.Reason)
}

func TestCancelPassesReasonAndErrors(t *testing.T) {
	orderID := uuid.New()
	svc := &stubOrdersService{err: pkgerrors.New(pkgerrors.CodePrecondition, "Cannot cancel order with status: on_the_way")}
	req := withOrderParam(httptest.NewRequest(http.MethodPatch, "/api/v1/orders/"+orderID.String()+"/cancel", strings.NewReader(`{"reason":"too slow"}`)), orderID.String())
	resp := httptest.NewRecorder()
	Cancel(svc, nil).ServeHTTP(resp, authed(req, uuid.New()))

	require.Equal(t, http.StatusBadRequest, resp.Code)
	require.NotNil(t, svc.cancelInput.Reason)
	assert.Equal(t, "too slow", *svc.cancelInput.Reason)
	assert.Equal(t, "Cannot cancel order with status: on_the_way", decodeError(t, resp).Error)
}

func TestStatsAndCounts(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders/stats", nil)
	resp := httptest.NewRecorder()
	Stats(&stubOrdersService{}, nil).ServeHTTP(resp, authed(req, uuid.New()))
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `"totalOrders":3`)

	req = httptest.NewRequest(http.MethodGet, "/api/v1/orders/status/counts", nil)
	resp = httptest.NewRecorder()
	StatusCounts(&stubOrdersService{}, nil).ServeHTTP(resp, authed(req, uuid.New()))
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `"status_counts"`)
}

func TestAgentAcceptSuccess(t *testing.T) {
	orderID := uuid.New()
	dealerID := uuid.New()
	svc := &stubOrdersService{acceptResult: &internalorders.AcceptResult{
		Message: "Order accepted successfully",
		Order: internalorders.ClaimedOrderDTO{
			ID:         orderID,
			Status:     enums.OrderStatusConfirmed,
			DealerID:   dealerID,
			AssignedAt: time.Date(2026, 5, 4, 9, 0, 0, 0, time.UTC),
		},
	}}
	req := withOrderParam(httptest.NewRequest(http.MethodPost, "/api/v1/agent-orders/"+orderID.String()+"/accept", nil), orderID.String())
	resp := httptest.NewRecorder()
	AgentAccept(svc, nil).ServeHTTP(resp, authed(req, dealerID))

	require.Equal(t, http.StatusOK, resp.Code)
	var body struct {
		Success bool `json:"success"`
		Order   struct {
			Status   string    `json:"status"`
			DealerID uuid.UUID `json:"dealer_id"`
		} `json:"order"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Equal(t, "confirmed", body.Order.Status)
	assert.Equal(t, dealerID, body.Order.DealerID)
}

func TestAgentAcceptLostRace(t *testing.T) {
	orderID := uuid.New()
	svc := &stubOrdersService{err: pkgerrors.New(pkgerrors.CodeNotFound, "Order not available or already taken")}
	req := withOrderParam(httptest.NewRequest(http.MethodPost, "/api/v1/agent-orders/"+orderID.String()+"/accept", nil), orderID.String())
	resp := httptest.NewRecorder()
	AgentAccept(svc, nil).ServeHTTP(resp, authed(req, uuid.New()))

	require.Equal(t, http.StatusNotFound, resp.Code)
	payload := decodeError(t, resp)
	assert.Equal(t, "Order not available or already taken", payload.Error)
	assert.Equal(t, string(pkgerrors.CodeNotFound), payload.Code)
}

func TestAgentUpdateStatus(t *testing.T) {
	orderID := uuid.New()
	dealerID := uuid.New()
	svc := &stubOrdersService{}
	req := withOrderParam(httptest.NewRequest(http.MethodPatch, "/api/v1/agent-orders/"+orderID.String()+"/status", strings.NewReader(`{"status":"preparing"}`)), orderID.String())
	resp := httptest.NewRecorder()
	AgentUpdateStatus(svc, nil).ServeHTTP(resp, authed(req, dealerID))

	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "preparing", svc.advanceInput.Status)
	assert.Equal(t, dealerID, svc.advanceInput.DealerID)
	assert.Equal(t, orderID, svc.advanceInput.OrderID)
}

func TestAgentUpdateStatusRequiresStatus(t *testing.T) {
	orderID := uuid.New()
	req := withOrderParam(httptest.NewRequest(http.MethodPatch, "/api/v1/agent-orders/"+orderID.String()+"/status", strings.NewReader(`{}`)), orderID.String())
	resp := httptest.NewRecorder()
	AgentUpdateStatus(&stubOrdersService{}, nil).ServeHTTP(resp, authed(req, uuid.New()))
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestAgentListsAndDetail(t *testing.T) {
	dealerID := uuid.New()
	svc := &stubOrdersService{}

	resp := httptest.NewRecorder()
	AgentAvailable(svc, nil).ServeHTTP(resp, authed(httptest.NewRequest(http.MethodGet, "/api/v1/agent-orders/available", nil), dealerID))
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `"available_orders":[]`)

	resp = httptest.NewRecorder()
	AgentMyOrders(svc, nil).ServeHTTP(resp, authed(httptest.NewRequest(http.MethodGet, "/api/v1/agent-orders/my-orders", nil), dealerID))
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `"orders":[]`)

	orderID := uuid.New()
	req := withOrderParam(httptest.NewRequest(http.MethodGet, "/api/v1/agent-orders/"+orderID.String(), nil), orderID.String())
	resp = httptest.NewRecorder()
	AgentDetail(svc, nil).ServeHTTP(resp, authed(req, dealerID))
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), orderID.String())
}
