package payments

import (
	"io"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/mtaanigas/fulfillment-backend/internal/cart"
	"github.com/mtaanigas/fulfillment-backend/internal/dealers"
	"github.com/mtaanigas/fulfillment-backend/internal/orders"
	"github.com/mtaanigas/fulfillment-backend/internal/paymentmethods"
	product "github.com/mtaanigas/fulfillment-backend/internal/products"
	"github.com/mtaanigas/fulfillment-backend/internal/users"
	"github.com/mtaanigas/fulfillment-backend/pkg/config"
	"github.com/mtaanigas/fulfillment-backend/pkg/db/dbtest"
	"github.com/mtaanigas/fulfillment-backend/pkg/db/models"
	"github.com/mtaanigas/fulfillment-backend/pkg/enums"
	pkgerrors "github.com/mtaanigas/fulfillment-backend/pkg/errors"
	"github.com/mtaanigas/fulfillment-backend/pkg/logger"
	"github.com/mtaanigas/fulfillment-backend/pkg/metrics"
	"github.com/mtaanigas/fulfillment-backend/pkg/outbox"
)

var testPaymentsConfig = config.PaymentsConfig{
	CodeTTL:          10 * time.Minute,
	MaxAttempts:      3,
	ArgonMemoryKB:    1024,
	ArgonTime:        1,
	ArgonParallelism: 1,
	ArgonSaltLen:     16,
	ArgonKeyLen:      32,
}

type harness struct {
	conn     *gorm.DB
	svc      Service
	orders   orders.Service
	methods  paymentmethods.Service
	reg      *prometheus.Registry
	clock    time.Time
	customer *models.User
	dealer   *models.User
	admin    *models.User
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	conn := dbtest.Open(t)
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	h := &harness{
		conn:  conn,
		reg:   prometheus.NewRegistry(),
		clock: time.Date(2026, 5, 4, 9, 0, 0, 0, time.UTC),
	}
	now := func() time.Time { return h.clock }
	orderMetrics := metrics.NewOrderMetrics(h.reg)
	publisher := outbox.NewService(outbox.NewRepository(conn), logg)
	client := dbtest.Client(conn)

	usersRepo := users.NewRepository(conn)
	matcher, err := dealers.NewService(usersRepo, dealers.NewRepository(conn), logg)
	require.NoError(t, err)
	h.orders, err = orders.NewService(orders.ServiceParams{
		Repo:      orders.NewRepository(conn),
		Cart:      cart.NewRepository(conn),
		Inventory: product.NewInventory(product.NewRepository(conn)),
		Matcher:   matcher,
		Users:     usersRepo,
		Tx:        client,
		Outbox:    publisher,
		Metrics:   orderMetrics,
		Logger:    logg,
		Now:       now,
	})
	require.NoError(t, err)

	methodRepo := paymentmethods.NewRepository(conn)
	h.methods, err = paymentmethods.NewService(paymentmethods.ServiceParams{
		Repo:     methodRepo,
		TxRunner: client,
		Logger:   logg,
		Now:      now,
	})
	require.NoError(t, err)

	h.svc, err = NewService(ServiceParams{
		Repo:     NewRepository(conn),
		Orders:   orders.NewRepository(conn),
		Methods:  methodRepo,
		TxRunner: client,
		Outbox:   publisher,
		Metrics:  orderMetrics,
		Logger:   logg,
		Config:   testPaymentsConfig,
		Now:      now,
	})
	require.NoError(t, err)

	h.customer = dbtest.CreateUser(t, conn, enums.UserRoleClient, "Kasarani, Nairobi")
	h.dealer = dbtest.CreateUser(t, conn, enums.UserRoleDealer, "Kasarani")
	h.admin = dbtest.CreateUser(t, conn, enums.UserRoleAdmin, "")
	return h
}

// placeOrder checks out a two-cylinder cart and saves an M-Pesa method.
func (h *harness) placeOrder(t *testing.T) (uuid.UUID, uuid.UUID) {
	t.Helper()
	p := dbtest.CreateProduct(t, h.conn, "13kg Refill", "1250.00", 10)
	dbtest.AddToCart(t, h.conn, h.customer.ID, p.ID, 2)
	res, err := h.orders.CreateFromCart(t.Context(), orders.CreateOrderInput{
		CustomerID:       h.customer.ID,
		DeliveryLocation: "Kasarani, Nairobi",
	})
	require.NoError(t, err)

	methods, err := h.methods.List(t.Context(), h.customer.ID)
	require.NoError(t, err)
	if len(methods) > 0 {
		return res.OrderID, methods[0].ID
	}
	method, err := h.methods.AddMpesa(t.Context(), h.customer.ID, "0712345678")
	require.NoError(t, err)
	return res.OrderID, method.ID
}

func (h *harness) initiate(t *testing.T) *InitiateResult {
	t.Helper()
	orderID, methodID := h.placeOrder(t)
	res, err := h.svc.Initiate(t.Context(), InitiateInput{
		CustomerID:      h.customer.ID,
		OrderID:         orderID,
		PaymentMethodID: methodID,
	})
	require.NoError(t, err)
	return res
}

func (h *harness) payment(t *testing.T, id uuid.UUID) models.Payment {
	t.Helper()
	var p models.Payment
	require.NoError(t, h.conn.First(&p, "id = ?", id).Error)
	return p
}

func (h *harness) order(t *testing.T, id uuid.UUID) models.Order {
	t.Helper()
	var o models.Order
	require.NoError(t, h.conn.First(&o, "id = ?", id).Error)
	return o
}

func (h *harness) verifications(t *testing.T, outcome string) float64 {
	t.Helper()
	families, err := h.reg.Gather()
	require.NoError(t, err)
	for _, family := range families {
		if family.GetName() != "mtaani_payments_verifications_total" {
			continue
		}
		for _, metric := range family.GetMetric() {
			for _, label := range metric.GetLabel() {
				if label.GetName() == "outcome" && label.GetValue() == outcome {
					return metric.GetCounter().GetValue()
				}
			}
		}
	}
	return 0
}

func requireCode(t *testing.T, err error, code pkgerrors.Code) *pkgerrors.Error {
	t.Helper()
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed, "expected typed error, got %v", err)
	require.Equal(t, code, typed.Code(), typed.Message())
	return typed
}

func wrongCode(code string) string {
	if code == "0000" {
		return "1111"
	}
	return "0000"
}

func TestInitiateCreatesSimulation(t *testing.T) {
	h := newHarness(t)
	res := h.initiate(t)

	assert.Len(t, res.SimulationCode, CodeLength)
	assert.Equal(t, 600, res.ExpiresIn)
	assert.True(t, strings.HasPrefix(res.TransactionID, "MPESA_"))
	assert.Equal(t, "2500", res.Amount.String())
	assert.Equal(t, enums.PaymentStatusSimulationPending, res.Status)

	stored := h.payment(t, res.PaymentID)
	assert.NotEqual(t, res.SimulationCode, stored.SimulationCodeHash)
	assert.True(t, strings.HasPrefix(stored.SimulationCodeHash, "$argon2id$"))
	require.NotNil(t, stored.PhoneNumber)
	assert.Equal(t, "254712345678", *stored.PhoneNumber)
	assert.WithinDuration(t, h.clock.Add(10*time.Minute), stored.SimulationExpiresAt, time.Second)

	order := h.order(t, res.OrderID)
	assert.Equal(t, enums.PaymentMethodMpesa, order.PaymentMethod)
	assert.Equal(t, enums.OrderPaymentStatusPending, order.PaymentStatus)

	var events int64
	require.NoError(t, h.conn.Model(&models.OutboxEvent{}).
		Where("aggregate_id = ? AND event_type = ?", res.PaymentID, enums.EventPaymentInitiated).
		Count(&events).Error)
	assert.EqualValues(t, 1, events)
}

func TestInitiateRejectsForeignOrderAndMethod(t *testing.T) {
	h := newHarness(t)
	orderID, methodID := h.placeOrder(t)
	stranger := dbtest.CreateUser(t, h.conn, enums.UserRoleClient, "Roysambu")

	_, err := h.svc.Initiate(t.Context(), InitiateInput{CustomerID: stranger.ID, OrderID: orderID, PaymentMethodID: methodID})
	typed := requireCode(t, err, pkgerrors.CodeNotFound)
	assert.Equal(t, "Order not found", typed.Message())

	_, err = h.svc.Initiate(t.Context(), InitiateInput{CustomerID: h.customer.ID, OrderID: orderID, PaymentMethodID: uuid.New()})
	typed = requireCode(t, err, pkgerrors.CodeNotFound)
	assert.Equal(t, "Payment method not found", typed.Message())

	_, err = h.svc.Initiate(t.Context(), InitiateInput{CustomerID: h.customer.ID})
	requireCode(t, err, pkgerrors.CodeValidation)
}

func TestInitiateSupersedesOpenSimulation(t *testing.T) {
	h := newHarness(t)
	first := h.initiate(t)
	methods, err := h.methods.List(t.Context(), h.customer.ID)
	require.NoError(t, err)

	second, err := h.svc.Initiate(t.Context(), InitiateInput{
		CustomerID:      h.customer.ID,
		OrderID:         first.OrderID,
		PaymentMethodID: methods[0].ID,
	})
	require.NoError(t, err)
	assert.NotEqual(t, first.TransactionID, second.TransactionID)

	old := h.payment(t, first.PaymentID)
	assert.Equal(t, enums.PaymentStatusFailed, old.Status)

	_, err = h.svc.VerifyCode(t.Context(), VerifyCodeInput{CustomerID: h.customer.ID, PaymentID: first.PaymentID, Code: first.SimulationCode})
	typed := requireCode(t, err, pkgerrors.CodeConflict)
	assert.Equal(t, "Payment is not awaiting verification", typed.Message())
}

func TestVerifyCodeCompletesPaymentAndConfirmsOrder(t *testing.T) {
	h := newHarness(t)
	res := h.initiate(t)
	h.clock = h.clock.Add(5 * time.Minute)

	out, err := h.svc.VerifyCode(t.Context(), VerifyCodeInput{CustomerID: h.customer.ID, PaymentID: res.PaymentID, Code: res.SimulationCode})
	require.NoError(t, err)
	assert.Equal(t, enums.PaymentStatusPaid, out.Status)
	assert.Equal(t, enums.OrderStatusConfirmed, out.OrderStatus)

	stored := h.payment(t, res.PaymentID)
	assert.Equal(t, enums.PaymentStatusPaid, stored.Status)
	require.NotNil(t, stored.CompletedAt)

	order := h.order(t, res.OrderID)
	assert.Equal(t, enums.OrderPaymentStatusPaid, order.PaymentStatus)
	assert.Equal(t, enums.OrderStatusConfirmed, order.Status)
	assert.Nil(t, order.DealerID)

	var history []models.OrderStatusHistory
	require.NoError(t, h.conn.Where("order_id = ?", res.OrderID).Order("seq ASC").Find(&history).Error)
	require.Len(t, history, 2)
	assert.Equal(t, "payment:"+res.PaymentID.String(), history[1].ChangedBy)
	require.NotNil(t, history[1].Note)
	assert.Equal(t, "Payment completed via mpesa", *history[1].Note)

	assert.Equal(t, float64(1), h.verifications(t, metrics.VerificationPaid))

	// A prepaid order is still offered to dealers.
	assert.True(t, order.AvailableToAgents)
	assert.Equal(t, enums.AssignmentStatusAvailable, order.AssignmentStatus)
	available, err := h.orders.ListAvailable(t.Context(), h.dealer.ID)
	require.NoError(t, err)
	require.Equal(t, 1, available.Count)
	assert.Equal(t, res.OrderID, available.AvailableOrders[0].ID)
	assert.Equal(t, enums.OrderStatusConfirmed, available.AvailableOrders[0].Status)

	accepted, err := h.orders.Accept(t.Context(), res.OrderID, h.dealer.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusConfirmed, accepted.Order.Status)

	_, err = h.svc.Initiate(t.Context(), InitiateInput{CustomerID: h.customer.ID, OrderID: res.OrderID, PaymentMethodID: *stored.PaymentMethodID})
	typed := requireCode(t, err, pkgerrors.CodeConflict)
	assert.Equal(t, "Order is already paid", typed.Message())
}

func TestVerifyCodeKeepsClaimedOrderStatus(t *testing.T) {
	h := newHarness(t)
	res := h.initiate(t)
	_, err := h.orders.Accept(t.Context(), res.OrderID, h.dealer.ID)
	require.NoError(t, err)
	_, err = h.orders.AdvanceStatus(t.Context(), orders.AdvanceStatusInput{OrderID: res.OrderID, DealerID: h.dealer.ID, Status: "preparing"})
	require.NoError(t, err)

	out, err := h.svc.VerifyCode(t.Context(), VerifyCodeInput{CustomerID: h.customer.ID, PaymentID: res.PaymentID, Code: res.SimulationCode})
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusPreparing, out.OrderStatus)

	order := h.order(t, res.OrderID)
	assert.Equal(t, enums.OrderStatusPreparing, order.Status)
	assert.Equal(t, enums.OrderPaymentStatusPaid, order.PaymentStatus)
}

func TestVerifyCodeWrongCodeCommitsAttempt(t *testing.T) {
	h := newHarness(t)
	res := h.initiate(t)
	bad := wrongCode(res.SimulationCode)

	for i, remaining := range []int{2, 1, 0} {
		_, err := h.svc.VerifyCode(t.Context(), VerifyCodeInput{CustomerID: h.customer.ID, PaymentID: res.PaymentID, Code: bad})
		typed := requireCode(t, err, pkgerrors.CodePrecondition)
		assert.Equal(t, "Invalid verification code", typed.Message())
		assert.Equal(t, map[string]any{"attempts_remaining": remaining}, typed.Details())
		assert.Equal(t, i+1, h.payment(t, res.PaymentID).VerificationAttempts)
	}

	_, err := h.svc.VerifyCode(t.Context(), VerifyCodeInput{CustomerID: h.customer.ID, PaymentID: res.PaymentID, Code: res.SimulationCode})
	typed := requireCode(t, err, pkgerrors.CodeConflict)
	assert.Equal(t, "Maximum verification attempts exceeded", typed.Message())

	stored := h.payment(t, res.PaymentID)
	assert.Equal(t, 3, stored.VerificationAttempts)
	assert.Equal(t, enums.PaymentStatusSimulationPending, stored.Status)
	assert.Equal(t, enums.OrderPaymentStatusPending, h.order(t, res.OrderID).PaymentStatus)
	assert.Equal(t, float64(3), h.verifications(t, metrics.VerificationInvalid))
	assert.Equal(t, float64(1), h.verifications(t, metrics.VerificationExhausted))
}

func TestVerifyCodeExpired(t *testing.T) {
	h := newHarness(t)
	res := h.initiate(t)
	h.clock = h.clock.Add(11 * time.Minute)

	_, err := h.svc.VerifyCode(t.Context(), VerifyCodeInput{CustomerID: h.customer.ID, PaymentID: res.PaymentID, Code: res.SimulationCode})
	typed := requireCode(t, err, pkgerrors.CodeConflict)
	assert.Equal(t, "Verification code has expired", typed.Message())

	stored := h.payment(t, res.PaymentID)
	assert.Equal(t, enums.PaymentStatusSimulationPending, stored.Status)
	assert.Equal(t, 0, stored.VerificationAttempts)
}

func TestVerifyCodeOtherCustomer(t *testing.T) {
	h := newHarness(t)
	res := h.initiate(t)
	stranger := dbtest.CreateUser(t, h.conn, enums.UserRoleClient, "Roysambu")

	_, err := h.svc.VerifyCode(t.Context(), VerifyCodeInput{CustomerID: stranger.ID, PaymentID: res.PaymentID, Code: res.SimulationCode})
	requireCode(t, err, pkgerrors.CodeNotFound)
	assert.Equal(t, 0, h.payment(t, res.PaymentID).VerificationAttempts)
}

func TestOrderPaymentStatusAndHistory(t *testing.T) {
	h := newHarness(t)
	orderID, methodID := h.placeOrder(t)

	status, err := h.svc.GetOrderPaymentStatus(t.Context(), h.customer.ID, orderID)
	require.NoError(t, err)
	assert.Equal(t, "pending", status.Status)
	assert.Nil(t, status.Payment)

	res, err := h.svc.Initiate(t.Context(), InitiateInput{CustomerID: h.customer.ID, OrderID: orderID, PaymentMethodID: methodID})
	require.NoError(t, err)

	status, err = h.svc.GetOrderPaymentStatus(t.Context(), h.customer.ID, orderID)
	require.NoError(t, err)
	assert.Equal(t, string(enums.PaymentStatusSimulationPending), status.Status)
	require.NotNil(t, status.Payment)
	assert.Equal(t, res.PaymentID, status.Payment.ID)

	_, err = h.svc.GetOrderPaymentStatus(t.Context(), h.dealer.ID, orderID)
	requireCode(t, err, pkgerrors.CodeNotFound)

	history, err := h.svc.ListHistory(t.Context(), h.customer.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, res.TransactionID, history[0].TransactionID)
}

func TestAdminConfirmIgnoresExpiry(t *testing.T) {
	h := newHarness(t)
	res := h.initiate(t)
	h.clock = h.clock.Add(time.Hour)

	pending, err := h.svc.ListPending(t.Context())
	require.NoError(t, err)
	require.Len(t, pending, 1)

	out, err := h.svc.AdminConfirm(t.Context(), h.admin.ID, res.PaymentID)
	require.NoError(t, err)
	assert.Equal(t, enums.PaymentStatusPaid, out.Status)
	assert.Equal(t, enums.OrderStatusConfirmed, out.OrderStatus)

	_, err = h.svc.AdminConfirm(t.Context(), h.admin.ID, res.PaymentID)
	requireCode(t, err, pkgerrors.CodeConflict)

	pending, err = h.svc.ListPending(t.Context())
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestAdminRejectMarksFailed(t *testing.T) {
	h := newHarness(t)
	res := h.initiate(t)

	_, err := h.svc.AdminReject(t.Context(), h.admin.ID, res.PaymentID, " ")
	requireCode(t, err, pkgerrors.CodeValidation)

	out, err := h.svc.AdminReject(t.Context(), h.admin.ID, res.PaymentID, "Customer reported wrong number")
	require.NoError(t, err)
	assert.Equal(t, enums.PaymentStatusFailed, out.Status)
	assert.Equal(t, enums.OrderPaymentStatusFailed, out.PaymentStatus)

	stored := h.payment(t, res.PaymentID)
	require.NotNil(t, stored.FailureReason)
	assert.Equal(t, "Customer reported wrong number", *stored.FailureReason)
	assert.Equal(t, enums.OrderStatusPending, h.order(t, res.OrderID).Status)
}

func TestRefundPaidPayment(t *testing.T) {
	h := newHarness(t)
	res := h.initiate(t)

	_, err := h.svc.Refund(t.Context(), h.admin.ID, res.PaymentID, nil)
	requireCode(t, err, pkgerrors.CodeConflict)

	_, err = h.svc.VerifyCode(t.Context(), VerifyCodeInput{CustomerID: h.customer.ID, PaymentID: res.PaymentID, Code: res.SimulationCode})
	require.NoError(t, err)

	reason := "Cylinder out of stock"
	out, err := h.svc.Refund(t.Context(), h.admin.ID, res.PaymentID, &reason)
	require.NoError(t, err)
	assert.Equal(t, enums.PaymentStatusRefunded, out.Status)

	stored := h.payment(t, res.PaymentID)
	require.NotNil(t, stored.RefundedAt)
	assert.Equal(t, enums.OrderPaymentStatusRefunded, h.order(t, res.OrderID).PaymentStatus)

	var refunded int64
	require.NoError(t, h.conn.Model(&models.OutboxEvent{}).
		Where("aggregate_id = ? AND event_type = ?", res.PaymentID, enums.EventPaymentRefunded).
		Count(&refunded).Error)
	assert.EqualValues(t, 1, refunded)

	_, err = h.svc.Refund(t.Context(), h.admin.ID, res.PaymentID, nil)
	requireCode(t, err, pkgerrors.CodeConflict)
}
