package payments

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mtaanigas/fulfillment-backend/internal/orders"
	"github.com/mtaanigas/fulfillment-backend/internal/paymentmethods"
	"github.com/mtaanigas/fulfillment-backend/pkg/config"
	"github.com/mtaanigas/fulfillment-backend/pkg/db/models"
	"github.com/mtaanigas/fulfillment-backend/pkg/enums"
	pkgerrors "github.com/mtaanigas/fulfillment-backend/pkg/errors"
	"github.com/mtaanigas/fulfillment-backend/pkg/logger"
	"github.com/mtaanigas/fulfillment-backend/pkg/metrics"
	"github.com/mtaanigas/fulfillment-backend/pkg/outbox"
	"github.com/mtaanigas/fulfillment-backend/pkg/outbox/payloads"
	"github.com/mtaanigas/fulfillment-backend/pkg/security"
)

const (
	// CodeLength is the number of digits in a simulation code.
	CodeLength = 4

	DefaultCodeTTL     = 10 * time.Minute
	DefaultMaxAttempts = 3

	historyLimit = 100
	pendingLimit = 200

	supersededReason = "superseded by a newer payment attempt"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Service reconciles simulated payments with their orders.
type Service interface {
	Initiate(ctx context.Context, input InitiateInput) (*InitiateResult, error)
	VerifyCode(ctx context.Context, input VerifyCodeInput) (*CompletionResult, error)
	GetOrderPaymentStatus(ctx context.Context, customerID, orderID uuid.UUID) (*OrderPaymentStatus, error)
	ListHistory(ctx context.Context, customerID uuid.UUID) ([]PaymentDTO, error)

	ListPending(ctx context.Context) ([]PaymentDTO, error)
	AdminConfirm(ctx context.Context, adminID, paymentID uuid.UUID) (*CompletionResult, error)
	AdminReject(ctx context.Context, adminID, paymentID uuid.UUID, reason string) (*CompletionResult, error)
	Refund(ctx context.Context, adminID, paymentID uuid.UUID, reason *string) (*CompletionResult, error)
}

// InitiateInput starts a simulated payment for an order.
type InitiateInput struct {
	CustomerID      uuid.UUID
	OrderID         uuid.UUID
	PaymentMethodID uuid.UUID
}

// VerifyCodeInput submits the code shown to the customer.
type VerifyCodeInput struct {
	CustomerID uuid.UUID
	PaymentID  uuid.UUID
	Code       string
}

// ServiceParams wires the payment service.
type ServiceParams struct {
	Repo     Repository
	Orders   orders.Repository
	Methods  paymentmethods.Repository
	TxRunner txRunner
	Outbox   outboxPublisher
	Metrics  *metrics.OrderMetrics
	Logger   *logger.Logger
	Config   config.PaymentsConfig
	Now      func() time.Time
}

type service struct {
	repo     Repository
	orders   orders.Repository
	methods  paymentmethods.Repository
	txRunner txRunner
	outbox   outboxPublisher
	metrics  *metrics.OrderMetrics
	logg     *logger.Logger
	cfg      config.PaymentsConfig
	now      func() time.Time
}

// NewService builds the payment service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "payment repository required")
	}
	if params.Orders == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "orders repository required")
	}
	if params.Methods == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "payment method repository required")
	}
	if params.TxRunner == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "transaction runner required")
	}
	if params.Outbox == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "outbox publisher required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "logger required")
	}
	cfg := params.Config
	if cfg.CodeTTL <= 0 {
		cfg.CodeTTL = DefaultCodeTTL
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultMaxAttempts
	}
	now := params.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &service{
		repo:     params.Repo,
		orders:   params.Orders,
		methods:  params.Methods,
		txRunner: params.TxRunner,
		outbox:   params.Outbox,
		metrics:  params.Metrics,
		logg:     params.Logger,
		cfg:      cfg,
		now:      now,
	}, nil
}

func (s *service) Initiate(ctx context.Context, input InitiateInput) (*InitiateResult, error) {
	if input.CustomerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if input.OrderID == uuid.Nil || input.PaymentMethodID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "Order ID and payment method are required")
	}

	code, err := security.GenerateNumericCode(CodeLength)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate verification code")
	}
	hash, err := security.HashSecret(code, s.cfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash verification code")
	}

	now := s.now()
	var payment *models.Payment
	err = s.txRunner.WithTx(ctx, func(tx *gorm.DB) error {
		orderRepo := s.orders.WithTx(tx)
		order, err := orderRepo.FindForUpdate(ctx, input.OrderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errOrderNotFound()
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}
		if order.CustomerID != input.CustomerID {
			return errOrderNotFound()
		}
		if err := payableOrder(order); err != nil {
			return err
		}

		method, err := s.methods.WithTx(tx).FindOwned(ctx, input.CustomerID, input.PaymentMethodID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "Payment method not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load payment method")
		}
		if !method.Type.IsStorable() {
			return pkgerrors.New(pkgerrors.CodeValidation, "Payment method cannot be used for online payment")
		}

		txID, err := newTransactionID(method.Type, now)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate transaction id")
		}

		paymentRepo := s.repo.WithTx(tx)
		if _, err := paymentRepo.SupersedePending(ctx, order.ID, supersededReason, now); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "supersede open payments")
		}

		methodID := method.ID
		payment = &models.Payment{
			OrderID:             order.ID,
			CustomerID:          input.CustomerID,
			PaymentMethodID:     &methodID,
			Method:              method.Type,
			Amount:              order.TotalAmount,
			Status:              enums.PaymentStatusSimulationPending,
			TransactionID:       txID,
			SimulationCodeHash:  hash,
			SimulationExpiresAt: now.Add(s.cfg.CodeTTL),
			CreatedAt:           now,
			UpdatedAt:           now,
		}
		switch method.Type {
		case enums.PaymentMethodMpesa:
			payment.PhoneNumber = method.PhoneNumber
		case enums.PaymentMethodCard:
			payment.CardLast4 = method.LastFour
			brand := method.Provider
			payment.CardBrand = &brand
		}
		if err := paymentRepo.Create(ctx, payment); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create payment")
		}

		if err := orderRepo.UpdateFields(ctx, order.ID, map[string]any{
			"payment_method": method.Type,
			"updated_at":     now,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record order payment method")
		}

		return s.emit(ctx, tx, enums.EventPaymentInitiated, payment, customerActorRef(input.CustomerID), "", now)
	})
	if err != nil {
		return nil, err
	}

	logCtx := s.logg.WithFields(ctx, map[string]any{
		"payment_id": payment.ID.String(),
		"order_id":   payment.OrderID.String(),
		"method":     payment.Method.String(),
	})
	s.logg.Info(logCtx, "payment.initiated")

	return &InitiateResult{
		PaymentID:      payment.ID,
		OrderID:        payment.OrderID,
		TransactionID:  payment.TransactionID,
		Method:         payment.Method,
		Amount:         payment.Amount,
		Status:         payment.Status,
		SimulationCode: code,
		ExpiresIn:      int(s.cfg.CodeTTL / time.Second),
		ExpiresAt:      payment.SimulationExpiresAt,
	}, nil
}

// VerifyCode checks a simulation code. A wrong code still commits the
// attempt increment, so the caller sees the error only after the transaction.
func (s *service) VerifyCode(ctx context.Context, input VerifyCodeInput) (*CompletionResult, error) {
	if input.CustomerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	code := strings.TrimSpace(input.Code)
	if input.PaymentID == uuid.Nil || code == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "Payment ID and verification code are required")
	}

	now := s.now()
	logCtx := s.logg.WithFields(ctx, map[string]any{
		"payment_id":  input.PaymentID.String(),
		"customer_id": input.CustomerID.String(),
	})

	var (
		result    *CompletionResult
		rejection error
	)
	err := s.txRunner.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		payment, err := repo.FindOwnedForUpdate(ctx, input.CustomerID, input.PaymentID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errPaymentNotFound()
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load payment")
		}
		if payment.Status != enums.PaymentStatusSimulationPending {
			return pkgerrors.New(pkgerrors.CodeConflict, "Payment is not awaiting verification")
		}
		if now.After(payment.SimulationExpiresAt) {
			s.metrics.IncVerification(metrics.VerificationExpired)
			return pkgerrors.New(pkgerrors.CodeConflict, "Verification code has expired")
		}
		if payment.VerificationAttempts >= s.cfg.MaxAttempts {
			s.metrics.IncVerification(metrics.VerificationExhausted)
			return pkgerrors.New(pkgerrors.CodeConflict, "Maximum verification attempts exceeded")
		}

		ok, err := security.VerifySecret(code, payment.SimulationCodeHash)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify code")
		}
		if !ok {
			if err := repo.IncrementAttempts(ctx, payment.ID, now); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record verification attempt")
			}
			remaining := s.cfg.MaxAttempts - (payment.VerificationAttempts + 1)
			if remaining < 0 {
				remaining = 0
			}
			s.metrics.IncVerification(metrics.VerificationInvalid)
			rejection = pkgerrors.New(pkgerrors.CodePrecondition, "Invalid verification code").
				WithDetails(map[string]any{"attempts_remaining": remaining})
			return nil
		}

		note := fmt.Sprintf("Payment completed via %s", payment.Method)
		result, err = s.complete(ctx, tx, payment, enums.PaymentStatusSimulationPending, paymentActor(payment.ID), customerActorRef(input.CustomerID), note)
		return err
	})
	if err != nil {
		return nil, err
	}
	if rejection != nil {
		s.logg.Warn(logCtx, "payment.verification_rejected")
		return nil, rejection
	}

	s.metrics.IncVerification(metrics.VerificationPaid)
	s.logg.Info(s.logg.WithOrderID(logCtx, result.OrderID.String()), "payment.verified")
	return result, nil
}

// complete marks the payment paid and reconciles the order. The order is
// confirmed only when it has not moved past pending.
func (s *service) complete(ctx context.Context, tx *gorm.DB, payment *models.Payment, from enums.PaymentStatus, historyActor string, actor *outbox.ActorRef, note string) (*CompletionResult, error) {
	now := s.now()
	orderRepo := s.orders.WithTx(tx)
	order, err := orderRepo.FindForUpdate(ctx, payment.OrderID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	if order.Status == enums.OrderStatusCancelled {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "Order has been cancelled")
	}
	if order.PaymentStatus == enums.OrderPaymentStatusPaid {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "Order is already paid")
	}

	ok, err := s.repo.WithTx(tx).UpdateStatus(ctx, payment.ID, from, map[string]any{
		"status":       enums.PaymentStatusPaid,
		"completed_at": now,
		"updated_at":   now,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark payment paid")
	}
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "Payment changed while it was being verified")
	}
	payment.Status = enums.PaymentStatusPaid
	payment.CompletedAt = &now

	orderStatus := order.Status
	if order.Status == enums.OrderStatusPending || order.Status == enums.OrderStatusPendingPayment {
		moved, err := orderRepo.UpdateStatus(ctx, order.ID, order.Status, map[string]any{
			"status":         enums.OrderStatusConfirmed,
			"payment_status": enums.OrderPaymentStatusPaid,
			"updated_at":     now,
		})
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "confirm order")
		}
		if !moved {
			return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "Order changed while payment was being verified")
		}
		orderStatus = enums.OrderStatusConfirmed
	} else if err := orderRepo.UpdateFields(ctx, order.ID, map[string]any{
		"payment_status": enums.OrderPaymentStatusPaid,
		"updated_at":     now,
	}); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark order paid")
	}

	if err := orderRepo.AppendHistory(ctx, &models.OrderStatusHistory{
		OrderID:   order.ID,
		Status:    orderStatus,
		ChangedBy: historyActor,
		Note:      &note,
		CreatedAt: now,
	}); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "append status history")
	}
	if err := s.emit(ctx, tx, enums.EventPaymentCompleted, payment, actor, "", now); err != nil {
		return nil, err
	}

	return &CompletionResult{
		PaymentID:     payment.ID,
		OrderID:       order.ID,
		TransactionID: payment.TransactionID,
		Status:        payment.Status,
		OrderStatus:   orderStatus,
		PaymentStatus: enums.OrderPaymentStatusPaid,
	}, nil
}

func (s *service) GetOrderPaymentStatus(ctx context.Context, customerID, orderID uuid.UUID) (*OrderPaymentStatus, error) {
	if customerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errOrderNotFound()
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	if order.CustomerID != customerID {
		return nil, errOrderNotFound()
	}

	status := &OrderPaymentStatus{
		OrderID:       order.ID,
		Status:        string(enums.OrderPaymentStatusPending),
		PaymentStatus: order.PaymentStatus,
	}
	payment, err := s.repo.LatestForOrder(ctx, order.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load payment")
	}
	if payment != nil {
		dto := newPaymentDTO(*payment)
		status.Payment = &dto
		status.Status = string(payment.Status)
	}
	return status, nil
}

func (s *service) ListHistory(ctx context.Context, customerID uuid.UUID) ([]PaymentDTO, error) {
	if customerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	rows, err := s.repo.ListByCustomer(ctx, customerID, historyLimit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list payments")
	}
	return newPaymentDTOs(rows), nil
}

func (s *service) ListPending(ctx context.Context) ([]PaymentDTO, error) {
	rows, err := s.repo.ListAwaiting(ctx, pendingLimit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list pending payments")
	}
	return newPaymentDTOs(rows), nil
}

// AdminConfirm settles an open payment without a code, ignoring expiry and
// the attempt cap.
func (s *service) AdminConfirm(ctx context.Context, adminID, paymentID uuid.UUID) (*CompletionResult, error) {
	var result *CompletionResult
	err := s.txRunner.WithTx(ctx, func(tx *gorm.DB) error {
		payment, err := s.loadAwaiting(ctx, tx, paymentID)
		if err != nil {
			return err
		}
		note := fmt.Sprintf("Payment confirmed by admin via %s", payment.Method)
		result, err = s.complete(ctx, tx, payment, payment.Status, adminActor(adminID), adminActorRef(adminID), note)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.logg.Info(s.adminLogCtx(ctx, adminID, paymentID), "payment.admin_confirmed")
	return result, nil
}

func (s *service) AdminReject(ctx context.Context, adminID, paymentID uuid.UUID, reason string) (*CompletionResult, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "Rejection reason is required")
	}

	var result *CompletionResult
	err := s.txRunner.WithTx(ctx, func(tx *gorm.DB) error {
		payment, err := s.loadAwaiting(ctx, tx, paymentID)
		if err != nil {
			return err
		}
		now := s.now()
		ok, err := s.repo.WithTx(tx).UpdateStatus(ctx, payment.ID, payment.Status, map[string]any{
			"status":         enums.PaymentStatusFailed,
			"failure_reason": reason,
			"updated_at":     now,
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark payment failed")
		}
		if !ok {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "Payment changed while it was being rejected")
		}
		payment.Status = enums.PaymentStatusFailed
		payment.FailureReason = &reason

		orderRepo := s.orders.WithTx(tx)
		order, err := orderRepo.FindForUpdate(ctx, payment.OrderID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}
		if order.PaymentStatus == enums.OrderPaymentStatusPending {
			if err := orderRepo.UpdateFields(ctx, order.ID, map[string]any{
				"payment_status": enums.OrderPaymentStatusFailed,
				"updated_at":     now,
			}); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark order payment failed")
			}
			order.PaymentStatus = enums.OrderPaymentStatusFailed
		}
		if err := s.emit(ctx, tx, enums.EventPaymentFailed, payment, adminActorRef(adminID), reason, now); err != nil {
			return err
		}
		result = &CompletionResult{
			PaymentID:     payment.ID,
			OrderID:       order.ID,
			TransactionID: payment.TransactionID,
			Status:        payment.Status,
			OrderStatus:   order.Status,
			PaymentStatus: order.PaymentStatus,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logg.Info(s.adminLogCtx(ctx, adminID, paymentID), "payment.admin_rejected")
	return result, nil
}

func (s *service) Refund(ctx context.Context, adminID, paymentID uuid.UUID, reason *string) (*CompletionResult, error) {
	var result *CompletionResult
	err := s.txRunner.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		payment, err := repo.FindForUpdate(ctx, paymentID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errPaymentNotFound()
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load payment")
		}
		if payment.Status != enums.PaymentStatusPaid {
			return pkgerrors.New(pkgerrors.CodeConflict, "Only paid payments can be refunded")
		}

		now := s.now()
		ok, err := repo.UpdateStatus(ctx, payment.ID, enums.PaymentStatusPaid, map[string]any{
			"status":      enums.PaymentStatusRefunded,
			"refunded_at": now,
			"updated_at":  now,
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark payment refunded")
		}
		if !ok {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "Payment changed while it was being refunded")
		}
		payment.Status = enums.PaymentStatusRefunded
		payment.RefundedAt = &now

		orderRepo := s.orders.WithTx(tx)
		order, err := orderRepo.FindForUpdate(ctx, payment.OrderID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}
		if err := orderRepo.UpdateFields(ctx, order.ID, map[string]any{
			"payment_status": enums.OrderPaymentStatusRefunded,
			"updated_at":     now,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark order refunded")
		}

		note := "Payment refunded"
		detail := ""
		if reason != nil && strings.TrimSpace(*reason) != "" {
			detail = strings.TrimSpace(*reason)
			note = note + ": " + detail
		}
		if err := orderRepo.AppendHistory(ctx, &models.OrderStatusHistory{
			OrderID:   order.ID,
			Status:    order.Status,
			ChangedBy: adminActor(adminID),
			Note:      &note,
			CreatedAt: now,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "append status history")
		}
		if err := s.emit(ctx, tx, enums.EventPaymentRefunded, payment, adminActorRef(adminID), detail, now); err != nil {
			return err
		}
		result = &CompletionResult{
			PaymentID:     payment.ID,
			OrderID:       order.ID,
			TransactionID: payment.TransactionID,
			Status:        payment.Status,
			OrderStatus:   order.Status,
			PaymentStatus: enums.OrderPaymentStatusRefunded,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logg.Info(s.adminLogCtx(ctx, adminID, paymentID), "payment.refunded")
	return result, nil
}

func (s *service) loadAwaiting(ctx context.Context, tx *gorm.DB, paymentID uuid.UUID) (*models.Payment, error) {
	payment, err := s.repo.WithTx(tx).FindForUpdate(ctx, paymentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errPaymentNotFound()
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load payment")
	}
	switch payment.Status {
	case enums.PaymentStatusPendingPayment, enums.PaymentStatusSimulationPending:
		return payment, nil
	default:
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "Payment is not awaiting verification")
	}
}

func (s *service) emit(ctx context.Context, tx *gorm.DB, eventType enums.OutboxEventType, payment *models.Payment, actor *outbox.ActorRef, reason string, now time.Time) error {
	event := outbox.DomainEvent{
		EventType:     eventType,
		AggregateType: enums.AggregatePayment,
		AggregateID:   payment.ID,
		Actor:         actor,
		Data: payloads.PaymentEvent{
			PaymentID:     payment.ID,
			OrderID:       payment.OrderID,
			CustomerID:    payment.CustomerID,
			Method:        payment.Method,
			Amount:        payment.Amount,
			Status:        payment.Status,
			TransactionID: payment.TransactionID,
			Reason:        reason,
			OccurredAt:    now,
		},
		OccurredAt: now,
	}
	if err := s.outbox.Emit(ctx, tx, event); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "emit "+string(eventType))
	}
	return nil
}

func (s *service) adminLogCtx(ctx context.Context, adminID, paymentID uuid.UUID) context.Context {
	ctx = s.logg.WithUserID(ctx, adminID.String())
	ctx = s.logg.WithActorRole(ctx, enums.UserRoleAdmin.String())
	return s.logg.WithPaymentID(ctx, paymentID.String())
}

func payableOrder(order *models.Order) error {
	switch {
	case order.Status == enums.OrderStatusCancelled:
		return pkgerrors.New(pkgerrors.CodeConflict, "Cannot pay for a cancelled order")
	case order.PaymentStatus == enums.OrderPaymentStatusPaid:
		return pkgerrors.New(pkgerrors.CodeConflict, "Order is already paid")
	case order.PaymentStatus == enums.OrderPaymentStatusRefunded:
		return pkgerrors.New(pkgerrors.CodeConflict, "Order payment has been refunded")
	}
	return nil
}

// newTransactionID builds MPESA_<ms>_<ref> or CARD_<ms>_<ref>.
func newTransactionID(method enums.PaymentMethodType, now time.Time) (string, error) {
	ref, err := security.GenerateReference(6)
	if err != nil {
		return "", err
	}
	prefix := "COD"
	switch method {
	case enums.PaymentMethodMpesa:
		prefix = "MPESA"
	case enums.PaymentMethodCard:
		prefix = "CARD"
	}
	return fmt.Sprintf("%s_%d_%s", prefix, now.UnixMilli(), ref), nil
}

func errOrderNotFound() error {
	return pkgerrors.New(pkgerrors.CodeNotFound, "Order not found")
}

func errPaymentNotFound() error {
	return pkgerrors.New(pkgerrors.CodeNotFound, "Payment not found")
}

func paymentActor(id uuid.UUID) string {
	return "payment:" + id.String()
}

func adminActor(id uuid.UUID) string {
	return "admin:" + id.String()
}

func customerActorRef(id uuid.UUID) *outbox.ActorRef {
	return &outbox.ActorRef{UserID: id, Role: enums.UserRoleClient.String()}
}

func adminActorRef(id uuid.UUID) *outbox.ActorRef {
	return &outbox.ActorRef{UserID: id, Role: enums.UserRoleAdmin.String()}
}
