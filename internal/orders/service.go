package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/mtaanigas/fulfillment-backend/internal/cart"
	"github.com/mtaanigas/fulfillment-backend/internal/dealers"
	"github.com/mtaanigas/fulfillment-backend/pkg/db/models"
	"github.com/mtaanigas/fulfillment-backend/pkg/enums"
	pkgerrors "github.com/mtaanigas/fulfillment-backend/pkg/errors"
	"github.com/mtaanigas/fulfillment-backend/pkg/logger"
	"github.com/mtaanigas/fulfillment-backend/pkg/metrics"
	"github.com/mtaanigas/fulfillment-backend/pkg/outbox"
	"github.com/mtaanigas/fulfillment-backend/pkg/outbox/payloads"
	"github.com/mtaanigas/fulfillment-backend/pkg/types"
)

// DefaultAssignmentWindow is how long a new order stays open to dealers.
const DefaultAssignmentWindow = 24 * time.Hour

// ActorExpirySweep is the history actor used by the assignment-expiry sweep.
const ActorExpirySweep = "system:assignment-expiry"

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
	EmitIfNotExists(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Inventory moves stock inside the caller's transaction.
type Inventory interface {
	Reserve(ctx context.Context, tx *gorm.DB, productID uuid.UUID, qty int) (bool, error)
	Release(ctx context.Context, tx *gorm.DB, productID uuid.UUID, qty int) error
}

type dealerMatcher interface {
	Match(ctx context.Context, tx *gorm.DB, orderID uuid.UUID, ward string) ([]dealers.Match, error)
	Release(ctx context.Context, tx *gorm.DB, orderID uuid.UUID) (int64, error)
}

type userDirectory interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.User, error)
}

// Service is the order lifecycle engine.
type Service interface {
	CreateFromCart(ctx context.Context, input CreateOrderInput) (*CreateOrderResult, error)
	Accept(ctx context.Context, orderID, dealerID uuid.UUID) (*AcceptResult, error)
	AdvanceStatus(ctx context.Context, input AdvanceStatusInput) (*StatusUpdateResult, error)
	Cancel(ctx context.Context, input CancelOrderInput) (*CancelResult, error)

	ListCustomerOrders(ctx context.Context, input ListCustomerOrdersInput) (*CustomerOrderList, error)
	GetCustomerOrder(ctx context.Context, customerID, orderID uuid.UUID) (*OrderDetailDTO, error)
	StatusCounts(ctx context.Context, customerID uuid.UUID) (*StatusCountsResult, error)
	Stats(ctx context.Context, customerID uuid.UUID) (*OrderStats, error)
	ListAvailable(ctx context.Context, dealerID uuid.UUID) (*AvailableOrdersResult, error)
	ListDealerOrders(ctx context.Context, dealerID uuid.UUID) (*DealerOrderList, error)
	GetDealerOrder(ctx context.Context, dealerID, orderID uuid.UUID) (*OrderDetailDTO, error)

	ListExpiredAssignments(ctx context.Context, limit int) ([]uuid.UUID, error)
	ExpireAssignment(ctx context.Context, orderID uuid.UUID) (bool, error)
}

// CreateOrderInput is the checkout request of a customer.
type CreateOrderInput struct {
	CustomerID          uuid.UUID
	DeliveryLocation    string
	PaymentMethod       string
	SpecialInstructions *string
}

// AdvanceStatusInput is a dealer's status change request.
type AdvanceStatusInput struct {
	OrderID  uuid.UUID
	DealerID uuid.UUID
	Status   string
	Note     *string
}

// CancelOrderInput is a customer's cancellation request.
type CancelOrderInput struct {
	OrderID    uuid.UUID
	CustomerID uuid.UUID
	Reason     *string
}

// ServiceParams wires the order service.
type ServiceParams struct {
	Repo             Repository
	Cart             cart.CartRepository
	Inventory        Inventory
	Matcher          dealerMatcher
	Users            userDirectory
	Tx               txRunner
	Outbox           outboxPublisher
	Metrics          *metrics.OrderMetrics
	Logger           *logger.Logger
	AssignmentWindow time.Duration
	Now              func() time.Time
}

type service struct {
	repo      Repository
	cart      cart.CartRepository
	inventory Inventory
	matcher   dealerMatcher
	users     userDirectory
	tx        txRunner
	outbox    outboxPublisher
	metrics   *metrics.OrderMetrics
	logg      *logger.Logger
	window    time.Duration
	now       func() time.Time
}

// NewService builds the order service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if params.Cart == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if params.Inventory == nil {
		return nil, fmt.Errorf("inventory required")
	}
	if params.Matcher == nil {
		return nil, fmt.Errorf("dealer matcher required")
	}
	if params.Users == nil {
		return nil, fmt.Errorf("user directory required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if params.Outbox == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	window := params.AssignmentWindow
	if window <= 0 {
		window = DefaultAssignmentWindow
	}
	now := params.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &service{
		repo:      params.Repo,
		cart:      params.Cart,
		inventory: params.Inventory,
		matcher:   params.Matcher,
		users:     params.Users,
		tx:        params.Tx,
		outbox:    params.Outbox,
		metrics:   params.Metrics,
		logg:      params.Logger,
		window:    window,
		now:       now,
	}, nil
}

func (s *service) CreateFromCart(ctx context.Context, input CreateOrderInput) (*CreateOrderResult, error) {
	if input.CustomerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	location := types.ParseLocation(input.DeliveryLocation)
	if location.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "Delivery location is required")
	}
	method := enums.PaymentMethodCash
	if raw := strings.TrimSpace(input.PaymentMethod); raw != "" {
		parsed, err := enums.ParsePaymentMethodType(strings.ToLower(raw))
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "Invalid payment method. Must be one of: cash, mpesa, card")
		}
		method = parsed
	}

	var result *CreateOrderResult
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		lines, err := s.cart.WithTx(tx).ListLines(ctx, input.CustomerID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
		}
		if len(lines) == 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "Cart is empty")
		}

		now := s.now()
		orderID := uuid.New()
		total := decimal.Zero
		items := make([]models.OrderItem, 0, len(lines))
		for _, line := range lines {
			if !line.IsActive {
				return pkgerrors.New(pkgerrors.CodePrecondition,
					fmt.Sprintf("%s is no longer available", line.Name))
			}
			reserved, err := s.inventory.Reserve(ctx, tx, line.ProductID, line.Quantity)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reserve stock")
			}
			if !reserved {
				return pkgerrors.New(pkgerrors.CodePrecondition,
					fmt.Sprintf("Insufficient stock for %s. Available: %d, Requested: %d", line.Name, line.Stock, line.Quantity))
			}
			lineTotal := line.Price.Mul(decimal.NewFromInt(int64(line.Quantity)))
			total = total.Add(lineTotal)
			items = append(items, models.OrderItem{
				ID:          uuid.New(),
				OrderID:     orderID,
				ProductID:   line.ProductID,
				ProductName: line.Name,
				UnitPrice:   line.Price,
				Quantity:    line.Quantity,
				LineTotal:   lineTotal,
			})
		}

		repo := s.repo.WithTx(tx)
		order := &models.Order{
			ID:                  orderID,
			CustomerID:          input.CustomerID,
			DeliveryLocation:    location.Raw,
			DeliveryWard:        location.Ward,
			SpecialInstructions: input.SpecialInstructions,
			Status:              enums.OrderStatusPending,
			PaymentStatus:       enums.OrderPaymentStatusPending,
			PaymentMethod:       method,
			AssignmentStatus:    enums.AssignmentStatusUnassigned,
			TotalAmount:         total,
		}
		if err := repo.CreateOrder(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
		}
		if err := repo.CreateItems(ctx, items); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order items")
		}
		// The delete blocks behind a concurrent checkout of the same cart; a
		// short count means those lines were already ordered.
		cleared, err := s.cart.WithTx(tx).Clear(ctx, input.CustomerID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear cart")
		}
		if cleared != int64(len(lines)) {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "Cart changed during checkout, reload and retry")
		}

		matches, err := s.matcher.Match(ctx, tx, orderID, location.Ward)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "match dealers")
		}
		expiry := now.Add(s.window)
		if err := repo.MarkAvailable(ctx, orderID, expiry); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "open order to dealers")
		}
		if err := s.appendHistory(ctx, repo, orderID, enums.OrderStatusPending, customerActor(input.CustomerID), strPtr("Order placed")); err != nil {
			return err
		}

		dealerRefs := make([]DealerRef, 0, len(matches))
		dealerIDs := make([]uuid.UUID, 0, len(matches))
		for _, match := range matches {
			dealerRefs = append(dealerRefs, DealerRef{ID: match.DealerID, Name: match.Name})
			dealerIDs = append(dealerIDs, match.DealerID)
		}
		event := outbox.DomainEvent{
			EventType:     enums.EventOrderCreated,
			AggregateType: enums.AggregateOrder,
			AggregateID:   orderID,
			Actor:         &outbox.ActorRef{UserID: input.CustomerID, Role: enums.UserRoleClient.String()},
			Data: payloads.OrderCreatedEvent{
				OrderID:          orderID,
				CustomerID:       input.CustomerID,
				TotalAmount:      total,
				PaymentMethod:    method,
				DeliveryWard:     location.Ward,
				CandidateDealers: dealerIDs,
				AssignmentExpiry: expiry,
			},
			OccurredAt: now,
		}
		if err := s.outbox.Emit(ctx, tx, event); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "emit order created")
		}

		result = &CreateOrderResult{
			Message:          "Order placed successfully",
			OrderID:          orderID,
			TotalAmount:      total,
			Status:           enums.OrderStatusPending,
			PaymentStatus:    enums.OrderPaymentStatusPending,
			DealersAvailable: len(matches),
			CustomerWard:     location.Ward,
			AvailableDealers: dealerRefs,
			AssignmentExpiry: expiry,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncCreated()
	logCtx := s.logg.WithFields(ctx, map[string]any{
		"order_id":          result.OrderID.String(),
		"customer_id":       input.CustomerID.String(),
		"ward":              result.CustomerWard,
		"dealers_available": result.DealersAvailable,
	})
	s.logg.Info(logCtx, "order.created")
	return result, nil
}

func (s *service) Accept(ctx context.Context, orderID, dealerID uuid.UUID) (*AcceptResult, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if dealerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	now := s.now()
	logCtx := s.logg.WithDealerID(s.logg.WithOrderID(ctx, orderID.String()), dealerID.String())
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		claimed, err := repo.Claim(ctx, orderID, dealerID, now)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "claim order")
		}
		if !claimed {
			return pkgerrors.New(pkgerrors.CodeNotFound, "Order not available or already taken")
		}
		if _, err := s.matcher.Release(ctx, tx, orderID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear dealer candidates")
		}
		if err := s.appendHistory(ctx, repo, orderID, enums.OrderStatusConfirmed, dealerActor(dealerID), nil); err != nil {
			return err
		}
		order, err := repo.FindForUpdate(ctx, orderID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload order")
		}
		event := outbox.DomainEvent{
			EventType:     enums.EventOrderClaimed,
			AggregateType: enums.AggregateOrder,
			AggregateID:   orderID,
			Actor:         &outbox.ActorRef{UserID: dealerID, Role: enums.UserRoleDealer.String()},
			Data: payloads.OrderClaimedEvent{
				OrderID:    orderID,
				CustomerID: order.CustomerID,
				DealerID:   dealerID,
				ClaimedAt:  now,
			},
			OccurredAt: now,
		}
		if err := s.outbox.Emit(ctx, tx, event); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "emit order claimed")
		}
		return nil
	})
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil && typed.Code() == pkgerrors.CodeNotFound {
			s.metrics.IncClaim(metrics.ClaimLost)
			s.logg.Warn(logCtx, "order.claim_lost")
		}
		return nil, err
	}

	s.metrics.IncClaim(metrics.ClaimWon)
	s.logg.Info(logCtx, "order.claimed")
	return &AcceptResult{
		Message: "Order accepted successfully",
		Order: ClaimedOrderDTO{
			ID:         orderID,
			Status:     enums.OrderStatusConfirmed,
			DealerID:   dealerID,
			AssignedAt: now,
		},
	}, nil
}

func (s *service) AdvanceStatus(ctx context.Context, input AdvanceStatusInput) (*StatusUpdateResult, error) {
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if input.DealerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	target, err := ParseDealerTarget(input.Status)
	if err != nil {
		return nil, err
	}

	now := s.now()
	var from enums.OrderStatus
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := repo.FindForUpdate(ctx, input.OrderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errNotAssigned()
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}
		if order.DealerID == nil || *order.DealerID != input.DealerID {
			return errNotAssigned()
		}
		from = order.Status
		if err := validateTransition(from, target); err != nil {
			return err
		}

		updates := map[string]any{
			"status":     target,
			"updated_at": now,
		}
		switch target {
		case enums.OrderStatusDelivered:
			updates["delivered_at"] = now
		case enums.OrderStatusCancelled:
			updates["cancelled_at"] = now
			updates["available_to_agents"] = false
			if input.Note != nil {
				updates["cancel_reason"] = *input.Note
			}
		}
		updated, err := repo.UpdateStatus(ctx, order.ID, from, updates)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order status")
		}
		if !updated {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "Order status changed concurrently, reload and retry")
		}
		if target == enums.OrderStatusCancelled {
			if err := s.restoreStock(ctx, tx, repo, order.ID); err != nil {
				return err
			}
		}
		if err := s.appendHistory(ctx, repo, order.ID, target, dealerActor(input.DealerID), input.Note); err != nil {
			return err
		}

		event := outbox.DomainEvent{
			EventType:     enums.EventOrderStatusChanged,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Actor:         &outbox.ActorRef{UserID: input.DealerID, Role: enums.UserRoleDealer.String()},
			Data: payloads.OrderStatusChangedEvent{
				OrderID:    order.ID,
				CustomerID: order.CustomerID,
				DealerID:   order.DealerID,
				From:       from,
				To:         target,
				ChangedAt:  now,
			},
			OccurredAt: now,
		}
		if err := s.outbox.Emit(ctx, tx, event); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "emit status changed")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncTransition(from.String(), target.String())
	logCtx := s.logg.WithFields(ctx, map[string]any{
		"order_id":  input.OrderID.String(),
		"dealer_id": input.DealerID.String(),
		"from":      from,
		"to":        target,
	})
	s.logg.Info(logCtx, "order.status_changed")
	return &StatusUpdateResult{
		Message: fmt.Sprintf("Order status updated to %s", target),
		Order: StatusUpdateDTO{
			ID:             input.OrderID,
			PreviousStatus: from,
			Status:         target,
			UpdatedAt:      now,
		},
	}, nil
}

func (s *service) Cancel(ctx context.Context, input CancelOrderInput) (*CancelResult, error) {
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if input.CustomerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	reason := trimmedPtr(input.Reason)

	now := s.now()
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := repo.FindForUpdate(ctx, input.OrderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "Order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}
		if order.CustomerID != input.CustomerID {
			return pkgerrors.New(pkgerrors.CodeNotFound, "Order not found")
		}
		from := order.Status
		if !CanCustomerCancel(from) {
			return pkgerrors.New(pkgerrors.CodePrecondition,
				fmt.Sprintf("Cannot cancel order with status: %s", from))
		}

		updates := map[string]any{
			"status":              enums.OrderStatusCancelled,
			"available_to_agents": false,
			"cancelled_at":        now,
			"updated_at":          now,
		}
		if reason != nil {
			updates["cancel_reason"] = *reason
		}
		updated, err := repo.UpdateStatus(ctx, order.ID, from, updates)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "cancel order")
		}
		if !updated {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "Order status changed concurrently, reload and retry")
		}
		if err := s.restoreStock(ctx, tx, repo, order.ID); err != nil {
			return err
		}
		if _, err := s.matcher.Release(ctx, tx, order.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear dealer candidates")
		}
		if err := s.appendHistory(ctx, repo, order.ID, enums.OrderStatusCancelled, customerActor(input.CustomerID), reason); err != nil {
			return err
		}

		data := payloads.OrderCancelledEvent{
			OrderID:     order.ID,
			CustomerID:  order.CustomerID,
			DealerID:    order.DealerID,
			From:        from,
			CancelledAt: now,
		}
		if reason != nil {
			data.Reason = *reason
		}
		event := outbox.DomainEvent{
			EventType:     enums.EventOrderCancelled,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Actor:         &outbox.ActorRef{UserID: input.CustomerID, Role: enums.UserRoleClient.String()},
			Data:          data,
			OccurredAt:    now,
		}
		if err := s.outbox.Emit(ctx, tx, event); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "emit order cancelled")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logCtx := s.logg.WithFields(ctx, map[string]any{
		"order_id":    input.OrderID.String(),
		"customer_id": input.CustomerID.String(),
	})
	s.logg.Info(logCtx, "order.cancelled")
	return &CancelResult{
		Message: "Order cancelled successfully",
		OrderID: input.OrderID,
		Status:  enums.OrderStatusCancelled,
	}, nil
}

func (s *service) ListExpiredAssignments(ctx context.Context, limit int) ([]uuid.UUID, error) {
	if limit <= 0 {
		limit = availableScanLimit
	}
	rows, err := s.repo.ListExpiredAssignments(ctx, s.now(), limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list expired assignments")
	}
	ids := make([]uuid.UUID, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ID)
	}
	return ids, nil
}

// ExpireAssignment withdraws an unclaimed order whose offer window closed.
// It reports false when the order was claimed or changed in the meantime.
func (s *service) ExpireAssignment(ctx context.Context, orderID uuid.UUID) (bool, error) {
	now := s.now()
	var expired bool
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		ok, err := repo.ExpireAssignment(ctx, orderID, now)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "expire assignment")
		}
		if !ok {
			return nil
		}
		order, err := repo.FindForUpdate(ctx, orderID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload order")
		}
		if _, err := s.matcher.Release(ctx, tx, orderID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear dealer candidates")
		}
		if err := s.appendHistory(ctx, repo, orderID, order.Status, ActorExpirySweep, strPtr("No dealer accepted the order in time")); err != nil {
			return err
		}
		event := outbox.DomainEvent{
			EventType:     enums.EventOrderAssignmentExpired,
			AggregateType: enums.AggregateOrder,
			AggregateID:   orderID,
			Data: payloads.OrderAssignmentExpiredEvent{
				OrderID:    orderID,
				CustomerID: order.CustomerID,
				ExpiredAt:  now,
			},
			OccurredAt: now,
		}
		// An order expires at most once; overlapping sweeps must not double-notify.
		if err := s.outbox.EmitIfNotExists(ctx, tx, event); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "emit assignment expired")
		}
		expired = true
		return nil
	})
	if err != nil {
		return false, err
	}
	if expired {
		s.logg.Info(s.logg.WithOrderID(ctx, orderID.String()), "order.assignment_expired")
	}
	return expired, nil
}

func (s *service) restoreStock(ctx context.Context, tx *gorm.DB, repo Repository, orderID uuid.UUID) error {
	items, err := repo.FindItems(ctx, orderID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order items")
	}
	for _, item := range items {
		if err := s.inventory.Release(ctx, tx, item.ProductID, item.Quantity); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "restore stock")
		}
	}
	return nil
}

func (s *service) appendHistory(ctx context.Context, repo Repository, orderID uuid.UUID, status enums.OrderStatus, actor string, note *string) error {
	entry := &models.OrderStatusHistory{
		OrderID:   orderID,
		Status:    status,
		ChangedBy: actor,
		Note:      note,
		CreatedAt: s.now(),
	}
	if err := repo.AppendHistory(ctx, entry); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "append status history")
	}
	return nil
}

func errNotAssigned() error {
	return pkgerrors.New(pkgerrors.CodeNotFound, "Order not found or you are not assigned to this order")
}

func customerActor(id uuid.UUID) string {
	return "customer:" + id.String()
}

func dealerActor(id uuid.UUID) string {
	return "dealer:" + id.String()
}

func strPtr(value string) *string {
	return &value
}

func trimmedPtr(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
