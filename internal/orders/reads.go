package orders

import (
	"context"
	"errors"
	"sort"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mtaanigas/fulfillment-backend/internal/dealers"
	"github.com/mtaanigas/fulfillment-backend/internal/users"
	"github.com/mtaanigas/fulfillment-backend/pkg/db/models"
	"github.com/mtaanigas/fulfillment-backend/pkg/enums"
	pkgerrors "github.com/mtaanigas/fulfillment-backend/pkg/errors"
	"github.com/mtaanigas/fulfillment-backend/pkg/pagination"
)

func (s *service) ListCustomerOrders(ctx context.Context, input ListCustomerOrdersInput) (*CustomerOrderList, error) {
	if input.CustomerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if _, err := pagination.ParseCursor(input.Pagination.Cursor); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	rows, err := s.repo.ListCustomerOrders(ctx, input.CustomerID, input.Filters, input.Pagination)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	page, next := pagination.Trim(rows, input.Pagination.Limit, func(o models.Order) pagination.Cursor {
		return pagination.Cursor{CreatedAt: o.CreatedAt, ID: o.ID}
	})
	out := make([]OrderDTO, 0, len(page))
	for _, order := range page {
		out = append(out, newOrderDTO(order))
	}
	return &CustomerOrderList{Orders: out, NextCursor: next}, nil
}

func (s *service) GetCustomerOrder(ctx context.Context, customerID, orderID uuid.UUID) (*OrderDetailDTO, error) {
	if customerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "Order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	if order.CustomerID != customerID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "Order not found")
	}
	detail, err := s.buildDetail(ctx, order)
	if err != nil {
		return nil, err
	}
	if order.DealerID != nil {
		dealer, err := s.users.FindByID(ctx, *order.DealerID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load dealer")
		}
		detail.Dealer = users.FromModel(dealer)
	}
	return detail, nil
}

func (s *service) StatusCounts(ctx context.Context, customerID uuid.UUID) (*StatusCountsResult, error) {
	if customerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	counts, err := s.repo.CountByStatus(ctx, customerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count orders")
	}
	out := make([]StatusCount, 0, len(statusCountOrder))
	for _, status := range statusCountOrder {
		count := counts[status]
		if status == enums.OrderStatusPending {
			count += counts[enums.OrderStatusPendingPayment]
		}
		out = append(out, StatusCount{Status: status, Count: count})
	}
	return &StatusCountsResult{StatusCounts: out}, nil
}

func (s *service) Stats(ctx context.Context, customerID uuid.UUID) (*OrderStats, error) {
	if customerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	row, err := s.repo.CustomerStats(ctx, customerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "order stats")
	}
	return &OrderStats{
		TotalOrders:     row.TotalOrders,
		PendingOrders:   row.PendingOrders,
		ConfirmedOrders: row.ConfirmedOrders,
		OnTheWayOrders:  row.OnTheWayOrders,
		DeliveredOrders: row.DeliveredOrders,
		ActiveOrders:    row.ActiveOrders,
		TotalSpent:      row.TotalSpent,
	}, nil
}

// ListAvailable ranks open orders against the dealer's ward. Orders that do
// not match the ward at all are not shown.
func (s *service) ListAvailable(ctx context.Context, dealerID uuid.UUID) (*AvailableOrdersResult, error) {
	if dealerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	dealer, err := s.users.FindByID(ctx, dealerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "Agent not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load dealer")
	}
	if dealer.Role != enums.UserRoleDealer {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "Agent not found")
	}

	agentWard := dealer.Location.Ward
	result := &AvailableOrdersResult{
		AvailableOrders: []AvailableOrderDTO{},
		LocationInfo:    LocationInfo{AgentWard: agentWard},
	}
	if agentWard == "" {
		result.LocationInfo.AgentWard = "Unknown"
		return result, nil
	}

	rows, err := s.repo.ListAvailable(ctx, s.now(), availableScanLimit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list available orders")
	}

	type scored struct {
		order models.Order
		score int
	}
	matched := make([]scored, 0, len(rows))
	for _, order := range rows {
		score := dealers.Score(order.DeliveryWard, dealer.Location.String())
		if score == dealers.ScoreNone {
			continue
		}
		matched = append(matched, scored{order: order, score: score})
	}
	// rows arrive newest first; the stable sort keeps that inside a score.
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].score > matched[j].score
	})

	customerIDs := make([]uuid.UUID, 0, len(matched))
	for _, m := range matched {
		customerIDs = append(customerIDs, m.order.CustomerID)
	}
	customers, err := s.summaries(ctx, customerIDs)
	if err != nil {
		return nil, err
	}

	for _, m := range matched {
		sameWard := m.score >= dealers.SameWardThreshold
		if sameWard {
			result.LocationInfo.SameWardOrders++
		} else {
			result.LocationInfo.OtherOrders++
		}
		result.AvailableOrders = append(result.AvailableOrders, AvailableOrderDTO{
			OrderDTO: newOrderDTO(m.order),
			Customer: customers[m.order.CustomerID],
			LocationMatch: LocationMatch{
				Score:        m.score,
				SameWard:     sameWard,
				AgentWard:    agentWard,
				CustomerWard: m.order.DeliveryWard,
			},
		})
	}
	result.Count = len(result.AvailableOrders)
	return result, nil
}

func (s *service) ListDealerOrders(ctx context.Context, dealerID uuid.UUID) (*DealerOrderList, error) {
	if dealerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	rows, err := s.repo.ListDealerOrders(ctx, dealerID, dealerOrdersLimit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list dealer orders")
	}
	customerIDs := make([]uuid.UUID, 0, len(rows))
	for _, order := range rows {
		customerIDs = append(customerIDs, order.CustomerID)
	}
	customers, err := s.summaries(ctx, customerIDs)
	if err != nil {
		return nil, err
	}
	out := make([]DealerOrderDTO, 0, len(rows))
	for _, order := range rows {
		out = append(out, DealerOrderDTO{
			OrderDTO: newOrderDTO(order),
			Customer: customers[order.CustomerID],
		})
	}
	return &DealerOrderList{Orders: out, Count: len(out)}, nil
}

func (s *service) GetDealerOrder(ctx context.Context, dealerID, orderID uuid.UUID) (*OrderDetailDTO, error) {
	if dealerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errNotAssigned()
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	if order.DealerID == nil || *order.DealerID != dealerID {
		return nil, errNotAssigned()
	}
	detail, err := s.buildDetail(ctx, order)
	if err != nil {
		return nil, err
	}
	customer, err := s.users.FindByID(ctx, order.CustomerID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load customer")
	}
	detail.Customer = users.FromModel(customer)
	return detail, nil
}

func (s *service) buildDetail(ctx context.Context, order *models.Order) (*OrderDetailDTO, error) {
	history, err := s.repo.ListHistory(ctx, order.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load status history")
	}
	return &OrderDetailDTO{
		OrderDTO: newOrderDTO(*order),
		History:  newHistoryDTOs(history),
	}, nil
}

func (s *service) summaries(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*users.UserSummary, error) {
	out := make(map[uuid.UUID]*users.UserSummary, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	rows, err := s.users.FindByIDs(ctx, uniqueIDs(ids))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load users")
	}
	for i := range rows {
		out[rows[i].ID] = users.FromModel(&rows[i])
	}
	return out, nil
}

func uniqueIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
