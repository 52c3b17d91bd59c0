package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/camarero-fulfillment/database"
	"github.com/yeremiapane/camarero-fulfillment/metrics"
	"github.com/yeremiapane/camarero-fulfillment/models"
	"github.com/yeremiapane/camarero-fulfillment/utils"
)

// SubmitOrderInput is the body of a new order submission.
type SubmitOrderInput struct {
	TableIdentifier *string     `json:"table_identifier"`
	Notes           *string     `json:"notes"`
	Items           []OrderLine `json:"items"`
}

type AddItemsInput struct {
	Items []OrderLine `json:"items"`
}

type OrderService struct {
	Store     database.Store
	Assembler OrderItemAssembler
	Events    EventSink
	Cache     database.QueueCache
	Now       func() time.Time
}

func NewOrderService(store database.Store, events EventSink, cache database.QueueCache) *OrderService {
	if events == nil {
		events = nopSink{}
	}
	return &OrderService{Store: store, Events: events, Cache: cache, Now: time.Now}
}

func (s *OrderService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *OrderService) events() EventSink {
	if s.Events == nil {
		return nopSink{}
	}
	return s.Events
}

func checkBusinessOpen(tx database.Tx, businessID string) (*models.Business, error) {
	business, err := tx.FindBusiness(businessID)
	if errors.Is(err, database.ErrNotFound) {
		return nil, NotFound("business %s not found", businessID)
	}
	if err != nil {
		return nil, Internal(err, "failed to load business")
	}
	if !business.IsActive {
		return nil, BadRequest("business %q is not active", business.Name)
	}
	if !business.IsOrderingActive {
		return nil, BadRequest("ordering is not enabled for business %q", business.Name)
	}
	return business, nil
}

// CreateOrder opens a new order with the submitted lines. Every line is
// validated and priced in one transaction; one bad line leaves nothing behind.
func (s *OrderService) CreateOrder(ctx context.Context, businessID string, in SubmitOrderInput) (*models.Order, error) {
	if len(in.Items) == 0 {
		return nil, s.rejected(BadRequest("an order needs at least one item"))
	}

	var order *models.Order
	err := s.Store.WithinTx(ctx, func(tx database.Tx) error {
		if _, err := checkBusinessOpen(tx, businessID); err != nil {
			return err
		}

		var table *models.Table
		if in.TableIdentifier != nil && *in.TableIdentifier != "" {
			t, err := tx.FindTable(businessID, *in.TableIdentifier)
			if errors.Is(err, database.ErrNotFound) {
				return BadRequest("table %q does not exist", *in.TableIdentifier)
			}
			if err != nil {
				return Internal(err, "failed to load table")
			}
			table = t
		}

		count, err := tx.CountOrders(businessID)
		if err != nil {
			return Internal(err, "failed to count orders")
		}

		now := s.now()
		order = &models.Order{
			ID:          uuid.NewString(),
			BusinessID:  businessID,
			OrderNumber: fmt.Sprintf("P-%s-%05d", now.Format("20060102"), count+1),
			Status:      models.OrderStatusReceived,
			Notes:       in.Notes,
			TotalAmount: decimal.Zero,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if table != nil {
			order.TableID = &table.ID
		}
		if err := tx.CreateOrder(order); err != nil {
			return Internal(err, "failed to create order")
		}

		items, total, err := s.Assembler.Assemble(tx, businessID, order.ID, 1, in.Items)
		if err != nil {
			return err
		}
		order.TotalAmount = total
		if err := tx.UpdateOrder(order); err != nil {
			return Internal(err, "failed to update order total")
		}

		if table != nil {
			if err := tx.UpdateTableStatus(table.ID, models.TableStatusOccupied); err != nil {
				return Internal(err, "failed to occupy table")
			}
			table.Status = models.TableStatusOccupied
			order.Table = table
		}
		order.Items = items
		return nil
	})
	if err != nil {
		return nil, s.rejected(asAppError(err, "failed to create order"))
	}

	utils.InfoLogger.WithFields(logrus.Fields{
		"business_id":  businessID,
		"order_id":     order.ID,
		"order_number": order.OrderNumber,
		"total":        order.TotalAmount.StringFixed(2),
	}).Info("Order created")
	s.afterSubmit(ctx, order, order.Items)
	return order, nil
}

// reopenedStatus is the order status after new pending items join it. Orders that
// were finished in the kitchen go back to IN_PROGRESS; RECEIVED, IN_PROGRESS
// and PARTIALLY_READY still describe the order correctly and are kept.
func reopenedStatus(current models.OrderStatus) models.OrderStatus {
	switch current {
	case models.OrderStatusCompleted, models.OrderStatusAllItemsReady:
		return models.OrderStatusInProgress
	}
	return current
}

// AddItems appends lines to an open order.
func (s *OrderService) AddItems(ctx context.Context, businessID, orderID string, in AddItemsInput) (*models.Order, error) {
	if len(in.Items) == 0 {
		return nil, s.rejected(BadRequest("no items to add"))
	}

	var order *models.Order
	var added []models.OrderItem
	err := s.Store.WithinTx(ctx, func(tx database.Tx) error {
		if _, err := checkBusinessOpen(tx, businessID); err != nil {
			return err
		}

		o, err := tx.LockOrder(businessID, orderID)
		if errors.Is(err, database.ErrNotFound) {
			return NotFound("order %s not found", orderID)
		}
		if err != nil {
			return Internal(err, "failed to load order")
		}
		if o.Status == models.OrderStatusCancelled {
			return BadRequest("cannot add items to an order in status %s", o.Status)
		}

		existing, err := tx.ListItemStatuses(o.ID)
		if err != nil {
			return Internal(err, "failed to load order items")
		}

		items, total, err := s.Assembler.Assemble(tx, businessID, o.ID, len(existing)+1, in.Items)
		if err != nil {
			return err
		}

		o.Status = reopenedStatus(o.Status)
		o.TotalAmount = o.TotalAmount.Add(total)
		if err := tx.UpdateOrder(o); err != nil {
			return Internal(err, "failed to update order")
		}

		order = o
		added = items
		return nil
	})
	if err != nil {
		return nil, s.rejected(asAppError(err, "failed to add items"))
	}

	utils.InfoLogger.WithFields(logrus.Fields{
		"business_id":  businessID,
		"order_id":     order.ID,
		"added":        len(added),
		"order_status": order.Status,
	}).Info("Items added to order")
	s.afterSubmit(ctx, order, added)

	full, err := s.Store.FindOrder(ctx, businessID, order.ID)
	if err != nil {
		return nil, Internal(err, "failed to reload order")
	}
	return full, nil
}

func (s *OrderService) GetOrder(ctx context.Context, businessID, orderID string) (*models.Order, error) {
	order, err := s.Store.FindOrder(ctx, businessID, orderID)
	if errors.Is(err, database.ErrNotFound) {
		return nil, NotFound("order %s not found", orderID)
	}
	if err != nil {
		return nil, Internal(err, "failed to load order")
	}
	return order, nil
}

func (s *OrderService) rejected(err error) error {
	metrics.SubmissionsRejected.WithLabelValues(string(KindOf(err))).Inc()
	if KindOf(err) == KindInternal {
		utils.ErrorLogger.WithError(err).Error("Order submission failed")
	}
	return err
}

func (s *OrderService) afterSubmit(ctx context.Context, order *models.Order, items []models.OrderItem) {
	event := models.OrderItemsSubmitted{
		BusinessID:  order.BusinessID,
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		OccurredAt:  s.now(),
	}
	for _, item := range items {
		destination := ""
		if item.KdsDestination != nil {
			destination = *item.KdsDestination
		}
		metrics.OrderItemsSubmitted.WithLabelValues(destination).Inc()
		event.Items = append(event.Items, models.SubmittedItem{
			OrderItemID:    item.ID,
			KdsDestination: item.KdsDestination,
			Name:           item.ItemNameSnapshot,
			Quantity:       item.Quantity,
		})
	}

	if s.Cache != nil {
		if err := s.Cache.Invalidate(ctx, order.BusinessID, event.Destinations()...); err != nil {
			utils.ErrorLogger.WithError(err).Error("Failed to invalidate station queue cache")
		}
	}
	s.events().Publish(ctx, event)
}
