package services

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/camarero-fulfillment/database"
	"github.com/yeremiapane/camarero-fulfillment/metrics"
	"github.com/yeremiapane/camarero-fulfillment/models"
	"github.com/yeremiapane/camarero-fulfillment/utils"
)

// StatusUpdateResult is returned by every item status change, including no-ops.
type StatusUpdateResult struct {
	OrderItemID string                 `json:"order_item_id"`
	NewStatus   models.OrderItemStatus `json:"new_status"`
	OrderID     string                 `json:"order_id"`
	OrderStatus models.OrderStatus     `json:"order_status"`
	Changed     bool                   `json:"-"`
}

type FulfillmentService struct {
	Store      database.Store
	Machine    StatusMachine
	Aggregator StatusAggregator
	Events     EventSink
	Cache      database.QueueCache
}

func NewFulfillmentService(store database.Store, events EventSink, cache database.QueueCache) *FulfillmentService {
	if events == nil {
		events = nopSink{}
	}
	return &FulfillmentService{Store: store, Events: events, Cache: cache}
}

// UpdateItemStatus moves one item and recomputes its order in the same
// transaction. Requesting the current status is a successful no-op.
func (s *FulfillmentService) UpdateItemStatus(ctx context.Context, businessID, itemID, status string) (*StatusUpdateResult, error) {
	next, ok := models.ParseOrderItemStatus(status)
	if !ok {
		return nil, BadRequest("unknown order item status %q", status)
	}

	var (
		result      StatusUpdateResult
		previous    models.OrderItemStatus
		destination *string
	)
	err := s.Store.WithinTx(ctx, func(tx database.Tx) error {
		item, err := tx.FindOrderItem(itemID, businessID)
		if errors.Is(err, database.ErrNotFound) {
			return NotFound("order item %s not found", itemID)
		}
		if err != nil {
			return Internal(err, "failed to load order item")
		}
		order, err := tx.LockOrder(businessID, item.OrderID)
		if err != nil {
			return Internal(err, "failed to lock order")
		}
		item, err = tx.LockOrderItem(order.ID, item.ID)
		if err != nil {
			return Internal(err, "failed to lock order item")
		}

		previous = item.Status
		destination = item.KdsDestination
		result = StatusUpdateResult{
			OrderItemID: item.ID,
			NewStatus:   item.Status,
			OrderID:     order.ID,
			OrderStatus: order.Status,
		}

		changed, err := s.Machine.ApplyTransition(item, next)
		if err != nil || !changed {
			return err
		}
		if err := tx.UpdateOrderItemStatus(item); err != nil {
			return Internal(err, "failed to update order item")
		}

		statuses, err := tx.ListItemStatuses(order.ID)
		if err != nil {
			return Internal(err, "failed to load sibling items")
		}
		if derived, differs := s.Aggregator.Recompute(order.Status, statuses); differs {
			order.Status = derived
			if err := tx.UpdateOrder(order); err != nil {
				return Internal(err, "failed to update order status")
			}
		}

		result.NewStatus = item.Status
		result.OrderStatus = order.Status
		result.Changed = true
		return nil
	})
	if err != nil {
		err = asAppError(err, "failed to update order item status")
		if KindOf(err) == KindInternal {
			utils.ErrorLogger.WithError(err).WithField("order_item_id", itemID).Error("Status update failed")
		}
		return nil, err
	}
	if !result.Changed {
		return &result, nil
	}

	utils.InfoLogger.WithFields(logrus.Fields{
		"business_id":   businessID,
		"order_id":      result.OrderID,
		"order_item_id": result.OrderItemID,
		"from":          previous,
		"to":            result.NewStatus,
		"order_status":  result.OrderStatus,
	}).Info("Order item status changed")
	metrics.ItemTransitions.WithLabelValues(string(previous), string(result.NewStatus)).Inc()

	if s.Cache != nil {
		var destinations []string
		if destination != nil {
			destinations = append(destinations, *destination)
		}
		if err := s.Cache.Invalidate(ctx, businessID, destinations...); err != nil {
			utils.ErrorLogger.WithError(err).Error("Failed to invalidate station queue cache")
		}
	}

	events := s.Events
	if events == nil {
		events = nopSink{}
	}
	events.Publish(ctx, models.ItemStatusChanged{
		BusinessID:     businessID,
		OrderID:        result.OrderID,
		OrderItemID:    result.OrderItemID,
		KdsDestination: destination,
		From:           previous,
		To:             result.NewStatus,
		OrderStatus:    result.OrderStatus,
		OccurredAt:     time.Now(),
	})
	return &result, nil
}

// MarkServed is the waiter's hand-off of a ready item.
func (s *FulfillmentService) MarkServed(ctx context.Context, businessID, itemID string) (*StatusUpdateResult, error) {
	return s.UpdateItemStatus(ctx, businessID, itemID, string(models.OrderItemServed))
}
