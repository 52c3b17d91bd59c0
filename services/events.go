package services

import (
	"context"

	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/camarero-fulfillment/models"
	"github.com/yeremiapane/camarero-fulfillment/utils"
)

// EventSink receives events after the transaction that produced them commits.
// Publish must not block the caller and has no way to fail the mutation.
type EventSink interface {
	Publish(ctx context.Context, event models.Event)
}

// MultiSink fans an event out to every sink in order.
type MultiSink []EventSink

func (m MultiSink) Publish(ctx context.Context, event models.Event) {
	for _, sink := range m {
		if sink != nil {
			sink.Publish(ctx, event)
		}
	}
}

type LogSink struct{}

func (LogSink) Publish(_ context.Context, event models.Event) {
	fields := logrus.Fields{"event": event.Type()}
	switch e := event.(type) {
	case models.ItemStatusChanged:
		fields["business_id"] = e.BusinessID
		fields["order_id"] = e.OrderID
		fields["order_item_id"] = e.OrderItemID
		fields["from"] = e.From
		fields["to"] = e.To
		fields["order_status"] = e.OrderStatus
	case models.OrderItemsSubmitted:
		fields["business_id"] = e.BusinessID
		fields["order_id"] = e.OrderID
		fields["items"] = len(e.Items)
	}
	utils.InfoLogger.WithFields(fields).Info("Fulfillment event")
}

type nopSink struct{}

func (nopSink) Publish(context.Context, models.Event) {}
