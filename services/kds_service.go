package services

import (
	"context"
	"sync"

	"github.com/yeremiapane/camarero-fulfillment/database"
	"github.com/yeremiapane/camarero-fulfillment/metrics"
	"github.com/yeremiapane/camarero-fulfillment/models"
	"github.com/yeremiapane/camarero-fulfillment/utils"
	"golang.org/x/sync/errgroup"
)

// KdsService answers station terminal reads. It never writes to the store.
type KdsService struct {
	Store database.Store
	Cache database.QueueCache
}

func NewKdsService(store database.Store, cache database.QueueCache) *KdsService {
	return &KdsService{Store: store, Cache: cache}
}

// StationQueue lists the items routed to destination, oldest order first.
// An empty status filter means PENDING_KDS and PREPARING.
func (s *KdsService) StationQueue(ctx context.Context, businessID, destination string, statuses []models.OrderItemStatus) ([]models.StationQueueItem, error) {
	if destination == "" {
		return nil, BadRequest("destination is required")
	}
	if len(statuses) == 0 {
		statuses = models.DefaultStationStatuses()
	}
	return s.queue(ctx, models.StationQueueFilter{
		BusinessID:  businessID,
		Destination: destination,
		Statuses:    statuses,
	})
}

// Overview loads several station queues concurrently.
func (s *KdsService) Overview(ctx context.Context, businessID string, destinations []string, statuses []models.OrderItemStatus) (map[string][]models.StationQueueItem, error) {
	if len(destinations) == 0 {
		return nil, BadRequest("at least one destination is required")
	}

	var mu sync.Mutex
	out := make(map[string][]models.StationQueueItem, len(destinations))
	g, gctx := errgroup.WithContext(ctx)
	for _, destination := range destinations {
		destination := destination
		g.Go(func() error {
			items, err := s.StationQueue(gctx, businessID, destination, statuses)
			if err != nil {
				return err
			}
			mu.Lock()
			out[destination] = items
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// ReadyForPickup lists READY items of every station for the floor staff.
func (s *KdsService) ReadyForPickup(ctx context.Context, businessID string) ([]models.StationQueueItem, error) {
	return s.queue(ctx, models.StationQueueFilter{
		BusinessID: businessID,
		Statuses:   []models.OrderItemStatus{models.OrderItemReady},
	})
}

func (s *KdsService) queue(ctx context.Context, filter models.StationQueueFilter) ([]models.StationQueueItem, error) {
	if s.Cache != nil {
		items, ok, err := s.Cache.Get(ctx, filter)
		switch {
		case err != nil:
			metrics.QueueCacheLookups.WithLabelValues("error").Inc()
			utils.ErrorLogger.WithError(err).Error("Station queue cache read failed")
		case ok:
			metrics.QueueCacheLookups.WithLabelValues("hit").Inc()
			return items, nil
		default:
			metrics.QueueCacheLookups.WithLabelValues("miss").Inc()
		}
	}

	items, err := s.Store.FindStationQueue(ctx, filter)
	if err != nil {
		return nil, Internal(err, "failed to load station queue")
	}

	if s.Cache != nil {
		if err := s.Cache.Set(ctx, filter, items); err != nil {
			utils.ErrorLogger.WithError(err).Error("Station queue cache write failed")
		}
	}
	return items, nil
}
