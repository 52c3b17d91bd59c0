package database

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/yeremiapane/camarero-fulfillment/models"
)

const (
	queueKeyPrefix     = "kds:queue:"
	allDestinationsKey = "*"
)

// RedisQueueCache stores station queue snapshots in one hash per business and
// destination, keyed by the requested status set.
type RedisQueueCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisQueueCache(client *redis.Client, ttl time.Duration) *RedisQueueCache {
	return &RedisQueueCache{client: client, ttl: ttl}
}

func queueKey(businessID, destination string) string {
	if destination == "" {
		destination = allDestinationsKey
	}
	return queueKeyPrefix + businessID + ":" + destination
}

func statusField(statuses []models.OrderItemStatus) string {
	parts := make([]string, len(statuses))
	for i, s := range statuses {
		parts[i] = string(s)
	}
	sort.Strings(parts)
	return strings.Join(parts, ",")
}

func (r *RedisQueueCache) Get(ctx context.Context, filter models.StationQueueFilter) ([]models.StationQueueItem, bool, error) {
	raw, err := r.client.HGet(ctx, queueKey(filter.BusinessID, filter.Destination), statusField(filter.Statuses)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.Wrap(err, "read cached queue")
	}

	var items []models.StationQueueItem
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, false, errors.Wrap(err, "decode cached queue")
	}
	return items, true, nil
}

func (r *RedisQueueCache) Set(ctx context.Context, filter models.StationQueueFilter, items []models.StationQueueItem) error {
	raw, err := json.Marshal(items)
	if err != nil {
		return errors.Wrap(err, "encode queue")
	}
	key := queueKey(filter.BusinessID, filter.Destination)
	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key, statusField(filter.Statuses), raw)
		pipe.Expire(ctx, key, r.ttl)
		return nil
	})
	return errors.Wrap(err, "cache queue")
}

// Invalidate drops the cached queues of the given destinations and the
// all-destinations view of the business.
func (r *RedisQueueCache) Invalidate(ctx context.Context, businessID string, destinations ...string) error {
	keys := []string{queueKey(businessID, "")}
	for _, d := range destinations {
		if d != "" {
			keys = append(keys, queueKey(businessID, d))
		}
	}
	return errors.Wrap(r.client.Del(ctx, keys...).Err(), "invalidate queue cache")
}
