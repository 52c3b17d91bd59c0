package main

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/yeremiapane/camarero-fulfillment/config"
	"github.com/yeremiapane/camarero-fulfillment/database"
	"github.com/yeremiapane/camarero-fulfillment/kds"
	"github.com/yeremiapane/camarero-fulfillment/middlewares"
	"github.com/yeremiapane/camarero-fulfillment/router"
	"github.com/yeremiapane/camarero-fulfillment/services"
	"github.com/yeremiapane/camarero-fulfillment/utils"
	"gorm.io/gorm"
)

// application holds the wired services and everything that must be closed on exit.
type application struct {
	Engine  *gin.Engine
	Hub     *kds.Hub
	closers []func()
}

func newApplication(cfg *config.Config, db *gorm.DB) (*application, error) {
	store, err := database.NewGormStore(db)
	if err != nil {
		return nil, err
	}
	app := &application{Hub: kds.NewHub()}

	var cache database.QueueCache
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := rdb.Ping(context.Background()).Err(); err != nil {
			utils.ErrorLogger.Errorf("Redis at %s unavailable, station queue cache disabled: %v", cfg.RedisAddr, err)
			rdb.Close()
		} else {
			cache = database.NewRedisQueueCache(rdb, cfg.KdsCacheTTL)
			app.closers = append(app.closers, func() { rdb.Close() })
			utils.InfoLogger.Printf("Station queue cache enabled on %s", cfg.RedisAddr)
		}
	}

	sinks := services.MultiSink{services.LogSink{}, app.Hub}
	if cfg.WebhookURL != "" {
		webhook := services.NewAuditWebhook(cfg.WebhookURL, cfg.WebhookTTL, 0)
		webhook.Start()
		app.closers = append(app.closers, webhook.Stop)
		sinks = append(sinks, webhook)
	}

	app.Engine = router.SetupRouter(router.Options{
		Orders:      services.NewOrderService(store, sinks, cache),
		Fulfillment: services.NewFulfillmentService(store, sinks, cache),
		Kds:         services.NewKdsService(store, cache),
		Hub:         app.Hub,
		RateLimiter: middlewares.NewRateLimiter(cfg.RateLimitRPS, cfg.RateBurst),
		CORSOrigin:  cfg.CORSOrigin,
	})
	return app, nil
}

// Close runs closers in reverse registration order.
func (a *application) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}
