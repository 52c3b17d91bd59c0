package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/yeremiapane/camarero-fulfillment/controllers"
	"github.com/yeremiapane/camarero-fulfillment/kds"
	"github.com/yeremiapane/camarero-fulfillment/metrics"
	"github.com/yeremiapane/camarero-fulfillment/middlewares"
	"github.com/yeremiapane/camarero-fulfillment/services"
)

type Options struct {
	Orders      *services.OrderService
	Fulfillment *services.FulfillmentService
	Kds         *services.KdsService
	Hub         *kds.Hub
	RateLimiter *middlewares.RateLimiter
	CORSOrigin  string
}

func SetupRouter(opts Options) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddlewares(opts.CORSOrigin))
	r.Use(middlewares.LoggerMiddleware())
	r.Use(metrics.PrometheusMiddleware())

	orderCtrl := controllers.NewOrderController(opts.Orders)
	kdsCtrl := controllers.NewKdsController(opts.Kds, opts.Fulfillment, opts.Hub)
	waiterCtrl := controllers.NewWaiterController(opts.Kds, opts.Fulfillment)

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// ----------------------------------------------------------------
	//                      PUBLIC ROUTES
	// ----------------------------------------------------------------
	public := r.Group("/public/businesses/:business_id")
	if opts.RateLimiter != nil {
		public.Use(opts.RateLimiter.RateLimit())
	}
	{
		public.POST("/orders", orderCtrl.CreateOrder)
		public.POST("/orders/:order_id/items", orderCtrl.AddItems)
		public.GET("/orders/:order_id", orderCtrl.GetOrder)
	}

	// ----------------------------------------------------------------
	//                      AUTHENTICATED ROUTES
	// ----------------------------------------------------------------
	api := r.Group("/api")
	api.Use(middlewares.AuthMiddleware())

	station := api.Group("/kds")
	station.Use(middlewares.RequireRoles("chef", "bartender", "staff"))
	{
		station.GET("/items", kdsCtrl.GetStationQueue)
		station.GET("/overview", kdsCtrl.GetOverview)
		station.PATCH("/items/:item_id/status", kdsCtrl.UpdateItemStatus)
	}

	waiter := api.Group("/waiter")
	waiter.Use(middlewares.RequireRoles("waiter", "staff"))
	{
		waiter.GET("/ready-items", waiterCtrl.ReadyItems)
		waiter.PATCH("/items/:item_id/served", waiterCtrl.MarkServed)
	}

	wsGroup := r.Group("/ws")
	wsGroup.Use(middlewares.WebSocketAuthMiddleware())
	{
		wsGroup.GET("/kds", kdsCtrl.ServeWebSocket)
	}

	return r
}
