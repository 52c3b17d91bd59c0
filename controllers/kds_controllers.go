package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/yeremiapane/camarero-fulfillment/kds"
	"github.com/yeremiapane/camarero-fulfillment/middlewares"
	"github.com/yeremiapane/camarero-fulfillment/services"
	"github.com/yeremiapane/camarero-fulfillment/utils"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type KdsController struct {
	Kds         *services.KdsService
	Fulfillment *services.FulfillmentService
	Hub         *kds.Hub
}

func NewKdsController(kdsService *services.KdsService, fulfillment *services.FulfillmentService, hub *kds.Hub) *KdsController {
	return &KdsController{Kds: kdsService, Fulfillment: fulfillment, Hub: hub}
}

// GetStationQueue -> GET /api/kds/items?destination=KITCHEN&status=PENDING_KDS,PREPARING
func (kc *KdsController) GetStationQueue(c *gin.Context) {
	statuses, err := parseStatuses(c.Query("status"))
	if err != nil {
		utils.RespondServiceError(c, err)
		return
	}

	items, err := kc.Kds.StationQueue(c.Request.Context(), c.GetString(middlewares.ContextBusinessID), c.Query("destination"), statuses)
	if err != nil {
		utils.RespondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Station queue", items)
}

// GetOverview -> GET /api/kds/overview?destinations=KITCHEN,BAR
func (kc *KdsController) GetOverview(c *gin.Context) {
	statuses, err := parseStatuses(c.Query("status"))
	if err != nil {
		utils.RespondServiceError(c, err)
		return
	}

	overview, err := kc.Kds.Overview(c.Request.Context(), c.GetString(middlewares.ContextBusinessID), splitList(c.Query("destinations")), statuses)
	if err != nil {
		utils.RespondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Station overview", overview)
}

type updateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// UpdateItemStatus -> PATCH /api/kds/items/:item_id/status
func (kc *KdsController) UpdateItemStatus(c *gin.Context) {
	var body updateStatusRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondBindError(c, err)
		return
	}

	result, err := kc.Fulfillment.UpdateItemStatus(c.Request.Context(), c.GetString(middlewares.ContextBusinessID), c.Param("item_id"), body.Status)
	if err != nil {
		utils.RespondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order item status updated", result)
}

// ServeWebSocket -> GET /ws/kds?token=...&destination=KITCHEN
func (kc *KdsController) ServeWebSocket(c *gin.Context) {
	sub := kds.Subscriber{
		BusinessID:  c.GetString(middlewares.ContextBusinessID),
		Destination: c.Query("destination"),
		Role:        c.GetString(middlewares.ContextRole),
	}

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		utils.ErrorLogger.WithError(err).Error("Websocket upgrade failed")
		return
	}
	kc.Hub.RegisterClient(ws, sub)
	defer kc.Hub.UnregisterClient(ws)

	for {
		if _, _, err := ws.ReadMessage(); err != nil {
			break
		}
	}
}
