package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/camarero-fulfillment/middlewares"
	"github.com/yeremiapane/camarero-fulfillment/services"
	"github.com/yeremiapane/camarero-fulfillment/utils"
)

type WaiterController struct {
	Kds         *services.KdsService
	Fulfillment *services.FulfillmentService
}

func NewWaiterController(kdsService *services.KdsService, fulfillment *services.FulfillmentService) *WaiterController {
	return &WaiterController{Kds: kdsService, Fulfillment: fulfillment}
}

func (wc *WaiterController) ReadyItems(c *gin.Context) {
	items, err := wc.Kds.ReadyForPickup(c.Request.Context(), c.GetString(middlewares.ContextBusinessID))
	if err != nil {
		utils.RespondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Items ready for pickup", items)
}

func (wc *WaiterController) MarkServed(c *gin.Context) {
	result, err := wc.Fulfillment.MarkServed(c.Request.Context(), c.GetString(middlewares.ContextBusinessID), c.Param("item_id"))
	if err != nil {
		utils.RespondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order item served", result)
}
