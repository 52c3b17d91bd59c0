package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/camarero-fulfillment/services"
	"github.com/yeremiapane/camarero-fulfillment/utils"
)

// OrderController serves the customer facing order endpoints.
type OrderController struct {
	Orders *services.OrderService
}

func NewOrderController(orders *services.OrderService) *OrderController {
	return &OrderController{Orders: orders}
}

// CreateOrder -> POST /public/businesses/:business_id/orders
func (oc *OrderController) CreateOrder(c *gin.Context) {
	var body services.SubmitOrderInput
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondBindError(c, err)
		return
	}

	order, err := oc.Orders.CreateOrder(c.Request.Context(), c.Param("business_id"), body)
	if err != nil {
		utils.RespondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Order created", order)
}

// AddItems -> POST /public/businesses/:business_id/orders/:order_id/items
func (oc *OrderController) AddItems(c *gin.Context) {
	var body services.AddItemsInput
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondBindError(c, err)
		return
	}

	order, err := oc.Orders.AddItems(c.Request.Context(), c.Param("business_id"), c.Param("order_id"), body)
	if err != nil {
		utils.RespondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Items added", order)
}

func (oc *OrderController) GetOrder(c *gin.Context) {
	order, err := oc.Orders.GetOrder(c.Request.Context(), c.Param("business_id"), c.Param("order_id"))
	if err != nil {
		utils.RespondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order detail", order)
}
